package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"HaruChat/be/internal/config"
)

// TokenManager signs and verifies the HS256 tokens handed to clients.
type TokenManager struct {
	secret        []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
	now           func() time.Time
}

func NewTokenManager(cfg config.JWTConfig) *TokenManager {
	return &TokenManager{
		secret:        []byte(cfg.SecretKey),
		accessExpiry:  cfg.AccessTokenExpiry,
		refreshExpiry: cfg.RefreshTokenExpiry,
		now:           time.Now,
	}
}

func (m *TokenManager) AccessToken(id int, username string) (string, error) {
	return m.sign(jwt.MapClaims{
		"sub":      strconv.Itoa(id),
		"username": username,
		"type":     TokenTypeAccess,
		"exp":      m.now().Add(m.accessExpiry).Unix(),
	})
}

func (m *TokenManager) RefreshToken(id int) (string, error) {
	return m.sign(jwt.MapClaims{
		"sub":  strconv.Itoa(id),
		"type": TokenTypeRefresh,
		"exp":  m.now().Add(m.refreshExpiry).Unix(),
	})
}

func (m *TokenManager) sign(claims jwt.MapClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// Verify checks the signature, expiry and token type and returns the
// user id carried in the subject.
func (m *TokenManager) Verify(tokenString, wantType string) (int, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if tokenType, _ := claims["type"].(string); tokenType != wantType {
		return 0, fmt.Errorf("%w: expected %s token", ErrInvalidToken, wantType)
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	id, err := strconv.Atoi(sub)
	if err != nil {
		return 0, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return id, nil
}
