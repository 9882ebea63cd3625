package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"HaruChat/be/internal/config"
)

func newTestTokenManager() *TokenManager {
	return NewTokenManager(config.JWTConfig{
		SecretKey:          "test-secret",
		AccessTokenExpiry:  24 * time.Hour,
		RefreshTokenExpiry: 30 * 24 * time.Hour,
	})
}

func TestTokenClaims(t *testing.T) {
	m := newTestTokenManager()
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return fixed }

	access, err := m.AccessToken(7, "haru")
	require.NoError(t, err)
	refresh, err := m.RefreshToken(7)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  jwt.MapClaims
	}{
		{
			name:  "access",
			token: access,
			want:  jwt.MapClaims{"sub": "7", "username": "haru", "type": "access", "exp": float64(fixed.Add(24 * time.Hour).Unix())},
		},
		{
			name:  "refresh",
			token: refresh,
			want:  jwt.MapClaims{"sub": "7", "type": "refresh", "exp": float64(fixed.Add(30 * 24 * time.Hour).Unix())},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := jwt.MapClaims{}
			token, _, err := jwt.NewParser().ParseUnverified(tt.token, claims)
			require.NoError(t, err)
			assert.Equal(t, "HS256", token.Method.Alg())
			assert.Equal(t, tt.want, claims)
		})
	}
}

func TestVerify(t *testing.T) {
	m := newTestTokenManager()
	access, err := m.AccessToken(7, "haru")
	require.NoError(t, err)
	refresh, err := m.RefreshToken(7)
	require.NoError(t, err)

	other := NewTokenManager(config.JWTConfig{SecretKey: "other-secret", AccessTokenExpiry: time.Hour})
	forged, err := other.AccessToken(7, "haru")
	require.NoError(t, err)

	expiredManager := newTestTokenManager()
	expiredManager.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	expired, err := expiredManager.AccessToken(7, "haru")
	require.NoError(t, err)

	noExp, err := m.sign(jwt.MapClaims{"sub": "7", "type": TokenTypeAccess})
	require.NoError(t, err)

	badSubject, err := m.sign(jwt.MapClaims{"sub": "haru", "type": TokenTypeAccess, "exp": time.Now().Add(time.Hour).Unix()})
	require.NoError(t, err)

	tests := []struct {
		name     string
		token    string
		wantType string
		wantID   int
		wantErr  bool
	}{
		{name: "access as access", token: access, wantType: TokenTypeAccess, wantID: 7},
		{name: "refresh as refresh", token: refresh, wantType: TokenTypeRefresh, wantID: 7},
		{name: "refresh as access", token: refresh, wantType: TokenTypeAccess, wantErr: true},
		{name: "access as refresh", token: access, wantType: TokenTypeRefresh, wantErr: true},
		{name: "wrong secret", token: forged, wantType: TokenTypeAccess, wantErr: true},
		{name: "expired", token: expired, wantType: TokenTypeAccess, wantErr: true},
		{name: "no expiry", token: noExp, wantType: TokenTypeAccess, wantErr: true},
		{name: "non numeric subject", token: badSubject, wantType: TokenTypeAccess, wantErr: true},
		{name: "garbage", token: "not.a.token", wantType: TokenTypeAccess, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := m.Verify(tt.token, tt.wantType)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidToken)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, id)
		})
	}
}
