package auth

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"HaruChat/be/internal/user"
)

type ServiceImpl struct {
	userService user.Service
	tokens      *TokenManager
}

func NewServiceImpl(userService user.Service, tokens *TokenManager) *ServiceImpl {
	return &ServiceImpl{
		userService: userService,
		tokens:      tokens,
	}
}

func (s *ServiceImpl) Register(ctx context.Context, req user.CreateUserRequest) (*TokenResponse, error) {
	u, err := s.userService.CreateUser(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.issue(u)
}

func (s *ServiceImpl) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	u, err := s.userService.GetUserByLogin(ctx, req.Username)
	if errors.Is(err, user.ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !u.IsActive {
		return nil, ErrInactiveUser
	}

	if err := s.userService.RecordLogin(ctx, u.ID); err != nil {
		return nil, err
	}
	return s.issue(u)
}

func (s *ServiceImpl) Refresh(ctx context.Context, req RefreshRequest) (*TokenResponse, error) {
	id, err := s.tokens.Verify(req.RefreshToken, TokenTypeRefresh)
	if err != nil {
		return nil, err
	}

	u, err := s.userService.GetUser(ctx, id)
	if errors.Is(err, user.ErrUserNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, ErrInvalidToken
	}
	return s.issue(u)
}

func (s *ServiceImpl) issue(u *user.User) (*TokenResponse, error) {
	accessToken, err := s.tokens.AccessToken(u.ID, u.Username)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.tokens.RefreshToken(u.ID)
	if err != nil {
		return nil, err
	}

	return &TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    TokenTypeBearer,
		User: UserResponse{
			ID:              u.ID,
			Username:        u.Username,
			Email:           u.Email,
			Nickname:        u.Nickname,
			Avatar:          u.Avatar,
			DefaultProvider: u.DefaultProvider,
			DefaultModel:    u.DefaultModel,
		},
	}, nil
}
