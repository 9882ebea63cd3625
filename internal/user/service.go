package user

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

type ServiceImpl struct {
	repo Repository
}

func NewServiceImpl(repo Repository) *ServiceImpl {
	return &ServiceImpl{repo: repo}
}

func (s *ServiceImpl) GetUser(ctx context.Context, id int) (*User, error) {
	return s.repo.GetById(ctx, id)
}

// GetUserByLogin accepts either a username or an email address.
func (s *ServiceImpl) GetUserByLogin(ctx context.Context, login string) (*User, error) {
	user, err := s.repo.GetByUsername(ctx, login)
	if errors.Is(err, ErrUserNotFound) {
		return s.repo.GetByEmail(ctx, login)
	}
	return user, err
}

func (s *ServiceImpl) CreateUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	if err := s.ensureFree(ctx, s.repo.GetByUsername, req.Username, ErrUsernameTaken); err != nil {
		return nil, err
	}
	if err := s.ensureFree(ctx, s.repo.GetByEmail, req.Email, ErrEmailTaken); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	nickname := req.Username
	if req.Nickname != nil && *req.Nickname != "" {
		nickname = *req.Nickname
	}

	user := &User{
		Username:        req.Username,
		Email:           req.Email,
		PasswordHash:    string(hashedPassword),
		Nickname:        &nickname,
		DefaultProvider: DefaultProvider,
		DefaultModel:    DefaultModel,
		Temperature:     DefaultTemperature,
		IsActive:        true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *ServiceImpl) ensureFree(ctx context.Context, lookup func(context.Context, string) (*User, error), value string, taken error) error {
	_, err := lookup(ctx, value)
	switch {
	case err == nil:
		return taken
	case errors.Is(err, ErrUserNotFound):
		return nil
	default:
		return fmt.Errorf("failed to check if user exists: %w", err)
	}
}

func (s *ServiceImpl) RecordLogin(ctx context.Context, id int) error {
	return s.repo.UpdateLastLogin(ctx, id)
}

func (s *ServiceImpl) GetProfile(ctx context.Context, id int) (*Profile, error) {
	user, err := s.repo.GetById(ctx, id)
	if err != nil {
		return nil, err
	}
	return toProfile(user), nil
}

func (s *ServiceImpl) UpdateProfile(ctx context.Context, id int, req UpdateProfileRequest) (*Profile, error) {
	user, err := s.repo.GetById(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Nickname != nil {
		user.Nickname = req.Nickname
	}
	if req.Avatar != nil {
		user.Avatar = req.Avatar
	}
	if req.DefaultProvider != nil {
		user.DefaultProvider = *req.DefaultProvider
	}
	if req.DefaultModel != nil {
		user.DefaultModel = *req.DefaultModel
	}
	if req.Temperature != nil {
		user.Temperature = *req.Temperature
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return toProfile(user), nil
}

func (s *ServiceImpl) ChangePassword(ctx context.Context, id int, req ChangePasswordRequest) error {
	user, err := s.repo.GetById(ctx, id)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		return ErrWrongPassword
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = string(hashedPassword)
	return s.repo.Update(ctx, user)
}

// UpdateAPIKeys leaves keys absent from the request untouched.
func (s *ServiceImpl) UpdateAPIKeys(ctx context.Context, id int, req UpdateAPIKeysRequest) error {
	user, err := s.repo.GetById(ctx, id)
	if err != nil {
		return err
	}
	if req.GeminiAPIKey == nil && req.OpenAIAPIKey == nil {
		return nil
	}

	if req.GeminiAPIKey != nil {
		user.GeminiAPIKey = req.GeminiAPIKey
	}
	if req.OpenAIAPIKey != nil {
		user.OpenAIAPIKey = req.OpenAIAPIKey
	}
	return s.repo.Update(ctx, user)
}

func (s *ServiceImpl) GetAPIKeys(ctx context.Context, id int) (*APIKeysResponse, error) {
	user, err := s.repo.GetById(ctx, id)
	if err != nil {
		return nil, err
	}
	return &APIKeysResponse{
		GeminiAPIKey: MaskKey(user.GeminiAPIKey),
		OpenAIAPIKey: MaskKey(user.OpenAIAPIKey),
		HasGeminiKey: user.GeminiAPIKey != nil && *user.GeminiAPIKey != "",
		HasOpenAIKey: user.OpenAIAPIKey != nil && *user.OpenAIAPIKey != "",
	}, nil
}

func (s *ServiceImpl) GetStats(ctx context.Context, id int) (*Stats, error) {
	return s.repo.Stats(ctx, id)
}

func (s *ServiceImpl) DeleteAccount(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}

// MaskKey hides all but the edges of a stored key. Short keys are hidden
// entirely; unset keys stay nil.
func MaskKey(key *string) *string {
	if key == nil || *key == "" {
		return nil
	}
	masked := "***"
	if k := *key; len(k) > 8 {
		masked = k[:4] + "***" + k[len(k)-4:]
	}
	return &masked
}

func toProfile(user *User) *Profile {
	return &Profile{
		ID:              user.ID,
		Username:        user.Username,
		Email:           user.Email,
		Nickname:        user.Nickname,
		Avatar:          user.Avatar,
		DefaultProvider: user.DefaultProvider,
		DefaultModel:    user.DefaultModel,
		Temperature:     user.Temperature,
		IsAdmin:         user.IsAdmin,
	}
}
