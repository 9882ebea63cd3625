package user

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already exists")
	ErrEmailTaken    = errors.New("email already registered")
	ErrWrongPassword = errors.New("old password is incorrect")
)

const (
	DefaultProvider    = "gemini"
	DefaultModel       = "gemini-2.5-flash"
	DefaultTemperature = 0.7
)

type Controller interface {
	GetProfile(ctx *gin.Context)
	UpdateProfile(ctx *gin.Context)
	ChangePassword(ctx *gin.Context)
	UpdateAPIKeys(ctx *gin.Context)
	GetAPIKeys(ctx *gin.Context)
	GetStats(ctx *gin.Context)
	DeleteAccount(ctx *gin.Context)
}

type Service interface {
	GetUser(ctx context.Context, id int) (*User, error)
	GetUserByLogin(ctx context.Context, login string) (*User, error)
	CreateUser(ctx context.Context, req CreateUserRequest) (*User, error)
	RecordLogin(ctx context.Context, id int) error

	GetProfile(ctx context.Context, id int) (*Profile, error)
	UpdateProfile(ctx context.Context, id int, req UpdateProfileRequest) (*Profile, error)
	ChangePassword(ctx context.Context, id int, req ChangePasswordRequest) error
	UpdateAPIKeys(ctx context.Context, id int, req UpdateAPIKeysRequest) error
	GetAPIKeys(ctx context.Context, id int) (*APIKeysResponse, error)
	GetStats(ctx context.Context, id int) (*Stats, error)
	DeleteAccount(ctx context.Context, id int) error
}

type Repository interface {
	GetById(ctx context.Context, id int) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	UpdateLastLogin(ctx context.Context, id int) error
	Delete(ctx context.Context, id int) error
	Stats(ctx context.Context, id int) (*Stats, error)
}

type CreateUserRequest struct {
	Username string  `json:"username" binding:"required,min=3,max=50"`
	Email    string  `json:"email" binding:"required,email,max=100"`
	Password string  `json:"password" binding:"required,min=6,max=100"`
	Nickname *string `json:"nickname" binding:"omitempty,max=50"`
}

// Profile is the public view of a user.
type Profile struct {
	ID              int     `json:"id"`
	Username        string  `json:"username"`
	Email           string  `json:"email"`
	Nickname        *string `json:"nickname"`
	Avatar          *string `json:"avatar"`
	DefaultProvider string  `json:"default_provider"`
	DefaultModel    string  `json:"default_model"`
	Temperature     float64 `json:"temperature"`
	IsAdmin         bool    `json:"is_admin"`
}

// UpdateProfileRequest only touches the fields present in the request.
type UpdateProfileRequest struct {
	Nickname        *string  `json:"nickname" binding:"omitempty,max=50"`
	Avatar          *string  `json:"avatar" binding:"omitempty,max=255"`
	DefaultProvider *string  `json:"default_provider"`
	DefaultModel    *string  `json:"default_model"`
	Temperature     *float64 `json:"temperature" binding:"omitempty,gte=0,lte=2"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6,max=100"`
}

type UpdateAPIKeysRequest struct {
	GeminiAPIKey *string `json:"gemini_api_key"`
	OpenAIAPIKey *string `json:"openai_api_key"`
}

type APIKeysResponse struct {
	GeminiAPIKey *string `json:"gemini_api_key"`
	OpenAIAPIKey *string `json:"openai_api_key"`
	HasGeminiKey bool    `json:"has_gemini_key"`
	HasOpenAIKey bool    `json:"has_openai_key"`
}
