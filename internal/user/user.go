package user

import "time"

type User struct {
	ID              int        `db:"id" json:"id"`
	Username        string     `db:"username" json:"username"`
	Email           string     `db:"email" json:"email"`
	PasswordHash    string     `db:"password_hash" json:"-"`
	Nickname        *string    `db:"nickname" json:"nickname"`
	Avatar          *string    `db:"avatar" json:"avatar"`
	DefaultProvider string     `db:"default_provider" json:"default_provider"`
	DefaultModel    string     `db:"default_model" json:"default_model"`
	Temperature     float64    `db:"temperature" json:"temperature"`
	GeminiAPIKey    *string    `db:"gemini_api_key" json:"-"`
	OpenAIAPIKey    *string    `db:"openai_api_key" json:"-"`
	IsActive        bool       `db:"is_active" json:"is_active"`
	IsAdmin         bool       `db:"is_admin" json:"is_admin"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
	LastLoginAt     *time.Time `db:"last_login_at" json:"last_login_at"`
}

// Stats aggregates a user's chat history.
type Stats struct {
	SessionCount int `db:"session_count" json:"session_count"`
	MessageCount int `db:"message_count" json:"message_count"`
	TotalTokens  int `db:"total_tokens" json:"total_tokens"`
}
