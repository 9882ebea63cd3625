package session

import "time"

type Session struct {
	ID           int       `db:"id" json:"id"`
	UserID       int       `db:"user_id" json:"-"`
	Title        string    `db:"title" json:"title"`
	Provider     string    `db:"provider" json:"provider"`
	Model        string    `db:"model" json:"model"`
	MessageCount int       `db:"message_count" json:"message_count"`
	TotalTokens  int       `db:"total_tokens" json:"total_tokens"`
	IsArchived   bool      `db:"is_archived" json:"is_archived"`
	IsPinned     bool      `db:"is_pinned" json:"is_pinned"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

type Message struct {
	ID               int       `db:"id" json:"id"`
	SessionID        int       `db:"session_id" json:"-"`
	Role             string    `db:"role" json:"role"`
	Content          string    `db:"content" json:"content"`
	ThinkingContent  *string   `db:"thinking_content" json:"thinking_content"`
	PromptTokens     int       `db:"prompt_tokens" json:"prompt_tokens"`
	CompletionTokens int       `db:"completion_tokens" json:"completion_tokens"`
	TotalTokens      int       `db:"total_tokens" json:"total_tokens"`
	Model            *string   `db:"model" json:"model"`
	Provider         *string   `db:"provider" json:"provider"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// Detail is a session together with its full message history.
type Detail struct {
	Session
	Messages []Message `json:"messages"`
}
