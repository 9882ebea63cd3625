package session

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrMessageNotFound = errors.New("message not found")
)

const (
	DefaultTitle    = "New chat"
	DefaultProvider = "gemini"
	DefaultModel    = "gemini-2.5-flash"
)

type Controller interface {
	List(ctx *gin.Context)
	Create(ctx *gin.Context)
	Search(ctx *gin.Context)
	Get(ctx *gin.Context)
	Update(ctx *gin.Context)
	Delete(ctx *gin.Context)
	ListMessages(ctx *gin.Context)
	CreateMessage(ctx *gin.Context)
	DeleteMessage(ctx *gin.Context)
	ClearMessages(ctx *gin.Context)
}

type Service interface {
	List(ctx context.Context, userID int, q ListQuery) ([]Session, error)
	Create(ctx context.Context, userID int, req CreateSessionRequest) (*Session, error)
	Search(ctx context.Context, userID int, q SearchQuery) ([]Session, error)
	Get(ctx context.Context, userID, sessionID int) (*Detail, error)
	Update(ctx context.Context, userID, sessionID int, req UpdateSessionRequest) (*Session, error)
	Delete(ctx context.Context, userID, sessionID int) error

	ListMessages(ctx context.Context, userID, sessionID int, q MessageQuery) ([]Message, error)
	CreateMessage(ctx context.Context, userID, sessionID int, req CreateMessageRequest) (*Message, error)
	DeleteMessage(ctx context.Context, userID, sessionID, messageID int) error
	ClearMessages(ctx context.Context, userID, sessionID int) error
}

// Repository lookups by session id are always scoped to the owning user.
type Repository interface {
	List(ctx context.Context, userID int, includeArchived bool, limit, offset int) ([]Session, error)
	Search(ctx context.Context, userID int, query string, limit int) ([]Session, error)
	Get(ctx context.Context, userID, sessionID int) (*Session, error)
	Create(ctx context.Context, s *Session) error
	Update(ctx context.Context, s *Session) error
	Delete(ctx context.Context, userID, sessionID int) error

	Messages(ctx context.Context, sessionID, limit, offset int) ([]Message, error)
	AllMessages(ctx context.Context, sessionID int) ([]Message, error)
	CreateMessage(ctx context.Context, m *Message) error
	DeleteMessage(ctx context.Context, sessionID, messageID int) error
	ClearMessages(ctx context.Context, sessionID int) error
}

type ListQuery struct {
	IncludeArchived bool `form:"include_archived"`
	Limit           int  `form:"limit,default=50" binding:"min=1,max=100"`
	Offset          int  `form:"offset,default=0" binding:"min=0"`
}

type SearchQuery struct {
	Q     string `form:"q" binding:"required,min=1"`
	Limit int    `form:"limit,default=20" binding:"min=1,max=50"`
}

type MessageQuery struct {
	Limit  int `form:"limit,default=100" binding:"min=1,max=500"`
	Offset int `form:"offset,default=0" binding:"min=0"`
}

type CreateSessionRequest struct {
	Title    *string `json:"title" binding:"omitempty,max=200"`
	Provider *string `json:"provider"`
	Model    *string `json:"model"`
}

// UpdateSessionRequest only touches the fields present in the request.
type UpdateSessionRequest struct {
	Title      *string `json:"title" binding:"omitempty,max=200"`
	IsArchived *bool   `json:"is_archived"`
	IsPinned   *bool   `json:"is_pinned"`
}

type CreateMessageRequest struct {
	Role             string  `json:"role" binding:"required"`
	Content          *string `json:"content" binding:"required"`
	ThinkingContent  *string `json:"thinking_content"`
	PromptTokens     int     `json:"prompt_tokens" binding:"min=0"`
	CompletionTokens int     `json:"completion_tokens" binding:"min=0"`
	TotalTokens      int     `json:"total_tokens" binding:"min=0"`
	Model            *string `json:"model"`
	Provider         *string `json:"provider"`
}
