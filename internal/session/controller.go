package session

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"HaruChat/be/internal/user"
)

type ControllerImpl struct {
	service     Service
	requireAuth gin.HandlerFunc
}

func NewControllerImpl(service Service, requireAuth gin.HandlerFunc) *ControllerImpl {
	return &ControllerImpl{service: service, requireAuth: requireAuth}
}

func (c *ControllerImpl) List(ctx *gin.Context) {
	var q ListQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	userID, _ := user.CurrentID(ctx)
	sessions, err := c.service.List(ctx.Request.Context(), userID, q)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, sessions)
}

func (c *ControllerImpl) Create(ctx *gin.Context) {
	var req CreateSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	userID, _ := user.CurrentID(ctx)
	session, err := c.service.Create(ctx.Request.Context(), userID, req)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, session)
}

func (c *ControllerImpl) Search(ctx *gin.Context) {
	var q SearchQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	userID, _ := user.CurrentID(ctx)
	sessions, err := c.service.Search(ctx.Request.Context(), userID, q)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, sessions)
}

func (c *ControllerImpl) Get(ctx *gin.Context) {
	userID, sessionID, ok := ids(ctx)
	if !ok {
		return
	}

	detail, err := c.service.Get(ctx.Request.Context(), userID, sessionID)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, detail)
}

func (c *ControllerImpl) Update(ctx *gin.Context) {
	userID, sessionID, ok := ids(ctx)
	if !ok {
		return
	}

	var req UpdateSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	session, err := c.service.Update(ctx.Request.Context(), userID, sessionID, req)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, session)
}

func (c *ControllerImpl) Delete(ctx *gin.Context) {
	userID, sessionID, ok := ids(ctx)
	if !ok {
		return
	}

	if err := c.service.Delete(ctx.Request.Context(), userID, sessionID); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "session deleted"})
}

// setFlag serves the archive and pin shortcuts.
func (c *ControllerImpl) setFlag(build func(bool) UpdateSessionRequest, value bool, message string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		userID, sessionID, ok := ids(ctx)
		if !ok {
			return
		}

		if _, err := c.service.Update(ctx.Request.Context(), userID, sessionID, build(value)); err != nil {
			writeError(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"message": message})
	}
}

func archived(v bool) UpdateSessionRequest { return UpdateSessionRequest{IsArchived: &v} }

func pinned(v bool) UpdateSessionRequest { return UpdateSessionRequest{IsPinned: &v} }

func (c *ControllerImpl) ListMessages(ctx *gin.Context) {
	userID, sessionID, ok := ids(ctx)
	if !ok {
		return
	}

	var q MessageQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	messages, err := c.service.ListMessages(ctx.Request.Context(), userID, sessionID, q)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, messages)
}

func (c *ControllerImpl) CreateMessage(ctx *gin.Context) {
	userID, sessionID, ok := ids(ctx)
	if !ok {
		return
	}

	var req CreateMessageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	message, err := c.service.CreateMessage(ctx.Request.Context(), userID, sessionID, req)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, message)
}

func (c *ControllerImpl) DeleteMessage(ctx *gin.Context) {
	userID, sessionID, ok := ids(ctx)
	if !ok {
		return
	}
	messageID, err := strconv.Atoi(ctx.Param("message_id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}

	if err := c.service.DeleteMessage(ctx.Request.Context(), userID, sessionID, messageID); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "message deleted"})
}

func (c *ControllerImpl) ClearMessages(ctx *gin.Context) {
	userID, sessionID, ok := ids(ctx)
	if !ok {
		return
	}

	if err := c.service.ClearMessages(ctx.Request.Context(), userID, sessionID); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "messages cleared"})
}

func ids(ctx *gin.Context) (userID, sessionID int, ok bool) {
	userID, _ = user.CurrentID(ctx)
	sessionID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return 0, 0, false
	}
	return userID, sessionID, true
}

func writeError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, ErrMessageNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		_ = ctx.Error(err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func (c *ControllerImpl) RegisterRoutes(router *gin.Engine) {
	sessions := router.Group("/api/sessions", c.requireAuth)
	sessions.GET("", c.List)
	sessions.POST("", c.Create)
	sessions.GET("/search", c.Search)
	sessions.GET("/:id", c.Get)
	sessions.PATCH("/:id", c.Update)
	sessions.DELETE("/:id", c.Delete)
	sessions.POST("/:id/archive", c.setFlag(archived, true, "session archived"))
	sessions.POST("/:id/unarchive", c.setFlag(archived, false, "session unarchived"))
	sessions.POST("/:id/pin", c.setFlag(pinned, true, "session pinned"))
	sessions.POST("/:id/unpin", c.setFlag(pinned, false, "session unpinned"))

	sessions.GET("/:id/messages", c.ListMessages)
	sessions.POST("/:id/messages", c.CreateMessage)
	sessions.DELETE("/:id/messages", c.ClearMessages)
	sessions.DELETE("/:id/messages/:message_id", c.DeleteMessage)
}
