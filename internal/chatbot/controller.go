package chatbot

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"HaruChat/be/internal/llm"
)

const (
	serviceName    = "HaruChat API"
	serviceVersion = "2.0.0"
)

type ChatController struct {
	chatService *ChatService
	logger      *zap.Logger
}

func NewChatController(chatService *ChatService, logger *zap.Logger) *ChatController {
	return &ChatController{chatService: chatService, logger: logger}
}

func (cc *ChatController) Root(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"service":   serviceName,
		"version":   serviceVersion,
		"providers": []string{llm.ProviderGemini, llm.ProviderOpenAI},
		"features":  []string{"streaming", "thinking", "google_search", "sessions", "auth"},
	})
}

func (cc *ChatController) Health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (cc *ChatController) Models(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, cc.chatService.Models())
}

func (cc *ChatController) Chat(ctx *gin.Context) {
	req := llm.DefaultChatRequest()
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	result, err := cc.chatService.Chat(ctx.Request.Context(), req)
	if err != nil {
		status, message := errorStatus(err)
		ctx.JSON(status, gin.H{"error": message})
		return
	}
	ctx.JSON(http.StatusOK, result)
}

func (cc *ChatController) ChatStream(ctx *gin.Context) {
	req := llm.DefaultChatRequest()
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	header := ctx.Writer.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")
	ctx.Status(http.StatusOK)
	ctx.Writer.WriteHeaderNow()

	err := cc.chatService.StreamChatResponse(ctx.Request.Context(), req, ctx.Writer)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			cc.logger.Debug("client disconnected during streaming")
			return
		}
		// Headers are already sent, so the failure can only be logged.
		cc.logger.Warn("chat stream write failed", zap.Error(err))
	}
}

// errorStatus maps gateway errors onto a status code and client message.
func errorStatus(err error) (int, string) {
	var upstreamErr *llm.UpstreamError
	switch {
	case errors.Is(err, llm.ErrUnsupportedProvider):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, llm.ErrMissingCredential):
		return http.StatusInternalServerError, err.Error()
	case errors.As(err, &upstreamErr):
		return upstreamErr.StatusCode, upstreamErr.Body
	default:
		return http.StatusInternalServerError, err.Error()
	}
}

func (cc *ChatController) RegisterRoutes(router *gin.Engine) {
	router.GET("/", cc.Root)
	router.GET("/health", cc.Health)

	api := router.Group("/api")
	api.GET("/models", cc.Models)
	api.POST("/chat", cc.Chat)
	api.POST("/chat/stream", cc.ChatStream)
}
