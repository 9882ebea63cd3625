package chatbot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"HaruChat/be/internal/llm"
)

// ChatService turns gateway calls into HTTP-ready results and SSE frames.
type ChatService struct {
	gateway Gateway
	logger  *zap.Logger
}

func NewChatService(gateway Gateway, logger *zap.Logger) *ChatService {
	return &ChatService{gateway: gateway, logger: logger}
}

func (cs *ChatService) Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResult, error) {
	return cs.gateway.Send(ctx, req)
}

func (cs *ChatService) Models() map[string]ModelsEntry {
	models := make(map[string]ModelsEntry)
	for _, info := range cs.gateway.Catalog() {
		models[info.Name] = ModelsEntry{Models: info.Models, Default: info.Default}
	}
	return models
}

// StreamChatResponse relays the gateway stream to w, one SSE frame per
// event. Returning for any reason cancels the upstream relay.
func (cs *ChatService) StreamChatResponse(ctx context.Context, req llm.ChatRequest, w io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var result llm.ChatResult
	for ev := range cs.gateway.Stream(ctx, req) {
		result.Apply(ev)

		if err := writeSSEResponse(w, toStreamResponse(ev)); err != nil {
			return err
		}

		switch ev.Type {
		case llm.EventError:
			cs.logger.Warn("chat stream ended with error",
				zap.String("provider", req.Provider),
				zap.String("error", ev.Text),
			)
			return nil
		case llm.EventDone:
			fields := []zap.Field{
				zap.String("provider", req.Provider),
				zap.Int("content_length", len(result.Content)),
			}
			if result.Usage != nil {
				fields = append(fields, zap.Int("total_tokens", result.Usage.TotalTokens))
			}
			cs.logger.Debug("chat stream finished", fields...)
			return nil
		}
	}

	return ctx.Err()
}

func toStreamResponse(ev llm.StreamEvent) StreamResponse {
	switch ev.Type {
	case llm.EventError:
		message := ev.Text
		if message == "" {
			message = "unknown error"
		}
		return StreamResponse{Error: message}
	case llm.EventUsage:
		return StreamResponse{Type: ev.Type, Usage: ev.Usage}
	case llm.EventDone:
		return StreamResponse{Type: ev.Type}
	default:
		return StreamResponse{Type: ev.Type, Data: ev.Text}
	}
}

func writeSSEResponse(w io.Writer, resp StreamResponse) error {
	jsonData, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to marshal SSE response: %w", err)
	}

	if _, err := fmt.Fprintf(w, "data: %s\n\n", jsonData); err != nil {
		return fmt.Errorf("failed to write SSE message: %w", err)
	}

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	return nil
}
