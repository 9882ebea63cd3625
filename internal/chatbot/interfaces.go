package chatbot

import (
	"context"

	"HaruChat/be/internal/llm"
)

// Gateway is the part of llm.Gateway the chat endpoints depend on.
type Gateway interface {
	Send(ctx context.Context, req llm.ChatRequest) (*llm.ChatResult, error)
	Stream(ctx context.Context, req llm.ChatRequest) <-chan llm.StreamEvent
	Catalog() []llm.ProviderInfo
}

// StreamResponse is one outgoing SSE frame. Error frames carry only Error.
type StreamResponse struct {
	Type  llm.EventType `json:"type,omitempty"`
	Data  string        `json:"data,omitempty"`
	Usage *llm.Usage    `json:"usage,omitempty"`
	Error string        `json:"error,omitempty"`
}

type ModelsEntry struct {
	Models  []string `json:"models"`
	Default string   `json:"default"`
}
