package llm

import (
	"net/http"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 4096
)

type Message struct {
	Role    string `json:"role" binding:"required"`
	Content string `json:"content"`
}

// ChatRequest is the provider-agnostic chat call. EnableSearch and
// IncludeThoughts are only honoured by Gemini.
type ChatRequest struct {
	Provider        string    `json:"provider"`
	Model           string    `json:"model,omitempty"`
	Messages        []Message `json:"messages" binding:"required,dive"`
	Temperature     float64   `json:"temperature"`
	MaxTokens       int       `json:"max_tokens"`
	Stream          bool      `json:"stream"`
	EnableSearch    bool      `json:"enable_search"`
	IncludeThoughts bool      `json:"include_thoughts"`
}

// DefaultChatRequest returns a request carrying the documented defaults, so
// that decoding a client body into it only overrides the fields sent.
func DefaultChatRequest() ChatRequest {
	return ChatRequest{
		Provider:    ProviderGemini,
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
	}
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type ChatResult struct {
	Content         string  `json:"content"`
	ThinkingContent *string `json:"thinking_content"`
	Usage           *Usage  `json:"usage"`
}

func (r *ChatResult) appendThinking(text string) {
	if r.ThinkingContent == nil {
		r.ThinkingContent = new(string)
	}
	*r.ThinkingContent += text
}

// Apply folds one stream event into the result. Usage events replace the
// previous usage since providers report cumulative counts.
func (r *ChatResult) Apply(ev StreamEvent) {
	switch ev.Type {
	case EventContent:
		r.Content += ev.Text
	case EventThinking:
		r.appendThinking(ev.Text)
	case EventUsage:
		if ev.Usage != nil {
			u := *ev.Usage
			r.Usage = &u
		}
	}
}

type EventType string

const (
	EventContent  EventType = "content"
	EventThinking EventType = "thinking"
	EventUsage    EventType = "usage"
	EventError    EventType = "error"
	EventDone     EventType = "done"
)

// StreamEvent is one normalized item of a relayed stream. Text is set for
// content, thinking and error events; Usage only for usage events.
type StreamEvent struct {
	Type  EventType
	Text  string
	Usage *Usage
}

func ContentEvent(text string) StreamEvent  { return StreamEvent{Type: EventContent, Text: text} }
func ThinkingEvent(text string) StreamEvent { return StreamEvent{Type: EventThinking, Text: text} }
func ErrorEvent(message string) StreamEvent { return StreamEvent{Type: EventError, Text: message} }
func DoneEvent() StreamEvent                { return StreamEvent{Type: EventDone} }

func UsageEvent(u Usage) StreamEvent {
	return StreamEvent{Type: EventUsage, Usage: &u}
}

// IsTerminal reports whether no further events follow this one.
func (e StreamEvent) IsTerminal() bool {
	return e.Type == EventDone || e.Type == EventError
}

// UpstreamRequest is a fully built provider call.
type UpstreamRequest struct {
	URL    string
	Header http.Header
	Body   []byte
}

// Adapter translates between the provider-agnostic model and one
// provider's wire format.
type Adapter interface {
	Name() string
	HasCredential() bool
	DefaultModel() string
	Models() []string
	BuildRequest(req ChatRequest, stream bool) (*UpstreamRequest, error)
	ParseResponse(body []byte) (*ChatResult, error)
	// ParseStreamChunk decodes the payload of one `data: ` line. It returns
	// errEndOfStream for a provider end sentinel and a decode error for
	// payloads that are not valid JSON.
	ParseStreamChunk(payload []byte) ([]StreamEvent, error)
}
