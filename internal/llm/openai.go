package llm

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"HaruChat/be/internal/config"
)

const (
	contentTypeJSON = "application/json"

	openAIDoneSentinel = "[DONE]"
)

// OpenAIAdapter speaks the chat-completions API of OpenAI and of any
// compatible server reachable under the configured base URL.
type OpenAIAdapter struct {
	apiKey       string
	baseURL      string
	defaultModel string
	models       []string
}

func NewOpenAIAdapter(cfg config.ProviderConfig) *OpenAIAdapter {
	return &OpenAIAdapter{
		apiKey:       cfg.APIKey,
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		defaultModel: cfg.DefaultModel,
		models:       cfg.Models,
	}
}

func (a *OpenAIAdapter) Name() string         { return ProviderOpenAI }
func (a *OpenAIAdapter) HasCredential() bool  { return a.apiKey != "" }
func (a *OpenAIAdapter) DefaultModel() string { return a.defaultModel }
func (a *OpenAIAdapter) Models() []string     { return a.models }

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIChatPayload struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens"`
	Stream      bool            `json:"stream,omitempty"`
}

type openAIChatResponse struct {
	Choices []openai.ChatCompletionChoice `json:"choices"`
	Usage   *openai.Usage                 `json:"usage"`
}

type openAIStreamChunk struct {
	Choices []openai.ChatCompletionStreamChoice `json:"choices"`
	Usage   *openai.Usage                       `json:"usage"`
}

func fromOpenAIUsage(u *openai.Usage) Usage {
	return Usage{
		PromptTokens:     u.PromptTokens,
		CompletionTokens: u.CompletionTokens,
		TotalTokens:      u.TotalTokens,
	}
}

// toOpenAIRole normalizes Gemini's "model" to "assistant"; other roles pass
// through unchanged.
func toOpenAIRole(role string) string {
	if role == geminiRoleModel {
		return openai.ChatMessageRoleAssistant
	}
	return role
}

func (a *OpenAIAdapter) BuildRequest(req ChatRequest, stream bool) (*UpstreamRequest, error) {
	model := req.Model
	if model == "" {
		model = a.defaultModel
	}

	messages := make([]openAIMessage, 0, len(req.Messages))
	for _, msg := range req.Messages {
		messages = append(messages, openAIMessage{
			Role:    toOpenAIRole(msg.Role),
			Content: msg.Content,
		})
	}

	body, err := json.Marshal(openAIChatPayload{
		Model:       model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Stream:      stream,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal openai payload: %w", err)
	}

	header := make(http.Header)
	header.Set("Content-Type", contentTypeJSON)
	header.Set("Authorization", "Bearer "+a.apiKey)

	return &UpstreamRequest{URL: a.baseURL + "/chat/completions", Header: header, Body: body}, nil
}

func (a *OpenAIAdapter) ParseResponse(body []byte) (*ChatResult, error) {
	var resp openAIChatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &DecodeError{Provider: ProviderOpenAI, Err: err}
	}

	result := &ChatResult{}
	if len(resp.Choices) > 0 {
		result.Content = resp.Choices[0].Message.Content
	}
	if resp.Usage != nil {
		usage := fromOpenAIUsage(resp.Usage)
		result.Usage = &usage
	}

	return result, nil
}

func (a *OpenAIAdapter) ParseStreamChunk(payload []byte) ([]StreamEvent, error) {
	if string(payload) == openAIDoneSentinel {
		return nil, errEndOfStream
	}

	var chunk openAIStreamChunk
	if err := json.Unmarshal(payload, &chunk); err != nil {
		return nil, &DecodeError{Provider: ProviderOpenAI, Err: err}
	}

	var events []StreamEvent
	if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
		events = append(events, ContentEvent(chunk.Choices[0].Delta.Content))
	}
	if chunk.Usage != nil {
		events = append(events, UsageEvent(fromOpenAIUsage(chunk.Usage)))
	}

	return events, nil
}
