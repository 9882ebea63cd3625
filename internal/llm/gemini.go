package llm

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"HaruChat/be/internal/config"
)

const (
	geminiRoleUser  = "user"
	geminiRoleModel = "model"
)

// GeminiAdapter speaks the Gemini REST API, including its alt=sse stream.
type GeminiAdapter struct {
	apiKey       string
	baseURL      string
	defaultModel string
	models       []string
}

func NewGeminiAdapter(cfg config.ProviderConfig) *GeminiAdapter {
	return &GeminiAdapter{
		apiKey:       cfg.APIKey,
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		defaultModel: cfg.DefaultModel,
		models:       cfg.Models,
	}
}

func (a *GeminiAdapter) Name() string         { return ProviderGemini }
func (a *GeminiAdapter) HasCredential() bool  { return a.apiKey != "" }
func (a *GeminiAdapter) DefaultModel() string { return a.defaultModel }
func (a *GeminiAdapter) Models() []string     { return a.models }

type geminiPart struct {
	Text    string `json:"text"`
	Thought bool   `json:"thought,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiThinkingConfig struct {
	IncludeThoughts bool `json:"includeThoughts"`
}

type geminiTool struct {
	GoogleSearch *struct{} `json:"google_search,omitempty"`
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
	Tools            []geminiTool           `json:"tools,omitempty"`
	ThinkingConfig   *geminiThinkingConfig  `json:"thinkingConfig,omitempty"`
}

type geminiUsageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

type geminiCandidate struct {
	Content *geminiContent `json:"content"`
}

type geminiResponse struct {
	Candidates    []geminiCandidate    `json:"candidates"`
	UsageMetadata *geminiUsageMetadata `json:"usageMetadata"`
}

func (r *geminiResponse) parts() []geminiPart {
	if len(r.Candidates) == 0 || r.Candidates[0].Content == nil {
		return nil
	}
	return r.Candidates[0].Content.Parts
}

func (u *geminiUsageMetadata) toUsage() Usage {
	return Usage{
		PromptTokens:     u.PromptTokenCount,
		CompletionTokens: u.CandidatesTokenCount,
		TotalTokens:      u.TotalTokenCount,
	}
}

// toGeminiRole keeps "user" and maps every other role to "model".
func toGeminiRole(role string) string {
	if role == RoleUser {
		return geminiRoleUser
	}
	return geminiRoleModel
}

func (a *GeminiAdapter) BuildRequest(req ChatRequest, stream bool) (*UpstreamRequest, error) {
	model := req.Model
	if model == "" {
		model = a.defaultModel
	}

	query := url.Values{}
	query.Set("key", a.apiKey)
	operation := "generateContent"
	if stream {
		operation = "streamGenerateContent"
		query.Set("alt", "sse")
	}
	endpoint := fmt.Sprintf("%s/models/%s:%s?%s", a.baseURL, url.PathEscape(model), operation, query.Encode())

	contents := make([]geminiContent, 0, len(req.Messages))
	for _, msg := range req.Messages {
		contents = append(contents, geminiContent{
			Role:  toGeminiRole(msg.Role),
			Parts: []geminiPart{{Text: msg.Content}},
		})
	}

	payload := geminiRequest{
		Contents: contents,
		GenerationConfig: geminiGenerationConfig{
			Temperature:     req.Temperature,
			MaxOutputTokens: req.MaxTokens,
		},
	}
	if req.EnableSearch {
		payload.Tools = []geminiTool{{GoogleSearch: &struct{}{}}}
	}
	if req.IncludeThoughts {
		payload.ThinkingConfig = &geminiThinkingConfig{IncludeThoughts: true}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal gemini payload: %w", err)
	}

	header := make(http.Header)
	header.Set("Content-Type", contentTypeJSON)

	return &UpstreamRequest{URL: endpoint, Header: header, Body: body}, nil
}

func (a *GeminiAdapter) ParseResponse(body []byte) (*ChatResult, error) {
	var resp geminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &DecodeError{Provider: ProviderGemini, Err: err}
	}

	result := &ChatResult{}
	for _, part := range resp.parts() {
		if part.Thought {
			result.appendThinking(part.Text)
		} else {
			result.Content += part.Text
		}
	}
	if resp.UsageMetadata != nil {
		usage := resp.UsageMetadata.toUsage()
		result.Usage = &usage
	}

	return result, nil
}

func (a *GeminiAdapter) ParseStreamChunk(payload []byte) ([]StreamEvent, error) {
	var chunk geminiResponse
	if err := json.Unmarshal(payload, &chunk); err != nil {
		return nil, &DecodeError{Provider: ProviderGemini, Err: err}
	}

	var events []StreamEvent
	for _, part := range chunk.parts() {
		if part.Text == "" {
			continue
		}
		if part.Thought {
			events = append(events, ThinkingEvent(part.Text))
		} else {
			events = append(events, ContentEvent(part.Text))
		}
	}
	if chunk.UsageMetadata != nil {
		events = append(events, UsageEvent(chunk.UsageMetadata.toUsage()))
	}

	return events, nil
}
