package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"HaruChat/be/internal/config"
)

func newTestGeminiAdapter() *GeminiAdapter {
	return NewGeminiAdapter(config.ProviderConfig{
		APIKey:       "g-key",
		BaseURL:      "https://gemini.test/v1beta/",
		DefaultModel: "gemini-2.5-flash",
	})
}

func TestGeminiBuildRequestURL(t *testing.T) {
	tests := []struct {
		name    string
		model   string
		stream  bool
		wantURL string
	}{
		{
			name:    "single shot falls back to default model",
			wantURL: "https://gemini.test/v1beta/models/gemini-2.5-flash:generateContent?key=g-key",
		},
		{
			name:    "streaming uses alt=sse",
			stream:  true,
			wantURL: "https://gemini.test/v1beta/models/gemini-2.5-flash:streamGenerateContent?alt=sse&key=g-key",
		},
		{
			name:    "explicit model",
			model:   "gemini-2.5-pro",
			wantURL: "https://gemini.test/v1beta/models/gemini-2.5-pro:generateContent?key=g-key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := DefaultChatRequest()
			req.Model = tt.model
			req.Messages = []Message{{Role: RoleUser, Content: "hi"}}

			upstream, err := newTestGeminiAdapter().BuildRequest(req, tt.stream)
			require.NoError(t, err)
			assert.Equal(t, tt.wantURL, upstream.URL)
			assert.Equal(t, "application/json", upstream.Header.Get("Content-Type"))
			assert.Empty(t, upstream.Header.Get("Authorization"))
		})
	}
}

func TestGeminiBuildRequestBody(t *testing.T) {
	tests := []struct {
		name            string
		enableSearch    bool
		includeThoughts bool
		wantTools       bool
		wantThinking    bool
	}{
		{name: "plain"},
		{name: "google search", enableSearch: true, wantTools: true},
		{name: "thoughts", includeThoughts: true, wantThinking: true},
		{name: "search and thoughts", enableSearch: true, includeThoughts: true, wantTools: true, wantThinking: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := DefaultChatRequest()
			req.Temperature = 0.2
			req.MaxTokens = 256
			req.EnableSearch = tt.enableSearch
			req.IncludeThoughts = tt.includeThoughts
			req.Messages = []Message{
				{Role: RoleSystem, Content: "be brief"},
				{Role: RoleUser, Content: "hello"},
				{Role: RoleAssistant, Content: "hi there"},
			}

			upstream, err := newTestGeminiAdapter().BuildRequest(req, false)
			require.NoError(t, err)

			var body map[string]any
			require.NoError(t, json.Unmarshal(upstream.Body, &body))

			contents := body["contents"].([]any)
			require.Len(t, contents, 3)
			roles := make([]string, 0, len(contents))
			for _, c := range contents {
				roles = append(roles, c.(map[string]any)["role"].(string))
			}
			assert.Equal(t, []string{"model", "user", "model"}, roles)
			firstPart := contents[1].(map[string]any)["parts"].([]any)[0].(map[string]any)
			assert.Equal(t, "hello", firstPart["text"])

			genCfg := body["generationConfig"].(map[string]any)
			assert.InDelta(t, 0.2, genCfg["temperature"], 1e-9)
			assert.EqualValues(t, 256, genCfg["maxOutputTokens"])

			tools, hasTools := body["tools"]
			assert.Equal(t, tt.wantTools, hasTools)
			if tt.wantTools {
				assert.Equal(t, []any{map[string]any{"google_search": map[string]any{}}}, tools)
			}

			thinking, hasThinking := body["thinkingConfig"]
			assert.Equal(t, tt.wantThinking, hasThinking)
			if tt.wantThinking {
				assert.Equal(t, map[string]any{"includeThoughts": true}, thinking)
			}
		})
	}
}

func TestToGeminiRoleIsIdempotent(t *testing.T) {
	for _, role := range []string{RoleUser, RoleAssistant, RoleSystem, "model", "tool", ""} {
		once := toGeminiRole(role)
		assert.Contains(t, []string{"user", "model"}, once)
		assert.Equal(t, once, toGeminiRole(once), "role %q", role)
		assert.Equal(t, role == RoleUser, once == "user", "role %q", role)
	}
}

func TestGeminiParseResponse(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		wantContent  string
		wantThinking *string
		wantUsage    *Usage
	}{
		{
			name:         "thought and answer parts",
			body:         `{"candidates":[{"content":{"parts":[{"thought":true,"text":"A"},{"text":"B"}]}}]}`,
			wantContent:  "B",
			wantThinking: ptr("A"),
		},
		{
			name: "usage metadata",
			body: `{"candidates":[{"content":{"parts":[{"text":"x"},{"text":"y"}]}}],
				"usageMetadata":{"promptTokenCount":3,"candidatesTokenCount":4,"totalTokenCount":7}}`,
			wantContent: "xy",
			wantUsage:   &Usage{PromptTokens: 3, CompletionTokens: 4, TotalTokens: 7},
		},
		{
			name:        "no candidates",
			body:        `{}`,
			wantContent: "",
		},
		{
			name:        "candidate without content",
			body:        `{"candidates":[{"finishReason":"SAFETY"}]}`,
			wantContent: "",
		},
		{
			name:         "empty thought part still marks thinking present",
			body:         `{"candidates":[{"content":{"parts":[{"thought":true,"text":""}]}}]}`,
			wantThinking: ptr(""),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := newTestGeminiAdapter().ParseResponse([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.wantContent, result.Content)
			assert.Equal(t, tt.wantThinking, result.ThinkingContent)
			assert.Equal(t, tt.wantUsage, result.Usage)
		})
	}
}

func TestGeminiParseResponseMalformed(t *testing.T) {
	_, err := newTestGeminiAdapter().ParseResponse([]byte(`{not json`))
	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, ProviderGemini, decodeErr.Provider)
}

func TestGeminiParseStreamChunk(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    []StreamEvent
	}{
		{
			name:    "content and thinking in order",
			payload: `{"candidates":[{"content":{"parts":[{"thought":true,"text":"hmm"},{"text":"answer"}]}}]}`,
			want:    []StreamEvent{ThinkingEvent("hmm"), ContentEvent("answer")},
		},
		{
			name:    "empty text parts emit nothing",
			payload: `{"candidates":[{"content":{"parts":[{"thought":true,"text":""},{"text":""}]}}]}`,
			want:    nil,
		},
		{
			name:    "usage after content",
			payload: `{"candidates":[{"content":{"parts":[{"text":"hi"}]}}],"usageMetadata":{"promptTokenCount":1,"candidatesTokenCount":2,"totalTokenCount":3}}`,
			want:    []StreamEvent{ContentEvent("hi"), UsageEvent(Usage{PromptTokens: 1, CompletionTokens: 2, TotalTokens: 3})},
		},
		{
			name:    "usage only",
			payload: `{"usageMetadata":{"promptTokenCount":5}}`,
			want:    []StreamEvent{UsageEvent(Usage{PromptTokens: 5})},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := newTestGeminiAdapter().ParseStreamChunk([]byte(tt.payload))
			require.NoError(t, err)
			assert.Equal(t, tt.want, events)
		})
	}
}

func ptr(s string) *string {
	return &s
}
