package llm

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	om "github.com/elliotchance/orderedmap/v3"
	"go.uber.org/zap"

	"HaruChat/be/internal/config"
)

const defaultRequestTimeout = 120 * time.Second

// ProviderInfo describes one registered provider for model listings.
type ProviderInfo struct {
	Name       string   `json:"name"`
	Default    string   `json:"default"`
	Models     []string `json:"models"`
	Configured bool     `json:"configured"`
}

// Gateway is the single entry point for chat calls. It selects an adapter by
// provider name and runs either a single-shot call or a relayed stream.
type Gateway struct {
	// adapters keeps registration order for listings; it is only written
	// during construction.
	adapters *om.OrderedMap[string, Adapter]
	client   *http.Client
	relay    *Relay
	timeout  time.Duration
	logger   *zap.Logger
}

// NewGateway registers the Gemini and OpenAI-compatible adapters. The
// client may be shared across gateways; it should pool connections.
func NewGateway(cfg config.LLMConfig, client *http.Client, logger *zap.Logger) *Gateway {
	return newGateway(cfg.RequestTimeout, client, logger,
		NewGeminiAdapter(cfg.Gemini),
		NewOpenAIAdapter(cfg.OpenAI),
	)
}

func newGateway(timeout time.Duration, client *http.Client, logger *zap.Logger, adapters ...Adapter) *Gateway {
	if client == nil {
		client = &http.Client{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	g := &Gateway{
		adapters: om.NewOrderedMap[string, Adapter](),
		client:   client,
		relay:    NewRelay(client, timeout, logger),
		timeout:  timeout,
		logger:   logger,
	}
	for _, adapter := range adapters {
		g.adapters.Set(adapter.Name(), adapter)
	}
	return g
}

func (g *Gateway) adapterFor(provider string) (Adapter, error) {
	adapter, ok := g.adapters.Get(strings.ToLower(provider))
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, provider)
	}
	if !adapter.HasCredential() {
		return nil, fmt.Errorf("%w: %s", ErrMissingCredential, adapter.Name())
	}
	return adapter, nil
}

// Send performs a single-shot chat call. Errors are ErrUnsupportedProvider,
// ErrMissingCredential or *UpstreamError.
func (g *Gateway) Send(ctx context.Context, req ChatRequest) (*ChatResult, error) {
	adapter, err := g.adapterFor(req.Provider)
	if err != nil {
		return nil, err
	}

	upstream, err := adapter.BuildRequest(req, false)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	httpReq, err := newUpstreamRequest(ctx, upstream)
	if err != nil {
		return nil, err
	}

	g.logger.Debug("sending chat request",
		zap.String("provider", adapter.Name()),
		zap.String("model", req.Model),
		zap.Int("message_count", len(req.Messages)),
	)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, &UpstreamError{StatusCode: http.StatusBadGateway, Body: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UpstreamError{StatusCode: http.StatusBadGateway, Body: err.Error(), Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		g.logger.Warn("upstream chat rejected",
			zap.String("provider", adapter.Name()),
			zap.Int("status", resp.StatusCode),
		)
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	result, err := adapter.ParseResponse(body)
	if err != nil {
		return nil, &UpstreamError{StatusCode: http.StatusBadGateway, Body: string(body), Err: err}
	}
	return result, nil
}

// Stream starts a relayed chat stream. Validation failures are delivered as
// a single Error event so that callers already committed to a streaming
// response still see a terminal event.
func (g *Gateway) Stream(ctx context.Context, req ChatRequest) <-chan StreamEvent {
	adapter, err := g.adapterFor(req.Provider)
	if err != nil {
		events := make(chan StreamEvent, 1)
		events <- ErrorEvent(err.Error())
		close(events)
		return events
	}

	g.logger.Debug("starting chat stream",
		zap.String("provider", adapter.Name()),
		zap.String("model", req.Model),
		zap.Int("message_count", len(req.Messages)),
	)

	return g.relay.Stream(ctx, adapter, req)
}

// Catalog lists the registered providers in registration order.
func (g *Gateway) Catalog() []ProviderInfo {
	catalog := make([]ProviderInfo, 0, g.adapters.Len())
	for name, adapter := range g.adapters.AllFromFront() {
		catalog = append(catalog, ProviderInfo{
			Name:       name,
			Default:    adapter.DefaultModel(),
			Models:     adapter.Models(),
			Configured: adapter.HasCredential(),
		})
	}
	return catalog
}
