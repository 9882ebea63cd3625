package llm

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	ssePayloadPrefix = "data: "

	initialLineBuffer = 64 * 1024
	maxLineSize       = 1024 * 1024
)

// Relay drives one upstream streaming call per Stream invocation and
// re-emits its payloads as normalized events. It holds no per-request state.
type Relay struct {
	client  *http.Client
	timeout time.Duration
	logger  *zap.Logger
}

func NewRelay(client *http.Client, timeout time.Duration, logger *zap.Logger) *Relay {
	return &Relay{client: client, timeout: timeout, logger: logger}
}

// Stream returns a channel carrying the events of one upstream stream, in
// upstream order, ending with exactly one Done or Error event. The channel
// is closed after the terminal event. Cancelling ctx stops the relay and
// releases the upstream connection without emitting anything further.
func (r *Relay) Stream(ctx context.Context, adapter Adapter, req ChatRequest) <-chan StreamEvent {
	events := make(chan StreamEvent)
	go r.run(ctx, adapter, req, events)
	return events
}

func (r *Relay) run(ctx context.Context, adapter Adapter, req ChatRequest, events chan<- StreamEvent) {
	defer close(events)

	emit := func(ev StreamEvent) bool {
		select {
		case events <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	upstream, err := adapter.BuildRequest(req, true)
	if err != nil {
		emit(ErrorEvent(err.Error()))
		return
	}

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	httpReq, err := newUpstreamRequest(callCtx, upstream)
	if err != nil {
		emit(ErrorEvent(err.Error()))
		return
	}

	resp, err := r.client.Do(httpReq)
	if err != nil {
		if ctx.Err() == nil {
			r.logger.Warn("upstream stream request failed", zap.String("provider", adapter.Name()), zap.Error(err))
			emit(ErrorEvent(fmt.Sprintf("%s request failed: %v", adapter.Name(), err)))
		}
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			body = []byte(fmt.Sprintf("upstream status %d: %v", resp.StatusCode, err))
		}
		r.logger.Warn("upstream stream rejected",
			zap.String("provider", adapter.Name()),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body),
		)
		emit(ErrorEvent(string(body)))
		return
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, initialLineBuffer), maxLineSize)

	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		payload, ok := strings.CutPrefix(line, ssePayloadPrefix)
		if !ok {
			continue
		}

		chunkEvents, err := adapter.ParseStreamChunk([]byte(payload))
		if errors.Is(err, errEndOfStream) {
			break
		}
		if err != nil {
			r.logger.Debug("skipping malformed stream chunk", zap.String("provider", adapter.Name()), zap.Error(err))
			continue
		}

		for _, ev := range chunkEvents {
			if !emit(ev) {
				return
			}
		}
	}

	if err := scanner.Err(); err != nil {
		if ctx.Err() != nil {
			return
		}
		r.logger.Warn("upstream stream interrupted", zap.String("provider", adapter.Name()), zap.Error(err))
		emit(ErrorEvent(fmt.Sprintf("upstream stream interrupted: %v", err)))
		return
	}

	emit(DoneEvent())
}

func newUpstreamRequest(ctx context.Context, upstream *UpstreamRequest) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, upstream.URL, bytes.NewReader(upstream.Body))
	if err != nil {
		return nil, fmt.Errorf("construct upstream request: %w", err)
	}
	for key, values := range upstream.Header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	return req, nil
}
