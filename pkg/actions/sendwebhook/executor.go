// Package sendwebhook posts the node input context to an external HTTP endpoint.
package sendwebhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukex/talentflow/pkg/models"
	"github.com/dukex/talentflow/pkg/protocol"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	DefaultTimeout   = 30 * time.Second
	maxResponseBytes = 1 << 20

	HeaderExecutionID = "X-Talentflow-Execution"
	HeaderGraphID     = "X-Talentflow-Graph"
	HeaderNodeID      = "X-Talentflow-Node"
)

// HTTPError is a response outside the 2xx range.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

type Executor struct {
	client *http.Client
	logger *slog.Logger
}

type Option func(*Executor)

// WithClient replaces the default traced client.
func WithClient(client *http.Client) Option {
	return func(e *Executor) {
		e.client = client
	}
}

// WithTimeout sets the per-request timeout of the default client.
func WithTimeout(timeout time.Duration) Option {
	return func(e *Executor) {
		e.client.Timeout = timeout
	}
}

func NewExecutor(logger *slog.Logger, opts ...Option) *Executor {
	executor := &Executor{
		client: &http.Client{
			Timeout:   DefaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger.With("module", "send_webhook"),
	}

	for _, opt := range opts {
		opt(executor)
	}

	return executor
}

func (e *Executor) Type() models.NodeType {
	return models.NodeTypeSendWebhook
}

// Execute sends the input data as JSON. Any non-2xx status and any transport failure is retryable.
func (e *Executor) Execute(ctx context.Context, config models.NodeConfig, input protocol.Input) (map[string]any, error) {
	cfg, ok := config.(*models.SendWebhookConfig)
	if !ok {
		return nil, protocol.Terminal(fmt.Errorf("send_webhook: unexpected config %T", config))
	}

	var body io.Reader

	method := cfg.HTTPMethod()
	if method != http.MethodGet {
		payload, err := json.Marshal(input.Data)
		if err != nil {
			return nil, protocol.Terminal(fmt.Errorf("failed to encode webhook body: %w", err))
		}

		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, cfg.URL, body)
	if err != nil {
		return nil, protocol.Terminal(fmt.Errorf("failed to create request: %w", err))
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	req.Header.Set(HeaderExecutionID, input.ExecutionID)
	req.Header.Set(HeaderGraphID, input.GraphID)
	req.Header.Set(HeaderNodeID, input.NodeID)

	for key, value := range cfg.Headers {
		req.Header.Set(key, value)
	}

	logger := e.logger.With("node_id", input.NodeID, "execution_id", input.ExecutionID, "method", method)
	logger.DebugContext(ctx, "Sending webhook", "url", cfg.URL)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, protocol.Retryable(fmt.Errorf("request failed: %w", err))
	}

	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.WarnContext(ctx, "Failed to close response body", "error", err)
		}
	}()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, protocol.Retryable(fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, protocol.Retryable(&HTTPError{StatusCode: resp.StatusCode, Message: string(respBody)})
	}

	result := map[string]any{
		"status_code": resp.StatusCode,
		"body":        string(respBody),
	}

	var jsonBody any
	if err := json.Unmarshal(respBody, &jsonBody); err == nil {
		result["json"] = jsonBody
	}

	logger.InfoContext(ctx, "Webhook delivered", "status_code", resp.StatusCode)

	return result, nil
}
