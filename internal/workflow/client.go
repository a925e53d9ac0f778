package workflow

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/aliuyar1234/okrlaunch/internal/metrics"
	"github.com/rs/zerolog/log"
)

var (
	// ErrGatewayFailure wraps every failure talking to the workflow engine
	ErrGatewayFailure = errors.New("workflow gateway failure")

	// ErrWorkflowNotConfigured is returned when the endpoint or a workflow id is missing
	ErrWorkflowNotConfigured = errors.New("workflow not configured")
)

const maxResponseBytes = 4 << 20

// Config holds the engine connection settings.
type Config struct {
	Endpoint  string
	APIKey    string
	ProjectID string
	Timeout   time.Duration
}

// Client executes workflows over the engine's GraphQL endpoint.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient creates a client. A nil httpClient gets one with cfg.Timeout.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{cfg: cfg, httpClient: httpClient}
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphQLResponse struct {
	Data *struct {
		ExecuteWorkflow *struct {
			Status string          `json:"status"`
			Result json.RawMessage `json:"result"`
		} `json:"executeWorkflow"`
	} `json:"data"`
	Errors json.RawMessage `json:"errors"`
}

// Execute posts query and variables and returns the workflow result. A
// result delivered as a JSON-encoded string is decoded once; anything else
// is returned as-is. flow labels logs and metrics.
func (c *Client) Execute(ctx context.Context, flow, query string, variables map[string]any) (json.RawMessage, error) {
	if c.cfg.Endpoint == "" {
		return nil, fmt.Errorf("%w: endpoint is empty", ErrWorkflowNotConfigured)
	}

	start := time.Now()
	result, err := c.execute(ctx, query, variables)
	elapsed := time.Since(start)

	metrics.WorkflowDurationSeconds.WithLabelValues(flow).Observe(elapsed.Seconds())
	if err != nil {
		metrics.WorkflowExecutionsTotal.WithLabelValues(flow, "error").Inc()
		log.Warn().
			Err(err).
			Str("flow", flow).
			Dur("duration", elapsed).
			Msg("Workflow execution failed")
		return nil, fmt.Errorf("%w: %s: %v", ErrGatewayFailure, flow, err)
	}

	metrics.WorkflowExecutionsTotal.WithLabelValues(flow, "success").Inc()
	log.Debug().
		Str("flow", flow).
		Dur("duration", elapsed).
		Msg("Workflow executed")
	return result, nil
}

func (c *Client) execute(ctx context.Context, query string, variables map[string]any) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	body, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-project-id", c.cfg.ProjectID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("timed out after %s", c.cfg.Timeout)
		}
		return nil, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(payload), 200))
	}

	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if mediaType != "application/json" && !strings.HasSuffix(mediaType, "+json") {
		return nil, fmt.Errorf("expected JSON response but got %q: %s", resp.Header.Get("Content-Type"), truncate(string(payload), 200))
	}

	var parsed graphQLResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(parsed.Errors) > 0 && string(parsed.Errors) != "null" {
		return nil, fmt.Errorf("graphql error: %s", truncate(string(parsed.Errors), 500))
	}

	if parsed.Data == nil || parsed.Data.ExecuteWorkflow == nil {
		return nil, errors.New("invalid response: missing executeWorkflow")
	}

	exec := parsed.Data.ExecuteWorkflow
	if exec.Status != "success" && exec.Status != "completed" {
		return nil, fmt.Errorf("execution failed with status: %s", exec.Status)
	}

	return unwrapResult(exec.Result), nil
}

// unwrapResult decodes a JSON-encoded string result when its content is
// itself valid JSON.
func unwrapResult(raw json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '"' {
		return raw
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return raw
	}
	if json.Valid([]byte(s)) {
		return json.RawMessage(s)
	}
	return raw
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
