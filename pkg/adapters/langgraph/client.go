// Package langgraph is a thin client for the LangGraph API server: assistant
// discovery and stateless runs.
package langgraph

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aretw0/trendline/pkg/ports"
)

// DefaultBaseURL is the address of a local `langgraph dev` server.
const DefaultBaseURL = "http://127.0.0.1:2024"

// ErrNoAssistants is returned when the server exposes no assistant at all.
var ErrNoAssistants = errors.New("no assistants found")

// APIError wraps an unexpected HTTP status.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("langgraph %s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// Client talks to a LangGraph API server. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ ports.AssistantDirectory = (*Client)(nil)

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a client. An empty baseURL selects DefaultBaseURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListAssistants returns every assistant known to the server.
func (c *Client) ListAssistants(ctx context.Context) ([]ports.Assistant, error) {
	var out []ports.Assistant
	if err := c.do(ctx, http.MethodPost, "/assistants/search", map[string]any{}, &out); err != nil {
		return nil, fmt.Errorf("error listing assistants: %w", err)
	}
	if out == nil {
		out = []ports.Assistant{}
	}
	return out, nil
}

// FindAssistant resolves an assistant by ID.
// With an empty ID the first assistant returned by a search is resolved instead.
func (c *Client) FindAssistant(ctx context.Context, id string) (*ports.Assistant, error) {
	if id == "" {
		var found []ports.Assistant
		if err := c.do(ctx, http.MethodPost, "/assistants/search", map[string]any{"limit": 1}, &found); err != nil {
			return nil, fmt.Errorf("error finding assistant: %w", err)
		}
		if len(found) == 0 {
			return nil, ErrNoAssistants
		}
		c.logger.Debug("found assistant, fetching details", "assistant_id", found[0].AssistantID)
		id = found[0].AssistantID
	}

	var a ports.Assistant
	err := c.do(ctx, http.MethodGet, "/assistants/"+url.PathEscape(id), nil, &a)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("assistant %s: %w", id, ports.ErrAssistantNotFound)
		}
		return nil, fmt.Errorf("error finding assistant: %w", err)
	}
	return &a, nil
}

// RunRequest is the payload of a stateless run.
type RunRequest struct {
	AssistantID string         `json:"assistant_id"`
	Input       any            `json:"input"`
	Config      map[string]any `json:"config"`
	Metadata    map[string]any `json:"metadata"`
}

// RunStateless executes an assistant without a thread and waits for its final output.
func (c *Client) RunStateless(ctx context.Context, req RunRequest) (map[string]any, error) {
	if req.AssistantID == "" {
		return nil, errors.New("assistant_id is required")
	}
	var out map[string]any
	if err := c.do(ctx, http.MethodPost, "/runs/wait", req, &out); err != nil {
		return nil, fmt.Errorf("stateless run failed: %w", err)
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("langgraph request", "method", method, "path", path)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http error occurred: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &APIError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
