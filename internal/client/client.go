package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"podcast-orchestrator/internal/orchestrator"
	"podcast-orchestrator/internal/podcast"
)

const defaultTimeout = 30 * time.Second

// ErrNotFound is returned when the service does not know the session.
var ErrNotFound = errors.New("session not found")

// APIError is a non-2xx answer from the service.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: http %d", e.StatusCode)
	}
	return fmt.Sprintf("api: http %d: %s", e.StatusCode, e.Message)
}

// Client calls the orchestrator HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// New returns a client for the service at baseURL (e.g. http://localhost:8080).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GenerateScript asks the service to write a script about req.Topic.
func (c *Client) GenerateScript(ctx context.Context, req podcast.ScriptRequest) (podcast.Script, error) {
	var script podcast.Script
	err := c.do(ctx, http.MethodPost, "/api/generate-script", req, &script)
	return script, err
}

// StartGeneration submits scenes for rendering under sessionID.
func (c *Client) StartGeneration(ctx context.Context, sessionID string, scenes []podcast.Scene) (orchestrator.Ack, error) {
	var ack orchestrator.Ack
	body := orchestrator.GenerateVideosRequest{SessionID: orchestrator.SessionID(sessionID), Scenes: scenes}
	err := c.do(ctx, http.MethodPost, "/api/generate-videos", body, &ack)
	return ack, err
}

// Status fetches the per-scene records and aggregate progress of a session.
func (c *Client) Status(ctx context.Context, sessionID string) (orchestrator.StatusReport, error) {
	var report orchestrator.StatusReport
	path := "/api/check-status?sessionId=" + url.QueryEscape(sessionID)
	err := c.do(ctx, http.MethodGet, path, nil, &report)
	return report, err
}

// DeleteSession removes one session from the service.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	return c.do(ctx, http.MethodDelete, "/api/sessions/"+url.PathEscape(sessionID), nil, nil)
}

// ClearSessions removes every session and returns how many were dropped.
func (c *Client) ClearSessions(ctx context.Context) (int, error) {
	var out struct {
		Cleared int `json:"cleared"`
	}
	err := c.do(ctx, http.MethodDelete, "/api/sessions", nil, &out)
	return out.Cleared, err
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("api: encode body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("api: new request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("api: read body: %w", err)
	}
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrNotFound, env.Error)
	}
	if resp.StatusCode >= http.StatusMultipleChoices || (decodeErr == nil && !env.Success) {
		msg := env.Error
		if decodeErr != nil {
			msg = strings.TrimSpace(string(raw))
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return fmt.Errorf("api: decode response: %w", decodeErr)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("api: decode data: %w", err)
		}
	}
	return nil
}
