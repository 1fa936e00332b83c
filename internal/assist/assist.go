// Package assist provides optional summarize and define calls against an
// OpenAI-compatible chat completions endpoint.
package assist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/verte-zerg/tuiread/internal/model"
)

// ErrUnavailable wraps every failure of the assist service.
var ErrUnavailable = errors.New("assist unavailable")

const defaultTimeout = 30 * time.Second

// Service answers summarize and define requests.
type Service interface {
	Summarize(ctx context.Context, text string) (string, error)
	Define(ctx context.Context, word, passage string) (string, error)
}

// Disabled is the Service used when no endpoint is configured.
type Disabled struct{}

// Summarize always fails with ErrUnavailable.
func (Disabled) Summarize(context.Context, string) (string, error) {
	return "", fmt.Errorf("%w: no endpoint configured", ErrUnavailable)
}

// Define always fails with ErrUnavailable.
func (Disabled) Define(context.Context, string, string) (string, error) {
	return "", fmt.Errorf("%w: no endpoint configured", ErrUnavailable)
}

// New returns a Client for cfg, or Disabled when cfg has no endpoint.
func New(cfg model.AssistConfig) Service {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return Disabled{}
	}
	return NewClient(cfg)
}

// Placeholder is the text shown in place of a failed answer.
func Placeholder(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.Canceled) {
		return "Request cancelled."
	}
	return "Assist is unavailable: " + err.Error()
}

// Client calls a chat completions endpoint.
type Client struct {
	endpoint string
	model    string
	apiKey   string
	http     *http.Client
}

// NewClient builds a Client. A zero timeout uses 30s.
func NewClient(cfg model.AssistConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		endpoint: strings.TrimSpace(cfg.Endpoint),
		model:    cfg.Model,
		apiKey:   cfg.APIKey,
		http:     &http.Client{Timeout: timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model,omitempty"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Summarize asks for a short summary of text.
func (c *Client) Summarize(ctx context.Context, text string) (string, error) {
	return c.complete(ctx,
		"You summarize passages for a speed reader. Reply with two or three plain sentences.",
		text)
}

// Define asks for the meaning of word as used in passage.
func (c *Client) Define(ctx context.Context, word, passage string) (string, error) {
	prompt := fmt.Sprintf("Word: %s\nContext: %s", word, passage)
	return c.complete(ctx,
		"You define words for a speed reader. Reply with a one-sentence definition that fits the context.",
		prompt)
}

func (c *Client) complete(ctx context.Context, system, user string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: failed to encode request: %v", ErrUnavailable, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: failed to create request: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: request failed: %w", ErrUnavailable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		msg := strings.TrimSpace(string(snippet))
		if msg == "" {
			return "", fmt.Errorf("%w: unexpected status: %s", ErrUnavailable, resp.Status)
		}
		return "", fmt.Errorf("%w: unexpected status: %s: %s", ErrUnavailable, resp.Status, msg)
	}

	var payload chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("%w: failed to decode response: %v", ErrUnavailable, err)
	}
	if payload.Error != nil && payload.Error.Message != "" {
		return "", fmt.Errorf("%w: %s", ErrUnavailable, payload.Error.Message)
	}
	if len(payload.Choices) == 0 {
		return "", fmt.Errorf("%w: empty response", ErrUnavailable)
	}
	answer := strings.TrimSpace(payload.Choices[0].Message.Content)
	if answer == "" {
		return "", fmt.Errorf("%w: empty response", ErrUnavailable)
	}
	return answer, nil
}
