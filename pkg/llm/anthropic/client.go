// Package anthropic provides a client for the Anthropic Messages API.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"time"
)

const (
	// apiURL is the Anthropic Messages API endpoint.
	apiURL = "https://api.anthropic.com/v1/messages"

	// anthropicVersion is the API version header value this client speaks.
	anthropicVersion = "2023-06-01"

	// DefaultModel is the default chat model.
	DefaultModel = "claude-3-5-sonnet-20241022"

	// DefaultMaxTokens is the default max_tokens for a completion.
	DefaultMaxTokens = 4096

	// DefaultMaxRetries is the default number of retries.
	DefaultMaxRetries = 3

	// DefaultBaseDelay is the base delay for exponential backoff.
	DefaultBaseDelay = 100 * time.Millisecond

	// DefaultMaxDelay is the maximum delay for exponential backoff.
	DefaultMaxDelay = 10 * time.Second

	// DefaultTimeout is the default HTTP timeout for a single request.
	DefaultTimeout = 120 * time.Second
)

// Config holds the configuration for the Anthropic Messages API client.
type Config struct {
	APIKey    string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// Client is an Anthropic Messages API client.
type Client struct {
	apiKey     string
	model      string
	maxTokens  int
	httpClient *http.Client
	log        *slog.Logger

	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithMaxRetries sets the maximum number of retries.
func WithMaxRetries(n int) ClientOption {
	return func(c *Client) { c.maxRetries = n }
}

// WithBaseDelay sets the base delay for exponential backoff.
func WithBaseDelay(d time.Duration) ClientOption {
	return func(c *Client) { c.baseDelay = d }
}

// WithMaxDelay sets the maximum delay for exponential backoff.
func WithMaxDelay(d time.Duration) ClientOption {
	return func(c *Client) { c.maxDelay = d }
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) ClientOption {
	return func(c *Client) { c.log = log }
}

// NewClient creates a new Anthropic Messages API client. An empty API key
// is accepted (IsConfigured will report false); the config layer decides
// whether that's fatal.
func NewClient(cfg Config, opts ...ClientOption) *Client {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	c := &Client{
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		maxTokens:  cfg.MaxTokens,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        slog.Default(),
		maxRetries: DefaultMaxRetries,
		baseDelay:  DefaultBaseDelay,
		maxDelay:   DefaultMaxDelay,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type messageRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messageResponse struct {
	Content    []contentBlock `json:"content"`
	StopReason *string        `json:"stop_reason,omitempty"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// IsConfigured reports whether the client has an API key to call with.
func (c *Client) IsConfigured() bool {
	return c.apiKey != ""
}

// Complete sends a single-turn request to the Anthropic Messages API and
// returns the text of the first text content block in the response.
func (c *Client) Complete(ctx context.Context, systemPrompt, prompt string) (string, error) {
	if !c.IsConfigured() {
		return "", fmt.Errorf("anthropic client is not configured: missing API key")
	}

	reqBody := messageRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System:    systemPrompt,
		Messages:  []message{{Role: "user", Content: prompt}},
	}

	reqBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.calculateBackoff(attempt)
			c.log.Debug("retrying anthropic request", slog.Int("attempt", attempt), slog.Duration("delay", delay))
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
		}

		var text string
		text, lastErr = c.doRequest(ctx, reqBytes)
		if lastErr == nil {
			return text, nil
		}

		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		if _, ok := lastErr.(*retryableError); !ok {
			return "", lastErr
		}

		c.log.Warn("anthropic request failed", slog.Int("attempt", attempt), slog.String("error", lastErr.Error()))
	}

	return "", fmt.Errorf("all retries exhausted: %w", lastErr)
}

func (c *Client) doRequest(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	req.Header.Set("content-type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable || resp.StatusCode >= 500 {
			return "", &retryableError{statusCode: resp.StatusCode, body: string(respBody)}
		}
		return "", fmt.Errorf("anthropic API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var apiResp messageResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("failed to parse API response: %w", err)
	}

	for _, block := range apiResp.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}

	return "", fmt.Errorf("no text content block in API response")
}

func (c *Client) calculateBackoff(attempt int) time.Duration {
	delay := float64(c.baseDelay) * math.Pow(2, float64(attempt-1))
	if delay > float64(c.maxDelay) {
		delay = float64(c.maxDelay)
	}
	return time.Duration(delay)
}

type retryableError struct {
	statusCode int
	body       string
}

func (e *retryableError) Error() string {
	return fmt.Sprintf("retryable API error %d: %s", e.statusCode, e.body)
}
