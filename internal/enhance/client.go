package enhance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/time/rate"

	"github.com/alnah/go-md2site/internal/logfields"
)

// Client defaults.
const (
	DefaultEndpoint = "https://api.openai.com/v1/chat/completions"
	DefaultModel    = "gpt-4"
	DefaultTimeout  = 90 * time.Second

	// maxErrorBody bounds the reply text kept in a StatusError.
	maxErrorBody = 2048
)

// Config configures a Client.
type Config struct {
	APIKey   string
	Endpoint string // base URL or full chat-completions URL
	Model    string
	Timeout  time.Duration

	// RequestsPerMinute caps outgoing calls. Zero means unlimited.
	RequestsPerMinute int

	// HTTPClient overrides the transport; its Timeout is left as is.
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Validate checks numeric fields.
func (c *Config) Validate() error {
	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout cannot be negative", ErrInvalidConfig)
	}
	if c.RequestsPerMinute < 0 {
		return fmt.Errorf("%w: requests per minute cannot be negative", ErrInvalidConfig)
	}
	return nil
}

// Client talks to a chat-completions endpoint.
type Client struct {
	http     *http.Client
	apiKey   string
	model    string
	endpoint string
	limiter  *rate.Limiter
	logger   *slog.Logger
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// NewClient creates a Client. A missing API key is not an error here; calls
// fail with ErrNotConfigured instead, so the client can be built eagerly.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}

	limit := rate.Inf
	if cfg.RequestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(cfg.RequestsPerMinute))
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Client{
		http:     httpClient,
		apiKey:   strings.TrimSpace(cfg.APIKey),
		model:    model,
		endpoint: NormalizeEndpoint(cfg.Endpoint),
		limiter:  rate.NewLimiter(limit, 1),
		logger:   logger,
	}, nil
}

// NormalizeEndpoint turns a base URL into a chat-completions URL.
// Empty means DefaultEndpoint.
func NormalizeEndpoint(base string) string {
	endpoint := strings.TrimSpace(base)
	if endpoint == "" {
		return DefaultEndpoint
	}
	endpoint = strings.TrimRight(endpoint, "/")
	if strings.HasSuffix(endpoint, "/chat/completions") {
		return endpoint
	}
	if strings.HasSuffix(endpoint, "/v1") {
		return endpoint + "/chat/completions"
	}
	return endpoint + "/v1/chat/completions"
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// Endpoint returns the normalized chat-completions URL.
func (c *Client) Endpoint() string { return c.endpoint }

// Model returns the model name sent with each request.
func (c *Client) Model() string { return c.model }

// complete sends one system+user exchange and returns the cleaned reply.
func (c *Client) complete(ctx context.Context, p prompt) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: p.system},
			{Role: "user", Content: p.user},
		},
		Temperature: p.temperature,
		MaxTokens:   p.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: reading reply: %v", ErrUpstream, err)
	}

	c.logger.Debug("chat completion",
		logfields.Model(c.model),
		logfields.Status(resp.StatusCode),
		logfields.Duration(time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		text := truncateUTF8(strings.TrimSpace(string(raw)), maxErrorBody)
		return "", &StatusError{Code: resp.StatusCode, Body: text}
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("%w: decoding reply: %v", ErrUpstream, err)
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return "", ErrEmptyResponse
	}
	return cleanMarkdownOutput(parsed.Choices[0].Message.Content), nil
}

// cleanMarkdownOutput strips a fence wrapped around the whole reply.
func cleanMarkdownOutput(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```markdown") {
		text = strings.TrimPrefix(text, "```markdown")
		text = strings.TrimSuffix(text, "```")
	} else if strings.HasPrefix(text, "```md") {
		text = strings.TrimPrefix(text, "```md")
		text = strings.TrimSuffix(text, "```")
	} else if strings.HasPrefix(text, "```") && strings.HasSuffix(text, "```") && len(text) >= 6 {
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(text, "```")
	}
	return strings.TrimSpace(text)
}

// truncateUTF8 cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
