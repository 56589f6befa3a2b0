package enhance

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

type captured struct {
	mu   sync.Mutex
	auth string
	path string
	req  chatRequest
}

type snapshot struct {
	auth string
	path string
	req  chatRequest
}

func (c *captured) get() snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return snapshot{auth: c.auth, path: c.path, req: c.req}
}

// newServer answers every request with status and body, recording the last request.
func newServer(t *testing.T, status int, body string) (*httptest.Server, *captured) {
	t.Helper()
	got := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		got.mu.Lock()
		got.auth = r.Header.Get("Authorization")
		got.path = r.URL.Path
		_ = json.Unmarshal(raw, &got.req)
		got.mu.Unlock()
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, got
}

func reply(content string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{{"message": map[string]string{"role": "assistant", "content": content}}},
	})
	return string(b)
}

func newTestClient(t *testing.T, endpoint string) *Client {
	t.Helper()
	c, err := NewClient(Config{APIKey: "sk-test", Endpoint: endpoint, Model: "test-model"})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return c
}

// ---------------------------------------------------------------------------
// TestNormalizeEndpoint
// ---------------------------------------------------------------------------

func TestNormalizeEndpoint(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"":                                 DefaultEndpoint,
		"  ":                               DefaultEndpoint,
		"http://localhost:8080":            "http://localhost:8080/v1/chat/completions",
		"http://localhost:8080/":           "http://localhost:8080/v1/chat/completions",
		"http://host/v1":                   "http://host/v1/chat/completions",
		"http://host/v1/chat/completions/": "http://host/v1/chat/completions",
	}
	for in, want := range tests {
		if got := NormalizeEndpoint(in); got != want {
			t.Errorf("NormalizeEndpoint(%q) = %q, want %q", in, got, want)
		}
	}
}

// ---------------------------------------------------------------------------
// TestNewClient
// ---------------------------------------------------------------------------

func TestNewClient(t *testing.T) {
	t.Parallel()

	c, err := NewClient(Config{})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	if c.Configured() {
		t.Error("client without key should not be configured")
	}
	if c.Model() != DefaultModel || c.Endpoint() != DefaultEndpoint {
		t.Errorf("defaults = %q %q", c.Model(), c.Endpoint())
	}

	for _, cfg := range []Config{{Timeout: -time.Second}, {RequestsPerMinute: -1}} {
		if _, err := NewClient(cfg); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("NewClient(%+v) error = %v, want ErrInvalidConfig", cfg, err)
		}
	}
}

// ---------------------------------------------------------------------------
// TestClient operations
// ---------------------------------------------------------------------------

func TestClient_Operations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		call        func(c *Client) (string, error)
		system      string
		userHas     string
		temperature float64
		maxTokens   int
	}{
		{
			name:        "enhance",
			call:        func(c *Client) (string, error) { return c.Enhance(context.Background(), "# Doc", DefaultOptions()) },
			system:      "You are a technical documentation expert.",
			userHas:     "Please enhance the following markdown documentation:\n\n# Doc\n\n",
			temperature: 0.7,
			maxTokens:   2000,
		},
		{
			name:        "summarize",
			call:        func(c *Client) (string, error) { return c.Summarize(context.Background(), "# Doc") },
			system:      "Create concise summaries",
			userHas:     "Summarize this documentation in 2-3 sentences:\n\n# Doc",
			temperature: 0.5,
			maxTokens:   150,
		},
		{
			name:        "headings",
			call:        func(c *Client) (string, error) { return c.ImproveHeadings(context.Background(), "# Doc") },
			system:      "SEO-friendly",
			userHas:     "Return only the markdown with improved headings.",
			temperature: 0.7,
			maxTokens:   1500,
		},
		{
			name:        "translate",
			call:        func(c *Client) (string, error) { return c.Translate(context.Background(), "# Doc", "fr") },
			system:      "Translate technical documentation to French",
			userHas:     "Translate this documentation to French:\n\n# Doc",
			temperature: 0.3,
			maxTokens:   3000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv, rec := newServer(t, http.StatusOK, reply("```markdown\n# Better\n```"))
			out, err := tt.call(newTestClient(t, srv.URL))
			if err != nil {
				t.Fatalf("call error = %v", err)
			}
			got := rec.get()
			if out != "# Better" {
				t.Errorf("reply = %q, want fence stripped", out)
			}
			if got.auth != "Bearer sk-test" {
				t.Errorf("Authorization = %q", got.auth)
			}
			if got.path != "/v1/chat/completions" {
				t.Errorf("path = %q", got.path)
			}
			if got.req.Model != "test-model" || len(got.req.Messages) != 2 {
				t.Fatalf("request = %+v", got.req)
			}
			if got.req.Messages[0].Role != "system" || !strings.Contains(got.req.Messages[0].Content, tt.system) {
				t.Errorf("system message = %+v", got.req.Messages[0])
			}
			if got.req.Messages[1].Role != "user" || !strings.Contains(got.req.Messages[1].Content, tt.userHas) {
				t.Errorf("user message = %q", got.req.Messages[1].Content)
			}
			if got.req.Temperature != tt.temperature || got.req.MaxTokens != tt.maxTokens {
				t.Errorf("temperature/max_tokens = %v/%d", got.req.Temperature, got.req.MaxTokens)
			}
		})
	}
}

func TestClient_Errors(t *testing.T) {
	t.Parallel()

	t.Run("not configured", func(t *testing.T) {
		t.Parallel()

		c, _ := NewClient(Config{})
		if _, err := c.Enhance(context.Background(), "x", DefaultOptions()); !errors.Is(err, ErrNotConfigured) {
			t.Errorf("error = %v, want ErrNotConfigured", err)
		}
	})

	t.Run("non-2xx carries status and body", func(t *testing.T) {
		t.Parallel()

		srv, _ := newServer(t, http.StatusTooManyRequests, `{"error":"slow down"}`)
		_, err := newTestClient(t, srv.URL).Summarize(context.Background(), "x")

		var se *StatusError
		if !errors.As(err, &se) {
			t.Fatalf("error = %v, want *StatusError", err)
		}
		if se.Code != http.StatusTooManyRequests || !strings.Contains(se.Body, "slow down") {
			t.Errorf("StatusError = %+v", se)
		}
		if !errors.Is(err, ErrUpstream) {
			t.Error("StatusError should match ErrUpstream")
		}
		if !strings.Contains(err.Error(), "429") {
			t.Errorf("message %q should include the status", err.Error())
		}
	})

	t.Run("long body is cut on a rune boundary", func(t *testing.T) {
		t.Parallel()

		body := strings.Repeat("a", maxErrorBody-1) + "é" + strings.Repeat("b", 10)
		srv, _ := newServer(t, http.StatusBadGateway, body)
		_, err := newTestClient(t, srv.URL).Summarize(context.Background(), "x")

		var se *StatusError
		if !errors.As(err, &se) {
			t.Fatalf("error = %v, want *StatusError", err)
		}
		if se.Body != strings.Repeat("a", maxErrorBody-1) {
			t.Errorf("len(Body) = %d, want %d", len(se.Body), maxErrorBody-1)
		}
		if !utf8.ValidString(se.Body) {
			t.Error("Body is not valid UTF-8")
		}
	})

	t.Run("empty choices", func(t *testing.T) {
		t.Parallel()

		srv, _ := newServer(t, http.StatusOK, `{"choices":[]}`)
		if _, err := newTestClient(t, srv.URL).Summarize(context.Background(), "x"); !errors.Is(err, ErrEmptyResponse) {
			t.Errorf("error = %v, want ErrEmptyResponse", err)
		}
	})

	t.Run("blank content", func(t *testing.T) {
		t.Parallel()

		srv, _ := newServer(t, http.StatusOK, reply("   "))
		if _, err := newTestClient(t, srv.URL).Summarize(context.Background(), "x"); !errors.Is(err, ErrEmptyResponse) {
			t.Errorf("error = %v, want ErrEmptyResponse", err)
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		t.Parallel()

		srv, _ := newServer(t, http.StatusOK, `{not json`)
		if _, err := newTestClient(t, srv.URL).Summarize(context.Background(), "x"); !errors.Is(err, ErrUpstream) {
			t.Errorf("error = %v, want ErrUpstream", err)
		}
	})

	t.Run("bad language", func(t *testing.T) {
		t.Parallel()

		srv, _ := newServer(t, http.StatusOK, reply("x"))
		if _, err := newTestClient(t, srv.URL).Translate(context.Background(), "x", "not a tag!"); !errors.Is(err, ErrUnsupportedLanguage) {
			t.Errorf("error = %v, want ErrUnsupportedLanguage", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		srv, _ := newServer(t, http.StatusOK, reply("x"))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := newTestClient(t, srv.URL).Summarize(ctx, "x"); !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
	})
}

func TestClient_RateLimit(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = io.WriteString(w, reply("ok"))
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{APIKey: "k", Endpoint: srv.URL, RequestsPerMinute: 1})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := c.Summarize(context.Background(), "x"); err != nil {
		t.Fatalf("first call error = %v", err)
	}

	// The second call must wait about a minute for a token.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := c.Summarize(ctx, "x"); err == nil {
		t.Fatal("second call should be rate limited")
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("server saw %d calls, want 1", n)
	}
}

// ---------------------------------------------------------------------------
// Prompt building and helpers
// ---------------------------------------------------------------------------

func TestBuildEnhancementPrompt(t *testing.T) {
	t.Parallel()

	full := BuildEnhancementPrompt("MD", Options{ImproveStructure: true, AddExamples: true, EnhanceClarity: true, AddTOC: true})
	want := "Please enhance the following markdown documentation:\n\nMD\n\n" +
		"Enhancement requirements:\n" +
		"- Improve heading structure and organization\n" +
		"- Add relevant code examples where appropriate\n" +
		"- Improve clarity and readability\n" +
		"- Fix grammar and spelling\n" +
		"- Add a table of contents\n" +
		"\nReturn only the enhanced markdown, no explanations."
	if full != want {
		t.Errorf("prompt =\n%s\nwant\n%s", full, want)
	}

	bare := BuildEnhancementPrompt("MD", Options{})
	if strings.Contains(bare, "- ") {
		t.Errorf("empty options should list no requirements: %q", bare)
	}
	if strings.Contains(BuildEnhancementPrompt("MD", DefaultOptions()), "table of contents") {
		t.Error("default options should not ask for a table of contents")
	}
}

func TestCleanMarkdownOutput(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"plain":                   "plain",
		"```markdown\n# A\n```":   "# A",
		"```md\n# A\n```":         "# A",
		"```\n# A\n```":           "# A",
		"  text with ``` inside ": "text with ``` inside",
		"```go\nx := 1\n```\nmore": "```go\nx := 1\n```\nmore",
	}
	for in, want := range tests {
		if got := cleanMarkdownOutput(in); got != want {
			t.Errorf("cleanMarkdownOutput(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsRetryable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"not configured", ErrNotConfigured, false},
		{"language", ErrUnsupportedLanguage, false},
		{"canceled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, false},
		{"429", &StatusError{Code: 429}, true},
		{"503", &StatusError{Code: 503}, true},
		{"400", &StatusError{Code: 400}, false},
		{"401", &StatusError{Code: 401}, false},
		{"empty response", ErrEmptyResponse, true},
		{"transport", errors.New("connection reset"), true},
	}

	for _, tt := range tests {
		if got := IsRetryable(tt.err); got != tt.want {
			t.Errorf("IsRetryable(%s) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
