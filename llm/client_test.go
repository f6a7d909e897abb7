package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// fastRetry removes backoff waits so retry tests run instantly.
func fastRetry() RetryConfig {
	return RetryConfig{
		MaxAttempts:       3,
		BackoffBase:       time.Millisecond,
		BackoffMultiplier: 1.0,
		MaxBackoff:        time.Millisecond,
	}
}

type echoProvider struct{}

func (e *echoProvider) Name() string                   { return "echo" }
func (e *echoProvider) BuildURL(baseURL string) string { return baseURL }
func (e *echoProvider) SetHeaders(_ *http.Request)     {}

func (e *echoProvider) BuildRequestBody(model string, messages []Message, _ *float64, _ int) ([]byte, error) {
	return json.Marshal(map[string]any{"model": model, "messages": messages})
}

func (e *echoProvider) ParseResponse(body []byte, model string) (*Response, error) {
	var parsed struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, err
	}
	return &Response{Content: parsed.Content, Model: model}, nil
}

func init() {
	RegisterProvider(&echoProvider{})
}

func TestComplete_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		w.Write([]byte(`{"content": "drafted template"}`))
	}))
	defer srv.Close()

	client := NewClient(Endpoint{Provider: "echo", URL: srv.URL, Model: "test-model"},
		WithRetryConfig(fastRetry()))

	resp, err := client.Complete(context.Background(), Request{
		Messages: []Message{{Role: "user", Content: "draft an RFP template"}},
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Content != "drafted template" {
		t.Errorf("Content = %q", resp.Content)
	}
	if resp.Model != "test-model" {
		t.Errorf("Model = %q", resp.Model)
	}
}

func TestComplete_RequiresMessages(t *testing.T) {
	client := NewClient(Endpoint{Provider: "echo", Model: "m"})
	if _, err := client.Complete(context.Background(), Request{}); err == nil {
		t.Fatal("Complete() with no messages succeeded, want error")
	}
}

func TestComplete_RetriesTransientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"content": "ok"}`))
	}))
	defer srv.Close()

	client := NewClient(Endpoint{Provider: "echo", URL: srv.URL, Model: "m"},
		WithRetryConfig(fastRetry()))

	resp, err := client.Complete(context.Background(), Request{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Content != "ok" {
		t.Errorf("Content = %q", resp.Content)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server calls = %d, want 3", got)
	}
}

func TestComplete_FatalErrorsDoNotRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient(Endpoint{Provider: "echo", URL: srv.URL, Model: "m"},
		WithRetryConfig(fastRetry()))

	_, err := client.Complete(context.Background(), Request{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	if err == nil {
		t.Fatal("Complete() succeeded, want auth error")
	}
	if !IsFatal(err) {
		t.Errorf("error %v is not classified fatal", err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("server calls = %d, want 1 (no retry)", got)
	}
}

func TestComplete_ExhaustsRetriesThenFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(Endpoint{Provider: "echo", URL: srv.URL, Model: "m"},
		WithRetryConfig(fastRetry()))

	_, err := client.Complete(context.Background(), Request{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	if err == nil {
		t.Fatal("Complete() succeeded, want exhaustion error")
	}
	if !strings.Contains(err.Error(), "after 3 attempts") {
		t.Errorf("error = %v, want attempt count", err)
	}
}

func TestComplete_UnknownProviderIsFatal(t *testing.T) {
	client := NewClient(Endpoint{Provider: "no-such-provider", Model: "m"})
	_, err := client.Complete(context.Background(), Request{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	if !IsFatal(err) {
		t.Errorf("error = %v, want fatal unknown provider", err)
	}
}

func TestErrorClassification(t *testing.T) {
	base := errors.New("upstream hiccup")

	transient := NewTransientError(base)
	if !IsTransient(transient) || IsFatal(transient) {
		t.Errorf("transient wrapper misclassified: IsTransient=%v IsFatal=%v",
			IsTransient(transient), IsFatal(transient))
	}
	fatal := NewFatalError(base)
	if !IsFatal(fatal) || IsTransient(fatal) {
		t.Errorf("fatal wrapper misclassified: IsTransient=%v IsFatal=%v",
			IsTransient(fatal), IsFatal(fatal))
	}

	// Classification survives further wrapping and unwraps to the cause.
	wrapped := fmt.Errorf("request failed: %w", transient)
	if !IsTransient(wrapped) {
		t.Error("classification lost through fmt.Errorf wrapping")
	}
	if !errors.Is(wrapped, base) {
		t.Error("wrapper must unwrap to the underlying error")
	}

	// Unclassified errors are neither.
	if IsTransient(base) || IsFatal(base) {
		t.Error("plain error must not classify")
	}
}

func TestDefaultRetryConfig(t *testing.T) {
	cfg := DefaultRetryConfig()
	if cfg.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %d, want 3", cfg.MaxAttempts)
	}
	if cfg.BackoffBase <= 0 || cfg.MaxBackoff < cfg.BackoffBase {
		t.Errorf("backoff bounds inverted: base %v, max %v", cfg.BackoffBase, cfg.MaxBackoff)
	}
}

func TestClassifyHTTPError(t *testing.T) {
	tests := []struct {
		status    int
		transient bool
	}{
		{http.StatusTooManyRequests, true},
		{http.StatusInternalServerError, true},
		{http.StatusBadGateway, true},
		{http.StatusServiceUnavailable, true},
		{http.StatusUnauthorized, false},
		{http.StatusForbidden, false},
		{http.StatusBadRequest, false},
		{http.StatusNotFound, false},
	}

	for _, tt := range tests {
		err := classifyHTTPError(tt.status, []byte("body"))
		if got := IsTransient(err); got != tt.transient {
			t.Errorf("status %d: IsTransient = %v, want %v", tt.status, got, tt.transient)
		}
	}
}
