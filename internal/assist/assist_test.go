package assist

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/tuiread/internal/model"
)

func TestClientSummarize(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer secret" {
			t.Errorf("unexpected auth header %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  A short summary.  "}}]}`))
	}))
	defer srv.Close()

	client := NewClient(model.AssistConfig{Endpoint: srv.URL, Model: "tiny", APIKey: "secret"})
	answer, err := client.Summarize(context.Background(), "the quick brown fox")
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if answer != "A short summary." {
		t.Fatalf("unexpected answer %q", answer)
	}
	if got.Model != "tiny" || len(got.Messages) != 2 || got.Messages[1].Content != "the quick brown fox" {
		t.Fatalf("unexpected request %+v", got)
	}
}

func TestClientDefineSendsWordAndPassage(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if r.Header.Get("Authorization") != "" {
			t.Errorf("expected no auth header without a key")
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"A large sea mammal."}}]}`))
	}))
	defer srv.Close()

	client := NewClient(model.AssistConfig{Endpoint: srv.URL})
	answer, err := client.Define(context.Background(), "whale", "the white whale")
	if err != nil {
		t.Fatalf("define: %v", err)
	}
	if answer != "A large sea mammal." {
		t.Fatalf("unexpected answer %q", answer)
	}
	user := got.Messages[len(got.Messages)-1].Content
	if !strings.Contains(user, "whale") || !strings.Contains(user, "the white whale") {
		t.Fatalf("prompt missing word or passage: %q", user)
	}
}

func TestClientFailuresWrapUnavailable(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{name: "status", status: http.StatusTooManyRequests, body: "slow down", wantMsg: "slow down"},
		{name: "empty choices", status: http.StatusOK, body: `{"choices":[]}`, wantMsg: "empty response"},
		{name: "blank content", status: http.StatusOK, body: `{"choices":[{"message":{"content":"  "}}]}`, wantMsg: "empty response"},
		{name: "api error", status: http.StatusOK, body: `{"error":{"message":"model not found"}}`, wantMsg: "model not found"},
		{name: "garbage", status: http.StatusOK, body: `not json`, wantMsg: "decode"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := NewClient(model.AssistConfig{Endpoint: srv.URL}).Summarize(context.Background(), "text")
			if !errors.Is(err, ErrUnavailable) {
				t.Fatalf("expected ErrUnavailable, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.wantMsg) {
				t.Fatalf("expected %q in %q", tc.wantMsg, err.Error())
			}
		})
	}
}

func TestClientTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	client := NewClient(model.AssistConfig{Endpoint: srv.URL, Timeout: 50 * time.Millisecond})
	if _, err := client.Summarize(context.Background(), "text"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable on timeout, got %v", err)
	}
}

func TestCancelledRequestPlaceholder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"late"}}]}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewClient(model.AssistConfig{Endpoint: srv.URL}).Summarize(ctx, "text")
	if !errors.Is(err, ErrUnavailable) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancelled unavailable error, got %v", err)
	}
	if Placeholder(err) != "Request cancelled." {
		t.Fatalf("unexpected placeholder %q", Placeholder(err))
	}
}

func TestNewWithoutEndpointIsDisabled(t *testing.T) {
	svc := New(model.AssistConfig{Endpoint: "  "})
	if _, ok := svc.(Disabled); !ok {
		t.Fatalf("expected Disabled, got %T", svc)
	}
	_, err := svc.Define(context.Background(), "word", "context")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if !strings.HasPrefix(Placeholder(err), "Assist is unavailable") {
		t.Fatalf("unexpected placeholder %q", Placeholder(err))
	}
	if Placeholder(nil) != "" {
		t.Fatalf("expected empty placeholder for nil error")
	}
}
