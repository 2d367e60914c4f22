package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/duveen2546R/FinManager/internal/core/ports"
)

func TestOpenAIClient_Complete(t *testing.T) {
	var got struct {
		Model    string   `json:"model"`
		Stop     []string `json:"stop"`
		Messages []struct {
			Content string `json:"content"`
		} `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"Final Answer: hi"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient(Config{APIKey: "k", BaseURL: srv.URL + "/v1", Model: "test-model"})
	out, err := c.Complete(context.Background(), ports.CompletionRequest{Prompt: "hello", Stop: []string{"\nObservation:"}})
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if out != "Final Answer: hi" {
		t.Fatalf("unexpected output %q", out)
	}
	if got.Model != "test-model" || len(got.Messages) != 1 || got.Messages[0].Content != "hello" {
		t.Fatalf("unexpected request: %+v", got)
	}
	if len(got.Stop) != 1 || got.Stop[0] != "\nObservation:" {
		t.Fatalf("stop sequence not forwarded: %q", got.Stop)
	}
}

type slowModel struct{}

func (slowModel) Complete(ctx context.Context, _ ports.CompletionRequest) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestInstrument_AppliesTimeout(t *testing.T) {
	m := Instrument(slowModel{}, ProviderOpenAI, 10*time.Millisecond)

	_, err := m.Complete(context.Background(), ports.CompletionRequest{Prompt: "x"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestNew_UnknownProvider(t *testing.T) {
	if _, err := New(context.Background(), Config{Provider: "llama"}); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
}
