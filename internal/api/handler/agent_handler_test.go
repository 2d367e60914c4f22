package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/duveen2546R/FinManager/internal/core/domain"
)

type stubAgent struct {
	runFn func(ctx context.Context, userID, question string) (string, error)
}

func (s *stubAgent) Run(ctx context.Context, userID, question string) (string, error) {
	return s.runFn(ctx, userID, question)
}

type stubLimiter struct {
	allowed bool
	err     error
	keys    []string
}

func (l *stubLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.keys = append(l.keys, key)
	return l.allowed, l.err
}

func invokeAgent(t *testing.T, h *AgentHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := newEcho()
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/ai/agent/invoke", body), rec)
	if err := h.Invoke(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec
}

func TestAgentHandler_Invoke_Success(t *testing.T) {
	agent := &stubAgent{runFn: func(ctx context.Context, userID, question string) (string, error) {
		if userID != "u-1" || question != "How much on Food?" {
			t.Fatalf("unexpected args: %s %s", userID, question)
		}
		return "You spent 42.50 on Food.", nil
	}}
	limiter := &stubLimiter{allowed: true}
	h := NewAgentHandler(agent, limiter, zerolog.Nop())

	rec := invokeAgent(t, h, `{"user_id":"u-1","question":"How much on Food?"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if resp := decodeBody(t, rec); resp["answer"] != "You spent 42.50 on Food." || resp["status"] != "success" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	if len(limiter.keys) != 1 || limiter.keys[0] != "agent:u-1" {
		t.Fatalf("unexpected limiter keys: %v", limiter.keys)
	}
}

func TestAgentHandler_Invoke_MissingFields(t *testing.T) {
	agent := &stubAgent{runFn: func(ctx context.Context, userID, question string) (string, error) {
		t.Fatalf("should not be called")
		return "", nil
	}}
	h := NewAgentHandler(agent, nil, zerolog.Nop())

	for _, body := range []string{`{"user_id":"u-1"}`, `{"question":"hi"}`, `{}`} {
		rec := invokeAgent(t, h, body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", body, rec.Code)
		}
		if resp := decodeBody(t, rec); resp["message"] != "user_id and question are required" {
			t.Fatalf("%s: unexpected message %v", body, resp["message"])
		}
	}
}

func TestAgentHandler_Invoke_RateLimited(t *testing.T) {
	agent := &stubAgent{runFn: func(ctx context.Context, userID, question string) (string, error) {
		t.Fatalf("should not be called")
		return "", nil
	}}
	h := NewAgentHandler(agent, &stubLimiter{allowed: false}, zerolog.Nop())

	rec := invokeAgent(t, h, `{"user_id":"u-1","question":"hi"}`)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
}

func TestAgentHandler_Invoke_LimiterErrorFailsOpen(t *testing.T) {
	agent := &stubAgent{runFn: func(ctx context.Context, userID, question string) (string, error) {
		return "ok", nil
	}}
	h := NewAgentHandler(agent, &stubLimiter{err: errors.New("redis down")}, zerolog.Nop())

	rec := invokeAgent(t, h, `{"user_id":"u-1","question":"hi"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAgentHandler_Invoke_AgentFailure(t *testing.T) {
	for _, failure := range []error{domain.ErrOrchestrationExhausted, domain.ErrReasoning} {
		agent := &stubAgent{runFn: func(ctx context.Context, userID, question string) (string, error) {
			return "", failure
		}}
		h := NewAgentHandler(agent, nil, zerolog.Nop())

		rec := invokeAgent(t, h, `{"user_id":"u-1","question":"hi"}`)
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("%v: expected 500, got %d", failure, rec.Code)
		}
		if resp := decodeBody(t, rec); resp["message"] != agentFailureMessage {
			t.Fatalf("%v: unexpected message %v", failure, resp["message"])
		}
	}
}
