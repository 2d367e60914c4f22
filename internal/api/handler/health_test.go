package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestReadiness_AllHealthy(t *testing.T) {
	ok := PingFunc(func(context.Context) error { return nil })
	h := NewHealthDependenciesHandler(ok, ok)

	rec := httptest.NewRecorder()
	c := newEcho().NewContext(httptest.NewRequest(http.MethodGet, "/health/ready", nil), rec)
	if err := h.Readiness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	deps := decodeBody(t, rec)["dependencies"].(map[string]any)
	if len(deps) != 2 {
		t.Fatalf("expected postgres and redis, got %v", deps)
	}
}

func TestReadiness_DegradedWithoutOptionalRedis(t *testing.T) {
	down := PingFunc(func(context.Context) error { return errors.New("connection refused") })
	h := NewHealthDependenciesHandler(down, nil)

	rec := httptest.NewRecorder()
	c := newEcho().NewContext(httptest.NewRequest(http.MethodGet, "/health/ready", nil), rec)
	_ = h.Readiness(c)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	resp := decodeBody(t, rec)
	deps := resp["dependencies"].(map[string]any)
	if resp["status"] != "degraded" || len(deps) != 1 {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}
