// Package llm adapts hosted language models to ports.LanguageModel.
package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/duveen2546R/FinManager/internal/core/ports"
	"github.com/duveen2546R/FinManager/internal/metrics"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Config selects and tunes a provider.
type Config struct {
	Provider    string
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	Timeout     time.Duration
}

// New builds the configured provider wrapped with timeout and metrics.
func New(ctx context.Context, cfg Config) (ports.LanguageModel, error) {
	var (
		model ports.LanguageModel
		err   error
	)
	switch cfg.Provider {
	case ProviderOpenAI:
		model = NewOpenAIClient(cfg)
	case ProviderGemini:
		model, err = NewGeminiClient(ctx, cfg)
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	return Instrument(model, cfg.Provider, cfg.Timeout), nil
}

// instrumented bounds every completion and records its latency.
type instrumented struct {
	next     ports.LanguageModel
	provider string
	timeout  time.Duration
}

func Instrument(next ports.LanguageModel, provider string, timeout time.Duration) ports.LanguageModel {
	return &instrumented{next: next, provider: provider, timeout: timeout}
}

func (m *instrumented) Complete(ctx context.Context, req ports.CompletionRequest) (string, error) {
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := m.next.Complete(ctx, req)
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.LLMRequestDuration.WithLabelValues(m.provider, status).Observe(time.Since(start).Seconds())
	return out, err
}
