package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"DATABASE_URL": "postgres://localhost/finmanager",
	}))
	if err != nil {
		t.Fatalf("LoadFrom returned error: %v", err)
	}
	if cfg.Port != "5000" {
		t.Fatalf("expected default port 5000, got %s", cfg.Port)
	}
	if cfg.Agent.MaxIterations != 10 || cfg.Agent.TopK != 5 {
		t.Fatalf("unexpected agent defaults: %+v", cfg.Agent)
	}
	if len(cfg.Agent.Tables) != 1 || cfg.Agent.Tables[0] != "transactions" {
		t.Fatalf("unexpected default tables: %v", cfg.Agent.Tables)
	}
	if cfg.Database.QueryTimeout != 5*time.Second || cfg.LLM.Timeout != 30*time.Second {
		t.Fatalf("unexpected timeouts: db=%s llm=%s", cfg.Database.QueryTimeout, cfg.LLM.Timeout)
	}
	if cfg.LLM.Provider != "gemini" || !cfg.IsDevelopment() {
		t.Fatalf("unexpected provider/env: %s/%s", cfg.LLM.Provider, cfg.Env)
	}
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"DATABASE_URL":         "postgres://localhost/finmanager",
		"LLM_PROVIDER":         "openai",
		"AGENT_MAX_ITERATIONS": "3",
		"AGENT_TABLES":         "transactions, budgets",
		"LLM_TEMPERATURE":      "0.2",
	}))
	if err != nil {
		t.Fatalf("LoadFrom returned error: %v", err)
	}
	if cfg.Agent.MaxIterations != 3 {
		t.Fatalf("expected 3 iterations, got %d", cfg.Agent.MaxIterations)
	}
	if len(cfg.Agent.Tables) != 2 || cfg.Agent.Tables[1] != "budgets" {
		t.Fatalf("unexpected tables: %q", cfg.Agent.Tables)
	}
	if cfg.LLM.Temperature < 0.19 || cfg.LLM.Temperature > 0.21 {
		t.Fatalf("unexpected temperature %v", cfg.LLM.Temperature)
	}
}

func TestLoadFrom_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"missing database": {},
		"zero iterations":  {"DATABASE_URL": "x", "AGENT_MAX_ITERATIONS": "0"},
		"bad provider":     {"DATABASE_URL": "x", "LLM_PROVIDER": "llama"},
		"auth w/o secret":  {"DATABASE_URL": "x", "AUTH_REQUIRED": "true"},
	}
	for name, env := range cases {
		if _, err := LoadFrom(context.Background(), envconfig.MapLookuper(env)); err == nil {
			t.Fatalf("%s: expected error", name)
		} else if name == "bad provider" && !strings.Contains(err.Error(), "LLM_PROVIDER") {
			t.Fatalf("%s: unexpected error %v", name, err)
		}
	}
}
