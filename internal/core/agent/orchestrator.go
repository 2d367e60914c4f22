package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/duveen2546R/FinManager/internal/core/domain"
	"github.com/duveen2546R/FinManager/internal/core/ports"
	"github.com/duveen2546R/FinManager/internal/metrics"
)

const defaultMaxIterations = 10

// Observation texts fed back to the model.
const (
	obsNoQuery     = "I could not generate a valid SQL query for that question."
	obsInvalidJSON = "Error: The input was not valid JSON. Please provide transaction details in the correct format."
	obsToolFailed  = "Error: the tool failed to complete. Try a different approach or answer with what you know."
	obsTimeout     = "Error: the tool timed out."
	obsBadFormat   = "Invalid Format: respond with either 'Action:' and 'Action Input:' or 'Final Answer:'."
)

// Config tunes the reasoning loop.
type Config struct {
	// MaxIterations bounds the number of model turns per run.
	MaxIterations int
	// ToolTimeout bounds each tool invocation. Zero means no extra bound.
	ToolTimeout time.Duration
}

// Orchestrator runs the reason/act loop for one question at a time. It holds
// no per-run state and is safe for concurrent use.
type Orchestrator struct {
	model ports.LanguageModel
	tools []Tool
	index map[ToolKind]Tool
	cfg   Config
	log   zerolog.Logger
}

func NewOrchestrator(model ports.LanguageModel, tools []Tool, cfg Config, log zerolog.Logger) *Orchestrator {
	if cfg.MaxIterations < 1 {
		cfg.MaxIterations = defaultMaxIterations
	}
	index := make(map[ToolKind]Tool, len(tools))
	for _, t := range tools {
		index[t.Kind()] = t
	}
	return &Orchestrator{model: model, tools: tools, index: index, cfg: cfg, log: log}
}

// Run answers question on behalf of userID.
func (o *Orchestrator) Run(ctx context.Context, userID, question string) (string, error) {
	userID = strings.TrimSpace(userID)
	question = strings.TrimSpace(question)
	if userID == "" || question == "" {
		return "", fmt.Errorf("%w: user_id and question are required", domain.ErrValidation)
	}

	sess := newSession(userID, question)
	log := o.log.With().Str("user_id", userID).Logger()

	for i := 1; i <= o.cfg.MaxIterations; i++ {
		out, err := o.model.Complete(ctx, ports.CompletionRequest{
			Prompt: buildPrompt(o.tools, sess),
			Stop:   []string{observationStop},
		})
		if err != nil {
			metrics.AgentRunsTotal.WithLabelValues("reasoning_error").Inc()
			metrics.AgentIterations.Observe(float64(i))
			log.Error().Err(err).Int("iteration", i).Msg("reasoning step failed")
			return "", fmt.Errorf("%w: %v", domain.ErrReasoning, err)
		}

		step := parseReasoning(out)
		switch step.kind {
		case stepFinal:
			metrics.AgentRunsTotal.WithLabelValues("answered").Inc()
			metrics.AgentIterations.Observe(float64(i))
			log.Debug().Interface("steps", sess.Steps).Int("iterations", i).Msg("agent answered")
			return step.finalAnswer, nil

		case stepAction:
			obs := o.invoke(ctx, sess.Scope, step.action, step.actionInput, log)
			sess.record(Step{Thought: step.thought, Tool: step.action, Input: step.actionInput, Observation: obs})

		default:
			log.Debug().Str("output", out).Msg("unparsable reasoning output")
			sess.record(Step{Thought: step.thought, Observation: obsBadFormat})
		}
	}

	metrics.AgentRunsTotal.WithLabelValues("exhausted").Inc()
	metrics.AgentIterations.Observe(float64(o.cfg.MaxIterations))
	log.Warn().Interface("steps", sess.Steps).Msg("agent iteration cap reached")
	return "", domain.ErrOrchestrationExhausted
}

// invoke runs one tool and folds every failure into observation text.
func (o *Orchestrator) invoke(ctx context.Context, scope Scope, name, input string, log zerolog.Logger) (obs string) {
	kind := ParseToolKind(name)
	tool, ok := o.index[kind]
	if !ok {
		metrics.AgentToolCallsTotal.WithLabelValues("unknown", "unknown_tool").Inc()
		return fmt.Sprintf("%s is not a valid tool, try one of [%s].", strings.TrimSpace(name), o.toolNames())
	}

	defer func() {
		if r := recover(); r != nil {
			metrics.AgentToolCallsTotal.WithLabelValues(kind.String(), "panic").Inc()
			log.Error().Interface("panic", r).Str("tool", kind.String()).Msg("tool panicked")
			obs = obsToolFailed
		}
	}()

	if o.cfg.ToolTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.ToolTimeout)
		defer cancel()
	}

	out, err := tool.Invoke(ctx, scope, input)
	if err != nil {
		metrics.AgentToolCallsTotal.WithLabelValues(kind.String(), "error").Inc()
		log.Warn().Err(err).Str("tool", kind.String()).Str("input", input).Msg("tool failed")
		return observationFor(err)
	}
	metrics.AgentToolCallsTotal.WithLabelValues(kind.String(), "ok").Inc()
	return out
}

func (o *Orchestrator) toolNames() string {
	names := make([]string, len(o.tools))
	for i, t := range o.tools {
		names[i] = t.Kind().String()
	}
	return strings.Join(names, ", ")
}

func observationFor(err error) string {
	switch {
	case errors.Is(err, domain.ErrSynthesisFailure):
		return obsNoQuery
	case errors.Is(err, domain.ErrMalformedToolInput):
		return obsInvalidJSON
	case errors.Is(err, context.DeadlineExceeded):
		return obsTimeout
	case errors.Is(err, domain.ErrValidation):
		return "Error: " + err.Error()
	default:
		return obsToolFailed
	}
}
