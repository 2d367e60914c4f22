package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/duveen2546R/FinManager/internal/core/ports"
)

const plannerPromptTemplate = `You are a helpful financial assistant. Provide actionable advice for the following question:
Question: %s
Use this data: %s
Provide a clear, step-by-step plan or a concise summary.`

// PlanningAdvisor produces free-form financial advice from the model.
type PlanningAdvisor struct {
	model ports.LanguageModel
	log   zerolog.Logger
}

func NewPlanningAdvisor(model ports.LanguageModel, log zerolog.Logger) *PlanningAdvisor {
	return &PlanningAdvisor{model: model, log: log}
}

func (p *PlanningAdvisor) Advise(ctx context.Context, question, data string) (string, error) {
	prompt := fmt.Sprintf(plannerPromptTemplate, strings.TrimSpace(question), strings.TrimSpace(data))
	out, err := p.model.Complete(ctx, ports.CompletionRequest{Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("planner completion: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// SplitPlannerInput splits "question | data" on the first pipe. Missing data
// yields an empty string.
func SplitPlannerInput(input string) (question, data string) {
	question, data, _ = strings.Cut(input, "|")
	return strings.TrimSpace(question), strings.TrimSpace(data)
}
