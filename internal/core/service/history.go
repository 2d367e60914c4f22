package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/duveen2546R/FinManager/internal/core/domain"
	"github.com/duveen2546R/FinManager/internal/core/ports"
)

// HistoryConfig bounds a history lookup.
type HistoryConfig struct {
	// TopK is the example budget handed to the SQL prompt.
	TopK int
	// MaxRows caps the rows rendered back to the agent.
	MaxRows int
}

// HistoryService answers questions about a user's past transactions by
// synthesizing and executing a read-only query.
type HistoryService struct {
	schema      ports.SchemaDescriber
	synthesizer *QuerySynthesizer
	executor    ports.QueryExecutor
	cfg         HistoryConfig
	log         zerolog.Logger
}

func NewHistoryService(schema ports.SchemaDescriber, synthesizer *QuerySynthesizer, executor ports.QueryExecutor, cfg HistoryConfig, log zerolog.Logger) *HistoryService {
	if cfg.TopK <= 0 {
		cfg.TopK = 5
	}
	if cfg.MaxRows <= 0 {
		cfg.MaxRows = cfg.TopK * 10
	}
	return &HistoryService{schema: schema, synthesizer: synthesizer, executor: executor, cfg: cfg, log: log}
}

// Lookup returns the rendered query result. Nothing is executed when
// synthesis fails.
func (h *HistoryService) Lookup(ctx context.Context, userID, question string) (string, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return "", fmt.Errorf("%w: user id is not a UUID", domain.ErrValidation)
	}
	if strings.TrimSpace(question) == "" {
		return "", fmt.Errorf("%w: question is empty", domain.ErrValidation)
	}

	schema, err := h.schema.DescribeSchema(ctx)
	if err != nil {
		return "", fmt.Errorf("describe schema: %w", err)
	}

	stmt, err := h.synthesizer.Synthesize(ctx, userID, question, schema, h.cfg.TopK)
	if err != nil {
		return "", err
	}

	h.log.Debug().Str("user_id", userID).Str("sql", stmt.String()).Msg("executing history query")
	return h.executor.ExecuteReadOnly(ctx, userID, stmt, h.cfg.MaxRows)
}
