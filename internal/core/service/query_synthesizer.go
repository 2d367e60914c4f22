package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/duveen2546R/FinManager/internal/core/domain"
	"github.com/duveen2546R/FinManager/internal/core/ports"
	"github.com/duveen2546R/FinManager/internal/core/sqlguard"
	"github.com/duveen2546R/FinManager/internal/metrics"
)

const sqlPromptTemplate = `You are a PostgreSQL expert. Your sole purpose is to generate a single, syntactically correct PostgreSQL query to answer the user's question.
- DO NOT add any explanation or markdown formatting.
- ONLY output the raw SQL query.
- The query MUST be a SELECT and MUST filter rows with user_id = '%s'.

Here is the table info: %s
You can use the following number of examples for each table: %d

Question: %s
SQL Query:`

// QuerySynthesizer turns a question into a guarded, user-scoped SELECT.
type QuerySynthesizer struct {
	model ports.LanguageModel
	guard *sqlguard.Guard
	log   zerolog.Logger
}

func NewQuerySynthesizer(model ports.LanguageModel, guard *sqlguard.Guard, log zerolog.Logger) *QuerySynthesizer {
	return &QuerySynthesizer{model: model, guard: guard, log: log}
}

// Synthesize asks the model for SQL, extracts the SELECT and checks it against
// the guard policy. Any returned error wraps domain.ErrSynthesisFailure.
func (q *QuerySynthesizer) Synthesize(ctx context.Context, userID, question, schema string, topK int) (sqlguard.Statement, error) {
	prompt := fmt.Sprintf(sqlPromptTemplate, userID, schema, topK, strings.TrimSpace(question))

	raw, err := q.model.Complete(ctx, ports.CompletionRequest{Prompt: prompt})
	if err != nil {
		metrics.SQLSynthesisTotal.WithLabelValues("model_error").Inc()
		return "", fmt.Errorf("%w: %v", domain.ErrSynthesisFailure, err)
	}

	stmt, err := sqlguard.Extract(raw)
	if err != nil {
		metrics.SQLSynthesisTotal.WithLabelValues("no_query").Inc()
		q.log.Debug().Str("model_output", raw).Msg("no SELECT in model output")
		return "", err
	}

	if err := q.guard.Check(stmt, userID); err != nil {
		metrics.SQLSynthesisTotal.WithLabelValues("rejected").Inc()
		q.log.Warn().Err(err).Str("sql", stmt.String()).Msg("synthesized query rejected")
		return "", err
	}

	metrics.SQLSynthesisTotal.WithLabelValues("ok").Inc()
	q.log.Debug().Str("sql", stmt.String()).Msg("synthesized query accepted")
	return stmt, nil
}

