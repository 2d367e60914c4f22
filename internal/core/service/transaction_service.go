package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/duveen2546R/FinManager/internal/core/domain"
	"github.com/duveen2546R/FinManager/internal/core/ports"
	"github.com/duveen2546R/FinManager/internal/metrics"
)

// dateLayouts are tried in order when parsing a caller-supplied date.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// TransactionService implements ports.TransactionService.
type TransactionService struct {
	repo  ports.TransactionRepository
	users ports.UserRepository
	log   zerolog.Logger
	now   func() time.Time
}

func NewTransactionService(repo ports.TransactionRepository, users ports.UserRepository, log zerolog.Logger) *TransactionService {
	return &TransactionService{
		repo:  repo,
		users: users,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Write validates in and stores it as a new transaction, returning its id.
// When in.TransactionID names an existing row of the same user the call is a
// no-op that returns that id.
func (s *TransactionService) Write(ctx context.Context, in ports.WriteTransactionInput) (string, error) {
	tx, err := s.build(ctx, in)
	if err != nil {
		return "", err
	}

	inserted, err := s.repo.Insert(ctx, tx)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", tx.UserID).Msg("failed to insert transaction")
		if errors.Is(err, domain.ErrPersistence) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	if !inserted {
		existing, err := s.repo.FindByID(ctx, tx.ID)
		if err != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrPersistence, err)
		}
		if existing.UserID != tx.UserID {
			return "", fmt.Errorf("%w: transaction_id already in use", domain.ErrValidation)
		}
		s.log.Info().Str("transaction_id", tx.ID).Msg("transaction already recorded, replay ignored")
		return tx.ID, nil
	}

	source := in.Source
	if source == "" {
		source = ports.SourceAPI
	}
	metrics.TransactionsCreatedTotal.WithLabelValues(string(tx.Type), source).Inc()
	s.log.Info().
		Str("transaction_id", tx.ID).
		Str("user_id", tx.UserID).
		Str("category", string(tx.Category)).
		Str("source", source).
		Msg("transaction created")

	return tx.ID, nil
}

func (s *TransactionService) build(ctx context.Context, in ports.WriteTransactionInput) (*domain.Transaction, error) {
	userID := strings.TrimSpace(in.UserID)
	title := strings.TrimSpace(in.Title)
	rawAmount := strings.TrimSpace(string(in.Amount))

	var missing []string
	if userID == "" {
		missing = append(missing, "user_id")
	}
	if title == "" {
		missing = append(missing, "title")
	}
	if rawAmount == "" {
		missing = append(missing, "amount")
	}
	if strings.TrimSpace(in.Category) == "" {
		missing = append(missing, "category")
	}
	if strings.TrimSpace(in.TransactionType) == "" {
		missing = append(missing, "transaction_type")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing required fields: %s", domain.ErrValidation, strings.Join(missing, ", "))
	}

	txType, err := domain.ParseTransactionType(in.TransactionType)
	if err != nil {
		return nil, err
	}
	category, err := domain.ValidateCategory(txType, in.Category)
	if err != nil {
		return nil, err
	}
	amount, err := decimal.NewFromString(rawAmount)
	if err != nil {
		return nil, fmt.Errorf("%w: amount %q is not a number", domain.ErrValidation, rawAmount)
	}

	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: unknown user_id", domain.ErrValidation)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	id := strings.TrimSpace(in.TransactionID)
	if id == "" {
		id = uuid.NewString()
	} else if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: transaction_id must be a UUID", domain.ErrValidation)
	}

	var description *string
	if in.Description != nil {
		if d := strings.TrimSpace(*in.Description); d != "" {
			description = &d
		}
	}

	return &domain.Transaction{
		ID:          id,
		UserID:      userID,
		Title:       title,
		Description: description,
		Amount:      amount,
		Category:    category,
		Type:        txType,
		Date:        s.parseDate(in.Date),
	}, nil
}

// parseDate falls back to now for empty or unparsable input.
func (s *TransactionService) parseDate(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return s.now()
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}
	s.log.Debug().Str("date", raw).Msg("unparsable transaction date, using now")
	return s.now()
}

// List returns the user's transactions, newest first.
func (s *TransactionService) List(ctx context.Context, userID string) ([]domain.Transaction, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user_id is required", domain.ErrValidation)
	}

	txs, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	sort.SliceStable(txs, func(i, j int) bool {
		if txs[i].Date.Equal(txs[j].Date) {
			return txs[i].ID > txs[j].ID
		}
		return txs[i].Date.After(txs[j].Date)
	})
	return txs, nil
}
