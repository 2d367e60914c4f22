package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/duveen2546R/FinManager/internal/core/domain"
	"github.com/duveen2546R/FinManager/internal/core/ports"
)

type stubTxRepo struct {
	rows      map[string]domain.Transaction
	insertErr error
}

func newStubTxRepo() *stubTxRepo {
	return &stubTxRepo{rows: make(map[string]domain.Transaction)}
}

func (r *stubTxRepo) Insert(_ context.Context, t *domain.Transaction) (bool, error) {
	if r.insertErr != nil {
		return false, r.insertErr
	}
	if _, ok := r.rows[t.ID]; ok {
		return false, nil
	}
	r.rows[t.ID] = *t
	return true, nil
}

func (r *stubTxRepo) FindByID(_ context.Context, id string) (*domain.Transaction, error) {
	t, ok := r.rows[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return &t, nil
}

func (r *stubTxRepo) ListByUser(_ context.Context, userID string) ([]domain.Transaction, error) {
	var out []domain.Transaction
	for _, t := range r.rows {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

var fixedNow = time.Date(2024, 7, 30, 12, 0, 0, 0, time.UTC)

func newTxSvc(t *testing.T) (*TransactionService, *stubTxRepo, string) {
	t.Helper()
	users := newStubUserRepo()
	u, _ := users.Create(context.Background(), &domain.User{ID: "11111111-1111-1111-1111-111111111111", Email: "u@example.com"})
	repo := newStubTxRepo()
	svc := NewTransactionService(repo, users, zerolog.Nop())
	svc.now = func() time.Time { return fixedNow }
	return svc, repo, u.ID
}

func validInput(userID string) ports.WriteTransactionInput {
	return ports.WriteTransactionInput{
		UserID:          userID,
		Title:           "Coffee",
		Amount:          "15.00",
		Category:        "Food",
		TransactionType: "Expense",
	}
}

func TestTransactionService_Write_DefaultsDateToNow(t *testing.T) {
	svc, repo, uid := newTxSvc(t)

	id, err := svc.Write(context.Background(), validInput(uid))
	if err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	got := repo.rows[id]
	if !got.Date.Equal(fixedNow) {
		t.Fatalf("expected date %v, got %v", fixedNow, got.Date)
	}
	if got.Amount.String() != "15" {
		t.Fatalf("expected amount 15, got %s", got.Amount)
	}
}

func TestTransactionService_Write_UnparsableDateFallsBack(t *testing.T) {
	svc, repo, uid := newTxSvc(t)
	in := validInput(uid)
	in.Date = "yesterday-ish"

	id, err := svc.Write(context.Background(), in)
	if err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if !repo.rows[id].Date.Equal(fixedNow) {
		t.Fatalf("expected fallback to now, got %v", repo.rows[id].Date)
	}
}

func TestTransactionService_Write_ParsesDateLayouts(t *testing.T) {
	svc, repo, uid := newTxSvc(t)
	want := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

	for _, raw := range []string{"2024-07-01", "2024-07-01T00:00:00", "2024-07-01 00:00:00", "2024-07-01T00:00:00Z"} {
		in := validInput(uid)
		in.Date = raw
		id, err := svc.Write(context.Background(), in)
		if err != nil {
			t.Fatalf("Write(%q) returned error: %v", raw, err)
		}
		if !repo.rows[id].Date.Equal(want) {
			t.Fatalf("Write(%q): expected %v, got %v", raw, want, repo.rows[id].Date)
		}
	}
}

func TestTransactionService_Write_AmountStringAndNumberEquivalent(t *testing.T) {
	svc, repo, uid := newTxSvc(t)

	var fromNumber, fromString domain.AmountInput
	if err := json.Unmarshal([]byte(`15.5`), &fromNumber); err != nil {
		t.Fatalf("unmarshal number: %v", err)
	}
	if err := json.Unmarshal([]byte(`"15.50"`), &fromString); err != nil {
		t.Fatalf("unmarshal string: %v", err)
	}

	a := validInput(uid)
	a.Amount = fromNumber
	b := validInput(uid)
	b.Amount = fromString

	idA, err := svc.Write(context.Background(), a)
	if err != nil {
		t.Fatalf("write number: %v", err)
	}
	idB, err := svc.Write(context.Background(), b)
	if err != nil {
		t.Fatalf("write string: %v", err)
	}
	if !repo.rows[idA].Amount.Equal(repo.rows[idB].Amount) {
		t.Fatalf("amounts differ: %s vs %s", repo.rows[idA].Amount, repo.rows[idB].Amount)
	}
}

func TestTransactionService_Write_Rejections(t *testing.T) {
	svc, repo, uid := newTxSvc(t)

	cases := map[string]func(*ports.WriteTransactionInput){
		"missing title":          func(in *ports.WriteTransactionInput) { in.Title = " " },
		"missing amount":         func(in *ports.WriteTransactionInput) { in.Amount = "" },
		"bad amount":             func(in *ports.WriteTransactionInput) { in.Amount = "fifteen" },
		"lowercase category":     func(in *ports.WriteTransactionInput) { in.Category = "food" },
		"income category on exp": func(in *ports.WriteTransactionInput) { in.Category = "Salary" },
		"unknown type":           func(in *ports.WriteTransactionInput) { in.TransactionType = "Transfer" },
		"unknown user":           func(in *ports.WriteTransactionInput) { in.UserID = "22222222-2222-2222-2222-222222222222" },
		"bad transaction id":     func(in *ports.WriteTransactionInput) { in.TransactionID = "abc" },
	}
	for name, mutate := range cases {
		in := validInput(uid)
		mutate(&in)
		if _, err := svc.Write(context.Background(), in); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("%s: expected ErrValidation, got %v", name, err)
		}
	}
	if len(repo.rows) != 0 {
		t.Fatalf("expected no rows stored, got %d", len(repo.rows))
	}
}

func TestTransactionService_Write_WithoutIDCreatesDuplicates(t *testing.T) {
	svc, repo, uid := newTxSvc(t)

	if _, err := svc.Write(context.Background(), validInput(uid)); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if _, err := svc.Write(context.Background(), validInput(uid)); err != nil {
		t.Fatalf("second write: %v", err)
	}
	if len(repo.rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(repo.rows))
	}
}

func TestTransactionService_Write_IdempotentWithID(t *testing.T) {
	svc, repo, uid := newTxSvc(t)
	in := validInput(uid)
	in.TransactionID = "33333333-3333-3333-3333-333333333333"

	for i := 0; i < 2; i++ {
		id, err := svc.Write(context.Background(), in)
		if err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
		if id != in.TransactionID {
			t.Fatalf("expected id %s, got %s", in.TransactionID, id)
		}
	}
	if len(repo.rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(repo.rows))
	}
}

func TestTransactionService_Write_PersistenceError(t *testing.T) {
	svc, repo, uid := newTxSvc(t)
	repo.insertErr = errors.New("connection reset")

	if _, err := svc.Write(context.Background(), validInput(uid)); !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
}

func TestTransactionService_List_NewestFirst(t *testing.T) {
	svc, _, uid := newTxSvc(t)

	for _, d := range []string{"2024-01-01", "2024-03-01", "2024-02-01"} {
		in := validInput(uid)
		in.Date = d
		if _, err := svc.Write(context.Background(), in); err != nil {
			t.Fatalf("write %s: %v", d, err)
		}
	}

	txs, err := svc.List(context.Background(), uid)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(txs) != 3 {
		t.Fatalf("expected 3 transactions, got %d", len(txs))
	}
	for i := 1; i < len(txs); i++ {
		if txs[i].Date.After(txs[i-1].Date) {
			t.Fatalf("not newest first at %d: %v after %v", i, txs[i].Date, txs[i-1].Date)
		}
	}
	if txs[0].Date.Month() != time.March {
		t.Fatalf("expected March first, got %v", txs[0].Date)
	}
}
