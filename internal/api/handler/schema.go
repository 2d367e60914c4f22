package handler

import (
	"encoding/json"
	"time"

	"github.com/duveen2546R/FinManager/internal/core/domain"
)

// envelope statuses
const (
	statusSuccess = "success"
	statusError   = "error"
)

type errorResponse struct {
	Status  string `json:"status" example:"error"`
	Message string `json:"message"`
}

func errorBody(msg string) errorResponse {
	return errorResponse{Status: statusError, Message: msg}
}

// ── auth ─────────────────────────────────────────────────────────────────────

type registerRequest struct {
	Name     string  `json:"name"     validate:"required"`
	Email    string  `json:"email"    validate:"required,email"`
	Password string  `json:"password" validate:"required"`
	PhoneNo  *string `json:"phone_no"`
}

type registerResponse struct {
	Status  string `json:"status"  example:"success"`
	Message string `json:"message" example:"User registered successfully"`
	UserID  string `json:"user_id"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Status  string  `json:"status"  example:"success"`
	Message string  `json:"message" example:"Login successful"`
	UserID  string  `json:"user_id"`
	Name    string  `json:"name"`
	PhoneNo *string `json:"phone_no"`
	Email   string  `json:"email"`
	Token   string  `json:"token,omitempty"`
}

// ── transactions ─────────────────────────────────────────────────────────────

type createTransactionRequest struct {
	TransactionID   string             `json:"transaction_id"`
	UserID          string             `json:"user_id"`
	Title           string             `json:"title"`
	Description     *string            `json:"description"`
	Amount          domain.AmountInput `json:"amount" swaggertype:"number"`
	Category        string             `json:"category"`
	TransactionType string             `json:"transaction_type"`
	Date            string             `json:"date"`
}

type createTransactionResponse struct {
	Status        string `json:"status"  example:"success"`
	Message       string `json:"message" example:"Transaction added successfully"`
	TransactionID string `json:"transaction_id"`
}

type transactionItem struct {
	TransactionID   string      `json:"transaction_id"`
	Title           string      `json:"title"`
	Description     *string     `json:"description"`
	Amount          json.Number `json:"amount" swaggertype:"number"`
	Category        string      `json:"category"`
	TransactionType string      `json:"transaction_type"`
	Date            string      `json:"date"`
}

type listTransactionsResponse struct {
	Status       string            `json:"status" example:"success"`
	Transactions []transactionItem `json:"transactions"`
}

func toTransactionItems(txs []domain.Transaction) []transactionItem {
	items := make([]transactionItem, len(txs))
	for i, t := range txs {
		items[i] = transactionItem{
			TransactionID:   t.ID,
			Title:           t.Title,
			Description:     t.Description,
			Amount:          json.Number(t.Amount.StringFixed(2)),
			Category:        string(t.Category),
			TransactionType: string(t.Type),
			Date:            t.Date.Format(time.RFC3339),
		}
	}
	return items
}

// ── agent ────────────────────────────────────────────────────────────────────

type agentRequest struct {
	UserID   string `json:"user_id"  validate:"required"`
	Question string `json:"question" validate:"required"`
}

type agentResponse struct {
	Status string `json:"status" example:"success"`
	Answer string `json:"answer"`
}
