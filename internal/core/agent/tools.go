package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/duveen2546R/FinManager/internal/core/domain"
	"github.com/duveen2546R/FinManager/internal/core/ports"
	"github.com/duveen2546R/FinManager/internal/core/service"
)

// ToolKind is the closed set of tools the agent may call.
type ToolKind int

const (
	ToolUnknown ToolKind = iota
	ToolFinancialHistory
	ToolFinancialPlanner
	ToolAddTransaction
)

var toolNames = map[ToolKind]string{
	ToolFinancialHistory: "financial_history_db",
	ToolFinancialPlanner: "financial_planner",
	ToolAddTransaction:   "add_transaction_db",
}

func (k ToolKind) String() string {
	if name, ok := toolNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseToolKind resolves a model-authored tool name. Surrounding whitespace,
// quotes and backticks are ignored; anything else must match exactly.
func ParseToolKind(name string) ToolKind {
	name = strings.Trim(strings.TrimSpace(name), "`'\"")
	for k, n := range toolNames {
		if n == name {
			return k
		}
	}
	return ToolUnknown
}

// Tool is one capability exposed to the reasoning loop. Invoke receives the
// session scope by value; implementations must never take the user identity
// from input.
type Tool interface {
	Kind() ToolKind
	Description() string
	Invoke(ctx context.Context, scope Scope, input string) (string, error)
}

// HistoryLookup answers questions from the user's transaction history.
type HistoryLookup interface {
	Lookup(ctx context.Context, userID, question string) (string, error)
}

// Advisor produces financial advice.
type Advisor interface {
	Advise(ctx context.Context, question, data string) (string, error)
}

// TransactionWriter persists a validated transaction.
type TransactionWriter interface {
	Write(ctx context.Context, in ports.WriteTransactionInput) (string, error)
}

// ── financial_history_db ─────────────────────────────────────────────────────

type HistoryTool struct {
	history HistoryLookup
}

func NewHistoryTool(history HistoryLookup) *HistoryTool {
	return &HistoryTool{history: history}
}

func (t *HistoryTool) Kind() ToolKind { return ToolFinancialHistory }

func (t *HistoryTool) Description() string {
	return "Use this tool to find information about a user's past financial transactions. Input should be a natural language question."
}

func (t *HistoryTool) Invoke(ctx context.Context, scope Scope, input string) (string, error) {
	return t.history.Lookup(ctx, scope.UserID, strings.TrimSpace(input))
}

// ── financial_planner ────────────────────────────────────────────────────────

type PlannerTool struct {
	advisor Advisor
}

func NewPlannerTool(advisor Advisor) *PlannerTool {
	return &PlannerTool{advisor: advisor}
}

func (t *PlannerTool) Kind() ToolKind { return ToolFinancialPlanner }

func (t *PlannerTool) Description() string {
	return "Use this for planning, scheduling, and advice questions. Use AFTER gathering data. Input must be 'question | data'."
}

func (t *PlannerTool) Invoke(ctx context.Context, _ Scope, input string) (string, error) {
	question, data := service.SplitPlannerInput(input)
	return t.advisor.Advise(ctx, question, data)
}

// ── add_transaction_db ───────────────────────────────────────────────────────

// writerPayload is the JSON the model sends. It has no user field; unknown
// keys, user_id included, are dropped by the decoder.
type writerPayload struct {
	TransactionID   string             `json:"transaction_id"`
	Title           string             `json:"title"`
	Amount          domain.AmountInput `json:"amount"`
	Category        string             `json:"category"`
	TransactionType string             `json:"transaction_type"`
	Description     *string            `json:"description"`
	Date            string             `json:"date"`
}

type WriterTool struct {
	writer TransactionWriter
}

func NewWriterTool(writer TransactionWriter) *WriterTool {
	return &WriterTool{writer: writer}
}

func (t *WriterTool) Kind() ToolKind { return ToolAddTransaction }

func (t *WriterTool) Description() string {
	return fmt.Sprintf(`Use this tool to add a new income or expense transaction to the database based on the user's request.
The input MUST be a single valid JSON string.

The JSON object must have the following keys:
- 'title': (string) A concise title for the transaction.
- 'amount': (number) The numerical amount of the transaction.
- 'category': (string) The category of the transaction.
- 'transaction_type': (string) Either 'Income' or 'Expense'.
- 'description': (string, optional) Any extra notes from the user.
- 'date': (string, optional) A specific ISO format date (e.g. "2024-07-30"). If not provided, current date will be used.

RULES FOR CATEGORIES:
1. If the 'transaction_type' is 'Expense', you MUST choose the 'category' from this EXACT list: [%s].
2. If the 'transaction_type' is 'Income', you MUST choose the 'category' from this EXACT list: [%s].
3. If the user's request is ambiguous or does not fit any category, you MUST use '%s'. DO NOT invent new categories.

Example User Request: "add an expense of 15 dollars for coffee with my friends"
Correct Action Input: {"title": "Coffee", "amount": 15.00, "category": "Food", "transaction_type": "Expense", "description": "Met with my friends"}`,
		domain.JoinCategories(domain.ExpenseCategories),
		domain.JoinCategories(domain.IncomeCategories),
		domain.CategoryOthers)
}

func (t *WriterTool) Invoke(ctx context.Context, scope Scope, input string) (string, error) {
	var p writerPayload
	if err := json.Unmarshal([]byte(cleanJSONInput(input)), &p); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrMalformedToolInput, err)
	}

	if _, err := t.writer.Write(ctx, ports.WriteTransactionInput{
		TransactionID:   p.TransactionID,
		UserID:          scope.UserID,
		Title:           p.Title,
		Description:     p.Description,
		Amount:          p.Amount,
		Category:        p.Category,
		TransactionType: p.TransactionType,
		Date:            p.Date,
		Source:          ports.SourceAgent,
	}); err != nil {
		return "", err
	}
	return fmt.Sprintf("Successfully added the transaction for '%s'.", strings.TrimSpace(p.Title)), nil
}

// cleanJSONInput strips markdown fences and any text around the outermost
// JSON object.
func cleanJSONInput(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)
	if start, end := strings.Index(s, "{"), strings.LastIndex(s, "}"); start >= 0 && end > start {
		s = s[start : end+1]
	}
	return s
}
