package sqlguard

import (
	"errors"
	"strings"
	"testing"

	"github.com/duveen2546R/FinManager/internal/core/domain"
)

const uid = "8f14e45f-ceea-4a7b-9b1e-3c2d5f6a7b8c"

func TestExtract_StripsProseAndTerminator(t *testing.T) {
	raw := "Sure! Here is the query you asked for:\n" +
		"SELECT category, SUM(amount) FROM transactions WHERE user_id = '" + uid + "' GROUP BY category;\n" +
		"This returns the total per category."

	got, err := Extract(raw)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	want := "SELECT category, SUM(amount) FROM transactions WHERE user_id = '" + uid + "' GROUP BY category"
	if string(got) != want {
		t.Fatalf("unexpected statement:\n got: %q\nwant: %q", got, want)
	}
}

func TestExtract_MarkdownFence(t *testing.T) {
	raw := "```sql\nselect * from transactions where user_id = '" + uid + "'\n```"
	got, err := Extract(raw)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if string(got) != "select * from transactions where user_id = '"+uid+"'" {
		t.Fatalf("unexpected statement: %q", got)
	}
}

func TestExtract_SemicolonInsideLiteralIsKept(t *testing.T) {
	got, err := Extract("SELECT title FROM transactions WHERE title = 'a;b' AND user_id = '" + uid + "';")
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if string(got) != "SELECT title FROM transactions WHERE title = 'a;b' AND user_id = '"+uid+"'" {
		t.Fatalf("unexpected statement: %q", got)
	}
}

func TestExtract_NoSelect(t *testing.T) {
	for _, raw := range []string{
		"I cannot answer that.",
		"DELETE FROM transactions",
		"",
		"selected items are unavailable",
	} {
		if _, err := Extract(raw); !errors.Is(err, domain.ErrSynthesisFailure) {
			t.Fatalf("%q: expected ErrSynthesisFailure, got %v", raw, err)
		}
	}
}

func TestExtract_DropsTrailingStatement(t *testing.T) {
	got, err := Extract("SELECT 1 FROM transactions WHERE user_id = '" + uid + "'; DROP TABLE transactions;")
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if string(got) != "SELECT 1 FROM transactions WHERE user_id = '"+uid+"'" {
		t.Fatalf("unexpected statement: %q", got)
	}
}

func TestGuard_AcceptsScopedSelect(t *testing.T) {
	g := NewGuard(Policy{AllowedTables: []string{"transactions"}})
	stmts := []Statement{
		Statement("SELECT SUM(amount) FROM transactions WHERE user_id = '" + uid + "' AND category = 'Food'"),
		Statement("SELECT t.title FROM transactions t WHERE t.user_id='" + uid + "' ORDER BY t.date DESC LIMIT 5"),
		Statement("SELECT title FROM public.transactions WHERE '" + uid + "' = user_id AND title = 'Delete fee'"),
	}
	for _, s := range stmts {
		if err := g.Check(s, uid); err != nil {
			t.Fatalf("%q rejected: %v", s, err)
		}
	}
}

func TestGuard_Rejects(t *testing.T) {
	g := NewGuard(Policy{AllowedTables: []string{"transactions"}})
	other := "11111111-2222-3333-4444-555555555555"
	cases := map[string]Statement{
		"unscoped":        "SELECT * FROM transactions",
		"other user":      Statement("SELECT * FROM transactions WHERE user_id = '" + other + "'"),
		"users table":     Statement("SELECT email, password FROM users WHERE user_id = '" + uid + "'"),
		"join users":      Statement("SELECT * FROM transactions JOIN users ON true WHERE transactions.user_id = '" + uid + "'"),
		"catalog":         Statement("SELECT * FROM transactions WHERE user_id = '" + uid + "' AND EXISTS (SELECT 1 FROM pg_catalog.pg_user)"),
		"sleep":           Statement("SELECT pg_sleep(10) FROM transactions WHERE user_id = '" + uid + "'"),
		"set config":      Statement("SELECT set_config('app.current_user_id', 'x', true) FROM transactions WHERE user_id = '" + uid + "'"),
		"select into":     Statement("SELECT * INTO copy FROM transactions WHERE user_id = '" + uid + "'"),
		"stacked":         Statement("SELECT 1 FROM transactions WHERE user_id = '" + uid + "'; DELETE FROM transactions"),
		"not a select":    Statement("WITH d AS (DELETE FROM transactions RETURNING *) SELECT * FROM d WHERE user_id = '" + uid + "'"),
		"or bypass scope": Statement("SELECT * FROM transactions WHERE user_id = '" + uid + "x'"),
	}
	for name, s := range cases {
		if err := g.Check(s, uid); !errors.Is(err, domain.ErrSynthesisFailure) {
			t.Fatalf("%s: expected ErrSynthesisFailure, got %v", name, err)
		}
	}
}

func TestGuard_EmptyUserIDNeverScoped(t *testing.T) {
	g := NewGuard(Policy{})
	if err := g.Check("SELECT * FROM transactions WHERE user_id = ''", ""); !errors.Is(err, domain.ErrSynthesisFailure) {
		t.Fatalf("expected ErrSynthesisFailure, got %v", err)
	}
}

func TestGuard_RejectsTablesOutsideJoinSyntax(t *testing.T) {
	g := NewGuard(Policy{AllowedTables: []string{"transactions"}})
	scope := " WHERE t.user_id = '" + uid + "'"
	cases := map[string]Statement{
		"comma join":        Statement("SELECT u.email, u.password FROM transactions t, users u" + scope),
		"comma after join":  Statement("SELECT * FROM transactions t JOIN transactions x ON x.transaction_id = t.transaction_id, users u" + scope),
		"quoted table":      Statement(`SELECT * FROM transactions t, "users" u` + scope),
		"subquery":          Statement("SELECT * FROM transactions t" + scope + " AND t.title IN (SELECT email FROM users)"),
		"derived table":     Statement("SELECT * FROM (SELECT * FROM users) t" + scope),
		"table subquery":    Statement("SELECT * FROM transactions t" + scope + " AND t.title IN (TABLE users)"),
		"function in from":  Statement("SELECT * FROM transactions t, generate_series(1, 10) g" + scope),
		"foreign schema":    Statement("SELECT * FROM audit.transactions t" + scope),
		"xml table reader":  Statement("SELECT table_to_xml('users', true, false, '') FROM transactions t" + scope),
		"quoted set_config": Statement(`SELECT "set_config"('app.current_user_id', '', true) FROM transactions t` + scope),
	}
	for name, s := range cases {
		if err := g.Check(s, uid); !errors.Is(err, domain.ErrSynthesisFailure) {
			t.Fatalf("%s: expected ErrSynthesisFailure, got %v", name, err)
		}
	}
}

func TestGuard_RejectsLiteralsThatHideCode(t *testing.T) {
	g := NewGuard(Policy{AllowedTables: []string{"transactions"}})
	scope := " FROM transactions WHERE user_id = '" + uid + "'"
	cases := map[string]Statement{
		"escape string":   Statement(`SELECT E'\'', set_config('app.current_user_id', '', true)` + scope),
		"lower escape":    Statement(`SELECT e'x'` + scope),
		"unicode escape":  Statement(`SELECT U&'\0027'` + scope),
		"backslash":       Statement(`SELECT 'a\'` + scope),
		"dollar quoting":  Statement(`SELECT $$', set_config('app.current_user_id', '', true), '$$` + scope),
		"tagged dollar":   Statement(`SELECT $q$x$q$` + scope),
		"open comment":    Statement("SELECT 1" + scope + " /* unterminated"),
		"open literal":    Statement("SELECT 'x" + scope),
		"hidden in block": Statement("SELECT /* ' */ set_config('app.current_user_id', '', true) /* ' */" + scope),
	}
	for name, s := range cases {
		if err := g.Check(s, uid); !errors.Is(err, domain.ErrSynthesisFailure) {
			t.Fatalf("%s: expected ErrSynthesisFailure, got %v", name, err)
		}
	}
}

func TestGuard_ScopeMustBeARealWherePredicate(t *testing.T) {
	g := NewGuard(Policy{AllowedTables: []string{"transactions"}})
	pred := "user_id = '" + uid + "'"
	cases := map[string]Statement{
		"block comment":       Statement("SELECT * FROM transactions /* " + pred + " */"),
		"line comment":        Statement("SELECT * FROM transactions -- " + pred),
		"after where comment": Statement("SELECT * FROM transactions WHERE amount > 0 /* " + pred + " */"),
		"select list":         Statement("SELECT " + pred + " AS mine FROM transactions"),
		"inside literal":      Statement("SELECT * FROM transactions WHERE title = '" + strings.ReplaceAll(pred, "'", "''") + "'"),
	}
	for name, s := range cases {
		if err := g.Check(s, uid); !errors.Is(err, domain.ErrSynthesisFailure) {
			t.Fatalf("%s: expected ErrSynthesisFailure, got %v", name, err)
		}
	}
}

func TestGuard_AcceptsCommonReportingShapes(t *testing.T) {
	g := NewGuard(Policy{AllowedTables: []string{"transactions"}})
	scope := "user_id = '" + uid + "'"
	stmts := []Statement{
		Statement("SELECT EXTRACT(MONTH FROM date) AS m, SUM(amount) FROM transactions WHERE " + scope + " GROUP BY m ORDER BY m"),
		Statement("SELECT category, COUNT(*) FROM transactions WHERE " + scope + " AND category IS DISTINCT FROM 'Others' GROUP BY category"),
		Statement("-- the user's food spend\nSELECT SUM(amount) FROM transactions WHERE " + scope + " AND category = 'Food'"),
		Statement("SELECT a.title FROM transactions a JOIN transactions b ON b.transaction_id = a.transaction_id, transactions c WHERE a." + scope),
		Statement(`SELECT title FROM "transactions" WHERE "user_id" = '` + uid + `' AND title = 'it''s rent'`),
		Statement("SELECT title FROM transactions WHERE " + scope + " AND amount > (SELECT AVG(amount) FROM transactions WHERE " + scope + ")"),
	}
	for _, s := range stmts {
		if err := g.Check(s, uid); err != nil {
			t.Fatalf("%q rejected: %v", s, err)
		}
	}
}

func TestExtract_IgnoresQuotesInsideComments(t *testing.T) {
	got, err := Extract("SELECT 1 FROM transactions WHERE user_id = '" + uid + "' -- the user's rows\n;\nThat is all.")
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	want := "SELECT 1 FROM transactions WHERE user_id = '" + uid + "' -- the user's rows"
	if string(got) != want {
		t.Fatalf("unexpected statement:\n got: %q\nwant: %q", got, want)
	}
}
