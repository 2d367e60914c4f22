// Package sqlguard is the sanitizing stage between model-authored SQL and the
// database. Model output is untrusted text: Extract pulls out a single SELECT
// statement and Check rejects anything that is not a read-only query scoped to
// the requesting user.
package sqlguard

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/duveen2546R/FinManager/internal/core/domain"
)

// Statement is a SELECT that passed extraction. It is executed as a literal.
type Statement string

func (s Statement) String() string { return string(s) }

var (
	selectToken = regexp.MustCompile(`(?i)\bSELECT\b`)

	forbiddenKeywords = regexp.MustCompile(`(?i)\b(INSERT|UPDATE|DELETE|DROP|ALTER|CREATE|TRUNCATE|GRANT|REVOKE|COPY|MERGE|CALL|DO|VACUUM|ANALYZE|SET|RESET|LOCK|REINDEX|CLUSTER|COMMENT|EXECUTE|PREPARE|DEALLOCATE|LISTEN|NOTIFY|INTO|TABLE)\b`)
	forbiddenFuncs    = regexp.MustCompile(`(?i)\b(pg_sleep\w*|set_config|current_setting|pg_read\w*|pg_ls_\w+|pg_stat_file|lo_\w+|dblink\w*|pg_terminate_backend|pg_cancel_backend|\w*_to_xml\w*)\s*\(`)
	systemSchemas     = regexp.MustCompile(`(?i)\b(pg_catalog|information_schema)\b`)
	whereToken        = regexp.MustCompile(`(?i)\bWHERE\b`)
)

// Extract returns the first SELECT statement found in raw model output. The
// statement runs from the SELECT keyword up to the first terminator or
// markdown fence outside a quoted literal.
func Extract(raw string) (Statement, error) {
	loc := selectToken.FindStringIndex(raw)
	if loc == nil {
		return "", fmt.Errorf("%w: no query produced", domain.ErrSynthesisFailure)
	}
	stmt := strings.TrimSpace(cutAtTerminator(raw[loc[0]:]))
	if stmt == "" {
		return "", fmt.Errorf("%w: no query produced", domain.ErrSynthesisFailure)
	}
	return Statement(stmt), nil
}

// cutAtTerminator truncates s at the first ';' or "```" that is not inside a
// single-quoted literal, a double-quoted identifier or a comment.
func cutAtTerminator(s string) string {
	var inSingle, inDouble bool
	for i := 0; i < len(s); i++ {
		switch ch := s[i]; {
		case ch == '\'' && !inDouble:
			inSingle = !inSingle
		case ch == '"' && !inSingle:
			inDouble = !inDouble
		case inSingle || inDouble:
		case ch == '-' && strings.HasPrefix(s[i:], "--"):
			end := strings.IndexByte(s[i:], '\n')
			if end < 0 {
				return s
			}
			i += end
		case ch == '/' && strings.HasPrefix(s[i:], "/*"):
			end, ok := blockCommentEnd(s, i)
			if !ok {
				return s
			}
			i = end - 1
		case ch == ';':
			return s[:i]
		case ch == '`' && strings.HasPrefix(s[i:], "```"):
			return s[:i]
		}
	}
	return s
}

// Policy configures which tables a synthesized statement may read.
type Policy struct {
	AllowedTables []string
}

// Guard validates extracted statements against a Policy.
type Guard struct {
	allowed map[string]struct{}
}

func NewGuard(p Policy) *Guard {
	allowed := make(map[string]struct{}, len(p.AllowedTables))
	for _, t := range p.AllowedTables {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			allowed[t] = struct{}{}
		}
	}
	return &Guard{allowed: allowed}
}

// Check rejects statements that could mutate data, escape the allowed tables,
// or are not filtered by userID.
func (g *Guard) Check(stmt Statement, userID string) error {
	code, bare, err := normalize(string(stmt))
	if err != nil {
		return err
	}
	if !strings.EqualFold(firstWord(bare), "SELECT") {
		return fmt.Errorf("%w: statement is not a SELECT", domain.ErrSynthesisFailure)
	}

	// Keyword scans run on bare, where comments are gone and literal contents
	// are blanked, so a title like 'Delete fee' does not trip them.
	if strings.Contains(bare, ";") {
		return fmt.Errorf("%w: multiple statements", domain.ErrSynthesisFailure)
	}
	if m := forbiddenKeywords.FindString(bare); m != "" {
		return fmt.Errorf("%w: forbidden keyword %s", domain.ErrSynthesisFailure, strings.ToUpper(m))
	}
	if m := forbiddenFuncs.FindString(bare); m != "" {
		return fmt.Errorf("%w: forbidden function %s", domain.ErrSynthesisFailure, strings.TrimSpace(strings.TrimSuffix(m, "(")))
	}
	if systemSchemas.MatchString(bare) {
		return fmt.Errorf("%w: system catalogs are not queryable", domain.ErrSynthesisFailure)
	}
	if err := g.checkTables(bare); err != nil {
		return err
	}
	if !scopedTo(code, bare, userID) {
		return fmt.Errorf("%w: query is not filtered by the requesting user", domain.ErrSynthesisFailure)
	}
	return nil
}

// scopedTo reports whether a user_id equality against userID appears in a
// WHERE clause, outside any literal.
func scopedTo(code, bare, userID string) bool {
	if userID == "" {
		return false
	}
	where := whereToken.FindStringIndex(bare)
	if where == nil {
		return false
	}
	lit := regexp.QuoteMeta("'" + userID + "'")
	re := regexp.MustCompile(`(?i)(\buser_id"?\s*=\s*` + lit + `|` + lit + `\s*=\s*(?:"?\w+"?\.)?"?user_id\b)`)
	for _, m := range re.FindAllStringIndex(code, -1) {
		if m[0] > where[0] && bare[m[0]] == code[m[0]] {
			return true
		}
	}
	return false
}

func firstWord(s string) string {
	s = strings.TrimLeft(s, " \t\r\n(")
	if i := strings.IndexAny(s, " \t\r\n("); i >= 0 {
		return s[:i]
	}
	return s
}

// normalize drops comments and returns the statement twice, aligned byte for
// byte: code keeps literals intact, bare blanks literal contents and double
// quotes. Escape strings, unicode escapes, backslashes in literals and dollar
// quoting are rejected because quote counting cannot find where they end.
func normalize(s string) (code, bare string, err error) {
	reject := func(what string) (string, string, error) {
		return "", "", fmt.Errorf("%w: %s not allowed", domain.ErrSynthesisFailure, what)
	}

	var c, b strings.Builder
	c.Grow(len(s))
	b.Grow(len(s))
	both := func(cb, bb byte) {
		c.WriteByte(cb)
		b.WriteByte(bb)
	}

	inSingle, inDouble := false, false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case inSingle:
			switch ch {
			case '\\':
				return reject("backslash in literal")
			case '\'':
				inSingle = false
				both(ch, ch)
			default:
				both(ch, ' ')
			}
		case inDouble:
			if ch == '"' {
				inDouble = false
				both(ch, ' ')
			} else {
				both(ch, ch)
			}
		case ch == '\'':
			if escapePrefixed(s, i) {
				return reject("escape string")
			}
			inSingle = true
			both(ch, ch)
		case ch == '"':
			inDouble = true
			both(ch, ' ')
		case ch == '$':
			return reject("dollar quoting")
		case ch == '-' && strings.HasPrefix(s[i:], "--"):
			end := strings.IndexByte(s[i:], '\n')
			if end < 0 {
				i = len(s)
			} else {
				i += end - 1
			}
			both(' ', ' ')
		case ch == '/' && strings.HasPrefix(s[i:], "/*"):
			end, ok := blockCommentEnd(s, i)
			if !ok {
				return reject("unterminated comment")
			}
			i = end - 1
			both(' ', ' ')
		default:
			both(ch, ch)
		}
	}
	if inSingle || inDouble {
		return reject("unterminated quote")
	}
	return c.String(), b.String(), nil
}

// escapePrefixed reports whether the quote at i opens an E'' or U&'' literal.
func escapePrefixed(s string, i int) bool {
	prefixAt := func(j int) bool { return j <= 0 || !isIdentByte(s[j-1]) }
	if i >= 1 && (s[i-1] == 'e' || s[i-1] == 'E') && prefixAt(i-1) {
		return true
	}
	return i >= 2 && s[i-1] == '&' && (s[i-2] == 'u' || s[i-2] == 'U') && prefixAt(i-2)
}

// blockCommentEnd returns the index just past the /* */ comment starting at
// i. Block comments nest.
func blockCommentEnd(s string, i int) (int, bool) {
	depth := 0
	for j := i; j+1 < len(s); j++ {
		switch {
		case s[j] == '/' && s[j+1] == '*':
			depth++
			j++
		case s[j] == '*' && s[j+1] == '/':
			depth--
			j++
			if depth == 0 {
				return j + 1, true
			}
		}
	}
	return 0, false
}

func isIdentByte(ch byte) bool {
	return ch == '_' || ch == '.' || ch >= '0' && ch <= '9' || ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z'
}

// tokenize splits bare SQL into identifier runs and the punctuation the FROM
// walker cares about.
func tokenize(bare string) []string {
	var toks []string
	for i := 0; i < len(bare); {
		ch := bare[i]
		switch {
		case isIdentByte(ch):
			j := i
			for j < len(bare) && isIdentByte(bare[j]) {
				j++
			}
			toks = append(toks, bare[i:j])
			i = j
		case ch == '(' || ch == ')' || ch == ',':
			toks = append(toks, string(ch))
			i++
		default:
			i++
		}
	}
	return toks
}

// clauseEnds close a FROM list.
var clauseEnds = map[string]bool{
	"WHERE": true, "GROUP": true, "HAVING": true, "ORDER": true, "LIMIT": true,
	"OFFSET": true, "UNION": true, "INTERSECT": true, "EXCEPT": true,
	"WINDOW": true, "FETCH": true, "FOR": true,
}

// checkTables walks every FROM list, including comma-separated items, joins
// and subqueries, and rejects relations outside the allow-list. A FROM only
// opens a list at a nesting level that has seen SELECT, so EXTRACT(x FROM y)
// is not a table reference.
func (g *Guard) checkTables(bare string) error {
	type level struct {
		sawSelect, inFrom, wantTable bool
	}
	toks := tokenize(bare)
	stack := []level{{}}
	for i, tok := range toks {
		top := &stack[len(stack)-1]
		switch word := strings.ToUpper(tok); {
		case tok == "(":
			top.wantTable = false
			stack = append(stack, level{})
		case tok == ")":
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
		case tok == ",":
			top.wantTable = top.inFrom
		case word == "SELECT":
			*top = level{sawSelect: true}
		case word == "FROM":
			if top.sawSelect && (i == 0 || !strings.EqualFold(toks[i-1], "DISTINCT")) {
				top.inFrom, top.wantTable = true, true
			}
		case word == "JOIN":
			if top.inFrom {
				top.wantTable = true
			}
		case clauseEnds[word]:
			top.inFrom, top.wantTable = false, false
		case top.wantTable:
			if word == "LATERAL" || word == "ONLY" {
				continue
			}
			top.wantTable = false
			if i+1 < len(toks) && toks[i+1] == "(" {
				return fmt.Errorf("%w: function %s in FROM is not queryable", domain.ErrSynthesisFailure, tok)
			}
			if err := g.allowTable(tok); err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *Guard) allowTable(ref string) error {
	ref = strings.ToLower(ref)
	schema, table := "", ref
	if i := strings.LastIndex(ref, "."); i >= 0 {
		schema, table = ref[:i], ref[i+1:]
	}
	if schema != "" && schema != "public" {
		return fmt.Errorf("%w: schema %s is not queryable", domain.ErrSynthesisFailure, schema)
	}
	if len(g.allowed) == 0 {
		return nil
	}
	if _, ok := g.allowed[table]; !ok {
		return fmt.Errorf("%w: table %s is not queryable", domain.ErrSynthesisFailure, table)
	}
	return nil
}
