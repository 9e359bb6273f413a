package tables

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/GoogleCloudPlatform/db-workload-matcher/internal/sqlstmt"
)

// Heuristic extracts tables by keyword proximity: identifiers after FROM and
// JOIN for selects, the identifier after INSERT INTO / UPDATE / DELETE FROM
// for writes. It never errors; statements it cannot read yield nothing.
type Heuristic struct {
	log *zap.Logger
}

// NewHeuristic returns the keyword-proximity extractor.
func NewHeuristic(log *zap.Logger) *Heuristic {
	return &Heuristic{log: log}
}

var _ Extractor = (*Heuristic)(nil)

var (
	fromPattern   = regexp.MustCompile(`(?i)\bFROM\s+([^\s,();]+)`)
	joinPattern   = regexp.MustCompile(`(?i)\bJOIN\s+([^\s,();]+)`)
	insertPattern = regexp.MustCompile(`(?i)\bINSERT\s+INTO\s+([^\s(;]+)`)
	updatePattern = regexp.MustCompile(`(?i)\bUPDATE\s+([^\s;]+)`)
	deletePattern = regexp.MustCompile(`(?i)\bDELETE\s+FROM\s+([^\s;]+)`)
	spacePattern  = regexp.MustCompile(`\s+`)
)

// reserved holds keywords that can follow FROM or trail a FROM list; they are
// never table names.
var reserved = map[string]bool{
	"on": true, "where": true, "group": true, "order": true, "having": true,
	"limit": true, "offset": true, "select": true, "values": true, "as": true,
	"join": true, "left": true, "right": true, "inner": true, "outer": true,
	"full": true, "cross": true, "natural": true, "using": true,
	"union": true, "intersect": true, "except": true, "window": true,
	"fetch": true, "for": true, "lateral": true,
}

// SelectTables returns the tables referenced by FROM and JOIN clauses,
// including comma-separated FROM lists.
func (h *Heuristic) SelectTables(stmt sqlstmt.Statement) Set {
	set := Set{}
	text := scanText(stmt.Text)
	for _, m := range fromPattern.FindAllStringSubmatchIndex(text, -1) {
		if h.addCandidate(set, text[m[2]:m[3]]) {
			h.scanFromList(set, text, m[3])
		}
	}
	for _, m := range joinPattern.FindAllStringSubmatchIndex(text, -1) {
		h.addCandidate(set, text[m[2]:m[3]])
	}
	if len(set) == 0 {
		h.log.Debug("no tables found in select statement",
			zap.Int("statement", stmt.Index))
	}
	return set
}

// WriteTarget returns the table after the write statement's leading keyword.
func (h *Heuristic) WriteTarget(stmt sqlstmt.Statement) (Name, bool) {
	text := scanText(stmt.Text)
	var raw string
	switch stmt.Kind {
	case sqlstmt.KindInsert:
		if m := insertPattern.FindStringSubmatch(text); m != nil {
			raw = m[1]
		}
	case sqlstmt.KindUpdate:
		if m := updatePattern.FindStringSubmatch(text); m != nil {
			raw = m[1]
		}
	case sqlstmt.KindDelete:
		if m := deletePattern.FindStringSubmatch(text); m != nil {
			raw = m[1]
		}
	default:
		return "", false
	}
	if raw == "" {
		return "", false
	}
	name := NormalizeTarget(raw)
	if name == "" {
		return "", false
	}
	return name, true
}

// scanFromList consumes the comma-separated tail of a FROM list starting at
// pos, which sits just past the first table. Aliases are skipped; any clause
// keyword ends the list.
func (h *Heuristic) scanFromList(set Set, text string, pos int) {
	for {
		for pos < len(text) && text[pos] == ' ' {
			pos++
		}
		if pos >= len(text) {
			return
		}
		if text[pos] == ',' {
			pos++
			for pos < len(text) && text[pos] == ' ' {
				pos++
			}
			start := pos
			for pos < len(text) && !isListDelim(text[pos]) {
				pos++
			}
			if start == pos {
				return
			}
			h.addCandidate(set, text[start:pos])
			continue
		}
		start := pos
		for pos < len(text) && !isListDelim(text[pos]) {
			pos++
		}
		word := strings.ToLower(text[start:pos])
		if word == "" {
			return
		}
		if word != "as" && reserved[word] {
			return
		}
	}
}

func (h *Heuristic) addCandidate(set Set, raw string) bool {
	if raw == "" || reserved[strings.ToLower(raw)] {
		return false
	}
	name := Normalize(raw)
	if name == "" {
		return false
	}
	set.Add(name)
	return true
}

func isListDelim(c byte) bool {
	return c == ' ' || c == ',' || c == '(' || c == ')' || c == ';'
}

// scanText strips comments and collapses whitespace so the keyword patterns
// see one token per gap.
func scanText(text string) string {
	return strings.TrimSpace(spacePattern.ReplaceAllString(sqlstmt.StripComments(text), " "))
}
