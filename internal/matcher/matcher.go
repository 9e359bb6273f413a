// Package matcher pairs write statements with the select statements that
// read the same tables, producing an interleaved workload under configured
// budgets in one deterministic forward pass.
package matcher

import (
	"go.uber.org/zap"

	"github.com/GoogleCloudPlatform/db-workload-matcher/internal/sqlstmt"
	"github.com/GoogleCloudPlatform/db-workload-matcher/internal/tables"
	"github.com/GoogleCloudPlatform/db-workload-matcher/internal/workload"
)

// Matcher allocates writes to selects. All budget state lives on the
// instance, so concurrent runs with separate matchers cannot interfere.
//
// Writes are indexed once per table in write-file order, and a forward
// cursor per table marks the next unconsumed write. Cursors never rewind,
// which makes every write single-use by construction.
type Matcher struct {
	budget Budget
	ext    tables.Extractor
	log    *zap.Logger

	writes  []workload.MatchedWrite
	byTable map[tables.Name][]int
	cursors map[tables.Name]int

	tableRemaining  map[tables.Name]int
	globalRemaining int
	writesDiscarded int
}

// New indexes the write statements and returns a matcher ready for one run.
// Statements that are not INSERT, UPDATE, or DELETE are ignored; writes
// whose target table cannot be extracted are logged and excluded.
func New(writes []sqlstmt.Statement, ext tables.Extractor, budget Budget, log *zap.Logger) (*Matcher, error) {
	if err := budget.Validate(); err != nil {
		return nil, err
	}
	m := &Matcher{
		budget:          budget,
		ext:             ext,
		log:             log,
		byTable:         map[tables.Name][]int{},
		cursors:         map[tables.Name]int{},
		tableRemaining:  map[tables.Name]int{},
		globalRemaining: budget.MaxTotalMatches,
	}
	for _, stmt := range writes {
		if !stmt.Kind.IsWrite() {
			m.log.Debug("skipping non-write statement in write source",
				zap.Int("statement", stmt.Index), zap.String("kind", stmt.Kind.String()))
			continue
		}
		table, ok := ext.WriteTarget(stmt)
		if !ok {
			m.writesDiscarded++
			m.log.Warn("write statement has no extractable target table, excluded from matching",
				zap.Int("statement", stmt.Index))
			continue
		}
		m.byTable[table] = append(m.byTable[table], len(m.writes))
		m.writes = append(m.writes, workload.MatchedWrite{Stmt: stmt, Table: table})
	}
	for table := range m.byTable {
		m.tableRemaining[table] = budget.MaxWritesPerTable
	}
	return m, nil
}

// Match collects the writes for one select under all three budgets. The
// returned writes are in write-file order and are consumed: later calls will
// never see them again. Selects referencing no known table get nothing.
func (m *Matcher) Match(sel sqlstmt.Statement) []workload.MatchedWrite {
	if m.globalRemaining == 0 || m.budget.MaxMatchesPerSelect == 0 {
		return nil
	}
	refs := m.ext.SelectTables(sel)
	if len(refs) == 0 {
		m.log.Debug("select references no extractable tables, emitted unmatched",
			zap.Int("statement", sel.Index))
		return nil
	}
	candidates := make([]tables.Name, 0, len(refs))
	for _, table := range refs.Sorted() {
		if len(m.byTable[table]) > 0 {
			candidates = append(candidates, table)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	var matched []workload.MatchedWrite
	for len(matched) < m.budget.MaxMatchesPerSelect && m.globalRemaining > 0 {
		best := -1
		var bestTable tables.Name
		for _, table := range candidates {
			if m.tableRemaining[table] <= 0 {
				continue
			}
			list := m.byTable[table]
			cursor := m.cursors[table]
			if cursor >= len(list) {
				continue
			}
			if best == -1 || list[cursor] < best {
				best = list[cursor]
				bestTable = table
			}
		}
		if best == -1 {
			break
		}
		m.cursors[bestTable]++
		m.tableRemaining[bestTable]--
		m.globalRemaining--
		matched = append(matched, m.writes[best])
	}
	return matched
}

// Run drives a whole pass: every statement from the select source is emitted
// in input order, selects with their matched writes directly behind them.
// When the global budget runs out, the remaining selects are emitted
// unmatched and the run finishes normally.
func (m *Matcher) Run(scan *sqlstmt.Scanner) (*workload.Workload, error) {
	w := workload.New()
	for scan.Scan() {
		stmt := scan.Statement()
		if !stmt.Kind.IsSelect() {
			m.log.Warn("non-select statement in select source, emitted without matches",
				zap.Int("statement", stmt.Index), zap.String("kind", stmt.Kind.String()))
			w.Append(stmt, nil)
			continue
		}
		w.Append(stmt, m.Match(stmt))
	}
	if err := scan.Err(); err != nil {
		return nil, err
	}
	return w, nil
}

// WritesDiscarded counts write statements excluded during indexing because
// no target table could be extracted.
func (m *Matcher) WritesDiscarded() int {
	return m.writesDiscarded
}

// WritesIndexed counts write statements eligible for matching.
func (m *Matcher) WritesIndexed() int {
	return len(m.writes)
}
