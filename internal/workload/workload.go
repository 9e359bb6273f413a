package workload

import (
	"github.com/GoogleCloudPlatform/db-workload-matcher/internal/sqlstmt"
	"github.com/GoogleCloudPlatform/db-workload-matcher/internal/tables"
)

// MatchedWrite is a write statement the matcher attached to a select,
// tagged with the table its consumption was charged against.
type MatchedWrite struct {
	Stmt  sqlstmt.Statement
	Table tables.Name
}

// Workload is the ordered, interleaved statement sequence a match run
// produces: each select in source order, immediately followed by the writes
// matched to it. The sequence and its counters only ever grow.
type Workload struct {
	Statements     []sqlstmt.Statement
	SelectsEmitted int
	SelectsMatched int
	WritesConsumed int
	WritesPerTable map[tables.Name]int
}

// New returns an empty workload.
func New() *Workload {
	return &Workload{WritesPerTable: map[tables.Name]int{}}
}

// Append adds one select and the writes matched to it, keeping the counters
// in step with the statement sequence.
func (w *Workload) Append(sel sqlstmt.Statement, writes []MatchedWrite) {
	w.Statements = append(w.Statements, sel)
	w.SelectsEmitted++
	if len(writes) > 0 {
		w.SelectsMatched++
	}
	for _, mw := range writes {
		w.Statements = append(w.Statements, mw.Stmt)
		w.WritesConsumed++
		w.WritesPerTable[mw.Table]++
	}
}
