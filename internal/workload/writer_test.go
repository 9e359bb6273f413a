package workload

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/GoogleCloudPlatform/db-workload-matcher/internal/sqlstmt"
)

func TestWriteSerializesVerbatim(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "workload.sql")

	stmts := []sqlstmt.Statement{
		{Text: "SELECT *\nFROM orders", Index: 0, Kind: sqlstmt.KindSelect},
		{Text: "INSERT INTO orders VALUES (1, 'a;b')", Index: 0, Kind: sqlstmt.KindInsert},
		{Text: "select O_ORDERKEY from ORDERS -- note", Index: 1, Kind: sqlstmt.KindSelect},
	}
	if err := Write(path, stmts); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "SELECT *\nFROM orders;\nINSERT INTO orders VALUES (1, 'a;b');\nselect O_ORDERKEY from ORDERS -- note\n;\n"
	if string(data) != want {
		t.Errorf("output = %q, want %q", string(data), want)
	}

	// the serialized workload must load back in the same order
	loaded, err := sqlstmt.Load(path)
	if err != nil {
		t.Fatalf("Load() of written workload error = %v", err)
	}
	if len(loaded) != len(stmts) {
		t.Fatalf("round trip produced %d statements, want %d", len(loaded), len(stmts))
	}
	for i := range stmts {
		if loaded[i].Text != stmts[i].Text {
			t.Errorf("round trip statement %d = %q, want %q", i, loaded[i].Text, stmts[i].Text)
		}
	}
}

func TestWriteReplacesExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "workload.sql")
	if err := os.WriteFile(path, []byte("old content"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Write(path, []sqlstmt.Statement{{Text: "SELECT 1"}}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "SELECT 1;\n" {
		t.Errorf("output = %q, want %q", string(data), "SELECT 1;\n")
	}
}

func TestWriteLeavesNoPartialFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "missing-subdir", "workload.sql")

	err := Write(path, []sqlstmt.Statement{{Text: "SELECT 1"}})
	if err == nil {
		t.Fatal("Write() into missing directory succeeded, want error")
	}
	var writeErr *WriteError
	if !errors.As(err, &writeErr) {
		t.Fatalf("Write() error = %T, want *WriteError", err)
	}
	if writeErr.Path != path {
		t.Errorf("WriteError.Path = %q, want %q", writeErr.Path, path)
	}

	entries, readErr := os.ReadDir(dir)
	if readErr != nil {
		t.Fatal(readErr)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".partial-") {
			t.Errorf("temp file %s left behind", e.Name())
		}
	}
}

func TestWorkloadCounters(t *testing.T) {
	w := New()
	sel := sqlstmt.Statement{Text: "SELECT * FROM orders", Kind: sqlstmt.KindSelect}
	w.Append(sel, []MatchedWrite{
		{Stmt: sqlstmt.Statement{Text: "INSERT INTO orders VALUES (1)", Kind: sqlstmt.KindInsert}, Table: "orders"},
		{Stmt: sqlstmt.Statement{Text: "INSERT INTO orders VALUES (2)", Kind: sqlstmt.KindInsert}, Table: "orders"},
	})
	w.Append(sqlstmt.Statement{Text: "SELECT 1", Kind: sqlstmt.KindSelect}, nil)

	if w.SelectsEmitted != 2 || w.SelectsMatched != 1 || w.WritesConsumed != 2 {
		t.Errorf("counters = (%d selects, %d matched, %d writes), want (2, 1, 2)",
			w.SelectsEmitted, w.SelectsMatched, w.WritesConsumed)
	}
	if w.WritesPerTable["orders"] != 2 {
		t.Errorf("WritesPerTable[orders] = %d, want 2", w.WritesPerTable["orders"])
	}
	if len(w.Statements) != 4 {
		t.Errorf("len(Statements) = %d, want 4", len(w.Statements))
	}
	if w.Statements[1].Kind != sqlstmt.KindInsert || w.Statements[2].Kind != sqlstmt.KindInsert {
		t.Error("matched writes must immediately follow their select")
	}
}
