package filter

import (
	"strings"
	"testing"
)

const sampleLog = `timestamp,query_type,sql
2024-01-01T00:00:01Z,select,SELECT * FROM orders
2024-01-01T00:00:02Z,insert,"INSERT INTO ""orders_3"" VALUES (1, 'a')"
2024-01-01T00:00:03Z,update,UPDATE lineitem SET l_tax = 0;
2024-01-01T00:00:04Z,commit,COMMIT
2024-01-01T00:00:05Z,DELETE,DELETE FROM orders WHERE o_orderkey = 9
`

func TestWritesSQLFormat(t *testing.T) {
	var out strings.Builder
	counts, err := Writes(strings.NewReader(sampleLog), &out, FormatSQL)
	if err != nil {
		t.Fatalf("Writes() returned error: %v", err)
	}

	want := `INSERT INTO "orders" VALUES (1, 'a');
UPDATE lineitem SET l_tax = 0;
DELETE FROM orders WHERE o_orderkey = 9;
`
	if out.String() != want {
		t.Errorf("output mismatch\ngot:\n%s\nwant:\n%s", out.String(), want)
	}
	for kind, n := range map[string]int{"insert": 1, "update": 1, "delete": 1} {
		if counts[kind] != n {
			t.Errorf("counts[%q] = %d, want %d", kind, counts[kind], n)
		}
	}
}

func TestWritesCSVFormat(t *testing.T) {
	var out strings.Builder
	if _, err := Writes(strings.NewReader(sampleLog), &out, FormatCSV); err != nil {
		t.Fatalf("Writes() returned error: %v", err)
	}

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header plus 3 write rows, got %d lines:\n%s", len(lines), out.String())
	}
	if lines[0] != "timestamp,query_type,sql" {
		t.Errorf("header not preserved: %s", lines[0])
	}
	if !strings.Contains(lines[1], `""orders""`) {
		t.Errorf("sharded name not collapsed in CSV row: %s", lines[1])
	}
	for _, line := range lines[1:] {
		if strings.Contains(strings.ToLower(line), "select") || strings.Contains(strings.ToLower(line), "commit") {
			t.Errorf("non-write row leaked into output: %s", line)
		}
	}
}

func TestWritesRejectsUnknownFormat(t *testing.T) {
	_, err := Writes(strings.NewReader(sampleLog), &strings.Builder{}, "yaml")
	if err == nil {
		t.Fatal("expected error for unknown format, got nil")
	}
	if !strings.Contains(err.Error(), "unsupported output format") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestWritesRequiresColumns(t *testing.T) {
	input := "timestamp,statement\n2024-01-01,INSERT INTO t VALUES (1)\n"
	_, err := Writes(strings.NewReader(input), &strings.Builder{}, FormatSQL)
	if err == nil {
		t.Fatal("expected error for missing columns, got nil")
	}
	if !strings.Contains(err.Error(), "query_type") {
		t.Errorf("error should name the required columns, got: %v", err)
	}
}

func TestWritesEmptyInput(t *testing.T) {
	_, err := Writes(strings.NewReader(""), &strings.Builder{}, FormatSQL)
	if err == nil {
		t.Fatal("expected error for empty input, got nil")
	}
}

func TestWritesSkipsShortAndEmptyRows(t *testing.T) {
	input := "query_type,sql\ninsert\ninsert,\ninsert,INSERT INTO t VALUES (1)\n"
	var out strings.Builder
	counts, err := Writes(strings.NewReader(input), &out, FormatSQL)
	if err != nil {
		t.Fatalf("Writes() returned error: %v", err)
	}
	if counts["insert"] != 1 {
		t.Errorf("counts[insert] = %d, want 1", counts["insert"])
	}
	if out.String() != "INSERT INTO t VALUES (1);\n" {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}
