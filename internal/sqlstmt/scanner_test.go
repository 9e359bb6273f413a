package sqlstmt

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestScannerSplitsStatements(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "Two statements on separate lines",
			input: "SELECT 1;\nSELECT 2;\n",
			want:  []string{"SELECT 1", "SELECT 2"},
		},
		{
			name:  "Missing trailing terminator",
			input: "SELECT 1;\nSELECT 2",
			want:  []string{"SELECT 1", "SELECT 2"},
		},
		{
			name:  "Semicolon inside single-quoted literal",
			input: "INSERT INTO t VALUES ('a;b');\nSELECT 1;",
			want:  []string{"INSERT INTO t VALUES ('a;b')", "SELECT 1"},
		},
		{
			name:  "Doubled quote escape inside literal",
			input: "INSERT INTO t VALUES ('it''s; fine');SELECT 1;",
			want:  []string{"INSERT INTO t VALUES ('it''s; fine')", "SELECT 1"},
		},
		{
			name:  "Semicolon inside quoted identifier",
			input: `SELECT * FROM "odd;name";`,
			want:  []string{`SELECT * FROM "odd;name"`},
		},
		{
			name:  "Semicolon inside line comment",
			input: "SELECT 1 -- trailing; note\n;SELECT 2;",
			want:  []string{"SELECT 1 -- trailing; note", "SELECT 2"},
		},
		{
			name:  "Semicolon inside block comment",
			input: "SELECT /* a;b */ 1; SELECT 2;",
			want:  []string{"SELECT /* a;b */ 1", "SELECT 2"},
		},
		{
			name:  "Tricky block comment opener",
			input: "SELECT /*/ still; comment */ 1;",
			want:  []string{"SELECT /*/ still; comment */ 1"},
		},
		{
			name:  "Multi-line statement preserved",
			input: "SELECT a,\n       b\nFROM t;\n",
			want:  []string{"SELECT a,\n       b\nFROM t"},
		},
		{
			name:  "Empty fragments skipped",
			input: ";;\n ; SELECT 1; \n;",
			want:  []string{"SELECT 1"},
		},
		{
			name:  "Comment-only tail skipped",
			input: "SELECT 1;\n-- done\n",
			want:  []string{"SELECT 1"},
		},
		{
			name:  "Bracket-quoted identifier",
			input: "SELECT * FROM [odd;name];",
			want:  []string{"SELECT * FROM [odd;name]"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scan := NewScanner(strings.NewReader(tt.input))
			var got []string
			for scan.Scan() {
				got = append(got, scan.Statement().Text)
			}
			if err := scan.Err(); err != nil {
				t.Fatalf("Err() = %v, want nil", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d statements %q, want %d %q", len(got), got, len(tt.want), tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("statement %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestScannerAssignsOrdinals(t *testing.T) {
	scan := NewScanner(strings.NewReader("SELECT 1;;SELECT 2;INSERT INTO t VALUES (1);"))
	var indexes []int
	for scan.Scan() {
		indexes = append(indexes, scan.Statement().Index)
	}
	want := []int{0, 1, 2}
	if len(indexes) != len(want) {
		t.Fatalf("got %d statements, want %d", len(indexes), len(want))
	}
	for i := range want {
		if indexes[i] != want[i] {
			t.Errorf("ordinal %d = %d, want %d", i, indexes[i], want[i])
		}
	}
}

func TestClassifyKind(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Kind
	}{
		{"Plain select", "SELECT * FROM orders", KindSelect},
		{"Lowercase select", "select 1", KindSelect},
		{"CTE select", "WITH top AS (SELECT 1) SELECT * FROM top", KindSelect},
		{"Insert", "INSERT INTO orders VALUES (1)", KindInsert},
		{"Update", "update orders set o_comment = ''", KindUpdate},
		{"Delete", "DELETE FROM orders WHERE o_orderkey = 1", KindDelete},
		{"Begin", "BEGIN TRANSACTION", KindBegin},
		{"Commit", "COMMIT", KindCommit},
		{"Leading line comment", "-- refresh\nINSERT INTO orders VALUES (1)", KindInsert},
		{"Leading block comment", "/* q1 */ SELECT 1", KindSelect},
		{"DDL is unknown", "CREATE TABLE t (a int)", KindUnknown},
		{"Empty", "", KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyKind(tt.text); got != tt.want {
				t.Errorf("ClassifyKind(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestStripComments(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want string
	}{
		{"Line comment", "SELECT 1 -- one\n", "SELECT 1  \n"},
		{"Block comment", "SELECT /* hidden */ 1", "SELECT   1"},
		{"Comment marker in literal", "SELECT '--not a comment'", "SELECT '--not a comment'"},
		{"Block marker in identifier", `SELECT "a/*b"`, `SELECT "a/*b"`},
		{"Unterminated block comment", "SELECT 1 /* open", "SELECT 1  "},
		{"No comments", "SELECT 1", "SELECT 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripComments(tt.sql); got != tt.want {
				t.Errorf("StripComments(%q) = %q, want %q", tt.sql, got, tt.want)
			}
		})
	}
}

func TestEndsInLineComment(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want bool
	}{
		{"Trailing line comment", "SELECT 1 -- note", true},
		{"Comment closed by newline", "-- header\nSELECT 1", false},
		{"Marker inside literal", "SELECT '-- not a comment'", false},
		{"Marker inside block comment", "SELECT 1 /* -- */", false},
		{"No comment", "SELECT 1", false},
		{"Second line opens comment", "SELECT 1\n  -- tail", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EndsInLineComment(tt.sql); got != tt.want {
				t.Errorf("EndsInLineComment(%q) = %v, want %v", tt.sql, got, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "selects.sql")
	if err := os.WriteFile(path, []byte("SELECT 1;\nSELECT 2;\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	stmts, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(stmts) != 2 {
		t.Fatalf("Load() returned %d statements, want 2", len(stmts))
	}

	missing := filepath.Join(dir, "missing.sql")
	if _, err := Load(missing); err == nil {
		t.Fatal("Load() on missing file succeeded, want error")
	} else {
		var malformed *MalformedInputError
		if !errors.As(err, &malformed) {
			t.Errorf("Load() error = %T, want *MalformedInputError", err)
		}
	}

	empty := filepath.Join(dir, "empty.sql")
	if err := os.WriteFile(empty, []byte("  \n-- nothing here\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(empty); !errors.Is(err, ErrNoStatements) {
		t.Errorf("Load() on empty file error = %v, want ErrNoStatements", err)
	}
}
