package sqlstmt

import "testing"

func TestRemoveOrderBy(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want string
	}{
		{
			name: "Clause at end of statement",
			sql:  "SELECT * FROM orders ORDER BY o_orderdate",
			want: "SELECT * FROM orders",
		},
		{
			name: "Clause before LIMIT",
			sql:  "SELECT * FROM orders ORDER BY o_orderdate DESC LIMIT 10",
			want: "SELECT * FROM orders LIMIT 10",
		},
		{
			name: "Clause before OFFSET",
			sql:  "SELECT * FROM orders ORDER BY 1, 2 OFFSET 5",
			want: "SELECT * FROM orders OFFSET 5",
		},
		{
			name: "Lowercase keywords",
			sql:  "select * from orders order by o_totalprice limit 1",
			want: "select * from orders limit 1",
		},
		{
			name: "No clause",
			sql:  "SELECT * FROM orders WHERE o_orderkey = 1",
			want: "SELECT * FROM orders WHERE o_orderkey = 1",
		},
		{
			name: "Clause inside subquery untouched",
			sql:  "SELECT * FROM (SELECT * FROM orders ORDER BY o_orderdate) o",
			want: "SELECT * FROM (SELECT * FROM orders ORDER BY o_orderdate) o",
		},
		{
			name: "Top-level clause after subquery",
			sql:  "SELECT * FROM (SELECT 1) x ORDER BY 1 LIMIT 3",
			want: "SELECT * FROM (SELECT 1) x LIMIT 3",
		},
		{
			name: "Keyword inside literal ignored",
			sql:  "SELECT 'ORDER BY looks' FROM t ORDER BY 1",
			want: "SELECT 'ORDER BY looks' FROM t",
		},
		{
			name: "Keyword inside quoted identifier ignored",
			sql:  `SELECT "order by" FROM t`,
			want: `SELECT "order by" FROM t`,
		},
		{
			name: "Keyword inside comment ignored",
			sql:  "SELECT 1 /* ORDER BY x */ FROM t",
			want: "SELECT 1 /* ORDER BY x */ FROM t",
		},
		{
			name: "ORDER as column prefix is not a clause",
			sql:  "SELECT order_count FROM stats",
			want: "SELECT order_count FROM stats",
		},
		{
			name: "Multi-line clause",
			sql:  "SELECT *\nFROM orders\nORDER BY\n  o_orderdate,\n  o_orderkey\nLIMIT 7",
			want: "SELECT *\nFROM orders\nLIMIT 7",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RemoveOrderBy(tt.sql); got != tt.want {
				t.Errorf("RemoveOrderBy(%q) = %q, want %q", tt.sql, got, tt.want)
			}
		})
	}
}
