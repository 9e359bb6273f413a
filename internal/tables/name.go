package tables

import (
	"regexp"
	"sort"
	"strings"
)

// Name is a normalized table identifier: unquoted, schema-stripped, lowercase.
type Name string

// Set records which tables a statement references.
type Set map[Name]bool

// Add inserts a table into the set.
func (s Set) Add(n Name) {
	s[n] = true
}

// Has reports whether the table is in the set.
func (s Set) Has(n Name) bool {
	return s[n]
}

// Sorted returns the members in lexical order for deterministic iteration.
func (s Set) Sorted() []Name {
	names := make([]Name, 0, len(s))
	for n := range s {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Strings returns the sorted members as plain strings, mainly for logging.
func (s Set) Strings() []string {
	sorted := s.Sorted()
	out := make([]string, len(sorted))
	for i, n := range sorted {
		out[i] = string(n)
	}
	return out
}

var shardSuffixPattern = regexp.MustCompile(`_\d+$`)

// Normalize maps a raw SQL identifier to its logical table name: the
// rightmost dotted path element, unquoted and lowercased.
func Normalize(raw string) Name {
	s := strings.TrimSpace(raw)
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.Trim(s, "\"'`[]")
	return Name(strings.ToLower(s))
}

// NormalizeTarget additionally drops the trailing numeric shard suffix that
// captured write workloads carry, so orders_42 counts against orders.
func NormalizeTarget(raw string) Name {
	return Name(shardSuffixPattern.ReplaceAllString(string(Normalize(raw)), ""))
}
