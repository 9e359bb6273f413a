/*
 * Copyright 2025 Google LLC
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *    https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package sqlstmt models SQL statements read from workload files and provides
// the statement-level scanning and rewriting the workload tooling needs.
package sqlstmt

import "strings"

// Kind classifies a statement by its leading keyword.
type Kind int

const (
	KindUnknown Kind = iota
	KindSelect
	KindInsert
	KindUpdate
	KindDelete
	KindBegin
	KindCommit
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindSelect:
		return "select"
	case KindInsert:
		return "insert"
	case KindUpdate:
		return "update"
	case KindDelete:
		return "delete"
	case KindBegin:
		return "begin"
	case KindCommit:
		return "commit"
	default:
		return "unknown"
	}
}

// IsWrite reports whether statements of this kind modify table data.
func (k Kind) IsWrite() bool {
	switch k {
	case KindInsert, KindUpdate, KindDelete:
		return true
	default:
		return false
	}
}

// IsSelect reports whether statements of this kind read table data.
func (k Kind) IsSelect() bool {
	return k == KindSelect
}

// Statement is a single SQL statement taken from a source file.
//
// Text holds the statement exactly as it appeared, comments included, with
// surrounding whitespace and the trailing terminator removed. Index is the
// zero-based position of the statement among those emitted from the same
// source, so two loads of the same file always agree on ordering.
type Statement struct {
	Text  string
	Index int
	Kind  Kind
}

// ClassifyKind determines the Kind of a statement's text from its first
// keyword, ignoring leading comments. WITH introduces a common table
// expression and is treated as a select.
func ClassifyKind(text string) Kind {
	s := strings.TrimSpace(StripComments(text))
	end := 0
	for end < len(s) {
		c := s[end]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			end++
			continue
		}
		break
	}
	switch strings.ToUpper(s[:end]) {
	case "SELECT", "WITH":
		return KindSelect
	case "INSERT":
		return KindInsert
	case "UPDATE":
		return KindUpdate
	case "DELETE":
		return KindDelete
	case "BEGIN", "START":
		return KindBegin
	case "COMMIT", "END":
		return KindCommit
	default:
		return KindUnknown
	}
}

// EndsInLineComment reports whether the end of text falls inside a line
// comment, in which case a terminator appended on the same line would be
// commented out.
func EndsInLineComment(text string) bool {
	var quote byte
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case quote != 0:
			if (quote == '[' && c == ']') || (quote != '[' && c == quote) {
				quote = 0
			}
		case c == '-' && i+1 < len(text) && text[i+1] == '-':
			j := strings.IndexByte(text[i:], '\n')
			if j < 0 {
				return true
			}
			i += j
		case c == '/' && i+1 < len(text) && text[i+1] == '*':
			j := strings.Index(text[i+2:], "*/")
			if j < 0 {
				return false
			}
			i += 2 + j + 1
		case c == '\'' || c == '"' || c == '`' || c == '[':
			quote = c
		}
	}
	return false
}

// StripComments removes line ("--") and block ("/* */") comments from sql,
// replacing each with a single space. Comment markers inside quoted literals
// or quoted identifiers are left untouched. Line structure outside comments
// is preserved.
func StripComments(sql string) string {
	var b strings.Builder
	b.Grow(len(sql))
	var quote byte
	for i := 0; i < len(sql); i++ {
		c := sql[i]
		switch {
		case quote != 0:
			b.WriteByte(c)
			if (quote == '[' && c == ']') || (quote != '[' && c == quote) {
				quote = 0
			}
		case c == '-' && i+1 < len(sql) && sql[i+1] == '-':
			b.WriteByte(' ')
			j := strings.IndexByte(sql[i:], '\n')
			if j < 0 {
				i = len(sql)
			} else {
				// land on the newline so it survives
				i += j - 1
			}
		case c == '/' && i+1 < len(sql) && sql[i+1] == '*':
			b.WriteByte(' ')
			j := strings.Index(sql[i+2:], "*/")
			if j < 0 {
				i = len(sql)
			} else {
				i += 2 + j + 1
			}
		case c == '\'' || c == '"' || c == '`' || c == '[':
			quote = c
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
