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
package sqlstmt

import "strings"

// RemoveOrderBy strips the top-level ORDER BY clause from a statement,
// up to a top-level LIMIT or OFFSET keyword or the end of the statement.
// ORDER BY inside parenthesized subexpressions is left alone, as are
// keywords inside quoted literals, quoted identifiers, and comments.
// Statements without a top-level clause are returned unchanged.
func RemoveOrderBy(sql string) string {
	var quote byte
	depth := 0
	orderStart := -1
	wantBy := false

	i := 0
	for i < len(sql) {
		c := sql[i]
		switch {
		case quote != 0:
			if (quote == '[' && c == ']') || (quote != '[' && c == quote) {
				quote = 0
			}
			i++
		case c == '-' && i+1 < len(sql) && sql[i+1] == '-':
			if j := indexLineEnd(sql, i); j < 0 {
				i = len(sql)
			} else {
				i = j
			}
		case c == '/' && i+1 < len(sql) && sql[i+1] == '*':
			if j := indexBlockEnd(sql, i); j < 0 {
				i = len(sql)
			} else {
				i = j
			}
		case c == '\'' || c == '"' || c == '`' || c == '[':
			quote = c
			i++
		case c == '(':
			depth++
			i++
		case c == ')':
			if depth > 0 {
				depth--
			}
			i++
		case isWordByte(c) && (i == 0 || !isWordByte(sql[i-1])):
			j := i + 1
			for j < len(sql) && isWordByte(sql[j]) {
				j++
			}
			word := sql[i:j]
			if depth == 0 {
				switch {
				case wantBy:
					wantBy = false
					if !strings.EqualFold(word, "BY") {
						orderStart = -1
					}
				case orderStart < 0 && strings.EqualFold(word, "ORDER"):
					orderStart = i
					wantBy = true
				case orderStart >= 0 && (strings.EqualFold(word, "LIMIT") || strings.EqualFold(word, "OFFSET")):
					return cutClause(sql, orderStart, i)
				}
			}
			i = j
		default:
			i++
		}
	}
	if orderStart >= 0 && !wantBy {
		return cutClause(sql, orderStart, len(sql))
	}
	return sql
}

// cutClause removes sql[start:end] along with the whitespace immediately
// before each bound, so "a ORDER BY b LIMIT 1" becomes "a LIMIT 1".
func cutClause(sql string, start, end int) string {
	for start > 0 && isSpaceByte(sql[start-1]) {
		start--
	}
	for end > start && isSpaceByte(sql[end-1]) {
		end--
	}
	return sql[:start] + sql[end:]
}

func indexLineEnd(sql string, from int) int {
	for j := from; j < len(sql); j++ {
		if sql[j] == '\n' {
			return j
		}
	}
	return -1
}

func indexBlockEnd(sql string, from int) int {
	for j := from + 2; j+1 < len(sql); j++ {
		if sql[j] == '*' && sql[j+1] == '/' {
			return j + 2
		}
	}
	return -1
}

func isWordByte(c byte) bool {
	return c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
