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

// Package filter extracts write statements from query-log CSV exports.
package filter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/GoogleCloudPlatform/db-workload-matcher/internal/sqlstmt"
)

// Output formats for Writes.
const (
	FormatCSV = "csv"
	FormatSQL = "sql"
)

var writeKinds = map[string]bool{"insert": true, "update": true, "delete": true}

// Sharded tables show up in query logs as quoted names with a numeric
// suffix, e.g. "orders_3". Collapse them back to the logical table name.
var shardedNamePattern = regexp.MustCompile(`"([A-Za-z_][A-Za-z0-9_]*)_\d+"`)

// Writes reads a query-log CSV from r and emits only the write statements
// (insert, update, delete) to w in the requested format. The CSV header must
// contain query_type and sql columns; other columns pass through untouched
// in csv mode. The returned counts are keyed by statement kind.
func Writes(r io.Reader, w io.Writer, format string) (map[string]int, error) {
	if format != FormatCSV && format != FormatSQL {
		return nil, fmt.Errorf("unsupported output format: %s. Supported formats are: %s, %s", format, FormatCSV, FormatSQL)
	}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New("input is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	typeCol, sqlCol := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "query_type":
			typeCol = i
		case "sql":
			sqlCol = i
		}
	}
	if typeCol < 0 || sqlCol < 0 {
		return nil, errors.New("CSV header must contain query_type and sql columns")
	}

	var cw *csv.Writer
	if format == FormatCSV {
		cw = csv.NewWriter(w)
		if err := cw.Write(header); err != nil {
			return nil, fmt.Errorf("writing CSV header: %w", err)
		}
	}

	counts := map[string]int{}
	record := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		record++
		if err != nil {
			return nil, fmt.Errorf("reading CSV record %d: %w", record, err)
		}
		if typeCol >= len(rec) || sqlCol >= len(rec) {
			continue
		}
		kind := strings.ToLower(strings.TrimSpace(rec[typeCol]))
		if !writeKinds[kind] {
			continue
		}
		sql := strings.TrimSpace(shardedNamePattern.ReplaceAllString(rec[sqlCol], `"$1"`))
		if sql == "" {
			continue
		}
		counts[kind]++
		if format == FormatCSV {
			out := make([]string, len(rec))
			copy(out, rec)
			out[sqlCol] = sql
			if err := cw.Write(out); err != nil {
				return nil, fmt.Errorf("writing CSV record: %w", err)
			}
		} else {
			stmt := strings.TrimSpace(strings.TrimSuffix(sql, ";"))
			term := ";\n"
			if sqlstmt.EndsInLineComment(stmt) {
				term = "\n;\n"
			}
			if _, err := fmt.Fprintf(w, "%s%s", stmt, term); err != nil {
				return nil, fmt.Errorf("writing statement: %w", err)
			}
		}
	}
	if cw != nil {
		cw.Flush()
		if err := cw.Error(); err != nil {
			return nil, fmt.Errorf("flushing CSV output: %w", err)
		}
	}
	return counts, nil
}
