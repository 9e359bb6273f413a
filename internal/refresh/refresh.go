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

// Package refresh converts TPC-H dbgen refresh streams (RF1 inserts, RF2
// deletes) into replayable SQL scripts.
package refresh

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// TPC-H refresh file schemas: column counts and which columns are
// string-typed and need quoting.
const (
	ordersFieldCount   = 9
	lineitemFieldCount = 16
)

var (
	// o_orderstatus, o_orderdate, o_orderpriority, o_clerk, o_comment
	ordersQuoted = map[int]bool{2: true, 4: true, 5: true, 6: true, 8: true}
	// l_returnflag through l_comment
	lineitemQuoted = map[int]bool{
		8: true, 9: true, 10: true, 11: true, 12: true, 13: true, 14: true, 15: true,
	}
)

// Stream identifies one refresh stream inside a dbgen update directory,
// which holds orders.tbl.uN, lineitem.tbl.uN, and delete.N files.
type Stream struct {
	Dir       string
	Number    int
	Delimiter string
}

// Validate checks the stream parameters before any file is touched.
func (s Stream) Validate() error {
	if s.Dir == "" {
		return errors.New("update directory is required")
	}
	if s.Number < 1 {
		return fmt.Errorf("stream number must be >= 1, got %d", s.Number)
	}
	if s.Delimiter == "" {
		return errors.New("field delimiter must not be empty")
	}
	return nil
}

// SQL converts the stream's refresh files into a single SQL script: RF1
// inserts for ORDERS then LINEITEM, RF2 deletes (LINEITEM before ORDERS so
// foreign keys hold), wrapped in one transaction.
func (s Stream) SQL() ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteString("BEGIN TRANSACTION;\n\n")
	if err := s.appendInserts(&buf, s.ordersFile(), "ORDERS", ordersFieldCount, ordersQuoted); err != nil {
		return nil, err
	}
	if err := s.appendInserts(&buf, s.lineitemFile(), "LINEITEM", lineitemFieldCount, lineitemQuoted); err != nil {
		return nil, err
	}
	if err := s.appendDeletes(&buf); err != nil {
		return nil, err
	}
	buf.WriteString("COMMIT;\n")
	return buf.Bytes(), nil
}

func (s Stream) ordersFile() string {
	return filepath.Join(s.Dir, fmt.Sprintf("orders.tbl.u%d", s.Number))
}

func (s Stream) lineitemFile() string {
	return filepath.Join(s.Dir, fmt.Sprintf("lineitem.tbl.u%d", s.Number))
}

func (s Stream) deleteFile() string {
	return filepath.Join(s.Dir, fmt.Sprintf("delete.%d", s.Number))
}

func (s Stream) appendInserts(buf *bytes.Buffer, path, table string, fieldCount int, quoted map[int]bool) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening refresh file: %w", err)
	}
	defer f.Close()

	fmt.Fprintf(buf, "-- RF1: inserts for %s from %s\n", table, filepath.Base(path))
	scan := bufio.NewScanner(f)
	lineNo := 0
	for scan.Scan() {
		lineNo++
		line := strings.TrimSpace(scan.Text())
		if line == "" {
			continue
		}
		fields := splitFields(line, s.Delimiter)
		if len(fields) != fieldCount {
			return fmt.Errorf("%s line %d: expected %d fields, got %d", path, lineNo, fieldCount, len(fields))
		}
		buf.WriteString("INSERT INTO ")
		buf.WriteString(table)
		buf.WriteString(" VALUES (")
		for i, v := range fields {
			if i > 0 {
				buf.WriteString(", ")
			}
			if quoted[i] {
				buf.WriteByte('\'')
				buf.WriteString(strings.ReplaceAll(v, "'", "''"))
				buf.WriteByte('\'')
			} else {
				buf.WriteString(v)
			}
		}
		buf.WriteString(");\n")
	}
	if err := scan.Err(); err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	buf.WriteByte('\n')
	return nil
}

func (s Stream) appendDeletes(buf *bytes.Buffer) error {
	path := s.deleteFile()
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening refresh file: %w", err)
	}
	defer f.Close()

	fmt.Fprintf(buf, "-- RF2: deletes from %s\n", filepath.Base(path))
	scan := bufio.NewScanner(f)
	lineNo := 0
	for scan.Scan() {
		lineNo++
		key := strings.TrimSpace(scan.Text())
		// dbgen emits a trailing field delimiter on some platforms
		key = strings.TrimSuffix(key, s.Delimiter)
		if key == "" {
			continue
		}
		if !allDigits(key) {
			return fmt.Errorf("%s line %d: order key %q is not numeric", path, lineNo, key)
		}
		fmt.Fprintf(buf, "DELETE FROM LINEITEM WHERE L_ORDERKEY = %s;\n", key)
		fmt.Fprintf(buf, "DELETE FROM ORDERS WHERE O_ORDERKEY = %s;\n", key)
	}
	if err := scan.Err(); err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	buf.WriteByte('\n')
	return nil
}

// splitFields splits a data line on the delimiter, dropping the empty last
// field produced by dbgen's trailing delimiter.
func splitFields(line, delim string) []string {
	fields := strings.Split(line, delim)
	if n := len(fields); n > 0 && fields[n-1] == "" {
		fields = fields[:n-1]
	}
	return fields
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
