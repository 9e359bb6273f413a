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

// Package workload assembles and serializes matched SQL workloads.
package workload

import (
	"bufio"
	"io"
	"os"
	"path/filepath"

	"github.com/GoogleCloudPlatform/db-workload-matcher/internal/sqlstmt"
)

// Write serializes statements to path, each as its verbatim text followed by
// ";\n". A statement whose text ends inside a line comment gets its
// terminator on the next line, so the semicolon still terminates when the
// file is read back. The content lands in a temporary file in the
// destination directory and is renamed over path only after a successful
// flush, so a failed run never leaves partial output behind.
func Write(path string, stmts []sqlstmt.Statement) error {
	return writeAtomic(path, func(w io.Writer) error {
		for _, stmt := range stmts {
			if _, err := io.WriteString(w, stmt.Text); err != nil {
				return err
			}
			term := ";\n"
			if sqlstmt.EndsInLineComment(stmt.Text) {
				term = "\n;\n"
			}
			if _, err := io.WriteString(w, term); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteRaw writes data to path under the same atomic contract as Write.
func WriteRaw(path string, data []byte) error {
	return writeAtomic(path, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

func writeAtomic(path string, fill func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".partial-*")
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	buf := bufio.NewWriter(tmp)
	if err := fill(buf); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	if err := buf.Flush(); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	committed = true
	return nil
}
