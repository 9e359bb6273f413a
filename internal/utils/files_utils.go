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
package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DefaultWorkloadPath derives the output path for a matched workload from
// the select file: /path/queries.sql becomes /path/queries_workload.sql.
func DefaultWorkloadPath(selectFile string) string {
	base := strings.TrimSuffix(selectFile, filepath.Ext(selectFile))
	return base + "_workload.sql"
}

// BackupFile copies path to path.backup and returns the backup path.
func BackupFile(path string) (string, error) {
	src, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file for backup: %w", err)
	}
	defer src.Close()

	backupPath := path + ".backup"
	dst, err := os.Create(backupPath)
	if err != nil {
		return "", fmt.Errorf("failed to create backup file: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return "", fmt.Errorf("failed to copy %s to backup: %w", path, err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize backup file: %w", err)
	}
	return backupPath, nil
}

// ParseTablesFlag splits a comma separated table list, lowercasing each name
// so comparisons against extracted table names are case-insensitive.
func ParseTablesFlag(tablesFlag string) []string {
	if tablesFlag == "" {
		return nil
	}
	var tables []string
	for _, part := range strings.Split(tablesFlag, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			tables = append(tables, part)
		}
	}
	return tables
}
