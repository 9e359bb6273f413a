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
package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/GoogleCloudPlatform/db-workload-matcher/internal/sqlstmt"
	"github.com/GoogleCloudPlatform/db-workload-matcher/internal/utils"
	"github.com/GoogleCloudPlatform/db-workload-matcher/internal/workload"
)

// cleanSelectsCmd represents the clean-selects command
var cleanSelectsCmd = &cobra.Command{
	Use:   "clean-selects",
	Short: "Remove top-level ORDER BY clauses from a select file",
	Long: `Rewrites a select file in place with the top-level ORDER BY clause of each
statement removed. ORDER BY inside parenthesised subexpressions is left alone.
Unless --no-backup is given, the original file is first copied to <file>.backup.`,
	Example: `./db_workload_matcher clean-selects --file selects.sql --dry-run`,
	RunE:    runCleanSelects,
}

func runCleanSelects(cmd *cobra.Command, args []string) error {
	stmts, err := sqlstmt.Load(cleanFile)
	if err != nil {
		return err
	}

	changed := 0
	cleaned := make([]sqlstmt.Statement, len(stmts))
	for i, stmt := range stmts {
		cleaned[i] = stmt
		if !stmt.Kind.IsSelect() {
			continue
		}
		text := sqlstmt.RemoveOrderBy(stmt.Text)
		if text == stmt.Text {
			continue
		}
		changed++
		cleaned[i].Text = text
		if cleanDryRun {
			log.Info("would remove ORDER BY", zap.Int("statement", stmt.Index+1))
		}
	}

	if cleanDryRun {
		log.Info("dry run complete",
			zap.String("file", cleanFile),
			zap.Int("statements", len(stmts)),
			zap.Int("with_order_by", changed))
		return nil
	}
	if changed == 0 {
		log.Info("no top-level ORDER BY clauses found",
			zap.String("file", cleanFile),
			zap.Int("statements", len(stmts)))
		return nil
	}

	if !cleanNoBackup {
		backupPath, err := utils.BackupFile(cleanFile)
		if err != nil {
			return err
		}
		log.Info("backup written", zap.String("backup_file", backupPath))
	}

	if err := workload.Write(cleanFile, cleaned); err != nil {
		return err
	}

	log.Info("select file cleaned",
		zap.String("file", cleanFile),
		zap.Int("statements_rewritten", changed))
	return nil
}

var (
	cleanFile     string
	cleanDryRun   bool
	cleanNoBackup bool
)

func init() {
	cleanSelectsCmd.Flags().StringVar(&cleanFile, "file", "", "Select file to clean in place - MANDATORY")
	cleanSelectsCmd.Flags().BoolVar(&cleanDryRun, "dry-run", false, "Report would-be changes without rewriting the file")
	cleanSelectsCmd.Flags().BoolVar(&cleanNoBackup, "no-backup", false, "Skip writing <file>.backup before rewriting")

	_ = cleanSelectsCmd.MarkFlagRequired("file")
}
