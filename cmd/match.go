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
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/GoogleCloudPlatform/db-workload-matcher/internal/config"
	"github.com/GoogleCloudPlatform/db-workload-matcher/internal/matcher"
	"github.com/GoogleCloudPlatform/db-workload-matcher/internal/sqlstmt"
	"github.com/GoogleCloudPlatform/db-workload-matcher/internal/tables"
	"github.com/GoogleCloudPlatform/db-workload-matcher/internal/utils"
	"github.com/GoogleCloudPlatform/db-workload-matcher/internal/workload"
)

// matchCmd represents the match command
var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Interleave write statements into a read workload under budgets",
	Long: `Reads a write statement file and a select statement file, pairs each select
with writes that touch the tables it reads, and emits the interleaved workload.
Matching is deterministic: selects keep their input order, each write is used at
most once in write-file order, and the per-table, per-select, and total budgets
cap how many writes are consumed.`,
	Example: `./db_workload_matcher match --write_file writes.sql --select_file selects.sql --out_file workload.sql --max_writes_per_table 2 --max_matches_per_select 5 --max_total_matches 100`,
	RunE:    runMatch,
}

func runMatch(cmd *cobra.Command, args []string) error {
	runID := uuid.New().String()
	start := time.Now()

	outFile := matchOutFile
	if outFile == "" {
		outFile = utils.DefaultWorkloadPath(matchSelectFile)
	}

	matchCfg := config.Get().Match
	if cmd.Flags().Changed("max_writes_per_table") {
		matchCfg.MaxWritesPerTable = matchMaxWritesPerTable
	}
	if cmd.Flags().Changed("max_matches_per_select") {
		matchCfg.MaxMatchesPerSelect = matchMaxMatchesPerSelect
	}
	if cmd.Flags().Changed("max_total_matches") {
		matchCfg.MaxTotalMatches = matchMaxTotalMatches
	}
	if cmd.Flags().Changed("extractor") {
		matchCfg.Extractor = matchExtractor
	}
	if err := matchCfg.Validate(); err != nil {
		return err
	}

	log.Info("starting workload match",
		zap.String("run_id", runID),
		zap.String("write_file", matchWriteFile),
		zap.String("select_file", matchSelectFile),
		zap.String("output_file", outFile),
		zap.String("extractor", matchCfg.Extractor),
		zap.Int("max_writes_per_table", matchCfg.MaxWritesPerTable),
		zap.Int("max_matches_per_select", matchCfg.MaxMatchesPerSelect),
		zap.Int("max_total_matches", matchCfg.MaxTotalMatches))

	ext, err := tables.New(matchCfg.Extractor, log)
	if err != nil {
		return err
	}

	writes, err := sqlstmt.Load(matchWriteFile)
	if err != nil {
		return err
	}

	budget := matcher.Budget{
		MaxWritesPerTable:   matchCfg.MaxWritesPerTable,
		MaxMatchesPerSelect: matchCfg.MaxMatchesPerSelect,
		MaxTotalMatches:     matchCfg.MaxTotalMatches,
	}
	m, err := matcher.New(writes, ext, budget, log)
	if err != nil {
		return err
	}

	f, err := os.Open(matchSelectFile)
	if err != nil {
		return &sqlstmt.MalformedInputError{Path: matchSelectFile, Err: err}
	}
	defer f.Close()

	result, err := m.Run(sqlstmt.NewScanner(f))
	if err != nil {
		return &sqlstmt.MalformedInputError{Path: matchSelectFile, Err: err}
	}
	if len(result.Statements) == 0 {
		return &sqlstmt.MalformedInputError{Path: matchSelectFile, Err: sqlstmt.ErrNoStatements}
	}

	if err := workload.Write(outFile, result.Statements); err != nil {
		return err
	}

	if matchReportFile != "" {
		report := m.Summary(runID, result, time.Since(start))
		report.WriteFile = matchWriteFile
		report.SelectFile = matchSelectFile
		report.OutputFile = outFile
		if err := report.WriteJSON(matchReportFile); err != nil {
			return err
		}
	}

	log.Info("workload written",
		zap.String("output_file", outFile),
		zap.Int("statements", len(result.Statements)),
		zap.Int("selects_emitted", result.SelectsEmitted),
		zap.Int("selects_matched", result.SelectsMatched),
		zap.Int("writes_consumed", result.WritesConsumed),
		zap.Int("writes_indexed", m.WritesIndexed()),
		zap.Int("writes_discarded", m.WritesDiscarded()),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

var (
	matchWriteFile           string
	matchSelectFile          string
	matchOutFile             string
	matchReportFile          string
	matchExtractor           string
	matchMaxWritesPerTable   int
	matchMaxMatchesPerSelect int
	matchMaxTotalMatches     int
)

func init() {
	matchCmd.Flags().StringVar(&matchWriteFile, "write_file", "", "File containing write statements in replay order - MANDATORY")
	matchCmd.Flags().StringVar(&matchSelectFile, "select_file", "", "File containing select statements in replay order - MANDATORY")
	matchCmd.Flags().StringVarP(&matchOutFile, "out_file", "o", "", "File path for the interleaved workload (defaults to <select file>_workload.sql)")
	matchCmd.Flags().StringVar(&matchReportFile, "report_file", "", "Optional file path for a JSON match report")
	matchCmd.Flags().StringVar(&matchExtractor, "extractor", "heuristic", "Table extraction strategy (heuristic, parser)")
	matchCmd.Flags().IntVar(&matchMaxWritesPerTable, "max_writes_per_table", 2, "Maximum writes consumed per table across the whole run")
	matchCmd.Flags().IntVar(&matchMaxMatchesPerSelect, "max_matches_per_select", 5, "Maximum writes attached to a single select")
	matchCmd.Flags().IntVar(&matchMaxTotalMatches, "max_total_matches", 100, "Maximum writes consumed across the whole run")

	_ = matchCmd.MarkFlagRequired("write_file")
	_ = matchCmd.MarkFlagRequired("select_file")
}
