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
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/GoogleCloudPlatform/db-workload-matcher/internal/filter"
	"github.com/GoogleCloudPlatform/db-workload-matcher/internal/workload"
)

// filterWritesCmd represents the filter-writes command
var filterWritesCmd = &cobra.Command{
	Use:   "filter-writes",
	Short: "Extract write statements from a captured query-log CSV",
	Long: `Reads a query-log CSV with query_type and sql columns, keeps only the insert,
update and delete rows, collapses "_<digits>" shard suffixes on quoted table
names, and writes the result as filtered CSV or bare SQL statements.`,
	Example: `./db_workload_matcher filter-writes --input queries.csv --output writes.sql --format sql`,
	RunE:    runFilterWrites,
}

func runFilterWrites(cmd *cobra.Command, args []string) error {
	in, err := os.Open(filterInput)
	if err != nil {
		return fmt.Errorf("opening input file: %w", err)
	}
	defer in.Close()

	var buf bytes.Buffer
	counts, err := filter.Writes(in, &buf, filterFormat)
	if err != nil {
		return err
	}
	if err := workload.WriteRaw(filterOutput, buf.Bytes()); err != nil {
		return err
	}

	log.Info("write statements filtered",
		zap.String("input_file", filterInput),
		zap.String("output_file", filterOutput),
		zap.String("format", filterFormat),
		zap.Int("inserts", counts["insert"]),
		zap.Int("updates", counts["update"]),
		zap.Int("deletes", counts["delete"]))
	return nil
}

var (
	filterInput  string
	filterOutput string
	filterFormat string
)

func init() {
	filterWritesCmd.Flags().StringVar(&filterInput, "input", "", "Query-log CSV to filter - MANDATORY")
	filterWritesCmd.Flags().StringVarP(&filterOutput, "output", "o", "", "File path for the filtered output - MANDATORY")
	filterWritesCmd.Flags().StringVar(&filterFormat, "format", filter.FormatCSV, "Output format (csv, sql)")

	_ = filterWritesCmd.MarkFlagRequired("input")
	_ = filterWritesCmd.MarkFlagRequired("output")
}
