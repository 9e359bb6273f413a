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

	"github.com/GoogleCloudPlatform/db-workload-matcher/internal/refresh"
	"github.com/GoogleCloudPlatform/db-workload-matcher/internal/workload"
)

// refreshToSQLCmd represents the refresh-to-sql command
var refreshToSQLCmd = &cobra.Command{
	Use:   "refresh-to-sql",
	Short: "Convert a TPC-H dbgen refresh stream into a SQL script",
	Long: `Reads orders.tbl.u<N>, lineitem.tbl.u<N> and delete.<N> from a dbgen update
directory and emits one transactional SQL script containing the stream's RF1
inserts and RF2 deletes.`,
	Example: `./db_workload_matcher refresh-to-sql --update_dir ./updates --stream 1 --out_file refresh_1.sql`,
	RunE:    runRefreshToSQL,
}

func runRefreshToSQL(cmd *cobra.Command, args []string) error {
	stream := refresh.Stream{
		Dir:       refreshUpdateDir,
		Number:    refreshStream,
		Delimiter: refreshDelimiter,
	}

	log.Info("converting refresh stream",
		zap.String("update_dir", stream.Dir),
		zap.Int("stream", stream.Number),
		zap.String("output_file", refreshOutFile))

	data, err := stream.SQL()
	if err != nil {
		return err
	}
	if err := workload.WriteRaw(refreshOutFile, data); err != nil {
		return err
	}

	log.Info("refresh stream written",
		zap.String("output_file", refreshOutFile),
		zap.Int("bytes", len(data)))
	return nil
}

var (
	refreshUpdateDir string
	refreshStream    int
	refreshOutFile   string
	refreshDelimiter string
)

func init() {
	refreshToSQLCmd.Flags().StringVar(&refreshUpdateDir, "update_dir", "", "Directory containing dbgen update files - MANDATORY")
	refreshToSQLCmd.Flags().IntVar(&refreshStream, "stream", 0, "Refresh stream number (>= 1) - MANDATORY")
	refreshToSQLCmd.Flags().StringVarP(&refreshOutFile, "out_file", "o", "", "File path for the generated SQL script - MANDATORY")
	refreshToSQLCmd.Flags().StringVar(&refreshDelimiter, "delimiter", "|", "Field delimiter used by the dbgen files")

	_ = refreshToSQLCmd.MarkFlagRequired("update_dir")
	_ = refreshToSQLCmd.MarkFlagRequired("stream")
	_ = refreshToSQLCmd.MarkFlagRequired("out_file")
}
