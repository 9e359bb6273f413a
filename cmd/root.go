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

	"github.com/GoogleCloudPlatform/db-workload-matcher/internal/config"
	_ "github.com/GoogleCloudPlatform/db-workload-matcher/internal/database/mysql"
	_ "github.com/GoogleCloudPlatform/db-workload-matcher/internal/database/postgres"
	_ "github.com/GoogleCloudPlatform/db-workload-matcher/internal/database/sqlserver"
	"github.com/GoogleCloudPlatform/db-workload-matcher/internal/logger"
)

var (
	cfgFile  string
	logLevel string

	// log is replaced with the configured logger before any RunE executes.
	log = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "db_workload_matcher",
	Short: "A tool to build interleaved read/write SQL workloads",
	Long: `db_workload_matcher prepares database benchmark workloads: it interleaves
captured write statements into a read workload under configurable budgets,
converts TPC-H refresh streams to SQL, cleans and filters captured statement
files, and validates workloads against a target database.`,
	PersistentPreRunE: initConfigAndLogger,
}

// initConfigAndLogger loads configuration and builds the shared logger.
// Flags take precedence over config file and environment values.
func initConfigAndLogger(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	config.SetConfig(cfg)

	l, err := logger.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	log = l
	return nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	defer func() {
		_ = log.Sync()
	}()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	// Add subcommands
	rootCmd.AddCommand(matchCmd)
	rootCmd.AddCommand(refreshToSQLCmd)
	rootCmd.AddCommand(cleanSelectsCmd)
	rootCmd.AddCommand(filterWritesCmd)
	rootCmd.AddCommand(validateCmd)
}
