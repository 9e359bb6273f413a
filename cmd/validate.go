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
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/GoogleCloudPlatform/db-workload-matcher/internal/config"
	"github.com/GoogleCloudPlatform/db-workload-matcher/internal/database"
	"github.com/GoogleCloudPlatform/db-workload-matcher/internal/sqlstmt"
	"github.com/GoogleCloudPlatform/db-workload-matcher/internal/tables"
	"github.com/GoogleCloudPlatform/db-workload-matcher/internal/utils"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that every table a workload references exists in the target database",
	Long: `Extracts the tables a workload file references and verifies each one exists
in the target database before the workload is replayed. The command waits for
the database to accept connections, so it can run as a readiness gate in
benchmark pipelines.`,
	Example: `./db_workload_matcher validate --workload workload.sql --dialect postgres --host localhost --port 5432 --username postgres --password secret --database tpch`,
	RunE:    runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	dbCfg := config.Get().Database
	if cmd.Flags().Changed("dialect") {
		dbCfg.Dialect = validateDialect
	}
	if cmd.Flags().Changed("host") {
		dbCfg.Host = validateHost
	}
	if cmd.Flags().Changed("port") {
		dbCfg.Port = validatePort
	}
	if cmd.Flags().Changed("username") {
		dbCfg.User = validateUsername
	}
	if cmd.Flags().Changed("password") {
		dbCfg.Password = validatePassword
	}
	if cmd.Flags().Changed("database") {
		dbCfg.DBName = validateDatabase
	}
	if cmd.Flags().Changed("sslmode") {
		dbCfg.SSLMode = validateSSLMode
	}
	if cmd.Flags().Changed("cloudsql-instance-connection-name") {
		dbCfg.CloudSQLInstanceConnectionName = validateInstanceName
	}
	if cmd.Flags().Changed("cloudsql-use-private-ip") {
		dbCfg.UsePrivateIP = validatePrivateIP
	}
	if err := dbCfg.Validate(); err != nil {
		return err
	}

	ext, err := tables.New(validateExtractor, log)
	if err != nil {
		return err
	}
	stmts, err := sqlstmt.Load(validateWorkload)
	if err != nil {
		return err
	}

	referenced := tables.Set{}
	for _, stmt := range stmts {
		switch {
		case stmt.Kind.IsSelect():
			for name := range ext.SelectTables(stmt) {
				referenced.Add(name)
			}
		case stmt.Kind.IsWrite():
			if name, ok := ext.WriteTarget(stmt); ok {
				referenced.Add(name)
			}
		}
	}
	if validateTables != "" {
		keep := tables.Set{}
		for _, t := range utils.ParseTablesFlag(validateTables) {
			keep.Add(tables.Name(t))
		}
		for _, name := range referenced.Sorted() {
			if !keep.Has(name) {
				delete(referenced, name)
			}
		}
	}
	if len(referenced) == 0 {
		log.Warn("workload references no tables, nothing to validate",
			zap.String("workload_file", validateWorkload))
		return nil
	}

	db, err := database.New(dbCfg)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	opts := database.DefaultRetryOptions
	opts.MaxAttempts = validateWait
	if err := db.WaitReady(ctx, opts, log); err != nil {
		return err
	}

	present, err := db.ListTables(ctx)
	if err != nil {
		return fmt.Errorf("listing database tables: %w", err)
	}
	existing := tables.Set{}
	for _, t := range present {
		existing.Add(tables.Normalize(t))
	}

	var missing []string
	for _, name := range referenced.Sorted() {
		if !existing.Has(name) {
			missing = append(missing, string(name))
		}
	}
	if len(missing) > 0 {
		log.Error("workload references tables the database does not have",
			zap.String("database", dbCfg.DBName),
			zap.Strings("missing_tables", missing))
		return fmt.Errorf("%d of %d workload tables missing from database: %s",
			len(missing), len(referenced), strings.Join(missing, ", "))
	}

	log.Info("workload tables present",
		zap.String("workload_file", validateWorkload),
		zap.String("database", dbCfg.DBName),
		zap.Int("tables_checked", len(referenced)),
		zap.Strings("tables", referenced.Strings()))
	return nil
}

var (
	validateWorkload     string
	validateDialect      string
	validateHost         string
	validatePort         int
	validateUsername     string
	validatePassword     string
	validateDatabase     string
	validateSSLMode      string
	validateInstanceName string
	validatePrivateIP    bool
	validateTables       string
	validateWait         int
	validateExtractor    string
)

func init() {
	validateCmd.Flags().StringVar(&validateWorkload, "workload", "", "Workload SQL file to validate - MANDATORY")
	validateCmd.Flags().StringVar(&validateDialect, "dialect", "", fmt.Sprintf("Database dialect (%s)", strings.Join([]string{"postgres", "mysql", "sqlserver", "cloudsqlpostgres", "cloudsqlmysql", "cloudsqlsqlserver"}, ", ")))
	validateCmd.Flags().StringVar(&validateHost, "host", "", "Database host")
	validateCmd.Flags().IntVar(&validatePort, "port", 0, "Database port")
	validateCmd.Flags().StringVar(&validateUsername, "username", "", "Database username")
	validateCmd.Flags().StringVar(&validatePassword, "password", "", "Database password")
	validateCmd.Flags().StringVar(&validateDatabase, "database", "", "Database name")
	validateCmd.Flags().StringVar(&validateSSLMode, "sslmode", "", "Postgres SSL mode (disable, require, verify-ca, verify-full)")
	validateCmd.Flags().StringVar(&validateInstanceName, "cloudsql-instance-connection-name", "", "Cloud SQL instance connection name (for Cloud SQL dialects)")
	validateCmd.Flags().BoolVar(&validatePrivateIP, "cloudsql-use-private-ip", false, "Use private IP for Cloud SQL connection (Cloud SQL)")
	validateCmd.Flags().StringVar(&validateTables, "tables", "", "Comma-separated list of tables to restrict the check to (e.g., 'orders,lineitem')")
	validateCmd.Flags().IntVar(&validateWait, "wait", database.DefaultRetryOptions.MaxAttempts, "Maximum connection attempts while waiting for the database")
	validateCmd.Flags().StringVar(&validateExtractor, "extractor", tables.ExtractorHeuristic, "Table extraction strategy (heuristic, parser)")

	_ = validateCmd.MarkFlagRequired("workload")
}
