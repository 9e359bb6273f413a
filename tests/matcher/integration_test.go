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
package matcher_test

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/GoogleCloudPlatform/db-workload-matcher/internal/matcher"
	"github.com/GoogleCloudPlatform/db-workload-matcher/internal/sqlstmt"
	"github.com/GoogleCloudPlatform/db-workload-matcher/internal/tables"
	"github.com/GoogleCloudPlatform/db-workload-matcher/internal/workload"
)

const writesSQL = `INSERT INTO ORDERS VALUES (1, 370, 'O');
INSERT INTO LINEITEM VALUES (1, 155190, 7706);
UPDATE ORDERS SET O_ORDERSTATUS = 'F' WHERE O_ORDERKEY = 1;
DELETE FROM LINEITEM WHERE L_ORDERKEY = 32;
INSERT INTO ORDERS VALUES (2, 781, 'O');
`

const selectsSQL = `SELECT * FROM ORDERS WHERE O_ORDERKEY = 1;
SELECT COUNT(*) FROM LINEITEM;
SELECT 1;
`

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// runPipeline performs a full match run the way the match command does:
// load writes, index them, stream selects through the matcher, write the
// interleaved workload.
func runPipeline(t *testing.T, writeSQL, selectSQL string, budget matcher.Budget) (*workload.Workload, *matcher.Matcher, string) {
	t.Helper()
	dir := t.TempDir()
	writePath := writeFixture(t, dir, "writes.sql", writeSQL)
	selectPath := writeFixture(t, dir, "selects.sql", selectSQL)
	outPath := filepath.Join(dir, "workload.sql")

	log := zap.NewNop()
	ext, err := tables.New(tables.ExtractorHeuristic, log)
	require.NoError(t, err)
	writes, err := sqlstmt.Load(writePath)
	require.NoError(t, err)
	m, err := matcher.New(writes, ext, budget, log)
	require.NoError(t, err)

	f, err := os.Open(selectPath)
	require.NoError(t, err)
	defer f.Close()

	result, err := m.Run(sqlstmt.NewScanner(f))
	require.NoError(t, err)
	require.NoError(t, workload.Write(outPath, result.Statements))
	return result, m, outPath
}

func TestMatchPipelineInterleavesWrites(t *testing.T) {
	budget := matcher.Budget{MaxWritesPerTable: 2, MaxMatchesPerSelect: 5, MaxTotalMatches: 100}
	result, m, outPath := runPipeline(t, writesSQL, selectsSQL, budget)

	got, err := os.ReadFile(outPath)
	require.NoError(t, err)

	want := `SELECT * FROM ORDERS WHERE O_ORDERKEY = 1;
INSERT INTO ORDERS VALUES (1, 370, 'O');
UPDATE ORDERS SET O_ORDERSTATUS = 'F' WHERE O_ORDERKEY = 1;
SELECT COUNT(*) FROM LINEITEM;
INSERT INTO LINEITEM VALUES (1, 155190, 7706);
DELETE FROM LINEITEM WHERE L_ORDERKEY = 32;
SELECT 1;
`
	assert.Equal(t, want, string(got))

	assert.Equal(t, 3, result.SelectsEmitted)
	assert.Equal(t, 2, result.SelectsMatched)
	assert.Equal(t, 4, result.WritesConsumed)
	assert.Equal(t, 2, result.WritesPerTable[tables.Name("orders")])
	assert.Equal(t, 2, result.WritesPerTable[tables.Name("lineitem")])
	assert.Equal(t, 5, m.WritesIndexed())
	assert.Equal(t, 0, m.WritesDiscarded())
}

func TestMatchPipelineIsDeterministic(t *testing.T) {
	budget := matcher.Budget{MaxWritesPerTable: 2, MaxMatchesPerSelect: 5, MaxTotalMatches: 100}

	_, _, firstPath := runPipeline(t, writesSQL, selectsSQL, budget)
	_, _, secondPath := runPipeline(t, writesSQL, selectsSQL, budget)

	first, err := os.ReadFile(firstPath)
	require.NoError(t, err)
	second, err := os.ReadFile(secondPath)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestMatchPipelineHonorsGlobalBudget(t *testing.T) {
	budget := matcher.Budget{MaxWritesPerTable: 2, MaxMatchesPerSelect: 5, MaxTotalMatches: 1}
	result, _, outPath := runPipeline(t, writesSQL, selectsSQL, budget)

	got, err := os.ReadFile(outPath)
	require.NoError(t, err)

	// The first select takes the only match. Later selects still appear,
	// unmatched, and the run finishes without error.
	want := `SELECT * FROM ORDERS WHERE O_ORDERKEY = 1;
INSERT INTO ORDERS VALUES (1, 370, 'O');
SELECT COUNT(*) FROM LINEITEM;
SELECT 1;
`
	assert.Equal(t, want, string(got))
	assert.Equal(t, 3, result.SelectsEmitted)
	assert.Equal(t, 1, result.SelectsMatched)
	assert.Equal(t, 1, result.WritesConsumed)
}

func TestMatchPipelineZeroBudgetEmitsSelectsOnly(t *testing.T) {
	budget := matcher.Budget{MaxWritesPerTable: 0, MaxMatchesPerSelect: 0, MaxTotalMatches: 0}
	result, _, outPath := runPipeline(t, writesSQL, selectsSQL, budget)

	got, err := os.ReadFile(outPath)
	require.NoError(t, err)

	want := `SELECT * FROM ORDERS WHERE O_ORDERKEY = 1;
SELECT COUNT(*) FROM LINEITEM;
SELECT 1;
`
	assert.Equal(t, want, string(got))
	assert.Equal(t, 0, result.WritesConsumed)
	assert.Equal(t, 0, result.SelectsMatched)
}

func TestMatchPipelineRejectsEmptySelectFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "empty.sql", "-- nothing here\n")

	_, err := sqlstmt.Load(path)
	require.Error(t, err)

	var malformed *sqlstmt.MalformedInputError
	require.True(t, errors.As(err, &malformed))
	assert.True(t, errors.Is(err, sqlstmt.ErrNoStatements))
}

func TestMatchReportRoundTrip(t *testing.T) {
	budget := matcher.Budget{MaxWritesPerTable: 2, MaxMatchesPerSelect: 5, MaxTotalMatches: 100}
	result, m, _ := runPipeline(t, writesSQL, selectsSQL, budget)

	report := m.Summary("run-42", result, 1500*time.Millisecond)
	report.WriteFile = "writes.sql"
	report.SelectFile = "selects.sql"
	report.OutputFile = "workload.sql"

	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, report.WriteJSON(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got matcher.Report
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "run-42", got.RunID)
	assert.Equal(t, budget, got.Budget)
	assert.Equal(t, 5, got.WritesIndexed)
	assert.Equal(t, 0, got.WritesDiscarded)
	assert.Equal(t, 3, got.SelectsEmitted)
	assert.Equal(t, 2, got.SelectsMatched)
	assert.Equal(t, 4, got.WritesConsumed)
	assert.Equal(t, map[string]int{"orders": 2, "lineitem": 2}, got.WritesPerTable)
	assert.Equal(t, int64(1500), got.ElapsedMS)
}
