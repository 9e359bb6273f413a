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
package matcher

import (
	"encoding/json"
	"time"

	"github.com/GoogleCloudPlatform/db-workload-matcher/internal/workload"
)

// Report summarizes one match run for operators comparing benchmark
// configurations.
type Report struct {
	RunID           string         `json:"run_id"`
	WriteFile       string         `json:"write_file"`
	SelectFile      string         `json:"select_file"`
	OutputFile      string         `json:"output_file"`
	Budget          Budget         `json:"budget"`
	WritesIndexed   int            `json:"writes_indexed"`
	WritesDiscarded int            `json:"writes_discarded"`
	SelectsEmitted  int            `json:"selects_emitted"`
	SelectsMatched  int            `json:"selects_matched"`
	WritesConsumed  int            `json:"writes_consumed"`
	WritesPerTable  map[string]int `json:"writes_per_table"`
	ElapsedMS       int64          `json:"elapsed_ms"`
}

// Summary captures the finished run's counters. File paths are left for the
// caller to fill in.
func (m *Matcher) Summary(runID string, w *workload.Workload, elapsed time.Duration) *Report {
	perTable := make(map[string]int, len(w.WritesPerTable))
	for table, n := range w.WritesPerTable {
		perTable[string(table)] = n
	}
	return &Report{
		RunID:           runID,
		Budget:          m.budget,
		WritesIndexed:   len(m.writes),
		WritesDiscarded: m.writesDiscarded,
		SelectsEmitted:  w.SelectsEmitted,
		SelectsMatched:  w.SelectsMatched,
		WritesConsumed:  w.WritesConsumed,
		WritesPerTable:  perTable,
		ElapsedMS:       elapsed.Milliseconds(),
	}
}

// WriteJSON serializes the report to path with the same atomic contract as
// the workload writer.
func (r *Report) WriteJSON(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return &workload.WriteError{Path: path, Err: err}
	}
	return workload.WriteRaw(path, append(data, '\n'))
}
