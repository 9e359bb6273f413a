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

// Package tables derives the tables SQL statements reference, which is the
// only statement understanding the workload matcher needs.
package tables

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/GoogleCloudPlatform/db-workload-matcher/internal/sqlstmt"
)

// Extractor derives the tables statements touch. Implementations must be
// deterministic: the same statement always yields the same result.
type Extractor interface {
	// SelectTables returns every table a select statement reads from.
	// Statements the implementation cannot understand yield an empty set,
	// never an error.
	SelectTables(stmt sqlstmt.Statement) Set

	// WriteTarget returns the single table a write statement modifies, and
	// false when no target can be determined.
	WriteTarget(stmt sqlstmt.Statement) (Name, bool)
}

// Supported extractor names.
const (
	ExtractorHeuristic = "heuristic"
	ExtractorParser    = "parser"
)

// New returns the extractor implementation registered under name. An empty
// name selects the heuristic extractor.
func New(name string, log *zap.Logger) (Extractor, error) {
	switch name {
	case "", ExtractorHeuristic:
		return NewHeuristic(log), nil
	case ExtractorParser:
		return NewParser(log), nil
	default:
		return nil, fmt.Errorf("unsupported extractor: %s. Supported extractors are: %s, %s",
			name, ExtractorHeuristic, ExtractorParser)
	}
}
