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

import "errors"

// ErrNegativeBudget is returned when any budget value is below zero.
var ErrNegativeBudget = errors.New("budget values must not be negative")

// Budget bounds how many writes a match run may attach to its selects.
// Zero is a valid value for any bound and disables matching along that
// dimension; it never disables emitting the selects themselves.
type Budget struct {
	// MaxWritesPerTable caps the writes charged against any one table
	// across the whole output.
	MaxWritesPerTable int `json:"max_writes_per_table"`
	// MaxMatchesPerSelect caps the writes attached to a single select.
	MaxMatchesPerSelect int `json:"max_matches_per_select"`
	// MaxTotalMatches caps all matched writes across the output.
	MaxTotalMatches int `json:"max_total_matches"`
}

// Validate rejects negative budget values.
func (b Budget) Validate() error {
	if b.MaxWritesPerTable < 0 || b.MaxMatchesPerSelect < 0 || b.MaxTotalMatches < 0 {
		return ErrNegativeBudget
	}
	return nil
}
