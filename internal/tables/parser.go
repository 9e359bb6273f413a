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
package tables

import (
	"strings"

	"github.com/viant/sqlparser"
	"github.com/viant/sqlparser/expr"
	"github.com/viant/sqlparser/node"
	"github.com/viant/sqlparser/query"
	"go.uber.org/zap"

	"github.com/GoogleCloudPlatform/db-workload-matcher/internal/sqlstmt"
)

// Parser extracts tables through a SQL parser instead of keyword scanning.
// It understands aliases and join shapes precisely but is conservative with
// constructs the grammar does not cover: a statement that fails to parse
// yields nothing, matching the Extractor contract.
type Parser struct {
	log *zap.Logger
}

// NewParser returns the parser-backed extractor.
func NewParser(log *zap.Logger) *Parser {
	return &Parser{log: log}
}

var _ Extractor = (*Parser)(nil)

// SelectTables walks the parsed query's FROM source and joins, recursing
// into derived tables.
func (p *Parser) SelectTables(stmt sqlstmt.Statement) Set {
	set := Set{}
	parsed, err := sqlparser.ParseQuery(stmt.Text)
	if err != nil || parsed == nil {
		p.log.Debug("select statement did not parse, no tables extracted",
			zap.Int("statement", stmt.Index), zap.Error(err))
		return set
	}
	p.collectQuery(parsed, set)
	return set
}

// WriteTarget parses the write statement and returns its target table.
func (p *Parser) WriteTarget(stmt sqlstmt.Statement) (Name, bool) {
	var target node.Node
	switch stmt.Kind {
	case sqlstmt.KindInsert:
		parsed, err := sqlparser.ParseInsert(stmt.Text)
		if err != nil || parsed == nil {
			p.log.Debug("insert statement did not parse",
				zap.Int("statement", stmt.Index), zap.Error(err))
			return "", false
		}
		target = parsed.Target.X
	case sqlstmt.KindUpdate:
		parsed, err := sqlparser.ParseUpdate(stmt.Text)
		if err != nil || parsed == nil {
			p.log.Debug("update statement did not parse",
				zap.Int("statement", stmt.Index), zap.Error(err))
			return "", false
		}
		target = parsed.Target.X
	case sqlstmt.KindDelete:
		parsed, err := sqlparser.ParseDelete(stmt.Text)
		if err != nil || parsed == nil {
			p.log.Debug("delete statement did not parse",
				zap.Int("statement", stmt.Index), zap.Error(err))
			return "", false
		}
		target = parsed.Target.X
	default:
		return "", false
	}
	if target == nil {
		return "", false
	}
	name := NormalizeTarget(strings.TrimSpace(sqlparser.Stringify(target)))
	if name == "" {
		return "", false
	}
	return name, true
}

func (p *Parser) collectQuery(q *query.Select, set Set) {
	p.collectSource(q.From.X, set)
	for _, join := range q.Joins {
		if join == nil {
			continue
		}
		p.collectSource(join.With, set)
	}
}

// collectSource records n when it names a table and recurses when it is a
// derived table. The parser hands derived tables back as raw parenthesized
// text, so recursion means stripping the parentheses and parsing again.
// Other node shapes are ignored rather than guessed at.
func (p *Parser) collectSource(n node.Node, set Set) {
	switch actual := n.(type) {
	case *expr.Ident:
		set.Add(Normalize(actual.Name))
	case *expr.Selector:
		set.Add(Normalize(strings.TrimSpace(sqlparser.Stringify(actual))))
	case *expr.Raw:
		inner := strings.TrimSpace(actual.Raw)
		for len(inner) >= 2 && inner[0] == '(' && inner[len(inner)-1] == ')' {
			inner = strings.TrimSpace(inner[1 : len(inner)-1])
		}
		if parsed, err := sqlparser.ParseQuery(inner); err == nil && parsed != nil {
			p.collectQuery(parsed, set)
		}
	}
}
