// Copyright 2024 The voltdb-4.7fix Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package queue

import "fmt"

// Expectation is a lightweight post-condition on a statement's result
// row count (glossary: "Expectation"). It never inspects row content,
// only cardinality — content checks belong to the procedure's own
// logic, not the runner.
type Expectation struct {
	kind  expectKind
	count int
}

type expectKind int

const (
	expectExactly expectKind = iota
	expectAtLeastOne
	expectZero
)

// ExpectExactlyOneRow requires the statement to produce exactly one
// row, the common case for a singleton lookup or point update.
func ExpectExactlyOneRow() Expectation { return Expectation{kind: expectExactly, count: 1} }

// ExpectExactly requires the statement to produce exactly n rows.
func ExpectExactly(n int) Expectation { return Expectation{kind: expectExactly, count: n} }

// ExpectNonEmpty requires at least one row.
func ExpectNonEmpty() Expectation { return Expectation{kind: expectAtLeastOne} }

// ExpectEmpty requires zero rows, e.g. a DELETE expected to match no
// pre-existing data on a fresh insert path.
func ExpectEmpty() Expectation { return Expectation{kind: expectZero} }

// Evaluate reports whether rowCount satisfies the expectation.
func (e Expectation) Evaluate(rowCount int) bool {
	switch e.kind {
	case expectExactly:
		return rowCount == e.count
	case expectAtLeastOne:
		return rowCount > 0
	case expectZero:
		return rowCount == 0
	default:
		return true
	}
}

func (e Expectation) String() string {
	switch e.kind {
	case expectExactly:
		return fmt.Sprintf("exactly %d row(s)", e.count)
	case expectAtLeastOne:
		return "at least one row"
	case expectZero:
		return "zero rows"
	default:
		return "no expectation"
	}
}
