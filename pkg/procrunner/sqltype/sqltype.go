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

// Package sqltype holds the closed set of parameter type codes the
// coercer and determinism codec agree on, plus the canonical NULL
// sentinel for each.
package sqltype

import "math"

// Code is a parameter type tag, analogous to matrixone's
// container/types.T but scoped to the small set of types a stored
// procedure parameter can carry.
type Code uint8

const (
	Invalid Code = iota
	Tinyint
	Smallint
	Integer
	Bigint
	Float
	Timestamp
	String
	Varbinary
	Decimal
)

func (c Code) String() string {
	switch c {
	case Tinyint:
		return "TINYINT"
	case Smallint:
		return "SMALLINT"
	case Integer:
		return "INTEGER"
	case Bigint:
		return "BIGINT"
	case Float:
		return "FLOAT"
	case Timestamp:
		return "TIMESTAMP"
	case String:
		return "STRING"
	case Varbinary:
		return "VARBINARY"
	case Decimal:
		return "DECIMAL"
	default:
		return "INVALID"
	}
}

// Width promotion applied at install time for single-statement
// procedures (spec §4.1 "Widening at compile-install time"): narrow
// integers widen to BIGINT, NUMERIC (DECIMAL) widens to FLOAT.
func WidenDeclared(c Code) Code {
	switch c {
	case Tinyint, Smallint, Integer:
		return Bigint
	case Decimal:
		return Float
	default:
		return c
	}
}

// NullString is the designated NULL marker used for STRING/VARBINARY/
// DECIMAL parameters, which have no natural in-band sentinel value.
const NullString = "\x00VOLT_NULL_STRING\x00"

// NullSentinel returns the canonical NULL value for c, or an
// UnknownTypeForNull-class error (reported by the caller) if c has no
// defined sentinel.
func NullSentinel(c Code) (any, bool) {
	switch c {
	case Tinyint:
		return int8(math.MinInt8), true
	case Smallint:
		return int16(math.MinInt16), true
	case Integer:
		return int32(math.MinInt32), true
	case Bigint:
		return int64(math.MinInt64), true
	case Float:
		return math.NaN(), true
	case Timestamp:
		return int64(math.MinInt64), true // microseconds since epoch
	case String, Varbinary:
		return NullString, true
	case Decimal:
		return NullString, true
	default:
		return nil, false
	}
}

// IsNullSentinel reports whether v is the canonical NULL encoding for
// type c. Used by tests and by downstream table formatting; the
// determinism codec never needs to special-case NULLs, it just
// serializes whatever Coerce produced.
func IsNullSentinel(c Code, v any) bool {
	sentinel, ok := NullSentinel(c)
	if !ok {
		return false
	}
	if c == Float {
		f, isF := v.(float64)
		return isF && math.IsNaN(f)
	}
	return v == sentinel
}
