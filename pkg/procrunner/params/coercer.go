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

// Package params implements the parameter coercer (spec §4.1): it
// turns a caller-supplied argument vector into the canonical
// representation the engine consumes.
package params

import (
	"fmt"
	"math"

	"github.com/eoneil1942/voltdb-4.7fix/pkg/procrunner/rerr"
	"github.com/eoneil1942/voltdb-4.7fix/pkg/procrunner/sqltype"
)

// Coerce converts args against target types, substituting the
// canonical NULL sentinel for any nil argument. Returns an
// ArityMismatch-class *rerr.Error when len(args) != len(types), and a
// TypeError/UnknownTypeForNull-class error naming the offending index
// otherwise.
func Coerce(types []sqltype.Code, args []any) ([]any, error) {
	if len(args) != len(types) {
		return nil, rerr.NewArityMismatch(len(types), len(args))
	}

	out := make([]any, len(types))
	for i, t := range types {
		if args[i] == nil {
			sentinel, ok := sqltype.NullSentinel(t)
			if !ok {
				return nil, rerr.NewUnknownTypeForNull(i, int(t))
			}
			out[i] = sentinel
			continue
		}
		v, err := coerceOne(t, args[i])
		if err != nil {
			return nil, rerr.NewTypeError(i, t.String(), fmt.Sprintf("%v", args[i]))
		}
		out[i] = v
	}
	return out, nil
}

// CoerceSysproc injects sysprocContext into slot 0 before coercing
// (spec §4.1 "System-procedure injection"): this happens before arity
// checking, so the caller's argument count must already exclude the
// context slot.
func CoerceSysproc(types []sqltype.Code, sysprocContext any, args []any) ([]any, error) {
	injected := make([]any, 0, len(args)+1)
	injected = append(injected, sysprocContext)
	injected = append(injected, args...)
	return Coerce(types, injected)
}

// coerceOne best-effort widens v to t, the way a JDBC-adjacent runtime
// accepts any reasonably-sized numeric literal for a wider column.
func coerceOne(t sqltype.Code, v any) (any, error) {
	switch t {
	case sqltype.Tinyint:
		return asInt64Bounded(v, math.MinInt8, math.MaxInt8, func(i int64) any { return int8(i) })
	case sqltype.Smallint:
		return asInt64Bounded(v, math.MinInt16, math.MaxInt16, func(i int64) any { return int16(i) })
	case sqltype.Integer:
		return asInt64Bounded(v, math.MinInt32, math.MaxInt32, func(i int64) any { return int32(i) })
	case sqltype.Bigint, sqltype.Timestamp:
		return asInt64Bounded(v, math.MinInt64, math.MaxInt64, func(i int64) any { return i })
	case sqltype.Float:
		return asFloat64(v)
	case sqltype.String, sqltype.Varbinary, sqltype.Decimal:
		return asString(v)
	default:
		return nil, fmt.Errorf("unsupported target type %v", t)
	}
}

func asInt64Bounded(v any, lo, hi int64, wrap func(int64) any) (any, error) {
	var i int64
	switch n := v.(type) {
	case int:
		i = int64(n)
	case int8:
		i = int64(n)
	case int16:
		i = int64(n)
	case int32:
		i = int64(n)
	case int64:
		i = n
	case float32:
		i = int64(n)
	case float64:
		i = int64(n)
	default:
		return nil, fmt.Errorf("cannot widen %T to integer", v)
	}
	if i < lo || i > hi {
		return nil, fmt.Errorf("value %d out of range [%d, %d]", i, lo, hi)
	}
	return wrap(i), nil
}

func asFloat64(v any) (any, error) {
	switch n := v.(type) {
	case float32:
		return float64(n), nil
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int8:
		return float64(n), nil
	case int16:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return nil, fmt.Errorf("cannot widen %T to float", v)
	}
}

func asString(v any) (any, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case []byte:
		return string(s), nil
	default:
		return nil, fmt.Errorf("cannot coerce %T to string/varbinary", v)
	}
}
