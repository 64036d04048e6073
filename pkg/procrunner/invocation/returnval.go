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

package invocation

import (
	"fmt"

	"github.com/eoneil1942/voltdb-4.7fix/pkg/procrunner/engine"
	"github.com/eoneil1942/voltdb-4.7fix/pkg/procrunner/rerr"
)

// scalarTable wraps a single BIGINT value returned directly from
// user code (spec §4.7 "Return-value coercion" — "Long → synthesize a
// one-column, one-row table of type BIGINT").
type scalarTable struct{ value int64 }

func (scalarTable) RowCount() int { return 1 }

// Value returns the synthesized table's sole BIGINT value.
func (t scalarTable) Value() int64 { return t.value }

// coerceReturnValue normalizes whatever the user's run(...) method
// returned into the result-table array the ClientResponse envelope
// carries (spec §4.7 "Return-value coercion").
func coerceReturnValue(raw any) ([]engine.Table, error) {
	switch v := raw.(type) {
	case nil:
		return []engine.Table{}, nil
	case engine.Table:
		return []engine.Table{v}, nil
	case []engine.Table:
		for i, t := range v {
			if t == nil {
				return nil, rerr.NewInvocationReturnError(fmt.Sprintf("result table %d is nil", i))
			}
		}
		return v, nil
	case int64:
		return []engine.Table{scalarTable{value: v}}, nil
	case int:
		return []engine.Table{scalarTable{value: int64(v)}}, nil
	default:
		return nil, rerr.NewReturnTypeError(fmt.Sprintf("%T", raw))
	}
}
