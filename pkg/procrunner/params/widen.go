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

package params

import "github.com/eoneil1942/voltdb-4.7fix/pkg/procrunner/sqltype"

// WidenDeclaredTypes is an install-time rewrite of a single-statement
// procedure's declared parameter-type vector (spec §4.1 "Widening at
// compile-install time"): narrow integers promote to BIGINT and
// NUMERIC promotes to FLOAT. It is not a per-call coercion policy —
// call it once, at catalog load, and coerce against the result.
func WidenDeclaredTypes(declared []sqltype.Code) []sqltype.Code {
	widened := make([]sqltype.Code, len(declared))
	for i, t := range declared {
		widened[i] = sqltype.WidenDeclared(t)
	}
	return widened
}
