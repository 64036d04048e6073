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
	"hash/crc32"

	"github.com/eoneil1942/voltdb-4.7fix/pkg/procrunner/engine"
	"github.com/eoneil1942/voltdb-4.7fix/pkg/procrunner/rerr"
)

// ClientResponse is the result envelope returned exactly once per
// call, unless the site crashes (spec §6 "Result envelope", §8
// invariant 1).
type ClientResponse struct {
	Status        rerr.Status
	StatusString  string
	AppStatusCode byte
	AppStatusSet  bool
	AppStatusMsg  string
	Results       []engine.Table

	// Hash is the determinism hash (spec §4.2 "Publication"), present
	// only for a successful call that touched at least one write
	// statement and whose CRC is nonzero.
	Hash *int32

	// ReplicatedHash replaces Results on a replicated replay: the
	// caller compares hashes instead of full result tables (spec
	// §4.2 "Publication").
	ReplicatedHash *uint32
}

// hashResultTables re-hashes the result set for a replicated replay
// comparison (spec §4.2 "the result tables are re-hashed and the hash
// replaces the result payload"). It hashes each table's row count in
// order — the runner has no visibility into row content, only the
// count each Table exposes — which is sufficient to catch a
// non-deterministic table shape without requiring the runner to
// understand table encoding.
func hashResultTables(tables []engine.Table) uint32 {
	h := crc32.NewIEEE()
	for _, t := range tables {
		n := t.RowCount()
		h.Write([]byte{byte(n), byte(n >> 8), byte(n >> 16), byte(n >> 24)})
	}
	return h.Sum32()
}
