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

package batch

import "github.com/google/btree"

// depSlot maps a pending dependency ID to its position in the
// sub-batch's result array. depstore exists so a stuck recursableRun
// wait can be diagnosed (spec §5 "Suspension points") by walking the
// outstanding dependency IDs in order, rather than scanning an
// unordered slice.
type depSlot struct {
	depID int32
	index int
}

func (d depSlot) Less(than btree.Item) bool {
	return d.depID < than.(depSlot).depID
}

// depstore is an ordered map from dependency ID to result-array
// index, live only for the duration of one slow-path dispatch.
type depstore struct {
	tree *btree.BTree
}

func newDepstore() *depstore {
	return &depstore{tree: btree.New(8)}
}

func (s *depstore) put(depID int32, index int) {
	s.tree.ReplaceOrInsert(depSlot{depID: depID, index: index})
}

func (s *depstore) indexOf(depID int32) (int, bool) {
	item := s.tree.Get(depSlot{depID: depID})
	if item == nil {
		return 0, false
	}
	return item.(depSlot).index, true
}

// outstanding returns every dependency ID still in the store, in
// ascending order, for diagnostic logging.
func (s *depstore) outstanding() []int32 {
	out := make([]int32, 0, s.tree.Len())
	s.tree.Ascend(func(item btree.Item) bool {
		out = append(out, item.(depSlot).depID)
		return true
	})
	return out
}
