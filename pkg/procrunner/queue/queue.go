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

// Package queue holds a QueuedStatement (a Descriptor bound to one
// call's concrete parameters) and the ordered Pending queue the
// invocation driver drains through the batch executor.
package queue

import (
	"github.com/eoneil1942/voltdb-4.7fix/pkg/procrunner/descriptor"
)

// Statement is a Descriptor bound to a concrete parameter set for one
// queueing call. Params are exclusively owned; Descriptor is shared
// and never owned (spec §3 "Queued Statement").
type Statement struct {
	Descriptor  *descriptor.Descriptor
	Params      []any
	Expectation *Expectation

	// SerializedParams is populated the first time this statement's
	// parameters are serialized — for a write statement that happens
	// during determinism accumulation, and the buffer is then reused
	// for wire dispatch instead of serializing twice (spec §4.2, §4.5,
	// §4.6 "reuse memoized if present").
	SerializedParams []byte
}

// Pending is the ordered queue of statements accumulated during one
// invocation, drained by the batch executor.
type Pending struct {
	stmts []*Statement
}

// Append adds s to the end of the pending queue.
func (p *Pending) Append(s *Statement) {
	p.stmts = append(p.stmts, s)
}

// Len returns the number of statements currently pending.
func (p *Pending) Len() int { return len(p.stmts) }

// DrainPrefix removes and returns the first min(n, Len()) statements,
// in queueing order. This is the Go-idiomatic replacement for the
// source's mutating list view (spec §9 design note "Sub-batch views
// into the larger queue"): the caller gets an owned, independent
// slice instead of a window into shared backing storage.
func (p *Pending) DrainPrefix(n int) []*Statement {
	if n > len(p.stmts) {
		n = len(p.stmts)
	}
	prefix := make([]*Statement, n)
	copy(prefix, p.stmts[:n])
	p.stmts = p.stmts[n:]
	return prefix
}

// Clear empties the queue unconditionally, used by the batch executor
// on both success and failure exit, and by invocation teardown.
func (p *Pending) Clear() {
	p.stmts = nil
}
