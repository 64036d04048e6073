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
	"context"

	"github.com/eoneil1942/voltdb-4.7fix/pkg/procrunner/descriptor"
	"github.com/eoneil1942/voltdb-4.7fix/pkg/procrunner/queue"
	"github.com/eoneil1942/voltdb-4.7fix/pkg/procrunner/sqltype"
)

// Language distinguishes the three ways user code can be invoked
// (spec §4.7 step 4, §9 "Language dispatch via visitor").
type Language int

const (
	LangNative Language = iota
	LangScripted
	LangSingleStatement
)

// NativeEntryPoint is a cataloged procedure's compiled entry point,
// registered explicitly at install time instead of discovered by
// reflection (spec §9 "Reflective entry-point discovery" redesign
// flag). It returns the raw value the caller returned from run(...),
// which coerceReturnValue then normalizes to result tables.
type NativeEntryPoint func(ctx context.Context, s *Session, args []any) (any, error)

// ScriptedEntryPoint is a hosted-script-dialect procedure's entry
// point (spec §4.7 step 4 "Scripted code").
type ScriptedEntryPoint interface {
	Invoke(ctx context.Context, s *Session, args []any) (any, error)
}

// ProcedureImpl is the tagged variant the design notes call for (§9
// "a tagged-variant ProcedureImpl{ Native(fn,types) | Scripted(handle) }")
// in place of runtime polymorphism over a base procedure class.
// Exactly one of Native/Scripted/SingleStatement's fields is set,
// selected by Language.
type ProcedureImpl struct {
	Language Language
	Native   NativeEntryPoint
	Scripted ScriptedEntryPoint

	// SingleStatement is populated only when Language ==
	// LangSingleStatement (spec §4.7 step 4 "Single-statement
	// procedure"): the cached queued statement's descriptor and
	// optional expectation, reused across every call instead of
	// rebuilt.
	SingleStatement            *descriptor.Descriptor
	SingleStatementExpectation *queue.Expectation
}

// Procedure is the installed, immutable metadata for one stored
// procedure (spec §3 "Invocation State" bullet 1).
type Procedure struct {
	Name                string
	SinglePartition     bool
	ReadOnly            bool
	IsSystemProcedure   bool
	PartitionColumn     int
	PartitionColumnType sqltype.Code
	ParamTypes          []sqltype.Code
	Impl                ProcedureImpl
}
