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

package rerr

import (
	"fmt"
	"runtime"
	"strings"
)

// Status is the closed client-visible status set a ClientResponse may
// carry (spec §4.9).
type Status byte

const (
	StatusSuccess Status = iota
	StatusUserAbort
	StatusGracefulFailure
	StatusUnexpectedFailure
	StatusTxnRestart
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "SUCCESS"
	case StatusUserAbort:
		return "USER_ABORT"
	case StatusGracefulFailure:
		return "GRACEFUL_FAILURE"
	case StatusUnexpectedFailure:
		return "UNEXPECTED_FAILURE"
	case StatusTxnRestart:
		return "TXN_RESTART"
	default:
		return "UNKNOWN"
	}
}

// Classified is the result of running an error through Classify: the
// status/app-status the ClientResponse envelope should carry, the
// formatted message, and the filtered stack trace.
type Classified struct {
	Status  Status
	Message string
	Stack   []string
}

// Classify maps an error surfaced from user code or the engine to one
// of the closed set of client-visible outcomes (spec §4.9 table). proc
// is the procedure name used both for message formatting and for stack
// frame filtering of the "expected" rows.
func Classify(err error, proc string) Classified {
	e, ok := err.(*Error)
	if !ok {
		return Classified{
			Status:  StatusUnexpectedFailure,
			Message: fmt.Sprintf("UNEXPECTED FAILURE: %s", err.Error()),
			Stack:   fullStack(),
		}
	}

	switch e.code {
	case UserAbort:
		return Classified{StatusUserAbort, fmt.Sprintf("USER ABORT: %s", e.message), filteredStack(proc)}
	case ConstraintViolation:
		return Classified{StatusGracefulFailure, fmt.Sprintf("CONSTRAINT VIOLATION: %s", e.message), filteredStack(proc)}
	case SqlError:
		return Classified{StatusGracefulFailure, fmt.Sprintf("SQL ERROR: %s", e.message), filteredStack(proc)}
	case Interrupt:
		return Classified{StatusGracefulFailure, fmt.Sprintf("Transaction Interrupted: %s", e.message), filteredStack(proc)}
	case ExpectedProcedureError:
		// Unwrap one layer: the original replaces the exception with
		// its cause, if any, before formatting the HSQL-backend
		// comparison failure. Status is left at UNEXPECTED_FAILURE,
		// same as the original - this branch never assigns anything
		// else.
		msg := e.message
		if e.detail != "" {
			msg = e.detail
		}
		return Classified{StatusUnexpectedFailure, fmt.Sprintf("HSQL-BACKEND ERROR: %s", msg), filteredStack(proc)}
	case TransactionRestart:
		return Classified{StatusTxnRestart, fmt.Sprintf("TRANSACTION RESTART: %s", e.message), filteredStack(proc)}
	default:
		// Only the three coercion errors are GRACEFUL_FAILURE (handled
		// on the driver's step-3 coercion path). Everything else -
		// DoubleFinalBatch, ExpectationMismatch, NullStatement,
		// PlannerError, DmlFromReadOnly, ExtractedParamsConflict,
		// InvocationReturnError, ReturnTypeError, and anything
		// unrecognized - defaults to UNEXPECTED_FAILURE.
		if isCoercionError(e.code) {
			return Classified{StatusGracefulFailure, e.message, filteredStack(proc)}
		}
		return Classified{StatusUnexpectedFailure, fmt.Sprintf("UNEXPECTED FAILURE: %s", e.message), fullStack()}
	}
}

func isCoercionError(c Code) bool {
	switch c {
	case ArityMismatch, TypeErrorCode, UnknownTypeForNull:
		return true
	}
	return false
}

// filteredStack keeps only frames whose declaring symbol equals proc
// or begins with "proc" followed by a Go inner-type delimiter ('.').
func filteredStack(proc string) []string {
	frames := fullStack()
	if proc == "" {
		return frames
	}
	out := make([]string, 0, len(frames))
	prefix := proc + "."
	for _, f := range frames {
		if f == proc || strings.HasPrefix(f, prefix) {
			out = append(out, f)
		}
	}
	return out
}

func fullStack() []string {
	pcs := make([]uintptr, 64)
	n := runtime.Callers(4, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	var out []string
	for {
		f, more := frames.Next()
		out = append(out, f.Function)
		if !more {
			break
		}
	}
	return out
}
