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

// Package rerr is the runner's closed error taxonomy. It is modeled
// on matrixone's pkg/common/moerr: a small numeric code, a
// constructor per taxonomy entry, and an IsCode helper for callers
// that need to branch on a specific failure rather than just log it.
//
// Unlike moerr, this package does not carry a MySQL error-code/sqlstate
// table — the runner never talks wire protocol, it only returns a
// Code and a message to the invocation driver for envelope assembly.
package rerr

import "fmt"

// Code is one entry of the closed taxonomy in spec §7.
type Code uint16

const (
	_ Code = iota

	// Usage errors: raised by the runner itself while coercing,
	// queueing, executing, checking expectations, or converting a
	// procedure's return value.
	NullStatement
	ArityMismatch
	TypeErrorCode
	UnknownTypeForNull
	PlannerError
	DmlFromReadOnly
	ExtractedParamsConflict
	DoubleFinalBatch
	ExpectationMismatch
	InvocationReturnError
	ReturnTypeError

	// Classifier outcomes: discovered after user code or the engine
	// has run.
	UserAbort
	ConstraintViolation
	SqlError
	Interrupt
	ExpectedProcedureError
	TransactionRestart
	UnexpectedFailure
	FatalToServer
)

var codeNames = map[Code]string{
	NullStatement:           "NullStatement",
	ArityMismatch:           "ArityMismatch",
	TypeErrorCode:           "TypeError",
	UnknownTypeForNull:      "UnknownTypeForNull",
	PlannerError:            "PlannerError",
	DmlFromReadOnly:         "DmlFromReadOnly",
	ExtractedParamsConflict: "ExtractedParamsConflict",
	DoubleFinalBatch:        "DoubleFinalBatch",
	ExpectationMismatch:     "ExpectationMismatch",
	InvocationReturnError:   "InvocationReturnError",
	ReturnTypeError:         "ReturnTypeError",
	UserAbort:               "UserAbort",
	ConstraintViolation:     "ConstraintViolation",
	SqlError:                "SqlError",
	Interrupt:               "Interrupt",
	ExpectedProcedureError:  "ExpectedProcedureError",
	TransactionRestart:      "TransactionRestart",
	UnexpectedFailure:       "UnexpectedFailure",
	FatalToServer:           "FatalToServer",
}

func (c Code) String() string {
	if n, ok := codeNames[c]; ok {
		return n
	}
	return "UnknownCode"
}

// Error is the runner's single error type. It never wraps a stack
// trace itself — stack filtering is the classifier's job at response
// assembly time (§4.9) — so it stays cheap to construct from deep
// inside parameter coercion or queueing.
type Error struct {
	code    Code
	message string
	detail  string
}

func (e *Error) Error() string { return e.message }

// Code returns the taxonomy entry this error belongs to.
func (e *Error) Code() Code { return e.code }

// Detail is optional extra context; Error() does not include it. Only
// NewExpectedProcedureError sets it (to the cause's message), and
// Classify reports it in place of the message when present.
func (e *Error) Detail() string { return e.detail }

func newError(code Code, format string, args ...any) *Error {
	return &Error{code: code, message: fmt.Sprintf(format, args...)}
}

// IsCode reports whether err is an *Error of the given code.
func IsCode(err error, code Code) bool {
	if err == nil {
		return false
	}
	e, ok := err.(*Error)
	return ok && e.code == code
}

func NewNullStatement() *Error {
	return newError(NullStatement, "statement descriptor is null")
}

func NewArityMismatch(expected, received int) *Error {
	return newError(ArityMismatch, "EXPECTS %d PARAMS, BUT RECEIVED %d", expected, received)
}

func NewTypeError(index int, wantType, gotValue string) *Error {
	return newError(TypeErrorCode, "TYPE ERROR FOR PARAMETER %d: COULD NOT COERCE %s TO TYPE %s", index, gotValue, wantType)
}

func NewUnknownTypeForNull(index int, typeCode int) *Error {
	return newError(UnknownTypeForNull, "CANNOT PRODUCE A NULL VALUE FOR PARAMETER %d OF UNKNOWN TYPE %d", index, typeCode)
}

func NewPlannerError(msg string) *Error {
	return newError(PlannerError, "%s", msg)
}

func NewDmlFromReadOnly() *Error {
	return newError(DmlFromReadOnly, "dml statement issued from read-only procedure")
}

func NewExtractedParamsConflict(extracted, supplied int) *Error {
	return newError(ExtractedParamsConflict, "planner extracted %d constant(s) from the SQL text but caller also supplied %d argument(s)", extracted, supplied)
}

func NewDoubleFinalBatch() *Error {
	return newError(DoubleFinalBatch, "final batch has already been executed for this invocation")
}

func NewExpectationMismatch(index int, expectation string, gotRows int) *Error {
	return newError(ExpectationMismatch, "statement %d failed expectation %q: got %d row(s)", index, expectation, gotRows)
}

func NewInvocationReturnError(msg string) *Error {
	return newError(InvocationReturnError, "%s", msg)
}

func NewReturnTypeError(gotType string) *Error {
	return newError(ReturnTypeError, "procedure returned unsupported type %s", gotType)
}

func NewUserAbort(msg string) *Error {
	return newError(UserAbort, "%s", msg)
}

func NewConstraintViolation(msg string) *Error {
	return newError(ConstraintViolation, "%s", msg)
}

func NewSqlError(msg string) *Error {
	return newError(SqlError, "%s", msg)
}

func NewInterrupt() *Error {
	return newError(Interrupt, "transaction was interrupted")
}

// NewExpectedProcedureError wraps a failure from the HSQL-backend
// comparison test mode. When cause is non-nil, the classifier unwraps
// it and reports the cause's message instead of msg.
func NewExpectedProcedureError(msg string, cause error) *Error {
	e := newError(ExpectedProcedureError, "%s", msg)
	if cause != nil {
		e.detail = cause.Error()
	}
	return e
}

func NewTransactionRestart(msg string) *Error {
	return newError(TransactionRestart, "%s", msg)
}

func NewUnexpectedFailure(msg string) *Error {
	return newError(UnexpectedFailure, "%s", msg)
}

func NewFatalToServer(msg string) *Error {
	return newError(FatalToServer, "%s", msg)
}
