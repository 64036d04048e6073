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
	"time"

	"github.com/eoneil1942/voltdb-4.7fix/internal/rlog"
	"github.com/eoneil1942/voltdb-4.7fix/pkg/procrunner/engine"
	"github.com/eoneil1942/voltdb-4.7fix/pkg/procrunner/params"
	"github.com/eoneil1942/voltdb-4.7fix/pkg/procrunner/queue"
	"github.com/eoneil1942/voltdb-4.7fix/pkg/procrunner/rerr"
	"go.uber.org/zap"
)

// Clock supplies the current time, standing in for the original's
// m_startTime bookkeeping (SPEC_FULL.md "Supplemented Features").
// Driver.Call uses it only to log elapsed wall time at teardown and to
// pass that time to the StatsSink, never to influence the call's
// outcome, so a Session can be replayed
// byte-for-byte deterministically regardless of which Clock is wired.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Driver runs the invocation state machine of spec §4.7 over a
// Session: reset, inject, coerce, invoke, classify, assemble, and
// always tear down.
type Driver struct {
	Clock Clock
	Stats engine.StatsSink // nil disables stats recording
}

// Call runs exactly one invocation of s.Procedure against txn and
// args, returning the response envelope every path — success or
// failure — assembles from (spec §8 invariant 1: "exactly one
// ClientResponse per call").
//
// sysprocContext is non-nil only when s.Procedure.IsSystemProcedure;
// it is prepended to args before coercion (spec §4.1 "System-procedure
// injection").
func (d *Driver) Call(ctx context.Context, s *Session, txn engine.TxnHandle, sysprocContext any, args []any) *ClientResponse {
	clock := d.Clock
	if clock == nil {
		clock = systemClock{}
	}
	start := clock.Now()

	// 1. Reset.
	ctx = rlog.WithFields(ctx, zap.String("procedure", s.Procedure.Name), zap.Int64("txn", txn.TxnID()))
	s.reset(ctx, txn)

	resp := d.run(ctx, s, sysprocContext, args)

	// 7. Teardown (always).
	elapsed := clock.Now().Sub(start)
	if d.Stats != nil {
		d.Stats.RecordInvocation(s.Procedure.Name, resp.Status == rerr.StatusSuccess, elapsed.Microseconds())
	}
	rlog.Debug(ctx, "invocation complete", zap.Stringer("status", resp.Status), zap.Duration("elapsed", elapsed))
	s.teardown()

	return resp
}

// run performs steps 2-6; it never panics on a classifiable failure,
// only on a FatalToServer condition, which it lets propagate after
// recording a failed-invocation stat (spec §4.7 step 5 "On
// fatal-to-server conditions, end stats with failure, then rethrow to
// crash the site").
func (d *Driver) run(ctx context.Context, s *Session, sysprocContext any, args []any) (resp *ClientResponse) {
	defer func() {
		if r := recover(); r != nil {
			if fatal, ok := r.(*rerr.Error); ok && fatal.Code() == rerr.FatalToServer {
				if d.Stats != nil {
					d.Stats.RecordInvocation(s.Procedure.Name, false, 0)
				}
				panic(r)
			}
			resp = d.classify(ctx, s, toError(r))
		}
	}()

	// 2. Inject + 3. Coerce.
	coerced, err := d.coerceArgs(s, sysprocContext, args)
	if err != nil {
		return d.classify(ctx, s, err)
	}

	// 4. Invoke user code.
	raw, err := d.invoke(ctx, s, coerced)
	if err != nil {
		return d.classify(ctx, s, err)
	}

	tables, err := coerceReturnValue(raw)
	if err != nil {
		return d.classify(ctx, s, err)
	}

	// 6. Assemble response (success path).
	return d.assemble(s, tables)
}

func toError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return rerr.NewUnexpectedFailure("panic in procedure code")
}

func (d *Driver) coerceArgs(s *Session, sysprocContext any, args []any) ([]any, error) {
	if s.Procedure.IsSystemProcedure {
		return params.CoerceSysproc(s.Procedure.ParamTypes, sysprocContext, args)
	}
	return params.Coerce(s.Procedure.ParamTypes, args)
}

// invoke dispatches to exactly one of the three ways user code runs
// (spec §4.7 step 4), selected by the tagged ProcedureImpl instead of
// reflective entry-point discovery (§9 redesign flag).
func (d *Driver) invoke(ctx context.Context, s *Session, args []any) (any, error) {
	impl := s.Procedure.Impl
	switch impl.Language {
	case LangNative:
		return impl.Native(ctx, s, args)
	case LangScripted:
		return impl.Scripted.Invoke(ctx, s, args)
	case LangSingleStatement:
		return d.invokeSingleStatement(ctx, s, impl, args)
	default:
		return nil, rerr.NewUnexpectedFailure("procedure has no registered entry point")
	}
}

// invokeSingleStatement fills the cached queued statement with the
// call's coerced parameters and flushes it as the invocation's one
// and only final batch (spec §4.7 step 4 "Single-statement
// procedure").
func (d *Driver) invokeSingleStatement(ctx context.Context, s *Session, impl ProcedureImpl, args []any) (any, error) {
	if err := s.queueDescriptor(ctx, impl.SingleStatement, impl.SingleStatementExpectation, args); err != nil {
		return nil, err
	}
	tables, err := s.ExecuteSQL(ctx, true)
	if err != nil {
		return nil, err
	}
	return []engine.Table(tables), nil
}

// classify turns a driver or user-code failure into the response
// envelope (spec §4.7 step 5, §4.9).
func (d *Driver) classify(ctx context.Context, s *Session, err error) *ClientResponse {
	c := rerr.Classify(err, s.Procedure.Name)
	rlog.Warn(ctx, "invocation failed", zap.Stringer("status", c.Status), zap.String("message", c.Message), zap.Strings("stack", c.Stack))
	return &ClientResponse{
		Status:        c.Status,
		StatusString:  c.Message,
		AppStatusCode: s.appStatusCode,
		AppStatusSet:  s.appStatusSet,
		AppStatusMsg:  s.appStatusMsg,
		Results:       []engine.Table{},
	}
}

// assemble builds the success-path envelope (spec §4.7 step 6): attach
// the determinism hash if the invocation touched at least one write
// statement and the CRC is nonzero, and on a replicated replay convert the result tables to
// hash form for comparison instead of returning them (spec §4.2
// "Publication").
func (d *Driver) assemble(s *Session, tables []engine.Table) *ClientResponse {
	resp := &ClientResponse{
		Status:        rerr.StatusSuccess,
		StatusString:  "SUCCESS",
		AppStatusCode: s.appStatusCode,
		AppStatusSet:  s.appStatusSet,
		AppStatusMsg:  s.appStatusMsg,
		Results:       tables,
	}
	if s.determinism.Touched() && s.determinism.Sum() != 0 {
		h := int32(s.determinism.Sum())
		resp.Hash = &h
	}
	if s.txn.Replicated() {
		hv := hashResultTables(tables)
		resp.ReplicatedHash = &hv
		resp.Results = nil
	}
	return resp
}

// reset implements spec §4.7 step 1: it clears the Session's own
// fields, resets batchIndex/seenFinalBatch/depAlloc through
// Executor.Reset, installs txn on the site and publishes the
// procedure name.
func (s *Session) reset(ctx context.Context, txn engine.TxnHandle) {
	s.txn = txn
	s.pending = queue.Pending{}
	s.determinism.Reset()
	s.rng = nil
	s.appStatusCode = 0
	s.appStatusSet = false
	s.appStatusMsg = ""
	s.Executor.Reset()
	s.Site.SetupTransaction(ctx, txn)
	s.Site.SetProcedureName(s.Procedure.Name)
}

// teardown implements spec §4.7 step 7.
func (s *Session) teardown() {
	s.pending.Clear()
	s.txn = nil
	s.rng = nil
	s.appStatusCode = 0
	s.appStatusSet = false
	s.appStatusMsg = ""
	s.Site.SetProcedureName("")
}
