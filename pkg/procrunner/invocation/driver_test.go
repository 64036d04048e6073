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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eoneil1942/voltdb-4.7fix/pkg/procrunner/descriptor"
	"github.com/eoneil1942/voltdb-4.7fix/pkg/procrunner/engine"
	"github.com/eoneil1942/voltdb-4.7fix/pkg/procrunner/rerr"
	"github.com/eoneil1942/voltdb-4.7fix/pkg/procrunner/sqltype"
)

func TestDriverCallSuccessAssemblesEnvelope(t *testing.T) {
	site := &fakeSite{}
	s := newTestSession(site)
	s.Procedure.Impl = ProcedureImpl{
		Language: LangNative,
		Native: func(ctx context.Context, s *Session, args []any) (any, error) {
			return int64(42), nil
		},
	}

	stats := &fakeStats{}
	d := &Driver{Stats: stats}
	resp := d.Call(context.Background(), s, fakeTxn{txnID: 1, uniqueID: 5}, nil, nil)

	require.Equal(t, rerr.StatusSuccess, resp.Status)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, int64(42), resp.Results[0].(scalarTable).Value())
	require.Len(t, stats.calls, 1)
	assert.True(t, stats.calls[0].succeeded)
	assert.Equal(t, "TestProcedure", stats.calls[0].proc)
}

func TestDriverCallCoercionFailureIsGracefulFailure(t *testing.T) {
	site := &fakeSite{}
	s := newTestSession(site)
	s.Procedure.ParamTypes = []sqltype.Code{sqltype.Bigint}
	s.Procedure.Impl = ProcedureImpl{
		Language: LangNative,
		Native: func(ctx context.Context, s *Session, args []any) (any, error) {
			t.Fatal("user code must not run when coercion fails")
			return nil, nil
		},
	}

	d := &Driver{}
	resp := d.Call(context.Background(), s, fakeTxn{txnID: 1}, nil, nil)
	assert.Equal(t, rerr.StatusGracefulFailure, resp.Status)
}

func TestDriverCallUserAbortIsClassified(t *testing.T) {
	site := &fakeSite{}
	s := newTestSession(site)
	s.Procedure.Impl = ProcedureImpl{
		Language: LangNative,
		Native: func(ctx context.Context, s *Session, args []any) (any, error) {
			return nil, rerr.NewUserAbort("caller asked for a rollback")
		},
	}

	d := &Driver{}
	resp := d.Call(context.Background(), s, fakeTxn{txnID: 1}, nil, nil)
	assert.Equal(t, rerr.StatusUserAbort, resp.Status)
	assert.Contains(t, resp.StatusString, "USER ABORT")
}

func TestDriverCallSysprocInjectsContextBeforeCoercion(t *testing.T) {
	site := &fakeSite{}
	s := newTestSession(site)
	s.Procedure.IsSystemProcedure = true
	s.Procedure.ParamTypes = []sqltype.Code{sqltype.String, sqltype.Bigint}
	var seenArgs []any
	s.Procedure.Impl = ProcedureImpl{
		Language: LangNative,
		Native: func(ctx context.Context, s *Session, args []any) (any, error) {
			seenArgs = args
			return nil, nil
		},
	}

	d := &Driver{}
	resp := d.Call(context.Background(), s, fakeTxn{txnID: 1}, "sysproc-ctx", []any{int64(9)})
	require.Equal(t, rerr.StatusSuccess, resp.Status)
	require.Len(t, seenArgs, 2)
	assert.Equal(t, "sysproc-ctx", seenArgs[0])
	assert.Equal(t, int64(9), seenArgs[1])
}

func TestDriverCallSingleStatementFlushesAsFinalBatch(t *testing.T) {
	site := &fakeSite{}
	s := newTestSession(site)
	sd := descriptor.Install("SELECT 1", descriptor.Fragment{ID: 1}, nil, nil, true, false)
	s.Procedure.Impl = ProcedureImpl{
		Language:        LangSingleStatement,
		SingleStatement: sd,
	}

	d := &Driver{}
	resp := d.Call(context.Background(), s, fakeTxn{txnID: 1}, nil, nil)
	require.Equal(t, rerr.StatusSuccess, resp.Status)
	assert.True(t, s.Executor.SeenFinalBatch())
}

func TestDriverCallTeardownResetsSessionState(t *testing.T) {
	site := &fakeSite{}
	s := newTestSession(site)
	s.Procedure.Impl = ProcedureImpl{
		Language: LangNative,
		Native: func(ctx context.Context, s *Session, args []any) (any, error) {
			s.SetAppStatusCode(3)
			return nil, nil
		},
	}

	d := &Driver{}
	_ = d.Call(context.Background(), s, fakeTxn{txnID: 1}, nil, nil)

	assert.Nil(t, s.txn)
	assert.False(t, s.appStatusSet)
	assert.Zero(t, s.pending.Len())
	assert.Equal(t, "", site.published[len(site.published)-1])
}

func TestDriverCallReplicatedReplayConvertsResultsToHash(t *testing.T) {
	site := &fakeSite{}
	s := newTestSession(site)
	s.Procedure.Impl = ProcedureImpl{
		Language: LangNative,
		Native: func(ctx context.Context, s *Session, args []any) (any, error) {
			return []engine.Table{fakeTable{rows: 3}}, nil
		},
	}

	d := &Driver{}
	resp := d.Call(context.Background(), s, fakeTxn{txnID: 1, replicated: true}, nil, nil)
	require.Equal(t, rerr.StatusSuccess, resp.Status)
	assert.Nil(t, resp.Results, "a replicated replay must not carry the raw result tables")
	require.NotNil(t, resp.ReplicatedHash)
}

func TestDriverCallAttachesDeterminismHashOnlyWhenTouched(t *testing.T) {
	site := &fakeSite{}
	s := newTestSession(site)
	s.Procedure.Impl = ProcedureImpl{
		Language: LangNative,
		Native: func(ctx context.Context, s *Session, args []any) (any, error) {
			return nil, nil
		},
	}

	d := &Driver{}
	resp := d.Call(context.Background(), s, fakeTxn{txnID: 1}, nil, nil)
	assert.Nil(t, resp.Hash, "an invocation that queued no writes must not publish a hash")
}

func TestDriverCallUsesClockForElapsedTime(t *testing.T) {
	site := &fakeSite{}
	s := newTestSession(site)
	s.Procedure.Impl = ProcedureImpl{
		Language: LangNative,
		Native: func(ctx context.Context, s *Session, args []any) (any, error) {
			return nil, nil
		},
	}

	clock := &fakeClock{}
	stats := &fakeStats{}
	d := &Driver{Clock: clock, Stats: stats}
	_ = d.Call(context.Background(), s, fakeTxn{txnID: 1}, nil, nil)

	require.Len(t, stats.calls, 1)
	assert.Greater(t, stats.calls[0].micros, int64(-1))
}

func TestDriverCallReturnTypeErrorIsClassified(t *testing.T) {
	site := &fakeSite{}
	s := newTestSession(site)
	s.Procedure.Impl = ProcedureImpl{
		Language: LangNative,
		Native: func(ctx context.Context, s *Session, args []any) (any, error) {
			return struct{}{}, nil
		},
	}

	d := &Driver{}
	resp := d.Call(context.Background(), s, fakeTxn{txnID: 1}, nil, nil)
	assert.Equal(t, rerr.StatusUnexpectedFailure, resp.Status)
}

func TestDriverCallInvocationReturnErrorFromNilTableElement(t *testing.T) {
	site := &fakeSite{}
	s := newTestSession(site)
	s.Procedure.Impl = ProcedureImpl{
		Language: LangNative,
		Native: func(ctx context.Context, s *Session, args []any) (any, error) {
			return []engine.Table{nil}, nil
		},
	}

	d := &Driver{}
	resp := d.Call(context.Background(), s, fakeTxn{txnID: 1}, nil, nil)
	assert.Equal(t, rerr.StatusUnexpectedFailure, resp.Status)
	assert.Contains(t, resp.StatusString, "result table 0 is nil")
}
