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

// Package rlog is the structured logger shared by every procrunner
// component. It wraps a single global zap.Logger the way a site
// process wraps its logging sink: callers never construct a logger,
// they just call the package-level helpers.
package rlog

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

var (
	globalMu     sync.Mutex
	globalLogger atomic.Value // *zap.Logger
)

func init() {
	l, _ := zap.NewProduction()
	globalLogger.Store(l)
}

// SetLogger replaces the global logger. Call once at process start;
// tests use it to install an observed logger.
func SetLogger(l *zap.Logger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger.Store(l)
}

func logger() *zap.Logger {
	return globalLogger.Load().(*zap.Logger)
}

type ctxKey struct{}

// WithFields attaches fields to ctx so every subsequent call in this
// invocation carries them (procedure name, txn id) without threading
// them through every function signature.
func WithFields(ctx context.Context, fields ...zap.Field) context.Context {
	existing, _ := ctx.Value(ctxKey{}).([]zap.Field)
	merged := append(append([]zap.Field{}, existing...), fields...)
	return context.WithValue(ctx, ctxKey{}, merged)
}

func ctxFields(ctx context.Context) []zap.Field {
	fields, _ := ctx.Value(ctxKey{}).([]zap.Field)
	return fields
}

func Debug(ctx context.Context, msg string, fields ...zap.Field) {
	logger().WithOptions(zap.AddCallerSkip(1)).Debug(msg, append(ctxFields(ctx), fields...)...)
}

func Info(ctx context.Context, msg string, fields ...zap.Field) {
	logger().WithOptions(zap.AddCallerSkip(1)).Info(msg, append(ctxFields(ctx), fields...)...)
}

func Warn(ctx context.Context, msg string, fields ...zap.Field) {
	logger().WithOptions(zap.AddCallerSkip(1)).Warn(msg, append(ctxFields(ctx), fields...)...)
}

func Error(ctx context.Context, msg string, fields ...zap.Field) {
	logger().WithOptions(zap.AddCallerSkip(1)).Error(msg, append(ctxFields(ctx), fields...)...)
}
