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

// Package dtrace is a low-volume, human-readable trace of fast/slow
// path dispatch decisions, separate from the structured rlog sink.
// It is off by default: enabling it is meant for a developer staring
// at a single site's log while debugging a dispatch choice, not for
// production ingestion, so it uses logrus's plain text formatter
// rather than zap's JSON encoder.
package dtrace

import (
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

var (
	enabled atomic.Bool
	once    sync.Once
	log     *logrus.Logger
)

func instance() *logrus.Logger {
	once.Do(func() {
		log = logrus.New()
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	})
	return log
}

// Enable turns on dispatch tracing for this process.
func Enable() { enabled.Store(true); instance() }

// Disable turns off dispatch tracing.
func Disable() { enabled.Store(false) }

// Dispatch logs a fast/slow path dispatch decision. No-op unless
// tracing is enabled, so callers do not need to guard the call site.
func Dispatch(procedure string, path string, batchIndex int32, size int) {
	if !enabled.Load() {
		return
	}
	instance().WithFields(logrus.Fields{
		"procedure":  procedure,
		"path":       path,
		"batchIndex": batchIndex,
		"size":       size,
	}).Debug("dispatch sub-batch")
}
