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

// Package runnerconfig holds the handful of tunables the runner needs
// that, on the real engine, must match a compiled-in constant on the
// other side of the wire protocol. Loading them from TOML lets a site
// override them for testing without recompiling; the defaults are the
// ones spec'd for production.
package runnerconfig

import (
	"github.com/BurntSushi/toml"
)

// Tunables are the runner's configuration knobs. Defaults() returns
// the production values; LoadFile only overrides fields present in
// the file.
type Tunables struct {
	// MaxBatchSize bounds the number of queued statements dispatched
	// in a single fast/slow path call. Must match the engine-side
	// constant of the same name.
	MaxBatchSize int `toml:"max_batch_size"`

	// AggDepID is the reserved dependency-ID value the engine treats
	// specially; the runner must never allocate it as a fresh
	// dependency ID.
	AggDepID int32 `toml:"agg_dep_id"`

	// MultipartitionFlag is OR'd into the high bit of a 32-bit
	// dependency ID to mark it as a multipartition dependency.
	MultipartitionFlag int32 `toml:"multipartition_flag"`
}

// Defaults returns the production tunables from spec §6.
func Defaults() Tunables {
	return Tunables{
		MaxBatchSize:       200,
		AggDepID:           1,
		MultipartitionFlag: -1 << 31,
	}
}

// LoadFile reads a TOML file and overlays it onto Defaults(). An
// empty path is not an error: it just returns the defaults. A path
// naming a file that cannot be read or decoded returns an error.
func LoadFile(path string) (Tunables, error) {
	t := Defaults()
	if path == "" {
		return t, nil
	}
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return Tunables{}, err
	}
	return t, nil
}
