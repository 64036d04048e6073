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

package sqltype

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// EncodeSet canonically serializes a coerced parameter set to bytes,
// little-endian throughout (spec §6 "Determinism hash"). Two replicas
// that coerce the same logical values to the same types produce
// byte-identical output, which is the entire point: this buffer feeds
// both the determinism CRC and the dispatch wire call.
func EncodeSet(types []Code, values []any) ([]byte, error) {
	if len(types) != len(values) {
		return nil, fmt.Errorf("sqltype: %d types but %d values", len(types), len(values))
	}
	var buf bytes.Buffer
	for i, t := range types {
		if err := encodeOne(&buf, t, values[i]); err != nil {
			return nil, fmt.Errorf("sqltype: parameter %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}

// DecodeSet is EncodeSet's inverse, used by the round-trip tests and
// by any consumer that needs to inspect a serialized parameter buffer
// (e.g. a replay tool) without a live invocation.
func DecodeSet(types []Code, data []byte) ([]any, error) {
	r := bytes.NewReader(data)
	values := make([]any, len(types))
	for i, t := range types {
		v, err := decodeOne(r, t)
		if err != nil {
			return nil, fmt.Errorf("sqltype: parameter %d: %w", i, err)
		}
		values[i] = v
	}
	return values, nil
}

func encodeOne(buf *bytes.Buffer, t Code, v any) error {
	switch t {
	case Tinyint:
		i, ok := v.(int8)
		if !ok {
			return fmt.Errorf("want int8, got %T", v)
		}
		return binary.Write(buf, binary.LittleEndian, i)
	case Smallint:
		i, ok := v.(int16)
		if !ok {
			return fmt.Errorf("want int16, got %T", v)
		}
		return binary.Write(buf, binary.LittleEndian, i)
	case Integer:
		i, ok := v.(int32)
		if !ok {
			return fmt.Errorf("want int32, got %T", v)
		}
		return binary.Write(buf, binary.LittleEndian, i)
	case Bigint, Timestamp:
		i, ok := v.(int64)
		if !ok {
			return fmt.Errorf("want int64, got %T", v)
		}
		return binary.Write(buf, binary.LittleEndian, i)
	case Float:
		f, ok := v.(float64)
		if !ok {
			return fmt.Errorf("want float64, got %T", v)
		}
		return binary.Write(buf, binary.LittleEndian, math.Float64bits(f))
	case String, Varbinary, Decimal:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("want string, got %T", v)
		}
		if err := binary.Write(buf, binary.LittleEndian, int32(len(s))); err != nil {
			return err
		}
		_, err := buf.WriteString(s)
		return err
	default:
		return fmt.Errorf("unsupported type code %v", t)
	}
}

func decodeOne(r *bytes.Reader, t Code) (any, error) {
	switch t {
	case Tinyint:
		var i int8
		err := binary.Read(r, binary.LittleEndian, &i)
		return i, err
	case Smallint:
		var i int16
		err := binary.Read(r, binary.LittleEndian, &i)
		return i, err
	case Integer:
		var i int32
		err := binary.Read(r, binary.LittleEndian, &i)
		return i, err
	case Bigint, Timestamp:
		var i int64
		err := binary.Read(r, binary.LittleEndian, &i)
		return i, err
	case Float:
		var bits uint64
		if err := binary.Read(r, binary.LittleEndian, &bits); err != nil {
			return nil, err
		}
		return math.Float64frombits(bits), nil
	case String, Varbinary, Decimal:
		var n int32
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return nil, err
		}
		b := make([]byte, n)
		if _, err := io.ReadFull(r, b); err != nil {
			return nil, err
		}
		return string(b), nil
	default:
		return nil, fmt.Errorf("unsupported type code %v", t)
	}
}
