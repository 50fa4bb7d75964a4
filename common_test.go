// Copyright (c) Blue (Lukas Rieger) <https://bluecolored.de>
// SPDX-License-Identifier: MIT

package bluenbt

import (
	"bytes"
	"io"
	"math"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testDirection int

const (
	bothTest testDirection = iota
	encodeTest
	decodeTest
)

// singleByteReader is a really annoying io.Reader which returns a single
// byte at a time
type singleByteReader struct {
	R io.Reader
}

func (r *singleByteReader) Read(buf []byte) (int, error) {
	switch {
	case len(buf) == 0:
		return 0, nil
	default:
		return r.R.Read(buf[0:1])
	}
}

type testcase struct {
	// Name of this test case
	Name string

	// Which directions to run this test in (defaults to both)
	Direction testDirection

	// The object to marshal, or to use for comparison on unmarshalling
	Object any

	// The encoded representation of the object
	Bytes []byte

	// Error expected on en/decode (matched with errors.Is)
	EncErrorIs error
	DecErrorIs error

	// Engine override; defaults to a fresh NewEngine()
	Engine *Engine

	// Comparator to use (instead of default) after successful decoding
	DecodeComparator func(t *testing.T, expected, actual any)
}

func runTestcases(t *testing.T, tcs []testcase) {
	for i := range tcs {
		tc := &tcs[i]
		if tc.Engine == nil {
			tc.Engine = NewEngine()
		}
		if tc.DecodeComparator == nil {
			tc.DecodeComparator = func(t *testing.T, expected, actual any) {
				t.Helper()
				assert.Equal(t, expected, actual, "unmarshal output should match")
			}
		}
	}

	t.Parallel()

	for i := range tcs {
		tc := tcs[i]
		t.Run(tc.Name, func(t *testing.T) {
			t.Parallel()

			if tc.Direction != decodeTest {
				t.Run("Encode", func(t *testing.T) {
					t.Parallel()
					runEncode(t, &tc, tc.Object)
				})

				// pointers are transparent, so a pointer-to-object must
				// produce identical output
				t.Run("EncodePtr", func(t *testing.T) {
					t.Parallel()
					v := reflect.ValueOf(tc.Object)
					vp := reflect.New(v.Type())
					vp.Elem().Set(v)
					runEncode(t, &tc, vp.Interface())
				})
			}

			if tc.Direction != encodeTest {
				t.Run("Decode", func(t *testing.T) {
					t.Parallel()
					runDecode(t, &tc, bytes.NewReader(tc.Bytes))
				})

				t.Run("Decode+singleByteReader", func(t *testing.T) {
					t.Parallel()
					runDecode(t, &tc, &singleByteReader{bytes.NewReader(tc.Bytes)})
				})
			}
		})
	}
}

func runEncode(t *testing.T, tc *testcase, object any) {
	data, err := tc.Engine.Marshal(object)
	if tc.EncErrorIs != nil {
		require.Error(t, err, "encoding should have returned an error")
		require.ErrorIs(t, err, tc.EncErrorIs)
		return
	}
	require.NoError(t, err, "Marshal should succeed")
	assert.Equal(t, tc.Bytes, data, "marshalled bytes should match")
}

func runDecode(t *testing.T, tc *testcase, r io.Reader) {
	target := reflect.New(reflect.TypeOf(tc.Object))

	err := tc.Engine.Read(r, target.Interface())
	if tc.DecErrorIs != nil {
		require.Error(t, err, "decoding should have returned an error")
		require.ErrorIs(t, err, tc.DecErrorIs)
		return
	}
	require.NoError(t, err, "Read should succeed")

	// the decoder must consume the document exhaustively
	var trail bytes.Buffer
	n, err := io.Copy(&trail, r)
	assert.NoError(t, err, "should have no error draining tail")
	assert.Equalf(t, int64(0), n, "decoder left trailing bytes: %x", trail.Bytes())

	tc.DecodeComparator(t, tc.Object, target.Elem().Interface())
}

// expected-bytes builders

func cat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func u16b(v int) []byte {
	return []byte{byte(v >> 8), byte(v)}
}

func i32b(v int32) []byte {
	return []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
}

func i64b(v int64) []byte {
	return []byte{
		byte(v >> 56), byte(v >> 48), byte(v >> 40), byte(v >> 32),
		byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v),
	}
}

func f32b(v float32) []byte {
	return i32b(int32(math.Float32bits(v)))
}

func f64b(v float64) []byte {
	return i64b(int64(math.Float64bits(v)))
}

// mstr builds a length-prefixed string payload
func mstr(s string) []byte {
	return cat(u16b(len(s)), []byte(s))
}

// named builds the header of a named tag: id byte plus name
func named(kind TagType, name string) []byte {
	return cat([]byte{byte(kind)}, mstr(name))
}

// levelData builds the uncompressed equivalent of the level.dat sample used
// across the reader and engine tests.
func levelData(t testing.TB) []byte {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	ok := func(err error) {
		t.Helper()
		require.NoError(t, err)
	}

	ok(w.BeginCompound())
	ok(w.Name("Data"))
	ok(w.BeginCompound())

	ok(w.Name("Difficulty"))
	ok(w.WriteByte(1))
	ok(w.Name("thunderTime"))
	ok(w.WriteInt(51264))
	ok(w.Name("BorderSize"))
	ok(w.WriteDouble(1000.0))
	ok(w.Name("LastPlayed"))
	ok(w.WriteLong(1687182273928))
	ok(w.Name("version"))
	ok(w.WriteInt(19133))
	ok(w.Name("ServerBrands"))
	ok(w.BeginTypedList(1, TagString))
	ok(w.WriteString("Paper"))
	ok(w.EndList())
	ok(w.Name("SpawnAngle"))
	ok(w.WriteFloat(0.0))
	ok(w.Name("LevelName"))
	ok(w.WriteString("world"))
	ok(w.Name("rainTime"))
	ok(w.WriteInt(14590))
	ok(w.Name("difficultyLocked"))
	ok(w.WriteByte(0))
	ok(w.Name("BorderDamagePerBlock"))
	ok(w.WriteDouble(0.2))
	ok(w.Name("WorldGenSettings"))
	ok(w.BeginCompound())
	ok(w.Name("seed"))
	ok(w.WriteLong(-6450009625622499088))
	ok(w.EndCompound())

	ok(w.EndCompound()) // Data
	ok(w.EndCompound()) // root
	ok(w.Close())

	return buf.Bytes()
}
