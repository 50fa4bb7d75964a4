// Copyright (c) Blue (Lukas Rieger) <https://bluecolored.de>
// SPDX-License-Identifier: MIT

package coder

import (
	"reflect"
	"strconv"
	"strings"

	nbtinterfaces "github.com/BlueMap-Minecraft/BlueNBT/interfaces"
	"github.com/BlueMap-Minecraft/BlueNBT/internal/errors"
)

// primitiveFactory serves the numeric and boolean kinds. Writing uses the
// fixed kind mapping (int8 -> Byte, int16 -> Short, int32 -> Int,
// int64/int -> Long, float32 -> Float, float64 -> Double, bool -> Byte;
// unsigned types mirror their signed counterparts). Reading is lenient: any
// numeric tag is accepted with a narrowing cast, and String tags are parsed
// textually.
type primitiveFactory struct{}

func (primitiveFactory) CreateSerializer(t reflect.Type, ngin nbtinterfaces.Engine) (nbtinterfaces.Serializer, bool) {
	a, ok := primitiveAdapterFor(t.Kind())
	return a, ok
}

func (primitiveFactory) CreateDeserializer(t reflect.Type, ngin nbtinterfaces.Engine) (nbtinterfaces.Deserializer, bool) {
	a, ok := primitiveAdapterFor(t.Kind())
	return a, ok
}

func primitiveAdapterFor(k reflect.Kind) (nbtinterfaces.Adapter, bool) {
	switch k {
	case reflect.Bool:
		return boolAdapterI, true
	case reflect.Int8:
		return int8AdapterI, true
	case reflect.Int16:
		return int16AdapterI, true
	case reflect.Int32:
		return int32AdapterI, true
	case reflect.Int64, reflect.Int:
		return int64AdapterI, true
	case reflect.Uint8:
		return uint8AdapterI, true
	case reflect.Uint16:
		return uint16AdapterI, true
	case reflect.Uint32:
		return uint32AdapterI, true
	case reflect.Uint64, reflect.Uint:
		return uint64AdapterI, true
	case reflect.Float32:
		return floatAdapterI, true
	case reflect.Float64:
		return doubleAdapterI, true
	default:
		return nil, false
	}
}

// boolAdapter maps booleans to Byte tags (0 = false, nonzero = true)
type boolAdapter struct{}

var boolAdapterI nbtinterfaces.Adapter = boolAdapter{}

func (boolAdapter) Serialize(w nbtinterfaces.Writer, v reflect.Value) error {
	var b int8
	if v.Bool() {
		b = 1
	}
	return w.WriteByte(b)
}

func (boolAdapter) TagType() nbtinterfaces.TagType {
	return nbtinterfaces.TagByte
}

func (boolAdapter) Deserialize(r nbtinterfaces.Reader, v reflect.Value) error {
	b, err := readLenientBool(r)
	if err != nil {
		return err
	}
	v.SetBool(b)
	return nil
}

// intAdapter handles the signed integer types of one tag kind
type intAdapter struct {
	kind nbtinterfaces.TagType
}

var (
	int8AdapterI  nbtinterfaces.Adapter = intAdapter{nbtinterfaces.TagByte}
	int16AdapterI nbtinterfaces.Adapter = intAdapter{nbtinterfaces.TagShort}
	int32AdapterI nbtinterfaces.Adapter = intAdapter{nbtinterfaces.TagInt}
	int64AdapterI nbtinterfaces.Adapter = intAdapter{nbtinterfaces.TagLong}
)

func (a intAdapter) Serialize(w nbtinterfaces.Writer, v reflect.Value) error {
	return writeIntAs(w, a.kind, v.Int())
}

func (a intAdapter) TagType() nbtinterfaces.TagType {
	return a.kind
}

func (a intAdapter) Deserialize(r nbtinterfaces.Reader, v reflect.Value) error {
	x, err := readLenientInt(r, a.kind)
	if err != nil {
		return err
	}
	v.SetInt(truncateInt(a.kind, x))
	return nil
}

// uintAdapter handles the unsigned integer types of one tag kind
type uintAdapter struct {
	kind nbtinterfaces.TagType
}

var (
	uint8AdapterI  nbtinterfaces.Adapter = uintAdapter{nbtinterfaces.TagByte}
	uint16AdapterI nbtinterfaces.Adapter = uintAdapter{nbtinterfaces.TagShort}
	uint32AdapterI nbtinterfaces.Adapter = uintAdapter{nbtinterfaces.TagInt}
	uint64AdapterI nbtinterfaces.Adapter = uintAdapter{nbtinterfaces.TagLong}
)

func (a uintAdapter) Serialize(w nbtinterfaces.Writer, v reflect.Value) error {
	return writeIntAs(w, a.kind, int64(v.Uint()))
}

func (a uintAdapter) TagType() nbtinterfaces.TagType {
	return a.kind
}

func (a uintAdapter) Deserialize(r nbtinterfaces.Reader, v reflect.Value) error {
	x, err := readLenientInt(r, a.kind)
	if err != nil {
		return err
	}
	v.SetUint(uint64(truncateInt(a.kind, x)) & uintMask(a.kind))
	return nil
}

// floatAdapter handles float32 (Float) and float64 (Double)
type floatAdapter struct {
	double bool
}

var (
	floatAdapterI  nbtinterfaces.Adapter = floatAdapter{false}
	doubleAdapterI nbtinterfaces.Adapter = floatAdapter{true}
)

func (a floatAdapter) Serialize(w nbtinterfaces.Writer, v reflect.Value) error {
	if a.double {
		return w.WriteDouble(v.Float())
	}
	return w.WriteFloat(float32(v.Float()))
}

func (a floatAdapter) TagType() nbtinterfaces.TagType {
	if a.double {
		return nbtinterfaces.TagDouble
	}
	return nbtinterfaces.TagFloat
}

func (a floatAdapter) Deserialize(r nbtinterfaces.Reader, v reflect.Value) error {
	f, err := readLenientFloat(r, a.TagType())
	if err != nil {
		return err
	}
	if !a.double {
		f = float64(float32(f))
	}
	v.SetFloat(f)
	return nil
}

func writeIntAs(w nbtinterfaces.Writer, kind nbtinterfaces.TagType, x int64) error {
	switch kind {
	case nbtinterfaces.TagByte:
		return w.WriteByte(int8(x))
	case nbtinterfaces.TagShort:
		return w.WriteShort(int16(x))
	case nbtinterfaces.TagInt:
		return w.WriteInt(int32(x))
	default:
		return w.WriteLong(x)
	}
}

func truncateInt(kind nbtinterfaces.TagType, x int64) int64 {
	switch kind {
	case nbtinterfaces.TagByte:
		return int64(int8(x))
	case nbtinterfaces.TagShort:
		return int64(int16(x))
	case nbtinterfaces.TagInt:
		return int64(int32(x))
	default:
		return x
	}
}

func uintMask(kind nbtinterfaces.TagType) uint64 {
	switch kind {
	case nbtinterfaces.TagByte:
		return 0xFF
	case nbtinterfaces.TagShort:
		return 0xFFFF
	case nbtinterfaces.TagInt:
		return 0xFFFFFFFF
	default:
		return ^uint64(0)
	}
}

// readLenientInt reads any numeric tag (narrowing floats) or parses a
// String tag as an integer. expected is only used for error reporting.
func readLenientInt(r nbtinterfaces.Reader, expected nbtinterfaces.TagType) (int64, error) {
	kind, err := r.Peek()
	if err != nil {
		return 0, err
	}

	switch kind {
	case nbtinterfaces.TagByte:
		v, err := r.NextByte()
		return int64(v), err
	case nbtinterfaces.TagShort:
		v, err := r.NextShort()
		return int64(v), err
	case nbtinterfaces.TagInt:
		v, err := r.NextInt()
		return int64(v), err
	case nbtinterfaces.TagLong:
		return r.NextLong()
	case nbtinterfaces.TagFloat:
		v, err := r.NextFloat()
		return int64(v), err
	case nbtinterfaces.TagDouble:
		v, err := r.NextDouble()
		return int64(v), err
	case nbtinterfaces.TagString:
		s, err := r.NextString()
		if err != nil {
			return 0, err
		}
		x, perr := strconv.ParseInt(s, 10, 64)
		if perr != nil {
			return 0, errors.CorruptDataError{Reason: "can not parse '" + s + "' as integer", Path: r.Path()}
		}
		return x, nil
	default:
		return 0, errors.UnexpectedKindError{Expected: expected, Found: kind, Path: r.Path()}
	}
}

// readLenientFloat reads any numeric tag or parses a String tag as a float.
func readLenientFloat(r nbtinterfaces.Reader, expected nbtinterfaces.TagType) (float64, error) {
	kind, err := r.Peek()
	if err != nil {
		return 0, err
	}

	switch kind {
	case nbtinterfaces.TagFloat:
		v, err := r.NextFloat()
		return float64(v), err
	case nbtinterfaces.TagDouble:
		return r.NextDouble()
	case nbtinterfaces.TagByte:
		v, err := r.NextByte()
		return float64(v), err
	case nbtinterfaces.TagShort:
		v, err := r.NextShort()
		return float64(v), err
	case nbtinterfaces.TagInt:
		v, err := r.NextInt()
		return float64(v), err
	case nbtinterfaces.TagLong:
		v, err := r.NextLong()
		return float64(v), err
	case nbtinterfaces.TagString:
		s, err := r.NextString()
		if err != nil {
			return 0, err
		}
		f, perr := strconv.ParseFloat(s, 64)
		if perr != nil {
			return 0, errors.CorruptDataError{Reason: "can not parse '" + s + "' as float", Path: r.Path()}
		}
		return f, nil
	default:
		return 0, errors.UnexpectedKindError{Expected: expected, Found: kind, Path: r.Path()}
	}
}

// readLenientBool reads any numeric tag as nonzero-means-true, or a String
// tag as "true"/"false".
func readLenientBool(r nbtinterfaces.Reader) (bool, error) {
	kind, err := r.Peek()
	if err != nil {
		return false, err
	}

	if kind == nbtinterfaces.TagString {
		s, err := r.NextString()
		return strings.EqualFold(s, "true"), err
	}
	if kind == nbtinterfaces.TagFloat || kind == nbtinterfaces.TagDouble {
		f, err := readLenientFloat(r, nbtinterfaces.TagByte)
		return f != 0, err
	}

	x, err := readLenientInt(r, nbtinterfaces.TagByte)
	return x != 0, err
}
