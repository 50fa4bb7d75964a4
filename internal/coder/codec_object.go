// Copyright (c) Blue (Lukas Rieger) <https://bluecolored.de>
// SPDX-License-Identifier: MIT

package coder

import (
	"reflect"

	nbtinterfaces "github.com/BlueMap-Minecraft/BlueNBT/interfaces"
	"github.com/BlueMap-Minecraft/BlueNBT/internal/errors"
)

// objectFactory serves the empty interface type: decoding builds a generic
// tree closely representing the actual NBT structure, encoding dispatches on
// the value's runtime type.
//
//	NBT tag   -> Go value
//	--------------------
//	Compound  -> map[string]any
//	List      -> []any
//	String    -> string
//	Byte      -> int8
//	Short     -> int16
//	Int       -> int32
//	Long      -> int64
//	Float     -> float32
//	Double    -> float64
//	ByteArray -> []byte
//	IntArray  -> []int32
//	LongArray -> []int64
type objectFactory struct{}

var anyType = reflect.TypeOf((*any)(nil)).Elem()

func (objectFactory) CreateSerializer(t reflect.Type, ngin nbtinterfaces.Engine) (nbtinterfaces.Serializer, bool) {
	if t != anyType {
		return nil, false
	}
	return &objectAdapter{ngin}, true
}

func (objectFactory) CreateDeserializer(t reflect.Type, ngin nbtinterfaces.Engine) (nbtinterfaces.Deserializer, bool) {
	if t != anyType {
		return nil, false
	}
	return &objectAdapter{ngin}, true
}

type objectAdapter struct {
	ngin nbtinterfaces.Engine
}

var _ nbtinterfaces.Adapter = &objectAdapter{}

func (a *objectAdapter) Serialize(w nbtinterfaces.Writer, v reflect.Value) error {
	if v.IsNil() {
		return errors.ErrNilValue
	}
	inner := v.Elem()
	return a.ngin.GetSerializer(inner.Type()).Serialize(w, inner)
}

func (a *objectAdapter) TagType() nbtinterfaces.TagType {
	// depends on the runtime type
	return nbtinterfaces.TagEnd
}

func (a *objectAdapter) Deserialize(r nbtinterfaces.Reader, v reflect.Value) error {
	value, err := readAnyValue(r)
	if err != nil {
		return err
	}
	v.Set(reflect.ValueOf(value))
	return nil
}

func readAnyValue(r nbtinterfaces.Reader) (any, error) {
	kind, err := r.Peek()
	if err != nil {
		return nil, err
	}

	switch kind {
	case nbtinterfaces.TagCompound:
		if err := r.BeginCompound(); err != nil {
			return nil, err
		}
		m := map[string]any{}
		for {
			hasNext, err := r.HasNext()
			if err != nil {
				return nil, err
			}
			if !hasNext {
				break
			}
			name, err := r.Name()
			if err != nil {
				return nil, err
			}
			value, err := readAnyValue(r)
			if err != nil {
				return nil, err
			}
			m[name] = value
		}
		return m, r.EndCompound()

	case nbtinterfaces.TagList:
		length, err := r.BeginList()
		if err != nil {
			return nil, err
		}
		list := make([]any, 0, length)
		for {
			hasNext, err := r.HasNext()
			if err != nil {
				return nil, err
			}
			if !hasNext {
				break
			}
			value, err := readAnyValue(r)
			if err != nil {
				return nil, err
			}
			list = append(list, value)
		}
		return list, r.EndList()

	case nbtinterfaces.TagString:
		return r.NextString()
	case nbtinterfaces.TagByte:
		return r.NextByte()
	case nbtinterfaces.TagShort:
		return r.NextShort()
	case nbtinterfaces.TagInt:
		return r.NextInt()
	case nbtinterfaces.TagLong:
		return r.NextLong()
	case nbtinterfaces.TagFloat:
		return r.NextFloat()
	case nbtinterfaces.TagDouble:
		return r.NextDouble()
	case nbtinterfaces.TagByteArray:
		return r.NextByteArray()
	case nbtinterfaces.TagIntArray:
		return r.NextIntArray()
	case nbtinterfaces.TagLongArray:
		return r.NextLongArray()

	default:
		return nil, errors.CorruptDataError{Reason: "found unexpected End tag", Path: r.Path()}
	}
}
