// Copyright (c) Blue (Lukas Rieger) <https://bluecolored.de>
// SPDX-License-Identifier: MIT

package coder

import (
	"reflect"

	nbtinterfaces "github.com/BlueMap-Minecraft/BlueNBT/interfaces"
)

// arrayFactory serves slices and fixed-size arrays. Element types of 8, 32
// and 64 bit integer kinds map to the dense array tags (ByteArray, IntArray,
// LongArray); every other element type, including Enum types, maps to a List
// of the element's tag type. When reading, any of the three dense array tags is accepted with a
// per-element conversion, as is a List of matching elements.
type arrayFactory struct{}

var byteSliceType = reflect.TypeOf([]byte(nil))

func arrayKindFor(elem reflect.Type) nbtinterfaces.TagType {
	if isEnumType(elem) {
		return nbtinterfaces.TagList
	}
	switch elem.Kind() {
	case reflect.Int8, reflect.Uint8:
		return nbtinterfaces.TagByteArray
	case reflect.Int32, reflect.Uint32:
		return nbtinterfaces.TagIntArray
	case reflect.Int64, reflect.Uint64:
		return nbtinterfaces.TagLongArray
	default:
		return nbtinterfaces.TagList
	}
}

func (arrayFactory) CreateSerializer(t reflect.Type, ngin nbtinterfaces.Engine) (nbtinterfaces.Serializer, bool) {
	if t.Kind() != reflect.Slice && t.Kind() != reflect.Array {
		return nil, false
	}
	s := &arraySerializer{t: t, kind: arrayKindFor(t.Elem())}
	if s.kind == nbtinterfaces.TagList {
		s.elem = ngin.GetSerializer(t.Elem())
	}
	return s, true
}

func (arrayFactory) CreateDeserializer(t reflect.Type, ngin nbtinterfaces.Engine) (nbtinterfaces.Deserializer, bool) {
	if t.Kind() != reflect.Slice && t.Kind() != reflect.Array {
		return nil, false
	}
	// the element deserializer is also needed for the dense array kinds, as
	// the fallback when the data holds a List instead
	return &arrayDeserializer{
		t:    t,
		kind: arrayKindFor(t.Elem()),
		elem: ngin.GetDeserializer(t.Elem()),
	}, true
}

type arraySerializer struct {
	t    reflect.Type
	kind nbtinterfaces.TagType
	elem nbtinterfaces.Serializer // List only
}

var _ nbtinterfaces.Serializer = &arraySerializer{}

func (s *arraySerializer) TagType() nbtinterfaces.TagType {
	return s.kind
}

func (s *arraySerializer) Serialize(w nbtinterfaces.Writer, v reflect.Value) error {
	switch s.kind {
	case nbtinterfaces.TagByteArray:
		if v.Type() == byteSliceType {
			return w.WriteByteArray(v.Bytes())
		}
		data := make([]byte, v.Len())
		unsigned := v.Type().Elem().Kind() == reflect.Uint8
		for i := range data {
			if unsigned {
				data[i] = byte(v.Index(i).Uint())
			} else {
				data[i] = byte(v.Index(i).Int())
			}
		}
		return w.WriteByteArray(data)

	case nbtinterfaces.TagIntArray:
		data := make([]int32, v.Len())
		unsigned := v.Type().Elem().Kind() == reflect.Uint32
		for i := range data {
			if unsigned {
				data[i] = int32(v.Index(i).Uint())
			} else {
				data[i] = int32(v.Index(i).Int())
			}
		}
		return w.WriteIntArray(data)

	case nbtinterfaces.TagLongArray:
		data := make([]int64, v.Len())
		unsigned := v.Type().Elem().Kind() == reflect.Uint64
		for i := range data {
			if unsigned {
				data[i] = int64(v.Index(i).Uint())
			} else {
				data[i] = v.Index(i).Int()
			}
		}
		return w.WriteLongArray(data)

	default:
		return s.serializeList(w, v)
	}
}

func (s *arraySerializer) serializeList(w nbtinterfaces.Writer, v reflect.Value) error {
	length := v.Len()
	elemKind := s.elem.TagType()

	// An unknown element kind (dynamic element serializer) leaves the header
	// to be pinned by the first value; an empty such list is written with
	// the End element type.
	var err error
	if elemKind == nbtinterfaces.TagEnd && length > 0 {
		err = w.BeginList(length)
	} else {
		err = w.BeginTypedList(length, elemKind)
	}
	if err != nil {
		return err
	}

	for i := 0; i < length; i++ {
		if err := s.elem.Serialize(w, v.Index(i)); err != nil {
			return err
		}
	}
	return w.EndList()
}

type arrayDeserializer struct {
	t    reflect.Type
	kind nbtinterfaces.TagType
	elem nbtinterfaces.Deserializer
}

var _ nbtinterfaces.Deserializer = &arrayDeserializer{}

func (d *arrayDeserializer) Deserialize(r nbtinterfaces.Reader, v reflect.Value) error {
	kind, err := r.Peek()
	if err != nil {
		return err
	}

	if kind == nbtinterfaces.TagList || d.kind == nbtinterfaces.TagList {
		return d.deserializeList(r, v)
	}

	switch d.kind {
	case nbtinterfaces.TagByteArray:
		data, err := r.NextArrayAsByteArray()
		if err != nil {
			return err
		}
		if d.t == byteSliceType {
			v.Set(reflect.ValueOf(data))
			return nil
		}
		return d.assign(v, len(data), func(elem reflect.Value, i int) {
			setIntValue(elem, int64(int8(data[i])))
		})

	case nbtinterfaces.TagIntArray:
		data, err := r.NextArrayAsIntArray()
		if err != nil {
			return err
		}
		return d.assign(v, len(data), func(elem reflect.Value, i int) {
			setIntValue(elem, int64(data[i]))
		})

	default: // TagLongArray
		data, err := r.NextArrayAsLongArray()
		if err != nil {
			return err
		}
		return d.assign(v, len(data), func(elem reflect.Value, i int) {
			setIntValue(elem, data[i])
		})
	}
}

// assign fills v (slice or fixed array) with length elements produced by
// set. Excess elements are dropped when a fixed array is too small.
func (d *arrayDeserializer) assign(v reflect.Value, length int, set func(elem reflect.Value, i int)) error {
	if d.t.Kind() == reflect.Slice {
		v.Set(reflect.MakeSlice(d.t, length, length))
		for i := 0; i < length; i++ {
			set(v.Index(i), i)
		}
		return nil
	}

	fresh := reflect.New(d.t).Elem()
	for i := 0; i < min(length, d.t.Len()); i++ {
		set(fresh.Index(i), i)
	}
	v.Set(fresh)
	return nil
}

func (d *arrayDeserializer) deserializeList(r nbtinterfaces.Reader, v reflect.Value) error {
	length, err := r.BeginList()
	if err != nil {
		return err
	}

	if d.t.Kind() == reflect.Slice {
		v.Set(reflect.MakeSlice(d.t, length, length))
		for i := 0; i < length; i++ {
			if err := d.elem.Deserialize(r, v.Index(i)); err != nil {
				return err
			}
		}
		return r.EndList()
	}

	fresh := reflect.New(d.t).Elem()
	for i := 0; i < length; i++ {
		if i < d.t.Len() {
			err = d.elem.Deserialize(r, fresh.Index(i))
		} else {
			err = r.Skip(0)
		}
		if err != nil {
			return err
		}
	}
	v.Set(fresh)
	return r.EndList()
}

// setIntValue assigns a (sign-extended) integer to a settable value of any
// integer kind.
func setIntValue(v reflect.Value, x int64) {
	switch v.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v.SetUint(uint64(x) & uintMaskKind(v.Kind()))
	default:
		v.SetInt(x)
	}
}

func uintMaskKind(k reflect.Kind) uint64 {
	switch k {
	case reflect.Uint8:
		return 0xFF
	case reflect.Uint16:
		return 0xFFFF
	case reflect.Uint32:
		return 0xFFFFFFFF
	default:
		return ^uint64(0)
	}
}
