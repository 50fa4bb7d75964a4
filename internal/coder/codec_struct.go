// Copyright (c) Blue (Lukas Rieger) <https://bluecolored.de>
// SPDX-License-Identifier: MIT

package coder

import (
	"fmt"
	"reflect"

	nbtinterfaces "github.com/BlueMap-Minecraft/BlueNBT/interfaces"
	"github.com/BlueMap-Minecraft/BlueNBT/internal/errors"
	"github.com/BlueMap-Minecraft/BlueNBT/internal/tags"
)

// structAdapter is the reflective fallback for user-defined struct types:
// it synthesizes a writer and a reader from the declared fields.
//
// Fields are discovered once at build time: exported fields of the struct
// and of all embedded structs, minus those tagged `nbt:"-"`. NBT names come
// from the `nbt` tag (first entry is the write name, all entries are read
// aliases) or from the engine's naming strategy. Writing emits the fields in
// declaration order, skipping nil values; reading matches names against the
// known bindings (exact first, then with the engine's field-name transformer
// applied) and skips unknown elements.
type structAdapter struct {
	t       reflect.Type
	ngin    nbtinterfaces.Engine
	creator nbtinterfaces.InstanceCreator

	fields []*fieldBinding
	byName map[string]*fieldBinding

	post     bool
	buildErr error
}

type fieldBinding struct {
	name    string   // write name
	aliases []string // read names, first == name
	index   []int
	typ     reflect.Type
	nilable bool

	ser nbtinterfaces.Serializer
	des nbtinterfaces.Deserializer

	// allocation-free fast path for primitive scalar fields
	specialWrite func(w nbtinterfaces.Writer, v reflect.Value) error
	specialRead  func(r nbtinterfaces.Reader, v reflect.Value) error
}

var _ nbtinterfaces.Adapter = &structAdapter{}

func newStructAdapter(t reflect.Type, ngin nbtinterfaces.Engine) *structAdapter {
	a := &structAdapter{
		t:      t,
		ngin:   ngin,
		byName: make(map[string]*fieldBinding),
		post:   reflect.PtrTo(t).Implements(postDeserializerType),
	}
	a.creator = ngin.GetInstanceCreator(t)
	a.collectFields(t, nil, ngin.NamingStrategy())
	return a
}

func (a *structAdapter) collectFields(t reflect.Type, prefix []int, strategy nbtinterfaces.NamingStrategy) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)

		tag, err := tags.Parse(f.Tag)
		if err != nil {
			if a.buildErr == nil {
				a.buildErr = fmt.Errorf("nbt: field '%s' of '%s': %w", f.Name, t, err)
			}
			continue
		}
		if tag.Skip {
			continue
		}

		// embedded structs are flattened like ancestors
		if f.Anonymous && f.Type.Kind() == reflect.Struct && len(tag.Names) == 0 &&
			tag.Serializer == "" && tag.Deserializer == "" {
			nested := make([]int, 0, len(prefix)+1)
			nested = append(append(nested, prefix...), i)
			a.collectFields(f.Type, nested, strategy)
			continue
		}

		if f.PkgPath != "" {
			continue // unexported
		}

		names := tag.Names
		if len(names) == 0 {
			names = []string{strategy(f)}
		}

		index := make([]int, 0, len(prefix)+1)
		index = append(append(index, prefix...), i)

		b := &fieldBinding{
			name:    names[0],
			aliases: names,
			index:   index,
			typ:     f.Type,
		}

		switch f.Type.Kind() {
		case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface:
			b.nilable = true
		}

		a.resolveAccessors(b, f, tag)

		a.fields = append(a.fields, b)
		for _, name := range b.aliases {
			a.byName[name] = b
		}
	}
}

func (a *structAdapter) resolveAccessors(b *fieldBinding, f reflect.StructField, tag tags.NBTTag) {
	pinned := tag.Serializer != "" || tag.Deserializer != ""

	// only the predeclared scalar types take the fast path; named types
	// (enums, Marshalers) go through their adapters
	if !pinned && f.Type.PkgPath() == "" {
		if sw, sr, ok := specialAccessors(f.Type.Kind()); ok {
			b.specialWrite = sw
			b.specialRead = sr
			return
		}
	}

	if tag.Serializer != "" {
		s, ok := a.ngin.LookupNamedSerializer(tag.Serializer)
		if !ok {
			a.fail(f, "unknown named serializer '%s'", tag.Serializer)
			s = &errorAdapter{errors.CorruptDataError{Reason: "unknown named serializer " + tag.Serializer}}
		}
		b.ser = s
	} else {
		b.ser = a.ngin.GetSerializer(f.Type)
	}

	if tag.Deserializer != "" {
		d, ok := a.ngin.LookupNamedDeserializer(tag.Deserializer)
		if !ok {
			a.fail(f, "unknown named deserializer '%s'", tag.Deserializer)
			d = &errorAdapter{errors.CorruptDataError{Reason: "unknown named deserializer " + tag.Deserializer}}
		}
		b.des = d
	} else {
		b.des = a.ngin.GetDeserializer(f.Type)
	}
}

func (a *structAdapter) fail(f reflect.StructField, format string, args ...any) {
	if a.buildErr == nil {
		a.buildErr = fmt.Errorf("nbt: field '%s' of '%s': %s", f.Name, a.t, fmt.Sprintf(format, args...))
	}
}

// specialAccessors returns direct reader/writer functions for the primitive
// scalar kinds, bypassing the adapter indirection.
func specialAccessors(k reflect.Kind) (
	write func(w nbtinterfaces.Writer, v reflect.Value) error,
	read func(r nbtinterfaces.Reader, v reflect.Value) error,
	ok bool,
) {
	switch k {
	case reflect.Bool:
		return func(w nbtinterfaces.Writer, v reflect.Value) error {
				var b int8
				if v.Bool() {
					b = 1
				}
				return w.WriteByte(b)
			}, func(r nbtinterfaces.Reader, v reflect.Value) error {
				b, err := readLenientBool(r)
				if err != nil {
					return err
				}
				v.SetBool(b)
				return nil
			}, true
	case reflect.Int8:
		return specialIntAccessors(nbtinterfaces.TagByte)
	case reflect.Int16:
		return specialIntAccessors(nbtinterfaces.TagShort)
	case reflect.Int32:
		return specialIntAccessors(nbtinterfaces.TagInt)
	case reflect.Int64, reflect.Int:
		return specialIntAccessors(nbtinterfaces.TagLong)
	case reflect.Float32:
		return func(w nbtinterfaces.Writer, v reflect.Value) error {
				return w.WriteFloat(float32(v.Float()))
			}, func(r nbtinterfaces.Reader, v reflect.Value) error {
				f, err := readLenientFloat(r, nbtinterfaces.TagFloat)
				if err != nil {
					return err
				}
				v.SetFloat(float64(float32(f)))
				return nil
			}, true
	case reflect.Float64:
		return func(w nbtinterfaces.Writer, v reflect.Value) error {
				return w.WriteDouble(v.Float())
			}, func(r nbtinterfaces.Reader, v reflect.Value) error {
				f, err := readLenientFloat(r, nbtinterfaces.TagDouble)
				if err != nil {
					return err
				}
				v.SetFloat(f)
				return nil
			}, true
	default:
		return nil, nil, false
	}
}

func specialIntAccessors(kind nbtinterfaces.TagType) (
	func(w nbtinterfaces.Writer, v reflect.Value) error,
	func(r nbtinterfaces.Reader, v reflect.Value) error,
	bool,
) {
	return func(w nbtinterfaces.Writer, v reflect.Value) error {
			return writeIntAs(w, kind, v.Int())
		}, func(r nbtinterfaces.Reader, v reflect.Value) error {
			x, err := readLenientInt(r, kind)
			if err != nil {
				return err
			}
			v.SetInt(truncateInt(kind, x))
			return nil
		}, true
}

func (a *structAdapter) TagType() nbtinterfaces.TagType {
	return nbtinterfaces.TagCompound
}

func (a *structAdapter) Serialize(w nbtinterfaces.Writer, v reflect.Value) error {
	if a.buildErr != nil {
		return a.buildErr
	}

	if err := w.BeginCompound(); err != nil {
		return err
	}

	for _, f := range a.fields {
		fv := v.FieldByIndex(f.index)
		if f.nilable && fv.IsNil() {
			continue
		}

		if err := w.Name(f.name); err != nil {
			return err
		}

		var err error
		if f.specialWrite != nil {
			err = f.specialWrite(w, fv)
		} else {
			err = f.ser.Serialize(w, fv)
		}
		if err != nil {
			return errors.WithFieldError(err, a.t.Name(), f.name)
		}
	}

	return w.EndCompound()
}

func (a *structAdapter) Deserialize(r nbtinterfaces.Reader, v reflect.Value) error {
	if a.buildErr != nil {
		return a.buildErr
	}

	obj, err := a.creator.New()
	if err != nil {
		return err
	}
	elem := obj.Elem()

	if err := r.BeginCompound(); err != nil {
		return err
	}

	transformer := a.ngin.FieldNameTransformer()

	for {
		hasNext, err := r.HasNext()
		if err != nil {
			return err
		}
		if !hasNext {
			break
		}

		name, err := r.Name()
		if err != nil {
			return err
		}

		binding := a.byName[name]
		if binding == nil && transformer != nil {
			binding = a.byName[transformer(name)]
		}

		if binding == nil {
			if err := r.Skip(0); err != nil {
				return err
			}
			continue
		}

		fv := elem.FieldByIndex(binding.index)
		if binding.specialRead != nil {
			err = binding.specialRead(r, fv)
		} else {
			err = binding.des.Deserialize(r, fv)
		}
		if err != nil {
			return errors.WithFieldError(err, a.t.Name(), binding.name)
		}
	}

	if err := r.EndCompound(); err != nil {
		return err
	}

	if a.post {
		if err := obj.Interface().(nbtinterfaces.PostDeserializer).PostDeserializeNBT(); err != nil {
			return errors.WithFieldError(err, a.t.Name(), "(post-deserialize)")
		}
	}

	v.Set(elem)
	return nil
}
