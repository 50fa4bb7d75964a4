// Copyright (c) Blue (Lukas Rieger) <https://bluecolored.de>
// SPDX-License-Identifier: MIT

package coder

import (
	"reflect"
	"sort"

	nbtinterfaces "github.com/BlueMap-Minecraft/BlueNBT/interfaces"
	"github.com/BlueMap-Minecraft/BlueNBT/internal/errors"
)

// mapFactory serves maps with string or enum keys, mapping them to Compound
// tags. Other key types are declined (and end up as an UnsupportedKeyType
// error in the default fallback). Go maps are unordered, so entries are
// written sorted by key to keep the output deterministic; reading accepts
// keys in any order.
type mapFactory struct{}

func (mapFactory) CreateSerializer(t reflect.Type, ngin nbtinterfaces.Engine) (nbtinterfaces.Serializer, bool) {
	if t.Kind() != reflect.Map {
		return nil, false
	}
	c, ok := newMapCodec(t, ngin)
	return c, ok
}

func (mapFactory) CreateDeserializer(t reflect.Type, ngin nbtinterfaces.Engine) (nbtinterfaces.Deserializer, bool) {
	if t.Kind() != reflect.Map {
		return nil, false
	}
	c, ok := newMapCodec(t, ngin)
	return c, ok
}

func newMapCodec(t reflect.Type, ngin nbtinterfaces.Engine) (*mapCodec, bool) {
	key := t.Key()
	c := &mapCodec{
		t:     t,
		value: ngin.GetSerializer(t.Elem()),
		des:   ngin.GetDeserializer(t.Elem()),
	}

	switch {
	case key.Kind() == reflect.String:
		// keys used directly
	case key.Implements(enumType) && isIntegerKind(key.Kind()):
		c.enumKeys = newEnumInfo(key)
	default:
		return nil, false
	}
	return c, true
}

type mapCodec struct {
	t        reflect.Type
	value    nbtinterfaces.Serializer
	des      nbtinterfaces.Deserializer
	enumKeys *enumInfo // nil for string keys
}

var _ nbtinterfaces.Adapter = &mapCodec{}

func (c *mapCodec) TagType() nbtinterfaces.TagType {
	return nbtinterfaces.TagCompound
}

func (c *mapCodec) keyName(key reflect.Value) (string, error) {
	if c.enumKeys == nil {
		return key.String(), nil
	}
	return c.enumKeys.name(key)
}

func (c *mapCodec) Serialize(w nbtinterfaces.Writer, v reflect.Value) error {
	if err := w.BeginCompound(); err != nil {
		return err
	}

	type entry struct {
		name  string
		value reflect.Value
	}
	entries := make([]entry, 0, v.Len())

	iter := v.MapRange()
	for iter.Next() {
		name, err := c.keyName(iter.Key())
		if err != nil {
			return err
		}
		entries = append(entries, entry{name, iter.Value()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })

	for _, e := range entries {
		if err := w.Name(e.name); err != nil {
			return err
		}
		if err := c.value.Serialize(w, e.value); err != nil {
			return err
		}
	}

	return w.EndCompound()
}

func (c *mapCodec) Deserialize(r nbtinterfaces.Reader, v reflect.Value) error {
	if err := r.BeginCompound(); err != nil {
		return err
	}

	v.Set(reflect.MakeMap(c.t))

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

		key := reflect.New(c.t.Key()).Elem()
		if c.enumKeys == nil {
			key.SetString(name)
		} else {
			ordinal, ok := c.enumKeys.ordinal(name)
			if !ok {
				return errors.InvalidEnumValueError{T: c.t.Key(), Name: name}
			}
			setIntValue(key, int64(ordinal))
		}

		value := reflect.New(c.t.Elem()).Elem()
		if err := c.des.Deserialize(r, value); err != nil {
			return err
		}

		v.SetMapIndex(key, value)
	}

	return r.EndCompound()
}

func isIntegerKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	default:
		return false
	}
}
