// Copyright (c) Blue (Lukas Rieger) <https://bluecolored.de>
// SPDX-License-Identifier: MIT

package coder

import (
	"reflect"

	nbtinterfaces "github.com/BlueMap-Minecraft/BlueNBT/interfaces"
	"github.com/BlueMap-Minecraft/BlueNBT/internal/errors"
)

// enumFactory serves named integer types implementing the Enum interface.
// An enum serializes as a String tag of its symbolic name; reading accepts
// a String (exact name match) or any integer tag (as ordinal).
type enumFactory struct{}

func (enumFactory) CreateSerializer(t reflect.Type, ngin nbtinterfaces.Engine) (nbtinterfaces.Serializer, bool) {
	if !isEnumType(t) {
		return nil, false
	}
	return &enumAdapter{newEnumInfo(t)}, true
}

func (enumFactory) CreateDeserializer(t reflect.Type, ngin nbtinterfaces.Engine) (nbtinterfaces.Deserializer, bool) {
	if !isEnumType(t) {
		return nil, false
	}
	return &enumAdapter{newEnumInfo(t)}, true
}

func isEnumType(t reflect.Type) bool {
	return isIntegerKind(t.Kind()) && t.Implements(enumType)
}

// enumInfo caches the symbol set of one enum type.
type enumInfo struct {
	t        reflect.Type
	names    []string
	ordinals map[string]int
}

func newEnumInfo(t reflect.Type) *enumInfo {
	names := reflect.Zero(t).Interface().(nbtinterfaces.Enum).EnumNames()
	ordinals := make(map[string]int, len(names))
	for i, name := range names {
		ordinals[name] = i
	}
	return &enumInfo{t: t, names: names, ordinals: ordinals}
}

func (e *enumInfo) name(v reflect.Value) (string, error) {
	var ordinal int64
	if v.CanInt() {
		ordinal = v.Int()
	} else {
		ordinal = int64(v.Uint())
	}
	if ordinal < 0 || ordinal >= int64(len(e.names)) {
		return "", errors.InvalidEnumValueError{T: e.t, Ordinal: ordinal}
	}
	return e.names[ordinal], nil
}

func (e *enumInfo) ordinal(name string) (int, bool) {
	ordinal, ok := e.ordinals[name]
	return ordinal, ok
}

type enumAdapter struct {
	info *enumInfo
}

var _ nbtinterfaces.Adapter = &enumAdapter{}

func (a *enumAdapter) TagType() nbtinterfaces.TagType {
	return nbtinterfaces.TagString
}

func (a *enumAdapter) Serialize(w nbtinterfaces.Writer, v reflect.Value) error {
	name, err := a.info.name(v)
	if err != nil {
		return err
	}
	return w.WriteString(name)
}

func (a *enumAdapter) Deserialize(r nbtinterfaces.Reader, v reflect.Value) error {
	kind, err := r.Peek()
	if err != nil {
		return err
	}

	var ordinal int64
	switch kind {
	case nbtinterfaces.TagString:
		name, err := r.NextString()
		if err != nil {
			return err
		}
		o, ok := a.info.ordinal(name)
		if !ok {
			return errors.InvalidEnumValueError{T: a.info.t, Name: name}
		}
		ordinal = int64(o)

	case nbtinterfaces.TagByte, nbtinterfaces.TagShort, nbtinterfaces.TagInt, nbtinterfaces.TagLong:
		if ordinal, err = readLenientInt(r, nbtinterfaces.TagString); err != nil {
			return err
		}
		if ordinal < 0 || ordinal >= int64(len(a.info.names)) {
			return errors.InvalidEnumValueError{T: a.info.t, Ordinal: ordinal}
		}

	default:
		return errors.UnexpectedKindError{Expected: nbtinterfaces.TagString, Found: kind, Path: r.Path()}
	}

	setIntValue(v, ordinal)
	return nil
}
