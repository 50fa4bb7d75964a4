// Copyright (c) Blue (Lukas Rieger) <https://bluecolored.de>
// SPDX-License-Identifier: MIT

package coder

import (
	"reflect"

	nbtinterfaces "github.com/BlueMap-Minecraft/BlueNBT/interfaces"
	"github.com/BlueMap-Minecraft/BlueNBT/internal/errors"
)

// ptrFactory makes pointers transparent: the pointee's adapter is used,
// allocating on read. Nil pointers can not be written directly; struct
// fields holding nil are skipped by the struct adapter before getting here.
type ptrFactory struct{}

func (ptrFactory) CreateSerializer(t reflect.Type, ngin nbtinterfaces.Engine) (nbtinterfaces.Serializer, bool) {
	if t.Kind() != reflect.Ptr {
		return nil, false
	}
	return &ptrSerializer{elem: ngin.GetSerializer(t.Elem())}, true
}

func (ptrFactory) CreateDeserializer(t reflect.Type, ngin nbtinterfaces.Engine) (nbtinterfaces.Deserializer, bool) {
	if t.Kind() != reflect.Ptr {
		return nil, false
	}
	return &ptrDeserializer{elemType: t.Elem(), elem: ngin.GetDeserializer(t.Elem())}, true
}

type ptrSerializer struct {
	elem nbtinterfaces.Serializer
}

func (s *ptrSerializer) Serialize(w nbtinterfaces.Writer, v reflect.Value) error {
	if v.IsNil() {
		return errors.ErrNilValue
	}
	return s.elem.Serialize(w, v.Elem())
}

func (s *ptrSerializer) TagType() nbtinterfaces.TagType {
	return s.elem.TagType()
}

type ptrDeserializer struct {
	elemType reflect.Type
	elem     nbtinterfaces.Deserializer
}

func (d *ptrDeserializer) Deserialize(r nbtinterfaces.Reader, v reflect.Value) error {
	if v.IsNil() {
		v.Set(reflect.New(d.elemType))
	}
	return d.elem.Deserialize(r, v.Elem())
}
