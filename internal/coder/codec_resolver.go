// Copyright (c) Blue (Lukas Rieger) <https://bluecolored.de>
// SPDX-License-Identifier: MIT

package coder

import (
	"fmt"
	"reflect"

	nbtinterfaces "github.com/BlueMap-Minecraft/BlueNBT/interfaces"
	"github.com/BlueMap-Minecraft/BlueNBT/internal/errors"
)

// resolverDeserializer implements polymorphic decoding for a type with a
// registered TypeResolver: the element's raw bytes are captured once, parsed
// as the resolver's base type, and then parsed a second time as the concrete
// type the resolver picked.
type resolverDeserializer struct {
	ngin     *Engine
	resolver nbtinterfaces.TypeResolver
	target   reflect.Type
}

var _ nbtinterfaces.Deserializer = &resolverDeserializer{}

func (d *resolverDeserializer) Deserialize(r nbtinterfaces.Reader, v reflect.Value) error {
	raw, err := r.Raw()
	if err != nil {
		return err
	}

	baseType := d.resolver.BaseType()
	base := reflect.New(baseType).Elem()
	if err := d.ngin.GetDeserializer(baseType).Deserialize(NewReaderBytes(raw), base); err != nil {
		return d.recover(err, reflect.Value{}, v)
	}

	resolved := d.resolver.Resolve(base)
	if resolved == nil || resolved == d.target {
		// nothing more specific: keep the base value if it fits
		return assignResolved(v, base)
	}

	out := reflect.New(resolved).Elem()
	if err := d.ngin.GetDeserializer(resolved).Deserialize(NewReaderBytes(raw), out); err != nil {
		return d.recover(err, base, v)
	}
	return assignResolved(v, out)
}

// recover gives the resolver's OnError hook a chance to substitute a
// replacement value; this is the only sanctioned error-recovery point.
func (d *resolverDeserializer) recover(err error, base reflect.Value, v reflect.Value) error {
	replacement, rerr := d.resolver.OnError(err, base)
	if rerr != nil {
		return rerr
	}
	return assignResolved(v, replacement)
}

func assignResolved(v reflect.Value, out reflect.Value) error {
	if !out.IsValid() {
		v.Set(reflect.Zero(v.Type()))
		return nil
	}
	if !out.Type().AssignableTo(v.Type()) {
		return errors.CorruptDataError{
			Reason: fmt.Sprintf("resolved type '%s' is not assignable to '%s'", out.Type(), v.Type()),
		}
	}
	v.Set(out)
	return nil
}
