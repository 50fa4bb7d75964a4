// Copyright (c) Blue (Lukas Rieger) <https://bluecolored.de>
// SPDX-License-Identifier: MIT

package coder

import (
	"reflect"

	"github.com/modern-go/reflect2"

	nbtinterfaces "github.com/BlueMap-Minecraft/BlueNBT/interfaces"
	"github.com/BlueMap-Minecraft/BlueNBT/internal/errors"
)

// creatorFunc adapts a plain function to the InstanceCreator interface
type creatorFunc func() (reflect.Value, error)

func (f creatorFunc) New() (reflect.Value, error) {
	return f()
}

// defaultInstanceCreator is the built-in fallback after all registered
// instance-creator factories have declined: containers get a usable empty
// instance, everything concrete is allocated without invoking any
// constructor. For types that can not be instantiated (interfaces without a
// registered creator or resolver, functions, channels) a creator is still
// returned; it fails with NoConstructorError each time New is called.
func defaultInstanceCreator(t reflect.Type) nbtinterfaces.InstanceCreator {
	switch t.Kind() {
	case reflect.Interface, reflect.Func, reflect.Chan:
		return &errorInstanceCreator{errors.NoConstructorError{T: t}}

	case reflect.Map:
		return creatorFunc(func() (reflect.Value, error) {
			p := reflect.New(t)
			p.Elem().Set(reflect.MakeMap(t))
			return p, nil
		})

	case reflect.Slice:
		return creatorFunc(func() (reflect.Value, error) {
			p := reflect.New(t)
			p.Elem().Set(reflect.MakeSlice(t, 0, 0))
			return p, nil
		})

	default:
		// constructor-less zeroed allocation
		t2 := reflect2.Type2(t)
		return creatorFunc(func() (reflect.Value, error) {
			return reflect.NewAt(t, t2.UnsafeNew()), nil
		})
	}
}
