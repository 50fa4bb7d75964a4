// Copyright (c) Blue (Lukas Rieger) <https://bluecolored.de>
// SPDX-License-Identifier: MIT

package coder

import (
	"reflect"
	"sync"
	"sync/atomic"

	nbtinterfaces "github.com/BlueMap-Minecraft/BlueNBT/interfaces"
)

// errorAdapter embeds a fixed, memoised error (generally indicating that a
// type can't be (de)serialized)
type errorAdapter struct {
	err error
}

var _ nbtinterfaces.Adapter = &errorAdapter{}

func (a *errorAdapter) Serialize(w nbtinterfaces.Writer, v reflect.Value) error {
	return a.err
}

func (a *errorAdapter) Deserialize(r nbtinterfaces.Reader, v reflect.Value) error {
	return a.err
}

func (a *errorAdapter) TagType() nbtinterfaces.TagType {
	return nbtinterfaces.TagEnd
}

// errorInstanceCreator is the instance-creator analogue of errorAdapter
type errorInstanceCreator struct {
	err error
}

func (c *errorInstanceCreator) New() (reflect.Value, error) {
	return reflect.Value{}, c.err
}

// future is the placeholder installed in a cache while the real entry is
// under construction, so that lookups for mutually recursive types
// terminate. Note that another goroutine may be constructing a related type
// or looking this one up simultaneously, so a future must be safe to call
// while being completed: every call blocks until the real entry is in place,
// and completion is monotonic (set once, never mutated).
type future struct {
	real atomic.Value
	wg   sync.WaitGroup
}

func (f *future) resolve(real any) {
	f.real.Store(real)
	f.wg.Done()
}

func (f *future) get() any {
	real := f.real.Load()
	if real == nil {
		f.wg.Wait()
		real = f.real.Load()
	}
	return real
}

type futureSerializer struct{ future }

var _ nbtinterfaces.Serializer = &futureSerializer{}

func newFutureSerializer() *futureSerializer {
	f := new(futureSerializer)
	f.wg.Add(1)
	return f
}

func (f *futureSerializer) Serialize(w nbtinterfaces.Writer, v reflect.Value) error {
	return f.get().(nbtinterfaces.Serializer).Serialize(w, v)
}

func (f *futureSerializer) TagType() nbtinterfaces.TagType {
	return f.get().(nbtinterfaces.Serializer).TagType()
}

type futureDeserializer struct{ future }

var _ nbtinterfaces.Deserializer = &futureDeserializer{}

func newFutureDeserializer() *futureDeserializer {
	f := new(futureDeserializer)
	f.wg.Add(1)
	return f
}

func (f *futureDeserializer) Deserialize(r nbtinterfaces.Reader, v reflect.Value) error {
	return f.get().(nbtinterfaces.Deserializer).Deserialize(r, v)
}

type futureInstanceCreator struct{ future }

var _ nbtinterfaces.InstanceCreator = &futureInstanceCreator{}

func newFutureInstanceCreator() *futureInstanceCreator {
	f := new(futureInstanceCreator)
	f.wg.Add(1)
	return f
}

func (f *futureInstanceCreator) New() (reflect.Value, error) {
	return f.get().(nbtinterfaces.InstanceCreator).New()
}

// marshalerFactory serves types which know how to (de)serialize themselves
var (
	marshalerType        = reflect.TypeOf((*nbtinterfaces.Marshaler)(nil)).Elem()
	unmarshalerType      = reflect.TypeOf((*nbtinterfaces.Unmarshaler)(nil)).Elem()
	tagTyperType         = reflect.TypeOf((*nbtinterfaces.TagTyper)(nil)).Elem()
	postDeserializerType = reflect.TypeOf((*nbtinterfaces.PostDeserializer)(nil)).Elem()
	enumType             = reflect.TypeOf((*nbtinterfaces.Enum)(nil)).Elem()
)

type marshalerFactory struct{}

func (marshalerFactory) CreateSerializer(t reflect.Type, ngin nbtinterfaces.Engine) (nbtinterfaces.Serializer, bool) {
	if t.Kind() == reflect.Ptr || !t.Implements(marshalerType) && !reflect.PtrTo(t).Implements(marshalerType) {
		return nil, false
	}
	return &marshalerSerializer{t}, true
}

func (marshalerFactory) CreateDeserializer(t reflect.Type, ngin nbtinterfaces.Engine) (nbtinterfaces.Deserializer, bool) {
	if t.Kind() == reflect.Ptr || !reflect.PtrTo(t).Implements(unmarshalerType) {
		return nil, false
	}
	return &marshalerDeserializer{}, true
}

type marshalerSerializer struct {
	t reflect.Type
}

func (s *marshalerSerializer) Serialize(w nbtinterfaces.Writer, v reflect.Value) error {
	m, ok := v.Interface().(nbtinterfaces.Marshaler)
	if !ok {
		// value receiver not implementing, method is on the pointer
		if v.CanAddr() {
			m = v.Addr().Interface().(nbtinterfaces.Marshaler)
		} else {
			p := reflect.New(v.Type())
			p.Elem().Set(v)
			m = p.Interface().(nbtinterfaces.Marshaler)
		}
	}
	return m.MarshalNBT(w)
}

func (s *marshalerSerializer) TagType() nbtinterfaces.TagType {
	if s.t.Implements(tagTyperType) {
		return reflect.Zero(s.t).Interface().(nbtinterfaces.TagTyper).NBTTagType()
	}
	if reflect.PtrTo(s.t).Implements(tagTyperType) {
		return reflect.New(s.t).Interface().(nbtinterfaces.TagTyper).NBTTagType()
	}
	return nbtinterfaces.TagCompound
}

type marshalerDeserializer struct{}

func (d *marshalerDeserializer) Deserialize(r nbtinterfaces.Reader, v reflect.Value) error {
	if v.CanAddr() {
		return v.Addr().Interface().(nbtinterfaces.Unmarshaler).UnmarshalNBT(r)
	}
	p := reflect.New(v.Type())
	if err := p.Interface().(nbtinterfaces.Unmarshaler).UnmarshalNBT(r); err != nil {
		return err
	}
	v.Set(p.Elem())
	return nil
}
