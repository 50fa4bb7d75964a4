// Copyright (c) Blue (Lukas Rieger) <https://bluecolored.de>
// SPDX-License-Identifier: MIT

package coder

import (
	"bufio"
	"bytes"
	"io"
	"reflect"
	"sync"

	nbtinterfaces "github.com/BlueMap-Minecraft/BlueNBT/interfaces"
	"github.com/BlueMap-Minecraft/BlueNBT/internal/errors"
)

// Engine is the (de)serialization facade: it holds the registered factories
// and resolves and caches one adapter per Go type.
//
// An Engine is safe for concurrent use. Completed cache entries are read
// lock-free; while an adapter for a type is under construction, lookups for
// the same type observe a placeholder that is completed exactly once
// (see future in codec_special.go), which also makes lookups for mutually
// recursive types terminate.
type Engine struct {
	mu sync.Mutex

	serializerFactories      []nbtinterfaces.SerializerFactory
	deserializerFactories    []nbtinterfaces.DeserializerFactory
	instanceCreatorFactories []nbtinterfaces.InstanceCreatorFactory
	typeResolverFactories    []nbtinterfaces.TypeResolverFactory

	serializers      sync.Map // reflect.Type -> nbtinterfaces.Serializer
	deserializers    sync.Map // reflect.Type -> nbtinterfaces.Deserializer
	instanceCreators sync.Map // reflect.Type -> nbtinterfaces.InstanceCreator
	typeResolvers    sync.Map // reflect.Type -> nbtinterfaces.TypeResolver

	namedSerializers   map[string]nbtinterfaces.Serializer
	namedDeserializers map[string]nbtinterfaces.Deserializer

	namingStrategy       nbtinterfaces.NamingStrategy
	fieldNameTransformer func(string) string
}

var _ nbtinterfaces.Engine = &Engine{}

// NewEngine constructs an Engine with the built-in adapter factories
// registered.
func NewEngine() *Engine {
	e := &Engine{
		namedSerializers:     make(map[string]nbtinterfaces.Serializer),
		namedDeserializers:   make(map[string]nbtinterfaces.Deserializer),
		namingStrategy:       FieldNameStrategy,
		fieldNameTransformer: upperFirstLetter,
	}

	// registered in reverse lookup order: later entries win
	e.Register(ptrFactory{})
	e.Register(primitiveFactory{})
	e.Register(stringFactory{})
	e.Register(arrayFactory{})
	e.Register(mapFactory{})
	e.Register(objectFactory{})
	e.Register(enumFactory{})
	e.Register(marshalerFactory{})

	return e
}

// Register appends an AdapterFactory to both the serializer and the
// deserializer factory list. Factories registered later take precedence over
// earlier ones; registering clears the adapter caches so that already
// resolved types observe the new factory as well.
func (e *Engine) Register(factory nbtinterfaces.AdapterFactory) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.serializerFactories = append(e.serializerFactories, factory)
	e.deserializerFactories = append(e.deserializerFactories, factory)
	clearCache(&e.serializers)
	clearCache(&e.deserializers)
}

func (e *Engine) RegisterSerializerFactory(factory nbtinterfaces.SerializerFactory) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.serializerFactories = append(e.serializerFactories, factory)
	clearCache(&e.serializers)
}

func (e *Engine) RegisterDeserializerFactory(factory nbtinterfaces.DeserializerFactory) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.deserializerFactories = append(e.deserializerFactories, factory)
	clearCache(&e.deserializers)
}

func (e *Engine) RegisterInstanceCreatorFactory(factory nbtinterfaces.InstanceCreatorFactory) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.instanceCreatorFactories = append(e.instanceCreatorFactories, factory)
	clearCache(&e.instanceCreators)
}

func (e *Engine) RegisterTypeResolverFactory(factory nbtinterfaces.TypeResolverFactory) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.typeResolverFactories = append(e.typeResolverFactories, factory)
	clearCache(&e.typeResolvers)
	clearCache(&e.deserializers)
}

// RegisterAdapter binds an adapter to one exact type, for both directions.
func (e *Engine) RegisterAdapter(t reflect.Type, adapter nbtinterfaces.Adapter) {
	e.Register(exactAdapterFactory{t, adapter})
}

// RegisterSerializer binds a serializer to one exact type.
func (e *Engine) RegisterSerializer(t reflect.Type, serializer nbtinterfaces.Serializer) {
	e.RegisterSerializerFactory(exactSerializerFactory{t, serializer})
}

// RegisterDeserializer binds a deserializer to one exact type.
func (e *Engine) RegisterDeserializer(t reflect.Type, deserializer nbtinterfaces.Deserializer) {
	e.RegisterDeserializerFactory(exactDeserializerFactory{t, deserializer})
}

// RegisterInstanceCreator binds an instance-creator to one exact type.
func (e *Engine) RegisterInstanceCreator(t reflect.Type, creator nbtinterfaces.InstanceCreator) {
	e.RegisterInstanceCreatorFactory(exactInstanceCreatorFactory{t, creator})
}

// RegisterTypeResolver binds a TypeResolver to one exact type: values of
// that type are parsed polymorphically as described on TypeResolver.
func (e *Engine) RegisterTypeResolver(t reflect.Type, resolver nbtinterfaces.TypeResolver) {
	e.RegisterTypeResolverFactory(exactTypeResolverFactory{t, resolver})
}

// RegisterNamedAdapter makes an adapter addressable from struct tags
// (`nbt:",adapter:NAME"`).
func (e *Engine) RegisterNamedAdapter(name string, adapter nbtinterfaces.Adapter) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.namedSerializers[name] = adapter
	e.namedDeserializers[name] = adapter
	clearCache(&e.serializers)
	clearCache(&e.deserializers)
}

// RegisterNamedSerializer makes a serializer addressable from struct tags
// (`nbt:",serializer:NAME"`).
func (e *Engine) RegisterNamedSerializer(name string, serializer nbtinterfaces.Serializer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.namedSerializers[name] = serializer
	clearCache(&e.serializers)
}

// RegisterNamedDeserializer makes a deserializer addressable from struct
// tags (`nbt:",deserializer:NAME"`).
func (e *Engine) RegisterNamedDeserializer(name string, deserializer nbtinterfaces.Deserializer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.namedDeserializers[name] = deserializer
	clearCache(&e.deserializers)
}

// SetNamingStrategy changes the strategy used to derive NBT names from
// struct fields. Adapters already built keep the strategy they were built
// with.
func (e *Engine) SetNamingStrategy(strategy nbtinterfaces.NamingStrategy) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.namingStrategy = strategy
	clearCache(&e.serializers)
	clearCache(&e.deserializers)
}

// SetFieldNameTransformer changes the fallback transformation applied to
// incoming compound names that matched no field directly.
func (e *Engine) SetFieldNameTransformer(transformer func(string) string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fieldNameTransformer = transformer
}

func (e *Engine) NamingStrategy() nbtinterfaces.NamingStrategy {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.namingStrategy
}

func (e *Engine) FieldNameTransformer() func(string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fieldNameTransformer
}

func (e *Engine) LookupNamedSerializer(name string) (nbtinterfaces.Serializer, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.namedSerializers[name]
	return s, ok
}

func (e *Engine) LookupNamedDeserializer(name string) (nbtinterfaces.Deserializer, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	d, ok := e.namedDeserializers[name]
	return d, ok
}

// GetSerializer returns the serializer for t, constructing and caching it on
// first use. Errors during construction are embedded into the returned
// serializer and surface on its first use.
func (e *Engine) GetSerializer(t reflect.Type) nbtinterfaces.Serializer {
	if s, ok := e.serializers.Load(t); ok {
		return s.(nbtinterfaces.Serializer)
	}

	// Install a placeholder first: requests for the same type during
	// construction (recursive type graphs, concurrent lookups) get the
	// placeholder and proceed.
	fs := newFutureSerializer()
	if actual, loaded := e.serializers.LoadOrStore(t, fs); loaded {
		return actual.(nbtinterfaces.Serializer)
	}

	s := e.buildSerializer(t)
	e.serializers.Store(t, s)
	fs.resolve(s)
	return s
}

// GetDeserializer returns the deserializer for t, constructing and caching
// it on first use.
func (e *Engine) GetDeserializer(t reflect.Type) nbtinterfaces.Deserializer {
	if d, ok := e.deserializers.Load(t); ok {
		return d.(nbtinterfaces.Deserializer)
	}

	fd := newFutureDeserializer()
	if actual, loaded := e.deserializers.LoadOrStore(t, fd); loaded {
		return actual.(nbtinterfaces.Deserializer)
	}

	d := e.buildDeserializer(t)
	e.deserializers.Store(t, d)
	fd.resolve(d)
	return d
}

// GetInstanceCreator returns the instance-creator for t, constructing and
// caching it on first use.
func (e *Engine) GetInstanceCreator(t reflect.Type) nbtinterfaces.InstanceCreator {
	if c, ok := e.instanceCreators.Load(t); ok {
		return c.(nbtinterfaces.InstanceCreator)
	}

	fc := newFutureInstanceCreator()
	if actual, loaded := e.instanceCreators.LoadOrStore(t, fc); loaded {
		return actual.(nbtinterfaces.InstanceCreator)
	}

	c := e.buildInstanceCreator(t)
	e.instanceCreators.Store(t, c)
	fc.resolve(c)
	return c
}

// LookupTypeResolver returns the TypeResolver for t, if one is registered.
func (e *Engine) LookupTypeResolver(t reflect.Type) (nbtinterfaces.TypeResolver, bool) {
	if r, ok := e.typeResolvers.Load(t); ok {
		if r == nil {
			return nil, false
		}
		return r.(nbtinterfaces.TypeResolver), true
	}

	for _, factory := range reversed(e.snapshotTypeResolverFactories()) {
		if r, ok := factory.CreateTypeResolver(t, e); ok {
			e.typeResolvers.Store(t, r)
			return r, true
		}
	}

	e.typeResolvers.Store(t, nil)
	return nil, false
}

func (e *Engine) buildSerializer(t reflect.Type) nbtinterfaces.Serializer {
	for _, factory := range reversed(e.snapshotSerializerFactories()) {
		if s, ok := factory.CreateSerializer(t, e); ok {
			return s
		}
	}
	return e.defaultAdapter(t)
}

func (e *Engine) buildDeserializer(t reflect.Type) nbtinterfaces.Deserializer {
	// a registered TypeResolver replaces the regular deserializer
	if resolver, ok := e.LookupTypeResolver(t); ok {
		return &resolverDeserializer{ngin: e, resolver: resolver, target: t}
	}

	for _, factory := range reversed(e.snapshotDeserializerFactories()) {
		if d, ok := factory.CreateDeserializer(t, e); ok {
			return d
		}
	}
	return e.defaultAdapter(t)
}

// defaultAdapter is the built-in fallback after all factories have declined:
// the reflective struct adapter, or a memoised error for types with no NBT
// representation.
func (e *Engine) defaultAdapter(t reflect.Type) nbtinterfaces.Adapter {
	switch t.Kind() {
	case reflect.Struct:
		return newStructAdapter(t, e)
	case reflect.Map:
		return &errorAdapter{errors.UnsupportedKeyTypeError{T: t.Key()}}
	default:
		return &errorAdapter{errors.InvalidTypeError{T: t}}
	}
}

func (e *Engine) buildInstanceCreator(t reflect.Type) nbtinterfaces.InstanceCreator {
	for _, factory := range reversed(e.snapshotInstanceCreatorFactories()) {
		if c, ok := factory.CreateInstanceCreator(t, e); ok {
			return c
		}
	}
	return defaultInstanceCreator(t)
}

func (e *Engine) snapshotSerializerFactories() []nbtinterfaces.SerializerFactory {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.serializerFactories[:len(e.serializerFactories):len(e.serializerFactories)]
}

func (e *Engine) snapshotDeserializerFactories() []nbtinterfaces.DeserializerFactory {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.deserializerFactories[:len(e.deserializerFactories):len(e.deserializerFactories)]
}

func (e *Engine) snapshotInstanceCreatorFactories() []nbtinterfaces.InstanceCreatorFactory {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.instanceCreatorFactories[:len(e.instanceCreatorFactories):len(e.instanceCreatorFactories)]
}

func (e *Engine) snapshotTypeResolverFactories() []nbtinterfaces.TypeResolverFactory {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.typeResolverFactories[:len(e.typeResolverFactories):len(e.typeResolverFactories)]
}

// Marshal serializes v into the returned buffer as a complete NBT document.
func (e *Engine) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := e.Write(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal deserializes a complete NBT document into the object pointed to
// by vp.
func (e *Engine) Unmarshal(data []byte, vp any) error {
	return e.ReadNBT(NewReaderBytes(data), vp)
}

var writerPool = sync.Pool{
	New: func() any {
		return bufio.NewWriter(nil)
	},
}

// Write serializes v into the passed writer as a complete NBT document.
func (e *Engine) Write(w io.Writer, v any) error {
	switch w.(type) {
	case *bytes.Buffer, *bufio.Writer:
		// already buffered
		return e.WriteNBT(NewWriter(w), v)
	}

	bw := writerPool.Get().(*bufio.Writer)
	bw.Reset(w)
	err := e.WriteNBT(NewWriter(bw), v)
	if err == nil {
		err = bw.Flush()
	}
	bw.Reset(nil)
	writerPool.Put(bw)
	return err
}

// WriteNBT serializes v into the passed NBT writer.
func (e *Engine) WriteNBT(w nbtinterfaces.Writer, v any) error {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return errors.ErrNilValue
	}
	return e.GetSerializer(rv.Type()).Serialize(w, rv)
}

// Read deserializes a complete NBT document out of the passed reader into
// the object pointed to by vp.
func (e *Engine) Read(r io.Reader, vp any) error {
	return e.ReadNBT(NewReader(r), vp)
}

// ReadNBT deserializes out of the passed NBT reader into the object pointed
// to by vp.
func (e *Engine) ReadNBT(r nbtinterfaces.Reader, vp any) error {
	rv := reflect.ValueOf(vp)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return errors.ErrNotPointer
	}
	return e.GetDeserializer(rv.Type().Elem()).Deserialize(r, rv.Elem())
}

func clearCache(m *sync.Map) {
	m.Range(func(key, _ any) bool {
		m.Delete(key)
		return true
	})
}

func reversed[T any](s []T) []T {
	out := make([]T, len(s))
	for i, v := range s {
		out[len(s)-1-i] = v
	}
	return out
}

// exact-match factories back the per-type Register* methods

type exactAdapterFactory struct {
	t       reflect.Type
	adapter nbtinterfaces.Adapter
}

func (f exactAdapterFactory) CreateSerializer(t reflect.Type, ngin nbtinterfaces.Engine) (nbtinterfaces.Serializer, bool) {
	if t != f.t {
		return nil, false
	}
	return f.adapter, true
}

func (f exactAdapterFactory) CreateDeserializer(t reflect.Type, ngin nbtinterfaces.Engine) (nbtinterfaces.Deserializer, bool) {
	if t != f.t {
		return nil, false
	}
	return f.adapter, true
}

type exactSerializerFactory struct {
	t reflect.Type
	s nbtinterfaces.Serializer
}

func (f exactSerializerFactory) CreateSerializer(t reflect.Type, ngin nbtinterfaces.Engine) (nbtinterfaces.Serializer, bool) {
	if t != f.t {
		return nil, false
	}
	return f.s, true
}

type exactDeserializerFactory struct {
	t reflect.Type
	d nbtinterfaces.Deserializer
}

func (f exactDeserializerFactory) CreateDeserializer(t reflect.Type, ngin nbtinterfaces.Engine) (nbtinterfaces.Deserializer, bool) {
	if t != f.t {
		return nil, false
	}
	return f.d, true
}

type exactInstanceCreatorFactory struct {
	t reflect.Type
	c nbtinterfaces.InstanceCreator
}

func (f exactInstanceCreatorFactory) CreateInstanceCreator(t reflect.Type, ngin nbtinterfaces.Engine) (nbtinterfaces.InstanceCreator, bool) {
	if t != f.t {
		return nil, false
	}
	return f.c, true
}

type exactTypeResolverFactory struct {
	t reflect.Type
	r nbtinterfaces.TypeResolver
}

func (f exactTypeResolverFactory) CreateTypeResolver(t reflect.Type, ngin nbtinterfaces.Engine) (nbtinterfaces.TypeResolver, bool) {
	if t != f.t {
		return nil, false
	}
	return f.r, true
}
