// Copyright (c) Blue (Lukas Rieger) <https://bluecolored.de>
// SPDX-License-Identifier: MIT

// Package nbtinterfaces defines the primary interfaces of the NBT engine
//
// (This package is primarily separated out in order to permit the implementation to
// be broken down into multiple packages)
package nbtinterfaces

import (
	"reflect"
)

// TagType is the type discriminator of a raw NBT tag. Its numeric value is
// the id byte persisted on the wire.
type TagType byte

const (
	TagEnd TagType = iota
	TagByte
	TagShort
	TagInt
	TagLong
	TagFloat
	TagDouble
	TagByteArray
	TagString
	TagList
	TagCompound
	TagIntArray
	TagLongArray
)

// NumTagTypes is the number of defined tag types (valid ids are 0..NumTagTypes-1).
const NumTagTypes = 13

var tagTypeNames = [NumTagTypes]string{
	"End", "Byte", "Short", "Int", "Long", "Float", "Double",
	"ByteArray", "String", "List", "Compound", "IntArray", "LongArray",
}

var tagTypeSizes = [NumTagTypes]int{
	-1, 1, 2, 4, 8, 4, 8,
	-1, -1, -1, -1, -1, -1,
}

// Valid reports whether t is one of the 13 defined tag types.
func (t TagType) Valid() bool {
	return int(t) < NumTagTypes
}

// Size returns the fixed payload size of this tag type in bytes,
// or -1 if the payload size is not fixed.
func (t TagType) Size() int {
	if !t.Valid() {
		return -1
	}
	return tagTypeSizes[t]
}

func (t TagType) String() string {
	if !t.Valid() {
		return "Invalid"
	}
	return tagTypeNames[t]
}

// interface Reader is the interface to the NBT reader: a pull-style,
// big-endian structured decoder over a byte stream.
//
// A Reader is a state machine enforcing the structure of the NBT format:
// values may only be read in the order they appear on the wire, compounds and
// lists must be explicitly entered and left, and every read asserts the tag
// type found on the stream.
type Reader interface {
	// Peek returns the tag type of the next element without consuming its value.
	Peek() (TagType, error)

	// Name returns the name of the next element. Inside a list (where elements
	// are unnamed), or when the next element is an End tag, a sentinel name is
	// returned. The name remains readable until the value is consumed.
	Name() (string, error)

	// BeginCompound enters the compound element at the current position.
	BeginCompound() error

	// EndCompound consumes the End tag terminating the current compound and
	// leaves it.
	EndCompound() error

	// BeginList enters the list element at the current position and returns
	// its declared length.
	BeginList() (int, error)

	// EndList leaves the current (fully read) list.
	EndList() error

	// HasNext reports whether the current compound or list has more elements.
	HasNext() (bool, error)

	NextByte() (int8, error)
	NextShort() (int16, error)
	NextInt() (int32, error)
	NextLong() (int64, error)
	NextFloat() (float32, error)
	NextDouble() (float64, error)
	NextString() (string, error)
	NextByteArray() ([]byte, error)
	NextIntArray() ([]int32, error)
	NextLongArray() ([]int64, error)

	// NextByteArrayInto reads a byte-array into the provided buffer, skipping
	// any excess data, and returns the length of the data on the wire.
	NextByteArrayInto(buffer []byte) (int, error)
	NextIntArrayInto(buffer []int32) (int, error)
	NextLongArrayInto(buffer []int64) (int, error)

	// NextArrayAsByteArray reads any array type (ByteArray, IntArray or
	// LongArray) and returns it as a byte slice, narrowing as needed.
	NextArrayAsByteArray() ([]byte, error)
	NextArrayAsIntArray() ([]int32, error)
	NextArrayAsLongArray() ([]int64, error)

	// Raw reads the entire next element and returns it as raw nbt-data,
	// including its leading tag-id byte and name (synthesized from already
	// parsed state if they were consumed by Peek/Name).
	Raw() ([]byte, error)

	// Skip skips over the next element. If out is greater than zero it also
	// skips out of that many enclosing compounds or lists, consuming their
	// remaining elements.
	Skip(out int) error

	// RemainingListItems returns the number of unread elements of the
	// current list.
	RemainingListItems() int

	InCompound() bool
	InList() bool

	// Path returns a navigable path of the current position, for diagnostics.
	Path() string
}

// interface Writer is the interface to the NBT writer: a push-style encoder
// mirroring Reader.
type Writer interface {
	// Name sets the name for the next value. Required before every value in a
	// compound, an error inside a list. At root level the name defaults to
	// the empty string.
	Name(name string) error

	BeginCompound() error
	EndCompound() error

	// BeginList starts a list of the given length. The element type is pinned
	// by the first value written; an empty list requires BeginTypedList.
	BeginList(length int) error

	// BeginTypedList starts a list with an explicit element type. The element
	// type End is only permitted together with length zero.
	BeginTypedList(length int, elem TagType) error

	EndList() error

	WriteByte(v int8) error
	WriteShort(v int16) error
	WriteInt(v int32) error
	WriteLong(v int64) error
	WriteFloat(v float32) error
	WriteDouble(v float64) error
	WriteString(v string) error
	WriteByteArray(v []byte) error
	WriteIntArray(v []int32) error
	WriteLongArray(v []int64) error

	InCompound() bool
	InList() bool

	// Close verifies that the document is complete (no open compounds or
	// lists) and closes the underlying writer if it is an io.Closer.
	Close() error
}

// interface Serializer describes how values of one Go type are written as
// NBT. Implementations are usually obtained from (or registered with) an
// Engine.
type Serializer interface {
	// Serialize writes v to w as a single element.
	Serialize(w Writer, v reflect.Value) error

	// TagType returns the outermost tag type this serializer produces, or
	// TagEnd if it cannot be determined statically.
	TagType() TagType
}

// interface Deserializer describes how values of one Go type are read from
// NBT. v must be settable (v.CanSet() is true).
type Deserializer interface {
	Deserialize(r Reader, v reflect.Value) error
}

// interface Adapter combines a Serializer and a Deserializer for one type.
type Adapter interface {
	Serializer
	Deserializer
}

// interface SerializerFactory creates Serializers for types it supports.
// Returning false passes the type on to the next registered factory.
type SerializerFactory interface {
	CreateSerializer(t reflect.Type, ngin Engine) (Serializer, bool)
}

// interface DeserializerFactory creates Deserializers for types it supports.
type DeserializerFactory interface {
	CreateDeserializer(t reflect.Type, ngin Engine) (Deserializer, bool)
}

// interface AdapterFactory serves both directions at once; registering one
// appends it to both factory lists of the Engine.
type AdapterFactory interface {
	SerializerFactory
	DeserializerFactory
}

// interface InstanceCreator produces fresh, usable instances of one type,
// used by the reflective deserializer.
type InstanceCreator interface {
	// New returns a pointer-value to a freshly created instance
	// (reflect.Value of kind Ptr with a settable Elem).
	New() (reflect.Value, error)
}

// interface InstanceCreatorFactory creates InstanceCreators for types it
// supports.
type InstanceCreatorFactory interface {
	CreateInstanceCreator(t reflect.Type, ngin Engine) (InstanceCreator, bool)
}

// interface TypeResolver implements polymorphic decoding: the data is first
// parsed as the base type, then the resolver picks the concrete type for the
// final parse.
type TypeResolver interface {
	// BaseType is the type the raw data is parsed as to decide the
	// concrete type.
	BaseType() reflect.Type

	// PossibleTypes enumerates the concrete types Resolve may return.
	PossibleTypes() []reflect.Type

	// Resolve picks the concrete type for the parsed base value. Returning
	// nil (or the requested type itself) keeps the parsed base value as the
	// result; it must then be assignable to the requested type.
	Resolve(base reflect.Value) reflect.Type

	// OnError is called when parsing the base type or the resolved type
	// failed. It may recover with a replacement value; returning a non-nil
	// error propagates the failure. base is the zero Value if the base type
	// itself could not be parsed.
	OnError(err error, base reflect.Value) (reflect.Value, error)
}

// interface TypeResolverFactory creates TypeResolvers for types it supports.
type TypeResolverFactory interface {
	CreateTypeResolver(t reflect.Type, ngin Engine) (TypeResolver, bool)
}

// NamingStrategy converts a struct field into the NBT name used when
// (de)serializing it.
type NamingStrategy func(field reflect.StructField) string

// interface Engine is the handle the factories receive: it provides access
// to the adapters of other types (for element and field types) and to the
// engine configuration.
type Engine interface {
	GetSerializer(t reflect.Type) Serializer
	GetDeserializer(t reflect.Type) Deserializer
	GetInstanceCreator(t reflect.Type) InstanceCreator

	// LookupTypeResolver returns the TypeResolver registered for t, if any.
	LookupTypeResolver(t reflect.Type) (TypeResolver, bool)

	// LookupNamedSerializer resolves a named adapter pin from a struct tag.
	LookupNamedSerializer(name string) (Serializer, bool)
	LookupNamedDeserializer(name string) (Deserializer, bool)

	NamingStrategy() NamingStrategy

	// FieldNameTransformer is applied to incoming compound names that did not
	// match any field directly, before giving up on them.
	FieldNameTransformer() func(string) string
}

// interface Marshaler is implemented by types which know how to write
// themselves as NBT. It replaces the built-in serializer for the type.
type Marshaler interface {
	MarshalNBT(w Writer) error
}

// interface Unmarshaler is implemented by types which know how to read
// themselves from NBT. It replaces the built-in deserializer for the type.
type Unmarshaler interface {
	UnmarshalNBT(r Reader) error
}

// interface TagTyper may additionally be implemented by a Marshaler to
// declare the outermost tag type it writes (needed e.g. for empty lists of
// such values). Defaults to Compound otherwise.
type TagTyper interface {
	NBTTagType() TagType
}

// interface PostDeserializer is implemented by types that want a callback
// after the reflective deserializer has populated all fields.
type PostDeserializer interface {
	PostDeserializeNBT() error
}

// interface Enum is implemented by named integer types with a fixed set of
// symbolic values. The value itself is the ordinal index into EnumNames.
// Enums serialize as String tags of their symbolic name and accept either a
// name or an ordinal when deserializing. Enum values may also be used as map
// keys.
type Enum interface {
	// EnumNames returns the symbolic names in declaration order.
	EnumNames() []string
}
