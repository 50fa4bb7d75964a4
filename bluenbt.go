// Copyright (c) Blue (Lukas Rieger) <https://bluecolored.de>
// SPDX-License-Identifier: MIT

// Package bluenbt implements encoding and decoding of the NBT
// (Named Binary Tag) format used by Minecraft save data.
//
// The Reader/Writer types in this package offer low level streaming access
// to raw NBT data, but in most cases you will wish to use the higher level
// functions based upon reflection.
//
// The mapping from Go types to NBT tags is:
//
//	                  Go | NBT
//	---------------------+--------------------
//	         bool, int8  | Byte
//	              int16  | Short
//	              int32  | Int
//	         int64, int  | Long
//	uint8..uint64, uint  | Byte..Long (as their signed width)
//	            float32  | Float
//	            float64  | Double
//	             string  | String
//	      []byte, []int8 | ByteArray
//	            []int32  | IntArray
//	            []int64  | LongArray
//	     []T, [N]T else  | List of T's tag
//	      map[string]T,  |
//	        map[enum]T   | Compound
//	             struct  | Compound (one entry per exported field)
//	                 *T  | T (pointers are transparent; nil fields are
//	                     |    omitted)
//	                any  | by runtime type; decodes to a generic tree
//
// Reading is lenient where the format allows it: numeric fields accept any
// numeric tag (with narrowing casts) and String tags (parsed textually), the
// three dense array tags convert into one another, and unknown compound
// entries are skipped.
//
// Struct fields are bound by name. By default the NBT name is the field name
// as produced by the engine's NamingStrategy; the `nbt` struct tag overrides
// it:
//
//	type Section struct {
//	    Y           int32       `nbt:"Y"`
//	    BlockStates BlockStates `nbt:"block_states"`
//	    Skipped     int32       `nbt:"-"`
//	    Data        []int64     `nbt:"data,DataOld"` // DataOld read as alias
//	}
//
// Types may take over their own encoding by implementing the Marshaler and
// Unmarshaler interfaces, or be bound to custom adapters registered with an
// Engine. Registration order matters: factories registered later take
// precedence.
package bluenbt

import (
	nbtinterfaces "github.com/BlueMap-Minecraft/BlueNBT/interfaces"
	"github.com/BlueMap-Minecraft/BlueNBT/internal/coder"
)

// TagType is the type discriminator of a raw NBT tag
type TagType = nbtinterfaces.TagType

const (
	TagEnd       = nbtinterfaces.TagEnd
	TagByte      = nbtinterfaces.TagByte
	TagShort     = nbtinterfaces.TagShort
	TagInt       = nbtinterfaces.TagInt
	TagLong      = nbtinterfaces.TagLong
	TagFloat     = nbtinterfaces.TagFloat
	TagDouble    = nbtinterfaces.TagDouble
	TagByteArray = nbtinterfaces.TagByteArray
	TagString    = nbtinterfaces.TagString
	TagList      = nbtinterfaces.TagList
	TagCompound  = nbtinterfaces.TagCompound
	TagIntArray  = nbtinterfaces.TagIntArray
	TagLongArray = nbtinterfaces.TagLongArray
)

// interface Reader is the low level pull-style NBT decoder
type Reader = nbtinterfaces.Reader

// interface Writer is the low level push-style NBT encoder
type Writer = nbtinterfaces.Writer

// interface Serializer writes values of one Go type as NBT
type Serializer = nbtinterfaces.Serializer

// interface Deserializer reads values of one Go type from NBT
type Deserializer = nbtinterfaces.Deserializer

// interface Adapter combines a Serializer and Deserializer
type Adapter = nbtinterfaces.Adapter

// Factory interfaces; see the Engine registration methods
type (
	SerializerFactory      = nbtinterfaces.SerializerFactory
	DeserializerFactory    = nbtinterfaces.DeserializerFactory
	AdapterFactory         = nbtinterfaces.AdapterFactory
	InstanceCreator        = nbtinterfaces.InstanceCreator
	InstanceCreatorFactory = nbtinterfaces.InstanceCreatorFactory
	TypeResolver           = nbtinterfaces.TypeResolver
	TypeResolverFactory    = nbtinterfaces.TypeResolverFactory
)

// interface Marshaler is implemented by types which know how to write
// themselves as NBT
type Marshaler = nbtinterfaces.Marshaler

// interface Unmarshaler is implemented by types which know how to read
// themselves from NBT
type Unmarshaler = nbtinterfaces.Unmarshaler

// interface TagTyper declares the tag type a Marshaler writes
type TagTyper = nbtinterfaces.TagTyper

// interface PostDeserializer receives a callback after decoding
type PostDeserializer = nbtinterfaces.PostDeserializer

// interface Enum marks named integer types with a fixed symbol set
type Enum = nbtinterfaces.Enum

// NamingStrategy converts a struct field into its NBT name
type NamingStrategy = nbtinterfaces.NamingStrategy

// Engine is the (de)serialization facade holding the registered adapters
type Engine = coder.Engine

// The built-in naming strategies
var (
	FieldNameStrategy      = coder.FieldNameStrategy
	LowerCaseStrategy      = coder.LowerCaseStrategy
	UpperCaseStrategy      = coder.UpperCaseStrategy
	UpperCamelCaseStrategy = coder.UpperCamelCaseStrategy
	LowerCamelCaseStrategy = coder.LowerCamelCaseStrategy
)

// LowerCaseWithDelimiter produces lowercase-names-with-a-delimiter
func LowerCaseWithDelimiter(delimiter string) NamingStrategy {
	return coder.LowerCaseWithDelimiter(delimiter)
}

// UpperCaseWithDelimiter produces UPPERCASE-NAMES-WITH-A-DELIMITER
func UpperCaseWithDelimiter(delimiter string) NamingStrategy {
	return coder.UpperCaseWithDelimiter(delimiter)
}
