// Copyright (c) Blue (Lukas Rieger) <https://bluecolored.de>
// SPDX-License-Identifier: MIT

package bluenbt

import (
	"io"
	"reflect"

	nbtinterfaces "github.com/BlueMap-Minecraft/BlueNBT/interfaces"
	"github.com/BlueMap-Minecraft/BlueNBT/internal/coder"
)

// The default engine (used by the package global functions). Registrations
// on it affect every user of the package level functions; libraries should
// create their own engine with NewEngine instead.
var DefaultEngine = coder.NewEngine()

// Marshal serializes v into the returned buffer as a complete NBT document
func Marshal(v any) ([]byte, error) {
	return DefaultEngine.Marshal(v)
}

// Unmarshal deserializes a complete NBT document into the object pointed to
// by vp
func Unmarshal(data []byte, vp any) error {
	return DefaultEngine.Unmarshal(data, vp)
}

// Write serializes v into the passed writer as a complete NBT document
func Write(w io.Writer, v any) error {
	return DefaultEngine.Write(w, v)
}

// Read deserializes a complete NBT document out of the passed reader into
// the object pointed to by vp
func Read(r io.Reader, vp any) error {
	return DefaultEngine.Read(r, vp)
}

// NewReader constructs a Reader decoding raw (uncompressed) NBT data from r
func NewReader(r io.Reader) Reader {
	return coder.NewReader(r)
}

// NewReaderBytes constructs a Reader decoding the given raw NBT data
func NewReaderBytes(data []byte) Reader {
	return coder.NewReaderBytes(data)
}

// NewWriter constructs a Writer emitting raw (uncompressed) NBT data to w
func NewWriter(w io.Writer) Writer {
	return coder.NewWriter(w)
}

// NewEngine constructs a new Engine with the built-in adapters registered
func NewEngine() *Engine {
	return coder.NewEngine()
}

// TypeOf is a convenience shorthand for reflect.TypeOf for use with the
// Engine registration methods; TypeOf[[]string]() replaces Java-style type
// token construction.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

var _ nbtinterfaces.Engine = DefaultEngine
