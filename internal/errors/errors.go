// Copyright (c) Blue (Lukas Rieger) <https://bluecolored.de>
// SPDX-License-Identifier: MIT

package errors

import (
	"fmt"
	"reflect"
	"strings"

	nbtinterfaces "github.com/BlueMap-Minecraft/BlueNBT/interfaces"
)

type nbtError string

func (e nbtError) Error() string {
	return string(e)
}

const (
	// Stream ended in the middle of a token or payload
	ErrUnexpectedEnd = nbtError("nbt: unexpected end of stream")

	// String payload was not valid modified UTF-8
	ErrInvalidUTF8 = nbtError("nbt: invalid modified UTF-8 string")

	// A string longer than 65535 encoded bytes cannot be written
	ErrStringTooLong = nbtError("nbt: string too long")

	// Writer received a name in a list context, a second name, or a value
	// in a compound without a preceding name
	ErrNameOutOfPlace = nbtError("nbt: name out of place")

	// Writer was closed while compounds or lists were still open
	ErrIncompleteDocument = nbtError("nbt: incomplete document")

	// Writer finished an empty list without an explicit element type
	ErrEmptyListType = nbtError("nbt: empty list requires an explicit element type")

	// Attempt to skip an End tag
	ErrSkipEnd = nbtError("nbt: can not skip End tag")

	// Unmarshal expected a non-nil pointer parameter
	ErrNotPointer = nbtError("nbt: expected non-nil pointer parameter")

	// Marshal received an untyped nil value
	ErrNilValue = nbtError("nbt: can not serialize nil value")
)

// UnexpectedKindError is returned when a read asserts a tag type other than
// the one found on the stream, or a write does not match the pinned element
// type of a list.
type UnexpectedKindError struct {
	Expected, Found nbtinterfaces.TagType
	Path            string
}

func (e UnexpectedKindError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("nbt: expected type %s but got %s", e.Expected, e.Found)
	}
	return fmt.Sprintf("nbt: expected type %s but got %s (at %s)", e.Expected, e.Found, e.Path)
}

// InvalidTagIDError is returned when a byte outside 0..12 appears where a
// tag id is expected.
type InvalidTagIDError struct {
	ID byte
}

func (e InvalidTagIDError) Error() string {
	return fmt.Sprintf("nbt: there is no tag type for id %d", e.ID)
}

// NegativeLengthError is returned for arrays, strings or lists whose length
// field is below zero.
type NegativeLengthError struct {
	Length int
	Path   string
}

func (e NegativeLengthError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("nbt: negative length %d", e.Length)
	}
	return fmt.Sprintf("nbt: negative length %d (at %s)", e.Length, e.Path)
}

// ContextMismatchError is returned when a compound or list is ended at the
// wrong place.
type ContextMismatchError struct {
	Op   string
	Path string
}

func (e ContextMismatchError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("nbt: %s", e.Op)
	}
	return fmt.Sprintf("nbt: %s (at %s)", e.Op, e.Path)
}

// CorruptDataError is the catch-all for adapter-detected inconsistencies in
// otherwise well-formed data.
type CorruptDataError struct {
	Reason string
	Path   string
}

func (e CorruptDataError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("nbt: corrupt data: %s", e.Reason)
	}
	return fmt.Sprintf("nbt: corrupt data: %s (at %s)", e.Reason, e.Path)
}

// InvalidTypeError is returned for Go types that have no NBT representation.
type InvalidTypeError struct {
	T reflect.Type
}

func (e InvalidTypeError) Error() string {
	return fmt.Sprintf("nbt: type '%s' unsupported", e.T)
}

// UnsupportedKeyTypeError is returned for map types whose key is neither a
// string nor an enum.
type UnsupportedKeyTypeError struct {
	T reflect.Type
}

func (e UnsupportedKeyTypeError) Error() string {
	return fmt.Sprintf("nbt: unsupported map key type '%s' (must be string or enum)", e.T)
}

// InvalidEnumValueError is returned when an enum reader sees an unknown
// symbolic name or an out-of-range ordinal.
type InvalidEnumValueError struct {
	T       reflect.Type
	Name    string
	Ordinal int64
}

func (e InvalidEnumValueError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("nbt: invalid value '%s' for enum type '%s'", e.Name, e.T)
	}
	return fmt.Sprintf("nbt: invalid ordinal %d for enum type '%s'", e.Ordinal, e.T)
}

// NoConstructorError is returned when no instance-creation strategy succeeded
// for a type.
type NoConstructorError struct {
	T reflect.Type
}

func (e NoConstructorError) Error() string {
	return fmt.Sprintf("nbt: can not create instance of type '%s'", e.T)
}

// FieldError decorates an error with the path of struct fields it bubbled
// up through.
type FieldError struct {
	Underlying error
	Path       string
}

func (err FieldError) Unwrap() error {
	return err.Underlying
}

func (err FieldError) Error() string {
	uerr := strings.TrimPrefix(err.Underlying.Error(), "nbt: ")
	return fmt.Sprintf("nbt: %s (in %s)", uerr, err.Path)
}

// WithFieldError wraps err with the given type/field context. Nested
// FieldErrors are collapsed into a single path.
func WithFieldError(err error, parts ...string) error {
	if err == nil {
		return nil
	}

	combined := strings.Join(parts, ".")

	switch err := err.(type) {
	case FieldError:
		err.Path = fmt.Sprintf("%s %s", combined, err.Path)
		return err
	default:
		return FieldError{err, combined}
	}
}
