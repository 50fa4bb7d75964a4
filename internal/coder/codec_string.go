// Copyright (c) Blue (Lukas Rieger) <https://bluecolored.de>
// SPDX-License-Identifier: MIT

package coder

import (
	"reflect"
	"strconv"

	nbtinterfaces "github.com/BlueMap-Minecraft/BlueNBT/interfaces"
	"github.com/BlueMap-Minecraft/BlueNBT/internal/errors"
)

// stringFactory serves string kinds. Reading accepts numeric tags as well,
// converting them to their decimal representation.
type stringFactory struct{}

func (stringFactory) CreateSerializer(t reflect.Type, ngin nbtinterfaces.Engine) (nbtinterfaces.Serializer, bool) {
	if t.Kind() != reflect.String {
		return nil, false
	}
	return stringAdapterI, true
}

func (stringFactory) CreateDeserializer(t reflect.Type, ngin nbtinterfaces.Engine) (nbtinterfaces.Deserializer, bool) {
	if t.Kind() != reflect.String {
		return nil, false
	}
	return stringAdapterI, true
}

type stringAdapter struct{}

var stringAdapterI nbtinterfaces.Adapter = stringAdapter{}

func (stringAdapter) Serialize(w nbtinterfaces.Writer, v reflect.Value) error {
	return w.WriteString(v.String())
}

func (stringAdapter) TagType() nbtinterfaces.TagType {
	return nbtinterfaces.TagString
}

func (stringAdapter) Deserialize(r nbtinterfaces.Reader, v reflect.Value) error {
	s, err := readLenientString(r)
	if err != nil {
		return err
	}
	v.SetString(s)
	return nil
}

// readLenientString reads a String tag, or any numeric tag converted to its
// decimal representation.
func readLenientString(r nbtinterfaces.Reader) (string, error) {
	kind, err := r.Peek()
	if err != nil {
		return "", err
	}

	switch kind {
	case nbtinterfaces.TagString:
		return r.NextString()
	case nbtinterfaces.TagByte, nbtinterfaces.TagShort, nbtinterfaces.TagInt, nbtinterfaces.TagLong:
		x, err := readLenientInt(r, nbtinterfaces.TagString)
		return strconv.FormatInt(x, 10), err
	case nbtinterfaces.TagFloat:
		f, err := r.NextFloat()
		return strconv.FormatFloat(float64(f), 'g', -1, 32), err
	case nbtinterfaces.TagDouble:
		f, err := r.NextDouble()
		return strconv.FormatFloat(f, 'g', -1, 64), err
	default:
		return "", errors.UnexpectedKindError{Expected: nbtinterfaces.TagString, Found: kind, Path: r.Path()}
	}
}
