// Copyright (c) Blue (Lukas Rieger) <https://bluecolored.de>
// SPDX-License-Identifier: MIT

// Package tags parses the `nbt:"..."` struct tag.
//
// The tag is a comma separated list. Entries containing a colon are options;
// everything else is a name. The first name is the one written, all names are
// accepted when reading:
//
//	Field int32  `nbt:"fieldName"`
//	Field int32  `nbt:"fieldName,legacyName,otherAlias"`
//	Field int32  `nbt:"-"`                         // skipped entirely
//	Field Blob   `nbt:",adapter:blobPacker"`       // default name, pinned adapter
//	Field Blob   `nbt:"data,serializer:blobPacker"`
//
// Options:
//
//	adapter:NAME       use the named adapter registered with the engine
//	                   for both directions
//	serializer:NAME    use the named adapter for writing only
//	deserializer:NAME  use the named adapter for reading only
package tags

import (
	"fmt"
	"reflect"
	"strings"
)

// NBTTag is the decoded form of one field's `nbt:"..."` struct tag.
type NBTTag struct {
	// Skip the field entirely (tag was "-")
	Skip bool

	// Names holds the explicit names; the first one is used for writing.
	// Empty if the naming strategy should provide the name.
	Names []string

	// Named adapter pins, empty when unset
	Serializer   string
	Deserializer string
}

// Parse decodes the `nbt` key of a struct tag. A missing tag parses to the
// zero NBTTag.
func Parse(tag reflect.StructTag) (NBTTag, error) {
	var t NBTTag

	value, ok := tag.Lookup("nbt")
	if !ok {
		return t, nil
	}

	if value == "-" {
		t.Skip = true
		return t, nil
	}

	for i, entry := range strings.Split(value, ",") {
		key, arg, isOption := strings.Cut(entry, ":")
		if !isOption {
			if entry == "" {
				if i == 0 {
					continue // empty leading entry keeps the default name
				}
				return t, fmt.Errorf("empty name in nbt tag '%s'", value)
			}
			t.Names = append(t.Names, entry)
			continue
		}

		if arg == "" {
			return t, fmt.Errorf("option '%s' in nbt tag '%s' has no value", key, value)
		}

		switch key {
		case "adapter":
			if err := t.setSerializer(arg, value); err != nil {
				return t, err
			}
			if err := t.setDeserializer(arg, value); err != nil {
				return t, err
			}
		case "serializer":
			if err := t.setSerializer(arg, value); err != nil {
				return t, err
			}
		case "deserializer":
			if err := t.setDeserializer(arg, value); err != nil {
				return t, err
			}
		default:
			return t, fmt.Errorf("unknown option '%s' in nbt tag '%s'", key, value)
		}
	}

	return t, nil
}

func (t *NBTTag) setSerializer(name, raw string) error {
	if t.Serializer != "" {
		return fmt.Errorf("duplicate serializer pin in nbt tag '%s'", raw)
	}
	t.Serializer = name
	return nil
}

func (t *NBTTag) setDeserializer(name, raw string) error {
	if t.Deserializer != "" {
		return fmt.Errorf("duplicate deserializer pin in nbt tag '%s'", raw)
	}
	t.Deserializer = name
	return nil
}
