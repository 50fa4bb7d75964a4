// Copyright (c) Blue (Lukas Rieger) <https://bluecolored.de>
// SPDX-License-Identifier: MIT

package coder

import (
	"reflect"
	"strings"
	"unicode"

	nbtinterfaces "github.com/BlueMap-Minecraft/BlueNBT/interfaces"
)

// FieldNameStrategy uses the Go field name directly.
//
//	go-name -> nbt-name
//	----------------
//	FooBar  -> FooBar
//	FooBAR  -> FooBAR
var FieldNameStrategy nbtinterfaces.NamingStrategy = func(field reflect.StructField) string {
	return field.Name
}

// LowerCaseStrategy produces all-lowercase nbt-names.
//
//	go-name -> nbt-name
//	----------------
//	FooBar  -> foobar
//	FooBAR  -> foobar
var LowerCaseStrategy nbtinterfaces.NamingStrategy = func(field reflect.StructField) string {
	return strings.ToLower(field.Name)
}

// UpperCaseStrategy produces ALL-UPPERCASE nbt-names.
//
//	go-name -> nbt-name
//	----------------
//	FooBar  -> FOOBAR
var UpperCaseStrategy nbtinterfaces.NamingStrategy = func(field reflect.StructField) string {
	return strings.ToUpper(field.Name)
}

// UpperCamelCaseStrategy produces UpperCamelCase nbt-names (a no-op for
// exported Go fields, which already start uppercase).
var UpperCamelCaseStrategy nbtinterfaces.NamingStrategy = func(field reflect.StructField) string {
	return transformFirstLetter(field.Name, unicode.ToUpper)
}

// LowerCamelCaseStrategy produces lowerCamelCase nbt-names.
//
//	go-name -> nbt-name
//	----------------
//	FooBar  -> fooBar
var LowerCamelCaseStrategy nbtinterfaces.NamingStrategy = func(field reflect.StructField) string {
	return transformFirstLetter(field.Name, unicode.ToLower)
}

// LowerCaseWithDelimiter produces lowercase-names-with-a-delimiter.
//
//	go-name -> nbt-name (example delimiter: "-")
//	----------------
//	FooBar  -> foo-bar
func LowerCaseWithDelimiter(delimiter string) nbtinterfaces.NamingStrategy {
	return func(field reflect.StructField) string {
		return strings.ToLower(strings.Join(splitCamelCase(field.Name), delimiter))
	}
}

// UpperCaseWithDelimiter produces UPPERCASE-NAMES-WITH-A-DELIMITER.
//
//	go-name -> nbt-name (example delimiter: "-")
//	----------------
//	FooBar  -> FOO-BAR
func UpperCaseWithDelimiter(delimiter string) nbtinterfaces.NamingStrategy {
	return func(field reflect.StructField) string {
		return strings.ToUpper(strings.Join(splitCamelCase(field.Name), delimiter))
	}
}

// splitCamelCase splits a camelCase name into its words.
func splitCamelCase(input string) []string {
	var result []string
	runes := []rune(input)
	start := 0
	for i := 1; i < len(runes); i++ {
		if unicode.IsUpper(runes[i]) {
			result = append(result, string(runes[start:i]))
			start = i
		}
	}
	return append(result, string(runes[start:]))
}

// transformFirstLetter replaces the first letter of a string using the given
// operation, leaving any non-letter prefix untouched.
func transformFirstLetter(input string, op func(rune) rune) string {
	for i, c := range input {
		if !unicode.IsLetter(c) {
			continue
		}
		return input[:i] + string(op(c)) + input[i+len(string(c)):]
	}
	return input
}

// upperFirstLetter is the default field-name transformer: incoming compound
// names that matched no field are retried with their first letter
// upper-cased, matching Go's exported-field convention.
func upperFirstLetter(name string) string {
	return transformFirstLetter(name, unicode.ToUpper)
}
