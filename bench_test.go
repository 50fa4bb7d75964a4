// Copyright (c) Blue (Lukas Rieger) <https://bluecolored.de>
// SPDX-License-Identifier: MIT

package bluenbt

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"io"
	"reflect"
	"testing"

	mcnbt "github.com/Tnze/go-mc/nbt"
)

func EncodeBenchmarkCommon(b *testing.B, ob any) {
	b.Run("NBTMarshal", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, err := Marshal(ob)
			if err != nil {
				b.Fatalf("Marshal: %s", err)
			}
		}
	})

	b.Run("GoMCNBTMarshal", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, err := mcnbt.Marshal(ob)
			if err != nil {
				b.Fatalf("nbt.Marshal: %s", err)
			}
		}
	})

	b.Run("JSONMarshal", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, err := json.Marshal(ob)
			if err != nil {
				b.Fatalf("json.Marshal: %s", err)
			}
		}
	})

	b.Run("NBTWriteDiscard", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			if err := Write(io.Discard, ob); err != nil {
				b.Fatalf("Write: %s", err)
			}
		}
	})

	b.Run("GobEncoderDiscard", func(b *testing.B) {
		w := gob.NewEncoder(io.Discard)
		for i := 0; i < b.N; i++ {
			if err := w.Encode(ob); err != nil {
				b.Fatalf("Encode: %s", err)
			}
		}
	})

	b.Run("JSONEncoderDiscard", func(b *testing.B) {
		w := json.NewEncoder(io.Discard)
		for i := 0; i < b.N; i++ {
			if err := w.Encode(ob); err != nil {
				b.Fatalf("Encode: %s", err)
			}
		}
	})

	b.Run("NBTEncoderBuffer", func(b *testing.B) {
		var buf bytes.Buffer
		for i := 0; i < b.N; i++ {
			if err := Write(&buf, ob); err != nil {
				b.Fatalf("Write: %s", err)
			}

			if (i % 2048) == 0 {
				buf.Reset()
			}
		}
	})
}

func DecodeBenchmarkCommon(b *testing.B, ob any) {
	data, err := Marshal(ob)
	if err != nil {
		b.Fatalf("Marshal: %s", err)
	}
	jsonData, err := json.Marshal(ob)
	if err != nil {
		b.Fatalf("json.Marshal: %s", err)
	}
	t := reflect.TypeOf(ob)

	b.Run("NBTUnmarshal", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			target := reflect.New(t).Interface()
			if err := Unmarshal(data, target); err != nil {
				b.Fatalf("Unmarshal: %s", err)
			}
		}
	})

	b.Run("GoMCNBTUnmarshal", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			target := reflect.New(t).Interface()
			if err := mcnbt.Unmarshal(data, target); err != nil {
				b.Fatalf("nbt.Unmarshal: %s", err)
			}
		}
	})

	b.Run("JSONUnmarshal", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			target := reflect.New(t).Interface()
			if err := json.Unmarshal(jsonData, target); err != nil {
				b.Fatalf("json.Unmarshal: %s", err)
			}
		}
	})

	b.Run("NBTUnmarshalAny", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			var tree any
			if err := Unmarshal(data, &tree); err != nil {
				b.Fatalf("Unmarshal: %s", err)
			}
		}
	})
}

func BenchmarkInt32Encode(b *testing.B) {
	EncodeBenchmarkCommon(b, int32(123))
}

func BenchmarkStringEncode(b *testing.B) {
	EncodeBenchmarkCommon(b, "Hello World")
}

func BenchmarkLevelEncode(b *testing.B) {
	EncodeBenchmarkCommon(b, interopSample())
}

func BenchmarkLevelDecode(b *testing.B) {
	DecodeBenchmarkCommon(b, interopSample())
}

func BenchmarkChunkSectionsEncode(b *testing.B) {
	type blockState struct {
		Name string `nbt:"Name"`
	}
	type section struct {
		Y           int8         `nbt:"Y"`
		Palette     []blockState `nbt:"palette"`
		BlockStates []int64      `nbt:"data"`
		BlockLight  []byte       `nbt:"BlockLight"`
	}
	type chunk struct {
		Sections []section `nbt:"sections"`
	}

	c := chunk{Sections: make([]section, 8)}
	for i := range c.Sections {
		s := &c.Sections[i]
		s.Y = int8(i)
		s.Palette = []blockState{{"minecraft:air"}, {"minecraft:stone"}, {"minecraft:sculk_vein"}}
		s.BlockStates = make([]int64, 256)
		s.BlockLight = make([]byte, 2048)
	}

	EncodeBenchmarkCommon(b, c)
}
