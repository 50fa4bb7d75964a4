// Copyright (c) Blue (Lukas Rieger) <https://bluecolored.de>
// SPDX-License-Identifier: MIT

package coder

import (
	"github.com/BlueMap-Minecraft/BlueNBT/internal/errors"
)

// NBT strings are encoded in "Java modified UTF-8", which differs from
// standard UTF-8 in two ways: U+0000 is written as the two-byte sequence
// 0xC0 0x80, and code points above U+FFFF are written as a CESU-8 style
// surrogate pair of two three-byte sequences. The host utf8 package can
// handle neither, so the codec lives here.

const (
	surrMin  = 0xD800
	surrLow  = 0xDC00
	surrMax  = 0xE000
	surrBase = 0x10000
)

// appendMUTF8 appends the modified UTF-8 encoding of s to dst.
func appendMUTF8(dst []byte, s string) []byte {
	for _, r := range s {
		switch {
		case r >= 0x01 && r <= 0x7F:
			dst = append(dst, byte(r))
		case r <= 0x7FF:
			// includes the two-byte form of U+0000
			dst = append(dst, byte(0xC0|r>>6), byte(0x80|r&0x3F))
		case r <= 0xFFFF:
			dst = append(dst, byte(0xE0|r>>12), byte(0x80|r>>6&0x3F), byte(0x80|r&0x3F))
		default:
			r -= surrBase
			hi := surrMin | r>>10
			lo := surrLow | r&0x3FF
			dst = append(dst, byte(0xE0|hi>>12), byte(0x80|hi>>6&0x3F), byte(0x80|hi&0x3F))
			dst = append(dst, byte(0xE0|lo>>12), byte(0x80|lo>>6&0x3F), byte(0x80|lo&0x3F))
		}
	}
	return dst
}

// mutf8Len returns the encoded length of s in bytes.
func mutf8Len(s string) int {
	n := 0
	for _, r := range s {
		switch {
		case r >= 0x01 && r <= 0x7F:
			n++
		case r <= 0x7FF:
			n += 2
		case r <= 0xFFFF:
			n += 3
		default:
			n += 6
		}
	}
	return n
}

// decodeMUTF8 decodes a modified UTF-8 byte sequence. A plain 0x00 byte is
// accepted as U+0000 for compatibility with encoders that do not use the
// two-byte form.
func decodeMUTF8(b []byte) (string, error) {
	out := make([]rune, 0, len(b))

	for i := 0; i < len(b); {
		c := b[i]
		switch {
		case c < 0x80:
			out = append(out, rune(c))
			i++

		case c&0xE0 == 0xC0:
			if i+1 >= len(b) || b[i+1]&0xC0 != 0x80 {
				return "", errors.ErrInvalidUTF8
			}
			out = append(out, rune(c&0x1F)<<6|rune(b[i+1]&0x3F))
			i += 2

		case c&0xF0 == 0xE0:
			r, err := decodeTriple(b, i)
			if err != nil {
				return "", err
			}
			i += 3

			if r >= surrMin && r < surrMax {
				if r >= surrLow {
					// lone low surrogate
					return "", errors.ErrInvalidUTF8
				}
				if i+2 >= len(b) || b[i]&0xF0 != 0xE0 {
					return "", errors.ErrInvalidUTF8
				}
				lo, err := decodeTriple(b, i)
				if err != nil || lo < surrLow || lo >= surrMax {
					return "", errors.ErrInvalidUTF8
				}
				i += 3
				r = surrBase + (r-surrMin)<<10 + (lo - surrLow)
			}
			out = append(out, r)

		default:
			// 0xF0.. four-byte sequences are not part of modified UTF-8
			return "", errors.ErrInvalidUTF8
		}
	}

	return string(out), nil
}

func decodeTriple(b []byte, i int) (rune, error) {
	if i+2 >= len(b) || b[i+1]&0xC0 != 0x80 || b[i+2]&0xC0 != 0x80 {
		return 0, errors.ErrInvalidUTF8
	}
	return rune(b[i]&0x0F)<<12 | rune(b[i+1]&0x3F)<<6 | rune(b[i+2]&0x3F), nil
}
