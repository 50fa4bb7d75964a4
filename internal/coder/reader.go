// Copyright (c) Blue (Lukas Rieger) <https://bluecolored.de>
// SPDX-License-Identifier: MIT

package coder

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strings"

	nbtinterfaces "github.com/BlueMap-Minecraft/BlueNBT/interfaces"
	"github.com/BlueMap-Minecraft/BlueNBT/internal/errors"
)

// unknownName is the sentinel returned by Name for unnamed positions
// (list elements and End tags).
const unknownName = "<unknown>"

// context identifies what kind of structure a stack frame is inside of.
type context byte

const (
	ctxRoot context = iota
	ctxCompound
	ctxList
)

// readerFrame records the parse state at one nesting level: the lazily
// resolved type and name of the current element, and the list counters when
// inside a list.
type readerFrame struct {
	ctx     context
	kind    nbtinterfaces.TagType
	hasKind bool
	name    string
	hasName bool

	// only used when ctx == ctxList
	listLength    int
	listRemaining int
}

type reader struct {
	log     logReader
	scratch [8]byte
	stack   []readerFrame
}

var _ nbtinterfaces.Reader = &reader{}

// NewReader constructs a Reader decoding NBT data from r. The data must not
// be compressed; decompression is applied by the caller.
func NewReader(r io.Reader) nbtinterfaces.Reader {
	return newReader(r)
}

// NewReaderBytes constructs a Reader decoding the given raw NBT data.
func NewReaderBytes(data []byte) nbtinterfaces.Reader {
	return newReader(bytes.NewReader(data))
}

func newReader(r io.Reader) *reader {
	rd := &reader{stack: make([]readerFrame, 1, 16)}
	rd.log.r = r
	rd.stack[0] = readerFrame{ctx: ctxRoot}
	return rd
}

func (r *reader) top() *readerFrame {
	return &r.stack[len(r.stack)-1]
}

func (r *reader) Peek() (nbtinterfaces.TagType, error) {
	frame := r.top()
	if !frame.hasKind {
		kind, err := r.readTagID()
		if err != nil {
			return nbtinterfaces.TagEnd, err
		}
		frame.kind = kind
		frame.hasKind = true
	}
	return frame.kind, nil
}

func (r *reader) Name() (string, error) {
	frame := r.top()
	if frame.hasName {
		return frame.name, nil
	}

	kind, err := r.Peek()
	if err != nil {
		return "", err
	}

	if kind == nbtinterfaces.TagEnd {
		frame.name = unknownName
	} else {
		name, err := r.readString()
		if err != nil {
			return "", err
		}
		frame.name = name
	}
	frame.hasName = true
	return frame.name, nil
}

func (r *reader) BeginCompound() error {
	if err := r.check(nbtinterfaces.TagCompound); err != nil {
		return err
	}
	r.push(readerFrame{ctx: ctxCompound})
	return nil
}

func (r *reader) EndCompound() error {
	if err := r.check(nbtinterfaces.TagEnd); err != nil {
		return err
	}
	if r.top().ctx != ctxCompound {
		return errors.ContextMismatchError{Op: "can not end compound: current element is not in a compound", Path: r.Path()}
	}
	r.pop()
	r.next()
	return nil
}

func (r *reader) BeginList() (int, error) {
	if err := r.check(nbtinterfaces.TagList); err != nil {
		return 0, err
	}
	r.push(readerFrame{ctx: ctxList})

	elem, err := r.readTagID()
	if err != nil {
		return 0, err
	}
	length, err := r.readInt32()
	if err != nil {
		return 0, err
	}
	if length < 0 {
		return 0, errors.NegativeLengthError{Length: int(length), Path: r.Path()}
	}
	if elem == nbtinterfaces.TagEnd && length > 0 {
		return 0, errors.CorruptDataError{Reason: "list of End tags with nonzero length", Path: r.Path()}
	}

	frame := r.top()
	frame.kind = elem
	if length == 0 {
		frame.kind = nbtinterfaces.TagEnd
	}
	frame.hasKind = true
	frame.name = unknownName
	frame.hasName = true
	frame.listLength = int(length)
	frame.listRemaining = int(length)

	return int(length), nil
}

func (r *reader) EndList() error {
	if err := r.check(nbtinterfaces.TagEnd); err != nil {
		return err
	}
	if r.top().ctx != ctxList {
		return errors.ContextMismatchError{Op: "can not end list: current element is not in a list", Path: r.Path()}
	}
	r.pop()
	r.next()
	return nil
}

func (r *reader) HasNext() (bool, error) {
	kind, err := r.Peek()
	return kind != nbtinterfaces.TagEnd, err
}

func (r *reader) NextByte() (int8, error) {
	if err := r.check(nbtinterfaces.TagByte); err != nil {
		return 0, err
	}
	r.next()
	v, err := r.readUint8()
	return int8(v), err
}

func (r *reader) NextShort() (int16, error) {
	if err := r.check(nbtinterfaces.TagShort); err != nil {
		return 0, err
	}
	r.next()
	return r.readInt16()
}

func (r *reader) NextInt() (int32, error) {
	if err := r.check(nbtinterfaces.TagInt); err != nil {
		return 0, err
	}
	r.next()
	return r.readInt32()
}

func (r *reader) NextLong() (int64, error) {
	if err := r.check(nbtinterfaces.TagLong); err != nil {
		return 0, err
	}
	r.next()
	return r.readInt64()
}

func (r *reader) NextFloat() (float32, error) {
	if err := r.check(nbtinterfaces.TagFloat); err != nil {
		return 0, err
	}
	r.next()
	v, err := r.readInt32()
	return math.Float32frombits(uint32(v)), err
}

func (r *reader) NextDouble() (float64, error) {
	if err := r.check(nbtinterfaces.TagDouble); err != nil {
		return 0, err
	}
	r.next()
	v, err := r.readInt64()
	return math.Float64frombits(uint64(v)), err
}

func (r *reader) NextString() (string, error) {
	if err := r.check(nbtinterfaces.TagString); err != nil {
		return "", err
	}
	r.next()
	return r.readString()
}

func (r *reader) NextByteArray() ([]byte, error) {
	length, err := r.beginArray(nbtinterfaces.TagByteArray)
	if err != nil {
		return nil, err
	}
	data := make([]byte, length)
	if err := r.readFull(data); err != nil {
		return nil, err
	}
	return data, nil
}

func (r *reader) NextIntArray() ([]int32, error) {
	length, err := r.beginArray(nbtinterfaces.TagIntArray)
	if err != nil {
		return nil, err
	}
	data := make([]int32, length)
	for i := range data {
		if data[i], err = r.readInt32(); err != nil {
			return nil, err
		}
	}
	return data, nil
}

func (r *reader) NextLongArray() ([]int64, error) {
	length, err := r.beginArray(nbtinterfaces.TagLongArray)
	if err != nil {
		return nil, err
	}
	data := make([]int64, length)
	for i := range data {
		if data[i], err = r.readInt64(); err != nil {
			return nil, err
		}
	}
	return data, nil
}

func (r *reader) NextByteArrayInto(buffer []byte) (int, error) {
	length, err := r.beginArray(nbtinterfaces.TagByteArray)
	if err != nil {
		return 0, err
	}
	readLength := min(length, len(buffer))
	if err := r.readFull(buffer[:readLength]); err != nil {
		return 0, err
	}
	if err := r.log.skip(int64(length - readLength)); err != nil {
		return 0, err
	}
	return length, nil
}

func (r *reader) NextIntArrayInto(buffer []int32) (int, error) {
	length, err := r.beginArray(nbtinterfaces.TagIntArray)
	if err != nil {
		return 0, err
	}
	readLength := min(length, len(buffer))
	for i := 0; i < readLength; i++ {
		if buffer[i], err = r.readInt32(); err != nil {
			return 0, err
		}
	}
	if err := r.log.skip(int64(length-readLength) * 4); err != nil {
		return 0, err
	}
	return length, nil
}

func (r *reader) NextLongArrayInto(buffer []int64) (int, error) {
	length, err := r.beginArray(nbtinterfaces.TagLongArray)
	if err != nil {
		return 0, err
	}
	readLength := min(length, len(buffer))
	for i := 0; i < readLength; i++ {
		if buffer[i], err = r.readInt64(); err != nil {
			return 0, err
		}
	}
	if err := r.log.skip(int64(length-readLength) * 8); err != nil {
		return 0, err
	}
	return length, nil
}

// beginArray consumes the header of an array tag of the given type and
// returns the (validated) element count.
func (r *reader) beginArray(expected nbtinterfaces.TagType) (int, error) {
	if err := r.check(expected); err != nil {
		return 0, err
	}
	r.next()
	length, err := r.readInt32()
	if err != nil {
		return 0, err
	}
	if length < 0 {
		return 0, errors.NegativeLengthError{Length: int(length), Path: r.Path()}
	}
	return int(length), nil
}

func (r *reader) NextArrayAsByteArray() ([]byte, error) {
	kind, err := r.Peek()
	if err != nil {
		return nil, err
	}
	switch kind {
	case nbtinterfaces.TagByteArray:
		return r.NextByteArray()
	case nbtinterfaces.TagIntArray:
		ints, err := r.NextIntArray()
		if err != nil {
			return nil, err
		}
		data := make([]byte, len(ints))
		for i, v := range ints {
			data[i] = byte(v)
		}
		return data, nil
	case nbtinterfaces.TagLongArray:
		longs, err := r.NextLongArray()
		if err != nil {
			return nil, err
		}
		data := make([]byte, len(longs))
		for i, v := range longs {
			data[i] = byte(v)
		}
		return data, nil
	default:
		return nil, errors.UnexpectedKindError{Expected: nbtinterfaces.TagByteArray, Found: kind, Path: r.Path()}
	}
}

func (r *reader) NextArrayAsIntArray() ([]int32, error) {
	kind, err := r.Peek()
	if err != nil {
		return nil, err
	}
	switch kind {
	case nbtinterfaces.TagIntArray:
		return r.NextIntArray()
	case nbtinterfaces.TagByteArray:
		bs, err := r.NextByteArray()
		if err != nil {
			return nil, err
		}
		data := make([]int32, len(bs))
		for i, v := range bs {
			data[i] = int32(int8(v))
		}
		return data, nil
	case nbtinterfaces.TagLongArray:
		longs, err := r.NextLongArray()
		if err != nil {
			return nil, err
		}
		data := make([]int32, len(longs))
		for i, v := range longs {
			data[i] = int32(v)
		}
		return data, nil
	default:
		return nil, errors.UnexpectedKindError{Expected: nbtinterfaces.TagIntArray, Found: kind, Path: r.Path()}
	}
}

func (r *reader) NextArrayAsLongArray() ([]int64, error) {
	kind, err := r.Peek()
	if err != nil {
		return nil, err
	}
	switch kind {
	case nbtinterfaces.TagLongArray:
		return r.NextLongArray()
	case nbtinterfaces.TagByteArray:
		bs, err := r.NextByteArray()
		if err != nil {
			return nil, err
		}
		data := make([]int64, len(bs))
		for i, v := range bs {
			data[i] = int64(int8(v))
		}
		return data, nil
	case nbtinterfaces.TagIntArray:
		ints, err := r.NextIntArray()
		if err != nil {
			return nil, err
		}
		data := make([]int64, len(ints))
		for i, v := range ints {
			data[i] = int64(v)
		}
		return data, nil
	default:
		return nil, errors.UnexpectedKindError{Expected: nbtinterfaces.TagLongArray, Found: kind, Path: r.Path()}
	}
}

func (r *reader) Raw() ([]byte, error) {
	kind, err := r.Peek()
	if err != nil {
		return nil, err
	}
	if kind == nbtinterfaces.TagEnd {
		return nil, errors.ErrSkipEnd
	}

	// The tag-id byte (and possibly the name) were already consumed by
	// Peek/Name, so the element header is rebuilt from the parsed state.
	// Unnamed elements (list members) get an empty name.
	name := ""
	frame := r.top()
	if frame.ctx != ctxList {
		if name, err = r.Name(); err != nil {
			return nil, err
		}
	}

	data := []byte{byte(kind)}
	nameBytes := appendMUTF8(nil, name)
	data = append(data, byte(len(nameBytes)>>8), byte(len(nameBytes)))
	data = append(data, nameBytes...)

	// skip the element, teeing its payload into the log
	r.log.startLog()
	err = r.Skip(0)
	logged := r.log.stopLog()
	if err != nil {
		return nil, err
	}

	return append(data, logged...), nil
}

func (r *reader) Skip(out int) error {
	if out < 0 {
		return fmt.Errorf("nbt: skip depth can not be negative")
	}

	kind, err := r.Peek()
	if err != nil {
		return err
	}
	if out == 0 && kind == nbtinterfaces.TagEnd {
		return errors.ErrSkipEnd
	}

	for {
		kind, err := r.Peek()
		if err != nil {
			return err
		}

		switch kind {
		case nbtinterfaces.TagEnd:
			if r.top().ctx == ctxList {
				err = r.EndList()
			} else {
				err = r.EndCompound()
			}
			if err != nil {
				return err
			}
			out--

		case nbtinterfaces.TagByte, nbtinterfaces.TagShort, nbtinterfaces.TagInt,
			nbtinterfaces.TagLong, nbtinterfaces.TagFloat, nbtinterfaces.TagDouble:
			if err := r.prepare(); err != nil {
				return err
			}
			if err := r.log.skip(int64(kind.Size())); err != nil {
				return err
			}
			r.next()

		case nbtinterfaces.TagString:
			if err := r.prepare(); err != nil {
				return err
			}
			if err := r.skipString(); err != nil {
				return err
			}
			r.next()

		case nbtinterfaces.TagByteArray:
			if err := r.skipArray(1); err != nil {
				return err
			}

		case nbtinterfaces.TagIntArray:
			if err := r.skipArray(4); err != nil {
				return err
			}

		case nbtinterfaces.TagLongArray:
			if err := r.skipArray(8); err != nil {
				return err
			}

		case nbtinterfaces.TagCompound:
			if err := r.BeginCompound(); err != nil {
				return err
			}
			out++

		case nbtinterfaces.TagList:
			length, err := r.BeginList()
			if err != nil {
				return err
			}
			out++

			// fast skip if the element size is known
			frame := r.top()
			if size := frame.kind.Size(); size != -1 && length > 0 {
				if err := r.log.skip(int64(size) * int64(length)); err != nil {
					return err
				}
				frame.listRemaining = 0
				frame.kind = nbtinterfaces.TagEnd
			}
		}

		if out <= 0 {
			return nil
		}
	}
}

func (r *reader) skipArray(elementSize int64) error {
	if err := r.prepare(); err != nil {
		return err
	}
	length, err := r.readInt32()
	if err != nil {
		return err
	}
	if length < 0 {
		return errors.NegativeLengthError{Length: int(length), Path: r.Path()}
	}
	if err := r.log.skip(int64(length) * elementSize); err != nil {
		return err
	}
	r.next()
	return nil
}

func (r *reader) RemainingListItems() int {
	return r.top().listRemaining
}

func (r *reader) InCompound() bool {
	return r.top().ctx == ctxCompound
}

func (r *reader) InList() bool {
	return r.top().ctx == ctxList
}

func (r *reader) Path() string {
	var sb strings.Builder

	// frame 0 is the root, its name is not part of the path
	for i := 1; i < len(r.stack); i++ {
		frame := &r.stack[i]
		if frame.ctx == ctxList {
			fmt.Fprintf(&sb, "[%d]", frame.listLength-frame.listRemaining)
			continue
		}
		if i > 1 {
			sb.WriteByte('.')
		}
		if frame.hasName {
			sb.WriteString(frame.name)
		}
	}

	return sb.String()
}

// next advances past the current element: in a list the remaining count is
// decremented, elsewhere the element's type and name are cleared.
func (r *reader) next() {
	frame := r.top()
	if frame.ctx == ctxList {
		frame.listRemaining--
		if frame.listRemaining == 0 {
			frame.kind = nbtinterfaces.TagEnd
		}
	} else {
		frame.hasKind = false
		frame.hasName = false
		frame.name = ""
	}
}

func (r *reader) push(frame readerFrame) {
	r.stack = append(r.stack, frame)
}

func (r *reader) pop() {
	r.stack = r.stack[:len(r.stack)-1]
}

// check asserts the type of the current element and reads its name if it was
// never requested, so the stream is positioned at the payload.
func (r *reader) check(expected nbtinterfaces.TagType) error {
	kind, err := r.Peek()
	if err != nil {
		return err
	}
	if kind != expected {
		return errors.UnexpectedKindError{Expected: expected, Found: kind, Path: r.Path()}
	}
	return r.prepare()
}

// prepare reads the unread name of the current element, if any, so that the
// stream is positioned at the payload and Path can still report the name.
func (r *reader) prepare() error {
	_, err := r.Name()
	return err
}

func (r *reader) readTagID() (nbtinterfaces.TagType, error) {
	id, err := r.readUint8()
	if err != nil {
		return nbtinterfaces.TagEnd, err
	}
	kind := nbtinterfaces.TagType(id)
	if !kind.Valid() {
		return nbtinterfaces.TagEnd, errors.InvalidTagIDError{ID: id}
	}
	return kind, nil
}

func (r *reader) readFull(buf []byte) error {
	if _, err := io.ReadFull(&r.log, buf); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return errors.ErrUnexpectedEnd
		}
		return err
	}
	return nil
}

func (r *reader) readUint8() (byte, error) {
	if err := r.readFull(r.scratch[:1]); err != nil {
		return 0, err
	}
	return r.scratch[0], nil
}

func (r *reader) readUint16() (uint16, error) {
	if err := r.readFull(r.scratch[:2]); err != nil {
		return 0, err
	}
	return uint16(r.scratch[0])<<8 | uint16(r.scratch[1]), nil
}

func (r *reader) readInt16() (int16, error) {
	v, err := r.readUint16()
	return int16(v), err
}

func (r *reader) readInt32() (int32, error) {
	if err := r.readFull(r.scratch[:4]); err != nil {
		return 0, err
	}
	return int32(uint32(r.scratch[0])<<24 | uint32(r.scratch[1])<<16 |
		uint32(r.scratch[2])<<8 | uint32(r.scratch[3])), nil
}

func (r *reader) readInt64() (int64, error) {
	if err := r.readFull(r.scratch[:8]); err != nil {
		return 0, err
	}
	return int64(uint64(r.scratch[0])<<56 | uint64(r.scratch[1])<<48 |
		uint64(r.scratch[2])<<40 | uint64(r.scratch[3])<<32 |
		uint64(r.scratch[4])<<24 | uint64(r.scratch[5])<<16 |
		uint64(r.scratch[6])<<8 | uint64(r.scratch[7])), nil
}

// readString reads a length-prefixed modified UTF-8 string.
func (r *reader) readString() (string, error) {
	length, err := r.readUint16()
	if err != nil {
		return "", err
	}
	buf := make([]byte, length)
	if err := r.readFull(buf); err != nil {
		return "", err
	}
	return decodeMUTF8(buf)
}

func (r *reader) skipString() error {
	length, err := r.readUint16()
	if err != nil {
		return err
	}
	return r.log.skip(int64(length))
}
