// Copyright (c) Blue (Lukas Rieger) <https://bluecolored.de>
// SPDX-License-Identifier: MIT

package coder

import (
	"io"
	"math"

	nbtinterfaces "github.com/BlueMap-Minecraft/BlueNBT/interfaces"
	"github.com/BlueMap-Minecraft/BlueNBT/internal/errors"
)

// writerFrame records the emit state at one nesting level. In a list frame
// kind holds the pinned element type; in compound and root frames it holds
// the type of the value currently being written.
type writerFrame struct {
	ctx     context
	kind    nbtinterfaces.TagType
	hasKind bool
}

type writer struct {
	w       io.Writer
	scratch [8]byte
	stack   []writerFrame

	nextName    string
	hasNextName bool

	// list header deferred until the first value pins the element type;
	// -1 when no header is pending
	pendingListLength int
}

var _ nbtinterfaces.Writer = &writer{}

// NewWriter constructs a Writer emitting raw NBT data to w. Compression, if
// any, is applied by the caller.
func NewWriter(w io.Writer) nbtinterfaces.Writer {
	return &writer{
		w:                 w,
		stack:             make([]writerFrame, 1, 16),
		pendingListLength: -1,
	}
}

func (w *writer) top() *writerFrame {
	return &w.stack[len(w.stack)-1]
}

func (w *writer) Name(name string) error {
	if w.hasNextName {
		return errors.ErrNameOutOfPlace
	}
	w.nextName = name
	w.hasNextName = true
	return nil
}

func (w *writer) BeginCompound() error {
	if err := w.tag(nbtinterfaces.TagCompound); err != nil {
		return err
	}
	w.stack = append(w.stack, writerFrame{ctx: ctxCompound})
	return nil
}

func (w *writer) EndCompound() error {
	if w.top().ctx != ctxCompound {
		return errors.ContextMismatchError{Op: "can not end compound: not in a compound"}
	}
	if w.hasNextName {
		return errors.ErrNameOutOfPlace
	}
	w.stack = w.stack[:len(w.stack)-1]
	if err := w.writeUint8(byte(nbtinterfaces.TagEnd)); err != nil {
		return err
	}
	w.afterValue()
	return nil
}

func (w *writer) BeginList(length int) error {
	if length < 0 {
		return errors.NegativeLengthError{Length: length}
	}
	if err := w.tag(nbtinterfaces.TagList); err != nil {
		return err
	}
	w.stack = append(w.stack, writerFrame{ctx: ctxList})
	w.pendingListLength = length
	return nil
}

func (w *writer) BeginTypedList(length int, elem nbtinterfaces.TagType) error {
	if length < 0 {
		return errors.NegativeLengthError{Length: length}
	}
	if !elem.Valid() {
		return errors.InvalidTagIDError{ID: byte(elem)}
	}
	if elem == nbtinterfaces.TagEnd && length > 0 {
		return errors.CorruptDataError{Reason: "list of End tags with nonzero length"}
	}
	if err := w.tag(nbtinterfaces.TagList); err != nil {
		return err
	}
	w.stack = append(w.stack, writerFrame{ctx: ctxList, kind: elem, hasKind: true})
	if err := w.writeUint8(byte(elem)); err != nil {
		return err
	}
	return w.writeInt32(int32(length))
}

func (w *writer) EndList() error {
	if w.top().ctx != ctxList {
		return errors.ContextMismatchError{Op: "can not end list: not in a list"}
	}
	if w.pendingListLength != -1 {
		return errors.ErrEmptyListType
	}
	if w.hasNextName {
		return errors.ErrNameOutOfPlace
	}
	w.stack = w.stack[:len(w.stack)-1]
	w.afterValue()
	return nil
}

func (w *writer) WriteByte(v int8) error {
	if err := w.tag(nbtinterfaces.TagByte); err != nil {
		return err
	}
	if err := w.writeUint8(byte(v)); err != nil {
		return err
	}
	w.afterValue()
	return nil
}

func (w *writer) WriteShort(v int16) error {
	if err := w.tag(nbtinterfaces.TagShort); err != nil {
		return err
	}
	if err := w.writeInt16(v); err != nil {
		return err
	}
	w.afterValue()
	return nil
}

func (w *writer) WriteInt(v int32) error {
	if err := w.tag(nbtinterfaces.TagInt); err != nil {
		return err
	}
	if err := w.writeInt32(v); err != nil {
		return err
	}
	w.afterValue()
	return nil
}

func (w *writer) WriteLong(v int64) error {
	if err := w.tag(nbtinterfaces.TagLong); err != nil {
		return err
	}
	if err := w.writeInt64(v); err != nil {
		return err
	}
	w.afterValue()
	return nil
}

func (w *writer) WriteFloat(v float32) error {
	if err := w.tag(nbtinterfaces.TagFloat); err != nil {
		return err
	}
	if err := w.writeInt32(int32(math.Float32bits(v))); err != nil {
		return err
	}
	w.afterValue()
	return nil
}

func (w *writer) WriteDouble(v float64) error {
	if err := w.tag(nbtinterfaces.TagDouble); err != nil {
		return err
	}
	if err := w.writeInt64(int64(math.Float64bits(v))); err != nil {
		return err
	}
	w.afterValue()
	return nil
}

func (w *writer) WriteString(v string) error {
	if err := w.tag(nbtinterfaces.TagString); err != nil {
		return err
	}
	if err := w.writeString(v); err != nil {
		return err
	}
	w.afterValue()
	return nil
}

func (w *writer) WriteByteArray(v []byte) error {
	if err := w.tag(nbtinterfaces.TagByteArray); err != nil {
		return err
	}
	if err := w.writeInt32(int32(len(v))); err != nil {
		return err
	}
	if _, err := w.w.Write(v); err != nil {
		return err
	}
	w.afterValue()
	return nil
}

func (w *writer) WriteIntArray(v []int32) error {
	if err := w.tag(nbtinterfaces.TagIntArray); err != nil {
		return err
	}
	if err := w.writeInt32(int32(len(v))); err != nil {
		return err
	}
	for _, e := range v {
		if err := w.writeInt32(e); err != nil {
			return err
		}
	}
	w.afterValue()
	return nil
}

func (w *writer) WriteLongArray(v []int64) error {
	if err := w.tag(nbtinterfaces.TagLongArray); err != nil {
		return err
	}
	if err := w.writeInt32(int32(len(v))); err != nil {
		return err
	}
	for _, e := range v {
		if err := w.writeInt64(e); err != nil {
			return err
		}
	}
	w.afterValue()
	return nil
}

func (w *writer) InCompound() bool {
	return w.top().ctx == ctxCompound
}

func (w *writer) InList() bool {
	return w.top().ctx == ctxList
}

func (w *writer) Close() error {
	if c, ok := w.w.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return err
		}
	}
	if len(w.stack) > 1 {
		return errors.ErrIncompleteDocument
	}
	return nil
}

// tag emits the header of a value of the given type: the pending list header
// if one is open, nothing but a type check inside a list, and the id byte
// plus name everywhere else.
func (w *writer) tag(t nbtinterfaces.TagType) error {
	frame := w.top()

	// complete a pending list header with the first value's type
	if w.pendingListLength != -1 {
		if w.hasNextName {
			return errors.ErrNameOutOfPlace
		}
		if err := w.writeUint8(byte(t)); err != nil {
			return err
		}
		if err := w.writeInt32(int32(w.pendingListLength)); err != nil {
			return err
		}
		frame.kind = t
		frame.hasKind = true
		w.pendingListLength = -1
		return nil
	}

	if frame.ctx == ctxList {
		// element type is pinned, no per-element header
		if w.hasNextName {
			return errors.ErrNameOutOfPlace
		}
		if frame.kind != t {
			return errors.UnexpectedKindError{Expected: frame.kind, Found: t}
		}
		return nil
	}

	frame.kind = t
	frame.hasKind = true

	if err := w.writeUint8(byte(t)); err != nil {
		return err
	}

	if !w.hasNextName {
		if frame.ctx != ctxRoot {
			return errors.ErrNameOutOfPlace
		}
		w.nextName = "" // default name to empty string at root-level
	}
	err := w.writeString(w.nextName)
	w.nextName = ""
	w.hasNextName = false
	return err
}

// afterValue marks the value of the enclosing compound or root frame as
// complete. List frames keep their pinned element type.
func (w *writer) afterValue() {
	frame := w.top()
	if frame.ctx != ctxList {
		frame.hasKind = false
	}
}

func (w *writer) writeUint8(v byte) error {
	w.scratch[0] = v
	_, err := w.w.Write(w.scratch[:1])
	return err
}

func (w *writer) writeInt16(v int16) error {
	w.scratch[0] = byte(v >> 8)
	w.scratch[1] = byte(v)
	_, err := w.w.Write(w.scratch[:2])
	return err
}

func (w *writer) writeInt32(v int32) error {
	w.scratch[0] = byte(v >> 24)
	w.scratch[1] = byte(v >> 16)
	w.scratch[2] = byte(v >> 8)
	w.scratch[3] = byte(v)
	_, err := w.w.Write(w.scratch[:4])
	return err
}

func (w *writer) writeInt64(v int64) error {
	w.scratch[0] = byte(v >> 56)
	w.scratch[1] = byte(v >> 48)
	w.scratch[2] = byte(v >> 40)
	w.scratch[3] = byte(v >> 32)
	w.scratch[4] = byte(v >> 24)
	w.scratch[5] = byte(v >> 16)
	w.scratch[6] = byte(v >> 8)
	w.scratch[7] = byte(v)
	_, err := w.w.Write(w.scratch[:8])
	return err
}

// writeString emits a length-prefixed modified UTF-8 string.
func (w *writer) writeString(s string) error {
	length := mutf8Len(s)
	if length > math.MaxUint16 {
		return errors.ErrStringTooLong
	}

	w.scratch[0] = byte(length >> 8)
	w.scratch[1] = byte(length)
	if _, err := w.w.Write(w.scratch[:2]); err != nil {
		return err
	}

	_, err := w.w.Write(appendMUTF8(nil, s))
	return err
}
