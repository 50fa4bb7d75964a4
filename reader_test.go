// Copyright (c) Blue (Lukas Rieger) <https://bluecolored.de>
// SPDX-License-Identifier: MIT

package bluenbt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nbterrors "github.com/BlueMap-Minecraft/BlueNBT/internal/errors"
)

func TestNBTReader(t *testing.T) {
	data := levelData(t)
	r := NewReaderBytes(data)

	ok := func(err error) {
		t.Helper()
		require.NoError(t, err)
	}

	ok(r.BeginCompound())
	assert.True(t, r.InCompound())

	name, err := r.Name()
	ok(err)
	assert.Equal(t, "Data", name)
	ok(r.BeginCompound())

	name, err = r.Name()
	ok(err)
	assert.Equal(t, "Difficulty", name)
	difficulty, err := r.NextByte()
	ok(err)
	assert.Equal(t, int8(1), difficulty)

	thunderTime, err := r.NextInt()
	ok(err)
	assert.Equal(t, int32(51264), thunderTime)

	borderSize, err := r.NextDouble()
	ok(err)
	assert.Equal(t, 1000.0, borderSize)

	lastPlayed, err := r.NextLong()
	ok(err)
	assert.Equal(t, int64(1687182273928), lastPlayed)

	version, err := r.NextInt()
	ok(err)
	assert.Equal(t, int32(19133), version)

	name, err = r.Name()
	ok(err)
	assert.Equal(t, "ServerBrands", name)
	length, err := r.BeginList()
	ok(err)
	assert.Equal(t, 1, length)
	assert.True(t, r.InList())
	assert.Equal(t, 1, r.RemainingListItems())
	brand, err := r.NextString()
	ok(err)
	assert.Equal(t, "Paper", brand)
	ok(r.EndList())

	spawnAngle, err := r.NextFloat()
	ok(err)
	assert.Equal(t, float32(0), spawnAngle)

	levelName, err := r.NextString()
	ok(err)
	assert.Equal(t, "world", levelName)

	// skip rainTime, difficultyLocked and BorderDamagePerBlock
	ok(r.Skip(0))
	ok(r.Skip(0))
	ok(r.Skip(0))

	name, err = r.Name()
	ok(err)
	assert.Equal(t, "WorldGenSettings", name)
	ok(r.BeginCompound())
	seed, err := r.NextLong()
	ok(err)
	assert.Equal(t, int64(-6450009625622499088), seed)
	ok(r.EndCompound())

	ok(r.EndCompound()) // Data
	ok(r.EndCompound()) // root

	// the document is exhausted
	_, err = r.Peek()
	assert.ErrorIs(t, err, nbterrors.ErrUnexpectedEnd)
}

func TestReaderSkipEquivalence(t *testing.T) {
	data := levelData(t)

	// reader A reads the Data element, reader B skips it; both must end up
	// in the same state
	a := NewReaderBytes(data)
	require.NoError(t, a.BeginCompound())
	require.NoError(t, a.BeginCompound())
	for {
		hasNext, err := a.HasNext()
		require.NoError(t, err)
		if !hasNext {
			break
		}
		require.NoError(t, a.Skip(0))
	}
	require.NoError(t, a.EndCompound())

	b := NewReaderBytes(data)
	require.NoError(t, b.BeginCompound())
	require.NoError(t, b.Skip(0))

	for _, r := range []Reader{a, b} {
		kind, err := r.Peek()
		require.NoError(t, err)
		assert.Equal(t, TagEnd, kind)
		require.NoError(t, r.EndCompound())
		_, err = r.Peek()
		assert.ErrorIs(t, err, nbterrors.ErrUnexpectedEnd)
	}
}

func TestReaderSkipOut(t *testing.T) {
	r := NewReaderBytes(levelData(t))
	require.NoError(t, r.BeginCompound())
	require.NoError(t, r.BeginCompound())

	// read a couple of entries, then bail out of the Data compound
	_, err := r.NextByte()
	require.NoError(t, err)
	_, err = r.NextInt()
	require.NoError(t, err)

	require.NoError(t, r.Skip(1))

	// now positioned at the root compound's End
	kind, err := r.Peek()
	require.NoError(t, err)
	assert.Equal(t, TagEnd, kind)
	require.NoError(t, r.EndCompound())
	_, err = r.Peek()
	assert.ErrorIs(t, err, nbterrors.ErrUnexpectedEnd)
}

func TestReaderRawCapture(t *testing.T) {
	r := NewReaderBytes(levelData(t))
	require.NoError(t, r.BeginCompound())
	require.NoError(t, r.BeginCompound())

	// navigate to WorldGenSettings
	for {
		name, err := r.Name()
		require.NoError(t, err)
		if name == "WorldGenSettings" {
			break
		}
		require.NoError(t, r.Skip(0))
	}

	raw, err := r.Raw()
	require.NoError(t, err)

	// the capture re-parses from a fresh reader to the same value
	rr := NewReaderBytes(raw)
	kind, err := rr.Peek()
	require.NoError(t, err)
	assert.Equal(t, TagCompound, kind)
	name, err := rr.Name()
	require.NoError(t, err)
	assert.Equal(t, "WorldGenSettings", name)
	require.NoError(t, rr.BeginCompound())
	name, err = rr.Name()
	require.NoError(t, err)
	assert.Equal(t, "seed", name)
	seed, err := rr.NextLong()
	require.NoError(t, err)
	assert.Equal(t, int64(-6450009625622499088), seed)
	require.NoError(t, rr.EndCompound())
	_, err = rr.Peek()
	assert.ErrorIs(t, err, nbterrors.ErrUnexpectedEnd)

	// the original reader advanced past the element
	require.NoError(t, r.EndCompound())
	require.NoError(t, r.EndCompound())
}

func TestReaderRawScalar(t *testing.T) {
	r := NewReaderBytes(levelData(t))
	require.NoError(t, r.BeginCompound())
	require.NoError(t, r.BeginCompound())

	raw, err := r.Raw() // Difficulty:1b
	require.NoError(t, err)
	assert.Equal(t, cat(named(TagByte, "Difficulty"), []byte{1}), raw)
}

func TestReaderBufferedArrayReads(t *testing.T) {
	data := cat(
		named(TagCompound, ""),
		named(TagByteArray, "bytes"), i32b(4), []byte{1, 2, 3, 4},
		named(TagIntArray, "ints"), i32b(3), i32b(7), i32b(8), i32b(9),
		named(TagLongArray, "longs"), i32b(2), i64b(-1), i64b(13),
		[]byte{0},
	)

	r := NewReaderBytes(data)
	require.NoError(t, r.BeginCompound())

	small := make([]byte, 2)
	n, err := r.NextByteArrayInto(small)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, []byte{1, 2}, small)

	large := make([]int32, 5)
	n, err = r.NextIntArrayInto(large)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []int32{7, 8, 9, 0, 0}, large)

	longs := make([]int64, 2)
	n, err = r.NextLongArrayInto(longs)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []int64{-1, 13}, longs)

	require.NoError(t, r.EndCompound())
}

func TestReaderArrayConversions(t *testing.T) {
	data := cat(
		named(TagCompound, ""),
		named(TagIntArray, "ints"), i32b(3), i32b(-1), i32b(300), i32b(7),
		[]byte{0},
	)

	r := NewReaderBytes(data)
	require.NoError(t, r.BeginCompound())
	longs, err := r.NextArrayAsLongArray()
	require.NoError(t, err)
	assert.Equal(t, []int64{-1, 300, 7}, longs)
	require.NoError(t, r.EndCompound())
}

func TestReaderErrors(t *testing.T) {
	t.Run("truncated stream", func(t *testing.T) {
		data := levelData(t)
		var tree any
		err := NewEngine().Unmarshal(data[:len(data)/2], &tree)
		assert.ErrorIs(t, err, nbterrors.ErrUnexpectedEnd)
	})

	t.Run("invalid tag id", func(t *testing.T) {
		r := NewReaderBytes([]byte{13, 0, 0})
		_, err := r.Peek()
		var invalid nbterrors.InvalidTagIDError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, byte(13), invalid.ID)
	})

	t.Run("negative array length", func(t *testing.T) {
		data := cat(named(TagCompound, ""), named(TagByteArray, "arr"), i32b(-1))
		r := NewReaderBytes(data)
		require.NoError(t, r.BeginCompound())
		_, err := r.NextByteArray()
		var negative nbterrors.NegativeLengthError
		require.ErrorAs(t, err, &negative)
		assert.Equal(t, -1, negative.Length)
	})

	t.Run("negative list length", func(t *testing.T) {
		data := cat(named(TagCompound, ""), named(TagList, "list"), []byte{byte(TagInt)}, i32b(-1))
		r := NewReaderBytes(data)
		require.NoError(t, r.BeginCompound())
		_, err := r.BeginList()
		var negative nbterrors.NegativeLengthError
		assert.ErrorAs(t, err, &negative)
	})

	t.Run("nonzero End-typed list", func(t *testing.T) {
		data := cat(named(TagCompound, ""), named(TagList, "list"), []byte{byte(TagEnd)}, i32b(3))
		r := NewReaderBytes(data)
		require.NoError(t, r.BeginCompound())
		_, err := r.BeginList()
		var corrupt nbterrors.CorruptDataError
		assert.ErrorAs(t, err, &corrupt)
	})

	t.Run("empty list accepts any declared element type", func(t *testing.T) {
		data := cat(named(TagCompound, ""), named(TagList, "list"), []byte{byte(TagEnd)}, i32b(0), []byte{0})
		r := NewReaderBytes(data)
		require.NoError(t, r.BeginCompound())
		length, err := r.BeginList()
		require.NoError(t, err)
		assert.Equal(t, 0, length)
		require.NoError(t, r.EndList())
		require.NoError(t, r.EndCompound())
	})

	t.Run("kind mismatch with path", func(t *testing.T) {
		data := cat(
			named(TagCompound, ""),
			named(TagCompound, "a"),
			named(TagList, "list"), []byte{byte(TagCompound)}, i32b(1),
			named(TagString, "x"), mstr("oops"),
			[]byte{0, 0, 0},
		)
		r := NewReaderBytes(data)
		require.NoError(t, r.BeginCompound())
		require.NoError(t, r.BeginCompound())
		_, err := r.BeginList()
		require.NoError(t, err)
		require.NoError(t, r.BeginCompound())

		name, err := r.Name()
		require.NoError(t, err)
		assert.Equal(t, "x", name)

		_, err = r.NextInt()
		var mismatch nbterrors.UnexpectedKindError
		require.ErrorAs(t, err, &mismatch)
		assert.Equal(t, TagInt, mismatch.Expected)
		assert.Equal(t, TagString, mismatch.Found)
		assert.Equal(t, "a.list[0].x", mismatch.Path)
	})

	t.Run("skip End tag", func(t *testing.T) {
		data := cat(named(TagCompound, ""), []byte{0})
		r := NewReaderBytes(data)
		require.NoError(t, r.BeginCompound())
		assert.ErrorIs(t, r.Skip(0), nbterrors.ErrSkipEnd)
	})

	t.Run("end compound in list", func(t *testing.T) {
		data := cat(named(TagCompound, ""), named(TagList, "list"), []byte{byte(TagInt)}, i32b(0), []byte{0})
		r := NewReaderBytes(data)
		require.NoError(t, r.BeginCompound())
		_, err := r.BeginList()
		require.NoError(t, err)
		var mismatch nbterrors.ContextMismatchError
		assert.ErrorAs(t, r.EndCompound(), &mismatch)
	})
}
