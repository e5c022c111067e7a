// Copyright 2023 the gbx authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package gbxio_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jussyDr/gbx/errors"
	"github.com/jussyDr/gbx/gbxio"
)

func u32s(vs ...uint32) []byte {
	var buf bytes.Buffer
	for _, v := range vs {
		binary.Write(&buf, binary.LittleEndian, v)
	}
	return buf.Bytes()
}

func newIDReader(b []byte) *gbxio.Reader {
	return gbxio.NewReaderIDs(bytes.NewReader(b), gbxio.NewIDState())
}

func TestIDInterning(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(u32s(3, 0x40000000, 5))
	buf.WriteString("Hello")
	buf.Write(u32s(0x40000001))

	r := newIDReader(buf.Bytes())
	first, err := r.ID()
	require.NoError(t, err)
	second, err := r.ID()
	require.NoError(t, err)
	assert.Equal(t, gbxio.ID("Hello"), first)
	assert.Equal(t, gbxio.ID("Hello"), second)
}

func TestIDNullAndLegacyEmpty(t *testing.T) {
	r := newIDReader(u32s(3, 0xFFFFFFFF, 0x00000001))
	id, err := r.OptionalID()
	require.NoError(t, err)
	assert.Equal(t, gbxio.ID(""), id)
	id, err = r.OptionalID()
	require.NoError(t, err)
	assert.Equal(t, gbxio.ID(""), id)

	r = newIDReader(u32s(3, 0xFFFFFFFF))
	_, err = r.ID()
	require.Error(t, err)
	assert.True(t, errors.Is(errors.Structure, err))
}

func TestIDBadVersion(t *testing.T) {
	r := newIDReader(u32s(2, 0xFFFFFFFF))
	_, err := r.OptionalID()
	require.Error(t, err)
	assert.True(t, errors.Is(errors.Structure, err))
}

func TestIDBadTag(t *testing.T) {
	r := newIDReader(u32s(3, 0x12345678))
	_, err := r.OptionalID()
	require.Error(t, err)
	assert.True(t, errors.Is(errors.Structure, err))
}

func TestIDIndexOutOfRange(t *testing.T) {
	r := newIDReader(u32s(3, 0x40000007))
	_, err := r.OptionalID()
	require.Error(t, err)
	assert.True(t, errors.Is(errors.Structure, err))
}

func TestIDWriteMirror(t *testing.T) {
	var buf bytes.Buffer
	w := gbxio.NewWriterIDs(&buf, gbxio.NewWriteIDState())
	require.NoError(t, w.ID("Grass"))
	require.NoError(t, w.ID("Dirt"))
	require.NoError(t, w.ID("Grass"))
	require.NoError(t, w.OptionalID(""))

	var want bytes.Buffer
	want.Write(u32s(3, 0x40000000, 5))
	want.WriteString("Grass")
	want.Write(u32s(0x40000000, 4))
	want.WriteString("Dirt")
	want.Write(u32s(0x40000001, 0xFFFFFFFF))
	assert.Equal(t, want.Bytes(), buf.Bytes())

	// The mirror decodes to the written values.
	r := newIDReader(buf.Bytes())
	for _, want := range []gbxio.ID{"Grass", "Dirt", "Grass", ""} {
		id, err := r.OptionalID()
		require.NoError(t, err)
		assert.Equal(t, want, id)
	}
}

func TestBool(t *testing.T) {
	r := gbxio.NewReader(bytes.NewReader(u32s(0, 1, 2)))
	v, err := r.Bool()
	require.NoError(t, err)
	assert.False(t, v)
	v, err = r.Bool()
	require.NoError(t, err)
	assert.True(t, v)
	_, err = r.Bool()
	require.Error(t, err)
	assert.True(t, errors.Is(errors.Payload, err))
}

func TestBool8(t *testing.T) {
	r := gbxio.NewReader(bytes.NewReader([]byte{1, 0, 9}))
	v, err := r.Bool8()
	require.NoError(t, err)
	assert.True(t, v)
	v, err = r.Bool8()
	require.NoError(t, err)
	assert.False(t, v)
	_, err = r.Bool8()
	require.Error(t, err)
}

func TestPackedIndex(t *testing.T) {
	for _, tc := range []struct {
		max   uint32
		width int
	}{
		{max: 200, width: 1},
		{max: 255, width: 1},
		{max: 256, width: 2},
		{max: 65535, width: 2},
		{max: 65536, width: 4},
	} {
		var buf bytes.Buffer
		w := gbxio.NewWriter(&buf)
		require.NoError(t, w.PackedIndex(42, tc.max))
		assert.Equal(t, tc.width, buf.Len(), "max %d", tc.max)

		r := gbxio.NewReader(bytes.NewReader(buf.Bytes()))
		v, err := r.PackedIndex(tc.max)
		require.NoError(t, err)
		assert.Equal(t, uint32(42), v)
	}
}

func TestPeekU32(t *testing.T) {
	r := gbxio.NewReader(bytes.NewReader(u32s(0x80000000, 7)))
	v, err := r.PeekU32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0x80000000), v)
	// The peek leaves the stream position unchanged.
	v, err = r.U32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0x80000000), v)
	v, err = r.U32()
	require.NoError(t, err)
	assert.Equal(t, uint32(7), v)
}

func TestIDFingerprint(t *testing.T) {
	assert.True(t, gbxio.IDFingerprint(0x40000000))
	assert.True(t, gbxio.IDFingerprint(0x40000001))
	assert.True(t, gbxio.IDFingerprint(0x40000FFF))
	assert.False(t, gbxio.IDFingerprint(0x80000000))
	assert.False(t, gbxio.IDFingerprint(0xFFFFFFFF))
	assert.False(t, gbxio.IDFingerprint(0))
}

func TestFileRefRoundTrip(t *testing.T) {
	external := gbxio.ExternalFileRef{
		Path:       `Skins\Car.zip`,
		LocatorURL: "https://example.com/Car.zip",
	}
	for i := range external.Hash {
		external.Hash[i] = byte(i + 1)
	}
	for _, fr := range []gbxio.FileRef{
		nil,
		gbxio.InternalFileRef{Path: `GameData\Stadium\Mood.zip`},
		external,
	} {
		var buf bytes.Buffer
		w := gbxio.NewWriter(&buf)
		require.NoError(t, w.FileRef(fr))

		r := gbxio.NewReader(bytes.NewReader(buf.Bytes()))
		got, err := r.OptionalFileRef()
		require.NoError(t, err)
		assert.Equal(t, fr, got)
	}
}

func TestFileRefBadVersion(t *testing.T) {
	r := gbxio.NewReader(bytes.NewReader([]byte{2}))
	_, err := r.OptionalFileRef()
	require.Error(t, err)
	assert.True(t, errors.Is(errors.Payload, err))
}

func TestReadBodySkippable(t *testing.T) {
	// A skippable chunk is consumed entirely without inspecting its
	// payload.
	var buf bytes.Buffer
	buf.Write(u32s(0x03043029))
	buf.WriteString("PIKS")
	buf.Write(u32s(8))
	buf.Write([]byte{0xDE, 0xAD, 0xBE, 0xEF, 0xDE, 0xAD, 0xBE, 0xEF})
	buf.Write(u32s(gbxio.EndOfNode))

	r := gbxio.NewReader(bytes.NewReader(buf.Bytes()))
	err := gbxio.ReadBody(r, []gbxio.BodyChunk{
		{ID: 0x03043029, Skip: true},
	})
	require.NoError(t, err)
}

func TestReadBodySkippableMissingMarker(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(u32s(0x03043029, 8, 0, 0))

	r := gbxio.NewReader(bytes.NewReader(buf.Bytes()))
	err := gbxio.ReadBody(r, []gbxio.BodyChunk{
		{ID: 0x03043029, Skip: true},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(errors.Format, err))
}

func TestReadBodyUnknownChunk(t *testing.T) {
	r := gbxio.NewReader(bytes.NewReader(u32s(0x0304FFFF)))
	err := gbxio.ReadBody(r, []gbxio.BodyChunk{
		{ID: 0x03043022, Read: func(r *gbxio.Reader) error { return nil }},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(errors.Structure, err))
}

func TestReadBodyOrder(t *testing.T) {
	// The registry cursor is monotone: a chunk appearing after one that
	// follows it in the registry is unknown.
	readNothing := func(r *gbxio.Reader) error { return nil }
	chunks := []gbxio.BodyChunk{
		{ID: 0x03043022, Read: readNothing},
		{ID: 0x03043026, Read: readNothing},
	}

	r := gbxio.NewReader(bytes.NewReader(u32s(0x03043022, 0x03043026, gbxio.EndOfNode)))
	require.NoError(t, gbxio.ReadBody(r, chunks))

	r = gbxio.NewReader(bytes.NewReader(u32s(0x03043026, 0x03043022, gbxio.EndOfNode)))
	err := gbxio.ReadBody(r, chunks)
	require.Error(t, err)
	assert.True(t, errors.Is(errors.Structure, err))
}

func TestReadBodyMissingEndOfNode(t *testing.T) {
	r := gbxio.NewReader(bytes.NewReader(u32s(0x03043022, 0)))
	err := gbxio.ReadBody(r, []gbxio.BodyChunk{
		{ID: 0x03043022, Read: func(r *gbxio.Reader) error {
			_, err := r.U32()
			return err
		}},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(errors.IO, err))
}

func TestNodeReplay(t *testing.T) {
	// Decoding a node reference twice within one session yields equal
	// values; the body is parsed only once.
	var buf bytes.Buffer
	buf.Write(u32s(1, 0x11223344, 99, 1))

	r := gbxio.NewReaderIDNodes(
		bytes.NewReader(buf.Bytes()), gbxio.NewIDState(), gbxio.NewNodeState(1))
	parses := 0
	readNode := func(r *gbxio.Reader) (uint32, error) {
		parses++
		return r.U32()
	}
	first, err := gbxio.Node(r, 0x11223344, readNode)
	require.NoError(t, err)
	second, err := gbxio.Node(r, 0x11223344, readNode)
	require.NoError(t, err)
	assert.Equal(t, uint32(99), first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, parses)
}

func TestNodeNull(t *testing.T) {
	r := gbxio.NewReaderIDNodes(
		bytes.NewReader(u32s(0xFFFFFFFF)), gbxio.NewIDState(), gbxio.NewNodeState(1))
	node, err := gbxio.OptionalNode(r, 0x11223344, func(r *gbxio.Reader) (uint32, error) {
		return r.U32()
	})
	require.NoError(t, err)
	assert.Nil(t, node)
}

func TestNodeIndexOutOfRange(t *testing.T) {
	r := gbxio.NewReaderIDNodes(
		bytes.NewReader(u32s(5)), gbxio.NewIDState(), gbxio.NewNodeState(1))
	_, err := gbxio.OptionalNode(r, 0x11223344, func(r *gbxio.Reader) (uint32, error) {
		return r.U32()
	})
	require.Error(t, err)
	assert.True(t, errors.Is(errors.Structure, err))
}

func TestWriterNode(t *testing.T) {
	var buf bytes.Buffer
	w := gbxio.NewWriterIDNodes(&buf, gbxio.NewWriteIDState(), gbxio.NewWriteNodeState())
	require.NoError(t, w.Node(0x11223344, func(w *gbxio.Writer) error {
		return w.U32(99)
	}))
	assert.Equal(t, u32s(1, 0x11223344, 99, gbxio.EndOfNode), buf.Bytes())

	r := gbxio.NewReaderIDNodes(
		bytes.NewReader(buf.Bytes()), gbxio.NewIDState(), gbxio.NewNodeState(1))
	v, err := gbxio.Node(r, 0x11223344, func(r *gbxio.Reader) (uint32, error) {
		v, err := r.U32()
		if err != nil {
			return 0, err
		}
		return v, r.NodeEnd()
	})
	require.NoError(t, err)
	assert.Equal(t, uint32(99), v)
}

func TestSkippableChunkWriter(t *testing.T) {
	var buf bytes.Buffer
	w := gbxio.NewWriter(&buf)
	require.NoError(t, w.SkippableChunk(0x03043018, func(w *gbxio.Writer) error {
		if err := w.Bool(true); err != nil {
			return err
		}
		return w.U32(2)
	}))

	var want bytes.Buffer
	want.Write(u32s(0x03043018))
	want.WriteString("PIKS")
	want.Write(u32s(8, 1, 2))
	assert.Equal(t, want.Bytes(), buf.Bytes())

	r := gbxio.NewReader(bytes.NewReader(buf.Bytes()))
	size, err := r.SkippableChunkID(0x03043018)
	require.NoError(t, err)
	assert.Equal(t, uint32(8), size)
}

func TestStringInvalidUTF8(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(u32s(2))
	buf.Write([]byte{0xFF, 0xFE})
	r := gbxio.NewReader(bytes.NewReader(buf.Bytes()))
	_, err := r.String()
	require.Error(t, err)
	assert.True(t, errors.Is(errors.Payload, err))
}

func TestFlatNode(t *testing.T) {
	r := gbxio.NewReader(bytes.NewReader(u32s(0x2E009000, 7)))
	v, err := gbxio.FlatNode(r, 0x2E009000, func(r *gbxio.Reader) (uint32, error) {
		return r.U32()
	})
	require.NoError(t, err)
	assert.Equal(t, uint32(7), v)

	r = gbxio.NewReader(bytes.NewReader(u32s(0xFFFFFFFF)))
	node, err := gbxio.OptionalFlatNode(r, 0x2E009000, func(r *gbxio.Reader) (uint32, error) {
		return r.U32()
	})
	require.NoError(t, err)
	assert.Nil(t, node)
}
