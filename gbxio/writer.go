// Copyright 2023 the gbx authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package gbxio

import (
	"bytes"
	"io"
	"math"

	"github.com/jussyDr/gbx/errors"
)

// WriteIDState is the write-side identifier interning table of one chunk
// group. The first ID written through a state emits the table's version
// header; writing an already-interned string emits its reference tag.
//
// A zero WriteIDState is ready to use.
type WriteIDState struct {
	seenVersion bool
	ids         map[ID]uint32
}

// NewWriteIDState returns a fresh write-side interning table.
func NewWriteIDState() *WriteIDState { return new(WriteIDState) }

// WriteNodeState allocates the 1-based node indices referenced from the body
// stream.
type WriteNodeState struct {
	next uint32
}

// NewWriteNodeState returns a node index allocator.
func NewWriteNodeState() *WriteNodeState { return new(WriteNodeState) }

// NumNodes returns the number of node indices handed out so far, plus one
// for the root node. This is the node count the file header declares.
func (n *WriteNodeState) NumNodes() uint32 { return n.next + 1 }

// A Writer encodes GBX primitives onto a byte stream. Methods that touch the
// identifier or node tables require the corresponding state to be attached.
//
// Writer is not safe for concurrent use.
type Writer struct {
	w    io.Writer
	id   *WriteIDState
	node *WriteNodeState
	buf  [8]byte
}

// NewWriter returns a Writer over w with no identifier or node state
// attached.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// NewWriterIDs is like NewWriter with an identifier table attached.
func NewWriterIDs(w io.Writer, id *WriteIDState) *Writer {
	gw := NewWriter(w)
	gw.id = id
	return gw
}

// NewWriterIDNodes is like NewWriter with both an identifier table and a
// node index allocator attached.
func NewWriterIDNodes(w io.Writer, id *WriteIDState, node *WriteNodeState) *Writer {
	gw := NewWriterIDs(w, id)
	gw.node = node
	return gw
}

// Bytes writes raw bytes.
func (w *Writer) Bytes(b []byte) error {
	if _, err := w.w.Write(b); err != nil {
		return errors.E(errors.IO, err)
	}
	return nil
}

// U8 writes one byte.
func (w *Writer) U8(v uint8) error {
	w.buf[0] = v
	return w.Bytes(w.buf[:1])
}

// U16 writes a little-endian 16-bit unsigned integer.
func (w *Writer) U16(v uint16) error {
	w.buf[0] = byte(v)
	w.buf[1] = byte(v >> 8)
	return w.Bytes(w.buf[:2])
}

// U32 writes a little-endian 32-bit unsigned integer.
func (w *Writer) U32(v uint32) error {
	w.buf[0] = byte(v)
	w.buf[1] = byte(v >> 8)
	w.buf[2] = byte(v >> 16)
	w.buf[3] = byte(v >> 24)
	return w.Bytes(w.buf[:4])
}

// U64 writes a little-endian 64-bit unsigned integer.
func (w *Writer) U64(v uint64) error {
	if err := w.U32(uint32(v)); err != nil {
		return err
	}
	return w.U32(uint32(v >> 32))
}

// I16 writes a little-endian 16-bit signed integer.
func (w *Writer) I16(v int16) error {
	return w.U16(uint16(v))
}

// F32 writes a little-endian 32-bit float.
func (w *Writer) F32(v float32) error {
	return w.U32(math.Float32bits(v))
}

// Bool writes a 32-bit boolean.
func (w *Writer) Bool(v bool) error {
	if v {
		return w.U32(1)
	}
	return w.U32(0)
}

// Bool8 writes an 8-bit boolean.
func (w *Writer) Bool8(v bool) error {
	if v {
		return w.U8(1)
	}
	return w.U8(0)
}

// String writes a length-prefixed string.
func (w *Writer) String(s string) error {
	if err := w.U32(uint32(len(s))); err != nil {
		return err
	}
	return w.Bytes([]byte(s))
}

// PackedIndex writes an index packed into the smallest of 1, 2 or 4 bytes
// sufficient for the given bound.
func (w *Writer) PackedIndex(v, max uint32) error {
	switch {
	case max <= math.MaxUint8:
		return w.U8(uint8(v))
	case max <= math.MaxUint16:
		return w.U16(uint16(v))
	}
	return w.U32(v)
}

// Vec3U8 writes a vector of three bytes.
func (w *Writer) Vec3U8(v Vec3[uint8]) error {
	if err := w.U8(v.X); err != nil {
		return err
	}
	if err := w.U8(v.Y); err != nil {
		return err
	}
	return w.U8(v.Z)
}

// Vec3F32 writes a vector of three 32-bit floats.
func (w *Writer) Vec3F32(v Vec3[float32]) error {
	if err := w.F32(v.X); err != nil {
		return err
	}
	if err := w.F32(v.Y); err != nil {
		return err
	}
	return w.F32(v.Z)
}

// ID writes an identifier, interning its string contents. The empty string
// interns like any other value.
func (w *Writer) ID(id ID) error {
	if err := w.idVersion(); err != nil {
		return err
	}
	if index, ok := w.id.ids[id]; ok {
		return w.U32(0x40000000 | (index + 1))
	}
	if err := w.U32(0x40000000); err != nil {
		return err
	}
	if err := w.String(string(id)); err != nil {
		return err
	}
	if w.id.ids == nil {
		w.id.ids = make(map[ID]uint32)
	}
	w.id.ids[id] = uint32(len(w.id.ids))
	return nil
}

// OptionalID writes an identifier; the empty ID is written as the null tag.
func (w *Writer) OptionalID(id ID) error {
	if id == "" {
		if err := w.idVersion(); err != nil {
			return err
		}
		return w.U32(Null)
	}
	return w.ID(id)
}

func (w *Writer) idVersion() error {
	if w.id == nil {
		return errors.E(errors.Structure, "no id state attached")
	}
	if w.id.seenVersion {
		return nil
	}
	if err := w.U32(idVersion); err != nil {
		return err
	}
	w.id.seenVersion = true
	return nil
}

// FileRef writes a file reference; nil writes the null encoding.
func (w *Writer) FileRef(fr FileRef) error {
	if err := w.U8(3); err != nil {
		return err
	}
	var (
		hash       [32]byte
		path       string
		locatorURL string
	)
	switch fr := fr.(type) {
	case nil:
	case InternalFileRef:
		hash[0] = 2
		path = fr.Path
	case ExternalFileRef:
		hash = fr.Hash
		path = fr.Path
		locatorURL = fr.LocatorURL
	default:
		return errors.E(errors.Payload, "unsupported file ref variant")
	}
	if err := w.Bytes(hash[:]); err != nil {
		return err
	}
	if err := w.String(path); err != nil {
		return err
	}
	return w.String(locatorURL)
}

// ChunkID writes a chunk ID.
func (w *Writer) ChunkID(chunkID uint32) error {
	return w.U32(chunkID)
}

// NodeEnd writes the end-of-node sentinel.
func (w *Writer) NodeEnd() error {
	return w.U32(EndOfNode)
}

// SkippableChunk writes a chunk with the skippable framing: the body
// produced by fn is buffered so that the size can precede it.
func (w *Writer) SkippableChunk(chunkID uint32, fn func(*Writer) error) error {
	var buf bytes.Buffer
	bw := &Writer{w: &buf, id: w.id, node: w.node}
	if err := fn(bw); err != nil {
		return err
	}
	if err := w.U32(chunkID); err != nil {
		return err
	}
	if err := w.Bytes(skipMarker[:]); err != nil {
		return err
	}
	if err := w.U32(uint32(buf.Len())); err != nil {
		return err
	}
	return w.Bytes(buf.Bytes())
}

// Node writes a node reference: a fresh 1-based table index, the class ID,
// the body produced by fn, and the end-of-node sentinel.
func (w *Writer) Node(classID uint32, fn func(*Writer) error) error {
	if w.node == nil {
		return errors.E(errors.Structure, "no node state attached")
	}
	w.node.next++
	if err := w.U32(w.node.next); err != nil {
		return err
	}
	if err := w.U32(classID); err != nil {
		return err
	}
	if err := fn(w); err != nil {
		return err
	}
	return w.NodeEnd()
}

// NullNode writes a null node reference.
func (w *Writer) NullNode() error {
	return w.U32(Null)
}
