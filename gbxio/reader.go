// Copyright 2023 the gbx authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package gbxio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"unicode/utf8"

	"github.com/jussyDr/gbx/errors"
)

// EndOfNode is the sentinel chunk ID terminating a node's chunk sequence.
const EndOfNode = 0xFACADE01

// Null is the wire value denoting a null ID or node reference.
const Null = 0xFFFFFFFF

const idVersion = 3

var skipMarker = [4]byte{'P', 'I', 'K', 'S'}

// IDState is the identifier interning table of one chunk group. The first ID
// read through a state consumes the table's version header; subsequent reads
// of an already-seen string resolve through the table by index.
//
// A zero IDState is ready to use.
type IDState struct {
	seenVersion bool
	ids         []ID
}

// NewIDState returns a fresh interning table.
func NewIDState() *IDState { return new(IDState) }

// NodeState is the node-reference table of one decode session, sized from
// the file header's node count. Slots fill lazily: the first reference to an
// index parses the node, later references replay the stored value.
type NodeState struct {
	nodes []interface{}
}

// NewNodeState returns a node table with n slots.
func NewNodeState(n int) *NodeState {
	return &NodeState{nodes: make([]interface{}, n)}
}

// A Reader decodes GBX primitives from a byte stream. The zero Reader is not
// usable; construct one with NewReader. Methods that touch the identifier or
// node tables require the corresponding state to be attached.
//
// Reader is not safe for concurrent use.
type Reader struct {
	r    io.Reader
	s    io.Seeker // nil when the stream is not seekable
	id   *IDState
	node *NodeState
	buf  [8]byte
}

// NewReader returns a Reader over r with no identifier or node state
// attached. If r implements io.Seeker, seek-dependent operations (PeekU32,
// Skip past skippable chunks) are available.
func NewReader(r io.Reader) *Reader {
	gr := &Reader{r: r}
	if s, ok := r.(io.Seeker); ok {
		gr.s = s
	}
	return gr
}

// NewReaderIDs is like NewReader with an identifier table attached.
func NewReaderIDs(r io.Reader, id *IDState) *Reader {
	gr := NewReader(r)
	gr.id = id
	return gr
}

// NewReaderIDNodes is like NewReader with both an identifier table and a
// node table attached.
func NewReaderIDNodes(r io.Reader, id *IDState, node *NodeState) *Reader {
	gr := NewReaderIDs(r, id)
	gr.node = node
	return gr
}

func (r *Reader) read(n int) ([]byte, error) {
	buf := r.buf[:n]
	if _, err := io.ReadFull(r.r, buf); err != nil {
		return nil, errors.E(errors.IO, err)
	}
	return buf, nil
}

// U8 reads one byte.
func (r *Reader) U8() (uint8, error) {
	buf, err := r.read(1)
	if err != nil {
		return 0, err
	}
	return buf[0], nil
}

// U16 reads a little-endian 16-bit unsigned integer.
func (r *Reader) U16() (uint16, error) {
	buf, err := r.read(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf), nil
}

// U32 reads a little-endian 32-bit unsigned integer.
func (r *Reader) U32() (uint32, error) {
	buf, err := r.read(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf), nil
}

// U64 reads a little-endian 64-bit unsigned integer.
func (r *Reader) U64() (uint64, error) {
	buf, err := r.read(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf), nil
}

// I16 reads a little-endian 16-bit signed integer.
func (r *Reader) I16() (int16, error) {
	v, err := r.U16()
	return int16(v), err
}

// F32 reads a little-endian 32-bit float.
func (r *Reader) F32() (float32, error) {
	v, err := r.U32()
	return math.Float32frombits(v), err
}

// Bytes reads n bytes into a fresh buffer.
func (r *Reader) Bytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		return nil, errors.E(errors.IO, err)
	}
	return buf, nil
}

// Bool reads a 32-bit boolean. Values other than 0 and 1 are an error.
func (r *Reader) Bool() (bool, error) {
	v, err := r.U32()
	if err != nil {
		return false, err
	}
	switch v {
	case 0:
		return false, nil
	case 1:
		return true, nil
	}
	return false, errors.E(errors.Payload, "expected boolean")
}

// Bool8 reads an 8-bit boolean. Values other than 0 and 1 are an error.
func (r *Reader) Bool8() (bool, error) {
	v, err := r.U8()
	if err != nil {
		return false, err
	}
	switch v {
	case 0:
		return false, nil
	case 1:
		return true, nil
	}
	return false, errors.E(errors.Payload, "expected boolean")
}

// String reads a length-prefixed UTF-8 string.
func (r *Reader) String() (string, error) {
	n, err := r.U32()
	if err != nil {
		return "", err
	}
	buf, err := r.Bytes(int(n))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(buf) {
		return "", errors.E(errors.Payload, "invalid utf-8 string")
	}
	return string(buf), nil
}

// PackedIndex reads an index packed into the smallest of 1, 2 or 4 bytes
// sufficient for the given bound.
func (r *Reader) PackedIndex(max uint32) (uint32, error) {
	switch {
	case max <= math.MaxUint8:
		v, err := r.U8()
		return uint32(v), err
	case max <= math.MaxUint16:
		v, err := r.U16()
		return uint32(v), err
	}
	return r.U32()
}

// Vec2F32 reads two 32-bit floats.
func (r *Reader) Vec2F32() ([2]float32, error) {
	x, err := r.F32()
	if err != nil {
		return [2]float32{}, err
	}
	y, err := r.F32()
	if err != nil {
		return [2]float32{}, err
	}
	return [2]float32{x, y}, nil
}

// Vec3U8 reads a vector of three bytes.
func (r *Reader) Vec3U8() (Vec3[uint8], error) {
	var v Vec3[uint8]
	var err error
	if v.X, err = r.U8(); err != nil {
		return v, err
	}
	if v.Y, err = r.U8(); err != nil {
		return v, err
	}
	v.Z, err = r.U8()
	return v, err
}

// Vec3U32 reads a vector of three 32-bit unsigned integers.
func (r *Reader) Vec3U32() (Vec3[uint32], error) {
	var v Vec3[uint32]
	var err error
	if v.X, err = r.U32(); err != nil {
		return v, err
	}
	if v.Y, err = r.U32(); err != nil {
		return v, err
	}
	v.Z, err = r.U32()
	return v, err
}

// Vec3F32 reads a vector of three 32-bit floats.
func (r *Reader) Vec3F32() (Vec3[float32], error) {
	var v Vec3[float32]
	var err error
	if v.X, err = r.F32(); err != nil {
		return v, err
	}
	if v.Y, err = r.F32(); err != nil {
		return v, err
	}
	v.Z, err = r.F32()
	return v, err
}

// List invokes fn once per element of a length-prefixed list.
func (r *Reader) List(fn func(*Reader) error) error {
	n, err := r.U32()
	if err != nil {
		return err
	}
	return r.RepeatN(int(n), fn)
}

// RepeatN invokes fn n times.
func (r *Reader) RepeatN(n int, fn func(*Reader) error) error {
	for i := 0; i < n; i++ {
		if err := fn(r); err != nil {
			return err
		}
	}
	return nil
}

// ReadList reads a length-prefixed list, collecting one value per element.
// An empty list yields a nil slice.
func ReadList[T any](r *Reader, fn func(*Reader) (T, error)) ([]T, error) {
	n, err := r.U32()
	if err != nil {
		return nil, err
	}
	return Repeat(r, int(n), fn)
}

// Repeat collects n values read by fn. Zero repetitions yield a nil slice.
func Repeat[T any](r *Reader, n int, fn func(*Reader) (T, error)) ([]T, error) {
	if n == 0 {
		return nil, nil
	}
	vs := make([]T, 0, n)
	for i := 0; i < n; i++ {
		v, err := fn(r)
		if err != nil {
			return nil, err
		}
		vs = append(vs, v)
	}
	return vs, nil
}

// Skip advances the stream by n bytes.
func (r *Reader) Skip(n int64) error {
	if r.s != nil {
		if _, err := r.s.Seek(n, io.SeekCurrent); err != nil {
			return errors.E(errors.IO, err)
		}
		return nil
	}
	if _, err := io.CopyN(io.Discard, r.r, n); err != nil {
		return errors.E(errors.IO, err)
	}
	return nil
}

// PeekU32 reads a 32-bit unsigned integer and seeks back over it. The stream
// must be seekable.
func (r *Reader) PeekU32() (uint32, error) {
	if r.s == nil {
		return 0, errors.E(errors.IO, "stream is not seekable")
	}
	v, err := r.U32()
	if err != nil {
		return 0, err
	}
	if _, err := r.s.Seek(-4, io.SeekCurrent); err != nil {
		return 0, errors.E(errors.IO, err)
	}
	return v, nil
}

// OptionalFileRef reads a file reference; the all-zero encoding decodes to
// nil.
func (r *Reader) OptionalFileRef() (FileRef, error) {
	version, err := r.U8()
	if err != nil {
		return nil, err
	}
	if version != 3 {
		return nil, errors.E(errors.Payload, "unsupported file ref version")
	}
	var hash [32]byte
	if _, err := io.ReadFull(r.r, hash[:]); err != nil {
		return nil, errors.E(errors.IO, err)
	}
	path, err := r.String()
	if err != nil {
		return nil, err
	}
	locatorURL, err := r.String()
	if err != nil {
		return nil, err
	}
	if hash == [32]byte{} && path == "" && locatorURL == "" {
		return nil, nil
	}
	internalHash := [32]byte{0: 2}
	if hash == internalHash && locatorURL == "" {
		return InternalFileRef{Path: path}, nil
	}
	return ExternalFileRef{Hash: hash, Path: path, LocatorURL: locatorURL}, nil
}

// OptionalInternalFileRef reads a file reference that must be internal or
// null.
func (r *Reader) OptionalInternalFileRef() (*InternalFileRef, error) {
	fr, err := r.OptionalFileRef()
	if err != nil || fr == nil {
		return nil, err
	}
	internal, ok := fr.(InternalFileRef)
	if !ok {
		return nil, errors.E(errors.Payload, "expected internal file ref")
	}
	return &internal, nil
}

// OptionalExternalFileRef reads a file reference that must be external or
// null.
func (r *Reader) OptionalExternalFileRef() (*ExternalFileRef, error) {
	fr, err := r.OptionalFileRef()
	if err != nil || fr == nil {
		return nil, err
	}
	external, ok := fr.(ExternalFileRef)
	if !ok {
		return nil, errors.E(errors.Payload, "expected external file ref")
	}
	return &external, nil
}

// ID reads a non-null identifier.
func (r *Reader) ID() (ID, error) {
	id, null, err := r.optionalID()
	if err != nil {
		return "", err
	}
	if null {
		return "", errors.E(errors.Structure, "expected id, got null")
	}
	return id, nil
}

// OptionalID reads an identifier; the null tag decodes to the empty ID.
func (r *Reader) OptionalID() (ID, error) {
	id, _, err := r.optionalID()
	return id, err
}

func (r *Reader) optionalID() (ID, bool, error) {
	if r.id == nil {
		return "", false, errors.E(errors.Structure, "no id state attached")
	}
	if !r.id.seenVersion {
		version, err := r.U32()
		if err != nil {
			return "", false, err
		}
		if version != idVersion {
			return "", false, errors.E(errors.Structure, "unsupported id version")
		}
		r.id.seenVersion = true
	}
	tag, err := r.U32()
	if err != nil {
		return "", false, err
	}
	switch {
	case tag == Null:
		return "", true, nil
	case tag == 0x40000000:
		s, err := r.String()
		if err != nil {
			return "", false, err
		}
		id := ID(s)
		r.id.ids = append(r.id.ids, id)
		return id, false, nil
	case tag&0xFFFFF000 == 0x40000000:
		index := int(tag&0x00000FFF) - 1
		if index < 0 || index >= len(r.id.ids) {
			return "", false, errors.E(errors.Structure, fmt.Sprintf("invalid id index %d", index))
		}
		return r.id.ids[index], false, nil
	case tag == 0x00000001:
		// Legacy empty id.
		return "", false, nil
	}
	return "", false, errors.E(errors.Structure, "expected id")
}

// ChunkID reads a chunk ID and checks it against the expected value.
func (r *Reader) ChunkID(chunkID uint32) error {
	v, err := r.U32()
	if err != nil {
		return err
	}
	if v != chunkID {
		return errors.E(errors.Structure, fmt.Sprintf("expected chunk %08X, got chunk %08X", chunkID, v))
	}
	return nil
}

// SkippableChunkID reads a chunk ID plus the skippable framing and returns
// the declared payload size.
func (r *Reader) SkippableChunkID(chunkID uint32) (uint32, error) {
	if err := r.ChunkID(chunkID); err != nil {
		return 0, err
	}
	return r.skippableSize(chunkID)
}

func (r *Reader) skippableSize(chunkID uint32) (uint32, error) {
	var marker [4]byte
	if _, err := io.ReadFull(r.r, marker[:]); err != nil {
		return 0, errors.E(errors.IO, err)
	}
	if marker != skipMarker {
		return 0, errors.E(errors.Format, fmt.Sprintf("expected skippable chunk %08X", chunkID))
	}
	return r.U32()
}

// ClassID reads a class ID and checks it against the expected value.
func (r *Reader) ClassID(classID uint32) error {
	v, err := r.U32()
	if err != nil {
		return err
	}
	if v != classID {
		return errors.E(errors.Format, fmt.Sprintf("expected class %08X, got class %08X", classID, v))
	}
	return nil
}

// NodeEnd consumes the end-of-node sentinel.
func (r *Reader) NodeEnd() error {
	v, err := r.U32()
	if err != nil {
		return err
	}
	if v != EndOfNode {
		return errors.E(errors.Format, "expected end of node")
	}
	return nil
}

// SkipChunk consumes a mandatory skippable chunk without inspecting its
// payload.
func (r *Reader) SkipChunk(chunkID uint32) error {
	size, err := r.SkippableChunkID(chunkID)
	if err != nil {
		return err
	}
	return r.Skip(int64(size))
}

// SkipOptionalChunk consumes a skippable chunk if it is present at the
// current position, and is a no-op otherwise.
func (r *Reader) SkipOptionalChunk(chunkID uint32) error {
	present, err := r.atChunk(chunkID)
	if err != nil || !present {
		return err
	}
	size, err := r.skippableSize(chunkID)
	if err != nil {
		return err
	}
	return r.Skip(int64(size))
}

// OptionalChunk invokes fn if the chunk is present at the current position,
// and is a no-op otherwise.
func (r *Reader) OptionalChunk(chunkID uint32, fn func(*Reader) error) error {
	present, err := r.atChunk(chunkID)
	if err != nil || !present {
		return err
	}
	return fn(r)
}

// OptionalSkippableChunk invokes fn on the payload of a skippable chunk if
// it is present at the current position, and is a no-op otherwise.
func (r *Reader) OptionalSkippableChunk(chunkID uint32, fn func(*Reader) error) error {
	present, err := r.atChunk(chunkID)
	if err != nil || !present {
		return err
	}
	if _, err := r.skippableSize(chunkID); err != nil {
		return err
	}
	return fn(r)
}

func (r *Reader) atChunk(chunkID uint32) (bool, error) {
	v, err := r.PeekU32()
	if err != nil {
		return false, err
	}
	if v != chunkID {
		return false, nil
	}
	return true, r.Skip(4)
}

// AnyNodeFunc parses a node body given its class ID.
type AnyNodeFunc func(r *Reader, classID uint32) (interface{}, error)

// AnyOptionalNode dispatches a node reference whose class is not known up
// front. A null reference yields nil. The first reference to a table index
// invokes fn; later references replay the stored node.
func (r *Reader) AnyOptionalNode(fn AnyNodeFunc) (interface{}, error) {
	if r.node == nil {
		return nil, errors.E(errors.Structure, "no node state attached")
	}
	index, err := r.U32()
	if err != nil {
		return nil, err
	}
	if index == Null {
		return nil, nil
	}
	i := int(index) - 1
	if i < 0 || i >= len(r.node.nodes) {
		return nil, errors.E(errors.Structure, "invalid node index")
	}
	if node := r.node.nodes[i]; node != nil {
		return node, nil
	}
	classID, err := r.U32()
	if err != nil {
		return nil, err
	}
	node, err := fn(r, classID)
	if err != nil {
		return nil, err
	}
	r.node.nodes[i] = node
	return node, nil
}

// AnyNode is AnyOptionalNode rejecting null references.
func (r *Reader) AnyNode(fn AnyNodeFunc) (interface{}, error) {
	node, err := r.AnyOptionalNode(fn)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, errors.E(errors.Structure, "expected node, got null")
	}
	return node, nil
}

// NodeRef dispatches a node reference of a known class whose value is not
// retained; fn is invoked for its side effects on the first reference.
func (r *Reader) NodeRef(classID uint32, fn func(*Reader) error) error {
	_, err := Node(r, classID, func(r *Reader) (struct{}, error) {
		return struct{}{}, fn(r)
	})
	return err
}

// OptionalNode dispatches a node reference of a known class through the node
// table. A null reference yields nil; a replayed reference yields a copy of
// the stored node.
func OptionalNode[T any](r *Reader, classID uint32, fn func(*Reader) (T, error)) (*T, error) {
	node, err := r.AnyOptionalNode(func(r *Reader, id uint32) (interface{}, error) {
		if id != classID {
			return nil, errors.E(errors.Format, fmt.Sprintf("expected class %08X, got class %08X", classID, id))
		}
		v, err := fn(r)
		if err != nil {
			return nil, err
		}
		return v, nil
	})
	if err != nil || node == nil {
		return nil, err
	}
	v := node.(T)
	return &v, nil
}

// Node is OptionalNode rejecting null references.
func Node[T any](r *Reader, classID uint32, fn func(*Reader) (T, error)) (T, error) {
	node, err := OptionalNode(r, classID, fn)
	if err != nil {
		var zero T
		return zero, err
	}
	if node == nil {
		var zero T
		return zero, errors.E(errors.Structure, "expected node, got null")
	}
	return *node, nil
}

// FlatNode parses an inlined, non-shared node: class ID plus body, without
// touching the node table.
func FlatNode[T any](r *Reader, classID uint32, fn func(*Reader) (T, error)) (T, error) {
	if err := r.ClassID(classID); err != nil {
		var zero T
		return zero, err
	}
	return fn(r)
}

// OptionalFlatNode is FlatNode with a null check in front.
func OptionalFlatNode[T any](r *Reader, classID uint32, fn func(*Reader) (T, error)) (*T, error) {
	v, err := r.PeekU32()
	if err != nil {
		return nil, err
	}
	if v == Null {
		return nil, r.Skip(4)
	}
	node, err := FlatNode(r, classID, fn)
	if err != nil {
		return nil, err
	}
	return &node, nil
}
