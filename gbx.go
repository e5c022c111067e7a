// Copyright 2023 the gbx authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package gbx

import (
	"bytes"
	"fmt"
	"io"

	"github.com/jussyDr/gbx/errors"
	"github.com/jussyDr/gbx/gbxio"
	"github.com/rasky/go-lzo"
)

const (
	formatBinary           = 'B'
	formatText             = 'T'
	compressionCompressed  = 'C'
	compressionUncompressed = 'U'
)

// ReadOpts configures decoding. The zero value decodes the whole file.
type ReadOpts struct {
	// SkipUserData leaves the header-chunk section unparsed; fields that
	// are only carried there keep their defaults.
	SkipUserData bool
	// SkipBody stops after the user-data section, producing a header-only
	// decode.
	SkipBody bool
}

// WriteOpts configures encoding. The zero value writes an LZO-compressed
// body.
type WriteOpts struct {
	// Uncompressed emits the body without compression.
	Uncompressed bool
}

// A ReadError is the error type returned by the read entry points. The
// underlying error carries the detail.
type ReadError struct {
	Err error
}

func (e *ReadError) Error() string { return "gbx: read: " + e.Err.Error() }

// Unwrap returns the underlying error.
func (e *ReadError) Unwrap() error { return e.Err }

// A WriteError is the error type returned by the write entry points. The
// underlying error carries the detail.
type WriteError struct {
	Err error
}

func (e *WriteError) Error() string { return "gbx: write: " + e.Err.Error() }

// Unwrap returns the underlying error.
func (e *WriteError) Unwrap() error { return e.Err }

// A HeaderChunk is one entry of a class's ordered header-chunk registry.
type HeaderChunk struct {
	// ID is the 32-bit chunk ID.
	ID uint32
	// Read parses the chunk payload.
	Read func(*gbxio.Reader) error
}

// A WriteHeaderChunk is the write-side counterpart of a HeaderChunk.
type WriteHeaderChunk struct {
	// ID is the 32-bit chunk ID.
	ID uint32
	// Skippable sets the is-skippable top bit on the chunk's declared
	// size.
	Skippable bool
	// Write produces the chunk payload.
	Write func(*gbxio.Writer) error
}

// ReadNode decodes one GBX file: envelope, user-data section against the
// header registry, and the (optionally compressed) body through the body
// function. It is the shared entry point underneath the per-class readers.
func ReadNode(rd io.Reader, classID uint32, opts ReadOpts, header []HeaderChunk, body func(*gbxio.Reader) error) error {
	r := gbxio.NewReader(rd)

	magic, err := r.Bytes(3)
	if err != nil {
		return err
	}
	if !bytes.Equal(magic, []byte("GBX")) {
		return errors.E(errors.Format, "bad magic")
	}
	version, err := r.U16()
	if err != nil {
		return err
	}
	if version != 6 {
		return errors.E(errors.Format, fmt.Sprintf("unsupported file version %d", version))
	}
	format, err := r.U8()
	if err != nil {
		return err
	}
	switch format {
	case formatBinary:
	case formatText:
		return errors.E(errors.Format, "text file format not supported")
	default:
		return errors.E(errors.Format, "unknown format")
	}
	refTableCompression, err := r.U8()
	if err != nil {
		return err
	}
	switch refTableCompression {
	case compressionUncompressed:
	case compressionCompressed:
		return errors.E(errors.Format, "compressed ref table not supported")
	default:
		return errors.E(errors.Format, "unknown compression")
	}
	bodyCompression, err := r.U8()
	if err != nil {
		return err
	}
	if bodyCompression != compressionCompressed && bodyCompression != compressionUncompressed {
		return errors.E(errors.Format, "unknown compression")
	}
	unknown, err := r.U8()
	if err != nil {
		return err
	}
	if unknown != 'R' {
		return errors.E(errors.Format, "bad unknown byte")
	}
	if err := r.ClassID(classID); err != nil {
		return err
	}
	userDataSize, err := r.U32()
	if err != nil {
		return err
	}
	userData, err := r.Bytes(int(userDataSize))
	if err != nil {
		return err
	}
	numNodes, err := r.U32()
	if err != nil {
		return err
	}

	if len(userData) > 0 && !opts.SkipUserData {
		if err := readUserData(userData, header); err != nil {
			return err
		}
	}

	numNodeRefs, err := r.U32()
	if err != nil {
		return err
	}
	if numNodeRefs > 0 {
		return errors.E(errors.Format, "reference table not supported")
	}
	if opts.SkipBody {
		return nil
	}

	var bodyBytes []byte
	if bodyCompression == compressionCompressed {
		bodySize, err := r.U32()
		if err != nil {
			return err
		}
		compressedSize, err := r.U32()
		if err != nil {
			return err
		}
		compressed, err := r.Bytes(int(compressedSize))
		if err != nil {
			return err
		}
		bodyBytes, err = lzo.Decompress1X(bytes.NewReader(compressed), len(compressed), int(bodySize))
		if err != nil {
			return errors.E(errors.Compression, err)
		}
		if len(bodyBytes) != int(bodySize) {
			return errors.E(errors.Compression, "body size mismatch")
		}
	} else {
		bodyBytes, err = io.ReadAll(rd)
		if err != nil {
			return errors.E(errors.IO, err)
		}
	}

	br := gbxio.NewReaderIDNodes(
		bytes.NewReader(bodyBytes), gbxio.NewIDState(), gbxio.NewNodeState(int(numNodes)))
	return body(br)
}

// readUserData decodes the header-chunk section: a chunk table with the
// is-skippable top bit on each declared size, followed by the concatenated
// payloads. One identifier table spans the whole section; each chunk is
// parsed from its own sub-reader so that a chunk cannot overrun its
// neighbour.
func readUserData(userData []byte, header []HeaderChunk) error {
	r := gbxio.NewReader(bytes.NewReader(userData))
	type tableEntry struct {
		chunkID uint32
		size    uint32
	}
	entries, err := gbxio.ReadList(r, func(r *gbxio.Reader) (tableEntry, error) {
		chunkID, err := r.U32()
		if err != nil {
			return tableEntry{}, err
		}
		size, err := r.U32()
		if err != nil {
			return tableEntry{}, err
		}
		return tableEntry{chunkID, size & 0x7FFFFFFF}, nil
	})
	if err != nil {
		return err
	}
	idState := gbxio.NewIDState()
	i := 0
	for _, entry := range entries {
		for {
			if i >= len(header) {
				return errors.E(errors.Structure, fmt.Sprintf("unknown chunk %08X", entry.chunkID))
			}
			if header[i].ID != entry.chunkID {
				i++
				continue
			}
			payload, err := r.Bytes(int(entry.size))
			if err != nil {
				return err
			}
			cr := gbxio.NewReaderIDs(bytes.NewReader(payload), idState)
			if err := header[i].Read(cr); err != nil {
				return err
			}
			break
		}
	}
	return nil
}

// WriteNode encodes one GBX file: the body is produced first so that the
// node count is known, then the user-data section, then the envelope.
func WriteNode(wr io.Writer, classID uint32, opts WriteOpts, header []WriteHeaderChunk, body func(*gbxio.Writer) error) error {
	var bodyBuf bytes.Buffer
	nodeState := gbxio.NewWriteNodeState()
	bw := gbxio.NewWriterIDNodes(&bodyBuf, gbxio.NewWriteIDState(), nodeState)
	if err := body(bw); err != nil {
		return err
	}
	if err := bw.NodeEnd(); err != nil {
		return err
	}

	userData, err := writeUserData(header)
	if err != nil {
		return err
	}

	w := gbxio.NewWriter(wr)
	if err := w.Bytes([]byte("GBX")); err != nil {
		return err
	}
	if err := w.U16(6); err != nil {
		return err
	}
	bodyCompression := byte(compressionCompressed)
	if opts.Uncompressed {
		bodyCompression = compressionUncompressed
	}
	if err := w.Bytes([]byte{formatBinary, compressionUncompressed, bodyCompression, 'R'}); err != nil {
		return err
	}
	if err := w.U32(classID); err != nil {
		return err
	}
	if err := w.U32(uint32(len(userData))); err != nil {
		return err
	}
	if err := w.Bytes(userData); err != nil {
		return err
	}
	if err := w.U32(nodeState.NumNodes()); err != nil {
		return err
	}
	if err := w.U32(0); err != nil { // empty reference table
		return err
	}
	if opts.Uncompressed {
		return w.Bytes(bodyBuf.Bytes())
	}
	compressed := lzo.Compress1X(bodyBuf.Bytes())
	if err := w.U32(uint32(bodyBuf.Len())); err != nil {
		return err
	}
	if err := w.U32(uint32(len(compressed))); err != nil {
		return err
	}
	return w.Bytes(compressed)
}

func writeUserData(header []WriteHeaderChunk) ([]byte, error) {
	idState := gbxio.NewWriteIDState()
	payloads := make([][]byte, 0, len(header))
	for _, chunk := range header {
		var buf bytes.Buffer
		cw := gbxio.NewWriterIDs(&buf, idState)
		if err := chunk.Write(cw); err != nil {
			return nil, err
		}
		payloads = append(payloads, buf.Bytes())
	}
	var buf bytes.Buffer
	w := gbxio.NewWriter(&buf)
	if err := w.U32(uint32(len(header))); err != nil {
		return nil, err
	}
	for i, chunk := range header {
		if err := w.U32(chunk.ID); err != nil {
			return nil, err
		}
		size := uint32(len(payloads[i]))
		if chunk.Skippable {
			size |= 0x80000000
		}
		if err := w.U32(size); err != nil {
			return nil, err
		}
	}
	for _, payload := range payloads {
		if err := w.Bytes(payload); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}
