// Copyright 2023 the gbx authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package gbx

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jussyDr/gbx/errors"
	"github.com/jussyDr/gbx/gbxio"
)

// TestMinimalFile round-trips the smallest valid file: no user data, no
// nodes, a body holding only the end-of-node sentinel.
func TestMinimalFile(t *testing.T) {
	const classID = 0x09001000
	var buf bytes.Buffer
	err := WriteNode(&buf, classID, WriteOpts{}, nil, func(w *gbxio.Writer) error {
		return nil
	})
	require.NoError(t, err)

	err = ReadNode(bytes.NewReader(buf.Bytes()), classID, ReadOpts{}, nil, func(r *gbxio.Reader) error {
		return gbxio.ReadBody(r, nil)
	})
	require.NoError(t, err)
}

// TestMinimalFileUncompressed hand-assembles the minimal file with an
// uncompressed body.
func TestMinimalFileUncompressed(t *testing.T) {
	const classID = 0x09001000
	var buf bytes.Buffer
	w := gbxio.NewWriter(&buf)
	require.NoError(t, w.Bytes([]byte("GBX")))
	require.NoError(t, w.U16(6))
	require.NoError(t, w.Bytes([]byte{'B', 'U', 'U', 'R'}))
	require.NoError(t, w.U32(classID))
	require.NoError(t, w.U32(0)) // user data size
	require.NoError(t, w.U32(0)) // num nodes
	require.NoError(t, w.U32(0)) // num node refs
	require.NoError(t, w.U32(gbxio.EndOfNode))

	err := ReadNode(bytes.NewReader(buf.Bytes()), classID, ReadOpts{}, nil, func(r *gbxio.Reader) error {
		return gbxio.ReadBody(r, nil)
	})
	require.NoError(t, err)
}

func envelopePrefix(format, refTable, body, unknown byte) []byte {
	var buf bytes.Buffer
	buf.WriteString("GBX")
	buf.Write([]byte{6, 0})
	buf.Write([]byte{format, refTable, body, unknown})
	return buf.Bytes()
}

func TestEnvelopeErrors(t *testing.T) {
	readPrefix := func(b []byte) error {
		return ReadNode(bytes.NewReader(b), 0x09001000, ReadOpts{}, nil, func(r *gbxio.Reader) error {
			return nil
		})
	}

	err := readPrefix([]byte("NOPE"))
	require.Error(t, err)
	assert.True(t, errors.Is(errors.Format, err))

	err = readPrefix([]byte{'G', 'B', 'X', 5, 0})
	require.Error(t, err)
	assert.True(t, errors.Is(errors.Format, err))

	// Text format is rejected.
	err = readPrefix(envelopePrefix('T', 'U', 'C', 'R'))
	require.Error(t, err)
	assert.True(t, errors.Is(errors.Format, err))

	// A compressed reference table is rejected.
	err = readPrefix(envelopePrefix('B', 'C', 'C', 'R'))
	require.Error(t, err)
	assert.True(t, errors.Is(errors.Format, err))

	// An unrecognized compression byte is rejected.
	err = readPrefix(envelopePrefix('B', 'U', 'X', 'R'))
	require.Error(t, err)
	assert.True(t, errors.Is(errors.Format, err))

	// The unknown byte must be 'R'.
	err = readPrefix(envelopePrefix('B', 'U', 'C', 'S'))
	require.Error(t, err)
	assert.True(t, errors.Is(errors.Format, err))
}

func TestEnvelopeClassIDMismatch(t *testing.T) {
	var buf bytes.Buffer
	err := WriteNode(&buf, 0x09001000, WriteOpts{}, nil, func(w *gbxio.Writer) error {
		return nil
	})
	require.NoError(t, err)

	err = ReadNode(bytes.NewReader(buf.Bytes()), 0x03043000, ReadOpts{}, nil, func(r *gbxio.Reader) error {
		return nil
	})
	require.Error(t, err)
	assert.True(t, errors.Is(errors.Format, err))
}

func TestGhostRead(t *testing.T) {
	// A ghost whose body carries only a subset of its registry decodes
	// cleanly; the dispatcher tolerates absent chunks.
	var buf bytes.Buffer
	err := WriteNode(&buf, ghostClassID, WriteOpts{}, nil, func(w *gbxio.Writer) error {
		if err := w.ChunkID(0x0309200C); err != nil {
			return err
		}
		if err := w.U32(0); err != nil {
			return err
		}
		if err := w.ChunkID(0x0309200F); err != nil {
			return err
		}
		return w.String("ghost record")
	})
	require.NoError(t, err)

	ghost, err := ReadGhost(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.NotNil(t, ghost)
}
