// Copyright 2023 the gbx authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package model

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jussyDr/gbx/errors"
	"github.com/jussyDr/gbx/gbxio"
)

func TestReadVertexStream(t *testing.T) {
	var buf bytes.Buffer
	w := gbxio.NewWriter(&buf)
	require.NoError(t, w.ChunkID(0x09056000))
	require.NoError(t, w.U32(0))
	require.NoError(t, w.U32(2)) // vertices
	require.NoError(t, w.U32(0))
	require.NoError(t, w.U32(0))
	require.NoError(t, w.U32(2)) // two attributes
	// Declaration entries; byte 8 selects the attribute kind.
	require.NoError(t, w.Bytes([]byte{0, 0, 0, 0, 0, 0, 0, 0, 5, 0, 0, 0}))
	require.NoError(t, w.Bytes([]byte{0, 0, 0, 0, 0, 0, 12, 0, 10, 0, 0, 0}))
	for i := 0; i < 2*3; i++ { // positions, kind 5
		require.NoError(t, w.F32(float32(i)))
	}
	for i := 0; i < 2; i++ { // packed colors, kind 10
		require.NoError(t, w.U32(uint32(i)))
	}
	require.NoError(t, w.NodeEnd())

	r := gbxio.NewReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, readVertexStream(r))
	_, err := r.U8()
	require.Error(t, err) // fully consumed
}

func TestReadVertexStreamUnknownKind(t *testing.T) {
	var buf bytes.Buffer
	w := gbxio.NewWriter(&buf)
	require.NoError(t, w.ChunkID(0x09056000))
	require.NoError(t, w.U32(0))
	require.NoError(t, w.U32(1))
	require.NoError(t, w.U32(0))
	require.NoError(t, w.U32(0))
	require.NoError(t, w.U32(1))
	require.NoError(t, w.Bytes([]byte{0, 0, 0, 0, 0, 0, 0, 0, 99, 0, 0, 0}))

	r := gbxio.NewReader(bytes.NewReader(buf.Bytes()))
	err := readVertexStream(r)
	require.Error(t, err)
	assert.True(t, errors.Is(errors.Payload, err))
}

func TestReadIndexBuffer(t *testing.T) {
	var buf bytes.Buffer
	w := gbxio.NewWriter(&buf)
	require.NoError(t, w.ChunkID(0x09057001))
	require.NoError(t, w.U32(0))
	require.NoError(t, w.U32(3))
	for _, delta := range []int16{1, 1, -2} {
		require.NoError(t, w.I16(delta))
	}
	require.NoError(t, w.NodeEnd())

	r := gbxio.NewReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, readIndexBuffer(r))
}

func TestCrystalUVChunkPackedIndices(t *testing.T) {
	// Version 2 carries one packed index per coordinate; with 300
	// entries each index is two bytes wide.
	var buf bytes.Buffer
	w := gbxio.NewWriter(&buf)
	require.NoError(t, w.U32(2)) // version
	require.NoError(t, w.U32(1)) // one uv pair
	require.NoError(t, w.I16(4))
	require.NoError(t, w.I16(5))
	const num = 300
	require.NoError(t, w.U32(num))
	for i := 0; i < num; i++ {
		require.NoError(t, w.PackedIndex(uint32(i), num))
	}

	r := gbxio.NewReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, readCrystalChunk09003006(r))
	_, err := r.U8()
	require.Error(t, err) // fully consumed
}
