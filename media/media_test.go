// Copyright 2023 the gbx authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package media_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jussyDr/gbx/gbxio"
	"github.com/jussyDr/gbx/media"
)

func TestReadClip(t *testing.T) {
	var buf bytes.Buffer
	w := gbxio.NewWriter(&buf)
	require.NoError(t, w.ChunkID(0x0307900D))
	require.NoError(t, w.U32(0))
	require.NoError(t, w.U32(10))
	require.NoError(t, w.U32(0)) // no tracks
	require.NoError(t, w.String("Intro"))
	require.NoError(t, w.Bool(true)) // stop on leave
	require.NoError(t, w.U32(0))
	require.NoError(t, w.Bool(false)) // stop on respawn
	require.NoError(t, w.U32(0))
	require.NoError(t, w.F32(0))
	require.NoError(t, w.U32(0))
	require.NoError(t, w.NodeEnd())

	r := gbxio.NewReaderIDNodes(
		bytes.NewReader(buf.Bytes()), gbxio.NewIDState(), gbxio.NewNodeState(4))
	clip, err := media.ReadClip(r)
	require.NoError(t, err)
	assert.Equal(t, "Intro", clip.Name)
	assert.True(t, clip.StopOnLeave)
	assert.False(t, clip.StopOnRespawn)
	assert.False(t, clip.CanTriggerBeforeStart)
	assert.Empty(t, clip.Tracks)
}

func TestReadClipTriggerChunk(t *testing.T) {
	var buf bytes.Buffer
	w := gbxio.NewWriter(&buf)
	require.NoError(t, w.ChunkID(0x0307900D))
	require.NoError(t, w.U32(0))
	require.NoError(t, w.U32(10))
	require.NoError(t, w.U32(0))
	require.NoError(t, w.String(""))
	require.NoError(t, w.Bool(false))
	require.NoError(t, w.U32(0))
	require.NoError(t, w.Bool(true))
	require.NoError(t, w.U32(0))
	require.NoError(t, w.F32(0))
	require.NoError(t, w.U32(0))
	require.NoError(t, w.SkippableChunk(0x0307900E, func(w *gbxio.Writer) error {
		if err := w.U32(0); err != nil {
			return err
		}
		return w.Bool(true)
	}))
	require.NoError(t, w.NodeEnd())

	r := gbxio.NewReaderIDNodes(
		bytes.NewReader(buf.Bytes()), gbxio.NewIDState(), gbxio.NewNodeState(4))
	clip, err := media.ReadClip(r)
	require.NoError(t, err)
	assert.True(t, clip.CanTriggerBeforeStart)
}

func TestReadClipGroup(t *testing.T) {
	var buf bytes.Buffer
	w := gbxio.NewWriterIDNodes(&buf, gbxio.NewWriteIDState(), gbxio.NewWriteNodeState())
	require.NoError(t, w.ChunkID(0x0307A003))
	require.NoError(t, w.U32(10))
	require.NoError(t, w.U32(1)) // one clip
	require.NoError(t, w.Node(media.ClipClassID, func(w *gbxio.Writer) error {
		if err := w.ChunkID(0x0307900D); err != nil {
			return err
		}
		if err := w.U32(0); err != nil {
			return err
		}
		if err := w.U32(10); err != nil {
			return err
		}
		if err := w.U32(0); err != nil {
			return err
		}
		if err := w.String("InGame"); err != nil {
			return err
		}
		if err := w.Bool(false); err != nil {
			return err
		}
		if err := w.U32(0); err != nil {
			return err
		}
		if err := w.Bool(true); err != nil {
			return err
		}
		if err := w.U32(0); err != nil {
			return err
		}
		if err := w.F32(0); err != nil {
			return err
		}
		return w.U32(0)
	}))
	require.NoError(t, w.U32(1)) // one trigger
	for i := 0; i < 4; i++ {
		require.NoError(t, w.U32(0))
	}
	require.NoError(t, w.U32(2)) // race time greater than
	require.NoError(t, w.F32(12.5))
	require.NoError(t, w.U32(1)) // one coord
	require.NoError(t, w.U32(10))
	require.NoError(t, w.U32(11))
	require.NoError(t, w.U32(12))
	require.NoError(t, w.NodeEnd())

	r := gbxio.NewReaderIDNodes(
		bytes.NewReader(buf.Bytes()), gbxio.NewIDState(), gbxio.NewNodeState(4))
	clipGroup, err := media.ReadClipGroup(r)
	require.NoError(t, err)
	require.Len(t, clipGroup.Clips, 1)
	trigger := clipGroup.Clips[0]
	assert.Equal(t, "InGame", trigger.Clip.Name)
	assert.Equal(t, media.ConditionRaceTimeGreaterThan, trigger.Condition.Kind)
	assert.Equal(t, float32(12.5), trigger.Condition.Time)
	require.Len(t, trigger.Coords, 1)
	assert.Equal(t, gbxio.Vec3[uint32]{X: 10, Y: 11, Z: 12}, trigger.Coords[0])
}
