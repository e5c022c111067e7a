// Copyright 2023 the gbx authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package media implements the MediaTracker classes referenced by a map:
// clips, clip groups, tracks, and the open sum of media block types.
package media

import (
	"github.com/jussyDr/gbx/errors"
	"github.com/jussyDr/gbx/gbxio"
)

// Class IDs of the MediaTracker node types.
const (
	ClipClassID      = 0x03079000
	ClipGroupClassID = 0x0307A000
	TrackClassID     = 0x03078000
)

// A TrackSegment is the segment of a media track repeated after its last
// block.
type TrackSegment struct {
	// StartTime is the start time of the segment in seconds. [0, ∞)
	StartTime float32
	// EndTime is the end time of the segment in seconds. [0, ∞)
	EndTime float32
}

// A Track is a media track.
type Track struct {
	// Blocks are all blocks of the track.
	Blocks []Block
	// KeepLastBlockActive is true if the last block of the track should
	// remain active after its end time.
	KeepLastBlockActive bool
	// RepeatTrackSegment is the track segment which should be repeated
	// after the last block, if any.
	RepeatTrackSegment *TrackSegment
}

// A Clip is a media clip.
type Clip struct {
	// Tracks are all tracks of the clip.
	Tracks []Track
	// Name is the name of the clip.
	Name string
	// StopOnLeave stops the clip when the player leaves the trigger
	// coords.
	StopOnLeave bool
	// StopOnRespawn stops the clip when the player respawns.
	StopOnRespawn bool
	// CanTriggerBeforeStart is true if the clip can trigger before the
	// start of a race.
	CanTriggerBeforeStart bool
}

// ConditionKind selects the variant of a clip trigger condition.
type ConditionKind uint32

const (
	ConditionNone ConditionKind = iota
	ConditionRaceTimeLessThan
	ConditionRaceTimeGreaterThan
	ConditionAlreadyTriggered
	ConditionSpeedLessThan
	ConditionSpeedGreaterThan
	ConditionNotAlreadyTriggered
	ConditionMaxPlayCount
	ConditionRandomOnce
	ConditionRandom
)

// A Condition is the condition needed to trigger a media clip.
type Condition struct {
	// Kind selects the condition variant.
	Kind ConditionKind
	// Time is the race time in seconds for the race-time conditions.
	// [0.0, ∞)
	Time float32
	// Speed is the speed of the car for the speed conditions. [0.0, ∞)
	Speed float32
	// Probability is the probability of triggering for the random
	// conditions. [0.0, 1.0]
	Probability float32
	// ClipIndex is the referenced clip for the already-triggered
	// conditions, or nil when out of range.
	ClipIndex *uint32
	// Count is the play count bound for the max-play-count condition, or
	// nil when unbounded.
	Count *uint32
}

// A ClipTrigger is a media clip and its trigger condition.
type ClipTrigger struct {
	// Clip is the clip which gets activated by the trigger.
	Clip Clip
	// Condition is the condition which needs to be met to trigger the
	// clip.
	Condition Condition
	// Coords are the coords at which the clip gets triggered.
	Coords []gbxio.Vec3[uint32]
}

// A ClipGroup is a group of media clips with their triggers.
type ClipGroup struct {
	// Clips are all the clips and associated triggers in this clip group.
	Clips []ClipTrigger
}

// ReadClip decodes a Clip node body.
func ReadClip(r *gbxio.Reader) (Clip, error) {
	clip := Clip{StopOnRespawn: true}
	if err := r.ChunkID(0x0307900D); err != nil {
		return clip, err
	}
	if _, err := r.U32(); err != nil { // 0
		return clip, err
	}
	if _, err := r.U32(); err != nil { // 10
		return clip, err
	}
	tracks, err := gbxio.ReadList(r, func(r *gbxio.Reader) (Track, error) {
		return gbxio.Node(r, TrackClassID, readTrack)
	})
	if err != nil {
		return clip, err
	}
	clip.Tracks = tracks
	if clip.Name, err = r.String(); err != nil {
		return clip, err
	}
	if clip.StopOnLeave, err = r.Bool(); err != nil {
		return clip, err
	}
	if _, err := r.U32(); err != nil {
		return clip, err
	}
	if clip.StopOnRespawn, err = r.Bool(); err != nil {
		return clip, err
	}
	if _, err := r.U32(); err != nil {
		return clip, err
	}
	if _, err := r.F32(); err != nil {
		return clip, err
	}
	if _, err := r.U32(); err != nil {
		return clip, err
	}
	if err := r.OptionalSkippableChunk(0x0307900E, func(r *gbxio.Reader) error {
		if _, err := r.U32(); err != nil {
			return err
		}
		var err error
		clip.CanTriggerBeforeStart, err = r.Bool()
		return err
	}); err != nil {
		return clip, err
	}
	return clip, r.NodeEnd()
}

func readTrack(r *gbxio.Reader) (Track, error) {
	var track Track
	if err := r.ChunkID(0x03078001); err != nil {
		return track, err
	}
	if _, err := r.String(); err != nil { // track name
		return track, err
	}
	if _, err := r.U32(); err != nil { // 10
		return track, err
	}
	blocks, err := gbxio.ReadList(r, func(r *gbxio.Reader) (Block, error) {
		node, err := r.AnyNode(func(r *gbxio.Reader, classID uint32) (interface{}, error) {
			block, err := readBlock(r, classID)
			if err != nil {
				return nil, err
			}
			return block, r.NodeEnd()
		})
		if err != nil {
			return nil, err
		}
		return node.(Block), nil
	})
	if err != nil {
		return track, err
	}
	track.Blocks = blocks
	if _, err := r.U32(); err != nil { // 0xFFFFFFFF
		return track, err
	}
	if err := r.ChunkID(0x03078005); err != nil {
		return track, err
	}
	if _, err := r.U32(); err != nil {
		return track, err
	}
	if track.KeepLastBlockActive, err = r.Bool(); err != nil {
		return track, err
	}
	if _, err := r.U32(); err != nil {
		return track, err
	}
	repeatSegment, err := r.Bool()
	if err != nil {
		return track, err
	}
	startTime, err := r.F32()
	if err != nil {
		return track, err
	}
	endTime, err := r.F32()
	if err != nil {
		return track, err
	}
	if repeatSegment {
		track.RepeatTrackSegment = &TrackSegment{StartTime: startTime, EndTime: endTime}
	}
	return track, r.NodeEnd()
}

// ReadClipGroup decodes a ClipGroup node body.
func ReadClipGroup(r *gbxio.Reader) (ClipGroup, error) {
	var clipGroup ClipGroup
	if err := r.ChunkID(0x0307A003); err != nil {
		return clipGroup, err
	}
	if _, err := r.U32(); err != nil { // 10
		return clipGroup, err
	}
	clips, err := gbxio.ReadList(r, func(r *gbxio.Reader) (Clip, error) {
		return gbxio.Node(r, ClipClassID, ReadClip)
	})
	if err != nil {
		return clipGroup, err
	}
	type trigger struct {
		condition Condition
		coords    []gbxio.Vec3[uint32]
	}
	triggers, err := gbxio.ReadList(r, func(r *gbxio.Reader) (trigger, error) {
		var t trigger
		for i := 0; i < 4; i++ {
			if _, err := r.U32(); err != nil {
				return t, err
			}
		}
		kind, err := r.U32()
		if err != nil {
			return t, err
		}
		arg, err := r.F32()
		if err != nil {
			return t, err
		}
		if t.condition, err = conditionFrom(kind, arg, len(clips)); err != nil {
			return t, err
		}
		if t.coords, err = gbxio.ReadList(r, (*gbxio.Reader).Vec3U32); err != nil {
			return t, err
		}
		return t, nil
	})
	if err != nil {
		return clipGroup, err
	}
	n := min(len(clips), len(triggers))
	clipGroup.Clips = make([]ClipTrigger, n)
	for i := 0; i < n; i++ {
		clipGroup.Clips[i] = ClipTrigger{
			Clip:      clips[i],
			Condition: triggers[i].condition,
			Coords:    triggers[i].coords,
		}
	}
	return clipGroup, r.NodeEnd()
}

func conditionFrom(kind uint32, arg float32, numClips int) (Condition, error) {
	condition := Condition{Kind: ConditionKind(kind)}
	switch condition.Kind {
	case ConditionNone:
	case ConditionRaceTimeLessThan, ConditionRaceTimeGreaterThan:
		condition.Time = max(arg, 0)
	case ConditionAlreadyTriggered, ConditionNotAlreadyTriggered:
		clipIndex := int32(arg)
		if clipIndex >= 0 && int(clipIndex) < numClips {
			index := uint32(clipIndex)
			condition.ClipIndex = &index
		}
	case ConditionSpeedLessThan, ConditionSpeedGreaterThan:
		condition.Speed = max(arg, 0)
	case ConditionMaxPlayCount:
		count := int32(arg)
		if count >= 0 {
			v := uint32(count)
			condition.Count = &v
		}
	case ConditionRandomOnce, ConditionRandom:
		condition.Probability = min(max(arg, 0), 1)
	default:
		return condition, errors.E(errors.Payload, "invalid clip trigger condition")
	}
	return condition, nil
}
