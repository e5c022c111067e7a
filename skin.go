// Copyright 2023 the gbx authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package gbx

import (
	"github.com/jussyDr/gbx/errors"
	"github.com/jussyDr/gbx/gbxio"
)

const (
	skinClassID     = 0x03059000
	waypointClassID = 0x2E009000
)

func readSkin(r *gbxio.Reader) (Skin, error) {
	var skin Skin
	err := gbxio.ReadBody(r, []gbxio.BodyChunk{
		{ID: 0x03059002, Read: func(r *gbxio.Reader) error {
			if _, err := r.U32(); err != nil { // 2
				return err
			}
			if _, err := r.U16(); err != nil {
				return err
			}
			var err error
			if skin.Skin, err = r.OptionalFileRef(); err != nil {
				return err
			}
			_, err = r.OptionalFileRef()
			return err
		}},
		{ID: 0x03059003, Read: func(r *gbxio.Reader) error {
			if _, err := r.U32(); err != nil { // 0
				return err
			}
			var err error
			skin.Effect, err = r.OptionalFileRef()
			return err
		}},
	})
	return skin, err
}

func writeSkinBody(skin *Skin) func(*gbxio.Writer) error {
	return func(w *gbxio.Writer) error {
		if err := w.ChunkID(0x03059002); err != nil {
			return err
		}
		if err := w.U32(2); err != nil {
			return err
		}
		if err := w.U16(0); err != nil {
			return err
		}
		if err := w.FileRef(skin.Skin); err != nil {
			return err
		}
		if err := w.FileRef(nil); err != nil {
			return err
		}
		if err := w.ChunkID(0x03059003); err != nil {
			return err
		}
		if err := w.U32(0); err != nil {
			return err
		}
		return w.FileRef(skin.Effect)
	}
}

func readWaypointProperty(r *gbxio.Reader) (WaypointProperty, error) {
	var wp WaypointProperty
	err := gbxio.ReadBody(r, []gbxio.BodyChunk{
		{ID: 0x2E009000, Read: func(r *gbxio.Reader) error {
			if _, err := r.U32(); err != nil { // 2
				return err
			}
			tag, err := r.String()
			if err != nil {
				return err
			}
			switch tag {
			case "Checkpoint":
				wp.Kind = Checkpoint
				_, err = r.U32()
				return err
			case "LinkedCheckpoint":
				wp.Kind = LinkedCheckpoint
				wp.Group, err = r.U32()
				return err
			case "Spawn":
				wp.Kind = Start
			case "Goal":
				wp.Kind = Finish
			case "StartFinish":
				wp.Kind = StartFinish
			default:
				return errors.E(errors.Payload, "unknown waypoint tag "+tag)
			}
			order, err := r.U32()
			if err != nil {
				return err
			}
			if order >= uint32(RoyalOrderWhite) && order <= uint32(RoyalOrderBlack) {
				wp.Order = RoyalOrder(order)
			}
			return nil
		}},
		{ID: 0x2E009001, Skip: true},
	})
	return wp, err
}

func writeWaypointBody(wp *WaypointProperty) func(*gbxio.Writer) error {
	return func(w *gbxio.Writer) error {
		if err := w.ChunkID(0x2E009000); err != nil {
			return err
		}
		if err := w.U32(2); err != nil {
			return err
		}
		var tag string
		value := uint32(wp.Order)
		switch wp.Kind {
		case Checkpoint:
			tag, value = "Checkpoint", 0
		case LinkedCheckpoint:
			tag, value = "LinkedCheckpoint", wp.Group
		case Start:
			tag = "Spawn"
		case Finish:
			tag = "Goal"
		case StartFinish:
			tag = "StartFinish"
		default:
			return errors.E(errors.Payload, "unknown waypoint kind")
		}
		if err := w.String(tag); err != nil {
			return err
		}
		return w.U32(value)
	}
}
