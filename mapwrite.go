// Copyright 2023 the gbx authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package gbx

import (
	"bytes"
	"io"
	"math"
	"os"

	"github.com/jussyDr/gbx/errors"
	"github.com/jussyDr/gbx/gbxio"
	"github.com/jussyDr/gbx/must"
)

// WriteTo encodes the map as a compressed Map.Gbx file.
//
// MediaTracker clips and the validation ghost are not written; the emitted
// file carries null references in their place.
func (m *Map) WriteTo(w io.Writer) error {
	return m.WriteToOpts(w, WriteOpts{})
}

// WriteToOpts encodes the map with the given options.
func (m *Map) WriteToOpts(w io.Writer, opts WriteOpts) error {
	if err := WriteNode(w, mapClassID, opts, m.writeHeaderChunks(), m.writeBody); err != nil {
		return &WriteError{Err: err}
	}
	return nil
}

// WriteFile encodes the map into the file at path.
func (m *Map) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return &WriteError{Err: errors.E(errors.IO, err)}
	}
	if err := m.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return &WriteError{Err: errors.E(errors.IO, err)}
	}
	return nil
}

func (m *Map) moodID() string {
	switch {
	case m.DayTime < 16384:
		return "Night"
	case m.DayTime < 32768:
		return "Sunrise"
	case m.DayTime < 49152:
		return "Day"
	}
	return "Sunset"
}

func (m *Map) decoID() ID {
	decoID := "48x48" + m.moodID()
	if m.NoStadium {
		decoID = "NoStadium" + decoID
	}
	return ID(decoID)
}

func writeU32s(w *gbxio.Writer, vs ...uint32) error {
	for _, v := range vs {
		if err := w.U32(v); err != nil {
			return err
		}
	}
	return nil
}

func (m *Map) medalTimes() [4]uint32 {
	if m.Validation == nil {
		return [4]uint32{gbxio.Null, gbxio.Null, gbxio.Null, gbxio.Null}
	}
	return [4]uint32{
		m.Validation.BronzeTime,
		m.Validation.SilverTime,
		m.Validation.GoldTime,
		m.Validation.AuthorTime,
	}
}

func (m *Map) numLapsOr(fallback uint32) uint32 {
	if m.NumLaps != nil {
		return *m.NumLaps
	}
	return fallback
}

func (m *Map) writeHeaderChunks() []WriteHeaderChunk {
	return []WriteHeaderChunk{
		{ID: 0x03043002, Write: m.writeChunk03043002},
		{ID: 0x03043003, Write: m.writeChunk03043003},
		{ID: 0x03043004, Write: m.writeChunk03043004},
		{ID: 0x03043005, Skippable: true, Write: m.writeChunk03043005},
		{ID: 0x03043007, Skippable: true, Write: m.writeChunk03043007},
		{ID: 0x03043008, Skippable: true, Write: m.writeChunk03043008},
	}
}

func (m *Map) writeChunk03043002(w *gbxio.Writer) error {
	if err := w.U8(13); err != nil {
		return err
	}
	if err := w.U32(0); err != nil {
		return err
	}
	times := m.medalTimes()
	if err := writeU32s(w, times[0], times[1], times[2], times[3], m.Cost); err != nil {
		return err
	}
	if err := w.Bool(m.NumLaps != nil); err != nil {
		return err
	}
	if err := writeU32s(w, 0, 0, 0, 0, 0); err != nil {
		return err
	}
	return writeU32s(w, m.NumCPs, m.numLapsOr(1))
}

func (m *Map) writeChunk03043003(w *gbxio.Writer) error {
	if err := w.U8(11); err != nil {
		return err
	}
	if err := w.ID(m.uid); err != nil {
		return err
	}
	if err := w.U32(26); err != nil {
		return err
	}
	if err := w.ID(m.AuthorUID); err != nil {
		return err
	}
	if err := w.String(m.Name); err != nil {
		return err
	}
	if err := w.U8(6); err != nil { // map kind
		return err
	}
	if err := writeU32s(w, 0, 0); err != nil { // locked, password
		return err
	}
	if err := w.ID(m.decoID()); err != nil {
		return err
	}
	if err := w.U32(26); err != nil {
		return err
	}
	if err := w.ID("Nadeo"); err != nil { // deco author
		return err
	}
	if err := writeU32s(w, 0, 0, 0, 0, 0, 0, 0, 0); err != nil { // origin, target
		return err
	}
	if err := w.String(`TrackMania\TM_Race`); err != nil {
		return err
	}
	if err := w.String(""); err != nil { // map style
		return err
	}
	if err := w.U64(0xFF58B6734983CC85); err != nil { // lightmap cache uid
		return err
	}
	if err := w.U8(0); err != nil { // lightmap version
		return err
	}
	return w.ID("TMStadium")
}

func (m *Map) writeChunk03043004(w *gbxio.Writer) error {
	return w.U32(6)
}

func (m *Map) writeChunk03043005(w *gbxio.Writer) error {
	xml, err := m.headerXML()
	if err != nil {
		return err
	}
	return w.String(xml)
}

func (m *Map) writeChunk03043007(w *gbxio.Writer) error {
	if m.Thumbnail == nil {
		return w.Bool(false)
	}
	if err := w.Bool(true); err != nil {
		return err
	}
	if err := w.U32(uint32(len(m.Thumbnail))); err != nil {
		return err
	}
	if err := w.Bytes([]byte("<Thumbnail.jpg>")); err != nil {
		return err
	}
	if err := w.Bytes(m.Thumbnail); err != nil {
		return err
	}
	if err := w.Bytes([]byte("</Thumbnail.jpg>")); err != nil {
		return err
	}
	if err := w.Bytes([]byte("<Comments>")); err != nil {
		return err
	}
	if err := w.String(""); err != nil {
		return err
	}
	return w.Bytes([]byte("</Comments>"))
}

func (m *Map) writeChunk03043008(w *gbxio.Writer) error {
	if err := writeU32s(w, 1, 0); err != nil {
		return err
	}
	if err := w.String(string(m.AuthorUID)); err != nil {
		return err
	}
	if err := w.String(m.AuthorName); err != nil {
		return err
	}
	if err := w.String(m.AuthorZone); err != nil {
		return err
	}
	return w.U32(0)
}

func (m *Map) writeBody(w *gbxio.Writer) error {
	if err := w.ChunkID(0x0304300D); err != nil {
		return err
	}
	if err := w.OptionalID(""); err != nil { // player model id
		return err
	}
	if err := writeU32s(w, gbxio.Null, gbxio.Null); err != nil {
		return err
	}

	if err := m.writeChunk03043011(w); err != nil {
		return err
	}

	if err := w.SkippableChunk(0x03043018, func(w *gbxio.Writer) error {
		if err := w.Bool(m.NumLaps != nil); err != nil {
			return err
		}
		return w.U32(m.numLapsOr(3))
	}); err != nil {
		return err
	}

	if err := w.SkippableChunk(0x03043019, func(w *gbxio.Writer) error {
		if m.TextureMod == nil {
			return w.FileRef(nil)
		}
		return w.FileRef(*m.TextureMod)
	}); err != nil {
		return err
	}

	if err := m.writeChunk0304301F(w); err != nil {
		return err
	}

	if err := w.ChunkID(0x03043022); err != nil {
		return err
	}
	if err := w.U32(1); err != nil {
		return err
	}

	if err := w.ChunkID(0x03043024); err != nil {
		return err
	}
	if err := w.FileRef(m.Music); err != nil {
		return err
	}

	if err := w.ChunkID(0x03043025); err != nil {
		return err
	}
	if err := writeU32s(w, 0, 0, 0, 0); err != nil { // origin, target
		return err
	}

	if err := w.ChunkID(0x03043026); err != nil {
		return err
	}
	if err := w.U32(gbxio.Null); err != nil {
		return err
	}

	if err := w.ChunkID(0x03043028); err != nil {
		return err
	}
	if err := writeU32s(w, 0, 0); err != nil {
		return err
	}

	if err := w.SkippableChunk(0x03043029, func(w *gbxio.Writer) error {
		if err := w.Bytes(make([]byte, 16)); err != nil {
			return err
		}
		return w.U32(0xFB0A9ED6)
	}); err != nil {
		return err
	}

	if err := w.ChunkID(0x0304302A); err != nil {
		return err
	}
	if err := w.U32(0); err != nil {
		return err
	}

	if err := w.SkippableChunk(0x03043034, func(w *gbxio.Writer) error {
		return w.U32(0)
	}); err != nil {
		return err
	}

	if err := w.SkippableChunk(0x03043036, func(w *gbxio.Writer) error {
		for _, v := range []float32{640, 181.01933, 640, math.Pi / 4, math.Pi / 4, 0, 90, 10, 0, -1, -1} {
			if err := w.F32(v); err != nil {
				return err
			}
		}
		return w.U32(0)
	}); err != nil {
		return err
	}

	if err := w.SkippableChunk(0x03043038, func(w *gbxio.Writer) error {
		return w.U32(0)
	}); err != nil {
		return err
	}

	if err := w.SkippableChunk(0x0304303E, func(w *gbxio.Writer) error {
		return writeU32s(w, 0, 10, 0)
	}); err != nil {
		return err
	}

	if err := m.writeChunk03043040(w); err != nil {
		return err
	}

	if err := w.SkippableChunk(0x03043042, func(w *gbxio.Writer) error {
		if err := writeU32s(w, 1, 0); err != nil {
			return err
		}
		if err := w.String(string(m.AuthorUID)); err != nil {
			return err
		}
		if err := w.String(m.AuthorName); err != nil {
			return err
		}
		if err := w.String(m.AuthorZone); err != nil {
			return err
		}
		return w.U32(0)
	}); err != nil {
		return err
	}

	if err := m.writeChunk03043043(w); err != nil {
		return err
	}

	if err := m.writeChunk03043044(w); err != nil {
		return err
	}

	if err := m.writeChunk03043048(w); err != nil {
		return err
	}

	// MediaTracker clips are not written.
	if err := w.ChunkID(0x03043049); err != nil {
		return err
	}
	if err := w.U32(2); err != nil {
		return err
	}
	for i := 0; i < 5; i++ {
		if err := w.NullNode(); err != nil {
			return err
		}
	}
	if err := writeU32s(w, 3, 1, 3); err != nil { // trigger size
		return err
	}

	if err := w.SkippableChunk(0x0304304B, func(w *gbxio.Writer) error {
		return writeU32s(w, 0, 0, 0, 0)
	}); err != nil {
		return err
	}

	if err := w.SkippableChunk(0x0304304F, func(w *gbxio.Writer) error {
		if err := w.U32(3); err != nil {
			return err
		}
		return w.U8(0)
	}); err != nil {
		return err
	}

	if err := w.SkippableChunk(0x03043050, func(w *gbxio.Writer) error {
		return writeU32s(w, 0, 3, 1, 3, 0)
	}); err != nil {
		return err
	}

	if err := w.SkippableChunk(0x03043051, func(w *gbxio.Writer) error {
		if err := w.U32(0); err != nil {
			return err
		}
		if err := w.ID("TMStadium"); err != nil {
			return err
		}
		return w.String("date=2023-01-26_15_32 git=116308-bbf6df4c7ba GameVersion=3.3.0")
	}); err != nil {
		return err
	}

	if err := w.SkippableChunk(0x03043052, func(w *gbxio.Writer) error {
		return writeU32s(w, 0, 8)
	}); err != nil {
		return err
	}

	if err := w.SkippableChunk(0x03043053, func(w *gbxio.Writer) error {
		return writeU32s(w, 3, 0)
	}); err != nil {
		return err
	}

	if err := m.writeChunk03043054(w); err != nil {
		return err
	}

	if err := w.SkippableChunk(0x03043055, func(w *gbxio.Writer) error {
		return nil
	}); err != nil {
		return err
	}

	if err := w.SkippableChunk(0x03043056, func(w *gbxio.Writer) error {
		if err := writeU32s(w, 3, 0, uint32(m.DayTime), 0); err != nil {
			return err
		}
		if err := w.Bool(false); err != nil { // dynamic daylight
			return err
		}
		return w.U32(300000) // day duration
	}); err != nil {
		return err
	}

	if err := w.SkippableChunk(0x03043057, func(w *gbxio.Writer) error {
		return writeU32s(w, 5, 0)
	}); err != nil {
		return err
	}

	if err := w.SkippableChunk(0x03043059, func(w *gbxio.Writer) error {
		if err := writeU32s(w, 3, 0, 0, 0, 0); err != nil {
			return err
		}
		if err := w.F32(20); err != nil {
			return err
		}
		return w.F32(3)
	}); err != nil {
		return err
	}

	if err := w.SkippableChunk(0x0304305A, func(w *gbxio.Writer) error {
		return writeU32s(w, 0, 0)
	}); err != nil {
		return err
	}

	if err := w.SkippableChunk(0x0304305B, func(w *gbxio.Writer) error {
		return writeU32s(w, 0, 1, 0, 0, 8, 0)
	}); err != nil {
		return err
	}

	if err := w.SkippableChunk(0x0304305C, func(w *gbxio.Writer) error {
		return writeU32s(w, 0, 0, 0)
	}); err != nil {
		return err
	}

	if err := w.SkippableChunk(0x0304305D, func(w *gbxio.Writer) error {
		return writeU32s(w, 1, 0)
	}); err != nil {
		return err
	}

	if err := w.SkippableChunk(0x0304305E, func(w *gbxio.Writer) error {
		return writeU32s(w, 1, 0, 8, 0, 0)
	}); err != nil {
		return err
	}

	if err := w.SkippableChunk(0x0304305F, m.writeChunk0304305F); err != nil {
		return err
	}

	if err := w.SkippableChunk(0x03043060, func(w *gbxio.Writer) error {
		return writeU32s(w, 0, 0)
	}); err != nil {
		return err
	}

	if err := w.SkippableChunk(0x03043061, func(w *gbxio.Writer) error {
		return writeU32s(w, 1, 0, 0, 0, 0)
	}); err != nil {
		return err
	}

	if err := w.SkippableChunk(0x03043062, m.writeChunk03043062); err != nil {
		return err
	}

	if err := w.SkippableChunk(0x03043063, func(w *gbxio.Writer) error {
		if err := w.U32(0); err != nil {
			return err
		}
		for i := range m.Items {
			if err := w.U8(uint8(m.Items[i].AnimOffset)); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return err
	}

	if err := w.SkippableChunk(0x03043064, func(w *gbxio.Writer) error {
		return writeU32s(w, 0, 0, 4, 0)
	}); err != nil {
		return err
	}

	if err := w.SkippableChunk(0x03043065, func(w *gbxio.Writer) error {
		if err := w.U32(0); err != nil {
			return err
		}
		for range m.Items {
			if err := w.U8(0); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return err
	}

	if err := w.SkippableChunk(0x03043067, func(w *gbxio.Writer) error {
		return writeU32s(w, 0, 0, 4, gbxio.Null)
	}); err != nil {
		return err
	}

	if err := w.SkippableChunk(0x03043068, m.writeChunk03043068); err != nil {
		return err
	}

	return w.SkippableChunk(0x03043069, func(w *gbxio.Writer) error {
		if err := w.U32(0); err != nil {
			return err
		}
		for range m.Blocks {
			if err := w.U32(gbxio.Null); err != nil {
				return err
			}
		}
		for range m.Items {
			if err := w.U32(gbxio.Null); err != nil {
				return err
			}
		}
		return w.U32(0)
	})
}

func (m *Map) writeChunk03043011(w *gbxio.Writer) error {
	if err := w.ChunkID(0x03043011); err != nil {
		return err
	}
	if err := w.Node(0x0301B000, func(w *gbxio.Writer) error {
		if err := w.ChunkID(0x0301B000); err != nil {
			return err
		}
		return w.Bool(false)
	}); err != nil {
		return err
	}
	if err := w.Node(0x0305B000, func(w *gbxio.Writer) error {
		if err := w.ChunkID(0x0305B001); err != nil {
			return err
		}
		if err := writeU32s(w, 0, 0, 0, 0); err != nil {
			return err
		}
		if err := w.ChunkID(0x0305B004); err != nil {
			return err
		}
		times := m.medalTimes()
		if err := writeU32s(w, times[0], times[1], times[2], times[3], 0); err != nil {
			return err
		}
		if err := w.ChunkID(0x0305B008); err != nil {
			return err
		}
		if err := writeU32s(w, 60000, 0); err != nil {
			return err
		}
		if err := w.SkippableChunk(0x0305B00A, func(w *gbxio.Writer) error {
			if err := w.U32(0); err != nil {
				return err
			}
			return writeU32s(w, times[0], times[1], times[2], times[3], 60000, 0)
		}); err != nil {
			return err
		}
		// The validation ghost is not written.
		if err := w.ChunkID(0x0305B00D); err != nil {
			return err
		}
		if err := w.NullNode(); err != nil {
			return err
		}
		return w.SkippableChunk(0x0305B00E, func(w *gbxio.Writer) error {
			if err := w.String(`TrackMania\TM_Race`); err != nil {
				return err
			}
			if err := w.U32(0); err != nil {
				return err
			}
			return w.Bool(m.Validation != nil)
		})
	}); err != nil {
		return err
	}
	return w.U32(6) // map kind
}

func (m *Map) writeChunk0304301F(w *gbxio.Writer) error {
	if err := w.ChunkID(0x0304301F); err != nil {
		return err
	}
	if err := w.ID(m.uid); err != nil {
		return err
	}
	if err := w.U32(26); err != nil {
		return err
	}
	if err := w.ID(m.AuthorUID); err != nil {
		return err
	}
	if err := w.String(m.Name); err != nil {
		return err
	}
	if err := w.ID(m.decoID()); err != nil {
		return err
	}
	if err := w.U32(26); err != nil {
		return err
	}
	if err := w.ID("Nadeo"); err != nil { // deco author
		return err
	}
	if err := writeU32s(w, m.Size.X, m.Size.Y, m.Size.Z, 0, 6); err != nil {
		return err
	}
	if err := w.U32(uint32(len(m.Blocks))); err != nil {
		return err
	}
	for _, block := range m.Blocks {
		if err := writeBlockEntry(w, block); err != nil {
			return err
		}
	}
	return nil
}

func writeBlockEntry(w *gbxio.Writer, block BlockType) error {
	if err := w.ID(BlockModelID(block)); err != nil {
		return err
	}
	var flags uint32
	switch block := block.(type) {
	case *Block:
		if err := w.U8(uint8(block.Dir)); err != nil {
			return err
		}
		if err := w.Vec3U8(block.Coord); err != nil {
			return err
		}
		if block.IsGround {
			flags |= 0x00001000
		}
		if block.VariantIndex == 1 {
			flags |= 0x00200000
		}
		if block.IsGhost {
			flags |= 0x10000000
		}
	case *FreeBlock:
		// Placeholder direction and coordinate; the position is carried
		// by the free-block position chunk.
		if err := w.Bytes([]byte{0, 0, 0, 0}); err != nil {
			return err
		}
		flags |= 0x20000000
	}
	skin := BlockSkin(block)
	waypointProperty := BlockWaypointProperty(block)
	if skin != nil {
		flags |= 0x00008000
	}
	if waypointProperty != nil {
		flags |= 0x00100000
	}
	if err := w.U32(flags); err != nil {
		return err
	}
	if skin != nil {
		if err := w.ID(""); err != nil { // skin author
			return err
		}
		if err := w.Node(skinClassID, writeSkinBody(skin)); err != nil {
			return err
		}
	}
	if waypointProperty != nil {
		if err := w.Node(waypointClassID, writeWaypointBody(waypointProperty)); err != nil {
			return err
		}
	}
	return nil
}

func (m *Map) writeChunk03043040(w *gbxio.Writer) error {
	return w.SkippableChunk(0x03043040, func(w *gbxio.Writer) error {
		// The item sub-stream carries its own identifier table.
		var buf bytes.Buffer
		sw := gbxio.NewWriterIDs(&buf, gbxio.NewWriteIDState())
		if err := sw.U32(10); err != nil {
			return err
		}
		if err := sw.U32(uint32(len(m.Items))); err != nil {
			return err
		}
		for i := range m.Items {
			if err := writeItem(sw, &m.Items[i]); err != nil {
				return err
			}
		}
		if err := writeU32s(sw, 0, 0, 0); err != nil { // empty index lists
			return err
		}
		if err := writeU32s(w, 7, 0); err != nil {
			return err
		}
		if err := w.U32(uint32(buf.Len())); err != nil {
			return err
		}
		return w.Bytes(buf.Bytes())
	})
}

func writeItem(w *gbxio.Writer, item *Item) error {
	if err := w.U32(0x03101000); err != nil {
		return err
	}
	if err := w.ChunkID(0x03101002); err != nil {
		return err
	}
	if err := w.U32(8); err != nil {
		return err
	}
	if err := w.ID(item.ModelID); err != nil {
		return err
	}
	if err := w.U32(26); err != nil {
		return err
	}
	if err := w.ID("Nadeo"); err != nil { // author
		return err
	}
	if err := w.F32(item.Yaw); err != nil {
		return err
	}
	if err := w.F32(item.Pitch); err != nil {
		return err
	}
	if err := w.F32(item.Roll); err != nil {
		return err
	}
	if err := w.Vec3U8(item.Coord); err != nil {
		return err
	}
	if err := w.U32(gbxio.Null); err != nil {
		return err
	}
	if err := w.Vec3F32(item.Pos); err != nil {
		return err
	}
	if item.WaypointProperty != nil {
		if err := w.U32(waypointClassID); err != nil {
			return err
		}
		if err := writeWaypointBody(item.WaypointProperty)(w); err != nil {
			return err
		}
		if err := w.NodeEnd(); err != nil {
			return err
		}
	} else if err := w.U32(gbxio.Null); err != nil {
		return err
	}
	if err := w.U16(0); err != nil { // flags
		return err
	}
	if err := w.Vec3F32(item.PivotPos); err != nil {
		return err
	}
	if err := w.F32(1); err != nil { // scale
		return err
	}
	if err := writeU32s(w, 0, 0, 0); err != nil {
		return err
	}
	for i := 0; i < 3; i++ {
		if err := w.F32(-1); err != nil {
			return err
		}
	}
	return w.NodeEnd()
}

func (m *Map) writeChunk03043043(w *gbxio.Writer) error {
	return w.SkippableChunk(0x03043043, func(w *gbxio.Writer) error {
		// Per baked block, a genealogy node mapping void to grass.
		var buf bytes.Buffer
		sw := gbxio.NewWriterIDs(&buf, gbxio.NewWriteIDState())
		if err := sw.U32(uint32(len(m.BakedBlocks))); err != nil {
			return err
		}
		for range m.BakedBlocks {
			if err := sw.U32(0x0311D000); err != nil {
				return err
			}
			if err := sw.ChunkID(0x0311D002); err != nil {
				return err
			}
			if err := sw.U32(1); err != nil {
				return err
			}
			if err := sw.ID("VoidToGrass"); err != nil {
				return err
			}
			if err := writeU32s(sw, 0, 0); err != nil {
				return err
			}
			if err := sw.ID("Grass"); err != nil {
				return err
			}
			if err := sw.NodeEnd(); err != nil {
				return err
			}
		}
		if err := w.U32(0); err != nil {
			return err
		}
		if err := w.U32(uint32(buf.Len())); err != nil {
			return err
		}
		return w.Bytes(buf.Bytes())
	})
}

func (m *Map) writeChunk03043044(w *gbxio.Writer) error {
	return w.SkippableChunk(0x03043044, func(w *gbxio.Writer) error {
		var buf bytes.Buffer
		sw := gbxio.NewWriter(&buf)
		if err := sw.U32(0x11002000); err != nil {
			return err
		}
		if err := sw.U32(6); err != nil {
			return err
		}
		if err := sw.Bytes([]byte{2, 2, 7, 0, 2, 2, 25}); err != nil {
			return err
		}
		if err := sw.Bytes([]byte("LibMapType_MapTypeVersion")); err != nil {
			return err
		}
		if err := sw.Bytes([]byte{0, 1, 0, 0, 0, 28}); err != nil {
			return err
		}
		if err := sw.Bytes([]byte("Race_AuthorRaceWaypointTimes")); err != nil {
			return err
		}
		if err := sw.Bytes([]byte{1, 0}); err != nil {
			return err
		}
		if err := sw.NodeEnd(); err != nil {
			return err
		}
		if err := w.U32(0); err != nil {
			return err
		}
		if err := w.U32(uint32(buf.Len())); err != nil {
			return err
		}
		return w.Bytes(buf.Bytes())
	})
}

func (m *Map) writeChunk03043048(w *gbxio.Writer) error {
	return w.SkippableChunk(0x03043048, func(w *gbxio.Writer) error {
		if err := writeU32s(w, 0, 6); err != nil {
			return err
		}
		if err := w.U32(uint32(len(m.BakedBlocks))); err != nil {
			return err
		}
		for _, bakedBlock := range m.BakedBlocks {
			must.True(BlockSkin(bakedBlock) == nil, "baked blocks carry no skin")
			must.True(BlockWaypointProperty(bakedBlock) == nil, "baked blocks carry no waypoint property")
			if err := writeBlockEntry(w, bakedBlock); err != nil {
				return err
			}
		}
		return writeU32s(w, 0, 0)
	})
}

func (m *Map) writeChunk03043054(w *gbxio.Writer) error {
	return w.SkippableChunk(0x03043054, func(w *gbxio.Writer) error {
		// The embedded-files sub-stream carries its own identifier table.
		var buf bytes.Buffer
		sw := gbxio.NewWriterIDs(&buf, gbxio.NewWriteIDState())
		var fileIDs []ID
		var archive []byte
		if m.EmbeddedFiles != nil {
			fileIDs = m.EmbeddedFiles.FileIDs
			archive = m.EmbeddedFiles.Archive
		}
		if err := sw.U32(uint32(len(fileIDs))); err != nil {
			return err
		}
		for _, fileID := range fileIDs {
			if err := sw.ID(fileID); err != nil {
				return err
			}
			if err := sw.U32(26); err != nil {
				return err
			}
			if err := sw.OptionalID(""); err != nil { // author
				return err
			}
		}
		if err := sw.U32(uint32(len(archive))); err != nil {
			return err
		}
		if err := sw.Bytes(archive); err != nil {
			return err
		}
		if err := sw.U32(0); err != nil {
			return err
		}
		if err := writeU32s(w, 1, 0); err != nil {
			return err
		}
		if err := w.U32(uint32(buf.Len())); err != nil {
			return err
		}
		return w.Bytes(buf.Bytes())
	})
}

func (m *Map) writeChunk0304305F(w *gbxio.Writer) error {
	if err := w.U32(0); err != nil {
		return err
	}
	for _, blocks := range [][]BlockType{m.Blocks, m.BakedBlocks} {
		for _, block := range blocks {
			freeBlock, ok := block.(*FreeBlock)
			if !ok {
				continue
			}
			if err := w.Vec3F32(freeBlock.Pos); err != nil {
				return err
			}
			if err := w.F32(freeBlock.Yaw); err != nil {
				return err
			}
			if err := w.F32(freeBlock.Pitch); err != nil {
				return err
			}
			if err := w.F32(freeBlock.Roll); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *Map) writeChunk03043062(w *gbxio.Writer) error {
	if err := w.U32(0); err != nil {
		return err
	}
	for _, blocks := range [][]BlockType{m.Blocks, m.BakedBlocks} {
		for _, block := range blocks {
			if err := w.U8(uint8(BlockColor(block))); err != nil {
				return err
			}
		}
	}
	for i := range m.Items {
		if err := w.U8(uint8(m.Items[i].Color)); err != nil {
			return err
		}
	}
	return nil
}

func (m *Map) writeChunk03043068(w *gbxio.Writer) error {
	if err := w.U32(1); err != nil {
		return err
	}
	for _, blocks := range [][]BlockType{m.Blocks, m.BakedBlocks} {
		for _, block := range blocks {
			if err := w.U8(uint8(BlockLightmapQuality(block))); err != nil {
				return err
			}
		}
	}
	for i := range m.Items {
		if err := w.U8(uint8(m.Items[i].LightmapQuality)); err != nil {
			return err
		}
	}
	return nil
}
