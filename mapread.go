// Copyright 2023 the gbx authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package gbx

import (
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/jussyDr/gbx/errors"
	"github.com/jussyDr/gbx/gbxio"
	"github.com/jussyDr/gbx/media"
)

const mapClassID = 0x03043000

// ReadMap decodes a Map from r.
func ReadMap(r io.Reader) (*Map, error) {
	return ReadMapOpts(r, ReadOpts{})
}

// ReadMapOpts decodes a Map from r with the given options.
func ReadMapOpts(r io.Reader, opts ReadOpts) (*Map, error) {
	m := NewMap()
	err := ReadNode(r, mapClassID, opts, m.headerChunks(), func(br *gbxio.Reader) error {
		return gbxio.ReadBody(br, m.bodyChunks())
	})
	if err != nil {
		return nil, &ReadError{Err: err}
	}
	return m, nil
}

// ReadMapFile decodes a Map from the file at path.
func ReadMapFile(path string) (*Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ReadError{Err: errors.E(errors.IO, err)}
	}
	defer f.Close()
	return ReadMap(f)
}

func (m *Map) headerChunks() []HeaderChunk {
	return []HeaderChunk{
		{ID: 0x03043002, Read: m.readChunk03043002},
		{ID: 0x03043003, Read: m.readChunk03043003},
		{ID: 0x03043004, Read: m.readChunk03043004},
		{ID: 0x03043005, Read: m.readChunk03043005},
		{ID: 0x03043007, Read: m.readChunk03043007},
		{ID: 0x03043008, Read: m.readChunk03043008},
	}
}

func (m *Map) bodyChunks() []gbxio.BodyChunk {
	return []gbxio.BodyChunk{
		{ID: 0x0304300D, Read: m.readChunk0304300D},
		{ID: 0x03043011, Read: m.readChunk03043011},
		{ID: 0x03043018, Read: m.readChunk03043018, Skippable: true},
		{ID: 0x03043019, Read: m.readChunk03043019, Skippable: true},
		{ID: 0x0304301F, Read: m.readChunk0304301F},
		{ID: 0x03043022, Read: m.readChunk03043022},
		{ID: 0x03043024, Read: m.readChunk03043024},
		{ID: 0x03043025, Read: m.readChunk03043025},
		{ID: 0x03043026, Read: m.readChunk03043026},
		{ID: 0x03043028, Read: m.readChunk03043028},
		{ID: 0x03043029, Skip: true},
		{ID: 0x0304302A, Read: m.readChunk0304302A},
		{ID: 0x03043034, Skip: true},
		{ID: 0x03043036, Skip: true},
		{ID: 0x03043038, Skip: true},
		{ID: 0x0304303E, Skip: true},
		{ID: 0x03043040, Read: m.readChunk03043040, Skippable: true},
		{ID: 0x03043042, Read: m.readChunk03043042, Skippable: true},
		{ID: 0x03043043, Skip: true},
		{ID: 0x03043044, Skip: true},
		{ID: 0x03043048, Read: m.readChunk03043048, Skippable: true},
		{ID: 0x03043049, Read: m.readChunk03043049},
		{ID: 0x0304304B, Skip: true},
		{ID: 0x0304304F, Skip: true},
		{ID: 0x03043050, Skip: true},
		{ID: 0x03043051, Skip: true},
		{ID: 0x03043052, Skip: true},
		{ID: 0x03043053, Skip: true},
		{ID: 0x03043054, Read: m.readChunk03043054, Skippable: true},
		{ID: 0x03043055, Skip: true},
		{ID: 0x03043056, Read: m.readChunk03043056, Skippable: true},
		{ID: 0x03043057, Skip: true},
		{ID: 0x03043058, Skip: true},
		{ID: 0x03043059, Skip: true},
		{ID: 0x0304305A, Skip: true},
		{ID: 0x0304305B, Skip: true},
		{ID: 0x0304305C, Skip: true},
		{ID: 0x0304305D, Skip: true},
		{ID: 0x0304305E, Skip: true},
		{ID: 0x0304305F, Read: m.readChunk0304305F, Skippable: true},
		{ID: 0x03043060, Skip: true},
		{ID: 0x03043061, Skip: true},
		{ID: 0x03043062, Read: m.readChunk03043062, Skippable: true},
		{ID: 0x03043063, Read: m.readChunk03043063, Skippable: true},
		{ID: 0x03043064, Skip: true},
		{ID: 0x03043065, Skip: true},
		{ID: 0x03043067, Skip: true},
		{ID: 0x03043068, Read: m.readChunk03043068, Skippable: true},
		{ID: 0x03043069, Skip: true},
	}
}

// readMedalTimes reads the four medal-time slots; any 0xFFFFFFFF slot means
// the map is not validated.
func readMedalTimes(r *gbxio.Reader) (*[4]uint32, error) {
	var times [4]uint32
	for i := range times {
		v, err := r.U32()
		if err != nil {
			return nil, err
		}
		times[i] = v
	}
	for _, v := range times {
		if v == gbxio.Null {
			return nil, nil
		}
	}
	return &times, nil
}

func decoHasNoStadium(decoID ID) bool {
	return strings.HasPrefix(string(decoID), "NoStadium48x48") ||
		strings.HasSuffix(string(decoID), "16x12")
}

func dayTimeFromDecoID(decoID ID) (uint16, error) {
	mood, ok := strings.CutPrefix(string(decoID), "48x48")
	if !ok {
		mood, ok = strings.CutPrefix(string(decoID), "NoStadium48x48")
	}
	if !ok {
		mood, ok = strings.CutSuffix(string(decoID), "16x12")
	}
	if !ok {
		return 0, errors.E(errors.Payload, "invalid decoration id")
	}
	return dayTimeFromMood(mood)
}

func dayTimeFromMood(mood string) (uint16, error) {
	switch mood {
	case "Sunrise":
		return SunriseMoodTime, nil
	case "Day":
		return DayMoodTime, nil
	case "Sunset":
		return SunsetMoodTime, nil
	case "Night":
		return NightMoodTime, nil
	}
	return 0, errors.E(errors.Payload, "invalid decoration mood")
}

func directionFrom(v uint8) (Direction, error) {
	if v > uint8(West) {
		return North, errors.E(errors.Payload, "invalid direction")
	}
	return Direction(v), nil
}

func colorFrom(v uint8) (Color, error) {
	if v > uint8(ColorBlack) {
		return ColorDefault, errors.E(errors.Payload, "invalid color")
	}
	return Color(v), nil
}

func lightmapQualityFrom(v uint8) (LightmapQuality, error) {
	if v > uint8(LightmapLowest) {
		return LightmapNormal, errors.E(errors.Payload, "invalid lightmap quality")
	}
	return LightmapQuality(v), nil
}

func phaseOffsetFrom(v uint8) (PhaseOffset, error) {
	if v > uint8(PhaseOffsetSeven8th) {
		return PhaseOffsetNone, errors.E(errors.Payload, "invalid phase offset")
	}
	return PhaseOffset(v), nil
}

func (m *Map) readChunk03043002(r *gbxio.Reader) error {
	if _, err := r.U8(); err != nil {
		return err
	}
	if _, err := r.U32(); err != nil {
		return err
	}
	times, err := readMedalTimes(r)
	if err != nil {
		return err
	}
	m.setValidationTimes(times)
	if m.Cost, err = r.U32(); err != nil {
		return err
	}
	isMultilap, err := r.Bool()
	if err != nil {
		return err
	}
	for i := 0; i < 5; i++ {
		if _, err := r.U32(); err != nil {
			return err
		}
	}
	if m.NumCPs, err = r.U32(); err != nil {
		return err
	}
	numLaps, err := r.U32()
	if err != nil {
		return err
	}
	if isMultilap {
		m.NumLaps = &numLaps
	}
	return nil
}

func (m *Map) readChunk03043003(r *gbxio.Reader) error {
	if _, err := r.U8(); err != nil {
		return err
	}
	uid, err := r.ID()
	if err != nil {
		return err
	}
	m.uid = uid
	if _, err := r.U32(); err != nil {
		return err
	}
	if m.AuthorUID, err = r.ID(); err != nil {
		return err
	}
	if m.Name, err = r.String(); err != nil {
		return err
	}
	if _, err := r.U8(); err != nil { // map kind
		return err
	}
	if _, err := r.U32(); err != nil { // locked
		return err
	}
	if _, err := r.U32(); err != nil { // password
		return err
	}
	decoID, err := r.ID()
	if err != nil {
		return err
	}
	m.NoStadium = decoHasNoStadium(decoID)
	if m.DayTime, err = dayTimeFromDecoID(decoID); err != nil {
		return err
	}
	if _, err := r.U32(); err != nil {
		return err
	}
	if _, err := r.ID(); err != nil { // deco author
		return err
	}
	if _, err := r.Vec2F32(); err != nil { // map origin
		return err
	}
	if _, err := r.Vec2F32(); err != nil { // map target
		return err
	}
	for i := 0; i < 4; i++ {
		if _, err := r.U32(); err != nil {
			return err
		}
	}
	if _, err := r.String(); err != nil { // map type
		return err
	}
	if _, err := r.String(); err != nil { // map style
		return err
	}
	if _, err := r.U64(); err != nil { // lightmap cache uid
		return err
	}
	if _, err := r.U8(); err != nil { // lightmap version
		return err
	}
	_, err = r.ID() // title id
	return err
}

func (m *Map) readChunk03043004(r *gbxio.Reader) error {
	_, err := r.U32() // version
	return err
}

func (m *Map) readChunk03043005(r *gbxio.Reader) error {
	xml, err := r.String()
	if err != nil {
		return err
	}
	return m.readHeaderXML(xml)
}

func (m *Map) readChunk03043007(r *gbxio.Reader) error {
	hasThumbnail, err := r.Bool()
	if err != nil {
		return err
	}
	if !hasThumbnail {
		return nil
	}
	thumbnailSize, err := r.U32()
	if err != nil {
		return err
	}
	if _, err := r.Bytes(15); err != nil { // <Thumbnail.jpg>
		return err
	}
	if m.Thumbnail, err = r.Bytes(int(thumbnailSize)); err != nil {
		return err
	}
	if _, err := r.Bytes(16); err != nil { // </Thumbnail.jpg>
		return err
	}
	if _, err := r.Bytes(10); err != nil { // <Comments>
		return err
	}
	if _, err := r.String(); err != nil { // comments
		return err
	}
	_, err = r.Bytes(11) // </Comments>
	return err
}

func (m *Map) readChunk03043008(r *gbxio.Reader) error {
	if _, err := r.U32(); err != nil {
		return err
	}
	if _, err := r.U32(); err != nil { // author version
		return err
	}
	authorUID, err := r.String()
	if err != nil {
		return err
	}
	m.AuthorUID = ID(authorUID)
	if m.AuthorName, err = r.String(); err != nil {
		return err
	}
	if m.AuthorZone, err = r.String(); err != nil {
		return err
	}
	_, err = r.U32() // author extra info
	return err
}

func (m *Map) readChunk0304300D(r *gbxio.Reader) error {
	if _, err := r.OptionalID(); err != nil { // player model id
		return err
	}
	if _, err := r.U32(); err != nil {
		return err
	}
	_, err := r.U32()
	return err
}

func (m *Map) readChunk03043011(r *gbxio.Reader) error {
	err := r.NodeRef(0x0301B000, func(r *gbxio.Reader) error {
		if err := r.ChunkID(0x0301B000); err != nil {
			return err
		}
		hasCollection, err := r.Bool()
		if err != nil {
			return err
		}
		if hasCollection {
			if _, err := r.ID(); err != nil {
				return err
			}
			if _, err := r.U32(); err != nil {
				return err
			}
			if _, err := r.ID(); err != nil {
				return err
			}
			if _, err := r.U32(); err != nil {
				return err
			}
		}
		return r.NodeEnd()
	})
	if err != nil {
		return err
	}
	err = r.NodeRef(0x0305B000, func(r *gbxio.Reader) error {
		if err := r.ChunkID(0x0305B001); err != nil {
			return err
		}
		for i := 0; i < 4; i++ {
			if _, err := r.U32(); err != nil {
				return err
			}
		}
		if err := r.ChunkID(0x0305B004); err != nil {
			return err
		}
		times, err := readMedalTimes(r)
		if err != nil {
			return err
		}
		m.setValidationTimes(times)
		if _, err := r.U32(); err != nil { // author score
			return err
		}
		if err := r.ChunkID(0x0305B008); err != nil {
			return err
		}
		if _, err := r.U32(); err != nil {
			return err
		}
		if _, err := r.U32(); err != nil {
			return err
		}
		if err := r.SkipChunk(0x0305B00A); err != nil {
			return err
		}
		if err := r.ChunkID(0x0305B00D); err != nil {
			return err
		}
		ghost, err := gbxio.OptionalNode(r, ghostClassID, readGhostBody)
		if err != nil {
			return err
		}
		if m.Validation != nil {
			m.Validation.Ghost = ghost
		}
		if _, err := r.SkippableChunkID(0x0305B00E); err != nil {
			return err
		}
		if _, err := r.String(); err != nil { // map type
			return err
		}
		if _, err := r.String(); err != nil { // map style
			return err
		}
		if _, err := r.Bool(); err != nil { // is validated
			return err
		}
		return r.NodeEnd()
	})
	if err != nil {
		return err
	}
	_, err = r.U32() // map kind
	return err
}

func (m *Map) readChunk03043018(r *gbxio.Reader) error {
	isMultilap, err := r.Bool()
	if err != nil {
		return err
	}
	numLaps, err := r.U32()
	if err != nil {
		return err
	}
	if isMultilap {
		m.NumLaps = &numLaps
	}
	return nil
}

func (m *Map) readChunk03043019(r *gbxio.Reader) error {
	var err error
	m.TextureMod, err = r.OptionalExternalFileRef()
	return err
}

func (m *Map) readChunk0304301F(r *gbxio.Reader) error {
	if _, err := r.ID(); err != nil { // uid
		return err
	}
	if _, err := r.U32(); err != nil {
		return err
	}
	if _, err := r.ID(); err != nil { // author
		return err
	}
	name, err := r.String()
	if err != nil {
		return err
	}
	m.Name = name
	decoID, err := r.ID()
	if err != nil {
		return err
	}
	m.NoStadium = decoHasNoStadium(decoID)
	if m.DayTime, err = dayTimeFromDecoID(decoID); err != nil {
		return err
	}
	if _, err := r.U32(); err != nil {
		return err
	}
	if _, err := r.ID(); err != nil { // deco author
		return err
	}
	if m.Size, err = r.Vec3U32(); err != nil {
		return err
	}
	if _, err := r.U32(); err != nil {
		return err
	}
	if _, err := r.U32(); err != nil {
		return err
	}
	numBlocks, err := r.U32()
	if err != nil {
		return err
	}
	m.Blocks, err = readBlockList(r, int(numBlocks), true)
	return err
}

// readBlockList iterates block-array entries while the peeked word carries
// an identifier fingerprint. Entries with all-ones flags are consumed but
// produce no element. The main block array carries skin and waypoint
// sub-payloads; for the baked-block array a skin flag consumes the skin
// author and one node-reference word without decoding a skin, and no
// waypoint payload is read.
func readBlockList(r *gbxio.Reader, capacity int, withNodes bool) ([]BlockType, error) {
	var blocks []BlockType
	if capacity > 0 {
		blocks = make([]BlockType, 0, capacity)
	}
	for {
		peek, err := r.PeekU32()
		if err != nil {
			return nil, err
		}
		if !gbxio.IDFingerprint(peek) {
			if len(blocks) == 0 {
				return nil, nil
			}
			return blocks, nil
		}
		modelID, err := r.ID()
		if err != nil {
			return nil, err
		}
		dirByte, err := r.U8()
		if err != nil {
			return nil, err
		}
		coord, err := r.Vec3U8()
		if err != nil {
			return nil, err
		}
		flags, err := r.U32()
		if err != nil {
			return nil, err
		}
		if flags == gbxio.Null {
			continue
		}
		isGround := flags&0x00001000 != 0
		var skin *Skin
		if flags&0x00008000 != 0 {
			if _, err := r.ID(); err != nil { // skin author
				return nil, err
			}
			if withNodes {
				if skin, err = gbxio.OptionalNode(r, skinClassID, readSkin); err != nil {
					return nil, err
				}
			} else if _, err := r.U32(); err != nil {
				return nil, err
			}
		}
		var waypointProperty *WaypointProperty
		if flags&0x00100000 != 0 && withNodes {
			wp, err := gbxio.Node(r, waypointClassID, readWaypointProperty)
			if err != nil {
				return nil, err
			}
			waypointProperty = &wp
		}
		var variantIndex uint8
		if flags&0x00200000 != 0 {
			variantIndex = 1
		}
		isGhost := flags&0x10000000 != 0
		if flags&0x20000000 != 0 {
			blocks = append(blocks, &FreeBlock{
				ModelID:          modelID,
				Skin:             skin,
				WaypointProperty: waypointProperty,
			})
			continue
		}
		dir, err := directionFrom(dirByte)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, &Block{
			ModelID:          modelID,
			Dir:              dir,
			Coord:            coord,
			IsGround:         isGround,
			Skin:             skin,
			WaypointProperty: waypointProperty,
			VariantIndex:     variantIndex,
			IsGhost:          isGhost,
		})
	}
}

func (m *Map) readChunk03043022(r *gbxio.Reader) error {
	_, err := r.U32()
	return err
}

func (m *Map) readChunk03043024(r *gbxio.Reader) error {
	var err error
	m.Music, err = r.OptionalFileRef()
	return err
}

func (m *Map) readChunk03043025(r *gbxio.Reader) error {
	if _, err := r.Vec2F32(); err != nil { // map origin
		return err
	}
	_, err := r.Vec2F32() // map target
	return err
}

func (m *Map) readChunk03043026(r *gbxio.Reader) error {
	_, err := r.U32()
	return err
}

func (m *Map) readChunk03043028(r *gbxio.Reader) error {
	if _, err := r.U32(); err != nil {
		return err
	}
	_, err := r.String()
	return err
}

func (m *Map) readChunk0304302A(r *gbxio.Reader) error {
	_, err := r.U32()
	return err
}

func (m *Map) readChunk03043040(r *gbxio.Reader) error {
	if _, err := r.U32(); err != nil { // version
		return err
	}
	if _, err := r.U32(); err != nil {
		return err
	}
	size, err := r.U32()
	if err != nil {
		return err
	}
	sub, err := r.Bytes(int(size))
	if err != nil {
		return err
	}
	// The item sub-stream carries its own identifier table.
	sr := gbxio.NewReaderIDs(bytes.NewReader(sub), gbxio.NewIDState())
	if _, err := sr.U32(); err != nil {
		return err
	}
	if m.Items, err = gbxio.ReadList(sr, func(sr *gbxio.Reader) (Item, error) {
		return gbxio.FlatNode(sr, 0x03101000, readItem)
	}); err != nil {
		return err
	}
	for i := 0; i < 3; i++ {
		if err := sr.List(func(sr *gbxio.Reader) error {
			_, err := sr.U32()
			return err
		}); err != nil {
			return err
		}
	}
	return nil
}

func readItem(r *gbxio.Reader) (Item, error) {
	var item Item
	err := gbxio.ReadBody(r, []gbxio.BodyChunk{
		{ID: 0x03101002, Read: func(r *gbxio.Reader) error {
			if _, err := r.U32(); err != nil { // 8
				return err
			}
			var err error
			if item.ModelID, err = r.ID(); err != nil {
				return err
			}
			if _, err := r.U32(); err != nil { // 26
				return err
			}
			if _, err := r.OptionalID(); err != nil { // author
				return err
			}
			if item.Yaw, err = r.F32(); err != nil {
				return err
			}
			if item.Pitch, err = r.F32(); err != nil {
				return err
			}
			if item.Roll, err = r.F32(); err != nil {
				return err
			}
			if item.Coord, err = r.Vec3U8(); err != nil {
				return err
			}
			if _, err := r.U32(); err != nil { // 0xFFFFFFFF
				return err
			}
			if item.Pos, err = r.Vec3F32(); err != nil {
				return err
			}
			if item.WaypointProperty, err = gbxio.OptionalFlatNode(r, waypointClassID, readWaypointProperty); err != nil {
				return err
			}
			flags, err := r.U16()
			if err != nil {
				return err
			}
			if item.PivotPos, err = r.Vec3F32(); err != nil {
				return err
			}
			if _, err := r.F32(); err != nil { // scale
				return err
			}
			if flags&0x0004 != 0 {
				if _, err := r.OptionalFileRef(); err != nil {
					return err
				}
			}
			for i := 0; i < 3; i++ {
				if _, err := r.U32(); err != nil { // 0
					return err
				}
			}
			for i := 0; i < 3; i++ {
				if _, err := r.F32(); err != nil { // -1.0
					return err
				}
			}
			return nil
		}},
		{ID: 0x03101004, Skip: true},
		{ID: 0x03101005, Skip: true},
	})
	return item, err
}

func (m *Map) readChunk03043042(r *gbxio.Reader) error {
	if _, err := r.U32(); err != nil {
		return err
	}
	if _, err := r.U32(); err != nil { // author version
		return err
	}
	authorUID, err := r.String()
	if err != nil {
		return err
	}
	m.AuthorUID = ID(authorUID)
	if m.AuthorName, err = r.String(); err != nil {
		return err
	}
	if m.AuthorZone, err = r.String(); err != nil {
		return err
	}
	_, err = r.U32()
	return err
}

func (m *Map) readChunk03043048(r *gbxio.Reader) error {
	if _, err := r.U32(); err != nil {
		return err
	}
	if _, err := r.U32(); err != nil {
		return err
	}
	numBakedBlocks, err := r.U32()
	if err != nil {
		return err
	}
	if m.BakedBlocks, err = readBlockList(r, int(numBakedBlocks), false); err != nil {
		return err
	}
	if _, err := r.U32(); err != nil {
		return err
	}
	_, err = r.U32()
	return err
}

func (m *Map) readChunk03043049(r *gbxio.Reader) error {
	if _, err := r.U32(); err != nil { // version
		return err
	}
	var err error
	if m.IntroMedia, err = gbxio.OptionalNode(r, media.ClipClassID, media.ReadClip); err != nil {
		return err
	}
	if m.PodiumMedia, err = gbxio.OptionalNode(r, media.ClipClassID, media.ReadClip); err != nil {
		return err
	}
	if m.InGameMedia, err = gbxio.OptionalNode(r, media.ClipGroupClassID, media.ReadClipGroup); err != nil {
		return err
	}
	if m.EndRaceMedia, err = gbxio.OptionalNode(r, media.ClipGroupClassID, media.ReadClipGroup); err != nil {
		return err
	}
	if m.AmbianceMedia, err = gbxio.OptionalNode(r, media.ClipClassID, media.ReadClip); err != nil {
		return err
	}
	_, err = r.Vec3U32() // trigger size
	return err
}

func (m *Map) readChunk03043054(r *gbxio.Reader) error {
	if _, err := r.U32(); err != nil { // 1
		return err
	}
	if _, err := r.U32(); err != nil { // 0
		return err
	}
	size, err := r.U32()
	if err != nil {
		return err
	}
	sub, err := r.Bytes(int(size))
	if err != nil {
		return err
	}
	// The embedded-files sub-stream carries its own identifier table.
	sr := gbxio.NewReaderIDs(bytes.NewReader(sub), gbxio.NewIDState())
	fileIDs, err := gbxio.ReadList(sr, func(sr *gbxio.Reader) (ID, error) {
		id, err := sr.ID()
		if err != nil {
			return "", err
		}
		if _, err := sr.U32(); err != nil { // 26
			return "", err
		}
		if _, err := sr.OptionalID(); err != nil { // author
			return "", err
		}
		return id, nil
	})
	if err != nil {
		return err
	}
	archiveSize, err := sr.U32()
	if err != nil {
		return err
	}
	if archiveSize > 0 {
		archive, err := sr.Bytes(int(archiveSize))
		if err != nil {
			return err
		}
		m.EmbeddedFiles = &EmbeddedFiles{FileIDs: fileIDs, Archive: archive}
	}
	_, err = sr.U32() // 0
	return err
}

func (m *Map) readChunk03043056(r *gbxio.Reader) error {
	if _, err := r.U32(); err != nil {
		return err
	}
	if _, err := r.U32(); err != nil {
		return err
	}
	dayTime, err := r.U32()
	if err != nil {
		return err
	}
	if dayTime != gbxio.Null {
		m.DayTime = uint16(dayTime)
	}
	if _, err := r.U32(); err != nil {
		return err
	}
	if _, err := r.Bool(); err != nil { // dynamic daylight
		return err
	}
	_, err = r.U32() // day duration
	return err
}

// readChunk0304305F fills in the positions of the free blocks, in the order
// the blocks were read.
func (m *Map) readChunk0304305F(r *gbxio.Reader) error {
	if _, err := r.U32(); err != nil {
		return err
	}
	for _, blocks := range [][]BlockType{m.Blocks, m.BakedBlocks} {
		for _, block := range blocks {
			freeBlock, ok := block.(*FreeBlock)
			if !ok {
				continue
			}
			var err error
			if freeBlock.Pos, err = r.Vec3F32(); err != nil {
				return err
			}
			if freeBlock.Yaw, err = r.F32(); err != nil {
				return err
			}
			if freeBlock.Pitch, err = r.F32(); err != nil {
				return err
			}
			if freeBlock.Roll, err = r.F32(); err != nil {
				return err
			}
		}
	}
	return nil
}

// readChunk03043062 reads the per-element colors, covering blocks, baked
// blocks and items in that order.
func (m *Map) readChunk03043062(r *gbxio.Reader) error {
	if _, err := r.U32(); err != nil {
		return err
	}
	for _, blocks := range [][]BlockType{m.Blocks, m.BakedBlocks} {
		for _, block := range blocks {
			v, err := r.U8()
			if err != nil {
				return err
			}
			color, err := colorFrom(v)
			if err != nil {
				return err
			}
			switch block := block.(type) {
			case *Block:
				block.Color = color
			case *FreeBlock:
				block.Color = color
			}
		}
	}
	for i := range m.Items {
		v, err := r.U8()
		if err != nil {
			return err
		}
		if m.Items[i].Color, err = colorFrom(v); err != nil {
			return err
		}
	}
	return nil
}

func (m *Map) readChunk03043063(r *gbxio.Reader) error {
	if _, err := r.U32(); err != nil {
		return err
	}
	for i := range m.Items {
		v, err := r.U8()
		if err != nil {
			return err
		}
		if m.Items[i].AnimOffset, err = phaseOffsetFrom(v); err != nil {
			return err
		}
	}
	return nil
}

func (m *Map) readChunk03043068(r *gbxio.Reader) error {
	if _, err := r.U32(); err != nil {
		return err
	}
	for _, blocks := range [][]BlockType{m.Blocks, m.BakedBlocks} {
		for _, block := range blocks {
			v, err := r.U8()
			if err != nil {
				return err
			}
			quality, err := lightmapQualityFrom(v)
			if err != nil {
				return err
			}
			switch block := block.(type) {
			case *Block:
				block.LightmapQuality = quality
			case *FreeBlock:
				block.LightmapQuality = quality
			}
		}
	}
	for i := range m.Items {
		v, err := r.U8()
		if err != nil {
			return err
		}
		if m.Items[i].LightmapQuality, err = lightmapQualityFrom(v); err != nil {
			return err
		}
	}
	return nil
}
