// Copyright 2023 the gbx authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package gbx

import (
	"github.com/jussyDr/gbx/media"
)

// Day times of the default moods.
const (
	// NightMoodTime is the day time of the default night mood.
	NightMoodTime uint16 = 6554
	// SunriseMoodTime is the day time of the default sunrise mood.
	SunriseMoodTime uint16 = 20808
	// DayMoodTime is the day time of the default day mood.
	DayMoodTime uint16 = 33041
	// SunsetMoodTime is the day time of the default sunset mood.
	SunsetMoodTime uint16 = 52920
)

// Validation holds the medal times of a validated map.
type Validation struct {
	// BronzeTime is the bronze medal time in milliseconds.
	BronzeTime uint32
	// SilverTime is the silver medal time in milliseconds.
	SilverTime uint32
	// GoldTime is the gold medal time in milliseconds.
	GoldTime uint32
	// AuthorTime is the author medal time in milliseconds.
	AuthorTime uint32
	// Ghost is the optional validation ghost.
	Ghost *Ghost
}

// Direction is the cardinal direction of a block.
type Direction uint8

const (
	North Direction = iota
	East
	South
	West
)

// Color is the color of a block or item.
type Color uint8

const (
	ColorDefault Color = iota
	ColorWhite
	ColorGreen
	ColorBlue
	ColorRed
	ColorBlack
)

// LightmapQuality is the lightmap quality of a block or item.
type LightmapQuality uint8

const (
	LightmapNormal LightmapQuality = iota
	LightmapHigh
	LightmapVeryHigh
	LightmapHighest
	LightmapLow
	LightmapVeryLow
	LightmapLowest
)

// PhaseOffset is the animation phase offset of a moving item, in eighths.
type PhaseOffset uint8

const (
	PhaseOffsetNone PhaseOffset = iota
	PhaseOffsetOne8th
	PhaseOffsetTwo8th
	PhaseOffsetThree8th
	PhaseOffsetFour8th
	PhaseOffsetFive8th
	PhaseOffsetSix8th
	PhaseOffsetSeven8th
)

// RoyalOrder is the order of a start, finish or multilap block or item in
// royal. The zero value denotes no order.
type RoyalOrder uint32

const (
	RoyalOrderNone RoyalOrder = iota
	RoyalOrderWhite
	RoyalOrderGreen
	RoyalOrderBlue
	RoyalOrderRed
	RoyalOrderBlack
)

// Skin is the skin of a block or item, e.g. for signs.
type Skin struct {
	// Skin is the skin file.
	Skin FileRef
	// Effect is an additional effect overlayed on top of the skin.
	Effect FileRef
}

// WaypointKind selects the variant of a WaypointProperty.
type WaypointKind uint8

const (
	// Checkpoint is a checkpoint waypoint.
	Checkpoint WaypointKind = iota
	// LinkedCheckpoint is a linked checkpoint waypoint.
	LinkedCheckpoint
	// Start is a start waypoint.
	Start
	// Finish is a finish waypoint.
	Finish
	// StartFinish is a multilap waypoint.
	StartFinish
)

// WaypointProperty is the waypoint property of a block or item.
type WaypointProperty struct {
	// Kind selects the waypoint variant.
	Kind WaypointKind
	// Group is the group number of a linked checkpoint.
	Group uint32
	// Order is the optional royal order of a start, finish or multilap
	// waypoint.
	Order RoyalOrder
}

// A Block is a 'normal' block placed inside of a Map.
type Block struct {
	// ModelID is the ID of the block's model.
	ModelID ID
	// Dir is the direction of the block.
	Dir Direction
	// Coord is the coordinate of the block.
	Coord Vec3U8
	// IsGround is true if the block is a ground block variant.
	IsGround bool
	// Skin is the optional skin of the block.
	Skin *Skin
	// WaypointProperty is the optional waypoint property.
	WaypointProperty *WaypointProperty
	// VariantIndex is the variant index of the block.
	VariantIndex uint8
	// IsGhost is true if the block is a ghost block.
	IsGhost bool
	// Color is the color of the block.
	Color Color
	// LightmapQuality is the lightmap quality of the block.
	LightmapQuality LightmapQuality
}

// A FreeBlock is a freely placed block inside of a Map. Its position is
// absolute rather than grid-aligned.
type FreeBlock struct {
	// ModelID is the ID of the block's model.
	ModelID ID
	// Skin is the optional skin of the block.
	Skin *Skin
	// WaypointProperty is the optional waypoint property.
	WaypointProperty *WaypointProperty
	// Pos is the absolute position of the block.
	Pos Vec3F32
	// Yaw is the yaw rotation of the block.
	Yaw float32
	// Pitch is the pitch rotation of the block.
	Pitch float32
	// Roll is the roll rotation of the block.
	Roll float32
	// Color is the color of the block.
	Color Color
	// LightmapQuality is the lightmap quality of the block.
	LightmapQuality LightmapQuality
}

// A BlockType is either a *Block or a *FreeBlock. Consumers that need the
// concrete variant type-switch; the shared fields are projected by the
// BlockModelID, BlockSkin, BlockWaypointProperty, BlockColor and
// BlockLightmapQuality functions.
type BlockType interface {
	blockType()
}

func (*Block) blockType()     {}
func (*FreeBlock) blockType() {}

// BlockModelID returns the model ID of either block variant.
func BlockModelID(b BlockType) ID {
	switch b := b.(type) {
	case *Block:
		return b.ModelID
	case *FreeBlock:
		return b.ModelID
	}
	return ""
}

// BlockSkin returns the skin of either block variant.
func BlockSkin(b BlockType) *Skin {
	switch b := b.(type) {
	case *Block:
		return b.Skin
	case *FreeBlock:
		return b.Skin
	}
	return nil
}

// BlockWaypointProperty returns the waypoint property of either block
// variant.
func BlockWaypointProperty(b BlockType) *WaypointProperty {
	switch b := b.(type) {
	case *Block:
		return b.WaypointProperty
	case *FreeBlock:
		return b.WaypointProperty
	}
	return nil
}

// BlockColor returns the color of either block variant.
func BlockColor(b BlockType) Color {
	switch b := b.(type) {
	case *Block:
		return b.Color
	case *FreeBlock:
		return b.Color
	}
	return ColorDefault
}

// BlockLightmapQuality returns the lightmap quality of either block variant.
func BlockLightmapQuality(b BlockType) LightmapQuality {
	switch b := b.(type) {
	case *Block:
		return b.LightmapQuality
	case *FreeBlock:
		return b.LightmapQuality
	}
	return LightmapNormal
}

// An Item is an item placed inside of a Map.
type Item struct {
	// ModelID is the ID of the item's model.
	ModelID ID
	// Yaw is the yaw rotation of the item.
	Yaw float32
	// Pitch is the pitch rotation of the item.
	Pitch float32
	// Roll is the roll rotation of the item.
	Roll float32
	// Coord is the coord inside the map.
	Coord Vec3U8
	// Pos is the absolute position inside the map.
	Pos Vec3F32
	// WaypointProperty is the optional waypoint property.
	WaypointProperty *WaypointProperty
	// PivotPos is the pivot position of the item.
	PivotPos Vec3F32
	// Color is the color of the item.
	Color Color
	// AnimOffset is the phase offset of the item's animation.
	AnimOffset PhaseOffset
	// LightmapQuality is the lightmap quality of the item.
	LightmapQuality LightmapQuality
}

// EmbeddedFiles holds the files embedded in a map.
type EmbeddedFiles struct {
	// FileIDs are the IDs of the files embedded in the map. The length is
	// equal to the number of files in the Archive.
	FileIDs []ID
	// Archive is all files embedded in the map as a raw ZIP archive.
	Archive []byte
}

// Map corresponds to the file extension Map.Gbx.
type Map struct {
	// Name is the name of the map.
	Name string
	// AuthorName is the name of the map author.
	AuthorName string
	// AuthorUID is the unique ID of the map author.
	AuthorUID ID
	// AuthorZone is the zone of the map author.
	AuthorZone string
	// Validation is the optional validation of the map.
	Validation *Validation
	// Cost is the display cost of the map.
	Cost uint32
	// NumCPs is the number of checkpoints needed to finish the map.
	NumCPs uint32
	// NumLaps is the number of laps if the map is multilap, else nil.
	NumLaps *uint32
	// NoStadium is true if the map has no stadium.
	NoStadium bool
	// Thumbnail is the optional thumbnail of the map as raw JPEG.
	Thumbnail []byte
	// TextureMod is the optional texture mod.
	TextureMod *ExternalFileRef
	// DayTime is the day time which specifies the mood of the map. The
	// constants NightMoodTime, SunriseMoodTime, DayMoodTime and
	// SunsetMoodTime specify the values of DayTime for the default moods.
	DayTime uint16
	// Size is the size of the map.
	Size Vec3U32
	// Blocks are all (free) blocks placed inside of the map.
	Blocks []BlockType
	// Music is the optional map music.
	Music FileRef
	// Items are all items placed inside of the map.
	Items []Item
	// BakedBlocks are all grass blocks and clips inside the map. The Skin
	// and WaypointProperty fields of the baked blocks are always nil.
	BakedBlocks []BlockType
	// IntroMedia is the optional MediaTracker clip for the map intro.
	IntroMedia *media.Clip
	// PodiumMedia is the optional MediaTracker clip for the podium.
	PodiumMedia *media.Clip
	// InGameMedia is the optional MediaTracker clip group for in game.
	InGameMedia *media.ClipGroup
	// EndRaceMedia is the optional MediaTracker clip group for end race.
	EndRaceMedia *media.ClipGroup
	// AmbianceMedia is the optional MediaTracker clip for the map
	// ambiance.
	AmbianceMedia *media.Clip
	// EmbeddedFiles are the files embedded in the map.
	EmbeddedFiles *EmbeddedFiles

	uid ID
}

// NewMap creates a new map with default values: an unnamed 48x8x48 stadium
// map at day mood whose baked blocks form the default grass floor.
func NewMap() *Map {
	bakedBlocks := make([]BlockType, 0, 48*48)
	for x := uint8(0); x < 48; x++ {
		for z := uint8(0); z < 48; z++ {
			bakedBlocks = append(bakedBlocks, &Block{
				ModelID:  "Grass",
				Coord:    Vec3U8{X: x, Y: 9, Z: z},
				IsGround: true,
			})
		}
	}
	return &Map{
		Name:        "Unnamed",
		Cost:        312,
		DayTime:     DayMoodTime,
		Size:        Vec3U32{X: 48, Y: 8, Z: 48},
		BakedBlocks: bakedBlocks,
	}
}

// UID returns the unique ID of the map, or the empty ID for a map that has
// not been through the game.
//
// The ID is a 20 byte value which is URL-safe Base64 encoded. The first 16
// bytes are a v4 UUID, and the last 4 bytes a ZLIB CRC-32 checksum of the
// map serialized as GBX without user data and with an uncompressed body.
func (m *Map) UID() ID {
	return m.uid
}

func (m *Map) setValidationTimes(times *[4]uint32) {
	if times == nil {
		m.Validation = nil
		return
	}
	if m.Validation == nil {
		m.Validation = new(Validation)
	}
	m.Validation.BronzeTime = times[0]
	m.Validation.SilverTime = times[1]
	m.Validation.GoldTime = times[2]
	m.Validation.AuthorTime = times[3]
}
