// Copyright 2023 the gbx authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package gbx

import (
	"bytes"
	"strings"
	"testing"

	"github.com/go-test/deep"
	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jussyDr/gbx/gbxio"
)

func roundTrip(t *testing.T, m *Map) *Map {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, m.WriteTo(&buf))
	m2, err := ReadMap(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	return m2
}

func TestWriteReadDefaultMap(t *testing.T) {
	m := NewMap()
	m2 := roundTrip(t, m)
	if diff := deep.Equal(m, m2); diff != nil {
		t.Error(diff)
	}
}

func TestWriteReadDefaultMapUncompressed(t *testing.T) {
	m := NewMap()
	var buf bytes.Buffer
	require.NoError(t, m.WriteToOpts(&buf, WriteOpts{Uncompressed: true}))
	m2, err := ReadMap(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	if diff := deep.Equal(m, m2); diff != nil {
		t.Error(diff)
	}
}

func testMap() *Map {
	m := NewMap()
	m.Name = "Greenrun"
	m.AuthorUID = "aaaaaaaaaaaaaaaaaaaaaa"
	m.AuthorName = "author"
	m.AuthorZone = "World|Europe"
	m.Cost = 1204
	m.NumCPs = 3
	numLaps := uint32(2)
	m.NumLaps = &numLaps
	m.DayTime = SunsetMoodTime
	m.Thumbnail = []byte{0xFF, 0xD8, 0xFF, 0xD9}
	m.TextureMod = &ExternalFileRef{
		Path:       `Skins\Stadium\Mod\Rally.zip`,
		LocatorURL: "https://example.com/Rally.zip",
	}
	m.TextureMod.Hash[0] = 0xAB
	m.Music = InternalFileRef{Path: `GameData\Media\Musics\GameCtnMediaTrack.mux`}
	m.Blocks = []BlockType{
		&Block{
			ModelID:  "RoadTechStart",
			Dir:      East,
			Coord:    Vec3U8{X: 10, Y: 9, Z: 12},
			IsGround: true,
			WaypointProperty: &WaypointProperty{
				Kind:  Start,
				Order: RoyalOrderGreen,
			},
		},
		&Block{
			ModelID:      "RoadTechCheckpoint",
			Dir:          South,
			Coord:        Vec3U8{X: 11, Y: 9, Z: 12},
			VariantIndex: 1,
			WaypointProperty: &WaypointProperty{
				Kind: Checkpoint,
			},
			Color: ColorRed,
		},
		&Block{
			ModelID: "RoadTechGhost",
			Coord:   Vec3U8{X: 12, Y: 9, Z: 12},
			IsGhost: true,
			Skin: &Skin{
				Skin: InternalFileRef{Path: `Skins\Any\Advert.dds`},
			},
			LightmapQuality: LightmapVeryHigh,
		},
		&FreeBlock{
			ModelID: "DecoWall",
			Pos:     Vec3F32{X: 320.5, Y: 64, Z: 128},
			Yaw:     1.5,
			Pitch:   -0.25,
			Roll:    0.125,
			Color:   ColorBlack,
		},
	}
	m.Items = []Item{
		{
			ModelID:  "Gate",
			Yaw:      0.5,
			Coord:    Vec3U8{X: 20, Y: 9, Z: 20},
			Pos:      Vec3F32{X: 640, Y: 72, Z: 640.25},
			PivotPos: Vec3F32{X: 0.5, Y: 0, Z: 0.5},
			WaypointProperty: &WaypointProperty{
				Kind:  LinkedCheckpoint,
				Group: 4,
			},
			Color:           ColorBlue,
			AnimOffset:      PhaseOffsetThree8th,
			LightmapQuality: LightmapLow,
		},
	}
	m.Validation = &Validation{
		BronzeTime: 400,
		SilverTime: 300,
		GoldTime:   200,
		AuthorTime: 100,
	}
	return m
}

func TestMapRoundTrip(t *testing.T) {
	m := testMap()
	m2 := roundTrip(t, m)
	if diff := deep.Equal(m, m2); diff != nil {
		t.Error(diff)
	}
}

func TestEmbeddedFilesRoundTrip(t *testing.T) {
	m := NewMap()
	embedded, err := EmbedFiles(map[string][]byte{
		"Items/Gate.Item.Gbx": []byte("not really an item"),
		"Items/Sign.Item.Gbx": []byte("not really a sign"),
	})
	require.NoError(t, err)
	m.EmbeddedFiles = embedded

	m2 := roundTrip(t, m)
	require.NotNil(t, m2.EmbeddedFiles)
	assert.Equal(t, m.EmbeddedFiles.FileIDs, m2.EmbeddedFiles.FileIDs)
	assert.Equal(t, m.EmbeddedFiles.Archive, m2.EmbeddedFiles.Archive)

	zr, err := m2.EmbeddedFiles.Open()
	require.NoError(t, err)
	assert.Len(t, zr.File, 2)
}

func TestMedalTimesRoundTrip(t *testing.T) {
	m := NewMap()
	m.Validation = &Validation{BronzeTime: 400, SilverTime: 300, GoldTime: 200, AuthorTime: 100}
	m2 := roundTrip(t, m)
	require.NotNil(t, m2.Validation)
	assert.Equal(t, *m.Validation, *m2.Validation)

	m.Validation = nil
	m2 = roundTrip(t, m)
	assert.Nil(t, m2.Validation)

	// An unvalidated map mirrors -1 times into the XML header.
	xml, err := m.headerXML()
	require.NoError(t, err)
	assert.Contains(t, xml, `bronze="-1"`)
	assert.Contains(t, xml, `silver="-1"`)
	assert.Contains(t, xml, `gold="-1"`)
	assert.Contains(t, xml, `authortime="-1"`)
}

func TestDayTimeMood(t *testing.T) {
	m := NewMap()
	m.DayTime = DayMoodTime
	m.NoStadium = false
	assert.Equal(t, ID("48x48Day"), m.decoID())
	xml, err := m.headerXML()
	require.NoError(t, err)
	assert.Contains(t, xml, `mood="Day"`)

	m2 := roundTrip(t, m)
	assert.Equal(t, DayMoodTime, m2.DayTime)
	assert.False(t, m2.NoStadium)

	m.NoStadium = true
	assert.Equal(t, ID("NoStadium48x48Day"), m.decoID())
	m2 = roundTrip(t, m)
	assert.True(t, m2.NoStadium)
}

func TestMultilapFlagConsistency(t *testing.T) {
	m := NewMap()
	numLaps := uint32(5)
	m.NumLaps = &numLaps

	xml, err := m.headerXML()
	require.NoError(t, err)
	assert.Contains(t, xml, `nblaps="5"`)

	m2 := roundTrip(t, m)
	require.NotNil(t, m2.NumLaps)
	assert.Equal(t, numLaps, *m2.NumLaps)

	m.NumLaps = nil
	m2 = roundTrip(t, m)
	assert.Nil(t, m2.NumLaps)
}

func TestBlockListVoidEntry(t *testing.T) {
	// A void entry is consumed but contributes nothing; the fingerprint
	// loop stops right before the first non-identifier word. As in chunk
	// 0304301F, an identifier precedes the array so that the table's
	// version header is already consumed when the loop peeks.
	var buf bytes.Buffer
	w := gbxio.NewWriterIDs(&buf, gbxio.NewWriteIDState())
	require.NoError(t, w.ID("Stadium"))
	require.NoError(t, w.ID("Grass"))
	require.NoError(t, w.U8(0))
	require.NoError(t, w.Vec3U8(Vec3U8{}))
	require.NoError(t, w.U32(0xFFFFFFFF))
	require.NoError(t, w.U32(0x80000000))

	r := gbxio.NewReaderIDs(bytes.NewReader(buf.Bytes()), gbxio.NewIDState())
	_, err := r.ID()
	require.NoError(t, err)
	blocks, err := readBlockList(r, 0, true)
	require.NoError(t, err)
	assert.Empty(t, blocks)
	next, err := r.U32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0x80000000), next)
}

func TestFuzzedScalarFieldsRoundTrip(t *testing.T) {
	type scalarFields struct {
		Name       string
		AuthorName string
		AuthorZone string
		Cost       uint32
		NumCPs     uint32
		DayTime    uint16
	}
	fuzzer := fuzz.New().NilChance(0)
	for i := 0; i < 20; i++ {
		var fields scalarFields
		fuzzer.Fuzz(&fields)

		m := NewMap()
		m.Name = fields.Name
		m.AuthorName = fields.AuthorName
		m.AuthorZone = fields.AuthorZone
		m.Cost = fields.Cost
		m.NumCPs = fields.NumCPs
		m.DayTime = fields.DayTime

		m2 := roundTrip(t, m)
		assert.Equal(t, m.Name, m2.Name)
		assert.Equal(t, m.AuthorName, m2.AuthorName)
		assert.Equal(t, m.AuthorZone, m2.AuthorZone)
		assert.Equal(t, m.Cost, m2.Cost)
		assert.Equal(t, m.NumCPs, m2.NumCPs)
		assert.Equal(t, m.DayTime, m2.DayTime)
	}
}

func TestHeaderXMLMirror(t *testing.T) {
	m := testMap()
	xml, err := m.headerXML()
	require.NoError(t, err)
	for _, want := range []string{
		`type="map"`,
		`name="Greenrun"`,
		`authorzone="World|Europe"`,
		`mood="Sunset"`,
		`displaycost="1204"`,
		`validated="1"`,
		`hasghostblocks="1"`,
		`mod="Rally"`,
	} {
		assert.Contains(t, xml, want)
	}

	// The mirror parses back into the fields it carries.
	m2 := NewMap()
	require.NoError(t, m2.readHeaderXML(xml))
	assert.Equal(t, m.Name, m2.Name)
	assert.Equal(t, m.AuthorZone, m2.AuthorZone)
	assert.Equal(t, m.Cost, m2.Cost)
	assert.Equal(t, SunsetMoodTime, m2.DayTime)
	require.NotNil(t, m2.Validation)
	assert.Equal(t, uint32(100), m2.Validation.AuthorTime)
}

func TestSkipBody(t *testing.T) {
	m := testMap()
	var buf bytes.Buffer
	require.NoError(t, m.WriteTo(&buf))

	m2, err := ReadMapOpts(bytes.NewReader(buf.Bytes()), ReadOpts{SkipBody: true})
	require.NoError(t, err)
	// Header-derived fields are populated, body-derived ones are not.
	assert.Equal(t, m.Name, m2.Name)
	require.NotNil(t, m2.Validation)
	assert.Empty(t, m2.Items)
	assert.Len(t, m2.Blocks, 0)
}

func TestSkipUserData(t *testing.T) {
	m := testMap()
	var buf bytes.Buffer
	require.NoError(t, m.WriteTo(&buf))

	m2, err := ReadMapOpts(bytes.NewReader(buf.Bytes()), ReadOpts{SkipUserData: true})
	require.NoError(t, err)
	// The thumbnail only lives in the user-data section.
	assert.Nil(t, m2.Thumbnail)
	// Body-derived fields are still populated.
	assert.Equal(t, m.Name, m2.Name)
	assert.Len(t, m2.Blocks, len(m.Blocks))
}

// TestEmptyUserData decodes a hand-assembled file whose user-data section is
// empty: header-only fields keep their defaults while body fields populate.
func TestEmptyUserData(t *testing.T) {
	m := testMap()
	nodeState := gbxio.NewWriteNodeState()
	var bodyBuf bytes.Buffer
	bw := gbxio.NewWriterIDNodes(&bodyBuf, gbxio.NewWriteIDState(), nodeState)
	require.NoError(t, m.writeBody(bw))
	require.NoError(t, bw.NodeEnd())

	var buf bytes.Buffer
	w := gbxio.NewWriter(&buf)
	require.NoError(t, w.Bytes([]byte("GBX")))
	require.NoError(t, w.U16(6))
	require.NoError(t, w.Bytes([]byte{'B', 'U', 'U', 'R'}))
	require.NoError(t, w.U32(mapClassID))
	require.NoError(t, w.U32(0)) // empty user data
	require.NoError(t, w.U32(nodeState.NumNodes()))
	require.NoError(t, w.U32(0))
	require.NoError(t, w.Bytes(bodyBuf.Bytes()))

	m2, err := ReadMap(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Nil(t, m2.Thumbnail)
	assert.Equal(t, uint32(0), m2.NumCPs)
	assert.Equal(t, m.Name, m2.Name)
	assert.Len(t, m2.Blocks, len(m.Blocks))
	require.NotNil(t, m2.Validation)
	assert.Equal(t, m.Validation.AuthorTime, m2.Validation.AuthorTime)
}

func TestFreeBlockPositionDefault(t *testing.T) {
	// Without the free-block position chunk the position stays default.
	// An identifier precedes the array, as in chunk 0304301F.
	var buf bytes.Buffer
	w := gbxio.NewWriterIDs(&buf, gbxio.NewWriteIDState())
	require.NoError(t, w.ID("Stadium"))
	require.NoError(t, w.ID("DecoWall"))
	require.NoError(t, w.Bytes([]byte{0, 0, 0, 0}))
	require.NoError(t, w.U32(0x20000000))
	require.NoError(t, w.U32(0x80000000))

	r := gbxio.NewReaderIDs(bytes.NewReader(buf.Bytes()), gbxio.NewIDState())
	_, err := r.ID()
	require.NoError(t, err)
	blocks, err := readBlockList(r, 0, true)
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	freeBlock, ok := blocks[0].(*FreeBlock)
	require.True(t, ok)
	assert.Equal(t, Vec3F32{}, freeBlock.Pos)
}

func TestModFileName(t *testing.T) {
	m := NewMap()
	assert.Equal(t, "", m.modFileName())
	m.TextureMod = &ExternalFileRef{Path: `Skins\Stadium\Mod\Rally.zip`}
	assert.Equal(t, "Rally", m.modFileName())
	m.TextureMod = &ExternalFileRef{Path: "Nightly.zip"}
	assert.Equal(t, "Nightly", m.modFileName())
}

func TestReadErrorType(t *testing.T) {
	_, err := ReadMap(bytes.NewReader([]byte("NOPE")))
	require.Error(t, err)
	var readErr *ReadError
	require.ErrorAs(t, err, &readErr)
	assert.True(t, strings.HasPrefix(err.Error(), "gbx: read: "))
}
