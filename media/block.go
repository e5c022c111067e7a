// Copyright 2023 the gbx authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package media

import (
	"fmt"

	"github.com/jussyDr/gbx/errors"
	"github.com/jussyDr/gbx/gbxio"
)

// A Block is a media block: one of the concrete block types below,
// dispatched dynamically over the block's class ID.
type Block interface {
	mediaBlock()
}

// Triangles2D is a 2D triangles media block.
type Triangles2D struct{}

// Triangles3D is a 3D triangles media block.
type Triangles3D struct{}

// ColorBlock is a color media block.
type ColorBlock struct{}

// MotionBlur is a motion blur media block.
type MotionBlur struct{}

// PlayerCamera is a player camera media block.
type PlayerCamera struct{}

// Time is a time media block.
type Time struct {
	Keys []TimeKey
}

// OrbitalCamera is an orbital camera media block.
type OrbitalCamera struct{}

// PathCamera is a path camera media block.
type PathCamera struct{}

// CustomCamera is a custom camera media block.
type CustomCamera struct{}

// CameraShakeEffect is a camera shake effect media block.
type CameraShakeEffect struct {
	Keys []CameraShakeKey
}

// Image is an image media block.
type Image struct {
	Image gbxio.FileRef
}

// MusicVolume is a music volume media block.
type MusicVolume struct {
	Keys []MusicVolumeKey
}

// Sound is a sound media block.
type Sound struct {
	PlayCount uint32
	IsLooping bool
	IsMusic   bool
	Sound     gbxio.FileRef
	Keys      []SoundKey
}

// Text is a text media block.
type Text struct {
	Text  string
	Color gbxio.Rgb
}

// Trails is a trails media block.
type Trails struct {
	StartTime float32
	EndTime   float32
}

// TransitionFade is a transition fade media block.
type TransitionFade struct {
	Keys  []TransitionFadeKey
	Color gbxio.Rgb
}

// DepthOfField is a depth of field media block.
type DepthOfField struct{}

// ToneMapping is a tone mapping media block.
type ToneMapping struct{}

// Bloom is a bloom media block.
type Bloom struct {
	Keys []BloomKey
}

// TimeSpeed is a time speed media block.
type TimeSpeed struct{}

// Manialink is a manialink media block.
type Manialink struct{}

// VehicleLight is a vehicle light media block.
type VehicleLight struct{}

// EditingCut is an editing cut media block.
type EditingCut struct{}

// DirtyLens is a dirty lens media block.
type DirtyLens struct{}

// ColorGrading is a color grading media block.
type ColorGrading struct{}

// ManialinkInterface is a manialink interface media block.
type ManialinkInterface struct{}

// Fog is a fog media block.
type Fog struct{}

// Entity is an entity media block.
type Entity struct{}

// OpponentVisibility is an opponent visibility media block.
type OpponentVisibility struct{}

func (Triangles2D) mediaBlock()        {}
func (Triangles3D) mediaBlock()        {}
func (ColorBlock) mediaBlock()         {}
func (MotionBlur) mediaBlock()         {}
func (PlayerCamera) mediaBlock()       {}
func (Time) mediaBlock()               {}
func (OrbitalCamera) mediaBlock()      {}
func (PathCamera) mediaBlock()         {}
func (CustomCamera) mediaBlock()       {}
func (CameraShakeEffect) mediaBlock()  {}
func (Image) mediaBlock()              {}
func (MusicVolume) mediaBlock()        {}
func (Sound) mediaBlock()              {}
func (Text) mediaBlock()               {}
func (Trails) mediaBlock()             {}
func (TransitionFade) mediaBlock()     {}
func (DepthOfField) mediaBlock()       {}
func (ToneMapping) mediaBlock()        {}
func (Bloom) mediaBlock()              {}
func (TimeSpeed) mediaBlock()          {}
func (Manialink) mediaBlock()          {}
func (VehicleLight) mediaBlock()       {}
func (EditingCut) mediaBlock()         {}
func (DirtyLens) mediaBlock()          {}
func (ColorGrading) mediaBlock()       {}
func (ManialinkInterface) mediaBlock() {}
func (Fog) mediaBlock()                {}
func (Entity) mediaBlock()             {}
func (OpponentVisibility) mediaBlock() {}

// readBlock dispatches a media block body over its class ID.
func readBlock(r *gbxio.Reader, classID uint32) (Block, error) {
	var (
		block Block
		err   error
	)
	switch classID {
	case 0x0304B000:
		block, err = readTriangles2D(r)
	case 0x0304C000:
		block, err = readTriangles3D(r)
	case 0x03080000:
		block, err = readColorBlock(r)
	case 0x03082000:
		block, err = readMotionBlur(r)
	case 0x03084000:
		block, err = readPlayerCamera(r)
	case 0x03085000:
		block, err = readTime(r)
	case 0x030A0000:
		block, err = readOrbitalCamera(r)
	case 0x030A1000:
		block, err = readPathCamera(r)
	case 0x030A2000:
		block, err = readCustomCamera(r)
	case 0x030A4000:
		block, err = readCameraShakeEffect(r)
	case 0x030A5000:
		block, err = readImage(r)
	case 0x030A6000:
		block, err = readMusicVolume(r)
	case 0x030A7000:
		block, err = readSound(r)
	case 0x030A8000:
		block, err = readText(r)
	case 0x030A9000:
		block, err = readTrails(r)
	case 0x030AB000:
		block, err = readTransitionFade(r)
	case 0x03126000:
		block, err = readDepthOfField(r)
	case 0x03127000:
		block, err = readToneMapping(r)
	case 0x03128000:
		block, err = readBloom(r)
	case 0x03129000:
		block, err = readTimeSpeed(r)
	case 0x0312A000:
		block, err = readManialink(r)
	case 0x03133000:
		block, err = readVehicleLight(r)
	case 0x03145000:
		block, err = readEditingCut(r)
	case 0x03165000:
		block, err = readDirtyLens(r)
	case 0x03186000:
		block, err = readColorGrading(r)
	case 0x03195000:
		block, err = readManialinkInterface(r)
	case 0x03199000:
		block, err = readFog(r)
	case 0x0329F000:
		block, err = readEntity(r)
	case 0x0338B000:
		block, err = readOpponentVisibility(r)
	default:
		return nil, errors.E(errors.Structure, fmt.Sprintf("unknown media block class %08X", classID))
	}
	return block, err
}

func skipU32s(r *gbxio.Reader, n int) error {
	for i := 0; i < n; i++ {
		if _, err := r.U32(); err != nil {
			return err
		}
	}
	return nil
}

func skipU32List(r *gbxio.Reader, perElement int) error {
	return r.List(func(r *gbxio.Reader) error {
		return skipU32s(r, perElement)
	})
}

// readEffectSimi consumes a generic key effect node.
func readEffectSimi(r *gbxio.Reader) (struct{}, error) {
	var none struct{}
	if err := r.ChunkID(0x07010005); err != nil {
		return none, err
	}
	if err := skipU32List(r, 12); err != nil {
		return none, err
	}
	if err := skipU32s(r, 4); err != nil {
		return none, err
	}
	return none, r.NodeEnd()
}

func readTrianglesBody(r *gbxio.Reader) error {
	if err := r.ChunkID(0x03029001); err != nil {
		return err
	}
	if err := skipU32List(r, 1); err != nil { // key times
		return err
	}
	numKeys, err := r.U32()
	if err != nil {
		return err
	}
	numVertices, err := r.U32()
	if err != nil {
		return err
	}
	if err := skipU32s(r, int(numKeys)*int(numVertices)*3); err != nil {
		return err
	}
	if err := skipU32List(r, 4); err != nil { // vertex colors
		return err
	}
	if err := skipU32List(r, 3); err != nil { // triangle indices
		return err
	}
	if err := skipU32s(r, 7); err != nil {
		return err
	}
	return r.SkipOptionalChunk(0x03029002)
}

func readTriangles2D(r *gbxio.Reader) (Triangles2D, error) {
	return Triangles2D{}, readTrianglesBody(r)
}

func readTriangles3D(r *gbxio.Reader) (Triangles3D, error) {
	return Triangles3D{}, readTrianglesBody(r)
}

func readColorBlock(r *gbxio.Reader) (ColorBlock, error) {
	if err := r.ChunkID(0x03080003); err != nil {
		return ColorBlock{}, err
	}
	return ColorBlock{}, skipU32List(r, 29)
}

func readMotionBlur(r *gbxio.Reader) (MotionBlur, error) {
	if err := r.ChunkID(0x03082000); err != nil {
		return MotionBlur{}, err
	}
	return MotionBlur{}, skipU32s(r, 2)
}

func readPlayerCamera(r *gbxio.Reader) (PlayerCamera, error) {
	if err := r.ChunkID(0x03084007); err != nil {
		return PlayerCamera{}, err
	}
	return PlayerCamera{}, skipU32s(r, 21)
}

func readTime(r *gbxio.Reader) (Time, error) {
	var block Time
	if err := r.ChunkID(0x03085000); err != nil {
		return block, err
	}
	keys, err := gbxio.ReadList(r, func(r *gbxio.Reader) (TimeKey, error) {
		var key TimeKey
		var err error
		if key.Time, err = r.F32(); err != nil {
			return key, err
		}
		if key.TimeValue, err = r.F32(); err != nil {
			return key, err
		}
		key.Tangent, err = r.F32()
		return key, err
	})
	block.Keys = keys
	return block, err
}

func readOrbitalCamera(r *gbxio.Reader) (OrbitalCamera, error) {
	if err := r.ChunkID(0x030A0001); err != nil {
		return OrbitalCamera{}, err
	}
	if _, err := r.U32(); err != nil {
		return OrbitalCamera{}, err
	}
	return OrbitalCamera{}, r.List(func(r *gbxio.Reader) error {
		if err := skipU32s(r, 15); err != nil {
			return err
		}
		_, err := r.U8()
		return err
	})
}

func readPathCamera(r *gbxio.Reader) (PathCamera, error) {
	if err := r.ChunkID(0x030A1003); err != nil {
		return PathCamera{}, err
	}
	if _, err := r.U32(); err != nil { // 5
		return PathCamera{}, err
	}
	return PathCamera{}, skipU32List(r, 23)
}

func readCustomCamera(r *gbxio.Reader) (CustomCamera, error) {
	if err := r.ChunkID(0x030A2006); err != nil {
		return CustomCamera{}, err
	}
	if _, err := r.U32(); err != nil {
		return CustomCamera{}, err
	}
	return CustomCamera{}, skipU32List(r, 39)
}

func readCameraShakeEffect(r *gbxio.Reader) (CameraShakeEffect, error) {
	var block CameraShakeEffect
	if err := r.ChunkID(0x030A4000); err != nil {
		return block, err
	}
	keys, err := gbxio.ReadList(r, func(r *gbxio.Reader) (CameraShakeKey, error) {
		var key CameraShakeKey
		if err := r.Skip(4); err != nil {
			return key, err
		}
		var err error
		if key.Intensity, err = r.F32(); err != nil {
			return key, err
		}
		key.Speed, err = r.F32()
		return key, err
	})
	block.Keys = keys
	return block, err
}

func readImage(r *gbxio.Reader) (Image, error) {
	var block Image
	if err := r.ChunkID(0x030A5000); err != nil {
		return block, err
	}
	if _, err := gbxio.Node(r, 0x07010000, readEffectSimi); err != nil {
		return block, err
	}
	var err error
	block.Image, err = r.OptionalFileRef()
	return block, err
}

func readMusicVolume(r *gbxio.Reader) (MusicVolume, error) {
	var block MusicVolume
	if err := r.ChunkID(0x030A6001); err != nil {
		return block, err
	}
	keys, err := gbxio.ReadList(r, func(r *gbxio.Reader) (MusicVolumeKey, error) {
		var key MusicVolumeKey
		if err := r.Skip(4); err != nil {
			return key, err
		}
		var err error
		if key.MusicVolume, err = r.F32(); err != nil {
			return key, err
		}
		key.SoundVolume, err = r.F32()
		return key, err
	})
	block.Keys = keys
	return block, err
}

func readSound(r *gbxio.Reader) (Sound, error) {
	var block Sound
	if err := r.ChunkID(0x030A7003); err != nil {
		return block, err
	}
	if err := r.Skip(4); err != nil {
		return block, err
	}
	var err error
	if block.PlayCount, err = r.U32(); err != nil {
		return block, err
	}
	if block.IsLooping, err = r.Bool(); err != nil {
		return block, err
	}
	if block.IsMusic, err = r.Bool(); err != nil {
		return block, err
	}
	if _, err := r.U32(); err != nil {
		return block, err
	}
	if _, err := r.Bool(); err != nil { // audio to speech
		return block, err
	}
	if _, err := r.U32(); err != nil { // audio to speech target
		return block, err
	}
	if err := r.ChunkID(0x030A7004); err != nil {
		return block, err
	}
	if block.Sound, err = r.OptionalFileRef(); err != nil {
		return block, err
	}
	if _, err := r.U32(); err != nil {
		return block, err
	}
	block.Keys, err = gbxio.ReadList(r, func(r *gbxio.Reader) (SoundKey, error) {
		var key SoundKey
		if _, err := r.U32(); err != nil {
			return key, err
		}
		var err error
		if key.Volume, err = r.F32(); err != nil {
			return key, err
		}
		if _, err := r.U32(); err != nil {
			return key, err
		}
		key.Position, err = r.Vec3F32()
		return key, err
	})
	return block, err
}

func readText(r *gbxio.Reader) (Text, error) {
	var block Text
	if err := r.ChunkID(0x030A8001); err != nil {
		return block, err
	}
	var err error
	if block.Text, err = r.String(); err != nil {
		return block, err
	}
	if _, err := gbxio.Node(r, 0x07010000, readEffectSimi); err != nil {
		return block, err
	}
	if err := r.ChunkID(0x030A8002); err != nil {
		return block, err
	}
	if block.Color.R, err = r.F32(); err != nil {
		return block, err
	}
	if block.Color.G, err = r.F32(); err != nil {
		return block, err
	}
	block.Color.B, err = r.F32()
	return block, err
}

func readTrails(r *gbxio.Reader) (Trails, error) {
	var block Trails
	if err := r.ChunkID(0x030A9000); err != nil {
		return block, err
	}
	var err error
	if block.StartTime, err = r.F32(); err != nil {
		return block, err
	}
	block.EndTime, err = r.F32()
	return block, err
}

func readTransitionFade(r *gbxio.Reader) (TransitionFade, error) {
	var block TransitionFade
	if err := r.ChunkID(0x030AB000); err != nil {
		return block, err
	}
	keys, err := gbxio.ReadList(r, func(r *gbxio.Reader) (TransitionFadeKey, error) {
		var key TransitionFadeKey
		var err error
		if key.Time, err = r.F32(); err != nil {
			return key, err
		}
		key.Opacity, err = r.F32()
		return key, err
	})
	if err != nil {
		return block, err
	}
	block.Keys = keys
	if block.Color.R, err = r.F32(); err != nil {
		return block, err
	}
	if block.Color.G, err = r.F32(); err != nil {
		return block, err
	}
	if block.Color.B, err = r.F32(); err != nil {
		return block, err
	}
	_, err = r.U32()
	return block, err
}

func readDepthOfField(r *gbxio.Reader) (DepthOfField, error) {
	if err := r.ChunkID(0x03126002); err != nil {
		return DepthOfField{}, err
	}
	return DepthOfField{}, skipU32List(r, 7)
}

func readToneMapping(r *gbxio.Reader) (ToneMapping, error) {
	if err := r.ChunkID(0x03127004); err != nil {
		return ToneMapping{}, err
	}
	return ToneMapping{}, skipU32List(r, 5)
}

func readBloom(r *gbxio.Reader) (Bloom, error) {
	var block Bloom
	if err := r.ChunkID(0x03128002); err != nil {
		return block, err
	}
	keys, err := gbxio.ReadList(r, func(r *gbxio.Reader) (BloomKey, error) {
		var key BloomKey
		if err := r.Skip(4); err != nil {
			return key, err
		}
		var err error
		if key.Intensity, err = r.F32(); err != nil {
			return key, err
		}
		if key.StreaksIntensity, err = r.F32(); err != nil {
			return key, err
		}
		key.StreaksAttenuation, err = r.F32()
		return key, err
	})
	block.Keys = keys
	return block, err
}

func readTimeSpeed(r *gbxio.Reader) (TimeSpeed, error) {
	if err := r.ChunkID(0x03129000); err != nil {
		return TimeSpeed{}, err
	}
	return TimeSpeed{}, skipU32List(r, 2)
}

func readManialink(r *gbxio.Reader) (Manialink, error) {
	if err := r.ChunkID(0x0312A001); err != nil {
		return Manialink{}, err
	}
	if err := skipU32s(r, 3); err != nil {
		return Manialink{}, err
	}
	_, err := r.String()
	return Manialink{}, err
}

func readVehicleLight(r *gbxio.Reader) (VehicleLight, error) {
	if err := r.ChunkID(0x03133000); err != nil {
		return VehicleLight{}, err
	}
	if err := skipU32s(r, 2); err != nil {
		return VehicleLight{}, err
	}
	if err := r.ChunkID(0x03133001); err != nil {
		return VehicleLight{}, err
	}
	return VehicleLight{}, skipU32s(r, 1)
}

func readEditingCut(r *gbxio.Reader) (EditingCut, error) {
	if err := r.ChunkID(0x03145000); err != nil {
		return EditingCut{}, err
	}
	return EditingCut{}, skipU32s(r, 2)
}

func readDirtyLens(r *gbxio.Reader) (DirtyLens, error) {
	if err := r.ChunkID(0x03165000); err != nil {
		return DirtyLens{}, err
	}
	if _, err := r.U32(); err != nil {
		return DirtyLens{}, err
	}
	return DirtyLens{}, skipU32List(r, 2)
}

func readColorGrading(r *gbxio.Reader) (ColorGrading, error) {
	if err := r.ChunkID(0x03186000); err != nil {
		return ColorGrading{}, err
	}
	if _, err := r.OptionalFileRef(); err != nil {
		return ColorGrading{}, err
	}
	if err := r.ChunkID(0x03186001); err != nil {
		return ColorGrading{}, err
	}
	return ColorGrading{}, skipU32List(r, 2)
}

func readManialinkInterface(r *gbxio.Reader) (ManialinkInterface, error) {
	if err := r.ChunkID(0x03195000); err != nil {
		return ManialinkInterface{}, err
	}
	if err := skipU32s(r, 4); err != nil {
		return ManialinkInterface{}, err
	}
	_, err := r.String()
	return ManialinkInterface{}, err
}

func readFog(r *gbxio.Reader) (Fog, error) {
	if err := r.ChunkID(0x03199000); err != nil {
		return Fog{}, err
	}
	if _, err := r.U32(); err != nil {
		return Fog{}, err
	}
	return Fog{}, skipU32List(r, 10)
}

func readEntity(r *gbxio.Reader) (Entity, error) {
	if err := r.ChunkID(0x0329F000); err != nil {
		return Entity{}, err
	}
	version, err := r.U32()
	if err != nil {
		return Entity{}, err
	}
	if err := r.NodeRef(0x0911F000, readEntityRecord); err != nil {
		return Entity{}, err
	}
	if _, err := r.U32(); err != nil {
		return Entity{}, err
	}
	if err := skipU32List(r, 1); err != nil {
		return Entity{}, err
	}
	if err := skipU32s(r, 4); err != nil {
		return Entity{}, err
	}
	if _, err := r.OptionalID(); err != nil { // vehicle model id
		return Entity{}, err
	}
	if _, err := r.U32(); err != nil {
		return Entity{}, err
	}
	if _, err := r.OptionalID(); err != nil { // vehicle model author
		return Entity{}, err
	}
	if err := skipU32s(r, 3); err != nil {
		return Entity{}, err
	}
	if err := r.List(func(r *gbxio.Reader) error {
		_, err := r.OptionalFileRef()
		return err
	}); err != nil {
		return Entity{}, err
	}
	if _, err := r.U32(); err != nil {
		return Entity{}, err
	}
	perElement := 6
	if version >= 9 {
		perElement = 7
	}
	if err := skipU32List(r, perElement); err != nil {
		return Entity{}, err
	}
	if version >= 7 {
		if _, err := r.String(); err != nil {
			return Entity{}, err
		}
	}
	if version >= 8 {
		if _, err := r.U32(); err != nil {
			return Entity{}, err
		}
	}
	return Entity{}, r.OptionalChunk(0x0329F002, func(r *gbxio.Reader) error {
		_, err := r.U32()
		return err
	})
}

// readEntityRecord consumes an entity record node: the replay payload stays
// compressed and is skipped over.
func readEntityRecord(r *gbxio.Reader) error {
	if err := r.ChunkID(0x0911F000); err != nil {
		return err
	}
	if err := skipU32s(r, 2); err != nil {
		return err
	}
	compressedSize, err := r.U32()
	if err != nil {
		return err
	}
	if err := r.Skip(int64(compressedSize)); err != nil {
		return err
	}
	return r.NodeEnd()
}

func readOpponentVisibility(r *gbxio.Reader) (OpponentVisibility, error) {
	if err := r.ChunkID(0x0338B000); err != nil {
		return OpponentVisibility{}, err
	}
	if err := skipU32s(r, 2); err != nil {
		return OpponentVisibility{}, err
	}
	if err := r.ChunkID(0x0338B001); err != nil {
		return OpponentVisibility{}, err
	}
	return OpponentVisibility{}, skipU32s(r, 1)
}
