// Copyright 2023 the gbx authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package model

import (
	"fmt"
	"io"
	"os"

	"github.com/jussyDr/gbx"
	"github.com/jussyDr/gbx/errors"
	"github.com/jussyDr/gbx/gbxio"
)

// Block corresponds to the file extension Block.Gbx.
type Block struct {
	// Archetype is the ID of the block info archetype.
	Archetype gbxio.ID
	// Variants are the variant models of the block.
	Variants []Model
}

// Item corresponds to the file extension Item.Gbx.
type Item struct {
	// Model is the model of the item.
	Model Model
}

const (
	itemModelClassID    = 0x2E002000
	blockModelClassID   = 0x2E025000
	itemCrystalClassID  = 0x2E026000
	staticObjectClassID = 0x2E027000
)

// ReadBlock decodes a Block from r.
func ReadBlock(r io.Reader) (*Block, error) {
	return ReadBlockOpts(r, gbx.ReadOpts{})
}

// ReadBlockOpts decodes a Block from r with the given options.
func ReadBlockOpts(r io.Reader, opts gbx.ReadOpts) (*Block, error) {
	var block Block
	err := gbx.ReadNode(r, itemModelClassID, opts, headerChunks(), func(br *gbxio.Reader) error {
		return gbxio.ReadBody(br, bodyChunks(&block, nil))
	})
	if err != nil {
		return nil, &gbx.ReadError{Err: err}
	}
	return &block, nil
}

// ReadBlockFile decodes a Block from the file at path.
func ReadBlockFile(path string) (*Block, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &gbx.ReadError{Err: errors.E(errors.IO, err)}
	}
	defer f.Close()
	return ReadBlock(f)
}

// ReadItem decodes an Item from r.
func ReadItem(r io.Reader) (*Item, error) {
	return ReadItemOpts(r, gbx.ReadOpts{})
}

// ReadItemOpts decodes an Item from r with the given options.
func ReadItemOpts(r io.Reader, opts gbx.ReadOpts) (*Item, error) {
	var item Item
	err := gbx.ReadNode(r, itemModelClassID, opts, headerChunks(), func(br *gbxio.Reader) error {
		return gbxio.ReadBody(br, bodyChunks(nil, &item))
	})
	if err != nil {
		return nil, &gbx.ReadError{Err: err}
	}
	return &item, nil
}

// ReadItemFile decodes an Item from the file at path.
func ReadItemFile(path string) (*Item, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &gbx.ReadError{Err: errors.E(errors.IO, err)}
	}
	defer f.Close()
	return ReadItem(f)
}

func headerChunks() []gbx.HeaderChunk {
	return []gbx.HeaderChunk{
		{ID: 0x2E001003, Read: readHeaderChunk2E001003},
		{ID: 0x2E001004, Read: readHeaderChunk2E001004},
		{ID: 0x2E001006, Read: func(r *gbxio.Reader) error {
			_, err := r.U64()
			return err
		}},
		{ID: 0x2E002000, Read: func(r *gbxio.Reader) error {
			_, err := r.U32() // item type
			return err
		}},
		{ID: 0x2E002001, Read: func(r *gbxio.Reader) error {
			_, err := r.U32()
			return err
		}},
	}
}

// bodyChunks builds the shared item-model body registry; exactly one of
// block and item is non-nil and receives the decoded model.
func bodyChunks(block *Block, item *Item) []gbxio.BodyChunk {
	return []gbxio.BodyChunk{
		{ID: 0x2E001009, Read: func(r *gbxio.Reader) error {
			if _, err := r.String(); err != nil { // page path
				return err
			}
			if _, err := r.U32(); err != nil {
				return err
			}
			_, err := r.OptionalID()
			return err
		}},
		{ID: 0x2E00100B, Read: func(r *gbxio.Reader) error {
			if err := skipU32s(r, 2); err != nil {
				return err
			}
			_, err := r.ID()
			return err
		}},
		{ID: 0x2E00100C, Read: readStringChunk},
		{ID: 0x2E00100D, Read: readStringChunk},
		{ID: 0x2E00100E, Read: func(r *gbxio.Reader) error { return skipU32s(r, 2) }},
		{ID: 0x2E001010, Read: func(r *gbxio.Reader) error { return skipU32s(r, 4) }},
		{ID: 0x2E001011, Read: func(r *gbxio.Reader) error {
			if err := skipU32s(r, 4); err != nil {
				return err
			}
			_, err := r.U8()
			return err
		}},
		{ID: 0x2E002008, Read: func(r *gbxio.Reader) error { return skipU32List(r, 1) }},
		{ID: 0x2E002009, Read: func(r *gbxio.Reader) error { return skipU32s(r, 2) }},
		{ID: 0x2E00200C, Read: func(r *gbxio.Reader) error { return skipU32s(r, 1) }},
		{ID: 0x2E002012, Read: func(r *gbxio.Reader) error {
			if err := skipU32s(r, 5); err != nil {
				return err
			}
			if _, err := r.F32(); err != nil {
				return err
			}
			_, err := r.F32()
			return err
		}},
		{ID: 0x2E002015, Read: func(r *gbxio.Reader) error {
			_, err := r.U32() // item type
			return err
		}},
		{ID: 0x2E002019, Read: func(r *gbxio.Reader) error {
			return readChunk2E002019(r, block, item)
		}},
		{ID: 0x2E00201A, Read: func(r *gbxio.Reader) error { return skipU32s(r, 1) }},
		{ID: 0x2E00201C, Read: readChunk2E00201C},
		{ID: 0x2E00201E, Read: func(r *gbxio.Reader) error {
			version, err := r.U32()
			if err != nil {
				return err
			}
			if err := skipU32s(r, 3); err != nil {
				return err
			}
			if version >= 7 {
				return skipU32s(r, 1)
			}
			return nil
		}},
		{ID: 0x2E00201F, Read: func(r *gbxio.Reader) error {
			version, err := r.U32()
			if err != nil {
				return err
			}
			if err := skipU32s(r, 3); err != nil {
				return err
			}
			if version >= 11 {
				_, err := r.U8()
				return err
			}
			return nil
		}},
		{ID: 0x2E002020, Read: func(r *gbxio.Reader) error {
			if _, err := r.U32(); err != nil {
				return err
			}
			if _, err := r.String(); err != nil { // icon path
				return err
			}
			_, err := r.U8()
			return err
		}},
		{ID: 0x2E002021, Read: func(r *gbxio.Reader) error { return skipU32s(r, 2) }},
		{ID: 0x2E002023, Read: func(r *gbxio.Reader) error {
			if _, err := r.U32(); err != nil {
				return err
			}
			if _, err := r.U8(); err != nil {
				return err
			}
			_, err := r.U32()
			return err
		}},
		{ID: 0x2E002024, Skip: true},
		{ID: 0x2E002025, Skip: true},
		{ID: 0x2E002026, Skip: true},
		{ID: 0x2E002027, Skip: true},
	}
}

func readStringChunk(r *gbxio.Reader) error {
	_, err := r.String()
	return err
}

func readHeaderChunk2E001003(r *gbxio.Reader) error {
	if _, err := r.OptionalID(); err != nil {
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
	if _, err := r.String(); err != nil { // name
		return err
	}
	if err := skipU32s(r, 2); err != nil {
		return err
	}
	if _, err := r.U16(); err != nil {
		return err
	}
	if _, err := r.String(); err != nil {
		return err
	}
	_, err := r.U8()
	return err
}

func readHeaderChunk2E001004(r *gbxio.Reader) error {
	iconWidth, err := r.U16()
	if err != nil {
		return err
	}
	iconHeight, err := r.U16()
	if err != nil {
		return err
	}
	return skipU32s(r, int(iconWidth)*int(iconHeight))
}

// readChunk2E002019 carries the model payload: a crystal variant (block or
// item), optionally followed by a baked static object.
func readChunk2E002019(r *gbxio.Reader, block *Block, item *Item) error {
	version, err := r.U32()
	if err != nil {
		return err
	}
	if err := skipU32s(r, 5); err != nil {
		return err
	}
	if _, err := r.AnyOptionalNode(func(r *gbxio.Reader, classID uint32) (interface{}, error) {
		switch classID {
		case blockModelClassID:
			crystalBlock, err := readCrystalBlock(r)
			if err != nil {
				return nil, err
			}
			if block != nil {
				*block = crystalBlock
			}
			return crystalBlock, nil
		case itemCrystalClassID:
			crystalItem, err := readCrystalItem(r)
			if err != nil {
				return nil, err
			}
			if item != nil {
				*item = crystalItem
			}
			return crystalItem, nil
		}
		return nil, errors.E(errors.Structure, fmt.Sprintf("unknown item model class %08X", classID))
	}); err != nil {
		return err
	}
	staticModel, err := gbxio.OptionalNode(r, staticObjectClassID, readStaticObject)
	if err != nil {
		return err
	}
	if item != nil && staticModel != nil {
		item.Model = *staticModel
	}
	if version >= 15 {
		return skipU32s(r, 1)
	}
	return nil
}

func readChunk2E00201C(r *gbxio.Reader) error {
	if _, err := r.U32(); err != nil {
		return err
	}
	return r.NodeRef(0x2E020000, func(r *gbxio.Reader) error {
		if err := r.SkipChunk(0x2E020000); err != nil {
			return err
		}
		if err := r.SkipChunk(0x2E020001); err != nil {
			return err
		}
		if err := r.SkipChunk(0x2E020003); err != nil {
			return err
		}
		return r.SkipOptionalChunk(0x2E020004)
	})
}

// readCrystalBlock decodes a crystal block node body (class 0x2E025000).
func readCrystalBlock(r *gbxio.Reader) (Block, error) {
	var block Block
	err := gbxio.ReadBody(r, []gbxio.BodyChunk{
		{ID: 0x2E025000, Read: func(r *gbxio.Reader) error {
			if _, err := r.U32(); err != nil {
				return err
			}
			var err error
			if block.Archetype, err = r.ID(); err != nil {
				return err
			}
			if _, err := r.U32(); err != nil {
				return err
			}
			block.Variants, err = gbxio.ReadList(r, func(r *gbxio.Reader) (Model, error) {
				if _, err := r.U32(); err != nil {
					return Model{}, err
				}
				return gbxio.Node(r, 0x09003000, readCrystal)
			})
			return err
		}},
		{ID: 0x2E025001, Skip: true},
		{ID: 0x2E025002, Skip: true},
		{ID: 0x2E025003, Skip: true},
	})
	return block, err
}

// readCrystalItem decodes a crystal item node body (class 0x2E026000).
func readCrystalItem(r *gbxio.Reader) (Item, error) {
	var item Item
	err := gbxio.ReadBody(r, []gbxio.BodyChunk{
		{ID: 0x2E026000, Read: func(r *gbxio.Reader) error {
			if err := skipU32s(r, 2); err != nil {
				return err
			}
			var err error
			if item.Model, err = gbxio.Node(r, 0x09003000, readCrystal); err != nil {
				return err
			}
			return skipU32s(r, 35)
		}},
		{ID: 0x2E026001, Skip: true},
	})
	return item, err
}

// readStaticObject decodes a static object node body (class 0x2E027000),
// yielding the model of its baked visual mesh.
func readStaticObject(r *gbxio.Reader) (Model, error) {
	if err := r.ChunkID(staticObjectClassID); err != nil {
		return Model{}, err
	}
	if _, err := r.U32(); err != nil {
		return Model{}, err
	}
	model, err := gbxio.Node(r, 0x09159000, func(r *gbxio.Reader) (Model, error) {
		if _, err := r.U32(); err != nil {
			return Model{}, err
		}
		model, err := gbxio.Node(r, 0x090BB000, readVisualModel)
		if err != nil {
			return Model{}, err
		}
		if _, err := r.U8(); err != nil {
			return Model{}, err
		}
		if err := skipU32s(r, 34); err != nil {
			return Model{}, err
		}
		return model, r.NodeEnd()
	})
	if err != nil {
		return Model{}, err
	}
	if _, err := r.U32(); err != nil {
		return Model{}, err
	}
	return model, nil
}

// readVisualModel decodes a solid model node body (class 0x090BB000): the
// geometry levels with their vertex streams, then the material set.
func readVisualModel(r *gbxio.Reader) (Model, error) {
	var model Model
	if err := r.ChunkID(0x090BB000); err != nil {
		return model, err
	}
	version, err := r.U32()
	if err != nil {
		return model, err
	}
	if _, err := r.U32(); err != nil {
		return model, err
	}
	if err := skipU32List(r, 4); err != nil {
		return model, err
	}
	if _, err := r.U32(); err != nil {
		return model, err
	}
	if err := r.List(readGeometryRef); err != nil {
		return model, err
	}
	if _, err := r.U32(); err != nil {
		return model, err
	}
	numMaterials, err := r.U32()
	if err != nil {
		return model, err
	}
	if err := skipU32s(r, 23); err != nil {
		return model, err
	}
	if _, err := r.String(); err != nil { // material folder
		return model, err
	}
	if err := skipU32s(r, 7); err != nil {
		return model, err
	}
	if _, err := r.String(); err != nil { // item xml pattern
		return model, err
	}
	if version >= 30 {
		if _, err := r.U32(); err != nil {
			return model, err
		}
	}
	for i := uint32(0); i < numMaterials; i++ {
		if _, err := r.U32(); err != nil {
			return model, err
		}
		material, err := gbxio.Node(r, materialClassID, readMaterial)
		if err != nil {
			return model, err
		}
		model.Materials = append(model.Materials, material)
	}
	if err := skipU32s(r, 9); err != nil {
		return model, err
	}
	if err := r.SkipChunk(0x090BB002); err != nil {
		return model, err
	}
	return model, r.NodeEnd()
}

func readGeometryRef(r *gbxio.Reader) error {
	return r.NodeRef(0x0901E000, func(r *gbxio.Reader) error {
		if err := r.ChunkID(0x09006001); err != nil {
			return err
		}
		if _, err := r.U32(); err != nil {
			return err
		}
		if err := r.ChunkID(0x09006005); err != nil {
			return err
		}
		if _, err := r.U32(); err != nil {
			return err
		}
		if err := r.ChunkID(0x09006009); err != nil {
			return err
		}
		if _, err := r.U32(); err != nil {
			return err
		}
		if err := r.ChunkID(0x0900600B); err != nil {
			return err
		}
		if _, err := r.U32(); err != nil {
			return err
		}
		if err := r.ChunkID(0x0900600F); err != nil {
			return err
		}
		if err := skipU32s(r, 5); err != nil {
			return err
		}
		if err := r.NodeRef(0x09056000, readVertexStream); err != nil {
			return err
		}
		if err := skipU32s(r, 10); err != nil {
			return err
		}
		if err := r.ChunkID(0x09006010); err != nil {
			return err
		}
		if err := skipU32s(r, 2); err != nil {
			return err
		}
		if err := r.ChunkID(0x0902C002); err != nil {
			return err
		}
		if _, err := r.U32(); err != nil {
			return err
		}
		if err := r.ChunkID(0x0902C004); err != nil {
			return err
		}
		if err := skipU32s(r, 2); err != nil {
			return err
		}
		if err := r.ChunkID(0x0906A001); err != nil {
			return err
		}
		if _, err := r.U32(); err != nil {
			return err
		}
		if err := readIndexBuffer(r); err != nil {
			return err
		}
		return r.NodeEnd()
	})
}

// readIndexBuffer consumes a delta-coded triangle index list.
func readIndexBuffer(r *gbxio.Reader) error {
	if err := r.ChunkID(0x09057001); err != nil {
		return err
	}
	if _, err := r.U32(); err != nil {
		return err
	}
	if err := r.List(func(r *gbxio.Reader) error {
		_, err := r.I16() // offset from the previous index
		return err
	}); err != nil {
		return err
	}
	return r.NodeEnd()
}

// readVertexStream consumes a vertex stream: a declaration list followed by
// one array per attribute, its element layout selected by the attribute
// kind.
func readVertexStream(r *gbxio.Reader) error {
	if err := r.ChunkID(0x09056000); err != nil {
		return err
	}
	if _, err := r.U32(); err != nil {
		return err
	}
	numVertices, err := r.U32()
	if err != nil {
		return err
	}
	if err := skipU32s(r, 2); err != nil {
		return err
	}
	kinds, err := gbxio.ReadList(r, func(r *gbxio.Reader) (uint8, error) {
		var kind uint8
		for i := 0; i < 12; i++ {
			v, err := r.U8()
			if err != nil {
				return 0, err
			}
			if i == 8 {
				kind = v
			}
		}
		return kind, nil
	})
	if err != nil {
		return err
	}
	for _, kind := range kinds {
		var words int
		switch kind {
		case 1, 11: // 2D float
			words = 2
		case 5: // 3D float
			words = 3
		case 10, 18, 20: // packed color, single float
			words = 1
		default:
			return errors.E(errors.Payload, fmt.Sprintf("unknown vertex attribute kind %d", kind))
		}
		if err := skipU32s(r, int(numVertices)*words); err != nil {
			return err
		}
	}
	return r.NodeEnd()
}
