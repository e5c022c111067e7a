// Copyright 2023 the gbx authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package model implements the Block and Item model classes, corresponding
// to the file extensions Block.Gbx and Item.Gbx: crystal meshes, materials,
// and the shared item-model chunk registries.
package model

import (
	"fmt"

	"github.com/jussyDr/gbx/errors"
	"github.com/jussyDr/gbx/gbxio"
)

// Material is a material of a model.
type Material struct{}

// Model is a mesh model with its materials.
type Model struct {
	// Materials are the materials used in the model.
	Materials []Material
}

const materialClassID = 0x090FD000

func readMaterial(r *gbxio.Reader) (Material, error) {
	var material Material
	err := gbxio.ReadBody(r, []gbxio.BodyChunk{
		{ID: 0x090FD000, Read: readMaterialChunk090FD000},
		{ID: 0x090FD001, Read: func(r *gbxio.Reader) error { return skipU32s(r, 7) }},
		{ID: 0x090FD002, Read: func(r *gbxio.Reader) error { return skipU32s(r, 2) }},
	})
	return material, err
}

func readMaterialChunk090FD000(r *gbxio.Reader) error {
	version, err := r.U32()
	if err != nil {
		return err
	}
	isGameMaterial := false
	if version >= 11 {
		if isGameMaterial, err = r.Bool8(); err != nil {
			return err
		}
	}
	if _, err := r.OptionalID(); err != nil {
		return err
	}
	if err := skipU32s(r, 2); err != nil {
		return err
	}
	if _, err := r.U8(); err != nil {
		return err
	}
	if _, err := r.U8(); err != nil {
		return err
	}
	if version >= 11 && !isGameMaterial {
		if _, err := r.ID(); err != nil {
			return err
		}
	} else if _, err := r.String(); err != nil {
		return err
	}
	if err := r.List(func(r *gbxio.Reader) error {
		if _, err := r.ID(); err != nil {
			return err
		}
		if _, err := r.ID(); err != nil {
			return err
		}
		_, err := r.U32()
		return err
	}); err != nil {
		return err
	}
	if err := skipU32List(r, 1); err != nil {
		return err
	}
	return skipU32s(r, 4)
}

// readCrystal decodes a crystal node body (class 0x09003000) into its model.
func readCrystal(r *gbxio.Reader) (Model, error) {
	var model Model
	err := gbxio.ReadBody(r, []gbxio.BodyChunk{
		{ID: 0x09051000, Read: func(r *gbxio.Reader) error { return skipU32s(r, 1) }},
		{ID: 0x09003003, Read: func(r *gbxio.Reader) error {
			if _, err := r.U32(); err != nil {
				return err
			}
			materials, err := gbxio.ReadList(r, func(r *gbxio.Reader) (Material, error) {
				if _, err := r.U32(); err != nil {
					return Material{}, err
				}
				return gbxio.Node(r, materialClassID, readMaterial)
			})
			model.Materials = materials
			return err
		}},
		{ID: 0x09003004, Skip: true},
		{ID: 0x09003005, Read: func(r *gbxio.Reader) error {
			return readCrystalLayers(r, uint32(len(model.Materials)))
		}},
		{ID: 0x09003006, Read: readCrystalChunk09003006},
		{ID: 0x09003007, Read: readCrystalChunk09003007},
	})
	return model, err
}

func readCrystalLayers(r *gbxio.Reader, numMaterials uint32) error {
	if _, err := r.U32(); err != nil {
		return err
	}
	return r.List(func(r *gbxio.Reader) error {
		layerType, err := r.U32()
		if err != nil {
			return err
		}
		if err := skipU32s(r, 2); err != nil {
			return err
		}
		if _, err := r.ID(); err != nil {
			return err
		}
		if _, err := r.String(); err != nil { // layer name
			return err
		}
		if _, err := r.Bool(); err != nil { // is enabled
			return err
		}
		if _, err := r.U32(); err != nil {
			return err
		}
		switch layerType {
		case 0: // geometry
			if err := readMesh(r, numMaterials); err != nil {
				return err
			}
			if err := skipU32List(r, 1); err != nil {
				return err
			}
			return skipU32s(r, 2)
		case 14: // trigger
			if err := readMesh(r, numMaterials); err != nil {
				return err
			}
			return skipU32List(r, 1)
		case 15: // cubes
			if err := skipU32s(r, 2); err != nil {
				return err
			}
			if _, err := r.Vec3F32(); err != nil {
				return err
			}
			for i := 0; i < 3; i++ {
				if _, err := r.F32(); err != nil {
					return err
				}
			}
			return nil
		case 18: // deformation
			if err := skipU32s(r, 3); err != nil {
				return err
			}
			if err := r.NodeRef(0x090F9000, func(r *gbxio.Reader) error {
				if err := r.ChunkID(0x090F9000); err != nil {
					return err
				}
				if err := skipU32s(r, 2); err != nil {
					return err
				}
				for i := 0; i < 11; i++ {
					if _, err := r.F32(); err != nil {
						return err
					}
				}
				if _, err := r.U32(); err != nil {
					return err
				}
				return r.NodeEnd()
			}); err != nil {
				return err
			}
			return skipU32s(r, 14)
		}
		return errors.E(errors.Payload, fmt.Sprintf("unknown crystal layer type %d", layerType))
	})
}

func readCrystalChunk09003006(r *gbxio.Reader) error {
	version, err := r.U32()
	if err != nil {
		return err
	}
	if version == 0 {
		return r.List(func(r *gbxio.Reader) error {
			if _, err := r.F32(); err != nil {
				return err
			}
			_, err := r.F32()
			return err
		})
	}
	if err := r.List(func(r *gbxio.Reader) error {
		if _, err := r.I16(); err != nil {
			return err
		}
		_, err := r.I16()
		return err
	}); err != nil {
		return err
	}
	if version >= 2 {
		num, err := r.U32()
		if err != nil {
			return err
		}
		for i := uint32(0); i < num; i++ {
			if _, err := r.PackedIndex(num); err != nil {
				return err
			}
		}
	}
	return nil
}

func readCrystalChunk09003007(r *gbxio.Reader) error {
	if _, err := r.U32(); err != nil {
		return err
	}
	if err := r.List(func(r *gbxio.Reader) error {
		_, err := r.F32()
		return err
	}); err != nil {
		return err
	}
	return skipU32List(r, 1)
}

// readMesh consumes a crystal mesh. Face vertex, material and group indices
// are packed into the smallest width sufficient for their bounds.
func readMesh(r *gbxio.Reader, numMaterials uint32) error {
	version, err := r.U32()
	if err != nil {
		return err
	}
	if err := skipU32s(r, 3); err != nil {
		return err
	}
	for i := 0; i < 3; i++ {
		if _, err := r.F32(); err != nil {
			return err
		}
		if _, err := r.U32(); err != nil {
			return err
		}
	}
	numGroups, err := r.U32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < numGroups; i++ {
		if _, err := r.U32(); err != nil {
			return err
		}
		if version >= 36 {
			if _, err := r.U8(); err != nil {
				return err
			}
		} else if _, err := r.U32(); err != nil {
			return err
		}
		if _, err := r.U32(); err != nil {
			return err
		}
		if _, err := r.String(); err != nil { // group name
			return err
		}
		if _, err := r.U32(); err != nil {
			return err
		}
		if err := skipU32List(r, 1); err != nil {
			return err
		}
	}
	if version >= 34 {
		if _, err := r.U8(); err != nil {
			return err
		}
	} else if _, err := r.U32(); err != nil {
		return err
	}
	if version >= 33 {
		if err := skipU32s(r, 2); err != nil {
			return err
		}
	}
	numPositions, err := r.U32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < numPositions; i++ {
		if _, err := r.Vec3F32(); err != nil {
			return err
		}
	}
	numEdges, err := r.U32()
	if err != nil {
		return err
	}
	if version >= 35 {
		if _, err := r.U32(); err != nil {
			return err
		}
	} else if err := skipU32s(r, int(numEdges)*2); err != nil {
		return err
	}
	numFaces, err := r.U32()
	if err != nil {
		return err
	}
	if version >= 37 {
		if err := r.List(func(r *gbxio.Reader) error {
			if _, err := r.F32(); err != nil {
				return err
			}
			_, err := r.F32()
			return err
		}); err != nil {
			return err
		}
		numFaceIndices, err := r.U32()
		if err != nil {
			return err
		}
		for i := uint32(0); i < numFaceIndices; i++ {
			if _, err := r.PackedIndex(numFaceIndices); err != nil {
				return err
			}
		}
	}
	for i := uint32(0); i < numFaces; i++ {
		var numVertices uint32
		if version >= 35 {
			v, err := r.U8()
			if err != nil {
				return err
			}
			numVertices = uint32(v) + 3
		} else if numVertices, err = r.U32(); err != nil {
			return err
		}
		for j := uint32(0); j < numVertices; j++ {
			if version >= 34 {
				if _, err := r.PackedIndex(numPositions); err != nil {
					return err
				}
			} else if _, err := r.U32(); err != nil {
				return err
			}
		}
		if version < 37 {
			for j := uint32(0); j < numVertices; j++ {
				if _, err := r.F32(); err != nil {
					return err
				}
				if _, err := r.F32(); err != nil {
					return err
				}
			}
		}
		if version >= 33 {
			if _, err := r.PackedIndex(numMaterials); err != nil {
				return err
			}
			if _, err := r.PackedIndex(numGroups); err != nil {
				return err
			}
		} else if err := skipU32s(r, 2); err != nil {
			return err
		}
	}
	if _, err := r.U32(); err != nil {
		return err
	}
	if version < 36 {
		numFaces, err := r.U32()
		if err != nil {
			return err
		}
		numEdges, err := r.U32()
		if err != nil {
			return err
		}
		numVertices, err := r.U32()
		if err != nil {
			return err
		}
		if err := skipU32s(r, int(numFaces)+int(numEdges)+int(numVertices)); err != nil {
			return err
		}
		if _, err := r.U32(); err != nil {
			return err
		}
	}
	return nil
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
