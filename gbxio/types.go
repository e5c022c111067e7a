// Copyright 2023 the gbx authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package gbxio

// An ID is an interned string. IDs read within one decode session share
// backing storage through the session's IDState; two IDs are equal iff their
// string contents are equal. The zero value is the empty ID.
type ID string

// Scalar constrains the component type of a Vec3.
type Scalar interface {
	~uint8 | ~uint32 | ~float32
}

// A Vec3 is a 3-dimensional vector.
type Vec3[T Scalar] struct {
	X, Y, Z T
}

// Rgb is a color with components in [0, 1].
type Rgb struct {
	R, G, B float32
}

// A FileRef is a reference to a skin, mod, music or image file. A nil
// FileRef denotes the wire-level null reference. The two concrete variants
// are InternalFileRef and ExternalFileRef.
type FileRef interface {
	fileRef()
}

// An InternalFileRef references a file shipped with the game.
type InternalFileRef struct {
	// Internal path to the file.
	Path string
}

// An ExternalFileRef references a file by content hash and locator URL.
type ExternalFileRef struct {
	// Hash of the file.
	Hash [32]byte
	// Internal path to the file.
	Path string
	// External URL from where the file can be downloaded.
	LocatorURL string
}

func (InternalFileRef) fileRef() {}
func (ExternalFileRef) fileRef() {}
