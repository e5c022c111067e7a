// Copyright 2023 the gbx authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package gbx

import "github.com/jussyDr/gbx/gbxio"

// ID is an interned string; see gbxio.ID.
type ID = gbxio.ID

// Vec3U8 is a vector of three bytes.
type Vec3U8 = gbxio.Vec3[uint8]

// Vec3U32 is a vector of three 32-bit unsigned integers.
type Vec3U32 = gbxio.Vec3[uint32]

// Vec3F32 is a vector of three 32-bit floats.
type Vec3F32 = gbxio.Vec3[float32]

// Rgb is a color with components in [0, 1]; see gbxio.Rgb.
type Rgb = gbxio.Rgb

// FileRef is a reference to a file; see gbxio.FileRef.
type FileRef = gbxio.FileRef

// InternalFileRef references a file shipped with the game.
type InternalFileRef = gbxio.InternalFileRef

// ExternalFileRef references a file by content hash and locator URL.
type ExternalFileRef = gbxio.ExternalFileRef
