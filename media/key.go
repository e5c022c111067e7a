// Copyright 2023 the gbx authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package media

import "github.com/jussyDr/gbx/gbxio"

// A TimeKey is a key of a time media block.
type TimeKey struct {
	// Time is the time of the key in seconds. [0.0, ∞)
	Time      float32
	TimeValue float32
	Tangent   float32
}

// A CameraShakeKey is a key of a camera shake effect media block.
type CameraShakeKey struct {
	Intensity float32
	Speed     float32
}

// A MusicVolumeKey is a key of a music volume media block.
type MusicVolumeKey struct {
	MusicVolume float32
	SoundVolume float32
}

// A SoundKey is a key of a sound media block.
type SoundKey struct {
	Volume   float32
	Position gbxio.Vec3[float32]
}

// A TransitionFadeKey is a key of a transition fade media block.
type TransitionFadeKey struct {
	// Time is the time of the key in seconds. [0.0, ∞)
	Time    float32
	Opacity float32
}

// A BloomKey is a key of a bloom media block.
type BloomKey struct {
	Intensity          float32
	StreaksIntensity   float32
	StreaksAttenuation float32
}
