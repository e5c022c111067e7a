// Copyright 2023 the gbx authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package gbxio implements the serialization engine underneath the GBX
// container format: little-endian primitive readers and writers, the
// per-session identifier interning table, the node-reference table, and the
// body-chunk dispatcher with its skippable-chunk framing.
//
// A Reader or Writer owns its interning and node state for its lifetime;
// there is no state shared across decode sessions. Sub-streams embedded
// within a chunk attach fresh state to a fresh Reader over the sub-stream
// bytes.
package gbxio
