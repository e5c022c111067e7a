// Copyright 2023 the gbx authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package gbx reads and writes GameBox (.Gbx) files of the TrackMania
// (2020) family of games.
//
// GBX files are serialized instances (nodes) of game classes. This package
// materializes the Map class (read and write), the Ghost class (read), and —
// through the model subpackage — the Block and Item model classes (read).
// The serialization engine itself lives in the gbxio subpackage.
//
// For more info on the GBX format check out
// https://wiki.xaseco.org/wiki/GBX.
package gbx
