// Copyright 2023 the gbx authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package gbx

import (
	"io"
	"os"

	"github.com/jussyDr/gbx/errors"
	"github.com/jussyDr/gbx/gbxio"
)

const ghostClassID = 0x03092000

// Ghost corresponds to the file extension Ghost.Gbx. Ghosts are decoded for
// structure only; their replay payload is an opaque compressed entity
// record.
type Ghost struct{}

// ReadGhost decodes a Ghost from r.
func ReadGhost(r io.Reader) (*Ghost, error) {
	return ReadGhostOpts(r, ReadOpts{})
}

// ReadGhostOpts decodes a Ghost from r with the given options.
func ReadGhostOpts(r io.Reader, opts ReadOpts) (*Ghost, error) {
	var g Ghost
	err := ReadNode(r, ghostClassID, opts, nil, func(br *gbxio.Reader) error {
		ghost, err := readGhostBody(br)
		if err != nil {
			return err
		}
		g = ghost
		return nil
	})
	if err != nil {
		return nil, &ReadError{Err: err}
	}
	return &g, nil
}

// ReadGhostFile decodes a Ghost from the file at path.
func ReadGhostFile(path string) (*Ghost, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ReadError{Err: errors.E(errors.IO, err)}
	}
	defer f.Close()
	return ReadGhost(f)
}

func readGhostBody(r *gbxio.Reader) (Ghost, error) {
	var ghost Ghost
	err := gbxio.ReadBody(r, []gbxio.BodyChunk{
		{ID: 0x0303F006, Read: readGhostChunk0303F006},
		{ID: 0x0303F007, Skip: true},
		{ID: 0x03092000, Read: readGhostChunk03092000, Skippable: true},
		{ID: 0x03092005, Skip: true},
		{ID: 0x03092008, Skip: true},
		{ID: 0x0309200A, Skip: true},
		{ID: 0x0309200B, Skip: true},
		{ID: 0x0309200C, Read: readU32Chunk},
		{ID: 0x0309200E, Read: readU32Chunk},
		{ID: 0x0309200F, Read: readStringChunk},
		{ID: 0x03092010, Read: readIDChunk},
		{ID: 0x03092013, Skip: true},
		{ID: 0x03092014, Skip: true},
		{ID: 0x0309201A, Skip: true},
		{ID: 0x0309201B, Skip: true},
		{ID: 0x0309201C, Read: readGhostChunk0309201C},
		{ID: 0x0309201D, Skip: true},
		{ID: 0x03092022, Skip: true},
		{ID: 0x03092023, Skip: true},
		{ID: 0x03092024, Skip: true},
		{ID: 0x03092025, Skip: true},
		{ID: 0x03092026, Skip: true},
		{ID: 0x03092027, Skip: true},
		{ID: 0x03092028, Skip: true},
		{ID: 0x03092029, Skip: true},
		{ID: 0x0309202A, Skip: true},
		{ID: 0x0309202B, Skip: true},
		{ID: 0x0309202C, Skip: true},
		{ID: 0x0309202D, Skip: true},
	})
	return ghost, err
}

func readU32Chunk(r *gbxio.Reader) error {
	_, err := r.U32()
	return err
}

func readStringChunk(r *gbxio.Reader) error {
	_, err := r.String()
	return err
}

func readIDChunk(r *gbxio.Reader) error {
	_, err := r.ID()
	return err
}

func readGhostChunk0303F006(r *gbxio.Reader) error {
	if _, err := r.U32(); err != nil {
		return err
	}
	if _, err := r.U32(); err != nil {
		return err
	}
	if _, err := r.U16(); err != nil {
		return err
	}
	for i := 0; i < 3; i++ {
		if _, err := r.U32(); err != nil {
			return err
		}
	}
	_, err := r.U16()
	return err
}

func readGhostChunk03092000(r *gbxio.Reader) error {
	version, err := r.U32()
	if err != nil {
		return err
	}
	if _, err := r.ID(); err != nil { // player model id
		return err
	}
	if _, err := r.U32(); err != nil {
		return err
	}
	if _, err := r.ID(); err != nil {
		return err
	}
	for i := 0; i < 3; i++ {
		if _, err := r.U32(); err != nil {
			return err
		}
	}
	if err := r.List(func(r *gbxio.Reader) error {
		_, err := r.OptionalFileRef()
		return err
	}); err != nil {
		return err
	}
	if _, err := r.U32(); err != nil {
		return err
	}
	if _, err := r.String(); err != nil { // ghost nickname
		return err
	}
	for i := 0; i < 3; i++ {
		if _, err := r.U32(); err != nil {
			return err
		}
	}
	if err := r.NodeRef(0x0911F000, readEntityRecord); err != nil {
		return err
	}
	if err := r.List(func(r *gbxio.Reader) error {
		_, err := r.U32()
		return err
	}); err != nil {
		return err
	}
	if _, err := r.U32(); err != nil {
		return err
	}
	if _, err := r.U16(); err != nil {
		return err
	}
	if _, err := r.U8(); err != nil {
		return err
	}
	if _, err := r.String(); err != nil {
		return err
	}
	if version >= 8 {
		if _, err := r.String(); err != nil {
			return err
		}
	}
	return nil
}

// readEntityRecord consumes an entity record: its replay payload stays
// compressed and is skipped over.
func readEntityRecord(r *gbxio.Reader) error {
	if err := r.ChunkID(0x0911F000); err != nil {
		return err
	}
	if _, err := r.U32(); err != nil {
		return err
	}
	if _, err := r.U32(); err != nil { // uncompressed size
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

func readGhostChunk0309201C(r *gbxio.Reader) error {
	for i := 0; i < 8; i++ {
		if _, err := r.U32(); err != nil {
			return err
		}
	}
	return nil
}
