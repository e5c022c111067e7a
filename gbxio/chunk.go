// Copyright 2023 the gbx authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package gbxio

import (
	"fmt"

	"github.com/jussyDr/gbx/errors"
	"github.com/jussyDr/gbx/log"
)

// A BodyChunk is one entry of a class's ordered body-chunk registry.
// Exactly one of the three behaviours applies:
//
//   - Read set, Skippable false: mandatory chunk, Read parses the raw
//     payload.
//   - Read set, Skippable true: skippable chunk that is parsed; the framing
//     size is consumed but not enforced.
//   - Skip set: skippable chunk whose payload is skipped over.
type BodyChunk struct {
	// ID is the 32-bit chunk ID.
	ID uint32
	// Read parses the chunk payload.
	Read func(*Reader) error
	// Skippable marks a parsed chunk as carrying the skippable framing.
	Skippable bool
	// Skip marks a chunk to be skipped over via its framing.
	Skip bool
}

// ReadBody dispatches the body chunks of one node against its ordered
// registry until the end-of-node sentinel. Chunks must appear in registry
// order; the registry cursor only ever advances. A chunk ID with no registry
// entry at or after the cursor is an error.
func ReadBody(r *Reader, chunks []BodyChunk) error {
	i := 0
	for {
		chunkID, err := r.U32()
		if err != nil {
			return err
		}
		if chunkID == EndOfNode {
			return nil
		}
		for {
			if i >= len(chunks) {
				return errors.E(errors.Structure, fmt.Sprintf("unknown chunk %08X", chunkID))
			}
			if chunks[i].ID != chunkID {
				i++
				continue
			}
			if err := readBodyChunk(r, chunks[i]); err != nil {
				return err
			}
			break
		}
	}
}

func readBodyChunk(r *Reader, chunk BodyChunk) error {
	switch {
	case chunk.Skip:
		size, err := r.skippableSize(chunk.ID)
		if err != nil {
			return err
		}
		if log.At(log.Debug) {
			log.Debug.Printf("gbxio: skipping chunk %08X (%d bytes)", chunk.ID, size)
		}
		return r.Skip(int64(size))
	case chunk.Skippable:
		// The declared size is a consistency hint, not enforced.
		if _, err := r.skippableSize(chunk.ID); err != nil {
			return err
		}
		return chunk.Read(r)
	}
	return chunk.Read(r)
}

// IDFingerprint reports whether a peeked word carries the bit pattern of an
// identifier tag (a fresh string or an interned reference). Arrays that are
// not length-prefixed terminate on the first word that fails this test.
func IDFingerprint(v uint32) bool {
	return v&0x4FFFF000 == 0x40000000
}
