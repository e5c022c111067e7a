// Copyright 2023 the gbx authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package gbx

import (
	"bytes"
	"sort"

	"github.com/klauspost/compress/zip"

	"github.com/jussyDr/gbx/errors"
)

// Open returns a ZIP reader over the embedded archive. The archive holds
// exactly one file per entry of FileIDs.
func (e *EmbeddedFiles) Open() (*zip.Reader, error) {
	zr, err := zip.NewReader(bytes.NewReader(e.Archive), int64(len(e.Archive)))
	if err != nil {
		return nil, errors.E(errors.Payload, "embedded archive", err)
	}
	if len(zr.File) != len(e.FileIDs) {
		return nil, errors.E(errors.Payload, "embedded archive entry count does not match file ids")
	}
	return zr, nil
}

// EmbedFiles builds an EmbeddedFiles value from a set of files, keyed by
// their archive path. The file ID of each entry is its path; entries are
// archived in path order.
func EmbedFiles(files map[string][]byte) (*EmbeddedFiles, error) {
	paths := make([]string, 0, len(files))
	for path := range files {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	fileIDs := make([]ID, 0, len(paths))
	for _, path := range paths {
		f, err := zw.Create(path)
		if err != nil {
			return nil, errors.E(errors.IO, "embedding "+path, err)
		}
		if _, err := f.Write(files[path]); err != nil {
			return nil, errors.E(errors.IO, "embedding "+path, err)
		}
		fileIDs = append(fileIDs, ID(path))
	}
	if err := zw.Close(); err != nil {
		return nil, errors.E(errors.IO, err)
	}
	return &EmbeddedFiles{FileIDs: fileIDs, Archive: buf.Bytes()}, nil
}
