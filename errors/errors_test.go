// Copyright 2023 the gbx authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package errors_test

import (
	stderrors "errors"
	"io"
	"testing"

	"github.com/jussyDr/gbx/errors"
)

func TestE(t *testing.T) {
	err := errors.E(errors.Format, "bad magic")
	if got, want := err.Error(), "bad magic: invalid file format"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if !errors.Is(errors.Format, err) {
		t.Error("expected format kind")
	}
	if errors.Is(errors.IO, err) {
		t.Error("unexpected io kind")
	}
}

func TestChaining(t *testing.T) {
	inner := errors.E(errors.IO, io.ErrUnexpectedEOF)
	outer := errors.E("decoding body", inner)
	// The outer error inherits the inner kind.
	if !errors.Is(errors.IO, outer) {
		t.Error("expected io kind through chain")
	}
	if !stderrors.Is(outer, io.ErrUnexpectedEOF) {
		t.Error("expected unwrap to reach the io error")
	}
}

func TestMatch(t *testing.T) {
	err := errors.E(errors.Structure, "unknown chunk 0304FFFF")
	if !errors.Match(errors.E(errors.Structure), err) {
		t.Error("expected kind-only match")
	}
	if errors.Match(errors.E(errors.Payload), err) {
		t.Error("unexpected kind match")
	}
	if !errors.Match(errors.E("unknown chunk 0304FFFF"), err) {
		t.Error("expected message match")
	}
}

func TestRecover(t *testing.T) {
	if errors.Recover(nil) != nil {
		t.Error("expected nil")
	}
	e := errors.Recover(io.EOF)
	if e == nil || e.Err != io.EOF {
		t.Errorf("unexpected recover result: %v", e)
	}
}
