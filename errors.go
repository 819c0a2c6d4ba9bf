// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dap2

import (
	"errors"
	"fmt"
)

// Sentinel errors that carry no extra context beyond their message. These
// mirror the flat Err* block that the DAP2 core's binary and text parsers
// fall back on when a fixed string is enough to describe the failure.
var (
	// ErrOutsideBoundary describes a read beyond the end of the supplied
	// buffer. The byte reader does not return it: a short buffer is reported
	// as ErrTruncatedInput.
	ErrOutsideBoundary = errors.New("dap2: read outside buffer boundary")

	// ErrTruncatedInput is returned when fewer bytes remain than a fixed-width
	// read requires.
	ErrTruncatedInput = errors.New("dap2: truncated input")

	// ErrInvalidEncoding is returned when a padded string's payload is not
	// valid UTF-8.
	ErrInvalidEncoding = errors.New("dap2: invalid UTF-8 encoding")

	// ErrMissingDataMarker is returned when a DODS byte stream has no
	// "\nData:\n" sentinel separating the DDS prologue from the binary
	// payload.
	ErrMissingDataMarker = errors.New("dap2: missing \"Data:\" marker in DODS stream")

	// ErrInvalidSequenceMarker is returned when a Sequence row marker byte is
	// neither 0x5A (row follows) nor 0xA5 (end of sequence).
	ErrInvalidSequenceMarker = errors.New("dap2: invalid sequence row marker")

	// ErrTrailingGarbage is returned in strict mode when bytes remain after
	// the declared payload has been fully decoded.
	ErrTrailingGarbage = errors.New("dap2: trailing garbage after payload")

	// ErrZeroDimension is returned when a DDS declares a dimension of size 0.
	ErrZeroDimension = errors.New("dap2: dimension size must be positive")

	// ErrInvalidStride is returned when a constraint stride is not positive.
	ErrInvalidStride = errors.New("dap2: stride must be positive")

	// ErrDimensionOverflow is returned when a constraint adds more hyperslabs
	// to a variable than it has dimensions.
	ErrDimensionOverflow = errors.New("dap2: more hyperslabs than dimensions")

	// ErrDuplicateProjection is returned when a constraint builder receives
	// two selectors for the same variable.
	ErrDuplicateProjection = errors.New("dap2: duplicate projection for variable")

	// ErrInvalidBaseURL is returned when a URL builder's base URL is not an
	// absolute http/https URL.
	ErrInvalidBaseURL = errors.New("dap2: invalid base URL")

	// ErrNotFound is returned when a schema lookup misses.
	ErrNotFound = errors.New("dap2: not found")

	// ErrTypeMismatch is returned when a decoded scalar is projected to a
	// kind other than its own.
	ErrTypeMismatch = errors.New("dap2: type mismatch")
)

// SyntaxError reports an unexpected token while parsing DAS or DDS text.
// It carries enough position context to point a caller at the offending
// line and column.
type SyntaxError struct {
	Line     int
	Column   int
	Expected string
	Found    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("dap2: syntax error at %d:%d: expected %s, found %q",
		e.Line, e.Column, e.Expected, e.Found)
}

// TypeMismatchError reports a value literal that cannot be parsed as its
// declared attribute kind.
type TypeMismatchError struct {
	Kind  Kind
	Value string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("dap2: value %q cannot be parsed as %s", e.Value, e.Kind)
}

func (e *TypeMismatchError) Unwrap() error { return ErrTypeMismatch }

// DuplicateAttributeError reports a key appearing twice within one DAS
// block when strict mode is in effect.
type DuplicateAttributeError struct {
	Block string
	Name  string
}

func (e *DuplicateAttributeError) Error() string {
	return fmt.Sprintf("dap2: duplicate attribute %q in block %q", e.Name, e.Block)
}

// DuplicateNameError reports a declaration name repeated within one DDS
// scope.
type DuplicateNameError struct {
	Scope string
	Name  string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("dap2: duplicate declaration name %q in scope %q", e.Name, e.Scope)
}

// GridMismatchError reports a Grid whose MAPS do not pointwise match its
// ARRAY's dimensions.
type GridMismatchError struct {
	Grid          string
	DimensionIdx  int
	WantName      string
	WantSize      int
	GotName       string
	GotSize       int
	MapCountDelta int
}

func (e *GridMismatchError) Error() string {
	if e.MapCountDelta != 0 {
		return fmt.Sprintf("dap2: grid %q has %d maps, array has %d dimensions",
			e.Grid, e.DimensionIdx+e.MapCountDelta, e.DimensionIdx)
	}
	return fmt.Sprintf("dap2: grid %q map %d mismatch: want (%s,%d), got (%s,%d)",
		e.Grid, e.DimensionIdx, e.WantName, e.WantSize, e.GotName, e.GotSize)
}

// LengthMismatchError reports the two leading length counts of a DODS array
// payload disagreeing.
type LengthMismatchError struct {
	Variable string
	First    uint32
	Second   uint32
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("dap2: variable %q length mismatch: %d != %d",
		e.Variable, e.First, e.Second)
}

// SizeMismatchError reports a decoded array's element count disagreeing
// with the product of its schema dimensions.
type SizeMismatchError struct {
	Variable string
	Got      uint32
	Want     uint32
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("dap2: variable %q size mismatch: got %d elements, schema wants %d",
		e.Variable, e.Got, e.Want)
}
