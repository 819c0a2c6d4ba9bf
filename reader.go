// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dap2

import (
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf8"
)

// byteReader is a pure, bounds-checked cursor over a byte slice decoding
// the DAP2 wire primitives: fixed-width big-endian numbers and
// length-prefixed, zero-padded strings. It never mutates its input and
// never allocates beyond what a read's result requires.
type byteReader struct {
	data []byte
	pos  int
}

func newByteReader(data []byte) *byteReader {
	return &byteReader{data: data}
}

// remaining reports how many unread bytes are left.
func (r *byteReader) remaining() int { return len(r.data) - r.pos }

// need returns ErrTruncatedInput if fewer than n bytes remain.
func (r *byteReader) need(n int) error {
	if r.remaining() < n {
		return fmt.Errorf("%w: need %d bytes, have %d", ErrTruncatedInput, n, r.remaining())
	}
	return nil
}

// ReadU8 reads one unsigned byte.
func (r *byteReader) ReadU8() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.data[r.pos]
	r.pos++
	return v, nil
}

// ReadI16 reads a big-endian two's-complement 16-bit integer.
func (r *byteReader) ReadI16() (int16, error) {
	v, err := r.ReadU16()
	return int16(v), err
}

// ReadU16 reads a big-endian unsigned 16-bit integer.
func (r *byteReader) ReadU16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v, nil
}

// ReadI32 reads a big-endian two's-complement 32-bit integer.
func (r *byteReader) ReadI32() (int32, error) {
	v, err := r.ReadU32()
	return int32(v), err
}

// ReadU32 reads a big-endian unsigned 32-bit integer.
func (r *byteReader) ReadU32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v, nil
}

// ReadF32 reads a big-endian IEEE-754 single-precision float.
func (r *byteReader) ReadF32() (float32, error) {
	v, err := r.ReadU32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// ReadF64 reads a big-endian IEEE-754 double-precision float.
func (r *byteReader) ReadF64() (float64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint64(r.data[r.pos:])
	r.pos += 8
	return math.Float64frombits(v), nil
}

// padLen returns (4 - (n mod 4)) mod 4, the DAP2 zero-padding rule applied
// to both strings and Byte arrays.
func padLen(n int) int {
	return (4 - (n % 4)) % 4
}

// ReadPaddedString reads a big-endian u32 length L, then L bytes of UTF-8
// payload, then the zero-to-three pad bytes that round the total consumed
// up to a multiple of four.
func (r *byteReader) ReadPaddedString() (string, error) {
	length, err := r.ReadU32()
	if err != nil {
		return "", err
	}
	if err := r.need(int(length)); err != nil {
		return "", err
	}
	payload := r.data[r.pos : r.pos+int(length)]
	r.pos += int(length)
	if !utf8.Valid(payload) {
		return "", fmt.Errorf("%w: string payload is not valid UTF-8", ErrInvalidEncoding)
	}
	pad := padLen(int(length))
	if err := r.need(pad); err != nil {
		return "", err
	}
	r.pos += pad
	return string(payload), nil
}

// SkipPad consumes the zero-to-three padding bytes that restore 4-byte
// alignment after n raw (non length-prefixed) bytes, used by Byte arrays.
func (r *byteReader) SkipPad(n int) error {
	pad := padLen(n)
	if err := r.need(pad); err != nil {
		return err
	}
	r.pos += pad
	return nil
}
