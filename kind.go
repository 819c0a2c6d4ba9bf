// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dap2

import "fmt"

// Kind identifies one of the nine DAP2 primitive scalar types. The set is
// closed: no implementation may introduce a tenth kind.
type Kind uint8

// The nine DAP2 primitive kinds, in declaration order as they appear in the
// DDS grammar.
const (
	KindByte Kind = iota
	KindInt16
	KindUInt16
	KindInt32
	KindUInt32
	KindFloat32
	KindFloat64
	KindString
	KindURL
)

var kindNames = [...]string{
	KindByte:    "Byte",
	KindInt16:   "Int16",
	KindUInt16:  "UInt16",
	KindInt32:   "Int32",
	KindUInt32:  "UInt32",
	KindFloat32: "Float32",
	KindFloat64: "Float64",
	KindString:  "String",
	KindURL:     "URL",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// ParseKind maps a DDS/DAS keyword to its Kind, or reports ok=false if the
// keyword names none of the nine primitive kinds.
func ParseKind(keyword string) (k Kind, ok bool) {
	for i, name := range kindNames {
		if name == keyword {
			return Kind(i), true
		}
	}
	return 0, false
}

// FixedWidth returns the wire width in bytes for fixed-width kinds, and 0 for
// the variable-width String/URL kinds.
func (k Kind) FixedWidth() int {
	switch k {
	case KindByte:
		return 1
	case KindInt16, KindUInt16:
		return 2
	case KindInt32, KindUInt32, KindFloat32:
		return 4
	case KindFloat64:
		return 8
	default:
		return 0
	}
}

// IsVariableWidth reports whether values of this kind are transmitted as a
// length-prefixed, padded byte payload rather than a fixed-width field.
func (k Kind) IsVariableWidth() bool {
	return k == KindString || k == KindURL
}

// MarshalJSON renders a Kind as its textual DDS keyword, matching the
// JSON-shaped metadata objects the host bridge exposes.
func (k Kind) MarshalJSON() ([]byte, error) {
	return []byte(`"` + k.String() + `"`), nil
}

// Value is a tagged scalar carrying exactly one of the nine kinds' decoded
// payload. The zero Value is a Byte holding 0.
type Value struct {
	kind Kind
	u    uint64  // Byte, Int16, UInt16, Int32, UInt32 (bit pattern)
	f    float64 // Float32, Float64
	s    string  // String, URL
}

// NewByteValue, NewInt16Value, ... construct a Value of the named kind.

func NewByteValue(v uint8) Value     { return Value{kind: KindByte, u: uint64(v)} }
func NewInt16Value(v int16) Value    { return Value{kind: KindInt16, u: uint64(uint16(v))} }
func NewUInt16Value(v uint16) Value  { return Value{kind: KindUInt16, u: uint64(v)} }
func NewInt32Value(v int32) Value    { return Value{kind: KindInt32, u: uint64(uint32(v))} }
func NewUInt32Value(v uint32) Value  { return Value{kind: KindUInt32, u: uint64(v)} }
func NewFloat32Value(v float32) Value { return Value{kind: KindFloat32, f: float64(v)} }
func NewFloat64Value(v float64) Value { return Value{kind: KindFloat64, f: v} }
func NewStringValue(v string) Value  { return Value{kind: KindString, s: v} }
func NewURLValue(v string) Value     { return Value{kind: KindURL, s: v} }

// Kind reports the value's tag.
func (v Value) Kind() Kind { return v.kind }

// AsByte, AsInt16, ... try-convert the value to a concrete Go type, failing
// with ErrTypeMismatch unless the value's kind matches exactly.

func (v Value) AsByte() (uint8, error) {
	if v.kind != KindByte {
		return 0, fmt.Errorf("%w: value is %s, not Byte", ErrTypeMismatch, v.kind)
	}
	return uint8(v.u), nil
}

func (v Value) AsInt16() (int16, error) {
	if v.kind != KindInt16 {
		return 0, fmt.Errorf("%w: value is %s, not Int16", ErrTypeMismatch, v.kind)
	}
	return int16(uint16(v.u)), nil
}

func (v Value) AsUInt16() (uint16, error) {
	if v.kind != KindUInt16 {
		return 0, fmt.Errorf("%w: value is %s, not UInt16", ErrTypeMismatch, v.kind)
	}
	return uint16(v.u), nil
}

func (v Value) AsInt32() (int32, error) {
	if v.kind != KindInt32 {
		return 0, fmt.Errorf("%w: value is %s, not Int32", ErrTypeMismatch, v.kind)
	}
	return int32(uint32(v.u)), nil
}

func (v Value) AsUInt32() (uint32, error) {
	if v.kind != KindUInt32 {
		return 0, fmt.Errorf("%w: value is %s, not UInt32", ErrTypeMismatch, v.kind)
	}
	return uint32(v.u), nil
}

func (v Value) AsFloat32() (float32, error) {
	if v.kind != KindFloat32 {
		return 0, fmt.Errorf("%w: value is %s, not Float32", ErrTypeMismatch, v.kind)
	}
	return float32(v.f), nil
}

func (v Value) AsFloat64() (float64, error) {
	if v.kind != KindFloat64 {
		return 0, fmt.Errorf("%w: value is %s, not Float64", ErrTypeMismatch, v.kind)
	}
	return v.f, nil
}

func (v Value) AsString() (string, error) {
	if v.kind != KindString && v.kind != KindURL {
		return "", fmt.Errorf("%w: value is %s, not String/URL", ErrTypeMismatch, v.kind)
	}
	return v.s, nil
}

// Equal reports whether two values share both kind and payload. Values of
// different kinds are never equal, even when numerically equivalent.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindFloat32, KindFloat64:
		return v.f == other.f
	case KindString, KindURL:
		return v.s == other.s
	default:
		return v.u == other.u
	}
}

// String renders the value's payload for debugging/logging.
func (v Value) String() string {
	switch v.kind {
	case KindFloat32, KindFloat64:
		return fmt.Sprintf("%v", v.f)
	case KindString, KindURL:
		return v.s
	case KindInt16:
		return fmt.Sprintf("%d", int16(uint16(v.u)))
	case KindInt32:
		return fmt.Sprintf("%d", int32(uint32(v.u)))
	default:
		return fmt.Sprintf("%d", v.u)
	}
}

// MarshalJSON renders a Value as {"kind":"...","value":...}, the shape the
// host bridge and the DAS end-to-end scenario in spec.md §8 expect.
func (v Value) MarshalJSON() ([]byte, error) {
	var payload string
	switch v.kind {
	case KindFloat32, KindFloat64:
		payload = fmt.Sprintf("%v", v.f)
	case KindString, KindURL:
		payload = fmt.Sprintf("%q", v.s)
	case KindInt16:
		payload = fmt.Sprintf("%d", int16(uint16(v.u)))
	case KindInt32:
		payload = fmt.Sprintf("%d", int32(uint32(v.u)))
	default:
		payload = fmt.Sprintf("%d", v.u)
	}
	return []byte(fmt.Sprintf(`{"kind":"%s","value":%s}`, v.kind, payload)), nil
}

// Array is a tagged vector carrying a contiguous sequence of Values of a
// single kind. The invariant Kind() == declared schema kind is maintained
// by every producer in this module (the DDS-driven decoder, never the
// caller).
type Array struct {
	kind  Kind
	bytes []uint8
	i16   []int16
	u16   []uint16
	i32   []int32
	u32   []uint32
	f32   []float32
	f64   []float64
	str   []string
}

func newByteArray(v []uint8) Array    { return Array{kind: KindByte, bytes: v} }
func newInt16Array(v []int16) Array   { return Array{kind: KindInt16, i16: v} }
func newUInt16Array(v []uint16) Array { return Array{kind: KindUInt16, u16: v} }
func newInt32Array(v []int32) Array   { return Array{kind: KindInt32, i32: v} }
func newUInt32Array(v []uint32) Array { return Array{kind: KindUInt32, u32: v} }
func newFloat32Array(v []float32) Array { return Array{kind: KindFloat32, f32: v} }
func newFloat64Array(v []float64) Array { return Array{kind: KindFloat64, f64: v} }
func newStringArray(v []string) Array { return Array{kind: KindString, str: v} }
func newURLArray(v []string) Array    { return Array{kind: KindURL, str: v} }

// Kind reports the array's element kind.
func (a Array) Kind() Kind { return a.kind }

// Len reports the element count, regardless of which variant is populated.
func (a Array) Len() int {
	switch a.kind {
	case KindByte:
		return len(a.bytes)
	case KindInt16:
		return len(a.i16)
	case KindUInt16:
		return len(a.u16)
	case KindInt32:
		return len(a.i32)
	case KindUInt32:
		return len(a.u32)
	case KindFloat32:
		return len(a.f32)
	case KindFloat64:
		return len(a.f64)
	case KindString, KindURL:
		return len(a.str)
	default:
		return 0
	}
}

// Bytes, Int16s, ... expose the backing slice for the matching kind, or nil
// if the array holds a different kind. The returned slice aliases the
// array's own storage: callers must not assume exclusive ownership once a
// reference has been handed across a host-bridge boundary (see C9).

func (a Array) Bytes() []uint8    { return a.bytes }
func (a Array) Int16s() []int16   { return a.i16 }
func (a Array) UInt16s() []uint16 { return a.u16 }
func (a Array) Int32s() []int32   { return a.i32 }
func (a Array) UInt32s() []uint32 { return a.u32 }
func (a Array) Float32s() []float32 { return a.f32 }
func (a Array) Float64s() []float64 { return a.f64 }
func (a Array) Strings() []string { return a.str }

// At returns the i'th element as a tagged Value, regardless of variant.
func (a Array) At(i int) Value {
	switch a.kind {
	case KindByte:
		return NewByteValue(a.bytes[i])
	case KindInt16:
		return NewInt16Value(a.i16[i])
	case KindUInt16:
		return NewUInt16Value(a.u16[i])
	case KindInt32:
		return NewInt32Value(a.i32[i])
	case KindUInt32:
		return NewUInt32Value(a.u32[i])
	case KindFloat32:
		return NewFloat32Value(a.f32[i])
	case KindFloat64:
		return NewFloat64Value(a.f64[i])
	case KindString:
		return NewStringValue(a.str[i])
	default:
		return NewURLValue(a.str[i])
	}
}
