// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dap2

import (
	"bytes"

	"github.com/go-kratos/kratos/v2/log"
)

// dataMarker is the literal 7-byte sentinel ("\nData:\n") that separates a
// DODS response's textual DDS prologue from its binary payload
// (spec.md §6).
var dataMarker = []byte("\nData:\n")

// SplitDODS locates the "Data:" sentinel in a DODS byte stream and returns
// the DDS prologue text and the binary payload that follows it. It fails
// with ErrMissingDataMarker if the sentinel is absent.
func SplitDODS(data []byte) (prologue string, payload []byte, err error) {
	idx := bytes.Index(data, dataMarker)
	if idx < 0 {
		return "", nil, ErrMissingDataMarker
	}
	prologue = string(data[:idx+1]) // keep the leading '\n' as part of the DDS text's trailing whitespace
	payload = data[idx+len(dataMarker):]
	return prologue, payload, nil
}

// DecodedVariable is the per-variable output of a DODS decode: its data,
// its dimensions, its kind, and (Grids only) its coordinate arrays,
// matching the "Outputs" shape of spec.md §4.8.
type DecodedVariable struct {
	Data        Array            `json:"data"`
	Dims        []Dimension      `json:"dims"`
	Kind        Kind             `json:"kind"`
	Coordinates map[string]Array `json:"coordinates,omitempty"`
}

// DecodedRecord is one row of a decoded Sequence: field name -> decoded
// node.
type DecodedRecord map[string]*DecodedNode

// DecodedNode is a decoded declaration of any of the four shapes. Only the
// fields matching Kind are populated.
type DecodedNode struct {
	Kind DeclKind
	Name string

	// DeclArray
	Data Array
	Dims []Dimension
	DataKind Kind

	// DeclGrid
	GridArray   *DecodedNode
	Coordinates map[string]Array

	// DeclStructure
	Fields     map[string]*DecodedNode
	FieldOrder []string

	// DeclSequence
	Rows []DecodedRecord
}

// DecodeResult is the full output of decoding one DODS response: the
// response schema (which may be a projected subset of the dataset's full
// schema) plus every top-level declaration's decoded value.
type DecodeResult struct {
	Schema    *Dataset
	Variables map[string]*DecodedVariable // top-level Array/Grid declarations
	Nodes     map[string]*DecodedNode     // every top-level declaration, including Structure/Sequence
	Order     []string
}

// DecodeOptions configures TrailingGarbage recoverability. The zero value
// is lenient: trailing bytes after the declared payload are warned about
// and ignored. Strict mode makes them fatal (spec.md §4.8, §7).
type DecodeOptions struct {
	Strict bool
	Logger *log.Helper
}

// Decoder decodes DODS byte streams (C8) against the schema carried in
// their own prologue.
type Decoder struct {
	Options DecodeOptions
}

// NewDecoder returns a Decoder. opts may be nil to use lenient defaults.
func NewDecoder(opts *DecodeOptions) *Decoder {
	d := &Decoder{}
	if opts != nil {
		d.Options = *opts
	}
	return d
}

// Decode splits data into its DDS prologue and binary payload, parses the
// prologue, and decodes every top-level declaration against it.
func (d *Decoder) Decode(data []byte) (*DecodeResult, error) {
	prologue, payload, err := SplitDODS(data)
	if err != nil {
		return nil, err
	}
	schema, err := ParseDDS(prologue)
	if err != nil {
		return nil, err
	}
	return d.decodePayload(schema, payload)
}

func (d *Decoder) decodePayload(schema *Dataset, payload []byte) (*DecodeResult, error) {
	r := newByteReader(payload)
	result := &DecodeResult{
		Schema:    schema,
		Variables: map[string]*DecodedVariable{},
		Nodes:     map[string]*DecodedNode{},
	}

	for _, decl := range schema.Declarations {
		node, err := d.decodeDeclaration(r, decl)
		if err != nil {
			return nil, err
		}
		result.Order = append(result.Order, decl.Name)
		result.Nodes[decl.Name] = node
		switch decl.Kind {
		case DeclArray:
			result.Variables[decl.Name] = &DecodedVariable{
				Data: node.Data, Dims: node.Dims, Kind: node.DataKind,
			}
		case DeclGrid:
			result.Variables[decl.Name] = &DecodedVariable{
				Data: node.GridArray.Data, Dims: node.GridArray.Dims,
				Kind: node.GridArray.DataKind, Coordinates: node.Coordinates,
			}
		}
	}

	if r.remaining() > 0 {
		if d.Options.Strict {
			return nil, ErrTrailingGarbage
		}
		if d.Options.Logger != nil {
			d.Options.Logger.Warnf("dap2: %d trailing bytes after decoded DODS payload, ignoring", r.remaining())
		}
	}

	return result, nil
}

func (d *Decoder) decodeDeclaration(r *byteReader, decl *Declaration) (*DecodedNode, error) {
	switch decl.Kind {
	case DeclArray:
		return d.decodeArray(r, decl)
	case DeclGrid:
		return d.decodeGrid(r, decl)
	case DeclStructure:
		return d.decodeStructure(r, decl)
	case DeclSequence:
		return d.decodeSequence(r, decl)
	default:
		return nil, ErrNotFound
	}
}

func (d *Decoder) decodeArray(r *byteReader, decl *Declaration) (*DecodedNode, error) {
	length, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	length2, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	if length != length2 {
		return nil, &LengthMismatchError{Variable: decl.Name, First: length, Second: length2}
	}
	want := uint32(decl.ElementCount())
	if length != want {
		return nil, &SizeMismatchError{Variable: decl.Name, Got: length, Want: want}
	}

	arr, err := readArrayPayload(r, decl.DataKind, int(length))
	if err != nil {
		return nil, err
	}

	return &DecodedNode{
		Kind: DeclArray, Name: decl.Name,
		Data: arr, Dims: decl.Dims, DataKind: decl.DataKind,
	}, nil
}

// readArrayPayload reads n values of kind from r, applying the 4-byte
// alignment pad after a packed Byte block only. Blocks of the wider
// fixed-width kinds get no trailing pad, so an odd-length Int16/UInt16 block
// ends two bytes short of a 4-byte boundary. String/URL elements self-pad
// per value via ReadPaddedString, so no extra trailing pad is read for them.
func readArrayPayload(r *byteReader, kind Kind, n int) (Array, error) {
	switch kind {
	case KindByte:
		v := make([]uint8, n)
		for i := 0; i < n; i++ {
			b, err := r.ReadU8()
			if err != nil {
				return Array{}, err
			}
			v[i] = b
		}
		if err := r.SkipPad(n); err != nil {
			return Array{}, err
		}
		return newByteArray(v), nil
	case KindInt16:
		v := make([]int16, n)
		for i := 0; i < n; i++ {
			x, err := r.ReadI16()
			if err != nil {
				return Array{}, err
			}
			v[i] = x
		}
		return newInt16Array(v), nil
	case KindUInt16:
		v := make([]uint16, n)
		for i := 0; i < n; i++ {
			x, err := r.ReadU16()
			if err != nil {
				return Array{}, err
			}
			v[i] = x
		}
		return newUInt16Array(v), nil
	case KindInt32:
		v := make([]int32, n)
		for i := 0; i < n; i++ {
			x, err := r.ReadI32()
			if err != nil {
				return Array{}, err
			}
			v[i] = x
		}
		return newInt32Array(v), nil
	case KindUInt32:
		v := make([]uint32, n)
		for i := 0; i < n; i++ {
			x, err := r.ReadU32()
			if err != nil {
				return Array{}, err
			}
			v[i] = x
		}
		return newUInt32Array(v), nil
	case KindFloat32:
		v := make([]float32, n)
		for i := 0; i < n; i++ {
			x, err := r.ReadF32()
			if err != nil {
				return Array{}, err
			}
			v[i] = x
		}
		return newFloat32Array(v), nil
	case KindFloat64:
		v := make([]float64, n)
		for i := 0; i < n; i++ {
			x, err := r.ReadF64()
			if err != nil {
				return Array{}, err
			}
			v[i] = x
		}
		return newFloat64Array(v), nil
	case KindString:
		v := make([]string, n)
		for i := 0; i < n; i++ {
			s, err := r.ReadPaddedString()
			if err != nil {
				return Array{}, err
			}
			v[i] = s
		}
		return newStringArray(v), nil
	default: // KindURL
		v := make([]string, n)
		for i := 0; i < n; i++ {
			s, err := r.ReadPaddedString()
			if err != nil {
				return Array{}, err
			}
			v[i] = s
		}
		return newURLArray(v), nil
	}
}

func (d *Decoder) decodeGrid(r *byteReader, decl *Declaration) (*DecodedNode, error) {
	arrNode, err := d.decodeArray(r, decl.GridArray)
	if err != nil {
		return nil, err
	}
	coords := make(map[string]Array, len(decl.Maps))
	for _, m := range decl.Maps {
		mNode, err := d.decodeArray(r, m)
		if err != nil {
			return nil, err
		}
		coords[m.Name] = mNode.Data
	}
	return &DecodedNode{
		Kind: DeclGrid, Name: decl.Name,
		GridArray: arrNode, Coordinates: coords,
	}, nil
}

func (d *Decoder) decodeStructure(r *byteReader, decl *Declaration) (*DecodedNode, error) {
	fields := make(map[string]*DecodedNode, len(decl.Fields))
	order := make([]string, 0, len(decl.Fields))
	for _, f := range decl.Fields {
		fn, err := d.decodeDeclaration(r, f)
		if err != nil {
			return nil, err
		}
		fields[f.Name] = fn
		order = append(order, f.Name)
	}
	return &DecodedNode{Kind: DeclStructure, Name: decl.Name, Fields: fields, FieldOrder: order}, nil
}

// Sequence row markers (spec.md §4.8).
const (
	sequenceRowFollows byte = 0x5A
	sequenceRowEnd     byte = 0xA5
)

func (d *Decoder) decodeSequence(r *byteReader, decl *Declaration) (*DecodedNode, error) {
	var rows []DecodedRecord
	for {
		marker, err := r.ReadU8()
		if err != nil {
			return nil, err
		}
		if marker == sequenceRowEnd {
			break
		}
		if marker != sequenceRowFollows {
			return nil, ErrInvalidSequenceMarker
		}
		row := make(DecodedRecord, len(decl.Fields))
		for _, f := range decl.Fields {
			fn, err := d.decodeDeclaration(r, f)
			if err != nil {
				return nil, err
			}
			row[f.Name] = fn
		}
		rows = append(rows, row)
	}
	return &DecodedNode{Kind: DeclSequence, Name: decl.Name, Rows: rows}, nil
}
