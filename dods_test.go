// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dap2

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitDODS(t *testing.T) {
	data := []byte("Dataset { Int32 v[v = 1]; } d;\nData:\nXYZ")
	prologue, payload, err := SplitDODS(data)
	require.NoError(t, err)
	assert.Equal(t, "Dataset { Int32 v[v = 1]; } d;\n", prologue)
	assert.Equal(t, []byte("XYZ"), payload)
}

func TestSplitDODSMissingMarker(t *testing.T) {
	_, _, err := SplitDODS([]byte("no marker here"))
	assert.ErrorIs(t, err, ErrMissingDataMarker)
}

func dodsMinimumBytes() []byte {
	var buf bytes.Buffer
	buf.WriteString("Dataset { Int32 v[v = 1]; } d;\nData:\n")
	binary.Write(&buf, binary.BigEndian, uint32(1))
	binary.Write(&buf, binary.BigEndian, uint32(1))
	binary.Write(&buf, binary.BigEndian, int32(42))
	return buf.Bytes()
}

func TestDecodeDODSMinimum(t *testing.T) {
	dec := NewDecoder(nil)
	result, err := dec.Decode(dodsMinimumBytes())
	require.NoError(t, err)

	v, ok := result.Variables["v"]
	require.True(t, ok)
	assert.Equal(t, KindInt32, v.Kind)
	assert.Equal(t, []Dimension{{Name: "v", Size: 1}}, v.Dims)

	got, err := v.Data.At(0).AsInt32()
	require.NoError(t, err)
	assert.Equal(t, int32(42), got)
}

func TestDecodeDODSTruncatedInput(t *testing.T) {
	full := dodsMinimumBytes()
	truncated := full[:len(full)-8] // drop the second length word and the value
	dec := NewDecoder(nil)
	_, err := dec.Decode(truncated)
	assert.ErrorIs(t, err, ErrTruncatedInput)
}

func TestDecodeDODSLengthMismatch(t *testing.T) {
	full := dodsMinimumBytes()
	corrupted := make([]byte, len(full))
	copy(corrupted, full)
	// The second length word sits 4 bytes before the trailing Int32 value.
	corrupted[len(corrupted)-5] = 0x02
	dec := NewDecoder(nil)
	_, err := dec.Decode(corrupted)
	var lenErr *LengthMismatchError
	require.ErrorAs(t, err, &lenErr)
}

func buildGridDODSBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString("Dataset { Grid { ARRAY: Float32 t[time=2][lat=2]; MAPS: Int32 time[time=2]; Float32 lat[lat=2]; } t; } ds;\nData:\n")

	binary.Write(&buf, binary.BigEndian, uint32(4))
	binary.Write(&buf, binary.BigEndian, uint32(4))
	for _, f := range []float32{1.0, 2.0, 3.0, 4.0} {
		binary.Write(&buf, binary.BigEndian, f)
	}

	binary.Write(&buf, binary.BigEndian, uint32(2))
	binary.Write(&buf, binary.BigEndian, uint32(2))
	for _, i := range []int32{0, 1} {
		binary.Write(&buf, binary.BigEndian, i)
	}

	binary.Write(&buf, binary.BigEndian, uint32(2))
	binary.Write(&buf, binary.BigEndian, uint32(2))
	for _, f := range []float32{10.0, 20.0} {
		binary.Write(&buf, binary.BigEndian, f)
	}

	return buf.Bytes()
}

func TestDecodeDODSGrid(t *testing.T) {
	dec := NewDecoder(nil)
	result, err := dec.Decode(buildGridDODSBytes(t))
	require.NoError(t, err)

	tv, ok := result.Variables["t"]
	require.True(t, ok)
	assert.Equal(t, KindFloat32, tv.Kind)
	assert.Equal(t, 4, tv.Data.Len())
	assert.Equal(t, []float32{1.0, 2.0, 3.0, 4.0}, tv.Data.Float32s())

	timeCoord, ok := tv.Coordinates["time"]
	require.True(t, ok)
	assert.Equal(t, []int32{0, 1}, timeCoord.Int32s())

	latCoord, ok := tv.Coordinates["lat"]
	require.True(t, ok)
	assert.Equal(t, []float32{10.0, 20.0}, latCoord.Float32s())
}

func TestDecodeDODSTrailingGarbageStrictVsLenient(t *testing.T) {
	data := append(dodsMinimumBytes(), 0xDE, 0xAD)

	strict := NewDecoder(&DecodeOptions{Strict: true})
	_, err := strict.Decode(data)
	assert.ErrorIs(t, err, ErrTrailingGarbage)

	lenient := NewDecoder(nil)
	result, err := lenient.Decode(data)
	require.NoError(t, err)
	assert.NotNil(t, result)
}

func TestDecodeDODSStructure(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("Dataset { Structure { Int32 a; Float32 b; } rec; } d;\nData:\n")

	binary.Write(&buf, binary.BigEndian, uint32(1))
	binary.Write(&buf, binary.BigEndian, uint32(1))
	binary.Write(&buf, binary.BigEndian, int32(7))

	binary.Write(&buf, binary.BigEndian, uint32(1))
	binary.Write(&buf, binary.BigEndian, uint32(1))
	binary.Write(&buf, binary.BigEndian, float32(2.5))

	dec := NewDecoder(nil)
	result, err := dec.Decode(buf.Bytes())
	require.NoError(t, err)

	node, ok := result.Nodes["rec"]
	require.True(t, ok)
	assert.Equal(t, DeclStructure, node.Kind)
	assert.Equal(t, []string{"a", "b"}, node.FieldOrder)

	aNode, ok := node.Fields["a"]
	require.True(t, ok)
	aVal, err := aNode.Data.At(0).AsInt32()
	require.NoError(t, err)
	assert.Equal(t, int32(7), aVal)

	bNode, ok := node.Fields["b"]
	require.True(t, ok)
	bVal, err := bNode.Data.At(0).AsFloat32()
	require.NoError(t, err)
	assert.Equal(t, float32(2.5), bVal)
}

func appendSequenceRow(buf *bytes.Buffer, x int32) {
	buf.WriteByte(sequenceRowFollows)
	binary.Write(buf, binary.BigEndian, uint32(1))
	binary.Write(buf, binary.BigEndian, uint32(1))
	binary.Write(buf, binary.BigEndian, x)
}

func TestDecodeDODSSequence(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("Dataset { Sequence { Int32 x; } obs; } d;\nData:\n")
	appendSequenceRow(&buf, 1)
	appendSequenceRow(&buf, 2)
	buf.WriteByte(sequenceRowEnd)

	dec := NewDecoder(nil)
	result, err := dec.Decode(buf.Bytes())
	require.NoError(t, err)

	node, ok := result.Nodes["obs"]
	require.True(t, ok)
	assert.Equal(t, DeclSequence, node.Kind)
	require.Len(t, node.Rows, 2)

	x0, err := node.Rows[0]["x"].Data.At(0).AsInt32()
	require.NoError(t, err)
	assert.Equal(t, int32(1), x0)

	x1, err := node.Rows[1]["x"].Data.At(0).AsInt32()
	require.NoError(t, err)
	assert.Equal(t, int32(2), x1)
}

func TestDecodeDODSSequenceInvalidMarker(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("Dataset { Sequence { Int32 x; } obs; } d;\nData:\n")
	buf.WriteByte(0x00) // neither sequenceRowFollows nor sequenceRowEnd

	dec := NewDecoder(nil)
	_, err := dec.Decode(buf.Bytes())
	assert.ErrorIs(t, err, ErrInvalidSequenceMarker)
}

func TestDecodeDODSByteArrayPadding(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("Dataset { Byte b[b = 3]; } d;\nData:\n")
	binary.Write(&buf, binary.BigEndian, uint32(3))
	binary.Write(&buf, binary.BigEndian, uint32(3))
	buf.Write([]byte{1, 2, 3})
	buf.Write([]byte{0}) // pad to a multiple of 4

	dec := NewDecoder(nil)
	result, err := dec.Decode(buf.Bytes())
	require.NoError(t, err)

	b, ok := result.Variables["b"]
	require.True(t, ok)
	assert.Equal(t, []uint8{1, 2, 3}, b.Data.Bytes())
}
