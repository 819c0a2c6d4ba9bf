// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dap2

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDDSArray(t *testing.T) {
	ds, err := ParseDDS(`Dataset { Float32 latitude[latitude = 5]; } ds;`)
	require.NoError(t, err)

	assert.Equal(t, "ds", ds.Name)
	require.Len(t, ds.Declarations, 1)

	decl := ds.Declarations[0]
	assert.Equal(t, DeclArray, decl.Kind)
	assert.Equal(t, "latitude", decl.Name)
	assert.Equal(t, KindFloat32, decl.DataKind)
	assert.Equal(t, []Dimension{{Name: "latitude", Size: 5}}, decl.Dims)

	schema := NewSchema(ds, nil)
	assert.Equal(t, []string{"latitude"}, schema.Coordinates())
	assert.Empty(t, schema.Variables())
}

func TestParseDDSGrid(t *testing.T) {
	text := `Dataset { Grid { ARRAY: Float32 t[time=3][lat=2]; MAPS: Int32 time[time=3]; Float32 lat[lat=2]; } t; } ds;`
	ds, err := ParseDDS(text)
	require.NoError(t, err)

	require.Len(t, ds.Declarations, 1)
	decl := ds.Declarations[0]
	require.Equal(t, DeclGrid, decl.Kind)
	require.NotNil(t, decl.GridArray)
	assert.Equal(t, KindFloat32, decl.GridArray.DataKind)
	assert.Equal(t, []Dimension{{Name: "time", Size: 3}, {Name: "lat", Size: 2}}, decl.GridArray.Dims)
	require.Len(t, decl.Maps, 2)
	assert.Equal(t, []string{"time", "lat"}, decl.CoordinateNames())

	schema := NewSchema(ds, nil)
	info, err := schema.VariableInfo("t")
	require.NoError(t, err)
	assert.Equal(t, []string{"time", "lat"}, info.CoordinateNames)
}

func TestParseDDSZeroDimension(t *testing.T) {
	_, err := ParseDDS(`Dataset { Float32 v[v = 0]; } ds;`)
	assert.ErrorIs(t, err, ErrZeroDimension)
}

func TestParseDDSDuplicateName(t *testing.T) {
	_, err := ParseDDS(`Dataset { Float32 v[v = 1]; Int32 v[v = 2]; } ds;`)
	var dupErr *DuplicateNameError
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, "v", dupErr.Name)
}

func TestParseDDSGridMapCountMismatch(t *testing.T) {
	text := `Dataset { Grid { ARRAY: Float32 t[time=3][lat=2]; MAPS: Int32 time[time=3]; } t; } ds;`
	_, err := ParseDDS(text)
	var gridErr *GridMismatchError
	require.ErrorAs(t, err, &gridErr)
}

func TestParseDDSGridMapSizeMismatch(t *testing.T) {
	text := `Dataset { Grid { ARRAY: Float32 t[time=3][lat=2]; MAPS: Int32 time[time=4]; Float32 lat[lat=2]; } t; } ds;`
	_, err := ParseDDS(text)
	var gridErr *GridMismatchError
	require.ErrorAs(t, err, &gridErr)
	assert.Equal(t, 0, gridErr.DimensionIdx)
}

func TestParseDDSScalarHasSingleAnonymousDimension(t *testing.T) {
	ds, err := ParseDDS(`Dataset { Int32 count; } ds;`)
	require.NoError(t, err)
	decl := ds.Declarations[0]
	require.Len(t, decl.Dims, 1)
	assert.Equal(t, "", decl.Dims[0].Name)
	assert.Equal(t, 1, decl.Dims[0].Size)
	assert.Equal(t, 1, decl.ElementCount())
}

func TestParseDDSStructureAndSequence(t *testing.T) {
	text := `Dataset { Structure { Int32 a; Float64 b; } rec; Sequence { Int32 x; } obs; } ds;`
	ds, err := ParseDDS(text)
	require.NoError(t, err)
	require.Len(t, ds.Declarations, 2)
	assert.Equal(t, DeclStructure, ds.Declarations[0].Kind)
	assert.Len(t, ds.Declarations[0].Fields, 2)
	assert.Equal(t, DeclSequence, ds.Declarations[1].Kind)
	assert.Len(t, ds.Declarations[1].Fields, 1)
}

func TestDatasetStringRoundTrip(t *testing.T) {
	ds, err := ParseDDS(`Dataset { Float32 latitude[latitude = 5]; } ds;`)
	require.NoError(t, err)

	text := ds.String()
	ds2, err := ParseDDS(text)
	require.NoError(t, err)

	assert.Equal(t, ds.Name, ds2.Name)
	assert.Equal(t, ds.Declarations[0].DataKind, ds2.Declarations[0].DataKind)
	assert.Equal(t, ds.Declarations[0].Dims, ds2.Declarations[0].Dims)
}
