// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dap2

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstraintBuilderProjectThenHyperslabIsDuplicate(t *testing.T) {
	b := NewConstraintBuilder(nil)
	b, err := b.Project("t")
	require.NoError(t, err)

	_, err = b.Single("t", 0)
	assert.ErrorIs(t, err, ErrDuplicateProjection)
}

func TestConstraintBuilderAccumulatesHyperslabsPerVariable(t *testing.T) {
	b := NewConstraintBuilder(nil)
	b, err := b.Single("t", 0)
	require.NoError(t, err)
	b, err = b.Range("t", 0, 10)
	require.NoError(t, err)

	assert.Equal(t, "t[0][0:10]", b.Build())
}

func TestConstraintBuilderDoubleProjectIsDuplicate(t *testing.T) {
	b := NewConstraintBuilder(nil)
	b, err := b.Project("t")
	require.NoError(t, err)
	_, err = b.Project("t")
	assert.ErrorIs(t, err, ErrDuplicateProjection)
}

func TestConstraintBuilderMultipleVariables(t *testing.T) {
	b := NewConstraintBuilder(nil)
	b, err := b.Project("lat")
	require.NoError(t, err)
	b, err = b.Single("time", 3)
	require.NoError(t, err)

	assert.Equal(t, "lat,time[3]", b.Build())
}

func TestConstraintBuilderStrideRejectsNonPositive(t *testing.T) {
	b := NewConstraintBuilder(nil)
	_, err := b.Stride("t", 0, 0, 10)
	assert.ErrorIs(t, err, ErrInvalidStride)
}

func TestConstraintBuilderEnumerate(t *testing.T) {
	b := NewConstraintBuilder(nil)
	b, err := b.Enumerate("t", []int{1, 3, 5})
	require.NoError(t, err)
	assert.Equal(t, "t[1,3,5]", b.Build())
}

func TestConstraintBuilderIsImmutable(t *testing.T) {
	base := NewConstraintBuilder(nil)
	withT, err := base.Project("t")
	require.NoError(t, err)

	assert.Equal(t, "", base.Build())
	assert.Equal(t, "t", withT.Build())

	withLat, err := base.Project("lat")
	require.NoError(t, err)
	assert.Equal(t, "lat", withLat.Build())
	assert.Equal(t, "t", withT.Build(), "branching off base must not affect a sibling builder")
}

func TestConstraintBuilderSchemaAwareBoundsChecking(t *testing.T) {
	ds, err := ParseDDS(`Dataset { Grid { ARRAY: Float32 t[time=3][lat=2]; MAPS: Int32 time[time=3]; Float32 lat[lat=2]; } t; } ds;`)
	require.NoError(t, err)
	schema := NewSchema(ds, nil)

	b := NewConstraintBuilder(schema)
	_, err = b.Single("t", 5)
	assert.Error(t, err, "index 5 is out of bounds for a dimension of size 3")

	b2, err := b.Single("t", 1)
	require.NoError(t, err)
	b2, err = b2.Single("t", 0)
	require.NoError(t, err)
	_, err = b2.Single("t", 0)
	assert.ErrorIs(t, err, ErrDimensionOverflow)
}

func TestConstraintBuilderEndToEndScenario(t *testing.T) {
	// spec.md §8 scenario 4: "single('t',0); range('t',0,10)" with no
	// schema attached still yields the accumulated hyperslab form.
	b := NewConstraintBuilder(nil)
	b, err := b.Single("t", 0)
	require.NoError(t, err)
	b, err = b.Range("t", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, "t[0][0:10]", b.Build())
}
