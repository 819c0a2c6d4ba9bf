// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dap2

import (
	"fmt"
	"strconv"
	"strings"
)

// HyperslabKind discriminates the four per-dimension selector shapes of
// spec.md §3's constraint-expression grammar.
type HyperslabKind uint8

const (
	HyperslabSingle HyperslabKind = iota
	HyperslabRange
	HyperslabStride
	HyperslabEnumerate
)

// Hyperslab is one `[...]` selector for a single dimension.
type Hyperslab struct {
	Kind    HyperslabKind
	Index   int   // HyperslabSingle
	Start   int   // HyperslabRange, HyperslabStride
	Stop    int   // HyperslabRange, HyperslabStride
	Stride  int   // HyperslabStride
	Indices []int // HyperslabEnumerate
}

func (h Hyperslab) String() string {
	switch h.Kind {
	case HyperslabSingle:
		return fmt.Sprintf("[%d]", h.Index)
	case HyperslabRange:
		return fmt.Sprintf("[%d:%d]", h.Start, h.Stop)
	case HyperslabStride:
		return fmt.Sprintf("[%d:%d:%d]", h.Start, h.Stride, h.Stop)
	default:
		parts := make([]string, len(h.Indices))
		for i, idx := range h.Indices {
			parts[i] = strconv.Itoa(idx)
		}
		return "[" + strings.Join(parts, ",") + "]"
	}
}

type selectorKind uint8

const (
	selProject selectorKind = iota
	selHyperslab
)

type selectorEntry struct {
	variable string
	kind     selectorKind
	slabs    []Hyperslab
}

func (s *selectorEntry) String() string {
	if s.kind == selProject {
		return s.variable
	}
	var sb strings.Builder
	sb.WriteString(s.variable)
	for _, h := range s.slabs {
		sb.WriteString(h.String())
	}
	return sb.String()
}

// ConstraintBuilder composes a DAP2 constraint expression (spec.md §3,
// §4.6). It is immutable: every mutating-looking method returns a new
// builder value and leaves the receiver untouched, so a builder handed
// across a foreign-function boundary can never alias another caller's
// in-progress build (spec.md §9's "immutable-through-rebuild" note).
type ConstraintBuilder struct {
	schema    *Schema // optional; enables bounds/overflow checking
	selectors []*selectorEntry
	index     map[string]int // variable -> position in selectors
}

// NewConstraintBuilder returns an empty builder. schema may be nil; without
// it, index bounds and dimension-count overflow are not checked (spec.md
// §4.6: "the builder is schema-optional").
func NewConstraintBuilder(schema *Schema) *ConstraintBuilder {
	return &ConstraintBuilder{schema: schema, index: map[string]int{}}
}

// clone returns a shallow copy sharing the selectors slice's backing
// pointers; callers that mutate further replace only the touched entry.
func (b *ConstraintBuilder) clone() *ConstraintBuilder {
	nb := &ConstraintBuilder{
		schema:    b.schema,
		selectors: make([]*selectorEntry, len(b.selectors)),
		index:     make(map[string]int, len(b.index)),
	}
	copy(nb.selectors, b.selectors)
	for k, v := range b.index {
		nb.index[k] = v
	}
	return nb
}

// Project adds a bare `variable` selector (project the whole variable).
func (b *ConstraintBuilder) Project(variable string) (*ConstraintBuilder, error) {
	if _, exists := b.index[variable]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateProjection, variable)
	}
	nb := b.clone()
	nb.index[variable] = len(nb.selectors)
	nb.selectors = append(nb.selectors, &selectorEntry{variable: variable, kind: selProject})
	return nb, nil
}

// dimCount returns the variable's declared dimension count if a schema was
// supplied and the variable is known, or (0, false) otherwise.
func (b *ConstraintBuilder) dimCount(variable string) (int, bool) {
	if b.schema == nil {
		return 0, false
	}
	info, err := b.schema.VariableInfo(variable)
	if err != nil {
		return 0, false
	}
	return len(info.Dims), true
}

// dimSize returns the declared size of the variable's dim'th dimension, if
// known.
func (b *ConstraintBuilder) dimSize(variable string, dim int) (int, bool) {
	if b.schema == nil {
		return 0, false
	}
	info, err := b.schema.VariableInfo(variable)
	if err != nil || dim >= len(info.Dims) {
		return 0, false
	}
	return info.Dims[dim].Size, true
}

// addHyperslab appends h as the next dimension's selector for variable,
// creating a new hyperslab-selector entry if none exists yet.
func (b *ConstraintBuilder) addHyperslab(variable string, h Hyperslab) (*ConstraintBuilder, error) {
	nb := b.clone()
	pos, exists := nb.index[variable]
	var nextDim int
	if exists {
		existing := nb.selectors[pos]
		if existing.kind != selHyperslab {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateProjection, variable)
		}
		nextDim = len(existing.slabs)
	}
	if n, ok := b.dimCount(variable); ok && nextDim >= n {
		return nil, fmt.Errorf("%w: %s already has %d of %d hyperslabs", ErrDimensionOverflow, variable, nextDim, n)
	}
	if exists {
		old := nb.selectors[pos]
		slabs := make([]Hyperslab, len(old.slabs), len(old.slabs)+1)
		copy(slabs, old.slabs)
		slabs = append(slabs, h)
		nb.selectors[pos] = &selectorEntry{variable: variable, kind: selHyperslab, slabs: slabs}
	} else {
		nb.index[variable] = len(nb.selectors)
		nb.selectors = append(nb.selectors, &selectorEntry{variable: variable, kind: selHyperslab, slabs: []Hyperslab{h}})
	}
	return nb, nil
}

// Single adds `variable[i]` — a single-index hyperslab for the next
// dimension of variable.
func (b *ConstraintBuilder) Single(variable string, i int) (*ConstraintBuilder, error) {
	pos, exists := b.index[variable]
	dim := 0
	if exists && b.selectors[pos].kind == selHyperslab {
		dim = len(b.selectors[pos].slabs)
	}
	if size, ok := b.dimSize(variable, dim); ok && (i < 0 || i >= size) {
		return nil, fmt.Errorf("dap2: index %d out of bounds for dimension %d of %q (size %d)", i, dim, variable, size)
	}
	return b.addHyperslab(variable, Hyperslab{Kind: HyperslabSingle, Index: i})
}

// Range adds `variable[a:b]` — a closed integer range, stride 1.
func (b *ConstraintBuilder) Range(variable string, a, bEnd int) (*ConstraintBuilder, error) {
	pos, exists := b.index[variable]
	dim := 0
	if exists && b.selectors[pos].kind == selHyperslab {
		dim = len(b.selectors[pos].slabs)
	}
	if size, ok := b.dimSize(variable, dim); ok && (a < 0 || bEnd >= size || a > bEnd) {
		return nil, fmt.Errorf("dap2: range %d:%d out of bounds for dimension %d of %q (size %d)", a, bEnd, dim, variable, size)
	}
	return b.addHyperslab(variable, Hyperslab{Kind: HyperslabRange, Start: a, Stop: bEnd})
}

// Stride adds `variable[a:s:b]` — a closed range with a positive stride.
func (b *ConstraintBuilder) Stride(variable string, a, s, bEnd int) (*ConstraintBuilder, error) {
	if s <= 0 {
		return nil, ErrInvalidStride
	}
	pos, exists := b.index[variable]
	dim := 0
	if exists && b.selectors[pos].kind == selHyperslab {
		dim = len(b.selectors[pos].slabs)
	}
	if size, ok := b.dimSize(variable, dim); ok && (a < 0 || bEnd >= size || a > bEnd) {
		return nil, fmt.Errorf("dap2: stride range %d:%d:%d out of bounds for dimension %d of %q (size %d)", a, s, bEnd, dim, variable, size)
	}
	return b.addHyperslab(variable, Hyperslab{Kind: HyperslabStride, Start: a, Stop: bEnd, Stride: s})
}

// Enumerate adds `variable[i1,i2,...]` — an enumerated index list. Not all
// servers accept this form (spec.md §6).
func (b *ConstraintBuilder) Enumerate(variable string, indices []int) (*ConstraintBuilder, error) {
	cp := make([]int, len(indices))
	copy(cp, indices)
	return b.addHyperslab(variable, Hyperslab{Kind: HyperslabEnumerate, Indices: cp})
}

// Build renders the accumulated selectors into a constraint-expression
// string. Building the same sequence of operations always yields a
// byte-identical string (spec.md §8's builder-idempotence property).
func (b *ConstraintBuilder) Build() string {
	parts := make([]string, len(b.selectors))
	for i, s := range b.selectors {
		parts[i] = s.String()
	}
	return strings.Join(parts, ",")
}
