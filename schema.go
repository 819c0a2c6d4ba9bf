// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dap2

import (
	"github.com/go-kratos/kratos/v2/log"
)

// VariableInfo is the queryable summary spec.md §4.5's variable_info
// returns: the variable's data kind, its ordered dimension list, which of
// the four declaration shapes it is, and (for Grids) its coordinate names.
type VariableInfo struct {
	Kind            Kind        `json:"kind"`
	Dims            []Dimension `json:"dims"`
	Type            DeclKind    `json:"type"`
	CoordinateNames []string    `json:"coordinate_names,omitempty"`
}

// CoordinateInfo is the queryable summary spec.md §4.5's coordinate_info
// returns: the coordinate's kind, axis size, and which variables reference
// it in their dimension list.
type CoordinateInfo struct {
	Kind           Kind     `json:"kind"`
	Size           int      `json:"size"`
	VariablesUsing []string `json:"variables_using"`
}

// Schema is the queryable view over a parsed DDS (and, once merged, its
// DAS) described by spec.md §4.5/C5. It is built once from a Dataset; apart
// from MergeAttributes, which sets Attributes, no method modifies it, so it
// is safe for concurrent read-only use once any DAS has been merged.
type Schema struct {
	Dataset    *Dataset
	Attributes *DAS

	// Anomalies records non-fatal deviations noticed while building the
	// schema view, e.g. a Grid whose MAPS have no top-level counterpart
	// (spec.md §9's open question on Grid coordinate inference).
	Anomalies []string

	declByName  map[string]*Declaration
	variables   []string
	coordinates []string
	varInfo     map[string]VariableInfo
	coordInfo   map[string]CoordinateInfo
}

// NewSchema builds a Schema from a parsed Dataset, applying the coordinate
// detection rule of spec.md §4.5 and the Grid-MAPS-as-fallback-authority
// rule of spec.md §9.
func NewSchema(ds *Dataset, logger *log.Helper) *Schema {
	s := &Schema{
		Dataset:    ds,
		declByName: map[string]*Declaration{},
		varInfo:    map[string]VariableInfo{},
		coordInfo:  map[string]CoordinateInfo{},
	}

	coordDim := map[string]Dimension{}   // coordinate name -> its own dimension
	coordUsers := map[string][]string{}  // coordinate name -> variables referencing it

	// Pass 1: classify top-level declarations, detect coordinate Arrays.
	for _, decl := range ds.Declarations {
		s.declByName[decl.Name] = decl
		if decl.Kind == DeclArray && len(decl.Dims) == 1 && decl.Dims[0].Name == decl.Name {
			s.coordinates = append(s.coordinates, decl.Name)
			coordDim[decl.Name] = decl.Dims[0]
			s.coordInfo[decl.Name] = CoordinateInfo{Kind: decl.DataKind, Size: decl.Dims[0].Size}
			continue
		}
		s.variables = append(s.variables, decl.Name)
	}

	// Pass 2: record variable_info, and register dimension usage for
	// coordinate_info's variables_using.
	for _, name := range s.variables {
		decl := s.declByName[name]
		info := VariableInfo{Type: decl.Kind}
		switch decl.Kind {
		case DeclArray:
			info.Kind = decl.DataKind
			info.Dims = decl.Dims
			for _, d := range decl.Dims {
				if d.Name != "" {
					coordUsers[d.Name] = append(coordUsers[d.Name], name)
				}
			}
		case DeclGrid:
			info.Kind = decl.GridArray.DataKind
			info.Dims = decl.GridArray.Dims
			info.CoordinateNames = decl.CoordinateNames()
			for _, d := range decl.GridArray.Dims {
				coordUsers[d.Name] = append(coordUsers[d.Name], name)
				// Grid MAPS are authoritative when no top-level coordinate
				// Array exists for this dimension name (spec.md §9).
				if _, ok := coordDim[d.Name]; !ok {
					var mapKind Kind
					for _, m := range decl.Maps {
						if len(m.Dims) == 1 && m.Dims[0].Name == d.Name {
							mapKind = m.DataKind
							break
						}
					}
					coordDim[d.Name] = d
					s.coordInfo[d.Name] = CoordinateInfo{Kind: mapKind, Size: d.Size}
					s.Anomalies = append(s.Anomalies,
						"grid \""+decl.Name+"\" map \""+d.Name+"\" has no top-level coordinate Array; using MAPS as authoritative")
					if logger != nil {
						logger.Warnf("dap2: grid %q map %q has no top-level coordinate Array; using MAPS as authoritative",
							decl.Name, d.Name)
					}
				}
			}
		}
		s.varInfo[name] = info
	}

	for name, ci := range s.coordInfo {
		ci.VariablesUsing = coordUsers[name]
		s.coordInfo[name] = ci
	}

	return s
}

// Variables returns the names of all top-level non-coordinate-only Arrays
// and Grids, in declaration order.
func (s *Schema) Variables() []string {
	out := make([]string, 0, len(s.variables))
	for _, name := range s.variables {
		if k := s.declByName[name].Kind; k == DeclArray || k == DeclGrid {
			out = append(out, name)
		}
	}
	return out
}

// Coordinates returns the names of top-level Arrays whose single dimension
// shares the array's name, in declaration order.
func (s *Schema) Coordinates() []string {
	out := make([]string, len(s.coordinates))
	copy(out, s.coordinates)
	return out
}

// VariableInfo returns the summary for a variable name, or ErrNotFound.
func (s *Schema) VariableInfo(name string) (VariableInfo, error) {
	info, ok := s.varInfo[name]
	if !ok {
		return VariableInfo{}, ErrNotFound
	}
	return info, nil
}

// CoordinateInfo returns the summary for a coordinate name, or ErrNotFound.
func (s *Schema) CoordinateInfo(name string) (CoordinateInfo, error) {
	info, ok := s.coordInfo[name]
	if !ok {
		return CoordinateInfo{}, ErrNotFound
	}
	return info, nil
}

// Lookup returns the full declaration subtree for a top-level name
// (variable or coordinate), or ErrNotFound.
func (s *Schema) Lookup(name string) (*Declaration, error) {
	d, ok := s.declByName[name]
	if !ok {
		return nil, ErrNotFound
	}
	return d, nil
}

// IsCoordinate reports whether name is a coordinate variable.
func (s *Schema) IsCoordinate(name string) bool {
	_, ok := s.coordInfo[name]
	return ok
}

// MergeAttributes attaches a parsed DAS to this schema as attribute
// metadata (spec.md §2's dataflow: "A DAS text buffer goes through C3 and
// is merged into C5").
func (s *Schema) MergeAttributes(das *DAS) {
	s.Attributes = das
}

// AttributesFor returns the attribute block for a variable (or NC_GLOBAL),
// or ErrNotFound if no DAS has been merged or the name is absent.
func (s *Schema) AttributesFor(name string) (*AttrBlock, error) {
	if s.Attributes == nil {
		return nil, ErrNotFound
	}
	return s.Attributes.Lookup(name)
}
