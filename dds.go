// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dap2

import (
	"fmt"
	"strconv"
	"strings"
)

// DeclKind discriminates the four shapes a DDS declaration can take.
type DeclKind uint8

const (
	DeclArray DeclKind = iota
	DeclGrid
	DeclStructure
	DeclSequence
)

func (k DeclKind) String() string {
	switch k {
	case DeclArray:
		return "Array"
	case DeclGrid:
		return "Grid"
	case DeclStructure:
		return "Structure"
	case DeclSequence:
		return "Sequence"
	default:
		return "Unknown"
	}
}

// Dimension is a (name, size) pair. Size is always positive; a DDS that
// declares size 0 is rejected with ErrZeroDimension.
type Dimension struct {
	Name string `json:"name"`
	Size int    `json:"size"`
}

// Declaration is one node of the recursive DDS schema tree: a tagged sum
// with one shape per DeclKind. Structures, Sequences, and a Grid's inner
// array form the recursive part of the type; there are no back-pointers,
// so no cycles can arise.
type Declaration struct {
	Kind DeclKind `json:"kind"`
	Name string   `json:"name"`

	// Valid when Kind == DeclArray.
	DataKind Kind        `json:"data_kind,omitempty"`
	Dims     []Dimension `json:"dims,omitempty"`

	// Valid when Kind == DeclGrid.
	GridArray *Declaration   `json:"array,omitempty"`
	Maps      []*Declaration `json:"maps,omitempty"`

	// Valid when Kind == DeclStructure or DeclSequence.
	Fields []*Declaration `json:"fields,omitempty"`
}

// ElementCount returns the product of an Array declaration's dimension
// sizes. Only meaningful for Kind == DeclArray.
func (d *Declaration) ElementCount() int {
	n := 1
	for _, dim := range d.Dims {
		n *= dim.Size
	}
	return n
}

// CoordinateNames returns, for a Grid declaration, the dimension/map names
// that identify its coordinate variables (its inner array's dimension
// names, equivalently its MAPS' names, per spec.md §4.4's Grid invariant).
func (d *Declaration) CoordinateNames() []string {
	if d.Kind != DeclGrid || d.GridArray == nil {
		return nil
	}
	names := make([]string, 0, len(d.GridArray.Dims))
	for _, dim := range d.GridArray.Dims {
		names = append(names, dim.Name)
	}
	return names
}

// Dataset is the root of a parsed DDS: a name plus an ordered sequence of
// top-level declarations.
type Dataset struct {
	Name         string         `json:"name"`
	Declarations []*Declaration `json:"declarations"`
}

// ddsParser is a recursive-descent parser for the grammar in spec.md §4.4.
type ddsParser struct {
	lex  *lexer
	cur  token
	peek *token
}

// ParseDDS parses DDS text into a Dataset schema tree, enforcing the Grid,
// zero-dimension, and duplicate-name invariants of spec.md §3-4.4.
func ParseDDS(text string) (*Dataset, error) {
	p := &ddsParser{lex: newLexer(text)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p.parseDataset()
}

func (p *ddsParser) advance() error {
	t, err := p.lex.Next()
	if err != nil {
		return err
	}
	p.cur = t
	return nil
}

func (p *ddsParser) expectIdent(what string) (string, error) {
	if p.cur.kind != tokIdent {
		return "", &SyntaxError{Line: p.cur.line, Column: p.cur.column,
			Expected: what, Found: p.cur.text}
	}
	text := p.cur.text
	return text, p.advance()
}

func (p *ddsParser) expectKeyword(kw string) error {
	if p.cur.kind != tokIdent || p.cur.text != kw {
		return &SyntaxError{Line: p.cur.line, Column: p.cur.column,
			Expected: kw, Found: p.cur.text}
	}
	return p.advance()
}

func (p *ddsParser) expect(kind tokenKind, what string) error {
	if p.cur.kind != kind {
		return &SyntaxError{Line: p.cur.line, Column: p.cur.column,
			Expected: what, Found: p.cur.text}
	}
	return p.advance()
}

func (p *ddsParser) parseDataset() (*Dataset, error) {
	if err := p.expectKeyword("Dataset"); err != nil {
		return nil, err
	}
	if err := p.expect(tokLBrace, "{"); err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	var decls []*Declaration
	for p.cur.kind != tokRBrace {
		if p.cur.kind == tokEOF {
			return nil, &SyntaxError{Line: p.cur.line, Column: p.cur.column,
				Expected: "}", Found: "EOF"}
		}
		d, err := p.parseDecl()
		if err != nil {
			return nil, err
		}
		if seen[d.Name] {
			return nil, &DuplicateNameError{Scope: "Dataset", Name: d.Name}
		}
		seen[d.Name] = true
		decls = append(decls, d)
	}
	if err := p.advance(); err != nil { // consume '}'
		return nil, err
	}
	name, err := p.expectIdent("dataset name")
	if err != nil {
		return nil, err
	}
	if err := p.expect(tokSemicolon, ";"); err != nil {
		return nil, err
	}
	return &Dataset{Name: name, Declarations: decls}, nil
}

// parseDecl dispatches on the leading keyword to one of the four
// declaration shapes.
func (p *ddsParser) parseDecl() (*Declaration, error) {
	if p.cur.kind != tokIdent {
		return nil, &SyntaxError{Line: p.cur.line, Column: p.cur.column,
			Expected: "declaration", Found: p.cur.text}
	}
	switch p.cur.text {
	case "Grid":
		return p.parseGrid()
	case "Structure":
		return p.parseCompound(DeclStructure)
	case "Sequence":
		return p.parseCompound(DeclSequence)
	default:
		return p.parseArray()
	}
}

func (p *ddsParser) parseArray() (*Declaration, error) {
	kwText := p.cur.text
	kind, ok := ParseKind(kwText)
	if !ok {
		return nil, &SyntaxError{Line: p.cur.line, Column: p.cur.column,
			Expected: "a primitive type keyword", Found: kwText}
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	name, err := p.expectIdent("array name")
	if err != nil {
		return nil, err
	}
	var dims []Dimension
	for p.cur.kind == tokLBracket {
		dim, err := p.parseDim()
		if err != nil {
			return nil, err
		}
		dims = append(dims, dim)
	}
	if len(dims) == 0 {
		// A bare scalar declaration is modeled as a one-element, anonymous
		// single dimension so every Array has a non-empty Dims slice, per
		// spec.md §3's Array invariant.
		dims = []Dimension{{Name: "", Size: 1}}
	}
	if err := p.expect(tokSemicolon, ";"); err != nil {
		return nil, err
	}
	return &Declaration{Kind: DeclArray, Name: name, DataKind: kind, Dims: dims}, nil
}

func (p *ddsParser) parseDim() (Dimension, error) {
	if err := p.expect(tokLBracket, "["); err != nil {
		return Dimension{}, err
	}
	var name string
	// Lookahead: "ident =" vs bare "number".
	if p.cur.kind == tokIdent {
		name = p.cur.text
		if err := p.advance(); err != nil {
			return Dimension{}, err
		}
		if err := p.expect(tokEquals, "="); err != nil {
			return Dimension{}, err
		}
	}
	if p.cur.kind != tokNumber {
		return Dimension{}, &SyntaxError{Line: p.cur.line, Column: p.cur.column,
			Expected: "dimension size", Found: p.cur.text}
	}
	size, err := strconv.Atoi(p.cur.text)
	if err != nil {
		return Dimension{}, &SyntaxError{Line: p.cur.line, Column: p.cur.column,
			Expected: "integer dimension size", Found: p.cur.text}
	}
	if err := p.advance(); err != nil {
		return Dimension{}, err
	}
	if err := p.expect(tokRBracket, "]"); err != nil {
		return Dimension{}, err
	}
	if size <= 0 {
		return Dimension{}, ErrZeroDimension
	}
	return Dimension{Name: name, Size: size}, nil
}

func (p *ddsParser) parseGrid() (*Declaration, error) {
	if err := p.advance(); err != nil { // consume "Grid"
		return nil, err
	}
	if err := p.expect(tokLBrace, "{"); err != nil {
		return nil, err
	}
	if err := p.expectKeyword("ARRAY"); err != nil {
		return nil, err
	}
	if err := p.expect(tokColon, ":"); err != nil {
		return nil, err
	}
	arr, err := p.parseArray()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("MAPS"); err != nil {
		return nil, err
	}
	if err := p.expect(tokColon, ":"); err != nil {
		return nil, err
	}
	var maps []*Declaration
	for p.cur.kind != tokRBrace {
		m, err := p.parseArray()
		if err != nil {
			return nil, err
		}
		maps = append(maps, m)
	}
	if len(maps) == 0 {
		return nil, &GridMismatchError{Grid: "", DimensionIdx: len(arr.Dims), MapCountDelta: -len(arr.Dims)}
	}
	if err := p.advance(); err != nil { // consume '}'
		return nil, err
	}
	name, err := p.expectIdent("grid name")
	if err != nil {
		return nil, err
	}
	if err := p.expect(tokSemicolon, ";"); err != nil {
		return nil, err
	}

	if len(maps) != len(arr.Dims) {
		return nil, &GridMismatchError{Grid: name, DimensionIdx: len(arr.Dims), MapCountDelta: len(maps) - len(arr.Dims)}
	}
	for i, m := range maps {
		if len(m.Dims) != 1 {
			return nil, &GridMismatchError{Grid: name, DimensionIdx: i,
				WantName: arr.Dims[i].Name, WantSize: arr.Dims[i].Size,
				GotName: m.Name, GotSize: m.ElementCount()}
		}
		if m.Dims[0].Name != arr.Dims[i].Name || m.Dims[0].Size != arr.Dims[i].Size {
			return nil, &GridMismatchError{Grid: name, DimensionIdx: i,
				WantName: arr.Dims[i].Name, WantSize: arr.Dims[i].Size,
				GotName: m.Dims[0].Name, GotSize: m.Dims[0].Size}
		}
	}

	return &Declaration{Kind: DeclGrid, Name: name, GridArray: arr, Maps: maps}, nil
}

func (p *ddsParser) parseCompound(kind DeclKind) (*Declaration, error) {
	if err := p.advance(); err != nil { // consume "Structure"/"Sequence"
		return nil, err
	}
	if err := p.expect(tokLBrace, "{"); err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var fields []*Declaration
	for p.cur.kind != tokRBrace {
		if p.cur.kind == tokEOF {
			return nil, &SyntaxError{Line: p.cur.line, Column: p.cur.column,
				Expected: "}", Found: "EOF"}
		}
		f, err := p.parseDecl()
		if err != nil {
			return nil, err
		}
		if seen[f.Name] {
			return nil, &DuplicateNameError{Scope: kind.String(), Name: f.Name}
		}
		seen[f.Name] = true
		fields = append(fields, f)
	}
	if err := p.advance(); err != nil { // consume '}'
		return nil, err
	}
	name, err := p.expectIdent("name")
	if err != nil {
		return nil, err
	}
	if err := p.expect(tokSemicolon, ";"); err != nil {
		return nil, err
	}
	return &Declaration{Kind: kind, Name: name, Fields: fields}, nil
}

// String renders the Dataset back to canonical DDS text. Re-parsing the
// result yields a schema tree equal to the original (spec.md §8's
// round-trip property), modulo optional whitespace and dimension names the
// original text omitted.
func (d *Dataset) String() string {
	var sb strings.Builder
	sb.WriteString("Dataset {\n")
	for _, decl := range d.Declarations {
		writeDecl(&sb, decl, 1)
	}
	fmt.Fprintf(&sb, "} %s;\n", d.Name)
	return sb.String()
}

func writeDecl(sb *strings.Builder, d *Declaration, depth int) {
	indent := strings.Repeat("    ", depth)
	switch d.Kind {
	case DeclArray:
		fmt.Fprintf(sb, "%s%s %s", indent, d.DataKind, d.Name)
		for _, dim := range d.Dims {
			if dim.Name != "" {
				fmt.Fprintf(sb, "[%s = %d]", dim.Name, dim.Size)
			} else {
				fmt.Fprintf(sb, "[%d]", dim.Size)
			}
		}
		sb.WriteString(";\n")
	case DeclGrid:
		fmt.Fprintf(sb, "%sGrid {\n%s    ARRAY:\n", indent, indent)
		writeDecl(sb, d.GridArray, depth+2)
		fmt.Fprintf(sb, "%s    MAPS:\n", indent)
		for _, m := range d.Maps {
			writeDecl(sb, m, depth+2)
		}
		fmt.Fprintf(sb, "%s} %s;\n", indent, d.Name)
	case DeclStructure, DeclSequence:
		fmt.Fprintf(sb, "%s%s {\n", indent, d.Kind)
		for _, f := range d.Fields {
			writeDecl(sb, f, depth+1)
		}
		fmt.Fprintf(sb, "%s} %s;\n", indent, d.Name)
	}
}
