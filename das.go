// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dap2

import (
	"strconv"

	"github.com/go-kratos/kratos/v2/log"
)

// NCGlobal is the reserved block name holding dataset-level attributes.
const NCGlobal = "NC_GLOBAL"

// Attribute is one `kind name value(,value)*;` entry of a DAS block. A
// single value is a scalar; two or more comma-separated values are a list.
// Per spec.md §9's DAS-parser bug hint, a one-element list is never
// collapsed away except by virtue of already being a scalar kind.
type Attribute struct {
	Kind   Kind    `json:"kind"`
	Values []Value `json:"values"`
}

// IsScalar reports whether this attribute carries exactly one value.
func (a *Attribute) IsScalar() bool { return len(a.Values) == 1 }

// Scalar returns the attribute's sole value. For a list attribute it returns
// the first value only; callers should check IsScalar first.
func (a *Attribute) Scalar() Value { return a.Values[0] }

// MarshalJSON renders a scalar attribute as {"kind":...,"value":...} (the
// shape spec.md §8's DAS end-to-end scenario expects) and a list attribute
// as {"kind":...,"values":[...]}.
func (a *Attribute) MarshalJSON() ([]byte, error) {
	if a.IsScalar() {
		return a.Scalar().MarshalJSON()
	}
	var sb []byte
	sb = append(sb, []byte(`{"kind":"`+a.Kind.String()+`","values":[`)...)
	for i, v := range a.Values {
		if i > 0 {
			sb = append(sb, ',')
		}
		vj, err := v.MarshalJSON()
		if err != nil {
			return nil, err
		}
		sb = append(sb, vj...)
	}
	sb = append(sb, []byte(`]}`)...)
	return sb, nil
}

// AttrBlock is one `{...}` block of the DAS grammar: a named set of
// attributes plus nested sub-blocks, preserved (not flattened) per
// spec.md §3 and §9's DAS-nesting-policy note.
type AttrBlock struct {
	Name string `json:"name"`

	Attrs     map[string]*Attribute `json:"attributes,omitempty"`
	attrOrder []string

	SubBlocks map[string]*AttrBlock `json:"blocks,omitempty"`
	subOrder  []string
}

func newAttrBlock(name string) *AttrBlock {
	return &AttrBlock{
		Name:      name,
		Attrs:     map[string]*Attribute{},
		SubBlocks: map[string]*AttrBlock{},
	}
}

// AttributeNames returns attribute keys in declaration order.
func (b *AttrBlock) AttributeNames() []string {
	out := make([]string, len(b.attrOrder))
	copy(out, b.attrOrder)
	return out
}

// SubBlockNames returns nested block keys in declaration order.
func (b *AttrBlock) SubBlockNames() []string {
	out := make([]string, len(b.subOrder))
	copy(out, b.subOrder)
	return out
}

// DAS is the parsed attribute tree: variable_name -> AttrBlock, including
// the reserved NC_GLOBAL block.
type DAS struct {
	Blocks map[string]*AttrBlock `json:"blocks"`
	order  []string
}

// BlockNames returns top-level block names (variable names and NC_GLOBAL)
// in declaration order.
func (d *DAS) BlockNames() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// Lookup returns the attribute tree for a variable name, or ErrNotFound.
func (d *DAS) Lookup(name string) (*AttrBlock, error) {
	b, ok := d.Blocks[name]
	if !ok {
		return nil, ErrNotFound
	}
	return b, nil
}

// DASOptions configures DuplicateAttribute recoverability. The default
// (zero value) is strict: a duplicate attribute key within one block is a
// fatal DuplicateAttributeError.
type DASOptions struct {
	// AllowDuplicateAttribute makes a repeated attribute key within a block
	// recoverable: the last occurrence wins instead of raising
	// DuplicateAttributeError.
	AllowDuplicateAttribute bool

	// Logger receives a Warn for every recovered duplicate attribute. Nil
	// disables logging.
	Logger *log.Helper
}

type dasParser struct {
	lex  *lexer
	cur  token
	opts DASOptions
}

// ParseDAS parses DAS text into the attribute tree described by spec.md §3
// and §4.3. opts may be nil to use strict defaults.
func ParseDAS(text string, opts *DASOptions) (*DAS, error) {
	p := &dasParser{lex: newLexer(text)}
	if opts != nil {
		p.opts = *opts
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p.parseDAS()
}

func (p *dasParser) advance() error {
	t, err := p.lex.Next()
	if err != nil {
		return err
	}
	p.cur = t
	return nil
}

func (p *dasParser) expectKeyword(kw string) error {
	if p.cur.kind != tokIdent || p.cur.text != kw {
		return &SyntaxError{Line: p.cur.line, Column: p.cur.column, Expected: kw, Found: p.cur.text}
	}
	return p.advance()
}

func (p *dasParser) expect(kind tokenKind, what string) error {
	if p.cur.kind != kind {
		return &SyntaxError{Line: p.cur.line, Column: p.cur.column, Expected: what, Found: p.cur.text}
	}
	return p.advance()
}

func (p *dasParser) parseDAS() (*DAS, error) {
	if err := p.expectKeyword("Attributes"); err != nil {
		return nil, err
	}
	if err := p.expect(tokLBrace, "{"); err != nil {
		return nil, err
	}

	das := &DAS{Blocks: map[string]*AttrBlock{}}
	for p.cur.kind != tokRBrace {
		if p.cur.kind == tokEOF {
			return nil, &SyntaxError{Line: p.cur.line, Column: p.cur.column, Expected: "}", Found: "EOF"}
		}
		name, block, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		if _, exists := das.Blocks[name]; !exists {
			das.order = append(das.order, name)
		}
		das.Blocks[name] = block
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return das, nil
}

func (p *dasParser) parseBlock() (string, *AttrBlock, error) {
	if p.cur.kind != tokIdent {
		return "", nil, &SyntaxError{Line: p.cur.line, Column: p.cur.column,
			Expected: "block name", Found: p.cur.text}
	}
	name := p.cur.text
	if err := p.advance(); err != nil {
		return "", nil, err
	}
	if err := p.expect(tokLBrace, "{"); err != nil {
		return "", nil, err
	}

	block := newAttrBlock(name)
	for p.cur.kind != tokRBrace {
		if p.cur.kind == tokEOF {
			return "", nil, &SyntaxError{Line: p.cur.line, Column: p.cur.column,
				Expected: "}", Found: "EOF"}
		}
		if err := p.parseBlockMember(block); err != nil {
			return "", nil, err
		}
	}
	if err := p.advance(); err != nil { // consume '}'
		return "", nil, err
	}
	return name, block, nil
}

// parseBlockMember parses either a "kind name value...;" attribute or a
// nested "name { ... }" sub-block, distinguished by whether the leading
// identifier names one of the nine primitive kinds.
func (p *dasParser) parseBlockMember(block *AttrBlock) error {
	if p.cur.kind != tokIdent {
		return &SyntaxError{Line: p.cur.line, Column: p.cur.column,
			Expected: "attribute or nested block", Found: p.cur.text}
	}
	if kind, ok := ParseKind(p.cur.text); ok {
		return p.parseAttribute(block, kind)
	}
	subName, sub, err := p.parseBlock()
	if err != nil {
		return err
	}
	if _, exists := block.SubBlocks[subName]; !exists {
		block.subOrder = append(block.subOrder, subName)
	}
	block.SubBlocks[subName] = sub
	return nil
}

func (p *dasParser) parseAttribute(block *AttrBlock, kind Kind) error {
	if err := p.advance(); err != nil { // consume kind keyword
		return err
	}
	name, err := func() (string, error) {
		if p.cur.kind != tokIdent {
			return "", &SyntaxError{Line: p.cur.line, Column: p.cur.column,
				Expected: "attribute name", Found: p.cur.text}
		}
		n := p.cur.text
		return n, p.advance()
	}()
	if err != nil {
		return err
	}

	var values []Value
	for {
		v, err := p.parseValue(kind)
		if err != nil {
			return err
		}
		values = append(values, v)
		if p.cur.kind == tokComma {
			if err := p.advance(); err != nil {
				return err
			}
			continue
		}
		break
	}
	if err := p.expect(tokSemicolon, ";"); err != nil {
		return err
	}

	if _, exists := block.Attrs[name]; exists {
		if !p.opts.AllowDuplicateAttribute {
			return &DuplicateAttributeError{Block: block.Name, Name: name}
		}
		if p.opts.Logger != nil {
			p.opts.Logger.Warnf("dap2: duplicate attribute %q in block %q, last wins", name, block.Name)
		}
	} else {
		block.attrOrder = append(block.attrOrder, name)
	}
	block.Attrs[name] = &Attribute{Kind: kind, Values: values}
	return nil
}

func (p *dasParser) parseValue(kind Kind) (Value, error) {
	switch kind {
	case KindString, KindURL:
		if p.cur.kind != tokString {
			return Value{}, &TypeMismatchError{Kind: kind, Value: p.cur.text}
		}
		v := p.cur.text
		if err := p.advance(); err != nil {
			return Value{}, err
		}
		if kind == KindString {
			return NewStringValue(v), nil
		}
		return NewURLValue(v), nil
	default:
		if p.cur.kind != tokNumber {
			return Value{}, &TypeMismatchError{Kind: kind, Value: p.cur.text}
		}
		text := p.cur.text
		v, err := parseNumericValue(kind, text)
		if err != nil {
			return Value{}, err
		}
		return v, p.advance()
	}
}

func parseNumericValue(kind Kind, text string) (Value, error) {
	switch kind {
	case KindByte:
		n, err := strconv.ParseUint(text, 10, 8)
		if err != nil {
			return Value{}, &TypeMismatchError{Kind: kind, Value: text}
		}
		return NewByteValue(uint8(n)), nil
	case KindInt16:
		n, err := strconv.ParseInt(text, 10, 16)
		if err != nil {
			return Value{}, &TypeMismatchError{Kind: kind, Value: text}
		}
		return NewInt16Value(int16(n)), nil
	case KindUInt16:
		n, err := strconv.ParseUint(text, 10, 16)
		if err != nil {
			return Value{}, &TypeMismatchError{Kind: kind, Value: text}
		}
		return NewUInt16Value(uint16(n)), nil
	case KindInt32:
		n, err := strconv.ParseInt(text, 10, 32)
		if err != nil {
			return Value{}, &TypeMismatchError{Kind: kind, Value: text}
		}
		return NewInt32Value(int32(n)), nil
	case KindUInt32:
		n, err := strconv.ParseUint(text, 10, 32)
		if err != nil {
			return Value{}, &TypeMismatchError{Kind: kind, Value: text}
		}
		return NewUInt32Value(uint32(n)), nil
	case KindFloat32:
		n, err := strconv.ParseFloat(text, 32)
		if err != nil {
			return Value{}, &TypeMismatchError{Kind: kind, Value: text}
		}
		return NewFloat32Value(float32(n)), nil
	case KindFloat64:
		n, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Value{}, &TypeMismatchError{Kind: kind, Value: text}
		}
		return NewFloat64Value(n), nil
	default:
		return Value{}, &TypeMismatchError{Kind: kind, Value: text}
	}
}
