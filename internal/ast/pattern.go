package ast

import "github.com/malphas-lang/malphas-unroll/internal/lexer"

// Pattern represents a binding or match pattern node.
type Pattern interface {
	Node
	patternNode()
}

// BindingMode represents how a binding captures the matched value.
type BindingMode int

const (
	// BindingModeMove captures by move (default).
	BindingModeMove BindingMode = iota
	// BindingModeRef captures by shared reference (ref).
	BindingModeRef
	// BindingModeRefMut captures by mutable reference (ref mut).
	BindingModeRefMut
)

// PatternWild represents the `_` wildcard.
type PatternWild struct {
	node
}

// NewPatternWild constructs a wildcard pattern.
func NewPatternWild(span lexer.Span) *PatternWild {
	return &PatternWild{node: node{span}}
}

func (*PatternWild) patternNode() {}

// PatternIdent represents an identifier binding (`foo`, `mut foo`, `ref foo`).
type PatternIdent struct {
	Name    *Ident
	Mode    BindingMode
	Mutable bool
	node
}

// NewPatternIdent constructs an identifier pattern.
func NewPatternIdent(name *Ident, mode BindingMode, mutable bool, span lexer.Span) *PatternIdent {
	return &PatternIdent{
		Name:    name,
		Mode:    mode,
		Mutable: mutable,
		node:    node{span},
	}
}

// IsPlain reports whether the pattern is a bare name with no ref or mut.
func (p *PatternIdent) IsPlain() bool {
	return p.Mode == BindingModeMove && !p.Mutable
}

func (*PatternIdent) patternNode() {}

// PatternBinding represents `name @ subpattern`.
type PatternBinding struct {
	Name    *Ident
	Mode    BindingMode
	Mutable bool
	Pattern Pattern
	node
}

// NewPatternBinding constructs a binding pattern.
func NewPatternBinding(name *Ident, mode BindingMode, mutable bool, pat Pattern, span lexer.Span) *PatternBinding {
	return &PatternBinding{
		Name:    name,
		Mode:    mode,
		Mutable: mutable,
		Pattern: pat,
		node:    node{span},
	}
}

func (*PatternBinding) patternNode() {}

// PatternLiteral wraps a literal expression (`1`, `-1`, `"x"`, `true`).
type PatternLiteral struct {
	Expr Expr
	node
}

// NewPatternLiteral constructs a literal pattern.
func NewPatternLiteral(expr Expr, span lexer.Span) *PatternLiteral {
	return &PatternLiteral{Expr: expr, node: node{span}}
}

func (*PatternLiteral) patternNode() {}

// PatternRange represents `start..=end` (or `start..end`) in patterns.
type PatternRange struct {
	Start     Expr
	End       Expr
	Inclusive bool
	node
}

// NewPatternRange constructs a range pattern.
func NewPatternRange(start, end Expr, inclusive bool, span lexer.Span) *PatternRange {
	return &PatternRange{Start: start, End: end, Inclusive: inclusive, node: node{span}}
}

func (*PatternRange) patternNode() {}

// PatternPath represents a constant or unit constructor path (`None`, `Foo::Bar`).
type PatternPath struct {
	Segments []*Ident
	node
}

// NewPatternPath constructs a path pattern.
func NewPatternPath(segments []*Ident, span lexer.Span) *PatternPath {
	return &PatternPath{Segments: segments, node: node{span}}
}

func (*PatternPath) patternNode() {}

// PatternTuple represents `(a, b, ..)`.
type PatternTuple struct {
	Elements []Pattern
	node
}

// NewPatternTuple constructs a tuple pattern.
func NewPatternTuple(elements []Pattern, span lexer.Span) *PatternTuple {
	return &PatternTuple{Elements: elements, node: node{span}}
}

func (*PatternTuple) patternNode() {}

// PatternTupleStruct represents `Some(x)` or `Foo::Bar(a, b)`.
type PatternTupleStruct struct {
	Path     *PatternPath
	Elements []Pattern
	node
}

// NewPatternTupleStruct constructs a tuple-struct pattern.
func NewPatternTupleStruct(path *PatternPath, elements []Pattern, span lexer.Span) *PatternTupleStruct {
	return &PatternTupleStruct{Path: path, Elements: elements, node: node{span}}
}

func (*PatternTupleStruct) patternNode() {}

// PatternStruct represents `Point { x, y: 0, .. }`.
type PatternStruct struct {
	Path   *PatternPath
	Fields []*FieldPattern
	Rest   bool
	node
}

// NewPatternStruct constructs a struct pattern.
func NewPatternStruct(path *PatternPath, fields []*FieldPattern, rest bool, span lexer.Span) *PatternStruct {
	return &PatternStruct{Path: path, Fields: fields, Rest: rest, node: node{span}}
}

func (*PatternStruct) patternNode() {}

// FieldPattern is one field of a struct pattern. Shorthand fields (`x`,
// `ref mut x`) carry the binding in Pattern and print without `name:`.
type FieldPattern struct {
	Name      *Ident
	Pattern   Pattern
	Shorthand bool
	node
}

// NewFieldPattern constructs a struct pattern field.
func NewFieldPattern(name *Ident, pat Pattern, shorthand bool, span lexer.Span) *FieldPattern {
	return &FieldPattern{Name: name, Pattern: pat, Shorthand: shorthand, node: node{span}}
}

// PatternSlice represents `[a, b, ..]`.
type PatternSlice struct {
	Elements []Pattern
	node
}

// NewPatternSlice constructs a slice pattern.
func NewPatternSlice(elements []Pattern, span lexer.Span) *PatternSlice {
	return &PatternSlice{Elements: elements, node: node{span}}
}

func (*PatternSlice) patternNode() {}

// PatternReference represents `&pat` or `&mut pat`.
type PatternReference struct {
	Mutable bool
	Pattern Pattern
	node
}

// NewPatternReference constructs a reference pattern.
func NewPatternReference(mutable bool, pat Pattern, span lexer.Span) *PatternReference {
	return &PatternReference{Mutable: mutable, Pattern: pat, node: node{span}}
}

func (*PatternReference) patternNode() {}

// PatternOr represents `a | b | c`.
type PatternOr struct {
	Patterns []Pattern
	node
}

// NewPatternOr constructs an or-pattern.
func NewPatternOr(patterns []Pattern, span lexer.Span) *PatternOr {
	return &PatternOr{Patterns: patterns, node: node{span}}
}

func (*PatternOr) patternNode() {}

// PatternRest represents `..` inside tuple and slice patterns.
type PatternRest struct {
	node
}

// NewPatternRest constructs a rest pattern.
func NewPatternRest(span lexer.Span) *PatternRest {
	return &PatternRest{node: node{span}}
}

func (*PatternRest) patternNode() {}
