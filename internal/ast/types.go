package ast

import "github.com/malphas-lang/malphas-unroll/internal/lexer"

// PathType represents a named type, possibly generic (`u32`, `Vec<T>`, `std::io::Result<()>`).
type PathType struct {
	Segments []*PathSegment
	node
}

// NewPathType constructs a path type node.
func NewPathType(segments []*PathSegment, span lexer.Span) *PathType {
	return &PathType{Segments: segments, node: node{span}}
}

func (*PathType) typeNode() {}

// RefType represents `&T`, `&mut T` or `&'a T`.
type RefType struct {
	Lifetime string
	Mutable  bool
	Elem     TypeExpr
	node
}

// NewRefType constructs a reference type node.
func NewRefType(lifetime string, mutable bool, elem TypeExpr, span lexer.Span) *RefType {
	return &RefType{Lifetime: lifetime, Mutable: mutable, Elem: elem, node: node{span}}
}

func (*RefType) typeNode() {}

// SliceType represents `[T]`.
type SliceType struct {
	Elem TypeExpr
	node
}

// NewSliceType constructs a slice type node.
func NewSliceType(elem TypeExpr, span lexer.Span) *SliceType {
	return &SliceType{Elem: elem, node: node{span}}
}

func (*SliceType) typeNode() {}

// ArrayType represents `[T; N]`.
type ArrayType struct {
	Elem TypeExpr
	Len  Expr
	node
}

// NewArrayType constructs a fixed-size array type node.
func NewArrayType(elem TypeExpr, length Expr, span lexer.Span) *ArrayType {
	return &ArrayType{Elem: elem, Len: length, node: node{span}}
}

func (*ArrayType) typeNode() {}

// TupleType represents `()` or `(A, B)`.
type TupleType struct {
	Elems []TypeExpr
	node
}

// NewTupleType constructs a tuple type node.
func NewTupleType(elems []TypeExpr, span lexer.Span) *TupleType {
	return &TupleType{Elems: elems, node: node{span}}
}

func (*TupleType) typeNode() {}

// Lifetime represents a generic lifetime argument (`'a`). It only appears in
// generic argument lists.
type Lifetime struct {
	Name string
	node
}

// NewLifetime constructs a lifetime node.
func NewLifetime(name string, span lexer.Span) *Lifetime {
	return &Lifetime{Name: name, node: node{span}}
}

func (*Lifetime) typeNode() {}
