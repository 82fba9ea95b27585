package ast

import (
	"strings"

	"github.com/malphas-lang/malphas-unroll/internal/lexer"
)

// Node represents any AST node with an associated source span.
type Node interface {
	Span() lexer.Span
}

// Expr represents an expression node.
type Expr interface {
	Node
	exprNode()
}

// Stmt represents a statement node inside a block.
type Stmt interface {
	Node
	stmtNode()
}

// Item represents a top-level (or impl-level) item.
type Item interface {
	Node
	itemNode()
}

// TypeExpr represents a type annotation expression.
type TypeExpr interface {
	Node
	typeNode()
}

// node carries the span shared by every AST node.
type node struct {
	span lexer.Span
}

// Span returns the node span.
func (n *node) Span() lexer.Span { return n.span }

// SetSpan updates the node span.
func (n *node) SetSpan(span lexer.Span) { n.span = span }

// File represents a parsed compilation unit.
type File struct {
	Items []Item
	node
}

// NewFile constructs a file node with the provided span.
func NewFile(span lexer.Span) *File {
	return &File{node: node{span}}
}

// Attribute represents an outer attribute `#[...]`. Text holds everything
// between the brackets exactly as written.
type Attribute struct {
	Text string
	node
}

// NewAttribute constructs an attribute node.
func NewAttribute(text string, span lexer.Span) *Attribute {
	return &Attribute{Text: text, node: node{span}}
}

// Name returns the attribute path without arguments (`allow` for `allow(x)`).
func (a *Attribute) Name() string {
	name := a.Text
	if i := strings.IndexAny(name, "(=[{"); i >= 0 {
		name = name[:i]
	}
	return strings.TrimSpace(name)
}

// FnDecl represents a function declaration.
type FnDecl struct {
	Attrs      []*Attribute
	Visibility string   // "", "pub", "pub(crate)", ...
	Qualifiers []string // const, unsafe, ...
	Name       *Ident
	Generics   string // raw `<...>` text, empty when absent
	Receiver   *Receiver
	Params     []*Param
	ReturnType TypeExpr
	Where      string // raw where clause, empty when absent
	Body       *BlockExpr
	node
}

// NewFnDecl constructs a function declaration node.
func NewFnDecl(name *Ident, params []*Param, returnType TypeExpr, body *BlockExpr, span lexer.Span) *FnDecl {
	return &FnDecl{
		Name:       name,
		Params:     params,
		ReturnType: returnType,
		Body:       body,
		node:       node{span},
	}
}

// HasAttr reports whether the function carries an attribute with the given name.
func (d *FnDecl) HasAttr(name string) bool {
	for _, attr := range d.Attrs {
		if attr.Name() == name {
			return true
		}
	}
	return false
}

func (*FnDecl) itemNode() {}

// Receiver represents a method receiver: self, mut self, &self, &'a self or &mut self.
type Receiver struct {
	Ref      bool
	Lifetime string
	Mutable  bool
	node
}

// NewReceiver constructs a receiver node.
func NewReceiver(ref bool, lifetime string, mutable bool, span lexer.Span) *Receiver {
	return &Receiver{Ref: ref, Lifetime: lifetime, Mutable: mutable, node: node{span}}
}

// Param represents a function parameter.
type Param struct {
	Pattern Pattern
	Type    TypeExpr
	node
}

// NewParam constructs a parameter node.
func NewParam(pat Pattern, typ TypeExpr, span lexer.Span) *Param {
	return &Param{Pattern: pat, Type: typ, node: node{span}}
}

// ImplDecl represents an impl block. The header between `impl` and `{` is
// kept verbatim; only the contained items are parsed.
type ImplDecl struct {
	Attrs  []*Attribute
	Header string
	Items  []Item
	node
}

// NewImplDecl constructs an impl block node.
func NewImplDecl(attrs []*Attribute, header string, items []Item, span lexer.Span) *ImplDecl {
	return &ImplDecl{Attrs: attrs, Header: header, Items: items, node: node{span}}
}

func (*ImplDecl) itemNode() {}

// RawItem is an item the tool does not interpret (use, struct, enum, const,
// ...). Text is the exact source text including attributes.
type RawItem struct {
	Text string
	node
}

// NewRawItem constructs a raw item node.
func NewRawItem(text string, span lexer.Span) *RawItem {
	return &RawItem{Text: text, node: node{span}}
}

func (*RawItem) itemNode() {}

// Ident represents an identifier.
type Ident struct {
	Name string
	node
}

// NewIdent constructs an identifier node.
func NewIdent(name string, span lexer.Span) *Ident {
	return &Ident{Name: name, node: node{span}}
}

// exprNode marks Ident as an expression.
func (*Ident) exprNode() {}

// PathSegment is one `::`-separated component of a path, with optional
// generic arguments (`Vec::<T>` or `Vec<T>` in type position).
type PathSegment struct {
	Name *Ident
	Args []TypeExpr
}
