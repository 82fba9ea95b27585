package ast

import "github.com/malphas-lang/malphas-unroll/internal/lexer"

// LetStmt represents `let pattern [: Type] [= value];`.
type LetStmt struct {
	Pattern Pattern
	Type    TypeExpr
	Value   Expr
	node
}

// NewLetStmt constructs a let statement node.
func NewLetStmt(pat Pattern, typ TypeExpr, value Expr, span lexer.Span) *LetStmt {
	return &LetStmt{Pattern: pat, Type: typ, Value: value, node: node{span}}
}

// stmtNode marks LetStmt as a statement.
func (*LetStmt) stmtNode() {}

// ConstStmt represents a block-local compile-time constant `const NAME: Type = value;`.
type ConstStmt struct {
	Name  *Ident
	Type  TypeExpr
	Value Expr
	node
}

// NewConstStmt constructs a const statement node.
func NewConstStmt(name *Ident, typ TypeExpr, value Expr, span lexer.Span) *ConstStmt {
	return &ConstStmt{Name: name, Type: typ, Value: value, node: node{span}}
}

// stmtNode marks ConstStmt as a statement.
func (*ConstStmt) stmtNode() {}

// ExprStmt is an expression with no terminator: a block-like expression in
// statement position, or the value of the enclosing block.
type ExprStmt struct {
	Expr Expr
	node
}

// NewExprStmt constructs an unterminated expression statement.
func NewExprStmt(expr Expr, span lexer.Span) *ExprStmt {
	return &ExprStmt{Expr: expr, node: node{span}}
}

// stmtNode marks ExprStmt as a statement.
func (*ExprStmt) stmtNode() {}

// SemiStmt is an expression followed by `;`.
type SemiStmt struct {
	Expr Expr
	node
}

// NewSemiStmt constructs a terminated expression statement.
func NewSemiStmt(expr Expr, span lexer.Span) *SemiStmt {
	return &SemiStmt{Expr: expr, node: node{span}}
}

// stmtNode marks SemiStmt as a statement.
func (*SemiStmt) stmtNode() {}

// ItemStmt is an item declared inside a block (a nested fn, use, struct, ...).
type ItemStmt struct {
	Item Item
	node
}

// NewItemStmt constructs an item statement node.
func NewItemStmt(item Item, span lexer.Span) *ItemStmt {
	return &ItemStmt{Item: item, node: node{span}}
}

// stmtNode marks ItemStmt as a statement.
func (*ItemStmt) stmtNode() {}
