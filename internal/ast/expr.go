package ast

import "github.com/malphas-lang/malphas-unroll/internal/lexer"

// IntegerLit represents an integer literal, suffix included (`4`, `0xff`, `8u32`).
type IntegerLit struct {
	Text string
	node
}

// NewIntegerLit constructs an integer literal node.
func NewIntegerLit(text string, span lexer.Span) *IntegerLit {
	return &IntegerLit{Text: text, node: node{span}}
}

func (*IntegerLit) exprNode() {}

// FloatLit represents a floating point literal.
type FloatLit struct {
	Text string
	node
}

// NewFloatLit constructs a float literal node.
func NewFloatLit(text string, span lexer.Span) *FloatLit {
	return &FloatLit{Text: text, node: node{span}}
}

func (*FloatLit) exprNode() {}

// StringLit represents a string literal; Raw keeps the quotes and escapes.
type StringLit struct {
	Raw   string
	Value string
	node
}

// NewStringLit constructs a string literal node.
func NewStringLit(raw, value string, span lexer.Span) *StringLit {
	return &StringLit{Raw: raw, Value: value, node: node{span}}
}

func (*StringLit) exprNode() {}

// CharLit represents a character literal; Raw keeps the quotes and escapes.
type CharLit struct {
	Raw string
	node
}

// NewCharLit constructs a character literal node.
func NewCharLit(raw string, span lexer.Span) *CharLit {
	return &CharLit{Raw: raw, node: node{span}}
}

func (*CharLit) exprNode() {}

// BoolLit represents `true` or `false`.
type BoolLit struct {
	Value bool
	node
}

// NewBoolLit constructs a boolean literal node.
func NewBoolLit(value bool, span lexer.Span) *BoolLit {
	return &BoolLit{Value: value, node: node{span}}
}

func (*BoolLit) exprNode() {}

// PathExpr represents a multi-segment path (`std::f64::consts::PI`, `Vec::<u8>::new`).
type PathExpr struct {
	Segments []*PathSegment
	node
}

// NewPathExpr constructs a path expression node.
func NewPathExpr(segments []*PathSegment, span lexer.Span) *PathExpr {
	return &PathExpr{Segments: segments, node: node{span}}
}

func (*PathExpr) exprNode() {}

// PrefixExpr represents a unary operator applied to an operand (`-x`, `!x`, `*x`).
type PrefixExpr struct {
	Op   lexer.TokenType
	Expr Expr
	node
}

// NewPrefixExpr constructs a prefix expression node.
func NewPrefixExpr(op lexer.TokenType, expr Expr, span lexer.Span) *PrefixExpr {
	return &PrefixExpr{Op: op, Expr: expr, node: node{span}}
}

func (*PrefixExpr) exprNode() {}

// RefExpr represents `&expr` or `&mut expr`.
type RefExpr struct {
	Mutable bool
	Expr    Expr
	node
}

// NewRefExpr constructs a reference expression node.
func NewRefExpr(mutable bool, expr Expr, span lexer.Span) *RefExpr {
	return &RefExpr{Mutable: mutable, Expr: expr, node: node{span}}
}

func (*RefExpr) exprNode() {}

// InfixExpr represents an infix binary expression.
type InfixExpr struct {
	Op    lexer.TokenType
	Left  Expr
	Right Expr
	node
}

// NewInfixExpr constructs a binary expression node.
func NewInfixExpr(op lexer.TokenType, left, right Expr, span lexer.Span) *InfixExpr {
	return &InfixExpr{Op: op, Left: left, Right: right, node: node{span}}
}

func (*InfixExpr) exprNode() {}

// CastExpr represents `expr as Type`.
type CastExpr struct {
	Expr Expr
	Type TypeExpr
	node
}

// NewCastExpr constructs a cast expression node.
func NewCastExpr(expr Expr, typ TypeExpr, span lexer.Span) *CastExpr {
	return &CastExpr{Expr: expr, Type: typ, node: node{span}}
}

func (*CastExpr) exprNode() {}

// AssignExpr represents plain or compound assignment (`=`, `+=`, ...).
type AssignExpr struct {
	Op     lexer.TokenType
	Target Expr
	Value  Expr
	node
}

// NewAssignExpr constructs an assignment expression node.
func NewAssignExpr(op lexer.TokenType, target, value Expr, span lexer.Span) *AssignExpr {
	return &AssignExpr{Op: op, Target: target, Value: value, node: node{span}}
}

func (*AssignExpr) exprNode() {}

// RangeExpr represents a range expression (`start..end`, `start..=end`).
type RangeExpr struct {
	Start     Expr // Optional (nil if missing, e.g. ..end)
	End       Expr // Optional (nil if missing, e.g. start..)
	Inclusive bool
	node
}

// NewRangeExpr constructs a range expression node.
func NewRangeExpr(start, end Expr, inclusive bool, span lexer.Span) *RangeExpr {
	return &RangeExpr{Start: start, End: end, Inclusive: inclusive, node: node{span}}
}

func (*RangeExpr) exprNode() {}

// CallExpr represents a function call.
type CallExpr struct {
	Callee Expr
	Args   []Expr
	node
}

// NewCallExpr constructs a call expression node.
func NewCallExpr(callee Expr, args []Expr, span lexer.Span) *CallExpr {
	return &CallExpr{Callee: callee, Args: args, node: node{span}}
}

func (*CallExpr) exprNode() {}

// StructLitExpr represents `Path { field: value, short, ..base }`.
type StructLitExpr struct {
	Path   []*PathSegment
	Fields []*FieldInit
	Base   Expr // nil unless `..base` is present
	node
}

// NewStructLitExpr constructs a struct literal node.
func NewStructLitExpr(path []*PathSegment, fields []*FieldInit, base Expr, span lexer.Span) *StructLitExpr {
	return &StructLitExpr{Path: path, Fields: fields, Base: base, node: node{span}}
}

func (*StructLitExpr) exprNode() {}

// FieldInit is one `name: value` entry of a struct literal. Value is nil for
// the shorthand form `name`.
type FieldInit struct {
	Name  *Ident
	Value Expr
	node
}

// NewFieldInit constructs a field initialiser.
func NewFieldInit(name *Ident, value Expr, span lexer.Span) *FieldInit {
	return &FieldInit{Name: name, Value: value, node: node{span}}
}

// MethodCallExpr represents `receiver.method::<T>(args)`.
type MethodCallExpr struct {
	Receiver Expr
	Method   *Ident
	TypeArgs []TypeExpr
	Args     []Expr
	node
}

// NewMethodCallExpr constructs a method call expression node.
func NewMethodCallExpr(receiver Expr, method *Ident, typeArgs []TypeExpr, args []Expr, span lexer.Span) *MethodCallExpr {
	return &MethodCallExpr{Receiver: receiver, Method: method, TypeArgs: typeArgs, Args: args, node: node{span}}
}

func (*MethodCallExpr) exprNode() {}

// FieldExpr represents a field access (`p.x`, `t.0`).
type FieldExpr struct {
	Target Expr
	Field  string
	node
}

// NewFieldExpr constructs a field access node.
func NewFieldExpr(target Expr, field string, span lexer.Span) *FieldExpr {
	return &FieldExpr{Target: target, Field: field, node: node{span}}
}

func (*FieldExpr) exprNode() {}

// IndexExpr represents `target[index]`.
type IndexExpr struct {
	Target Expr
	Index  Expr
	node
}

// NewIndexExpr constructs an index expression node.
func NewIndexExpr(target, index Expr, span lexer.Span) *IndexExpr {
	return &IndexExpr{Target: target, Index: index, node: node{span}}
}

func (*IndexExpr) exprNode() {}

// TryExpr represents the `expr?` operator.
type TryExpr struct {
	Expr Expr
	node
}

// NewTryExpr constructs a try expression node.
func NewTryExpr(expr Expr, span lexer.Span) *TryExpr {
	return &TryExpr{Expr: expr, node: node{span}}
}

func (*TryExpr) exprNode() {}

// ParenExpr represents a parenthesised expression. It is kept in the tree so
// rendering reproduces the original grouping.
type ParenExpr struct {
	Expr Expr
	node
}

// NewParenExpr constructs a parenthesised expression node.
func NewParenExpr(expr Expr, span lexer.Span) *ParenExpr {
	return &ParenExpr{Expr: expr, node: node{span}}
}

func (*ParenExpr) exprNode() {}

// TupleExpr represents `()` or `(a, b, ...)`.
type TupleExpr struct {
	Elems []Expr
	node
}

// NewTupleExpr constructs a tuple expression node.
func NewTupleExpr(elems []Expr, span lexer.Span) *TupleExpr {
	return &TupleExpr{Elems: elems, node: node{span}}
}

func (*TupleExpr) exprNode() {}

// ArrayExpr represents `[a, b, c]`.
type ArrayExpr struct {
	Elems []Expr
	node
}

// NewArrayExpr constructs an array literal node.
func NewArrayExpr(elems []Expr, span lexer.Span) *ArrayExpr {
	return &ArrayExpr{Elems: elems, node: node{span}}
}

func (*ArrayExpr) exprNode() {}

// ArrayRepeatExpr represents `[value; count]`.
type ArrayRepeatExpr struct {
	Value Expr
	Count Expr
	node
}

// NewArrayRepeatExpr constructs an array repeat node.
func NewArrayRepeatExpr(value, count Expr, span lexer.Span) *ArrayRepeatExpr {
	return &ArrayRepeatExpr{Value: value, Count: count, node: node{span}}
}

func (*ArrayRepeatExpr) exprNode() {}

// BlockExpr represents a `{ ... }` block used as an expression. Statement
// order is execution order.
type BlockExpr struct {
	Attrs []*Attribute
	Stmts []Stmt
	node
}

// NewBlockExpr constructs a block expression node.
func NewBlockExpr(stmts []Stmt, span lexer.Span) *BlockExpr {
	return &BlockExpr{Stmts: stmts, node: node{span}}
}

// exprNode marks BlockExpr as an expression.
func (*BlockExpr) exprNode() {}

// UnsafeExpr represents `unsafe { ... }`.
type UnsafeExpr struct {
	Block *BlockExpr
	node
}

// NewUnsafeExpr constructs an unsafe block node.
func NewUnsafeExpr(block *BlockExpr, span lexer.Span) *UnsafeExpr {
	return &UnsafeExpr{Block: block, node: node{span}}
}

func (*UnsafeExpr) exprNode() {}

// IfExpr represents `if cond { ... } [else ...]`. Else is nil, *IfExpr,
// *IfLetExpr or *BlockExpr.
type IfExpr struct {
	Cond Expr
	Then *BlockExpr
	Else Expr
	node
}

// NewIfExpr constructs an if expression node.
func NewIfExpr(cond Expr, then *BlockExpr, els Expr, span lexer.Span) *IfExpr {
	return &IfExpr{Cond: cond, Then: then, Else: els, node: node{span}}
}

func (*IfExpr) exprNode() {}

// IfLetExpr represents `if let pattern = value { ... } [else ...]`.
type IfLetExpr struct {
	Pattern Pattern
	Value   Expr
	Then    *BlockExpr
	Else    Expr
	node
}

// NewIfLetExpr constructs an if-let expression node.
func NewIfLetExpr(pat Pattern, value Expr, then *BlockExpr, els Expr, span lexer.Span) *IfLetExpr {
	return &IfLetExpr{Pattern: pat, Value: value, Then: then, Else: els, node: node{span}}
}

func (*IfLetExpr) exprNode() {}

// ForExpr represents `for pattern in iterable { body }`.
type ForExpr struct {
	Pattern  Pattern
	Iterable Expr
	Body     *BlockExpr
	node
}

// NewForExpr constructs a for loop node.
func NewForExpr(pat Pattern, iterable Expr, body *BlockExpr, span lexer.Span) *ForExpr {
	return &ForExpr{Pattern: pat, Iterable: iterable, Body: body, node: node{span}}
}

func (*ForExpr) exprNode() {}

// WhileExpr represents `while cond { body }`. When Pattern is set the loop
// is `while let Pattern = Cond { body }`.
type WhileExpr struct {
	Pattern Pattern
	Cond    Expr
	Body    *BlockExpr
	node
}

// NewWhileExpr constructs a while loop node.
func NewWhileExpr(pat Pattern, cond Expr, body *BlockExpr, span lexer.Span) *WhileExpr {
	return &WhileExpr{Pattern: pat, Cond: cond, Body: body, node: node{span}}
}

func (*WhileExpr) exprNode() {}

// LoopExpr represents `loop { body }`.
type LoopExpr struct {
	Body *BlockExpr
	node
}

// NewLoopExpr constructs an infinite loop node.
func NewLoopExpr(body *BlockExpr, span lexer.Span) *LoopExpr {
	return &LoopExpr{Body: body, node: node{span}}
}

func (*LoopExpr) exprNode() {}

// MatchExpr represents `match subject { arms }`.
type MatchExpr struct {
	Subject Expr
	Arms    []*MatchArm
	node
}

// NewMatchExpr constructs a match expression node.
func NewMatchExpr(subject Expr, arms []*MatchArm, span lexer.Span) *MatchExpr {
	return &MatchExpr{Subject: subject, Arms: arms, node: node{span}}
}

func (*MatchExpr) exprNode() {}

// MatchArm represents `pattern [if guard] => body`.
type MatchArm struct {
	Pattern Pattern
	Guard   Expr
	Body    Expr
	node
}

// NewMatchArm constructs a match arm node.
func NewMatchArm(pat Pattern, guard, body Expr, span lexer.Span) *MatchArm {
	return &MatchArm{Pattern: pat, Guard: guard, Body: body, node: node{span}}
}

// ClosureExpr represents `[move] |params| [-> Type] body`.
type ClosureExpr struct {
	Move       bool
	Params     []*Param
	ReturnType TypeExpr
	Body       Expr
	node
}

// NewClosureExpr constructs a closure node.
func NewClosureExpr(move bool, params []*Param, ret TypeExpr, body Expr, span lexer.Span) *ClosureExpr {
	return &ClosureExpr{Move: move, Params: params, ReturnType: ret, Body: body, node: node{span}}
}

func (*ClosureExpr) exprNode() {}

// ReturnExpr represents `return [value]`.
type ReturnExpr struct {
	Value Expr
	node
}

// NewReturnExpr constructs a return expression node.
func NewReturnExpr(value Expr, span lexer.Span) *ReturnExpr {
	return &ReturnExpr{Value: value, node: node{span}}
}

func (*ReturnExpr) exprNode() {}

// BreakExpr represents `break [value]`.
type BreakExpr struct {
	Value Expr
	node
}

// NewBreakExpr constructs a break expression node.
func NewBreakExpr(value Expr, span lexer.Span) *BreakExpr {
	return &BreakExpr{Value: value, node: node{span}}
}

func (*BreakExpr) exprNode() {}

// ContinueExpr represents `continue`.
type ContinueExpr struct {
	node
}

// NewContinueExpr constructs a continue expression node.
func NewContinueExpr(span lexer.Span) *ContinueExpr {
	return &ContinueExpr{node: node{span}}
}

func (*ContinueExpr) exprNode() {}

// MacroCallExpr represents `path!(...)`, `path![...]` or `path!{...}`. The
// token body is kept verbatim; Open is the opening delimiter.
type MacroCallExpr struct {
	Path string
	Open lexer.TokenType
	Body string
	node
}

// NewMacroCallExpr constructs a macro invocation node.
func NewMacroCallExpr(path string, open lexer.TokenType, body string, span lexer.Span) *MacroCallExpr {
	return &MacroCallExpr{Path: path, Open: open, Body: body, node: node{span}}
}

func (*MacroCallExpr) exprNode() {}
