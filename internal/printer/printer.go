// Package printer renders Malphas syntax trees back to source text.
//
// Output is canonical rather than faithful: comments are not retained and
// whitespace is normalised. Parentheses survive because the parser keeps
// them as ParenExpr nodes, so printed output re-parses to the same tree.
package printer

import (
	"strings"

	"github.com/malphas-lang/malphas-unroll/internal/ast"
	"github.com/malphas-lang/malphas-unroll/internal/lexer"
)

// DefaultIndent is used when Options.Indent is empty.
const DefaultIndent = "    "

// Options controls printer output.
type Options struct {
	// Indent is the string written once per nesting level.
	Indent string
	// Margin is written at the start of every line the printer begins,
	// ahead of the nesting indent. Newlines inside literals and raw items
	// are copied as they are.
	Margin string
}

// Printer renders syntax trees.
type Printer struct {
	options Options

	buf    strings.Builder
	indent int
}

// New creates a new printer.
func New(options Options) *Printer {
	if options.Indent == "" {
		options.Indent = DefaultIndent
	}
	return &Printer{options: options}
}

// Fn renders a function declaration, attributes included.
func (p *Printer) Fn(fn *ast.FnDecl) string {
	p.buf.Reset()
	p.printFnDecl(fn)
	return p.buf.String()
}

// Item renders any item.
func (p *Printer) Item(item ast.Item) string {
	p.buf.Reset()
	p.printItem(item)
	return p.buf.String()
}

// Block renders a block expression.
func (p *Printer) Block(block *ast.BlockExpr) string {
	p.buf.Reset()
	p.printBlock(block)
	return p.buf.String()
}

// Stmt renders a single statement.
func (p *Printer) Stmt(stmt ast.Stmt) string {
	p.buf.Reset()
	p.printStmt(stmt)
	return p.buf.String()
}

// Expr renders a single expression.
func (p *Printer) Expr(expr ast.Expr) string {
	p.buf.Reset()
	p.printExpr(expr)
	return p.buf.String()
}

// File renders every item of a file separated by blank lines.
func (p *Printer) File(file *ast.File) string {
	p.buf.Reset()
	for i, item := range file.Items {
		if i > 0 {
			p.print("\n")
			p.printNewline()
		}
		p.printItem(item)
	}
	p.print("\n")
	return p.buf.String()
}

// Fn renders fn with default options.
func Fn(fn *ast.FnDecl) string { return New(Options{}).Fn(fn) }

// Stmt renders stmt with default options.
func Stmt(stmt ast.Stmt) string { return New(Options{}).Stmt(stmt) }

// Expr renders expr with default options.
func Expr(expr ast.Expr) string { return New(Options{}).Expr(expr) }

// ----------------------------------------------------------------------------
// Output Helpers
// ----------------------------------------------------------------------------

func (p *Printer) print(s string) {
	p.buf.WriteString(s)
}

func (p *Printer) printNewline() {
	p.buf.WriteByte('\n')
	p.buf.WriteString(p.options.Margin)
	for i := 0; i < p.indent; i++ {
		p.buf.WriteString(p.options.Indent)
	}
}

// ----------------------------------------------------------------------------
// Item Printing
// ----------------------------------------------------------------------------

func (p *Printer) printItem(item ast.Item) {
	switch it := item.(type) {
	case *ast.FnDecl:
		p.printFnDecl(it)
	case *ast.ImplDecl:
		p.printAttrs(it.Attrs)
		p.print("impl")
		if it.Header != "" {
			p.print(" " + it.Header)
		}
		p.print(" {")
		p.indent++
		for i, inner := range it.Items {
			if i > 0 {
				p.print("\n")
			}
			p.printNewline()
			p.printItem(inner)
		}
		p.indent--
		if len(it.Items) > 0 {
			p.printNewline()
		}
		p.print("}")
	case *ast.RawItem:
		p.print(it.Text)
	}
}

func (p *Printer) printAttrs(attrs []*ast.Attribute) {
	for _, attr := range attrs {
		p.print("#[" + attr.Text + "]")
		p.printNewline()
	}
}

func (p *Printer) printFnDecl(fn *ast.FnDecl) {
	p.printAttrs(fn.Attrs)
	if fn.Visibility != "" {
		p.print(fn.Visibility + " ")
	}
	for _, q := range fn.Qualifiers {
		p.print(q + " ")
	}
	p.print("fn ")
	p.print(fn.Name.Name)
	p.print(fn.Generics)
	p.print("(")
	first := true
	if fn.Receiver != nil {
		p.printReceiver(fn.Receiver)
		first = false
	}
	for _, param := range fn.Params {
		if !first {
			p.print(", ")
		}
		first = false
		p.printParam(param)
	}
	p.print(")")
	if fn.ReturnType != nil {
		p.print(" -> ")
		p.printType(fn.ReturnType)
	}
	if fn.Where != "" {
		p.print(" " + fn.Where)
	}
	if fn.Body == nil {
		p.print(";")
		return
	}
	p.print(" ")
	p.printBlock(fn.Body)
}

func (p *Printer) printReceiver(r *ast.Receiver) {
	if r.Ref {
		p.print("&")
		if r.Lifetime != "" {
			p.print(r.Lifetime + " ")
		}
	}
	if r.Mutable {
		p.print("mut ")
	}
	p.print("self")
}

func (p *Printer) printParam(param *ast.Param) {
	p.printPattern(param.Pattern)
	if param.Type != nil {
		p.print(": ")
		p.printType(param.Type)
	}
}

// ----------------------------------------------------------------------------
// Statement Printing
// ----------------------------------------------------------------------------

func (p *Printer) printBlock(block *ast.BlockExpr) {
	p.printAttrs(block.Attrs)
	p.printBraces(block)
}

// printBraces prints the statements of a block between braces, leaving out
// its attributes.
func (p *Printer) printBraces(block *ast.BlockExpr) {
	if len(block.Stmts) == 0 {
		p.print("{}")
		return
	}
	p.print("{")
	p.indent++
	for _, stmt := range block.Stmts {
		p.printNewline()
		p.printStmt(stmt)
	}
	p.indent--
	p.printNewline()
	p.print("}")
}

func (p *Printer) printStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		p.print("let ")
		p.printPattern(s.Pattern)
		if s.Type != nil {
			p.print(": ")
			p.printType(s.Type)
		}
		if s.Value != nil {
			p.print(" = ")
			p.printExpr(s.Value)
		}
		p.print(";")

	case *ast.ConstStmt:
		p.print("const ")
		p.print(s.Name.Name)
		p.print(": ")
		p.printType(s.Type)
		p.print(" = ")
		p.printExpr(s.Value)
		p.print(";")

	case *ast.ExprStmt:
		p.printExpr(s.Expr)

	case *ast.SemiStmt:
		p.printExpr(s.Expr)
		p.print(";")

	case *ast.ItemStmt:
		p.printItem(s.Item)
	}
}

// ----------------------------------------------------------------------------
// Expression Printing
// ----------------------------------------------------------------------------

func (p *Printer) printExpr(expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.Ident:
		p.print(e.Name)

	case *ast.IntegerLit:
		p.print(e.Text)

	case *ast.FloatLit:
		p.print(e.Text)

	case *ast.StringLit:
		p.print(e.Raw)

	case *ast.CharLit:
		p.print(e.Raw)

	case *ast.BoolLit:
		if e.Value {
			p.print("true")
		} else {
			p.print("false")
		}

	case *ast.PathExpr:
		p.printPath(e.Segments, true)

	case *ast.PrefixExpr:
		p.print(string(e.Op))
		p.printExpr(e.Expr)

	case *ast.RefExpr:
		p.print("&")
		if e.Mutable {
			p.print("mut ")
		}
		p.printExpr(e.Expr)

	case *ast.InfixExpr:
		p.printExpr(e.Left)
		p.print(" " + string(e.Op) + " ")
		p.printExpr(e.Right)

	case *ast.CastExpr:
		p.printExpr(e.Expr)
		p.print(" as ")
		p.printType(e.Type)

	case *ast.AssignExpr:
		p.printExpr(e.Target)
		p.print(" " + string(e.Op) + " ")
		p.printExpr(e.Value)

	case *ast.RangeExpr:
		if e.Start != nil {
			p.printExpr(e.Start)
		}
		if e.Inclusive {
			p.print("..=")
		} else {
			p.print("..")
		}
		if e.End != nil {
			p.printExpr(e.End)
		}

	case *ast.CallExpr:
		p.printExpr(e.Callee)
		p.printArgs(e.Args)

	case *ast.StructLitExpr:
		p.printPath(e.Path, true)
		p.print(" {")
		for i, field := range e.Fields {
			if i > 0 {
				p.print(",")
			}
			p.print(" " + field.Name.Name)
			if field.Value != nil {
				p.print(": ")
				p.printExpr(field.Value)
			}
		}
		if e.Base != nil {
			if len(e.Fields) > 0 {
				p.print(",")
			}
			p.print(" ..")
			p.printExpr(e.Base)
		}
		p.print(" }")

	case *ast.MethodCallExpr:
		p.printExpr(e.Receiver)
		p.print(".")
		p.print(e.Method.Name)
		if e.TypeArgs != nil {
			p.print("::")
			p.printGenericArgs(e.TypeArgs)
		}
		p.printArgs(e.Args)

	case *ast.FieldExpr:
		p.printExpr(e.Target)
		p.print(".")
		p.print(e.Field)

	case *ast.IndexExpr:
		p.printExpr(e.Target)
		p.print("[")
		p.printExpr(e.Index)
		p.print("]")

	case *ast.TryExpr:
		p.printExpr(e.Expr)
		p.print("?")

	case *ast.ParenExpr:
		p.print("(")
		p.printExpr(e.Expr)
		p.print(")")

	case *ast.TupleExpr:
		p.print("(")
		p.printExprList(e.Elems)
		if len(e.Elems) == 1 {
			p.print(",")
		}
		p.print(")")

	case *ast.ArrayExpr:
		p.print("[")
		p.printExprList(e.Elems)
		p.print("]")

	case *ast.ArrayRepeatExpr:
		p.print("[")
		p.printExpr(e.Value)
		p.print("; ")
		p.printExpr(e.Count)
		p.print("]")

	case *ast.BlockExpr:
		p.printBlock(e)

	case *ast.UnsafeExpr:
		p.printAttrs(e.Block.Attrs)
		p.print("unsafe ")
		p.printBraces(e.Block)

	case *ast.IfExpr:
		p.print("if ")
		p.printExpr(e.Cond)
		p.print(" ")
		p.printBlock(e.Then)
		p.printElse(e.Else)

	case *ast.IfLetExpr:
		p.print("if let ")
		p.printPattern(e.Pattern)
		p.print(" = ")
		p.printExpr(e.Value)
		p.print(" ")
		p.printBlock(e.Then)
		p.printElse(e.Else)

	case *ast.ForExpr:
		p.print("for ")
		p.printPattern(e.Pattern)
		p.print(" in ")
		p.printExpr(e.Iterable)
		p.print(" ")
		p.printBlock(e.Body)

	case *ast.WhileExpr:
		p.print("while ")
		if e.Pattern != nil {
			p.print("let ")
			p.printPattern(e.Pattern)
			p.print(" = ")
		}
		p.printExpr(e.Cond)
		p.print(" ")
		p.printBlock(e.Body)

	case *ast.LoopExpr:
		p.print("loop ")
		p.printBlock(e.Body)

	case *ast.MatchExpr:
		p.printMatch(e)

	case *ast.ClosureExpr:
		if e.Move {
			p.print("move ")
		}
		if len(e.Params) == 0 {
			p.print("||")
		} else {
			p.print("|")
			for i, param := range e.Params {
				if i > 0 {
					p.print(", ")
				}
				p.printParam(param)
			}
			p.print("|")
		}
		if e.ReturnType != nil {
			p.print(" -> ")
			p.printType(e.ReturnType)
		}
		p.print(" ")
		p.printExpr(e.Body)

	case *ast.ReturnExpr:
		p.print("return")
		if e.Value != nil {
			p.print(" ")
			p.printExpr(e.Value)
		}

	case *ast.BreakExpr:
		p.print("break")
		if e.Value != nil {
			p.print(" ")
			p.printExpr(e.Value)
		}

	case *ast.ContinueExpr:
		p.print("continue")

	case *ast.MacroCallExpr:
		p.print(e.Path)
		p.print("!")
		p.print(string(e.Open))
		p.print(e.Body)
		p.print(string(closingDelim(e.Open)))
	}
}

func (p *Printer) printElse(els ast.Expr) {
	if els == nil {
		return
	}
	p.print(" else ")
	p.printExpr(els)
}

func (p *Printer) printMatch(m *ast.MatchExpr) {
	p.print("match ")
	p.printExpr(m.Subject)
	if len(m.Arms) == 0 {
		p.print(" {}")
		return
	}
	p.print(" {")
	p.indent++
	for _, arm := range m.Arms {
		p.printNewline()
		p.printPattern(arm.Pattern)
		if arm.Guard != nil {
			p.print(" if ")
			p.printExpr(arm.Guard)
		}
		p.print(" => ")
		p.printExpr(arm.Body)
		if _, ok := arm.Body.(*ast.BlockExpr); !ok {
			p.print(",")
		}
	}
	p.indent--
	p.printNewline()
	p.print("}")
}

func (p *Printer) printArgs(args []ast.Expr) {
	p.print("(")
	p.printExprList(args)
	p.print(")")
}

func (p *Printer) printExprList(exprs []ast.Expr) {
	for i, e := range exprs {
		if i > 0 {
			p.print(", ")
		}
		p.printExpr(e)
	}
}

func (p *Printer) printPath(segments []*ast.PathSegment, turbofish bool) {
	for i, seg := range segments {
		if i > 0 {
			p.print("::")
		}
		p.print(seg.Name.Name)
		if seg.Args != nil {
			if turbofish {
				p.print("::")
			}
			p.printGenericArgs(seg.Args)
		}
	}
}

func (p *Printer) printGenericArgs(args []ast.TypeExpr) {
	p.print("<")
	for i, arg := range args {
		if i > 0 {
			p.print(", ")
		}
		p.printType(arg)
	}
	p.print(">")
}

func closingDelim(open lexer.TokenType) lexer.TokenType {
	switch open {
	case lexer.LPAREN:
		return lexer.RPAREN
	case lexer.LBRACKET:
		return lexer.RBRACKET
	default:
		return lexer.RBRACE
	}
}

// ----------------------------------------------------------------------------
// Pattern Printing
// ----------------------------------------------------------------------------

func (p *Printer) printPattern(pat ast.Pattern) {
	switch pt := pat.(type) {
	case *ast.PatternWild:
		p.print("_")

	case *ast.PatternIdent:
		p.printBindingMode(pt.Mode, pt.Mutable)
		p.print(pt.Name.Name)

	case *ast.PatternBinding:
		p.printBindingMode(pt.Mode, pt.Mutable)
		p.print(pt.Name.Name)
		p.print(" @ ")
		p.printPattern(pt.Pattern)

	case *ast.PatternLiteral:
		p.printExpr(pt.Expr)

	case *ast.PatternRange:
		p.printExpr(pt.Start)
		if pt.Inclusive {
			p.print("..=")
		} else {
			p.print("..")
		}
		p.printExpr(pt.End)

	case *ast.PatternPath:
		p.printIdentPath(pt.Segments)

	case *ast.PatternTuple:
		p.print("(")
		p.printPatternList(pt.Elements)
		if len(pt.Elements) == 1 {
			p.print(",")
		}
		p.print(")")

	case *ast.PatternTupleStruct:
		p.printIdentPath(pt.Path.Segments)
		p.print("(")
		p.printPatternList(pt.Elements)
		p.print(")")

	case *ast.PatternStruct:
		p.printIdentPath(pt.Path.Segments)
		p.print(" {")
		for i, field := range pt.Fields {
			if i > 0 {
				p.print(",")
			}
			p.print(" ")
			if !field.Shorthand {
				p.print(field.Name.Name + ": ")
			}
			p.printPattern(field.Pattern)
		}
		if pt.Rest {
			if len(pt.Fields) > 0 {
				p.print(",")
			}
			p.print(" ..")
		}
		p.print(" }")

	case *ast.PatternSlice:
		p.print("[")
		p.printPatternList(pt.Elements)
		p.print("]")

	case *ast.PatternReference:
		p.print("&")
		if pt.Mutable {
			p.print("mut ")
		}
		p.printPattern(pt.Pattern)

	case *ast.PatternOr:
		for i, alt := range pt.Patterns {
			if i > 0 {
				p.print(" | ")
			}
			p.printPattern(alt)
		}

	case *ast.PatternRest:
		p.print("..")
	}
}

func (p *Printer) printBindingMode(mode ast.BindingMode, mutable bool) {
	switch mode {
	case ast.BindingModeRef:
		p.print("ref ")
	case ast.BindingModeRefMut:
		p.print("ref mut ")
	}
	if mutable {
		p.print("mut ")
	}
}

func (p *Printer) printIdentPath(segments []*ast.Ident) {
	for i, seg := range segments {
		if i > 0 {
			p.print("::")
		}
		p.print(seg.Name)
	}
}

func (p *Printer) printPatternList(pats []ast.Pattern) {
	for i, pat := range pats {
		if i > 0 {
			p.print(", ")
		}
		p.printPattern(pat)
	}
}

// ----------------------------------------------------------------------------
// Type Printing
// ----------------------------------------------------------------------------

func (p *Printer) printType(t ast.TypeExpr) {
	switch ty := t.(type) {
	case *ast.PathType:
		p.printPath(ty.Segments, false)

	case *ast.RefType:
		p.print("&")
		if ty.Lifetime != "" {
			p.print(ty.Lifetime + " ")
		}
		if ty.Mutable {
			p.print("mut ")
		}
		p.printType(ty.Elem)

	case *ast.SliceType:
		p.print("[")
		p.printType(ty.Elem)
		p.print("]")

	case *ast.ArrayType:
		p.print("[")
		p.printType(ty.Elem)
		p.print("; ")
		p.printExpr(ty.Len)
		p.print("]")

	case *ast.TupleType:
		p.print("(")
		for i, elem := range ty.Elems {
			if i > 0 {
				p.print(", ")
			}
			p.printType(elem)
		}
		if len(ty.Elems) == 1 {
			p.print(",")
		}
		p.print(")")

	case *ast.Lifetime:
		p.print(ty.Name)
	}
}
