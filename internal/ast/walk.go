package ast

// Walk traverses the AST starting from node, calling fn for each node.
// If fn returns false, Walk stops traversing that branch.
func Walk(node Node, fn func(Node) bool) {
	if node == nil || !fn(node) {
		return
	}

	switch n := node.(type) {
	case *File:
		for _, item := range n.Items {
			Walk(item, fn)
		}

	case *FnDecl:
		for _, attr := range n.Attrs {
			Walk(attr, fn)
		}
		if n.Name != nil {
			Walk(n.Name, fn)
		}
		if n.Receiver != nil {
			Walk(n.Receiver, fn)
		}
		for _, param := range n.Params {
			Walk(param, fn)
		}
		if n.ReturnType != nil {
			Walk(n.ReturnType, fn)
		}
		if n.Body != nil {
			Walk(n.Body, fn)
		}

	case *ImplDecl:
		for _, attr := range n.Attrs {
			Walk(attr, fn)
		}
		for _, item := range n.Items {
			Walk(item, fn)
		}

	case *Param:
		walkPattern(n.Pattern, fn)
		walkType(n.Type, fn)

	// Statements
	case *LetStmt:
		walkPattern(n.Pattern, fn)
		walkType(n.Type, fn)
		walkExpr(n.Value, fn)

	case *ConstStmt:
		Walk(n.Name, fn)
		walkType(n.Type, fn)
		walkExpr(n.Value, fn)

	case *ExprStmt:
		walkExpr(n.Expr, fn)

	case *SemiStmt:
		walkExpr(n.Expr, fn)

	case *ItemStmt:
		if n.Item != nil {
			Walk(n.Item, fn)
		}

	// Expressions
	case *PathExpr:
		walkSegments(n.Segments, fn)

	case *PrefixExpr:
		walkExpr(n.Expr, fn)

	case *RefExpr:
		walkExpr(n.Expr, fn)

	case *InfixExpr:
		walkExpr(n.Left, fn)
		walkExpr(n.Right, fn)

	case *CastExpr:
		walkExpr(n.Expr, fn)
		walkType(n.Type, fn)

	case *AssignExpr:
		walkExpr(n.Target, fn)
		walkExpr(n.Value, fn)

	case *RangeExpr:
		walkExpr(n.Start, fn)
		walkExpr(n.End, fn)

	case *CallExpr:
		walkExpr(n.Callee, fn)
		walkExprs(n.Args, fn)

	case *StructLitExpr:
		walkSegments(n.Path, fn)
		for _, field := range n.Fields {
			Walk(field, fn)
		}
		walkExpr(n.Base, fn)

	case *FieldInit:
		Walk(n.Name, fn)
		walkExpr(n.Value, fn)

	case *MethodCallExpr:
		walkExpr(n.Receiver, fn)
		Walk(n.Method, fn)
		for _, arg := range n.TypeArgs {
			walkType(arg, fn)
		}
		walkExprs(n.Args, fn)

	case *FieldExpr:
		walkExpr(n.Target, fn)

	case *IndexExpr:
		walkExpr(n.Target, fn)
		walkExpr(n.Index, fn)

	case *TryExpr:
		walkExpr(n.Expr, fn)

	case *ParenExpr:
		walkExpr(n.Expr, fn)

	case *TupleExpr:
		walkExprs(n.Elems, fn)

	case *ArrayExpr:
		walkExprs(n.Elems, fn)

	case *ArrayRepeatExpr:
		walkExpr(n.Value, fn)
		walkExpr(n.Count, fn)

	case *BlockExpr:
		for _, attr := range n.Attrs {
			Walk(attr, fn)
		}
		for _, stmt := range n.Stmts {
			Walk(stmt, fn)
		}

	case *UnsafeExpr:
		walkBlock(n.Block, fn)

	case *IfExpr:
		walkExpr(n.Cond, fn)
		walkBlock(n.Then, fn)
		walkExpr(n.Else, fn)

	case *IfLetExpr:
		walkPattern(n.Pattern, fn)
		walkExpr(n.Value, fn)
		walkBlock(n.Then, fn)
		walkExpr(n.Else, fn)

	case *ForExpr:
		walkPattern(n.Pattern, fn)
		walkExpr(n.Iterable, fn)
		walkBlock(n.Body, fn)

	case *WhileExpr:
		walkPattern(n.Pattern, fn)
		walkExpr(n.Cond, fn)
		walkBlock(n.Body, fn)

	case *LoopExpr:
		walkBlock(n.Body, fn)

	case *MatchExpr:
		walkExpr(n.Subject, fn)
		for _, arm := range n.Arms {
			Walk(arm, fn)
		}

	case *MatchArm:
		walkPattern(n.Pattern, fn)
		walkExpr(n.Guard, fn)
		walkExpr(n.Body, fn)

	case *ClosureExpr:
		for _, param := range n.Params {
			Walk(param, fn)
		}
		walkType(n.ReturnType, fn)
		walkExpr(n.Body, fn)

	case *ReturnExpr:
		walkExpr(n.Value, fn)

	case *BreakExpr:
		walkExpr(n.Value, fn)

	// Patterns
	case *PatternIdent:
		Walk(n.Name, fn)

	case *PatternBinding:
		Walk(n.Name, fn)
		walkPattern(n.Pattern, fn)

	case *PatternLiteral:
		walkExpr(n.Expr, fn)

	case *PatternRange:
		walkExpr(n.Start, fn)
		walkExpr(n.End, fn)

	case *PatternPath:
		for _, seg := range n.Segments {
			Walk(seg, fn)
		}

	case *PatternTuple:
		walkPatterns(n.Elements, fn)

	case *PatternTupleStruct:
		if n.Path != nil {
			Walk(n.Path, fn)
		}
		walkPatterns(n.Elements, fn)

	case *PatternStruct:
		if n.Path != nil {
			Walk(n.Path, fn)
		}
		for _, field := range n.Fields {
			Walk(field, fn)
		}

	case *FieldPattern:
		if !n.Shorthand {
			Walk(n.Name, fn)
		}
		walkPattern(n.Pattern, fn)

	case *PatternSlice:
		walkPatterns(n.Elements, fn)

	case *PatternReference:
		walkPattern(n.Pattern, fn)

	case *PatternOr:
		walkPatterns(n.Patterns, fn)

	// Types
	case *PathType:
		walkSegments(n.Segments, fn)

	case *RefType:
		walkType(n.Elem, fn)

	case *SliceType:
		walkType(n.Elem, fn)

	case *ArrayType:
		walkType(n.Elem, fn)
		walkExpr(n.Len, fn)

	case *TupleType:
		for _, elem := range n.Elems {
			walkType(elem, fn)
		}
	}
}

func walkExpr(e Expr, fn func(Node) bool) {
	if e != nil {
		Walk(e, fn)
	}
}

func walkExprs(exprs []Expr, fn func(Node) bool) {
	for _, e := range exprs {
		walkExpr(e, fn)
	}
}

func walkBlock(b *BlockExpr, fn func(Node) bool) {
	if b != nil {
		Walk(b, fn)
	}
}

func walkPattern(p Pattern, fn func(Node) bool) {
	if p != nil {
		Walk(p, fn)
	}
}

func walkPatterns(pats []Pattern, fn func(Node) bool) {
	for _, p := range pats {
		walkPattern(p, fn)
	}
}

func walkType(t TypeExpr, fn func(Node) bool) {
	if t != nil {
		Walk(t, fn)
	}
}

func walkSegments(segs []*PathSegment, fn func(Node) bool) {
	for _, seg := range segs {
		if seg.Name != nil {
			Walk(seg.Name, fn)
		}
		for _, arg := range seg.Args {
			walkType(arg, fn)
		}
	}
}
