package parser

import (
	"strings"

	"github.com/malphas-lang/malphas-unroll/internal/ast"
	"github.com/malphas-lang/malphas-unroll/internal/lexer"
)

// parseExpression parses an expression whose operators bind tighter than
// precedence. It returns with curTok on the expression's last token.
func (p *Parser) parseExpression(precedence int) ast.Expr {
	prefix := p.prefixFns[p.curTok.Type]
	if prefix == nil {
		p.reportUnexpected(p.curTok, "expression")
		return nil
	}

	left := prefix()
	if left == nil {
		return nil
	}

	return p.parseInfixChain(left, precedence)
}

func (p *Parser) parseInfixChain(left ast.Expr, precedence int) ast.Expr {
	for p.peekTok.Type != lexer.SEMICOLON && precedence < p.peekPrecedence() {
		infix := p.infixFns[p.peekTok.Type]
		if infix == nil {
			return left
		}

		p.nextToken()

		left = infix(left)
		if left == nil {
			return nil
		}
	}

	return left
}

// parsePathOrIdent parses an identifier, a `::` path (with optional
// turbofish arguments), or a macro invocation.
func (p *Parser) parsePathOrIdent() ast.Expr {
	start := p.curTok.Span
	first := ast.NewIdent(p.curTok.Raw, p.curTok.Span)
	segments := []*ast.PathSegment{{Name: first}}

	for p.peekTok.Type == lexer.DOUBLE_COLON {
		p.nextToken() // '::'
		if p.peekTok.Type == lexer.LT {
			p.nextToken()
			args, ok := p.parseGenericArgs()
			if !ok {
				return nil
			}
			segments[len(segments)-1].Args = args
			continue
		}
		if !p.expect(lexer.IDENT) {
			return nil
		}
		segments = append(segments, &ast.PathSegment{Name: ast.NewIdent(p.curTok.Raw, p.curTok.Span)})
	}

	if p.peekTok.Type == lexer.BANG && closingFor(p.peekTokenAt(1).Type) != "" {
		return p.parseMacroCall(start, segments)
	}

	if p.peekTok.Type == lexer.LBRACE && !p.noStructLiteral {
		return p.parseStructLiteral(start, segments)
	}

	if len(segments) == 1 && segments[0].Args == nil {
		return first
	}
	return ast.NewPathExpr(segments, mergeSpan(start, p.curTok.Span))
}

// parseStructLiteral parses `{ field: value, short, ..base }` after a path
// and returns on the closing `}`.
func (p *Parser) parseStructLiteral(start lexer.Span, segments []*ast.PathSegment) ast.Expr {
	defer p.allowStructLiterals()()

	p.nextToken() // '{'
	p.nextToken()

	var (
		fields []*ast.FieldInit
		base   ast.Expr
	)
	for p.curTok.Type != lexer.RBRACE {
		if p.curTok.Type == lexer.DOTDOT {
			p.nextToken()
			if base = p.parseExpression(precedenceLowest); base == nil {
				return nil
			}
			if !p.expect(lexer.RBRACE) {
				return nil
			}
			break
		}

		if p.curTok.Type != lexer.IDENT && p.curTok.Type != lexer.INT {
			p.reportExpected("field name in struct literal", p.curTok)
			return nil
		}
		name := ast.NewIdent(p.curTok.Raw, p.curTok.Span)
		field := ast.NewFieldInit(name, nil, p.curTok.Span)
		if p.peekTok.Type == lexer.COLON {
			p.nextToken()
			p.nextToken()
			value := p.parseExpression(precedenceLowest)
			if value == nil {
				return nil
			}
			field = ast.NewFieldInit(name, value, mergeSpan(name.Span(), value.Span()))
		}
		fields = append(fields, field)

		switch p.peekTok.Type {
		case lexer.COMMA:
			p.nextToken()
			p.nextToken()
		case lexer.RBRACE:
			p.nextToken()
		default:
			p.reportExpected("',' or '}' in struct literal", p.peekTok)
			return nil
		}
	}

	return ast.NewStructLitExpr(segments, fields, base, mergeSpan(start, p.curTok.Span))
}

// parseMacroCall keeps the macro body verbatim; curTok is on the path's last
// token when called.
func (p *Parser) parseMacroCall(start lexer.Span, segments []*ast.PathSegment) ast.Expr {
	names := make([]string, len(segments))
	for i, seg := range segments {
		names[i] = seg.Name.Name
	}

	p.nextToken() // '!'
	p.nextToken() // opening delimiter
	open := p.curTok
	if !p.skipBalanced() {
		return nil
	}
	body := p.lx.Slice(open.Span.End, p.curTok.Span.Start)

	return ast.NewMacroCallExpr(strings.Join(names, "::"), open.Type, body, mergeSpan(start, p.curTok.Span))
}

func (p *Parser) parseIntegerLiteral() ast.Expr {
	return ast.NewIntegerLit(p.curTok.Raw, p.curTok.Span)
}

func (p *Parser) parseFloatLiteral() ast.Expr {
	return ast.NewFloatLit(p.curTok.Raw, p.curTok.Span)
}

func (p *Parser) parseStringLiteral() ast.Expr {
	return ast.NewStringLit(p.curTok.Raw, p.curTok.Value, p.curTok.Span)
}

func (p *Parser) parseCharLiteral() ast.Expr {
	return ast.NewCharLit(p.curTok.Raw, p.curTok.Span)
}

func (p *Parser) parseBoolLiteral() ast.Expr {
	return ast.NewBoolLit(p.curTok.Type == lexer.TRUE, p.curTok.Span)
}

func (p *Parser) parsePrefixExpr() ast.Expr {
	opTok := p.curTok

	p.nextToken()
	operand := p.parseExpression(precedencePrefix)
	if operand == nil {
		return nil
	}

	return ast.NewPrefixExpr(opTok.Type, operand, mergeSpan(opTok.Span, operand.Span()))
}

// parseRefExpr parses `&expr`, `&mut expr` and `&&expr` (two borrows).
func (p *Parser) parseRefExpr() ast.Expr {
	opTok := p.curTok

	mutable := false
	if p.peekTok.Type == lexer.MUT {
		p.nextToken()
		mutable = true
	}

	p.nextToken()
	operand := p.parseExpression(precedencePrefix)
	if operand == nil {
		return nil
	}

	span := mergeSpan(opTok.Span, operand.Span())
	if opTok.Type == lexer.AND {
		inner := ast.NewRefExpr(mutable, operand, span)
		return ast.NewRefExpr(false, inner, span)
	}
	return ast.NewRefExpr(mutable, operand, span)
}

// parsePrefixRange parses `..end`, `..=end` and the full range `..`.
func (p *Parser) parsePrefixRange() ast.Expr {
	opTok := p.curTok
	inclusive := opTok.Type == lexer.DOTDOTEQ

	if isRangeEndTerminator(p.peekTok.Type) {
		if inclusive {
			p.reportExpected("upper bound after '..='", p.peekTok)
			return nil
		}
		return ast.NewRangeExpr(nil, nil, false, opTok.Span)
	}

	p.nextToken()
	end := p.parseExpression(precedenceRange)
	if end == nil {
		return nil
	}

	return ast.NewRangeExpr(nil, end, inclusive, mergeSpan(opTok.Span, end.Span()))
}

func (p *Parser) parseInfixRange(left ast.Expr) ast.Expr {
	opTok := p.curTok
	inclusive := opTok.Type == lexer.DOTDOTEQ

	if isRangeEndTerminator(p.peekTok.Type) {
		if inclusive {
			p.reportExpected("upper bound after '..='", p.peekTok)
			return nil
		}
		return ast.NewRangeExpr(left, nil, false, mergeSpan(left.Span(), opTok.Span))
	}

	p.nextToken()
	end := p.parseExpression(precedenceRange)
	if end == nil {
		return nil
	}

	return ast.NewRangeExpr(left, end, inclusive, mergeSpan(left.Span(), end.Span()))
}

// isRangeEndTerminator reports whether tt cannot begin a range's upper bound,
// making the range open-ended (`start..`).
func isRangeEndTerminator(tt lexer.TokenType) bool {
	switch tt {
	case lexer.RPAREN, lexer.RBRACKET, lexer.RBRACE, lexer.LBRACE, lexer.COMMA,
		lexer.SEMICOLON, lexer.FATARROW, lexer.EOF:
		return true
	default:
		return false
	}
}

func (p *Parser) parseInfixExpr(left ast.Expr) ast.Expr {
	opTok := p.curTok
	precedence := p.curPrecedence()

	p.nextToken()
	right := p.parseExpression(precedence)
	if right == nil {
		return nil
	}

	return ast.NewInfixExpr(opTok.Type, left, right, mergeSpan(left.Span(), right.Span()))
}

// parseAssignExpr parses plain and compound assignment; both associate to
// the right.
func (p *Parser) parseAssignExpr(left ast.Expr) ast.Expr {
	opTok := p.curTok

	p.nextToken()
	value := p.parseExpression(precedenceAssign - 1)
	if value == nil {
		return nil
	}

	return ast.NewAssignExpr(opTok.Type, left, value, mergeSpan(left.Span(), value.Span()))
}

func (p *Parser) parseCastExpr(left ast.Expr) ast.Expr {
	p.nextToken()
	typ := p.parseType()
	if typ == nil {
		return nil
	}
	return ast.NewCastExpr(left, typ, mergeSpan(left.Span(), typ.Span()))
}

func (p *Parser) parseTryExpr(left ast.Expr) ast.Expr {
	return ast.NewTryExpr(left, mergeSpan(left.Span(), p.curTok.Span))
}

func (p *Parser) parseCallExpr(callee ast.Expr) ast.Expr {
	args, ok := p.parseCallArgs()
	if !ok {
		return nil
	}
	return ast.NewCallExpr(callee, args, mergeSpan(callee.Span(), p.curTok.Span))
}

// parseCallArgs parses `(args)` starting at `(` and returns on `)`.
func (p *Parser) parseCallArgs() ([]ast.Expr, bool) {
	defer p.allowStructLiterals()()
	p.nextToken()
	res, ok := parseDelimited[ast.Expr](p, delimitedConfig{
		Closing:             lexer.RPAREN,
		AllowEmpty:          true,
		AllowTrailing:       true,
		MissingElementMsg:   "expected argument",
		MissingSeparatorMsg: "expected ',' or ')' after argument",
	}, func(int) (ast.Expr, bool) {
		arg := p.parseExpression(precedenceLowest)
		return arg, arg != nil
	})
	if !ok {
		return nil, false
	}
	if res.Items == nil {
		res.Items = []ast.Expr{}
	}
	return res.Items, true
}

func (p *Parser) parseIndexExpr(target ast.Expr) ast.Expr {
	defer p.allowStructLiterals()()
	p.nextToken()
	index := p.parseExpression(precedenceLowest)
	if index == nil {
		return nil
	}
	if !p.expect(lexer.RBRACKET) {
		return nil
	}
	return ast.NewIndexExpr(target, index, mergeSpan(target.Span(), p.curTok.Span))
}

// parseFieldExpr parses `.field`, `.0`, `.0.1` and `.method::<T>(args)`.
func (p *Parser) parseFieldExpr(target ast.Expr) ast.Expr {
	switch p.peekTok.Type {
	case lexer.INT:
		p.nextToken()
		return ast.NewFieldExpr(target, p.curTok.Raw, mergeSpan(target.Span(), p.curTok.Span))

	case lexer.FLOAT:
		// `t.0.1` lexes the trailing indices as a single float.
		p.nextToken()
		var expr ast.Expr = target
		for _, idx := range strings.Split(p.curTok.Raw, ".") {
			expr = ast.NewFieldExpr(expr, idx, mergeSpan(target.Span(), p.curTok.Span))
		}
		return expr

	case lexer.IDENT:
		p.nextToken()
		method := ast.NewIdent(p.curTok.Raw, p.curTok.Span)

		var typeArgs []ast.TypeExpr
		if p.peekTok.Type == lexer.DOUBLE_COLON {
			p.nextToken()
			if !p.expect(lexer.LT) {
				return nil
			}
			args, ok := p.parseGenericArgs()
			if !ok {
				return nil
			}
			typeArgs = args
			if p.peekTok.Type != lexer.LPAREN {
				p.reportExpected("'(' after method type arguments", p.peekTok)
				return nil
			}
		}

		if p.peekTok.Type == lexer.LPAREN {
			p.nextToken()
			args, ok := p.parseCallArgs()
			if !ok {
				return nil
			}
			return ast.NewMethodCallExpr(target, method, typeArgs, args, mergeSpan(target.Span(), p.curTok.Span))
		}

		return ast.NewFieldExpr(target, method.Name, mergeSpan(target.Span(), p.curTok.Span))
	}

	p.reportExpected("field name or method after '.'", p.peekTok)
	return nil
}

// parseGroupedExpr parses `()`, `(expr)` and tuples `(a,)`, `(a, b)`.
func (p *Parser) parseGroupedExpr() ast.Expr {
	defer p.allowStructLiterals()()
	start := p.curTok.Span

	if p.peekTok.Type == lexer.RPAREN {
		p.nextToken()
		return ast.NewTupleExpr(nil, mergeSpan(start, p.curTok.Span))
	}

	p.nextToken()
	first := p.parseExpression(precedenceLowest)
	if first == nil {
		return nil
	}

	if p.peekTok.Type == lexer.RPAREN {
		p.nextToken()
		return ast.NewParenExpr(first, mergeSpan(start, p.curTok.Span))
	}

	if !p.expect(lexer.COMMA) {
		return nil
	}
	p.nextToken()

	res, ok := parseDelimited[ast.Expr](p, delimitedConfig{
		Closing:             lexer.RPAREN,
		AllowEmpty:          true,
		AllowTrailing:       true,
		MissingElementMsg:   "expected tuple element",
		MissingSeparatorMsg: "expected ',' or ')' in tuple",
	}, func(int) (ast.Expr, bool) {
		elem := p.parseExpression(precedenceLowest)
		return elem, elem != nil
	})
	if !ok {
		return nil
	}

	elems := append([]ast.Expr{first}, res.Items...)
	return ast.NewTupleExpr(elems, mergeSpan(start, p.curTok.Span))
}

// parseArrayExpr parses `[a, b, c]` and `[value; count]`.
func (p *Parser) parseArrayExpr() ast.Expr {
	defer p.allowStructLiterals()()
	start := p.curTok.Span

	if p.peekTok.Type == lexer.RBRACKET {
		p.nextToken()
		return ast.NewArrayExpr(nil, mergeSpan(start, p.curTok.Span))
	}

	p.nextToken()
	first := p.parseExpression(precedenceLowest)
	if first == nil {
		return nil
	}

	if p.peekTok.Type == lexer.SEMICOLON {
		p.nextToken()
		p.nextToken()
		count := p.parseExpression(precedenceLowest)
		if count == nil {
			return nil
		}
		if !p.expect(lexer.RBRACKET) {
			return nil
		}
		return ast.NewArrayRepeatExpr(first, count, mergeSpan(start, p.curTok.Span))
	}

	elems := []ast.Expr{first}
	for p.peekTok.Type == lexer.COMMA {
		p.nextToken()
		if p.peekTok.Type == lexer.RBRACKET {
			break
		}
		p.nextToken()
		elem := p.parseExpression(precedenceLowest)
		if elem == nil {
			return nil
		}
		elems = append(elems, elem)
	}

	if !p.expect(lexer.RBRACKET) {
		return nil
	}
	return ast.NewArrayExpr(elems, mergeSpan(start, p.curTok.Span))
}

func (p *Parser) parseBlockLiteral() ast.Expr {
	block := p.parseBlockExpr()
	if block == nil {
		return nil
	}
	return block
}

func (p *Parser) parseUnsafeExpr() ast.Expr {
	start := p.curTok.Span
	if !p.expect(lexer.LBRACE) {
		return nil
	}
	block := p.parseBlockExpr()
	if block == nil {
		return nil
	}
	return ast.NewUnsafeExpr(block, mergeSpan(start, block.Span()))
}

// parseClosureExpr parses `|params| body`, `|| body` and `move |params| body`.
func (p *Parser) parseClosureExpr() ast.Expr {
	start := p.curTok.Span

	move := false
	if p.curTok.Type == lexer.MOVE {
		move = true
		if p.peekTok.Type != lexer.PIPE && p.peekTok.Type != lexer.OR {
			p.reportExpected("closure parameters after 'move'", p.peekTok)
			return nil
		}
		p.nextToken()
	}

	params := []*ast.Param{}
	if p.curTok.Type == lexer.PIPE {
		p.nextToken()
		res, ok := parseDelimited[*ast.Param](p, delimitedConfig{
			Closing:             lexer.PIPE,
			AllowEmpty:          true,
			AllowTrailing:       true,
			MissingElementMsg:   "expected closure parameter",
			MissingSeparatorMsg: "expected ',' or '|' in closure parameters",
		}, func(int) (*ast.Param, bool) {
			param := p.parseParam(false)
			return param, param != nil
		})
		if !ok {
			return nil
		}
		params = append(params, res.Items...)
	}

	var ret ast.TypeExpr
	if p.peekTok.Type == lexer.ARROW {
		p.nextToken()
		p.nextToken()
		ret = p.parseType()
		if ret == nil {
			return nil
		}
		if !p.expect(lexer.LBRACE) {
			return nil
		}
		body := p.parseBlockExpr()
		if body == nil {
			return nil
		}
		return ast.NewClosureExpr(move, params, ret, body, mergeSpan(start, body.Span()))
	}

	p.nextToken()
	body := p.parseExpression(precedenceLowest)
	if body == nil {
		return nil
	}
	return ast.NewClosureExpr(move, params, nil, body, mergeSpan(start, body.Span()))
}

func (p *Parser) parseReturnExpr() ast.Expr {
	start := p.curTok.Span
	if isRangeEndTerminator(p.peekTok.Type) {
		return ast.NewReturnExpr(nil, start)
	}
	p.nextToken()
	value := p.parseExpression(precedenceLowest)
	if value == nil {
		return nil
	}
	return ast.NewReturnExpr(value, mergeSpan(start, value.Span()))
}

func (p *Parser) parseBreakExpr() ast.Expr {
	start := p.curTok.Span
	if isRangeEndTerminator(p.peekTok.Type) {
		return ast.NewBreakExpr(nil, start)
	}
	p.nextToken()
	value := p.parseExpression(precedenceLowest)
	if value == nil {
		return nil
	}
	return ast.NewBreakExpr(value, mergeSpan(start, value.Span()))
}

func (p *Parser) parseContinueExpr() ast.Expr {
	return ast.NewContinueExpr(p.curTok.Span)
}
