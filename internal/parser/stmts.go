package parser

import (
	"github.com/malphas-lang/malphas-unroll/internal/ast"
	"github.com/malphas-lang/malphas-unroll/internal/lexer"
)

// parseBlockExpr parses `{ stmts }` starting at `{` and returns with curTok
// on the closing `}`.
func (p *Parser) parseBlockExpr() *ast.BlockExpr {
	start := p.curTok.Span

	defer p.allowStructLiterals()()

	if p.curTok.Type != lexer.LBRACE {
		p.reportExpected("'{' to start block", p.curTok)
		return nil
	}

	block := ast.NewBlockExpr(nil, start)

	p.nextToken()

	for p.curTok.Type != lexer.RBRACE && p.curTok.Type != lexer.EOF {
		prevTok := p.curTok
		if stmt := p.parseStmt(); stmt != nil {
			block.Stmts = append(block.Stmts, stmt)
		}
		if sameTokenPosition(prevTok, p.curTok) {
			p.nextToken()
		}
	}

	if p.curTok.Type != lexer.RBRACE {
		p.reportExpected("'}' to close block", p.curTok)
		return nil
	}

	block.SetSpan(mergeSpan(start, p.curTok.Span))
	return block
}

// parseStmt parses one statement starting at curTok and leaves curTok on the
// first token after it. Stray semicolons yield a nil statement.
func (p *Parser) parseStmt() ast.Stmt {
	switch p.curTok.Type {
	case lexer.SEMICOLON:
		p.nextToken()
		return nil
	case lexer.LET:
		return p.parseLetStmt()
	case lexer.CONST:
		if p.peekTok.Type == lexer.IDENT && !p.isQualifierStart() {
			return p.parseConstStmt()
		}
		return p.parseItemStmt(p.curTok, nil)
	case lexer.FN, lexer.PUB, lexer.USE, lexer.STRUCT, lexer.ENUM, lexer.TRAIT,
		lexer.IMPL, lexer.TYPE, lexer.STATIC, lexer.MOD:
		return p.parseItemStmt(p.curTok, nil)
	case lexer.UNSAFE:
		if p.peekTok.Type != lexer.LBRACE {
			return p.parseItemStmt(p.curTok, nil)
		}
	case lexer.HASH:
		return p.parseAttributedStmt()
	}

	return p.parseExprStmt(nil)
}

// parseAttributedStmt handles outer attributes in statement position. They
// may decorate a block expression or a nested item.
func (p *Parser) parseAttributedStmt() ast.Stmt {
	start := p.curTok
	attrs := p.parseOuterAttributes()

	switch p.curTok.Type {
	case lexer.LBRACE:
		return p.parseExprStmt(attrs)
	case lexer.UNSAFE:
		if p.peekTok.Type == lexer.LBRACE {
			return p.parseExprStmt(attrs)
		}
		return p.parseItemStmt(start, attrs)
	case lexer.FN, lexer.PUB, lexer.USE, lexer.STRUCT, lexer.ENUM, lexer.TRAIT,
		lexer.IMPL, lexer.TYPE, lexer.STATIC, lexer.MOD, lexer.CONST:
		return p.parseItemStmt(start, attrs)
	}

	p.reportErrorWithHelp("attributes are only supported on blocks and items", p.curTok.Span,
		"move the attribute onto a block: #[attr] { ... }")
	p.syncStmt()
	return nil
}

func (p *Parser) parseItemStmt(start lexer.Token, attrs []*ast.Attribute) ast.Stmt {
	var item ast.Item
	if attrs == nil {
		item = p.parseItem()
	} else {
		item = p.parseItemAfterAttrs(start, attrs)
	}
	if item == nil {
		return nil
	}
	return ast.NewItemStmt(item, item.Span())
}

// parseLetStmt parses `let pattern [: Type] [= value];`.
func (p *Parser) parseLetStmt() ast.Stmt {
	start := p.curTok.Span

	p.nextToken()
	pat := p.parsePattern()
	if pat == nil {
		p.syncStmt()
		return nil
	}

	var typ ast.TypeExpr
	if p.peekTok.Type == lexer.COLON {
		p.nextToken()
		p.nextToken()
		typ = p.parseType()
		if typ == nil {
			p.syncStmt()
			return nil
		}
	}

	var value ast.Expr
	if p.peekTok.Type == lexer.ASSIGN {
		p.nextToken()
		p.nextToken()
		value = p.parseExpression(precedenceLowest)
		if value == nil {
			p.syncStmt()
			return nil
		}
	}

	if !p.expect(lexer.SEMICOLON) {
		p.syncStmt()
		return nil
	}

	stmt := ast.NewLetStmt(pat, typ, value, mergeSpan(start, p.curTok.Span))
	p.nextToken()
	return stmt
}

// parseConstStmt parses a block-local `const NAME: Type = value;`.
func (p *Parser) parseConstStmt() ast.Stmt {
	start := p.curTok.Span

	p.nextToken()
	name := ast.NewIdent(p.curTok.Raw, p.curTok.Span)

	if !p.expect(lexer.COLON) {
		p.syncStmt()
		return nil
	}
	p.nextToken()
	typ := p.parseType()
	if typ == nil {
		p.syncStmt()
		return nil
	}

	if !p.expect(lexer.ASSIGN) {
		p.syncStmt()
		return nil
	}
	p.nextToken()
	value := p.parseExpression(precedenceLowest)
	if value == nil {
		p.syncStmt()
		return nil
	}

	if !p.expect(lexer.SEMICOLON) {
		p.syncStmt()
		return nil
	}

	stmt := ast.NewConstStmt(name, typ, value, mergeSpan(start, p.curTok.Span))
	p.nextToken()
	return stmt
}

// parseExprStmt parses an expression statement. Block-like expressions in
// statement position end the statement without a `;` unless they are
// followed by a method call or `?`. attrs, when present, decorate a block.
func (p *Parser) parseExprStmt(attrs []*ast.Attribute) ast.Stmt {
	var expr ast.Expr
	blockLike := isBlockLikeStart(p.curTok.Type)

	if blockLike {
		expr = p.parseBlockLikeExpr()
		if expr != nil && (p.peekTok.Type == lexer.DOT || p.peekTok.Type == lexer.QUESTION) {
			expr = p.parseInfixChain(expr, precedenceLowest)
			blockLike = false
		}
	} else {
		expr = p.parseExpression(precedenceLowest)
	}

	if expr == nil {
		p.syncStmt()
		return nil
	}

	if attrs != nil {
		expr = attachAttrs(expr, attrs)
	}
	span := expr.Span()
	if len(attrs) > 0 {
		span = mergeSpan(attrs[0].Span(), span)
	}

	switch {
	case p.peekTok.Type == lexer.SEMICOLON:
		p.nextToken()
		stmt := ast.NewSemiStmt(expr, mergeSpan(span, p.curTok.Span))
		p.nextToken()
		return stmt
	case blockLike, isBlockLike(expr), p.peekTok.Type == lexer.RBRACE, p.peekTok.Type == lexer.EOF:
		p.nextToken()
		return ast.NewExprStmt(expr, span)
	}

	p.reportExpected("';' after expression", p.peekTok)
	p.nextToken()
	return ast.NewSemiStmt(expr, span)
}

// attachAttrs places outer attributes on the block an expression statement
// starts with.
func attachAttrs(expr ast.Expr, attrs []*ast.Attribute) ast.Expr {
	switch e := expr.(type) {
	case *ast.BlockExpr:
		e.Attrs = append(attrs, e.Attrs...)
		e.SetSpan(mergeSpan(attrs[0].Span(), e.Span()))
	case *ast.UnsafeExpr:
		e.Block.Attrs = append(attrs, e.Block.Attrs...)
	}
	return expr
}

func isBlockLikeStart(tt lexer.TokenType) bool {
	switch tt {
	case lexer.LBRACE, lexer.UNSAFE, lexer.IF, lexer.MATCH, lexer.FOR, lexer.WHILE, lexer.LOOP:
		return true
	default:
		return false
	}
}

// isBlockLike reports whether an expression ends in a block and so may stand
// as a statement without a terminating `;`.
func isBlockLike(expr ast.Expr) bool {
	switch e := expr.(type) {
	case *ast.BlockExpr, *ast.UnsafeExpr, *ast.IfExpr, *ast.IfLetExpr, *ast.MatchExpr,
		*ast.ForExpr, *ast.WhileExpr, *ast.LoopExpr:
		return true
	case *ast.MacroCallExpr:
		return e.Open == lexer.LBRACE
	default:
		return false
	}
}

// parseBlockLikeExpr parses a block-like expression without any infix
// continuation.
func (p *Parser) parseBlockLikeExpr() ast.Expr {
	prefix := p.prefixFns[p.curTok.Type]
	if prefix == nil {
		p.reportUnexpected(p.curTok, "expression")
		return nil
	}
	return prefix()
}

// syncStmt skips to the next statement boundary after an error.
func (p *Parser) syncStmt() {
	for {
		switch p.curTok.Type {
		case lexer.SEMICOLON:
			p.nextToken()
			return
		case lexer.RBRACE, lexer.EOF:
			return
		case lexer.LBRACE:
			if !p.skipBalanced() {
				return
			}
		}
		p.nextToken()
	}
}
