package parser

import (
	"github.com/malphas-lang/malphas-unroll/internal/ast"
	"github.com/malphas-lang/malphas-unroll/internal/lexer"
)

// parseCondition parses the expression in front of a block, where a bare
// struct literal is not allowed.
func (p *Parser) parseCondition() ast.Expr {
	prev := p.noStructLiteral
	p.noStructLiteral = true
	defer func() { p.noStructLiteral = prev }()
	return p.parseExpression(precedenceLowest)
}

// allowStructLiterals lifts the condition restriction inside a delimited
// subexpression and returns a func restoring it.
func (p *Parser) allowStructLiterals() func() {
	prev := p.noStructLiteral
	p.noStructLiteral = false
	return func() { p.noStructLiteral = prev }
}

// parseIfExpr parses `if cond { } [else ...]` and `if let pat = value { } [else ...]`.
func (p *Parser) parseIfExpr() ast.Expr {
	start := p.curTok.Span

	var (
		pat  ast.Pattern
		cond ast.Expr
	)

	if p.peekTok.Type == lexer.LET {
		p.nextToken() // 'let'
		p.nextToken()
		pat = p.parsePattern()
		if pat == nil {
			return nil
		}
		if !p.expect(lexer.ASSIGN) {
			return nil
		}
	}

	p.nextToken()
	cond = p.parseCondition()
	if cond == nil {
		return nil
	}

	if !p.expect(lexer.LBRACE) {
		return nil
	}
	then := p.parseBlockExpr()
	if then == nil {
		return nil
	}

	var els ast.Expr
	if p.peekTok.Type == lexer.ELSE {
		p.nextToken() // 'else'
		switch p.peekTok.Type {
		case lexer.IF:
			p.nextToken()
			els = p.parseIfExpr()
		case lexer.LBRACE:
			p.nextToken()
			if block := p.parseBlockExpr(); block != nil {
				els = block
			}
		default:
			p.reportExpected("'if' or '{' after 'else'", p.peekTok)
			return nil
		}
		if els == nil {
			return nil
		}
	}

	span := mergeSpan(start, p.curTok.Span)
	if pat != nil {
		return ast.NewIfLetExpr(pat, cond, then, els, span)
	}
	return ast.NewIfExpr(cond, then, els, span)
}

// parseForExpr parses `for pattern in iterable { body }`.
func (p *Parser) parseForExpr() ast.Expr {
	start := p.curTok.Span

	p.nextToken()
	pat := p.parsePattern()
	if pat == nil {
		return nil
	}

	if !p.expect(lexer.IN) {
		return nil
	}
	p.nextToken()

	iterable := p.parseCondition()
	if iterable == nil {
		return nil
	}

	if !p.expect(lexer.LBRACE) {
		return nil
	}
	body := p.parseBlockExpr()
	if body == nil {
		return nil
	}

	return ast.NewForExpr(pat, iterable, body, mergeSpan(start, body.Span()))
}

// parseWhileExpr parses `while cond { body }` and `while let pat = value { body }`.
func (p *Parser) parseWhileExpr() ast.Expr {
	start := p.curTok.Span

	var pat ast.Pattern
	if p.peekTok.Type == lexer.LET {
		p.nextToken()
		p.nextToken()
		pat = p.parsePattern()
		if pat == nil {
			return nil
		}
		if !p.expect(lexer.ASSIGN) {
			return nil
		}
	}

	p.nextToken()
	cond := p.parseCondition()
	if cond == nil {
		return nil
	}

	if !p.expect(lexer.LBRACE) {
		return nil
	}
	body := p.parseBlockExpr()
	if body == nil {
		return nil
	}

	return ast.NewWhileExpr(pat, cond, body, mergeSpan(start, body.Span()))
}

func (p *Parser) parseLoopExpr() ast.Expr {
	start := p.curTok.Span

	if !p.expect(lexer.LBRACE) {
		return nil
	}
	body := p.parseBlockExpr()
	if body == nil {
		return nil
	}

	return ast.NewLoopExpr(body, mergeSpan(start, body.Span()))
}

// parseMatchExpr parses `match subject { pat [if guard] => body, ... }`.
func (p *Parser) parseMatchExpr() ast.Expr {
	start := p.curTok.Span

	p.nextToken()
	subject := p.parseCondition()
	if subject == nil {
		return nil
	}

	if !p.expect(lexer.LBRACE) {
		return nil
	}
	p.nextToken()

	var arms []*ast.MatchArm
	for p.curTok.Type != lexer.RBRACE {
		if p.curTok.Type == lexer.EOF {
			p.reportExpected("'}' to close match", p.curTok)
			return nil
		}
		arm := p.parseMatchArm()
		if arm == nil {
			return nil
		}
		arms = append(arms, arm)
	}

	return ast.NewMatchExpr(subject, arms, mergeSpan(start, p.curTok.Span))
}

// parseMatchArm parses one arm and leaves curTok on the first token of the
// next arm (or the closing `}`).
func (p *Parser) parseMatchArm() *ast.MatchArm {
	start := p.curTok.Span

	if p.curTok.Type == lexer.PIPE {
		p.nextToken()
	}
	pat := p.parsePattern()
	if pat == nil {
		return nil
	}

	var guard ast.Expr
	if p.peekTok.Type == lexer.IF {
		p.nextToken()
		p.nextToken()
		guard = p.parseExpression(precedenceLowest)
		if guard == nil {
			return nil
		}
	}

	if !p.expect(lexer.FATARROW) {
		return nil
	}
	p.nextToken()

	var body ast.Expr
	if isBlockLikeStart(p.curTok.Type) {
		body = p.parseBlockLikeExpr()
	} else {
		body = p.parseExpression(precedenceLowest)
	}
	if body == nil {
		return nil
	}

	arm := ast.NewMatchArm(pat, guard, body, mergeSpan(start, body.Span()))

	switch {
	case p.peekTok.Type == lexer.COMMA:
		p.nextToken()
		p.nextToken()
	case p.peekTok.Type == lexer.RBRACE, isBlockLike(body):
		p.nextToken()
	default:
		p.reportExpected("',' or '}' after match arm", p.peekTok)
		return nil
	}

	return arm
}
