package parser

import (
	"github.com/malphas-lang/malphas-unroll/internal/ast"
	"github.com/malphas-lang/malphas-unroll/internal/lexer"
)

// parsePattern parses a pattern including top-level alternatives (`a | b`).
func (p *Parser) parsePattern() ast.Pattern {
	first := p.parsePatternNoAlt()
	if first == nil {
		return nil
	}
	if p.peekTok.Type != lexer.PIPE {
		return first
	}

	alts := []ast.Pattern{first}
	for p.peekTok.Type == lexer.PIPE {
		p.nextToken()
		p.nextToken()
		alt := p.parsePatternNoAlt()
		if alt == nil {
			return nil
		}
		alts = append(alts, alt)
	}

	return ast.NewPatternOr(alts, mergeSpan(first.Span(), alts[len(alts)-1].Span()))
}

// parsePatternNoAlt parses a single pattern without `|` alternatives, as
// required for closure parameters.
func (p *Parser) parsePatternNoAlt() ast.Pattern {
	tok := p.curTok

	switch tok.Type {
	case lexer.IDENT:
		if tok.Raw == "_" {
			return ast.NewPatternWild(tok.Span)
		}
		return p.parseIdentOrPathPattern()

	case lexer.REF, lexer.MUT:
		return p.parseBindingPattern()

	case lexer.INT, lexer.FLOAT, lexer.STRING, lexer.CHAR, lexer.TRUE, lexer.FALSE, lexer.MINUS:
		return p.parseLiteralPattern()

	case lexer.DOTDOT:
		return ast.NewPatternRest(tok.Span)

	case lexer.LPAREN:
		return p.parseTuplePattern()

	case lexer.LBRACKET:
		p.nextToken()
		elems, ok := p.parsePatternList(lexer.RBRACKET)
		if !ok {
			return nil
		}
		return ast.NewPatternSlice(elems, mergeSpan(tok.Span, p.curTok.Span))

	case lexer.AMPERSAND, lexer.AND:
		mutable := false
		if p.peekTok.Type == lexer.MUT {
			p.nextToken()
			mutable = true
		}
		p.nextToken()
		inner := p.parsePatternNoAlt()
		if inner == nil {
			return nil
		}
		span := mergeSpan(tok.Span, inner.Span())
		if tok.Type == lexer.AND {
			return ast.NewPatternReference(false, ast.NewPatternReference(mutable, inner, span), span)
		}
		return ast.NewPatternReference(mutable, inner, span)
	}

	p.reportUnexpected(tok, "pattern")
	return nil
}

// parseBindingPattern parses `ref x`, `mut x`, `ref mut x`, each optionally
// followed by `@ subpattern`.
func (p *Parser) parseBindingPattern() ast.Pattern {
	start := p.curTok.Span

	mode := ast.BindingModeMove
	mutable := false
	if p.curTok.Type == lexer.REF {
		mode = ast.BindingModeRef
		if p.peekTok.Type == lexer.MUT {
			p.nextToken()
			mode = ast.BindingModeRefMut
		}
	} else {
		mutable = true
	}

	if !p.expect(lexer.IDENT) {
		return nil
	}
	name := ast.NewIdent(p.curTok.Raw, p.curTok.Span)

	if p.peekTok.Type == lexer.AT {
		return p.parseSubpattern(start, name, mode, mutable)
	}
	return ast.NewPatternIdent(name, mode, mutable, mergeSpan(start, name.Span()))
}

func (p *Parser) parseSubpattern(start lexer.Span, name *ast.Ident, mode ast.BindingMode, mutable bool) ast.Pattern {
	p.nextToken() // '@'
	p.nextToken()
	sub := p.parsePatternNoAlt()
	if sub == nil {
		return nil
	}
	return ast.NewPatternBinding(name, mode, mutable, sub, mergeSpan(start, sub.Span()))
}

// parseIdentOrPathPattern parses a binding (`x`, `x @ 1..=5`), a path
// (`Foo::Bar`) or a tuple-struct pattern (`Some(x)`).
func (p *Parser) parseIdentOrPathPattern() ast.Pattern {
	start := p.curTok.Span
	segments := []*ast.Ident{ast.NewIdent(p.curTok.Raw, p.curTok.Span)}

	for p.peekTok.Type == lexer.DOUBLE_COLON {
		p.nextToken()
		if !p.expect(lexer.IDENT) {
			return nil
		}
		segments = append(segments, ast.NewIdent(p.curTok.Raw, p.curTok.Span))
	}

	if p.peekTok.Type == lexer.LPAREN {
		path := ast.NewPatternPath(segments, mergeSpan(start, p.curTok.Span))
		p.nextToken()
		p.nextToken()
		elems, ok := p.parsePatternList(lexer.RPAREN)
		if !ok {
			return nil
		}
		return ast.NewPatternTupleStruct(path, elems, mergeSpan(start, p.curTok.Span))
	}

	if p.peekTok.Type == lexer.LBRACE {
		path := ast.NewPatternPath(segments, mergeSpan(start, p.curTok.Span))
		p.nextToken()
		return p.parseStructPattern(start, path)
	}

	if len(segments) > 1 {
		return ast.NewPatternPath(segments, mergeSpan(start, p.curTok.Span))
	}

	if p.peekTok.Type == lexer.AT {
		return p.parseSubpattern(start, segments[0], ast.BindingModeMove, false)
	}

	return ast.NewPatternIdent(segments[0], ast.BindingModeMove, false, start)
}

// parseStructPattern parses `{ a, b: pat, .. }` starting at `{` and returns
// on the closing `}`.
func (p *Parser) parseStructPattern(start lexer.Span, path *ast.PatternPath) ast.Pattern {
	p.nextToken()

	var (
		fields []*ast.FieldPattern
		rest   bool
	)
	for p.curTok.Type != lexer.RBRACE {
		if p.curTok.Type == lexer.DOTDOT {
			rest = true
			if !p.expect(lexer.RBRACE) {
				return nil
			}
			break
		}

		var field *ast.FieldPattern
		if (p.curTok.Type == lexer.IDENT || p.curTok.Type == lexer.INT) && p.peekTok.Type == lexer.COLON {
			name := ast.NewIdent(p.curTok.Raw, p.curTok.Span)
			p.nextToken()
			p.nextToken()
			pat := p.parsePattern()
			if pat == nil {
				return nil
			}
			field = ast.NewFieldPattern(name, pat, false, mergeSpan(name.Span(), pat.Span()))
		} else {
			pat := p.parsePatternNoAlt()
			if pat == nil {
				return nil
			}
			binding, ok := pat.(*ast.PatternIdent)
			if !ok {
				p.reportError("expected field name in struct pattern", pat.Span())
				return nil
			}
			field = ast.NewFieldPattern(binding.Name, binding, true, binding.Span())
		}
		fields = append(fields, field)

		switch p.peekTok.Type {
		case lexer.COMMA:
			p.nextToken()
			p.nextToken()
		case lexer.RBRACE:
			p.nextToken()
		default:
			p.reportExpected("',' or '}' in struct pattern", p.peekTok)
			return nil
		}
	}

	return ast.NewPatternStruct(path, fields, rest, mergeSpan(start, p.curTok.Span))
}

// parseLiteralPattern parses literal patterns and literal ranges (`1..=5`).
func (p *Parser) parseLiteralPattern() ast.Pattern {
	start := p.curTok.Span

	lit := p.parsePatternLiteralExpr()
	if lit == nil {
		return nil
	}

	if p.peekTok.Type == lexer.DOTDOTEQ || p.peekTok.Type == lexer.DOTDOT {
		p.nextToken()
		inclusive := p.curTok.Type == lexer.DOTDOTEQ
		p.nextToken()
		end := p.parsePatternLiteralExpr()
		if end == nil {
			return nil
		}
		return ast.NewPatternRange(lit, end, inclusive, mergeSpan(start, end.Span()))
	}

	return ast.NewPatternLiteral(lit, mergeSpan(start, lit.Span()))
}

func (p *Parser) parsePatternLiteralExpr() ast.Expr {
	switch p.curTok.Type {
	case lexer.MINUS:
		opTok := p.curTok
		p.nextToken()
		if p.curTok.Type != lexer.INT && p.curTok.Type != lexer.FLOAT {
			p.reportExpected("numeric literal after '-' in pattern", p.curTok)
			return nil
		}
		operand := p.prefixFns[p.curTok.Type]()
		return ast.NewPrefixExpr(lexer.MINUS, operand, mergeSpan(opTok.Span, operand.Span()))
	case lexer.INT, lexer.FLOAT, lexer.STRING, lexer.CHAR, lexer.TRUE, lexer.FALSE:
		return p.prefixFns[p.curTok.Type]()
	}
	p.reportExpected("literal in pattern", p.curTok)
	return nil
}

// parseTuplePattern parses `()`, `(a, b)`; a single parenthesised pattern
// without a comma is returned as its inner pattern.
func (p *Parser) parseTuplePattern() ast.Pattern {
	start := p.curTok.Span

	p.nextToken()
	if p.curTok.Type == lexer.RPAREN {
		return ast.NewPatternTuple(nil, mergeSpan(start, p.curTok.Span))
	}

	first := p.parsePattern()
	if first == nil {
		return nil
	}
	if p.peekTok.Type == lexer.RPAREN {
		p.nextToken()
		return first
	}
	if !p.expect(lexer.COMMA) {
		return nil
	}
	p.nextToken()

	rest, ok := p.parsePatternList(lexer.RPAREN)
	if !ok {
		return nil
	}

	return ast.NewPatternTuple(append([]ast.Pattern{first}, rest...), mergeSpan(start, p.curTok.Span))
}

// parsePatternList parses comma separated patterns up to closing, starting
// on the first element and returning on closing.
func (p *Parser) parsePatternList(closing lexer.TokenType) ([]ast.Pattern, bool) {
	res, ok := parseDelimited[ast.Pattern](p, delimitedConfig{
		Closing:             closing,
		AllowEmpty:          true,
		AllowTrailing:       true,
		MissingElementMsg:   "expected pattern",
		MissingSeparatorMsg: "expected ',' or '" + string(closing) + "' in pattern",
	}, func(int) (ast.Pattern, bool) {
		pat := p.parsePattern()
		return pat, pat != nil
	})
	return res.Items, ok
}
