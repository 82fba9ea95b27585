package parser

import (
	"github.com/malphas-lang/malphas-unroll/internal/ast"
	"github.com/malphas-lang/malphas-unroll/internal/lexer"
)

// parseType parses a type annotation and returns with curTok on its last token.
func (p *Parser) parseType() ast.TypeExpr {
	tok := p.curTok

	switch tok.Type {
	case lexer.IDENT:
		return p.parsePathType()

	case lexer.AMPERSAND, lexer.AND:
		lifetime := ""
		if p.peekTok.Type == lexer.LIFETIME {
			p.nextToken()
			lifetime = p.curTok.Raw
		}
		mutable := false
		if p.peekTok.Type == lexer.MUT {
			p.nextToken()
			mutable = true
		}
		p.nextToken()
		elem := p.parseType()
		if elem == nil {
			return nil
		}
		span := mergeSpan(tok.Span, elem.Span())
		if tok.Type == lexer.AND {
			return ast.NewRefType("", false, ast.NewRefType(lifetime, mutable, elem, span), span)
		}
		return ast.NewRefType(lifetime, mutable, elem, span)

	case lexer.LBRACKET:
		p.nextToken()
		elem := p.parseType()
		if elem == nil {
			return nil
		}
		if p.peekTok.Type == lexer.SEMICOLON {
			p.nextToken()
			p.nextToken()
			length := p.parseExpression(precedenceLowest)
			if length == nil {
				return nil
			}
			if !p.expect(lexer.RBRACKET) {
				return nil
			}
			return ast.NewArrayType(elem, length, mergeSpan(tok.Span, p.curTok.Span))
		}
		if !p.expect(lexer.RBRACKET) {
			return nil
		}
		return ast.NewSliceType(elem, mergeSpan(tok.Span, p.curTok.Span))

	case lexer.LPAREN:
		p.nextToken()
		if p.curTok.Type == lexer.RPAREN {
			return ast.NewTupleType(nil, mergeSpan(tok.Span, p.curTok.Span))
		}
		first := p.parseType()
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
		res, ok := parseDelimited[ast.TypeExpr](p, delimitedConfig{
			Closing:             lexer.RPAREN,
			AllowEmpty:          true,
			AllowTrailing:       true,
			MissingElementMsg:   "expected type in tuple",
			MissingSeparatorMsg: "expected ',' or ')' in tuple type",
		}, func(int) (ast.TypeExpr, bool) {
			elem := p.parseType()
			return elem, elem != nil
		})
		if !ok {
			return nil
		}
		return ast.NewTupleType(append([]ast.TypeExpr{first}, res.Items...), mergeSpan(tok.Span, p.curTok.Span))
	}

	p.reportUnexpected(tok, "type")
	return nil
}

// parsePathType parses `a::b::C<T, U>`.
func (p *Parser) parsePathType() ast.TypeExpr {
	start := p.curTok.Span
	segments := []*ast.PathSegment{{Name: ast.NewIdent(p.curTok.Raw, p.curTok.Span)}}

	for {
		if p.peekTok.Type == lexer.LT {
			p.nextToken()
			args, ok := p.parseGenericArgs()
			if !ok {
				return nil
			}
			segments[len(segments)-1].Args = args
		}
		if p.peekTok.Type != lexer.DOUBLE_COLON {
			break
		}
		p.nextToken()
		if !p.expect(lexer.IDENT) {
			return nil
		}
		segments = append(segments, &ast.PathSegment{Name: ast.NewIdent(p.curTok.Raw, p.curTok.Span)})
	}

	return ast.NewPathType(segments, mergeSpan(start, p.curTok.Span))
}

// parseGenericArgs parses `<A, 'a, B>` starting at `<` and returning on `>`.
func (p *Parser) parseGenericArgs() ([]ast.TypeExpr, bool) {
	p.nextToken()
	p.splitCurShr()

	res, ok := parseDelimited[ast.TypeExpr](p, delimitedConfig{
		Closing:             lexer.GT,
		AllowEmpty:          true,
		AllowTrailing:       true,
		MissingElementMsg:   "expected generic argument",
		MissingSeparatorMsg: "expected ',' or '>' in generic arguments",
	}, func(int) (ast.TypeExpr, bool) {
		if p.curTok.Type == lexer.LIFETIME {
			return ast.NewLifetime(p.curTok.Raw, p.curTok.Span), true
		}
		arg := p.parseType()
		return arg, arg != nil
	})
	if !ok {
		return nil, false
	}
	if res.Items == nil {
		res.Items = []ast.TypeExpr{}
	}
	return res.Items, true
}

// splitCurShr handles an empty argument list directly followed by another
// closer (`Foo<Bar<>>`).
func (p *Parser) splitCurShr() {
	if p.curTok.Type != lexer.SHR {
		return
	}
	second := p.curTok
	p.curTok.Type, p.curTok.Raw, p.curTok.Value = lexer.GT, ">", ">"
	p.curTok.Span.End = p.curTok.Span.Start + 1
	second.Type, second.Raw, second.Value = lexer.GT, ">", ">"
	second.Span.Start++
	second.Span.Column++
	p.tokenBuffer = append([]lexer.Token{p.peekTok}, p.tokenBuffer...)
	p.peekTok = second
}
