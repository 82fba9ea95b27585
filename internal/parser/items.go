package parser

import (
	"strings"

	"github.com/malphas-lang/malphas-unroll/internal/ast"
	"github.com/malphas-lang/malphas-unroll/internal/lexer"
)

// parseItem parses one item starting at curTok and leaves curTok on the
// token after it. Functions and impl blocks are parsed structurally; every
// other item is kept as raw source text.
func (p *Parser) parseItem() ast.Item {
	if p.curTok.Type == lexer.HASH && p.peekTok.Type == lexer.BANG {
		return p.parseInnerAttribute()
	}

	start := p.curTok
	attrs := p.parseOuterAttributes()
	return p.parseItemAfterAttrs(start, attrs)
}

func (p *Parser) parseItemAfterAttrs(start lexer.Token, attrs []*ast.Attribute) ast.Item {
	vis := p.parseVisibility()
	quals := p.parseQualifiers()

	switch p.curTok.Type {
	case lexer.FN:
		if p.marker != "" && !hasAttr(attrs, p.marker) {
			return p.parseRawItem(start)
		}
		decl := p.parseFnDecl(start.Span, attrs, vis, quals)
		if decl == nil {
			p.syncItem()
			return nil
		}
		p.nextToken()
		return decl
	case lexer.IMPL:
		if len(quals) == 0 {
			return p.parseImplDecl(start.Span, attrs)
		}
	}

	return p.parseRawItem(start)
}

func hasAttr(attrs []*ast.Attribute, name string) bool {
	for _, attr := range attrs {
		if attr.Name() == name {
			return true
		}
	}
	return false
}

// parseInnerAttribute consumes `#![...]` and keeps it verbatim.
func (p *Parser) parseInnerAttribute() ast.Item {
	start := p.curTok
	p.nextToken() // '!'
	if !p.expect(lexer.LBRACKET) {
		p.syncItem()
		return nil
	}
	if !p.skipBalanced() {
		return nil
	}
	end := p.curTok
	p.nextToken()
	return ast.NewRawItem(p.lx.Slice(start.Span.Start, end.Span.End), mergeSpan(start.Span, end.Span))
}

// parseOuterAttributes consumes any `#[...]` attributes in front of an item
// or block, leaving curTok on the first token after them.
func (p *Parser) parseOuterAttributes() []*ast.Attribute {
	var attrs []*ast.Attribute
	for p.curTok.Type == lexer.HASH && p.peekTok.Type == lexer.LBRACKET {
		hash := p.curTok
		p.nextToken() // '['
		open := p.curTok
		if !p.skipBalanced() {
			return attrs
		}
		text := strings.TrimSpace(p.lx.Slice(open.Span.End, p.curTok.Span.Start))
		attrs = append(attrs, ast.NewAttribute(text, mergeSpan(hash.Span, p.curTok.Span)))
		p.nextToken()
	}
	return attrs
}

func (p *Parser) parseVisibility() string {
	if p.curTok.Type != lexer.PUB {
		return ""
	}
	start := p.curTok
	if p.peekTok.Type != lexer.LPAREN {
		p.nextToken()
		return "pub"
	}
	p.nextToken()
	if !p.skipBalanced() {
		return "pub"
	}
	vis := p.lx.Slice(start.Span.Start, p.curTok.Span.End)
	p.nextToken()
	return vis
}

// parseQualifiers consumes function qualifiers (`const`, `unsafe`, `async`,
// `extern "C"`) when they are followed by `fn`.
func (p *Parser) parseQualifiers() []string {
	var quals []string
	for p.isQualifierStart() {
		switch p.curTok.Type {
		case lexer.CONST, lexer.UNSAFE:
			quals = append(quals, p.curTok.Raw)
		case lexer.IDENT:
			q := p.curTok.Raw
			if q == "extern" && p.peekTok.Type == lexer.STRING {
				p.nextToken()
				q += " " + p.curTok.Raw
			}
			quals = append(quals, q)
		}
		p.nextToken()
	}
	return quals
}

func (p *Parser) isQualifierStart() bool {
	for i := 0; ; i++ {
		tok := p.curTok
		if i > 0 {
			tok = p.peekTokenAt(i - 1)
		}
		switch {
		case tok.Type == lexer.FN:
			return i > 0
		case tok.Type == lexer.CONST, tok.Type == lexer.UNSAFE:
		case tok.Type == lexer.IDENT && (tok.Raw == "async" || tok.Raw == "extern"):
		case tok.Type == lexer.STRING && i > 0:
		default:
			return false
		}
	}
}

// parseFnDecl parses a function declaration starting at `fn`. It returns with
// curTok on the closing `}` of the body (or the `;` of a bodiless signature).
func (p *Parser) parseFnDecl(start lexer.Span, attrs []*ast.Attribute, vis string, quals []string) *ast.FnDecl {
	if !p.expect(lexer.IDENT) {
		return nil
	}
	name := ast.NewIdent(p.curTok.Raw, p.curTok.Span)

	generics := ""
	if p.peekTok.Type == lexer.LT {
		p.nextToken()
		open := p.curTok
		if !p.skipAngles() {
			return nil
		}
		generics = p.lx.Slice(open.Span.Start, p.curTok.Span.End)
	}

	if !p.expect(lexer.LPAREN) {
		return nil
	}
	p.nextToken()

	var receiver *ast.Receiver
	if recv, ok := p.tryParseReceiver(); ok {
		receiver = recv
		switch p.peekTok.Type {
		case lexer.COMMA:
			p.nextToken()
			p.nextToken()
		case lexer.RPAREN:
			p.nextToken()
		default:
			p.reportExpected("',' or ')' after receiver", p.peekTok)
			return nil
		}
	}

	paramRes, ok := parseDelimited[*ast.Param](p, delimitedConfig{
		Closing:             lexer.RPAREN,
		AllowEmpty:          true,
		AllowTrailing:       true,
		MissingElementMsg:   "expected parameter",
		MissingSeparatorMsg: "expected ',' or ')' in parameter list",
	}, func(int) (*ast.Param, bool) {
		param := p.parseParam(true)
		return param, param != nil
	})
	if !ok {
		return nil
	}

	var ret ast.TypeExpr
	if p.peekTok.Type == lexer.ARROW {
		p.nextToken() // '->'
		p.nextToken()
		ret = p.parseType()
		if ret == nil {
			return nil
		}
	}

	where := ""
	if p.peekTok.Type == lexer.WHERE {
		p.nextToken()
		whereTok := p.curTok
		for p.peekTok.Type != lexer.LBRACE && p.peekTok.Type != lexer.SEMICOLON && p.peekTok.Type != lexer.EOF {
			p.nextToken()
		}
		where = p.lx.Slice(whereTok.Span.Start, p.curTok.Span.End)
	}

	decl := ast.NewFnDecl(name, paramRes.Items, ret, nil, start)
	decl.Attrs = attrs
	decl.Visibility = vis
	decl.Qualifiers = quals
	decl.Generics = generics
	decl.Receiver = receiver
	decl.Where = where

	if p.peekTok.Type == lexer.SEMICOLON {
		p.nextToken()
		decl.SetSpan(mergeSpan(start, p.curTok.Span))
		return decl
	}

	if !p.expect(lexer.LBRACE) {
		return nil
	}
	body := p.parseBlockExpr()
	if body == nil {
		return nil
	}
	decl.Body = body
	decl.SetSpan(mergeSpan(start, body.Span()))
	return decl
}

// tryParseReceiver recognises `self`, `mut self`, `&self`, `&mut self` and
// `&'a self` (optionally `&'a mut self`). On success curTok is `self`.
func (p *Parser) tryParseReceiver() (*ast.Receiver, bool) {
	isSelf := func(tok lexer.Token) bool {
		return tok.Type == lexer.IDENT && tok.Raw == "self"
	}
	start := p.curTok.Span

	switch {
	case isSelf(p.curTok) && p.peekTok.Type != lexer.COLON:
		return ast.NewReceiver(false, "", false, start), true

	case p.curTok.Type == lexer.MUT && isSelf(p.peekTok):
		p.nextToken()
		return ast.NewReceiver(false, "", true, mergeSpan(start, p.curTok.Span)), true

	case p.curTok.Type == lexer.AMPERSAND:
		i := 0
		lifetime := ""
		if tok := p.peekTokenAt(i); tok.Type == lexer.LIFETIME {
			lifetime = tok.Raw
			i++
		}
		mutable := false
		if p.peekTokenAt(i).Type == lexer.MUT {
			mutable = true
			i++
		}
		if !isSelf(p.peekTokenAt(i)) {
			return nil, false
		}
		for ; i >= 0; i-- {
			p.nextToken()
		}
		return ast.NewReceiver(true, lifetime, mutable, mergeSpan(start, p.curTok.Span)), true
	}

	return nil, false
}

// parseParam parses `pattern: Type`. Closure parameters may omit the type.
func (p *Parser) parseParam(requireType bool) *ast.Param {
	start := p.curTok.Span
	pat := p.parsePatternNoAlt()
	if pat == nil {
		return nil
	}

	var typ ast.TypeExpr
	if p.peekTok.Type == lexer.COLON {
		p.nextToken()
		p.nextToken()
		typ = p.parseType()
		if typ == nil {
			return nil
		}
	} else if requireType {
		p.reportExpected("':' and parameter type", p.peekTok)
		return nil
	}

	span := mergeSpan(start, pat.Span())
	if typ != nil {
		span = mergeSpan(span, typ.Span())
	}
	return ast.NewParam(pat, typ, span)
}

// parseImplDecl parses `impl ... { items }` and leaves curTok after `}`.
func (p *Parser) parseImplDecl(start lexer.Span, attrs []*ast.Attribute) ast.Item {
	implTok := p.curTok
	for p.peekTok.Type != lexer.LBRACE {
		if p.peekTok.Type == lexer.EOF || p.peekTok.Type == lexer.SEMICOLON {
			p.reportExpected("'{' to open impl block", p.peekTok)
			p.nextToken()
			return nil
		}
		p.nextToken()
	}
	header := strings.TrimSpace(p.lx.Slice(implTok.Span.End, p.peekTok.Span.Start))
	p.nextToken() // '{'
	p.nextToken()

	var items []ast.Item
	for p.curTok.Type != lexer.RBRACE && p.curTok.Type != lexer.EOF {
		prevTok := p.curTok
		if item := p.parseItem(); item != nil {
			items = append(items, item)
		}
		if sameTokenPosition(prevTok, p.curTok) {
			p.nextToken()
		}
	}

	if p.curTok.Type != lexer.RBRACE {
		p.reportExpected("'}' to close impl block", p.curTok)
		return nil
	}

	decl := ast.NewImplDecl(attrs, header, items, mergeSpan(start, p.curTok.Span))
	p.nextToken()
	return decl
}

// parseRawItem skips an item the tool does not interpret: up to a `;` at
// nesting depth zero, or through a top-level `{ ... }` body.
func (p *Parser) parseRawItem(start lexer.Token) ast.Item {
	for {
		switch p.curTok.Type {
		case lexer.EOF:
			p.reportExpected("';' or '}' to end item", p.curTok)
			return nil
		case lexer.SEMICOLON:
			return p.finishRawItem(start)
		case lexer.LBRACE:
			if !p.skipBalanced() {
				return nil
			}
			// `struct S { .. }` ends at the brace; `struct S(..);` and
			// `const X: T = { .. };` continue to the semicolon.
			if p.peekTok.Type == lexer.SEMICOLON {
				p.nextToken()
			}
			return p.finishRawItem(start)
		case lexer.LPAREN, lexer.LBRACKET:
			if !p.skipBalanced() {
				return nil
			}
		case lexer.RBRACE, lexer.RPAREN, lexer.RBRACKET:
			p.reportUnexpected(p.curTok, "item")
			return nil
		}
		p.nextToken()
	}
}

func (p *Parser) finishRawItem(start lexer.Token) ast.Item {
	end := p.curTok
	text := p.lx.Slice(start.Span.Start, end.Span.End)
	p.nextToken()
	return ast.NewRawItem(text, mergeSpan(start.Span, end.Span))
}

// skipAngles advances from `<` in curTok to its matching `>`, splitting
// `>>` as needed.
func (p *Parser) skipAngles() bool {
	depth := 0
	for {
		switch p.curTok.Type {
		case lexer.LT:
			depth++
		case lexer.SHL:
			depth += 2
		case lexer.GT:
			depth--
		case lexer.SHR:
			depth -= 2
		case lexer.EOF, lexer.LBRACE, lexer.SEMICOLON:
			p.reportExpected("'>' to close generic parameters", p.curTok)
			return false
		}
		if depth <= 0 {
			return true
		}
		p.nextToken()
	}
}

// syncItem skips tokens until something that can start an item.
func (p *Parser) syncItem() {
	for {
		switch p.curTok.Type {
		case lexer.EOF, lexer.FN, lexer.PUB, lexer.IMPL, lexer.USE, lexer.STRUCT,
			lexer.ENUM, lexer.TRAIT, lexer.MOD, lexer.HASH:
			return
		}
		p.nextToken()
	}
}
