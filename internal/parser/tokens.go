package parser

import (
	"github.com/malphas-lang/malphas-unroll/internal/lexer"
)

// nextToken advances the parser's token window.
// Contract: after calling nextToken, curTok == old(peekTok). The lexer is only
// queried from here and peekTokenAt to keep lookahead bookkeeping centralized.
func (p *Parser) nextToken() {
	p.curTok = p.peekTok
	if len(p.tokenBuffer) > 0 {
		p.peekTok = p.tokenBuffer[0]
		p.tokenBuffer = p.tokenBuffer[1:]
		return
	}
	p.peekTok = p.lx.NextToken()
}

// peekTokenAt returns the token n positions after peekTok (0 is peekTok).
func (p *Parser) peekTokenAt(n int) lexer.Token {
	if n == 0 {
		return p.peekTok
	}
	for len(p.tokenBuffer) < n {
		p.tokenBuffer = append(p.tokenBuffer, p.lx.NextToken())
	}
	return p.tokenBuffer[n-1]
}

// splitShr turns a `>>` in the peek position into two `>` tokens so nested
// generic argument lists (`Vec<Vec<u8>>`) can close one level at a time.
func (p *Parser) splitShr() {
	if p.peekTok.Type != lexer.SHR {
		return
	}

	first, second := p.peekTok, p.peekTok
	first.Type, first.Raw, first.Value = lexer.GT, ">", ">"
	first.Span.End = first.Span.Start + 1
	second.Type, second.Raw, second.Value = lexer.GT, ">", ">"
	second.Span.Start++
	second.Span.Column++

	p.peekTok = first
	p.tokenBuffer = append([]lexer.Token{second}, p.tokenBuffer...)
}

// expect asserts that the peek token matches the provided type.
// The caller is responsible for inspecting curTok before invoking expect,
// because expect never rewinds; on success it promotes peekTok into curTok.
func (p *Parser) expect(tt lexer.TokenType) bool {
	if tt == lexer.GT {
		p.splitShr()
	}
	if p.peekTok.Type == tt {
		p.nextToken()
		return true
	}

	p.reportExpected("'"+string(tt)+"'", p.peekTok)
	return false
}

// skipBalanced advances from an opening delimiter in curTok to its matching
// closing delimiter, leaving curTok on the closer.
func (p *Parser) skipBalanced() bool {
	depth := 0
	for {
		switch p.curTok.Type {
		case lexer.LPAREN, lexer.LBRACKET, lexer.LBRACE:
			depth++
		case lexer.RPAREN, lexer.RBRACKET, lexer.RBRACE:
			depth--
			if depth == 0 {
				return true
			}
		case lexer.EOF:
			p.reportError("unbalanced delimiters", p.curTok.Span)
			return false
		}
		p.nextToken()
	}
}

func describeToken(tok lexer.Token) string {
	switch tok.Type {
	case lexer.EOF:
		return "end of input"
	case lexer.IDENT:
		return "identifier `" + tok.Raw + "`"
	}
	if tok.Raw != "" {
		return "`" + tok.Raw + "`"
	}
	return "`" + string(tok.Type) + "`"
}

func closingFor(open lexer.TokenType) lexer.TokenType {
	switch open {
	case lexer.LPAREN:
		return lexer.RPAREN
	case lexer.LBRACKET:
		return lexer.RBRACKET
	case lexer.LBRACE:
		return lexer.RBRACE
	}
	return ""
}
