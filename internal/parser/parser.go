package parser

import (
	"github.com/malphas-lang/malphas-unroll/internal/ast"
	"github.com/malphas-lang/malphas-unroll/internal/diag"
	"github.com/malphas-lang/malphas-unroll/internal/lexer"
)

type (
	prefixParseFn func() ast.Expr
	infixParseFn  func(ast.Expr) ast.Expr
)

type Option func(*options)

type options struct {
	filename string
	marker   string
}

// WithFilename configures the parser to attribute all emitted spans to the provided filename.
func WithFilename(name string) Option {
	return func(o *options) {
		o.filename = name
	}
}

// WithMarker limits full parsing to functions carrying the #[name]
// attribute. Other functions are kept as raw items, so syntax outside the
// parsed subset only matters inside marked functions.
func WithMarker(name string) Option {
	return func(o *options) {
		o.marker = name
	}
}

const (
	precedenceLowest = iota
	precedenceAssign
	precedenceRange
	precedenceOr
	precedenceAnd
	precedenceComparison
	precedenceBitOr
	precedenceBitXor
	precedenceBitAnd
	precedenceShift
	precedenceSum
	precedenceProduct
	precedenceCast
	precedencePrefix
	precedencePostfix
)

var precedences = map[lexer.TokenType]int{
	lexer.ASSIGN:         precedenceAssign,
	lexer.PLUS_ASSIGN:    precedenceAssign,
	lexer.MINUS_ASSIGN:   precedenceAssign,
	lexer.STAR_ASSIGN:    precedenceAssign,
	lexer.SLASH_ASSIGN:   precedenceAssign,
	lexer.PERCENT_ASSIGN: precedenceAssign,
	lexer.AMP_ASSIGN:     precedenceAssign,
	lexer.PIPE_ASSIGN:    precedenceAssign,
	lexer.CARET_ASSIGN:   precedenceAssign,
	lexer.DOTDOT:         precedenceRange,
	lexer.DOTDOTEQ:       precedenceRange,
	lexer.OR:             precedenceOr,
	lexer.AND:            precedenceAnd,
	lexer.EQ:             precedenceComparison,
	lexer.NOT_EQ:         precedenceComparison,
	lexer.LT:             precedenceComparison,
	lexer.LE:             precedenceComparison,
	lexer.GT:             precedenceComparison,
	lexer.GE:             precedenceComparison,
	lexer.PIPE:           precedenceBitOr,
	lexer.CARET:          precedenceBitXor,
	lexer.AMPERSAND:      precedenceBitAnd,
	lexer.SHL:            precedenceShift,
	lexer.SHR:            precedenceShift,
	lexer.PLUS:           precedenceSum,
	lexer.MINUS:          precedenceSum,
	lexer.ASTERISK:       precedenceProduct,
	lexer.SLASH:          precedenceProduct,
	lexer.PERCENT:        precedenceProduct,
	lexer.AS:             precedenceCast,
	lexer.QUESTION:       precedencePostfix,
	lexer.LPAREN:         precedencePostfix,
	lexer.LBRACKET:       precedencePostfix,
	lexer.DOT:            precedencePostfix,
}

// Parser implements a Pratt-style recursive descent parser for the Malphas
// surface language.
// Invariants:
//   - Lookahead: curTok is the token under examination and peekTok the next
//     one. Both are only mutated via nextToken (or splitShr, which breaks a
//     `>>` into two `>` while closing generic argument lists).
//   - Position: expression, pattern and type parsers enter on their first
//     token and return with curTok on their last token. Block parsers enter
//     on `{` and return on `}`. Statement and item parsers return with
//     curTok on the first token after the construct.
//   - Diagnostics: errors is an append-only accumulator. Callers consult
//     Errors() (and LexErrors()) after parsing.
//   - Spans: node spans are composed with mergeSpan so a node always covers
//     its children.
type Parser struct {
	lx          *lexer.Lexer
	curTok      lexer.Token
	peekTok     lexer.Token
	tokenBuffer []lexer.Token

	errors []ParseError

	filename string
	marker   string

	// noStructLiteral is set while parsing an if/while/match/for head.
	noStructLiteral bool

	prefixFns map[lexer.TokenType]prefixParseFn
	infixFns  map[lexer.TokenType]infixParseFn
}

// New returns a parser initialised with the provided source input.
func New(input string, opts ...Option) *Parser {
	cfg := options{}
	for _, opt := range opts {
		opt(&cfg)
	}

	p := &Parser{
		lx:        lexer.New(input),
		prefixFns: make(map[lexer.TokenType]prefixParseFn),
		infixFns:  make(map[lexer.TokenType]infixParseFn),
		filename:  cfg.filename,
		marker:    cfg.marker,
	}

	if cfg.filename != "" {
		p.lx.SetFilename(cfg.filename)
	}

	p.registerPrefix(lexer.IDENT, p.parsePathOrIdent)
	p.registerPrefix(lexer.INT, p.parseIntegerLiteral)
	p.registerPrefix(lexer.FLOAT, p.parseFloatLiteral)
	p.registerPrefix(lexer.STRING, p.parseStringLiteral)
	p.registerPrefix(lexer.CHAR, p.parseCharLiteral)
	p.registerPrefix(lexer.TRUE, p.parseBoolLiteral)
	p.registerPrefix(lexer.FALSE, p.parseBoolLiteral)
	p.registerPrefix(lexer.MINUS, p.parsePrefixExpr)
	p.registerPrefix(lexer.BANG, p.parsePrefixExpr)
	p.registerPrefix(lexer.ASTERISK, p.parsePrefixExpr)
	p.registerPrefix(lexer.AMPERSAND, p.parseRefExpr)
	p.registerPrefix(lexer.AND, p.parseRefExpr)
	p.registerPrefix(lexer.DOTDOT, p.parsePrefixRange)
	p.registerPrefix(lexer.DOTDOTEQ, p.parsePrefixRange)
	p.registerPrefix(lexer.LPAREN, p.parseGroupedExpr)
	p.registerPrefix(lexer.LBRACKET, p.parseArrayExpr)
	p.registerPrefix(lexer.LBRACE, p.parseBlockLiteral)
	p.registerPrefix(lexer.UNSAFE, p.parseUnsafeExpr)
	p.registerPrefix(lexer.IF, p.parseIfExpr)
	p.registerPrefix(lexer.FOR, p.parseForExpr)
	p.registerPrefix(lexer.WHILE, p.parseWhileExpr)
	p.registerPrefix(lexer.LOOP, p.parseLoopExpr)
	p.registerPrefix(lexer.MATCH, p.parseMatchExpr)
	p.registerPrefix(lexer.PIPE, p.parseClosureExpr)
	p.registerPrefix(lexer.OR, p.parseClosureExpr)
	p.registerPrefix(lexer.MOVE, p.parseClosureExpr)
	p.registerPrefix(lexer.RETURN, p.parseReturnExpr)
	p.registerPrefix(lexer.BREAK, p.parseBreakExpr)
	p.registerPrefix(lexer.CONTINUE, p.parseContinueExpr)

	for _, op := range []lexer.TokenType{
		lexer.PLUS, lexer.MINUS, lexer.ASTERISK, lexer.SLASH, lexer.PERCENT,
		lexer.AND, lexer.OR, lexer.EQ, lexer.NOT_EQ,
		lexer.LT, lexer.LE, lexer.GT, lexer.GE,
		lexer.PIPE, lexer.CARET, lexer.AMPERSAND, lexer.SHL, lexer.SHR,
	} {
		p.registerInfix(op, p.parseInfixExpr)
	}
	for _, op := range []lexer.TokenType{
		lexer.ASSIGN, lexer.PLUS_ASSIGN, lexer.MINUS_ASSIGN, lexer.STAR_ASSIGN,
		lexer.SLASH_ASSIGN, lexer.PERCENT_ASSIGN, lexer.AMP_ASSIGN,
		lexer.PIPE_ASSIGN, lexer.CARET_ASSIGN,
	} {
		p.registerInfix(op, p.parseAssignExpr)
	}
	p.registerInfix(lexer.DOTDOT, p.parseInfixRange)
	p.registerInfix(lexer.DOTDOTEQ, p.parseInfixRange)
	p.registerInfix(lexer.AS, p.parseCastExpr)
	p.registerInfix(lexer.QUESTION, p.parseTryExpr)
	p.registerInfix(lexer.LPAREN, p.parseCallExpr)
	p.registerInfix(lexer.LBRACKET, p.parseIndexExpr)
	p.registerInfix(lexer.DOT, p.parseFieldExpr)

	// Seed curTok/peekTok.
	p.nextToken()
	p.nextToken()

	return p
}

// Errors returns all recoverable parse errors that were encountered.
func (p *Parser) Errors() []ParseError {
	return p.errors
}

// LexErrors returns the errors reported by the underlying lexer.
func (p *Parser) LexErrors() []lexer.LexerError {
	return p.lx.Errors
}

// Diagnostics returns lexer and parser errors as shared diagnostics, lexer
// errors first.
func (p *Parser) Diagnostics() []diag.Diagnostic {
	out := make([]diag.Diagnostic, 0, len(p.lx.Errors)+len(p.errors))
	for _, err := range p.lx.Errors {
		out = append(out, err.ToDiagnostic())
	}
	for _, err := range p.errors {
		out = append(out, err.ToDiagnostic())
	}
	return out
}

// ParseFile parses a full compilation unit and returns its AST.
func (p *Parser) ParseFile() *ast.File {
	file := ast.NewFile(p.curTok.Span)

	for p.curTok.Type != lexer.EOF {
		prevTok := p.curTok
		item := p.parseItem()
		if item != nil {
			file.Items = append(file.Items, item)
			file.SetSpan(mergeSpan(file.Span(), item.Span()))
		}

		if sameTokenPosition(prevTok, p.curTok) {
			p.nextToken()
		}
	}

	file.SetSpan(mergeSpan(file.Span(), p.curTok.Span))

	return file
}

// ParseBlock parses a single `{ ... }` block that must make up the whole input.
func (p *Parser) ParseBlock() *ast.BlockExpr {
	block := p.parseBlockExpr()
	if block == nil {
		return nil
	}
	p.nextToken()
	p.expectEOF()
	return block
}

// ParseStmt parses a single statement that must make up the whole input. A
// trailing expression without `;` yields an *ast.ExprStmt.
func (p *Parser) ParseStmt() ast.Stmt {
	stmt := p.parseStmt()
	p.expectEOF()
	return stmt
}

func (p *Parser) expectEOF() {
	if p.curTok.Type != lexer.EOF {
		p.reportError("unexpected "+describeToken(p.curTok)+" after end of input", p.curTok.Span)
	}
}

func (p *Parser) registerPrefix(tt lexer.TokenType, fn prefixParseFn) {
	p.prefixFns[tt] = fn
}

func (p *Parser) registerInfix(tt lexer.TokenType, fn infixParseFn) {
	p.infixFns[tt] = fn
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekTok.Type]; ok {
		return prec
	}
	return precedenceLowest
}

func (p *Parser) curPrecedence() int {
	if prec, ok := precedences[p.curTok.Type]; ok {
		return prec
	}
	return precedenceLowest
}

// mergeSpan returns a span covering start through end.
func mergeSpan(start, end lexer.Span) lexer.Span {
	span := start

	if span.Filename == "" {
		span.Filename = end.Filename
	}

	if span.Line == 0 && end.Line != 0 {
		span.Line = end.Line
		span.Column = end.Column
		span.Start = end.Start
	}

	if end.End > span.End {
		span.End = end.End
	}

	return span
}

func sameTokenPosition(a, b lexer.Token) bool {
	return a.Type == b.Type && a.Span.Start == b.Span.Start && a.Span.End == b.Span.End
}
