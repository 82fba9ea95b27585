package parser

import (
	"fmt"

	"github.com/malphas-lang/malphas-unroll/internal/diag"
	"github.com/malphas-lang/malphas-unroll/internal/lexer"
)

// ParseError captures a recoverable parsing error with location context.
type ParseError struct {
	Message  string
	Span     lexer.Span
	Severity diag.Severity
	Help     string
}

// ToDiagnostic converts a parse error into a shared diagnostic structure.
func (e ParseError) ToDiagnostic() diag.Diagnostic {
	return diag.Diagnostic{
		Stage:    diag.StageParser,
		Severity: e.Severity,
		Code:     diag.CodeParseSyntax,
		Message:  e.Message,
		Span: diag.Span{
			Filename: e.Span.Filename,
			Line:     e.Span.Line,
			Column:   e.Span.Column,
			Start:    e.Span.Start,
			End:      e.Span.End,
		},
		Help: e.Help,
	}
}

// Error implements the error interface.
func (e ParseError) Error() string {
	if e.Span.Line > 0 {
		return fmt.Sprintf("%d:%d: %s", e.Span.Line, e.Span.Column, e.Message)
	}
	return e.Message
}

// emitParseDiagnostic records a recoverable diagnostic without aborting parsing. All
// call sites must supply the best-effort span available at the failure site.
func (p *Parser) emitParseDiagnostic(msg string, span lexer.Span, severity diag.Severity, help string) {
	if span.Filename == "" && p.filename != "" {
		span.Filename = p.filename
	}

	p.errors = append(p.errors, ParseError{
		Message:  msg,
		Span:     span,
		Severity: severity,
		Help:     help,
	})
}

// reportError reports a simple error.
func (p *Parser) reportError(msg string, span lexer.Span) {
	p.emitParseDiagnostic(msg, span, diag.SeverityError, "")
}

// reportErrorWithHelp reports an error with help text.
func (p *Parser) reportErrorWithHelp(msg string, span lexer.Span, help string) {
	p.emitParseDiagnostic(msg, span, diag.SeverityError, help)
}

// reportExpected reports an error when an expected token is missing.
func (p *Parser) reportExpected(expected string, found lexer.Token) {
	msg := fmt.Sprintf("expected %s, found %s", expected, describeToken(found))

	help := ""
	if found.Type == lexer.EOF {
		help = "the input ended early; check for a missing `}` or `;`"
	}

	p.reportErrorWithHelp(msg, found.Span, help)
}

// reportUnexpected reports an error for an unexpected token.
func (p *Parser) reportUnexpected(unexpected lexer.Token, context string) {
	msg := "unexpected " + describeToken(unexpected)
	if context != "" {
		msg = fmt.Sprintf("%s in %s", msg, context)
	}
	p.reportError(msg, unexpected.Span)
}
