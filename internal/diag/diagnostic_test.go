package diag_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/malphas-lang/malphas-unroll/internal/diag"
	"github.com/malphas-lang/malphas-unroll/internal/lexer"
)

func TestFromLexerError(t *testing.T) {
	err := lexer.LexerError{
		Kind:    lexer.ErrUnterminatedString,
		Message: "unterminated string literal",
		Span: lexer.Span{
			Line:   1,
			Column: 3,
			Start:  2,
			End:    6,
		},
	}

	diagnostic := err.ToDiagnostic()

	if diagnostic.Stage != diag.StageLexer {
		t.Fatalf("expected stage %q, got %q", diag.StageLexer, diagnostic.Stage)
	}
	if diagnostic.Code != diag.CodeLexerUnterminatedString {
		t.Fatalf("expected code %q, got %q", diag.CodeLexerUnterminatedString, diagnostic.Code)
	}

	wantSpan := diag.Span{
		Line:   err.Span.Line,
		Column: err.Span.Column,
		Start:  err.Span.Start,
		End:    err.Span.End,
	}
	if diagnostic.Span != wantSpan {
		t.Fatalf("expected span %+v, got %+v", wantSpan, diagnostic.Span)
	}
}

func TestDiagnosticError(t *testing.T) {
	tests := []struct {
		name string
		d    diag.Diagnostic
		want string
	}{
		{
			name: "with location",
			d: diag.Diagnostic{
				Severity: diag.SeverityError,
				Message:  "expected `;`",
				Span:     diag.Span{Filename: "k.mal", Line: 3, Column: 7},
			},
			want: "k.mal:3:7: error: expected `;`",
		},
		{
			name: "without filename",
			d: diag.Diagnostic{
				Severity: diag.SeverityWarning,
				Message:  "loop left as is",
				Span:     diag.Span{Line: 1, Column: 1},
			},
			want: "1:1: warning: loop left as is",
		},
		{
			name: "without location",
			d:    diag.Diagnostic{Severity: diag.SeverityNote, Message: "nothing to do"},
			want: "note: nothing to do",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.d.Error(); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestDiagnosticBuilders(t *testing.T) {
	span := diag.Span{Line: 1, Column: 1, Start: 0, End: 3}
	d := diag.Diagnostic{Message: "m"}.
		WithPrimarySpan(span, "here").
		WithSecondarySpan(span, "there").
		WithNote("n1").
		WithHelp("h")

	if len(d.LabeledSpans) != 2 || d.LabeledSpans[0].Style != "primary" || d.LabeledSpans[1].Style != "secondary" {
		t.Fatalf("unexpected labeled spans %+v", d.LabeledSpans)
	}
	if got := d.WithLabeledSpan(span, "", "").LabeledSpans[2].Style; got != "primary" {
		t.Fatalf("expected default style primary, got %q", got)
	}
	if len(d.Notes) != 1 || d.Help != "h" {
		t.Fatalf("unexpected notes/help %+v", d)
	}
}

func TestFormatterShowsSourceSnippet(t *testing.T) {
	src := "fn f() {\n    for i in 0..n {}\n}\n"

	var buf bytes.Buffer
	f := diag.NewFormatter(&buf, false)
	f.AddSource("k.mal", src)

	f.Format(diag.Diagnostic{
		Severity: diag.SeverityWarning,
		Code:     diag.CodeUnrollSkipped,
		Message:  "loop left as is",
		Span:     diag.Span{Filename: "k.mal", Line: 2, Column: 14, Start: 22, End: 23},
		Help:     "use an integer literal bound",
	})

	out := buf.String()
	for _, want := range []string{
		"warning[UNROLL_SKIPPED]: loop left as is",
		"k.mal:2:14",
		"for i in 0..n {}",
		"^",
		"use an integer literal bound",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("expected no color escapes:\n%s", out)
	}
}
