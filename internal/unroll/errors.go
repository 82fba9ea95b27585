package unroll

import (
	"strings"

	"github.com/malphas-lang/malphas-unroll/internal/diag"
	"github.com/malphas-lang/malphas-unroll/internal/lexer"
)

// SynthesisError reports a generated iteration block that the parser could
// not read back. It indicates a fault in the tool, not in the input.
type SynthesisError struct {
	Fragment string     // rendered source of the failing block
	Span     lexer.Span // the loop being unrolled
	Messages []string
}

func newSynthesisError(fragment string, span lexer.Span, diags []diag.Diagnostic) *SynthesisError {
	msgs := make([]string, len(diags))
	for i, d := range diags {
		msgs[i] = d.Error()
	}
	return &SynthesisError{Fragment: fragment, Span: span, Messages: msgs}
}

func (e *SynthesisError) Error() string {
	return "unroll: synthesized iteration block does not parse: " + strings.Join(e.Messages, "; ")
}

// ToDiagnostic converts the error into a shared diagnostic pointing at the loop.
func (e *SynthesisError) ToDiagnostic() diag.Diagnostic {
	d := diag.Diagnostic{
		Stage:    diag.StageUnroll,
		Severity: diag.SeverityError,
		Code:     diag.CodeUnrollSynthesisFailed,
		Message:  "generated iteration block failed to parse",
		Span: diag.Span{
			Filename: e.Span.Filename,
			Line:     e.Span.Line,
			Column:   e.Span.Column,
			Start:    e.Span.Start,
			End:      e.Span.End,
		},
		Help: "this is a bug in malphas-unroll; please report it with the fragment below",
	}
	for _, msg := range e.Messages {
		d = d.WithNote(msg)
	}
	return d.WithNote("fragment:\n" + e.Fragment)
}
