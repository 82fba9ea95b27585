package rewrite

import (
	"fmt"

	"github.com/malphas-lang/malphas-unroll/internal/diag"
)

// ParseFailure reports a file that could not be parsed. The file is left
// untouched.
type ParseFailure struct {
	Filename    string
	Source      string
	Diagnostics []diag.Diagnostic
}

func (e *ParseFailure) Error() string {
	if len(e.Diagnostics) == 0 {
		return e.Filename + ": parse failed"
	}
	if len(e.Diagnostics) == 1 {
		return e.Diagnostics[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", e.Diagnostics[0].Error(), len(e.Diagnostics)-1)
}
