package rewrite_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/malphas-lang/malphas-unroll/internal/diag"
	"github.com/malphas-lang/malphas-unroll/internal/rewrite"
	"github.com/malphas-lang/malphas-unroll/internal/unroll"
)

func rewriteSource(t *testing.T, src string, opts rewrite.Options) *rewrite.Result {
	t.Helper()

	res, err := rewrite.Source(context.Background(), "input.mal", src, opts)
	if err != nil {
		t.Fatalf("rewrite failed: %v", err)
	}
	return res
}

func expectOutput(t *testing.T, got, want string) {
	t.Helper()
	if got != want {
		t.Fatalf("\nexpected:\n%s\nactual:\n%s", want, got)
	}
}

func TestRewritePreservesSurroundingText(t *testing.T) {
	const head = `// héllo ✓ leading comment
use std::ops::Add;

/// Adds one to each lane.
`
	const annotated = `#[unroll_for_loops]
fn add_all(xs: &mut [u32; 2]) {
    // this comment is inside the function
    for i in 0..2 {
        xs[i] += 1;
    }
}`
	const tail = `

fn untouched() {
    for i in 0..3 { keep(i); }
}
`

	res := rewriteSource(t, head+annotated+tail, rewrite.Options{})

	want := head + `fn add_all(xs: &mut [u32; 2]) {
    {
        #[allow(non_upper_case_globals)]
        {
            const i: usize = 0;
            xs[i] += 1;
        }
        #[allow(non_upper_case_globals)]
        {
            const i: usize = 1;
            xs[i] += 1;
        }
    }
}` + tail

	expectOutput(t, res.Output, want)
	if !res.Changed {
		t.Fatalf("expected Changed to be set")
	}
	if len(res.Functions) != 1 || res.Functions[0].Name != "add_all" {
		t.Fatalf("unexpected function reports %+v", res.Functions)
	}
	if res.Unrolled() != 1 {
		t.Fatalf("expected 1 unrolled loop, got %d", res.Unrolled())
	}
}

func TestRewriteImplMethodKeepsIndentation(t *testing.T) {
	const src = `impl M {
    fn other(&self) {}

    #[unroll_for_loops]
    fn f(&self) {
        for i in 0..1 { g(i); }
    }
}
`

	res := rewriteSource(t, src, rewrite.Options{})

	expectOutput(t, res.Output, `impl M {
    fn other(&self) {}

    fn f(&self) {
        {
            #[allow(non_upper_case_globals)]
            {
                const i: usize = 0;
                g(i);
            }
        }
    }
}
`)
}

func TestRewriteImplMethodKeepsMultilineString(t *testing.T) {
	const src = "impl M {\n" +
		"    #[unroll_for_loops]\n" +
		"    fn f(&self) {\n" +
		"        let s = \"x\ny\";\n" +
		"        for i in 0..1 { g(i, s); }\n" +
		"    }\n" +
		"}\n"

	res := rewriteSource(t, src, rewrite.Options{})

	expectOutput(t, res.Output, "impl M {\n"+
		"    fn f(&self) {\n"+
		"        let s = \"x\ny\";\n"+
		"        {\n"+
		"            #[allow(non_upper_case_globals)]\n"+
		"            {\n"+
		"                const i: usize = 0;\n"+
		"                g(i, s);\n"+
		"            }\n"+
		"        }\n"+
		"    }\n"+
		"}\n")
}

func TestRewriteKeepsOtherAttributes(t *testing.T) {
	const src = "#[inline]\n#[unroll_for_loops]\n#[must_use]\npub fn f() -> u8 { 0 }\n"

	res := rewriteSource(t, src, rewrite.Options{})

	expectOutput(t, res.Output, "#[inline]\n#[must_use]\npub fn f() -> u8 {\n    0\n}\n")
	if res.Unrolled() != 0 {
		t.Fatalf("expected no loops, got %d", res.Unrolled())
	}
}

func TestRewriteWithoutMarkerIsIdentity(t *testing.T) {
	const src = "fn f() {\n    for i in 0..4 { g(i); }\n}\n"

	res := rewriteSource(t, src, rewrite.Options{})

	expectOutput(t, res.Output, src)
	if res.Changed || len(res.Functions) != 0 {
		t.Fatalf("expected no change, got %+v", res)
	}
}

func TestRewriteLeavesUnmarkedFunctionsAlone(t *testing.T) {
	const head = `fn boxed() -> Box<dyn Fn()> { Box::new(|| {}) }
unsafe fn read(p: *const u8) -> u8 { *p }
fn bytes() -> &'static [u8] { b"bytes" }
fn labelled() { 'outer: loop { break 'outer; } }

`
	const src = head + `#[unroll_for_loops]
fn f() {
    for i in 0..1 { fn h(g: &dyn Fn()) {} g(i); }
}
`

	res := rewriteSource(t, src, rewrite.Options{})

	expectOutput(t, res.Output, head+`fn f() {
    {
        #[allow(non_upper_case_globals)]
        {
            const i: usize = 0;
            fn h(g: &dyn Fn()) {}
            g(i);
        }
    }
}
`)
	if len(res.Functions) != 1 || res.Unrolled() != 1 {
		t.Fatalf("expected one unrolled loop in f, got %+v", res.Functions)
	}
}

func TestRewriteCustomMarker(t *testing.T) {
	const src = "#[unroll]\nfn f() { for i in 0..1 { g(i); } }\n#[unroll_for_loops]\nfn h() {}\n"

	res := rewriteSource(t, src, rewrite.Options{Marker: "unroll"})

	if len(res.Functions) != 1 || res.Functions[0].Name != "f" {
		t.Fatalf("expected only f to be selected, got %+v", res.Functions)
	}
	if !strings.Contains(res.Output, "#[unroll_for_loops]\nfn h() {}") {
		t.Fatalf("expected h untouched:\n%s", res.Output)
	}
}

func TestRewriteOptionsReachUnroller(t *testing.T) {
	const src = "#[unroll_for_loops]\nfn f() {\n    for i in 0..8 { g(i); }\n    if c { for j in 0..2 { g(j); } }\n}\n"

	res := rewriteSource(t, src, rewrite.Options{MaxIterations: 4, Scope: unroll.ScopeLoops, Jobs: 1})

	report := res.Functions[0].Report
	if report.Unrolled() != 0 || len(report.Decisions) != 1 {
		t.Fatalf("expected a single skipped loop, got %+v", report.Decisions)
	}
	if report.Decisions[0].Reason != unroll.ReasonTooManyIterations {
		t.Fatalf("expected the iteration limit to apply, got %q", report.Decisions[0].Reason)
	}
}

func TestRewriteManyFunctions(t *testing.T) {
	var b strings.Builder
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		b.WriteString("#[unroll_for_loops]\nfn " + name + "() { for i in 0..2 { g(i); } }\n\n")
	}

	res := rewriteSource(t, b.String(), rewrite.Options{Jobs: 2})

	if len(res.Functions) != 5 {
		t.Fatalf("expected 5 functions, got %d", len(res.Functions))
	}
	for i, name := range []string{"a", "b", "c", "d", "e"} {
		if res.Functions[i].Name != name {
			t.Fatalf("expected reports in source order, got %+v", res.Functions)
		}
	}
	if strings.Contains(res.Output, "for i") {
		t.Fatalf("expected every loop unrolled:\n%s", res.Output)
	}
}

func TestRewriteParseFailure(t *testing.T) {
	const src = "#[unroll_for_loops]\nfn f() { let = 1; }\n"

	res, err := rewrite.Source(context.Background(), "broken.mal", src, rewrite.Options{})
	if err == nil {
		t.Fatalf("expected error, got %+v", res)
	}

	var pf *rewrite.ParseFailure
	if !errors.As(err, &pf) {
		t.Fatalf("expected *rewrite.ParseFailure, got %T", err)
	}
	if len(pf.Diagnostics) == 0 || pf.Diagnostics[0].Code != diag.CodeParseSyntax {
		t.Fatalf("unexpected diagnostics %+v", pf.Diagnostics)
	}
	if pf.Diagnostics[0].Span.Filename != "broken.mal" {
		t.Fatalf("expected filename in diagnostic, got %q", pf.Diagnostics[0].Span.Filename)
	}
}

func TestRewriteCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := rewrite.Source(ctx, "x.mal", "#[unroll_for_loops]\nfn f() { for i in 0..2 { g(i); } }\n", rewrite.Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRewriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "k.mal")
	if err := os.WriteFile(path, []byte("#[unroll_for_loops]\nfn f() { for i in 0..1 { g(i); } }\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	res, err := rewrite.File(context.Background(), path, rewrite.Options{})
	if err != nil {
		t.Fatalf("rewrite failed: %v", err)
	}
	if res.Filename != path || !res.Changed {
		t.Fatalf("unexpected result %+v", res)
	}

	if _, err := rewrite.File(context.Background(), filepath.Join(t.TempDir(), "missing.mal"), rewrite.Options{}); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}
