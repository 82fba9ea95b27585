// Package rewrite applies the loop unroller to annotated functions in a
// source file and splices the results back into the original text.
//
// Only the byte ranges of annotated functions change. Everything between
// them, comments and formatting included, is copied through unchanged.
package rewrite

import (
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/malphas-lang/malphas-unroll/internal/ast"
	"github.com/malphas-lang/malphas-unroll/internal/lexer"
	"github.com/malphas-lang/malphas-unroll/internal/parser"
	"github.com/malphas-lang/malphas-unroll/internal/printer"
	"github.com/malphas-lang/malphas-unroll/internal/unroll"
)

// DefaultMarker is the attribute that opts a function in.
const DefaultMarker = "unroll_for_loops"

// Options configures a rewrite.
type Options struct {
	// Marker is the attribute name selecting functions. Empty means DefaultMarker.
	Marker string
	// Scope and MaxIterations are passed to each Unroller.
	Scope         unroll.Scope
	MaxIterations uint64
	// Indent is the indentation unit for rendered functions.
	Indent string
	// Jobs bounds the number of functions transformed at once. Zero or
	// negative means no bound.
	Jobs int
}

func (o Options) marker() string {
	if o.Marker == "" {
		return DefaultMarker
	}
	return o.Marker
}

func (o Options) unrollOptions() []unroll.Option {
	return []unroll.Option{
		unroll.WithScope(o.Scope),
		unroll.WithMaxIterations(o.MaxIterations),
		unroll.WithMarker(o.marker()),
	}
}

// FuncReport holds the unroller decisions for one annotated function.
type FuncReport struct {
	Name   string
	Span   lexer.Span
	Report unroll.Report
}

// Result is the outcome of rewriting one source file.
type Result struct {
	Filename  string
	Source    string
	Output    string
	Changed   bool
	Functions []FuncReport
}

// Unrolled returns the number of loops expanded across all functions.
func (r *Result) Unrolled() int {
	n := 0
	for _, fn := range r.Functions {
		n += fn.Report.Unrolled()
	}
	return n
}

// File reads path and rewrites its contents.
func File(ctx context.Context, path string, opts Options) (*Result, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Source(ctx, path, string(src), opts)
}

// Source rewrites every function in src that carries the marker attribute.
// A file with syntax errors yields a *ParseFailure; a generated block that
// does not parse yields a wrapped *unroll.SynthesisError.
func Source(ctx context.Context, filename, src string, opts Options) (*Result, error) {
	marker := opts.marker()
	p := parser.New(src, parser.WithFilename(filename), parser.WithMarker(marker))
	file := p.ParseFile()
	if diags := p.Diagnostics(); len(diags) > 0 {
		return nil, &ParseFailure{Filename: filename, Source: src, Diagnostics: diags}
	}

	selected := selectFunctions(file.Items, marker)

	result := &Result{Filename: filename, Source: src, Output: src}
	if len(selected) == 0 {
		return result, nil
	}

	runes := []rune(src)
	rendered := make([]string, len(selected))
	reports := make([]FuncReport, len(selected))

	g, ctx := errgroup.WithContext(ctx)
	if opts.Jobs > 0 {
		g.SetLimit(opts.Jobs)
	}
	for i, fn := range selected {
		i, fn := i, fn
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			u := unroll.New(opts.unrollOptions()...)
			out, err := u.Function(fn)
			if err != nil {
				return fmt.Errorf("%s: fn %s: %w", filename, fn.Name.Name, err)
			}
			out = withoutAttr(out, marker)

			rendered[i] = printer.New(printer.Options{
				Indent: opts.Indent,
				Margin: lineIndent(runes, fn.Span().Start),
			}).Fn(out)
			reports[i] = FuncReport{Name: fn.Name.Name, Span: fn.Span(), Report: u.Report()}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result.Output = splice(runes, selected, rendered)
	result.Changed = result.Output != src
	result.Functions = reports
	return result, nil
}

// selectFunctions returns annotated functions with bodies, including methods
// of impl blocks, in source order.
func selectFunctions(items []ast.Item, marker string) []*ast.FnDecl {
	var out []*ast.FnDecl
	for _, item := range items {
		switch it := item.(type) {
		case *ast.FnDecl:
			if it.Body != nil && it.HasAttr(marker) {
				out = append(out, it)
			}
		case *ast.ImplDecl:
			out = append(out, selectFunctions(it.Items, marker)...)
		}
	}
	return out
}

// withoutAttr returns fn with every attribute named marker dropped.
func withoutAttr(fn *ast.FnDecl, marker string) *ast.FnDecl {
	attrs := make([]*ast.Attribute, 0, len(fn.Attrs))
	for _, attr := range fn.Attrs {
		if attr.Name() != marker {
			attrs = append(attrs, attr)
		}
	}
	out := *fn
	out.Attrs = attrs
	return &out
}

// splice replaces the source range of each function with its rendering.
// Spans index runes, and fns are in source order without overlap.
func splice(runes []rune, fns []*ast.FnDecl, rendered []string) string {
	var b strings.Builder
	b.Grow(len(runes))

	pos := 0
	for i, fn := range fns {
		span := fn.Span()
		b.WriteString(string(runes[pos:span.Start]))
		b.WriteString(rendered[i])
		pos = span.End
	}
	b.WriteString(string(runes[pos:]))

	return b.String()
}

// lineIndent returns the leading whitespace of the line containing offset.
func lineIndent(runes []rune, offset int) string {
	start := offset
	for start > 0 && runes[start-1] != '\n' {
		start--
	}
	end := start
	for end < len(runes) && (runes[end] == ' ' || runes[end] == '\t') {
		end++
	}
	return string(runes[start:end])
}
