package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/pmezard/go-difflib/difflib"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/malphas-lang/malphas-unroll/internal/config"
	"github.com/malphas-lang/malphas-unroll/internal/diag"
	"github.com/malphas-lang/malphas-unroll/internal/logging"
	"github.com/malphas-lang/malphas-unroll/internal/rewrite"
	"github.com/malphas-lang/malphas-unroll/internal/unroll"
)

const stdinName = "<stdin>"

// processor rewrites inputs and emits results according to the flags.
type processor struct {
	flags    flags
	settings config.Settings
	log      *zap.Logger
	stdout   io.Writer
	stderr   io.Writer
	color    bool
}

// stdin rewrites standard input.
func (p *processor) stdin(ctx context.Context, r io.Reader) error {
	src, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read %s: %w", stdinName, err)
	}
	res, err := rewrite.Source(ctx, stdinName, string(src), p.settings.RewriteOptions())
	if err != nil {
		return err
	}
	return p.emit(res)
}

// paths expands directories and rewrites every matching file.
func (p *processor) paths(ctx context.Context, paths []string) error {
	files, err := p.collect(paths)
	if err != nil {
		p.report(err)
		return err
	}
	return p.files(ctx, files)
}

// collect returns the files named by paths. Directories are walked for files
// with a configured extension; explicit files are taken as given.
func (p *processor) collect(paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}
		if p.flags.output != "" {
			return nil, fmt.Errorf("-o cannot be used with directory %s", path)
		}

		err = filepath.WalkDir(path, func(name string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if name != path && len(d.Name()) > 1 && d.Name()[0] == '.' {
					return filepath.SkipDir
				}
				return nil
			}
			if p.settings.MatchesExtension(name) {
				files = append(files, name)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

// files rewrites files concurrently and emits their results in order. Every
// failure is reported; the returned error combines them.
func (p *processor) files(ctx context.Context, files []string) error {
	results := make([]*rewrite.Result, len(files))
	errs := make([]error, len(files))

	var g errgroup.Group
	g.SetLimit(p.settings.Jobs)
	opts := p.settings.RewriteOptions()
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			results[i], errs[i] = rewrite.File(ctx, file, opts)
			return nil
		})
	}
	_ = g.Wait()

	var combined error
	changed, unrolled := 0, 0
	for i, res := range results {
		if errs[i] != nil {
			p.report(errs[i])
			combined = multierr.Append(combined, errs[i])
			continue
		}
		if err := p.emit(res); err != nil {
			p.report(err)
			combined = multierr.Append(combined, err)
			continue
		}
		if res.Changed {
			changed++
		}
		unrolled += res.Unrolled()
	}

	p.log.Debug("processed",
		zap.Int("files", len(files)),
		zap.Int("changed", changed),
		zap.Int("unrolled", unrolled),
		zap.Int("failed", len(multierr.Errors(combined))),
	)
	return combined
}

// emit writes one result the way the flags ask for.
func (p *processor) emit(res *rewrite.Result) error {
	for _, fn := range res.Functions {
		logging.Report(p.log, res.Filename, fn)
	}

	f := p.flags
	if f.verbose {
		p.explain(res)
	}
	if f.list && res.Changed {
		fmt.Fprintln(p.stdout, res.Filename)
	}
	if f.diff && res.Changed {
		text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(res.Source),
			B:        difflib.SplitLines(res.Output),
			FromFile: res.Filename + ".orig",
			ToFile:   res.Filename,
			Context:  3,
		})
		if err != nil {
			return fmt.Errorf("diff %s: %w", res.Filename, err)
		}
		fmt.Fprint(p.stdout, text)
	}

	switch {
	case f.output != "":
		return os.WriteFile(f.output, []byte(res.Output), 0o644)
	case f.write:
		if !res.Changed {
			return nil
		}
		info, err := os.Stat(res.Filename)
		if err != nil {
			return err
		}
		if err := os.WriteFile(res.Filename, []byte(res.Output), info.Mode().Perm()); err != nil {
			return err
		}
		p.log.Info("rewrote file", zap.String("file", res.Filename), zap.Int("unrolled", res.Unrolled()))
		return nil
	case f.list || f.diff:
		return nil
	default:
		_, err := io.WriteString(p.stdout, res.Output)
		return err
	}
}

// explain prints a note for every loop in res that was left in place.
func (p *processor) explain(res *rewrite.Result) {
	formatter := diag.NewFormatter(p.stderr, p.color)
	formatter.AddSource(res.Filename, res.Source)
	for _, fn := range res.Functions {
		for _, d := range fn.Report.Decisions {
			if !d.Unrolled() {
				formatter.Format(d.ToDiagnostic())
			}
		}
	}
}

// report prints err to stderr, rendering diagnostics with source snippets
// where the error carries them.
func (p *processor) report(err error) {
	formatter := diag.NewFormatter(p.stderr, p.color)
	for _, e := range multierr.Errors(err) {
		var pf *rewrite.ParseFailure
		var se *unroll.SynthesisError
		switch {
		case errors.As(e, &pf):
			formatter.AddSource(pf.Filename, pf.Source)
			diags := append([]diag.Diagnostic(nil), pf.Diagnostics...)
			sort.SliceStable(diags, func(i, j int) bool { return diags[i].Span.Start < diags[j].Span.Start })
			for _, d := range diags {
				formatter.Format(d)
			}
		case errors.As(e, &se):
			formatter.Format(se.ToDiagnostic())
		default:
			fmt.Fprintf(p.stderr, "malphas-unroll: %v\n", e)
		}
	}
}
