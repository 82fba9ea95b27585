package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/malphas-lang/malphas-unroll/internal/config"
	"github.com/malphas-lang/malphas-unroll/internal/diag"
	"github.com/malphas-lang/malphas-unroll/internal/logging"
	"github.com/malphas-lang/malphas-unroll/internal/unroll"
	"github.com/malphas-lang/malphas-unroll/internal/version"
	"github.com/malphas-lang/malphas-unroll/internal/watch"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// flags holds the parsed command line.
type flags struct {
	write      bool
	output     string
	diff       bool
	list       bool
	watch      bool
	configPath string
	verbose    bool
	version    bool

	marker        string
	scope         string
	maxIterations uint64
	jobs          int
}

func newFlagSet(f *flags, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("malphas-unroll", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: malphas-unroll [options] [path ...]\n")
		fmt.Fprintf(stderr, "\nUnrolls literal-range for loops in functions marked #[unroll_for_loops].\n")
		fmt.Fprintf(stderr, "With no paths, reads standard input and writes standard output.\n")
		fmt.Fprintf(stderr, "\nOptions:\n")
		fs.PrintDefaults()
	}

	fs.BoolVar(&f.write, "w", false, "write result to the source file instead of stdout")
	fs.StringVar(&f.output, "o", "", "write result to `file` (single input only)")
	fs.BoolVar(&f.diff, "d", false, "print a unified diff instead of the result")
	fs.BoolVar(&f.list, "l", false, "list files whose output differs from the input")
	fs.BoolVar(&f.watch, "watch", false, "rerun when watched files change")
	fs.StringVar(&f.configPath, "config", "", "config `file` (default: nearest "+config.FileName+")")
	fs.BoolVar(&f.verbose, "v", false, "log every loop decision")
	fs.BoolVar(&f.version, "version", false, "print the version and exit")

	fs.StringVar(&f.marker, "marker", "", "attribute that selects functions")
	fs.StringVar(&f.scope, "scope", "", "where loops are found: full or loops")
	fs.Uint64Var(&f.maxIterations, "max-iterations", 0, "leave loops with more iterations in place (0 = no limit)")
	fs.IntVar(&f.jobs, "j", 0, "number of files processed in parallel")
	return fs
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var f flags
	fs := newFlagSet(&f, stderr)
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	if f.version {
		fmt.Fprintf(stdout, "malphas-unroll %s\n", version.String())
		return 0
	}

	paths := fs.Args()
	if f.output != "" && (f.write || len(paths) > 1) {
		fmt.Fprintf(stderr, "malphas-unroll: -o needs exactly one input and cannot be combined with -w\n")
		return 2
	}
	if len(paths) == 0 && (f.write || f.watch) {
		fmt.Fprintf(stderr, "malphas-unroll: -w and -watch need at least one path\n")
		return 2
	}

	color := isTerminal(stderr)
	settings, err := resolveSettings(fs, &f)
	if err != nil {
		formatter := diag.NewFormatter(stderr, color)
		for _, e := range multierr.Errors(err) {
			formatter.Format(diag.Diagnostic{
				Stage:    diag.StageConfig,
				Severity: diag.SeverityError,
				Code:     diag.CodeConfigInvalid,
				Message:  e.Error(),
			})
		}
		return 2
	}

	log, err := logging.New(stderr, settings.LogLevel, color)
	if err != nil {
		fmt.Fprintf(stderr, "malphas-unroll: %v\n", err)
		return 2
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	p := &processor{
		flags:    f,
		settings: settings,
		log:      log,
		stdout:   stdout,
		stderr:   stderr,
		color:    color,
	}

	if len(paths) == 0 {
		if err := p.stdin(ctx, stdin); err != nil {
			p.report(err)
			return 1
		}
		return 0
	}

	failed := p.paths(ctx, paths) != nil
	if !f.watch {
		if failed {
			return 1
		}
		return 0
	}

	if err := p.watch(ctx, paths); err != nil && ctx.Err() == nil {
		fmt.Fprintf(stderr, "malphas-unroll: watch: %v\n", err)
		return 1
	}
	return 0
}

// resolveSettings layers defaults, the config file, the environment and
// explicitly set flags, in that order.
func resolveSettings(fs *flag.FlagSet, f *flags) (config.Settings, error) {
	settings := config.Defaults()

	var (
		cfg  *config.Config
		path string
		err  error
	)
	if f.configPath != "" {
		path = f.configPath
		cfg, err = config.LoadFile(path)
	} else {
		cfg, path, err = config.Load(".")
	}
	if err != nil {
		return settings, err
	}
	if err := cfg.CheckRequires(path, version.Current()); err != nil {
		return settings, err
	}

	err = multierr.Append(cfg.Apply(&settings), config.ApplyEnv(&settings))

	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "marker":
			settings.Marker = f.marker
		case "scope":
			scope, ok := unroll.ParseScope(f.scope)
			if !ok {
				err = multierr.Append(err, fmt.Errorf("-scope: unknown value %q (want full or loops)", f.scope))
			}
			settings.Scope = scope
		case "max-iterations":
			settings.MaxIterations = f.maxIterations
		case "j":
			settings.Jobs = f.jobs
		case "v":
			if f.verbose {
				settings.LogLevel = "debug"
			}
		}
	})

	return settings, multierr.Append(err, settings.Validate())
}

func (p *processor) watch(ctx context.Context, paths []string) error {
	w, err := watch.New(p.settings.MatchesExtension)
	if err != nil {
		return err
	}
	defer w.Close()

	for _, path := range paths {
		if err := w.Add(path); err != nil {
			return err
		}
	}

	p.log.Info("watching for changes", zap.Strings("paths", paths))
	return w.Run(ctx, func(changed []string) {
		p.log.Debug("change detected", zap.Strings("files", changed))
		_ = p.files(ctx, changed)
	})
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && diag.IsTerminal(f.Fd())
}
