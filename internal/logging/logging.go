// Package logging builds the zap logger used by the command-line tool.
package logging

import (
	"fmt"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/malphas-lang/malphas-unroll/internal/rewrite"
)

// New returns a console logger writing to w. Entries below level are
// dropped. Level names are colored when color is set.
func New(w io.Writer, level string, color bool) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	cfg := zapcore.EncoderConfig{
		MessageKey:       "msg",
		LevelKey:         "level",
		NameKey:          "logger",
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " ",
	}
	if color {
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.AddSync(w), lvl)
	return zap.New(core), nil
}

// Report logs the decisions taken for one annotated function. Expanded
// loops are logged at debug level, loops left in place at info.
func Report(log *zap.Logger, filename string, fn rewrite.FuncReport) {
	for _, d := range fn.Report.Decisions {
		fields := []zap.Field{
			zap.String("file", filename),
			zap.String("fn", fn.Name),
			zap.Int("line", d.Span.Line),
		}
		if d.Var != "" {
			fields = append(fields, zap.String("var", d.Var))
		}

		if d.Unrolled() {
			log.Debug("unrolled loop", append(fields, zap.Uint64("iterations", d.Iterations))...)
			continue
		}
		log.Info("loop left as is", append(fields, zap.Stringer("reason", d.Reason))...)
	}
}
