package logging

import (
	"bytes"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/malphas-lang/malphas-unroll/internal/lexer"
	"github.com/malphas-lang/malphas-unroll/internal/rewrite"
	"github.com/malphas-lang/malphas-unroll/internal/unroll"
)

func TestNewFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(&buf, "warn", false)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	log.Info("quiet")
	log.Warn("loud", zap.String("file", "a.mal"))

	out := buf.String()
	if strings.Contains(out, "quiet") {
		t.Fatalf("info entry should be dropped:\n%s", out)
	}
	if !strings.Contains(out, "WARN loud") || !strings.Contains(out, `"file": "a.mal"`) {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("expected no color escapes:\n%s", out)
	}
}

func TestNewColor(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(&buf, "info", true)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	log.Error("boom")
	if !strings.Contains(buf.String(), "\x1b[") {
		t.Fatalf("expected color escapes, got %q", buf.String())
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New(&bytes.Buffer{}, "chatty", false); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestReport(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := zap.New(core)

	Report(log, "k.mal", rewrite.FuncReport{
		Name: "kernel",
		Report: unroll.Report{Decisions: []unroll.Decision{
			{Span: lexer.Span{Line: 3}, Var: "i", Iterations: 4, Reason: unroll.Unrolled},
			{Span: lexer.Span{Line: 7}, Var: "j", Reason: unroll.ReasonNonLiteralBound},
			{Span: lexer.Span{Line: 9}, Reason: unroll.ReasonPattern},
		}},
	})

	entries := logs.AllUntimed()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	if entries[0].Level != zapcore.DebugLevel || entries[0].Message != "unrolled loop" {
		t.Fatalf("unexpected first entry %+v", entries[0])
	}
	fields := entries[0].ContextMap()
	if fields["fn"] != "kernel" || fields["var"] != "i" || fields["iterations"] != uint64(4) || fields["line"] != int64(3) {
		t.Fatalf("unexpected fields %v", fields)
	}

	if entries[1].Level != zapcore.InfoLevel {
		t.Fatalf("expected skipped loop at info, got %v", entries[1].Level)
	}
	if got := entries[1].ContextMap()["reason"]; got != unroll.ReasonNonLiteralBound.String() {
		t.Fatalf("unexpected reason %v", got)
	}

	if _, ok := entries[2].ContextMap()["var"]; ok {
		t.Fatalf("expected no var field for a pattern loop")
	}
	if got := logs.FilterMessage("loop left as is").Len(); got != 2 {
		t.Fatalf("expected 2 skipped entries, got %d", got)
	}
}
