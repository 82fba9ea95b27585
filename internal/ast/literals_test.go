package ast

import (
	"testing"

	"github.com/malphas-lang/malphas-unroll/internal/lexer"
)

func TestIntegerLitValue(t *testing.T) {
	tests := []struct {
		text   string
		value  uint64
		suffix string
	}{
		{"0", 0, ""},
		{"42", 42, ""},
		{"010", 10, ""},
		{"1_000", 1000, ""},
		{"7u8", 7, "u8"},
		{"128u128", 128, "u128"},
		{"3usize", 3, "usize"},
		{"5i64", 5, "i64"},
		{"0xff", 255, ""},
		{"0xFFu16", 255, "u16"},
		{"0o17", 15, ""},
		{"0b1010_1010", 170, ""},
		{"18446744073709551615", 18446744073709551615, ""},
	}

	for _, tt := range tests {
		lit := NewIntegerLit(tt.text, lexer.Span{})
		got, err := lit.Value()
		if err != nil {
			t.Errorf("%s: unexpected error %v", tt.text, err)
			continue
		}
		if got != tt.value {
			t.Errorf("%s: expected %d, got %d", tt.text, tt.value, got)
		}
		if s := lit.Suffix(); s != tt.suffix {
			t.Errorf("%s: expected suffix %q, got %q", tt.text, tt.suffix, s)
		}
	}
}

func TestIntegerLitValueOverflow(t *testing.T) {
	for _, text := range []string{"18446744073709551616", "99999999999999999999999u128", "0x1_0000_0000_0000_0000"} {
		if _, err := NewIntegerLit(text, lexer.Span{}).Value(); err == nil {
			t.Errorf("%s: expected overflow error", text)
		}
	}
}

func TestWalkVisitsLoopBody(t *testing.T) {
	span := lexer.Span{}
	call := NewCallExpr(NewIdent("f", span), []Expr{NewIdent("i", span)}, span)
	body := NewBlockExpr([]Stmt{NewSemiStmt(call, span)}, span)
	loop := NewForExpr(
		NewPatternIdent(NewIdent("i", span), BindingModeMove, false, span),
		NewRangeExpr(NewIntegerLit("0", span), NewIntegerLit("3", span), false, span),
		body,
		span,
	)

	var idents []string
	Walk(loop, func(n Node) bool {
		if id, ok := n.(*Ident); ok {
			idents = append(idents, id.Name)
		}
		return true
	})

	want := []string{"i", "f", "i"}
	if len(idents) != len(want) {
		t.Fatalf("expected %v, got %v", want, idents)
	}
	for i := range want {
		if idents[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, idents)
		}
	}
}
