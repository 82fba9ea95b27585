package ast

import (
	"strconv"
	"strings"
)

// integerSuffixes lists the type suffixes an integer literal may carry.
var integerSuffixes = []string{
	"u8", "u16", "u32", "u64", "u128", "usize",
	"i8", "i16", "i32", "i64", "i128", "isize",
}

// Suffix returns the literal's type suffix (`u32` for `8u32`), or "" when
// the literal is unsuffixed.
func (l *IntegerLit) Suffix() string {
	_, suffix := splitIntegerSuffix(l.Text)
	return suffix
}

// Value decodes the literal's magnitude. Underscore separators and the type
// suffix are ignored; 0x, 0o and 0b prefixes are honoured.
func (l *IntegerLit) Value() (uint64, error) {
	digits, _ := splitIntegerSuffix(l.Text)
	digits = strings.ReplaceAll(digits, "_", "")
	if len(digits) > 2 && digits[0] == '0' {
		switch digits[1] {
		case 'x', 'X':
			return strconv.ParseUint(digits[2:], 16, 64)
		case 'o', 'O':
			return strconv.ParseUint(digits[2:], 8, 64)
		case 'b', 'B':
			return strconv.ParseUint(digits[2:], 2, 64)
		}
	}
	// A leading zero does not make a literal octal.
	return strconv.ParseUint(digits, 10, 64)
}

func splitIntegerSuffix(text string) (digits, suffix string) {
	// Suffixes start with `u` or `i`, neither of which is a hex digit.
	for _, s := range integerSuffixes {
		if len(text) > len(s) && strings.HasSuffix(text, s) {
			return text[:len(text)-len(s)], s
		}
	}
	return text, ""
}
