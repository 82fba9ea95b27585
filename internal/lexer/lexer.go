package lexer

import (
	"strconv"
	"unicode"

	"github.com/malphas-lang/malphas-unroll/internal/diag"
)

type LexerErrorKind int

const (
	ErrUnterminatedString LexerErrorKind = iota
	ErrUnterminatedBlockComment
	ErrUnterminatedChar
	ErrIllegalRune
)

type LexerError struct {
	Kind    LexerErrorKind
	Message string
	Span    Span
}

func (k LexerErrorKind) diagnosticCode() diag.Code {
	switch k {
	case ErrUnterminatedString:
		return diag.CodeLexerUnterminatedString
	case ErrUnterminatedBlockComment:
		return diag.CodeLexerUnterminatedBlockComment
	case ErrUnterminatedChar:
		return diag.CodeLexerUnterminatedChar
	case ErrIllegalRune:
		return diag.CodeLexerIllegalRune
	default:
		return diag.Code("LEXER_UNKNOWN_ERROR")
	}
}

// ToDiagnostic converts a lexer error into a shared diagnostic structure.
func (e LexerError) ToDiagnostic() diag.Diagnostic {
	return diag.Diagnostic{
		Stage:    diag.StageLexer,
		Severity: diag.SeverityError,
		Code:     e.Kind.diagnosticCode(),
		Message:  e.Message,
		Span: diag.Span{
			Filename: e.Span.Filename,
			Line:     e.Span.Line,
			Column:   e.Span.Column,
			Start:    e.Span.Start,
			End:      e.Span.End,
		},
	}
}

// Lexer represents the lexer state
type Lexer struct {
	input    []rune
	pos      int  // index of the current rune
	ch       rune // current rune (0 = EOF)
	line     int  // current line number (1-based)
	column   int  // current column number (1-based)
	filename string

	Errors []LexerError
}

func (l *Lexer) addError(kind LexerErrorKind, msg string, span Span) {
	span.Filename = l.filename
	l.Errors = append(l.Errors, LexerError{
		Kind:    kind,
		Message: msg,
		Span:    span,
	})
}

// New creates a new lexer for the given input. Comments and whitespace are skipped.
func New(input string) *Lexer {
	l := &Lexer{
		input:  []rune(input),
		pos:    -1, // start before first rune
		line:   1,
		column: 0, // will be 1 after first read()
	}
	l.read()
	return l
}

// SetFilename attributes all subsequent token spans to name.
func (l *Lexer) SetFilename(name string) {
	l.filename = name
}

// Slice returns the source text between two rune offsets.
func (l *Lexer) Slice(start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(l.input) {
		end = len(l.input)
	}
	if start >= end {
		return ""
	}
	return string(l.input[start:end])
}

// read advances the lexer to the next character.
// Line/column always reflect the position of the character at pos.
func (l *Lexer) read() {
	l.pos++
	prevPos := l.pos - 1
	inputLen := len(l.input)

	if l.pos >= inputLen {
		// Moved past the last rune; normalize position to virtual EOF
		if prevPos >= 0 && prevPos < inputLen {
			if l.input[prevPos] == '\n' {
				l.line++
				l.column = 1
			} else {
				l.column++
			}
		} else if prevPos < 0 {
			l.column = 1
		}
		l.pos = inputLen
		l.ch = 0
		return
	}

	l.ch = l.input[l.pos]

	if prevPos >= 0 && l.input[prevPos] == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
}

// peek returns the next character without advancing
func (l *Lexer) peek() rune {
	return l.peekAt(1)
}

func (l *Lexer) peekAt(n int) rune {
	if l.pos+n >= len(l.input) {
		return 0
	}
	return l.input[l.pos+n]
}

func (l *Lexer) makeToken(tokType TokenType, startLine, startColumn, startPos int, raw, value string) Token {
	return Token{
		Type:  tokType,
		Raw:   raw,
		Value: value,
		Span: Span{
			Filename: l.filename,
			Line:     startLine,
			Column:   startColumn,
			Start:    startPos,
			End:      l.pos,
		},
	}
}

// operator consumes n runes and returns them as a token of the given type.
func (l *Lexer) operator(tokType TokenType, n int) Token {
	startLine, startColumn, startPos := l.line, l.column, l.pos
	for i := 0; i < n; i++ {
		l.read()
	}
	raw := string(l.input[startPos:l.pos])
	return l.makeToken(tokType, startLine, startColumn, startPos, raw, raw)
}

// skipTrivia skips whitespace and comments.
func (l *Lexer) skipTrivia() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r':
			l.read()
		case l.ch == '/' && l.peek() == '/':
			for l.ch != '\n' && l.ch != 0 {
				l.read()
			}
		case l.ch == '/' && l.peek() == '*':
			l.skipBlockComment()
		default:
			return
		}
	}
}

func (l *Lexer) skipBlockComment() {
	startLine, startColumn, startPos := l.line, l.column, l.pos
	l.read() // consume '/'
	l.read() // consume '*'

	depth := 1
	for depth > 0 {
		if l.ch == 0 {
			l.addError(
				ErrUnterminatedBlockComment,
				"unterminated block comment",
				Span{Line: startLine, Column: startColumn, Start: startPos, End: l.pos},
			)
			return
		}
		if l.ch == '/' && l.peek() == '*' {
			l.read()
			l.read()
			depth++
		} else if l.ch == '*' && l.peek() == '/' {
			l.read()
			l.read()
			depth--
		} else {
			l.read()
		}
	}
}

// readIdentifier reads an identifier or keyword
func (l *Lexer) readIdentifier() string {
	start := l.pos
	for isLetter(l.ch) || isDigit(l.ch) {
		l.read()
	}
	return string(l.input[start:l.pos])
}

// readNumber reads a number literal (decimal, hex 0x..., octal 0o..., binary 0b..., float)
// including an optional type suffix such as u32 or usize.
func (l *Lexer) readNumber() (string, TokenType) {
	start := l.pos
	tokType := INT

	if l.ch == '0' && (l.peek() == 'x' || l.peek() == 'X' || l.peek() == 'o' || l.peek() == 'O' || l.peek() == 'b' || l.peek() == 'B') {
		l.read() // consume '0'
		l.read() // consume prefix letter
		for isHexDigit(l.ch) || l.ch == '_' {
			l.read()
		}
		l.readSuffix()
		return string(l.input[start:l.pos]), INT
	}

	for isDigit(l.ch) || l.ch == '_' {
		l.read()
	}

	// A '.' followed by a digit is a fraction; '..' is a range operator.
	if l.ch == '.' && isDigit(l.peek()) {
		tokType = FLOAT
		l.read() // consume '.'
		for isDigit(l.ch) || l.ch == '_' {
			l.read()
		}
	}

	if (l.ch == 'e' || l.ch == 'E') && (isDigit(l.peek()) || ((l.peek() == '+' || l.peek() == '-') && isDigit(l.peekAt(2)))) {
		tokType = FLOAT
		l.read() // consume 'e' or 'E'
		if l.ch == '+' || l.ch == '-' {
			l.read()
		}
		for isDigit(l.ch) || l.ch == '_' {
			l.read()
		}
	}

	if suffix := l.readSuffix(); suffix == "f32" || suffix == "f64" {
		tokType = FLOAT
	}

	return string(l.input[start:l.pos]), tokType
}

// readSuffix consumes a literal type suffix (u8, usize, f64, ...) if present.
func (l *Lexer) readSuffix() string {
	if !isLetter(l.ch) {
		return ""
	}
	start := l.pos
	for isLetter(l.ch) || isDigit(l.ch) {
		l.read()
	}
	return string(l.input[start:l.pos])
}

// NextToken returns the next token from the input
func (l *Lexer) NextToken() Token {
	l.skipTrivia()

	startLine, startColumn, startPos := l.line, l.column, l.pos

	switch l.ch {
	case 0:
		return l.makeToken(EOF, startLine, startColumn, startPos, "", "")

	case '=':
		switch l.peek() {
		case '=':
			return l.operator(EQ, 2)
		case '>':
			return l.operator(FATARROW, 2)
		}
		return l.operator(ASSIGN, 1)

	case '+':
		if l.peek() == '=' {
			return l.operator(PLUS_ASSIGN, 2)
		}
		return l.operator(PLUS, 1)

	case '-':
		switch l.peek() {
		case '>':
			return l.operator(ARROW, 2)
		case '=':
			return l.operator(MINUS_ASSIGN, 2)
		}
		return l.operator(MINUS, 1)

	case '*':
		if l.peek() == '=' {
			return l.operator(STAR_ASSIGN, 2)
		}
		return l.operator(ASTERISK, 1)

	case '/':
		if l.peek() == '=' {
			return l.operator(SLASH_ASSIGN, 2)
		}
		return l.operator(SLASH, 1)

	case '%':
		if l.peek() == '=' {
			return l.operator(PERCENT_ASSIGN, 2)
		}
		return l.operator(PERCENT, 1)

	case '!':
		if l.peek() == '=' {
			return l.operator(NOT_EQ, 2)
		}
		return l.operator(BANG, 1)

	case '&':
		switch l.peek() {
		case '&':
			return l.operator(AND, 2)
		case '=':
			return l.operator(AMP_ASSIGN, 2)
		}
		return l.operator(AMPERSAND, 1)

	case '|':
		switch l.peek() {
		case '|':
			return l.operator(OR, 2)
		case '=':
			return l.operator(PIPE_ASSIGN, 2)
		}
		return l.operator(PIPE, 1)

	case '^':
		if l.peek() == '=' {
			return l.operator(CARET_ASSIGN, 2)
		}
		return l.operator(CARET, 1)

	case '<':
		switch l.peek() {
		case '=':
			return l.operator(LE, 2)
		case '<':
			return l.operator(SHL, 2)
		}
		return l.operator(LT, 1)

	case '>':
		switch l.peek() {
		case '=':
			return l.operator(GE, 2)
		case '>':
			return l.operator(SHR, 2)
		}
		return l.operator(GT, 1)

	case '.':
		if l.peek() == '.' {
			if l.peekAt(2) == '=' {
				return l.operator(DOTDOTEQ, 3)
			}
			return l.operator(DOTDOT, 2)
		}
		return l.operator(DOT, 1)

	case ':':
		if l.peek() == ':' {
			return l.operator(DOUBLE_COLON, 2)
		}
		return l.operator(COLON, 1)

	case ';':
		return l.operator(SEMICOLON, 1)
	case ',':
		return l.operator(COMMA, 1)
	case '?':
		return l.operator(QUESTION, 1)
	case '#':
		return l.operator(HASH, 1)
	case '@':
		return l.operator(AT, 1)
	case '(':
		return l.operator(LPAREN, 1)
	case ')':
		return l.operator(RPAREN, 1)
	case '{':
		return l.operator(LBRACE, 1)
	case '}':
		return l.operator(RBRACE, 1)
	case '[':
		return l.operator(LBRACKET, 1)
	case ']':
		return l.operator(RBRACKET, 1)

	case '"':
		raw, value, terminated := l.readQuoted(startLine, startColumn, startPos, '"')
		if !terminated {
			return l.makeToken(ILLEGAL, startLine, startColumn, startPos, raw, raw)
		}
		return l.makeToken(STRING, startLine, startColumn, startPos, raw, value)

	case '\'':
		if isLetter(l.peek()) && l.peekAt(2) != '\'' {
			l.read()
			name := l.readIdentifier()
			return l.makeToken(LIFETIME, startLine, startColumn, startPos, "'"+name, name)
		}
		raw, value, terminated := l.readQuoted(startLine, startColumn, startPos, '\'')
		if !terminated {
			return l.makeToken(ILLEGAL, startLine, startColumn, startPos, raw, raw)
		}
		return l.makeToken(CHAR, startLine, startColumn, startPos, raw, value)
	}

	if l.rawStringAhead() {
		raw, value, terminated := l.readRawString(startLine, startColumn, startPos)
		if !terminated {
			return l.makeToken(ILLEGAL, startLine, startColumn, startPos, raw, raw)
		}
		return l.makeToken(STRING, startLine, startColumn, startPos, raw, value)
	}

	if l.ch == 'b' && (l.peek() == '"' || l.peek() == '\'') {
		quote := l.peek()
		l.read() // 'b'
		raw, value, terminated := l.readQuoted(startLine, startColumn, startPos, quote)
		if !terminated {
			return l.makeToken(ILLEGAL, startLine, startColumn, startPos, raw, raw)
		}
		if quote == '\'' {
			return l.makeToken(CHAR, startLine, startColumn, startPos, raw, value)
		}
		return l.makeToken(STRING, startLine, startColumn, startPos, raw, value)
	}

	if isLetter(l.ch) {
		literal := l.readIdentifier()
		return l.makeToken(LookupIdent(literal), startLine, startColumn, startPos, literal, literal)
	}

	if isDigit(l.ch) {
		literal, tokType := l.readNumber()
		return l.makeToken(tokType, startLine, startColumn, startPos, literal, literal)
	}

	raw := string(l.ch)
	l.read()
	tok := l.makeToken(ILLEGAL, startLine, startColumn, startPos, raw, raw)
	l.addError(ErrIllegalRune, "illegal character "+strconv.Quote(raw), tok.Span)
	return tok
}

func isLetter(ch rune) bool {
	return unicode.IsLetter(ch) || ch == '_'
}

func isDigit(ch rune) bool {
	// Numeric literals are restricted to ASCII digits.
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch rune) bool {
	return (ch >= '0' && ch <= '9') ||
		(ch >= 'a' && ch <= 'f') ||
		(ch >= 'A' && ch <= 'F')
}

// readQuoted reads a string or char literal, handling escape sequences.
// Returns both raw (with escapes) and decoded values, along with a flag
// indicating whether the literal was properly terminated.
func (l *Lexer) readQuoted(startLine, startColumn, startPos int, quote rune) (raw string, value string, terminated bool) {
	var decoded []rune

	kind, what := ErrUnterminatedString, "string"
	if quote == '\'' {
		kind, what = ErrUnterminatedChar, "character"
	}

	l.read() // skip opening quote

	for {
		if l.ch == 0 {
			l.addError(kind, "unterminated "+what+" literal",
				Span{Line: startLine, Column: startColumn, Start: startPos, End: l.pos})
			break
		}
		if l.ch == quote {
			l.read() // consume closing quote
			return string(l.input[startPos:l.pos]), string(decoded), true
		}
		if quote == '\'' && (l.ch == '\n' || l.ch == '\r') {
			l.addError(kind, "newline in "+what+" literal",
				Span{Line: startLine, Column: startColumn, Start: startPos, End: l.pos})
			break
		}
		if l.ch == '\\' {
			l.read() // skip '\'
			switch l.ch {
			case 0:
				continue
			case 'n':
				decoded = append(decoded, '\n')
			case 't':
				decoded = append(decoded, '\t')
			case 'r':
				decoded = append(decoded, '\r')
			case '0':
				decoded = append(decoded, 0)
			case '\\', '"', '\'':
				decoded = append(decoded, l.ch)
			default:
				decoded = append(decoded, '\\', l.ch)
			}
			l.read()
			continue
		}
		decoded = append(decoded, l.ch)
		l.read()
	}

	return string(l.input[startPos:l.pos]), string(decoded), false
}

// rawStringAhead reports whether a raw string literal (`r"..."`, `r#"..."#`,
// or the `br` forms) starts at the current character.
func (l *Lexer) rawStringAhead() bool {
	i := 0
	switch {
	case l.ch == 'r':
		i = 1
	case l.ch == 'b' && l.peek() == 'r':
		i = 2
	default:
		return false
	}
	for l.peekAt(i) == '#' {
		i++
	}
	return l.peekAt(i) == '"'
}

// readRawString reads a raw string literal. The value is the text between
// the quotes with no escape processing.
func (l *Lexer) readRawString(startLine, startColumn, startPos int) (raw string, value string, terminated bool) {
	for l.ch != 'r' {
		l.read()
	}
	l.read() // 'r'
	hashes := 0
	for l.ch == '#' {
		hashes++
		l.read()
	}
	l.read() // opening quote

	contentStart := l.pos
	for l.ch != 0 {
		if l.ch == '"' && l.closesRawString(hashes) {
			value = string(l.input[contentStart:l.pos])
			for i := 0; i <= hashes; i++ {
				l.read()
			}
			return string(l.input[startPos:l.pos]), value, true
		}
		l.read()
	}

	l.addError(ErrUnterminatedString, "unterminated raw string literal",
		Span{Line: startLine, Column: startColumn, Start: startPos, End: l.pos})
	return string(l.input[startPos:l.pos]), string(l.input[startPos:l.pos]), false
}

func (l *Lexer) closesRawString(hashes int) bool {
	for i := 1; i <= hashes; i++ {
		if l.peekAt(i) != '#' {
			return false
		}
	}
	return true
}
