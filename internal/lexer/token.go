package lexer

// TokenType represents the type of a token
type TokenType string

// Span represents the source location of a token
type Span struct {
	Filename string // optional source filename for diagnostics
	Line     int    // 1-based line number
	Column   int    // 1-based column number
	Start    int    // index in []rune of the source
	End      int    // exclusive end index
}

// Token represents a lexical token
type Token struct {
	Type  TokenType
	Raw   string // exact runes from source
	Value string // decoded value (for strings and chars, same as Raw for others)
	Span  Span   // source location information
}

// Token type constants
const (
	// Special tokens
	ILLEGAL TokenType = "ILLEGAL"
	EOF     TokenType = "EOF"

	// Identifiers and literals
	IDENT  TokenType = "IDENT"  // add, foobar, x, y, ...
	INT    TokenType = "INT"    // 1343456, 0xff, 4u32
	FLOAT  TokenType = "FLOAT"  // 3.14, 1e9
	STRING TokenType = "STRING" // "hello"
	CHAR   TokenType = "CHAR"   // 'a'

	LIFETIME TokenType = "LIFETIME" // 'a, 'static

	// Operators
	ASSIGN         TokenType = "="
	PLUS_ASSIGN    TokenType = "+="
	MINUS_ASSIGN   TokenType = "-="
	STAR_ASSIGN    TokenType = "*="
	SLASH_ASSIGN   TokenType = "/="
	PERCENT_ASSIGN TokenType = "%="
	AMP_ASSIGN     TokenType = "&="
	PIPE_ASSIGN    TokenType = "|="
	CARET_ASSIGN   TokenType = "^="
	FATARROW       TokenType = "=>"
	PLUS           TokenType = "+"
	MINUS          TokenType = "-"
	BANG           TokenType = "!"
	AMPERSAND      TokenType = "&"
	PIPE           TokenType = "|"
	CARET          TokenType = "^"
	ASTERISK       TokenType = "*"
	SLASH          TokenType = "/"
	PERCENT        TokenType = "%"
	AND            TokenType = "&&"
	OR             TokenType = "||"
	QUESTION       TokenType = "?"
	SHL            TokenType = "<<"
	SHR            TokenType = ">>"

	LT     TokenType = "<"
	GT     TokenType = ">"
	EQ     TokenType = "=="
	NOT_EQ TokenType = "!="
	LE     TokenType = "<="
	GE     TokenType = ">="

	DOTDOT   TokenType = ".."
	DOTDOTEQ TokenType = "..="

	// Delimiters
	COMMA        TokenType = ","
	SEMICOLON    TokenType = ";"
	COLON        TokenType = ":"
	DOUBLE_COLON TokenType = "::"
	DOT          TokenType = "."
	HASH         TokenType = "#"
	AT           TokenType = "@"

	LPAREN   TokenType = "("
	RPAREN   TokenType = ")"
	LBRACE   TokenType = "{"
	RBRACE   TokenType = "}"
	LBRACKET TokenType = "["
	RBRACKET TokenType = "]"

	ARROW TokenType = "->"

	// Keywords
	LET      TokenType = "LET"
	MUT      TokenType = "MUT"
	REF      TokenType = "REF"
	CONST    TokenType = "CONST"
	STATIC   TokenType = "STATIC"
	FN       TokenType = "FN"
	PUB      TokenType = "PUB"
	STRUCT   TokenType = "STRUCT"
	ENUM     TokenType = "ENUM"
	TRAIT    TokenType = "TRAIT"
	IMPL     TokenType = "IMPL"
	TYPE     TokenType = "TYPE"
	MOD      TokenType = "MOD"
	USE      TokenType = "USE"
	AS       TokenType = "AS"
	IF       TokenType = "IF"
	ELSE     TokenType = "ELSE"
	MATCH    TokenType = "MATCH"
	WHILE    TokenType = "WHILE"
	LOOP     TokenType = "LOOP"
	FOR      TokenType = "FOR"
	IN       TokenType = "IN"
	BREAK    TokenType = "BREAK"
	CONTINUE TokenType = "CONTINUE"
	RETURN   TokenType = "RETURN"
	TRUE     TokenType = "TRUE"
	FALSE    TokenType = "FALSE"
	UNSAFE   TokenType = "UNSAFE"
	MOVE     TokenType = "MOVE"
	WHERE    TokenType = "WHERE"
)

var keywords = map[string]TokenType{
	"let":      LET,
	"mut":      MUT,
	"ref":      REF,
	"const":    CONST,
	"static":   STATIC,
	"fn":       FN,
	"pub":      PUB,
	"struct":   STRUCT,
	"enum":     ENUM,
	"trait":    TRAIT,
	"impl":     IMPL,
	"type":     TYPE,
	"mod":      MOD,
	"use":      USE,
	"as":       AS,
	"if":       IF,
	"else":     ELSE,
	"match":    MATCH,
	"while":    WHILE,
	"loop":     LOOP,
	"for":      FOR,
	"in":       IN,
	"break":    BREAK,
	"continue": CONTINUE,
	"return":   RETURN,
	"true":     TRUE,
	"false":    FALSE,
	"unsafe":   UNSAFE,
	"move":     MOVE,
	"where":    WHERE,
}

// LookupIdent checks if the identifier is a keyword
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// IsKeyword reports whether name is reserved and cannot be used as an identifier.
func IsKeyword(name string) bool {
	_, ok := keywords[name]
	return ok
}
