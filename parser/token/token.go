// Copyright © 2018 The ELPS authors

package token

import "fmt"

// Source is an abstract stream of tokens which allows one token lookahead.
type Source interface {
	// Token returns the current token.  Token returns nil if Scan has not been
	// called.
	Token() *Token
	// Peek returns the next token in the stream.  At the end of the stream
	// Peek should return a value to indicate the lack of a token (EOF).
	Peek() *Token
	// Scan advances the token stream if possible.  If there are no tokens
	// remaining Scan returns false.
	Scan() bool
}

type Token struct {
	Type   Type
	Text   string
	Source *Location
}

// Is reports whether tok has type typ and text equal to text.
func (tok *Token) Is(typ Type, text string) bool {
	return tok != nil && tok.Type == typ && tok.Text == text
}

type Type uint

// Type constants used by the java lexer/parser.
const (
	INVALID Type = iota
	ERROR
	EOF

	COMMENT

	IDENT
	KEYWORD

	// Literals
	INT
	FLOAT
	CHAR
	STRING
	TEXT_BLOCK

	// Operators.  Token text distinguishes individual operators.
	ASSIGN   // = += -= *= /= %= &= |= ^= <<= >>= >>>=
	OPERATOR // + - * / % ++ -- ! ~ && || & | ^ << >> >>> == != < > <= >=
	QUESTION
	COLON
	COLON_COLON
	ARROW
	AT

	// Delimiters
	PAREN_L
	PAREN_R
	BRACE_L
	BRACE_R
	BRACKET_L
	BRACKET_R
	SEMICOLON
	COMMA
	DOT
	ELLIPSIS

	numTokenTypes
)

func (typ Type) String() string {
	typeStrings := [numTokenTypes]string{
		INVALID:     "invalid",
		ERROR:       "error",
		EOF:         "EOF",
		COMMENT:     "comment",
		IDENT:       "identifier",
		KEYWORD:     "keyword",
		INT:         "int",
		FLOAT:       "float",
		CHAR:        "char",
		STRING:      "string",
		TEXT_BLOCK:  "text-block",
		ASSIGN:      "assignment",
		OPERATOR:    "operator",
		QUESTION:    "?",
		COLON:       ":",
		COLON_COLON: "::",
		ARROW:       "->",
		AT:          "@",
		PAREN_L:     "(",
		PAREN_R:     ")",
		BRACE_L:     "{",
		BRACE_R:     "}",
		BRACKET_L:   "[",
		BRACKET_R:   "]",
		SEMICOLON:   ";",
		COMMA:       ",",
		DOT:         ".",
		ELLIPSIS:    "...",
	}
	if typ >= numTokenTypes {
		return typeStrings[INVALID]
	}
	return typeStrings[typ]
}

var keywords = map[string]bool{
	"abstract": true, "assert": true, "boolean": true, "break": true,
	"byte": true, "case": true, "catch": true, "char": true,
	"class": true, "const": true, "continue": true, "default": true,
	"do": true, "double": true, "else": true, "enum": true,
	"extends": true, "final": true, "finally": true, "float": true,
	"for": true, "goto": true, "if": true, "implements": true,
	"import": true, "instanceof": true, "int": true, "interface": true,
	"long": true, "native": true, "new": true, "package": true,
	"private": true, "protected": true, "public": true, "return": true,
	"short": true, "static": true, "strictfp": true, "super": true,
	"switch": true, "synchronized": true, "this": true, "throw": true,
	"throws": true, "transient": true, "try": true, "void": true,
	"volatile": true, "while": true,
	"true": true, "false": true, "null": true,
}

// IsKeyword reports whether word is a reserved word.  Contextual keywords
// (var, record, yield, sealed, ...) are scanned as identifiers.
func IsKeyword(word string) bool {
	return keywords[word]
}

var primitives = map[string]bool{
	"boolean": true, "byte": true, "char": true, "short": true,
	"int": true, "long": true, "float": true, "double": true,
}

// IsPrimitive reports whether word names a primitive type.
func IsPrimitive(word string) bool {
	return primitives[word]
}

type Location struct {
	File string // a name representing the source stream
	Path string // a physical location which may differ from File
	Pos  int
	Line int // line number (starting at 1 when tracked)
	Col  int // line column number (starting at 1 when tracked)
}

func (loc *Location) String() string {
	switch {
	case loc == nil:
		return "<unknown>"
	case loc.Pos < 0:
		return loc.File
	case loc.Line == 0:
		return fmt.Sprintf("%s[%d]", loc.File, loc.Pos)
	case loc.Col == 0:
		return fmt.Sprintf("%s:%d", loc.File, loc.Line)
	default:
		return fmt.Sprintf("%s:%d:%d", loc.File, loc.Line, loc.Col)
	}
}

type LocationError struct {
	Err    error
	Source *Location
}

func (err *LocationError) Error() string {
	return fmt.Sprintf("%s: %s", err.Source, err.Err)
}

func (err *LocationError) Unwrap() error {
	return err.Err
}

// Errorf returns a LocationError at loc.
func Errorf(loc *Location, format string, v ...interface{}) error {
	return &LocationError{Err: fmt.Errorf(format, v...), Source: loc}
}
