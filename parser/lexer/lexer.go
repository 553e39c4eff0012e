// Copyright © 2018 The ELPS authors

package lexer

import (
	"fmt"
	"io"
	"unicode"

	"github.com/luthersystems/subcheck/parser/token"
)

// operators is ordered so that longer operators are matched first.
var operators = []string{
	">>>=", "<<=", ">>=", ">>>", "...",
	"->", "::", "++", "--", "&&", "||", "==", "!=", "<=", ">=",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "<<", ">>",
	"=", "+", "-", "*", "/", "%", "!", "~", "&", "|", "^", "<", ">",
	"?", ":", "@", "(", ")", "{", "}", "[", "]", ";", ",", ".",
}

var punctTypes = map[string]token.Type{
	"?":   token.QUESTION,
	":":   token.COLON,
	"::":  token.COLON_COLON,
	"->":  token.ARROW,
	"@":   token.AT,
	"(":   token.PAREN_L,
	")":   token.PAREN_R,
	"{":   token.BRACE_L,
	"}":   token.BRACE_R,
	"[":   token.BRACKET_L,
	"]":   token.BRACKET_R,
	";":   token.SEMICOLON,
	",":   token.COMMA,
	".":   token.DOT,
	"...": token.ELLIPSIS,
}

type Lexer struct {
	scanner *token.Scanner
	done    bool
}

func New(s *token.Scanner) *Lexer {
	return &Lexer{scanner: s}
}

// ReadToken returns the next token in the input.  Once EOF or an error has
// been returned every subsequent call returns EOF.
func (lex *Lexer) ReadToken() *token.Token {
	if lex.done {
		return lex.emit(token.EOF, "")
	}
	tok := lex.readToken()
	if tok.Type == token.EOF || tok.Type == token.ERROR {
		lex.done = true
	}
	return tok
}

func (lex *Lexer) readToken() *token.Token {
	lex.scanner.AcceptSeqSpace()
	lex.scanner.Ignore()
	c, ok := lex.scanner.Peek()
	if !ok {
		if err := lex.scanner.Err(); err != nil {
			return lex.emitError(err)
		}
		if lex.scanner.EOF() {
			return lex.emit(token.EOF, "")
		}
		return lex.emitError(lex.scanner.ScanRune())
	}
	switch {
	case lex.scanner.HasPrefix("//"):
		lex.scanner.AcceptSeq(func(c rune) bool { return c != '\n' })
		return lex.scanner.EmitToken(token.COMMENT)
	case lex.scanner.HasPrefix("/*"):
		return lex.readBlockComment()
	case lex.scanner.HasPrefix(`"""`):
		return lex.readTextBlock()
	case c == '"':
		return lex.readQuoted('"', token.STRING)
	case c == '\'':
		return lex.readQuoted('\'', token.CHAR)
	case isDigit(c):
		return lex.readNumber()
	case c == '.' && isDigit(lex.peekN(1)):
		return lex.readNumber()
	case isWordStart(c):
		lex.scanner.AcceptSeq(isWord)
		if token.IsKeyword(lex.scanner.Text()) {
			return lex.scanner.EmitToken(token.KEYWORD)
		}
		return lex.scanner.EmitToken(token.IDENT)
	}
	for _, op := range operators {
		if lex.scanner.AcceptString(op) {
			return lex.scanner.EmitToken(operatorType(op))
		}
	}
	_ = lex.scanner.ScanRune()
	return lex.emit(token.INVALID, fmt.Sprintf("unexpected text starting with %q", c))
}

func operatorType(op string) token.Type {
	if typ, ok := punctTypes[op]; ok {
		return typ
	}
	switch op {
	case "==", "!=", "<=", ">=":
		return token.OPERATOR
	}
	if op[len(op)-1] == '=' {
		return token.ASSIGN
	}
	return token.OPERATOR
}

func (lex *Lexer) readBlockComment() *token.Token {
	lex.scanner.AcceptString("/*")
	for !lex.scanner.AcceptString("*/") {
		if lex.scanner.ScanRune() != nil {
			return lex.errorf("unterminated block comment")
		}
	}
	return lex.scanner.EmitToken(token.COMMENT)
}

func (lex *Lexer) readTextBlock() *token.Token {
	lex.scanner.AcceptString(`"""`)
	for !lex.scanner.AcceptString(`"""`) {
		if lex.scanner.AcceptRune('\\') {
			_ = lex.scanner.ScanRune()
			continue
		}
		if lex.scanner.ScanRune() != nil {
			return lex.errorf("unterminated text block")
		}
	}
	return lex.scanner.EmitToken(token.TEXT_BLOCK)
}

func (lex *Lexer) readQuoted(quote rune, typ token.Type) *token.Token {
	lex.scanner.AcceptRune(quote)
	for {
		if lex.scanner.AcceptRune(quote) {
			return lex.scanner.EmitToken(typ)
		}
		if lex.scanner.AcceptRune('\\') {
			if !lex.scanner.Accept(func(c rune) bool { return c != '\n' }) {
				return lex.errorf("unterminated %s literal", typ)
			}
			continue
		}
		if !lex.scanner.Accept(func(c rune) bool { return c != '\n' }) {
			return lex.errorf("unterminated %s literal", typ)
		}
	}
}

// readNumber scans integer and floating point literals including hex,
// binary, underscores and type suffixes.  Overflow is not checked.
func (lex *Lexer) readNumber() *token.Token {
	if lex.scanner.HasPrefix("0x") || lex.scanner.HasPrefix("0X") ||
		lex.scanner.HasPrefix("0b") || lex.scanner.HasPrefix("0B") {
		lex.scanner.AcceptSeq(func(c rune) bool { return c != '.' && isWord(c) })
		return lex.scanner.EmitToken(token.INT)
	}
	float := false
	lex.acceptDigits()
	if lex.scanner.HasPrefix(".") && !isWordStart(lex.peekN(1)) {
		lex.scanner.AcceptRune('.')
		lex.acceptDigits()
		float = true
	}
	if lex.scanner.AcceptAny("eE") {
		lex.scanner.AcceptAny("+-")
		if lex.acceptDigits() == 0 {
			return lex.errorf("invalid floating point literal: %s", lex.scanner.Text())
		}
		float = true
	}
	switch {
	case lex.scanner.AcceptAny("fFdD"):
		float = true
	case lex.scanner.AcceptAny("lL"):
	}
	if isWord(lex.peekN(0)) {
		return lex.errorf("invalid numeric literal character: %q", lex.peekN(0))
	}
	if float {
		return lex.scanner.EmitToken(token.FLOAT)
	}
	return lex.scanner.EmitToken(token.INT)
}

func (lex *Lexer) acceptDigits() int {
	return lex.scanner.AcceptSeq(func(c rune) bool { return isDigit(c) || c == '_' })
}

func (lex *Lexer) emit(typ token.Type, text string) *token.Token {
	tok := &token.Token{
		Type:   typ,
		Text:   text,
		Source: lex.scanner.LocStart(),
	}
	lex.scanner.Ignore()
	return tok
}

func (lex *Lexer) emitError(err error) *token.Token {
	if err == io.EOF {
		return lex.emit(token.ERROR, "unexpected EOF")
	}
	return lex.emit(token.ERROR, err.Error())
}

func (lex *Lexer) errorf(format string, v ...interface{}) *token.Token {
	return lex.emitError(fmt.Errorf(format, v...))
}

func (lex *Lexer) peekN(n int) rune {
	r, _ := lex.scanner.PeekN(n)
	return r
}

func isWordStart(c rune) bool {
	return unicode.IsLetter(c) || c == '_' || c == '$'
}

func isWord(c rune) bool {
	return isWordStart(c) || unicode.IsDigit(c)
}

func isDigit(c rune) bool {
	return '0' <= c && c <= '9'
}
