// Copyright © 2018 The ELPS authors

package token

import (
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Scanner facilitates construction of tokens from a byte stream (io.Reader).
// The whole stream is buffered when the Scanner is created; java sources are
// small and the parser needs arbitrary lookahead anyway.
type Scanner struct {
	file    string
	path    string
	buf     []byte
	readErr error

	start     int // offset of the first byte of the current token
	next      int // offset of the rune following the last scanned rune
	c         Rune
	line      int // line of next
	col       int // column of next
	startLine int
	startCol  int
}

// NewScanner initializes and returns a new Scanner.  A read failure is
// reported by Err once the buffered input has been consumed.
func NewScanner(file string, r io.Reader) *Scanner {
	buf, err := io.ReadAll(r)
	return newScannerBuf(file, buf, err)
}

// NewScannerBytes returns a Scanner over src.
func NewScannerBytes(file string, src []byte) *Scanner {
	return newScannerBuf(file, src, nil)
}

func newScannerBuf(file string, buf []byte, err error) *Scanner {
	return &Scanner{
		file:      file,
		buf:       buf,
		readErr:   err,
		line:      1,
		col:       1,
		startLine: 1,
		startCol:  1,
	}
}

// SetPath associates a physical location (e.g. filesystem path) with s to aid
// in debugging projects which scan many ungrouped files.
func (s *Scanner) SetPath(path string) {
	s.path = path
}

// EmitToken returns a token containing the text scanned since the last call to
// either EmitToken or Ignore.
func (s *Scanner) EmitToken(typ Type) *Token {
	tok := &Token{
		Type:   typ,
		Text:   s.Text(),
		Source: s.LocStart(),
	}
	s.Ignore()
	return tok
}

// Ignore causes the scanner to skip all text scanned since the last call to
// either EmitToken or Ignore.
func (s *Scanner) Ignore() {
	s.start = s.next
	s.startLine = s.line
	s.startCol = s.col
}

// Text returns a string containing text scanned since the last call to either
// EmitToken or Ignore.
func (s *Scanner) Text() string {
	return string(s.buf[s.start:s.next])
}

// Rune returns the current unicode rune that is being scanned.  The rune
// returned by Rune is the last rune in a token returned by EmitToken.
func (s *Scanner) Rune() rune {
	return s.c.C
}

// Peek returns the next rune to be scanned, if there are any.  If an invalid
// utf-8 sequence or EOF prevents futher runes from being scanned Peek returns
// a false second value.
func (s *Scanner) Peek() (rune, bool) {
	return s.peekAt(s.next)
}

// PeekN returns the rune n runes past the next one (PeekN(0) == Peek).
func (s *Scanner) PeekN(n int) (rune, bool) {
	off := s.next
	for ; n > 0; n-- {
		r := decode(s.buf[min(off, len(s.buf)):])
		if r.N == 0 || r.IsRuneError() {
			return 0, false
		}
		off += r.N
	}
	return s.peekAt(off)
}

func (s *Scanner) peekAt(off int) (rune, bool) {
	if off >= len(s.buf) {
		return 0, false
	}
	r := decode(s.buf[off:])
	if r.IsRuneError() {
		return utf8.RuneError, false
	}
	return r.C, true
}

// HasPrefix reports whether the unscanned input begins with lit.
func (s *Scanner) HasPrefix(lit string) bool {
	return strings.HasPrefix(string(s.buf[s.next:min(s.next+len(lit), len(s.buf))]), lit)
}

// ScanRune attempts to scan a utf-8 rune from the input for inclusion in the
// current token.
func (s *Scanner) ScanRune() error {
	if s.next >= len(s.buf) {
		if s.readErr != nil {
			return s.readErr
		}
		return io.EOF
	}
	r := decode(s.buf[s.next:])
	if r.IsRuneError() {
		return fmt.Errorf("invalid utf-8 sequence in source text starting with byte %q", s.buf[s.next])
	}
	s.c = r
	s.next += r.N
	if r.C == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return nil
}

// Err returns an error encountered while reading the input stream.  Err
// returns nil while buffered runes remain to be scanned.
func (s *Scanner) Err() error {
	if s.readErr == nil || s.readErr == io.EOF {
		return nil
	}
	if s.next < len(s.buf) {
		return nil
	}
	return s.readErr
}

func (s *Scanner) EOF() bool {
	return s.next >= len(s.buf)
}

func (s *Scanner) Accept(fn func(rune) bool) bool {
	peek, ok := s.Peek()
	if !ok || !fn(peek) {
		return false
	}
	return s.ScanRune() == nil
}

func (s *Scanner) AcceptRune(c rune) bool {
	return s.Accept(func(r rune) bool { return r == c })
}

func (s *Scanner) AcceptDigit() bool {
	return s.Accept(func(r rune) bool { return '0' <= r && r <= '9' })
}

func (s *Scanner) AcceptSpace() bool {
	return s.Accept(unicode.IsSpace)
}

func (s *Scanner) AcceptAny(charset string) bool {
	return s.Accept(func(r rune) bool { return strings.ContainsRune(charset, r) })
}

func (s *Scanner) AcceptSeq(fn func(rune) bool) int {
	var n int
	for s.Accept(fn) {
		n++
	}
	return n
}

func (s *Scanner) AcceptSeqDigit() int {
	var n int
	for s.AcceptDigit() {
		n++
	}
	return n
}

func (s *Scanner) AcceptSeqSpace() int {
	var n int
	for s.AcceptSpace() {
		n++
	}
	return n
}

// AcceptString scans lit if the unscanned input begins with it.  Nothing is
// scanned otherwise.
func (s *Scanner) AcceptString(lit string) bool {
	if !s.HasPrefix(lit) {
		return false
	}
	for range lit {
		if s.ScanRune() != nil {
			return false
		}
	}
	return true
}

// LocStart returns a Location referencing the beginning of the current token.
func (s *Scanner) LocStart() *Location {
	return &Location{
		File: s.file,
		Path: s.path,
		Pos:  s.start,
		Line: s.startLine,
		Col:  s.startCol,
	}
}

// Loc returns a Location referencing the current scanner position.
func (s *Scanner) Loc() *Location {
	return &Location{
		File: s.file,
		Path: s.path,
		Pos:  s.next,
		Line: s.line,
		Col:  s.col,
	}
}

// Rune contains a rune that read by Scanner during peeking operations.
type Rune struct {
	C rune
	N int
}

// IsRuneError returns true if Rune represents an invalid utf-8 sequence read
// by utf8.DecodeRune.
func (r Rune) IsRuneError() bool {
	return r.C == utf8.RuneError && r.N == 1
}

func decode(b []byte) Rune {
	c, n := utf8.DecodeRune(b)
	return Rune{c, n}
}
