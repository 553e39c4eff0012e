// Copyright © 2018 The ELPS authors

package rdparser

import (
	"github.com/luthersystems/subcheck/parser/lexer"
	"github.com/luthersystems/subcheck/parser/token"
)

// TokenStream is an arbitrary sequence of tokens.  Typically, a TokenStream
// will be a *lexer.Lexer.  When no more tokens can be generated ReadToken
// returns a token with type token.EOF.
type TokenStream interface {
	ReadToken() *token.Token
}

// TokenSource buffers a TokenStream so that the parser can look ahead any
// distance and backtrack to a Mark.  Comment tokens are diverted to Comments
// and never returned by Peek.
type TokenSource struct {
	Token    *token.Token
	Comments []*token.Token

	toks   []*token.Token
	pos    int
	splits []split
}

// split records a token that was broken in two, such as the >> closing
// List<List<String>>, so that it can be restored on Reset.
type split struct {
	index int
	orig  *token.Token
}

// Mark is a position in a TokenSource returned by TokenSource.Mark.
type Mark struct {
	pos    int
	splits int
	token  *token.Token
}

func NewTokenStreamSource(stream TokenStream) *TokenSource {
	s := &TokenSource{}
	for {
		tok := stream.ReadToken()
		if tok.Type == token.COMMENT {
			s.Comments = append(s.Comments, tok)
			continue
		}
		s.toks = append(s.toks, tok)
		if tok.Type == token.EOF || tok.Type == token.ERROR {
			break
		}
	}
	return s
}

// NewTokenSource initializes and returns a new TokenSource that scans tokens
// from scanner.
func NewTokenSource(scanner *token.Scanner) *TokenSource {
	return NewTokenStreamSource(lexer.New(scanner))
}

// Peek returns the next token without consuming it.
func (s *TokenSource) Peek() *token.Token {
	return s.PeekN(0)
}

// PeekN returns the token n positions past the next one.  Positions past
// the end of the stream return the final (EOF or ERROR) token.
func (s *TokenSource) PeekN(n int) *token.Token {
	i := s.pos + n
	if i >= len(s.toks) {
		return s.toks[len(s.toks)-1]
	}
	return s.toks[i]
}

func (s *TokenSource) Accept(fn func(*token.Token) bool) bool {
	if fn(s.Peek()) {
		s.scan()
		return true
	}
	return false
}

func (s *TokenSource) AcceptType(typ ...token.Type) bool {
	for _, typ := range typ {
		if s.Peek().Type == typ {
			s.scan()
			return true
		}
	}
	return false
}

func (s *TokenSource) Scan() bool {
	if s.IsEOF() {
		s.Token = s.Peek()
		return false
	}
	s.scan()
	return true
}

func (s *TokenSource) IsEOF() bool {
	typ := s.Peek().Type
	return typ == token.EOF || typ == token.ERROR
}

func (s *TokenSource) scan() {
	s.Token = s.Peek()
	if s.pos < len(s.toks)-1 {
		s.pos++
	}
}

// Mark returns the current position for a later Reset.
func (s *TokenSource) Mark() Mark {
	return Mark{pos: s.pos, splits: len(s.splits), token: s.Token}
}

// Reset rewinds the source to m, undoing any token splits made since.
func (s *TokenSource) Reset(m Mark) {
	for len(s.splits) > m.splits {
		sp := s.splits[len(s.splits)-1]
		s.splits = s.splits[:len(s.splits)-1]
		s.toks[sp.index] = sp.orig
		s.toks = append(s.toks[:sp.index+1], s.toks[sp.index+2:]...)
	}
	s.pos = m.pos
	s.Token = m.token
}

// SplitFirst breaks the next token after its first rune, so that a '>'
// can be consumed out of '>>', '>>>', '>=' or '>>='.  The next token's text
// must be at least two bytes long.
func (s *TokenSource) SplitFirst(typ token.Type) {
	orig := s.toks[s.pos]
	head := &token.Token{Type: typ, Text: orig.Text[:1], Source: orig.Source}
	loc := *orig.Source
	loc.Pos++
	loc.Col++
	rest := &token.Token{Type: restType(orig.Text[1:]), Text: orig.Text[1:], Source: &loc}

	s.toks = append(s.toks, nil)
	copy(s.toks[s.pos+2:], s.toks[s.pos+1:])
	s.toks[s.pos] = head
	s.toks[s.pos+1] = rest
	s.splits = append(s.splits, split{index: s.pos, orig: orig})
}

func restType(text string) token.Type {
	if text == "=" || text == ">>=" {
		return token.ASSIGN
	}
	return token.OPERATOR
}
