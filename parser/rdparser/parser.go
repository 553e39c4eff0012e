// Copyright © 2018 The ELPS authors

// Package rdparser is a recursive descent parser for the subset of java
// understood by subcheck.  It produces an *ast.File.
package rdparser

import (
	"fmt"
	"io"
	"strings"

	"github.com/luthersystems/subcheck/ast"
	"github.com/luthersystems/subcheck/parser/token"
)

// ParseFile reads r in full and parses it as a java compilation unit.
func ParseFile(name string, r io.Reader) (*ast.File, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return ParseSource(name, src)
}

// ParseSource parses src as a java compilation unit.  Parse errors are
// returned as *token.LocationError.
func ParseSource(name string, src []byte) (*ast.File, error) {
	p := New(token.NewScannerBytes(name, src))
	f, err := p.ParseFile()
	if err != nil {
		return nil, err
	}
	f.Name = name
	f.Source = src
	return f, nil
}

// Parser is a java parser.
type Parser struct {
	src         *TokenSource
	noLambda    bool // set while parsing case labels
	switchExprs int  // depth of enclosing switch expressions
}

// bailout carries a parse error up the stack to ParseFile.
type bailout struct {
	err error
}

// NewFromSource initializes and returns a Parser that reads tokens from src.
func NewFromSource(src *TokenSource) *Parser {
	return &Parser{
		src: src,
	}
}

// New initializes and returns a new Parser that reads tokens from scanner.
func New(scanner *token.Scanner) *Parser {
	return NewFromSource(NewTokenSource(scanner))
}

// ParseFile parses a compilation unit.  Only the first error is reported.
func (p *Parser) ParseFile() (f *ast.File, err error) {
	defer func() {
		if r := recover(); r != nil {
			b, ok := r.(bailout)
			if !ok {
				panic(r)
			}
			f, err = nil, b.err
		}
	}()

	start := p.peek()
	f = &ast.File{}
	mods := p.parseModifiers(false)
	if p.acceptKeyword("package") {
		f.Package = p.parseQualifiedName()
		p.expect(token.SEMICOLON)
		mods = ast.Modifiers{}
	}
	for p.acceptKeyword("import") {
		var sb strings.Builder
		if p.acceptKeyword("static") {
			sb.WriteString("static ")
		}
		sb.WriteString(p.parseQualifiedName())
		if p.accept(token.DOT) {
			p.expectText(token.OPERATOR, "*")
			sb.WriteString(".*")
		}
		p.expect(token.SEMICOLON)
		f.Imports = append(f.Imports, sb.String())
	}
	first := true
	for !p.src.IsEOF() {
		if p.accept(token.SEMICOLON) {
			continue
		}
		declStart := p.peek()
		if !first || (len(mods.Keywords) == 0 && len(mods.Annotations) == 0) {
			mods = p.parseModifiers(false)
		} else {
			declStart = start
		}
		first = false
		if !p.isTypeDeclStart() {
			p.errorf("expected class, interface, enum or record declaration, found %s", describe(p.peek()))
		}
		f.Types = append(f.Types, p.parseClassDecl(mods, declStart))
	}
	if tok := p.peek(); tok.Type == token.ERROR {
		p.errorf("%s", tok.Text)
	}
	f.Span = ast.Span{Loc: start.Source, EndPos: p.peek().Source.Pos}
	f.Comments = p.src.Comments
	return f, nil
}

var modifierKeywords = map[string]bool{
	"public": true, "protected": true, "private": true, "static": true,
	"final": true, "abstract": true, "native": true, "synchronized": true,
	"transient": true, "volatile": true, "strictfp": true,
}

// parseModifiers parses modifier keywords and annotations.  The default
// modifier is only accepted in class bodies.
func (p *Parser) parseModifiers(inBody bool) ast.Modifiers {
	var mods ast.Modifiers
	for {
		tok := p.peek()
		switch {
		case tok.Type == token.AT && !p.peekN(1).Is(token.KEYWORD, "interface"):
			mods.Annotations = append(mods.Annotations, p.parseAnnotation())
		case tok.Type == token.KEYWORD && modifierKeywords[tok.Text]:
			if tok.Text == "synchronized" && p.peekN(1).Type == token.PAREN_L {
				return mods
			}
			mods.Keywords = append(mods.Keywords, p.next().Text)
		case inBody && tok.Is(token.KEYWORD, "default") && p.peekN(1).Type != token.COLON:
			mods.Keywords = append(mods.Keywords, p.next().Text)
		case tok.Is(token.IDENT, "sealed") && p.peekN(1).Type == token.KEYWORD:
			mods.Keywords = append(mods.Keywords, p.next().Text)
		case tok.Is(token.IDENT, "non") && p.peekN(1).Is(token.OPERATOR, "-") && p.peekN(2).Is(token.IDENT, "sealed"):
			p.next()
			p.next()
			p.next()
			mods.Keywords = append(mods.Keywords, "non-sealed")
		default:
			return mods
		}
	}
}

// parseAnnotation parses @Name, @Name(value) and @Name(k = v, ...).
func (p *Parser) parseAnnotation() *ast.Annotation {
	start := p.expect(token.AT)
	a := &ast.Annotation{Name: p.parseQualifiedName()}
	if p.accept(token.PAREN_L) && !p.accept(token.PAREN_R) {
		if p.peek().Type == token.IDENT && p.peekN(1).Is(token.ASSIGN, "=") {
			for {
				argStart := p.expect(token.IDENT)
				p.expectText(token.ASSIGN, "=")
				val := p.parseElementValue()
				a.Args = append(a.Args, &ast.AnnotationArg{
					Span:  p.spanFrom(argStart),
					Name:  argStart.Text,
					Value: val,
				})
				if !p.accept(token.COMMA) {
					break
				}
			}
		} else {
			argStart := p.peek()
			val := p.parseElementValue()
			a.Args = append(a.Args, &ast.AnnotationArg{
				Span:     p.spanFrom(argStart),
				Name:     "value",
				Value:    val,
				Implicit: true,
			})
		}
		p.expect(token.PAREN_R)
	}
	a.Span = p.spanFrom(start)
	return a
}

func (p *Parser) parseElementValue() ast.Expr {
	switch p.peek().Type {
	case token.AT:
		return p.parseAnnotation()
	case token.BRACE_L:
		return p.parseArrayInit(p.parseElementValue)
	default:
		return p.parseTernary()
	}
}

func (p *Parser) isTypeDeclStart() bool {
	tok := p.peek()
	switch {
	case tok.Is(token.KEYWORD, "class"), tok.Is(token.KEYWORD, "interface"), tok.Is(token.KEYWORD, "enum"):
		return true
	case tok.Type == token.AT:
		return p.peekN(1).Is(token.KEYWORD, "interface")
	case tok.Is(token.IDENT, "record"):
		return p.peekN(1).Type == token.IDENT &&
			(p.peekN(2).Type == token.PAREN_L || p.peekN(2).Is(token.OPERATOR, "<"))
	}
	return false
}

// parseClassDecl parses a type declaration following its modifiers.  start
// is the first token of the declaration including modifiers.
func (p *Parser) parseClassDecl(mods ast.Modifiers, start *token.Token) *ast.ClassDecl {
	c := &ast.ClassDecl{Modifiers: mods}
	switch tok := p.next(); {
	case tok.Is(token.KEYWORD, "class"):
		c.Kind = ast.KindClass
	case tok.Is(token.KEYWORD, "interface"):
		c.Kind = ast.KindInterface
	case tok.Is(token.KEYWORD, "enum"):
		c.Kind = ast.KindEnum
	case tok.Type == token.AT:
		p.expectText(token.KEYWORD, "interface")
		c.Kind = ast.KindAnnotation
	case tok.Is(token.IDENT, "record"):
		c.Kind = ast.KindRecord
	default:
		p.errorAt(tok, "expected type declaration, found %s", describe(tok))
	}
	c.Name = p.expect(token.IDENT).Text
	if p.peek().Is(token.OPERATOR, "<") {
		p.parseTypeParams()
	}
	if c.Kind == ast.KindRecord {
		c.Components = p.parseParams()
	}
	// extends, implements and permits clauses only name types.
	for p.peek().Type != token.BRACE_L {
		if p.src.IsEOF() {
			p.errorf("expected class body, found %s", describe(p.peek()))
		}
		p.next()
	}
	if c.Kind == ast.KindEnum {
		c.Members = p.parseEnumBody(c.Name)
	} else {
		c.Members = p.parseClassBody(c.Name)
	}
	c.Span = p.spanFrom(start)
	return c
}

func (p *Parser) parseClassBody(className string) []ast.Member {
	p.expect(token.BRACE_L)
	var members []ast.Member
	for !p.accept(token.BRACE_R) {
		if p.src.IsEOF() {
			p.errorf("unterminated class body")
		}
		if m := p.parseMember(className); m != nil {
			members = append(members, m)
		}
	}
	return members
}

func (p *Parser) parseEnumBody(enumName string) []ast.Member {
	p.expect(token.BRACE_L)
	var members []ast.Member
	for p.peek().Type != token.SEMICOLON && p.peek().Type != token.BRACE_R {
		start := p.peek()
		k := &ast.EnumConstant{Modifiers: p.parseModifiers(false)}
		k.Name = p.expect(token.IDENT).Text
		if p.peek().Type == token.PAREN_L {
			k.Args = p.parseArgs()
		}
		if p.peek().Type == token.BRACE_L {
			k.Body = p.parseClassBody("")
		}
		k.Span = p.spanFrom(start)
		members = append(members, k)
		if !p.accept(token.COMMA) {
			break
		}
	}
	if p.accept(token.SEMICOLON) {
		for p.peek().Type != token.BRACE_R {
			if p.src.IsEOF() {
				p.errorf("unterminated enum body")
			}
			if m := p.parseMember(enumName); m != nil {
				members = append(members, m)
			}
		}
	}
	p.expect(token.BRACE_R)
	return members
}

// parseMember parses one class body member.  It returns nil for a stray
// semicolon.
func (p *Parser) parseMember(className string) ast.Member {
	start := p.peek()
	if p.accept(token.SEMICOLON) {
		return nil
	}
	if start.Type == token.BRACE_L {
		body := p.parseBlock()
		return &ast.InitializerBlock{Span: p.spanFrom(start), Body: body}
	}
	if start.Is(token.KEYWORD, "static") && p.peekN(1).Type == token.BRACE_L {
		p.next()
		body := p.parseBlock()
		return &ast.InitializerBlock{Span: p.spanFrom(start), Static: true, Body: body}
	}

	mods := p.parseModifiers(true)
	if p.isTypeDeclStart() {
		return p.parseClassDecl(mods, start)
	}
	if p.peek().Is(token.OPERATOR, "<") {
		p.parseTypeParams()
	}

	tok := p.peek()
	if tok.Type == token.IDENT && tok.Text == className && className != "" {
		switch p.peekN(1).Type {
		case token.PAREN_L:
			return p.parseMethodRest(mods, start, nil, p.next().Text, true)
		case token.BRACE_L:
			// compact canonical record constructor
			m := &ast.MethodDecl{Modifiers: mods, Name: p.next().Text, Constructor: true}
			m.Body = p.parseBlock()
			m.Span = p.spanFrom(start)
			return m
		}
	}

	typ := p.parseType()
	name := p.expect(token.IDENT)
	if p.peek().Type == token.PAREN_L {
		return p.parseMethodRest(mods, start, typ, name.Text, false)
	}
	f := &ast.FieldDecl{Modifiers: mods, Type: typ}
	f.Vars = p.parseDeclarators(name)
	p.expect(token.SEMICOLON)
	f.Span = p.spanFrom(start)
	return f
}

func (p *Parser) parseMethodRest(mods ast.Modifiers, start *token.Token, result *ast.TypeRef, name string, ctor bool) *ast.MethodDecl {
	m := &ast.MethodDecl{
		Modifiers:   mods,
		Result:      result,
		Name:        name,
		Constructor: ctor,
	}
	m.Params = p.parseParams()
	p.skipDims()
	if p.acceptKeyword("throws") {
		p.parseType()
		for p.accept(token.COMMA) {
			p.parseType()
		}
	}
	if p.acceptKeyword("default") {
		m.Default = p.parseElementValue()
	}
	if p.peek().Type == token.BRACE_L {
		m.Body = p.parseBlock()
	} else {
		p.expect(token.SEMICOLON)
	}
	m.Span = p.spanFrom(start)
	return m
}

func (p *Parser) parseParams() []*ast.Param {
	p.expect(token.PAREN_L)
	var params []*ast.Param
	if p.accept(token.PAREN_R) {
		return nil
	}
	for {
		params = append(params, p.parseParam())
		if !p.accept(token.COMMA) {
			break
		}
	}
	p.expect(token.PAREN_R)
	return params
}

func (p *Parser) parseParam() *ast.Param {
	start := p.peek()
	param := &ast.Param{Modifiers: p.parseModifiers(false)}
	param.Type = p.parseType()
	for p.peek().Type == token.AT {
		p.parseAnnotation()
	}
	param.Varargs = p.accept(token.ELLIPSIS)
	if p.acceptKeyword("this") {
		param.Name = "this"
	} else {
		param.Name = p.expect(token.IDENT).Text
	}
	p.skipDims()
	param.Span = p.spanFrom(start)
	return param
}

// parseDeclarators parses the variable declarators of a field or local
// declaration.  The first declarator's name has already been consumed.
func (p *Parser) parseDeclarators(name *token.Token) []*ast.VarDeclarator {
	var vars []*ast.VarDeclarator
	for {
		d := &ast.VarDeclarator{Name: name.Text}
		p.skipDims()
		if p.acceptText(token.ASSIGN, "=") {
			d.Init = p.parseVarInit()
		}
		d.Span = p.spanFrom(name)
		vars = append(vars, d)
		if !p.accept(token.COMMA) {
			return vars
		}
		name = p.expect(token.IDENT)
	}
}

func (p *Parser) parseVarInit() ast.Expr {
	if p.peek().Type == token.BRACE_L {
		return p.parseArrayInit(p.parseVarInit)
	}
	return p.parseExpr()
}

func (p *Parser) parseArrayInit(elem func() ast.Expr) *ast.ArrayInit {
	start := p.expect(token.BRACE_L)
	init := &ast.ArrayInit{}
	for p.peek().Type != token.BRACE_R {
		init.Elems = append(init.Elems, elem())
		if !p.accept(token.COMMA) {
			break
		}
	}
	p.expect(token.BRACE_R)
	init.Span = p.spanFrom(start)
	return init
}

// parseType parses a type reference including array dimensions.
func (p *Parser) parseType() *ast.TypeRef {
	return p.parseTypeDims(true)
}

func (p *Parser) parseTypeDims(dims bool) *ast.TypeRef {
	for p.peek().Type == token.AT {
		p.parseAnnotation()
	}
	first := p.src.pos
	start := p.peek()
	switch {
	case start.Type == token.KEYWORD && (token.IsPrimitive(start.Text) || start.Text == "void"):
		p.next()
	case start.Type == token.IDENT:
		p.next()
		p.parseTypeArgs()
		for p.peek().Type == token.DOT && p.peekN(1).Type == token.IDENT {
			p.next()
			p.next()
			p.parseTypeArgs()
		}
	default:
		p.errorf("expected type, found %s", describe(start))
	}
	if dims {
		p.skipDims()
	}
	return &ast.TypeRef{Span: p.spanFrom(start), Name: p.textSince(first)}
}

// parseTypeArgs parses optional type arguments, including the diamond <>.
func (p *Parser) parseTypeArgs() {
	if !p.acceptText(token.OPERATOR, "<") {
		return
	}
	if p.peek().Type != token.OPERATOR || p.peek().Text[0] != '>' {
		for {
			for p.peek().Type == token.AT {
				p.parseAnnotation()
			}
			if p.accept(token.QUESTION) {
				if p.acceptKeyword("extends") || p.acceptKeyword("super") {
					p.parseType()
				}
			} else {
				p.parseType()
			}
			if !p.accept(token.COMMA) {
				break
			}
		}
	}
	p.closeAngle()
}

func (p *Parser) parseTypeParams() {
	p.expectText(token.OPERATOR, "<")
	for {
		for p.peek().Type == token.AT {
			p.parseAnnotation()
		}
		p.expect(token.IDENT)
		if p.acceptKeyword("extends") {
			p.parseType()
			for p.acceptText(token.OPERATOR, "&") {
				p.parseType()
			}
		}
		if !p.accept(token.COMMA) {
			break
		}
	}
	p.closeAngle()
}

// closeAngle consumes a '>' closing a type argument list, splitting tokens
// like '>>' that the lexer produced for shift operators.
func (p *Parser) closeAngle() {
	tok := p.peek()
	if tok.Is(token.OPERATOR, ">") {
		p.next()
		return
	}
	if (tok.Type == token.OPERATOR || tok.Type == token.ASSIGN) && len(tok.Text) > 1 && tok.Text[0] == '>' {
		p.src.SplitFirst(token.OPERATOR)
		p.next()
		return
	}
	p.errorf("expected '>', found %s", describe(tok))
}

func (p *Parser) skipDims() {
	for p.peek().Type == token.BRACKET_L && p.peekN(1).Type == token.BRACKET_R {
		p.next()
		p.next()
	}
}

func (p *Parser) parseQualifiedName() string {
	name := p.expect(token.IDENT).Text
	for p.peek().Type == token.DOT && p.peekN(1).Type == token.IDENT {
		p.next()
		name += "." + p.next().Text
	}
	return name
}

// textSince renders the tokens consumed since index first, separating words
// with a single space.
func (p *Parser) textSince(first int) string {
	var sb strings.Builder
	var prev *token.Token
	for _, tok := range p.src.toks[first:p.src.pos] {
		if prev != nil && (isWordToken(prev) && isWordToken(tok) || prev.Type == token.COMMA) {
			sb.WriteByte(' ')
		}
		sb.WriteString(tok.Text)
		prev = tok
	}
	return sb.String()
}

func isWordToken(tok *token.Token) bool {
	return tok.Type == token.IDENT || tok.Type == token.KEYWORD || tok.Type == token.QUESTION
}

func (p *Parser) peek() *token.Token {
	return p.src.Peek()
}

func (p *Parser) peekN(n int) *token.Token {
	return p.src.PeekN(n)
}

// next consumes and returns the next token.  Reading past the end of input
// is an error.
func (p *Parser) next() *token.Token {
	if !p.src.Scan() {
		tok := p.src.Token
		if tok.Type == token.ERROR {
			p.errorAt(tok, "%s", tok.Text)
		}
		p.errorAt(tok, "unexpected EOF")
	}
	return p.src.Token
}

func (p *Parser) accept(typ token.Type) bool {
	return p.src.AcceptType(typ)
}

func (p *Parser) acceptText(typ token.Type, text string) bool {
	return p.src.Accept(func(tok *token.Token) bool { return tok.Is(typ, text) })
}

func (p *Parser) acceptKeyword(kw string) bool {
	return p.acceptText(token.KEYWORD, kw)
}

func (p *Parser) expect(typ token.Type) *token.Token {
	if tok := p.peek(); tok.Type != typ {
		p.errorf("expected %s, found %s", describeType(typ), describe(tok))
	}
	return p.next()
}

func (p *Parser) expectText(typ token.Type, text string) *token.Token {
	if tok := p.peek(); !tok.Is(typ, text) {
		p.errorf("expected %q, found %s", text, describe(tok))
	}
	return p.next()
}

func (p *Parser) isKeyword(kw string) bool {
	return p.peek().Is(token.KEYWORD, kw)
}

// spanFrom returns the span from start through the last consumed token.
func (p *Parser) spanFrom(start *token.Token) ast.Span {
	last := p.src.Token
	end := start.Source.Pos
	if last != nil && last.Source.Pos >= start.Source.Pos {
		end = last.Source.Pos + len(last.Text)
	}
	return ast.Span{Loc: start.Source, EndPos: end}
}

func (p *Parser) errorf(format string, v ...interface{}) {
	p.errorAt(p.peek(), format, v...)
}

func (p *Parser) errorAt(tok *token.Token, format string, v ...interface{}) {
	panic(bailout{err: token.Errorf(tok.Source, format, v...)})
}

// try runs fn and reports whether it parsed without error.  On failure the
// token source is rewound to where it was before fn ran.
func (p *Parser) try(fn func()) (ok bool) {
	m := p.src.Mark()
	defer func() {
		if r := recover(); r != nil {
			if _, isBailout := r.(bailout); !isBailout {
				panic(r)
			}
			p.src.Reset(m)
			ok = false
		}
	}()
	fn()
	return true
}

func describeType(typ token.Type) string {
	switch typ {
	case token.IDENT, token.KEYWORD, token.EOF, token.INT, token.FLOAT,
		token.CHAR, token.STRING, token.TEXT_BLOCK, token.OPERATOR, token.ASSIGN:
		return typ.String()
	}
	return fmt.Sprintf("%q", typ.String())
}

func describe(tok *token.Token) string {
	switch tok.Type {
	case token.EOF:
		return "EOF"
	case token.ERROR, token.INVALID:
		return tok.Text
	}
	return fmt.Sprintf("%q", tok.Text)
}
