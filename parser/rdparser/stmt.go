// Copyright © 2018 The ELPS authors

package rdparser

import (
	"strings"

	"github.com/luthersystems/subcheck/ast"
	"github.com/luthersystems/subcheck/parser/token"
)

func (p *Parser) parseBlock() *ast.Block {
	start := p.expect(token.BRACE_L)
	b := &ast.Block{}
	for !p.accept(token.BRACE_R) {
		if p.src.IsEOF() {
			p.errorf("expected '}', found %s", describe(p.peek()))
		}
		b.Stmts = append(b.Stmts, p.parseBlockStatement())
	}
	b.Span = p.spanFrom(start)
	return b
}

// parseBlockStatement parses a statement that may also be a local variable
// or local class declaration.
func (p *Parser) parseBlockStatement() ast.Stmt {
	start := p.peek()
	if p.isYieldStatement() {
		p.next()
		x := p.parseExpr()
		p.expect(token.SEMICOLON)
		return &ast.YieldStmt{Span: p.spanFrom(start), X: x}
	}
	if p.hasLocalModifiers() || p.isTypeDeclStart() {
		mods := p.parseModifiers(false)
		if p.isTypeDeclStart() {
			decl := p.parseClassDecl(mods, start)
			return &ast.LocalClassStmt{Span: decl.Span, Decl: decl}
		}
		return p.parseLocalVarDecl(mods, start)
	}
	if p.isLocalVarDecl() {
		return p.parseLocalVarDecl(ast.Modifiers{}, start)
	}
	return p.parseStatement()
}

func (p *Parser) hasLocalModifiers() bool {
	tok := p.peek()
	switch {
	case tok.Type == token.AT:
		return true
	case tok.Type == token.KEYWORD:
		return tok.Text == "final" || tok.Text == "abstract" || tok.Text == "static" || tok.Text == "strictfp"
	}
	return false
}

// isYieldStatement reports whether the next tokens begin a yield statement.
// yield is only a statement inside a switch expression and never when used
// as a variable.
func (p *Parser) isYieldStatement() bool {
	if p.switchExprs == 0 || !p.peek().Is(token.IDENT, "yield") {
		return false
	}
	next := p.peekN(1)
	switch next.Type {
	case token.ASSIGN, token.DOT, token.BRACKET_L, token.SEMICOLON:
		return false
	case token.OPERATOR:
		return next.Text != "++" && next.Text != "--" || p.peekN(2).Type != token.SEMICOLON
	}
	return true
}

// isLocalVarDecl reports whether the next tokens begin a local variable
// declaration without modifiers, such as "int x", "List<String> xs = ..." or
// "var y".  The source is left unchanged.
func (p *Parser) isLocalVarDecl() bool {
	tok := p.peek()
	switch {
	case tok.Type == token.KEYWORD && token.IsPrimitive(tok.Text):
		return p.peekN(1).Type != token.DOT
	case tok.Type != token.IDENT:
		return false
	}
	m := p.src.Mark()
	defer p.src.Reset(m)
	if !p.try(func() { p.parseType() }) {
		return false
	}
	if p.peek().Type != token.IDENT {
		return false
	}
	switch next := p.peekN(1); next.Type {
	case token.SEMICOLON, token.COMMA, token.BRACKET_L, token.COLON:
		return true
	case token.ASSIGN:
		return next.Text == "="
	}
	return false
}

// parseLocalVarDecl parses a local variable declaration statement following
// its modifiers.
func (p *Parser) parseLocalVarDecl(mods ast.Modifiers, start *token.Token) *ast.LocalVarDecl {
	d := &ast.LocalVarDecl{Modifiers: mods, Type: p.parseType()}
	d.Vars = p.parseDeclarators(p.expect(token.IDENT))
	p.expect(token.SEMICOLON)
	d.Span = p.spanFrom(start)
	return d
}

func (p *Parser) parseStatement() ast.Stmt {
	start := p.peek()
	switch start.Type {
	case token.BRACE_L:
		return p.parseBlock()
	case token.SEMICOLON:
		p.next()
		return &ast.EmptyStmt{Span: p.spanFrom(start)}
	case token.IDENT:
		if p.peekN(1).Type == token.COLON {
			p.next()
			p.next()
			s := &ast.LabeledStmt{Label: start.Text, Stmt: p.parseStatement()}
			s.Span = p.spanFrom(start)
			return s
		}
	case token.KEYWORD:
		switch start.Text {
		case "if":
			p.next()
			s := &ast.IfStmt{Cond: p.parseParenExpr()}
			s.Then = p.parseStatement()
			if p.acceptKeyword("else") {
				s.Else = p.parseStatement()
			}
			s.Span = p.spanFrom(start)
			return s
		case "while":
			p.next()
			s := &ast.WhileStmt{Cond: p.parseParenExpr()}
			s.Body = p.parseStatement()
			s.Span = p.spanFrom(start)
			return s
		case "do":
			p.next()
			s := &ast.DoStmt{Body: p.parseStatement()}
			p.expectText(token.KEYWORD, "while")
			s.Cond = p.parseParenExpr()
			p.expect(token.SEMICOLON)
			s.Span = p.spanFrom(start)
			return s
		case "for":
			return p.parseFor()
		case "return":
			p.next()
			s := &ast.ReturnStmt{}
			if p.peek().Type != token.SEMICOLON {
				s.X = p.parseExpr()
			}
			p.expect(token.SEMICOLON)
			s.Span = p.spanFrom(start)
			return s
		case "throw":
			p.next()
			s := &ast.ThrowStmt{X: p.parseExpr()}
			p.expect(token.SEMICOLON)
			s.Span = p.spanFrom(start)
			return s
		case "break", "continue":
			p.next()
			s := &ast.BranchStmt{Keyword: start.Text}
			if p.peek().Type == token.IDENT {
				s.Label = p.next().Text
			}
			p.expect(token.SEMICOLON)
			s.Span = p.spanFrom(start)
			return s
		case "try":
			return p.parseTry()
		case "switch":
			p.next()
			s := &ast.SwitchStmt{Tag: p.parseParenExpr()}
			s.Cases = p.parseSwitchBody()
			s.Span = p.spanFrom(start)
			return s
		case "synchronized":
			p.next()
			s := &ast.SyncStmt{Lock: p.parseParenExpr()}
			s.Body = p.parseBlock()
			s.Span = p.spanFrom(start)
			return s
		case "assert":
			p.next()
			s := &ast.AssertStmt{Cond: p.parseExpr()}
			if p.accept(token.COLON) {
				s.Msg = p.parseExpr()
			}
			p.expect(token.SEMICOLON)
			s.Span = p.spanFrom(start)
			return s
		}
	}
	x := p.parseExpr()
	p.expect(token.SEMICOLON)
	return &ast.ExprStmt{Span: p.spanFrom(start), X: x}
}

func (p *Parser) parseParenExpr() ast.Expr {
	p.expect(token.PAREN_L)
	x := p.parseExpr()
	p.expect(token.PAREN_R)
	return x
}

// parseFor parses both basic and enhanced for statements.
func (p *Parser) parseFor() ast.Stmt {
	start := p.expectText(token.KEYWORD, "for")
	p.expect(token.PAREN_L)
	var init []ast.Stmt
	if p.peek().Type != token.SEMICOLON {
		declStart := p.peek()
		if p.hasLocalModifiers() || p.isLocalVarDecl() {
			mods := p.parseModifiers(false)
			typ := p.parseType()
			name := p.expect(token.IDENT)
			if p.accept(token.COLON) {
				v := &ast.LocalVarDecl{
					Span:      p.spanFrom(declStart),
					Modifiers: mods,
					Type:      typ,
					Vars:      []*ast.VarDeclarator{{Span: ast.Span{Loc: name.Source, EndPos: name.Source.Pos + len(name.Text)}, Name: name.Text}},
				}
				s := &ast.ForEachStmt{Var: v, Iterable: p.parseExpr()}
				p.expect(token.PAREN_R)
				s.Body = p.parseStatement()
				s.Span = p.spanFrom(start)
				return s
			}
			d := &ast.LocalVarDecl{Modifiers: mods, Type: typ}
			d.Vars = p.parseDeclarators(name)
			d.Span = p.spanFrom(declStart)
			init = append(init, d)
		} else {
			init = p.parseExprStmtList()
		}
	}
	p.expect(token.SEMICOLON)
	s := &ast.ForStmt{Init: init}
	if p.peek().Type != token.SEMICOLON {
		s.Cond = p.parseExpr()
	}
	p.expect(token.SEMICOLON)
	for p.peek().Type != token.PAREN_R {
		s.Update = append(s.Update, p.parseExpr())
		if !p.accept(token.COMMA) {
			break
		}
	}
	p.expect(token.PAREN_R)
	s.Body = p.parseStatement()
	s.Span = p.spanFrom(start)
	return s
}

func (p *Parser) parseExprStmtList() []ast.Stmt {
	var list []ast.Stmt
	for {
		start := p.peek()
		x := p.parseExpr()
		list = append(list, &ast.ExprStmt{Span: p.spanFrom(start), X: x})
		if !p.accept(token.COMMA) {
			return list
		}
	}
}

func (p *Parser) parseTry() ast.Stmt {
	start := p.expectText(token.KEYWORD, "try")
	s := &ast.TryStmt{}
	if p.accept(token.PAREN_L) {
		for p.peek().Type != token.PAREN_R {
			resStart := p.peek()
			if p.hasLocalModifiers() || p.isLocalVarDecl() {
				d := &ast.LocalVarDecl{Modifiers: p.parseModifiers(false), Type: p.parseType()}
				d.Vars = p.parseDeclarators(p.expect(token.IDENT))
				d.Span = p.spanFrom(resStart)
				s.Resources = append(s.Resources, d)
			} else {
				x := p.parseExpr()
				s.Resources = append(s.Resources, &ast.ExprStmt{Span: p.spanFrom(resStart), X: x})
			}
			if !p.accept(token.SEMICOLON) {
				break
			}
		}
		p.expect(token.PAREN_R)
	}
	s.Body = p.parseBlock()
	for p.isKeyword("catch") {
		catchStart := p.next()
		p.expect(token.PAREN_L)
		paramStart := p.peek()
		mods := p.parseModifiers(false)
		alts := []string{p.parseType().Name}
		for p.acceptText(token.OPERATOR, "|") {
			alts = append(alts, p.parseType().Name)
		}
		typ := &ast.TypeRef{Span: p.spanFrom(paramStart), Name: strings.Join(alts, " | ")}
		name := p.expect(token.IDENT)
		param := &ast.LocalVarDecl{
			Span:      p.spanFrom(paramStart),
			Modifiers: mods,
			Type:      typ,
			Vars:      []*ast.VarDeclarator{{Span: ast.Span{Loc: name.Source, EndPos: name.Source.Pos + len(name.Text)}, Name: name.Text}},
		}
		p.expect(token.PAREN_R)
		c := &ast.CatchClause{Param: param, Body: p.parseBlock()}
		c.Span = p.spanFrom(catchStart)
		s.Catches = append(s.Catches, c)
	}
	if p.acceptKeyword("finally") {
		s.Finally = p.parseBlock()
	}
	if len(s.Catches) == 0 && s.Finally == nil && len(s.Resources) == 0 {
		p.errorAt(start, "try without catch, finally or resources")
	}
	s.Span = p.spanFrom(start)
	return s
}

// parseSwitchBody parses the braces and case groups of a switch statement
// or expression.
func (p *Parser) parseSwitchBody() []*ast.SwitchCase {
	p.expect(token.BRACE_L)
	var cases []*ast.SwitchCase
	for !p.accept(token.BRACE_R) {
		start := p.peek()
		c := &ast.SwitchCase{}
		if p.acceptKeyword("default") {
			c.Default = true
		} else {
			p.expectText(token.KEYWORD, "case")
			p.noLambda = true
			for {
				if p.acceptKeyword("default") {
					c.Default = true
				} else {
					c.Exprs = append(c.Exprs, p.parseTernary())
				}
				if !p.accept(token.COMMA) {
					break
				}
			}
			p.noLambda = false
		}
		if p.accept(token.ARROW) {
			c.Arrow = true
			bodyStart := p.peek()
			switch {
			case bodyStart.Type == token.BRACE_L:
				c.Body = []ast.Stmt{p.parseBlock()}
			case bodyStart.Is(token.KEYWORD, "throw"):
				c.Body = []ast.Stmt{p.parseStatement()}
			default:
				x := p.parseExpr()
				p.expect(token.SEMICOLON)
				c.Body = []ast.Stmt{&ast.ExprStmt{Span: p.spanFrom(bodyStart), X: x}}
			}
		} else {
			p.expect(token.COLON)
			for !p.isKeyword("case") && !p.isKeyword("default") && p.peek().Type != token.BRACE_R {
				if p.src.IsEOF() {
					p.errorf("unterminated switch body")
				}
				c.Body = append(c.Body, p.parseBlockStatement())
			}
		}
		c.Span = p.spanFrom(start)
		cases = append(cases, c)
	}
	return cases
}
