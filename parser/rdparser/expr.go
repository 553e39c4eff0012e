// Copyright © 2018 The ELPS authors

package rdparser

import (
	"strings"

	"github.com/luthersystems/subcheck/ast"
	"github.com/luthersystems/subcheck/parser/token"
)

func (p *Parser) parseExpr() ast.Expr {
	start := p.peek()
	x := p.parseTernary()
	if p.peek().Type == token.ASSIGN {
		op := p.next().Text
		val := p.parseExpr()
		return &ast.AssignExpr{Span: p.spanFrom(start), Target: x, Op: op, Value: val}
	}
	return x
}

func (p *Parser) parseTernary() ast.Expr {
	start := p.peek()
	x := p.parseBinary(1)
	if !p.accept(token.QUESTION) {
		return x
	}
	then := p.parseTernaryOrLambda()
	p.expect(token.COLON)
	els := p.parseTernaryOrLambda()
	return &ast.CondExpr{Span: p.spanFrom(start), Cond: x, Then: then, Else: els}
}

func (p *Parser) parseTernaryOrLambda() ast.Expr {
	if p.isLambdaStart() {
		return p.parseLambda()
	}
	return p.parseTernary()
}

var binaryPrec = map[string]int{
	"||": 1,
	"&&": 2,
	"|":  3,
	"^":  4,
	"&":  5,
	"==": 6, "!=": 6,
	"<": 7, ">": 7, "<=": 7, ">=": 7,
	"<<": 8, ">>": 8, ">>>": 8,
	"+": 9, "-": 9,
	"*": 10, "/": 10, "%": 10,
}

// instanceofPrec is the precedence of the relational instanceof operator.
const instanceofPrec = 7

// parseBinary parses a left associative binary expression whose operators
// all bind at least as tightly as minPrec.
func (p *Parser) parseBinary(minPrec int) ast.Expr {
	start := p.peek()
	x := p.parseUnary()
	for {
		tok := p.peek()
		if tok.Is(token.KEYWORD, "instanceof") {
			if instanceofPrec < minPrec {
				return x
			}
			p.next()
			p.acceptKeyword("final")
			n := &ast.InstanceOfExpr{X: x, Type: p.parseType()}
			if p.peek().Type == token.IDENT {
				n.Binding = p.next().Text
			}
			n.Span = p.spanFrom(start)
			x = n
			continue
		}
		if tok.Type != token.OPERATOR {
			return x
		}
		prec, ok := binaryPrec[tok.Text]
		if !ok || prec < minPrec {
			return x
		}
		p.next()
		y := p.parseBinary(prec + 1)
		x = &ast.BinaryExpr{Span: p.spanFrom(start), X: x, Op: tok.Text, Y: y}
	}
}

func (p *Parser) parseUnary() ast.Expr {
	start := p.peek()
	if start.Type == token.OPERATOR {
		switch start.Text {
		case "+", "-", "++", "--", "!", "~":
			p.next()
			x := p.parseUnary()
			return &ast.UnaryExpr{Span: p.spanFrom(start), Op: start.Text, X: x}
		}
	}
	if start.Type == token.PAREN_L {
		if x := p.tryCast(start); x != nil {
			return x
		}
	}
	return p.parsePostfix(start, p.parsePrimary())
}

// tryCast parses a cast expression if one begins at the current token.
// Otherwise it returns nil and leaves the source unchanged.
func (p *Parser) tryCast(start *token.Token) ast.Expr {
	next := p.peekN(1)
	primitive := next.Type == token.KEYWORD && token.IsPrimitive(next.Text)
	if !primitive && next.Type != token.IDENT && next.Type != token.AT {
		return nil
	}
	m := p.src.Mark()
	var typ *ast.TypeRef
	ok := p.try(func() {
		p.next()
		first := p.src.pos
		p.parseType()
		for p.acceptText(token.OPERATOR, "&") {
			p.parseType()
		}
		typ = &ast.TypeRef{Span: p.spanFrom(p.src.toks[first]), Name: p.textSince(first)}
		p.expect(token.PAREN_R)
	})
	if !ok {
		return nil
	}
	if !primitive && !p.canStartCastOperand() {
		p.src.Reset(m)
		return nil
	}
	var x ast.Expr
	if p.isLambdaStart() {
		x = p.parseLambda()
	} else {
		x = p.parseUnary()
	}
	return &ast.CastExpr{Span: p.spanFrom(start), Type: typ, X: x}
}

// canStartCastOperand reports whether the next token can begin the operand
// of a reference type cast.  Unary plus and minus are excluded so that
// (a) - b remains a subtraction.
func (p *Parser) canStartCastOperand() bool {
	tok := p.peek()
	switch tok.Type {
	case token.IDENT, token.INT, token.FLOAT, token.CHAR, token.STRING, token.TEXT_BLOCK, token.PAREN_L:
		return true
	case token.KEYWORD:
		switch tok.Text {
		case "this", "super", "new", "true", "false", "null", "switch":
			return true
		}
		return token.IsPrimitive(tok.Text)
	case token.OPERATOR:
		return tok.Text == "!" || tok.Text == "~"
	}
	return false
}

func (p *Parser) parsePostfix(start *token.Token, x ast.Expr) ast.Expr {
	for {
		tok := p.peek()
		switch tok.Type {
		case token.DOT:
			p.next()
			x = p.parseSelector(start, x)
		case token.BRACKET_L:
			if p.peekN(1).Type == token.BRACKET_R {
				// array type in a class literal or method reference
				first := p.src.pos
				p.skipDims()
				x = &ast.Name{Span: p.spanFrom(start), Name: typeName(x) + p.textSince(first)}
				continue
			}
			p.next()
			idx := p.parseExpr()
			p.expect(token.BRACKET_R)
			x = &ast.IndexExpr{Span: p.spanFrom(start), X: x, Index: idx}
		case token.OPERATOR:
			if tok.Text != "++" && tok.Text != "--" {
				return x
			}
			p.next()
			x = &ast.UnaryExpr{Span: p.spanFrom(start), Op: tok.Text, X: x, Postfix: true}
		case token.COLON_COLON:
			p.next()
			var name string
			if p.isKeyword("new") {
				name = p.next().Text
			} else {
				p.parseTypeArgs()
				name = p.expect(token.IDENT).Text
			}
			x = &ast.MethodRef{Span: p.spanFrom(start), X: x, Name: name}
		default:
			return x
		}
	}
}

// parseSelector parses what follows the dot in x.sel.
func (p *Parser) parseSelector(start *token.Token, x ast.Expr) ast.Expr {
	tok := p.peek()
	switch {
	case tok.Type == token.IDENT:
		p.next()
		if p.peek().Type == token.PAREN_L {
			args := p.parseArgs()
			return &ast.CallExpr{Span: p.spanFrom(start), X: x, Name: tok.Text, Args: args}
		}
		return &ast.FieldAccess{Span: p.spanFrom(start), X: x, Name: tok.Text}
	case tok.Is(token.OPERATOR, "<"):
		p.parseTypeArgs()
		name := p.expect(token.IDENT).Text
		args := p.parseArgs()
		return &ast.CallExpr{Span: p.spanFrom(start), X: x, Name: name, Args: args}
	case tok.Is(token.KEYWORD, "class"):
		p.next()
		typ := &ast.TypeRef{Span: p.spanFrom(start), Name: typeName(x)}
		return &ast.ClassLit{Span: typ.Span, Type: typ}
	case tok.Is(token.KEYWORD, "this"):
		p.next()
		return &ast.ThisExpr{Span: p.spanFrom(start), Qualifier: typeName(x)}
	case tok.Is(token.KEYWORD, "super"):
		p.next()
		return &ast.SuperExpr{Span: p.spanFrom(start)}
	case tok.Is(token.KEYWORD, "new"):
		// qualified inner class creation; the outer instance is not retained
		return p.parseNew()
	}
	p.errorf("expected selector, found %s", describe(tok))
	return nil
}

// typeName renders a name or field access chain as a dotted type name.
func typeName(x ast.Expr) string {
	switch x := x.(type) {
	case *ast.Name:
		return x.Name
	case *ast.FieldAccess:
		return typeName(x.X) + "." + x.Name
	}
	return ""
}

func (p *Parser) parsePrimary() ast.Expr {
	start := p.peek()
	switch start.Type {
	case token.INT, token.FLOAT, token.CHAR, token.STRING, token.TEXT_BLOCK:
		p.next()
		val, err := literalValue(start)
		if err != nil {
			p.errorAt(start, "%v", err)
		}
		return &ast.Literal{Span: p.spanFrom(start), Kind: start.Type, Raw: start.Text, Value: val}
	case token.IDENT:
		if p.isLambdaStart() {
			return p.parseLambda()
		}
		p.next()
		if p.peek().Type == token.PAREN_L {
			args := p.parseArgs()
			return &ast.CallExpr{Span: p.spanFrom(start), Name: start.Text, Args: args}
		}
		return &ast.Name{Span: p.spanFrom(start), Name: start.Text}
	case token.PAREN_L:
		if p.isLambdaStart() {
			return p.parseLambda()
		}
		p.next()
		x := p.parseExpr()
		p.expect(token.PAREN_R)
		return &ast.ParenExpr{Span: p.spanFrom(start), X: x}
	case token.KEYWORD:
		switch start.Text {
		case "true", "false", "null":
			p.next()
			return &ast.Literal{Span: p.spanFrom(start), Kind: token.KEYWORD, Raw: start.Text, Value: start.Text}
		case "this", "super":
			p.next()
			if p.peek().Type == token.PAREN_L {
				args := p.parseArgs()
				return &ast.CallExpr{Span: p.spanFrom(start), Name: start.Text, Args: args}
			}
			if start.Text == "this" {
				return &ast.ThisExpr{Span: p.spanFrom(start)}
			}
			return &ast.SuperExpr{Span: p.spanFrom(start)}
		case "new":
			return p.parseNew()
		case "switch":
			p.next()
			p.switchExprs++
			s := &ast.SwitchExpr{Tag: p.parseParenExpr()}
			s.Cases = p.parseSwitchBody()
			p.switchExprs--
			s.Span = p.spanFrom(start)
			return s
		}
		if token.IsPrimitive(start.Text) || start.Text == "void" {
			typ := p.parseType()
			if p.peek().Type == token.COLON_COLON {
				return &ast.Name{Span: typ.Span, Name: typ.Name}
			}
			p.expect(token.DOT)
			p.expectText(token.KEYWORD, "class")
			return &ast.ClassLit{Span: p.spanFrom(start), Type: typ}
		}
	case token.ERROR:
		p.errorf("%s", start.Text)
	}
	p.errorf("expected expression, found %s", describe(start))
	return nil
}

// isLambdaStart reports whether a lambda expression begins at the next
// token.
func (p *Parser) isLambdaStart() bool {
	if p.noLambda {
		return false
	}
	tok := p.peek()
	if tok.Type == token.IDENT {
		return p.peekN(1).Type == token.ARROW
	}
	if tok.Type != token.PAREN_L {
		return false
	}
	depth := 0
	for i := 0; ; i++ {
		switch p.peekN(i).Type {
		case token.PAREN_L:
			depth++
		case token.PAREN_R:
			depth--
			if depth == 0 {
				return p.peekN(i+1).Type == token.ARROW
			}
		case token.EOF, token.ERROR, token.SEMICOLON, token.BRACE_L, token.BRACE_R:
			return false
		}
	}
}

func (p *Parser) parseLambda() ast.Expr {
	start := p.peek()
	lam := &ast.LambdaExpr{}
	if start.Type == token.IDENT {
		p.next()
		lam.Params = []*ast.Param{{Span: p.spanFrom(start), Name: start.Text}}
	} else {
		p.expect(token.PAREN_L)
		for p.peek().Type != token.PAREN_R {
			tok := p.peek()
			if tok.Type == token.IDENT && (p.peekN(1).Type == token.COMMA || p.peekN(1).Type == token.PAREN_R) {
				p.next()
				lam.Params = append(lam.Params, &ast.Param{Span: p.spanFrom(tok), Name: tok.Text})
			} else {
				lam.Params = append(lam.Params, p.parseParam())
			}
			if !p.accept(token.COMMA) {
				break
			}
		}
		p.expect(token.PAREN_R)
	}
	p.expect(token.ARROW)
	if p.peek().Type == token.BRACE_L {
		lam.Body = p.parseBlock()
	} else {
		lam.Body = p.parseExpr()
	}
	lam.Span = p.spanFrom(start)
	return lam
}

// parseNew parses a class instance or array creation expression.
func (p *Parser) parseNew() ast.Expr {
	start := p.expectText(token.KEYWORD, "new")
	p.parseTypeArgs()
	n := &ast.NewExpr{Type: p.parseTypeDims(false)}
	if p.peek().Type == token.BRACKET_L {
		for p.accept(token.BRACKET_L) {
			if p.accept(token.BRACKET_R) {
				n.Dims = append(n.Dims, nil)
				continue
			}
			n.Dims = append(n.Dims, p.parseExpr())
			p.expect(token.BRACKET_R)
		}
		if p.peek().Type == token.BRACE_L {
			n.Init = p.parseArrayInit(p.parseVarInit)
		}
		n.Span = p.spanFrom(start)
		return n
	}
	n.Args = p.parseArgs()
	if p.peek().Type == token.BRACE_L {
		n.Anonymous = true
		n.Body = p.parseClassBody("")
	}
	n.Span = p.spanFrom(start)
	return n
}

func (p *Parser) parseArgs() []ast.Expr {
	p.expect(token.PAREN_L)
	var args []ast.Expr
	for p.peek().Type != token.PAREN_R {
		args = append(args, p.parseExpr())
		if !p.accept(token.COMMA) {
			break
		}
	}
	p.expect(token.PAREN_R)
	return args
}

// literalValue returns the value of a literal token.  String, text block and
// character literals are unescaped; numeric literals are returned as written.
func literalValue(tok *token.Token) (string, error) {
	switch tok.Type {
	case token.STRING, token.CHAR:
		return unescape(tok.Text[1 : len(tok.Text)-1])
	case token.TEXT_BLOCK:
		return textBlockValue(tok.Text)
	}
	return tok.Text, nil
}

func unescape(s string) (string, error) {
	if !strings.ContainsRune(s, '\\') {
		return s, nil
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			sb.WriteByte(c)
			continue
		}
		i++
		if i >= len(s) {
			return "", errInvalidEscape("\\")
		}
		switch c = s[i]; c {
		case 'b':
			sb.WriteByte('\b')
		case 't':
			sb.WriteByte('\t')
		case 'n':
			sb.WriteByte('\n')
		case 'f':
			sb.WriteByte('\f')
		case 'r':
			sb.WriteByte('\r')
		case 's':
			sb.WriteByte(' ')
		case '"', '\'', '\\':
			sb.WriteByte(c)
		case '\n':
			// line continuation in text blocks
		case 'u':
			for i+1 < len(s) && s[i+1] == 'u' {
				i++
			}
			if i+4 >= len(s) {
				return "", errInvalidEscape(s[i-1:])
			}
			var r rune
			for _, h := range s[i+1 : i+5] {
				d := hexDigit(h)
				if d < 0 {
					return "", errInvalidEscape(s[i-1 : i+5])
				}
				r = r<<4 | rune(d)
			}
			sb.WriteRune(r)
			i += 4
		case '0', '1', '2', '3', '4', '5', '6', '7':
			n := int(c - '0')
			digits := 2
			if c > '3' {
				digits = 1
			}
			for j := 0; j < digits && i+1 < len(s) && s[i+1] >= '0' && s[i+1] <= '7'; j++ {
				i++
				n = n*8 + int(s[i]-'0')
			}
			sb.WriteRune(rune(n))
		default:
			return "", errInvalidEscape(s[i-1 : i+1])
		}
	}
	return sb.String(), nil
}

func hexDigit(r rune) int {
	switch {
	case r >= '0' && r <= '9':
		return int(r - '0')
	case r >= 'a' && r <= 'f':
		return int(r-'a') + 10
	case r >= 'A' && r <= 'F':
		return int(r-'A') + 10
	}
	return -1
}

type errInvalidEscape string

func (e errInvalidEscape) Error() string {
	return "invalid escape sequence: " + string(e)
}

// textBlockValue strips the delimiters and incidental indentation of a text
// block before unescaping it.
func textBlockValue(raw string) (string, error) {
	body := strings.TrimSuffix(strings.TrimPrefix(raw, `"""`), `"""`)
	if i := strings.IndexByte(body, '\n'); i >= 0 {
		body = body[i+1:]
	}
	lines := strings.Split(body, "\n")
	indent := -1
	for i, line := range lines {
		last := i == len(lines)-1
		if strings.TrimSpace(line) == "" && !last {
			continue
		}
		n := len(line) - len(strings.TrimLeft(line, " \t"))
		if indent < 0 || n < indent {
			indent = n
		}
	}
	for i, line := range lines {
		if len(line) >= indent && indent > 0 {
			line = line[indent:]
		} else if strings.TrimSpace(line) == "" {
			line = ""
		}
		lines[i] = strings.TrimRight(line, " \t")
	}
	return unescape(strings.Join(lines, "\n"))
}
