// Copyright © 2024 The ELPS authors

package ast

import "github.com/luthersystems/subcheck/parser/token"

type (
	// Name is a bare identifier reference.
	Name struct {
		Span
		Name string
	}

	// Literal is a literal constant.  Kind is one of token.INT, token.FLOAT,
	// token.CHAR, token.STRING, token.TEXT_BLOCK or token.KEYWORD (true,
	// false, null).  Value holds the unescaped contents of string and text
	// block literals and the raw text otherwise.
	Literal struct {
		Span
		Kind  token.Type
		Raw   string
		Value string
	}

	FieldAccess struct {
		Span
		X    Expr
		Name string
	}

	IndexExpr struct {
		Span
		X     Expr
		Index Expr
	}

	// CallExpr is a method invocation.  X is nil for unqualified calls.
	// Explicit constructor invocations are calls named "this" or "super".
	CallExpr struct {
		Span
		X    Expr
		Name string
		Args []Expr
	}

	// NewExpr creates an object or an array.
	NewExpr struct {
		Span
		Type      *TypeRef
		Args      []Expr
		Body      []Member // anonymous class body, nil when absent
		Anonymous bool
		Dims      []Expr // array dimension expressions; nil entries for []
		Init      *ArrayInit
	}

	ArrayInit struct {
		Span
		Elems []Expr
	}

	// AssignExpr is a simple (=) or compound (+= ...) assignment.
	AssignExpr struct {
		Span
		Target Expr
		Op     string
		Value  Expr
	}

	BinaryExpr struct {
		Span
		X  Expr
		Op string
		Y  Expr
	}

	UnaryExpr struct {
		Span
		Op      string
		X       Expr
		Postfix bool
	}

	CondExpr struct {
		Span
		Cond Expr
		Then Expr
		Else Expr
	}

	CastExpr struct {
		Span
		Type *TypeRef
		X    Expr
	}

	InstanceOfExpr struct {
		Span
		X       Expr
		Type    *TypeRef
		Binding string // pattern variable, empty when absent
	}

	ThisExpr struct {
		Span
		Qualifier string
	}

	SuperExpr struct {
		Span
	}

	ParenExpr struct {
		Span
		X Expr
	}

	// LambdaExpr has either an Expr or a *Block body.
	LambdaExpr struct {
		Span
		Params []*Param
		Body   Node
	}

	MethodRef struct {
		Span
		X    Expr
		Name string
	}

	// ClassLit is a class literal such as String.class.
	ClassLit struct {
		Span
		Type *TypeRef
	}

	// SwitchExpr is a switch used as an expression.
	SwitchExpr struct {
		Span
		Tag   Expr
		Cases []*SwitchCase
	}
)

func (*Name) exprNode()           {}
func (*Literal) exprNode()        {}
func (*FieldAccess) exprNode()    {}
func (*IndexExpr) exprNode()      {}
func (*CallExpr) exprNode()       {}
func (*NewExpr) exprNode()        {}
func (*ArrayInit) exprNode()      {}
func (*AssignExpr) exprNode()     {}
func (*BinaryExpr) exprNode()     {}
func (*UnaryExpr) exprNode()      {}
func (*CondExpr) exprNode()       {}
func (*CastExpr) exprNode()       {}
func (*InstanceOfExpr) exprNode() {}
func (*ThisExpr) exprNode()       {}
func (*SuperExpr) exprNode()      {}
func (*ParenExpr) exprNode()      {}
func (*LambdaExpr) exprNode()     {}
func (*MethodRef) exprNode()      {}
func (*ClassLit) exprNode()       {}
func (*SwitchExpr) exprNode()     {}
func (*Annotation) exprNode()     {}
