// Copyright © 2024 The ELPS authors

// Package astutil provides shared AST walking utilities for parsed java
// files.
//
// These helpers are used by the subtype and lint packages to find the
// declarations enclosing a node and to classify assignment operands.
package astutil

import (
	"strings"

	"github.com/luthersystems/subcheck/ast"
)

// Walk calls fn for every node in the tree, depth-first.  path holds the
// ancestors of node, outermost first, and is only valid for the duration of
// the call.  Children of node are skipped when fn returns false.
func Walk(root ast.Node, fn func(node ast.Node, path []ast.Node) bool) {
	ast.Walk(&pathVisitor{fn: fn}, root)
}

type pathVisitor struct {
	fn    func(ast.Node, []ast.Node) bool
	stack []ast.Node
}

func (v *pathVisitor) Visit(node ast.Node) ast.Visitor {
	if node == nil {
		v.stack = v.stack[:len(v.stack)-1]
		return nil
	}
	if !v.fn(node, v.stack) {
		return nil
	}
	v.stack = append(v.stack, node)
	return v
}

// InspectBody calls fn for every node under the member decl, depth-first,
// without descending into nested class bodies.  Members of local and
// anonymous classes declared inside decl belong to those classes.
func InspectBody(decl ast.Member, fn func(ast.Node) bool) {
	ast.Inspect(decl, func(n ast.Node) bool {
		if n == nil {
			return fn(n)
		}
		if _, isMember := n.(ast.Member); isMember && n != decl {
			return false
		}
		return fn(n)
	})
}

// EnclosingClass returns the innermost class declaration in path, or nil.
// Anonymous class bodies have no declaration of their own and resolve to the
// class lexically enclosing them.
func EnclosingClass(path []ast.Node) *ast.ClassDecl {
	for i := len(path) - 1; i >= 0; i-- {
		if c, ok := path[i].(*ast.ClassDecl); ok {
			return c
		}
	}
	return nil
}

// QualifiedClassName returns the fully qualified name of the innermost class
// in path: the package followed by each enclosing class name.  The result
// is empty when path contains no class.
func QualifiedClassName(pkg string, path []ast.Node) string {
	var parts []string
	for _, n := range path {
		if c, ok := n.(*ast.ClassDecl); ok {
			parts = append(parts, c.Name)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	if pkg != "" {
		parts = append([]string{pkg}, parts...)
	}
	return strings.Join(parts, ".")
}

// MethodName returns the name used to address m in qualified keys.
// Constructors are named <init>.
func MethodName(m *ast.MethodDecl) string {
	if m.Constructor {
		return "<init>"
	}
	return m.Name
}

// Method is a method declaration together with its enclosing class.
type Method struct {
	Class string // qualified name of the enclosing class
	Decl  *ast.MethodDecl
}

// Methods returns every method and constructor declared in f, including
// those of nested, local and anonymous classes, in source order.  Abstract
// and native methods are included.
func Methods(f *ast.File) []Method {
	var methods []Method
	Walk(f, func(n ast.Node, path []ast.Node) bool {
		if m, ok := n.(*ast.MethodDecl); ok {
			methods = append(methods, Method{
				Class: QualifiedClassName(f.Package, path),
				Decl:  m,
			})
		}
		return true
	})
	return methods
}

// OperandKind classifies an assignment operand.
type OperandKind int

const (
	OperandName OperandKind = iota
	OperandField
	OperandIndex
	OperandCall
	OperandLiteral
	OperandOther
)

func (k OperandKind) String() string {
	switch k {
	case OperandName:
		return "name"
	case OperandField:
		return "field access"
	case OperandIndex:
		return "array element"
	case OperandCall:
		return "method call"
	case OperandLiteral:
		return "literal"
	default:
		return "expression"
	}
}

// ClassifyOperand reports the shape of x.  Parentheses are ignored.  For
// OperandName the identifier is also returned.
func ClassifyOperand(x ast.Expr) (string, OperandKind) {
	for {
		p, ok := x.(*ast.ParenExpr)
		if !ok {
			break
		}
		x = p.X
	}
	switch x := x.(type) {
	case *ast.Name:
		return x.Name, OperandName
	case *ast.FieldAccess:
		return "", OperandField
	case *ast.IndexExpr:
		return "", OperandIndex
	case *ast.CallExpr, *ast.NewExpr:
		return "", OperandCall
	case *ast.Literal:
		return "", OperandLiteral
	}
	return "", OperandOther
}
