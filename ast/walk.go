// Copyright © 2024 The ELPS authors

package ast

import "fmt"

// A Visitor's Visit method is invoked for each node encountered by Walk.
// If the result visitor w is not nil, Walk visits each of the children of
// node with the visitor w, followed by a call of w.Visit(nil).
type Visitor interface {
	Visit(node Node) (w Visitor)
}

// Walk traverses a syntax tree in depth-first order.  Children are visited
// in source order.
func Walk(v Visitor, node Node) {
	if v = v.Visit(node); v == nil {
		return
	}

	switch n := node.(type) {
	case *File:
		for _, t := range n.Types {
			Walk(v, t)
		}

	case *Annotation:
		for _, a := range n.Args {
			Walk(v, a)
		}

	case *AnnotationArg:
		walkExpr(v, n.Value)

	case *TypeRef, *Name, *Literal, *ThisExpr, *SuperExpr, *BranchStmt, *EmptyStmt, *ClassLit:
		// leaves

	case *ClassDecl:
		walkAnnotations(v, n.Annotations)
		for _, p := range n.Components {
			Walk(v, p)
		}
		walkMembers(v, n.Members)

	case *FieldDecl:
		walkAnnotations(v, n.Annotations)
		for _, d := range n.Vars {
			Walk(v, d)
		}

	case *MethodDecl:
		walkAnnotations(v, n.Annotations)
		for _, p := range n.Params {
			Walk(v, p)
		}
		if n.Body != nil {
			Walk(v, n.Body)
		}
		walkExpr(v, n.Default)

	case *InitializerBlock:
		Walk(v, n.Body)

	case *EnumConstant:
		walkAnnotations(v, n.Annotations)
		walkExprs(v, n.Args)
		walkMembers(v, n.Body)

	case *Param:
		walkAnnotations(v, n.Annotations)

	case *VarDeclarator:
		walkExpr(v, n.Init)

	// Statements
	case *Block:
		walkStmts(v, n.Stmts)

	case *LocalVarDecl:
		walkAnnotations(v, n.Annotations)
		for _, d := range n.Vars {
			Walk(v, d)
		}

	case *LocalClassStmt:
		Walk(v, n.Decl)

	case *ExprStmt:
		walkExpr(v, n.X)

	case *IfStmt:
		walkExpr(v, n.Cond)
		walkStmt(v, n.Then)
		walkStmt(v, n.Else)

	case *WhileStmt:
		walkExpr(v, n.Cond)
		walkStmt(v, n.Body)

	case *DoStmt:
		walkStmt(v, n.Body)
		walkExpr(v, n.Cond)

	case *ForStmt:
		walkStmts(v, n.Init)
		walkExpr(v, n.Cond)
		walkExprs(v, n.Update)
		walkStmt(v, n.Body)

	case *ForEachStmt:
		Walk(v, n.Var)
		walkExpr(v, n.Iterable)
		walkStmt(v, n.Body)

	case *ReturnStmt:
		walkExpr(v, n.X)

	case *ThrowStmt:
		walkExpr(v, n.X)

	case *YieldStmt:
		walkExpr(v, n.X)

	case *TryStmt:
		walkStmts(v, n.Resources)
		Walk(v, n.Body)
		for _, c := range n.Catches {
			Walk(v, c)
		}
		if n.Finally != nil {
			Walk(v, n.Finally)
		}

	case *CatchClause:
		Walk(v, n.Param)
		Walk(v, n.Body)

	case *SwitchStmt:
		walkExpr(v, n.Tag)
		for _, c := range n.Cases {
			Walk(v, c)
		}

	case *SwitchCase:
		walkExprs(v, n.Exprs)
		walkStmts(v, n.Body)

	case *SyncStmt:
		walkExpr(v, n.Lock)
		Walk(v, n.Body)

	case *LabeledStmt:
		walkStmt(v, n.Stmt)

	case *AssertStmt:
		walkExpr(v, n.Cond)
		walkExpr(v, n.Msg)

	// Expressions
	case *FieldAccess:
		walkExpr(v, n.X)

	case *IndexExpr:
		walkExpr(v, n.X)
		walkExpr(v, n.Index)

	case *CallExpr:
		walkExpr(v, n.X)
		walkExprs(v, n.Args)

	case *NewExpr:
		walkExprs(v, n.Args)
		walkMembers(v, n.Body)
		walkExprs(v, n.Dims)
		if n.Init != nil {
			Walk(v, n.Init)
		}

	case *ArrayInit:
		walkExprs(v, n.Elems)

	case *AssignExpr:
		walkExpr(v, n.Target)
		walkExpr(v, n.Value)

	case *BinaryExpr:
		walkExpr(v, n.X)
		walkExpr(v, n.Y)

	case *UnaryExpr:
		walkExpr(v, n.X)

	case *CondExpr:
		walkExpr(v, n.Cond)
		walkExpr(v, n.Then)
		walkExpr(v, n.Else)

	case *CastExpr:
		walkExpr(v, n.X)

	case *InstanceOfExpr:
		walkExpr(v, n.X)

	case *ParenExpr:
		walkExpr(v, n.X)

	case *LambdaExpr:
		for _, p := range n.Params {
			Walk(v, p)
		}
		if n.Body != nil {
			Walk(v, n.Body)
		}

	case *MethodRef:
		walkExpr(v, n.X)

	case *SwitchExpr:
		walkExpr(v, n.Tag)
		for _, c := range n.Cases {
			Walk(v, c)
		}

	default:
		panic(fmt.Sprintf("ast.Walk: unexpected node type %T", n))
	}

	v.Visit(nil)
}

func walkAnnotations(v Visitor, list []*Annotation) {
	for _, a := range list {
		Walk(v, a)
	}
}

func walkMembers(v Visitor, list []Member) {
	for _, m := range list {
		Walk(v, m)
	}
}

func walkStmts(v Visitor, list []Stmt) {
	for _, s := range list {
		walkStmt(v, s)
	}
}

func walkExprs(v Visitor, list []Expr) {
	for _, x := range list {
		walkExpr(v, x)
	}
}

// walkStmt and walkExpr skip nil interface values; optional children are
// always stored as untyped nils by the parser.
func walkStmt(v Visitor, s Stmt) {
	if s != nil {
		Walk(v, s)
	}
}

func walkExpr(v Visitor, x Expr) {
	if x != nil {
		Walk(v, x)
	}
}

type inspector func(Node) bool

func (f inspector) Visit(node Node) Visitor {
	if f(node) {
		return f
	}
	return nil
}

// Inspect traverses a syntax tree in depth-first order.  It starts by calling
// f(node); node must not be nil.  If f returns true, Inspect invokes f
// recursively for each of the non-nil children of node, followed by a call
// of f(nil).
func Inspect(node Node, f func(Node) bool) {
	Walk(inspector(f), node)
}
