// Copyright © 2024 The ELPS authors

// Package ast declares the syntax tree produced by rdparser for the subset of
// java understood by subcheck.
//
// Every node embeds a Span recording where it starts and the byte offset just
// past its last token, so that the source text of any node can be recovered
// with File.Text.
package ast

import (
	"strings"

	"github.com/luthersystems/subcheck/parser/token"
)

// Node is implemented by every syntax tree node.
type Node interface {
	Pos() *token.Location
	End() int
}

// Expr is implemented by expression nodes.
type Expr interface {
	Node
	exprNode()
}

// Stmt is implemented by statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// Member is implemented by class body members.
type Member interface {
	Node
	memberNode()
}

// Span locates a node in its source file.
type Span struct {
	Loc    *token.Location
	EndPos int // byte offset following the node's last token
}

func (s *Span) Pos() *token.Location { return s.Loc }
func (s *Span) End() int             { return s.EndPos }

// File is a parsed compilation unit.
type File struct {
	Span
	Name     string
	Package  string
	Imports  []string
	Types    []*ClassDecl
	Comments []*token.Token
	Source   []byte
}

// Text returns the source text of n with runs of whitespace collapsed to a
// single space.
func (f *File) Text(n Node) string {
	if n == nil || n.Pos() == nil {
		return ""
	}
	start, end := n.Pos().Pos, n.End()
	if start < 0 || end > len(f.Source) || start > end {
		return ""
	}
	return strings.Join(strings.Fields(string(f.Source[start:end])), " ")
}

// Annotation is a use of an annotation such as @Subtyping("X").
type Annotation struct {
	Span
	Name string // name as written, possibly qualified
	Args []*AnnotationArg
}

// SimpleName returns the last segment of the annotation name.
func (a *Annotation) SimpleName() string {
	if i := strings.LastIndexByte(a.Name, '.'); i >= 0 {
		return a.Name[i+1:]
	}
	return a.Name
}

// AnnotationArg is one element-value pair.  The single-element form
// @A(v) produces a pair named "value" with Implicit set.
type AnnotationArg struct {
	Span
	Name     string
	Value    Expr
	Implicit bool
}

// Modifiers holds the modifier keywords and annotations preceding a
// declaration, in source order.
type Modifiers struct {
	Keywords    []string
	Annotations []*Annotation
}

// Has reports whether the modifier keyword kw is present.
func (m *Modifiers) Has(kw string) bool {
	for _, k := range m.Keywords {
		if k == kw {
			return true
		}
	}
	return false
}

// TypeRef is a type as written in the source.
type TypeRef struct {
	Span
	Name string // e.g. "java.util.Map<String, int[]>[]"
}

// ClassKind distinguishes the flavors of type declaration.
type ClassKind int

const (
	KindClass ClassKind = iota
	KindInterface
	KindEnum
	KindRecord
	KindAnnotation
)

func (k ClassKind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindInterface:
		return "interface"
	case KindEnum:
		return "enum"
	case KindRecord:
		return "record"
	case KindAnnotation:
		return "@interface"
	default:
		return "unknown"
	}
}

// ClassDecl declares a class, interface, enum, record or annotation type.
type ClassDecl struct {
	Span
	Modifiers
	Kind       ClassKind
	Name       string
	Components []*Param // record header
	Members    []Member
}

// FieldDecl declares one or more fields sharing a type and modifiers.
type FieldDecl struct {
	Span
	Modifiers
	Type *TypeRef
	Vars []*VarDeclarator
}

// MethodDecl declares a method or constructor.  Constructors have a nil
// Result and are named after their class.
type MethodDecl struct {
	Span
	Modifiers
	Result      *TypeRef
	Name        string
	Params      []*Param
	Body        *Block // nil for abstract and native methods
	Constructor bool
	Default     Expr // annotation element default
}

// InitializerBlock is an instance or static initializer.
type InitializerBlock struct {
	Span
	Static bool
	Body   *Block
}

// EnumConstant declares one enum constant.
type EnumConstant struct {
	Span
	Modifiers
	Name string
	Args []Expr
	Body []Member // constant-specific class body
}

// Param is a method, constructor, lambda or record parameter.
type Param struct {
	Span
	Modifiers
	Type    *TypeRef // nil for untyped lambda parameters
	Name    string
	Varargs bool
}

// VarDeclarator names one variable in a field or local declaration.
type VarDeclarator struct {
	Span
	Name string
	Init Expr // nil when absent
}

func (*ClassDecl) memberNode()        {}
func (*FieldDecl) memberNode()        {}
func (*MethodDecl) memberNode()       {}
func (*InitializerBlock) memberNode() {}
func (*EnumConstant) memberNode()     {}
