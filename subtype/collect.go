// Copyright © 2024 The ELPS authors

package subtype

import (
	"github.com/luthersystems/subcheck/ast"
	"github.com/luthersystems/subcheck/astutil"
	"github.com/luthersystems/subcheck/parser/token"
)

// CollectFields returns the tags declared on the fields of every class in
// f, keyed by FieldKey with the fully qualified class name.  Record
// components are fields of their record.
func CollectFields(f *ast.File) (*Table, error) {
	return collectFields(f.Package, f)
}

func collectFields(pkg string, root ast.Node) (*Table, error) {
	t := newTable()
	var err error
	astutil.Walk(root, func(n ast.Node, path []ast.Node) bool {
		if err != nil {
			return false
		}
		switch n := n.(type) {
		case *ast.FieldDecl:
			class := astutil.QualifiedClassName(pkg, path)
			if class == "" {
				err = token.Errorf(n.Pos(), "%w", ErrNoEnclosingClass)
				return false
			}
			tag, ok, e := ExtractTag(n.Annotations)
			if e != nil {
				err = e
				return false
			}
			if ok {
				for _, v := range n.Vars {
					t.add(FieldKey(class, v.Name), tag, v.Pos())
				}
			}
		case *ast.Param:
			// record components are the only parameters directly inside a class
			if len(path) == 0 {
				break
			}
			if _, isComponent := path[len(path)-1].(*ast.ClassDecl); !isComponent {
				break
			}
			tag, ok, e := ExtractTag(n.Annotations)
			if e != nil {
				err = e
				return false
			}
			if ok {
				t.add(FieldKey(astutil.QualifiedClassName(pkg, path), n.Name), tag, n.Pos())
			}
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// CollectParams returns the tags declared on the parameters of every method
// and constructor in f, keyed by ParamKey.  It is the global parameter
// inventory; overloads sharing a parameter name collide.
func CollectParams(f *ast.File) (*Table, error) {
	t := newTable()
	for _, m := range astutil.Methods(f) {
		pt, err := CollectMethodParams(m.Class, m.Decl)
		if err != nil {
			return nil, err
		}
		t.merge(pt)
	}
	return t, nil
}

// CollectMethodParams returns the tags declared on the parameters of m,
// which is declared in class.
func CollectMethodParams(class string, m *ast.MethodDecl) (*Table, error) {
	t := newTable()
	method := astutil.MethodName(m)
	for _, p := range m.Params {
		tag, ok, err := ExtractTag(p.Annotations)
		if err != nil {
			return nil, err
		}
		if ok {
			t.add(ParamKey(class, method, p.Name), tag, p.Pos())
		}
	}
	return t, nil
}

// CollectLocals returns the tags declared on local variables anywhere in
// the body of m, which is declared in class.  Loop variables, resources and
// catch parameters are locals.  Initializers play no part.  Locals of local
// and anonymous classes inside m belong to their own methods.
func CollectLocals(class string, m *ast.MethodDecl) (*Table, error) {
	t := newTable()
	method := astutil.MethodName(m)
	var err error
	astutil.InspectBody(m, func(n ast.Node) bool {
		if err != nil {
			return false
		}
		d, ok := n.(*ast.LocalVarDecl)
		if !ok {
			return true
		}
		tag, ok, e := ExtractTag(d.Annotations)
		if e != nil {
			err = e
			return false
		}
		if ok {
			for _, v := range d.Vars {
				t.add(LocalKey(class, method, v.Name), tag, v.Pos())
			}
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}
