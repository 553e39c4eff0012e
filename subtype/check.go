// Copyright © 2024 The ELPS authors

package subtype

import (
	"context"
	"fmt"

	"github.com/luthersystems/subcheck/ast"
	"github.com/luthersystems/subcheck/astutil"
	"github.com/luthersystems/subcheck/parser/token"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

// FindingKind distinguishes the findings produced by a run.
type FindingKind int

const (
	// Mismatch is an assignment between names carrying different tags.
	Mismatch FindingKind = iota
	// Unanalyzed is an assignment whose outcome depends on an operand that
	// is not a plain name.
	Unanalyzed
	// Redeclared is a tagged declaration whose key was already declared
	// with a different tag.
	Redeclared
)

func (k FindingKind) String() string {
	switch k {
	case Mismatch:
		return "mismatch"
	case Unanalyzed:
		return "unanalyzed"
	case Redeclared:
		return "redeclared"
	default:
		return fmt.Sprintf("FindingKind(%d)", int(k))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k FindingKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Finding is a reportable result of checking one file.
type Finding struct {
	Kind      FindingKind     `json:"kind"`
	Assign    string          `json:"assign,omitempty"` // source text of the assignment or declaration
	Target    string          `json:"target,omitempty"`
	Value     string          `json:"value,omitempty"`
	TargetTag Tag             `json:"target_tag,omitempty"`
	ValueTag  Tag             `json:"value_tag,omitempty"`
	Class     string          `json:"class,omitempty"`
	Method    string          `json:"method,omitempty"`
	Pos       *token.Location `json:"pos,omitempty"`
	End       int             `json:"end"` // byte offset following the reported node
	Reason    string          `json:"reason,omitempty"`
	Synthetic bool            `json:"synthetic,omitempty"` // from a declaration initializer
}

// MethodInput holds everything CheckMethod needs to check one method.
type MethodInput struct {
	File   *ast.File // source of assignment text; may be nil
	Class  string
	Method *ast.MethodDecl
	Params *Table // from CollectMethodParams
	Locals *Table // from CollectLocals
	Fields *Table // from CollectFields; only read when ScopeField is enabled
}

// CheckMethod checks every assignment in the method of in, in source order.
// Assignments of a name to a name are resolved through cfg's scopes and a
// Mismatch is reported when both resolve to different tags.  Other operand
// shapes are reported as Unanalyzed when they could hide a mismatch, or
// fail with ErrUnsupportedOperand in strict mode.
func CheckMethod(ctx context.Context, in MethodInput, cfg Config) ([]Finding, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	_, span := contextTracer(ctx).Start(ctx, "subtype.CheckMethod", trace.WithAttributes(
		semconv.CodeNamespace(in.Class),
		semconv.CodeFunction(astutil.MethodName(in.Method)),
	))
	defer span.End()

	c := &checker{in: in, cfg: cfg, method: astutil.MethodName(in.Method)}
	var findings []Finding
	var err error
	astutil.InspectBody(in.Method, func(n ast.Node) bool {
		if err != nil {
			return false
		}
		switch n := n.(type) {
		case *ast.AssignExpr:
			target, value := operandOf(n.Target), operandOf(n.Value)
			findings, err = c.check(findings, n, target, value, false)
		case *ast.LocalVarDecl:
			if !cfg.CheckInitializers {
				break
			}
			for _, v := range n.Vars {
				if v.Init == nil || err != nil {
					continue
				}
				target := operand{name: v.Name, kind: astutil.OperandName, node: v}
				findings, err = c.check(findings, v, target, operandOf(v.Init), true)
			}
		}
		return true
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("subtype.findings", len(findings)))
	return findings, nil
}

type operand struct {
	name string
	kind astutil.OperandKind
	node ast.Node
}

func operandOf(x ast.Expr) operand {
	name, kind := astutil.ClassifyOperand(x)
	return operand{name: name, kind: kind, node: x}
}

type checker struct {
	in     MethodInput
	cfg    Config
	method string
}

func (c *checker) check(findings []Finding, n ast.Node, target, value operand, synthetic bool) ([]Finding, error) {
	supported := target.kind == astutil.OperandName && value.kind == astutil.OperandName
	// initializers are declarations, never fatal
	if !supported && c.cfg.Strict && !synthetic {
		return findings, token.Errorf(n.Pos(), "%w: %s: %s", ErrUnsupportedOperand, c.text(n), c.reason(target, value))
	}

	var targetTag, valueTag Tag
	if target.kind == astutil.OperandName {
		tag, ok := c.resolve(target.name)
		if !ok {
			return findings, nil
		}
		targetTag = tag
	}
	if value.kind == astutil.OperandName {
		tag, ok := c.resolve(value.name)
		if !ok {
			return findings, nil
		}
		valueTag = tag
	}

	if !supported {
		f := c.finding(Unanalyzed, n, target, value, synthetic)
		f.TargetTag, f.ValueTag = targetTag, valueTag
		f.Reason = c.reason(target, value)
		return append(findings, f), nil
	}
	if targetTag == valueTag {
		return findings, nil
	}
	f := c.finding(Mismatch, n, target, value, synthetic)
	f.TargetTag, f.ValueTag = targetTag, valueTag
	f.Reason = fmt.Sprintf("target type = %s, value type = %s", targetTag, valueTag)
	return append(findings, f), nil
}

// resolve looks name up in each configured scope in turn.
func (c *checker) resolve(name string) (Tag, bool) {
	for _, scope := range c.cfg.scopes() {
		var tag Tag
		var ok bool
		switch scope {
		case ScopeParam:
			tag, ok = c.in.Params.Lookup(ParamKey(c.in.Class, c.method, name))
		case ScopeLocal:
			tag, ok = c.in.Locals.Lookup(LocalKey(c.in.Class, c.method, name))
		case ScopeField:
			tag, ok = c.in.Fields.Lookup(FieldKey(c.in.Class, name))
		}
		if ok {
			return tag, true
		}
	}
	return "", false
}

func (c *checker) finding(kind FindingKind, n ast.Node, target, value operand, synthetic bool) Finding {
	f := Finding{
		Kind:      kind,
		Assign:    c.text(n),
		Target:    target.name,
		Value:     c.text(value.node),
		Class:     c.in.Class,
		Method:    c.method,
		Pos:       n.Pos(),
		End:       n.End(),
		Synthetic: synthetic,
	}
	if target.kind != astutil.OperandName || target.name == "" {
		f.Target = c.text(target.node)
	}
	return f
}

func (c *checker) text(n ast.Node) string {
	if c.in.File == nil || n == nil {
		return ""
	}
	return c.in.File.Text(n)
}

func (c *checker) reason(target, value operand) string {
	if target.kind != astutil.OperandName {
		return fmt.Sprintf("target is not a plain name (%s)", target.kind)
	}
	return fmt.Sprintf("value is not a plain name (%s)", value.kind)
}
