// Copyright © 2024 The ELPS authors

// Package subtype checks that values only flow between variables declared
// with the same subtype tag.
//
// Tags are declared with an annotation on fields, method parameters and
// local variables:
//
//	void m(@Subtyping("Raw") String in) {
//	    @Subtyping("Clean") String out;
//	    out = in; // mismatch: Clean vs Raw
//	}
//
// Run builds the field and parameter inventories of a file, then for each
// method builds its parameter and local tables and checks its assignments.
package subtype

import (
	"context"
	"fmt"

	"github.com/luthersystems/subcheck/ast"
	"github.com/luthersystems/subcheck/astutil"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

// MethodResult holds the tables and findings of one method.
type MethodResult struct {
	Class    string    `json:"class"`
	Method   string    `json:"method"`
	Params   *Table    `json:"params"`
	Locals   *Table    `json:"locals"`
	Findings []Finding `json:"-"`
}

// Result is the outcome of checking one file.
type Result struct {
	File     string         `json:"file"`
	Fields   *Table         `json:"fields"`
	Params   *Table         `json:"params"`
	Methods  []MethodResult `json:"methods"`
	Findings []Finding      `json:"findings"`
}

// Run checks every method of f.  Findings are ordered by method and then by
// position within the method, preceded by any inventory collisions.  The
// first fatal error aborts the run.
func Run(ctx context.Context, f *ast.File, cfg Config) (*Result, error) {
	ctx, span := contextTracer(ctx).Start(ctx, "subtype.Run", trace.WithAttributes(
		semconv.CodeFilepath(f.Name),
	))
	defer span.End()
	res, err := run(ctx, f, cfg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("subtype.methods", len(res.Methods)),
		attribute.Int("subtype.findings", len(res.Findings)),
	)
	return res, nil
}

func run(ctx context.Context, f *ast.File, cfg Config) (*Result, error) {
	log := cfg.logger().WithField("file", f.Name)

	params, err := CollectParams(f)
	if err != nil {
		return nil, err
	}
	log.WithField("params", params.Qualified()).Debug("method parameters collected")
	fields, err := CollectFields(f)
	if err != nil {
		return nil, err
	}
	log.WithField("fields", fields.Qualified()).Debug("fields collected")

	res := &Result{File: f.Name, Fields: fields, Params: params}
	res.Findings = append(res.Findings, collisionFindings(fields)...)
	res.Findings = append(res.Findings, collisionFindings(params)...)

	for _, m := range astutil.Methods(f) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := astutil.MethodName(m.Decl)
		locals, err := CollectLocals(m.Class, m.Decl)
		if err != nil {
			return nil, err
		}
		mparams, err := CollectMethodParams(m.Class, m.Decl)
		if err != nil {
			return nil, err
		}
		log.WithFields(logrus.Fields{
			"class":  m.Class,
			"method": name,
			"locals": locals.Bare(),
			"params": mparams.Bare(),
		}).Debug("method tables collected")

		findings, err := CheckMethod(ctx, MethodInput{
			File:   f,
			Class:  m.Class,
			Method: m.Decl,
			Params: mparams,
			Locals: locals,
			Fields: fields,
		}, cfg)
		if err != nil {
			return nil, err
		}
		findings = append(collisionFindings(locals), findings...)
		for _, finding := range findings {
			if finding.Kind == Mismatch {
				log.WithField("assign", finding.Assign).Debug(finding.Reason)
			}
		}
		res.Methods = append(res.Methods, MethodResult{
			Class:    m.Class,
			Method:   name,
			Params:   mparams,
			Locals:   locals,
			Findings: findings,
		})
		res.Findings = append(res.Findings, findings...)
	}
	return res, nil
}

// collisionFindings reports the collisions of t that changed a key's tag.
func collisionFindings(t *Table) []Finding {
	var findings []Finding
	for _, c := range t.Collisions() {
		if c.Old == c.New {
			continue
		}
		findings = append(findings, Finding{
			Kind:      Redeclared,
			Target:    c.Key.Qualified(),
			TargetTag: c.New,
			ValueTag:  c.Old,
			Class:     c.Key.Class,
			Method:    c.Key.Method,
			Pos:       c.Pos,
			End:       endOf(c),
			Reason: fmt.Sprintf("%s %s redeclared with tag %s, replacing %s from %v",
				c.Key.Scope, c.Key.Bare(), c.New, c.Old, c.PrevPos),
		})
	}
	return findings
}

func endOf(c Collision) int {
	if c.Pos == nil {
		return 0
	}
	return c.Pos.Pos + len(c.Key.Name)
}
