// Copyright © 2024 The ELPS authors

package lint

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/luthersystems/subcheck/subtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lintSource runs all default analyzers on the given source and returns diagnostics.
func lintSource(t *testing.T, source string) []Diagnostic {
	t.Helper()
	l := &Linter{Analyzers: DefaultAnalyzers()}
	diags, err := l.LintFile(context.Background(), []byte(source), "Test.java")
	require.NoError(t, err)
	return diags
}

// lintCheck runs a single analyzer on the given source.
func lintCheck(t *testing.T, analyzer *Analyzer, source string) []Diagnostic {
	t.Helper()
	l := &Linter{Analyzers: []*Analyzer{analyzer}}
	diags, err := l.LintFile(context.Background(), []byte(source), "Test.java")
	require.NoError(t, err)
	return diags
}

// assertHasDiag checks that at least one diagnostic contains the given substring.
func assertHasDiag(t *testing.T, diags []Diagnostic, substr string) {
	t.Helper()
	for _, d := range diags {
		if strings.Contains(d.Message, substr) {
			return
		}
	}
	var msgs []string
	for _, d := range diags {
		msgs = append(msgs, d.String())
	}
	t.Errorf("expected diagnostic containing %q, got: %v", substr, msgs)
}

// assertNoDiags checks that there are no diagnostics.
func assertNoDiags(t *testing.T, diags []Diagnostic) {
	t.Helper()
	if len(diags) > 0 {
		var msgs []string
		for _, d := range diags {
			msgs = append(msgs, d.String())
		}
		t.Errorf("expected no diagnostics, got %d: %v", len(diags), msgs)
	}
}

// assertDiagOnLine checks that a diagnostic exists on the given line with the given substring.
func assertDiagOnLine(t *testing.T, diags []Diagnostic, line int, substr string) {
	t.Helper()
	for _, d := range diags {
		if d.Pos.Line == line && strings.Contains(d.Message, substr) {
			return
		}
	}
	var msgs []string
	for _, d := range diags {
		msgs = append(msgs, fmt.Sprintf("line %d: %s", d.Pos.Line, d.Message))
	}
	t.Errorf("expected diagnostic on line %d containing %q, got: %v", line, substr, msgs)
}

// method wraps body in a method with a parameter a tagged X.
func method(body string) string {
	return "class C {\n    void m(@Subtyping(\"X\") int a) {\n" + body + "\n    }\n}\n"
}

// --- subtype-mismatch ---

func TestSubtypeMismatch(t *testing.T) {
	diags := lintCheck(t, AnalyzerSubtypeMismatch, method(`        @Subtyping("Y") int b;
        b = a;`))
	require.Len(t, diags, 1)
	d := diags[0]
	assert.Equal(t, "subtype-mismatch", d.Analyzer)
	assert.Equal(t, SeverityError, d.Severity)
	assert.Equal(t, Position{File: "Test.java", Line: 4, Col: 9}, d.Pos)
	assert.Equal(t, 13, d.EndCol)
	assert.Equal(t, "assignment b = a: target type = Y, value type = X", d.Message)
	assert.Equal(t, []string{"in C.m"}, d.Notes)
}

func TestSubtypeMismatch_Negative(t *testing.T) {
	assertNoDiags(t, lintSource(t, method(`        @Subtyping("X") int b;
        int c;
        b = a;
        c = a;
        b = c;`)))
}

func TestSubtypeMismatch_MultiLine(t *testing.T) {
	diags := lintCheck(t, AnalyzerSubtypeMismatch, method(`        @Subtyping("Y") int b;
        b =
            a;`))
	require.Len(t, diags, 1)
	assert.Equal(t, 4, diags[0].Pos.Line)
	assert.Equal(t, 0, diags[0].EndCol)
}

func TestSubtypeMismatch_Initializer(t *testing.T) {
	source := method(`        @Subtyping("Y") int b = a;`)
	assertNoDiags(t, lintSource(t, source))

	l := &Linter{
		Analyzers: []*Analyzer{AnalyzerSubtypeMismatch},
		Config:    subtype.Config{CheckInitializers: true},
	}
	diags, err := l.LintFile(context.Background(), []byte(source), "Test.java")
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Equal(t, "assignment b = a: target type = Y, value type = X", diags[0].Message)
	require.Len(t, diags[0].Notes, 2)
	assert.Contains(t, diags[0].Notes[1], "initializer")
}

func TestSubtypeMismatch_FieldScope(t *testing.T) {
	source := `class C {
    @Subtyping("Z") int f;
    void m(@Subtyping("X") int a) {
        f = a;
    }
}
`
	assertNoDiags(t, lintSource(t, source))

	l := &Linter{
		Analyzers: DefaultAnalyzers(),
		Config:    subtype.Config{Scopes: []subtype.ScopeKind{subtype.ScopeParam, subtype.ScopeLocal, subtype.ScopeField}},
	}
	diags, err := l.LintFile(context.Background(), []byte(source), "Test.java")
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assertDiagOnLine(t, diags, 4, "target type = Z, value type = X")
}

// --- unanalyzed-assignment ---

func TestUnanalyzed(t *testing.T) {
	diags := lintCheck(t, AnalyzerUnanalyzed, method(`        this.f = a;`))
	require.Len(t, diags, 1)
	assert.Equal(t, SeverityInfo, diags[0].Severity)
	assert.Equal(t, "assignment this.f = a not analyzed: target is not a plain name (field access)", diags[0].Message)
	assert.Equal(t, []string{"in C.m", "value a has type X"}, diags[0].Notes)
}

func TestUnanalyzed_Strict(t *testing.T) {
	l := &Linter{
		Analyzers: DefaultAnalyzers(),
		Config:    subtype.Config{Strict: true},
	}
	_, err := l.LintFile(context.Background(), []byte(method(`        this.f = a;`)), "Test.java")
	require.Error(t, err)
	assert.ErrorIs(t, err, subtype.ErrUnsupportedOperand)
	assert.True(t, strings.HasPrefix(err.Error(), "Test.java: Test.java:3:9: "), err.Error())
}

// --- tag-collision ---

func TestTagCollision(t *testing.T) {
	diags := lintCheck(t, AnalyzerTagCollision, method(`        { @Subtyping("A") int t; }
        { @Subtyping("B") int t; }`))
	require.Len(t, diags, 1)
	assert.Equal(t, SeverityWarning, diags[0].Severity)
	assert.Equal(t, 4, diags[0].Pos.Line)
	assert.Equal(t, 31, diags[0].Pos.Col)
	assert.Equal(t, 31, diags[0].EndCol)
	assertHasDiag(t, diags, "redeclared with tag B, replacing A")
}

func TestTagCollision_SameTag(t *testing.T) {
	assertNoDiags(t, lintSource(t, method(`        { @Subtyping("A") int t; }
        { @Subtyping("A") int t; }`)))
}

// --- ordering ---

func TestDiagnosticOrder(t *testing.T) {
	diags := lintSource(t, method(`        @Subtyping("Y") int b;
        int[] arr = new int[1];
        arr[0] = a; b = a;
        b = a;`))
	require.Len(t, diags, 3)
	assert.Equal(t, "unanalyzed-assignment", diags[1].Analyzer)
	assert.Equal(t, "subtype-mismatch", diags[0].Analyzer)
	assert.Equal(t, 5, diags[0].Pos.Line)
	assert.Equal(t, 5, diags[1].Pos.Line)
	assert.Equal(t, 6, diags[2].Pos.Line)
}

// --- errors ---

func TestLintFile_ParseError(t *testing.T) {
	l := &Linter{Analyzers: DefaultAnalyzers()}
	_, err := l.LintFile(context.Background(), []byte("class C { void m() { x = ; } }"), "Bad.java")
	require.Error(t, err)
	assert.Equal(t, `Bad.java: Bad.java:1:26: expected expression, found ";"`, err.Error())
}

func TestLintFile_MalformedAnnotation(t *testing.T) {
	l := &Linter{Analyzers: DefaultAnalyzers()}
	_, err := l.LintFile(context.Background(), []byte("class C { @Subtyping int f; }"), "Bad.java")
	assert.ErrorIs(t, err, subtype.ErrMalformedAnnotation)
}

func TestLintFile_AnalyzerError(t *testing.T) {
	broken := &Analyzer{
		Name: "broken",
		Run:  func(*Pass) error { return fmt.Errorf("boom") },
	}
	l := &Linter{Analyzers: []*Analyzer{broken}}
	_, err := l.LintFile(context.Background(), []byte("class C {}"), "C.java")
	assert.EqualError(t, err, "C.java: analyzer broken: boom")
}

func TestAnalyze_Result(t *testing.T) {
	l := &Linter{Analyzers: DefaultAnalyzers()}
	diags, res, err := l.Analyze(context.Background(), []byte(method(`        @Subtyping("Y") int b;`)), "Test.java")
	require.NoError(t, err)
	assert.Empty(t, diags)
	assert.Equal(t, map[string]subtype.Tag{"C.m.a": "X"}, res.Params.Qualified())
	require.Len(t, res.Methods, 1)
	assert.Equal(t, map[string]subtype.Tag{"b": "Y"}, res.Methods[0].Locals.Bare())
}

// --- nolint ---

func TestParseDirective(t *testing.T) {
	tests := []struct {
		comment string
		names   []string
		all     bool
		ok      bool
	}{
		{"// nolint", nil, true, true},
		{"//nolint", nil, true, true},
		{"// nolint:subtype-mismatch", []string{"subtype-mismatch"}, false, true},
		{"// nolint:subtype-mismatch, tag-collision", []string{"subtype-mismatch", "tag-collision"}, false, true},
		{"// nolint:tag-collision // legacy overloads", []string{"tag-collision"}, false, true},
		{"// nolint // generated", nil, true, true},
		{"/* nolint:unused-nolint */", []string{"unused-nolint"}, false, true},
		{"// nolint-subtype-mismatch", nil, false, false},
		{"// nolintx", nil, false, false},
		{"// nolint:", nil, false, false},
		{"// nolint reason", nil, false, false},
		{"// TODO nolint", nil, false, false},
		{"# nolint", nil, false, false},
	}
	for _, test := range tests {
		names, all, ok := parseDirective(test.comment)
		assert.Equal(t, test.ok, ok, test.comment)
		assert.Equal(t, test.all, all, test.comment)
		assert.Equal(t, test.names, names, test.comment)
	}
}

func TestNolint_SuppressAll(t *testing.T) {
	assertNoDiags(t, lintSource(t, method(`        @Subtyping("Y") int b;
        b = a; // nolint`)))
}

func TestNolint_SuppressNamed(t *testing.T) {
	assertNoDiags(t, lintSource(t, method(`        @Subtyping("Y") int b;
        b = a; // nolint:subtype-mismatch`)))
}

func TestNolint_OtherAnalyzer(t *testing.T) {
	diags := lintSource(t, method(`        @Subtyping("Y") int b;
        b = a; // nolint:tag-collision`))
	require.Len(t, diags, 2)
	assert.Equal(t, "subtype-mismatch", diags[0].Analyzer)
	assert.Equal(t, "unused-nolint", diags[1].Analyzer)
}

func TestNolint_OtherLine(t *testing.T) {
	diags := lintSource(t, method(`        @Subtyping("Y") int b; // nolint:subtype-mismatch
        b = a;`))
	assertDiagOnLine(t, diags, 4, "target type = Y")
	assertDiagOnLine(t, diags, 3, "does not suppress any diagnostic")
}

func TestNolint_BlockComment(t *testing.T) {
	assertNoDiags(t, lintSource(t, method(`        @Subtyping("Y") int b;
        b = /* nolint:subtype-mismatch */ a;`)))
}

func TestNolint_Malformed(t *testing.T) {
	diags := lintSource(t, method(`        @Subtyping("Y") int b;
        b = a; // nolint-subtype-mismatch`))
	require.Len(t, diags, 1)
	assert.Equal(t, "subtype-mismatch", diags[0].Analyzer)
}

// --- unused-nolint ---

func TestUnusedNolint_Unused(t *testing.T) {
	diags := lintSource(t, method(`        int b = 1; // nolint:subtype-mismatch`))
	require.Len(t, diags, 1)
	assertHasDiag(t, diags, "does not suppress any diagnostic")
	assert.Equal(t, "unused-nolint", diags[0].Analyzer)
	assert.Equal(t, SeverityWarning, diags[0].Severity)
	assert.Equal(t, Position{File: "Test.java", Line: 3, Col: 20}, diags[0].Pos)
}

func TestUnusedNolint_UnknownAnalyzer(t *testing.T) {
	diags := lintSource(t, method(`        int b = 1; // nolint:subtype-mismatch,bogus-check`))
	require.Len(t, diags, 1)
	assertHasDiag(t, diags, "unknown analyzer: bogus-check")
	assert.NotContains(t, diags[0].Message, "subtype-mismatch")
}

func TestUnusedNolint_SuppressAllUnused(t *testing.T) {
	diags := lintSource(t, method(`        int b = 1; // nolint`))
	require.Len(t, diags, 1)
	assertHasDiag(t, diags, "does not suppress any diagnostic")
}

func TestUnusedNolint_SelfSuppression(t *testing.T) {
	assertNoDiags(t, lintSource(t, method(`        int b = 1; // nolint:unused-nolint`)))
}

func TestUnusedNolint_PartiallyUsed(t *testing.T) {
	assertNoDiags(t, lintSource(t, method(`        @Subtyping("Y") int b;
        b = a; // nolint:subtype-mismatch,bogus-check`)))
}

func TestUnusedNolint_Disabled(t *testing.T) {
	l := &Linter{Analyzers: []*Analyzer{AnalyzerTagCollision, AnalyzerUnusedNolint}}

	// a directive for an analyzer that did not run is not stale
	diags, err := l.LintFile(context.Background(), []byte(method(`        @Subtyping("Y") int b;
        b = a; // nolint:subtype-mismatch`)), "Test.java")
	require.NoError(t, err)
	assertNoDiags(t, diags)

	diags, err = l.LintFile(context.Background(), []byte(method(`        int b = 1; // nolint`)), "Test.java")
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Equal(t, "unused-nolint", diags[0].Analyzer)
}

func TestUnusedNolint_HasNotes(t *testing.T) {
	diags := lintSource(t, method(`        int b = 1; // nolint:tag-collision`))
	require.Len(t, diags, 1)
	require.Len(t, diags[0].Notes, 2)
	assert.Contains(t, diags[0].Notes[0], "remove")
	assert.Contains(t, diags[0].Notes[1], "unused-nolint")
}

// --- selection and formatting ---

func TestSelectAnalyzers(t *testing.T) {
	all, err := SelectAnalyzers(nil)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	some, err := SelectAnalyzers([]string{"tag-collision", " subtype-mismatch"})
	require.NoError(t, err)
	require.Len(t, some, 2)
	assert.Equal(t, "subtype-mismatch", some[0].Name)
	assert.Equal(t, "tag-collision", some[1].Name)

	_, err = SelectAnalyzers([]string{"zz", "aa", "tag-collision"})
	assert.EqualError(t, err, "unknown check: aa, zz")
}

func TestAnalyzerDoc(t *testing.T) {
	doc := AnalyzerDoc()
	for _, name := range AnalyzerNames() {
		assert.Contains(t, doc, "  "+name+"\n")
	}
	assert.NotContains(t, doc, "Untagged names are never reported")
}

func sampleDiags() []Diagnostic {
	return []Diagnostic{
		{
			Pos:      Position{File: "C.java", Line: 4, Col: 9},
			EndCol:   13,
			Message:  "assignment b = a: target type = Y, value type = X",
			Analyzer: "subtype-mismatch",
			Severity: SeverityError,
			Notes:    []string{"in C.m"},
		},
		{
			Pos:      Position{File: "C.java", Line: 7},
			Message:  "nolint directive does not suppress any diagnostic",
			Analyzer: "unused-nolint",
		},
	}
}

func TestFormatText(t *testing.T) {
	var buf bytes.Buffer
	FormatText(&buf, sampleDiags())
	assert.Equal(t, `C.java:4:9: assignment b = a: target type = Y, value type = X (subtype-mismatch)
  = note: in C.m
C.java:7: nolint directive does not suppress any diagnostic (unused-nolint)
`, buf.String())
}

func TestFormatJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatJSON(&buf, sampleDiags()))
	assert.JSONEq(t, `[
		{
			"pos": {"file": "C.java", "line": 4, "col": 9},
			"end_col": 13,
			"message": "assignment b = a: target type = Y, value type = X",
			"analyzer": "subtype-mismatch",
			"severity": "error",
			"notes": ["in C.m"]
		},
		{
			"pos": {"file": "C.java", "line": 7},
			"message": "nolint directive does not suppress any diagnostic",
			"analyzer": "unused-nolint",
			"severity": "warning"
		}
	]`, buf.String())

	buf.Reset()
	require.NoError(t, FormatJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())

	var diags []Diagnostic
	require.NoError(t, json.Unmarshal([]byte(`[{"severity":"info"}]`), &diags))
	assert.Equal(t, SeverityInfo, diags[0].Severity)
	assert.Error(t, json.Unmarshal([]byte(`[{"severity":"fatal"}]`), &diags))
}

func TestFormatMsgpack(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatMsgpack(&buf, sampleDiags()))
	diags, err := DecodeMsgpack(&buf)
	require.NoError(t, err)
	require.Len(t, diags, 2)
	assert.Equal(t, sampleDiags()[0], diags[0])
	// an unset severity is written as a warning
	assert.Equal(t, SeverityWarning, diags[1].Severity)
}
