// Copyright © 2024 The ELPS authors

package lint

import (
	"fmt"
	"sort"
	"strings"

	"github.com/luthersystems/subcheck/subtype"
)

// AnalyzerSubtypeMismatch reports assignments between names declared with
// different subtype tags.
var AnalyzerSubtypeMismatch = &Analyzer{
	Name:     "subtype-mismatch",
	Severity: SeverityError,
	Doc:      "Report assignments whose target and value carry different @Subtyping tags.\n\nA value declared with one tag may only flow into a variable declared with the same tag. Targets and values are resolved through the configured scopes, parameters before locals by default. Untagged names are never reported.",
	Run: func(pass *Pass) error {
		for _, f := range findings(pass, subtype.Mismatch) {
			notes := []string{fmt.Sprintf("in %s", methodOf(f))}
			if f.Synthetic {
				notes = append(notes, "the declaration initializer is checked as an assignment")
			}
			pass.ReportFinding(f, fmt.Sprintf("assignment %s: %s", f.Assign, f.Reason), notes...)
		}
		return nil
	},
}

// AnalyzerUnanalyzed reports assignments the checker could not decide
// because an operand is not a plain name.
var AnalyzerUnanalyzed = &Analyzer{
	Name:     "unanalyzed-assignment",
	Severity: SeverityInfo,
	Doc:      "Report assignments involving a tagged name whose other operand is not a plain name.\n\nField accesses, array elements, method calls and literals carry no tag, so the assignment can hide a mismatch. Run with --strict to make these fatal.",
	Run: func(pass *Pass) error {
		for _, f := range findings(pass, subtype.Unanalyzed) {
			notes := []string{fmt.Sprintf("in %s", methodOf(f))}
			switch {
			case f.TargetTag != "":
				notes = append(notes, fmt.Sprintf("target %s has type %s", f.Target, f.TargetTag))
			case f.ValueTag != "":
				notes = append(notes, fmt.Sprintf("value %s has type %s", f.Value, f.ValueTag))
			}
			pass.ReportFinding(f, fmt.Sprintf("assignment %s not analyzed: %s", f.Assign, f.Reason), notes...)
		}
		return nil
	},
}

// AnalyzerTagCollision reports a declaration that changes the tag recorded
// for a key already declared in the same table.
var AnalyzerTagCollision = &Analyzer{
	Name:     "tag-collision",
	Severity: SeverityWarning,
	Doc:      "Report redeclarations that replace a name's @Subtyping tag.\n\nTables are keyed by class, method and name. Sibling blocks declaring the same local, or overloads sharing a parameter name, collapse to one key and the later tag wins.",
	Run: func(pass *Pass) error {
		for _, f := range findings(pass, subtype.Redeclared) {
			pass.ReportFinding(f, f.Reason, "the later declaration's tag is used for every occurrence of the name")
		}
		return nil
	},
}

// AnalyzerUnusedNolint reports nolint directives that suppress nothing.
// It runs after every other analyzer and is handled by the Linter itself.
var AnalyzerUnusedNolint = &Analyzer{
	Name:     "unused-nolint",
	Severity: SeverityWarning,
	Doc:      "Report nolint directives that do not suppress any diagnostic.\n\nStale directives hide future findings on their line. Directives naming unknown analyzers are reported too.",
}

func findings(pass *Pass, kind subtype.FindingKind) []subtype.Finding {
	if pass.Result == nil {
		return nil
	}
	var out []subtype.Finding
	for _, f := range pass.Result.Findings {
		if f.Kind == kind {
			out = append(out, f)
		}
	}
	return out
}

func methodOf(f subtype.Finding) string {
	if f.Class == "" {
		return f.Method
	}
	return f.Class + "." + f.Method
}

// DefaultAnalyzers returns the built-in set of lint checks.
func DefaultAnalyzers() []*Analyzer {
	return []*Analyzer{
		AnalyzerSubtypeMismatch,
		AnalyzerUnanalyzed,
		AnalyzerTagCollision,
		AnalyzerUnusedNolint,
	}
}

// AnalyzerNames returns the names of all default analyzers.
func AnalyzerNames() []string {
	var names []string
	for _, a := range DefaultAnalyzers() {
		names = append(names, a.Name)
	}
	return names
}

// AnalyzerDoc returns a formatted summary of every default analyzer.
func AnalyzerDoc() string {
	var b strings.Builder
	for _, a := range DefaultAnalyzers() {
		fmt.Fprintf(&b, "  %s\n", a.Name)
		lines := strings.Split(a.Doc, "\n")
		fmt.Fprintf(&b, "    %s\n\n", lines[0])
	}
	return b.String()
}

// SelectAnalyzers returns the default analyzers named in names, in default
// order.  An empty list selects all of them.
func SelectAnalyzers(names []string) ([]*Analyzer, error) {
	if len(names) == 0 {
		return DefaultAnalyzers(), nil
	}
	selected := make(map[string]bool)
	for _, name := range names {
		selected[strings.TrimSpace(name)] = true
	}
	var out []*Analyzer
	for _, a := range DefaultAnalyzers() {
		if selected[a.Name] {
			out = append(out, a)
			delete(selected, a.Name)
		}
	}
	if len(selected) > 0 {
		unknown := make([]string, 0, len(selected))
		for name := range selected {
			unknown = append(unknown, name)
		}
		sort.Strings(unknown)
		return nil, fmt.Errorf("unknown check: %s", strings.Join(unknown, ", "))
	}
	return out, nil
}
