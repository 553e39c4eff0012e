// Copyright © 2024 The ELPS authors

// Package lint reports subtype tag violations in java source files.
//
// The linter is modeled after go vet: each check is an independent Analyzer
// that receives a parsed file along with the result of the subtype checker
// and reports diagnostics.  The framework handles parsing, running the
// checker once per file, collecting results, nolint suppression, and
// formatting output.
package lint

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/luthersystems/subcheck/ast"
	"github.com/luthersystems/subcheck/parser"
	"github.com/luthersystems/subcheck/parser/token"
	"github.com/luthersystems/subcheck/subtype"
	"github.com/vmihailenco/msgpack/v5"
)

// Severity indicates the severity level of a lint diagnostic.
type Severity int

const (
	severityUnset Severity = iota // unexported zero sentinel for default detection
	SeverityError
	SeverityWarning
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return "unknown"
	}
}

func parseSeverity(str string) (Severity, error) {
	switch str {
	case "error":
		return SeverityError, nil
	case "warning":
		return SeverityWarning, nil
	case "info":
		return SeverityInfo, nil
	}
	return severityUnset, fmt.Errorf("unknown severity: %q", str)
}

func (s Severity) text() string {
	if s == severityUnset {
		return "warning"
	}
	return s.String()
}

// MarshalJSON serializes the severity as a JSON string.
// An unset severity (zero value) is marshaled as "warning".
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.text())
}

// UnmarshalJSON deserializes a severity from a JSON string.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	sev, err := parseSeverity(str)
	if err != nil {
		return err
	}
	*s = sev
	return nil
}

// EncodeMsgpack serializes the severity as a msgpack string.
func (s Severity) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.EncodeString(s.text())
}

// DecodeMsgpack deserializes a severity from a msgpack string.
func (s *Severity) DecodeMsgpack(dec *msgpack.Decoder) error {
	str, err := dec.DecodeString()
	if err != nil {
		return err
	}
	sev, err := parseSeverity(str)
	if err != nil {
		return err
	}
	*s = sev
	return nil
}

// Analyzer defines a single lint check.
type Analyzer struct {
	// Name is a short identifier for this check (e.g. "subtype-mismatch").
	Name string

	// Doc is a human-readable description. The first line is a short summary.
	Doc string

	// Severity is the default severity for diagnostics from this analyzer.
	Severity Severity

	// Run executes the check. It should call pass.Report() for each finding.
	Run func(pass *Pass) error
}

// Pass provides context to a running analyzer.
type Pass struct {
	// Analyzer is the currently running check.
	Analyzer *Analyzer

	// Filename is the source file being analyzed.
	Filename string

	// File is the parsed source file.
	File *ast.File

	// Result is the outcome of the subtype checker, shared by every
	// analyzer of the file.
	Result *subtype.Result

	// diagnostics collects reported findings.
	diagnostics []Diagnostic
}

// Report records a diagnostic finding.
func (p *Pass) Report(d Diagnostic) {
	d.Analyzer = p.Analyzer.Name
	if d.Severity == severityUnset {
		d.Severity = p.Analyzer.Severity
	}
	p.diagnostics = append(p.diagnostics, d)
}

// ReportWithNotes records a diagnostic with additional hint text.
func (p *Pass) ReportWithNotes(d Diagnostic, notes ...string) {
	d.Notes = append(d.Notes, notes...)
	p.Report(d)
}

// Reportf is a convenience for reporting a diagnostic at a position.
func (p *Pass) Reportf(source *token.Location, format string, args ...interface{}) {
	p.Report(Diagnostic{
		Pos:     positionOf(source),
		Message: fmt.Sprintf(format, args...),
	})
}

// ReportFinding reports a checker finding.  The underlined region runs to
// the end of the finding when it ends on the line it starts.
func (p *Pass) ReportFinding(f subtype.Finding, message string, notes ...string) {
	d := Diagnostic{
		Pos:     positionOf(f.Pos),
		EndCol:  endColumn(p.File, f.Pos, f.End),
		Message: message,
	}
	p.ReportWithNotes(d, notes...)
}

func positionOf(source *token.Location) Position {
	if source == nil {
		return Position{}
	}
	return Position{File: source.File, Line: source.Line, Col: source.Col}
}

// endColumn returns the 1-based column of the last byte before end, or 0
// when the region spans lines or cannot be located.
func endColumn(f *ast.File, start *token.Location, end int) int {
	if f == nil || start == nil || start.Col == 0 || end <= start.Pos || end > len(f.Source) {
		return 0
	}
	for _, b := range f.Source[start.Pos:end] {
		if b == '\n' {
			return 0
		}
	}
	return start.Col + (end - start.Pos) - 1
}

// Diagnostic is a single reported problem.
type Diagnostic struct {
	// Pos is the source location of the problem.
	Pos Position `json:"pos"`

	// EndCol is the 1-based column where the problem ends on Pos.Line, or 0
	// when unknown.
	EndCol int `json:"end_col,omitempty"`

	// Message is a human-readable description of the problem.
	Message string `json:"message"`

	// Analyzer is the name of the check that found this problem.
	Analyzer string `json:"analyzer"`

	// Severity is the severity level of the diagnostic.
	Severity Severity `json:"severity"`

	// Notes are optional hint text lines for the user.
	Notes []string `json:"notes,omitempty"`
}

// Position identifies a location in source code.
type Position struct {
	File string `json:"file"`
	Line int    `json:"line"`
	Col  int    `json:"col,omitempty"`
}

// String returns the position in file:line format.
func (p Position) String() string {
	if p.Line == 0 {
		return p.File
	}
	if p.Col > 0 {
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
	}
	return fmt.Sprintf("%s:%d", p.File, p.Line)
}

// String returns the diagnostic in go vet style: file:line: message (analyzer)
// with optional note lines appended.
func (d Diagnostic) String() string {
	s := fmt.Sprintf("%s: %s (%s)", d.Pos, d.Message, d.Analyzer)
	for _, n := range d.Notes {
		s += "\n  = note: " + n
	}
	return s
}

// Linter runs a set of analyzers over source files.
type Linter struct {
	Analyzers []*Analyzer

	// Config is passed to the subtype checker.
	Config subtype.Config
}

// LintFile analyzes a single source file and returns all diagnostics.
func (l *Linter) LintFile(ctx context.Context, source []byte, filename string) ([]Diagnostic, error) {
	diags, _, err := l.Analyze(ctx, source, filename)
	return diags, err
}

// Analyze parses and checks a source file, runs every analyzer over the
// result and returns the diagnostics along with the checker's result.
// Errors are prefixed with filename.
func (l *Linter) Analyze(ctx context.Context, source []byte, filename string) ([]Diagnostic, *subtype.Result, error) {
	f, err := parser.Parse(filename, source)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", filename, err)
	}
	res, err := subtype.Run(ctx, f, l.Config)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", filename, err)
	}

	var all []Diagnostic
	for _, analyzer := range l.Analyzers {
		if analyzer.Run == nil {
			continue
		}
		pass := &Pass{
			Analyzer: analyzer,
			Filename: filename,
			File:     f,
			Result:   res,
		}
		if err := analyzer.Run(pass); err != nil {
			return nil, nil, fmt.Errorf("%s: analyzer %s: %w", filename, analyzer.Name, err)
		}
		all = append(all, pass.diagnostics...)
	}

	directives := parseDirectives(f.Comments)
	all = directives.filter(all)
	if l.enabled(AnalyzerUnusedNolint.Name) {
		all = append(all, directives.unused(l.Analyzers)...)
	}

	for i := range all {
		if all[i].Pos.File == "" {
			all[i].Pos.File = filename
		}
	}
	// Sort by file, then line.  Within a line diagnostics keep the order
	// the analyzers reported them in.
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Pos.File != all[j].Pos.File {
			return all[i].Pos.File < all[j].Pos.File
		}
		return all[i].Pos.Line < all[j].Pos.Line
	})

	return all, res, nil
}

func (l *Linter) enabled(name string) bool {
	for _, a := range l.Analyzers {
		if a.Name == name {
			return true
		}
	}
	return false
}

// FormatText writes diagnostics in go vet text format.
func FormatText(w io.Writer, diags []Diagnostic) {
	for _, d := range diags {
		fmt.Fprintln(w, d.String()) //nolint:errcheck // best-effort output to writer
	}
}

// FormatJSON writes diagnostics as JSON.
func FormatJSON(w io.Writer, diags []Diagnostic) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if diags == nil {
		diags = []Diagnostic{}
	}
	return enc.Encode(diags)
}

// FormatMsgpack writes diagnostics as a msgpack array.  Field names match
// the JSON encoding.
func FormatMsgpack(w io.Writer, diags []Diagnostic) error {
	enc := msgpack.NewEncoder(w)
	enc.SetCustomStructTag("json")
	if diags == nil {
		diags = []Diagnostic{}
	}
	return enc.Encode(diags)
}

// DecodeMsgpack reads diagnostics written by FormatMsgpack.
func DecodeMsgpack(r io.Reader) ([]Diagnostic, error) {
	dec := msgpack.NewDecoder(r)
	dec.SetCustomStructTag("json")
	var diags []Diagnostic
	if err := dec.Decode(&diags); err != nil {
		return nil, err
	}
	return diags, nil
}
