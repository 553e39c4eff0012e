// Copyright © 2024 The ELPS authors

package cmd

import (
	"errors"
	"io"
	"os"

	"github.com/luthersystems/subcheck/diagnostic"
	"github.com/luthersystems/subcheck/lint"
	"github.com/luthersystems/subcheck/parser/token"
	"github.com/spf13/viper"
)

func colorMode(v *viper.Viper) diagnostic.ColorMode {
	mode, _ := diagnostic.ParseColorMode(v.GetString("color"))
	return mode
}

// newRenderer returns a renderer reading sources from disk, except for the
// in-memory sources given by name.
func newRenderer(v *viper.Viper, sources map[string][]byte) *diagnostic.Renderer {
	return &diagnostic.Renderer{
		Color: colorMode(v),
		SourceReader: func(name string) ([]byte, error) {
			if src, ok := sources[name]; ok {
				return src, nil
			}
			return os.ReadFile(name) //nolint:gosec // reads user-specified source files for display
		},
	}
}

// lintDiagToDiagnostic converts a lint.Diagnostic to a diagnostic.Diagnostic.
func lintDiagToDiagnostic(ld lint.Diagnostic) diagnostic.Diagnostic {
	d := diagnostic.Diagnostic{
		Severity: diagnostic.SeverityWarning,
		Code:     ld.Analyzer,
		Message:  ld.Message,
	}
	switch ld.Severity {
	case lint.SeverityError:
		d.Severity = diagnostic.SeverityError
	case lint.SeverityInfo:
		d.Severity = diagnostic.SeverityInfo
	}
	if ld.Pos.Line > 0 {
		d.Spans = append(d.Spans, diagnostic.Span{
			File:   ld.Pos.File,
			Line:   ld.Pos.Line,
			Col:    ld.Pos.Col,
			EndCol: ld.EndCol,
		})
	}
	d.Notes = append(d.Notes, ld.Notes...)
	if ld.Analyzer != lint.AnalyzerUnusedNolint.Name {
		d.Notes = append(d.Notes, "to suppress: add \"// nolint:"+ld.Analyzer+"\" as a comment on this line")
	}
	return d
}

// errorToDiagnostic converts a fatal error to a diagnostic, pointing at the
// offending source when the error carries a location.
func errorToDiagnostic(err error) diagnostic.Diagnostic {
	d := diagnostic.Diagnostic{
		Severity: diagnostic.SeverityError,
		Message:  err.Error(),
	}
	var locErr *token.LocationError
	if errors.As(err, &locErr) && locErr.Source != nil && locErr.Source.Line > 0 {
		span := diagnostic.Span{
			File: locErr.Source.File,
			Line: locErr.Source.Line,
			Col:  locErr.Source.Col,
		}
		// Prefer physical path for reading source
		if locErr.Source.Path != "" {
			span.File = locErr.Source.Path
		}
		d.Message = locErr.Err.Error()
		d.Spans = append(d.Spans, span)
	}
	return d
}

// renderLintDiagnostics renders lint diagnostics with diagnostic formatting.
func renderLintDiagnostics(w io.Writer, r *diagnostic.Renderer, diags []lint.Diagnostic) error {
	ds := make([]diagnostic.Diagnostic, 0, len(diags))
	for _, ld := range diags {
		ds = append(ds, lintDiagToDiagnostic(ld))
	}
	return r.RenderAll(w, ds)
}
