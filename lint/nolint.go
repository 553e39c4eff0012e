// Copyright © 2024 The ELPS authors

package lint

import (
	"fmt"
	"sort"
	"strings"

	"github.com/luthersystems/subcheck/parser/token"
	parsec "github.com/prataprc/goparsec"
)

// A nolint directive is a comment on the line of a diagnostic:
//
//	directive   := 'nolint' [ ':' analyzers ] [ explanation ]
//	analyzers   := name { ',' name }
//	explanation := '//' /.*/
//
// Without analyzer names every diagnostic on the line is suppressed.
func newDirectiveParser() parsec.Parser {
	nolint := parsec.Atom("nolint", "NOLINT")
	colon := parsec.Atom(":", "COLON")
	comma := parsec.Atom(",", "COMMA")
	name := parsec.Token(`[A-Za-z0-9][A-Za-z0-9_-]*`, "ANALYZER")
	explanation := parsec.Token(`//.*`, "EXPLANATION")

	analyzers := parsec.Many(nil, name, comma)
	names := parsec.Maybe(nil, parsec.And(nil, colon, analyzers))
	tail := parsec.OrdChoice(nil, parsec.End(), explanation)
	return parsec.And(nil, nolint, names, tail)
}

var directiveParser = newDirectiveParser()

// parseDirective parses the text of a comment.  all reports a directive
// without analyzer names.
func parseDirective(comment string) (names []string, all bool, ok bool) {
	text := comment
	switch {
	case strings.HasPrefix(text, "//"):
		text = text[2:]
	case strings.HasPrefix(text, "/*"):
		text = strings.TrimSuffix(text[2:], "*/")
	default:
		return nil, false, false
	}
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "nolint") {
		return nil, false, false
	}
	root, _ := directiveParser(parsec.NewScanner([]byte(text)))
	if root == nil {
		return nil, false, false
	}
	names = analyzerNames(root, nil)
	return names, len(names) == 0, true
}

func analyzerNames(node parsec.ParsecNode, names []string) []string {
	switch n := node.(type) {
	case *parsec.Terminal:
		if n.Name == "ANALYZER" {
			names = append(names, n.Value)
		}
	case []parsec.ParsecNode:
		for _, child := range n {
			names = analyzerNames(child, names)
		}
	}
	return names
}

type directive struct {
	pos   *token.Location
	names []string
	all   bool
	used  bool
}

func (d *directive) covers(analyzer string) bool {
	if d.all {
		return true
	}
	for _, name := range d.names {
		if name == analyzer {
			return true
		}
	}
	return false
}

// directives maps a line to the nolint directives found on it.
type directives map[int][]*directive

func parseDirectives(comments []*token.Token) directives {
	ds := make(directives)
	for _, c := range comments {
		if c == nil || c.Source == nil {
			continue
		}
		names, all, ok := parseDirective(c.Text)
		if !ok {
			continue
		}
		ds[c.Source.Line] = append(ds[c.Source.Line], &directive{pos: c.Source, names: names, all: all})
	}
	return ds
}

// filter removes the diagnostics suppressed by a directive on their line
// and marks those directives used.
func (ds directives) filter(diags []Diagnostic) []Diagnostic {
	var kept []Diagnostic
	for _, d := range diags {
		suppressed := false
		for _, dir := range ds[d.Pos.Line] {
			if dir.covers(d.Analyzer) {
				dir.used = true
				suppressed = true
			}
		}
		if !suppressed {
			kept = append(kept, d)
		}
	}
	return kept
}

// unused reports the directives that suppressed nothing.  A directive naming
// an analyzer that did not run is only reported for unknown names.  An
// unused-nolint diagnostic is suppressed by a directive on its line that
// names unused-nolint explicitly.
func (ds directives) unused(ran []*Analyzer) []Diagnostic {
	running := make(map[string]bool)
	for _, a := range ran {
		running[a.Name] = true
	}
	known := make(map[string]bool)
	for _, name := range AnalyzerNames() {
		known[name] = true
	}

	lines := make([]int, 0, len(ds))
	for line := range ds {
		lines = append(lines, line)
	}
	sort.Ints(lines)

	var diags []Diagnostic
	for _, line := range lines {
		for _, dir := range ds[line] {
			if dir.used || (!dir.all && dir.covers(AnalyzerUnusedNolint.Name)) {
				continue
			}
			var unknown []string
			active := dir.all
			for _, name := range dir.names {
				if !known[name] {
					unknown = append(unknown, name)
				}
				if running[name] {
					active = true
				}
			}
			d := Diagnostic{
				Pos:      positionOf(dir.pos),
				Analyzer: AnalyzerUnusedNolint.Name,
				Severity: AnalyzerUnusedNolint.Severity,
				Notes: []string{
					"remove the directive if it is no longer needed",
					"to keep it, add unused-nolint to its analyzer list",
				},
			}
			switch {
			case len(unknown) > 0:
				d.Message = fmt.Sprintf("nolint directive names unknown analyzer: %s", strings.Join(unknown, ", "))
			case active:
				d.Message = "nolint directive does not suppress any diagnostic"
			default:
				continue
			}
			diags = append(diags, d)
		}
	}
	return diags
}
