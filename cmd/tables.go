// Copyright © 2024 The ELPS authors

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/luthersystems/subcheck/lint"
	"github.com/luthersystems/subcheck/subtype"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/cobra"
)

const tableWidth = 72

// TablesCommand returns the tables command, which prints the tag tables the
// checker collects for a file.
func TablesCommand(opts ...Option) *cobra.Command {
	cfg := newCmdConfig(opts)
	cmd := &cobra.Command{
		Use:   "tables [flags] [file]",
		Short: "Print the subtype tag tables of a java source file",
		Long: `Print the subtype tag tables of a java source file.

The fields table and the parameter table cover the whole file and are keyed
by qualified name.  Each method is then listed with its own parameters and
local variables keyed by simple name.  With no file, reads from stdin.

Examples:
  subcheck tables Account.java
  subcheck tables --json Account.java`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")
			src, err := readSources(cfg, args)
			if err != nil {
				return err
			}
			l := &lint.Linter{Config: subtype.Config{Log: cfg.logger(cmd)}}
			_, res, err := l.Analyze(cmd.Context(), src[0].data, src[0].name)
			if err != nil {
				r := newRenderer(cfg.v, src.byName())
				_ = r.Render(cmd.ErrOrStderr(), errorToDiagnostic(err))
				return exitWith(2)
			}
			if asJSON {
				return writeTablesJSON(cmd.OutOrStdout(), res)
			}
			return writeTables(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().Bool("json", false, "Output the tables as JSON.")
	return cmd
}

// writeTables writes the tables of res as indented, word-wrapped text.
func writeTables(w io.Writer, res *subtype.Result) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", res.File)
	writeTable(&b, 1, "fields", res.Fields.Qualified())
	writeTable(&b, 1, "params", res.Params.Qualified())
	for _, m := range res.Methods {
		fmt.Fprintf(&b, "%s\n", indent.String(fmt.Sprintf("method %s.%s", m.Class, m.Method), 2))
		writeTable(&b, 2, "params", m.Params.Bare())
		writeTable(&b, 2, "locals", m.Locals.Bare())
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeTable(b *strings.Builder, depth int, title string, table map[string]subtype.Tag) {
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	entries := make([]string, len(keys))
	for i, k := range keys {
		entries[i] = k + ": " + string(table[k])
	}
	fmt.Fprintf(b, "%s\n", indent.String(fmt.Sprintf("%s (%d)", title, len(keys)), uint(2*depth)))
	if len(entries) == 0 {
		return
	}
	body := wordwrap.String(strings.Join(entries, ", "), tableWidth-2*(depth+1))
	fmt.Fprintf(b, "%s\n", indent.String(body, uint(2*(depth+1))))
}

type tablesJSON struct {
	File    string                 `json:"file"`
	Fields  *subtype.Table         `json:"fields"`
	Params  *subtype.Table         `json:"params"`
	Methods []subtype.MethodResult `json:"methods"`
}

func writeTablesJSON(w io.Writer, res *subtype.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	methods := res.Methods
	if methods == nil {
		methods = []subtype.MethodResult{}
	}
	return enc.Encode(tablesJSON{
		File:    res.File,
		Fields:  res.Fields,
		Params:  res.Params,
		Methods: methods,
	})
}
