// Copyright © 2024 The ELPS authors

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/luthersystems/subcheck/lint"
	"github.com/luthersystems/subcheck/subtype"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const stdinName = "<stdin>"

// CheckCommand returns the check command.  Options allow embedders and tests
// to supply stdin, configuration and logging.
func CheckCommand(opts ...Option) *cobra.Command {
	cfg := newCmdConfig(opts)
	cmd := &cobra.Command{
		Use:   "check [flags] [files...]",
		Short: "Check java source files for subtype tag violations",
		Long: `Check java source files for subtype tag violations.

Every assignment between two names is checked: when both names were declared
with a @Subtyping tag, the tags must be equal.  Names are resolved through
the scopes given by --scopes, method parameters before local variables by
default.  Fields are only consulted when the field scope is listed.

With no files, reads from stdin.  A file argument ending in "/..." checks
every .java file below that directory.  Files are checked in parallel and
reported in argument order.

Exit codes:
  0  No problems found
  1  One or more problems were reported
  2  Bad invocation, unreadable or unparsable file, or a fatal check error

To suppress a specific diagnostic, add a comment on the same line:
  out = in; // nolint:subtype-mismatch

To suppress all checks on a line:
  out = in; // nolint

Available checks (use --checks to select specific ones):
` + lint.AnalyzerDoc() + `
Examples:
  subcheck check Account.java                        # Check a single file
  subcheck check ./...                               # Check a source tree
  subcheck check --format=json Account.java          # Output diagnostics as JSON
  subcheck check --checks=subtype-mismatch ./...     # Run only specific checks
  subcheck check --scopes=param,local,field ./...    # Also resolve fields
  subcheck check --exclude='generated' ./...         # Exclude a directory
  cat Account.java | subcheck check                  # Check stdin`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, cfg, args)
		},
	}

	flags := cmd.Flags()
	flags.String("format", "text", `Output format: "text", "json" or "msgpack".`)
	flags.StringSlice("checks", nil, "Comma-separated list of checks to run (default: all).")
	flags.Bool("list", false, "List available checks and exit.")
	flags.StringArray("exclude", nil, "Glob pattern for files to exclude (may be repeated).")
	flags.StringSlice("scopes", nil, `Name resolution order (default "param,local").`)
	flags.Bool("check-initializers", false, "Check declaration initializers as assignments.")
	flags.Bool("strict", false, "Fail on assignments whose operands are not plain names.")
	flags.Bool("inventory", false, "Print the collected tag tables of each file to stderr.")
	flags.IntP("jobs", "j", 0, "Number of files checked in parallel (default GOMAXPROCS).")
	bindFlags(cfg.v, flags, "format", "scopes", "check-initializers", "strict", "jobs")
	return cmd
}

// checkRun holds the resolved settings of one invocation.
type checkRun struct {
	linter    *lint.Linter
	format    string
	inventory bool
	jobs      int
}

func newCheckRun(cmd *cobra.Command, cfg *cmdConfig) (*checkRun, error) {
	flags := cmd.Flags()
	checks, _ := flags.GetStringSlice("checks")
	analyzers, err := lint.SelectAnalyzers(checks)
	if err != nil {
		return nil, err
	}
	scopes, err := subtype.ParseScopes(splitList(cfg.v.GetStringSlice("scopes")))
	if err != nil {
		return nil, err
	}
	format := cfg.v.GetString("format")
	switch format {
	case "", "text":
		format = "text"
	case "json", "msgpack":
	default:
		return nil, fmt.Errorf("unknown format: %q", format)
	}
	jobs := cfg.v.GetInt("jobs")
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	inventory, _ := flags.GetBool("inventory")
	return &checkRun{
		linter: &lint.Linter{
			Analyzers: analyzers,
			Config: subtype.Config{
				Scopes:            scopes,
				CheckInitializers: cfg.v.GetBool("check-initializers"),
				Strict:            cfg.v.GetBool("strict"),
				Log:               cfg.logger(cmd),
			},
		},
		format:    format,
		inventory: inventory,
		jobs:      jobs,
	}, nil
}

func runCheck(cmd *cobra.Command, cfg *cmdConfig, args []string) error {
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	if list, _ := cmd.Flags().GetBool("list"); list {
		for _, name := range lint.AnalyzerNames() {
			fmt.Fprintln(stdout, name) //nolint:errcheck // best-effort output to writer
		}
		return nil
	}

	run, err := newCheckRun(cmd, cfg)
	if err != nil {
		fmt.Fprintln(stderr, "subcheck check:", err) //nolint:errcheck // best-effort output to writer
		return exitWith(2)
	}
	excludes, _ := cmd.Flags().GetStringArray("exclude")
	if len(args) > 0 {
		args, err = expandArgs(args, excludes)
		if err != nil {
			fmt.Fprintln(stderr, "subcheck check:", err) //nolint:errcheck // best-effort output to writer
			return exitWith(2)
		}
		if len(args) == 0 {
			fmt.Fprintln(stderr, "subcheck check: no .java files to check") //nolint:errcheck // best-effort output to writer
			return exitWith(2)
		}
	}
	srcs, err := readSources(cfg, args)
	if err != nil {
		fmt.Fprintln(stderr, "subcheck check:", err) //nolint:errcheck // best-effort output to writer
		return exitWith(2)
	}
	renderer := newRenderer(cfg.v, srcs.byName())

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	results, err := run.checkAll(ctx, srcs)
	if err != nil {
		_ = renderer.Render(stderr, errorToDiagnostic(err))
		return exitWith(2)
	}

	var all []lint.Diagnostic
	for _, r := range results {
		if run.inventory {
			if err := writeTables(stderr, r.result); err != nil {
				return err
			}
		}
		all = append(all, r.diags...)
	}

	switch run.format {
	case "json":
		err = lint.FormatJSON(stdout, all)
	case "msgpack":
		err = lint.FormatMsgpack(stdout, all)
	default:
		err = renderLintDiagnostics(stderr, renderer, all)
	}
	if err != nil {
		return err
	}
	if len(all) > 0 {
		return exitWith(1)
	}
	return nil
}

// splitList splits comma separated elements, as found in environment
// variables, and drops empty ones.
func splitList(list []string) []string {
	var out []string
	for _, elem := range list {
		for _, s := range strings.Split(elem, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

type fileResult struct {
	diags  []lint.Diagnostic
	result *subtype.Result
}

// checkAll checks each source on its own goroutine, at most run.jobs at a
// time.  Results are returned in the order of srcs.  The first error
// cancels the remaining files.
func (run *checkRun) checkAll(ctx context.Context, srcs sources) ([]fileResult, error) {
	results := make([]fileResult, len(srcs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(run.jobs, len(srcs)))
	for i, src := range srcs {
		i, src := i, src
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			diags, res, err := run.linter.Analyze(gctx, src.data, src.name)
			if err != nil {
				return err
			}
			results[i] = fileResult{diags: diags, result: res}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

type source struct {
	name string
	data []byte
}

type sources []source

func (s sources) byName() map[string][]byte {
	m := make(map[string][]byte, len(s))
	for _, src := range s {
		m[src.name] = src.data
	}
	return m
}

// readSources reads the named files, or stdin when there are none.
func readSources(cfg *cmdConfig, paths []string) (sources, error) {
	if len(paths) == 0 {
		data, err := io.ReadAll(cfg.stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return sources{{name: stdinName, data: data}}, nil
	}
	srcs := make(sources, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path) //nolint:gosec // CLI tool reads user-specified files
		if err != nil {
			return nil, err
		}
		srcs = append(srcs, source{name: path, data: data})
	}
	return srcs, nil
}
