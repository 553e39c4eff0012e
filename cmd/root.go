// Copyright © 2018 The ELPS authors

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "subcheck",
	Short: "subcheck: subtype tag checker for java sources",
	Long: `subcheck verifies that values only flow between variables declared with
the same @Subtyping tag.

Tags are declared on fields, method parameters and local variables:

  void transfer(@Subtyping("Raw") String input) {
      @Subtyping("Clean") String out;
      out = input;   // error: target type = Clean, value type = Raw
  }

Getting started:
  subcheck check Account.java      Check a file
  subcheck check ./...             Check every .java file below a directory
  subcheck tables Account.java     Show the collected tag tables

Configuration is read from --config, $HOME/.subcheck.yaml or .subcheck.yaml
in the working directory. Every flag may also be set with a SUBCHECK_
environment variable, e.g. SUBCHECK_STRICT=true.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	os.Exit(exitCode(rootCmd.Execute(), os.Stderr))
}

// exitError carries a process exit status out of a command.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func exitWith(code int) error {
	if code == 0 {
		return nil
	}
	return &exitError{code: code}
}

// exitCode maps the error returned by a command to a process exit status.
// Errors other than exitError are bad invocations and are printed to w.
func exitCode(err error, w io.Writer) int {
	if err == nil {
		return 0
	}
	var exit *exitError
	if errors.As(err, &exit) {
		return exit.code
	}
	fmt.Fprintln(w, "subcheck:", err) //nolint:errcheck // best-effort output to writer
	return 2
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.subcheck.yaml)")
	flags.String("color", "auto", `Control colored output: "auto", "always", or "never".`)
	flags.BoolP("verbose", "v", false, "Log collected tables and progress to stderr.")
	bindFlags(viper.GetViper(), flags, "color", "verbose")

	rootCmd.AddCommand(CheckCommand())
	rootCmd.AddCommand(TablesCommand())
	rootCmd.AddCommand(GuideCommand())
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if err := loadConfig(viper.GetViper(), cfgFile); err != nil {
		fmt.Fprintln(os.Stderr, "subcheck:", err)
		os.Exit(2)
	}
}

// loadConfig points v at the config file and environment.  A missing
// default config file is not an error.
func loadConfig(v *viper.Viper, file string) error {
	if file != "" {
		// Use config file from the flag.
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(".subcheck")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("SUBCHECK")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv() // read in environment variables that match

	err := v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if err != nil && (file != "" || !errors.As(err, &notFound)) {
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

// newLogger returns the logger shared by a command run.  Debug output is
// enabled by --verbose.
func newLogger(w io.Writer, verbose bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	log.SetLevel(logrus.InfoLevel)
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}
