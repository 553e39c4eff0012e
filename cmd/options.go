// Copyright © 2024 The ELPS authors

package cmd

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Option configures an exported command factory (CheckCommand,
// TablesCommand).
type Option func(*cmdConfig)

type cmdConfig struct {
	stdin io.Reader
	v     *viper.Viper
	log   *logrus.Logger
}

// WithStdin replaces the reader used when no files are given.
func WithStdin(r io.Reader) Option {
	return func(c *cmdConfig) { c.stdin = r }
}

// WithViper injects the configuration registry that flags are bound to.
// The global viper instance is used by default.
func WithViper(v *viper.Viper) Option {
	return func(c *cmdConfig) { c.v = v }
}

// WithLogger injects the logger passed to the checker.  By default a
// logger writing to the command's stderr is created for each run.
func WithLogger(log *logrus.Logger) Option {
	return func(c *cmdConfig) { c.log = log }
}

func newCmdConfig(opts []Option) *cmdConfig {
	c := &cmdConfig{stdin: os.Stdin, v: viper.GetViper()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// logger resolves the logger for a run of cmd.
func (c *cmdConfig) logger(cmd *cobra.Command) *logrus.Logger {
	if c.log != nil {
		return c.log
	}
	return newLogger(cmd.ErrOrStderr(), c.v.GetBool("verbose"))
}

// bindFlags binds each named flag to the viper key of the same name.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet, names ...string) {
	for _, name := range names {
		if err := v.BindPFlag(name, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}
}
