// Copyright © 2024 The ELPS authors

package cmd

import (
	"io"

	"github.com/luthersystems/subcheck/docs"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"
	"github.com/spf13/cobra"
)

// GuideCommand returns the guide command, which prints the user guide.
func GuideCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "guide",
		Short: "Print the subcheck user guide",
		Long: `Print the subcheck user guide.

The guide covers declaring tags, what is checked, suppressing diagnostics
and configuration.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			width, _ := cmd.Flags().GetInt("width")
			text := docs.Guide
			if width > 0 {
				// words longer than width are broken too
				text = wrap.String(wordwrap.String(text, width), width)
			}
			_, err := io.WriteString(cmd.OutOrStdout(), text)
			return err
		},
	}
	cmd.Flags().Int("width", 0, "Wrap the guide at this many columns (0 leaves it as written).")
	return cmd
}
