package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dgallion1/doclinks/internal/markdown"
)

func (c *CLI) resolveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <base-file> <relative-path>",
		Short: "Resolve a path relative to a markdown file",
		Long: `Resolve a path the way a link inside <base-file> would be resolved:
relative to the directory containing <base-file>, with symlinks evaluated.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := markdown.ResolveRelative(args[0], args[1])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(c.out, p)
			return err
		},
	}
}
