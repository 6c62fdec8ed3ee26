package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dgallion1/doclinks/internal/discovery"
	"github.com/dgallion1/doclinks/internal/fetch"
)

func (c *CLI) localCommand() *cobra.Command {
	var (
		depth   int
		asJSON  bool
		confine string
	)

	cmd := &cobra.Command{
		Use:   "local <path>",
		Short: "Discover markdown files linked from a file on disk",
		Example: `  doclinks local README.md
  doclinks local docs/index.md --depth 3 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l := discovery.NewLocal(fetch.FileFetcher{}, c.slogger())
			l.Confine = confine

			prog := newProgress(c.Logger)
			docs, err := l.Discover(cmd.Context(), args[0], depth)
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Discovered %d documents", len(docs)))

			if asJSON {
				if docs == nil {
					docs = []discovery.LocalDocument{}
				}
				return writeJSON(c.out, docs)
			}
			rows := make([]row, 0, len(docs))
			for _, d := range docs {
				rows = append(rows, row{title: d.Title, location: d.Path})
			}
			return writeText(c.out, rows)
		},
	}

	cmd.Flags().IntVarP(&depth, "depth", "d", defaultDepth, "maximum number of link hops to follow")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print documents as a JSON array")
	cmd.Flags().StringVar(&confine, "confine", "", "only follow links to files under this directory")
	return cmd
}
