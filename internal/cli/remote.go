package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/doclinks/internal/discovery"
	"github.com/dgallion1/doclinks/internal/fetch"
)

func (c *CLI) remoteCommand() *cobra.Command {
	var (
		depth     int
		asJSON    bool
		timeout   time.Duration
		userAgent string
	)

	cmd := &cobra.Command{
		Use:   "remote <url>",
		Short: "Discover markdown documents linked from a URL",
		Long: `Discover markdown documents linked from a URL.

A GitHub repository URL (https://github.com/<owner>/<repo>) is resolved to the
README of its main or master branch.`,
		Example: `  doclinks remote https://github.com/yuin/goldmark
  doclinks remote https://example.com/docs/index.md --depth 1 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := fetch.NewHTTPFetcher(fetch.HTTPOptions{
				Timeout:   timeout,
				UserAgent: userAgent,
			})
			defer f.Close()
			r := discovery.NewRemote(f, c.slogger())

			prog := newProgress(c.Logger)
			res := <-r.DiscoverAsync(cmd.Context(), args[0], depth)
			if res.Err != nil {
				return res.Err
			}
			prog.done(fmt.Sprintf("Discovered %d documents", len(res.Documents)))

			docs := res.Documents
			if asJSON {
				if docs == nil {
					docs = []discovery.RemoteDocument{}
				}
				return writeJSON(c.out, docs)
			}
			rows := make([]row, 0, len(docs))
			for _, d := range docs {
				rows = append(rows, row{title: d.Title, location: d.URL})
			}
			return writeText(c.out, rows)
		},
	}

	cmd.Flags().IntVarP(&depth, "depth", "d", defaultDepth, "maximum number of link hops to follow")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print documents as a JSON array")
	cmd.Flags().DurationVar(&timeout, "timeout", fetch.DefaultTimeout, "per-request timeout")
	cmd.Flags().StringVar(&userAgent, "user-agent", fetch.DefaultUserAgent, "User-Agent header sent with every request")
	return cmd
}
