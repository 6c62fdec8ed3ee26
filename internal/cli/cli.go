// Package cli implements the doclinks command-line interface.
//
// The local and remote commands run a single discovery and print the documents
// found, one per line or as a JSON array. All commands accept --verbose (-v)
// for debug-level logging of per-document fetch failures.
package cli

import (
	"io"
	"log/slog"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// Version is reported by --version.
const Version = "0.1.0"

const defaultDepth = 2

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	out    io.Writer
}

// New creates a CLI that prints results to out and logs to logw.
func New(out, logw io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(logw, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
		out: out,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// slogger adapts the terminal logger for the discovery packages.
func (c *CLI) slogger() *slog.Logger {
	return slog.New(c.Logger)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "doclinks",
		Short:        "doclinks discovers markdown documents linked from a root document",
		Long:         `doclinks follows the links of a markdown document, on disk or on the web, and lists every markdown document reachable within a bounded number of hops.`,
		Version:      Version,
		SilenceUsage: true,
	}

	root.AddCommand(c.localCommand())
	root.AddCommand(c.remoteCommand())
	root.AddCommand(c.resolveCommand())

	return root
}
