// Package main provides catalogctl, a command line tool for searching and
// managing the product catalog without running the HTTP server.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/cartwise/backend/config"
	"github.com/cartwise/backend/internal/observability"
)

// cli holds state shared by subcommands.
type cli struct {
	catalogPath string
	outputJSON  bool
	verbose     bool
	noColor     bool

	cfg    *config.Config
	logger *observability.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "catalogctl",
		Short: "Search and manage the product catalog",
		Long: `catalogctl runs the product search engine against the configured catalog.

Use this tool to:
- Try shopper queries and see the formatted chat response
- Inspect catalog statistics
- Check how a chat message would be routed
- Import a JSON or YAML catalog into a SQL database

Configuration comes from config.yaml and CARTWISE_* environment variables.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadEnvFile(); err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if c.catalogPath != "" {
				cfg.Catalog.Source = "file"
				cfg.Catalog.Path = c.catalogPath
			}
			// The CLI is a single process, so sessions never need Redis.
			cfg.Session.Store = "memory"
			c.cfg = cfg

			level := "warn"
			if c.verbose {
				level = "debug"
			}
			c.logger = observability.NewLogger(observability.LogConfig{
				Level:       level,
				Format:      "console",
				Output:      cmd.ErrOrStderr(),
				ServiceName: "catalogctl",
			})
			return nil
		},
	}

	root.PersistentFlags().StringVar(&c.catalogPath, "catalog", "", "catalog file to load (overrides configured source)")
	root.PersistentFlags().BoolVar(&c.outputJSON, "json", false, "output in JSON format")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().BoolVar(&c.noColor, "no-color", false, "disable colored output")

	root.AddCommand(c.newSearchCmd())
	root.AddCommand(c.newStatsCmd())
	root.AddCommand(c.newClassifyCmd())
	root.AddCommand(c.newImportCmd())

	return root
}

func (c *cli) ui(out io.Writer) *ui {
	return newUI(out, c.noColor)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
