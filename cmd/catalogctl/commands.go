package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cartwise/backend/internal/app"
	"github.com/cartwise/backend/internal/infrastructure/catalog"
	"github.com/cartwise/backend/internal/usecase"
)

func (c *cli) writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (c *cli) newSearchCmd() *cobra.Command {
	var (
		session     string
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "search [query...]",
		Short: "Run a shopper query and print the chat response",
		Long: `Search parses the query, applies the session's filters and prints the
formatted response. With --interactive every line read from stdin is a new
turn in the same session, so filters accumulate the way they do in chat.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			backend, err := app.New(ctx, c.cfg, c.logger)
			if err != nil {
				return err
			}
			defer backend.Close()

			out := cmd.OutOrStdout()
			if !interactive {
				return c.runSearch(ctx, out, backend.Search, session, strings.Join(args, " "))
			}

			if session == "" {
				session = "catalogctl"
			}
			scanner := bufio.NewScanner(cmd.InOrStdin())
			for scanner.Scan() {
				line := strings.TrimSpace(scanner.Text())
				switch line {
				case "":
					continue
				case "/clear":
					if err := backend.Search.ClearFilters(ctx, session); err != nil {
						return err
					}
					c.ui(out).Success("Filters cleared.")
					continue
				}
				if err := c.runSearch(ctx, out, backend.Search, session, line); err != nil {
					return err
				}
			}
			return scanner.Err()
		},
	}

	cmd.Flags().StringVar(&session, "session", "", "session id that keeps filters between turns")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "read one query per line from stdin")
	return cmd
}

func (c *cli) runSearch(ctx context.Context, out io.Writer, search *usecase.SearchService, session, query string) error {
	result, err := search.Search(ctx, session, query)
	if err != nil {
		return err
	}
	if c.outputJSON {
		return c.writeJSON(out, result)
	}
	fmt.Fprintln(out, search.FormatResponse(result))
	fmt.Fprintln(out)
	return nil
}

func (c *cli) newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print catalog statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := app.New(cmd.Context(), c.cfg, c.logger)
			if err != nil {
				return err
			}
			defer backend.Close()

			stats := backend.Search.Stats(cmd.Context())
			out := cmd.OutOrStdout()
			if c.outputJSON {
				return c.writeJSON(out, stats)
			}

			u := c.ui(out)
			u.Heading("Catalog")
			u.Row("products", fmt.Sprintf("%d (skipped %d)", stats.Total, stats.Skipped))
			u.Row("on sale", stats.OnSale)
			u.Row("in stock", stats.InStock)
			u.Heading("Categories")
			for _, name := range sortedKeys(stats.Categories) {
				u.Row(name, stats.Categories[name])
			}
			u.Heading("Price buckets")
			for _, bucket := range usecase.PriceBuckets {
				u.Row(bucket, stats.PriceBuckets[bucket])
			}
			return nil
		},
	}
}

func (c *cli) newClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify [message...]",
		Short: "Show how a chat message would be routed",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			classifier := usecase.NewIntentClassifier(nil)
			result := classifier.Classify(strings.Join(args, " "))

			out := cmd.OutOrStdout()
			if c.outputJSON {
				return c.writeJSON(out, result)
			}
			fmt.Fprintf(out, "intent=%s topic=%s confidence=%.2f\n", result.Intent, result.Topic, result.Confidence)
			return nil
		},
	}
}

func (c *cli) newImportCmd() *cobra.Command {
	var (
		from   string
		driver string
		dsn    string
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a JSON or YAML catalog file into a SQL database",
		RunE: func(cmd *cobra.Command, args []string) error {
			if from == "" || dsn == "" {
				return fmt.Errorf("--from and --db are required")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
			defer cancel()

			raws, err := catalog.NewFileSource(from).Load(ctx)
			if err != nil {
				return err
			}

			store, err := catalog.OpenSQLStore(ctx, driver, dsn)
			if err != nil {
				return err
			}
			defer store.Close()

			written, err := store.Upsert(ctx, raws)
			if err != nil {
				return err
			}
			c.logger.Info().Int("read", len(raws)).Int("written", written).Str("driver", driver).Msg("catalog imported")

			c.ui(cmd.OutOrStdout()).Success("Imported %d of %d products", written, len(raws))
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "catalog file to read (.json, .yaml)")
	cmd.Flags().StringVar(&driver, "driver", catalog.DriverSQLite, "database driver (sqlite3 or postgres)")
	cmd.Flags().StringVar(&dsn, "db", "", "database file or connection string")
	return cmd
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
