package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/starford/seekr/internal"
	"github.com/starford/seekr/internal/models"
)

func collectionCommand() *cli.Command {
	return &cli.Command{
		Name:  "collection",
		Usage: "Manage collections",
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Register a directory as a collection",
				ArgsUsage: "NAME PATH",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "pattern",
						Usage: "Glob selecting files under PATH",
						Value: "**/*.md",
					},
				},
				Action: withApp(func(ctx context.Context, cmd *cli.Command, app *internal.App) error {
					if cmd.Args().Len() != 2 {
						return fmt.Errorf("usage: collection add NAME PATH")
					}
					col, err := app.Engine.AddCollection(ctx, cmd.Args().Get(0), cmd.Args().Get(1), cmd.String("pattern"))
					if err != nil {
						return err
					}
					fmt.Fprintf(os.Stdout, "added %s (%s, %s)\n", col.Name, col.BasePath, col.Pattern)
					return nil
				}),
			},
			{
				Name:  "list",
				Usage: "List collections with their counts",
				Action: withApp(func(ctx context.Context, _ *cli.Command, app *internal.App) error {
					cols, err := app.Engine.ListCollections(ctx)
					if err != nil {
						return err
					}
					printCollections(os.Stdout, cols)
					return nil
				}),
			},
			{
				Name:      "remove",
				Usage:     "Remove a collection and everything indexed from it",
				ArgsUsage: "NAME",
				Action: withApp(func(ctx context.Context, cmd *cli.Command, app *internal.App) error {
					if cmd.Args().Len() != 1 {
						return fmt.Errorf("usage: collection remove NAME")
					}
					name := cmd.Args().First()
					if err := app.Engine.RemoveCollection(ctx, name); err != nil {
						return err
					}
					fmt.Fprintf(os.Stdout, "removed %s\n", name)
					return nil
				}),
			},
		},
	}
}

func updateCommand() *cli.Command {
	return &cli.Command{
		Name:  "update",
		Usage: "Reindex collections from disk",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "full", Usage: "Re-chunk every file even when unchanged"},
			&cli.StringFlag{Name: "collection", Usage: "Only reindex this collection"},
		},
		Action: withApp(func(ctx context.Context, cmd *cli.Command, app *internal.App) error {
			stats, err := app.Engine.Reindex(ctx, cmd.String("collection"), cmd.Bool("full"))
			for _, s := range stats {
				fmt.Fprintf(os.Stdout, "%s: matched=%d indexed=%d skipped=%d removed=%d chunks=%d\n",
					s.Collection, s.Matched, s.Indexed, s.Skipped, s.Removed, s.Chunks)
			}
			return err
		}),
	}
}

func embedCommand() *cli.Command {
	return &cli.Command{
		Name:  "embed",
		Usage: "Compute embeddings for chunks that have none",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "force", Usage: "Discard existing embeddings first"},
		},
		Action: withApp(func(ctx context.Context, cmd *cli.Command, app *internal.App) error {
			stats, err := app.Engine.Embed(ctx, cmd.Bool("force"))
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "embedded %d chunks in %d batches (%s)\n", stats.Embedded, stats.Batches, stats.Model)
			return nil
		}),
	}
}

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Query the index",
		ArgsUsage: "QUERY",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "mode", Usage: "lexical, vector or hybrid", Value: string(models.ModeHybrid)},
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Usage: "Maximum number of results"},
			&cli.FloatFlag{Name: "min-score", Usage: "Drop results scoring below this value"},
			&cli.StringFlag{Name: "collection", Usage: "Restrict to one collection"},
			&cli.BoolFlag{Name: "json", Usage: "Print results as JSON"},
		},
		Action: withApp(func(ctx context.Context, cmd *cli.Command, app *internal.App) error {
			query := strings.Join(cmd.Args().Slice(), " ")
			results, err := app.Engine.Search(ctx, models.SearchRequest{
				Query:      query,
				Mode:       models.SearchMode(cmd.String("mode")),
				Limit:      int(cmd.Int("limit")),
				MinScore:   cmd.Float("min-score"),
				Collection: cmd.String("collection"),
			})
			if err != nil {
				return err
			}
			if cmd.Bool("json") {
				return printJSON(os.Stdout, results)
			}
			printResults(os.Stdout, results)
			return nil
		}),
	}
}

func statusCommand() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show index totals",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "Print status as JSON"},
			&cli.BoolFlag{Name: "check", Usage: "Run the store integrity check first"},
		},
		Action: withApp(func(ctx context.Context, cmd *cli.Command, app *internal.App) error {
			if cmd.Bool("check") {
				if err := app.Engine.CheckIntegrity(ctx); err != nil {
					return err
				}
				fmt.Fprintln(os.Stderr, "integrity: ok")
			}
			st, err := app.Engine.Status(ctx)
			if err != nil {
				return err
			}
			if cmd.Bool("json") {
				return printJSON(os.Stdout, st)
			}
			fmt.Fprintf(os.Stdout, "documents=%d chunks=%d embedded=%d pending=%d\n",
				st.Documents, st.Chunks, st.Embedded, st.Pending)
			printCollections(os.Stdout, st.Collections)
			return nil
		}),
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printCollections(w io.Writer, cols []models.CollectionInfo) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tDOCS\tCHUNKS\tEMBEDDED\tPATH\tPATTERN")
	for _, c := range cols {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\t%s\n", c.Name, c.Documents, c.Chunks, c.Embedded, c.BasePath, c.Pattern)
	}
	tw.Flush()
}

func printResults(w io.Writer, results []models.SearchResult) {
	if len(results) == 0 {
		fmt.Fprintln(w, "no results")
		return
	}
	for i, r := range results {
		fmt.Fprintf(w, "%2d. %.4f  %s:%d-%d", i+1, r.Score, r.Path, r.StartLine, r.EndLine)
		if r.Title != "" {
			fmt.Fprintf(w, "  %s", r.Title)
		}
		fmt.Fprintf(w, "\n    %s\n", snippet(r.Text, 160))
	}
}

// snippet collapses whitespace and cuts text to at most n runes.
func snippet(text string, n int) string {
	s := strings.Join(strings.Fields(text), " ")
	if r := []rune(s); len(r) > n {
		return string(r[:n]) + "..."
	}
	return s
}
