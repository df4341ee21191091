package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/snipstash/snipstash/internal/entitlement"
	"github.com/snipstash/snipstash/internal/errors"
	"github.com/snipstash/snipstash/internal/export"
	"github.com/snipstash/snipstash/internal/kv"
	"github.com/snipstash/snipstash/internal/query"
	"github.com/snipstash/snipstash/internal/store"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(repo *store.Repository, kvStore kv.Store, baseDir string) *cli.App {
	engine := query.NewEngine(repo)

	app := &cli.App{
		Name:    "snipstash",
		Usage:   "Personal snippet stash",
		Version: Version,
		Commands: []*cli.Command{
			addCmd(repo),
			getCmd(engine),
			listCmd(repo, engine),
			updateCmd(repo),
			deleteCmd(repo),
			copyCmd(repo),
			favCmd(repo),
			searchCmd(engine),
			recentCmd(engine),
			categoryCmd(repo),
			trialCmd(kvStore),
			exportCmd(repo, baseDir),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// addCmd creates the add command.
func addCmd(repo *store.Repository) *cli.Command {
	return &cli.Command{
		Name:  "add",
		Usage: "Add a snippet (content from --content or piped via stdin)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Required: true, Usage: "Snippet title"},
			&cli.StringFlag{Name: "content", Aliases: []string{"c"}, Usage: "Snippet body (otherwise read from stdin)"},
			&cli.StringFlag{Name: "category", Usage: "Category id"},
			&cli.BoolFlag{Name: "fav", Usage: "Mark as favorite"},
		},
		Action: func(c *cli.Context) error {
			content := c.String("content")
			if content == "" && stdinHasData() {
				text, err := readStdin()
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
				content = text
			}

			output, err := repo.AddSnippet(c.Context, store.AddSnippetInput{
				Title:      c.String("title"),
				Content:    content,
				CategoryID: c.String("category"),
				IsFavorite: c.Bool("fav"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// getCmd creates the get command.
func getCmd(engine *query.Engine) *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Fetch a snippet by id",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("id argument is required"))
			}
			id := c.Args().First()

			s, ok := engine.GetByID(id)
			if !ok {
				return outputError(errors.NewSnippetNotFound(id))
			}

			return outputJSON(s)
		},
	}
}

// listCmd creates the list command.
func listCmd(repo *store.Repository, engine *query.Engine) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List snippets, newest first",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "category", Usage: "Only snippets in this category (use \"uncategorized\" for loose ones)"},
			&cli.BoolFlag{Name: "favorites", Aliases: []string{"f"}, Usage: "Only favorite snippets"},
		},
		Action: func(c *cli.Context) error {
			switch {
			case c.Bool("favorites"):
				return outputJSON(engine.Favorites())
			case c.String("category") != "":
				return outputJSON(engine.ByCategory(c.String("category")))
			default:
				return outputJSON(repo.Snapshot().Snippets)
			}
		},
	}
}

// updateCmd creates the update command.
func updateCmd(repo *store.Repository) *cli.Command {
	return &cli.Command{
		Name:      "update",
		Usage:     "Update fields of a snippet",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "New title"},
			&cli.StringFlag{Name: "content", Aliases: []string{"c"}, Usage: "New body"},
			&cli.StringFlag{Name: "category", Usage: "New category id (empty string clears it)"},
			&cli.BoolFlag{Name: "fav", Usage: "New favorite flag"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("id argument is required"))
			}

			input := store.UpdateSnippetInput{}
			if c.IsSet("title") {
				title := c.String("title")
				input.Title = &title
			}
			if c.IsSet("content") {
				content := c.String("content")
				input.Content = &content
			}
			if c.IsSet("category") {
				category := c.String("category")
				input.CategoryID = &category
			}
			if c.IsSet("fav") {
				fav := c.Bool("fav")
				input.IsFavorite = &fav
			}

			output, err := repo.UpdateSnippet(c.Context, c.Args().First(), input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(repo *store.Repository) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete a snippet",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("id argument is required"))
			}
			id := c.Args().First()

			if err := repo.DeleteSnippet(c.Context, id); err != nil {
				return outputError(err)
			}

			return outputJSON(map[string]any{"id": id, "deleted": true})
		},
	}
}

// copyCmd creates the copy command.
func copyCmd(repo *store.Repository) *cli.Command {
	return &cli.Command{
		Name:      "copy",
		Usage:     "Print a snippet's content and record the copy",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("id argument is required"))
			}
			id := c.Args().First()

			s, err := repo.RecordUsage(c.Context, id)
			if err != nil {
				return outputError(err)
			}
			if s == nil {
				return outputError(errors.NewSnippetNotFound(id))
			}

			// Content goes to stdout so it can be piped into pbcopy/xclip.
			fmt.Print(s.Content)
			if !strings.HasSuffix(s.Content, "\n") {
				fmt.Println()
			}
			return nil
		},
	}
}

// favCmd creates the fav command.
func favCmd(repo *store.Repository) *cli.Command {
	return &cli.Command{
		Name:      "fav",
		Usage:     "Toggle a snippet's favorite flag",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("id argument is required"))
			}

			output, err := repo.ToggleFavorite(c.Context, c.Args().First())
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// searchCmd creates the search command.
func searchCmd(engine *query.Engine) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search snippet titles and contents",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "category", Usage: "Restrict matches to this category"},
			&cli.StringFlag{Name: "sort", Aliases: []string{"s"}, Value: "relevance", Usage: "Result order: relevance|date|usage"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("query argument is required"))
			}

			output, err := engine.Search(query.SearchInput{
				Query:      c.Args().First(),
				CategoryID: c.String("category"),
				Sort:       query.SortMode(c.String("sort")),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// recentCmd creates the recent command.
func recentCmd(engine *query.Engine) *cli.Command {
	return &cli.Command{
		Name:  "recent",
		Usage: "List recently copied snippets, newest copy first",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Usage: "Maximum copy events to consider"},
		},
		Action: func(c *cli.Context) error {
			return outputJSON(engine.RecentlyUsed(c.Int("limit")))
		},
	}
}

// categoryCmd creates the category command group.
func categoryCmd(repo *store.Repository) *cli.Command {
	return &cli.Command{
		Name:  "category",
		Usage: "Manage categories",
		Subcommands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Create a category",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Required: true, Usage: "Category name"},
					&cli.StringFlag{Name: "color", Usage: "Display color, e.g. #007AFF"},
				},
				Action: func(c *cli.Context) error {
					output, err := repo.AddCategory(c.Context, store.AddCategoryInput{
						Name:  c.String("name"),
						Color: c.String("color"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "update",
				Usage:     "Update a category's name or color",
				ArgsUsage: "<id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "New name"},
					&cli.StringFlag{Name: "color", Usage: "New display color"},
				},
				Action: func(c *cli.Context) error {
					if c.NArg() < 1 {
						return outputError(errors.NewInvalidRequest("id argument is required"))
					}

					input := store.UpdateCategoryInput{}
					if c.IsSet("name") {
						name := c.String("name")
						input.Name = &name
					}
					if c.IsSet("color") {
						color := c.String("color")
						input.Color = &color
					}

					output, err := repo.UpdateCategory(c.Context, c.Args().First(), input)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete a category (fails while snippets reference it)",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					if c.NArg() < 1 {
						return outputError(errors.NewInvalidRequest("id argument is required"))
					}
					id := c.Args().First()

					if err := repo.DeleteCategory(c.Context, id); err != nil {
						return outputError(err)
					}
					return outputJSON(map[string]any{"id": id, "deleted": true})
				},
			},
			{
				Name:  "list",
				Usage: "List all categories",
				Action: func(c *cli.Context) error {
					return outputJSON(repo.Snapshot().Categories)
				},
			},
		},
	}
}

// trialCmd creates the trial command group.
func trialCmd(kvStore kv.Store) *cli.Command {
	return &cli.Command{
		Name:  "trial",
		Usage: "Manage the premium trial",
		Subcommands: []*cli.Command{
			{
				Name:  "start",
				Usage: "Start or extend the trial",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "days", Aliases: []string{"d"}, Value: 14, Usage: "Trial length in days"},
				},
				Action: func(c *cli.Context) error {
					days := c.Int("days")
					if days <= 0 {
						return outputError(errors.NewInvalidRequest("days must be positive"))
					}

					end, err := entitlement.NewTrial(kvStore).Start(c.Context, time.Duration(days)*24*time.Hour)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(map[string]any{"trialEndDate": end.Format(time.RFC3339)})
				},
			},
			{
				Name:  "status",
				Usage: "Show whether the trial is active",
				Action: func(c *cli.Context) error {
					entitled, err := entitlement.NewTrial(kvStore).Entitled(c.Context)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(map[string]any{"entitled": entitled})
				},
			},
		},
	}
}

// exportCmd creates the export command.
func exportCmd(repo *store.Repository, baseDir string) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export the stash to a JSON or HTML file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Export file path (default: <base>/exports/stash-<timestamp>.<format>)"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "json", Usage: "Export format: json|html"},
		},
		Action: func(c *cli.Context) error {
			output, err := export.Export(c.Context, repo, baseDir, export.Input{
				Path:   c.String("path"),
				Format: export.Format(c.String("format")),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if stashErr, ok := err.(*errors.StashError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", stashErr.Code, stashErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from stdin.
func readStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
