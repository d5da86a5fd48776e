package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/forward/internal/config"
	fdb "github.com/hpungsan/forward/internal/db"
	"github.com/hpungsan/forward/internal/errors"
	"github.com/hpungsan/forward/internal/item"
	"github.com/hpungsan/forward/internal/ops"
	"github.com/hpungsan/forward/internal/project"
	"github.com/hpungsan/forward/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(db *sql.DB, cfg *config.Config, d *ops.Dispatcher) *cli.App {
	app := &cli.App{
		Name:    "forward",
		Usage:   "Capture now, sort later",
		Version: Version,
		Commands: []*cli.Command{
			captureCmd(db, cfg, d),
			inboxCmd(db),
			showCmd(db),
			searchCmd(db),
			itemActionCmd(db, "confirm", "Confirm an item's category", ops.Confirm),
			categoryCmd(db),
			itemActionCmd(db, "done", "Mark an item done", ops.Complete),
			itemActionCmd(db, "archive", "Archive an item", ops.Archive),
			itemActionCmd(db, "restore", "Restore an archived item", ops.Restore),
			itemActionCmd(db, "recur", "Toggle recurrence on an item", ops.ToggleRecurrence),
			startCmd(db, d),
			stepCmd(db),
			promoteCmd(db),
			projectCmd(db),
			statsCmd(db),
			exportCmd(db, cfg),
			importCmd(db, cfg),
			apikeyCmd(db),
			serveCmd(db, cfg),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// captureCmd creates the capture command. Text comes from the
// positional arguments or, when piped, from stdin.
func captureCmd(db *sql.DB, cfg *config.Config, d *ops.Dispatcher) *cli.Command {
	return &cli.Command{
		Name:      "capture",
		Usage:     "Capture free text as items (arguments or stdin)",
		ArgsUsage: "[text]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "project", Aliases: []string{"p"}, Usage: "Project ID to link captured items to"},
			&cli.BoolFlag{Name: "offline", Usage: "Skip AI classification; items stay pending until the next online run"},
		},
		Action: func(c *cli.Context) error {
			if c.Bool("offline") {
				d.SetOnline(false)
			} else if d.Online() {
				// Pick up items left pending by earlier offline runs.
				d.ResubmitPending()
			} else {
				// The transition resubmits pending items itself.
				d.SetOnline(true)
			}

			text := strings.Join(c.Args().Slice(), " ")
			if text == "" && stdinHasData() {
				var err error
				text, err = readStdin()
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
			}
			if text == "" {
				return outputError(errors.NewInvalidRequest("nothing to capture: pass text as arguments or pipe it via stdin"))
			}

			output, err := ops.Capture(c.Context, db, cfg, d, ops.CaptureInput{
				Text:      text,
				ProjectID: c.String("project"),
			})
			if err != nil {
				return outputError(err)
			}

			// Wait for background classification so the item is settled
			// before the process exits.
			d.Flush()

			return outputJSON(output)
		},
	}
}

// inboxCmd creates the inbox command.
func inboxCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "inbox",
		Usage: "List items (fresh, alive and quiet by default)",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "status", Aliases: []string{"s"}, Usage: "Filter by status (fresh|alive|quiet|done|archived), repeatable"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: 20, Usage: "Maximum items to return"},
			&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Value: 0, Usage: "Items to skip"},
		},
		Action: func(c *cli.Context) error {
			input := ops.ListInput{
				Limit:  c.Int("limit"),
				Offset: c.Int("offset"),
			}
			for _, s := range c.StringSlice("status") {
				input.Statuses = append(input.Statuses, item.Status(s))
			}

			output, err := ops.List(db, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// showCmd creates the show command.
func showCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show a single item",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			output, err := ops.Fetch(db, ops.FetchInput{ID: c.Args().First()})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// searchCmd creates the search command.
func searchCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search items by content substring",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: 20, Usage: "Maximum items to return"},
			&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Value: 0, Usage: "Items to skip"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Search(db, ops.SearchInput{
				Query:  strings.Join(c.Args().Slice(), " "),
				Limit:  c.Int("limit"),
				Offset: c.Int("offset"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// itemActionCmd builds a command for the single-item state transitions,
// which all share the same shape: one positional ID in, one item out.
func itemActionCmd(db *sql.DB, name, usage string, action func(*sql.DB, string) (*ops.ActionOutput, error)) *cli.Command {
	return &cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			output, err := action(db, c.Args().First())
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// categoryCmd creates the category command.
func categoryCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "category",
		Usage:     "Set an item's category (counts as confirmation)",
		ArgsUsage: "<id> <task|project|spark|reminder>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 2 {
				return outputError(errors.NewInvalidRequest("usage: forward category <id> <category>"))
			}
			output, err := ops.SetCategory(db, c.Args().Get(0), item.Category(c.Args().Get(1)))
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// startCmd creates the start command, which breaks an item into a few
// tiny starter steps.
func startCmd(db *sql.DB, d *ops.Dispatcher) *cli.Command {
	return &cli.Command{
		Name:      "start",
		Usage:     "Break an item into tiny starter steps",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "max", Aliases: []string{"m"}, Usage: "Cap on the number of steps, 1-5 (default 3)"},
			&cli.BoolFlag{Name: "refresh", Aliases: []string{"r"}, Usage: "Discard cached steps and generate a fresh breakdown"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.HelpStart(c.Context, db, d, ops.HelpStartInput{
				ID:       c.Args().First(),
				MaxSteps: c.Int("max"),
				Refresh:  c.Bool("refresh"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// stepCmd creates the step command, which advances the starter-step
// cursor set by start.
func stepCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "step",
		Usage:     "Mark the current starter step done",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			output, err := ops.AdvanceStep(db, c.Args().First())
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// promoteCmd creates the promote command.
func promoteCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "promote",
		Usage:     "Turn an item into a project",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Project name (default: derived from the item)"},
			&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Usage: "Project category: idwork|life|business|learning|open"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Promote(db, ops.PromoteInput{
				ItemID:     c.Args().First(),
				Name:       c.String("name"),
				ProjectCat: project.Category(c.String("category")),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// projectCmd creates the project command group.
func projectCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "project",
		Usage: "Manage projects",
		Subcommands: []*cli.Command{
			{
				Name:      "create",
				Usage:     "Create a project",
				ArgsUsage: "<name>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "vision", Usage: "Vision text (locks after the edit window)"},
					&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Usage: "Project category: idwork|life|business|learning|open"},
					&cli.StringFlag{Name: "phase", Usage: "Starting phase on the category's track"},
					&cli.StringFlag{Name: "next-action", Usage: "Next concrete action"},
					&cli.StringFlag{Name: "notes", Usage: "Free-form markdown notes"},
				},
				Action: func(c *cli.Context) error {
					output, err := ops.CreateProject(db, ops.CreateProjectInput{
						Name:       strings.Join(c.Args().Slice(), " "),
						Vision:     c.String("vision"),
						ProjectCat: project.Category(c.String("category")),
						Phase:      c.String("phase"),
						NextAction: c.String("next-action"),
						Notes:      c.String("notes"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "show",
				Usage:     "Show a project with its linked items",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					output, err := ops.FetchProject(db, ops.FetchProjectInput{ID: c.Args().First()})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:  "list",
				Usage: "List projects",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "all", Aliases: []string{"a"}, Usage: "Include archived projects"},
				},
				Action: func(c *cli.Context) error {
					output, err := ops.ListProjects(db, ops.ListProjectsInput{
						IncludeArchived: c.Bool("all"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "update",
				Usage:     "Update project fields",
				ArgsUsage: "<id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "New name"},
					&cli.StringFlag{Name: "vision", Usage: "New vision (rejected once locked)"},
					&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Usage: "New project category"},
					&cli.StringFlag{Name: "phase", Usage: "New phase on the category's track"},
					&cli.StringFlag{Name: "next-action", Usage: "New next action"},
					&cli.StringFlag{Name: "notes", Usage: "New notes"},
				},
				Action: func(c *cli.Context) error {
					input := ops.UpdateProjectInput{ID: c.Args().First()}
					if c.IsSet("name") {
						v := c.String("name")
						input.Name = &v
					}
					if c.IsSet("vision") {
						v := c.String("vision")
						input.Vision = &v
					}
					if c.IsSet("category") {
						v := project.Category(c.String("category"))
						input.ProjectCat = &v
					}
					if c.IsSet("phase") {
						v := c.String("phase")
						input.Phase = &v
					}
					if c.IsSet("next-action") {
						v := c.String("next-action")
						input.NextAction = &v
					}
					if c.IsSet("notes") {
						v := c.String("notes")
						input.Notes = &v
					}

					output, err := ops.UpdateProject(db, input)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "archive",
				Usage:     "Archive a project",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					output, err := ops.ArchiveProject(db, c.Args().First())
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "restore",
				Usage:     "Restore an archived project",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					output, err := ops.RestoreProject(db, c.Args().First())
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "delete",
				Usage:     "Permanently delete a project",
				ArgsUsage: "<id>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "confirm", Usage: "Required; deletion cannot be undone"},
				},
				Action: func(c *cli.Context) error {
					output, err := ops.DeleteProject(db, ops.DeleteProjectInput{
						ID:      c.Args().First(),
						Confirm: c.Bool("confirm"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
		},
	}
}

// statsCmd creates the stats command.
func statsCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show counts by status and category",
		Action: func(c *cli.Context) error {
			output, err := ops.Stats(db)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// exportCmd creates the export command.
func exportCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export items and projects to a JSONL backup",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Backup file path (default: ~/.forward/exports/forward-<timestamp>.jsonl)"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Export(c.Context, db, cfg, ops.ExportInput{
				Path: c.String("path"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// importCmd creates the import command.
func importCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Import items and projects from a JSONL backup",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Required: true, Usage: "Backup file path"},
			&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Value: "merge", Usage: "Import mode: merge|replace"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Import(db, cfg, ops.ImportInput{
				Path: c.String("path"),
				Mode: ops.ImportMode(c.String("mode")),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// apikeyCmd creates the apikey command group. A key stored here is
// used when the config carries none; the config key always wins.
func apikeyCmd(database *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "apikey",
		Usage: "Manage the stored AI API key",
		Subcommands: []*cli.Command{
			{
				Name:      "set",
				Usage:     "Store an API key for AI classification",
				ArgsUsage: "<key>",
				Action: func(c *cli.Context) error {
					key := c.Args().First()
					if key == "" {
						return outputError(errors.NewInvalidRequest("usage: forward apikey set <key>"))
					}
					if err := fdb.SetSetting(database, fdb.SettingAPIKey, key); err != nil {
						return outputError(err)
					}
					return outputJSON(map[string]string{"api_key": maskKey(key)})
				},
			},
			{
				Name:  "clear",
				Usage: "Remove the stored API key",
				Action: func(c *cli.Context) error {
					if err := fdb.DeleteSetting(database, fdb.SettingAPIKey); err != nil {
						return outputError(err)
					}
					return outputJSON(map[string]string{"api_key": ""})
				},
			},
			{
				Name:  "status",
				Usage: "Show whether an API key is stored (masked)",
				Action: func(c *cli.Context) error {
					key, err := fdb.GetSetting(database, fdb.SettingAPIKey)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(map[string]string{"api_key": maskKey(key)})
				},
			},
		},
	}
}

// maskKey keeps the last four characters for recognisability.
func maskKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}

// serveCmd creates the serve command, which serves the read-only
// web viewer.
func serveCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the read-only web viewer",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Bind address"},
			&cli.IntFlag{Name: "port", Value: 8080, Usage: "Listen port"},
		},
		Action: func(c *cli.Context) error {
			srv := web.NewServer(db, cfg, Version, c.String("bind"), c.Int("port"))
			return web.Run(srv)
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
	if fErr, ok := err.(*errors.ForwardError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", fErr.Code, fErr.Message), 1)
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
