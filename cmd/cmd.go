// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// newApp builds the root command with global flags and every subcommand.
func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "mediaranker",
		Usage:   "Rank albums, books & movies by upvote",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Override the configured log level (debug, info, warn, error)",
			},
		},
		Before:   r.Configure,
		Commands: r.register(),
	}
}

// setupCommand handles database setup and migration management.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Create config.toml if missing, initialize the database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:   "status",
				Usage:  "Show applied and pending migrations",
				Action: r.SetupStatus,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent migration",
				Action: r.SetupRollback,
			},
		},
	}
}

// serveCommand runs the web application.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the web server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address, overriding server.host and server.port",
			},
			&cli.BoolFlag{
				Name:  "open",
				Usage: "Open the site in a browser once listening",
			},
		},
		Action: r.Serve,
	}
}

// worksCommand handles catalog operations
func worksCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "works",
		Aliases: []string{"w"},
		Usage:   "Catalog operations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List works by category, ranked by votes",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "category",
						Usage: "Only list one category (album, book or movie)",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum works per category (0 for all)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.WorksList,
			},
			{
				Name:  "add",
				Usage: "Add a work to the catalog",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "title",
						Usage:    "Work title",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "category",
						Usage:    "album, book or movie",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "creator",
						Usage: "Artist, author or director",
					},
					&cli.IntFlag{
						Name:  "year",
						Usage: "Publication year",
					},
					&cli.StringFlag{
						Name:  "description",
						Usage: "Short description",
					},
				},
				Action: r.WorksAdd,
			},
			{
				Name:  "delete",
				Usage: "Delete a work and its votes",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Action: r.WorksDelete,
			},
			{
				Name:  "export",
				Usage: "Export the ranked catalog to a file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format (csv, markdown, txt)",
						Value:   "markdown",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (default: rankings.{ext})",
					},
					&cli.StringFlag{
						Name:  "category",
						Usage: "Only export one category",
					},
				},
				Action: r.WorksExport,
			},
		},
	}
}

// usersCommand handles user directory operations
func usersCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "users",
		Usage: "User directory operations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List users with their vote counts",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.UsersList,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for browsing the catalog.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI catalog browser",
		Action:  r.TUI,
	}
}
