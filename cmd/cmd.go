// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand handles setup operations for configuration, database, and authentication.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Create a config.toml from the bundled template",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupDatabase,
			},
			{
				Name:    "youtube",
				Aliases: []string{"yt", "ytmusic"},
				Usage:   "Configure YouTube Music authentication from browser headers",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "curl",
						Usage: "cURL command from browser DevTools (Copy as cURL)",
					},
					&cli.StringFlag{
						Name:  "curl-file",
						Usage: "Path to .sh file containing cURL command",
					},
					&cli.StringFlag{
						Name:  "output",
						Usage: "Output path for headers file (default: ~/.tuneport/headers.json)",
					},
				},
				Action: r.SetupYouTube,
			},
		},
	}
}

// authCommand handles Spotify authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage Spotify authentication",
		Commands: []*cli.Command{
			{
				Name:  "url",
				Usage: "Print the OAuth2 authorization URL and open it in a browser",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "no-browser",
						Usage: "Print the URL without opening a browser",
					},
				},
				Action: r.AuthURL,
			},
			{
				Name:  "login",
				Usage: "Exchange an authorization code for a token and save it",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "code"},
				},
				Action: r.AuthLogin,
			},
		},
	}
}

// transferCommand handles library migration operations
func transferCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "transfer",
		Usage: "Transfer your library from YouTube Music to Spotify",
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Migrate liked songs and every playlist",
				Action: r.TransferRun,
			},
			{
				Name:   "likes",
				Usage:  "Migrate only the liked-songs collection",
				Action: r.TransferLikes,
			},
			{
				Name:  "playlist",
				Usage: "Migrate a single playlist",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Source playlist ID",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "name",
						Usage: "Destination playlist name (defaults to the source name)",
					},
				},
				Action: r.TransferPlaylist,
			},
			{
				Name:   "ui",
				Usage:  "Interactive TUI for playlist transfer",
				Action: r.TUI,
			},
		},
	}
}

// reportCommand inspects and exports persisted transfer runs
func reportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "Inspect past transfer runs",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List persisted transfer runs",
				Action: r.ReportList,
			},
			{
				Name:  "show",
				Usage: "Show the per-track outcomes of one run",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "id",
						Aliases:  []string{"run"},
						Usage:    "Run ID",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "failed-only",
						Usage: "Only show unmatched and errored tracks",
					},
				},
				Action: r.ReportShow,
			},
			{
				Name:  "export",
				Usage: "Export one run to CSV, Markdown, or JSON",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "id",
						Aliases:  []string{"run"},
						Usage:    "Run ID",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: csv, markdown, json",
						Value:   "csv",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path",
					},
				},
				Action: r.ReportExport,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive transfers.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for playlist transfer",
		Action:  r.TUI,
	}
}
