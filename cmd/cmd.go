// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/spotx/internal/formatter"
	"github.com/urfave/cli/v3"
)

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// backupCommand downloads the library and writes it to a file
func backupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "backup",
		Usage:     "Back up playlists, liked songs and albums to a file",
		ArgsUsage: "[file]",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "file",
			},
		},
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "token",
				Usage:   "Use this access token instead of authorizing in the browser",
				Sources: cli.EnvVars("SPOTIFY_TOKEN"),
			},
			&cli.StringFlag{
				Name:  "dump",
				Usage: "Comma separated collections to back up: liked, albums, playlists",
				Value: "playlists",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: " + formatter.FormatNames() + " (default: from file extension, else txt)",
			},
			&cli.StringFlag{
				Name:  "metrics-file",
				Usage: "Write fetch metrics in Prometheus text format to this file",
			},
			&cli.BoolFlag{
				Name:  "no-history",
				Usage: "Do not record this run in the history database",
			},
		},
		Action: r.Backup,
	}
}

// authCommand runs the browser authorization and prints the access token
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Authorize in the browser and print the access token",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output the token as JSON",
			},
		},
		Action: r.Auth,
	}
}

// historyCommand lists recorded backup runs
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List recent backup runs",
		Flags: []cli.Flag{
			configFlag(),
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of runs to show",
				Value: 20,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.History,
	}
}

// setupCommand creates the config file and history database
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage: "Create a config file and initialize the history database",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "reset",
				Usage: "Drop all recorded backup runs",
			},
		},
		Action: r.Setup,
	}
}
