// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func yesFlag(usage string) cli.Flag {
	return &cli.BoolFlag{
		Name:    "yes",
		Aliases: []string{"y"},
		Usage:   usage,
	}
}

// loginCommand looks a user up by name and stores the session
func loginCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Log in by user name",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "name"},
		},
		Action: r.Login,
	}
}

func logoutCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "logout",
		Usage:  "Clear the stored session",
		Action: r.Logout,
	}
}

func whoamiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "whoami",
		Usage:  "Show the logged-in user",
		Action: r.WhoAmI,
	}
}

// releasesCommand manages the logged-in user's releases
func releasesCommand(r *Runner) *cli.Command {
	releaseFields := func(required bool) []cli.Flag {
		return []cli.Flag{
			&cli.StringFlag{
				Name:     "title",
				Aliases:  []string{"t"},
				Usage:    "Release title",
				Required: required,
			},
			&cli.StringFlag{
				Name:  "type",
				Usage: "Release type (Single, EP, Album, Mixtape)",
				Value: "Single",
			},
			&cli.StringFlag{
				Name:  "date",
				Usage: "Release date (YYYY-MM-DD)",
			},
		}
	}

	return &cli.Command{
		Name:    "releases",
		Aliases: []string{"release", "rel"},
		Usage:   "Manage releases",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List your releases with task progress",
				Action: r.ReleasesList,
			},
			{
				Name:  "show",
				Usage: "Show a release and its promotion tasks",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.ReleasesShow,
			},
			{
				Name:   "create",
				Usage:  "Create a release",
				Flags:  releaseFields(true),
				Action: r.ReleasesCreate,
			},
			{
				Name:  "update",
				Usage: "Update fields of a release",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: append(releaseFields(false),
					&cli.StringFlag{
						Name:  "description",
						Usage: "Release description",
					},
					&cli.StringFlag{
						Name:  "cover",
						Usage: "Cover art URL",
					},
				),
				Action: r.ReleasesUpdate,
			},
			{
				Name:  "delete",
				Usage: "Delete a release",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags:  []cli.Flag{yesFlag("Skip confirmation")},
				Action: r.ReleasesDelete,
			},
			{
				Name:  "export",
				Usage: "Export a release's tasks (csv, markdown, text, json, yaml)",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format",
						Value:   "text",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (- for stdout)",
					},
					&cli.StringFlag{
						Name:  "dir",
						Usage: "Directory for a Markdown export with README.md",
					},
					&cli.BoolFlag{
						Name:  "cover",
						Usage: "Download the cover art next to a Markdown export",
					},
				},
				Action: r.ReleasesExport,
			},
			{
				Name:  "export-all",
				Usage: "Export every release into a directory with a manifest",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format",
						Value:   "json",
					},
					&cli.StringFlag{
						Name:  "dir",
						Usage: "Output directory (default: promo_export_{timestamp})",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent export workers",
						Value: 4,
					},
					&cli.BoolFlag{
						Name:  "cover",
						Usage: "Download cover art for Markdown exports",
					},
				},
				Action: r.ReleasesExportAll,
			},
		},
	}
}

// tasksCommand drives promotion tasks through the same optimistic board the TUI uses
func tasksCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tasks",
		Aliases: []string{"task"},
		Usage:   "Manage promotion tasks",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List visible tasks in priority order",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "release",
						Aliases: []string{"r"},
						Usage:   "Only show tasks of this release",
					},
				},
				Action: r.TasksList,
			},
			{
				Name:  "add",
				Usage: "Add a task to a release",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "description"},
				},
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:     "release",
						Aliases:  []string{"r"},
						Usage:    "Release to add the task to",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "priority",
						Aliases: []string{"p"},
						Usage:   "Priority (Urgent, High, Medium, Low or 1-4)",
						Value:   "Medium",
					},
				},
				Action: r.TasksAdd,
			},
			{
				Name:  "status",
				Usage: "Advance a task to its next status",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.TasksStatus,
			},
			{
				Name:  "priority",
				Usage: "Raise or lower a task's priority by one step",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "up",
						Usage: "Raise the priority",
					},
					&cli.BoolFlag{
						Name:  "down",
						Usage: "Lower the priority",
					},
				},
				Action: r.TasksPriority,
			},
			{
				Name:  "edit",
				Usage: "Change a task's description",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "description",
						Aliases:  []string{"d"},
						Usage:    "New description",
						Required: true,
					},
				},
				Action: r.TasksEdit,
			},
			{
				Name:  "delete",
				Usage: "Delete a task",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags:  []cli.Flag{yesFlag("Confirm the deletion")},
				Action: r.TasksDelete,
			},
		},
	}
}

// apiCommand handles direct API calls
func apiCommand(r *Runner) *cli.Command {
	pathArg := []cli.Argument{&cli.StringArg{Name: "path"}}
	dataFlag := func() cli.Flag {
		return &cli.StringFlag{
			Name:     "data",
			Aliases:  []string{"d"},
			Usage:    "JSON body to send",
			Required: true,
		}
	}

	return &cli.Command{
		Name:  "api",
		Usage: "Direct calls to the promotion API, printing raw responses",
		Commands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "Direct GET",
				Arguments: pathArg,
				Action:    r.APIGet,
			},
			{
				Name:      "post",
				Usage:     "Direct POST with JSON body",
				Arguments: pathArg,
				Flags:     []cli.Flag{dataFlag()},
				Action:    r.APIPost,
			},
			{
				Name:      "put",
				Usage:     "Direct PUT with JSON body",
				Arguments: pathArg,
				Flags:     []cli.Flag{dataFlag()},
				Action:    r.APIPut,
			},
			{
				Name:      "delete",
				Usage:     "Direct DELETE",
				Arguments: pathArg,
				Action:    r.APIDelete,
			},
		},
	}
}

// setupCommand handles setup operations for the database and config file.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:   "config",
				Usage:  "Write a config file from the built-in template",
				Action: r.SetupConfig,
			},
			{
				Name:   "rollback",
				Usage:  "Revert the most recent database migration",
				Flags:  []cli.Flag{yesFlag("Confirm the rollback")},
				Action: r.SetupRollback,
			},
		},
	}
}

// serveCommand runs the development backend
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the development API server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (defaults to server.host:server.port)",
			},
			&cli.BoolFlag{
				Name:  "seed",
				Usage: "Create the demo user with sample releases",
			},
			&cli.StringFlag{
				Name:  "token",
				Usage: "Require this bearer token (overrides server.token)",
			},
		},
		Action: r.Serve,
	}
}

// tuiCommand returns the top-level TUI command.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive release dashboard",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "start",
				Usage: "Start route (login or dashboard)",
				Value: "/",
			},
		},
		Action: r.TUI,
	}
}
