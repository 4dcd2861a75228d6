// submodule cmd contains command definitions
package main

import (
	"strings"

	"github.com/desertthunder/bookx/internal/extract"
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

// setupCommand handles setup operations for the local database and configuration.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize the local database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
			{
				Name:   "config",
				Usage:  "Write a config.toml with default settings",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupConfig,
			},
		},
	}
}

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage authentication",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Sign in to the bookshelf API and save the token locally",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "username",
						Aliases:  []string{"u"},
						Usage:    "Account username",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "password",
						Aliases: []string{"p"},
						Usage:   "Account password (defaults to $BOOKX_PASSWORD)",
						Sources: cli.EnvVars("BOOKX_PASSWORD"),
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "logout",
				Usage:  "Forget the saved token and user",
				Action: r.AuthLogout,
			},
			{
				Name:   "status",
				Usage:  "Show the signed-in user and token expiry",
				Action: r.AuthStatus,
			},
		},
	}
}

// bookCommand handles catalog lookups
func bookCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "book",
		Usage: "Inspect books",
		Commands: []*cli.Command{
			{
				Name:      "show",
				Usage:     "Show a book and your shelf record for it",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.BookShow,
			},
			{
				Name:      "content",
				Usage:     "Paginate a book's text and summarize the result",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     []cli.Flag{pageSizeFlag()},
				Action:    r.BookContent,
			},
		},
	}
}

// shelfCommand lists the caller's shelf
func shelfCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "shelf",
		Usage: "Your bookshelf",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List books on your shelf",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "page",
						Usage: "Result page, starting at 0",
					},
					&cli.IntFlag{
						Name:  "size",
						Usage: "Books per result page",
						Value: 20,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.ShelfList,
			},
			{
				Name:  "export",
				Usage: "Export every book on your shelf",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "text, markdown or csv (bookmarks)",
						Value:   "text",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory (defaults to shelf_export_{timestamp})",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of concurrent writers",
						Value: 3,
					},
					pageSizeFlag(),
				},
				Action: r.ShelfExport,
			},
		},
	}
}

func pageSizeFlag() cli.Flag {
	return &cli.IntFlag{
		Name:  "page-size",
		Usage: "Characters per page (defaults to reader.page_size)",
	}
}

// readCommand opens the reader
func readCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "read",
		Usage:     "Read a book in the terminal",
		Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "page",
				Usage: "Start at this page instead of the saved position",
			},
			pageSizeFlag(),
		},
		Action: r.Read,
		Commands: []*cli.Command{
			{
				Name:  "page",
				Usage: "Print one page and save it as your position",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
					&cli.StringArg{Name: "page"},
				},
				Flags:  []cli.Flag{pageSizeFlag()},
				Action: r.ReadPage,
			},
		},
	}
}

// bookmarksCommand manages local bookmarks
func bookmarksCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "bookmarks",
		Aliases: []string{"bm"},
		Usage:   "Manage bookmarks stored on this device",
		Commands: []*cli.Command{
			{
				Name:      "list",
				Usage:     "List bookmarked pages of a book",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.BookmarksList,
			},
			{
				Name:  "toggle",
				Usage: "Add or remove a bookmark",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
					&cli.StringArg{Name: "page"},
				},
				Action: r.BookmarksToggle,
			},
		},
	}
}

// prefsCommand manages reader preferences
func prefsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "prefs",
		Aliases: []string{"preferences"},
		Usage:   "Reader font size and theme",
		Commands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show current preferences",
				Action: r.PrefsShow,
			},
			{
				Name:  "set",
				Usage: "Change preferences",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "font-size",
						Usage: "Font size in pixels (14-32)",
					},
					&cli.StringFlag{
						Name:  "theme",
						Usage: "light, sepia or dark",
					},
				},
				Action: r.PrefsSet,
			},
		},
	}
}

// assistCommand runs one assistant action
func assistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "assist",
		Usage:     "Explain, translate or summarize a passage",
		ArgsUsage: "<explain|translate|summary> <text...>",
		Action:    r.Assist,
	}
}

// uploadCommand attaches text to a shelf record
func uploadCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:        "upload",
		Usage:       "Upload a book's text to your shelf record",
		Description: "Supported formats: " + strings.Join(extract.SupportedFormats(), ", ") + "; anything else is read as plain text.",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "record"},
			&cli.StringArg{Name: "file"},
		},
		Action: r.Upload,
	}
}

// exportCommand writes a paginated book to disk
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Export a paginated book with its bookmarks",
		Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "text, markdown or csv (bookmarks)",
				Value:   "text",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file, directory (markdown) or base path (csv)",
			},
			pageSizeFlag(),
		},
		Action: r.Export,
	}
}

// apiCommand handles direct API calls
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct calls to the bookshelf API as the signed-in user",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct GET, prints the response",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.APIGet,
			},
			{
				Name:  "post",
				Usage: "Direct POST with JSON body",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "JSON body to send",
						Required: true,
					},
				},
				Action: r.APIPost,
			},
			{
				Name:  "put",
				Usage: "Direct PUT with JSON body",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "JSON body to send",
						Required: true,
					},
				},
				Action: r.APIPut,
			},
			{
				Name:  "patch",
				Usage: "Direct PATCH with JSON body",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "JSON body to send",
						Required: true,
					},
				},
				Action: r.APIPatch,
			},
			{
				Name:  "delete",
				Usage: "Direct DELETE, prints the response if any",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.APIDelete,
			},
		},
	}
}
