// Command tactics is the operator tool for the Tarnished Tactics API: it
// checks connectivity, applies migrations, seeds the default records and
// drafts guides from the command line.
package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/tarnished-tactics/api/internal/service"
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		slog.Error("command failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.App {
	t := &tool{out: out}

	app := cli.NewApp()
	app.Name = "tactics"
	app.Usage = "Tarnished Tactics operator tool"
	app.Action = cli.ShowAppHelp
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Usage:   "YAML configuration file",
			EnvVars: []string{"CONFIG_FILE"},
		},
	}
	app.Before = t.load
	app.After = t.close
	app.Commands = []*cli.Command{
		{
			Action:   t.ping,
			Name:     "ping",
			Usage:    "Check the database connection",
			Category: "Database",
		},
		{
			Action:   t.migrate,
			Name:     "migrate",
			Usage:    "Apply the schema migrations",
			Category: "Database",
		},
		{
			Name:     "seed",
			Usage:    "Install the default records",
			Category: "Database",
			Action:   t.seedAll,
			Subcommands: []*cli.Command{
				{
					Action: t.seedBuild,
					Name:   "build",
					Usage:  "Install the starter preset build",
				},
				{
					Action: t.seedGuide,
					Name:   "guide",
					Usage:  "Install the basic combat guide",
				},
			},
		},
		{
			Action:    t.generateGuide,
			Name:      "generate-guide",
			Usage:     "Draft a guide for a build and print it",
			ArgsUsage: "<buildId>",
			Category:  "Guides",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "user",
					Usage: "author id stamped on the draft",
					Value: service.SeedUserID,
				},
			},
			Description: `Runs the same generation as POST /builds/{buildId}/generate-guide.
The draft is printed as JSON and not stored.`,
		},
		{
			Action:   t.llmPing,
			Name:     "llm-ping",
			Usage:    "Send a one-line prompt to the configured provider",
			Category: "Guides",
		},
	}
	return app
}
