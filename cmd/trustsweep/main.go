package main

import (
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"
)

var (
	// Version information (set via ldflags during build)
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	app := &cli.App{
		Name:  "trustsweep",
		Usage: "Batch issued-currency mover for the XRP Ledger",
		Description: `Move a trustline balance across many ledger accounts in one pass.

collect sweeps the balance of one trustline from many source accounts into a
single destination; distribute sends a fixed amount from one sender to a list
of destinations. Both pace themselves against the shared ledger endpoint and
report a classified outcome for every participant.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Commands: []*cli.Command{
			collectCommand(),
			distributeCommand(),
			linesCommand(),
			// Audit history inspection commands
			{
				Name:  "db",
				Usage: "Outcome audit inspection commands",
				Subcommands: []*cli.Command{
					listRunsCommand(),
					listOutcomesCommand(),
				},
			},
		},
		// Global flags available to all commands
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "ws-url",
				Usage:   "XRPL websocket endpoint",
				EnvVars: []string{"XRPL_WS_URL"},
			},
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "Postgres URL for the outcome audit store",
				EnvVars: []string{"DATABASE_URL"},
			},
			&cli.StringFlag{
				Name:    "nats-url",
				Usage:   "NATS server URL for outcome event publishing",
				EnvVars: []string{"NATS_URL"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "metrics-addr",
				Usage:   "Address to serve Prometheus metrics on (disabled when empty)",
				EnvVars: []string{"METRICS_ADDR"},
			},
			&cli.BoolFlag{
				Name:    "json",
				Aliases: []string{"j"},
				Usage:   "Output in JSON format",
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
