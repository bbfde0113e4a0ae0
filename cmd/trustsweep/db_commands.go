package main

import (
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/urfave/cli/v2"

	"github.com/jplaskett/trustsweep/service/db"
)

// openStore connects to the audit database named by --database-url.
func openStore(c *cli.Context) (*db.Store, func(), error) {
	url := c.String("database-url")
	if url == "" {
		return nil, nil, fmt.Errorf("database-url is required (flag or DATABASE_URL)")
	}
	pool, err := pgxpool.New(c.Context, url)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(c.Context); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}
	return db.NewStore(pool), pool.Close, nil
}

func listRunsCommand() *cli.Command {
	return &cli.Command{
		Name:  "list-runs",
		Usage: "List recorded batch runs, newest first",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Value: 20,
				Usage: "Maximum number of runs to show",
			},
		},
		Action: func(c *cli.Context) error {
			store, closeStore, err := openStore(c)
			if err != nil {
				return err
			}
			defer closeStore()

			runs, err := store.ListRuns(c.Context, int32(c.Int("limit")))
			if err != nil {
				return err
			}

			if c.Bool("json") {
				data, err := json.MarshalIndent(runs, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(data))
				return nil
			}

			for _, r := range runs {
				fmt.Printf("%s  %-10s %s/%s  %s\n",
					r.ID, r.Mode, r.Issuer, r.Currency,
					r.StartedAt.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}
}

func listOutcomesCommand() *cli.Command {
	return &cli.Command{
		Name:      "list-outcomes",
		Usage:     "List the outcomes of one batch run in submission order",
		ArgsUsage: "RUN_ID",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Value: 500,
				Usage: "Maximum number of outcomes to show",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("run ID is required")
			}
			runID := c.Args().Get(0)

			store, closeStore, err := openStore(c)
			if err != nil {
				return err
			}
			defer closeStore()

			outcomes, err := store.ListOutcomes(c.Context, runID, int32(c.Int("limit")))
			if err != nil {
				return err
			}

			if c.Bool("json") {
				data, err := json.MarshalIndent(outcomes, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(data))
				return nil
			}

			for _, o := range outcomes {
				detail := ""
				switch o.Status {
				case "skipped":
					if o.SkipReason != nil {
						detail = *o.SkipReason
					}
				case "failed":
					if o.EngineResult != nil {
						detail = *o.EngineResult
					}
				}
				amount := o.Amount
				if d, err := o.AmountDecimal(); err == nil {
					amount = d.String()
				}
				fmt.Printf("%-10s %s -> %s  %s  %s\n",
					o.Status, o.Source, o.Destination, amount, detail)
			}

			counts, err := store.CountOutcomesByStatus(c.Context, runID)
			if err != nil {
				return err
			}
			fmt.Printf("totals: %d succeeded, %d failed, %d skipped\n",
				counts["succeeded"], counts["failed"], counts["skipped"])
			return nil
		},
	}
}
