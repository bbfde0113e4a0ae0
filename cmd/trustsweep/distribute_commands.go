package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"

	"github.com/jplaskett/trustsweep/service/batch"
	"github.com/jplaskett/trustsweep/service/xrpl"
)

func distributeCommand() *cli.Command {
	return &cli.Command{
		Name:  "distribute",
		Usage: "Send a fixed issued-currency amount from one sender to many destinations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "secret",
				Aliases:  []string{"s"},
				Usage:    "Sender account secret (env var avoids shell history)",
				EnvVars:  []string{"TRUSTSWEEP_SENDER_SECRET"},
				Required: true,
			},
			&cli.StringFlag{
				Name:     "destinations",
				Aliases:  []string{"f"},
				Usage:    "Path to a line-delimited destination list (# comments and blanks ignored)",
				Required: true,
			},
			&cli.IntFlag{
				Name:     "trustline",
				Aliases:  []string{"t"},
				Usage:    "1-based index of the trustline to send, as listed by 'lines' for the sender",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "value",
				Aliases:  []string{"v"},
				Usage:    "Amount sent to each destination (decimal, strictly positive)",
				Required: true,
			},
			&cli.DurationFlag{
				Name:    "delay",
				Usage:   "Pause after each successful submission (e.g. 2s, 500ms)",
				EnvVars: []string{"SUBMIT_DELAY"},
			},
		},
		Action: runDistribute,
	}
}

func runDistribute(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	logger := setupLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	value, err := decimal.NewFromString(c.String("value"))
	if err != nil {
		return fmt.Errorf("invalid value %q: %w", c.String("value"), err)
	}
	if !value.IsPositive() {
		return fmt.Errorf("value must be strictly positive")
	}

	sender, err := xrpl.ResolveSecret(c.String("secret"))
	if err != nil {
		return fmt.Errorf("sender secret: %w", err)
	}

	// Destinations equal to the sender are filtered here, before the loop
	// starts; the guard never has to fire mid-batch.
	destinations, err := batch.LoadDestinations(c.String("destinations"), sender.Address)
	if err != nil {
		return err
	}

	m := setupMetrics(c, logger)
	client, err := xrpl.Dial(cfg.WebsocketURL, cfg.SubmitTimeout, m, logger)
	if err != nil {
		return err
	}
	defer client.Close()
	if err := client.Ping(ctx); err != nil {
		return fmt.Errorf("ledger endpoint unreachable: %w", err)
	}

	lines, err := client.AccountLines(ctx, sender.Address)
	if err != nil {
		return err
	}
	line, err := selectTrustline(lines, c.Int("trustline"))
	if err != nil {
		return err
	}
	name := xrpl.DecodeCurrency(line.Currency)
	logger.Info("selected trustline",
		"currency", name.Display,
		"issuer", line.Account,
		"balance", line.Balance,
	)

	delay := cfg.SubmitDelay
	if c.IsSet("delay") {
		delay = c.Duration("delay")
	}

	runID := uuid.NewString()
	sinks, cleanup, err := buildSinks(ctx, cfg, logger, runMeta{
		ID:       runID,
		Mode:     string(batch.ModeDistribute),
		Issuer:   line.Account,
		Currency: line.Currency,
	})
	if err != nil {
		return err
	}
	defer cleanup()

	distributor := batch.NewDistributor(client, m, logger, sinks...)
	outcomes, runErr := distributor.Run(ctx, batch.DistributeConfig{
		RunID:    runID,
		Issuer:   line.Account,
		Currency: line.Currency,
		Value:    value,
		Delay:    delay,
	}, sender, destinations)

	if err := printOutcomes(c.Bool("json"), runID, name.Display, outcomes); err != nil {
		return err
	}
	return runErr
}
