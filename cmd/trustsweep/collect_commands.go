package main

import (
	"encoding/json"
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

func collectCommand() *cli.Command {
	return &cli.Command{
		Name:  "collect",
		Usage: "Sweep a trustline balance from many source accounts into one destination",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "secrets",
				Aliases:  []string{"f"},
				Usage:    "Path to a line-delimited secret list (# comments and blanks ignored)",
				Required: true,
			},
			&cli.IntFlag{
				Name:     "trustline",
				Aliases:  []string{"t"},
				Usage:    "1-based index of the trustline to sweep, as listed by 'lines' for the first account",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "retain",
				Aliases: []string{"r"},
				Value:   "0",
				Usage:   "Balance each source account keeps (decimal)",
			},
			&cli.StringFlag{
				Name:     "destination",
				Aliases:  []string{"d"},
				Usage:    "Destination address that receives every sweep",
				Required: true,
			},
			&cli.DurationFlag{
				Name:    "delay",
				Usage:   "Pause after each successful submission (e.g. 2s, 500ms)",
				EnvVars: []string{"SUBMIT_DELAY"},
			},
		},
		Action: runCollect,
	}
}

func runCollect(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	logger := setupLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Configuration errors fail fast, before any network activity.
	secrets, err := batch.LoadSecrets(c.String("secrets"))
	if err != nil {
		return err
	}
	retain, err := decimal.NewFromString(c.String("retain"))
	if err != nil {
		return fmt.Errorf("invalid retain value %q: %w", c.String("retain"), err)
	}
	if retain.IsNegative() {
		return fmt.Errorf("retain value cannot be negative")
	}
	destination := c.String("destination")

	m := setupMetrics(c, logger)
	client, err := xrpl.Dial(cfg.WebsocketURL, cfg.SubmitTimeout, m, logger)
	if err != nil {
		return err
	}
	defer client.Close()
	if err := client.Ping(ctx); err != nil {
		return fmt.Errorf("ledger endpoint unreachable: %w", err)
	}

	// The trustline is selected once, from the first participant's lines,
	// and the same (issuer, raw currency) pair is swept for everyone.
	first, err := xrpl.ResolveSecret(secrets[0])
	if err != nil {
		return fmt.Errorf("first secret must resolve to select a trustline: %w", err)
	}
	lines, err := client.AccountLines(ctx, first.Address)
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
		Mode:     string(batch.ModeCollect),
		Issuer:   line.Account,
		Currency: line.Currency,
	})
	if err != nil {
		return err
	}
	defer cleanup()

	collector := batch.NewCollector(client, m, logger, sinks...)
	outcomes, runErr := collector.Run(ctx, batch.CollectConfig{
		RunID:       runID,
		Issuer:      line.Account,
		Currency:    line.Currency,
		Retain:      retain,
		Destination: destination,
		Delay:       delay,
	}, secrets)

	if err := printOutcomes(c.Bool("json"), runID, name.Display, outcomes); err != nil {
		return err
	}
	return runErr
}

// outcomeView is the JSON shape of one reported outcome.
type outcomeView struct {
	Source              string `json:"source"`
	Destination         string `json:"destination"`
	Amount              string `json:"amount,omitempty"`
	Status              string `json:"status"`
	SkipReason          string `json:"skip_reason,omitempty"`
	EngineResult        string `json:"engine_result,omitempty"`
	EngineResultMessage string `json:"engine_result_message,omitempty"`
	DestinationBalance  string `json:"destination_balance,omitempty"`
}

// printOutcomes writes the run report to stdout: JSON when requested,
// otherwise one line per participant plus a summary.
func printOutcomes(jsonOutput bool, runID, currency string, outcomes []batch.Outcome) error {
	views := make([]outcomeView, 0, len(outcomes))
	counts := map[batch.Status]int{}
	for _, o := range outcomes {
		counts[o.Status]++
		v := outcomeView{
			Source:              o.Source,
			Destination:         o.Destination,
			Status:              string(o.Status),
			SkipReason:          string(o.SkipReason),
			EngineResult:        o.EngineResult,
			EngineResultMessage: o.EngineResultMessage,
		}
		if !o.Amount.IsZero() {
			v.Amount = o.Amount.String()
		}
		if o.DestinationBalance != nil {
			v.DestinationBalance = *o.DestinationBalance
		}
		views = append(views, v)
	}

	if jsonOutput {
		report := map[string]any{
			"run_id":   runID,
			"currency": currency,
			"outcomes": views,
		}
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	for _, v := range views {
		switch batch.Status(v.Status) {
		case batch.StatusSucceeded:
			if v.DestinationBalance != "" {
				fmt.Printf("success: %s -> %s | %s %s | new balance: %s\n",
					v.Source, v.Destination, v.Amount, currency, v.DestinationBalance)
			} else {
				fmt.Printf("success: %s -> %s | %s %s\n", v.Source, v.Destination, v.Amount, currency)
			}
		case batch.StatusSkipped:
			fmt.Printf("skip: %s | %s\n", v.Source, v.SkipReason)
		case batch.StatusFailed:
			fmt.Printf("error: %s -> %s | %s: %s\n",
				v.Source, v.Destination, v.EngineResult, v.EngineResultMessage)
		}
	}
	fmt.Printf("run %s: %d succeeded, %d failed, %d skipped (of %d)\n",
		runID,
		counts[batch.StatusSucceeded],
		counts[batch.StatusFailed],
		counts[batch.StatusSkipped],
		len(outcomes),
	)
	return nil
}
