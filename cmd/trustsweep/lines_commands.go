package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/itchyny/gojq"
	"github.com/urfave/cli/v2"

	"github.com/jplaskett/trustsweep/service/xrpl"
)

// lineView is the JSON shape of one listed trustline. Index is the 1-based
// position to pass to collect/distribute --trustline.
type lineView struct {
	Index    int    `json:"index"`
	Name     string `json:"name"`
	Currency string `json:"currency"`
	Issuer   string `json:"issuer"`
	Balance  string `json:"balance"`
}

func linesCommand() *cli.Command {
	return &cli.Command{
		Name:      "lines",
		Usage:     "List an account's trustlines with decoded currency names",
		ArgsUsage: "ADDRESS",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "filter",
				Aliases: []string{"F"},
				Usage:   "jq filter applied to each line; all filters must yield a truthy result (repeatable)",
			},
		},
		Action: runLines,
	}
}

func runLines(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("account address is required")
	}
	address := c.Args().Get(0)

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	logger := setupLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	filters, err := compileJQFilters(c.StringSlice("filter"))
	if err != nil {
		return err
	}

	client, err := xrpl.Dial(cfg.WebsocketURL, cfg.SubmitTimeout, nil, logger)
	if err != nil {
		return err
	}
	defer client.Close()

	lines, err := client.AccountLines(ctx, address)
	if err != nil {
		return err
	}

	views := make([]lineView, 0, len(lines))
	for i, line := range lines {
		name := xrpl.DecodeCurrency(line.Currency)
		view := lineView{
			Index:    i + 1,
			Name:     name.Display,
			Currency: line.Currency,
			Issuer:   line.Account,
			Balance:  line.Balance,
		}

		match, err := matchesJQFilters(filters, view)
		if err != nil {
			return err
		}
		if match {
			views = append(views, view)
		}
	}

	if c.Bool("json") {
		data, err := json.MarshalIndent(views, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	for _, v := range views {
		fmt.Printf("%3d  %-20s %-14s %s\n", v.Index, v.Name, v.Balance, v.Issuer)
	}
	return nil
}

// compileJQFilters parses and compiles each jq expression up front so a bad
// filter fails before any network activity.
func compileJQFilters(filters []string) ([]*gojq.Code, error) {
	compiled := make([]*gojq.Code, len(filters))
	for i, filter := range filters {
		query, err := gojq.Parse(filter)
		if err != nil {
			return nil, fmt.Errorf("failed to parse jq filter %q: %w", filter, err)
		}
		compiled[i], err = gojq.Compile(query)
		if err != nil {
			return nil, fmt.Errorf("failed to compile jq filter %q: %w", filter, err)
		}
	}
	return compiled, nil
}

// matchesJQFilters reports whether every filter yields a truthy first result
// for the view. No filters means everything matches.
func matchesJQFilters(filters []*gojq.Code, view lineView) (bool, error) {
	if len(filters) == 0 {
		return true, nil
	}

	// Round-trip through JSON so gojq sees plain maps.
	data, err := json.Marshal(view)
	if err != nil {
		return false, err
	}
	var input any
	if err := json.Unmarshal(data, &input); err != nil {
		return false, err
	}

	for _, code := range filters {
		iter := code.Run(input)
		v, ok := iter.Next()
		if !ok {
			return false, nil
		}
		if err, isErr := v.(error); isErr {
			return false, fmt.Errorf("jq filter error: %w", err)
		}
		if v == nil || v == false {
			return false, nil
		}
	}
	return true, nil
}
