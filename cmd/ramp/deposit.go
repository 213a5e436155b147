package main

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"
)

var (
	depositIDFlag = cli.Uint64Flag{
		Name:     "id",
		Usage:    "the id of the deposit",
		Required: true,
	}
	pageFlag = cli.StringFlag{
		Name:  "page",
		Usage: "the page number, starting from 1",
	}
	pageSizeFlag = cli.StringFlag{
		Name:  "page_size",
		Usage: "the number of entries per page",
	}
)

var deposit = cli.Command{
	Name:  "deposit",
	Usage: "manage the deposits of liquidity",
	Subcommands: []*cli.Command{
		{
			Name:  "create",
			Usage: "deposit tokens offered in exchange for fiat payments",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "token",
					Usage:    "the address of the deposited token",
					Required: true,
				},
				&cli.Uint64Flag{
					Name:     "amount",
					Usage:    "the amount of tokens to deposit",
					Required: true,
				},
				&cli.StringSliceFlag{
					Name:     "rate",
					Usage:    "a conversion rate in the form CURRENCY=RATE",
					Required: true,
				},
				&cli.StringSliceFlag{
					Name:     "verifier",
					Usage:    "a payment rail accepted for the deposit",
					Required: true,
				},
			},
			Action: createDepositAction,
		},
		{
			Name:  "increase",
			Usage: "add tokens to an active deposit",
			Flags: []cli.Flag{
				&depositIDFlag,
				&cli.Uint64Flag{
					Name:     "amount",
					Usage:    "the amount of tokens to add",
					Required: true,
				},
			},
			Action: increaseDepositAction,
		},
		{
			Name:  "withdraw",
			Usage: "withdraw the unlocked tokens of a deposit and close it",
			Flags: []cli.Flag{
				&depositIDFlag,
				&cli.BoolFlag{
					Name:  "allow-pending",
					Usage: "withdraw even if some intents are still open",
				},
			},
			Action: withdrawDepositAction,
		},
		{
			Name:  "rate",
			Usage: "set the conversion rate of a deposit for a currency",
			Flags: []cli.Flag{
				&depositIDFlag,
				&cli.StringFlag{
					Name:     "currency",
					Usage:    "the fiat currency code",
					Required: true,
				},
				&cli.StringFlag{
					Name:     "rate",
					Usage:    "the fiat units paid per token unit",
					Required: true,
				},
			},
			Action: setConversionRateAction,
		},
		{
			Name:   "show",
			Usage:  "show a deposit",
			Flags:  []cli.Flag{&depositIDFlag},
			Action: getDepositAction,
		},
		{
			Name:   "liquidity",
			Usage:  "show a deposit with its available liquidity",
			Flags:  []cli.Flag{&depositIDFlag},
			Action: getLiquidityAction,
		},
		{
			Name:  "list",
			Usage: "list the deposits",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "depositor",
					Usage: "filter deposits by depositor address",
				},
				&pageFlag,
				&pageSizeFlag,
			},
			Action: listDepositsAction,
		},
	},
}

func createDepositAction(ctx *cli.Context) error {
	rates, err := parseRates(ctx.StringSlice("rate"))
	if err != nil {
		return err
	}

	client, err := getClient(ctx)
	if err != nil {
		return err
	}

	resp, err := client.post("/v1/deposits", map[string]interface{}{
		"token":     ctx.String("token"),
		"amount":    ctx.Uint64("amount"),
		"rates":     rates,
		"verifiers": ctx.StringSlice("verifier"),
	})
	if err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}

func increaseDepositAction(ctx *cli.Context) error {
	client, err := getClient(ctx)
	if err != nil {
		return err
	}

	resp, err := client.post(
		depositPath(ctx, "increase"),
		map[string]interface{}{"amount": ctx.Uint64("amount")},
	)
	if err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}

func withdrawDepositAction(ctx *cli.Context) error {
	client, err := getClient(ctx)
	if err != nil {
		return err
	}

	resp, err := client.post(
		depositPath(ctx, "withdraw"),
		map[string]interface{}{"allow_pending": ctx.Bool("allow-pending")},
	)
	if err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}

func setConversionRateAction(ctx *cli.Context) error {
	client, err := getClient(ctx)
	if err != nil {
		return err
	}

	currency := strings.ToUpper(ctx.String("currency"))
	resp, err := client.put(
		depositPath(ctx, "rates", currency),
		map[string]interface{}{"rate": ctx.String("rate")},
	)
	if err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}

func getDepositAction(ctx *cli.Context) error {
	client, err := getClient(ctx)
	if err != nil {
		return err
	}

	resp, err := client.get(depositPath(ctx), nil)
	if err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}

func getLiquidityAction(ctx *cli.Context) error {
	client, err := getClient(ctx)
	if err != nil {
		return err
	}

	resp, err := client.get(depositPath(ctx, "liquidity"), nil)
	if err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}

func listDepositsAction(ctx *cli.Context) error {
	client, err := getClient(ctx)
	if err != nil {
		return err
	}

	resp, err := client.get(
		"/v1/deposits",
		queryFromFlags(ctx, "depositor", pageFlag.Name, pageSizeFlag.Name),
	)
	if err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}

func depositPath(ctx *cli.Context, elems ...string) string {
	path := fmt.Sprintf("/v1/deposits/%d", ctx.Uint64(depositIDFlag.Name))
	for _, e := range elems {
		path += "/" + e
	}
	return path
}

// parseRates turns a list of CURRENCY=RATE pairs into the map expected by
// the daemon.
func parseRates(pairs []string) (map[string]string, error) {
	rates := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		currency, rate, ok := strings.Cut(pair, "=")
		currency = strings.ToUpper(strings.TrimSpace(currency))
		rate = strings.TrimSpace(rate)
		if !ok || currency == "" || rate == "" {
			return nil, fmt.Errorf("invalid rate %q, must be CURRENCY=RATE", pair)
		}
		if _, ok := rates[currency]; ok {
			return nil, fmt.Errorf("duplicated rate for currency %s", currency)
		}
		rates[currency] = rate
	}
	return rates, nil
}
