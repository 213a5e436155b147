package main

import (
	"github.com/urfave/cli/v2"
)

var info = cli.Command{
	Name:   "info",
	Usage:  "get info about the daemon and the enabled payment rails",
	Action: infoAction,
	Subcommands: []*cli.Command{
		{
			Name:  "balances",
			Usage: "show the token balances of an address",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "address",
					Usage:    "the address to show the balances of",
					Required: true,
				},
			},
			Action: balancesAction,
		},
	},
}

var events = cli.Command{
	Name:  "events",
	Usage: "list the events emitted by the escrow",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "type",
			Usage: "filter events by type, ie. INTENT_FULFILLED",
		},
		&cli.StringFlag{
			Name:  "deposit_id",
			Usage: "filter events by deposit",
		},
		&cli.StringFlag{
			Name:  "intent_id",
			Usage: "filter events by intent",
		},
		&cli.StringFlag{
			Name:  "after",
			Usage: "list only events with greater sequence number",
		},
		&cli.StringFlag{
			Name:  "limit",
			Usage: "max number of events to list",
		},
	},
	Action: eventsAction,
}

func infoAction(ctx *cli.Context) error {
	client, err := getClient(ctx)
	if err != nil {
		return err
	}

	resp, err := client.get("/v1/info", nil)
	if err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}

func balancesAction(ctx *cli.Context) error {
	client, err := getClient(ctx)
	if err != nil {
		return err
	}

	resp, err := client.get("/v1/balances/"+ctx.String("address"), nil)
	if err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}

func eventsAction(ctx *cli.Context) error {
	client, err := getClient(ctx)
	if err != nil {
		return err
	}

	resp, err := client.get("/v1/events", queryFromFlags(
		ctx, "type", "deposit_id", "intent_id", "after", "limit",
	))
	if err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}
