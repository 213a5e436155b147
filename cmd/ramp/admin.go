package main

import (
	"fmt"
	"net/url"

	"github.com/urfave/cli/v2"
)

var processorIDFlag = cli.StringFlag{
	Name:     "processor",
	Usage:    "the id of the processor, ie. venmo-send",
	Required: true,
}

// paramFlags maps the flags of `admin params update` to the JSON fields of
// the request.
var paramFlags = []struct {
	flag  cli.Flag
	field string
}{
	{&cli.Int64Flag{Name: "intent-expiration-period", Usage: "lifetime of an intent in seconds"}, "intent_expiration_period"},
	{&cli.Int64Flag{Name: "cooldown-period", Usage: "seconds between two settlements of a taker"}, "cooldown_period"},
	{&cli.Uint64Flag{Name: "min-deposit-amount", Usage: "minimum amount of a deposit"}, "min_deposit_amount"},
	{&cli.Uint64Flag{Name: "min-intent-amount", Usage: "minimum amount of an intent"}, "min_intent_amount"},
	{&cli.Uint64Flag{Name: "max-intent-amount", Usage: "maximum amount of an intent, 0 for no limit"}, "max_intent_amount"},
	{&cli.IntFlag{Name: "max-intents-per-deposit", Usage: "max open intents of a deposit, 0 for no limit"}, "max_intents_per_deposit"},
	{&cli.IntFlag{Name: "max-deposits-per-account", Usage: "max active deposits of an account, 0 for no limit"}, "max_deposits_per_account"},
	{&cli.UintFlag{Name: "sustainability-fee", Usage: "protocol fee in basis points"}, "sustainability_fee"},
	{&cli.StringFlag{Name: "fee-recipient", Usage: "address collecting the protocol fees"}, "fee_recipient"},
}

var admin = cli.Command{
	Name:  "admin",
	Usage: "owner only operations",
	Subcommands: []*cli.Command{
		{
			Name:   "params",
			Usage:  "show the params of the escrow",
			Action: getParamsAction,
			Subcommands: []*cli.Command{
				{
					Name:   "update",
					Usage:  "update some params of the escrow",
					Flags:  updateParamsFlags(),
					Action: updateParamsAction,
				},
			},
		},
		{
			Name:  "fund",
			Usage: "credit tokens to an address",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "to",
					Usage:    "the address to fund",
					Required: true,
				},
				&cli.StringFlag{
					Name:     "token",
					Usage:    "the address of the token",
					Required: true,
				},
				&cli.Uint64Flag{
					Name:     "amount",
					Usage:    "the amount of tokens",
					Required: true,
				},
			},
			Action: fundAction,
		},
		{
			Name:   "processors",
			Usage:  "list the processors of the enabled rails",
			Action: listProcessorsAction,
			Subcommands: []*cli.Command{
				{
					Name:  "addkeyhash",
					Usage: "accept the DKIM key hash of a mail server",
					Flags: []cli.Flag{
						&processorIDFlag,
						&cli.StringFlag{Name: "hash", Required: true},
					},
					Action: keyHashAction("POST"),
				},
				{
					Name:  "removekeyhash",
					Usage: "stop accepting the DKIM key hash of a mail server",
					Flags: []cli.Flag{
						&processorIDFlag,
						&cli.StringFlag{Name: "hash", Required: true},
					},
					Action: keyHashAction("DELETE"),
				},
				{
					Name:  "sender",
					Usage: "set the address allowed to submit the proofs of a processor",
					Flags: []cli.Flag{
						&processorIDFlag,
						&cli.StringFlag{Name: "address", Required: true},
					},
					Action: setSenderAction,
				},
				{
					Name:  "buffer",
					Usage: "set the tolerance in seconds on the timestamp of the payments",
					Flags: []cli.Flag{
						&processorIDFlag,
						&cli.Int64Flag{Name: "seconds", Required: true},
					},
					Action: setBufferAction,
				},
			},
		},
		{
			Name:   "writers",
			Usage:  "list the ids allowed to write nullifiers",
			Action: listWritersAction,
			Subcommands: []*cli.Command{
				{
					Name:   "add",
					Usage:  "allow an id to write nullifiers",
					Flags:  []cli.Flag{&cli.StringFlag{Name: "id", Required: true}},
					Action: writerAction("POST"),
				},
				{
					Name:   "remove",
					Usage:  "revoke the permission of an id to write nullifiers",
					Flags:  []cli.Flag{&cli.StringFlag{Name: "id", Required: true}},
					Action: writerAction("DELETE"),
				},
			},
		},
		{
			Name:  "webhooks",
			Usage: "list the webhooks subscribed to the events",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "topic",
					Usage: "the event type to filter hooks by",
				},
			},
			Action: listWebhooksAction,
			Subcommands: []*cli.Command{
				{
					Name:  "add",
					Usage: "add a webhook notified of some event",
					Flags: []cli.Flag{
						&cli.StringFlag{
							Name:     "topic",
							Usage:    "the event type, or * for all of them",
							Required: true,
						},
						&cli.StringFlag{
							Name:     "endpoint",
							Usage:    "the endpoint where to notify the webhook",
							Required: true,
						},
						&cli.StringFlag{
							Name:  "secret",
							Usage: "the eventual secret to authenticate requests",
						},
					},
					Action: addWebhookAction,
				},
				{
					Name:   "remove",
					Usage:  "remove a webhook",
					Flags:  []cli.Flag{&cli.StringFlag{Name: "id", Required: true}},
					Action: removeWebhookAction,
				},
			},
		},
	},
}

func updateParamsFlags() []cli.Flag {
	flags := make([]cli.Flag, 0, len(paramFlags))
	for _, f := range paramFlags {
		flags = append(flags, f.flag)
	}
	return flags
}

func getParamsAction(ctx *cli.Context) error {
	client, err := getClient(ctx)
	if err != nil {
		return err
	}

	resp, err := client.get("/v1/admin/params", nil)
	if err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}

func updateParamsAction(ctx *cli.Context) error {
	req := map[string]interface{}{}
	for _, f := range paramFlags {
		name := f.flag.Names()[0]
		if ctx.IsSet(name) {
			req[f.field] = ctx.Value(name)
		}
	}
	if len(req) <= 0 {
		return fmt.Errorf("no param to update")
	}

	client, err := getClient(ctx)
	if err != nil {
		return err
	}

	resp, err := client.put("/v1/admin/params", req)
	if err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}

func fundAction(ctx *cli.Context) error {
	client, err := getClient(ctx)
	if err != nil {
		return err
	}

	resp, err := client.post("/v1/admin/fund", map[string]interface{}{
		"to":     ctx.String("to"),
		"token":  ctx.String("token"),
		"amount": ctx.Uint64("amount"),
	})
	if err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}

func listProcessorsAction(ctx *cli.Context) error {
	client, err := getClient(ctx)
	if err != nil {
		return err
	}

	resp, err := client.get("/v1/admin/processors", nil)
	if err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}

func keyHashAction(method string) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		client, err := getClient(ctx)
		if err != nil {
			return err
		}

		path := processorPath(ctx, "keyhashes", ctx.String("hash"))
		if _, err := client.do(method, path, nil, nil); err != nil {
			return err
		}

		fmt.Println("key hash has been updated")
		return nil
	}
}

func setSenderAction(ctx *cli.Context) error {
	client, err := getClient(ctx)
	if err != nil {
		return err
	}

	if _, err := client.put(
		processorPath(ctx, "sender"),
		map[string]interface{}{"sender": ctx.String("address")},
	); err != nil {
		return err
	}

	fmt.Println("sender address has been set")
	return nil
}

func setBufferAction(ctx *cli.Context) error {
	client, err := getClient(ctx)
	if err != nil {
		return err
	}

	if _, err := client.put(
		processorPath(ctx, "buffer"),
		map[string]interface{}{"buffer": ctx.Int64("seconds")},
	); err != nil {
		return err
	}

	fmt.Println("timestamp buffer has been set")
	return nil
}

func listWritersAction(ctx *cli.Context) error {
	client, err := getClient(ctx)
	if err != nil {
		return err
	}

	resp, err := client.get("/v1/admin/nullifier-writers", nil)
	if err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}

func writerAction(method string) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		client, err := getClient(ctx)
		if err != nil {
			return err
		}

		path := "/v1/admin/nullifier-writers/" + url.PathEscape(ctx.String("id"))
		if _, err := client.do(method, path, nil, nil); err != nil {
			return err
		}

		fmt.Println("nullifier writers have been updated")
		return nil
	}
}

func listWebhooksAction(ctx *cli.Context) error {
	client, err := getClient(ctx)
	if err != nil {
		return err
	}

	resp, err := client.get("/v1/admin/webhooks", queryFromFlags(ctx, "topic"))
	if err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}

func addWebhookAction(ctx *cli.Context) error {
	client, err := getClient(ctx)
	if err != nil {
		return err
	}

	resp, err := client.post("/v1/admin/webhooks", map[string]interface{}{
		"topic":    ctx.String("topic"),
		"endpoint": ctx.String("endpoint"),
		"secret":   ctx.String("secret"),
	})
	if err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}

func removeWebhookAction(ctx *cli.Context) error {
	client, err := getClient(ctx)
	if err != nil {
		return err
	}

	if _, err := client.delete(
		"/v1/admin/webhooks/" + url.PathEscape(ctx.String("id")),
	); err != nil {
		return err
	}

	fmt.Println("webhook has been removed")
	return nil
}

func processorPath(ctx *cli.Context, elems ...string) string {
	path := "/v1/admin/processors/" + url.PathEscape(ctx.String(processorIDFlag.Name))
	for _, e := range elems {
		path += "/" + url.PathEscape(e)
	}
	return path
}
