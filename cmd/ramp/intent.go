package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

var (
	intentIDFlag = cli.StringFlag{
		Name:     "id",
		Usage:    "the hex encoded id of the intent",
		Required: true,
	}
	proofFileFlag = cli.StringFlag{
		Name:     "proof",
		Usage:    "path to the JSON file of the proof, with the optional body_hash proof",
		Required: true,
	}
)

var intent = cli.Command{
	Name:  "intent",
	Usage: "manage the intents to buy tokens off a deposit",
	Subcommands: []*cli.Command{
		{
			Name:  "signal",
			Usage: "reserve tokens of a deposit before paying in fiat",
			Flags: []cli.Flag{
				&cli.Uint64Flag{
					Name:     "deposit",
					Usage:    "the id of the deposit",
					Required: true,
				},
				&cli.Uint64Flag{
					Name:     "amount",
					Usage:    "the amount of tokens to reserve",
					Required: true,
				},
				&cli.StringFlag{
					Name:     "verifier",
					Usage:    "the payment rail used to pay",
					Required: true,
				},
				&cli.StringFlag{
					Name:  "recipient",
					Usage: "the address receiving the tokens, defaults to the caller",
				},
			},
			Action: signalIntentAction,
		},
		{
			Name:   "cancel",
			Usage:  "cancel an open intent",
			Flags:  []cli.Flag{&intentIDFlag},
			Action: intentCommandAction("cancel"),
		},
		{
			Name:  "prune",
			Usage: "prune an expired intent, or all of them if no id is given",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "id",
					Usage: "the hex encoded id of the intent",
				},
			},
			Action: pruneIntentAction,
		},
		{
			Name:   "fulfill",
			Usage:  "settle an intent with the proof of the fiat payment",
			Flags:  []cli.Flag{&intentIDFlag, &proofFileFlag},
			Action: fulfillIntentAction,
		},
		{
			Name:   "release",
			Usage:  "settle an intent without proof, as its depositor",
			Flags:  []cli.Flag{&intentIDFlag},
			Action: intentCommandAction("release"),
		},
		{
			Name:   "show",
			Usage:  "show an intent",
			Flags:  []cli.Flag{&intentIDFlag},
			Action: getIntentAction,
		},
		{
			Name:  "list",
			Usage: "list the intents",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "deposit_id",
					Usage: "filter intents by deposit",
				},
				&cli.StringFlag{
					Name:  "taker",
					Usage: "filter intents by taker address",
				},
				&cli.BoolFlag{
					Name:  "expired",
					Usage: "list only the open intents already expired",
				},
				&pageFlag,
				&pageSizeFlag,
			},
			Action: listIntentsAction,
		},
	},
}

func signalIntentAction(ctx *cli.Context) error {
	client, err := getClient(ctx)
	if err != nil {
		return err
	}

	resp, err := client.post("/v1/intents", map[string]interface{}{
		"deposit_id": ctx.Uint64("deposit"),
		"amount":     ctx.Uint64("amount"),
		"verifier":   ctx.String("verifier"),
		"recipient":  ctx.String("recipient"),
	})
	if err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}

func intentCommandAction(command string) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		client, err := getClient(ctx)
		if err != nil {
			return err
		}

		resp, err := client.post(intentPath(ctx.String("id"), command), nil)
		if err != nil {
			return err
		}

		printRespJSON(resp)
		return nil
	}
}

func pruneIntentAction(ctx *cli.Context) error {
	if ctx.String("id") != "" {
		return intentCommandAction("prune")(ctx)
	}

	client, err := getClient(ctx)
	if err != nil {
		return err
	}

	resp, err := client.post("/v1/intents/prune", nil)
	if err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}

func fulfillIntentAction(ctx *cli.Context) error {
	proof, err := readProofFile(ctx.String(proofFileFlag.Name))
	if err != nil {
		return err
	}

	client, err := getClient(ctx)
	if err != nil {
		return err
	}

	resp, err := client.post(
		intentPath(ctx.String("id"), "fulfill"),
		map[string]interface{}{"proof": proof},
	)
	if err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}

func getIntentAction(ctx *cli.Context) error {
	client, err := getClient(ctx)
	if err != nil {
		return err
	}

	resp, err := client.get(intentPath(ctx.String("id")), nil)
	if err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}

func listIntentsAction(ctx *cli.Context) error {
	client, err := getClient(ctx)
	if err != nil {
		return err
	}

	query := queryFromFlags(
		ctx, "deposit_id", "taker", pageFlag.Name, pageSizeFlag.Name,
	)
	if ctx.Bool("expired") {
		query.Set("expired", "true")
	}

	resp, err := client.get("/v1/intents", query)
	if err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}

func intentPath(id string, elems ...string) string {
	path := "/v1/intents/" + id
	for _, e := range elems {
		path += "/" + e
	}
	return path
}

// readProofFile returns the content of a proof file, as produced by the
// prover, making sure it's valid JSON.
func readProofFile(path string) (json.RawMessage, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read proof file: %w", err)
	}
	if !json.Valid(buf) {
		return nil, fmt.Errorf("proof file %s is not valid JSON", path)
	}
	return json.RawMessage(buf), nil
}
