package main

import (
	"net/url"

	"github.com/urfave/cli/v2"
)

var idHashFlag = cli.StringFlag{
	Name:     "id_hash",
	Usage:    "the hex encoded id hash of the counterparty account",
	Required: true,
}

var account = cli.Command{
	Name:  "account",
	Usage: "manage the registered accounts",
	Subcommands: []*cli.Command{
		{
			Name:  "register",
			Usage: "register the caller with the proof of a past payment",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "verifier",
					Usage:    "the payment rail of the proof",
					Required: true,
				},
				&proofFileFlag,
			},
			Action: registerAction,
		},
		{
			Name:  "show",
			Usage: "show the account of an address, or the one bound to an id hash",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "address",
					Usage: "the address of the account",
				},
				&cli.StringFlag{
					Name:  "id_hash",
					Usage: "the id hash of the account",
				},
			},
			Action: getAccountAction,
		},
		{
			Name:   "deny",
			Usage:  "deny an account from signaling intents on your deposits",
			Flags:  []cli.Flag{&idHashFlag},
			Action: updateListAction("POST", "denylist"),
		},
		{
			Name:   "undeny",
			Usage:  "remove an account from your denylist",
			Flags:  []cli.Flag{&idHashFlag},
			Action: updateListAction("DELETE", "denylist"),
		},
		{
			Name:   "allow",
			Usage:  "add an account to your allowlist",
			Flags:  []cli.Flag{&idHashFlag},
			Action: updateListAction("POST", "allowlist"),
		},
		{
			Name:   "disallow",
			Usage:  "remove an account from your allowlist",
			Flags:  []cli.Flag{&idHashFlag},
			Action: updateListAction("DELETE", "allowlist"),
		},
		{
			Name:  "allowlist",
			Usage: "enable or disable your allowlist",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "enabled",
					Usage: "whether only allowlisted accounts can take your deposits",
					Value: true,
				},
			},
			Action: setAllowlistAction,
		},
	},
}

func registerAction(ctx *cli.Context) error {
	proof, err := readProofFile(ctx.String(proofFileFlag.Name))
	if err != nil {
		return err
	}

	client, err := getClient(ctx)
	if err != nil {
		return err
	}

	resp, err := client.post("/v1/accounts/register", map[string]interface{}{
		"verifier": ctx.String("verifier"),
		"proof":    proof,
	})
	if err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}

func getAccountAction(ctx *cli.Context) error {
	address, idHash := ctx.String("address"), ctx.String("id_hash")
	if (address == "") == (idHash == "") {
		return &invalidUsageError{ctx, ctx.Command.Name}
	}

	client, err := getClient(ctx)
	if err != nil {
		return err
	}

	var resp []byte
	if address != "" {
		resp, err = client.get("/v1/accounts/"+address, nil)
	} else {
		resp, err = client.get("/v1/accounts", url.Values{"id_hash": {idHash}})
	}
	if err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}

func updateListAction(method, list string) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		client, err := getClient(ctx)
		if err != nil {
			return err
		}

		path := "/v1/accounts/" + list + "/" + ctx.String(idHashFlag.Name)
		resp, err := client.do(method, path, nil, nil)
		if err != nil {
			return err
		}

		printRespJSON(resp)
		return nil
	}
}

func setAllowlistAction(ctx *cli.Context) error {
	client, err := getClient(ctx)
	if err != nil {
		return err
	}

	resp, err := client.put(
		"/v1/accounts/allowlist",
		map[string]interface{}{"enabled": ctx.Bool("enabled")},
	)
	if err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}
