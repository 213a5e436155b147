package main

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/thanhpk/randstr"
	"github.com/urfave/cli/v2"
	"github.com/zkramp/ramp-daemon/pkg/jwtauth"
)

const secretLen = 32

var (
	daemonURLFlag = cli.StringFlag{
		Name:  "daemon-url",
		Usage: "rampd daemon url",
		Value: "http://localhost:9945",
	}

	tokenFlag = cli.StringFlag{
		Name:  "token",
		Usage: "bearer token identifying the caller",
		Value: "",
	}
)

var config = cli.Command{
	Name:   "config",
	Usage:  "Print local configuration of the ramp CLI",
	Action: configAction,
	Subcommands: []*cli.Command{
		{
			Name:   "set",
			Usage:  "set a <key> <value> in the local state",
			Action: configSetAction,
		},
		{
			Name:   "init",
			Usage:  "initialize the local state with flags",
			Action: configInitAction,
			Flags: []cli.Flag{
				&daemonURLFlag,
				&tokenFlag,
			},
		},
	},
}

var token = cli.Command{
	Name:  "token",
	Usage: "mint a bearer token for the given address",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "secret",
			Usage:    "the jwt secret shared with the daemon",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "address",
			Usage:    "the address of the caller",
			Required: true,
		},
		&cli.DurationFlag{
			Name:  "ttl",
			Usage: "validity of the token, 0 for no expiration",
			Value: 24 * time.Hour,
		},
		&cli.BoolFlag{
			Name:  "save",
			Usage: "store the token in the local state",
		},
	},
	Action: tokenAction,
}

var gensecret = cli.Command{
	Name:   "gensecret",
	Usage:  "generate a random secret to sign the bearer tokens with",
	Action: genSecretAction,
}

func configAction(ctx *cli.Context) error {
	state, err := getState()
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(state))
	for key := range state {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Println(key + ": " + state[key])
	}

	return nil
}

func configInitAction(ctx *cli.Context) error {
	return setState(map[string]string{
		daemonURLKey: ctx.String(daemonURLFlag.Name),
		tokenKey:     ctx.String(tokenFlag.Name),
	})
}

func configSetAction(ctx *cli.Context) error {
	if ctx.NArg() < 2 {
		return errors.New("key and value are missing")
	}

	key := ctx.Args().Get(0)
	value := ctx.Args().Get(1)

	if err := setState(map[string]string{key: value}); err != nil {
		return err
	}

	fmt.Printf("%s %s has been set\n", key, value)
	return nil
}

func tokenAction(ctx *cli.Context) error {
	tkn, err := jwtauth.NewToken(
		[]byte(ctx.String("secret")), ctx.String("address"), ctx.Duration("ttl"),
	)
	if err != nil {
		return err
	}

	if ctx.Bool("save") {
		if err := setState(map[string]string{tokenKey: tkn}); err != nil {
			return err
		}
		fmt.Println("token has been saved")
		return nil
	}

	fmt.Println(tkn)
	return nil
}

func genSecretAction(ctx *cli.Context) error {
	fmt.Println(newSecret())
	return nil
}

func newSecret() string {
	return randstr.Hex(secretLen)
}
