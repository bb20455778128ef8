/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"
	"os"

	"portfolio/auth"

	"github.com/cqroot/prompt"
	"github.com/cqroot/prompt/input"
	"github.com/urfave/cli/v2"
)

func tokenCmd() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Print an admin bearer token",
		Description: `Prompts for the admin password and prints a bearer token for the
admin API, e.g. for scripts calling the refresh endpoints.

The server must be configured with the same JWT secret.`,
		Flags: append([]cli.Flag{
			configFlag(),
		}, secretFlags()...),
		Action: func(ctx *cli.Context) error {
			cfg, err := loadConfig(ctx)
			if err != nil {
				return err
			}
			if cfg.Admin.JWTSecret == "" {
				return errors.New("please configure a jwt secret, tokens signed with a random one are useless to the server")
			}

			password, err := prompt.New().Ask("Password:").Input("", input.WithEchoMode(input.EchoNone))
			if err != nil {
				return err
			}

			manager := auth.NewJWTManager(cfg.Admin.Password, cfg.Admin.JWTSecret, cfg.Admin.SessionTTL.Duration)
			token, expires, err := manager.Login(password)
			if err != nil {
				return err
			}

			fmt.Fprintln(os.Stderr, "Token expires at", expires.Format("2006-01-02 15:04:05 MST"))
			fmt.Println(token)
			return nil
		},
	}
}
