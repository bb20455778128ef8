/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"portfolio/github"

	"github.com/urfave/cli/v2"
)

func syncProjectsCmd() *cli.Command {
	return &cli.Command{
		Name:  "sync-projects",
		Usage: "Sync projects from GitHub",
		Description: `Searches the configured GitHub user's repositories tagged with the
configured topic and adds or refreshes them in the project list.

Name, category and display order edited by hand are kept. Prints the sync
summary as JSON.`,
		Flags: append([]cli.Flag{
			configFlag(),
			databaseFlag(),
		}, secretFlags()...),
		Action: func(ctx *cli.Context) error {
			cfg, err := loadConfig(ctx)
			if err != nil {
				return err
			}

			store, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			syncer, err := github.NewSyncer(ctx.Context, cfg.GitHub, store)
			if err != nil {
				return err
			}

			summary, err := syncer.Sync(ctx.Context)
			if err != nil {
				return err
			}
			return printJSON(summary)
		},
	}
}
