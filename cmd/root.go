/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"portfolio/config"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func RootApp() *cli.App {
	return &cli.App{
		Name:  "portfolio",
		Usage: "Backend for a personal portfolio site",
		Description: `Serves the API of a personal portfolio site.

		Keeps a blog and a tool collection fresh by periodically reading RSS and
		Atom feeds, categorizing the entries and retaining the newest few per
		category. Projects are synced from GitHub, and visitors can chat with an
		assistant speaking in the owner's persona.

		Flags can generally be set via environment variables, e.g.:

		--database => PORTFOLIO_DATABASE=portfolio.db
		--port => PORTFOLIO_PORT=8000
		`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "Log level (trace, debug, info, warn, error)",
				EnvVars: []string{"PORTFOLIO_LOG_LEVEL"},
			},
			&cli.BoolFlag{
				Name:    "log-json",
				Usage:   "Write logs as JSON",
				EnvVars: []string{"PORTFOLIO_LOG_JSON"},
			},
		},
		Before: func(ctx *cli.Context) error {
			level, err := log.ParseLevel(ctx.String("log-level"))
			if err != nil {
				return fmt.Errorf("invalid log level: %w", err)
			}
			log.SetLevel(level)
			if ctx.Bool("log-json") {
				log.SetFormatter(&log.JSONFormatter{})
			}
			return nil
		},
		Commands: []*cli.Command{
			serveCmd(),
			migrateCmd(),
			rollbackCmd(),
			ingestCmd(),
			fetchCmd(),
			syncProjectsCmd(),
			tokenCmd(),
		},
		Action: func(ctx *cli.Context) error {
			// Show help if no command is specified
			return ctx.App.Run([]string{"", "help"})
		},
	}
}

func Execute() {
	if err := RootApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to a TOML file decoded on top of the defaults",
		EnvVars: []string{"PORTFOLIO_CONFIG"},
	}
}

func databaseFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "database",
		Aliases: []string{"d"},
		Usage:   "SQLite database file location, overrides the config file",
		EnvVars: []string{"PORTFOLIO_DATABASE"},
	}
}

func secretFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "admin-password",
			Usage:   "Password for the admin API",
			EnvVars: []string{"PORTFOLIO_ADMIN_PASSWORD"},
		},
		&cli.StringFlag{
			Name:    "jwt-secret",
			Usage:   "Secret used to sign admin sessions",
			EnvVars: []string{"PORTFOLIO_JWT_SECRET"},
		},
		&cli.StringFlag{
			Name:    "llm-api-key",
			Usage:   "API key for the OpenAI compatible LLM endpoint",
			EnvVars: []string{"PORTFOLIO_LLM_API_KEY"},
		},
		&cli.StringFlag{
			Name:    "github-token",
			Usage:   "GitHub token for the project sync",
			EnvVars: []string{"PORTFOLIO_GITHUB_TOKEN"},
		},
	}
}

// loadConfig reads the config file and applies the flags that were set
func loadConfig(ctx *cli.Context) (*config.TomlConfig, error) {
	cfg, err := config.LoadConfig(ctx.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	overrides := []struct {
		flag   string
		target *string
	}{
		{"database", &cfg.Database.Path},
		{"host", &cfg.Server.Host},
		{"uploads-dir", &cfg.Server.UploadsDir},
		{"admin-password", &cfg.Admin.Password},
		{"jwt-secret", &cfg.Admin.JWTSecret},
		{"llm-api-key", &cfg.LLM.APIKey},
		{"github-token", &cfg.GitHub.Token},
	}
	for _, o := range overrides {
		if ctx.IsSet(o.flag) {
			*o.target = ctx.String(o.flag)
		}
	}
	if ctx.IsSet("port") {
		cfg.Server.Port = ctx.Int("port")
	}

	return cfg, nil
}
