/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"portfolio/assistant"
	"portfolio/auth"
	"portfolio/github"
	"portfolio/models"
	"portfolio/scheduler"
	"portfolio/server"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the portfolio API",
		Description: `Starts the HTTP API and the background scheduler.

Migrates the database, then serves the public, auth and admin API. The
scheduler refreshes the blog collection (every 3 days by default) and syncs
projects from GitHub (every 2 hours by default). The first runs happen one
interval after startup, use the admin refresh endpoints to run them sooner.`,
		Flags: append([]cli.Flag{
			configFlag(),
			databaseFlag(),
			&cli.StringFlag{
				Name:    "host",
				Usage:   "Host to listen on",
				EnvVars: []string{"PORTFOLIO_HOST"},
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on",
				EnvVars: []string{"PORTFOLIO_PORT"},
			},
			&cli.StringFlag{
				Name:    "uploads-dir",
				Usage:   "Directory for uploaded images",
				EnvVars: []string{"PORTFOLIO_UPLOADS_DIR"},
			},
			&cli.BoolFlag{
				Name:    "secure-cookie",
				Usage:   "Only send the admin session cookie over HTTPS",
				EnvVars: []string{"PORTFOLIO_SECURE_COOKIE"},
			},
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

			if err := os.MkdirAll(cfg.Server.UploadsDir, 0o755); err != nil {
				return fmt.Errorf("could not create uploads dir: %w", err)
			}

			client, err := newLLM(cfg)
			if err != nil {
				return err
			}
			var generator assistant.Generator
			if client != nil {
				generator = client
			}

			blogs, err := pipelineFor(models.KindBlog, cfg, client, store)
			if err != nil {
				return err
			}
			tools, err := pipelineFor(models.KindTool, cfg, client, store)
			if err != nil {
				return err
			}

			syncer, err := github.NewSyncer(ctx.Context, cfg.GitHub, store)
			if err != nil {
				return err
			}

			jwtManager, err := auth.FromConfig(cfg.Admin)
			if err != nil {
				return err
			}

			bc := server.NewBroadcaster()

			sched := scheduler.New(
				scheduler.Job{
					Id:       "blogs",
					Interval: cfg.Schedule.BlogsInterval.Duration,
					Run: func(ctx context.Context) error {
						summary, err := blogs.Run(ctx)
						bc.Broadcast(models.IngestEvent{Trigger: "scheduled", Summary: summary})
						return err
					},
				},
				scheduler.Job{
					Id:       "projects",
					Interval: cfg.Schedule.ProjectsInterval.Duration,
					Run: func(ctx context.Context) error {
						_, err := syncer.Sync(ctx)
						return err
					},
				},
			)

			app := server.Server(&server.ServerConfig{
				Store:         store,
				Blogs:         blogs,
				Tools:         tools,
				Projects:      syncer,
				Scheduler:     sched,
				Assistant:     assistant.New(cfg.LLM, generator, store),
				Auth:          jwtManager,
				Broadcaster:   bc,
				CorsOrigins:   cfg.Server.CorsOrigins,
				UploadsDir:    cfg.Server.UploadsDir,
				MaxUploadSize: int64(cfg.Server.MaxUploadSize),
				SecureCookie:  ctx.Bool("secure-cookie"),
			})

			// Graceful shutdown
			signalCtx, stop := signal.NotifyContext(ctx.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			sched.Start()

			listenErr := make(chan error, 1)
			go func() {
				addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
				log.WithField("address", addr).Info("Starting server")
				listenErr <- app.Listen(addr)
			}()

			select {
			case <-signalCtx.Done():
				log.Info("Gracefully shutting down...")
			case err = <-listenErr:
				log.WithError(err).Error("Server stopped")
			}

			// Close event streams first so the server is not held open by them
			bc.Shutdown()
			if shutdownErr := app.ShutdownWithTimeout(60 * time.Second); shutdownErr != nil {
				log.WithError(shutdownErr).Warn("Server shutdown did not complete")
			}
			sched.Stop()

			log.Info("Done!")
			return err
		},
	}
}
