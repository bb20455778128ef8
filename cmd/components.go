package cmd

import (
	"errors"
	"fmt"
	"net/http"

	"portfolio/classify"
	"portfolio/config"
	"portfolio/db"
	"portfolio/feeds"
	"portfolio/ingest"
	"portfolio/llm"
	"portfolio/models"

	log "github.com/sirupsen/logrus"
)

// openStore migrates and opens the configured database
func openStore(cfg *config.TomlConfig) (*db.DB, error) {
	if err := db.Migrate(cfg.Database.Path); err != nil {
		return nil, err
	}
	return db.Open(cfg.Database.Path)
}

// newLLM returns nil when no API key is configured
func newLLM(cfg *config.TomlConfig) (*llm.Client, error) {
	client, err := llm.New(cfg.LLM, &http.Client{})
	if errors.Is(err, llm.ErrNotConfigured) {
		log.Warn("No LLM API key configured, using keyword categories and canned assistant replies")
		return nil, nil
	}
	return client, err
}

// pipelineFor builds the pipeline of a kind. store may be nil when the
// pipeline is only used to collect entries.
func pipelineFor(kind models.Kind, cfg *config.TomlConfig, client *llm.Client, store ingest.Store) (*ingest.Pipeline, error) {
	var pipelineCfg config.TomlPipeline
	switch kind {
	case models.KindBlog:
		pipelineCfg = cfg.Blogs
	case models.KindTool:
		pipelineCfg = cfg.Tools
	default:
		return nil, fmt.Errorf("unknown kind %q", kind)
	}

	// A nil *llm.Client must not end up inside a non-nil interface
	var completer classify.Completer
	if client != nil {
		completer = client
	}

	fetcher := feeds.NewHTTPFetcher(&http.Client{Timeout: pipelineCfg.FetchTimeout.Duration})
	return ingest.NewPipeline(kind, pipelineCfg, fetcher, completer, store), nil
}

// parseKind accepts the plural names used on the command line
func parseKind(name string) (models.Kind, error) {
	switch name {
	case "blogs", "blog":
		return models.KindBlog, nil
	case "tools", "tool":
		return models.KindTool, nil
	}
	return "", fmt.Errorf("unknown kind %q, use blogs or tools", name)
}
