package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"portfolio/config"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

var ErrNotConfigured = errors.New("llm api key not configured")

// Client talks to an OpenAI compatible chat completion endpoint and tries
// each configured model in turn until one answers
type Client struct {
	model   llms.Model
	models  []string
	timeout time.Duration
}

func New(cfg config.TomlLLM, httpClient *http.Client) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	model, err := openai.New(
		openai.WithBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")),
		openai.WithModel(cfg.Model),
		openai.WithToken(cfg.APIKey),
		openai.WithHTTPClient(httpClient),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create llm client: %w", err)
	}

	models := lo.Uniq(lo.Compact(append([]string{cfg.Model}, cfg.FallbackModels...)))
	if len(models) == 0 {
		return nil, fmt.Errorf("%w: no model", config.ErrInvalid)
	}

	return &Client{
		model:   model,
		models:  models,
		timeout: cfg.Timeout.Duration,
	}, nil
}

// Models lists the models in the order they are tried
func (c *Client) Models() []string {
	return c.models
}

// Complete sends a system and a user prompt and returns the reply text
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	return c.Generate(ctx, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, system),
		llms.TextParts(llms.ChatMessageTypeHuman, user),
	})
}

// Generate sends a conversation to the first model that answers with text
func (c *Client) Generate(ctx context.Context, messages []llms.MessageContent) (string, error) {
	var errs []error
	for _, model := range c.models {
		reply, err := c.generate(ctx, model, messages)
		if err == nil {
			return reply, nil
		}
		log.WithFields(log.Fields{
			"model": model,
			"error": err,
		}).Warn("LLM request failed, trying next model")
		errs = append(errs, fmt.Errorf("%s: %w", model, err))

		if ctx.Err() != nil {
			break
		}
	}
	return "", fmt.Errorf("all models failed: %w", errors.Join(errs...))
}

func (c *Client) generate(ctx context.Context, model string, messages []llms.MessageContent) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.model.GenerateContent(ctx, messages,
		llms.WithModel(model),
		llms.WithTemperature(0.3),
	)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty response")
	}

	reply := strings.TrimSpace(resp.Choices[0].Content)
	if reply == "" {
		return "", errors.New("empty response")
	}
	return reply, nil
}
