package assistant

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"portfolio/config"
	"portfolio/models"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/tmc/langchaingo/llms"
)

// Apology is returned in place of an answer when no model could respond
const Apology = "I'm experiencing technical difficulties at the moment. Please try again in a few minutes."

const (
	historyTurns = 6
	maxCVLength  = 12000
)

var ErrEmptyMessage = errors.New("message is empty")

// Generator produces a reply for a conversation
type Generator interface {
	Generate(ctx context.Context, messages []llms.MessageContent) (string, error)
}

type Store interface {
	ChatHistory(ctx context.Context, sessionId string, limit int) ([]models.ChatMessage, error)
	CreateChatMessage(ctx context.Context, message models.ChatMessage) (models.ChatMessage, error)
}

// Assistant answers visitors in the owner's persona
type Assistant struct {
	Persona   string
	CV        string
	Generator Generator
	Store     Store
}

// New loads the CV text from cfg.CVPath when set. A missing file only
// disables CV context. generator may be nil, every answer is then the apology.
func New(cfg config.TomlLLM, generator Generator, store Store) *Assistant {
	a := &Assistant{
		Persona:   cfg.Persona,
		Generator: generator,
		Store:     store,
	}

	if cfg.CVPath != "" {
		data, err := os.ReadFile(cfg.CVPath)
		if err != nil {
			log.WithFields(log.Fields{
				"path":  cfg.CVPath,
				"error": err,
			}).Warn("Could not read CV, CV questions will use the persona only")
		} else {
			a.CV = truncate(strings.TrimSpace(string(data)), maxCVLength)
		}
	}

	return a
}

// Chat answers one message of a session and stores the exchange. An empty
// sessionId starts a new session.
func (a *Assistant) Chat(ctx context.Context, sessionId, message string) (models.ChatMessage, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return models.ChatMessage{}, ErrEmptyMessage
	}
	if sessionId == "" {
		sessionId = uuid.NewString()
	}

	messages := []llms.MessageContent{llms.TextParts(llms.ChatMessageTypeSystem, a.Persona)}

	history, err := a.Store.ChatHistory(ctx, sessionId, historyTurns)
	if err != nil {
		log.WithFields(log.Fields{
			"session": sessionId,
			"error":   err,
		}).Warn("Could not load chat history")
	}
	for _, turn := range history {
		messages = append(messages,
			llms.TextParts(llms.ChatMessageTypeHuman, turn.Message),
			llms.TextParts(llms.ChatMessageTypeAI, turn.Response),
		)
	}
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, message))

	exchange := models.ChatMessage{
		SessionId: sessionId,
		Message:   message,
		Response:  a.generate(ctx, messages),
	}

	stored, err := a.Store.CreateChatMessage(ctx, exchange)
	if err != nil {
		return exchange, fmt.Errorf("error storing chat message: %w", err)
	}
	return stored, nil
}

// AskCV answers a question about the owner's CV. detailed asks for a longer answer.
func (a *Assistant) AskCV(ctx context.Context, question string, detailed bool) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyMessage
	}

	system := a.Persona
	if a.CV != "" {
		system += "\n\nAnswer using the CV below. If the answer is not in it, say you don't have that information.\n\nCV:\n" + a.CV
	}

	prompt := "Question: " + question + "\n"
	if detailed {
		prompt += "Provide a thorough answer with examples and specifics where available."
	} else {
		prompt += "Answer concisely in 1-3 sentences."
	}

	return a.generate(ctx, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, system),
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}), nil
}

func (a *Assistant) generate(ctx context.Context, messages []llms.MessageContent) string {
	if a.Generator == nil {
		return Apology
	}

	reply, err := a.Generator.Generate(ctx, messages)
	if err != nil {
		log.WithError(err).Error("Assistant could not get a reply")
		return Apology
	}
	return reply
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
