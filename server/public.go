package server

import (
	"errors"
	"strings"

	"portfolio/assistant"
	"portfolio/db"
	"portfolio/models"
	"portfolio/query"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

func registerPublic(api fiber.Router, config *ServerConfig) {
	api.Get("/news/list", listPublished(config.Store, models.KindBlog))
	api.Get("/tools/list", listPublished(config.Store, models.KindTool))

	api.Get("/projects/list", func(c *fiber.Ctx) error {
		projects, err := config.Store.ListProjects(c.UserContext())
		if err != nil {
			return failWith(c, err, "Error listing projects")
		}
		return ok(c, projects)
	})

	api.Post("/contact/submit", func(c *fiber.Ctx) error {
		var submission models.ContactSubmission
		if err := c.BodyParser(&submission); err != nil {
			return fail(c, fiber.StatusBadRequest, "Invalid request body")
		}
		submission.Name = strings.TrimSpace(submission.Name)
		submission.Email = strings.TrimSpace(submission.Email)
		submission.Message = strings.TrimSpace(submission.Message)

		if submission.Name == "" || submission.Message == "" || !strings.Contains(submission.Email, "@") {
			return fail(c, fiber.StatusBadRequest, "Name, a valid email and a message are required")
		}

		stored, err := config.Store.CreateContact(c.UserContext(), submission)
		if err != nil {
			return failWith(c, err, "Error storing contact submission")
		}
		log.WithField("id", stored.Id).Info("Contact submission stored")
		return okMessage(c, "Thank you for your message, I'll get back to you soon.", fiber.Map{"id": stored.Id})
	})

	api.Post("/chat/send", func(c *fiber.Ctx) error {
		var req struct {
			Message   string `json:"message"`
			SessionId string `json:"session_id"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fail(c, fiber.StatusBadRequest, "Invalid request body")
		}

		exchange, err := config.Assistant.Chat(c.UserContext(), req.SessionId, req.Message)
		if errors.Is(err, assistant.ErrEmptyMessage) {
			return fail(c, fiber.StatusBadRequest, "Message is required")
		}
		if err != nil {
			// The answer is still worth returning when only storing it failed
			log.WithError(err).Error("Error storing chat exchange")
		}
		return ok(c, fiber.Map{
			"response":   exchange.Response,
			"session_id": exchange.SessionId,
		})
	})

	api.Post("/cv/query", func(c *fiber.Ctx) error {
		var req struct {
			Question string `json:"question"`
			Detailed bool   `json:"detailed"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fail(c, fiber.StatusBadRequest, "Invalid request body")
		}

		answer, err := config.Assistant.AskCV(c.UserContext(), req.Question, req.Detailed)
		if errors.Is(err, assistant.ErrEmptyMessage) {
			return fail(c, fiber.StatusBadRequest, "Question is required")
		}
		if err != nil {
			return failWith(c, err, "Error answering question")
		}
		return ok(c, fiber.Map{"answer": answer})
	})
}

// listPublished serves the live items of a kind, filtered by category and a search term
func listPublished(store Store, kind models.Kind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit := c.QueryInt("limit", defaultLimit)
		if limit < 1 || limit > maxLimit {
			limit = defaultLimit
		}

		items, err := store.ListContent(c.UserContext(), kind, query.ListOptions{
			Filters: []query.FilterStrategy{
				&db.PublishedFilter{},
				&db.CategoryFilter{Category: c.Query("category")},
				&db.SearchFilter{Query: c.Query("q"), Columns: db.ContentSearchColumns},
			},
			Limit: limit,
		})
		if err != nil {
			return failWith(c, err, "Error listing items")
		}
		return ok(c, items)
	}
}
