package server

import (
	"errors"

	"portfolio/db"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

// Response is the envelope of every JSON answer of the API
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

func ok(c *fiber.Ctx, data any) error {
	return c.JSON(Response{Success: true, Data: data})
}

func okMessage(c *fiber.Ctx, message string, data any) error {
	return c.JSON(Response{Success: true, Data: data, Message: message})
}

func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(Response{Success: false, Error: message})
}

// failWith maps store errors to a status and hides internal details
func failWith(c *fiber.Ctx, err error, message string) error {
	if errors.Is(err, db.ErrNotFound) {
		return fail(c, fiber.StatusNotFound, "Not found")
	}
	log.WithFields(log.Fields{
		"route": c.Route().Path,
		"error": err,
	}).Error(message)
	return fail(c, fiber.StatusInternalServerError, message)
}

// errorHandler turns errors returned by handlers and middleware into the envelope
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	} else {
		log.WithFields(log.Fields{
			"route": c.Route().Path,
			"error": err,
		}).Error("Unhandled error")
	}
	return fail(c, code, message)
}
