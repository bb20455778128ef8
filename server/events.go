package server

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"portfolio/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"
)

const keepAlive = 15 * time.Second

// events streams ingestion summaries to the admin dashboard as server sent events
func events(bc *Broadcaster) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("Content-Type", "text/event-stream")
		c.Set("Cache-Control", "no-cache")
		c.Set("Connection", "keep-alive")
		c.Set("Transfer-Encoding", "chunked")

		key := uuid.New().String()
		channel := make(chan models.IngestEvent, 10)
		bc.AddClient(key, channel)

		c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
			alive := time.NewTicker(keepAlive)
			defer alive.Stop()
			defer bc.RemoveClient(key)

			fmt.Fprintf(w, "event: init\ndata: %s\n\n", key)
			if err := w.Flush(); err != nil {
				log.Errorf("Failed to send init event: %v", err)
				return
			}

			for {
				select {
				case <-alive.C:
					if _, err := fmt.Fprintf(w, "event: ping\ndata: \n\n"); err != nil {
						return
					}
					if err := w.Flush(); err != nil {
						log.Debugf("Client %s went away: %v", key, err)
						return
					}

				case event, ok := <-channel:
					if !ok {
						return
					}
					data, err := json.Marshal(event)
					if err != nil {
						log.Errorf("Error marshalling event for client %s: %v", key, err)
						continue
					}
					if _, err := fmt.Fprintf(w, "event: ingest\ndata: %s\n\n", data); err != nil {
						return
					}
					if err := w.Flush(); err != nil {
						log.Debugf("Client %s went away: %v", key, err)
						return
					}
				}
			}
		}))

		return nil
	}
}
