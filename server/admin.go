package server

import (
	"errors"
	"path/filepath"
	"strings"
	"time"

	"portfolio/assistant"
	"portfolio/models"
	"portfolio/query"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/labstack/gommon/bytes"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

const (
	blogsJob        = "blogs"
	defaultCategory = "Other"
	generatedSource = "AI Generated"
)

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}

func registerAdmin(admin fiber.Router, config *ServerConfig) {
	registerContent(admin.Group("/tools"), config.Store, models.KindTool)
	registerContent(admin.Group("/blogs"), config.Store, models.KindBlog)
	registerProjects(admin.Group("/projects"), config.Store)

	admin.Delete("/blogs", func(c *fiber.Ctx) error {
		removed, err := config.Store.DeleteAllContent(c.UserContext(), models.KindBlog)
		if err != nil {
			return failWith(c, err, "Error deleting blogs")
		}
		log.WithField("removed", removed).Info("Deleted all blogs")
		return okMessage(c, "All blogs deleted", fiber.Map{"removed": removed})
	})

	admin.Post("/generate-blog", func(c *fiber.Ctx) error {
		var req models.BlogRequest
		if err := c.BodyParser(&req); err != nil {
			return fail(c, fiber.StatusBadRequest, "Invalid request body")
		}
		if strings.TrimSpace(req.Topic) == "" || strings.TrimSpace(req.Category) == "" {
			return fail(c, fiber.StatusBadRequest, "Topic and category are required")
		}

		draft, err := config.Assistant.DraftBlog(c.UserContext(), req)
		if err != nil {
			if errors.Is(err, assistant.ErrUnavailable) {
				return fail(c, fiber.StatusServiceUnavailable, "Blog generation is not configured")
			}
			log.WithError(err).Error("Blog generation failed")
			return fail(c, fiber.StatusBadGateway, "Blog generation failed")
		}
		return ok(c, draft)
	})

	admin.Post("/save-generated-blog", func(c *fiber.Ctx) error {
		var draft models.BlogDraft
		if err := c.BodyParser(&draft); err != nil {
			return fail(c, fiber.StatusBadRequest, "Invalid request body")
		}
		if strings.TrimSpace(draft.Content) == "" {
			return fail(c, fiber.StatusBadRequest, "Content is required")
		}

		item := models.ContentItem{
			Kind:      models.KindBlog,
			Title:     draft.Title,
			Body:      draft.Content,
			Excerpt:   draft.Excerpt,
			Category:  draft.Category,
			Source:    generatedSource,
			Published: true,
		}
		if err := prepareContent(&item); err != nil {
			return err
		}

		created, err := config.Store.CreateContent(c.UserContext(), item)
		if err != nil {
			return failWith(c, err, "Error saving blog")
		}
		return c.Status(fiber.StatusCreated).JSON(Response{Success: true, Data: created, Message: "Blog saved"})
	})

	admin.Post("/refresh-blogs", func(c *fiber.Ctx) error {
		summary, err := config.Blogs.Run(c.UserContext())
		config.Broadcaster.Broadcast(models.IngestEvent{Trigger: "manual", Summary: summary})
		if err != nil {
			log.WithError(err).Error("Blog refresh interrupted")
			return c.Status(fiber.StatusInternalServerError).JSON(Response{
				Success: false,
				Data:    summary,
				Error:   "Blog refresh did not complete",
			})
		}

		// A manual refresh restarts the countdown of the periodic one
		data := fiber.Map{"summary": summary}
		if next, err := config.Scheduler.Reset(blogsJob); err != nil {
			log.WithError(err).Warn("Could not reset blog schedule")
		} else {
			data["next_run_time"] = next
		}
		return okMessage(c, "Blogs refreshed", data)
	})

	admin.Post("/refresh-tools", func(c *fiber.Ctx) error {
		summary, err := config.Tools.Run(c.UserContext())
		config.Broadcaster.Broadcast(models.IngestEvent{Trigger: "manual", Summary: summary})
		if err != nil {
			log.WithError(err).Error("Tool refresh interrupted")
			return c.Status(fiber.StatusInternalServerError).JSON(Response{
				Success: false,
				Data:    summary,
				Error:   "Tool refresh did not complete",
			})
		}
		return okMessage(c, "Tools refreshed", fiber.Map{"summary": summary})
	})

	admin.Post("/sync-projects", func(c *fiber.Ctx) error {
		summary, err := config.Projects.Sync(c.UserContext())
		if err != nil {
			return failWith(c, err, "Error syncing projects from GitHub")
		}
		return okMessage(c, "Projects synced", summary)
	})

	admin.Get("/scheduler", func(c *fiber.Ctx) error {
		return ok(c, fiber.Map{
			"running": config.Scheduler.Running(),
			"jobs":    config.Scheduler.Status(),
		})
	})

	admin.Post("/scheduler/:job/reset", func(c *fiber.Ctx) error {
		job := c.Params("job")
		next, err := config.Scheduler.Reset(job)
		if err != nil {
			return fail(c, fiber.StatusNotFound, "Unknown job: "+job)
		}
		return okMessage(c, "Job schedule reset", fiber.Map{"id": job, "next_run_time": next})
	})

	admin.Get("/stats", func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		blogs, err := config.Store.CategoryCounts(ctx, models.KindBlog)
		if err != nil {
			return failWith(c, err, "Error counting blogs")
		}
		tools, err := config.Store.CategoryCounts(ctx, models.KindTool)
		if err != nil {
			return failWith(c, err, "Error counting tools")
		}
		projects, err := config.Store.ListProjects(ctx)
		if err != nil {
			return failWith(c, err, "Error counting projects")
		}

		return ok(c, fiber.Map{
			"blogs":          blogs,
			"tools":          tools,
			"total_blogs":    lo.Sum(lo.Values(blogs)),
			"total_tools":    lo.Sum(lo.Values(tools)),
			"total_projects": len(projects),
			"sse_clients":    config.Broadcaster.Count(),
		})
	})

	admin.Post("/upload-image", func(c *fiber.Ctx) error {
		file, err := c.FormFile("file")
		if err != nil {
			return fail(c, fiber.StatusBadRequest, "A file is required")
		}

		ext := strings.ToLower(filepath.Ext(file.Filename))
		if !lo.Contains(imageExtensions, ext) {
			return fail(c, fiber.StatusBadRequest, "Allowed image types: "+strings.Join(imageExtensions, ", "))
		}
		if config.MaxUploadSize > 0 && file.Size > config.MaxUploadSize {
			return fail(c, fiber.StatusRequestEntityTooLarge, "File is larger than "+bytes.Format(config.MaxUploadSize))
		}

		name := uuid.NewString() + ext
		if err := c.SaveFile(file, filepath.Join(config.UploadsDir, name)); err != nil {
			return failWith(c, err, "Error saving file")
		}

		log.WithFields(log.Fields{
			"file": name,
			"size": bytes.Format(file.Size),
		}).Info("Image uploaded")
		return okMessage(c, "Image uploaded", fiber.Map{"url": "/uploads/" + name})
	})

	admin.Get("/events", events(config.Broadcaster))
}

func registerContent(group fiber.Router, store Store, kind models.Kind) {
	group.Get("/", func(c *fiber.Ctx) error {
		items, err := store.ListContent(c.UserContext(), kind, query.ListOptions{})
		if err != nil {
			return failWith(c, err, "Error listing items")
		}
		return ok(c, items)
	})

	group.Post("/", func(c *fiber.Ctx) error {
		item := models.ContentItem{Published: true}
		if err := c.BodyParser(&item); err != nil {
			return fail(c, fiber.StatusBadRequest, "Invalid request body")
		}
		item.Id = 0
		item.Kind = kind
		if err := prepareContent(&item); err != nil {
			return err
		}

		created, err := store.CreateContent(c.UserContext(), item)
		if err != nil {
			return failWith(c, err, "Error creating item")
		}
		return c.Status(fiber.StatusCreated).JSON(Response{Success: true, Data: created})
	})

	group.Put("/:id", func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fail(c, fiber.StatusBadRequest, "Invalid id")
		}

		// Fields missing from the body keep their stored value
		item, err := store.GetContent(c.UserContext(), kind, int64(id))
		if err != nil {
			return failWith(c, err, "Error loading item")
		}
		if err := c.BodyParser(&item); err != nil {
			return fail(c, fiber.StatusBadRequest, "Invalid request body")
		}
		item.Id = int64(id)
		item.Kind = kind
		if err := prepareContent(&item); err != nil {
			return err
		}

		updated, err := store.UpdateContent(c.UserContext(), item)
		if err != nil {
			return failWith(c, err, "Error updating item")
		}
		return ok(c, updated)
	})

	group.Delete("/:id", func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fail(c, fiber.StatusBadRequest, "Invalid id")
		}
		if err := store.DeleteContent(c.UserContext(), kind, int64(id)); err != nil {
			return failWith(c, err, "Error deleting item")
		}
		return okMessage(c, "Deleted", nil)
	})
}

func prepareContent(item *models.ContentItem) error {
	item.Title = strings.TrimSpace(item.Title)
	if item.Title == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Title is required")
	}
	if strings.TrimSpace(item.Category) == "" {
		item.Category = defaultCategory
	}
	if item.PublishedAt.IsZero() {
		item.PublishedAt = time.Now().UTC()
	}
	return nil
}

func registerProjects(group fiber.Router, store Store) {
	group.Get("/", func(c *fiber.Ctx) error {
		projects, err := store.ListProjects(c.UserContext())
		if err != nil {
			return failWith(c, err, "Error listing projects")
		}
		return ok(c, projects)
	})

	group.Post("/", func(c *fiber.Ctx) error {
		var project models.Project
		if err := c.BodyParser(&project); err != nil {
			return fail(c, fiber.StatusBadRequest, "Invalid request body")
		}
		project.Id = 0
		project.Name = strings.TrimSpace(project.Name)
		if project.Name == "" {
			return fail(c, fiber.StatusBadRequest, "Name is required")
		}

		created, err := store.CreateProject(c.UserContext(), project)
		if err != nil {
			return failWith(c, err, "Error creating project")
		}
		return c.Status(fiber.StatusCreated).JSON(Response{Success: true, Data: created})
	})

	group.Put("/:id", func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fail(c, fiber.StatusBadRequest, "Invalid id")
		}

		project, err := store.GetProject(c.UserContext(), int64(id))
		if err != nil {
			return failWith(c, err, "Error loading project")
		}
		if err := c.BodyParser(&project); err != nil {
			return fail(c, fiber.StatusBadRequest, "Invalid request body")
		}
		project.Id = int64(id)
		if strings.TrimSpace(project.Name) == "" {
			return fail(c, fiber.StatusBadRequest, "Name is required")
		}

		updated, err := store.UpdateProject(c.UserContext(), project)
		if err != nil {
			return failWith(c, err, "Error updating project")
		}
		return ok(c, updated)
	})

	group.Delete("/:id", func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fail(c, fiber.StatusBadRequest, "Invalid id")
		}
		if err := store.DeleteProject(c.UserContext(), int64(id)); err != nil {
			return failWith(c, err, "Error deleting project")
		}
		return okMessage(c, "Deleted", nil)
	})
}
