// http/handlers.go
package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/gkirkpatrick/magic-notes/domain"
	"github.com/gkirkpatrick/magic-notes/store"
	"github.com/gkirkpatrick/magic-notes/ws"
)

// Broadcaster receives note mutation events. Satisfied by *ws.Hub; nil
// disables broadcasting.
type Broadcaster interface {
	Broadcast(msgType string, note *domain.Note)
}

type Server struct {
	store store.Store
	hub   Broadcaster
	log   zerolog.Logger
}

func NewServer(st store.Store, hub Broadcaster, log zerolog.Logger) *Server {
	return &Server{store: st, hub: hub, log: log.With().Str("component", "http").Logger()}
}

// Register mounts the API routes on the given router.
func (s *Server) Register(api fiber.Router) {
	api.Get("/notes", s.HandleListNotes)
	api.Post("/notes", s.HandleCreateNote)
	api.Get("/notes/:id", s.HandleGetNote)
	api.Put("/notes/:id", s.HandleUpdateNote)
	api.Delete("/notes/:id", s.HandleDeleteNote)
	api.Get("/tags", s.HandleListTags)
	api.Post("/tags", s.HandleCreateTag)
}

func (s *Server) HandleListNotes(c *fiber.Ctx) error {
	f := domain.Filter{
		BodyText:  c.Query("body_text"),
		TitleText: c.Query("title_text"),
		Tags:      queryValues(c, "tags"),
	}
	p := domain.Page{
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("page_size", domain.DefaultPageSize),
	}

	list, err := s.store.ListNotes(c.Context(), f, p)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(list)
}

func (s *Server) HandleGetNote(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return badRequest(c, "note id must be numeric")
	}

	note, err := s.store.GetNote(c.Context(), int64(id))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(note)
}

func (s *Server) HandleCreateNote(c *fiber.Ctx) error {
	var in domain.NoteInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "malformed request body")
	}

	note, err := s.store.CreateNote(c.Context(), in)
	if err != nil {
		return s.fail(c, err)
	}

	if s.hub != nil {
		s.hub.Broadcast(ws.EventNoteCreated, &note)
	}
	return c.Status(fiber.StatusCreated).JSON(note)
}

func (s *Server) HandleUpdateNote(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return badRequest(c, "note id must be numeric")
	}

	var in domain.NoteInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "malformed request body")
	}

	note, err := s.store.UpdateNote(c.Context(), int64(id), in)
	if err != nil {
		return s.fail(c, err)
	}

	if s.hub != nil {
		s.hub.Broadcast(ws.EventNoteUpdated, &note)
	}
	return c.JSON(note)
}

func (s *Server) HandleDeleteNote(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return badRequest(c, "note id must be numeric")
	}

	note, err := s.store.GetNote(c.Context(), int64(id))
	if err != nil {
		return s.fail(c, err)
	}
	if err := s.store.DeleteNote(c.Context(), int64(id)); err != nil {
		return s.fail(c, err)
	}

	if s.hub != nil {
		s.hub.Broadcast(ws.EventNoteDeleted, &note)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) HandleListTags(c *fiber.Ctx) error {
	tags, err := s.store.ListTags(c.Context())
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(tags)
}

func (s *Server) HandleCreateTag(c *fiber.Ctx) error {
	var in domain.TagInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "malformed request body")
	}

	tag, err := s.store.GetOrCreateTag(c.Context(), in.Name)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(tag)
}

// queryValues collects a repeatable query parameter, additionally splitting
// comma-separated values.
func queryValues(c *fiber.Ctx, key string) []string {
	var out []string
	for _, raw := range c.Context().QueryArgs().PeekMulti(key) {
		for _, v := range strings.Split(string(raw), ",") {
			if v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

// fail maps storage and validation errors onto API status codes.
func (s *Server) fail(c *fiber.Ctx, err error) error {
	var fe domain.FieldErrors
	switch {
	case errors.Is(err, store.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	case errors.As(err, &fe):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":  "invalid input",
			"fields": fe,
		})
	default:
		s.log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
}
