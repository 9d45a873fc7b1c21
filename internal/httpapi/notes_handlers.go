// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quillstash Contributors

package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/quillstash/quillstash/internal/notes"
)

type createNoteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type noteResponse struct {
	Message string     `json:"message,omitempty"`
	Note    notes.Note `json:"note"`
}

func (s *Server) handleCreateNote(c fiber.Ctx) error {
	identity := identityFrom(c)

	var req createNoteRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(errorResponse{Message: "Invalid request body"})
	}

	note, err := s.notes.Create(c.Context(), identity.ID, req.Title, req.Content)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.Status(http.StatusCreated).JSON(noteResponse{Message: "Note created", Note: *note})
}

func (s *Server) handleListNotes(c fiber.Ctx) error {
	identity := identityFrom(c)

	params := notes.ListParams{
		Page:  queryInt(c, "page"),
		Limit: queryInt(c, "limit"),
		Query: c.Query("q"),
	}

	result, err := s.notes.List(c.Context(), identity.ID, params)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(result)
}

func (s *Server) handleGetNote(c fiber.Ctx) error {
	identity := identityFrom(c)

	id, ok := noteIDParam(c)
	if !ok {
		return c.Status(http.StatusNotFound).JSON(errorResponse{Message: "Note not found"})
	}

	note, err := s.notes.Get(c.Context(), identity.ID, id)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(noteResponse{Note: *note})
}

type updateNoteRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

func (s *Server) handleUpdateNote(c fiber.Ctx) error {
	identity := identityFrom(c)

	id, ok := noteIDParam(c)
	if !ok {
		return c.Status(http.StatusNotFound).JSON(errorResponse{Message: "Note not found"})
	}

	var req updateNoteRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(errorResponse{Message: "Invalid request body"})
	}

	note, err := s.notes.Update(c.Context(), identity.ID, id, notes.UpdateParams{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(noteResponse{Message: "Note updated", Note: *note})
}

func (s *Server) handleDeleteNote(c fiber.Ctx) error {
	identity := identityFrom(c)

	id, ok := noteIDParam(c)
	if !ok {
		return c.Status(http.StatusNotFound).JSON(errorResponse{Message: "Note not found"})
	}

	if err := s.notes.Delete(c.Context(), identity.ID, id); err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Note deleted"})
}

// noteIDParam parses the :id path segment. A non-numeric ID behaves
// like a missing note.
func noteIDParam(c fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

// queryInt parses an integer query parameter; mangled or absent values
// come back as 0 and the service applies its default.
func queryInt(c fiber.Ctx, key string) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return v
}
