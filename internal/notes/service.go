// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quillstash Contributors

package notes

import (
	"context"
	"log/slog"

	"github.com/samber/oops"
)

// Service validates input and delegates persistence to the repository.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a note service. Logger may be nil.
func NewService(repo Repository, logger *slog.Logger) (*Service, error) {
	if repo == nil {
		return nil, oops.Code("NOTES_CONFIG_INVALID").New("repository is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}, nil
}

// Create validates and stores a new note owned by ownerID.
func (s *Service) Create(ctx context.Context, ownerID int64, title, content string) (*Note, error) {
	if err := validateFields(title, content); err != nil {
		return nil, err
	}

	note := &Note{Title: title, Content: content, OwnerID: ownerID}
	if err := s.repo.Create(ctx, note); err != nil {
		return nil, oops.Code("NOTE_CREATE_FAILED").
			With("owner_id", ownerID).
			Wrap(err)
	}

	s.logger.Info("note created", "note_id", note.ID, "owner_id", ownerID)
	return note, nil
}

// Get returns the note if it exists and belongs to ownerID.
func (s *Service) Get(ctx context.Context, ownerID, id int64) (*Note, error) {
	return s.repo.GetByID(ctx, ownerID, id)
}

// List returns a page of the owner's notes, optionally filtered by a
// case-insensitive title substring match.
func (s *Service) List(ctx context.Context, ownerID int64, params ListParams) (*ListResult, error) {
	params = params.Normalize()

	rows, total, err := s.repo.List(ctx, ownerID, params)
	if err != nil {
		return nil, oops.Code("NOTE_LIST_FAILED").
			With("owner_id", ownerID).
			Wrap(err)
	}
	if rows == nil {
		rows = []Note{}
	}

	totalPages := total / int64(params.Limit)
	if total%int64(params.Limit) != 0 {
		totalPages++
	}

	return &ListResult{
		Notes: rows,
		Meta: ListMeta{
			Page:       params.Page,
			Limit:      params.Limit,
			TotalNotes: total,
			TotalPages: totalPages,
		},
	}, nil
}

// Update patches the named fields of an owned note and returns the
// updated row. A patch naming no fields is rejected before touching
// the store.
func (s *Service) Update(ctx context.Context, ownerID, id int64, params UpdateParams) (*Note, error) {
	if params.Title == nil && params.Content == nil {
		return nil, ErrNothingToUpdate
	}
	if params.Title != nil {
		if *params.Title == "" {
			return nil, ErrTitleRequired
		}
		if len(*params.Title) > MaxTitleLength {
			return nil, ErrTitleTooLong
		}
	}
	if params.Content != nil {
		if *params.Content == "" {
			return nil, ErrContentRequired
		}
		if len(*params.Content) > MaxContentLength {
			return nil, ErrContentTooLong
		}
	}

	note, err := s.repo.Update(ctx, ownerID, id, params)
	if err != nil {
		return nil, err
	}

	s.logger.Info("note updated", "note_id", id, "owner_id", ownerID)
	return note, nil
}

// Delete removes an owned note.
func (s *Service) Delete(ctx context.Context, ownerID, id int64) error {
	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		return err
	}
	s.logger.Info("note deleted", "note_id", id, "owner_id", ownerID)
	return nil
}

func validateFields(title, content string) error {
	if title == "" {
		return ErrTitleRequired
	}
	if len(title) > MaxTitleLength {
		return ErrTitleTooLong
	}
	if content == "" {
		return ErrContentRequired
	}
	if len(content) > MaxContentLength {
		return ErrContentTooLong
	}
	return nil
}
