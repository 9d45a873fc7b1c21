// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quillstash Contributors

// Package notes implements the note resource: owned records with
// pagination and title search. Every operation is scoped to the owning
// account, so a note that exists but belongs to someone else is
// indistinguishable from one that does not exist.
package notes

import (
	"context"
	"errors"
	"time"
)

// Validation limits match the column widths in the schema.
const (
	MaxTitleLength   = 200
	MaxContentLength = 4000
)

// Pagination defaults applied when the caller omits or mangles the
// query parameters.
const (
	DefaultPage  = 1
	DefaultLimit = 10
)

var (
	// ErrNoteNotFound covers both absent notes and notes owned by a
	// different account. Responds 404 either way.
	ErrNoteNotFound = errors.New("note not found")

	// ErrTitleRequired and ErrContentRequired reject empty or oversized
	// fields on create. Respond 400.
	ErrTitleRequired   = errors.New("title is required")
	ErrContentRequired = errors.New("content is required")
	ErrTitleTooLong    = errors.New("title too long")
	ErrContentTooLong  = errors.New("content too long")

	// ErrNothingToUpdate rejects a patch that names no fields. Responds 400.
	ErrNothingToUpdate = errors.New("nothing to update")
)

// Note is an owned record. OwnerID references the account that created
// it and never changes.
type Note struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	OwnerID   int64     `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
}

// ListParams carries pagination and search input. Zero values mean
// "use the default"; Normalize resolves them.
type ListParams struct {
	Page  int
	Limit int
	Query string
}

// Normalize returns a copy with defaults applied to out-of-range values.
func (p ListParams) Normalize() ListParams {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	return p
}

// Offset converts the 1-based page to a row offset.
func (p ListParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// ListMeta describes a page of results.
type ListMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalNotes int64 `json:"totalNotes"`
	TotalPages int64 `json:"totalPages"`
}

// ListResult is a page of notes plus its metadata.
type ListResult struct {
	Notes []Note   `json:"notes"`
	Meta  ListMeta `json:"meta"`
}

// UpdateParams names the fields to change. Nil means "leave as is".
type UpdateParams struct {
	Title   *string
	Content *string
}

// Repository persists notes. Implementations scope every query by
// owner so the service never sees another account's rows.
type Repository interface {
	Create(ctx context.Context, note *Note) error
	GetByID(ctx context.Context, ownerID, id int64) (*Note, error)
	List(ctx context.Context, ownerID int64, params ListParams) ([]Note, int64, error)
	Update(ctx context.Context, ownerID, id int64, params UpdateParams) (*Note, error)
	Delete(ctx context.Context, ownerID, id int64) error
}
