// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quillstash Contributors

// Package postgres implements the notes repository using PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/quillstash/quillstash/internal/notes"
)

type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// NoteRepository implements notes.Repository using PostgreSQL.
type NoteRepository struct {
	pool db
}

var _ notes.Repository = (*NoteRepository)(nil)

// NewNoteRepository creates a new NoteRepository.
func NewNoteRepository(pool db) *NoteRepository {
	return &NoteRepository{pool: pool}
}

// Create stores a new note and fills in the generated ID and creation time.
func (r *NoteRepository) Create(ctx context.Context, note *notes.Note) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO notes (title, content, owner_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, note.Title, note.Content, note.OwnerID).
		Scan(&note.ID, &note.CreatedAt)
	if err != nil {
		return oops.Code("NOTE_INSERT_FAILED").
			With("owner_id", note.OwnerID).
			Wrap(err)
	}
	return nil
}

// GetByID retrieves a note scoped to its owner. A note owned by a
// different account comes back as ErrNoteNotFound.
func (r *NoteRepository) GetByID(ctx context.Context, ownerID, id int64) (*notes.Note, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, title, content, owner_id, created_at
		FROM notes
		WHERE id = $1 AND owner_id = $2
	`, id, ownerID)

	note, err := scanNote(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("NOTE_NOT_FOUND").
			With("note_id", id).
			With("owner_id", ownerID).
			Wrap(notes.ErrNoteNotFound)
	}
	if err != nil {
		return nil, oops.Code("NOTE_GET_FAILED").
			With("note_id", id).
			Wrap(err)
	}
	return note, nil
}

// List returns one page of the owner's notes ordered by ID, plus the
// total row count for the same filter.
func (r *NoteRepository) List(ctx context.Context, ownerID int64, params notes.ListParams) ([]notes.Note, int64, error) {
	where := `owner_id = $1`
	args := []any{ownerID}
	if params.Query != "" {
		where += ` AND title ILIKE $2`
		args = append(args, "%"+params.Query+"%")
	}

	var total int64
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM notes WHERE `+where, args...).
		Scan(&total)
	if err != nil {
		return nil, 0, oops.Code("NOTE_COUNT_FAILED").
			With("owner_id", ownerID).
			Wrap(err)
	}

	query := fmt.Sprintf(`
		SELECT id, title, content, owner_id, created_at
		FROM notes
		WHERE %s
		ORDER BY id
		LIMIT $%d OFFSET $%d
	`, where, len(args)+1, len(args)+2)
	args = append(args, params.Limit, params.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, oops.Code("NOTE_LIST_FAILED").
			With("owner_id", ownerID).
			Wrap(err)
	}
	defer rows.Close()

	var result []notes.Note
	for rows.Next() {
		var note notes.Note
		err := rows.Scan(&note.ID, &note.Title, &note.Content, &note.OwnerID, &note.CreatedAt)
		if err != nil {
			return nil, 0, oops.Code("NOTE_SCAN_FAILED").Wrap(err)
		}
		result = append(result, note)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, oops.Code("NOTE_LIST_FAILED").Wrap(err)
	}

	return result, total, nil
}

// Update patches the named fields and returns the updated row in one
// statement. The owner scope in the WHERE clause makes a foreign note
// look absent.
func (r *NoteRepository) Update(ctx context.Context, ownerID, id int64, params notes.UpdateParams) (*notes.Note, error) {
	var sets []string
	args := []any{id, ownerID}
	if params.Title != nil {
		args = append(args, *params.Title)
		sets = append(sets, fmt.Sprintf("title = $%d", len(args)))
	}
	if params.Content != nil {
		args = append(args, *params.Content)
		sets = append(sets, fmt.Sprintf("content = $%d", len(args)))
	}
	if len(sets) == 0 {
		return nil, notes.ErrNothingToUpdate
	}

	query := fmt.Sprintf(`
		UPDATE notes SET %s
		WHERE id = $1 AND owner_id = $2
		RETURNING id, title, content, owner_id, created_at
	`, strings.Join(sets, ", "))

	note, err := scanNote(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("NOTE_NOT_FOUND").
			With("note_id", id).
			With("owner_id", ownerID).
			Wrap(notes.ErrNoteNotFound)
	}
	if err != nil {
		return nil, oops.Code("NOTE_UPDATE_FAILED").
			With("note_id", id).
			Wrap(err)
	}
	return note, nil
}

// Delete removes an owned note.
func (r *NoteRepository) Delete(ctx context.Context, ownerID, id int64) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM notes WHERE id = $1 AND owner_id = $2
	`, id, ownerID)
	if err != nil {
		return oops.Code("NOTE_DELETE_FAILED").
			With("note_id", id).
			Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("NOTE_NOT_FOUND").
			With("note_id", id).
			With("owner_id", ownerID).
			Wrap(notes.ErrNoteNotFound)
	}
	return nil
}

func scanNote(row pgx.Row) (*notes.Note, error) {
	note := &notes.Note{}
	err := row.Scan(&note.ID, &note.Title, &note.Content, &note.OwnerID, &note.CreatedAt)
	if err != nil {
		return nil, err
	}
	return note, nil
}
