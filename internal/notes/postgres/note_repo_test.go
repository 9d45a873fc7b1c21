// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quillstash Contributors

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillstash/quillstash/internal/notes"
)

var noteColumns = []string{"id", "title", "content", "owner_id", "created_at"}

func strPtr(s string) *string { return &s }

func TestNoteRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	created := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`INSERT INTO notes`).
		WithArgs("Groceries", "milk, eggs", int64(7)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(3), created))

	repo := NewNoteRepository(mock)
	note := &notes.Note{Title: "Groceries", Content: "milk, eggs", OwnerID: 7}
	require.NoError(t, repo.Create(context.Background(), note))

	assert.Equal(t, int64(3), note.ID)
	assert.Equal(t, created, note.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNoteRepository_GetByID(t *testing.T) {
	created := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		ownerID   int64
		id        int64
		setupMock func(mock pgxmock.PgxPoolIface)
		want      *notes.Note
		wantErr   error
	}{
		{
			name:    "found",
			ownerID: 7,
			id:      3,
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT id, title, content, owner_id, created_at`).
					WithArgs(int64(3), int64(7)).
					WillReturnRows(pgxmock.NewRows(noteColumns).
						AddRow(int64(3), "Groceries", "milk, eggs", int64(7), created))
			},
			want: &notes.Note{ID: 3, Title: "Groceries", Content: "milk, eggs", OwnerID: 7, CreatedAt: created},
		},
		{
			name:    "owner scope makes foreign note absent",
			ownerID: 8,
			id:      3,
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT id, title, content, owner_id, created_at`).
					WithArgs(int64(3), int64(8)).
					WillReturnError(pgx.ErrNoRows)
			},
			wantErr: notes.ErrNoteNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.setupMock(mock)

			repo := NewNoteRepository(mock)
			got, err := repo.GetByID(context.Background(), tt.ownerID, tt.id)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestNoteRepository_List(t *testing.T) {
	created := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

	t.Run("without search", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SELECT count\(\*\) FROM notes`).
			WithArgs(int64(7)).
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(2)))
		mock.ExpectQuery(`SELECT id, title, content, owner_id, created_at`).
			WithArgs(int64(7), 10, 0).
			WillReturnRows(pgxmock.NewRows(noteColumns).
				AddRow(int64(1), "first", "a", int64(7), created).
				AddRow(int64(2), "second", "b", int64(7), created))

		repo := NewNoteRepository(mock)
		rows, total, err := repo.List(context.Background(), 7, notes.ListParams{Page: 1, Limit: 10})
		require.NoError(t, err)

		assert.Equal(t, int64(2), total)
		require.Len(t, rows, 2)
		assert.Equal(t, "first", rows[0].Title)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("search adds ILIKE filter to both queries", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SELECT count\(\*\) FROM notes`).
			WithArgs(int64(7), "%groc%").
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))
		mock.ExpectQuery(`title ILIKE`).
			WithArgs(int64(7), "%groc%", 10, 0).
			WillReturnRows(pgxmock.NewRows(noteColumns).
				AddRow(int64(1), "Groceries", "a", int64(7), created))

		repo := NewNoteRepository(mock)
		rows, total, err := repo.List(context.Background(), 7, notes.ListParams{Page: 1, Limit: 10, Query: "groc"})
		require.NoError(t, err)

		assert.Equal(t, int64(1), total)
		require.Len(t, rows, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("second page offsets", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SELECT count\(\*\) FROM notes`).
			WithArgs(int64(7)).
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(12)))
		mock.ExpectQuery(`LIMIT \$2 OFFSET \$3`).
			WithArgs(int64(7), 10, 10).
			WillReturnRows(pgxmock.NewRows(noteColumns))

		repo := NewNoteRepository(mock)
		rows, total, err := repo.List(context.Background(), 7, notes.ListParams{Page: 2, Limit: 10})
		require.NoError(t, err)

		assert.Equal(t, int64(12), total)
		assert.Empty(t, rows)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("count failure stops before the page query", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SELECT count\(\*\) FROM notes`).
			WithArgs(int64(7)).
			WillReturnError(errors.New("connection refused"))

		repo := NewNoteRepository(mock)
		_, _, err = repo.List(context.Background(), 7, notes.ListParams{Page: 1, Limit: 10})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestNoteRepository_Update(t *testing.T) {
	created := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

	t.Run("title only", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`UPDATE notes SET title = \$3`).
			WithArgs(int64(3), int64(7), "renamed").
			WillReturnRows(pgxmock.NewRows(noteColumns).
				AddRow(int64(3), "renamed", "content", int64(7), created))

		repo := NewNoteRepository(mock)
		note, err := repo.Update(context.Background(), 7, 3, notes.UpdateParams{Title: strPtr("renamed")})
		require.NoError(t, err)

		assert.Equal(t, "renamed", note.Title)
		assert.Equal(t, "content", note.Content)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("both fields", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`UPDATE notes SET title = \$3, content = \$4`).
			WithArgs(int64(3), int64(7), "new title", "new content").
			WillReturnRows(pgxmock.NewRows(noteColumns).
				AddRow(int64(3), "new title", "new content", int64(7), created))

		repo := NewNoteRepository(mock)
		note, err := repo.Update(context.Background(), 7, 3, notes.UpdateParams{
			Title:   strPtr("new title"),
			Content: strPtr("new content"),
		})
		require.NoError(t, err)

		assert.Equal(t, "new title", note.Title)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("foreign or absent note", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`UPDATE notes SET`).
			WithArgs(int64(99), int64(7), "renamed").
			WillReturnError(pgx.ErrNoRows)

		repo := NewNoteRepository(mock)
		_, err = repo.Update(context.Background(), 7, 99, notes.UpdateParams{Title: strPtr("renamed")})
		assert.ErrorIs(t, err, notes.ErrNoteNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestNoteRepository_Delete(t *testing.T) {
	t.Run("deletes owned note", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(`DELETE FROM notes`).
			WithArgs(int64(3), int64(7)).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		repo := NewNoteRepository(mock)
		require.NoError(t, repo.Delete(context.Background(), 7, 3))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("foreign or absent note", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(`DELETE FROM notes`).
			WithArgs(int64(3), int64(8)).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		repo := NewNoteRepository(mock)
		err = repo.Delete(context.Background(), 8, 3)
		assert.ErrorIs(t, err, notes.ErrNoteNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
