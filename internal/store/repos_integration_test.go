// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quillstash Contributors

//go:build integration

package store_test

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/quillstash/quillstash/internal/auth"
	authpg "github.com/quillstash/quillstash/internal/auth/postgres"
	"github.com/quillstash/quillstash/internal/notes"
	notespg "github.com/quillstash/quillstash/internal/notes/postgres"
	"github.com/quillstash/quillstash/internal/store"
)

// setupPostgres starts a migrated PostgreSQL container and returns a
// connected pool plus a teardown func.
func setupPostgres() (*pgxpool.Pool, func(), error) {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("quillstash_test"),
		postgres.WithUsername("quillstash"),
		postgres.WithPassword("quillstash"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2)),
	)
	if err != nil {
		return nil, nil, err
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		container.Terminate(ctx)
		return nil, nil, err
	}

	migrator, err := store.NewMigrator(connStr)
	if err != nil {
		container.Terminate(ctx)
		return nil, nil, err
	}
	if err := migrator.Up(); err != nil {
		migrator.Close()
		container.Terminate(ctx)
		return nil, nil, err
	}
	migrator.Close()

	pool, err := store.Connect(ctx, connStr, nil)
	if err != nil {
		container.Terminate(ctx)
		return nil, nil, err
	}

	teardown := func() {
		pool.Close()
		container.Terminate(ctx)
	}
	return pool, teardown, nil
}

var _ = Describe("Repositories", Ordered, func() {
	var (
		ctx      context.Context
		pool     *pgxpool.Pool
		teardown func()
		accounts *authpg.AccountRepository
		noteRepo *notespg.NoteRepository
	)

	BeforeAll(func() {
		ctx = context.Background()
		var err error
		pool, teardown, err = setupPostgres()
		Expect(err).NotTo(HaveOccurred())
		accounts = authpg.NewAccountRepository(pool)
		noteRepo = notespg.NewNoteRepository(pool)
	})

	AfterAll(func() {
		teardown()
	})

	Describe("AccountRepository", func() {
		It("creates and retrieves an account", func() {
			hash := "$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA"
			account := &auth.Account{Name: "Ada", Email: "ada@example.com", PasswordHash: &hash}

			Expect(accounts.Create(ctx, account)).To(Succeed())
			Expect(account.ID).NotTo(BeZero())
			Expect(account.CreatedAt).NotTo(BeZero())

			got, err := accounts.GetByEmail(ctx, "ada@example.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal(account.ID))
			Expect(*got.PasswordHash).To(Equal(hash))
			Expect(got.RefreshToken).To(BeNil())
		})

		It("rejects a duplicate email", func() {
			dup := &auth.Account{Name: "Copy", Email: "ada@example.com"}
			err := accounts.Create(ctx, dup)
			Expect(err).To(MatchError(auth.ErrEmailTaken))
		})

		It("overwrites the refresh token", func() {
			account, err := accounts.GetByEmail(ctx, "ada@example.com")
			Expect(err).NotTo(HaveOccurred())

			Expect(accounts.SetRefreshToken(ctx, account.ID, "first")).To(Succeed())
			Expect(accounts.SetRefreshToken(ctx, account.ID, "second")).To(Succeed())

			got, err := accounts.GetByID(ctx, account.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(*got.RefreshToken).To(Equal("second"))
		})

		It("reports missing accounts", func() {
			_, err := accounts.GetByID(ctx, 999999)
			Expect(err).To(MatchError(auth.ErrNotFound))
		})
	})

	Describe("NoteRepository", func() {
		var ownerID int64

		BeforeAll(func() {
			owner := &auth.Account{Name: "Bea", Email: "bea@example.com"}
			Expect(accounts.Create(ctx, owner)).To(Succeed())
			ownerID = owner.ID
		})

		It("creates and lists owned notes with search", func() {
			for _, title := range []string{"Groceries", "Gift ideas", "Travel plans"} {
				note := &notes.Note{Title: title, Content: "content", OwnerID: ownerID}
				Expect(noteRepo.Create(ctx, note)).To(Succeed())
			}

			rows, total, err := noteRepo.List(ctx, ownerID, notes.ListParams{Page: 1, Limit: 10})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(3)))
			Expect(rows).To(HaveLen(3))

			rows, total, err = noteRepo.List(ctx, ownerID, notes.ListParams{Page: 1, Limit: 10, Query: "g"})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(2)), "ILIKE match is case-insensitive")
			Expect(rows).To(HaveLen(2))
		})

		It("scopes reads to the owner", func() {
			rows, _, err := noteRepo.List(ctx, ownerID, notes.ListParams{Page: 1, Limit: 1})
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).NotTo(BeEmpty())

			_, err = noteRepo.GetByID(ctx, 999999, rows[0].ID)
			Expect(err).To(MatchError(notes.ErrNoteNotFound))
		})

		It("cascades deletes from the owning account", func() {
			victim := &auth.Account{Name: "Gone", Email: "gone@example.com"}
			Expect(accounts.Create(ctx, victim)).To(Succeed())

			note := &notes.Note{Title: "doomed", Content: "content", OwnerID: victim.ID}
			Expect(noteRepo.Create(ctx, note)).To(Succeed())

			_, err := pool.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, victim.ID)
			Expect(err).NotTo(HaveOccurred())

			_, err = noteRepo.GetByID(ctx, victim.ID, note.ID)
			Expect(err).To(MatchError(notes.ErrNoteNotFound))
		})
	})
})
