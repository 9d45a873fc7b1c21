// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quillstash Contributors

package httpapi

import (
	"context"
	"strings"
	"sync"

	"github.com/quillstash/quillstash/internal/auth"
	"github.com/quillstash/quillstash/internal/notes"
)

// fakeAccountRepo is a map-backed auth.AccountRepository.
type fakeAccountRepo struct {
	mu       sync.Mutex
	accounts map[int64]*auth.Account
	nextID   int64
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[int64]*auth.Account), nextID: 1}
}

func (f *fakeAccountRepo) Create(_ context.Context, account *auth.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.accounts {
		if existing.Email == account.Email {
			return auth.ErrEmailTaken
		}
	}
	account.ID = f.nextID
	f.nextID++
	copied := *account
	f.accounts[account.ID] = &copied
	return nil
}

func (f *fakeAccountRepo) GetByEmail(_ context.Context, email string) (*auth.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, account := range f.accounts {
		if account.Email == email {
			copied := *account
			return &copied, nil
		}
	}
	return nil, auth.ErrNotFound
}

func (f *fakeAccountRepo) GetByID(_ context.Context, id int64) (*auth.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	copied := *account
	return &copied, nil
}

func (f *fakeAccountRepo) SetRefreshToken(_ context.Context, id int64, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[id]
	if !ok {
		return auth.ErrNotFound
	}
	account.RefreshToken = &token
	return nil
}

// fakeNoteRepo is a map-backed notes.Repository.
type fakeNoteRepo struct {
	mu     sync.Mutex
	notes  map[int64]*notes.Note
	nextID int64
}

func newFakeNoteRepo() *fakeNoteRepo {
	return &fakeNoteRepo{notes: make(map[int64]*notes.Note), nextID: 1}
}

func (f *fakeNoteRepo) Create(_ context.Context, note *notes.Note) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	note.ID = f.nextID
	f.nextID++
	copied := *note
	f.notes[note.ID] = &copied
	return nil
}

func (f *fakeNoteRepo) GetByID(_ context.Context, ownerID, id int64) (*notes.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	note, ok := f.notes[id]
	if !ok || note.OwnerID != ownerID {
		return nil, notes.ErrNoteNotFound
	}
	copied := *note
	return &copied, nil
}

func (f *fakeNoteRepo) List(_ context.Context, ownerID int64, params notes.ListParams) ([]notes.Note, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matched []notes.Note
	for id := int64(1); id < f.nextID; id++ {
		note, ok := f.notes[id]
		if !ok || note.OwnerID != ownerID {
			continue
		}
		if params.Query != "" && !strings.Contains(strings.ToLower(note.Title), strings.ToLower(params.Query)) {
			continue
		}
		matched = append(matched, *note)
	}
	total := int64(len(matched))

	offset := params.Offset()
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := offset + params.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (f *fakeNoteRepo) Update(_ context.Context, ownerID, id int64, params notes.UpdateParams) (*notes.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	note, ok := f.notes[id]
	if !ok || note.OwnerID != ownerID {
		return nil, notes.ErrNoteNotFound
	}
	if params.Title != nil {
		note.Title = *params.Title
	}
	if params.Content != nil {
		note.Content = *params.Content
	}
	copied := *note
	return &copied, nil
}

func (f *fakeNoteRepo) Delete(_ context.Context, ownerID, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	note, ok := f.notes[id]
	if !ok || note.OwnerID != ownerID {
		return notes.ErrNoteNotFound
	}
	delete(f.notes, id)
	return nil
}

// fakeIdentityVerifier maps codes and raw tokens to canned profiles.
type fakeIdentityVerifier struct {
	authURL     string
	codes       map[string]string               // code -> raw ID token
	profiles    map[string]auth.IdentityProfile // raw ID token -> profile
	exchangeErr error
}

func newFakeIdentityVerifier() *fakeIdentityVerifier {
	return &fakeIdentityVerifier{
		authURL:  "https://provider.example.com/consent?client_id=test",
		codes:    make(map[string]string),
		profiles: make(map[string]auth.IdentityProfile),
	}
}

func (f *fakeIdentityVerifier) AuthCodeURL(string) string { return f.authURL }

func (f *fakeIdentityVerifier) Exchange(_ context.Context, code string) (string, error) {
	if f.exchangeErr != nil {
		return "", f.exchangeErr
	}
	raw, ok := f.codes[code]
	if !ok {
		return "", auth.ErrExchangeFailed
	}
	return raw, nil
}

func (f *fakeIdentityVerifier) VerifyIDToken(_ context.Context, rawIDToken string) (*auth.IdentityProfile, error) {
	profile, ok := f.profiles[rawIDToken]
	if !ok {
		return nil, auth.ErrInvalidIDToken
	}
	return &profile, nil
}
