// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quillstash Contributors

package auth_test

import (
	"context"
	"sync"

	"github.com/quillstash/quillstash/internal/auth"
)

// fakeAccountRepo is a map-backed auth.AccountRepository with injectable
// error fields for behavior injection.
type fakeAccountRepo struct {
	mu       sync.Mutex
	accounts map[int64]*auth.Account
	nextID   int64

	createErr error
	getErr    error
	setErr    error

	// missEmailOnce makes the next GetByEmail miss, simulating an account
	// inserted concurrently between lookup and create.
	missEmailOnce bool
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[int64]*auth.Account), nextID: 1}
}

func (f *fakeAccountRepo) Create(_ context.Context, account *auth.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
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
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.missEmailOnce {
		f.missEmailOnce = false
		return nil, auth.ErrNotFound
	}
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
	if f.getErr != nil {
		return nil, f.getErr
	}
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
	if f.setErr != nil {
		return f.setErr
	}
	account, ok := f.accounts[id]
	if !ok {
		return auth.ErrNotFound
	}
	account.RefreshToken = &token
	return nil
}

// fakeIdentityVerifier maps raw tokens to profiles; unknown tokens fail the
// way the real verifier does.
type fakeIdentityVerifier struct {
	authURL     string
	codes       map[string]string                // code -> raw ID token
	profiles    map[string]auth.IdentityProfile  // raw ID token -> profile
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
