// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quillstash Contributors

package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"strings"

	"github.com/samber/oops"
)

// dummyPasswordHash is used when a login targets a nonexistent account or a
// provider-only account. Verification still runs against it so response time
// does not reveal whether the email exists.
//
// This is NOT a real credential - it's a fake hash that will never match any password.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// TokenPair is the credential pair returned by login operations.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// ProviderLogin is the result of an identity-provider login: the token pair
// plus the public projection of the resolved account.
type ProviderLogin struct {
	Account PublicAccount `json:"user"`
	TokenPair
}

// Service orchestrates registration, password login, provider login and
// refresh-token rotation. All identity state lives in the account store;
// the service itself holds no mutable state and is safe for concurrent use.
type Service struct {
	accounts AccountRepository
	hasher   PasswordHasher
	codec    *TokenCodec
	identity IdentityVerifier // nil when no provider is configured
	logger   *slog.Logger
}

// NewService creates an auth Service. The identity verifier may be nil when
// no provider is configured; provider logins then fail cleanly.
func NewService(accounts AccountRepository, hasher PasswordHasher, codec *TokenCodec, identity IdentityVerifier, logger *slog.Logger) (*Service, error) {
	if accounts == nil {
		return nil, oops.Code("AUTH_SERVICE_CONFIG").Errorf("account repository is required")
	}
	if hasher == nil {
		return nil, oops.Code("AUTH_SERVICE_CONFIG").Errorf("password hasher is required")
	}
	if codec == nil {
		return nil, oops.Code("AUTH_SERVICE_CONFIG").Errorf("token codec is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		accounts: accounts,
		hasher:   hasher,
		codec:    codec,
		identity: identity,
		logger:   logger,
	}, nil
}

// IdentityProviderEnabled reports whether provider login is configured.
func (s *Service) IdentityProviderEnabled() bool {
	return s.identity != nil
}

// AuthCodeURL builds the provider consent URL for the web redirect flow.
func (s *Service) AuthCodeURL(state string) (string, error) {
	if s.identity == nil {
		return "", oops.Code("AUTH_PROVIDER_DISABLED").Errorf("identity provider is not configured")
	}
	return s.identity.AuthCodeURL(state), nil
}

// Register creates a password-based account and returns its public
// projection. A duplicate email fails with ErrEmailTaken, whether detected
// by the pre-check or by the store's uniqueness constraint under a race.
func (s *Service) Register(ctx context.Context, name, email, password string) (*PublicAccount, error) {
	if err := ValidateRegistration(name, email, password); err != nil {
		return nil, err
	}

	_, err := s.accounts.GetByEmail(ctx, email)
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "check existing account").
			Wrap(err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	account := &Account{Name: name, Email: email, PasswordHash: &hash}
	if err := s.accounts.Create(ctx, account); err != nil {
		// Lost the duplicate-insert race: same outcome as the pre-check.
		if errors.Is(err, ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "create account").
			Wrap(err)
	}

	s.logger.Info("account registered", "account_id", account.ID)
	projection := account.Public()
	return &projection, nil
}

// Login authenticates by email and password and issues a fresh token pair,
// rotating the stored refresh token. Nonexistent email, provider-only
// account and wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	account, lookupErr := s.accounts.GetByEmail(ctx, email)

	// Pick the hash to verify against (real or dummy) before verifying, so
	// the work done is the same on every path.
	targetHash := dummyPasswordHash
	usable := false
	if lookupErr != nil {
		if !errors.Is(lookupErr, ErrNotFound) {
			return nil, oops.Code("AUTH_LOGIN_FAILED").
				With("operation", "get account by email").
				Wrap(lookupErr)
		}
	} else if account.PasswordHash != nil {
		targetHash = *account.PasswordHash
		usable = true
	}

	valid, verifyErr := s.hasher.Verify(password, targetHash)
	if verifyErr != nil || !usable || !valid {
		return nil, ErrInvalidCredentials
	}

	return s.issueTokens(ctx, account)
}

// LoginWithCode handles the web redirect flow: exchange the authorization
// code, verify the returned identity token, then log in.
func (s *Service) LoginWithCode(ctx context.Context, code string) (*ProviderLogin, error) {
	if s.identity == nil {
		return nil, oops.Code("AUTH_PROVIDER_DISABLED").Errorf("identity provider is not configured")
	}
	rawIDToken, err := s.identity.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}
	return s.loginWithProfile(ctx, rawIDToken)
}

// LoginWithIDToken handles the native/SPA flow: the client submits the
// provider's identity token directly.
func (s *Service) LoginWithIDToken(ctx context.Context, rawIDToken string) (*ProviderLogin, error) {
	if s.identity == nil {
		return nil, oops.Code("AUTH_PROVIDER_DISABLED").Errorf("identity provider is not configured")
	}
	return s.loginWithProfile(ctx, rawIDToken)
}

// loginWithProfile is the shared tail of both provider flows: verify the
// identity token, resolve the account, issue and persist tokens.
func (s *Service) loginWithProfile(ctx context.Context, rawIDToken string) (*ProviderLogin, error) {
	profile, err := s.identity.VerifyIDToken(ctx, rawIDToken)
	if err != nil {
		return nil, err
	}

	account, err := s.resolveProviderAccount(ctx, profile)
	if err != nil {
		return nil, err
	}

	pair, err := s.issueTokens(ctx, account)
	if err != nil {
		return nil, err
	}

	return &ProviderLogin{Account: account.Public(), TokenPair: *pair}, nil
}

// resolveProviderAccount finds the account for a verified profile, creating
// it on first login. Provider-created accounts never get a password hash.
func (s *Service) resolveProviderAccount(ctx context.Context, profile *IdentityProfile) (*Account, error) {
	account, err := s.accounts.GetByEmail(ctx, profile.Email)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, oops.Code("AUTH_PROVIDER_LOGIN_FAILED").
			With("operation", "get account by email").
			Wrap(err)
	}

	name := profile.Name
	if name == "" {
		name = emailLocalPart(profile.Email)
	}

	account = &Account{Name: name, Email: profile.Email}
	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			// Lost a concurrent first-login race; the winner's account is ours.
			return s.accounts.GetByEmail(ctx, profile.Email)
		}
		return nil, oops.Code("AUTH_PROVIDER_LOGIN_FAILED").
			With("operation", "create account").
			Wrap(err)
	}

	s.logger.Info("account created from identity provider", "account_id", account.ID)
	return account, nil
}

// Refresh verifies a refresh token and issues a new access token. The
// refresh token itself is not rotated here; rotation happens on login.
// A token superseded by a later login fails with ErrTokenRevoked even
// before its embedded expiry.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.codec.VerifyRefresh(refreshToken)
	if err != nil {
		return "", ErrInvalidToken
	}

	account, err := s.accounts.GetByID(ctx, claims.Sub)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", ErrTokenRevoked
		}
		return "", oops.Code("AUTH_REFRESH_FAILED").
			With("operation", "get account by id").
			Wrap(err)
	}

	// Single-active-session: only the exact stored token is usable.
	if account.RefreshToken == nil ||
		subtle.ConstantTimeCompare([]byte(*account.RefreshToken), []byte(refreshToken)) != 1 {
		return "", ErrTokenRevoked
	}

	accessToken, err := s.codec.SignAccess(account.ID, account.Email)
	if err != nil {
		return "", oops.Code("AUTH_REFRESH_FAILED").
			With("operation", "sign access token").
			Wrap(err)
	}
	return accessToken, nil
}

// issueTokens signs a fresh token pair and persists the refresh token on the
// account, invalidating the previously stored one.
func (s *Service) issueTokens(ctx context.Context, account *Account) (*TokenPair, error) {
	accessToken, err := s.codec.SignAccess(account.ID, account.Email)
	if err != nil {
		return nil, oops.Code("AUTH_ISSUE_FAILED").
			With("operation", "sign access token").
			Wrap(err)
	}
	refreshToken, err := s.codec.SignRefresh(account.ID)
	if err != nil {
		return nil, oops.Code("AUTH_ISSUE_FAILED").
			With("operation", "sign refresh token").
			Wrap(err)
	}

	if err := s.accounts.SetRefreshToken(ctx, account.ID, refreshToken); err != nil {
		return nil, oops.Code("AUTH_ISSUE_FAILED").
			With("operation", "persist refresh token").
			With("account_id", account.ID).
			Wrap(err)
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func emailLocalPart(email string) string {
	if at := strings.IndexByte(email, '@'); at > 0 {
		return email[:at]
	}
	return email
}
