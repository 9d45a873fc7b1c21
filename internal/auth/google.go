// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quillstash Contributors

package auth

import (
	"context"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/samber/oops"
	"golang.org/x/oauth2"
)

// GoogleIssuer is the OIDC issuer for Google identity tokens.
const GoogleIssuer = "https://accounts.google.com"

// providerTimeout bounds every network call to the identity provider.
// A provider that hangs surfaces as its own failure kind, not a stuck request.
const providerTimeout = 10 * time.Second

// IdentityProfile is the verified identity extracted from a provider token.
type IdentityProfile struct {
	Email string
	Name  string
}

// IdentityVerifier abstracts the third-party identity provider. It is
// stateless and injectable so tests can substitute a fake.
type IdentityVerifier interface {
	// AuthCodeURL builds the consent URL for the web redirect flow.
	AuthCodeURL(state string) string

	// Exchange trades an authorization code for the provider's raw identity
	// token. Fails with ErrExchangeFailed when the provider returns no
	// identity token or the exchange itself fails.
	Exchange(ctx context.Context, code string) (string, error)

	// VerifyIDToken validates the identity token's signature and audience
	// and extracts the verified profile. Fails with ErrInvalidIDToken when
	// verification fails or the email claim is absent.
	VerifyIDToken(ctx context.Context, rawIDToken string) (*IdentityProfile, error)
}

// GoogleConfig configures the Google identity provider.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// GoogleVerifier implements IdentityVerifier against Google. Construct it
// once at startup; it is safe for concurrent use.
type GoogleVerifier struct {
	oauth    *oauth2.Config
	verifier *oidc.IDTokenVerifier
}

var _ IdentityVerifier = (*GoogleVerifier)(nil)

// NewGoogleVerifier discovers Google's OIDC endpoints and builds a verifier
// bound to the configured client ID.
func NewGoogleVerifier(ctx context.Context, cfg GoogleConfig) (*GoogleVerifier, error) {
	if cfg.ClientID == "" {
		return nil, oops.Code("GOOGLE_CONFIG_INVALID").Errorf("google client id is required")
	}

	ctx, cancel := context.WithTimeout(ctx, providerTimeout)
	defer cancel()

	provider, err := oidc.NewProvider(ctx, GoogleIssuer)
	if err != nil {
		return nil, oops.Code("GOOGLE_DISCOVERY_FAILED").
			With("issuer", GoogleIssuer).
			Wrap(err)
	}

	return &GoogleVerifier{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
		},
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
	}, nil
}

// AuthCodeURL builds the consent URL requesting offline access and the
// identity scopes.
func (g *GoogleVerifier) AuthCodeURL(state string) string {
	return g.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange trades an authorization code for Google's raw identity token.
func (g *GoogleVerifier) Exchange(ctx context.Context, code string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, providerTimeout)
	defer cancel()

	token, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return "", oops.Code("GOOGLE_EXCHANGE_FAILED").
			With("detail", err.Error()).
			Wrap(ErrExchangeFailed)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return "", oops.Code("GOOGLE_NO_ID_TOKEN").Wrap(ErrExchangeFailed)
	}
	return rawIDToken, nil
}

// googleIDClaims are the identity claims extracted from a Google ID token.
type googleIDClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// VerifyIDToken validates signature and audience against Google's published
// keys and the configured client ID, then extracts the profile.
func (g *GoogleVerifier) VerifyIDToken(ctx context.Context, rawIDToken string) (*IdentityProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, providerTimeout)
	defer cancel()

	idToken, err := g.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, oops.Code("GOOGLE_ID_TOKEN_INVALID").
			With("detail", err.Error()).
			Wrap(ErrInvalidIDToken)
	}

	var claims googleIDClaims
	if err := idToken.Claims(&claims); err != nil {
		return nil, oops.Code("GOOGLE_ID_TOKEN_INVALID").Wrap(ErrInvalidIDToken)
	}
	if claims.Email == "" {
		return nil, oops.Code("GOOGLE_EMAIL_MISSING").Wrap(ErrInvalidIDToken)
	}

	return &IdentityProfile{Email: claims.Email, Name: claims.Name}, nil
}
