// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quillstash Contributors

package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Default token lifetimes.
const (
	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// SigningContext configures one class of token: its HMAC secret and how long
// a freshly signed token stays valid.
type SigningContext struct {
	Secret []byte
	TTL    time.Duration
}

// AccessClaims are the claims embedded in an access token. Sub shadows the
// registered subject claim with a numeric account ID: a token whose sub is
// not a JSON number does not verify.
type AccessClaims struct {
	Sub   int64  `json:"sub"`
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// RefreshClaims are the claims embedded in a refresh token.
type RefreshClaims struct {
	Sub int64 `json:"sub"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies access and refresh tokens. The two signing
// contexts are independent: a refresh token never verifies as an access
// token and vice versa.
type TokenCodec struct {
	access  SigningContext
	refresh SigningContext
	now     func() time.Time
}

// NewTokenCodec creates a TokenCodec from two signing contexts. Zero TTLs
// fall back to the defaults.
func NewTokenCodec(access, refresh SigningContext) (*TokenCodec, error) {
	if len(access.Secret) == 0 {
		return nil, oops.Code("TOKEN_CONFIG_INVALID").Errorf("access token secret is required")
	}
	if len(refresh.Secret) == 0 {
		return nil, oops.Code("TOKEN_CONFIG_INVALID").Errorf("refresh token secret is required")
	}
	if access.TTL <= 0 {
		access.TTL = DefaultAccessTokenTTL
	}
	if refresh.TTL <= 0 {
		refresh.TTL = DefaultRefreshTokenTTL
	}
	return &TokenCodec{access: access, refresh: refresh, now: time.Now}, nil
}

// WithClock replaces the codec's time source. Used by tests to sign and
// verify tokens at deterministic instants.
func (c *TokenCodec) WithClock(now func() time.Time) *TokenCodec {
	clone := *c
	clone.now = now
	return &clone
}

// SignAccess signs a short-lived access token for the account.
func (c *TokenCodec) SignAccess(accountID int64, email string) (string, error) {
	now := c.now()
	claims := AccessClaims{
		Sub:   accountID,
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.access.TTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.access.Secret)
	if err != nil {
		return "", oops.Code("TOKEN_SIGN_FAILED").With("kind", "access").Wrap(err)
	}
	return signed, nil
}

// SignRefresh signs a long-lived refresh token for the account. Each token
// carries a fresh ULID in the jti claim: rotation-by-overwrite only revokes
// the previous token if consecutive logins never sign identical bytes, and
// HS256 over second-granularity timestamps alone would.
func (c *TokenCodec) SignRefresh(accountID int64) (string, error) {
	now := c.now()
	claims := RefreshClaims{
		Sub: accountID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        ulid.Make().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.refresh.TTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.refresh.Secret)
	if err != nil {
		return "", oops.Code("TOKEN_SIGN_FAILED").With("kind", "refresh").Wrap(err)
	}
	return signed, nil
}

// VerifyAccess verifies an access token and returns its claims. Any failure
// (bad signature, malformed payload, expiry, non-numeric subject) yields
// ErrInvalidToken; the codec never panics on attacker-controlled input.
func (c *TokenCodec) VerifyAccess(token string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := c.parse(token, claims, c.access.Secret); err != nil {
		return nil, err
	}
	if claims.Sub <= 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// VerifyRefresh verifies a refresh token and returns its claims. Failure
// semantics match VerifyAccess.
func (c *TokenCodec) VerifyRefresh(token string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := c.parse(token, claims, c.refresh.Secret); err != nil {
		return nil, err
	}
	if claims.Sub <= 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (c *TokenCodec) parse(token string, claims jwt.Claims, secret []byte) error {
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return ErrInvalidToken
	}
	return nil
}
