// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quillstash Contributors

package auth

import "strings"

const bearerPrefix = "Bearer "

// Identity is the verified caller attached to a request for the duration of
// that request only. It is never persisted and never reused across requests.
type Identity struct {
	ID    int64
	Email string
}

// Authenticate verifies an Authorization header value of the exact shape
// "Bearer <token>". Any other shape fails with ErrMissingToken. Everything
// after the prefix is handed to the codec verbatim, so extra whitespace
// there fails as ErrInvalidToken, like any other token the codec rejects.
func Authenticate(headerValue string, codec *TokenCodec) (*Identity, error) {
	token, ok := strings.CutPrefix(headerValue, bearerPrefix)
	if !ok || token == "" {
		return nil, ErrMissingToken
	}

	claims, err := codec.VerifyAccess(token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	return &Identity{ID: claims.Sub, Email: claims.Email}, nil
}
