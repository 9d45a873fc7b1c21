// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quillstash Contributors

// Package auth provides the credential and token-lifecycle core of Quillstash.
//
// # Domain Types
//
// Account is the single identity record. Accounts are created either by
// password registration or by the first Google login; provider-created
// accounts carry no password hash, permanently.
//
// # Components
//
//   - PasswordHasher / Argon2idHasher - one-way password hashing
//   - TokenCodec - signs and verifies access and refresh JWTs with
//     independent secrets and expiries
//   - IdentityVerifier / GoogleVerifier - third-party identity-token
//     verification and authorization-code exchange
//   - AccountRepository - persistence interface, implemented in the
//     postgres subpackage
//   - Service - orchestrates registration, login, provider login and
//     refresh-token rotation
//   - Authenticate - request-time bearer credential verification
//
// Revocation is rotation: each login overwrites the account's stored refresh
// token, and Refresh only honors a token that exactly matches the stored
// value. There is no blacklist and no token family tracking.
package auth
