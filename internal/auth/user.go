// Copyright (c) 2026 TaskFlow. All rights reserved.

// Package auth implements user accounts and the cookie session flow:
// registration, password login, federated Google login, and the identity
// resolution behind the session-verifier middleware.
//
// # Architecture
//
// The entity and service layers in this package have no knowledge of HTTP or
// SQL. Persistence goes through the [UserRepository] and [IdentityCache]
// interfaces; delivery lives in http.go.
package auth

import (
	"time"

	"github.com/taskflowhq/taskflow/internal/platform/sec"
)

// User represents a registered account.
//
// # Rules
//   - Email is unique and identifies at most one account.
//   - PasswordHash is empty for federation-only accounts.
//   - GoogleID is unique when present and empty for password-only accounts.
//   - Every account carries at least one authentication method
//     (password hash or Google id); the schema enforces this too.
//   - Verified is forced to true on both creation paths under current policy.
type User struct {
	ID           string    `json:"_id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Explicitly omitted from JSON for security.
	GoogleID     string    `json:"-"`
	Verified     bool      `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// HasPassword reports whether the account can authenticate with a password.
func (user *User) HasPassword() bool {
	return user.PasswordHash != ""
}

// Public returns the projection of the account that is safe to hand to
// clients and to cache: id, username, and email only.
func (user *User) Public() *sec.Identity {
	return &sec.Identity{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	}
}
