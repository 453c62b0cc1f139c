// Copyright (c) 2026 TaskFlow. All rights reserved.

package auth

import (
	"context"
	"time"

	"github.com/taskflowhq/taskflow/internal/platform/sec"
)

// UserRepository defines the data access contract for user accounts.
//
// # Implementations
//
// The canonical implementation is PostgreSQL (store_postgres.go). Tests use
// in-memory fakes.
type UserRepository interface {
	// FindByID returns the account with the given ID.
	//
	// Returns [apperr.NotFound] if the account does not exist.
	FindByID(ctx context.Context, id string) (*User, error)

	// FindByEmail returns the account with the given email.
	//
	// Returns [apperr.NotFound] if no user is registered with this email.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// Create persists a brand-new user account.
	//
	// Returns [apperr.Conflict] if the unique email constraint fails.
	Create(ctx context.Context, user *User) error

	// AttachGoogleID records a federated identity on an existing account.
	// It touches nothing else: password hash and verification flag stay as-is.
	AttachGoogleID(ctx context.Context, userID, googleID string) error
}

// IdentityCache defines the volatile store for public user projections.
//
// The session verifier reads through this cache on every authenticated
// request; entries expire on their own and are invalidated explicitly when
// the underlying account changes.
type IdentityCache interface {
	// Get returns the cached projection for a user id.
	//
	// Returns [apperr.NotFound] if the entry is absent or expired.
	Get(ctx context.Context, userID string) (*sec.Identity, error)

	// Set stores a projection with the given TTL.
	Set(ctx context.Context, identity *sec.Identity, ttl time.Duration) error

	// Delete removes a cached projection.
	Delete(ctx context.Context, userID string) error
}
