// Copyright (c) 2026 TaskFlow. All rights reserved.

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/taskflowhq/taskflow/internal/platform/apperr"
	"github.com/taskflowhq/taskflow/internal/platform/constants"
	"github.com/taskflowhq/taskflow/internal/platform/sec"
	"github.com/taskflowhq/taskflow/pkg/uuidv7"
)

// TokenProvider defines the contract for issuing signed session tokens.
type TokenProvider interface {
	// IssueSessionToken creates a signed token encoding the user id and an
	// expiry of now + timeToLive.
	IssueSessionToken(userID string, timeToLive time.Duration) (string, error)
}

// Service implements the session issuer use cases and identity resolution.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, registration,
// or login logic must be reviewed carefully.
type Service struct {
	userRepository UserRepository
	identityCache  IdentityCache
	tokenProvider  TokenProvider
	logger         *slog.Logger
}

// NewService constructs a new auth [Service] with necessary dependencies.
func NewService(
	userRepo UserRepository,
	cache IdentityCache,
	tokenProv TokenProvider,
	logger *slog.Logger,
) *Service {
	return &Service{
		userRepository: userRepo,
		identityCache:  cache,
		tokenProvider:  tokenProv,
		logger:         logger,
	}
}

// RegisterInput holds the data required to enroll a new account.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// Register validates, hashes, and persists a brand new user account.
//
// # Business Rules
//   - Emails must be unique; duplicates fail with [apperr.Conflict].
//   - Passwords are hashed with bcrypt at cost 10.
//   - Accounts are created verified (current policy skips email confirmation).
//   - Registration never issues a session; clients log in separately.
func (service *Service) Register(ctx context.Context, input RegisterInput) (*User, error) {
	// ── 1. Uniqueness Check ───────────────────────────────────────────────

	// Verify email uniqueness. Return a client-safe Conflict error.
	_, err := service.userRepository.FindByEmail(ctx, input.Email)
	if err == nil {
		return nil, apperr.Conflict("User already exists")
	}

	// ── 2. Security ───────────────────────────────────────────────────────

	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// ── 3. Entity Construction ────────────────────────────────────────────

	user := &User{
		ID:           uuidv7.New(), // Time-sortable ID to prevent PG index fragmentation.
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hashedPassword,
		Verified:     true,
	}

	// ── 4. Persistence ────────────────────────────────────────────────────

	if err := service.userRepository.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// LoginInput defines credentials for a password authentication attempt.
type LoginInput struct {
	Email    string
	Password string
}

// Session represents a successfully established user session.
type Session struct {
	Token string
	User  *sec.Identity
}

// Login validates password credentials and issues a session token.
//
// # Flow
//  1. Lookup the account by email.
//  2. Reject unverified accounts.
//  3. Verify the password against the stored bcrypt hash. Accounts without a
//     password hash (federation-only) always fail this step.
//  4. Issue a signed 30-day session token.
//
// The same generic message covers unknown email, missing hash, and mismatch
// to prevent account enumeration.
func (service *Service) Login(ctx context.Context, input LoginInput) (*Session, error) {
	// ── 1. Fetch Account ──────────────────────────────────────────────────

	user, err := service.userRepository.FindByEmail(ctx, input.Email)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid email or password")
	}

	// ── 2. Verification Status ────────────────────────────────────────────

	if !user.Verified {
		return nil, apperr.Unauthorized("Account not verified. Please contact support.")
	}

	// ── 3. Credential Check ───────────────────────────────────────────────

	// Bcrypt comparison is constant-time; the missing-hash case short-circuits
	// but reveals nothing the generic message doesn't already cover.
	if !user.HasPassword() || !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid email or password")
	}

	// ── 4. Session Issuance ───────────────────────────────────────────────

	return service.issueSession(user)
}

// GoogleInput carries the federated identity asserted by the client-side
// Google sign-in exchange.
type GoogleInput struct {
	Email    string
	Username string
	GoogleID string
}

// GoogleLogin authenticates via a federated Google identity, matched to a
// local account by email.
//
// # Flow
//   - Existing account lacking a Google id: attach it. Password hash and
//     verification flag are untouched, and the cached projection is dropped.
//   - Unknown email: create a verified, password-less account.
//   - Either way the resolved account must be verified (unreachable under
//     current policy since both creation paths force verified=true, but
//     checked for defense in depth).
func (service *Service) GoogleLogin(ctx context.Context, input GoogleInput) (*Session, error) {
	user, err := service.userRepository.FindByEmail(ctx, input.Email)

	switch {
	case err == nil:
		// ── Existing account: attach the federated id if missing ─────────
		if user.GoogleID == "" {
			if err := service.userRepository.AttachGoogleID(ctx, user.ID, input.GoogleID); err != nil {
				return nil, err
			}
			user.GoogleID = input.GoogleID

			// The account changed; a stale projection must not outlive it.
			if cerr := service.identityCache.Delete(ctx, user.ID); cerr != nil {
				service.logger.Warn("identity_cache_invalidate_failed",
					slog.String("user_id", user.ID), slog.Any("error", cerr))
			}
		}

	case apperr.IsNotFound(err):
		// ── Unknown email: first federated login creates the account ─────
		user = &User{
			ID:       uuidv7.New(),
			Username: input.Username,
			Email:    input.Email,
			GoogleID: input.GoogleID,
			Verified: true, // Auto verify social logins.
		}
		if err := service.userRepository.Create(ctx, user); err != nil {
			return nil, err
		}

	default:
		return nil, err
	}

	if !user.Verified {
		return nil, apperr.Unauthorized("Account not verified.")
	}

	return service.issueSession(user)
}

// Profile returns the public projection for an authenticated user id.
func (service *Service) Profile(ctx context.Context, userID string) (*sec.Identity, error) {
	return service.ResolveIdentity(ctx, userID)
}

// ResolveIdentity maps a verified session token's user id to a live public
// projection. It implements [middleware.Resolver].
//
// The Redis cache is read through first; on a miss or any cache error the
// primary database is consulted and the cache repopulated. Cache failures are
// never surfaced to the caller — correctness relies only on PostgreSQL.
func (service *Service) ResolveIdentity(ctx context.Context, userID string) (*sec.Identity, error) {
	if identity, err := service.identityCache.Get(ctx, userID); err == nil {
		return identity, nil
	}

	user, err := service.userRepository.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	identity := user.Public()
	if cerr := service.identityCache.Set(ctx, identity, constants.IdentityCacheTTL); cerr != nil {
		service.logger.Warn("identity_cache_set_failed",
			slog.String("user_id", userID), slog.Any("error", cerr))
	}

	return identity, nil
}

// issueSession signs a 30-day token for the account and bundles it with the
// public projection.
func (service *Service) issueSession(user *User) (*Session, error) {
	token, err := service.tokenProvider.IssueSessionToken(user.ID, constants.SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_issue_failed: %w", err)
	}

	return &Session{Token: token, User: user.Public()}, nil
}
