// Copyright (c) 2026 TaskFlow. All rights reserved.

package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskflowhq/taskflow/internal/platform/apperr"
	"github.com/taskflowhq/taskflow/internal/platform/dberr"
)

// PostgresUserRepository implements the UserRepository interface using pgx.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// Create persists a new user record into the users.account table.
func (repository *PostgresUserRepository) Create(ctx context.Context, user *User) error {
	const query = `
		INSERT INTO users.account (
			id, username, email, passwordhash, googleid, isverified, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := repository.pool.Exec(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		nullableText(user.PasswordHash),
		nullableText(user.GoogleID),
		user.Verified,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		return dberr.Wrap(err, "User")
	}

	return nil
}

// FindByEmail retrieves a user record by their unique email address.
//
// # Returns
//
// Returns [*User] if found, or [apperr.NotFound] if no account exists.
func (repository *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	const query = `
		SELECT id, username, email, passwordhash, googleid, isverified, createdat, updatedat
		FROM users.account
		WHERE email = $1`

	return repository.scanOne(repository.pool.QueryRow(ctx, query, email))
}

// FindByID retrieves a user record by their unique ID.
func (repository *PostgresUserRepository) FindByID(ctx context.Context, id string) (*User, error) {
	const query = `
		SELECT id, username, email, passwordhash, googleid, isverified, createdat, updatedat
		FROM users.account
		WHERE id = $1`

	return repository.scanOne(repository.pool.QueryRow(ctx, query, id))
}

// AttachGoogleID records a federated identity on an existing account.
// Password hash and verification flag are deliberately not touched.
func (repository *PostgresUserRepository) AttachGoogleID(ctx context.Context, userID, googleID string) error {
	const query = `
		UPDATE users.account
		SET googleid = $2, updatedat = $3
		WHERE id = $1`

	tag, err := repository.pool.Exec(ctx, query, userID, googleID, time.Now())
	if err != nil {
		return dberr.Wrap(err, "User")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}

	return nil
}

// scanOne maps a single account row onto the entity, translating the
// nullable credential columns.
func (repository *PostgresUserRepository) scanOne(row pgx.Row) (*User, error) {
	user := &User{}
	var passwordHash, googleID sql.NullString

	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&passwordHash,
		&googleID,
		&user.Verified,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_repo_scan_failed: %w", err)
	}

	user.PasswordHash = passwordHash.String
	user.GoogleID = googleID.String

	return user, nil
}

// nullableText maps an empty string to SQL NULL so the partial unique index
// on googleid and the auth-method CHECK constraint behave correctly.
func nullableText(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}
