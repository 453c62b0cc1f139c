// Copyright (c) 2026 TaskFlow. All rights reserved.

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, session parameters, and cross-cutting keys that
are shared between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Security: Session cookie configuration and token lifetime.
  - Storage: Database schema names and Redis key prefixes.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "taskflow-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Authentication

const (
	// SessionIssuer is the standard 'iss' claim in session tokens.
	SessionIssuer = "taskflow.app"

	// SessionCookieName is the name of the cookie carrying the signed session token.
	// The original deployment shipped the token under "jwt"; the name is part of
	// the wire contract with existing clients.
	SessionCookieName = "jwt"

	// SessionTTL is the lifetime of an issued session token and its cookie.
	SessionTTL = 30 * 24 * time.Hour

	// IdentityCacheTTL bounds how stale a cached user projection may get before
	// the session verifier falls back to PostgreSQL.
	IdentityCacheTTL = 5 * time.Minute
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
)

// # JSON Field Identifiers

const (
	FieldMessage = "message"
	FieldID      = "id"
	FieldStatus  = "status"
)

// # Database Schemas

const (
	SchemaCore  = "core"
	SchemaUsers = "users"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	RedisPrefixUser = "auth:user:"
)

// # Keep-Alive

const (
	// DefaultKeepAliveInterval matches the original deployment's cron cadence,
	// chosen to beat the hosting provider's 15-minute idle spin-down.
	DefaultKeepAliveInterval = 8 * time.Minute
)
