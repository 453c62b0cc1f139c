// Copyright (c) 2026 TaskFlow. All rights reserved.

package sec

// Identity is the public projection of an authenticated user that travels
// through the request context after session verification.
//
// It deliberately excludes the password hash: downstream handlers only ever
// see the fields that are safe to echo back to clients.
type Identity struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}
