// Package sessions issues, validates and revokes session tokens. A session
// is a database row referencing a principal plus a signed token carrying
// just enough to find that row again; no credential material ever enters
// the token.
package sessions

import "time"

// Session is one authenticated browsing context. PrincipalID references an
// identity, it does not own it: the identity may disappear underneath the
// session, which then resolves as invalid.
type Session struct {
	ID          string
	PrincipalID string
	CreatedAt   time.Time
	ExpiresAt   time.Time
}
