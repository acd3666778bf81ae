// Package auth supplies the two facts the quote API needs about a caller:
// an opaque stable identity and whether the caller is an admin.
//
// Identity is an anonymous cookie session (alexedwards/scs backed by the
// application's SQLite database). The first request assigns a random
// visitor ID; likes are keyed on it, so no account is required to engage
// with the feed.
//
// Admin access is a bearer token checked against a bcrypt hash from the
// configuration. There are no user accounts and no login flow.
package auth
