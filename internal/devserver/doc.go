// Package devserver is a development backend speaking the /csrf, /login and
// /logout protocol that authclient consumes.
//
// It keeps users in memory with bcrypt hashes, issues an HS256 JWT as an HttpOnly
// credential cookie, validates the double-submitted CSRF token, and blocklists
// tokens on logout until they expire. It backs the client's end-to-end tests and
// the `authclient dev-server` command.
//
// # What this package must NOT do
//
//   - Serve as production authentication.
//   - Import authclient (the client must work against any compatible backend).
package devserver
