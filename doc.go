// Package authclient provides the client side of a cookie-based login session: CSRF
// bootstrap, credential submission, logged-in state tracking, and logout.
//
// A [Client] talks to a backend exposing GET /csrf, POST /login and POST /logout. Its
// HTTP cookie jar is the session [store.Store], so the CSRF token set by the server is
// read back from the same place the client writes the logged-in marker. Clients are
// built once through [Builder.Build] and are safe for concurrent use afterwards.
//
// # Session lifecycle
//
// The initial state comes from the logged-in marker cookie with no network call.
// [Client.StartBootstrap] fetches a CSRF token in the background. [Client.Login] moves
// LoggedOut to LoggedIn on a 200 response only. [Client.Logout] always tears the local
// session down, whatever the server answers.
//
// # Architecture boundaries
//
// authclient is the public surface. It exposes [Client], [Builder], [Config], the
// [StateContainer], notices and the error types. Cookie storage and persistence live in
// the store package; rendering decisions live in the view package.
//
// # What this package must NOT do
//
//   - Retry a failed request on its own.
//   - Log, audit, or persist credentials.
//   - Mutate cookies or state before the response (or failure) of the request that
//     justifies the change has been observed.
package authclient
