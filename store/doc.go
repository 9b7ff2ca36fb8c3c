// Package store provides the cookie-backed session storage used by authclient.
//
// A [Store] is a flat string key/value view over the cookies of one origin. Reads of
// a missing or script-inaccessible (HttpOnly) cookie report absent; writes and
// removals never fail from the caller's point of view.
//
// # Implementations
//
//   - [Jar] is the production store. It is also the HTTP client's cookie jar, so
//     server Set-Cookie headers land in it directly, and it can mirror every change
//     to a [Persister] ([RedisPersister], [FilePersister]) so a session survives a
//     process restart.
//   - [MemoryStore] is an in-process fake for tests and embedders.
//   - [Disabled] models storage being turned off: every read is absent.
//
// # What this package must NOT do
//
//   - Import authclient (no upward imports).
//   - Interpret cookie values or make login decisions.
//   - Surface persistence errors to callers; they are logged and dropped.
package store
