// Package rate provides a Redis-backed fixed-window counter used to throttle failed
// logins on the development backend.
//
// # Window semantics
//
// INCR plus EXPIRE on the first hit of a window. Keys are <prefix>:<identifier>; the
// development backend uses the prefix "dl" with the normalized email.
//
// # What this package must NOT do
//
//   - Decide which identifiers to throttle. Callers pass them in.
//   - Be imported by the client packages.
package rate
