package store

import "net/http"

// Store is the script-visible view of the session cookies of one origin.
type Store interface {
	// Get returns the cookie value and true, or "" and false when the cookie is
	// absent, HttpOnly, or storage is unavailable.
	Get(key string) (string, bool)
	// Set writes a cookie at path "/" for the origin.
	Set(key, value string)
	// Remove deletes the cookie if present. HttpOnly cookies can be removed by name.
	Remove(key string)
}

// CookieStore is a Store that also serves as the HTTP client's cookie jar.
type CookieStore interface {
	Store
	http.CookieJar
	// Present reports whether a cookie with the given name exists, HttpOnly included.
	Present(name string) bool
}

// Disabled is a Store for environments where cookie storage is turned off.
// Reads are always absent and writes are dropped.
type Disabled struct{}

// Get always reports absent.
func (Disabled) Get(string) (string, bool) { return "", false }

// Set is a no-op.
func (Disabled) Set(string, string) {}

// Remove is a no-op.
func (Disabled) Remove(string) {}
