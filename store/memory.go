package store

import (
	"net/http"
	"net/url"
	"sort"
	"sync"
	"time"
)

type memoryCookie struct {
	value    string
	httpOnly bool
}

// MemoryStore is an in-memory CookieStore scoped to a single origin.
//
// It ignores the URL passed to SetCookies and Cookies, which makes it suitable as
// the jar of a client that only ever talks to one backend.
type MemoryStore struct {
	mu      sync.RWMutex
	cookies map[string]memoryCookie
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{cookies: make(map[string]memoryCookie)}
}

func (m *MemoryStore) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.cookies[key]
	if !ok || c.httpOnly {
		return "", false
	}
	return c.value, true
}

func (m *MemoryStore) Set(key, value string) {
	m.mu.Lock()
	m.cookies[key] = memoryCookie{value: value}
	m.mu.Unlock()
}

func (m *MemoryStore) Remove(key string) {
	m.mu.Lock()
	delete(m.cookies, key)
	m.mu.Unlock()
}

func (m *MemoryStore) Present(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.cookies[name]
	return ok
}

// SetCookies implements http.CookieJar.
func (m *MemoryStore) SetCookies(_ *url.URL, cookies []*http.Cookie) {
	now := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range cookies {
		if c == nil || c.Name == "" {
			continue
		}
		if c.MaxAge < 0 || (!c.Expires.IsZero() && !c.Expires.After(now)) {
			delete(m.cookies, c.Name)
			continue
		}
		m.cookies[c.Name] = memoryCookie{value: c.Value, httpOnly: c.HttpOnly}
	}
}

// Cookies implements http.CookieJar. Cookies are returned in name order.
func (m *MemoryStore) Cookies(_ *url.URL) []*http.Cookie {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.cookies))
	for name := range m.cookies {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]*http.Cookie, 0, len(names))
	for _, name := range names {
		out = append(out, &http.Cookie{Name: name, Value: m.cookies[name].value})
	}
	return out
}
