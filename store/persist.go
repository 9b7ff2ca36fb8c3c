package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// snapshotVersion is the current on-disk/in-redis snapshot schema.
const snapshotVersion = 1

// ErrSnapshotCorrupt is returned by persisters when a stored snapshot cannot be decoded.
var ErrSnapshotCorrupt = errors.New("cookie snapshot corrupt")

// PersistedCookie is the durable form of one jar cookie.
type PersistedCookie struct {
	Name     string        `json:"name"`
	Value    string        `json:"value"`
	Path     string        `json:"path,omitempty"`
	Domain   string        `json:"domain,omitempty"`
	Expires  time.Time     `json:"expires,omitempty"`
	Secure   bool          `json:"secure,omitempty"`
	HTTPOnly bool          `json:"http_only,omitempty"`
	SameSite http.SameSite `json:"same_site,omitempty"`
}

// Expired reports whether the cookie has a fixed expiry at or before now.
// Session cookies (zero Expires) never expire here.
func (c PersistedCookie) Expired(now time.Time) bool {
	return !c.Expires.IsZero() && !c.Expires.After(now)
}

func (c PersistedCookie) httpCookie() *http.Cookie {
	return &http.Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Path:     c.Path,
		Domain:   c.Domain,
		Expires:  c.Expires,
		Secure:   c.Secure,
		HttpOnly: c.HTTPOnly,
		SameSite: c.SameSite,
	}
}

// Persister loads and saves full jar snapshots.
//
// Save replaces whatever was stored before. Load on an empty backend returns
// (nil, nil).
type Persister interface {
	Load(ctx context.Context) ([]PersistedCookie, error)
	Save(ctx context.Context, cookies []PersistedCookie) error
}

type snapshot struct {
	Version int               `json:"v"`
	Cookies []PersistedCookie `json:"cookies"`
}

func encodeSnapshot(cookies []PersistedCookie) ([]byte, error) {
	return json.Marshal(snapshot{Version: snapshotVersion, Cookies: cookies})
}

func decodeSnapshot(data []byte) ([]PersistedCookie, error) {
	var s snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSnapshotCorrupt, err)
	}
	if s.Version != snapshotVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrSnapshotCorrupt, s.Version)
	}
	return s.Cookies, nil
}

func liveCookies(in []PersistedCookie, now time.Time) []PersistedCookie {
	out := make([]PersistedCookie, 0, len(in))
	for _, c := range in {
		if c.Name == "" || c.Expired(now) {
			continue
		}
		out = append(out, c)
	}
	return out
}
