package store

import (
	"context"
	"errors"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/publicsuffix"
)

const defaultSaveTimeout = 5 * time.Second

// JarOptions configures a Jar.
type JarOptions struct {
	// Persister mirrors the jar. Nil keeps the jar in memory only.
	Persister Persister
	// Logger receives persistence warnings. Nil uses logrus' standard logger.
	Logger *logrus.Entry
	// SaveTimeout bounds each Persister.Save call. Zero means five seconds.
	SaveTimeout time.Duration
}

// Jar is a CookieStore backed by net/http/cookiejar and scoped to one origin.
//
// The same value is installed as the http.Client jar, so cookies set by the server
// are visible through Get unless they were marked HttpOnly.
type Jar struct {
	origin *url.URL
	inner  *cookiejar.Jar

	persister   Persister
	logger      *logrus.Entry
	saveTimeout time.Duration

	mu      sync.Mutex
	records map[string]PersistedCookie

	saveMu sync.Mutex
}

// NewJar creates a jar for origin and replays any snapshot held by opts.Persister.
//
// A failing or corrupt snapshot is logged and the jar starts empty, which callers
// observe as a logged-out session.
func NewJar(ctx context.Context, origin string, opts JarOptions) (*Jar, error) {
	u, err := url.Parse(origin)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errors.New("jar origin must be an absolute URL")
	}

	inner, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	timeout := opts.SaveTimeout
	if timeout <= 0 {
		timeout = defaultSaveTimeout
	}

	j := &Jar{
		origin:      &url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/"},
		inner:       inner,
		persister:   opts.Persister,
		logger:      logger.WithField("origin", u.Scheme+"://"+u.Host),
		saveTimeout: timeout,
		records:     make(map[string]PersistedCookie),
	}

	if j.persister != nil {
		j.restore(ctx)
	}
	return j, nil
}

func (j *Jar) restore(ctx context.Context) {
	saved, err := j.persister.Load(ctx)
	if err != nil {
		j.logger.WithError(err).Warn("cookie snapshot not restored")
		return
	}

	live := liveCookies(saved, time.Now())
	if len(live) == 0 {
		return
	}

	cookies := make([]*http.Cookie, 0, len(live))
	j.mu.Lock()
	for _, c := range live {
		j.records[c.Name] = c
		cookies = append(cookies, c.httpCookie())
	}
	j.mu.Unlock()

	j.inner.SetCookies(j.origin, cookies)
	j.logger.WithField("cookies", len(live)).Debug("cookie snapshot restored")
}

// SetCookies implements http.CookieJar.
func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.inner.SetCookies(u, cookies)
	if !j.sameOrigin(u) {
		return
	}

	now := time.Now()
	j.mu.Lock()
	for _, c := range cookies {
		if c == nil || c.Name == "" {
			continue
		}
		rec := recordFor(c, u, now)
		if c.MaxAge < 0 || rec.Expired(now) {
			delete(j.records, c.Name)
			continue
		}
		j.records[c.Name] = rec
	}
	j.mu.Unlock()

	j.persist()
}

// Cookies implements http.CookieJar.
func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	return j.inner.Cookies(u)
}

func (j *Jar) Get(key string) (string, bool) {
	j.mu.Lock()
	rec, known := j.records[key]
	j.mu.Unlock()
	if known && rec.HTTPOnly {
		return "", false
	}

	for _, c := range j.inner.Cookies(j.origin) {
		if c.Name == key {
			return c.Value, true
		}
	}
	return "", false
}

func (j *Jar) Set(key, value string) {
	j.inner.SetCookies(j.origin, []*http.Cookie{{Name: key, Value: value, Path: "/"}})

	j.mu.Lock()
	j.records[key] = PersistedCookie{Name: key, Value: value, Path: "/"}
	j.mu.Unlock()

	j.persist()
}

func (j *Jar) Remove(key string) {
	j.mu.Lock()
	rec, known := j.records[key]
	delete(j.records, key)
	j.mu.Unlock()

	path := "/"
	domain := ""
	if known {
		path = rec.Path
		domain = rec.Domain
	}
	j.inner.SetCookies(j.origin, []*http.Cookie{{Name: key, Path: path, Domain: domain, MaxAge: -1}})

	j.persist()
}

func (j *Jar) Present(name string) bool {
	for _, c := range j.inner.Cookies(j.origin) {
		if c.Name == name {
			return true
		}
	}
	return false
}

// Snapshot returns the live cookies the jar would persist, in name order.
func (j *Jar) Snapshot() []PersistedCookie {
	j.mu.Lock()
	out := make([]PersistedCookie, 0, len(j.records))
	for _, rec := range j.records {
		out = append(out, rec)
	}
	j.mu.Unlock()

	out = liveCookies(out, time.Now())
	sort.Slice(out, func(a, b int) bool { return out[a].Name < out[b].Name })
	return out
}

func (j *Jar) persist() {
	if j.persister == nil {
		return
	}

	// Snapshot and save under saveMu so concurrent mutations reach the backend in order.
	j.saveMu.Lock()
	defer j.saveMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), j.saveTimeout)
	defer cancel()

	if err := j.persister.Save(ctx, j.Snapshot()); err != nil {
		j.logger.WithError(err).Warn("cookie snapshot not saved")
	}
}

func (j *Jar) sameOrigin(u *url.URL) bool {
	return u != nil && strings.EqualFold(u.Hostname(), j.origin.Hostname())
}

func recordFor(c *http.Cookie, u *url.URL, now time.Time) PersistedCookie {
	rec := PersistedCookie{
		Name:     c.Name,
		Value:    c.Value,
		Path:     c.Path,
		Domain:   c.Domain,
		Expires:  c.Expires,
		Secure:   c.Secure,
		HTTPOnly: c.HttpOnly,
		SameSite: c.SameSite,
	}
	if rec.Path == "" || rec.Path[0] != '/' {
		rec.Path = defaultPath(u.Path)
	}
	if c.MaxAge > 0 {
		rec.Expires = now.Add(time.Duration(c.MaxAge) * time.Second)
	}
	return rec
}

// defaultPath follows RFC 6265 section 5.1.4, as net/http/cookiejar does.
func defaultPath(p string) string {
	if p == "" || p[0] != '/' {
		return "/"
	}
	i := strings.LastIndex(p, "/")
	if i == 0 {
		return "/"
	}
	return p[:i]
}
