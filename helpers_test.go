package authclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/MrEthical07/authclient/store"
)

type recordedRequest struct {
	method      string
	path        string
	contentType string
	requestID   string
	body        []byte
	cookies     map[string]string
}

// backend records every request it receives before handing it to handle.
type backend struct {
	mu       sync.Mutex
	requests []recordedRequest
	handle   http.HandlerFunc
}

func newBackend(t *testing.T, handle http.HandlerFunc) (*httptest.Server, *backend) {
	t.Helper()
	b := &backend{handle: handle}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		rec := recordedRequest{
			method:      r.Method,
			path:        r.URL.Path,
			contentType: r.Header.Get("Content-Type"),
			requestID:   r.Header.Get("X-Request-ID"),
			body:        body,
			cookies:     map[string]string{},
		}
		for _, c := range r.Cookies() {
			rec.cookies[c.Name] = c.Value
		}
		b.mu.Lock()
		b.requests = append(b.requests, rec)
		b.mu.Unlock()

		if b.handle != nil {
			b.handle(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, b
}

func (b *backend) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.requests)
}

func (b *backend) last() recordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.requests[len(b.requests)-1]
}

// routes answers each path with a fixed status and body; unknown paths get 200.
func routes(m map[string]func(w http.ResponseWriter)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h, ok := m[r.URL.Path]; ok {
			h(w)
		}
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

var errDial = errors.New("dial tcp: connection refused")

func failingHTTPClient() *http.Client {
	return &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		return nil, errDial
	})}
}

type clientOption func(*Builder)

func newTestClient(t *testing.T, baseURL string, s store.Store, opts ...clientOption) (*Client, *ChannelNotifier) {
	t.Helper()
	cfg := DefaultConfig()
	cfg.BaseURL = baseURL

	notices := NewChannelNotifier(16)
	b := New().WithConfig(cfg).WithStore(s).WithNotifier(notices)
	for _, opt := range opts {
		opt(b)
	}

	c, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(c.Close)
	return c, notices
}

func nextNotice(t *testing.T, n *ChannelNotifier) Notice {
	t.Helper()
	select {
	case notice := <-n.Notices():
		return notice
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for notice")
		return Notice{}
	}
}

func expectNoNotice(t *testing.T, n *ChannelNotifier) {
	t.Helper()
	select {
	case notice := <-n.Notices():
		t.Fatalf("unexpected notice: %+v", notice)
	default:
	}
}

func withContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}
