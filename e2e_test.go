package authclient

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/MrEthical07/authclient/internal/devserver"
	"github.com/MrEthical07/authclient/store"
	"golang.org/x/crypto/bcrypt"
)

func newDevBackend(t *testing.T) (*devserver.Server, *httptest.Server) {
	t.Helper()
	dev, err := devserver.New(devserver.Config{
		Users:      map[string]string{"user@gmail.com": "S3cure3Pa$$"},
		BcryptCost: bcrypt.MinCost,
	})
	if err != nil {
		t.Fatalf("devserver.New failed: %v", err)
	}
	srv := httptest.NewServer(dev.Handler())
	t.Cleanup(srv.Close)
	return dev, srv
}

type capturingPersister struct {
	cookies []store.PersistedCookie
}

func (p *capturingPersister) Load(context.Context) ([]store.PersistedCookie, error) {
	return append([]store.PersistedCookie(nil), p.cookies...), nil
}

func (p *capturingPersister) Save(_ context.Context, cookies []store.PersistedCookie) error {
	p.cookies = append([]store.PersistedCookie(nil), cookies...)
	return nil
}

func credentialValue(cookies []store.PersistedCookie) string {
	for _, c := range cookies {
		if c.Name == "JWT" {
			return c.Value
		}
	}
	return ""
}

func TestEndToEndSessionAgainstDevServer(t *testing.T) {
	dev, srv := newDevBackend(t)
	persister := &capturingPersister{}
	ctx := withContext(t)

	jar, err := store.NewJar(ctx, srv.URL, store.JarOptions{Persister: persister})
	if err != nil {
		t.Fatalf("NewJar failed: %v", err)
	}
	c, notices := newTestClient(t, srv.URL, jar)

	if err := <-c.StartBootstrap(ctx); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}

	err = c.Login(ctx, "user@gmail.com", "wrong")
	var rejected *RejectedError
	if !errors.As(err, &rejected) || rejected.Message != "Email and Password do not match" {
		t.Fatalf("expected credential rejection, got %v", err)
	}
	nextNotice(t, notices)

	if err := c.Login(ctx, "user@gmail.com", "S3cure3Pa$$"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if _, ok := jar.Get("JWT"); ok {
		t.Fatal("credential cookie must not be script-readable")
	}
	token := credentialValue(jar.Snapshot())
	if token == "" {
		t.Fatal("expected credential cookie in jar")
	}

	// A new client over a restored jar is a page reload.
	reloadedJar, err := store.NewJar(ctx, srv.URL, store.JarOptions{Persister: persister})
	if err != nil {
		t.Fatalf("NewJar failed: %v", err)
	}
	reloaded, _ := newTestClient(t, srv.URL, reloadedJar)
	if !reloaded.State().IsLoggedIn {
		t.Fatal("expected LoggedIn after reload")
	}

	if err := reloaded.Logout(ctx); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if reloaded.State().IsLoggedIn || reloadedJar.Present("JWT") {
		t.Fatal("expected local teardown")
	}
	if !dev.Revoked(token) {
		t.Fatal("expected server to blocklist the credential")
	}
}

func TestEndToEndLoginWithoutBootstrapIsRejected(t *testing.T) {
	_, srv := newDevBackend(t)
	ctx := withContext(t)

	jar, err := store.NewJar(ctx, srv.URL, store.JarOptions{})
	if err != nil {
		t.Fatalf("NewJar failed: %v", err)
	}
	c, notices := newTestClient(t, srv.URL, jar)

	if err := c.Login(ctx, "user@gmail.com", "S3cure3Pa$$"); !errors.Is(err, ErrServerRejected) {
		t.Fatalf("expected rejection without CSRF token, got %v", err)
	}
	if n := nextNotice(t, notices); n.Message != "Unauthorized" {
		t.Fatalf("unexpected notice %+v", n)
	}
	if c.State().IsLoggedIn {
		t.Fatal("expected LoggedOut")
	}
}
