package authclient

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MrEthical07/authclient/store"
)

func TestFullChannelNotifierDoesNotBlockOperations(t *testing.T) {
	notices := NewChannelNotifier(1)
	c, err := New().
		WithStore(store.NewMemoryStore()).
		WithHTTPClient(failingHTTPClient()).
		WithNotifier(notices).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer c.Close()

	if err := c.Login(context.Background(), "a@b.com", "pw"); !errors.Is(err, ErrServerUnavailable) {
		t.Fatalf("expected ErrServerUnavailable, got %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- c.Login(ctx, "a@b.com", "pw") }()

	select {
	case err := <-done:
		if !errors.Is(err, ErrServerUnavailable) {
			t.Fatalf("expected ErrServerUnavailable, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Login blocked on a full notifier")
	}

	if got := notices.Dropped(); got != 1 {
		t.Fatalf("expected 1 dropped notice, got %d", got)
	}
	if err := c.Login(context.Background(), "a@b.com", "pw"); errors.Is(err, ErrLoginInProgress) {
		t.Fatal("login guard must be released after each call")
	}
	if n := <-notices.Notices(); n.Kind != NoticeUnavailable {
		t.Fatalf("expected the first notice to be kept, got %+v", n)
	}
}

func TestChannelNotifierKeepsNoticesWithinBuffer(t *testing.T) {
	n := NewChannelNotifier(2)
	n.Notify(context.Background(), Notice{Message: "one"})
	n.Notify(context.Background(), Notice{Message: "two"})
	n.Notify(context.Background(), Notice{Message: "three"})

	if got := (<-n.Notices()).Message; got != "one" {
		t.Fatalf("expected first notice, got %q", got)
	}
	if got := (<-n.Notices()).Message; got != "two" {
		t.Fatalf("expected second notice, got %q", got)
	}
	if n.Dropped() != 1 {
		t.Fatalf("expected 1 dropped, got %d", n.Dropped())
	}
}
