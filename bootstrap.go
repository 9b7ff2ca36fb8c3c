package authclient

import (
	"context"
	"net/http"
)

// Bootstrap requests a CSRF token with GET /csrf. On 200 the token arrives as a
// cookie in the store; Bootstrap never writes it. Failures are reported through
// the Notifier and the returned error. There is no retry.
func (c *Client) Bootstrap(ctx context.Context) error {
	ctx, span := c.startSpan(ctx, OpBootstrap)

	res, err := c.send(ctx, http.MethodGet, c.csrfURL, nil)
	switch {
	case err != nil:
		err = c.unavailable(ctx, OpBootstrap, err)
	case res.status != http.StatusOK:
		err = c.reject(ctx, OpBootstrap, res)
	default:
		if _, ok := c.store.Get(c.cfg.Cookies.CSRF); !ok {
			c.logger.WithField("cookie", c.cfg.Cookies.CSRF).Warn("csrf response did not leave a readable token")
		}
	}

	c.record(ctx, span, OpBootstrap, res, err)
	return err
}

// StartBootstrap runs Bootstrap on its own goroutine and returns immediately.
// The channel receives Bootstrap's result and is then closed. Callers that only
// render may ignore it.
func (c *Client) StartBootstrap(ctx context.Context) <-chan error {
	done := make(chan error, 1)
	go func() {
		defer close(done)
		done <- c.Bootstrap(ctx)
	}()
	return done
}
