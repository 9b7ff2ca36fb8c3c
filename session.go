package authclient

import (
	"context"
	"net/http"
)

const logoutFlightKey = "logout"

// Login submits credentials with the stored CSRF token. Only a 200 response moves
// the session to LoggedIn, after the logged-in marker has been written. Any other
// status returns *RejectedError and a transport failure returns *UnavailableError;
// both leave the state and the store untouched.
//
// Login refuses without a request when the session is already LoggedIn
// (ErrAlreadyLoggedIn) or, with SingleFlight, while another Login is pending
// (ErrLoginInProgress). Credentials are used for this request only.
func (c *Client) Login(ctx context.Context, email, password string) error {
	if c.state.Current().IsLoggedIn {
		c.metrics.Inc(MetricLoginSuppressed)
		return ErrAlreadyLoggedIn
	}
	if c.cfg.SingleFlight {
		if !c.loginBusy.CompareAndSwap(false, true) {
			c.metrics.Inc(MetricLoginSuppressed)
			return ErrLoginInProgress
		}
		defer c.loginBusy.Store(false)
	}

	ctx, span := c.startSpan(ctx, OpLogin)

	csrf, _ := c.store.Get(c.cfg.Cookies.CSRF)
	res, err := c.send(ctx, http.MethodPost, c.loginURL, loginRequest{
		Email:    email,
		Password: password,
		CSRF:     csrf,
	})
	switch {
	case err != nil:
		err = c.unavailable(ctx, OpLogin, err)
	case res.status != http.StatusOK:
		err = c.reject(ctx, OpLogin, res)
	default:
		c.store.Set(c.cfg.Cookies.LoggedIn, loggedInValue)
		c.setState(SessionState{IsLoggedIn: true})
	}

	c.record(ctx, span, OpLogin, res, err)
	return err
}

// Logout asks the server to end the session and then always clears the local
// session: the credential cookie and the logged-in marker are removed and the
// state becomes LoggedOut. A returned error is informational; the teardown has
// already happened.
//
// With SingleFlight, concurrent callers share one request and its result.
func (c *Client) Logout(ctx context.Context) error {
	if !c.cfg.SingleFlight {
		return c.logout(ctx)
	}

	_, err, shared := c.logoutGroup.Do(logoutFlightKey, func() (any, error) {
		return nil, c.logout(ctx)
	})
	if shared {
		c.metrics.Inc(MetricLogoutShared)
	}
	return err
}

func (c *Client) logout(ctx context.Context) error {
	ctx, span := c.startSpan(ctx, OpLogout)

	csrf, _ := c.store.Get(c.cfg.Cookies.CSRF)
	res, err := c.send(ctx, http.MethodPost, c.logoutURL, logoutRequest{CSRF: csrf})

	c.store.Remove(c.cfg.Cookies.Credential)
	c.store.Remove(c.cfg.Cookies.LoggedIn)
	c.setState(SessionState{})

	switch {
	case err != nil:
		err = c.unavailable(ctx, OpLogout, err)
	case res.status != http.StatusOK:
		err = c.reject(ctx, OpLogout, res)
	}

	c.record(ctx, span, OpLogout, res, err)
	return err
}
