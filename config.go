package authclient

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config defines a public type used by authclient APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	// BaseURL is the backend origin, e.g. "https://localhost:9090".
	BaseURL   string
	Endpoints EndpointConfig
	Cookies   CookieConfig
	Transport TransportConfig
	Messages  MessageConfig
	// SingleFlight rejects a Login while another is pending and folds concurrent
	// Logout calls into one request. When false, overlapping calls race and the last
	// response to arrive decides the state.
	SingleFlight bool
	Audit        AuditConfig
	Metrics      MetricsConfig
}

/*
====================================
ENDPOINT CONFIG
====================================
*/

// EndpointConfig defines a public type used by authclient APIs.
//
// Paths are joined to Config.BaseURL.
type EndpointConfig struct {
	CSRF   string
	Login  string
	Logout string
}

/*
====================================
COOKIE CONFIG
====================================
*/

// CookieConfig names the session cookies.
type CookieConfig struct {
	// LoggedIn is written by the client with the value "true" after a successful login.
	LoggedIn string
	// CSRF is set by the server on GET /csrf and echoed in login/logout bodies.
	CSRF string
	// Credential is the server's HttpOnly credential cookie, cleared by name on logout.
	Credential string
}

/*
====================================
TRANSPORT CONFIG
====================================
*/

// TransportConfig defines a public type used by authclient APIs.
type TransportConfig struct {
	// RequestTimeout bounds each request. Zero leaves requests bounded only by ctx.
	RequestTimeout time.Duration
	// MaxErrorBodyBytes caps how much of a non-200 body becomes the notice text.
	MaxErrorBodyBytes int64
	UserAgent         string
	RequestIDHeader   string
}

/*
====================================
MESSAGE CONFIG
====================================
*/

// MessageConfig holds the fixed user-facing texts.
type MessageConfig struct {
	// Unavailable is shown when no response was received. The underlying error is
	// never shown to the user.
	Unavailable string
}

/*
====================================
AUDIT / METRICS CONFIG
====================================
*/

// AuditConfig defines a public type used by authclient APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by authclient APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

const loggedInValue = "true"

// DefaultConfig returns the configuration matching the reference backend: cookies
// CSRF, JWT and logged_in, endpoints /csrf, /login and /logout.
func DefaultConfig() Config {
	return Config{
		BaseURL: "https://localhost:9090",
		Endpoints: EndpointConfig{
			CSRF:   "/csrf",
			Login:  "/login",
			Logout: "/logout",
		},
		Cookies: CookieConfig{
			LoggedIn:   "logged_in",
			CSRF:       "CSRF",
			Credential: "JWT",
		},
		Transport: TransportConfig{
			MaxErrorBodyBytes: 64 << 10,
			UserAgent:         "authclient/1",
			RequestIDHeader:   "X-Request-ID",
		},
		Messages: MessageConfig{
			Unavailable: "Error: Server Unavailable. Please try again",
		},
		SingleFlight: true,
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: false,
		},
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("BaseURL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("BaseURL must use http or https, got %q", c.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("BaseURL must include a host, got %q", c.BaseURL)
	}

	endpoints := []struct{ name, path string }{
		{"Endpoints.CSRF", c.Endpoints.CSRF},
		{"Endpoints.Login", c.Endpoints.Login},
		{"Endpoints.Logout", c.Endpoints.Logout},
	}
	for _, ep := range endpoints {
		if !strings.HasPrefix(ep.path, "/") {
			return fmt.Errorf("%s must start with '/', got %q", ep.name, ep.path)
		}
	}

	names := []string{c.Cookies.LoggedIn, c.Cookies.CSRF, c.Cookies.Credential}
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if name == "" || strings.ContainsAny(name, " \t;,=\"") {
			return fmt.Errorf("invalid cookie name %q", name)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("cookie name %q used twice", name)
		}
		seen[name] = struct{}{}
	}

	if c.Transport.RequestTimeout < 0 {
		return errors.New("Transport.RequestTimeout must be >= 0")
	}
	if c.Transport.MaxErrorBodyBytes <= 0 {
		return errors.New("Transport.MaxErrorBodyBytes must be > 0")
	}
	if c.Messages.Unavailable == "" {
		return errors.New("Messages.Unavailable must not be empty")
	}
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit.BufferSize must be > 0 when audit is enabled")
	}
	return nil
}

func (c Config) endpoint(path string) string {
	return strings.TrimRight(c.BaseURL, "/") + path
}
