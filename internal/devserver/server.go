package devserver

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/MrEthical07/authclient/internal/rate"
)

const (
	csrfCookieName       = "CSRF"
	credentialCookieName = "JWT"
	csrfTokenLength      = 128
)

// Config defines the development backend.
type Config struct {
	// Users maps email to plaintext password. Passwords are hashed in New.
	Users map[string]string
	// SigningKey signs credential tokens. Empty generates a random 32-byte key.
	SigningKey []byte
	// TokenTTL defaults to 15 minutes.
	TokenTTL time.Duration
	// Issuer defaults to "iot-dash".
	Issuer string
	// SecureCookies marks CSRF and JWT cookies Secure. Leave false for plain-HTTP tests.
	SecureCookies bool
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
	// LoginLimiter throttles failed logins per email. Nil disables throttling.
	LoginLimiter *rate.Limiter
	Logger       *logrus.Entry
}

// Server implements the backend routes.
type Server struct {
	cfg    Config
	users  *userDirectory
	tokens *tokenManager
	logger *logrus.Entry
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	CSRF     string `json:"csrf"`
}

var securityHeaders = map[string]string{
	"Strict-Transport-Security": "max-age=63072000; includeSubDomains",
	"Content-Security-Policy":   "default-src 'self'",
	"X-Frame-Options":           "DENY",
	"X-Content-Type-Options":    "nosniff",
	"Cache-Control":             "no-store",
}

// New hashes the configured users and prepares the token manager.
func New(cfg Config) (*Server, error) {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 15 * time.Minute
	}
	if cfg.Issuer == "" {
		cfg.Issuer = "iot-dash"
	}
	if len(cfg.SigningKey) == 0 {
		key := make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generate signing key: %w", err)
		}
		cfg.SigningKey = key
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}

	users := newUserDirectory(cfg.BcryptCost)
	for email, password := range cfg.Users {
		if err := users.add(email, password); err != nil {
			return nil, fmt.Errorf("hash password for %s: %w", email, err)
		}
	}

	return &Server{
		cfg:    cfg,
		users:  users,
		tokens: newTokenManager(cfg.SigningKey, cfg.Issuer, cfg.TokenTTL),
		logger: logger.WithField("component", "devserver"),
	}, nil
}

// Handler returns the mux serving /csrf, /login and /logout.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/csrf", s.csrfHandler)
	mux.HandleFunc("/login", s.loginHandler)
	mux.HandleFunc("/logout", s.logoutHandler)
	return withSecurityHeaders(mux)
}

// Revoked reports whether a credential token has been logged out.
func (s *Server) Revoked(token string) bool {
	_, err := s.tokens.parse(token)
	return errors.Is(err, ErrTokenRevoked)
}

func withSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for k, v := range securityHeaders {
			w.Header().Set(k, v)
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) csrfHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not supported", http.StatusMethodNotAllowed)
		return
	}

	token, err := randomToken(csrfTokenLength)
	if err != nil {
		s.logger.WithError(err).Error("csrf token generation failed")
		http.Error(w, "", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     "/",
		Secure:   s.cfg.SecureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}

func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not supported", http.StatusMethodNotAllowed)
		return
	}

	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if !s.validCSRF(w, r, creds.CSRF) {
		return
	}

	email := normalizeEmail(creds.Email)
	if !s.allowLogin(r.Context(), email) {
		http.Error(w, "Too many login attempts", http.StatusTooManyRequests)
		return
	}

	if !s.users.verify(creds.Email, creds.Password) {
		s.logger.Info("login rejected")
		s.recordLogin(r.Context(), email, false)
		http.Error(w, "Email and Password do not match", http.StatusUnauthorized)
		return
	}
	s.recordLogin(r.Context(), email, true)

	token, exp, err := s.tokens.issue(email)
	if err != nil {
		s.logger.WithError(err).Error("credential issue failed")
		http.Error(w, "", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     credentialCookieName,
		Value:    token,
		Path:     "/",
		Expires:  exp,
		Secure:   s.cfg.SecureCookies,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// allowLogin fails open when Redis is down so the backend stays usable.
func (s *Server) allowLogin(ctx context.Context, email string) bool {
	if s.cfg.LoginLimiter == nil {
		return true
	}
	err := s.cfg.LoginLimiter.Check(ctx, email)
	switch {
	case err == nil:
		return true
	case errors.Is(err, rate.ErrRateLimited):
		s.logger.Info("login throttled")
		return false
	default:
		s.logger.WithError(err).Warn("login throttle check failed")
		return true
	}
}

func (s *Server) recordLogin(ctx context.Context, email string, ok bool) {
	if s.cfg.LoginLimiter == nil {
		return
	}
	var err error
	if ok {
		err = s.cfg.LoginLimiter.Reset(ctx, email)
	} else {
		err = s.cfg.LoginLimiter.Increment(ctx, email)
	}
	if err != nil {
		s.logger.WithError(err).Warn("login throttle update failed")
	}
}

func (s *Server) logoutHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not supported", http.StatusMethodNotAllowed)
		return
	}

	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if !s.validCSRF(w, r, creds.CSRF) {
		return
	}

	cookie, err := r.Cookie(credentialCookieName)
	if err != nil {
		http.Error(w, "Unauthorized Request", http.StatusUnauthorized)
		return
	}
	if err := s.tokens.revoke(cookie.Value); err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
}

// validCSRF compares the CSRF cookie with the token echoed in the body and writes
// the error response when they differ.
func (s *Server) validCSRF(w http.ResponseWriter, r *http.Request, echoed string) bool {
	cookie, err := r.Cookie(csrfCookieName)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return false
	}
	if cookie.Value == "" || cookie.Value != echoed {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return false
	}
	return true
}

func randomToken(n int) (string, error) {
	raw := make([]byte, n)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw)[:n], nil
}
