package devserver

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrTokenRevoked is returned for a token that was logged out.
	ErrTokenRevoked = errors.New("token revoked")
	// ErrTokenInvalid covers malformed, expired, or foreign tokens.
	ErrTokenInvalid = errors.New("token invalid")
)

type credentialClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// tokenManager issues and verifies credential tokens and keeps the logout
// blocklist keyed by token ID.
type tokenManager struct {
	key    []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time

	mu        sync.Mutex
	blocklist map[string]time.Time
}

func newTokenManager(key []byte, issuer string, ttl time.Duration) *tokenManager {
	return &tokenManager{
		key:       key,
		issuer:    issuer,
		ttl:       ttl,
		now:       time.Now,
		blocklist: make(map[string]time.Time),
	}
}

func (m *tokenManager) issue(email string) (string, time.Time, error) {
	now := m.now().UTC()
	exp := now.Add(m.ttl)

	claims := credentialClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    m.issuer,
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign credential: %w", err)
	}
	return signed, exp, nil
}

func (m *tokenManager) parse(raw string) (*credentialClaims, error) {
	claims := &credentialClaims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (interface{}, error) { return m.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	m.mu.Lock()
	_, revoked := m.blocklist[claims.ID]
	m.mu.Unlock()
	if revoked {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

// revoke blocklists a valid token until its expiry.
func (m *tokenManager) revoke(raw string) error {
	claims, err := m.parse(raw)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweepLocked()
	m.blocklist[claims.ID] = claims.ExpiresAt.Time
	return nil
}

func (m *tokenManager) sweepLocked() {
	now := m.now()
	for id, exp := range m.blocklist {
		if !exp.After(now) {
			delete(m.blocklist, id)
		}
	}
}
