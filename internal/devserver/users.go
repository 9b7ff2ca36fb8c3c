package devserver

import (
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// userDirectory maps lowercased emails to bcrypt hashes.
type userDirectory struct {
	mu     sync.RWMutex
	hashes map[string][]byte
	cost   int
}

func newUserDirectory(cost int) *userDirectory {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	return &userDirectory{hashes: make(map[string][]byte), cost: cost}
}

func (d *userDirectory) add(email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), d.cost)
	if err != nil {
		return err
	}
	d.mu.Lock()
	d.hashes[normalizeEmail(email)] = hash
	d.mu.Unlock()
	return nil
}

// verify reports whether password matches. Unknown emails are compared against a
// fixed hash so both failure paths cost one bcrypt comparison.
func (d *userDirectory) verify(email, password string) bool {
	d.mu.RLock()
	hash, ok := d.hashes[normalizeEmail(email)]
	d.mu.RUnlock()
	if !ok {
		hash = missingUserHash
	}
	err := bcrypt.CompareHashAndPassword(hash, []byte(password))
	return ok && err == nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// A well-formed cost-10 hash that no user password is expected to match.
var missingUserHash = []byte("$2a$10$cRmL5Rtm0bunl1uqYAP.8OfJE36RUkvMcX3.v0kJyY2JBhalX4KEG")
