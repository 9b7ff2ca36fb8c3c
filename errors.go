package authclient

import (
	"errors"
	"fmt"
)

var (
	// ErrServerRejected matches every *RejectedError.
	ErrServerRejected = errors.New("server rejected request")
	// ErrServerUnavailable matches every *UnavailableError.
	ErrServerUnavailable = errors.New("server unavailable")
	// ErrAlreadyLoggedIn is returned by Login when the session is already LoggedIn.
	ErrAlreadyLoggedIn = errors.New("already logged in")
	// ErrLoginInProgress is returned by Login while another Login on the same client is pending.
	ErrLoginInProgress = errors.New("login already in progress")
	// ErrStoreRequired is returned by Build when no session store was supplied.
	ErrStoreRequired = errors.New("session store required")
	// ErrBuilderUsed is returned by Build on its second call.
	ErrBuilderUsed = errors.New("builder already used")
)

// Operation names one of the three backend calls.
type Operation string

const (
	// OpBootstrap is GET /csrf.
	OpBootstrap Operation = "csrf_bootstrap"
	// OpLogin is POST /login.
	OpLogin Operation = "login"
	// OpLogout is POST /logout.
	OpLogout Operation = "logout"
)

// RejectedError reports a non-200 response. Message is the notice text: the body
// without trailing line breaks, or the status text when the body is empty. Body is
// the response body exactly as received, up to Transport.MaxErrorBodyBytes.
type RejectedError struct {
	Operation Operation
	Status    int
	Message   string
	Body      string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("%s rejected with status %d: %s", e.Operation, e.Status, e.Message)
}

// Is reports whether target is ErrServerRejected.
func (e *RejectedError) Is(target error) bool {
	return target == ErrServerRejected
}

// UnavailableError reports that no response was received: connection failure,
// timeout, cancellation, or an unreadable error body.
type UnavailableError struct {
	Operation Operation
	Err       error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Operation, ErrServerUnavailable, e.Err)
}

// Is reports whether target is ErrServerUnavailable.
func (e *UnavailableError) Is(target error) bool {
	return target == ErrServerUnavailable
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}
