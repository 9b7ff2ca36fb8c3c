// Package view decides and renders what a user sees for a session state.
//
// [Decide] is the pure render decision. [Shell] is a text front end that binds the
// login form and the logout action to a [Controller] and redraws on every state
// change.
package view

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/MrEthical07/authclient"
)

// Screen is the top-level view for a session state.
type Screen uint8

const (
	// ScreenLogin is the login form shown while LoggedOut.
	ScreenLogin Screen = iota
	// ScreenDashboard is the authenticated view shown while LoggedIn.
	ScreenDashboard
)

func (s Screen) String() string {
	if s == ScreenDashboard {
		return "dashboard"
	}
	return "login"
}

const (
	DashboardTitle = "User Management Dashboard"
	LoginTitle     = "Sign Into Your Account"
	LoginAction    = "Login to my Dashboard"
	LogoutAction   = "Logout"
)

// Decide maps a session state to the screen to show.
func Decide(s authclient.SessionState) Screen {
	if s.IsLoggedIn {
		return ScreenDashboard
	}
	return ScreenLogin
}

// Controller is the part of *authclient.Client the shell drives.
type Controller interface {
	State() authclient.SessionState
	Subscribe(fn func(authclient.SessionState)) func()
	Login(ctx context.Context, email, password string) error
	Logout(ctx context.Context) error
}

// Shell renders screens as text.
type Shell struct {
	ctrl Controller

	mu  sync.Mutex
	out io.Writer
}

func NewShell(ctrl Controller, out io.Writer) *Shell {
	return &Shell{ctrl: ctrl, out: out}
}

// Render draws the screen for the controller's current state.
func (s *Shell) Render() error {
	return s.render(s.ctrl.State())
}

func (s *Shell) render(state authclient.SessionState) error {
	var b strings.Builder
	switch Decide(state) {
	case ScreenDashboard:
		fmt.Fprintf(&b, "== %s ==\n", DashboardTitle)
		fmt.Fprintf(&b, "[ %s ]\n", LogoutAction)
	default:
		fmt.Fprintf(&b, "== %s ==\n", LoginTitle)
		b.WriteString("Email address: ____\n")
		b.WriteString("Password:      ____\n")
		fmt.Fprintf(&b, "[ %s ]\n", LoginAction)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := io.WriteString(s.out, b.String())
	return err
}

// SubmitLogin is the login form's submit action. Failures have already been
// shown through the client's notifier; the error is returned for callers that
// need it.
func (s *Shell) SubmitLogin(ctx context.Context, email, password string) error {
	return s.ctrl.Login(ctx, email, password)
}

// ClickLogout is the dashboard's logout action.
func (s *Shell) ClickLogout(ctx context.Context) error {
	return s.ctrl.Logout(ctx)
}

// Watch redraws after every state change until stop is called.
func (s *Shell) Watch() (stop func()) {
	return s.ctrl.Subscribe(func(state authclient.SessionState) {
		_ = s.render(state)
	})
}
