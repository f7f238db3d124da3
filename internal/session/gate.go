package session

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/fmuoria/resume-admin/internal/models"
)

// State of the session gate
type State int

const (
	// Unchecked is the state before the stored token has been looked at
	Unchecked State = iota
	// Checking means a stored token is being verified with the server
	Checking
	// Authenticated allows the dashboard to render
	Authenticated
	// Unauthenticated shows the login view
	Unauthenticated
)

func (s State) String() string {
	switch s {
	case Unchecked:
		return "unchecked"
	case Checking:
		return "checking"
	case Authenticated:
		return "authenticated"
	case Unauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Resolved reports whether protected content may be rendered or the login shown
func (s State) Resolved() bool {
	return s == Authenticated || s == Unauthenticated
}

// Verifier checks a token against the server
type Verifier interface {
	Verify(ctx context.Context, token string) (models.Admin, error)
}

// Gate decides which view renders: login or dashboard
type Gate struct {
	session *Context

	mu        sync.RWMutex
	state     State
	listeners []func(State)
}

// NewGate creates a gate in the Unchecked state
func NewGate(session *Context) *Gate {
	return &Gate{session: session}
}

// State returns the current state
func (g *Gate) State() State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

// OnChange registers a listener called after every transition
func (g *Gate) OnChange(fn func(State)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.listeners = append(g.listeners, fn)
}

func (g *Gate) transition(s State) {
	g.mu.Lock()
	g.state = s
	listeners := make([]func(State), len(g.listeners))
	copy(listeners, g.listeners)
	g.mu.Unlock()

	for _, fn := range listeners {
		fn(s)
	}
}

// Check resolves the gate. Without a stored token no request is made.
// Any verification failure, network errors included, clears the credentials.
func (g *Gate) Check(ctx context.Context, v Verifier) State {
	if !g.session.HasToken() {
		g.transition(Unauthenticated)
		return Unauthenticated
	}
	token := g.session.Token()

	g.transition(Checking)

	admin, err := v.Verify(ctx, token)
	if err != nil {
		log.Info().Err(err).Msg("stored token rejected, signing out")
		if clearErr := g.session.Clear(); clearErr != nil {
			log.Error().Err(clearErr).Msg("failed to clear stored credentials")
		}
		g.transition(Unauthenticated)
		return Unauthenticated
	}

	if err := g.session.SetAdmin(admin); err != nil {
		log.Error().Err(err).Msg("failed to cache admin data")
	}
	g.transition(Authenticated)
	return Authenticated
}

// SignedIn marks the gate authenticated after a successful login
func (g *Gate) SignedIn() {
	g.transition(Authenticated)
}

// SignOut clears the credentials and marks the gate unauthenticated
func (g *Gate) SignOut() {
	if err := g.session.Clear(); err != nil {
		log.Error().Err(err).Msg("failed to clear stored credentials")
	}
	g.transition(Unauthenticated)
}
