// Package session holds the authenticated user for the running client.
// The State moves between two phases: Uninitialized (no user) and
// Authenticated (user set by a successful login). Logout returns it to
// Uninitialized. All accessors are safe for concurrent use, since UI
// commands run in their own goroutines.
package session

import (
	"errors"
	"sync"
	"time"
)

// ErrNotAuthenticated is returned by Require when no user is signed in.
var ErrNotAuthenticated = errors.New("not authenticated")

// Phase is the lifecycle phase of a State.
type Phase int

const (
	Uninitialized Phase = iota
	Authenticated
)

func (p Phase) String() string {
	switch p {
	case Uninitialized:
		return "uninitialized"
	case Authenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// User is the user record returned by the server on login.
type User struct {
	ID        int     `json:"id,omitempty"`
	Name      string  `json:"name,omitempty"`
	Email     string  `json:"email"`
	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`
}

// State tracks the current user.
type State struct {
	mu       sync.RWMutex
	user     *User
	signedIn time.Time
}

// New returns an Uninitialized state.
func New() *State {
	return &State{}
}

// SignIn stores u as the current user, replacing any previous one.
// Concurrent sign-ins are last-write-wins.
func (s *State) SignIn(u User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = &u
	s.signedIn = time.Now()
}

// SignOut clears the current user and returns it, if there was one.
func (s *State) SignOut() (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return User{}, false
	}
	u := *s.user
	s.user = nil
	s.signedIn = time.Time{}
	return u, true
}

// Current returns a copy of the current user.
func (s *State) Current() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

// Require is Current with ErrNotAuthenticated in place of the bool.
func (s *State) Require() (User, error) {
	u, ok := s.Current()
	if !ok {
		return User{}, ErrNotAuthenticated
	}
	return u, nil
}

// Email returns the current user's email, or "" when signed out.
func (s *State) Email() string {
	u, _ := s.Current()
	return u.Email
}

// Phase reports the lifecycle phase.
func (s *State) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return Uninitialized
	}
	return Authenticated
}

// SignedInAt returns when the current user signed in (zero when signed out).
func (s *State) SignedInAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.signedIn
}
