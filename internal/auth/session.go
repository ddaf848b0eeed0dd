package auth

import (
	"context"
	"sync"
)

// Session is the client's view of who is signed in. Listeners registered
// with OnSessionChange hear the current user right away and after every
// sign-in or sign-out. A nil user means signed out.
type Session struct {
	Provider Provider

	mu        sync.Mutex
	user      *User
	token     string
	nextID    int
	listeners map[int]func(*User)
}

func NewSession(p Provider) *Session {
	return &Session{Provider: p, listeners: make(map[int]func(*User))}
}

func (s *Session) Current() *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// OnSessionChange subscribes cb and returns the function that unsubscribes it.
func (s *Session) OnSessionChange(cb func(*User)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = cb
	cur := s.user
	s.mu.Unlock()

	cb(cur)
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Register validates the form and creates the account without signing in.
func (s *Session) Register(ctx context.Context, email, password, confirm string) error {
	if err := ValidateRegistration(email, password, confirm); err != nil {
		return err
	}
	return s.Provider.Register(ctx, email, password)
}

func (s *Session) Login(ctx context.Context, email, password string) error {
	u, token, err := s.Provider.Login(ctx, email, password)
	if err != nil {
		return err
	}
	s.set(u, token)
	return nil
}

// Logout signs out locally even when the provider call fails; the error is
// still returned.
func (s *Session) Logout(ctx context.Context) error {
	u := s.Current()
	if u == nil {
		return nil
	}
	err := s.Provider.Logout(ctx, u.ID)
	s.set(nil, "")
	return err
}

// Restore installs a session saved by an earlier run.
func (s *Session) Restore(u *User, token string) {
	s.set(u, token)
}

func (s *Session) set(u *User, token string) {
	s.mu.Lock()
	s.user = u
	s.token = token
	cbs := make([]func(*User), 0, len(s.listeners))
	for _, cb := range s.listeners {
		cbs = append(cbs, cb)
	}
	s.mu.Unlock()

	for _, cb := range cbs {
		cb(u)
	}
}
