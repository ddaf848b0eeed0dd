package preview

import (
	"fmt"
	"sync"
	"time"

	"houseoflove/internal/book"
)

// FlipDuration is how long a page turn runs before the next one is accepted.
const FlipDuration = 500 * time.Millisecond

type State int

const (
	Closed State = iota
	OpenIdle
	Flipping
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case OpenIdle:
		return "open"
	case Flipping:
		return "flipping"
	}
	return "unknown"
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(b []byte) error {
	switch string(b) {
	case "closed":
		*s = Closed
	case "open":
		*s = OpenIdle
	case "flipping":
		*s = Flipping
	default:
		return fmt.Errorf("unknown preview state %q", b)
	}
	return nil
}

// Flipper runs the preview book: the first interaction opens it, each later
// one turns a page. Turning runs forward to the last page, then back to the
// first, and so on. Its page is independent of the editor's current page.
type Flipper struct {
	mu       sync.Mutex
	state    State
	page     int
	forward  bool
	flipping time.Time
	Duration time.Duration
	Now      func() time.Time
}

func NewFlipper() *Flipper {
	return &Flipper{forward: true, Duration: FlipDuration, Now: time.Now}
}

// Snapshot is the flipper state at one instant.
type Snapshot struct {
	State   State `json:"state"`
	Page    int   `json:"page"`
	Forward bool  `json:"forward"`
}

// Interact registers a click or tap. It reports false when the input was
// ignored because a turn is still running.
func (f *Flipper) Interact() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := f.Now()
	f.settleLocked(now)

	switch f.state {
	case Closed:
		f.state = OpenIdle
		return true
	case Flipping:
		return false
	}

	if f.forward {
		f.page++
	} else {
		f.page--
	}
	switch f.page {
	case book.LastPage:
		f.forward = false
	case 0:
		f.forward = true
	}
	f.state = Flipping
	f.flipping = now.Add(f.Duration)
	return true
}

func (f *Flipper) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settleLocked(f.Now())
	return f.state
}

func (f *Flipper) Page() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.page
}

func (f *Flipper) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settleLocked(f.Now())
	return Snapshot{State: f.state, Page: f.page, Forward: f.forward}
}

func (f *Flipper) settleLocked(now time.Time) {
	if f.state == Flipping && !now.Before(f.flipping) {
		f.state = OpenIdle
	}
}

// Sessions holds one Flipper per profile and book.
type Sessions struct {
	mu  sync.Mutex
	m   map[string]*Flipper
	Now func() time.Time
}

func NewSessions() *Sessions {
	return &Sessions{m: make(map[string]*Flipper), Now: time.Now}
}

func (s *Sessions) Get(profileID string, key book.Key) *Flipper {
	id := profileID + "|" + key.String()
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.m[id]
	if !ok {
		f = NewFlipper()
		f.Now = s.Now
		s.m[id] = f
	}
	return f
}

// Close forgets the flipper, so the next preview starts closed.
func (s *Sessions) Close(profileID string, key book.Key) {
	s.mu.Lock()
	delete(s.m, profileID+"|"+key.String())
	s.mu.Unlock()
}
