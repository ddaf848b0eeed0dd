package book

import (
	"sync"
	"time"

	"houseoflove/pkg/models"
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is the page container in pointer (client pixel) coordinates.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Target is what the pointer went down on.
type Target string

const (
	TargetText       Target = "text"
	TargetBackground Target = "background"
)

// ElementPoint converts a stored placement back to container pixels.
func ElementPoint(container Rect, p models.PagePlacement) Point {
	return Point{
		X: container.Left + p.X/100*container.Width,
		Y: container.Top + p.Y/100*container.Height,
	}
}

// Gesture tracks one placement drag. The pointer offset from the element
// anchor is captured at start so the text block does not jump under the
// pointer.
type Gesture struct {
	active    bool
	offset    Point
	container Rect
}

// Start begins a drag. Only a press on the text block starts one, and a
// degenerate container is refused.
func (g *Gesture) Start(target Target, pointer, element Point, container Rect) bool {
	if target != TargetText || container.Width <= 0 || container.Height <= 0 {
		return false
	}
	g.active = true
	g.container = container
	g.offset = Point{X: pointer.X - element.X, Y: pointer.Y - element.Y}
	return true
}

// Move returns the clamped percentage placement for the pointer position.
func (g *Gesture) Move(pointer Point) (models.PagePlacement, bool) {
	if !g.active {
		return models.PagePlacement{}, false
	}
	x := (pointer.X - g.offset.X - g.container.Left) / g.container.Width * 100
	y := (pointer.Y - g.offset.Y - g.container.Top) / g.container.Height * 100
	return PercentBounds.Clamp(models.PagePlacement{X: x, Y: y}), true
}

func (g *Gesture) End() {
	g.active = false
}

func (g *Gesture) Active() bool {
	return g.active
}

// GestureIdle is how long a drag may go without a move before it is dropped.
// A pointer that never reports its release would otherwise pin the entry.
const GestureIdle = 2 * time.Minute

type trackedGesture struct {
	Gesture
	seen time.Time
}

// Gestures keeps at most one active Gesture per container id.
type Gestures struct {
	mu  sync.Mutex
	m   map[string]*trackedGesture
	Now func() time.Time
}

func NewGestures() *Gestures {
	return &Gestures{m: make(map[string]*trackedGesture), Now: time.Now}
}

// pruneLocked drops gestures idle for longer than GestureIdle.
func (gs *Gestures) pruneLocked(now time.Time) {
	for id, g := range gs.m {
		if now.Sub(g.seen) > GestureIdle {
			delete(gs.m, id)
		}
	}
}

// Start begins a drag on id, replacing any earlier one. A refused start
// leaves a running drag alone.
func (gs *Gestures) Start(id string, target Target, pointer, element Point, container Rect) bool {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	now := gs.Now()
	gs.pruneLocked(now)
	g := &trackedGesture{seen: now}
	if !g.Start(target, pointer, element, container) {
		return false
	}
	gs.m[id] = g
	return true
}

func (gs *Gestures) Move(id string, pointer Point) (models.PagePlacement, bool) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	now := gs.Now()
	g, ok := gs.m[id]
	if !ok {
		return models.PagePlacement{}, false
	}
	if now.Sub(g.seen) > GestureIdle {
		delete(gs.m, id)
		return models.PagePlacement{}, false
	}
	g.seen = now
	return g.Move(pointer)
}

func (gs *Gestures) End(id string) {
	gs.mu.Lock()
	delete(gs.m, id)
	gs.mu.Unlock()
}

func (gs *Gestures) Active(id string) bool {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	g, ok := gs.m[id]
	return ok && gs.Now().Sub(g.seen) <= GestureIdle
}

// Len is the number of tracked drags.
func (gs *Gestures) Len() int {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return len(gs.m)
}
