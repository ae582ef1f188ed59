// Package crossdrag holds the single drag session that lets a block, and the
// rest of its selection, be picked up on one desktop and dropped on another.
package crossdrag

import (
	"errors"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/1broseidon/deskgrid/internal/block"
)

// ErrSessionActive is returned by Start while another session is in progress.
var ErrSessionActive = errors.New("drag session already active")

// Carried is an additional selected block travelling with the primary block.
// RelX/RelY are pixel offsets from the primary block's top-left corner.
type Carried struct {
	Block  block.Block
	RelX   float64
	RelY   float64
	Width  float64
	Height float64
}

// Session describes an in-progress move. Pointer coordinates are viewport
// pixels; Offset is the pointer's distance from the block's top-left corner.
type Session struct {
	Block           block.Block
	SourceDesktopID string
	PointerX        float64
	PointerY        float64
	OffsetX         float64
	OffsetY         float64
	Width           float64
	Height          float64
	Additional      []Carried
}

// TopLeft returns the viewport position of the primary block's top-left corner.
func (s Session) TopLeft() (x, y float64) {
	return s.PointerX - s.OffsetX, s.PointerY - s.OffsetY
}

// Carries reports whether the session moves the block with the given id.
func (s Session) Carries(id string) bool {
	if s.Block.ID == id {
		return true
	}
	for _, c := range s.Additional {
		if c.Block.ID == id {
			return true
		}
	}
	return false
}

func (s Session) clone() Session {
	s.Additional = append([]Carried(nil), s.Additional...)
	return s
}

// Snapshot is what listeners observe after every change. Listeners run
// outside the coordinator's lock and may see snapshots out of order; Seq
// grows with every change, so an older snapshot can be dropped.
type Snapshot struct {
	Seq     uint64
	Active  bool
	Session Session
}

// Listener observes session changes.
type Listener func(Snapshot)

// Coordinator owns the one drag session of a process.
type Coordinator struct {
	mu        sync.Mutex
	session   *Session
	listeners map[int]Listener
	nextID    int
	seq       uint64
	logger    *log.Logger
}

// New creates a coordinator. A nil logger uses log.Default().
func New(logger *log.Logger) *Coordinator {
	if logger == nil {
		logger = log.Default()
	}
	return &Coordinator{
		listeners: make(map[int]Listener),
		logger:    logger,
	}
}

// Start begins a session. A second Start before End/Cancel is a caller bug:
// it is logged and refused, and the running session is kept.
func (c *Coordinator) Start(s Session) error {
	c.mu.Lock()
	if c.session != nil {
		current := c.session.Block.ID
		c.mu.Unlock()
		c.logger.Warn("Cross drag: start refused, session already active",
			"active", current, "requested", s.Block.ID)
		return ErrSessionActive
	}
	started := s.clone()
	c.session = &started
	c.seq++
	snap := Snapshot{Seq: c.seq, Active: true, Session: started.clone()}
	c.mu.Unlock()

	c.logger.Debug("Cross drag: started", "block", s.Block.ID,
		"source", s.SourceDesktopID, "carried", len(s.Additional))
	c.notify(snap)
	return nil
}

// Update moves the tracked pointer. It is a no-op without a session.
func (c *Coordinator) Update(x, y float64) {
	c.mu.Lock()
	if c.session == nil {
		c.mu.Unlock()
		return
	}
	c.session.PointerX = x
	c.session.PointerY = y
	c.seq++
	snap := Snapshot{Seq: c.seq, Active: true, Session: c.session.clone()}
	c.mu.Unlock()

	c.notify(snap)
}

// End returns and clears the session.
func (c *Coordinator) End() (Session, bool) {
	c.mu.Lock()
	if c.session == nil {
		c.mu.Unlock()
		return Session{}, false
	}
	ended := *c.session
	c.session = nil
	c.seq++
	snap := Snapshot{Seq: c.seq}
	c.mu.Unlock()

	c.logger.Debug("Cross drag: ended", "block", ended.Block.ID)
	c.notify(snap)
	return ended, true
}

// Cancel clears the session without returning it.
func (c *Coordinator) Cancel() {
	c.mu.Lock()
	if c.session == nil {
		c.mu.Unlock()
		return
	}
	id := c.session.Block.ID
	c.session = nil
	c.seq++
	snap := Snapshot{Seq: c.seq}
	c.mu.Unlock()

	c.logger.Debug("Cross drag: cancelled", "block", id)
	c.notify(snap)
}

// Current returns a copy of the running session.
func (c *Coordinator) Current() (Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return Session{}, false
	}
	return c.session.clone(), true
}

// Snapshot returns the current state with its sequence number.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return Snapshot{Seq: c.seq}
	}
	return Snapshot{Seq: c.seq, Active: true, Session: c.session.clone()}
}

// Active reports whether a session is running.
func (c *Coordinator) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session != nil
}

// Subscribe registers l for every Start, Update, End and Cancel.
func (c *Coordinator) Subscribe(l Listener) (cancel func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = l
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

func (c *Coordinator) notify(snap Snapshot) {
	c.mu.Lock()
	ls := make([]Listener, 0, len(c.listeners))
	for _, l := range c.listeners {
		ls = append(ls, l)
	}
	c.mu.Unlock()

	for _, l := range ls {
		l(snap)
	}
}
