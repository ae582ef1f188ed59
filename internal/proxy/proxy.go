// Package proxy renders the floating copy of blocks being dragged between
// desktops and scrolls the carousel when the drag lingers near a screen edge.
package proxy

import (
	"sync"

	"github.com/1broseidon/deskgrid/internal/block"
	"github.com/1broseidon/deskgrid/internal/crossdrag"
	"github.com/1broseidon/deskgrid/internal/grid"
)

// Cursor is the pointer shape a host should display
type Cursor int

const (
	CursorDefault Cursor = iota
	// CursorGrab is shown over a block edge that can be picked up
	CursorGrab
	// CursorGrabbing is shown while a drag session is active
	CursorGrabbing
	// CursorResize is shown over a corner or during a resize
	CursorResize
)

// String returns the CSS-style cursor name
func (c Cursor) String() string {
	switch c {
	case CursorGrab:
		return "grab"
	case CursorGrabbing:
		return "grabbing"
	case CursorResize:
		return "resize"
	default:
		return "default"
	}
}

// Item is one floating block in viewport pixels.
type Item struct {
	Block   block.Block
	Rect    grid.Rect
	Primary bool
}

// Source is the part of the drag coordinator the proxy observes.
type Source interface {
	Snapshot() crossdrag.Snapshot
	Subscribe(l crossdrag.Listener) (cancel func())
}

// Proxy mirrors the active drag session for painting. It is never hit-tested.
type Proxy struct {
	mu     sync.Mutex
	snap   crossdrag.Snapshot
	cancel func()
}

// New creates a proxy following src.
func New(src Source) *Proxy {
	p := &Proxy{snap: src.Snapshot()}
	p.cancel = src.Subscribe(p.observe)
	return p
}

func (p *Proxy) observe(s crossdrag.Snapshot) {
	p.mu.Lock()
	if s.Seq >= p.snap.Seq {
		p.snap = s
	}
	p.mu.Unlock()
}

// Active reports whether a drag is in flight.
func (p *Proxy) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snap.Active
}

// Items returns the primary block at pointer minus offset, followed by each
// carried block at that point plus its relative offset.
func (p *Proxy) Items() []Item {
	p.mu.Lock()
	snap := p.snap
	p.mu.Unlock()

	if !snap.Active {
		return nil
	}
	s := snap.Session
	x, y := s.TopLeft()
	items := make([]Item, 0, 1+len(s.Additional))
	items = append(items, Item{
		Block:   s.Block,
		Rect:    grid.Rect{X: x, Y: y, Width: s.Width, Height: s.Height},
		Primary: true,
	})
	for _, c := range s.Additional {
		items = append(items, Item{
			Block: c.Block,
			Rect:  grid.Rect{X: x + c.RelX, Y: y + c.RelY, Width: c.Width, Height: c.Height},
		})
	}
	return items
}

// Cursor returns CursorGrabbing while a drag is active.
func (p *Proxy) Cursor() Cursor {
	if p.Active() {
		return CursorGrabbing
	}
	return CursorDefault
}

// Close stops following the coordinator.
func (p *Proxy) Close() {
	p.mu.Lock()
	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}
