package proxy

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/1broseidon/deskgrid/internal/clock"
	"github.com/1broseidon/deskgrid/internal/crossdrag"
)

// Navigator is the carousel surface the auto-scroller drives.
type Navigator interface {
	Index() int
	PageCount() int
	Next()
	Prev()
}

type edgeZone int

const (
	zoneNone edgeZone = iota
	zoneLeft
	zoneRight
)

func (z edgeZone) String() string {
	switch z {
	case zoneLeft:
		return "left"
	case zoneRight:
		return "right"
	default:
		return "none"
	}
}

// AutoScrollOptions configures an AutoScroller.
type AutoScrollOptions struct {
	Clock         clock.Clock
	Logger        *log.Logger
	EdgeThreshold float64
	Delay         time.Duration
	// Width returns the current viewport width in pixels.
	Width func() float64
}

// AutoScroller navigates one desktop each time the drag pointer has stayed in
// an edge zone for Delay.
type AutoScroller struct {
	mu    sync.Mutex
	nav   Navigator
	opts  AutoScrollOptions
	zone  edgeZone
	timer clock.Timer
	seq   int
	stop  func()

	// last drag snapshot seen
	dragSeq uint64
}

// NewAutoScroller creates an idle auto-scroller.
func NewAutoScroller(nav Navigator, opts AutoScrollOptions) *AutoScroller {
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.EdgeThreshold <= 0 {
		opts.EdgeThreshold = 80
	}
	if opts.Delay <= 0 {
		opts.Delay = 400 * time.Millisecond
	}
	if opts.Width == nil {
		opts.Width = func() float64 { return 0 }
	}
	return &AutoScroller{nav: nav, opts: opts}
}

// Watch feeds every pointer update of the coordinator's sessions into Track
// and resets when a session ends.
func (a *AutoScroller) Watch(src Source) {
	cancel := src.Subscribe(func(s crossdrag.Snapshot) {
		a.mu.Lock()
		stale := s.Seq < a.dragSeq
		if !stale {
			a.dragSeq = s.Seq
		}
		a.mu.Unlock()
		if stale {
			return
		}
		if !s.Active {
			a.Reset()
			return
		}
		a.Track(s.Session.PointerX)
	})
	a.mu.Lock()
	a.stop = cancel
	a.mu.Unlock()
}

// Track evaluates a pointer x position. Staying in the same zone keeps the
// pending timer; leaving it or entering the opposite one cancels it.
func (a *AutoScroller) Track(x float64) {
	zone := a.zoneFor(x)

	a.mu.Lock()
	defer a.mu.Unlock()
	if zone == a.zone {
		return
	}
	a.stopLocked()
	a.zone = zone
	if zone != zoneNone {
		a.armLocked()
	}
}

// Reset cancels any pending scroll.
func (a *AutoScroller) Reset() {
	a.mu.Lock()
	a.stopLocked()
	a.zone = zoneNone
	a.mu.Unlock()
}

// Close resets and stops watching the coordinator.
func (a *AutoScroller) Close() {
	a.Reset()
	a.mu.Lock()
	stop := a.stop
	a.stop = nil
	a.mu.Unlock()
	if stop != nil {
		stop()
	}
}

func (a *AutoScroller) zoneFor(x float64) edgeZone {
	width := a.opts.Width()
	if width <= 0 {
		return zoneNone
	}
	switch {
	case x < a.opts.EdgeThreshold:
		if a.canGo(zoneLeft) {
			return zoneLeft
		}
	case width-x < a.opts.EdgeThreshold:
		if a.canGo(zoneRight) {
			return zoneRight
		}
	}
	return zoneNone
}

func (a *AutoScroller) canGo(z edgeZone) bool {
	idx := a.nav.Index()
	switch z {
	case zoneLeft:
		return idx > 0
	case zoneRight:
		return idx < a.nav.PageCount()-1
	}
	return false
}

func (a *AutoScroller) armLocked() {
	a.seq++
	token := a.seq
	a.timer = a.opts.Clock.AfterFunc(a.opts.Delay, func() { a.fire(token) })
}

func (a *AutoScroller) stopLocked() {
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.seq++
}

func (a *AutoScroller) fire(token int) {
	a.mu.Lock()
	if token != a.seq || a.zone == zoneNone {
		a.mu.Unlock()
		return
	}
	zone := a.zone
	a.timer = nil
	a.mu.Unlock()

	a.opts.Logger.Debug("Auto scroll: navigating", "edge", zone)
	if zone == zoneLeft {
		a.nav.Prev()
	} else {
		a.nav.Next()
	}
	more := a.canGo(zone)

	a.mu.Lock()
	defer a.mu.Unlock()
	if token != a.seq || a.zone != zone {
		return
	}
	if !more {
		a.zone = zoneNone
		return
	}
	a.armLocked()
}
