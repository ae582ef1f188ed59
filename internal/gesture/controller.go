// Package gesture implements the per-desktop pointer state machine: corner
// resize, edge move (handed to a drag service), touch long press, and lasso
// selection.
package gesture

import (
	"math"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/1broseidon/deskgrid/internal/block"
	"github.com/1broseidon/deskgrid/internal/clock"
	"github.com/1broseidon/deskgrid/internal/crossdrag"
	"github.com/1broseidon/deskgrid/internal/grid"
)

// Host is the external collaborator a controller reads blocks from and
// commits layouts to.
type Host interface {
	ListBlocks(desktopID string) []block.Block
	CommitLayout(blockID string, l grid.Layout)
	CommitCrossDesktopMove(blockID, fromDesktopID, toDesktopID string, l grid.Layout)
}

// DragService carries a move between desktops. *crossdrag.Coordinator
// satisfies it.
type DragService interface {
	Start(s crossdrag.Session) error
	End() (crossdrag.Session, bool)
	Cancel()
	Active() bool
}

// Selection is the subset of the selection manager the controller drives.
type Selection interface {
	Toggle(id string, additive bool)
	Replace(id string)
	Add(ids ...string)
	Clear()
	IsSelected(id string) bool
	Len() int
}

// Options configures a Controller. Zero thresholds fall back to defaults.
type Options struct {
	DesktopID string
	Host      Host
	Selection Selection
	// Drag is nil on desktops that only support local moves.
	Drag   DragService
	Clock  clock.Clock
	Logger *log.Logger
	// Origin returns the viewport position of the desktop's top-left corner.
	Origin func() (x, y float64)

	EdgeWidth       float64
	CornerSize      float64
	LongPressDelay  time.Duration
	JitterThreshold float64
}

const (
	defaultEdgeWidth       = 10
	defaultCornerSize      = 16
	defaultLongPressDelay  = 400 * time.Millisecond
	defaultJitterThreshold = 10
)

// Controller owns the gesture state of one desktop.
type Controller struct {
	mu   sync.Mutex
	opts Options

	grid   grid.Grid
	locked bool

	phase       Phase
	pointerDown bool
	pointerID   int
	seq         int

	pending *pendingPress
	resize  *resizeSession
	move    *moveSession
	lasso   *lassoState
}

// New creates an idle controller.
func New(opts Options) *Controller {
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Origin == nil {
		opts.Origin = func() (float64, float64) { return 0, 0 }
	}
	if opts.EdgeWidth <= 0 {
		opts.EdgeWidth = defaultEdgeWidth
	}
	if opts.CornerSize <= 0 {
		opts.CornerSize = defaultCornerSize
	}
	if opts.LongPressDelay <= 0 {
		opts.LongPressDelay = defaultLongPressDelay
	}
	if opts.JitterThreshold <= 0 {
		opts.JitterThreshold = defaultJitterThreshold
	}
	return &Controller{opts: opts}
}

// DesktopID returns the desktop this controller serves.
func (c *Controller) DesktopID() string { return c.opts.DesktopID }

// SetGrid updates the grid used for hit testing and quantization.
func (c *Controller) SetGrid(g grid.Grid) {
	c.mu.Lock()
	c.grid = g
	c.mu.Unlock()
}

// Grid returns the current grid.
func (c *Controller) Grid() grid.Grid {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.grid
}

// SetLocked toggles the locked flag. Locking aborts any local gesture.
func (c *Controller) SetLocked(locked bool) {
	c.mu.Lock()
	c.locked = locked
	if locked {
		c.resetLocked()
	}
	c.mu.Unlock()
}

// Locked reports whether the desktop ignores gestures.
func (c *Controller) Locked() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.locked
}

// Phase returns the current phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Busy reports whether a local gesture is in progress.
func (c *Controller) Busy() bool {
	return c.Phase() != PhaseIdle
}

// BlockAt returns the topmost block under a viewport point.
func (c *Controller) BlockAt(x, y float64) (block.Block, bool) {
	lx, ly := c.toLocal(x, y)
	g := c.Grid()
	return topmost(c.opts.Host.ListBlocks(c.opts.DesktopID), g, lx, ly)
}

// PointerDown classifies a press and starts the matching gesture. It returns
// false when the event should fall through to block content or native scrolling.
func (c *Controller) PointerDown(ev PointerEvent) bool {
	lx, ly := c.toLocal(ev.X, ev.Y)
	blocks := c.opts.Host.ListBlocks(c.opts.DesktopID)

	c.mu.Lock()
	c.resetLocked()
	c.pointerDown = true
	c.pointerID = ev.ID
	g := c.grid
	locked := c.locked
	c.mu.Unlock()

	hit, ok := topmost(blocks, g, lx, ly)

	if ok && ev.Mods.Selecting() {
		c.opts.Selection.Toggle(hit.ID, true)
		return true
	}
	if locked {
		return false
	}

	if !ok {
		if !ev.Mods.Selecting() {
			c.opts.Selection.Clear()
		}
		c.mu.Lock()
		c.phase = PhaseLasso
		c.lasso = &lassoState{anchorX: lx, anchorY: ly, curX: lx, curY: ly}
		c.mu.Unlock()
		return true
	}

	rect := hit.Rect(g)
	zone, mode := HitTest(rect, lx, ly, c.opts.EdgeWidth, c.opts.CornerSize)
	switch zone {
	case ZoneCorner:
		bounds := hit.Type.Bounds()
		c.mu.Lock()
		c.phase = PhaseResizing
		c.resize = &resizeSession{
			block:  hit,
			mode:   mode,
			lastX:  lx,
			lastY:  ly,
			rect:   rect,
			bounds: bounds,
		}
		c.mu.Unlock()
		c.opts.Logger.Debug("Gesture: resize started", "desktop", c.opts.DesktopID,
			"block", hit.ID, "mode", mode)
		return true

	case ZoneEdge:
		if ev.Kind == PointerCoarse {
			c.armLongPress(hit, ev)
			return true
		}
		if !c.opts.Selection.IsSelected(hit.ID) {
			c.opts.Selection.Replace(hit.ID)
		}
		c.beginMove(hit, ev.X, ev.Y, blocks)
		return true

	default:
		c.opts.Selection.Replace(hit.ID)
		return false
	}
}

// PointerMove advances the active gesture. It returns false when no gesture
// consumed the event, including when jitter cancelled a pending long press.
func (c *Controller) PointerMove(ev PointerEvent) bool {
	lx, ly := c.toLocal(ev.X, ev.Y)

	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.phase {
	case PhasePendingLongPress:
		p := c.pending
		if p == nil || p.pointerID != ev.ID {
			return false
		}
		if math.Hypot(ev.X-p.downX, ev.Y-p.downY) > c.opts.JitterThreshold {
			c.cancelPendingLocked()
			c.opts.Logger.Debug("Gesture: long press cancelled by movement", "desktop", c.opts.DesktopID)
			return false
		}
		p.lastX, p.lastY = ev.X, ev.Y
		return true

	case PhaseResizing:
		r := c.resize
		dx, dy := lx-r.lastX, ly-r.lastY
		r.lastX, r.lastY = lx, ly
		minW, minH := r.bounds.PixelMin(c.grid)
		maxW, maxH := r.bounds.PixelMax(c.grid)
		r.rect = applyResize(r.rect, r.mode, dx, dy, minW, minH, maxW, maxH)
		return true

	case PhaseLasso:
		c.lasso.curX, c.lasso.curY = lx, ly
		return true

	case PhaseMoving:
		c.move.pointer.x, c.move.pointer.y = lx, ly
		return true
	}
	return false
}

// PointerUp finishes a local gesture and commits its result.
func (c *Controller) PointerUp(ev PointerEvent) bool {
	c.mu.Lock()
	c.pointerDown = false
	g := c.grid

	switch c.phase {
	case PhasePendingLongPress:
		c.cancelPendingLocked()
		c.mu.Unlock()
		return true

	case PhaseResizing:
		r := c.resize
		c.resize = nil
		c.phase = PhaseIdle
		c.mu.Unlock()

		l := finalizeResize(g, r.rect, r.bounds)
		c.opts.Logger.Debug("Gesture: resize committed", "desktop", c.opts.DesktopID,
			"block", r.block.ID, "layout", l)
		c.opts.Host.CommitLayout(r.block.ID, l)
		return true

	case PhaseLasso:
		rect := c.lasso.rect()
		c.lasso = nil
		c.phase = PhaseIdle
		c.mu.Unlock()

		if rect.Empty() {
			return true
		}
		var ids []string
		for _, b := range c.opts.Host.ListBlocks(c.opts.DesktopID) {
			if b.Rect(g).Intersects(rect) {
				ids = append(ids, b.ID)
			}
		}
		if len(ids) > 0 {
			c.opts.Selection.Add(ids...)
		}
		return true

	case PhaseMoving:
		m := c.move
		c.move = nil
		c.phase = PhaseIdle
		c.mu.Unlock()

		l := placeAt(g, m.block, m.pointer.x-m.offsetX, m.pointer.y-m.offsetY)
		c.opts.Host.CommitLayout(m.block.ID, l)
		return true
	}

	c.mu.Unlock()
	return false
}

// PointerCancel aborts any local gesture without committing.
func (c *Controller) PointerCancel() {
	c.mu.Lock()
	c.pointerDown = false
	c.resetLocked()
	c.mu.Unlock()
}

// Drop resolves a drag session onto this desktop. It returns false when no
// session was active. A locked desktop cancels the session instead.
func (c *Controller) Drop(ev PointerEvent) bool {
	if c.opts.Drag == nil {
		return false
	}

	c.mu.Lock()
	locked := c.locked
	c.mu.Unlock()
	if locked {
		if !c.opts.Drag.Active() {
			return false
		}
		c.opts.Drag.Cancel()
		c.opts.Logger.Debug("Gesture: drop on locked desktop cancelled", "desktop", c.opts.DesktopID)
		return true
	}

	s, ok := c.opts.Drag.End()
	if !ok {
		return false
	}

	ox, oy := c.opts.Origin()
	c.mu.Lock()
	c.pointerDown = false
	g := c.grid
	c.mu.Unlock()

	topX := ev.X - s.OffsetX - ox
	topY := ev.Y - s.OffsetY - oy
	primary := placeAt(g, s.Block, topX, topY)
	c.commit(s.Block.ID, s.SourceDesktopID, primary)

	baseX, baseY := g.ToPixel(primary.X), g.ToPixel(primary.Y)
	for _, carried := range s.Additional {
		l := placeAt(g, carried.Block, baseX+carried.RelX, baseY+carried.RelY)
		c.commit(carried.Block.ID, s.SourceDesktopID, l)
	}

	c.opts.Logger.Debug("Gesture: drop", "desktop", c.opts.DesktopID, "source", s.SourceDesktopID,
		"block", s.Block.ID, "layout", primary, "carried", len(s.Additional))
	return true
}

// LiveRect returns the in-flight rectangle of a block being resized or moved
// locally, in desktop pixels.
func (c *Controller) LiveRect(id string) (grid.Rect, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.resize != nil && c.resize.block.ID == id:
		return c.resize.rect, true
	case c.move != nil && c.move.block.ID == id:
		r := c.move.block.Rect(c.grid)
		r.X = c.move.pointer.x - c.move.offsetX
		r.Y = c.move.pointer.y - c.move.offsetY
		return r, true
	}
	return grid.Rect{}, false
}

// Lasso returns the live lasso rectangle in desktop pixels.
func (c *Controller) Lasso() (grid.Rect, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lasso == nil {
		return grid.Rect{}, false
	}
	return c.lasso.rect(), true
}

// Close stops timers and drops local state.
func (c *Controller) Close() {
	c.PointerCancel()
}

func (c *Controller) armLongPress(b block.Block, ev PointerEvent) {
	c.mu.Lock()
	c.seq++
	token := c.seq
	c.phase = PhasePendingLongPress
	p := &pendingPress{
		token:     token,
		pointerID: ev.ID,
		block:     b,
		downX:     ev.X,
		downY:     ev.Y,
		lastX:     ev.X,
		lastY:     ev.Y,
	}
	c.pending = p
	c.mu.Unlock()

	t := c.opts.Clock.AfterFunc(c.opts.LongPressDelay, func() { c.longPressFired(token) })

	c.mu.Lock()
	if c.pending == p {
		p.timer = t
	} else {
		t.Stop()
	}
	c.mu.Unlock()
}

func (c *Controller) longPressFired(token int) {
	c.mu.Lock()
	p := c.pending
	if p == nil || p.token != token || c.phase != PhasePendingLongPress || !c.pointerDown || c.pointerID != p.pointerID {
		c.mu.Unlock()
		return
	}
	c.pending = nil
	c.phase = PhaseIdle
	c.mu.Unlock()

	blocks := c.opts.Host.ListBlocks(c.opts.DesktopID)
	b := p.block
	for _, cur := range blocks {
		if cur.ID == b.ID {
			b = cur
			break
		}
	}
	if !c.opts.Selection.IsSelected(b.ID) {
		c.opts.Selection.Replace(b.ID)
	}
	c.opts.Logger.Debug("Gesture: long press", "desktop", c.opts.DesktopID, "block", b.ID)
	c.beginMove(b, p.lastX, p.lastY, blocks)
}

// beginMove hands the block, and every other selected block of this desktop,
// to the drag service. Without one the move stays local.
func (c *Controller) beginMove(b block.Block, x, y float64, blocks []block.Block) {
	ox, oy := c.opts.Origin()
	g := c.Grid()
	rect := b.Rect(g)
	offsetX := x - (ox + rect.X)
	offsetY := y - (oy + rect.Y)

	if c.opts.Drag == nil {
		c.mu.Lock()
		c.phase = PhaseMoving
		m := &moveSession{block: b, offsetX: offsetX, offsetY: offsetY}
		m.pointer.x, m.pointer.y = x-ox, y-oy
		c.move = m
		c.mu.Unlock()
		return
	}

	s := crossdrag.Session{
		Block:           b,
		SourceDesktopID: c.opts.DesktopID,
		PointerX:        x,
		PointerY:        y,
		OffsetX:         offsetX,
		OffsetY:         offsetY,
		Width:           rect.Width,
		Height:          rect.Height,
	}
	if c.opts.Selection.Len() > 1 && c.opts.Selection.IsSelected(b.ID) {
		for _, other := range blocks {
			if other.ID == b.ID || !c.opts.Selection.IsSelected(other.ID) {
				continue
			}
			r := other.Rect(g)
			s.Additional = append(s.Additional, crossdrag.Carried{
				Block:  other,
				RelX:   r.X - rect.X,
				RelY:   r.Y - rect.Y,
				Width:  r.Width,
				Height: r.Height,
			})
		}
	}

	if err := c.opts.Drag.Start(s); err != nil {
		c.opts.Logger.Warn("Gesture: could not start drag", "desktop", c.opts.DesktopID,
			"block", b.ID, "error", err)
	}
}

func (c *Controller) commit(id, source string, l grid.Layout) {
	if source == c.opts.DesktopID {
		c.opts.Host.CommitLayout(id, l)
		return
	}
	c.opts.Host.CommitCrossDesktopMove(id, source, c.opts.DesktopID, l)
}

func (c *Controller) toLocal(x, y float64) (float64, float64) {
	ox, oy := c.opts.Origin()
	return x - ox, y - oy
}

func (c *Controller) cancelPendingLocked() {
	if c.pending == nil {
		return
	}
	if c.pending.timer != nil {
		c.pending.timer.Stop()
	}
	c.pending = nil
	if c.phase == PhasePendingLongPress {
		c.phase = PhaseIdle
	}
}

func (c *Controller) resetLocked() {
	c.cancelPendingLocked()
	c.resize = nil
	c.move = nil
	c.lasso = nil
	c.phase = PhaseIdle
}

// topmost returns the last block in paint order that contains the point.
func topmost(blocks []block.Block, g grid.Grid, x, y float64) (block.Block, bool) {
	for i := len(blocks) - 1; i >= 0; i-- {
		if blocks[i].Rect(g).Contains(x, y) {
			return blocks[i], true
		}
	}
	return block.Block{}, false
}
