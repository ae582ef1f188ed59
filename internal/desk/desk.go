// Package desk wires the layout engine together: one gesture controller per
// desktop, the shared selection and drag coordinator, the drag proxy with
// edge auto-scroll, and the desktop carousel. Hosts feed it viewport-space
// pointer events and paint from it.
package desk

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/1broseidon/deskgrid/internal/block"
	"github.com/1broseidon/deskgrid/internal/carousel"
	"github.com/1broseidon/deskgrid/internal/clock"
	"github.com/1broseidon/deskgrid/internal/crossdrag"
	"github.com/1broseidon/deskgrid/internal/gesture"
	"github.com/1broseidon/deskgrid/internal/grid"
	"github.com/1broseidon/deskgrid/internal/proxy"
	"github.com/1broseidon/deskgrid/internal/selection"
)

// Host is the external collaborator that owns desktops and blocks.
type Host interface {
	ListDesktops() []block.Desktop
	ListBlocks(desktopID string) []block.Block
	CommitLayout(blockID string, l grid.Layout)
	CommitCrossDesktopMove(blockID, fromDesktopID, toDesktopID string, l grid.Layout)
	DeleteBlock(blockID string)
}

// PaintState tells the painter how to decorate a block.
type PaintState struct {
	Dragging bool
	Hovering bool
	Selected bool
	// Overlay marks the floating drag proxy, drawn above every desktop.
	Overlay bool
}

// Painter draws block content into viewport rectangles.
type Painter interface {
	PaintBlock(b block.Block, r grid.Rect, st PaintState)
	PaintLasso(r grid.Rect)
}

// Options configures an Engine. Zero values use the component defaults.
type Options struct {
	Clock  clock.Clock
	Logger *log.Logger

	CellSize        float64
	EdgeWidth       float64
	CornerSize      float64
	LongPressDelay  time.Duration
	JitterThreshold float64

	EdgeThreshold   float64
	AutoScrollDelay time.Duration

	SettleDelay    time.Duration
	SwipeThreshold float64
	VirtualPages   int
}

// Engine routes pointer input across desktops.
type Engine struct {
	mu     sync.Mutex
	host   Host
	opts   Options
	logger *log.Logger

	width  float64
	height float64

	sel      *selection.Set
	drag     *crossdrag.Coordinator
	proxy    *proxy.Proxy
	scroller *proxy.AutoScroller
	nav      *carousel.Navigator

	order       []string
	controllers map[string]*gesture.Controller
	locked      map[string]bool

	// active received the current pointer-down
	active    *gesture.Controller
	hoverID   string
	hoverZone gesture.Zone

	listeners map[int]func()
	nextID    int
	cancels   []func()
}

// New creates an engine over host and loads its desktops.
func New(host Host, opts Options) *Engine {
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.CellSize <= 0 {
		opts.CellSize = 20
	}

	e := &Engine{
		host:        host,
		opts:        opts,
		logger:      opts.Logger,
		sel:         selection.New(),
		drag:        crossdrag.New(opts.Logger),
		controllers: make(map[string]*gesture.Controller),
		locked:      make(map[string]bool),
		listeners:   make(map[int]func()),
	}
	e.nav = carousel.New(carousel.Options{
		Clock:          opts.Clock,
		Logger:         opts.Logger,
		SettleDelay:    opts.SettleDelay,
		SwipeThreshold: opts.SwipeThreshold,
		VirtualPages:   opts.VirtualPages,
	})
	e.proxy = proxy.New(e.drag)
	e.scroller = proxy.NewAutoScroller(e.nav, proxy.AutoScrollOptions{
		Clock:         opts.Clock,
		Logger:        opts.Logger,
		EdgeThreshold: opts.EdgeThreshold,
		Delay:         opts.AutoScrollDelay,
		Width:         e.viewportWidth,
	})
	e.scroller.Watch(e.drag)

	e.cancels = append(e.cancels,
		e.nav.Subscribe(func(int) { e.sel.Clear() }),
		e.nav.SubscribeMotion(e.changed),
		e.sel.Subscribe(e.changed),
		e.drag.Subscribe(func(crossdrag.Snapshot) { e.changed() }),
	)

	e.Sync()
	return e
}

// Resize sets the viewport size in pixels. Every desktop shares it.
func (e *Engine) Resize(width, height float64) {
	e.mu.Lock()
	e.width, e.height = width, height
	g := grid.FromViewport(width, height, e.opts.CellSize)
	ctls := e.controllerListLocked()
	e.mu.Unlock()

	e.nav.SetViewport(width)
	for _, c := range ctls {
		c.SetGrid(g)
	}
	e.changed()
}

// Grid returns the grid every desktop uses.
func (e *Engine) Grid() grid.Grid {
	e.mu.Lock()
	defer e.mu.Unlock()
	return grid.FromViewport(e.width, e.height, e.opts.CellSize)
}

// Sync reloads the desktop list from the host. Controllers of desktops that
// still exist keep their state.
func (e *Engine) Sync() {
	desktops := e.host.ListDesktops()

	e.mu.Lock()
	g := grid.FromViewport(e.width, e.height, e.opts.CellSize)
	next := make(map[string]*gesture.Controller, len(desktops))
	order := make([]string, 0, len(desktops))
	var created []*gesture.Controller
	for _, d := range desktops {
		order = append(order, d.ID)
		if c, ok := e.controllers[d.ID]; ok {
			next[d.ID] = c
			delete(e.controllers, d.ID)
			continue
		}
		c := e.newControllerLocked(d.ID)
		next[d.ID] = c
		created = append(created, c)
	}
	removed := e.controllerListLocked()
	if e.active != nil {
		for _, c := range removed {
			if c == e.active {
				e.active = nil
			}
		}
	}
	e.controllers = next
	e.order = order
	locked := make(map[string]bool, len(e.locked))
	for id, l := range e.locked {
		locked[id] = l
	}
	e.mu.Unlock()

	for _, c := range removed {
		c.Close()
	}
	for _, c := range created {
		c.SetGrid(g)
		c.SetLocked(locked[c.DesktopID()])
	}
	e.nav.SetCount(len(order))
	e.logger.Debug("Engine: synced desktops", "count", len(order))
	e.changed()
}

func (e *Engine) newControllerLocked(id string) *gesture.Controller {
	return gesture.New(gesture.Options{
		DesktopID:       id,
		Host:            e.host,
		Selection:       e.sel,
		Drag:            e.drag,
		Clock:           e.opts.Clock,
		Logger:          e.opts.Logger,
		Origin:          func() (float64, float64) { return e.origin(id), 0 },
		EdgeWidth:       e.opts.EdgeWidth,
		CornerSize:      e.opts.CornerSize,
		LongPressDelay:  e.opts.LongPressDelay,
		JitterThreshold: e.opts.JitterThreshold,
	})
}

func (e *Engine) origin(id string) float64 {
	e.mu.Lock()
	idx := -1
	for i, d := range e.order {
		if d == id {
			idx = i
			break
		}
	}
	e.mu.Unlock()
	if idx < 0 {
		return 0
	}
	return e.nav.Origin(idx)
}

func (e *Engine) viewportWidth() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.width
}

// controllerAt returns the controller of the real desktop under viewport x.
func (e *Engine) controllerAt(x float64) *gesture.Controller {
	i := e.nav.PageAt(x)
	e.mu.Lock()
	defer e.mu.Unlock()
	if i < 0 || i >= len(e.order) {
		return nil
	}
	return e.controllers[e.order[i]]
}

// PointerDown routes a press to the desktop under the pointer.
func (e *Engine) PointerDown(ev gesture.PointerEvent) bool {
	if e.drag.Active() {
		// a second pointer while dragging
		return true
	}
	c := e.controllerAt(ev.X)
	e.mu.Lock()
	prev := e.active
	e.active = c
	e.mu.Unlock()
	if prev != nil && prev != c {
		// a press elsewhere supersedes any pending long press there
		prev.PointerCancel()
	}
	if c == nil {
		return false
	}
	consumed := c.PointerDown(ev)
	e.changed()
	return consumed
}

// PointerMove feeds the drag session while one is active, otherwise the
// desktop that received the press, otherwise hover tracking.
func (e *Engine) PointerMove(ev gesture.PointerEvent) bool {
	if e.drag.Active() {
		e.drag.Update(ev.X, ev.Y)
		return true
	}

	e.mu.Lock()
	active := e.active
	e.mu.Unlock()
	if active != nil {
		consumed := active.PointerMove(ev)
		if consumed {
			e.changed()
		}
		return consumed
	}

	e.trackHover(ev)
	return false
}

// PointerUp drops an active session on the desktop under the pointer, or
// cancels it over a placeholder page. Without a session the press desktop
// finishes its local gesture.
func (e *Engine) PointerUp(ev gesture.PointerEvent) bool {
	e.mu.Lock()
	active := e.active
	e.active = nil
	e.mu.Unlock()

	if e.drag.Active() {
		if target := e.controllerAt(ev.X); target != nil {
			target.Drop(ev)
		} else {
			e.logger.Debug("Engine: drop outside a desktop, cancelling")
			e.drag.Cancel()
		}
		if active != nil {
			active.PointerCancel()
		}
		e.changed()
		return true
	}

	if active == nil {
		return false
	}
	consumed := active.PointerUp(ev)
	e.changed()
	return consumed
}

// PointerCancel aborts everything in flight; committed layouts are untouched.
func (e *Engine) PointerCancel() {
	e.mu.Lock()
	active := e.active
	e.active = nil
	e.mu.Unlock()

	e.drag.Cancel()
	if active != nil {
		active.PointerCancel()
	}
	e.changed()
}

// Wheel scrolls the carousel.
func (e *Engine) Wheel(dx, dy float64) {
	e.nav.Wheel(dx, dy)
}

func (e *Engine) trackHover(ev gesture.PointerEvent) {
	id, zone := "", gesture.ZoneNone
	if c := e.controllerAt(ev.X); c != nil {
		if b, ok := c.BlockAt(ev.X, ev.Y); ok {
			id = b.ID
			r := b.Rect(c.Grid())
			ox := e.origin(c.DesktopID())
			zone, _ = gesture.HitTest(r, ev.X-ox, ev.Y, e.edgeWidth(), e.cornerSize())
		}
	}

	e.mu.Lock()
	changed := id != e.hoverID || zone != e.hoverZone
	e.hoverID, e.hoverZone = id, zone
	e.mu.Unlock()
	if changed {
		e.changed()
	}
}

func (e *Engine) edgeWidth() float64 {
	if e.opts.EdgeWidth > 0 {
		return e.opts.EdgeWidth
	}
	return 10
}

func (e *Engine) cornerSize() float64 {
	if e.opts.CornerSize > 0 {
		return e.opts.CornerSize
	}
	return 16
}

// Selection returns the selected block ids, sorted.
func (e *Engine) Selection() []string {
	return e.sel.Snapshot()
}

// ClearSelection empties the selection.
func (e *Engine) ClearSelection() {
	e.sel.Clear()
}

// Busy reports whether a drag, resize, lasso or pending long press is in flight.
func (e *Engine) Busy() bool {
	if e.drag.Active() {
		return true
	}
	e.mu.Lock()
	ctls := e.controllerListLocked()
	e.mu.Unlock()
	for _, c := range ctls {
		if c.Busy() {
			return true
		}
	}
	return false
}

// Cursor returns the pointer shape for the current state.
func (e *Engine) Cursor() proxy.Cursor {
	if cur := e.proxy.Cursor(); cur != proxy.CursorDefault {
		return cur
	}
	e.mu.Lock()
	active := e.active
	zone := e.hoverZone
	e.mu.Unlock()

	if active != nil && active.Phase() == gesture.PhaseResizing {
		return proxy.CursorResize
	}
	switch zone {
	case gesture.ZoneCorner:
		return proxy.CursorResize
	case gesture.ZoneEdge:
		return proxy.CursorGrab
	}
	return proxy.CursorDefault
}

// Navigator exposes the carousel for keyboard navigation.
func (e *Engine) Navigator() *carousel.Navigator {
	return e.nav
}

// ActiveDesktop returns the id of the current desktop, or "" on a placeholder page.
func (e *Engine) ActiveDesktop() string {
	i := e.nav.Index()
	e.mu.Lock()
	defer e.mu.Unlock()
	if i < 0 || i >= len(e.order) {
		return ""
	}
	return e.order[i]
}

// SetLocked locks or unlocks a desktop against gestures.
func (e *Engine) SetLocked(desktopID string, locked bool) {
	e.mu.Lock()
	e.locked[desktopID] = locked
	c := e.controllers[desktopID]
	e.mu.Unlock()
	if c != nil {
		c.SetLocked(locked)
	}
}

// OnIndexChanged registers fn for desktop index changes.
func (e *Engine) OnIndexChanged(fn func(index int)) (cancel func()) {
	return e.nav.Subscribe(fn)
}

// OnChange registers fn for anything that needs a redraw.
func (e *Engine) OnChange(fn func()) (cancel func()) {
	e.mu.Lock()
	id := e.nextID
	e.nextID++
	e.listeners[id] = fn
	e.mu.Unlock()
	return func() {
		e.mu.Lock()
		delete(e.listeners, id)
		e.mu.Unlock()
	}
}

func (e *Engine) changed() {
	e.mu.Lock()
	fns := make([]func(), 0, len(e.listeners))
	for _, fn := range e.listeners {
		fns = append(fns, fn)
	}
	e.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// DeleteSelected asks the host to delete every selected block and returns
// how many were deleted.
func (e *Engine) DeleteSelected() int {
	if e.Busy() {
		return 0
	}
	ids := e.sel.Snapshot()
	for _, id := range ids {
		e.host.DeleteBlock(id)
	}
	if len(ids) > 0 {
		e.logger.Info("Engine: deleted blocks", "count", len(ids))
		e.sel.Clear()
	}
	return len(ids)
}

// Paint draws every visible desktop, the lasso, then the drag proxy on top.
func (e *Engine) Paint(p Painter) {
	e.mu.Lock()
	width := e.width
	order := append([]string(nil), e.order...)
	hover := e.hoverID
	ctls := make([]*gesture.Controller, len(order))
	for i, id := range order {
		ctls[i] = e.controllers[id]
	}
	e.mu.Unlock()

	session, dragging := e.drag.Current()

	for i, c := range ctls {
		ox := e.nav.Origin(i)
		if width > 0 && (ox >= width || ox+width <= 0) {
			continue
		}
		g := c.Grid()
		for _, b := range e.host.ListBlocks(c.DesktopID()) {
			r, live := c.LiveRect(b.ID)
			if !live {
				r = b.Rect(g)
			}
			p.PaintBlock(b, r.Translate(ox, 0), PaintState{
				Dragging: live || (dragging && session.Carries(b.ID)),
				Hovering: b.ID == hover,
				Selected: e.sel.IsSelected(b.ID),
			})
		}
		if lasso, ok := c.Lasso(); ok {
			p.PaintLasso(lasso.Translate(ox, 0))
		}
	}

	for _, item := range e.proxy.Items() {
		p.PaintBlock(item.Block, item.Rect, PaintState{
			Dragging: true,
			Selected: e.sel.IsSelected(item.Block.ID),
			Overlay:  true,
		})
	}
}

// Close stops every timer and subscription.
func (e *Engine) Close() {
	e.mu.Lock()
	cancels := e.cancels
	e.cancels = nil
	ctls := e.controllerListLocked()
	e.mu.Unlock()

	e.drag.Cancel()
	e.scroller.Close()
	e.proxy.Close()
	e.nav.Close()
	for _, c := range ctls {
		c.Close()
	}
	for _, cancel := range cancels {
		cancel()
	}
}

func (e *Engine) controllerListLocked() []*gesture.Controller {
	out := make([]*gesture.Controller, 0, len(e.controllers))
	for _, c := range e.controllers {
		out = append(out, c)
	}
	return out
}
