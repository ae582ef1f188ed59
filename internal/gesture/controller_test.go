package gesture

import (
	"io"
	"math/rand"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/1broseidon/deskgrid/internal/block"
	"github.com/1broseidon/deskgrid/internal/clock"
	"github.com/1broseidon/deskgrid/internal/config"
	"github.com/1broseidon/deskgrid/internal/crossdrag"
	"github.com/1broseidon/deskgrid/internal/grid"
	"github.com/1broseidon/deskgrid/internal/selection"
)

var testGrid = grid.Grid{CellSize: 20, Cols: 40, Rows: 30}

type commit struct {
	id       string
	from, to string
	layout   grid.Layout
	cross    bool
}

type fakeHost struct {
	blocks  map[string][]block.Block
	commits []commit
}

func (h *fakeHost) ListBlocks(desktopID string) []block.Block {
	return h.blocks[desktopID]
}

func (h *fakeHost) CommitLayout(id string, l grid.Layout) {
	h.commits = append(h.commits, commit{id: id, layout: l})
}

func (h *fakeHost) CommitCrossDesktopMove(id, from, to string, l grid.Layout) {
	h.commits = append(h.commits, commit{id: id, from: from, to: to, layout: l, cross: true})
}

type rig struct {
	host  *fakeHost
	sel   *selection.Set
	drag  *crossdrag.Coordinator
	clock *clock.Manual
}

func newRig(blocks map[string][]block.Block) *rig {
	logger := log.New(io.Discard)
	return &rig{
		host:  &fakeHost{blocks: blocks},
		sel:   selection.New(),
		drag:  crossdrag.New(logger),
		clock: clock.NewManual(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
	}
}

func (r *rig) controller(desktopID string, originX float64, withDrag bool) *Controller {
	opts := Options{
		DesktopID:       desktopID,
		Host:            r.host,
		Selection:       r.sel,
		Clock:           r.clock,
		Logger:          log.New(io.Discard),
		Origin:          func() (float64, float64) { return originX, 0 },
		EdgeWidth:       10,
		CornerSize:      16,
		LongPressDelay:  400 * time.Millisecond,
		JitterThreshold: 10,
	}
	if withDrag {
		opts.Drag = r.drag
	}
	c := New(opts)
	c.SetGrid(testGrid)
	return c
}

func mouse(x, y float64) PointerEvent {
	return PointerEvent{ID: 1, Kind: PointerPrecise, X: x, Y: y}
}

func touch(x, y float64) PointerEvent {
	return PointerEvent{ID: 7, Kind: PointerCoarse, X: x, Y: y}
}

// b1 occupies pixels {20,20,80,80}; (21,50) is on its left edge band.
func twoDesktops() map[string][]block.Block {
	return map[string][]block.Block{
		"A": {
			{ID: "b1", Type: block.TypeDefault, Layout: grid.Layout{X: 1, Y: 1, W: 4, H: 4}},
			{ID: "b2", Type: block.TypeDefault, Layout: grid.Layout{X: 10, Y: 1, W: 4, H: 4}},
		},
		"B": nil,
	}
}

func TestSEResizeClampsToTypeMinimum(t *testing.T) {
	r := newRig(map[string][]block.Block{
		"A": {{ID: "note", Type: block.TypeNote, Layout: grid.Layout{X: 10, Y: 10, W: 10, H: 10}}},
	})
	c := r.controller("A", 0, true)

	if !c.PointerDown(mouse(398, 398)) {
		t.Fatalf("corner press not consumed")
	}
	if c.Phase() != PhaseResizing {
		t.Fatalf("phase = %s, want resizing", c.Phase())
	}
	c.PointerMove(mouse(398-500, 398-500))
	live, ok := c.LiveRect("note")
	if !ok || live.Width != 80 || live.Height != 40 {
		t.Fatalf("live rect = %+v, want 80x40", live)
	}
	c.PointerUp(mouse(398-500, 398-500))

	if len(r.host.commits) != 1 {
		t.Fatalf("expected one commit, got %d", len(r.host.commits))
	}
	want := grid.Layout{X: 10, Y: 10, W: 4, H: 2}
	if got := r.host.commits[0]; got.cross || got.layout != want {
		t.Fatalf("commit = %+v, want layout %+v", got, want)
	}
	if c.Busy() {
		t.Fatalf("controller still busy after release")
	}
}

func TestCrossDesktopDrop(t *testing.T) {
	r := newRig(twoDesktops())
	a := r.controller("A", 0, true)
	b := r.controller("B", 800, true)

	if !a.PointerDown(mouse(21, 50)) {
		t.Fatalf("edge press not consumed")
	}
	if !r.drag.Active() {
		t.Fatalf("expected drag session after edge press")
	}
	if a.Busy() {
		t.Fatalf("source controller must stay idle during a drag")
	}
	if !r.sel.IsSelected("b1") {
		t.Fatalf("dragged block should become the selection")
	}

	// offset is (1,30); top-left lands at B-local (60,80) = cells (3,4)
	if !b.Drop(mouse(861, 110)) {
		t.Fatalf("drop not handled")
	}
	if r.drag.Active() {
		t.Fatalf("session still active after drop")
	}
	if len(r.host.commits) != 1 {
		t.Fatalf("expected exactly one commit, got %+v", r.host.commits)
	}
	got := r.host.commits[0]
	want := commit{id: "b1", from: "A", to: "B", layout: grid.Layout{X: 3, Y: 4, W: 4, H: 4}, cross: true}
	if got != want {
		t.Fatalf("commit = %+v, want %+v", got, want)
	}
}

func TestDropOnLockedDesktopCancels(t *testing.T) {
	r := newRig(twoDesktops())
	a := r.controller("A", 0, true)
	b := r.controller("B", 800, true)
	b.SetLocked(true)

	a.PointerDown(mouse(21, 50))
	if !r.drag.Active() {
		t.Fatalf("expected drag session after edge press")
	}
	if !b.Drop(mouse(861, 110)) {
		t.Fatalf("drop on locked desktop not handled")
	}
	if r.drag.Active() {
		t.Fatalf("session still active after drop on locked desktop")
	}
	if len(r.host.commits) != 0 {
		t.Fatalf("locked desktop accepted %+v", r.host.commits)
	}
}

func TestGroupDragCarriesSelection(t *testing.T) {
	r := newRig(twoDesktops())
	a := r.controller("A", 0, true)
	r.sel.Add("b1", "b2")

	a.PointerDown(mouse(21, 50))
	s, ok := r.drag.Current()
	if !ok || len(s.Additional) != 1 || s.Additional[0].Block.ID != "b2" {
		t.Fatalf("unexpected session: %+v", s)
	}
	if s.Additional[0].RelX != 180 || s.Additional[0].RelY != 0 {
		t.Fatalf("relative offset = (%v,%v), want (180,0)", s.Additional[0].RelX, s.Additional[0].RelY)
	}

	// move the group two cells down
	a.Drop(mouse(21, 90))
	if len(r.host.commits) != 2 {
		t.Fatalf("expected two commits, got %+v", r.host.commits)
	}
	if l := r.host.commits[0].layout; l != (grid.Layout{X: 1, Y: 3, W: 4, H: 4}) {
		t.Fatalf("primary layout = %+v", l)
	}
	if l := r.host.commits[1].layout; l != (grid.Layout{X: 10, Y: 3, W: 4, H: 4}) {
		t.Fatalf("carried layout = %+v", l)
	}
}

func TestTouchHoldThenReleaseCommitsUnchanged(t *testing.T) {
	r := newRig(twoDesktops())
	a := r.controller("A", 0, true)

	if !a.PointerDown(touch(21, 50)) {
		t.Fatalf("touch press on edge not consumed")
	}
	if a.Phase() != PhasePendingLongPress {
		t.Fatalf("phase = %s, want pending-long-press", a.Phase())
	}
	r.clock.Advance(400 * time.Millisecond)
	if !r.drag.Active() {
		t.Fatalf("long press did not start a drag")
	}

	a.Drop(touch(21, 50))
	if len(r.host.commits) != 1 {
		t.Fatalf("expected one commit, got %+v", r.host.commits)
	}
	got := r.host.commits[0]
	if got.cross || got.id != "b1" || got.layout != (grid.Layout{X: 1, Y: 1, W: 4, H: 4}) {
		t.Fatalf("unexpected commit %+v", got)
	}
}

func TestTouchJitterCancelsLongPress(t *testing.T) {
	r := newRig(twoDesktops())
	a := r.controller("A", 0, true)

	a.PointerDown(touch(21, 50))
	r.clock.Advance(100 * time.Millisecond)
	if a.PointerMove(touch(36, 50)) {
		t.Fatalf("jitter move should fall through to native scrolling")
	}
	r.clock.Advance(200 * time.Millisecond)
	a.PointerUp(touch(36, 50))
	r.clock.Advance(time.Second)

	if r.drag.Active() {
		t.Fatalf("jitter must not start a session")
	}
	if len(r.host.commits) != 0 {
		t.Fatalf("unexpected commits %+v", r.host.commits)
	}
	if r.clock.Pending() != 0 {
		t.Fatalf("long-press timer left armed")
	}
}

func TestTouchSmallMoveKeepsLongPress(t *testing.T) {
	r := newRig(twoDesktops())
	a := r.controller("A", 0, true)

	a.PointerDown(touch(21, 50))
	if !a.PointerMove(touch(24, 54)) {
		t.Fatalf("move within jitter threshold should be consumed")
	}
	r.clock.Advance(400 * time.Millisecond)
	s, ok := r.drag.Current()
	if !ok || s.PointerX != 24 || s.PointerY != 54 {
		t.Fatalf("session should start at the last pointer position, got %+v", s)
	}
}

func TestReleaseBeforeLongPressIsNoop(t *testing.T) {
	r := newRig(twoDesktops())
	a := r.controller("A", 0, true)

	a.PointerDown(touch(21, 50))
	r.clock.Advance(100 * time.Millisecond)
	a.PointerUp(touch(21, 50))
	r.clock.Advance(time.Second)

	if r.drag.Active() || len(r.host.commits) != 0 {
		t.Fatalf("release before the timer must not start or commit anything")
	}
	if a.Busy() {
		t.Fatalf("controller busy after release")
	}
}

func TestLassoSelectsIntersectingBlocks(t *testing.T) {
	r := newRig(twoDesktops())
	a := r.controller("A", 0, true)
	r.sel.Replace("stale")

	if !a.PointerDown(mouse(500, 500)) {
		t.Fatalf("background press not consumed")
	}
	if r.sel.Len() != 0 {
		t.Fatalf("plain background press should clear the selection")
	}
	a.PointerMove(mouse(90, 90))
	if lasso, ok := a.Lasso(); !ok || lasso.X != 90 || lasso.Width != 410 {
		t.Fatalf("unexpected lasso %+v", lasso)
	}
	a.PointerUp(mouse(90, 90))

	got := r.sel.Snapshot()
	if len(got) != 2 || got[0] != "b1" || got[1] != "b2" {
		t.Fatalf("selection = %v, want [b1 b2]", got)
	}
}

func TestZeroAreaLassoSelectsNothing(t *testing.T) {
	r := newRig(twoDesktops())
	a := r.controller("A", 0, true)

	a.PointerDown(mouse(150, 50))
	a.PointerUp(mouse(150, 50))
	if r.sel.Len() != 0 {
		t.Fatalf("zero-area lasso selected %v", r.sel.Snapshot())
	}
}

func TestModifierLassoKeepsSelection(t *testing.T) {
	r := newRig(twoDesktops())
	a := r.controller("A", 0, true)
	r.sel.Replace("b2")

	ev := mouse(10, 10)
	ev.Mods = ModCtrl
	a.PointerDown(ev)
	a.PointerMove(mouse(40, 40))
	a.PointerUp(mouse(40, 40))

	got := r.sel.Snapshot()
	if len(got) != 2 {
		t.Fatalf("selection = %v, want b1 and b2", got)
	}
}

func TestInteriorClickReplacesSelection(t *testing.T) {
	r := newRig(twoDesktops())
	a := r.controller("A", 0, true)
	r.sel.Replace("b2")

	if a.PointerDown(mouse(60, 60)) {
		t.Fatalf("interior click must fall through to content")
	}
	if got := r.sel.Snapshot(); len(got) != 1 || got[0] != "b1" {
		t.Fatalf("selection = %v, want [b1]", got)
	}
	if a.Busy() || r.drag.Active() {
		t.Fatalf("interior click started a gesture")
	}
}

func TestModifierToggle(t *testing.T) {
	r := newRig(twoDesktops())
	a := r.controller("A", 0, true)

	ev := mouse(60, 60)
	ev.Mods = ModMeta
	a.PointerDown(ev)
	a.PointerDown(ev)
	if r.sel.Len() != 0 {
		t.Fatalf("toggle twice should leave the selection empty")
	}
}

func TestLockedDesktopOnlyToggles(t *testing.T) {
	r := newRig(twoDesktops())
	a := r.controller("A", 0, true)
	a.SetLocked(true)

	if a.PointerDown(mouse(21, 50)) {
		t.Fatalf("locked desktop consumed an edge press")
	}
	if r.drag.Active() || a.Busy() {
		t.Fatalf("locked desktop started a gesture")
	}
	a.PointerDown(mouse(300, 300))
	if a.Busy() {
		t.Fatalf("locked desktop started a lasso")
	}

	ev := mouse(60, 60)
	ev.Mods = ModCtrl
	a.PointerDown(ev)
	if !r.sel.IsSelected("b1") {
		t.Fatalf("modifier toggle must still work on a locked desktop")
	}
}

func TestLocalMoveWithoutDragService(t *testing.T) {
	r := newRig(twoDesktops())
	a := r.controller("A", 0, false)

	a.PointerDown(mouse(21, 50))
	if a.Phase() != PhaseMoving {
		t.Fatalf("phase = %s, want moving", a.Phase())
	}
	a.PointerMove(mouse(61, 90))
	if live, ok := a.LiveRect("b1"); !ok || live.X != 60 || live.Y != 60 {
		t.Fatalf("live rect = %+v", live)
	}
	a.PointerUp(mouse(61, 90))

	if len(r.host.commits) != 1 || r.host.commits[0].layout != (grid.Layout{X: 3, Y: 3, W: 4, H: 4}) {
		t.Fatalf("unexpected commits %+v", r.host.commits)
	}
}

func TestPointerCancelDiscardsResize(t *testing.T) {
	r := newRig(map[string][]block.Block{
		"A": {{ID: "n", Type: block.TypeNote, Layout: grid.Layout{X: 10, Y: 10, W: 10, H: 10}}},
	})
	a := r.controller("A", 0, true)

	a.PointerDown(mouse(398, 398))
	a.PointerMove(mouse(450, 450))
	a.PointerCancel()
	a.PointerUp(mouse(450, 450))

	if len(r.host.commits) != 0 {
		t.Fatalf("cancelled resize committed %+v", r.host.commits)
	}
	if _, ok := a.LiveRect("n"); ok {
		t.Fatalf("live rect survived cancel")
	}
}

func TestHitTest(t *testing.T) {
	r := grid.Rect{X: 0, Y: 0, Width: 100, Height: 100}
	tests := []struct {
		name string
		x, y float64
		zone Zone
		mode ResizeMode
	}{
		{"outside", 150, 50, ZoneNone, ResizeNone},
		{"nw corner", 2, 2, ZoneCorner, ResizeNW},
		{"ne corner", 98, 2, ZoneCorner, ResizeNE},
		{"sw corner", 2, 98, ZoneCorner, ResizeSW},
		{"se corner", 98, 98, ZoneCorner, ResizeSE},
		{"left edge", 3, 50, ZoneEdge, ResizeNone},
		{"bottom edge", 50, 95, ZoneEdge, ResizeNone},
		{"interior", 50, 50, ZoneInterior, ResizeNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			zone, mode := HitTest(r, tt.x, tt.y, 10, 16)
			if zone != tt.zone || mode != tt.mode {
				t.Fatalf("HitTest(%v,%v) = %v/%s, want %v/%s", tt.x, tt.y, zone, mode, tt.zone, tt.mode)
			}
		})
	}
}

func TestHitTestSmallBlocksKeepEdgeBand(t *testing.T) {
	gc := config.DefaultConfig()
	g := grid.Grid{CellSize: gc.Grid.CellSize, Cols: gc.Grid.Columns, Rows: gc.Grid.Rows}
	edge, corner := gc.Gesture.EdgeWidth, gc.Gesture.CornerSize

	for _, typ := range block.Types() {
		t.Run(typ.String(), func(t *testing.T) {
			b := typ.Bounds()
			l := grid.Layout{W: max(b.MinW, minimumCells), H: max(b.MinH, minimumCells)}
			r := g.LayoutRect(l)

			counts := map[Zone]int{}
			for y := 0.5; y < r.Height; y++ {
				for x := 0.5; x < r.Width; x++ {
					zone, _ := HitTest(r, x, y, edge, corner)
					counts[zone]++
				}
			}
			if counts[ZoneEdge] == 0 || counts[ZoneCorner] == 0 {
				t.Fatalf("%dx%d block: edge=%d corner=%d", l.W, l.H, counts[ZoneEdge], counts[ZoneCorner])
			}
		})
	}
}

func TestHitTestTwoByTwoCells(t *testing.T) {
	r := grid.Rect{Width: 4, Height: 4}
	tests := []struct {
		x, y float64
		zone Zone
		mode ResizeMode
	}{
		{0.5, 0.5, ZoneCorner, ResizeNW},
		{3.5, 3.5, ZoneCorner, ResizeSE},
		{1.5, 0.5, ZoneEdge, ResizeNone},
		{0.5, 2.5, ZoneEdge, ResizeNone},
		{1.5, 1.5, ZoneInterior, ResizeNone},
	}
	for _, tt := range tests {
		zone, mode := HitTest(r, tt.x, tt.y, 1, 2)
		if zone != tt.zone || mode != tt.mode {
			t.Errorf("HitTest(%v,%v) = %v/%s, want %v/%s", tt.x, tt.y, zone, mode, tt.zone, tt.mode)
		}
	}
}

func TestApplyResizeStaysInBoundsEveryFrame(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	modes := []ResizeMode{ResizeNW, ResizeNE, ResizeSW, ResizeSE}
	for _, typ := range block.Types() {
		bounds := typ.Bounds()
		minW, minH := bounds.PixelMin(testGrid)
		maxW, maxH := bounds.PixelMax(testGrid)
		for _, mode := range modes {
			rect := grid.Rect{X: 200, Y: 200, Width: minW, Height: minH}
			for i := 0; i < 200; i++ {
				dx := rng.Float64()*400 - 200
				dy := rng.Float64()*400 - 200
				rect = applyResize(rect, mode, dx, dy, minW, minH, maxW, maxH)
				if rect.Width < minW || rect.Width > maxW || rect.Height < minH || rect.Height > maxH {
					t.Fatalf("%s/%s frame %d: size %vx%v out of bounds", typ, mode, i, rect.Width, rect.Height)
				}
				if rect.X < 0 || rect.Y < 0 {
					t.Fatalf("%s/%s frame %d: negative position %+v", typ, mode, i, rect)
				}
			}
		}
	}
}

func TestFinalizeResizeAppliesFloor(t *testing.T) {
	g := grid.Grid{CellSize: 20, Cols: 40, Rows: 30}
	got := finalizeResize(g, grid.Rect{X: 0, Y: 0, Width: 5, Height: 5}, block.Bounds{})
	if got.W != 2 || got.H != 2 {
		t.Fatalf("floor not applied: %+v", got)
	}
}
