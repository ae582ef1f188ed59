// Package carousel tracks the horizontally scrolling strip of desktops: which
// page is current, the scroll offset, and the snapping that follows free
// scrolling or a swipe.
package carousel

import (
	"math"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/1broseidon/deskgrid/internal/clock"
)

// Options configures a Navigator.
type Options struct {
	Clock          clock.Clock
	Logger         *log.Logger
	SettleDelay    time.Duration
	SwipeThreshold float64
	// VirtualPages are empty placeholder pages after the real desktops.
	VirtualPages int
}

type swipeState struct {
	startX      float64
	startOffset float64
	startIndex  int
}

// Navigator is the desktop carousel. Page i starts at i*width in strip
// coordinates; Offset is the strip position at the left edge of the viewport.
type Navigator struct {
	mu     sync.Mutex
	opts   Options
	width  float64
	count  int
	index  int
	offset float64

	settle clock.Timer
	seq    int
	swipe  *swipeState

	indexListeners  map[int]func(int)
	motionListeners map[int]func()
	nextID          int
}

// New creates a navigator positioned on page 0.
func New(opts Options) *Navigator {
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = 100 * time.Millisecond
	}
	if opts.SwipeThreshold <= 0 {
		opts.SwipeThreshold = 50
	}
	if opts.VirtualPages < 0 {
		opts.VirtualPages = 0
	}
	return &Navigator{
		opts:            opts,
		indexListeners:  make(map[int]func(int)),
		motionListeners: make(map[int]func()),
	}
}

// SetViewport sets the page width and re-snaps to the current page.
func (n *Navigator) SetViewport(width float64) {
	n.mu.Lock()
	n.width = math.Max(width, 0)
	n.offset = n.pageOffsetLocked(n.index)
	n.mu.Unlock()
	n.notify(-1)
}

// SetCount sets the number of real desktops. The index is clamped to the new
// page range.
func (n *Navigator) SetCount(count int) {
	n.mu.Lock()
	n.count = max(count, 0)
	changed := n.jumpLocked(n.index)
	idx := n.index
	n.mu.Unlock()
	if changed {
		n.notify(idx)
	} else {
		n.notify(-1)
	}
}

// Count returns the number of real desktops.
func (n *Navigator) Count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.count
}

// PageCount returns real desktops plus virtual pages.
func (n *Navigator) PageCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.pageCountLocked()
}

// IsVirtual reports whether page i is a placeholder page.
func (n *Navigator) IsVirtual(i int) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return i >= n.count
}

// Index returns the current page.
func (n *Navigator) Index() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.index
}

// Offset returns the current strip offset.
func (n *Navigator) Offset() float64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.offset
}

// Width returns the page width.
func (n *Navigator) Width() float64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.width
}

// Origin returns the viewport x of page i's left edge.
func (n *Navigator) Origin(i int) float64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return float64(i)*n.width - n.offset
}

// PageAt returns the page under viewport x, or -1 when there is none.
func (n *Navigator) PageAt(x float64) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.width <= 0 {
		return -1
	}
	i := int(math.Floor((x + n.offset) / n.width))
	if i < 0 || i >= n.pageCountLocked() {
		return -1
	}
	return i
}

// GoTo snaps to page i, clamped to the page range.
func (n *Navigator) GoTo(i int) {
	n.mu.Lock()
	n.cancelSettleLocked()
	n.swipe = nil
	changed := n.jumpLocked(i)
	idx := n.index
	n.mu.Unlock()

	if changed {
		n.opts.Logger.Debug("Carousel: index changed", "index", idx)
		n.notify(idx)
	} else {
		n.notify(-1)
	}
}

// Next moves one page right.
func (n *Navigator) Next() { n.GoTo(n.Index() + 1) }

// Prev moves one page left.
func (n *Navigator) Prev() { n.GoTo(n.Index() - 1) }

// First moves to page 0.
func (n *Navigator) First() { n.GoTo(0) }

// Last moves to the last page, virtual pages included.
func (n *Navigator) Last() { n.GoTo(n.PageCount() - 1) }

// Scroll applies a user scroll to an absolute offset. The index follows the
// nearest page at once; the offset snaps to it SettleDelay after the last call.
func (n *Navigator) Scroll(offset float64) {
	n.mu.Lock()
	changed := n.scrollLocked(offset)
	idx := n.index
	n.armSettleLocked()
	n.mu.Unlock()

	if changed {
		n.notify(idx)
	} else {
		n.notify(-1)
	}
}

// Wheel scrolls by the dominant axis of a wheel delta.
func (n *Navigator) Wheel(dx, dy float64) {
	d := dy
	if math.Abs(dx) >= math.Abs(dy) {
		d = dx
	}
	if d == 0 {
		return
	}
	n.Scroll(n.Offset() + d)
}

// SwipeStart begins a touch swipe at viewport x.
func (n *Navigator) SwipeStart(x float64) {
	n.mu.Lock()
	n.cancelSettleLocked()
	n.swipe = &swipeState{startX: x, startOffset: n.offset, startIndex: n.index}
	n.mu.Unlock()
}

// SwipeMove drags the strip with the finger.
func (n *Navigator) SwipeMove(x float64) {
	n.mu.Lock()
	if n.swipe == nil {
		n.mu.Unlock()
		return
	}
	n.offset = n.clampOffsetLocked(n.swipe.startOffset - (x - n.swipe.startX))
	n.mu.Unlock()
	n.notify(-1)
}

// SwipeEnd navigates one page when the swipe travelled further than the
// threshold, otherwise snaps back.
func (n *Navigator) SwipeEnd(x float64) {
	n.mu.Lock()
	s := n.swipe
	n.swipe = nil
	threshold := n.opts.SwipeThreshold
	n.mu.Unlock()
	if s == nil {
		return
	}

	travel := x - s.startX
	switch {
	case travel <= -threshold:
		n.GoTo(s.startIndex + 1)
	case travel >= threshold:
		n.GoTo(s.startIndex - 1)
	default:
		n.GoTo(s.startIndex)
	}
}

// Subscribe registers fn for index changes.
func (n *Navigator) Subscribe(fn func(index int)) (cancel func()) {
	n.mu.Lock()
	id := n.nextID
	n.nextID++
	n.indexListeners[id] = fn
	n.mu.Unlock()
	return func() {
		n.mu.Lock()
		delete(n.indexListeners, id)
		n.mu.Unlock()
	}
}

// SubscribeMotion registers fn for every offset or index change.
func (n *Navigator) SubscribeMotion(fn func()) (cancel func()) {
	n.mu.Lock()
	id := n.nextID
	n.nextID++
	n.motionListeners[id] = fn
	n.mu.Unlock()
	return func() {
		n.mu.Lock()
		delete(n.motionListeners, id)
		n.mu.Unlock()
	}
}

// Close stops the settle timer.
func (n *Navigator) Close() {
	n.mu.Lock()
	n.cancelSettleLocked()
	n.swipe = nil
	n.mu.Unlock()
}

func (n *Navigator) settleFired(token int) {
	n.mu.Lock()
	if token != n.seq {
		n.mu.Unlock()
		return
	}
	n.settle = nil
	// the offset may have moved since the timer was armed
	changed := n.jumpLocked(n.nearestLocked(n.offset))
	idx := n.index
	n.mu.Unlock()

	if changed {
		n.notify(idx)
	} else {
		n.notify(-1)
	}
}

func (n *Navigator) pageCountLocked() int {
	return n.count + n.opts.VirtualPages
}

func (n *Navigator) pageOffsetLocked(i int) float64 {
	return float64(i) * n.width
}

func (n *Navigator) clampIndexLocked(i int) int {
	last := n.pageCountLocked() - 1
	if i > last {
		i = last
	}
	if i < 0 {
		i = 0
	}
	return i
}

func (n *Navigator) clampOffsetLocked(off float64) float64 {
	maxOff := n.pageOffsetLocked(max(n.pageCountLocked()-1, 0))
	return math.Max(0, math.Min(off, maxOff))
}

func (n *Navigator) nearestLocked(off float64) int {
	if n.width <= 0 {
		return n.index
	}
	return n.clampIndexLocked(int(math.Round(off / n.width)))
}

// jumpLocked sets index and offset to page i and reports an index change.
func (n *Navigator) jumpLocked(i int) bool {
	i = n.clampIndexLocked(i)
	changed := i != n.index
	n.index = i
	n.offset = n.pageOffsetLocked(i)
	return changed
}

func (n *Navigator) scrollLocked(off float64) bool {
	n.offset = n.clampOffsetLocked(off)
	i := n.nearestLocked(n.offset)
	changed := i != n.index
	n.index = i
	return changed
}

func (n *Navigator) armSettleLocked() {
	n.cancelSettleLocked()
	token := n.seq
	n.settle = n.opts.Clock.AfterFunc(n.opts.SettleDelay, func() { n.settleFired(token) })
}

func (n *Navigator) cancelSettleLocked() {
	if n.settle != nil {
		n.settle.Stop()
		n.settle = nil
	}
	n.seq++
}

// notify calls motion listeners, and index listeners when idx >= 0.
func (n *Navigator) notify(idx int) {
	n.mu.Lock()
	var indexFns []func(int)
	if idx >= 0 {
		indexFns = make([]func(int), 0, len(n.indexListeners))
		for _, fn := range n.indexListeners {
			indexFns = append(indexFns, fn)
		}
	}
	motionFns := make([]func(), 0, len(n.motionListeners))
	for _, fn := range n.motionListeners {
		motionFns = append(motionFns, fn)
	}
	n.mu.Unlock()

	for _, fn := range indexFns {
		fn(idx)
	}
	for _, fn := range motionFns {
		fn()
	}
}
