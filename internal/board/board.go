// Package board is the reference host for the layout engine: desktops and
// blocks kept in memory and persisted as a yaml file.
package board

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/1broseidon/deskgrid/internal/block"
	"github.com/1broseidon/deskgrid/internal/grid"
)

// CurrentVersion is written to every saved board.
const CurrentVersion = 1

var (
	ErrBlockNotFound   = errors.New("block not found")
	ErrDesktopNotFound = errors.New("desktop not found")
)

// Board is the persisted document.
type Board struct {
	Version  int             `yaml:"version" json:"version"`
	Desktops []block.Desktop `yaml:"desktops" json:"desktops"`
}

// Validate checks versions and global id uniqueness.
func (b *Board) Validate() error {
	if b.Version > CurrentVersion {
		return fmt.Errorf("board version %d is newer than supported version %d", b.Version, CurrentVersion)
	}
	desktops := make(map[string]struct{}, len(b.Desktops))
	blocks := make(map[string]string)
	for i := range b.Desktops {
		d := &b.Desktops[i]
		if d.ID == "" {
			return fmt.Errorf("desktop %d has an empty id", i)
		}
		if _, dup := desktops[d.ID]; dup {
			return fmt.Errorf("duplicate desktop id %q", d.ID)
		}
		desktops[d.ID] = struct{}{}
		if err := d.Validate(); err != nil {
			return err
		}
		for _, blk := range d.Blocks {
			if other, dup := blocks[blk.ID]; dup {
				return fmt.Errorf("block %q appears on desktops %q and %q", blk.ID, other, d.ID)
			}
			blocks[blk.ID] = d.ID
		}
	}
	return nil
}

// Default returns the seed board: a desktop with a clock and a note, and an
// empty second desktop.
func Default() Board {
	return Board{
		Version: CurrentVersion,
		Desktops: []block.Desktop{
			{
				ID:    newID(),
				Title: "Home",
				Blocks: []block.Block{
					{ID: newID(), Type: block.TypeClock, Title: "Clock", Layout: grid.Layout{X: 1, Y: 1, W: 6, H: 3}},
					{ID: newID(), Type: block.TypeNote, Title: "Notes", Layout: grid.Layout{X: 9, Y: 1, W: 8, H: 4},
						Props: map[string]string{"text": "Drag edges to move, corners to resize."}},
				},
			},
			{ID: newID(), Title: "Work"},
		},
	}
}

// Options configures a Store.
type Options struct {
	// Path is where Save writes; empty disables saving.
	Path string
	// Grid bounds layouts placed by AddBlock and the MCP tools.
	Grid   grid.Grid
	Logger *log.Logger
}

// Store is a concurrency-safe board. It implements desk.Host.
type Store struct {
	mu        sync.RWMutex
	board     Board
	opts      Options
	logger    *log.Logger
	dirty     bool
	listeners map[int]func()
	nextID    int
}

// New wraps b in a store.
func New(b Board, opts Options) *Store {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if b.Version == 0 {
		b.Version = CurrentVersion
	}
	return &Store{
		board:     cloneBoard(b),
		opts:      opts,
		logger:    opts.Logger,
		listeners: make(map[int]func()),
	}
}

// Load reads the board at opts.Path. A missing file yields Default().
func Load(opts Options) (*Store, error) {
	data, err := os.ReadFile(opts.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return New(Default(), opts), nil
		}
		return nil, fmt.Errorf("failed to read board %s: %w", opts.Path, err)
	}
	var b Board
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to parse board %s: %w", opts.Path, err)
	}
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("invalid board %s: %w", opts.Path, err)
	}
	return New(b, opts), nil
}

// Path returns the file Save writes to.
func (s *Store) Path() string { return s.opts.Path }

// Grid returns the grid used for placement.
func (s *Store) Grid() grid.Grid { return s.opts.Grid }

// Save writes the board atomically.
func (s *Store) Save() error {
	if s.opts.Path == "" {
		return fmt.Errorf("board has no path")
	}
	s.mu.RLock()
	data, err := yaml.Marshal(&s.board)
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to encode board: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.opts.Path), 0755); err != nil {
		return fmt.Errorf("failed to create board directory: %w", err)
	}
	tmp := s.opts.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write board: %w", err)
	}
	if err := os.Rename(tmp, s.opts.Path); err != nil {
		return fmt.Errorf("failed to replace board: %w", err)
	}

	s.mu.Lock()
	s.dirty = false
	s.mu.Unlock()
	s.logger.Debug("Board: saved", "path", s.opts.Path)
	return nil
}

// Dirty reports unsaved changes.
func (s *Store) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// Snapshot returns a deep copy of the board.
func (s *Store) Snapshot() Board {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneBoard(s.board)
}

// ListDesktops returns copies of every desktop in order.
func (s *Store) ListDesktops() []block.Desktop {
	return s.Snapshot().Desktops
}

// ListBlocks returns a copy of a desktop's blocks in paint order.
func (s *Store) ListBlocks(desktopID string) []block.Block {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d := s.desktopLocked(desktopID)
	if d == nil {
		return nil
	}
	return cloneBlocks(d.Blocks)
}

// Desktop returns a copy of one desktop.
func (s *Store) Desktop(id string) (block.Desktop, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d := s.desktopLocked(id)
	if d == nil {
		return block.Desktop{}, fmt.Errorf("%w: %s", ErrDesktopNotFound, id)
	}
	return cloneDesktop(*d), nil
}

// FindDesktop resolves a desktop id, or a 1-based position when no id matches.
func (s *Store) FindDesktop(ref string) (block.Desktop, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return block.Desktop{}, fmt.Errorf("%w: empty reference", ErrDesktopNotFound)
	}
	if d, err := s.Desktop(ref); err == nil {
		return d, nil
	}
	n, err := strconv.Atoi(ref)
	if err != nil {
		return block.Desktop{}, fmt.Errorf("%w: %s", ErrDesktopNotFound, ref)
	}
	desktops := s.ListDesktops()
	if n < 1 || n > len(desktops) {
		return block.Desktop{}, fmt.Errorf("%w: position %d (have %d desktops)", ErrDesktopNotFound, n, len(desktops))
	}
	return desktops[n-1], nil
}

// Block returns a block and the id of the desktop holding it.
func (s *Store) Block(id string) (block.Block, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, i := s.findLocked(id)
	if d == nil {
		return block.Block{}, "", fmt.Errorf("%w: %s", ErrBlockNotFound, id)
	}
	return cloneBlock(d.Blocks[i]), d.ID, nil
}

// CommitLayout implements desk.Host.
func (s *Store) CommitLayout(blockID string, l grid.Layout) {
	if err := s.MoveBlock(blockID, l); err != nil {
		s.logger.Warn("Board: commit layout failed", "block", blockID, "error", err)
	}
}

// CommitCrossDesktopMove implements desk.Host.
func (s *Store) CommitCrossDesktopMove(blockID, fromDesktopID, toDesktopID string, l grid.Layout) {
	if err := s.MoveBlockToDesktop(blockID, toDesktopID, l); err != nil {
		s.logger.Warn("Board: cross-desktop move failed", "block", blockID,
			"from", fromDesktopID, "to", toDesktopID, "error", err)
	}
}

// DeleteBlock implements desk.Host.
func (s *Store) DeleteBlock(blockID string) {
	if err := s.RemoveBlock(blockID); err != nil {
		s.logger.Warn("Board: delete failed", "block", blockID, "error", err)
	}
}

// MoveBlock sets a block's layout in place. The layout is stored as given;
// callers fit it first.
func (s *Store) MoveBlock(blockID string, l grid.Layout) error {
	s.mu.Lock()
	d, i := s.findLocked(blockID)
	if d == nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrBlockNotFound, blockID)
	}
	changed := d.Blocks[i].Layout != l
	d.Blocks[i].Layout = l
	if changed {
		s.dirty = true
	}
	s.mu.Unlock()

	if changed {
		s.notify()
	}
	return nil
}

// MoveBlockToDesktop moves a block to the end of another desktop's paint
// order with a new layout. Repeating the call is a plain layout update.
func (s *Store) MoveBlockToDesktop(blockID, toDesktopID string, l grid.Layout) error {
	s.mu.Lock()
	dst := s.desktopLocked(toDesktopID)
	if dst == nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrDesktopNotFound, toDesktopID)
	}
	src, i := s.findLocked(blockID)
	if src == nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrBlockNotFound, blockID)
	}
	if src.ID == dst.ID {
		s.mu.Unlock()
		return s.MoveBlock(blockID, l)
	}

	b := src.Blocks[i]
	src.Blocks = append(src.Blocks[:i], src.Blocks[i+1:]...)
	b.Layout = l
	dst.Blocks = append(dst.Blocks, b)
	s.dirty = true
	from := src.ID
	s.mu.Unlock()

	s.logger.Debug("Board: block moved across desktops", "block", blockID, "from", from, "to", toDesktopID)
	s.notify()
	return nil
}

// RemoveBlock deletes a block.
func (s *Store) RemoveBlock(blockID string) error {
	s.mu.Lock()
	d, i := s.findLocked(blockID)
	if d == nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrBlockNotFound, blockID)
	}
	d.Blocks = append(d.Blocks[:i], d.Blocks[i+1:]...)
	s.dirty = true
	s.mu.Unlock()

	s.notify()
	return nil
}

// AddDesktop appends an empty desktop.
func (s *Store) AddDesktop(title string) block.Desktop {
	d := block.Desktop{ID: newID(), Title: title}
	s.mu.Lock()
	s.board.Desktops = append(s.board.Desktops, d)
	s.dirty = true
	s.mu.Unlock()

	s.notify()
	return d
}

// RemoveDesktop deletes a desktop and its blocks.
func (s *Store) RemoveDesktop(id string) error {
	s.mu.Lock()
	idx := -1
	for i := range s.board.Desktops {
		if s.board.Desktops[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrDesktopNotFound, id)
	}
	s.board.Desktops = append(s.board.Desktops[:idx], s.board.Desktops[idx+1:]...)
	s.dirty = true
	s.mu.Unlock()

	s.notify()
	return nil
}

// AddBlock creates a block of the type's minimum size in the first free row
// below the desktop's existing blocks.
func (s *Store) AddBlock(desktopID string, typ block.Type, title string) (block.Block, error) {
	bounds := typ.Bounds()
	b := block.Block{ID: newID(), Type: typ, Title: title}

	s.mu.Lock()
	d := s.desktopLocked(desktopID)
	if d == nil {
		s.mu.Unlock()
		return block.Block{}, fmt.Errorf("%w: %s", ErrDesktopNotFound, desktopID)
	}
	y := 0
	for _, other := range d.Blocks {
		y = max(y, other.Layout.Y+other.Layout.H)
	}
	b.Layout = b.Fit(s.opts.Grid, grid.Layout{X: 0, Y: y, W: bounds.MinW, H: bounds.MinH})
	d.Blocks = append(d.Blocks, b)
	s.dirty = true
	s.mu.Unlock()

	s.logger.Debug("Board: block added", "block", b.ID, "type", typ, "desktop", desktopID)
	s.notify()
	return cloneBlock(b), nil
}

// SetContent replaces a block's title and props.
func (s *Store) SetContent(blockID, title string, props map[string]string) error {
	s.mu.Lock()
	d, i := s.findLocked(blockID)
	if d == nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrBlockNotFound, blockID)
	}
	d.Blocks[i].Title = title
	d.Blocks[i].Props = cloneBlock(block.Block{Props: props}).Props
	s.dirty = true
	s.mu.Unlock()

	s.notify()
	return nil
}

// Subscribe registers fn for every mutation.
func (s *Store) Subscribe(fn func()) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Store) notify() {
	s.mu.RLock()
	fns := make([]func(), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()
	for _, fn := range fns {
		fn()
	}
}

func (s *Store) desktopLocked(id string) *block.Desktop {
	for i := range s.board.Desktops {
		if s.board.Desktops[i].ID == id {
			return &s.board.Desktops[i]
		}
	}
	return nil
}

func (s *Store) findLocked(blockID string) (*block.Desktop, int) {
	for i := range s.board.Desktops {
		d := &s.board.Desktops[i]
		if j := d.Find(blockID); j >= 0 {
			return d, j
		}
	}
	return nil, -1
}

func newID() string {
	return uuid.NewString()
}

func cloneBoard(b Board) Board {
	out := Board{Version: b.Version, Desktops: make([]block.Desktop, len(b.Desktops))}
	for i, d := range b.Desktops {
		out.Desktops[i] = cloneDesktop(d)
	}
	return out
}

func cloneDesktop(d block.Desktop) block.Desktop {
	d.Blocks = cloneBlocks(d.Blocks)
	return d
}

func cloneBlocks(blocks []block.Block) []block.Block {
	if blocks == nil {
		return nil
	}
	out := make([]block.Block, len(blocks))
	for i, b := range blocks {
		out[i] = cloneBlock(b)
	}
	return out
}

func cloneBlock(b block.Block) block.Block {
	if b.Props != nil {
		props := make(map[string]string, len(b.Props))
		for k, v := range b.Props {
			props[k] = v
		}
		b.Props = props
	}
	return b
}
