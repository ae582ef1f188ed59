// Package tui hosts the layout engine in a terminal. One terminal cell is one
// pixel; the mouse drives the engine and keys drive the carousel and board.
package tui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/1broseidon/deskgrid/internal/board"
	"github.com/1broseidon/deskgrid/internal/clock"
	"github.com/1broseidon/deskgrid/internal/config"
	"github.com/1broseidon/deskgrid/internal/desk"
)

// Options configures the TUI.
type Options struct {
	Store  *board.Store
	Config *config.Config
	Logger *log.Logger
	// Clock defaults to the wall clock.
	Clock clock.Clock
}

// engineOptions maps the configuration onto the engine.
func engineOptions(cfg *config.Config, clk clock.Clock, logger *log.Logger) desk.Options {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return desk.Options{
		Clock:           clk,
		Logger:          logger,
		CellSize:        cfg.Grid.CellSize,
		EdgeWidth:       cfg.Gesture.EdgeWidth,
		CornerSize:      cfg.Gesture.CornerSize,
		LongPressDelay:  cfg.Gesture.LongPressDelay,
		JitterThreshold: cfg.Gesture.JitterThreshold,
		EdgeThreshold:   cfg.AutoScroll.EdgeThreshold,
		AutoScrollDelay: cfg.AutoScroll.Delay,
		SettleDelay:     cfg.Carousel.SettleDelay,
		SwipeThreshold:  cfg.Carousel.SwipeThreshold,
		VirtualPages:    cfg.Carousel.VirtualPages,
	}
}

func newModel(opts Options) model {
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	engine := desk.New(opts.Store, engineOptions(opts.Config, opts.Clock, opts.Logger))
	redraw := make(chan struct{}, 1)
	poke := func() {
		select {
		case redraw <- struct{}{}:
		default:
		}
	}

	m := model{
		store:  opts.Store,
		engine: engine,
		logger: opts.Logger,
		keys:   newKeyMap(),
		help:   help.New(),
		picker: newPicker(),
		redraw: redraw,
		locked: make(map[string]bool),
		now:    opts.Clock.Now(),
	}
	m.cancels = append(m.cancels,
		opts.Store.Subscribe(engine.Sync),
		engine.OnChange(poke),
	)
	return m
}

// Run starts the board TUI and saves pending changes on exit.
func Run(opts Options) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("tui requires an interactive terminal (stdin/stdout must be TTYs)")
	}
	if opts.Store == nil {
		return fmt.Errorf("tui requires a board store")
	}

	m := newModel(opts)
	defer m.close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}

	if opts.Store.Dirty() {
		if err := opts.Store.Save(); err != nil {
			return fmt.Errorf("failed to save board: %w", err)
		}
		m.logger.Info("Board: saved on exit", "path", opts.Store.Path())
	}
	return nil
}
