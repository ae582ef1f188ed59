package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/deskgrid/internal/paths"
)

// GridConfig sets the cell size and the grid extent used when no rendering
// surface exists (board commands, MCP).
type GridConfig struct {
	CellSize float64 `yaml:"cell_size"`
	Columns  int     `yaml:"columns"`
	Rows     int     `yaml:"rows"`
}

// GestureConfig tunes hit testing and touch disambiguation.
type GestureConfig struct {
	EdgeWidth       float64       `yaml:"edge_width"`
	CornerSize      float64       `yaml:"corner_size"`
	LongPressDelay  time.Duration `yaml:"long_press_delay"`
	JitterThreshold float64       `yaml:"jitter_threshold"`
}

// AutoScrollConfig tunes the edge auto-scroll during a drag.
type AutoScrollConfig struct {
	EdgeThreshold float64       `yaml:"edge_threshold"`
	Delay         time.Duration `yaml:"delay"`
}

// CarouselConfig tunes desktop paging.
type CarouselConfig struct {
	SettleDelay    time.Duration `yaml:"settle_delay"`
	SwipeThreshold float64       `yaml:"swipe_threshold"`
	VirtualPages   int           `yaml:"virtual_pages"`
}

// BoardConfig locates the board file.
type BoardConfig struct {
	// Path is the board file; empty means ~/.config/deskgrid/board.yaml
	Path string `yaml:"path"`
}

// Config is the effective configuration.
type Config struct {
	Grid       GridConfig       `yaml:"grid"`
	Gesture    GestureConfig    `yaml:"gesture"`
	AutoScroll AutoScrollConfig `yaml:"auto_scroll"`
	Carousel   CarouselConfig   `yaml:"carousel"`
	Board      BoardConfig      `yaml:"board"`
	LogLevel   string           `yaml:"log_level"`
}

// DefaultConfig returns values sized for a terminal, where one pixel is one
// character cell.
func DefaultConfig() *Config {
	return &Config{
		Grid: GridConfig{
			CellSize: 2,
			Columns:  60,
			Rows:     20,
		},
		Gesture: GestureConfig{
			EdgeWidth:       1,
			CornerSize:      2,
			LongPressDelay:  400 * time.Millisecond,
			JitterThreshold: 2,
		},
		AutoScroll: AutoScrollConfig{
			EdgeThreshold: 4,
			Delay:         400 * time.Millisecond,
		},
		Carousel: CarouselConfig{
			SettleDelay:    100 * time.Millisecond,
			SwipeThreshold: 8,
			VirtualPages:   1,
		},
		LogLevel: "info",
	}
}

// BoardPath returns the configured board path, or the default location.
func (c *Config) BoardPath() (string, error) {
	if strings.TrimSpace(c.Board.Path) == "" {
		return paths.BoardPath()
	}
	return expandHome(c.Board.Path)
}

// Save writes the configuration to path.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	if c.Grid.CellSize <= 0 {
		return &ValidationError{Path: "grid.cell_size", Err: fmt.Errorf("cell_size must be > 0")}
	}
	if c.Grid.Columns <= 0 {
		return &ValidationError{Path: "grid.columns", Err: fmt.Errorf("columns must be > 0")}
	}
	if c.Grid.Rows <= 0 {
		return &ValidationError{Path: "grid.rows", Err: fmt.Errorf("rows must be > 0")}
	}
	if c.Gesture.EdgeWidth < 0 {
		return &ValidationError{Path: "gesture.edge_width", Err: fmt.Errorf("edge_width must be >= 0")}
	}
	if c.Gesture.CornerSize < 0 {
		return &ValidationError{Path: "gesture.corner_size", Err: fmt.Errorf("corner_size must be >= 0")}
	}
	if c.Gesture.LongPressDelay <= 0 {
		return &ValidationError{Path: "gesture.long_press_delay", Err: fmt.Errorf("long_press_delay must be > 0")}
	}
	if c.Gesture.JitterThreshold < 0 {
		return &ValidationError{Path: "gesture.jitter_threshold", Err: fmt.Errorf("jitter_threshold must be >= 0")}
	}
	if c.AutoScroll.EdgeThreshold < 0 {
		return &ValidationError{Path: "auto_scroll.edge_threshold", Err: fmt.Errorf("edge_threshold must be >= 0")}
	}
	if c.AutoScroll.Delay <= 0 {
		return &ValidationError{Path: "auto_scroll.delay", Err: fmt.Errorf("delay must be > 0")}
	}
	if c.Carousel.SettleDelay <= 0 {
		return &ValidationError{Path: "carousel.settle_delay", Err: fmt.Errorf("settle_delay must be > 0")}
	}
	if c.Carousel.SwipeThreshold < 0 {
		return &ValidationError{Path: "carousel.swipe_threshold", Err: fmt.Errorf("swipe_threshold must be >= 0")}
	}
	if c.Carousel.VirtualPages < 0 {
		return &ValidationError{Path: "carousel.virtual_pages", Err: fmt.Errorf("virtual_pages must be >= 0")}
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warn, error")}
	}
	return nil
}

// ValidationError points at the offending key and, when known, its file position.
type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, strings.TrimPrefix(path, "~")), nil
}
