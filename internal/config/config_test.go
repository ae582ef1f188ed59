package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestDefaultConfig_Valid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.File != "" {
		t.Fatalf("expected no file, got %q", res.File)
	}
	if res.Config.Gesture.LongPressDelay != 400*time.Millisecond {
		t.Fatalf("unexpected long press delay %v", res.Config.Gesture.LongPressDelay)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(writeConfig(t, "# empty\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Grid.CellSize != DefaultConfig().Grid.CellSize {
		t.Fatalf("expected default cell size, got %v", res.Config.Grid.CellSize)
	}
}

func TestLoadFromPath_OverridesOnTopOfDefaults(t *testing.T) {
	path := writeConfig(t, strings.Join([]string{
		"grid:",
		"  cell_size: 20",
		"gesture:",
		"  long_press_delay: 500ms",
		"carousel:",
		"  virtual_pages: 2",
		"log_level: debug",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.Grid.CellSize != 20 || cfg.Grid.Columns != 60 {
		t.Fatalf("grid = %+v, want cell_size 20 and default columns", cfg.Grid)
	}
	if cfg.Gesture.LongPressDelay != 500*time.Millisecond {
		t.Fatalf("long_press_delay = %v", cfg.Gesture.LongPressDelay)
	}
	if cfg.Gesture.EdgeWidth != 1 {
		t.Fatalf("edge_width should keep its default, got %v", cfg.Gesture.EdgeWidth)
	}
	if cfg.Carousel.VirtualPages != 2 || cfg.LogLevel != "debug" {
		t.Fatalf("unexpected carousel/log level: %+v %q", cfg.Carousel, cfg.LogLevel)
	}
}

func TestLoadFromPath_UnknownKeyRejected(t *testing.T) {
	_, err := LoadFromPath(writeConfig(t, "grid:\n  cel_size: 3\n"))
	if err == nil {
		t.Fatalf("expected unknown key to fail")
	}
}

func TestLoadFromPath_ValidationErrorHasPosition(t *testing.T) {
	path := writeConfig(t, "grid:\n  cell_size: 0\n")
	_, err := LoadFromPath(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Path != "grid.cell_size" || verr.Source.Line != 2 {
		t.Fatalf("unexpected error context: %+v", verr)
	}
	if !strings.HasPrefix(err.Error(), path+":2:") {
		t.Fatalf("error should point at the file position: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"negative jitter", func(c *Config) { c.Gesture.JitterThreshold = -1 }, "gesture.jitter_threshold"},
		{"zero long press", func(c *Config) { c.Gesture.LongPressDelay = 0 }, "gesture.long_press_delay"},
		{"zero scroll delay", func(c *Config) { c.AutoScroll.Delay = 0 }, "auto_scroll.delay"},
		{"negative edge", func(c *Config) { c.AutoScroll.EdgeThreshold = -5 }, "auto_scroll.edge_threshold"},
		{"zero settle", func(c *Config) { c.Carousel.SettleDelay = 0 }, "carousel.settle_delay"},
		{"negative virtual pages", func(c *Config) { c.Carousel.VirtualPages = -1 }, "carousel.virtual_pages"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"zero rows", func(c *Config) { c.Grid.Rows = 0 }, "grid.rows"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			var verr *ValidationError
			if err := cfg.Validate(); !errors.As(err, &verr) || verr.Path != tt.path {
				t.Fatalf("Validate() = %v, want error at %s", err, tt.path)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg := DefaultConfig()
	cfg.AutoScroll.Delay = 250 * time.Millisecond
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.AutoScroll.Delay != 250*time.Millisecond {
		t.Fatalf("delay = %v after round trip", res.Config.AutoScroll.Delay)
	}
}

func TestBoardPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	cfg := DefaultConfig()
	got, err := cfg.BoardPath()
	if err != nil || got != "/cfg/deskgrid/board.yaml" {
		t.Fatalf("BoardPath() = %q, %v", got, err)
	}
	cfg.Board.Path = "/tmp/b.yaml"
	if got, _ := cfg.BoardPath(); got != "/tmp/b.yaml" {
		t.Fatalf("BoardPath() = %q", got)
	}
}

func TestExplain(t *testing.T) {
	path := writeConfig(t, "auto_scroll:\n  delay: 300ms\n")
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	value, src, err := Explain(res, "auto_scroll.delay")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if value != "300ms" || src.Kind != SourceFile || src.Line != 2 {
		t.Fatalf("explain = %q from %+v", value, src)
	}

	value, src, err = Explain(res, "carousel.virtual_pages")
	if err != nil || value != "1" || src.Kind != SourceDefault {
		t.Fatalf("explain default = %q from %+v (%v)", value, src, err)
	}

	if _, _, err := Explain(res, "gesture.nope"); err == nil {
		t.Fatalf("expected unknown path error")
	}
}

func TestKeys(t *testing.T) {
	keys := Keys()
	want := map[string]bool{"grid.cell_size": false, "gesture.long_press_delay": false, "log_level": false, "board.path": false}
	for _, k := range keys {
		if _, ok := want[k]; ok {
			want[k] = true
		}
	}
	for k, seen := range want {
		if !seen {
			t.Fatalf("Keys() missing %s: %v", k, keys)
		}
	}
}
