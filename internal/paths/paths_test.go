package paths

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigDir_UsesXDGConfigHomeWhenSet(t *testing.T) {
	td := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", td)

	got, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() error: %v", err)
	}
	if want := filepath.Join(td, "deskgrid"); got != want {
		t.Fatalf("ConfigDir() = %q, want %q", got, want)
	}
}

func TestConfigDir_FallsBackToHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", home)

	got, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() error: %v", err)
	}
	if want := filepath.Join(home, ".config", "deskgrid"); got != want {
		t.Fatalf("ConfigDir() = %q, want %q", got, want)
	}
}

func TestStateDir_IsCreated(t *testing.T) {
	td := t.TempDir()
	t.Setenv("XDG_STATE_HOME", td)

	got, err := StateDir()
	if err != nil {
		t.Fatalf("StateDir() error: %v", err)
	}
	info, err := os.Stat(got)
	if err != nil || !info.IsDir() {
		t.Fatalf("StateDir() = %q was not created: %v", got, err)
	}
}

func TestFilePaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_STATE_HOME", t.TempDir())

	cfg, err := ConfigPath()
	if err != nil || !strings.HasSuffix(cfg, "/deskgrid/config.yaml") {
		t.Fatalf("ConfigPath() = %q, %v", cfg, err)
	}
	board, err := BoardPath()
	if err != nil || !strings.HasSuffix(board, "/deskgrid/board.yaml") {
		t.Fatalf("BoardPath() = %q, %v", board, err)
	}
	logPath, err := LogPath()
	if err != nil || !strings.HasSuffix(logPath, "/deskgrid/deskgrid.log") {
		t.Fatalf("LogPath() = %q, %v", logPath, err)
	}
}
