package mcp

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/1broseidon/deskgrid/internal/block"
	"github.com/1broseidon/deskgrid/internal/board"
	"github.com/1broseidon/deskgrid/internal/grid"
)

func intPtr(v int) *int { return &v }

func newTestServer(t *testing.T) (*Server, *board.Store) {
	t.Helper()
	store := board.New(board.Board{
		Version: board.CurrentVersion,
		Desktops: []block.Desktop{
			{ID: "A", Title: "Home", Blocks: []block.Block{
				{ID: "n1", Type: block.TypeNote, Layout: grid.Layout{X: 0, Y: 0, W: 4, H: 2}},
			}},
			{ID: "B", Title: "Work"},
		},
	}, board.Options{
		Path:   filepath.Join(t.TempDir(), "board.yaml"),
		Grid:   grid.Grid{CellSize: 2, Cols: 20, Rows: 10},
		Logger: log.New(io.Discard),
	})
	return NewServer(store, log.New(io.Discard)), store
}

func reload(t *testing.T, store *board.Store) *board.Store {
	t.Helper()
	loaded, err := board.Load(board.Options{Path: store.Path(), Logger: log.New(io.Discard)})
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	return loaded
}

func TestListDesktops(t *testing.T) {
	s, _ := newTestServer(t)
	_, out, err := s.handleListDesktops(context.Background(), nil, ListDesktopsInput{})
	if err != nil {
		t.Fatalf("list_desktops: %v", err)
	}
	if len(out.Desktops) != 2 || out.Desktops[0].Blocks != 1 || out.Desktops[1].Index != 2 {
		t.Fatalf("desktops = %+v", out.Desktops)
	}
}

func TestListBlocksByPosition(t *testing.T) {
	s, _ := newTestServer(t)
	tests := []struct {
		name    string
		desktop string
		want    string
		wantErr bool
	}{
		{"by id", "A", "A", false},
		{"by position", "2", "B", false},
		{"position out of range", "3", "", true},
		{"unknown id", "Z", "", true},
		{"empty", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, out, err := s.handleListBlocks(context.Background(), nil, ListBlocksInput{Desktop: tt.desktop})
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.desktop)
				}
				return
			}
			if err != nil || out.DesktopID != tt.want {
				t.Fatalf("list_blocks(%q) = %q, %v", tt.desktop, out.DesktopID, err)
			}
		})
	}
}

func TestMoveBlockFitsAndSaves(t *testing.T) {
	s, store := newTestServer(t)

	_, out, err := s.handleMoveBlock(context.Background(), nil, MoveBlockInput{
		BlockID: "n1", X: 18, Y: 3, W: intPtr(1), H: intPtr(3),
	})
	if err != nil {
		t.Fatalf("move_block: %v", err)
	}
	// width raised to the note minimum, then pulled back inside 20 columns
	want := grid.Layout{X: 16, Y: 3, W: 4, H: 3}
	got := grid.Layout{X: out.Block.X, Y: out.Block.Y, W: out.Block.W, H: out.Block.H}
	if got != want || !out.Adjusted {
		t.Fatalf("move_block = %+v adjusted=%v, want %+v", got, out.Adjusted, want)
	}
	if b, _, _ := reload(t, store).Block("n1"); b.Layout != want {
		t.Fatalf("saved layout = %+v", b.Layout)
	}
}

func TestMoveBlockToDesktop(t *testing.T) {
	s, store := newTestServer(t)

	_, out, err := s.handleMoveBlockToDesktop(context.Background(), nil, MoveBlockToDesktopInput{
		BlockID: "n1", Desktop: "Work", X: intPtr(2),
	})
	if err == nil {
		t.Fatalf("titles are not desktop references, got %+v", out)
	}

	_, out, err = s.handleMoveBlockToDesktop(context.Background(), nil, MoveBlockToDesktopInput{
		BlockID: "n1", Desktop: "2", X: intPtr(2),
	})
	if err != nil {
		t.Fatalf("move_block_to_desktop: %v", err)
	}
	if out.Block.DesktopID != "B" || out.Block.X != 2 || out.Block.W != 4 || out.Adjusted {
		t.Fatalf("moved block = %+v adjusted=%v", out.Block, out.Adjusted)
	}

	// repeating the move is a plain layout update
	if _, _, err := s.handleMoveBlockToDesktop(context.Background(), nil, MoveBlockToDesktopInput{BlockID: "n1", Desktop: "B"}); err != nil {
		t.Fatalf("repeat move: %v", err)
	}

	loaded := reload(t, store)
	if got := loaded.ListBlocks("A"); len(got) != 0 {
		t.Fatalf("desktop A still has %+v", got)
	}
	if got := loaded.ListBlocks("B"); len(got) != 1 || got[0].ID != "n1" {
		t.Fatalf("desktop B = %+v", got)
	}
}

func TestAddBlock(t *testing.T) {
	s, store := newTestServer(t)

	if _, _, err := s.handleAddBlock(context.Background(), nil, AddBlockInput{Desktop: "A", Type: "toaster"}); err == nil {
		t.Fatalf("expected unknown type to fail")
	}

	_, out, err := s.handleAddBlock(context.Background(), nil, AddBlockInput{
		Desktop: "1", Type: "Feed", Title: "News", Text: "a, b",
	})
	if err != nil {
		t.Fatalf("add_block: %v", err)
	}
	if out.Block.Type != "feed" || out.Block.Y != 2 || out.Block.Props["items"] != "a, b" {
		t.Fatalf("added = %+v", out.Block)
	}

	b, desktop, err := reload(t, store).Block(out.Block.ID)
	if err != nil || desktop != "A" || b.Title != "News" {
		t.Fatalf("saved block = %+v on %q, %v", b, desktop, err)
	}
}

func TestDeleteBlock(t *testing.T) {
	s, store := newTestServer(t)

	if _, out, err := s.handleDeleteBlock(context.Background(), nil, DeleteBlockInput{BlockID: "n1"}); err != nil || !out.Deleted {
		t.Fatalf("delete_block = %+v, %v", out, err)
	}
	if _, _, err := s.handleDeleteBlock(context.Background(), nil, DeleteBlockInput{BlockID: "n1"}); !errors.Is(err, board.ErrBlockNotFound) {
		t.Fatalf("second delete: %v", err)
	}
	if _, _, err := reload(t, store).Block("n1"); !errors.Is(err, board.ErrBlockNotFound) {
		t.Fatalf("deleted block survived the save: %v", err)
	}
}
