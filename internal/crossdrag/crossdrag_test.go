package crossdrag

import (
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/1broseidon/deskgrid/internal/block"
)

func newTestCoordinator() *Coordinator {
	return New(log.New(io.Discard))
}

func TestStartUpdateEnd(t *testing.T) {
	c := newTestCoordinator()
	s := Session{
		Block:           block.Block{ID: "b1"},
		SourceDesktopID: "A",
		PointerX:        100,
		PointerY:        50,
		OffsetX:         10,
		OffsetY:         5,
		Width:           80,
		Height:          40,
	}
	if err := c.Start(s); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !c.Active() {
		t.Fatalf("expected active session")
	}

	c.Update(300, 120)
	cur, ok := c.Current()
	if !ok || cur.PointerX != 300 || cur.PointerY != 120 {
		t.Fatalf("unexpected current session: %+v", cur)
	}
	if x, y := cur.TopLeft(); x != 290 || y != 115 {
		t.Fatalf("TopLeft = (%v, %v), want (290, 115)", x, y)
	}

	ended, ok := c.End()
	if !ok || ended.Block.ID != "b1" || ended.SourceDesktopID != "A" {
		t.Fatalf("unexpected ended session: %+v", ended)
	}
	if c.Active() {
		t.Fatalf("session still active after End")
	}
	if _, ok := c.End(); ok {
		t.Fatalf("second End should report no session")
	}
}

func TestStartWhileActiveIsRefused(t *testing.T) {
	c := newTestCoordinator()
	if err := c.Start(Session{Block: block.Block{ID: "first"}}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	err := c.Start(Session{Block: block.Block{ID: "second"}})
	if !errors.Is(err, ErrSessionActive) {
		t.Fatalf("expected ErrSessionActive, got %v", err)
	}
	cur, _ := c.Current()
	if cur.Block.ID != "first" {
		t.Fatalf("running session was overwritten: %s", cur.Block.ID)
	}
}

func TestCancelClearsWithoutReturning(t *testing.T) {
	c := newTestCoordinator()
	_ = c.Start(Session{Block: block.Block{ID: "b"}})
	c.Cancel()
	if c.Active() {
		t.Fatalf("expected no session after Cancel")
	}
	c.Update(1, 1) // no-op
	if _, ok := c.Current(); ok {
		t.Fatalf("Update recreated a session")
	}
}

func TestListenersSeeEveryTransition(t *testing.T) {
	c := newTestCoordinator()
	var snaps []Snapshot
	cancel := c.Subscribe(func(s Snapshot) { snaps = append(snaps, s) })

	_ = c.Start(Session{Block: block.Block{ID: "b"}, PointerX: 1})
	c.Update(2, 2)
	c.End()
	_ = c.Start(Session{Block: block.Block{ID: "b"}})
	c.Cancel()

	if len(snaps) != 5 {
		t.Fatalf("expected 5 snapshots, got %d", len(snaps))
	}
	if !snaps[1].Active || snaps[1].Session.PointerX != 2 {
		t.Fatalf("update snapshot wrong: %+v", snaps[1])
	}
	if snaps[2].Active || snaps[4].Active {
		t.Fatalf("end/cancel snapshots must be inactive")
	}

	cancel()
	_ = c.Start(Session{Block: block.Block{ID: "c"}})
	if len(snaps) != 5 {
		t.Fatalf("listener called after unsubscribe")
	}
}

func TestSnapshotSeqIncreases(t *testing.T) {
	c := newTestCoordinator()
	var seqs []uint64
	c.Subscribe(func(s Snapshot) { seqs = append(seqs, s.Seq) })

	_ = c.Start(Session{Block: block.Block{ID: "b"}})
	c.Update(5, 5)
	c.Cancel()
	c.Cancel() // no session, no snapshot

	if len(seqs) != 3 {
		t.Fatalf("expected 3 snapshots, got %v", seqs)
	}
	for i := 1; i < len(seqs); i++ {
		if seqs[i] <= seqs[i-1] {
			t.Fatalf("seq not increasing: %v", seqs)
		}
	}
	if cur := c.Snapshot(); cur.Active || cur.Seq != seqs[2] {
		t.Fatalf("Snapshot() = %+v, want inactive at seq %d", cur, seqs[2])
	}
}

func TestListenerMayReadCoordinator(t *testing.T) {
	c := newTestCoordinator()
	seen := false
	c.Subscribe(func(Snapshot) {
		_, seen = c.Current()
	})
	_ = c.Start(Session{Block: block.Block{ID: "b"}})
	if !seen {
		t.Fatalf("listener could not observe the session")
	}
}

func TestCarries(t *testing.T) {
	s := Session{
		Block:      block.Block{ID: "p"},
		Additional: []Carried{{Block: block.Block{ID: "q"}}},
	}
	if !s.Carries("p") || !s.Carries("q") || s.Carries("r") {
		t.Fatalf("Carries returned wrong membership")
	}
}
