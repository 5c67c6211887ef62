package layout

import (
	"errors"
	"testing"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	cells, err := InitializeGrid(2, 2)
	if err != nil {
		t.Fatalf("Failed to initialize grid: %v", err)
	}
	return NewSession(cells)
}

func TestSessionStartsViewing(t *testing.T) {
	s := newTestSession(t)
	if s.State() != Viewing {
		t.Errorf("Expected initial state viewing, got %v", s.State())
	}
	if err := s.Move(0, 0.1, 0.1); !errors.Is(err, ErrNotEditing) {
		t.Errorf("Move outside edit mode should fail, got %v", err)
	}
	if _, err := s.Working(); !errors.Is(err, ErrNotEditing) {
		t.Errorf("Working outside edit mode should fail, got %v", err)
	}
}

func TestSessionEditMoveSave(t *testing.T) {
	s := newTestSession(t)
	if err := s.BeginEdit(); err != nil {
		t.Fatalf("BeginEdit failed: %v", err)
	}
	if err := s.BeginEdit(); !errors.Is(err, ErrAlreadyEditing) {
		t.Errorf("Re-entering edit mode should fail, got %v", err)
	}

	if err := s.Move(3, -0.1, -0.1); err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if err := s.Move(99, 0.1, 0); !errors.Is(err, ErrNoSuchCell) {
		t.Errorf("Moving an unknown cell should fail, got %v", err)
	}

	working, err := s.Working()
	if err != nil {
		t.Fatalf("Working failed: %v", err)
	}
	if working[3].X != 0.4 || working[3].Y != 0.4 {
		t.Errorf("Expected cell 3 at (0.4, 0.4), got (%v, %v)", working[3].X, working[3].Y)
	}

	if err := s.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if s.State() != Viewing {
		t.Errorf("Expected viewing after save, got %v", s.State())
	}
	if got := s.Cells(); got[3].X != 0.4 {
		t.Errorf("Saved geometry lost: cell 3 at x=%v", got[3].X)
	}
}

func TestSessionCancelDiscardsWorkingCopy(t *testing.T) {
	s := newTestSession(t)
	if err := s.BeginEdit(); err != nil {
		t.Fatalf("BeginEdit failed: %v", err)
	}
	if err := s.Move(0, 0.25, 0.25); err != nil {
		t.Fatalf("Move failed: %v", err)
	}

	s.Cancel()
	if s.State() != Viewing {
		t.Errorf("Expected viewing after cancel, got %v", s.State())
	}
	if got := s.Cells(); got[0].X != 0 || got[0].Y != 0 {
		t.Errorf("Cancel must restore persisted layout, cell 0 at (%v, %v)", got[0].X, got[0].Y)
	}

	// Cancel while viewing stays a no-op.
	s.Cancel()
	if s.State() != Viewing {
		t.Errorf("Cancel in viewing changed state to %v", s.State())
	}
}

func TestSessionCellsReturnsCopies(t *testing.T) {
	s := newTestSession(t)
	cells := s.Cells()
	cells[0].X = 0.9
	if got := s.Cells(); got[0].X != 0 {
		t.Error("Mutating a returned slice must not affect the session")
	}
}
