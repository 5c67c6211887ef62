package layout

import (
	"errors"
	"fmt"
)

// Session state machine errors.
var (
	ErrNotEditing     = errors.New("session is not in editing mode")
	ErrAlreadyEditing = errors.New("session is already in editing mode")
	ErrNoSuchCell     = errors.New("no cell with that id in the layout")
)

// State is the edit-mode of a layout session.
type State int

const (
	// Viewing is the default state: cell taps route to the inventory
	// ledger and the geometry is read-only.
	Viewing State = iota
	// Editing holds an in-memory working copy that drags mutate.
	// Nothing is persisted until the session is saved.
	Editing
)

func (s State) String() string {
	if s == Editing {
		return "editing"
	}
	return "viewing"
}

// Session owns the in-memory working copy of one rack's layout during
// an edit. The design assumes a single editor at a time; entry into
// Editing is gated by the access gate at the call site.
type Session struct {
	state     State
	persisted []CellGeometry
	working   []CellGeometry
}

// NewSession starts a session in Viewing over the last persisted layout.
func NewSession(cells []CellGeometry) *Session {
	return &Session{
		state:     Viewing,
		persisted: cloneCells(cells),
	}
}

// State reports the current edit-mode.
func (s *Session) State() State {
	return s.state
}

// Cells returns a copy of the layout as the caller should render it:
// the working copy while editing, the persisted layout otherwise.
func (s *Session) Cells() []CellGeometry {
	if s.state == Editing {
		return cloneCells(s.working)
	}
	return cloneCells(s.persisted)
}

// BeginEdit enters Editing and snapshots the persisted layout into the
// working copy.
func (s *Session) BeginEdit() error {
	if s.state == Editing {
		return ErrAlreadyEditing
	}
	s.working = cloneCells(s.persisted)
	s.state = Editing
	return nil
}

// Move applies a drag delta to one cell of the working copy.
func (s *Session) Move(cellID int, dx, dy float64) error {
	if s.state != Editing {
		return ErrNotEditing
	}
	for i := range s.working {
		if s.working[i].ID == cellID {
			MoveCell(&s.working[i], dx, dy)
			return nil
		}
	}
	return fmt.Errorf("%w: %d", ErrNoSuchCell, cellID)
}

// Working returns a copy of the working layout, the payload a save
// should persist wholesale.
func (s *Session) Working() ([]CellGeometry, error) {
	if s.state != Editing {
		return nil, ErrNotEditing
	}
	return cloneCells(s.working), nil
}

// Save promotes the working copy to the persisted layout and returns to
// Viewing. Call it only after the layout was durably stored, so a failed
// store keeps the session editable.
func (s *Session) Save() error {
	if s.state != Editing {
		return ErrNotEditing
	}
	s.persisted = s.working
	s.working = nil
	s.state = Viewing
	return nil
}

// Cancel discards the working copy and returns to Viewing over the last
// persisted layout. Cancelling in Viewing is a no-op.
func (s *Session) Cancel() {
	s.working = nil
	s.state = Viewing
}

func cloneCells(cells []CellGeometry) []CellGeometry {
	out := make([]CellGeometry, len(cells))
	copy(out, cells)
	return out
}
