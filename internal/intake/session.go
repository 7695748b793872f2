package intake

import (
	"errors"
	"fmt"
	"time"
)

// Session states
const (
	StateAwaitingBox = "awaiting_box"
	StateCompleted   = "completed"
	StateCancelled   = "cancelled"
)

var (
	// ErrEmptyBox means the submitted box text parsed to zero line items.
	// The session is not advanced; the caller re-prompts for the same box.
	ErrEmptyBox = errors.New("box has no valid line items")

	// ErrSessionNotActive means a commit was attempted on a completed or
	// cancelled session.
	ErrSessionNotActive = errors.New("intake session is not awaiting input")
)

// SharedMetadata is captured once at session start and replicated onto every
// record the session materializes.
type SharedMetadata struct {
	Country string `json:"country"`
	Packer  string `json:"packer"`
	Remark  string `json:"remark"`
}

// Session is the in-memory state of one mixed-box intake workflow: the user
// declares how many physical boxes arrived, then submits each box's contents
// in order. Nothing is persisted until every box is committed and the
// session is materialized. A session belongs to exactly one workflow
// invocation and is never mutated concurrently.
type Session struct {
	ID                string         `json:"id"`
	State             string         `json:"state"`
	Operator          string         `json:"operator"`
	TotalBoxesPlanned int            `json:"total_boxes_planned"`
	CurrentBoxIndex   int            `json:"current_box_index"`
	Boxes             [][]LineItem   `json:"boxes"` // append-only until completion
	Metadata          SharedMetadata `json:"metadata"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// StartSession creates a session awaiting input for box 0.
func StartSession(id string, totalBoxes int, meta SharedMetadata, operator string) (*Session, error) {
	if totalBoxes < 1 {
		return nil, fmt.Errorf("total boxes must be at least 1, got %d", totalBoxes)
	}

	now := time.Now()
	return &Session{
		ID:                id,
		State:             StateAwaitingBox,
		Operator:          operator,
		TotalBoxesPlanned: totalBoxes,
		CurrentBoxIndex:   0,
		Boxes:             [][]LineItem{},
		Metadata:          meta,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// CommitCurrentBox parses rawText, appends the result as the contents of the
// current box, and advances. If the parse yields nothing the session is left
// exactly as it was and ErrEmptyBox is returned. Committing the last planned
// box transitions the session to completed; with a single planned box that
// happens on the first commit.
func (s *Session) CommitCurrentBox(rawText string) error {
	if s.State != StateAwaitingBox {
		return ErrSessionNotActive
	}

	lines := ParseLines(rawText)
	if len(lines) == 0 {
		return ErrEmptyBox
	}

	s.Boxes = append(s.Boxes, lines)
	s.UpdatedAt = time.Now()

	if s.CurrentBoxIndex+1 < s.TotalBoxesPlanned {
		s.CurrentBoxIndex++
		return nil
	}

	s.CurrentBoxIndex = s.TotalBoxesPlanned
	s.State = StateCompleted
	return nil
}

// Cancel discards the session. No records are ever produced from a cancelled
// session and cancellation has no side effect beyond the in-memory state.
func (s *Session) Cancel() {
	s.State = StateCancelled
	s.Boxes = nil
	s.UpdatedAt = time.Now()
}

// Completed reports whether every planned box has been committed.
func (s *Session) Completed() bool {
	return s.State == StateCompleted
}

// RemainingBoxes returns how many boxes still await input.
func (s *Session) RemainingBoxes() int {
	if s.State != StateAwaitingBox {
		return 0
	}
	return s.TotalBoxesPlanned - s.CurrentBoxIndex
}
