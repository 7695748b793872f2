package services

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"intake-backend/internal/intake"
	"intake-backend/internal/metrics"
	"intake-backend/internal/models"

	"github.com/google/uuid"
)

// sessionTTL bounds how long an abandoned mixed-box wizard is kept. The
// session is in-memory only; a stale one just disappears and the operator
// starts over.
const sessionTTL = 2 * time.Hour

// ErrSessionNotFound means the session id is unknown - expired, cancelled,
// or already materialized.
var ErrSessionNotFound = errors.New("intake session not found")

// IntakeService owns the live mixed-box sessions and turns finished intakes
// into persisted records. Each session belongs to the one workflow that
// created it; the registry mutex guards the map, not the sessions.
type IntakeService struct {
	Store RecordStore

	mu       sync.Mutex
	sessions map[string]*intake.Session
}

func NewIntakeService(store RecordStore) *IntakeService {
	return &IntakeService{
		Store:    store,
		sessions: make(map[string]*intake.Session),
	}
}

// IntakeWholeBox runs the whole-box path end to end: parse, materialize,
// batch-create. Parsing to nothing fails before any storage call.
func (s *IntakeService) IntakeWholeBox(ctx context.Context, req *models.WholeBoxIntakeRequest, operator string) ([]*models.InventoryRecord, error) {
	if req.Country == "" {
		return nil, errors.New("country must not be empty")
	}

	lines := intake.ParseLines(req.LinesText)
	meta := intake.SharedMetadata{Country: req.Country, Packer: req.Packer, Remark: req.Remark}

	records, err := intake.MaterializeWholeBox(lines, meta, operator)
	if err != nil {
		return nil, err
	}

	if err := s.Store.CreateBatch(ctx, records); err != nil {
		return nil, err
	}
	metrics.RecordsCreatedTotal.WithLabelValues(models.BoxTypeWhole).Add(float64(len(records)))
	return records, nil
}

// StartMixedSession captures the shared metadata and opens a session
// awaiting box 0.
func (s *IntakeService) StartMixedSession(req *models.StartMixedIntakeRequest, operator string) (*intake.Session, error) {
	if req.Country == "" {
		return nil, errors.New("country must not be empty")
	}

	meta := intake.SharedMetadata{Country: req.Country, Packer: req.Packer, Remark: req.Remark}
	session, err := intake.StartSession(uuid.NewString(), req.TotalBoxes, meta, operator)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()
	metrics.ActiveIntakeSessions.Inc()

	return session, nil
}

// GetSession returns a live session by id.
func (s *IntakeService) GetSession(id string) (*intake.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// CommitBox commits the current box of a session. While boxes remain the
// updated session is returned with nil records. Committing the final box
// materializes the whole session, batch-creates the records, and drops the
// session from the registry - from that commit to the create returning is
// one logical transaction; cancellation is no longer defined inside it.
func (s *IntakeService) CommitBox(ctx context.Context, id, rawText string) (*intake.Session, []*models.InventoryRecord, error) {
	session, err := s.GetSession(id)
	if err != nil {
		return nil, nil, err
	}

	if err := session.CommitCurrentBox(rawText); err != nil {
		return session, nil, err
	}

	if !session.Completed() {
		return session, nil, nil
	}

	records, err := intake.MaterializeMixedBoxes(session)
	if err != nil {
		return session, nil, err
	}
	if err := s.Store.CreateBatch(ctx, records); err != nil {
		return session, nil, err
	}
	metrics.RecordsCreatedTotal.WithLabelValues(models.BoxTypeMixed).Add(float64(len(records)))

	s.drop(id)
	return session, records, nil
}

// CancelSession discards a session. Always safe: nothing has been persisted
// for a session that is still in the registry.
func (s *IntakeService) CancelSession(id string) error {
	session, err := s.GetSession(id)
	if err != nil {
		return err
	}
	session.Cancel()
	s.drop(id)
	return nil
}

func (s *IntakeService) drop(id string) {
	s.mu.Lock()
	if _, ok := s.sessions[id]; ok {
		delete(s.sessions, id)
		metrics.ActiveIntakeSessions.Dec()
	}
	s.mu.Unlock()
}

// StartSessionReaper evicts sessions idle past the TTL. Runs until the
// context is cancelled.
func (s *IntakeService) StartSessionReaper(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.reap()
			}
		}
	}()
}

func (s *IntakeService) reap() {
	cutoff := time.Now().Add(-sessionTTL)

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, session := range s.sessions {
		if session.UpdatedAt.Before(cutoff) {
			delete(s.sessions, id)
			metrics.ActiveIntakeSessions.Dec()
			log.Printf("[Intake] Reaped stale session %s (box %d/%d)",
				id, session.CurrentBoxIndex, session.TotalBoxesPlanned)
		}
	}
}

// OpenSessionCount reports how many sessions are live, for the dashboard.
func (s *IntakeService) OpenSessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
