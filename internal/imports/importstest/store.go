// Package importstest provides an in-memory session store for tests of code
// built on the imports service.
package importstest

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/workforce-ai/roster-import/internal/models"
	"github.com/workforce-ai/roster-import/internal/repository"
)

// Store keeps sessions in memory with the same state-guarded update semantics
// as repository.ImportRepository.
type Store struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]models.ImportSession

	// FailUpdates, when set, is returned by every UpdateState call.
	FailUpdates error
	// Updates records the state written by each successful UpdateState call.
	Updates []string
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{sessions: make(map[uuid.UUID]models.ImportSession)}
}

func (s *Store) Create(_ context.Context, rec *models.ImportSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[rec.ID] = clone(*rec)
	return nil
}

func (s *Store) GetByID(_ context.Context, operatorID, id uuid.UUID) (*models.ImportSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.sessions[id]
	if !ok || rec.OperatorID != operatorID {
		return nil, nil
	}
	out := clone(rec)
	return &out, nil
}

func (s *Store) UpdateState(_ context.Context, rec *models.ImportSession, expected string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailUpdates != nil {
		return s.FailUpdates
	}
	cur, ok := s.sessions[rec.ID]
	if !ok || cur.OperatorID != rec.OperatorID || cur.State != expected {
		return repository.ErrStaleState
	}
	s.sessions[rec.ID] = clone(*rec)
	s.Updates = append(s.Updates, rec.State)
	return nil
}

func (s *Store) ListByOperator(_ context.Context, operatorID uuid.UUID, limit int) ([]models.ImportSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.ImportSession
	for _, rec := range s.sessions {
		if rec.OperatorID == operatorID {
			out = append(out, clone(rec))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// SetState overwrites a stored session's state, simulating a concurrent writer.
func (s *Store) SetState(id uuid.UUID, state string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.sessions[id]
	rec.State = state
	s.sessions[id] = rec
}

func clone(rec models.ImportSession) models.ImportSession {
	rec.Report = append([]byte(nil), rec.Report...)
	rec.Failure = append([]byte(nil), rec.Failure...)
	return rec
}
