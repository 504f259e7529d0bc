package inmemory

import (
	"context"
	"sync"

	"github.com/isoilaj/caregiver-registry/internal/domain/entity"
	"github.com/isoilaj/caregiver-registry/internal/domain/repository"
)

// Store keeps the registry dataset in memory. Every Load and Save copies, so
// callers never share state with the store.
type Store struct {
	mu    sync.RWMutex
	data  *entity.Dataset
	saves int

	// SaveErr, when set, is returned by Save instead of storing.
	SaveErr error
}

var _ repository.Store = (*Store)(nil)

func NewStore(seed *entity.Dataset) *Store {
	return &Store{data: seed.Clone()}
}

func (s *Store) Load(ctx context.Context) (*entity.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Clone(), nil
}

func (s *Store) Save(ctx context.Context, data *entity.Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.data = data.Clone()
	s.saves++
	return nil
}

// Saves returns how many times Save succeeded.
func (s *Store) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

// CandidateStore keeps the unverified caregiver list in memory.
type CandidateStore struct {
	mu         sync.RWMutex
	candidates []entity.Candidate
}

var _ repository.CandidateStore = (*CandidateStore)(nil)

func NewCandidateStore(seed []entity.Candidate) *CandidateStore {
	return &CandidateStore{candidates: copyCandidates(seed)}
}

func (s *CandidateStore) LoadCandidates(ctx context.Context) ([]entity.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyCandidates(s.candidates), nil
}

func (s *CandidateStore) SaveCandidates(ctx context.Context, candidates []entity.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidates = copyCandidates(candidates)
	return nil
}

func copyCandidates(in []entity.Candidate) []entity.Candidate {
	out := make([]entity.Candidate, len(in))
	for i, c := range in {
		if c.VerifiedAt != nil {
			t := *c.VerifiedAt
			c.VerifiedAt = &t
		}
		out[i] = c
	}
	return out
}
