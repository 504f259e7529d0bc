package repository

import (
	"context"

	"github.com/isoilaj/caregiver-registry/internal/domain/entity"
)

// Store persists the registry dataset as a whole. Save replaces everything
// previously stored.
type Store interface {
	Load(ctx context.Context) (*entity.Dataset, error)
	Save(ctx context.Context, data *entity.Dataset) error
}

// CandidateStore persists the unverified caregiver list.
type CandidateStore interface {
	LoadCandidates(ctx context.Context) ([]entity.Candidate, error)
	SaveCandidates(ctx context.Context, candidates []entity.Candidate) error
}
