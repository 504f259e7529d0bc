// Package candidate manages the list of caregiver names uploaded for
// verification before they are registered.
package candidate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/isoilaj/caregiver-registry/internal/domain/entity"
	"github.com/isoilaj/caregiver-registry/internal/domain/repository"
	"github.com/isoilaj/caregiver-registry/internal/infrastructure/workbook"
)

var (
	ErrNotFound      = errors.New("candidate not found")
	ErrInvalidStatus = errors.New("invalid candidate status")
	ErrNoNameColumn  = errors.New("name column not found")
	ErrNameRequired  = errors.New("name is required")
)

type Stats struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Verified int `json:"verified"`
	Rejected int `json:"rejected"`
}

type UploadResult struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
}

type Service struct {
	mu    sync.Mutex
	store repository.CandidateStore
	now   func() time.Time
}

func NewService(store repository.CandidateStore, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{store: store, now: now}
}

// List returns candidates with the given status (all when empty) whose name
// contains q, newest upload first.
func (s *Service) List(ctx context.Context, status, q string) ([]entity.Candidate, error) {
	var want entity.CandidateStatus
	if status != "" {
		var ok bool
		if want, ok = entity.ParseCandidateStatus(status); !ok {
			return nil, ErrInvalidStatus
		}
	}
	all, err := s.store.LoadCandidates(ctx)
	if err != nil {
		return nil, err
	}
	q = strings.ToLower(strings.TrimSpace(q))
	out := make([]entity.Candidate, 0, len(all))
	for _, c := range all {
		if want != "" && c.Status != want {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(c.Name), q) {
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UploadedAt.After(out[j].UploadedAt) })
	return out, nil
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	all, err := s.store.LoadCandidates(ctx)
	if err != nil {
		return Stats{}, err
	}
	st := Stats{Total: len(all)}
	for _, c := range all {
		switch c.Status {
		case entity.CandidateVerified:
			st.Verified++
		case entity.CandidateRejected:
			st.Rejected++
		default:
			st.Pending++
		}
	}
	return st, nil
}

// Upload adds the names found in column of an uploaded CSV or XLSX file as
// pending candidates. Without a column, "name" and then "caregiver_name" are
// tried. Names already on the list, compared case-insensitively, are skipped.
func (s *Service) Upload(ctx context.Context, filename string, r io.Reader, column string) (UploadResult, error) {
	records, err := workbook.ReadTable(filename, r, "")
	if err != nil {
		return UploadResult{}, err
	}
	col := strings.ToLower(strings.TrimSpace(column))
	if len(records) > 0 {
		if col == "" {
			for _, candidate := range []string{"name", "caregiver_name"} {
				if records[0].Has(candidate) {
					col = candidate
					break
				}
			}
		}
		if col == "" || !records[0].Has(col) {
			return UploadResult{}, ErrNoNameColumn
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.store.LoadCandidates(ctx)
	if err != nil {
		return UploadResult{}, err
	}
	known := make(map[string]bool, len(all))
	for _, c := range all {
		known[strings.ToLower(c.Name)] = true
	}

	var res UploadResult
	now := s.now().UTC().Truncate(time.Second)
	for _, rec := range records {
		name := entity.NormalizeName(rec.Get(col))
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if known[key] {
			res.Skipped++
			continue
		}
		known[key] = true
		all = append(all, entity.Candidate{
			ID:         uuid.NewString(),
			Name:       name,
			Status:     entity.CandidatePending,
			UploadedAt: now,
			Notes:      fmt.Sprintf("Uploaded from %s", filename),
		})
		res.Added++
	}
	if res.Added == 0 {
		return res, nil
	}
	if err := s.store.SaveCandidates(ctx, all); err != nil {
		return UploadResult{}, err
	}
	return res, nil
}

// Update changes the name and notes of a candidate.
func (s *Service) Update(ctx context.Context, id, name, notes string) (entity.Candidate, error) {
	name = entity.NormalizeName(name)
	if name == "" {
		return entity.Candidate{}, ErrNameRequired
	}
	var updated entity.Candidate
	err := s.modify(ctx, func(all []entity.Candidate) ([]entity.Candidate, error) {
		i := indexOf(all, id)
		if i < 0 {
			return nil, ErrNotFound
		}
		all[i].Name = name
		all[i].Notes = strings.TrimSpace(notes)
		updated = all[i]
		return all, nil
	})
	return updated, err
}

// SetStatus moves every candidate in ids to status. Verifying or rejecting
// records who reviewed it and when; returning to pending clears both. Nothing
// changes when any id is unknown.
func (s *Service) SetStatus(ctx context.Context, ids []string, status, reviewer string) (int, error) {
	st, ok := entity.ParseCandidateStatus(status)
	if !ok {
		return 0, ErrInvalidStatus
	}
	now := s.now().UTC().Truncate(time.Second)
	err := s.modify(ctx, func(all []entity.Candidate) ([]entity.Candidate, error) {
		for _, id := range ids {
			i := indexOf(all, id)
			if i < 0 {
				return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
			}
			all[i].Status = st
			if st == entity.CandidatePending {
				all[i].VerifiedAt = nil
				all[i].VerifiedBy = ""
				continue
			}
			reviewed := now
			all[i].VerifiedAt = &reviewed
			all[i].VerifiedBy = reviewer
		}
		return all, nil
	})
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

// Delete removes the candidates in ids. Nothing changes when any id is unknown.
func (s *Service) Delete(ctx context.Context, ids []string) (int, error) {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	err := s.modify(ctx, func(all []entity.Candidate) ([]entity.Candidate, error) {
		kept := all[:0]
		found := 0
		for _, c := range all {
			if drop[c.ID] {
				found++
				continue
			}
			kept = append(kept, c)
		}
		if found != len(drop) {
			return nil, ErrNotFound
		}
		return kept, nil
	})
	if err != nil {
		return 0, err
	}
	return len(drop), nil
}

func (s *Service) modify(ctx context.Context, fn func([]entity.Candidate) ([]entity.Candidate, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.store.LoadCandidates(ctx)
	if err != nil {
		return err
	}
	all, err = fn(all)
	if err != nil {
		return err
	}
	return s.store.SaveCandidates(ctx, all)
}

func indexOf(all []entity.Candidate, id string) int {
	for i := range all {
		if all[i].ID == id {
			return i
		}
	}
	return -1
}
