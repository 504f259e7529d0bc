package report

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/isoilaj/caregiver-registry/internal/domain/entity"
	"github.com/isoilaj/caregiver-registry/internal/infrastructure/cache"
	"github.com/isoilaj/caregiver-registry/internal/registry"
)

const (
	cachePrefix = "report:summary:"
	cacheTTL    = 10 * time.Minute
)

// Filter narrows a summary. When the caregiver filter is set, only children of
// the selected caregivers are counted.
type Filter struct {
	Caregivers registry.CaregiverFilter
	Children   registry.ChildFilter
}

type Service struct {
	records *registry.Manager
	cache   cache.Cache
	logger  *log.Logger
}

func NewService(records *registry.Manager, c cache.Cache, logger *log.Logger) *Service {
	if c == nil {
		c = cache.Nop{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Service{records: records, cache: c, logger: logger}
}

// Summary returns the summary of the records selected by f. Results are cached
// under a checksum of the selected records and the current date, so any edit
// or a new day yields a fresh computation.
func (s *Service) Summary(ctx context.Context, f Filter) (Summary, error) {
	var (
		caregivers []entity.Caregiver
		children   []entity.Child
		now        time.Time
	)
	err := s.records.View(ctx, func(r *registry.Registry) error {
		now = r.Now()
		caregivers, children = Select(r.Caregivers(), r.Children(), f, now)
		return nil
	})
	if err != nil {
		return Summary{}, err
	}

	key, err := checksum(caregivers, children, now)
	if err != nil {
		return Summary{}, err
	}
	if cached, err := s.cache.Get(ctx, key); err == nil {
		var sum Summary
		if err := json.Unmarshal([]byte(cached), &sum); err == nil {
			return sum, nil
		}
	} else if !errors.Is(err, cache.ErrMiss) {
		s.logger.Printf("report cache get: %v", err)
	}

	sum := Summarize(caregivers, children, now)
	if b, err := json.Marshal(sum); err == nil {
		if err := s.cache.Set(ctx, key, string(b), cacheTTL); err != nil {
			s.logger.Printf("report cache set: %v", err)
		}
	}
	return sum, nil
}

// Select applies f to both tables.
func Select(caregivers []entity.Caregiver, children []entity.Child, f Filter, now time.Time) ([]entity.Caregiver, []entity.Child) {
	selected := registry.FilterCaregivers(caregivers, f.Caregivers, now)
	if f.Caregivers != (registry.CaregiverFilter{}) {
		ids := make(map[string]bool, len(selected))
		for _, c := range selected {
			ids[c.ID] = true
		}
		kept := children[:0:0]
		for _, ch := range children {
			if ids[ch.CaregiverID] {
				kept = append(kept, ch)
			}
		}
		children = kept
	}
	return selected, registry.FilterChildren(children, f.Children, now)
}

func checksum(caregivers []entity.Caregiver, children []entity.Child, now time.Time) (string, error) {
	b, err := json.Marshal(struct {
		Day        string             `json:"day"`
		Caregivers []entity.Caregiver `json:"caregivers"`
		Children   []entity.Child     `json:"children"`
	}{now.Format(entity.DateLayout), caregivers, children})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return cachePrefix + hex.EncodeToString(sum[:]), nil
}
