package usecase

import (
	"context"
	"log"

	"github.com/isoilaj/caregiver-registry/internal/infrastructure/events"
	"github.com/isoilaj/caregiver-registry/internal/registry"
)

// MaintenanceUsecase runs the data-quality operations over the whole registry.
type MaintenanceUsecase interface {
	Check(ctx context.Context) ([]registry.Issue, error)
	MigratePhones(ctx context.Context, operator string) (int, error)
	Deduplicate(ctx context.Context, operator string) (registry.DedupeResult, error)
}

// MaintenanceService runs the data-quality operations over the whole registry.
type MaintenanceService struct {
	records *registry.Manager
	events  events.Publisher
	logger  *log.Logger
}

var _ MaintenanceUsecase = (*MaintenanceService)(nil)

func NewMaintenanceService(records *registry.Manager, publisher events.Publisher, logger *log.Logger) *MaintenanceService {
	return &MaintenanceService{records: records, events: publisher, logger: logger}
}

// Check returns the integrity report. Identifiers missing from hand-edited
// rows are assigned and saved as a side effect of loading.
func (s *MaintenanceService) Check(ctx context.Context) ([]registry.Issue, error) {
	return s.records.Check(ctx)
}

func (s *MaintenanceService) MigratePhones(ctx context.Context, operator string) (int, error) {
	var n int
	err := s.records.Update(ctx, func(r *registry.Registry) error {
		n = r.MigrateChildPhones()
		return nil
	})
	if err != nil {
		return 0, err
	}
	if n > 0 {
		publish(ctx, s.events, s.logger, events.New(events.RegistryCleaned, "", operator, map[string]int{"migratedPhones": n}))
	}
	return n, nil
}

func (s *MaintenanceService) Deduplicate(ctx context.Context, operator string) (registry.DedupeResult, error) {
	var res registry.DedupeResult
	err := s.records.Update(ctx, func(r *registry.Registry) error {
		res = r.Deduplicate()
		return nil
	})
	if err != nil {
		return registry.DedupeResult{}, err
	}
	if res.Caregivers+res.Children > 0 {
		publish(ctx, s.events, s.logger, events.New(events.RegistryCleaned, "", operator, res))
	}
	return res, nil
}
