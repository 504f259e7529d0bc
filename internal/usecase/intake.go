package usecase

import (
	"context"
	"log"

	"github.com/isoilaj/caregiver-registry/internal/domain/entity"
	"github.com/isoilaj/caregiver-registry/internal/infrastructure/events"
	"github.com/isoilaj/caregiver-registry/internal/registry"
)

// IntakeUsecase applies a whole form submission in one save.
type IntakeUsecase interface {
	Submit(ctx context.Context, operator string, input IntakeInput) (registry.IntakeResult, error)
}

type IntakeInput struct {
	Caregiver CaregiverInput `json:"caregiver"`
	Children  []ChildInput   `json:"children"`
}

type IntakeService struct {
	records *registry.Manager
	events  events.Publisher
	logger  *log.Logger
}

var _ IntakeUsecase = (*IntakeService)(nil)

func NewIntakeService(records *registry.Manager, publisher events.Publisher, logger *log.Logger) *IntakeService {
	return &IntakeService{records: records, events: publisher, logger: logger}
}

func (s *IntakeService) Submit(ctx context.Context, operator string, input IntakeInput) (registry.IntakeResult, error) {
	cg, err := input.Caregiver.Entity()
	if err != nil {
		return registry.IntakeResult{}, err
	}
	rows := make([]entity.Child, 0, len(input.Children))
	for _, in := range input.Children {
		row, err := in.Entity()
		if err != nil {
			return registry.IntakeResult{}, err
		}
		rows = append(rows, row)
	}

	var res registry.IntakeResult
	err = s.records.Update(ctx, func(r *registry.Registry) error {
		var err error
		res, err = r.Intake(cg, rows)
		return err
	})
	if err != nil {
		return registry.IntakeResult{}, err
	}

	publish(ctx, s.events, s.logger, events.New(events.IntakeSubmitted, res.Caregiver.ID, operator, map[string]int{
		"created": res.Created,
		"updated": res.Updated,
		"removed": res.Removed,
	}))
	return res, nil
}

// publish reports delivery failures in the log only; the record is already saved.
func publish(ctx context.Context, p events.Publisher, logger *log.Logger, e events.Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, e); err != nil && logger != nil {
		logger.Printf("publish %s for %s: %v", e.Type, e.EntityID, err)
	}
}
