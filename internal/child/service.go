package child

import (
	"context"
	"log"

	"github.com/isoilaj/caregiver-registry/internal/domain/entity"
	"github.com/isoilaj/caregiver-registry/internal/infrastructure/events"
	"github.com/isoilaj/caregiver-registry/internal/registry"
)

type Service struct {
	records *registry.Manager
	events  events.Publisher
	logger  *log.Logger
}

func NewService(records *registry.Manager, publisher events.Publisher, logger *log.Logger) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Service{records: records, events: publisher, logger: logger}
}

func (s *Service) List(ctx context.Context, f registry.ChildFilter) ([]entity.Child, error) {
	var out []entity.Child
	err := s.records.View(ctx, func(r *registry.Registry) error {
		out = registry.FilterChildren(r.Children(), f, r.Now())
		return nil
	})
	return out, err
}

func (s *Service) Get(ctx context.Context, id string) (entity.Child, error) {
	var ch entity.Child
	err := s.records.View(ctx, func(r *registry.Registry) error {
		var err error
		ch, err = r.Child(id)
		return err
	})
	return ch, err
}

func (s *Service) Create(ctx context.Context, operator string, ch entity.Child) (entity.Child, error) {
	var created entity.Child
	err := s.records.Update(ctx, func(r *registry.Registry) error {
		var err error
		created, err = r.CreateChild(ch)
		return err
	})
	if err != nil {
		return entity.Child{}, err
	}
	s.publish(ctx, events.New(events.ChildCreated, created.ID, operator, map[string]string{"caregiverId": created.CaregiverID}))
	return created, nil
}

func (s *Service) Update(ctx context.Context, operator, id string, ch entity.Child) (entity.Child, error) {
	var updated entity.Child
	err := s.records.Update(ctx, func(r *registry.Registry) error {
		var err error
		updated, err = r.UpdateChild(id, ch)
		return err
	})
	if err != nil {
		return entity.Child{}, err
	}
	s.publish(ctx, events.New(events.ChildUpdated, id, operator, map[string]string{"caregiverId": updated.CaregiverID}))
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, operator, id string) error {
	err := s.records.Update(ctx, func(r *registry.Registry) error {
		return r.DeleteChild(id)
	})
	if err != nil {
		return err
	}
	s.publish(ctx, events.New(events.ChildDeleted, id, operator, nil))
	return nil
}

func (s *Service) publish(ctx context.Context, e events.Event) {
	if err := s.events.Publish(ctx, e); err != nil {
		s.logger.Printf("publish %s for %s: %v", e.Type, e.EntityID, err)
	}
}
