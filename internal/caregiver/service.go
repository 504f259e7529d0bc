package caregiver

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

func (s *Service) List(ctx context.Context, f registry.CaregiverFilter) ([]entity.Caregiver, error) {
	var out []entity.Caregiver
	err := s.records.View(ctx, func(r *registry.Registry) error {
		out = registry.FilterCaregivers(r.Caregivers(), f, r.Now())
		return nil
	})
	return out, err
}

// Get returns the caregiver and its children.
func (s *Service) Get(ctx context.Context, id string) (entity.Caregiver, []entity.Child, error) {
	var c entity.Caregiver
	var children []entity.Child
	err := s.records.View(ctx, func(r *registry.Registry) error {
		var err error
		c, err = r.Caregiver(id)
		if err != nil {
			return err
		}
		children = r.ChildrenOf(id)
		return nil
	})
	return c, children, err
}

// Create registers a caregiver, or updates the existing record with the same
// name and phone number. merged reports the latter.
func (s *Service) Create(ctx context.Context, operator string, c entity.Caregiver) (created entity.Caregiver, merged bool, err error) {
	err = s.records.Update(ctx, func(r *registry.Registry) error {
		var err error
		created, merged, err = r.CreateCaregiver(c)
		return err
	})
	if err != nil {
		return entity.Caregiver{}, false, err
	}
	typ := events.CaregiverCreated
	if merged {
		typ = events.CaregiverUpdated
	}
	s.publish(ctx, events.New(typ, created.ID, operator, nil))
	return created, merged, nil
}

func (s *Service) Update(ctx context.Context, operator, id string, c entity.Caregiver) (entity.Caregiver, error) {
	var updated entity.Caregiver
	err := s.records.Update(ctx, func(r *registry.Registry) error {
		var err error
		updated, err = r.UpdateCaregiver(id, c)
		return err
	})
	if err != nil {
		return entity.Caregiver{}, err
	}
	s.publish(ctx, events.New(events.CaregiverUpdated, id, operator, nil))
	return updated, nil
}

// Delete removes the caregiver together with its children and returns how
// many children went with it.
func (s *Service) Delete(ctx context.Context, operator, id string) (int, error) {
	var removed int
	err := s.records.Update(ctx, func(r *registry.Registry) error {
		var err error
		removed, err = r.DeleteCaregiver(id)
		return err
	})
	if err != nil {
		return 0, err
	}
	s.publish(ctx, events.New(events.CaregiverDeleted, id, operator, map[string]int{"children": removed}))
	return removed, nil
}

func (s *Service) SetStatus(ctx context.Context, operator, id string, status entity.VerificationStatus) (entity.Caregiver, error) {
	var updated entity.Caregiver
	err := s.records.Update(ctx, func(r *registry.Registry) error {
		var err error
		updated, err = r.SetCaregiverStatus(id, status)
		return err
	})
	if err != nil {
		return entity.Caregiver{}, err
	}
	s.publish(ctx, events.New(events.CaregiverStatus, id, operator, map[string]string{"status": string(updated.Status)}))
	return updated, nil
}

func (s *Service) publish(ctx context.Context, e events.Event) {
	if err := s.events.Publish(ctx, e); err != nil {
		s.logger.Printf("publish %s for %s: %v", e.Type, e.EntityID, err)
	}
}
