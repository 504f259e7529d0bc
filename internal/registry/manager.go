package registry

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/isoilaj/caregiver-registry/internal/domain/entity"
	"github.com/isoilaj/caregiver-registry/internal/domain/repository"
)

// SaveHook observes every dataset a Manager writes. Hooks must not modify data.
type SaveHook func(ctx context.Context, data *entity.Dataset)

// Manager runs load, modify and save cycles against a Store one at a time.
type Manager struct {
	mu      sync.Mutex
	store   repository.Store
	now     func() time.Time
	logger  *log.Logger
	hooks   []SaveHook
	onError func(error)
}

type Option func(*Manager)

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func WithLogger(l *log.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

func WithSaveHook(h SaveHook) Option {
	return func(m *Manager) { m.hooks = append(m.hooks, h) }
}

// WithErrorReporter registers fn to receive load and save failures.
func WithErrorReporter(fn func(error)) Option {
	return func(m *Manager) { m.onError = fn }
}

func NewManager(store repository.Store, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		now:    time.Now,
		logger: log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// View loads the dataset and passes a registry to fn. Nothing fn changes is saved.
func (m *Manager) View(ctx context.Context, fn func(*Registry) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	reg, _, err := m.open(ctx)
	if err != nil {
		return err
	}
	return fn(reg)
}

// Update loads the dataset, runs fn and saves the result in full when fn
// returns nil. An error from fn discards every change it made.
func (m *Manager) Update(ctx context.Context, fn func(*Registry) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	reg, _, err := m.open(ctx)
	if err != nil {
		return err
	}
	if err := fn(reg); err != nil {
		return err
	}
	return m.save(ctx, reg.Dataset())
}

// Check loads the dataset and returns every issue found while normalizing and
// checking it.
func (m *Manager) Check(ctx context.Context) ([]Issue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, issues, err := m.open(ctx)
	return issues, err
}

func (m *Manager) open(ctx context.Context) (*Registry, []Issue, error) {
	data, err := m.store.Load(ctx)
	if err != nil {
		return nil, nil, m.fail(fmt.Errorf("load registry: %w", err))
	}
	reg := New(data, m.now)
	changed, issues := reg.Normalize()
	if changed {
		m.logger.Printf("normalized registry on load: %d change(s), writing back", len(issues))
		if err := m.save(ctx, reg.Dataset()); err != nil {
			return nil, nil, err
		}
	}
	return reg, append(issues, reg.Check()...), nil
}

func (m *Manager) save(ctx context.Context, data *entity.Dataset) error {
	if err := m.store.Save(ctx, data); err != nil {
		return m.fail(fmt.Errorf("save registry: %w", err))
	}
	for _, h := range m.hooks {
		h(ctx, data)
	}
	return nil
}

func (m *Manager) fail(err error) error {
	m.logger.Printf("registry: %v", err)
	if m.onError != nil {
		m.onError(err)
	}
	return err
}
