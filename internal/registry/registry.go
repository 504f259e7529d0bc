// Package registry holds the rules that keep the caregiver and child tables
// consistent: identifier issue, linkage, normalization and deduplication.
package registry

import (
	"errors"
	"time"

	"github.com/isoilaj/caregiver-registry/internal/domain/entity"
)

var (
	ErrCaregiverNotFound = errors.New("caregiver not found")
	ErrChildNotFound     = errors.New("child not found")
	ErrNameRequired      = errors.New("name is required")
	ErrInvalidStatus     = errors.New("invalid verification status")
)

const (
	TableCaregivers = "caregivers"
	TableChildren   = "children"
)

// Registry applies the linkage rules to one loaded dataset. It is not safe for
// concurrent use; Manager serialises access.
type Registry struct {
	data *entity.Dataset
	now  func() time.Time
}

func New(data *entity.Dataset, now func() time.Time) *Registry {
	if data == nil {
		data = &entity.Dataset{}
	}
	if now == nil {
		now = time.Now
	}
	return &Registry{data: data, now: now}
}

// Dataset returns the dataset the registry works on, including pending edits.
func (r *Registry) Dataset() *entity.Dataset {
	return r.data
}

// Now is the registry clock.
func (r *Registry) Now() time.Time {
	return r.now()
}

// timestamps are stored with second precision so they survive a save.
func (r *Registry) timestamp() time.Time {
	return r.now().UTC().Truncate(time.Second)
}

func (r *Registry) Caregivers() []entity.Caregiver {
	return append([]entity.Caregiver(nil), r.data.Caregivers...)
}

func (r *Registry) Children() []entity.Child {
	return append([]entity.Child(nil), r.data.Children...)
}

func (r *Registry) Caregiver(id string) (entity.Caregiver, error) {
	i := r.caregiverIndex(id)
	if i < 0 {
		return entity.Caregiver{}, ErrCaregiverNotFound
	}
	return r.data.Caregivers[i], nil
}

func (r *Registry) Child(id string) (entity.Child, error) {
	i := r.childIndex(id)
	if i < 0 {
		return entity.Child{}, ErrChildNotFound
	}
	return r.data.Children[i], nil
}

// ChildrenOf returns the children linked to the caregiver, in table order.
func (r *Registry) ChildrenOf(caregiverID string) []entity.Child {
	var out []entity.Child
	for _, ch := range r.data.Children {
		if ch.CaregiverID == caregiverID {
			out = append(out, ch)
		}
	}
	return out
}

func (r *Registry) caregiverIndex(id string) int {
	if id == "" {
		return -1
	}
	for i := range r.data.Caregivers {
		if r.data.Caregivers[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *Registry) childIndex(id string) int {
	if id == "" {
		return -1
	}
	for i := range r.data.Children {
		if r.data.Children[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *Registry) caregiverByFingerprint(fp string) int {
	if fp == "" {
		return -1
	}
	for i := range r.data.Caregivers {
		if r.data.Caregivers[i].Fingerprint() == fp {
			return i
		}
	}
	return -1
}
