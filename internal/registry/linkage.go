package registry

import (
	"github.com/isoilaj/caregiver-registry/internal/domain/entity"
)

// CreateCaregiver registers c. When a caregiver with the same fingerprint
// already exists that record is updated instead and merged is true.
func (r *Registry) CreateCaregiver(c entity.Caregiver) (created entity.Caregiver, merged bool, err error) {
	if entity.NormalizeName(c.Name) == "" {
		return entity.Caregiver{}, false, ErrNameRequired
	}
	if i := r.caregiverByFingerprint(c.Fingerprint()); i >= 0 {
		updated, err := r.UpdateCaregiver(r.data.Caregivers[i].ID, c)
		return updated, true, err
	}

	normalizeCaregiver(&c)
	now := r.timestamp()
	c.ID = r.NextCaregiverID()
	c.RegisteredAt = now
	c.UpdatedAt = now
	r.data.Caregivers = append(r.data.Caregivers, c)
	return c, false, nil
}

// UpdateCaregiver replaces the editable fields of a caregiver. The identifier
// and registration time never change. An empty status keeps the current one.
func (r *Registry) UpdateCaregiver(id string, c entity.Caregiver) (entity.Caregiver, error) {
	i := r.caregiverIndex(id)
	if i < 0 {
		return entity.Caregiver{}, ErrCaregiverNotFound
	}
	if entity.NormalizeName(c.Name) == "" {
		return entity.Caregiver{}, ErrNameRequired
	}
	existing := r.data.Caregivers[i]
	if c.Status == "" {
		c.Status = existing.Status
	}
	normalizeCaregiver(&c)
	c.ID = existing.ID
	c.RegisteredAt = existing.RegisteredAt
	c.UpdatedAt = r.timestamp()
	r.data.Caregivers[i] = c

	for j := range r.data.Children {
		if r.data.Children[j].CaregiverID == c.ID {
			r.data.Children[j].CaregiverName = c.Name
		}
	}
	return c, nil
}

func (r *Registry) SetCaregiverStatus(id string, status entity.VerificationStatus) (entity.Caregiver, error) {
	parsed, ok := entity.ParseVerificationStatus(string(status))
	if !ok {
		return entity.Caregiver{}, ErrInvalidStatus
	}
	i := r.caregiverIndex(id)
	if i < 0 {
		return entity.Caregiver{}, ErrCaregiverNotFound
	}
	r.data.Caregivers[i].Status = parsed
	r.data.Caregivers[i].UpdatedAt = r.timestamp()
	return r.data.Caregivers[i], nil
}

// DeleteCaregiver removes the caregiver and every child linked to it. It
// returns the number of children removed.
func (r *Registry) DeleteCaregiver(id string) (int, error) {
	i := r.caregiverIndex(id)
	if i < 0 {
		return 0, ErrCaregiverNotFound
	}
	r.data.Caregivers = append(r.data.Caregivers[:i], r.data.Caregivers[i+1:]...)

	kept := r.data.Children[:0]
	removed := 0
	for _, ch := range r.data.Children {
		if ch.CaregiverID == id {
			removed++
			continue
		}
		kept = append(kept, ch)
	}
	r.data.Children = kept
	return removed, nil
}

// CreateChild links a new child to an existing caregiver. A child without a
// phone number inherits the caregiver's.
func (r *Registry) CreateChild(ch entity.Child) (entity.Child, error) {
	normalizeChild(&ch)
	if ch.Name == "" {
		return entity.Child{}, ErrNameRequired
	}
	ci := r.caregiverIndex(ch.CaregiverID)
	if ci < 0 {
		return entity.Child{}, ErrCaregiverNotFound
	}
	cg := r.data.Caregivers[ci]
	if ch.Phone == "" {
		ch.Phone = cg.Phone
	}
	now := r.timestamp()
	ch.ID = r.NextChildID()
	ch.CaregiverName = cg.Name
	ch.RegisteredAt = now
	ch.UpdatedAt = now
	r.data.Children = append(r.data.Children, ch)
	return ch, nil
}

// UpdateChild replaces the editable fields of a child. The child may move to
// another caregiver as long as that caregiver exists.
func (r *Registry) UpdateChild(id string, ch entity.Child) (entity.Child, error) {
	i := r.childIndex(id)
	if i < 0 {
		return entity.Child{}, ErrChildNotFound
	}
	normalizeChild(&ch)
	if ch.Name == "" {
		return entity.Child{}, ErrNameRequired
	}
	existing := r.data.Children[i]
	if ch.CaregiverID == "" {
		ch.CaregiverID = existing.CaregiverID
	}
	ci := r.caregiverIndex(ch.CaregiverID)
	if ci < 0 {
		return entity.Child{}, ErrCaregiverNotFound
	}
	cg := r.data.Caregivers[ci]
	if ch.Phone == "" {
		ch.Phone = cg.Phone
	}
	ch.ID = existing.ID
	ch.CaregiverName = cg.Name
	ch.RegisteredAt = existing.RegisteredAt
	ch.UpdatedAt = r.timestamp()
	r.data.Children[i] = ch
	return ch, nil
}

func (r *Registry) DeleteChild(id string) error {
	i := r.childIndex(id)
	if i < 0 {
		return ErrChildNotFound
	}
	r.data.Children = append(r.data.Children[:i], r.data.Children[i+1:]...)
	return nil
}
