package registry

import (
	"fmt"
	"strings"

	"github.com/isoilaj/caregiver-registry/internal/domain/entity"
)

// RowError is returned by Intake when child rows carry details but no name.
// Rows are numbered from 1 in submission order.
type RowError struct {
	Rows []int
}

func (e *RowError) Error() string {
	parts := make([]string, len(e.Rows))
	for i, n := range e.Rows {
		parts[i] = fmt.Sprint(n)
	}
	return fmt.Sprintf("child name is required on row(s) %s", strings.Join(parts, ", "))
}

type IntakeResult struct {
	Caregiver entity.Caregiver
	Children  []entity.Child
	// Merged is true when the caregiver already existed.
	Merged  bool
	Created int
	Updated int
	Removed int
}

// Intake applies one form submission. The caregiver is updated when it carries
// an identifier, otherwise created or merged by fingerprint. Its children are
// then reconciled with rows: a row with a known child identifier updates that
// child, a row without one is matched by name or created, and children missing
// from rows are removed. Entirely blank rows are ignored.
func (r *Registry) Intake(cg entity.Caregiver, rows []entity.Child) (IntakeResult, error) {
	if entity.NormalizeName(cg.Name) == "" {
		return IntakeResult{}, ErrNameRequired
	}
	var named []entity.Child
	var missing []int
	for i, row := range rows {
		if entity.NormalizeName(row.Name) == "" {
			if row.HasDetails() {
				missing = append(missing, i+1)
			}
			continue
		}
		named = append(named, row)
	}
	if len(missing) > 0 {
		return IntakeResult{}, &RowError{Rows: missing}
	}

	var res IntakeResult
	var err error
	if cg.ID != "" {
		res.Caregiver, err = r.UpdateCaregiver(cg.ID, cg)
		res.Merged = true
	} else {
		res.Caregiver, res.Merged, err = r.CreateCaregiver(cg)
	}
	if err != nil {
		return IntakeResult{}, err
	}

	existing := r.ChildrenOf(res.Caregiver.ID)
	owned := make(map[string]bool, len(existing))
	for _, e := range existing {
		owned[e.ID] = true
	}
	used := make(map[string]bool, len(existing))

	for _, row := range named {
		target := ""
		if id := strings.TrimSpace(row.ID); owned[id] && !used[id] {
			target = id
		}
		if target == "" {
			name := entity.NormalizeName(row.Name)
			for _, e := range existing {
				if !used[e.ID] && strings.EqualFold(e.Name, name) {
					target = e.ID
					break
				}
			}
		}
		row.CaregiverID = res.Caregiver.ID

		var saved entity.Child
		if target != "" {
			used[target] = true
			saved, err = r.UpdateChild(target, row)
			res.Updated++
		} else {
			saved, err = r.CreateChild(row)
			res.Created++
		}
		if err != nil {
			return IntakeResult{}, err
		}
		res.Children = append(res.Children, saved)
	}

	for _, e := range existing {
		if used[e.ID] {
			continue
		}
		if err := r.DeleteChild(e.ID); err != nil {
			return IntakeResult{}, err
		}
		res.Removed++
	}
	return res, nil
}
