package registry

import (
	"fmt"
	"strings"

	"github.com/isoilaj/caregiver-registry/internal/domain/entity"
)

// ImportResult reports what an import did. Warnings name the sheet rows that
// were skipped.
type ImportResult struct {
	Table    string   `json:"table"`
	Created  int      `json:"created"`
	Updated  int      `json:"updated"`
	Skipped  int      `json:"skipped"`
	Warnings []string `json:"warnings"`
}

func (res *ImportResult) skip(row int, format string, args ...interface{}) {
	res.Skipped++
	res.Warnings = append(res.Warnings, fmt.Sprintf("row %d: ", row)+fmt.Sprintf(format, args...))
}

// ImportCaregivers upserts rows. A row whose identifier is known replaces that
// caregiver, any other row is created or merged by fingerprint. Rows without
// a name are skipped. lines[i] is the source row of rows[i] used in warnings.
func (r *Registry) ImportCaregivers(rows []entity.Caregiver, lines []int) ImportResult {
	res := ImportResult{Table: TableCaregivers, Warnings: []string{}}
	for i, row := range rows {
		if entity.NormalizeName(row.Name) == "" {
			res.skip(rowAt(lines, i), "caregiver name is empty")
			continue
		}
		if r.caregiverIndex(row.ID) >= 0 {
			if _, err := r.UpdateCaregiver(row.ID, row); err != nil {
				res.skip(rowAt(lines, i), "%v", err)
				continue
			}
			res.Updated++
			continue
		}
		_, merged, err := r.CreateCaregiver(row)
		if err != nil {
			res.skip(rowAt(lines, i), "%v", err)
			continue
		}
		if merged {
			res.Updated++
		} else {
			res.Created++
		}
	}
	return res
}

// ImportChildren upserts rows. Each row resolves its caregiver by identifier,
// or by an exact caregiver name shared by no other caregiver, and replaces the
// caregiver's child of the same name if there is one. Rows that cannot be
// linked are skipped with a warning.
func (r *Registry) ImportChildren(rows []entity.Child, lines []int) ImportResult {
	res := ImportResult{Table: TableChildren, Warnings: []string{}}
	for i, row := range rows {
		name := entity.NormalizeName(row.Name)
		if name == "" {
			res.skip(rowAt(lines, i), "child name is empty")
			continue
		}
		ci := r.caregiverIndex(strings.TrimSpace(row.CaregiverID))
		if ci < 0 {
			ci = r.caregiverByExactName(row.CaregiverName)
		}
		if ci < 0 {
			res.skip(rowAt(lines, i), "no caregiver found for child %q", name)
			continue
		}
		row.CaregiverID = r.data.Caregivers[ci].ID

		target := ""
		for _, e := range r.ChildrenOf(row.CaregiverID) {
			if strings.EqualFold(e.Name, name) {
				target = e.ID
				break
			}
		}
		var err error
		if target != "" {
			_, err = r.UpdateChild(target, row)
		} else {
			_, err = r.CreateChild(row)
		}
		if err != nil {
			res.skip(rowAt(lines, i), "%v", err)
			continue
		}
		if target != "" {
			res.Updated++
		} else {
			res.Created++
		}
	}
	return res
}

// caregiverByExactName returns the index of the only caregiver called name, or -1.
func (r *Registry) caregiverByExactName(name string) int {
	name = entity.NormalizeName(name)
	if name == "" {
		return -1
	}
	found := -1
	for i := range r.data.Caregivers {
		if r.data.Caregivers[i].Name != name {
			continue
		}
		if found >= 0 {
			return -1
		}
		found = i
	}
	return found
}
