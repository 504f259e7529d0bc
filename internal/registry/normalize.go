package registry

import (
	"fmt"
	"strings"

	"github.com/isoilaj/caregiver-registry/internal/domain/entity"
)

type IssueKind string

const (
	IssueAssignedID         IssueKind = "assigned_id"
	IssueDuplicateID        IssueKind = "duplicate_id"
	IssueRelinked           IssueKind = "relinked_child"
	IssueOrphan             IssueKind = "orphan_child"
	IssueDuplicateCaregiver IssueKind = "duplicate_caregiver"
	IssueDuplicateChild     IssueKind = "duplicate_child"
	IssueMissingName        IssueKind = "missing_name"
	IssueMissingPhone       IssueKind = "missing_phone"
	IssueInvalidDate        IssueKind = "invalid_date"
)

// Issue is a data-quality finding. Row is the worksheet row, counting the
// header as row 1.
type Issue struct {
	Kind    IssueKind `json:"kind"`
	Table   string    `json:"table"`
	ID      string    `json:"id,omitempty"`
	Row     int       `json:"row,omitempty"`
	Message string    `json:"message"`
}

// rowAt returns the source row of the i-th record. Without a known row it
// assumes a sheet with no blank rows under the header.
func rowAt(rows []int, i int) int {
	if i < len(rows) && rows[i] > 0 {
		return rows[i]
	}
	return i + 2
}

func (r *Registry) caregiverRow(i int) int {
	if r.data.Source == nil {
		return rowAt(nil, i)
	}
	return rowAt(r.data.Source.CaregiverRows, i)
}

func (r *Registry) childRow(i int) int {
	if r.data.Source == nil {
		return rowAt(nil, i)
	}
	return rowAt(r.data.Source.ChildRows, i)
}

// Normalize tidies text fields, fills defaults and gives every row an
// identifier. changed reports whether the dataset now differs in a way that
// must be saved for assigned identifiers to stay stable.
func (r *Registry) Normalize() (changed bool, issues []Issue) {
	r.raiseSequences()

	ids := make(map[string]int, len(r.data.Caregivers))
	byName := make(map[string][]int)
	for i := range r.data.Caregivers {
		c := &r.data.Caregivers[i]
		normalizeCaregiver(c)
		if c.ID == "" {
			c.ID = r.NextCaregiverID()
			changed = true
			issues = append(issues, Issue{Kind: IssueAssignedID, Table: TableCaregivers, ID: c.ID, Row: r.caregiverRow(i),
				Message: fmt.Sprintf("caregiver %q had no identifier and was assigned %s", c.Name, c.ID)})
		} else if _, dup := ids[c.ID]; dup {
			old := c.ID
			c.ID = r.NextCaregiverID()
			changed = true
			issues = append(issues, Issue{Kind: IssueDuplicateID, Table: TableCaregivers, ID: c.ID, Row: r.caregiverRow(i),
				Message: fmt.Sprintf("identifier %s was already in use; caregiver %q was reassigned %s", old, c.Name, c.ID)})
		}
		ids[c.ID] = i
		key := strings.ToLower(c.Name)
		byName[key] = append(byName[key], i)
	}

	seen := make(map[string]bool, len(r.data.Children))
	for i := range r.data.Children {
		ch := &r.data.Children[i]
		normalizeChild(ch)
		if ch.ID == "" {
			ch.ID = r.NextChildID()
			changed = true
			issues = append(issues, Issue{Kind: IssueAssignedID, Table: TableChildren, ID: ch.ID, Row: r.childRow(i),
				Message: fmt.Sprintf("child %q had no identifier and was assigned %s", ch.Name, ch.ID)})
		} else if seen[ch.ID] {
			old := ch.ID
			ch.ID = r.NextChildID()
			changed = true
			issues = append(issues, Issue{Kind: IssueDuplicateID, Table: TableChildren, ID: ch.ID, Row: r.childRow(i),
				Message: fmt.Sprintf("identifier %s was already in use; child %q was reassigned %s", old, ch.Name, ch.ID)})
		}
		seen[ch.ID] = true

		if ch.CaregiverID == "" && ch.CaregiverName != "" {
			if match := byName[strings.ToLower(ch.CaregiverName)]; len(match) == 1 {
				ch.CaregiverID = r.data.Caregivers[match[0]].ID
				changed = true
				issues = append(issues, Issue{Kind: IssueRelinked, Table: TableChildren, ID: ch.ID, Row: r.childRow(i),
					Message: fmt.Sprintf("child %q linked to caregiver %s by name", ch.Name, ch.CaregiverID)})
			}
		}
		if ci, ok := ids[ch.CaregiverID]; ok {
			ch.CaregiverName = r.data.Caregivers[ci].Name
		}
	}
	return changed, issues
}

// Check reports orphans, duplicates and missing values without changing anything.
func (r *Registry) Check() []Issue {
	var issues []Issue

	caregivers := make(map[string]entity.Caregiver, len(r.data.Caregivers))
	fingerprints := make(map[string]string)
	for i, c := range r.data.Caregivers {
		caregivers[c.ID] = c
		if c.Name == "" {
			issues = append(issues, Issue{Kind: IssueMissingName, Table: TableCaregivers, ID: c.ID, Row: r.caregiverRow(i),
				Message: "caregiver name is empty"})
			continue
		}
		fp := c.Fingerprint()
		if first, ok := fingerprints[fp]; ok {
			issues = append(issues, Issue{Kind: IssueDuplicateCaregiver, Table: TableCaregivers, ID: c.ID, Row: r.caregiverRow(i),
				Message: fmt.Sprintf("caregiver %q duplicates %s", c.Name, first)})
			continue
		}
		fingerprints[fp] = c.ID
	}

	names := make(map[string]string)
	for i, ch := range r.data.Children {
		if ch.Name == "" {
			issues = append(issues, Issue{Kind: IssueMissingName, Table: TableChildren, ID: ch.ID, Row: r.childRow(i),
				Message: "child name is empty"})
		}
		cg, ok := caregivers[ch.CaregiverID]
		if !ok {
			issues = append(issues, Issue{Kind: IssueOrphan, Table: TableChildren, ID: ch.ID, Row: r.childRow(i),
				Message: fmt.Sprintf("child %q references unknown caregiver %q", ch.Name, ch.CaregiverID)})
			continue
		}
		if ch.Phone == "" && cg.Phone != "" {
			issues = append(issues, Issue{Kind: IssueMissingPhone, Table: TableChildren, ID: ch.ID, Row: r.childRow(i),
				Message: fmt.Sprintf("child %q has no phone number; caregiver %s has one", ch.Name, cg.ID)})
		}
		if ch.Name == "" {
			continue
		}
		key := ch.CaregiverID + "|" + strings.ToLower(ch.Name)
		if first, ok := names[key]; ok {
			issues = append(issues, Issue{Kind: IssueDuplicateChild, Table: TableChildren, ID: ch.ID, Row: r.childRow(i),
				Message: fmt.Sprintf("child %q duplicates %s under caregiver %s", ch.Name, first, ch.CaregiverID)})
			continue
		}
		names[key] = ch.ID
	}

	if r.data.Source != nil {
		for _, v := range r.data.Source.Unreadable {
			issues = append(issues, Issue{Kind: IssueInvalidDate, Table: v.Sheet, ID: v.ID, Row: v.Row,
				Message: fmt.Sprintf("%s %q is not a date and will be cleared on the next save", v.Column, v.Value)})
		}
	}
	return issues
}

func normalizeCaregiver(c *entity.Caregiver) {
	c.ID = strings.TrimSpace(c.ID)
	c.Name = entity.NormalizeName(c.Name)
	c.Gender = strings.ToLower(strings.TrimSpace(c.Gender))
	c.Profession = strings.TrimSpace(c.Profession)
	c.EducationLevel = strings.TrimSpace(c.EducationLevel)
	c.ZonalLeader = entity.NormalizeName(c.ZonalLeader)
	c.Address = strings.TrimSpace(c.Address)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Bank = strings.TrimSpace(c.Bank)
	c.AccountNumber = strings.TrimSpace(c.AccountNumber)
	if status, ok := entity.ParseVerificationStatus(string(c.Status)); ok {
		c.Status = status
	} else {
		c.Status = entity.StatusUnverified
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = c.RegisteredAt
	}
}

func normalizeChild(ch *entity.Child) {
	ch.ID = strings.TrimSpace(ch.ID)
	ch.CaregiverID = strings.TrimSpace(ch.CaregiverID)
	ch.CaregiverName = entity.NormalizeName(ch.CaregiverName)
	ch.Name = entity.NormalizeName(ch.Name)
	ch.Gender = strings.ToLower(strings.TrimSpace(ch.Gender))
	ch.Phone = strings.TrimSpace(ch.Phone)
	ch.EducationLevel = strings.TrimSpace(ch.EducationLevel)
	ch.SchoolName = strings.TrimSpace(ch.SchoolName)
	ch.ClassLevel = strings.TrimSpace(ch.ClassLevel)
	ch.Profession = strings.TrimSpace(ch.Profession)
	if ch.UpdatedAt.IsZero() {
		ch.UpdatedAt = ch.RegisteredAt
	}
}
