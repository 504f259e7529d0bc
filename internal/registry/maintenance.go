package registry

import (
	"strings"
	"time"

	"github.com/isoilaj/caregiver-registry/internal/domain/entity"
)

// MigrateChildPhones copies the caregiver's phone number onto linked children
// that have none and returns how many children changed.
func (r *Registry) MigrateChildPhones() int {
	phones := make(map[string]string, len(r.data.Caregivers))
	for _, c := range r.data.Caregivers {
		phones[c.ID] = c.Phone
	}
	now := r.timestamp()
	n := 0
	for i := range r.data.Children {
		ch := &r.data.Children[i]
		if ch.Phone != "" {
			continue
		}
		if phone := phones[ch.CaregiverID]; phone != "" {
			ch.Phone = phone
			ch.UpdatedAt = now
			n++
		}
	}
	return n
}

type DedupeResult struct {
	Caregivers int `json:"mergedCaregivers"`
	Children   int `json:"mergedChildren"`
}

// Deduplicate merges caregivers sharing a fingerprint into the first one in
// table order, re-pointing their children, then merges same-named children of
// one caregiver. Empty fields of the surviving record are filled from the
// merged ones.
func (r *Registry) Deduplicate() DedupeResult {
	var res DedupeResult
	now := r.timestamp()

	survivors := make(map[string]int)
	redirect := make(map[string]string)
	kept := make([]entity.Caregiver, 0, len(r.data.Caregivers))
	for _, c := range r.data.Caregivers {
		if c.Name != "" {
			fp := c.Fingerprint()
			if s, ok := survivors[fp]; ok {
				fillCaregiver(&kept[s], c, now)
				redirect[c.ID] = kept[s].ID
				res.Caregivers++
				continue
			}
			survivors[fp] = len(kept)
		}
		kept = append(kept, c)
	}
	r.data.Caregivers = kept

	names := make(map[string]string, len(kept))
	for _, c := range kept {
		names[c.ID] = c.Name
	}

	childSurvivors := make(map[string]int)
	keptChildren := make([]entity.Child, 0, len(r.data.Children))
	for _, ch := range r.data.Children {
		if to, ok := redirect[ch.CaregiverID]; ok {
			ch.CaregiverID = to
			ch.CaregiverName = names[to]
			ch.UpdatedAt = now
		}
		if ch.Name != "" {
			key := ch.CaregiverID + "|" + strings.ToLower(ch.Name)
			if s, ok := childSurvivors[key]; ok {
				fillChild(&keptChildren[s], ch, now)
				res.Children++
				continue
			}
			childSurvivors[key] = len(keptChildren)
		}
		keptChildren = append(keptChildren, ch)
	}
	r.data.Children = keptChildren
	return res
}

func fillString(dst *string, src string) {
	if *dst == "" {
		*dst = src
	}
}

func fillCaregiver(dst *entity.Caregiver, src entity.Caregiver, now time.Time) {
	fillString(&dst.Gender, src.Gender)
	fillString(&dst.Profession, src.Profession)
	fillString(&dst.EducationLevel, src.EducationLevel)
	fillString(&dst.ZonalLeader, src.ZonalLeader)
	fillString(&dst.Address, src.Address)
	fillString(&dst.Phone, src.Phone)
	fillString(&dst.Bank, src.Bank)
	fillString(&dst.AccountNumber, src.AccountNumber)
	if dst.DateOfBirth == nil {
		dst.DateOfBirth = src.DateOfBirth
	}
	if dst.Age == nil {
		dst.Age = src.Age
	}
	if dst.NumberOfKids == nil {
		dst.NumberOfKids = src.NumberOfKids
	}
	if src.Status == entity.StatusVerified {
		dst.Status = entity.StatusVerified
	}
	dst.UpdatedAt = now
}

func fillChild(dst *entity.Child, src entity.Child, now time.Time) {
	fillString(&dst.Gender, src.Gender)
	fillString(&dst.Phone, src.Phone)
	fillString(&dst.EducationLevel, src.EducationLevel)
	fillString(&dst.SchoolName, src.SchoolName)
	fillString(&dst.ClassLevel, src.ClassLevel)
	fillString(&dst.Profession, src.Profession)
	if dst.DateOfBirth == nil {
		dst.DateOfBirth = src.DateOfBirth
	}
	if dst.Age == nil {
		dst.Age = src.Age
	}
	dst.UpdatedAt = now
}
