package registry

import (
	"strings"
	"time"

	"github.com/isoilaj/caregiver-registry/internal/domain/entity"
)

// AgeUnknown is the group of records without a date of birth or stored age.
const AgeUnknown = "Unknown"

var (
	CaregiverAgeGroups = []string{"Under 18", "18-29", "30-39", "40-49", "50-59", "60+"}
	ChildAgeGroups     = []string{"0-5", "6-12", "13-17", "18-25", "26+"}
)

func CaregiverAgeGroup(age *int) string {
	if age == nil {
		return AgeUnknown
	}
	switch a := *age; {
	case a < 18:
		return "Under 18"
	case a < 30:
		return "18-29"
	case a < 40:
		return "30-39"
	case a < 50:
		return "40-49"
	case a < 60:
		return "50-59"
	default:
		return "60+"
	}
}

func ChildAgeGroup(age *int) string {
	if age == nil {
		return AgeUnknown
	}
	switch a := *age; {
	case a <= 5:
		return "0-5"
	case a <= 12:
		return "6-12"
	case a <= 17:
		return "13-17"
	case a <= 25:
		return "18-25"
	default:
		return "26+"
	}
}

// CaregiverFilter selects caregivers. Empty fields match everything; text
// fields compare case-insensitively and Search matches part of the name.
type CaregiverFilter struct {
	Search         string
	Gender         string
	AgeGroup       string
	Profession     string
	ZonalLeader    string
	EducationLevel string
	Status         string
}

func (f CaregiverFilter) Match(c entity.Caregiver, now time.Time) bool {
	if !contains(c.Name, f.Search) {
		return false
	}
	if !same(c.Gender, f.Gender) || !same(c.Profession, f.Profession) ||
		!same(c.ZonalLeader, f.ZonalLeader) || !same(c.EducationLevel, f.EducationLevel) ||
		!same(string(c.Status), f.Status) {
		return false
	}
	return f.AgeGroup == "" || strings.EqualFold(CaregiverAgeGroup(c.AgeAt(now)), f.AgeGroup)
}

// ChildFilter selects children. Search matches the child's or the caregiver's name.
type ChildFilter struct {
	Search         string
	Gender         string
	AgeGroup       string
	EducationLevel string
	ClassLevel     string
	Profession     string
	CaregiverID    string
}

func (f ChildFilter) Match(ch entity.Child, now time.Time) bool {
	if f.Search != "" && !contains(ch.Name, f.Search) && !contains(ch.CaregiverName, f.Search) {
		return false
	}
	if f.CaregiverID != "" && ch.CaregiverID != f.CaregiverID {
		return false
	}
	if !same(ch.Gender, f.Gender) || !same(ch.EducationLevel, f.EducationLevel) ||
		!same(ch.ClassLevel, f.ClassLevel) || !same(ch.Profession, f.Profession) {
		return false
	}
	return f.AgeGroup == "" || strings.EqualFold(ChildAgeGroup(ch.AgeAt(now)), f.AgeGroup)
}

func FilterCaregivers(cs []entity.Caregiver, f CaregiverFilter, now time.Time) []entity.Caregiver {
	out := make([]entity.Caregiver, 0, len(cs))
	for _, c := range cs {
		if f.Match(c, now) {
			out = append(out, c)
		}
	}
	return out
}

func FilterChildren(chs []entity.Child, f ChildFilter, now time.Time) []entity.Child {
	out := make([]entity.Child, 0, len(chs))
	for _, ch := range chs {
		if f.Match(ch, now) {
			out = append(out, ch)
		}
	}
	return out
}

func contains(value, search string) bool {
	search = strings.TrimSpace(search)
	return search == "" || strings.Contains(strings.ToLower(value), strings.ToLower(search))
}

func same(value, want string) bool {
	want = strings.TrimSpace(want)
	return want == "" || strings.EqualFold(value, want)
}
