// Package report computes the summary statistics and chart-ready tables of
// the registry.
package report

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/isoilaj/caregiver-registry/internal/domain/entity"
	"github.com/isoilaj/caregiver-registry/internal/registry"
)

const (
	topProfessions  = 10
	topZonalLeaders = 10
	notSpecified    = "Not specified"
)

// Count is one bar of a chart.
type Count struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

type PhoneCoverage struct {
	CaregiversWithPhone int `json:"caregiversWithPhone"`
	ChildrenWithPhone   int `json:"childrenWithPhone"`
}

type Summary struct {
	TotalCaregivers      int           `json:"totalCaregivers"`
	TotalChildren        int           `json:"totalChildren"`
	Verified             int           `json:"verified"`
	Unverified           int           `json:"unverified"`
	CaregiverGender      []Count       `json:"caregiverGender"`
	ChildGender          []Count       `json:"childGender"`
	Professions          []Count       `json:"professions"`
	ZonalLeaders         []Count       `json:"zonalLeaders"`
	CaregiverAgeGroups   []Count       `json:"caregiverAgeGroups"`
	ChildAgeGroups       []Count       `json:"childAgeGroups"`
	EducationLevels      []Count       `json:"educationLevels"`
	ChildEducationLevels []Count       `json:"childEducationLevels"`
	ClassLevels          []Count       `json:"classLevels"`
	FamilySizes          []Count       `json:"familySizes"`
	AverageChildren      float64       `json:"averageChildren"`
	LargestFamily        int           `json:"largestFamily"`
	MultiChildFamilies   int           `json:"multiChildFamilies"`
	DailyRegistrations   []Count       `json:"dailyRegistrations"`
	Phones               PhoneCoverage `json:"phoneCoverage"`
}

// Summarize computes the summary of caregivers and children as of now.
// Children whose caregiver is not in caregivers do not count toward family sizes.
func Summarize(caregivers []entity.Caregiver, children []entity.Child, now time.Time) Summary {
	s := Summary{
		TotalCaregivers: len(caregivers),
		TotalChildren:   len(children),
	}

	var (
		cgGender    = map[string]int{}
		professions = map[string]int{}
		leaders     = map[string]int{}
		cgAges      = map[string]int{}
		education   = map[string]int{}
		daily       = map[string]int{}
		perFamily   = make(map[string]int, len(caregivers))
	)
	for _, c := range caregivers {
		if c.Status == entity.StatusVerified {
			s.Verified++
		} else {
			s.Unverified++
		}
		cgGender[label(c.Gender)]++
		professions[label(c.Profession)]++
		if c.ZonalLeader != "" {
			leaders[c.ZonalLeader]++
		}
		cgAges[registry.CaregiverAgeGroup(c.AgeAt(now))]++
		education[label(c.EducationLevel)]++
		if !c.RegisteredAt.IsZero() {
			daily[c.RegisteredAt.UTC().Format(entity.DateLayout)]++
		}
		if strings.TrimSpace(c.Phone) != "" {
			s.Phones.CaregiversWithPhone++
		}
		perFamily[c.ID] = 0
	}

	var (
		chGender = map[string]int{}
		chAges   = map[string]int{}
		chEduc   = map[string]int{}
		classes  = map[string]int{}
		linked   int
	)
	for _, ch := range children {
		chGender[label(ch.Gender)]++
		chAges[registry.ChildAgeGroup(ch.AgeAt(now))]++
		chEduc[label(ch.EducationLevel)]++
		classes[label(ch.ClassLevel)]++
		if strings.TrimSpace(ch.Phone) != "" {
			s.Phones.ChildrenWithPhone++
		}
		if _, ok := perFamily[ch.CaregiverID]; ok {
			perFamily[ch.CaregiverID]++
			linked++
		}
	}

	sizes := map[int]int{}
	for _, n := range perFamily {
		sizes[n]++
		if n > s.LargestFamily {
			s.LargestFamily = n
		}
		if n > 1 {
			s.MultiChildFamilies++
		}
	}
	if len(caregivers) > 0 {
		s.AverageChildren = round2(float64(linked) / float64(len(caregivers)))
	}

	s.CaregiverGender = ranked(cgGender, 0)
	s.ChildGender = ranked(chGender, 0)
	s.Professions = ranked(professions, topProfessions)
	s.ZonalLeaders = ranked(leaders, topZonalLeaders)
	s.CaregiverAgeGroups = ordered(cgAges, append(append([]string{}, registry.CaregiverAgeGroups...), registry.AgeUnknown))
	s.ChildAgeGroups = ordered(chAges, append(append([]string{}, registry.ChildAgeGroups...), registry.AgeUnknown))
	s.EducationLevels = ranked(education, 0)
	s.ChildEducationLevels = ranked(chEduc, 0)
	s.ClassLevels = ranked(classes, 0)
	s.FamilySizes = familySizes(sizes)
	s.DailyRegistrations = chronological(daily)
	return s
}

func label(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return notSpecified
	}
	return v
}

// ranked sorts by count, largest first, and keeps at most limit entries when limit > 0.
func ranked(m map[string]int, limit int) []Count {
	out := make([]Count, 0, len(m))
	for k, v := range m {
		out = append(out, Count{Label: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// ordered lists every label, zero counts included, in the given order.
func ordered(m map[string]int, labels []string) []Count {
	out := make([]Count, 0, len(labels))
	for _, l := range labels {
		out = append(out, Count{Label: l, Count: m[l]})
	}
	return out
}

func chronological(m map[string]int) []Count {
	out := make([]Count, 0, len(m))
	for k, v := range m {
		out = append(out, Count{Label: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

func familySizes(sizes map[int]int) []Count {
	keys := make([]int, 0, len(sizes))
	for k := range sizes {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	out := make([]Count, 0, len(keys))
	for _, k := range keys {
		out = append(out, Count{Label: strconv.Itoa(k), Count: sizes[k]})
	}
	return out
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}
