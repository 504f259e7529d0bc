package entity

import "time"

// Sequence holds the last identifier number issued per table.
type Sequence struct {
	Caregiver int
	Child     int
}

// Dataset is the full content of the registry workbook.
type Dataset struct {
	Caregivers []Caregiver
	Children   []Child
	Sequence   Sequence

	// Source is filled by stores on load and never written back.
	Source *Source
}

// Source tells where loaded rows came from. CaregiverRows[i] is the sheet
// row of Caregivers[i], likewise for children.
type Source struct {
	CaregiverRows []int
	ChildRows     []int
	// Unreadable lists cell values that could not be parsed and were
	// dropped from the loaded records.
	Unreadable []UnreadableValue
}

type UnreadableValue struct {
	Sheet  string
	Row    int
	ID     string
	Column string
	Value  string
}

// Clone returns a deep copy so callers can mutate without touching the source.
func (d *Dataset) Clone() *Dataset {
	if d == nil {
		return &Dataset{}
	}
	out := &Dataset{
		Caregivers: make([]Caregiver, len(d.Caregivers)),
		Children:   make([]Child, len(d.Children)),
		Sequence:   d.Sequence,
		Source:     d.Source,
	}
	for i, c := range d.Caregivers {
		c.DateOfBirth = cloneTime(c.DateOfBirth)
		c.Age = cloneInt(c.Age)
		c.NumberOfKids = cloneInt(c.NumberOfKids)
		out.Caregivers[i] = c
	}
	for i, c := range d.Children {
		c.DateOfBirth = cloneTime(c.DateOfBirth)
		c.Age = cloneInt(c.Age)
		out.Children[i] = c
	}
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneInt(i *int) *int {
	if i == nil {
		return nil
	}
	v := *i
	return &v
}
