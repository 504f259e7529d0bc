package entity

import "time"

// Child is a dependent beneficiary linked to exactly one caregiver.
type Child struct {
	ID          string
	CaregiverID string
	// CaregiverName is a readability copy of the linked caregiver's name.
	CaregiverName  string
	Name           string
	Gender         string
	DateOfBirth    *time.Time
	Age            *int
	Phone          string
	EducationLevel string
	SchoolName     string
	ClassLevel     string
	Profession     string
	RegisteredAt   time.Time
	UpdatedAt      time.Time
}

func (c Child) AgeAt(now time.Time) *int {
	return derivedAge(c.DateOfBirth, c.Age, now)
}

// HasDetails reports whether any field other than the name was filled in.
func (c Child) HasDetails() bool {
	return c.Gender != "" || c.DateOfBirth != nil || c.Age != nil || c.Phone != "" ||
		c.EducationLevel != "" || c.SchoolName != "" || c.ClassLevel != "" || c.Profession != ""
}
