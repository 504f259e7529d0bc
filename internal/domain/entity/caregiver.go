package entity

import (
	"strings"
	"time"
)

// VerificationStatus records whether a caregiver's details were confirmed in person.
type VerificationStatus string

const (
	StatusUnverified VerificationStatus = "unverified"
	StatusVerified   VerificationStatus = "verified"
)

// ParseVerificationStatus accepts the stored spelling in any case. An empty
// value is reported as not ok.
func ParseVerificationStatus(s string) (VerificationStatus, bool) {
	switch VerificationStatus(strings.ToLower(strings.TrimSpace(s))) {
	case StatusVerified:
		return StatusVerified, true
	case StatusUnverified:
		return StatusUnverified, true
	}
	return "", false
}

// Caregiver represents the adult beneficiary a child is linked to.
type Caregiver struct {
	ID             string
	Name           string
	Gender         string
	DateOfBirth    *time.Time
	Age            *int
	Profession     string
	EducationLevel string
	ZonalLeader    string
	Address        string
	Phone          string
	Bank           string
	AccountNumber  string
	NumberOfKids   *int
	Status         VerificationStatus
	RegisteredAt   time.Time
	UpdatedAt      time.Time
}

// AgeAt returns the age derived from the date of birth on now, falling back to
// the stored age when no date of birth was captured.
func (c Caregiver) AgeAt(now time.Time) *int {
	return derivedAge(c.DateOfBirth, c.Age, now)
}

// Fingerprint is the identity heuristic used to spot duplicate caregivers.
func (c Caregiver) Fingerprint() string {
	return Fingerprint(c.Name, c.Phone)
}
