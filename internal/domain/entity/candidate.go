package entity

import (
	"strings"
	"time"
)

// CandidateStatus is the review state of a name on the unverified list.
type CandidateStatus string

const (
	CandidatePending  CandidateStatus = "pending"
	CandidateVerified CandidateStatus = "verified"
	CandidateRejected CandidateStatus = "rejected"
)

func ParseCandidateStatus(s string) (CandidateStatus, bool) {
	switch CandidateStatus(strings.ToLower(strings.TrimSpace(s))) {
	case CandidatePending:
		return CandidatePending, true
	case CandidateVerified:
		return CandidateVerified, true
	case CandidateRejected:
		return CandidateRejected, true
	}
	return "", false
}

// Candidate is a caregiver name awaiting verification before registration.
type Candidate struct {
	ID         string
	Name       string
	Status     CandidateStatus
	UploadedAt time.Time
	Notes      string
	VerifiedAt *time.Time
	VerifiedBy string
}
