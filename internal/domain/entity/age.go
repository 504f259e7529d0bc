package entity

import (
	"strings"
	"time"
)

// DateLayout is the on-disk and wire format of calendar dates.
const DateLayout = "2006-01-02"

// AgeOn returns the number of whole years between dob and now. The anniversary
// day itself counts as a completed year.
func AgeOn(dob, now time.Time) int {
	years := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

func derivedAge(dob *time.Time, stored *int, now time.Time) *int {
	if dob != nil {
		age := AgeOn(*dob, now)
		return &age
	}
	if stored == nil {
		return nil
	}
	age := *stored
	return &age
}

// NormalizeName collapses inner whitespace and trims the ends.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// Fingerprint combines a case-folded name with the digits of a phone number.
// Two records with the same non-empty fingerprint are treated as the same person.
func Fingerprint(name, phone string) string {
	n := strings.ToLower(NormalizeName(name))
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if n == "" && digits.Len() == 0 {
		return ""
	}
	return n + "|" + digits.String()
}
