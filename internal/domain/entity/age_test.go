package entity

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAgeOn(t *testing.T) {
	cases := []struct {
		name string
		dob  time.Time
		now  time.Time
		want int
	}{
		{"exact anniversary", date(2023, 3, 15), date(2024, 3, 15), 1},
		{"day before anniversary", date(2023, 3, 15), date(2024, 3, 14), 0},
		{"earlier month", date(1990, 12, 1), date(2024, 11, 30), 33},
		{"later month", date(1990, 1, 31), date(2024, 2, 1), 34},
		{"leap day birthday before march", date(2012, 2, 29), date(2024, 2, 28), 11},
		{"future date of birth", date(2030, 1, 1), date(2024, 1, 1), 0},
	}
	for _, tc := range cases {
		if got := AgeOn(tc.dob, tc.now); got != tc.want {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.want, got)
		}
	}
}

func TestAgeAtFallsBackToStoredAge(t *testing.T) {
	stored := 40
	c := Caregiver{Age: &stored}
	got := c.AgeAt(date(2024, 1, 1))
	if got == nil || *got != 40 {
		t.Fatalf("expected stored age 40, got %v", got)
	}

	dob := date(2000, 6, 1)
	c.DateOfBirth = &dob
	got = c.AgeAt(date(2024, 6, 1))
	if got == nil || *got != 24 {
		t.Fatalf("expected derived age 24, got %v", got)
	}

	if (Child{}).AgeAt(date(2024, 1, 1)) != nil {
		t.Fatalf("expected nil age without date of birth or stored age")
	}
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint("  Mary   Ann ", "+234 (801) 555-0101")
	b := Fingerprint("mary ann", "2348015550101")
	if a != b {
		t.Fatalf("expected matching fingerprints, got %q and %q", a, b)
	}
	if Fingerprint("", "  ") != "" {
		t.Fatalf("expected empty fingerprint for blank input")
	}
	if Fingerprint("Mary Ann", "1") == Fingerprint("Mary Ann", "2") {
		t.Fatalf("expected different phones to give different fingerprints")
	}
}

func TestCloneIsDeep(t *testing.T) {
	age := 5
	d := &Dataset{Children: []Child{{ID: "CH-000001", Age: &age}}}
	c := d.Clone()
	*c.Children[0].Age = 9
	c.Children[0].Name = "changed"
	if *d.Children[0].Age != 5 || d.Children[0].Name != "" {
		t.Fatalf("clone shares state with source")
	}
}
