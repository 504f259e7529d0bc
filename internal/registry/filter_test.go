package registry

import (
	"testing"
	"time"

	"github.com/isoilaj/caregiver-registry/internal/domain/entity"
)

func intp(i int) *int { return &i }

func TestAgeGroups(t *testing.T) {
	caregiver := map[int]string{17: "Under 18", 18: "18-29", 29: "18-29", 30: "30-39", 59: "50-59", 60: "60+"}
	for age, want := range caregiver {
		if got := CaregiverAgeGroup(intp(age)); got != want {
			t.Fatalf("caregiver age %d: expected %s, got %s", age, want, got)
		}
	}
	child := map[int]string{0: "0-5", 5: "0-5", 6: "6-12", 13: "13-17", 18: "18-25", 26: "26+"}
	for age, want := range child {
		if got := ChildAgeGroup(intp(age)); got != want {
			t.Fatalf("child age %d: expected %s, got %s", age, want, got)
		}
	}
	if CaregiverAgeGroup(nil) != AgeUnknown || ChildAgeGroup(nil) != AgeUnknown {
		t.Fatalf("expected unknown group for missing age")
	}
}

func TestFilters(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	dob := time.Date(1990, 6, 1, 0, 0, 0, 0, time.UTC)
	cgs := []entity.Caregiver{
		{ID: "CG-000001", Name: "Ada Obi", Gender: "female", DateOfBirth: &dob, Profession: "Trader", Status: entity.StatusVerified},
		{ID: "CG-000002", Name: "Bola Ade", Gender: "male", Age: intp(62)},
	}
	got := FilterCaregivers(cgs, CaregiverFilter{Search: "obi", AgeGroup: "30-39", Profession: "trader"}, now)
	if len(got) != 1 || got[0].ID != "CG-000001" {
		t.Fatalf("unexpected caregivers %+v", got)
	}
	if got := FilterCaregivers(cgs, CaregiverFilter{Status: "unverified"}, now); len(got) != 0 {
		t.Fatalf("expected no unverified caregivers, got %+v", got)
	}

	chs := []entity.Child{
		{ID: "CH-000001", CaregiverID: "CG-000001", CaregiverName: "Ada Obi", Name: "Tola", Age: intp(4)},
		{ID: "CH-000002", CaregiverID: "CG-000002", CaregiverName: "Bola Ade", Name: "Kemi", Age: intp(14)},
	}
	if got := FilterChildren(chs, ChildFilter{Search: "bola"}, now); len(got) != 1 || got[0].ID != "CH-000002" {
		t.Fatalf("expected search to match caregiver name, got %+v", got)
	}
	if got := FilterChildren(chs, ChildFilter{AgeGroup: "0-5"}, now); len(got) != 1 || got[0].ID != "CH-000001" {
		t.Fatalf("unexpected age group match %+v", got)
	}
}
