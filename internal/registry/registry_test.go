package registry

import (
	"errors"
	"testing"
	"time"

	"github.com/isoilaj/caregiver-registry/internal/domain/entity"
)

var fixedNow = time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func newTestRegistry(data *entity.Dataset) *Registry {
	return New(data, clock)
}

func mustCaregiver(t *testing.T, r *Registry, name, phone string) entity.Caregiver {
	t.Helper()
	c, merged, err := r.CreateCaregiver(entity.Caregiver{Name: name, Phone: phone})
	if err != nil {
		t.Fatalf("create caregiver %q: %v", name, err)
	}
	if merged {
		t.Fatalf("expected %q to be new", name)
	}
	return c
}

func TestIdentifiersNeverRepeat(t *testing.T) {
	r := newTestRegistry(nil)
	seen := map[string]bool{}
	for i := 0; i < 500; i++ {
		id := r.NextCaregiverID()
		if seen[id] {
			t.Fatalf("identifier %s issued twice", id)
		}
		seen[id] = true
	}
	if r.NextChildID() != "CH-000001" {
		t.Fatalf("expected child counter to be independent of caregiver counter")
	}
}

func TestDeletedIdentifierIsNotReused(t *testing.T) {
	r := newTestRegistry(nil)
	a := mustCaregiver(t, r, "Ada Obi", "0801")
	if _, err := r.DeleteCaregiver(a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	b := mustCaregiver(t, r, "Bola Ade", "0802")
	if b.ID == a.ID {
		t.Fatalf("identifier %s reused after delete", a.ID)
	}
}

func TestNormalizeAssignsIdentifiersAboveExisting(t *testing.T) {
	r := newTestRegistry(&entity.Dataset{
		Caregivers: []entity.Caregiver{
			{ID: "CG-000007", Name: "Ada  Obi"},
			{Name: "Bola Ade", Status: "VERIFIED"},
		},
		Children: []entity.Child{
			{ID: "CH-000003", CaregiverName: "bola ade", Name: "Tola"},
			{Name: "Kemi", CaregiverID: "CG-000007"},
		},
	})

	changed, issues := r.Normalize()
	if !changed {
		t.Fatalf("expected normalization to report a change")
	}
	cgs := r.Caregivers()
	if cgs[0].Name != "Ada Obi" {
		t.Fatalf("expected collapsed name, got %q", cgs[0].Name)
	}
	if cgs[1].ID != "CG-000008" {
		t.Fatalf("expected CG-000008, got %s", cgs[1].ID)
	}
	if cgs[1].Status != entity.StatusVerified || cgs[0].Status != entity.StatusUnverified {
		t.Fatalf("unexpected statuses %q %q", cgs[0].Status, cgs[1].Status)
	}
	chs := r.Children()
	if chs[0].CaregiverID != "CG-000008" {
		t.Fatalf("expected child relinked by caregiver name, got %q", chs[0].CaregiverID)
	}
	if chs[1].ID != "CH-000004" || chs[1].CaregiverName != "Ada Obi" {
		t.Fatalf("unexpected second child %+v", chs[1])
	}

	kinds := map[IssueKind]int{}
	for _, is := range issues {
		kinds[is.Kind]++
	}
	if kinds[IssueAssignedID] != 2 || kinds[IssueRelinked] != 1 {
		t.Fatalf("unexpected issues %+v", issues)
	}

	changed, _ = r.Normalize()
	if changed {
		t.Fatalf("expected second normalization to be stable")
	}
}

func TestNormalizeReassignsDuplicateIdentifier(t *testing.T) {
	r := newTestRegistry(&entity.Dataset{Caregivers: []entity.Caregiver{
		{ID: "CG-000001", Name: "Ada"},
		{ID: "CG-000001", Name: "Bola"},
	}})
	_, issues := r.Normalize()
	cgs := r.Caregivers()
	if cgs[0].ID == cgs[1].ID {
		t.Fatalf("duplicate identifier kept")
	}
	if len(issues) != 1 || issues[0].Kind != IssueDuplicateID || issues[0].Row != 3 {
		t.Fatalf("unexpected issues %+v", issues)
	}
}

func TestCheckReportsOrphansAndDuplicates(t *testing.T) {
	r := newTestRegistry(&entity.Dataset{
		Caregivers: []entity.Caregiver{
			{ID: "CG-000001", Name: "Ada Obi", Phone: "0801"},
			{ID: "CG-000002", Name: "ada obi", Phone: "0801"},
		},
		Children: []entity.Child{
			{ID: "CH-000001", CaregiverID: "CG-000009", Name: "Lost"},
			{ID: "CH-000002", CaregiverID: "CG-000001", Name: "Tola"},
			{ID: "CH-000003", CaregiverID: "CG-000001", Name: "TOLA", Phone: "1"},
		},
	})
	issues := r.Check()

	var orphan, dupCaregiver, dupChild, phone bool
	for _, is := range issues {
		switch {
		case is.Kind == IssueOrphan && is.ID == "CH-000001":
			orphan = true
		case is.Kind == IssueDuplicateCaregiver && is.ID == "CG-000002":
			dupCaregiver = true
		case is.Kind == IssueDuplicateChild && is.ID == "CH-000003":
			dupChild = true
		case is.Kind == IssueMissingPhone && is.ID == "CH-000002":
			phone = true
		}
	}
	if !orphan || !dupCaregiver || !dupChild || !phone {
		t.Fatalf("missing expected issues in %+v", issues)
	}
	if len(r.Children()) != 3 {
		t.Fatalf("check must not remove rows")
	}
}

func TestCheckReportsSourceRowsAndUnreadableDates(t *testing.T) {
	r := newTestRegistry(&entity.Dataset{
		Caregivers: []entity.Caregiver{
			{ID: "CG-000001", Name: "Ada Obi", Phone: "0801"},
			{ID: "CG-000002", Phone: "0802"},
		},
		Source: &entity.Source{
			CaregiverRows: []int{2, 4},
			Unreadable: []entity.UnreadableValue{
				{Sheet: TableCaregivers, Row: 2, ID: "CG-000001", Column: "date_of_birth", Value: "12/05/1990"},
			},
		},
	})

	var missing, invalid *Issue
	issues := r.Check()
	for i := range issues {
		switch issues[i].Kind {
		case IssueMissingName:
			missing = &issues[i]
		case IssueInvalidDate:
			invalid = &issues[i]
		}
	}
	if missing == nil || missing.Row != 4 {
		t.Fatalf("expected missing name on row 4, got %+v", issues)
	}
	if invalid == nil || invalid.Row != 2 || invalid.ID != "CG-000001" || invalid.Table != TableCaregivers {
		t.Fatalf("expected invalid date on row 2, got %+v", issues)
	}
}

func TestCreateCaregiverMergesOnFingerprint(t *testing.T) {
	r := newTestRegistry(nil)
	first := mustCaregiver(t, r, "Ada Obi", "0801-555")

	again, merged, err := r.CreateCaregiver(entity.Caregiver{Name: "ADA  obi", Phone: "0801 555", Profession: "Trader"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !merged || again.ID != first.ID {
		t.Fatalf("expected merge into %s, got %s merged=%v", first.ID, again.ID, merged)
	}
	if len(r.Caregivers()) != 1 || r.Caregivers()[0].Profession != "Trader" {
		t.Fatalf("expected a single updated caregiver, got %+v", r.Caregivers())
	}

	if _, _, err := r.CreateCaregiver(entity.Caregiver{Name: "   "}); !errors.Is(err, ErrNameRequired) {
		t.Fatalf("expected ErrNameRequired, got %v", err)
	}
}

func TestUpdateCaregiverKeepsIdentityAndRefreshesChildNames(t *testing.T) {
	r := newTestRegistry(nil)
	cg := mustCaregiver(t, r, "Ada Obi", "0801")
	if _, err := r.CreateChild(entity.Child{CaregiverID: cg.ID, Name: "Tola"}); err != nil {
		t.Fatalf("create child: %v", err)
	}
	if _, err := r.SetCaregiverStatus(cg.ID, entity.StatusVerified); err != nil {
		t.Fatalf("status: %v", err)
	}

	updated, err := r.UpdateCaregiver(cg.ID, entity.Caregiver{ID: "CG-999999", Name: "Ada Obi-Eze", Phone: "0801"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ID != cg.ID || !updated.RegisteredAt.Equal(cg.RegisteredAt) {
		t.Fatalf("identity changed: %+v", updated)
	}
	if updated.Status != entity.StatusVerified {
		t.Fatalf("expected status to be kept, got %q", updated.Status)
	}
	if r.ChildrenOf(cg.ID)[0].CaregiverName != "Ada Obi-Eze" {
		t.Fatalf("child caregiver name not refreshed")
	}

	if _, err := r.SetCaregiverStatus(cg.ID, "maybe"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if _, err := r.UpdateCaregiver("CG-404", entity.Caregiver{Name: "x"}); !errors.Is(err, ErrCaregiverNotFound) {
		t.Fatalf("expected ErrCaregiverNotFound, got %v", err)
	}
}

func TestDeleteCaregiverCascadesToChildren(t *testing.T) {
	r := newTestRegistry(nil)
	a := mustCaregiver(t, r, "Ada Obi", "0801")
	b := mustCaregiver(t, r, "Bola Ade", "0802")
	for _, name := range []string{"Tola", "Kemi"} {
		if _, err := r.CreateChild(entity.Child{CaregiverID: a.ID, Name: name}); err != nil {
			t.Fatalf("create child: %v", err)
		}
	}
	if _, err := r.CreateChild(entity.Child{CaregiverID: b.ID, Name: "Sade"}); err != nil {
		t.Fatalf("create child: %v", err)
	}

	removed, err := r.DeleteCaregiver(a.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 children removed, got %d", removed)
	}
	if len(r.Children()) != 1 || r.Children()[0].CaregiverID != b.ID {
		t.Fatalf("unexpected remaining children %+v", r.Children())
	}
	if _, err := r.DeleteCaregiver(a.ID); !errors.Is(err, ErrCaregiverNotFound) {
		t.Fatalf("expected ErrCaregiverNotFound, got %v", err)
	}
}

func TestCreateChildLinkage(t *testing.T) {
	r := newTestRegistry(nil)
	if _, err := r.CreateChild(entity.Child{CaregiverID: "CG-000001", Name: "Tola"}); !errors.Is(err, ErrCaregiverNotFound) {
		t.Fatalf("expected ErrCaregiverNotFound, got %v", err)
	}
	cg := mustCaregiver(t, r, "Ada Obi", "0801")

	ch, err := r.CreateChild(entity.Child{CaregiverID: cg.ID, Name: "Tola"})
	if err != nil {
		t.Fatalf("create child: %v", err)
	}
	if ch.Phone != "0801" || ch.CaregiverName != "Ada Obi" || ch.ID != "CH-000001" {
		t.Fatalf("unexpected child %+v", ch)
	}

	other := mustCaregiver(t, r, "Bola Ade", "0802")
	moved, err := r.UpdateChild(ch.ID, entity.Child{CaregiverID: other.ID, Name: "Tola", Phone: "0809"})
	if err != nil {
		t.Fatalf("move child: %v", err)
	}
	if moved.CaregiverName != "Bola Ade" || moved.Phone != "0809" {
		t.Fatalf("unexpected moved child %+v", moved)
	}
	if _, err := r.UpdateChild(ch.ID, entity.Child{CaregiverID: "CG-404", Name: "Tola"}); !errors.Is(err, ErrCaregiverNotFound) {
		t.Fatalf("expected ErrCaregiverNotFound, got %v", err)
	}
}

func TestIntakeReconcilesChildren(t *testing.T) {
	r := newTestRegistry(nil)
	first, err := r.Intake(entity.Caregiver{Name: "Ada Obi", Phone: "0801"}, []entity.Child{
		{Name: "Tola"},
		{Name: "Kemi", Phone: "0900"},
		{},
	})
	if err != nil {
		t.Fatalf("intake: %v", err)
	}
	if first.Created != 2 || first.Merged {
		t.Fatalf("unexpected first result %+v", first)
	}
	tola := first.Children[0]

	second, err := r.Intake(entity.Caregiver{Name: "ada obi", Phone: "0801"}, []entity.Child{
		{ID: tola.ID, Name: "Tola A."},
		{Name: "Sade"},
	})
	if err != nil {
		t.Fatalf("intake: %v", err)
	}
	if !second.Merged || second.Updated != 1 || second.Created != 1 || second.Removed != 1 {
		t.Fatalf("unexpected second result %+v", second)
	}
	children := r.ChildrenOf(first.Caregiver.ID)
	if len(children) != 2 {
		t.Fatalf("expected 2 children, got %+v", children)
	}
	if children[0].ID != tola.ID || children[0].Name != "Tola A." {
		t.Fatalf("expected child %s to be renamed in place, got %+v", tola.ID, children[0])
	}
	if len(r.Caregivers()) != 1 {
		t.Fatalf("expected caregiver to be merged, got %d", len(r.Caregivers()))
	}
}

func TestIntakeRejectsRowsWithoutName(t *testing.T) {
	r := newTestRegistry(nil)
	_, err := r.Intake(entity.Caregiver{Name: "Ada Obi"}, []entity.Child{
		{Name: "Tola"},
		{Gender: "female"},
		{},
		{SchoolName: "Unity"},
	})
	var rowErr *RowError
	if !errors.As(err, &rowErr) {
		t.Fatalf("expected RowError, got %v", err)
	}
	if len(rowErr.Rows) != 2 || rowErr.Rows[0] != 2 || rowErr.Rows[1] != 4 {
		t.Fatalf("unexpected rows %v", rowErr.Rows)
	}
	if len(r.Caregivers()) != 0 {
		t.Fatalf("rejected intake must not register the caregiver")
	}
}

func TestMigrateChildPhones(t *testing.T) {
	r := newTestRegistry(&entity.Dataset{
		Caregivers: []entity.Caregiver{{ID: "CG-000001", Name: "Ada", Phone: "0801"}, {ID: "CG-000002", Name: "Bola"}},
		Children: []entity.Child{
			{ID: "CH-000001", CaregiverID: "CG-000001", Name: "Tola"},
			{ID: "CH-000002", CaregiverID: "CG-000001", Name: "Kemi", Phone: "0900"},
			{ID: "CH-000003", CaregiverID: "CG-000002", Name: "Sade"},
		},
	})
	if n := r.MigrateChildPhones(); n != 1 {
		t.Fatalf("expected 1 migrated phone, got %d", n)
	}
	chs := r.Children()
	if chs[0].Phone != "0801" || chs[1].Phone != "0900" || chs[2].Phone != "" {
		t.Fatalf("unexpected phones %q %q %q", chs[0].Phone, chs[1].Phone, chs[2].Phone)
	}
	if n := r.MigrateChildPhones(); n != 0 {
		t.Fatalf("expected migration to be idempotent, got %d", n)
	}
}

func TestDeduplicateMergesCaregiversAndChildren(t *testing.T) {
	age := 7
	r := newTestRegistry(&entity.Dataset{
		Caregivers: []entity.Caregiver{
			{ID: "CG-000001", Name: "Ada Obi", Phone: "0801"},
			{ID: "CG-000002", Name: "Bola Ade", Phone: "0802"},
			{ID: "CG-000003", Name: "ada obi", Phone: "08-01", Profession: "Trader", Status: entity.StatusVerified},
		},
		Children: []entity.Child{
			{ID: "CH-000001", CaregiverID: "CG-000001", Name: "Tola"},
			{ID: "CH-000002", CaregiverID: "CG-000003", Name: "tola", Age: &age},
			{ID: "CH-000003", CaregiverID: "CG-000003", Name: "Kemi"},
		},
	})
	res := r.Deduplicate()
	if res.Caregivers != 1 || res.Children != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
	cgs := r.Caregivers()
	if len(cgs) != 2 || cgs[0].Profession != "Trader" || cgs[0].Status != entity.StatusVerified {
		t.Fatalf("unexpected caregivers %+v", cgs)
	}
	chs := r.ChildrenOf("CG-000001")
	if len(chs) != 2 {
		t.Fatalf("expected children re-pointed to survivor, got %+v", r.Children())
	}
	if chs[0].Age == nil || *chs[0].Age != 7 {
		t.Fatalf("expected surviving child to take age from duplicate")
	}
	for _, is := range r.Check() {
		if is.Kind == IssueDuplicateCaregiver || is.Kind == IssueDuplicateChild || is.Kind == IssueOrphan {
			t.Fatalf("unexpected issue after dedupe: %+v", is)
		}
	}
}
