package candidate

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	"github.com/isoilaj/caregiver-registry/internal/domain/entity"
	"github.com/isoilaj/caregiver-registry/internal/infrastructure/database/inmemory"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func makeAppWithCandidateHandler(seed []entity.Candidate) (*fiber.App, *Service, *inmemory.CandidateStore) {
	store := inmemory.NewCandidateStore(seed)
	svc := NewService(store, func() time.Time { return testNow })
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if v := c.Get("X-Operator"); v != "" {
			c.Locals("user", &jwt.Token{Claims: jwt.MapClaims{"operator": v}})
		}
		return c.Next()
	})
	NewHandler(svc).RegisterProtectedRoutes(app)
	return app, svc, store
}

func seedCandidates() []entity.Candidate {
	return []entity.Candidate{
		{ID: "a", Name: "Ada Obi", Status: entity.CandidatePending, UploadedAt: testNow.Add(-2 * time.Hour)},
		{ID: "b", Name: "Bola Ade", Status: entity.CandidateVerified, UploadedAt: testNow.Add(-time.Hour)},
		{ID: "c", Name: "Chi Eze", Status: entity.CandidateRejected, UploadedAt: testNow},
	}
}

func TestUploadSkipsDuplicateNames(t *testing.T) {
	app, _, store := makeAppWithCandidateHandler(seedCandidates())

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, _ := w.CreateFormFile("file", "names.csv")
	part.Write([]byte("Full Name,phone\nada obi,1\nDayo  Kalu,2\ndayo kalu,3\n,4\n"))
	w.WriteField("column", "Full Name")
	w.Close()

	req := httptest.NewRequest("POST", "/api/v1/candidates/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	b, _ := io.ReadAll(res.Body)
	if res.StatusCode != fiber.StatusOK || !strings.Contains(string(b), `"added":1`) || !strings.Contains(string(b), `"skipped":2`) {
		t.Fatalf("unexpected upload response %d %s", res.StatusCode, b)
	}

	all, _ := store.LoadCandidates(context.Background())
	if len(all) != 4 {
		t.Fatalf("expected 4 candidates, got %d", len(all))
	}
	added := all[3]
	if added.Name != "Dayo Kalu" || added.Status != entity.CandidatePending || added.ID == "" {
		t.Fatalf("unexpected candidate %+v", added)
	}
	if added.Notes != "Uploaded from names.csv" {
		t.Fatalf("unexpected notes %q", added.Notes)
	}
}

func TestUploadWithoutNameColumn(t *testing.T) {
	_, svc, _ := makeAppWithCandidateHandler(nil)
	_, err := svc.Upload(context.Background(), "list.csv", strings.NewReader("phone\n0801\n"), "")
	if err != ErrNoNameColumn {
		t.Fatalf("expected ErrNoNameColumn, got %v", err)
	}
}

func TestBulkStatusRecordsReviewer(t *testing.T) {
	app, _, store := makeAppWithCandidateHandler(seedCandidates())

	req := httptest.NewRequest("PATCH", "/api/v1/candidates/status", strings.NewReader(`{"ids":["a","c"],"status":"verified"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Operator", "admin")
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	all, _ := store.LoadCandidates(context.Background())
	for _, c := range all {
		if c.Status != entity.CandidateVerified {
			t.Fatalf("expected %s to be verified, got %s", c.ID, c.Status)
		}
	}
	if all[0].VerifiedBy != "admin" || all[0].VerifiedAt == nil || !all[0].VerifiedAt.Equal(testNow) {
		t.Fatalf("reviewer not recorded: %+v", all[0])
	}

	req = httptest.NewRequest("PATCH", "/api/v1/candidates/status", strings.NewReader(`{"ids":["a","zzz"],"status":"pending"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Operator", "admin")
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 for unknown id, got %d", res.StatusCode)
	}
	all, _ = store.LoadCandidates(context.Background())
	if all[0].Status != entity.CandidateVerified {
		t.Fatalf("failed bulk change must not apply partially")
	}
}

func TestListStatsAndDelete(t *testing.T) {
	app, svc, _ := makeAppWithCandidateHandler(seedCandidates())
	ctx := context.Background()

	list, err := svc.List(ctx, "", "")
	if err != nil || len(list) != 3 || list[0].ID != "c" {
		t.Fatalf("expected newest first, got %+v (%v)", list, err)
	}
	if _, err := svc.List(ctx, "maybe", ""); err != ErrInvalidStatus {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}

	res, _ := app.Test(httptest.NewRequest("GET", "/api/v1/candidates?status=pending&q=ada", nil))
	b, _ := io.ReadAll(res.Body)
	if !strings.Contains(string(b), `"id":"a"`) || strings.Contains(string(b), `"id":"b"`) {
		t.Fatalf("unexpected filtered list %s", b)
	}

	req := httptest.NewRequest("DELETE", "/api/v1/candidates", strings.NewReader(`{"ids":["b"]}`))
	req.Header.Set("Content-Type", "application/json")
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}

	st, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if st != (Stats{Total: 2, Pending: 1, Rejected: 1}) {
		t.Fatalf("unexpected stats %+v", st)
	}
}
