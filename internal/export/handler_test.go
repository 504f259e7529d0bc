package export

import (
	"bytes"
	"context"
	"encoding/csv"
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
	"github.com/isoilaj/caregiver-registry/internal/infrastructure/events"
	"github.com/isoilaj/caregiver-registry/internal/infrastructure/workbook"
	"github.com/isoilaj/caregiver-registry/internal/interface/presenter"
	"github.com/isoilaj/caregiver-registry/internal/registry"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func seed() *entity.Dataset {
	dob := time.Date(1990, 6, 1, 0, 0, 0, 0, time.UTC)
	return &entity.Dataset{
		Caregivers: []entity.Caregiver{
			{ID: "CG-000001", Name: "Ada Obi", Gender: "female", DateOfBirth: &dob, Phone: "0801", Status: entity.StatusVerified},
			{ID: "CG-000002", Name: "Bola Ade", Gender: "male", Phone: "0802", Status: entity.StatusUnverified},
		},
		Children: []entity.Child{
			{ID: "CH-000001", CaregiverID: "CG-000001", CaregiverName: "Ada Obi", Name: "Tola", Phone: "0801"},
		},
		Sequence: entity.Sequence{Caregiver: 2, Child: 1},
	}
}

func makeAppWithExportHandler(t *testing.T) (*fiber.App, *inmemory.Store, *events.Recorder) {
	t.Helper()
	store := inmemory.NewStore(seed())
	clock := func() time.Time { return testNow }
	records := registry.NewManager(store, registry.WithClock(clock))
	rec := &events.Recorder{}
	h := NewHandler(NewService(records, presenter.NewRegistryPresenter(clock), rec, nil))

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if v := c.Get("X-Operator"); v != "" {
			c.Locals("user", &jwt.Token{Claims: jwt.MapClaims{"operator": v}})
		}
		return c.Next()
	})
	h.RegisterProtectedRoutes(app)
	return app, store, rec
}

func TestExportCaregiversCSV(t *testing.T) {
	app, _, _ := makeAppWithExportHandler(t)

	res, err := app.Test(httptest.NewRequest("GET", "/api/v1/export/caregivers?gender=female", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	if cd := res.Header.Get(fiber.HeaderContentDisposition); !strings.Contains(cd, "filtered_caregivers.csv") {
		t.Fatalf("unexpected content disposition %q", cd)
	}
	rows, err := csv.NewReader(res.Body).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header and one row, got %d rows", len(rows))
	}
	header := rows[0]
	if header[0] != "caregiver_id" || header[len(header)-1] != "derived_age" {
		t.Fatalf("unexpected header %v", header)
	}
	if rows[1][0] != "CG-000001" || rows[1][len(header)-1] != "34" {
		t.Fatalf("unexpected row %v", rows[1])
	}
}

func TestExportChildrenXLSXAndJSON(t *testing.T) {
	app, _, _ := makeAppWithExportHandler(t)

	res, err := app.Test(httptest.NewRequest("GET", "/api/v1/export/children?format=xlsx", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	records, err := workbook.ReadRecords(res.Body, registry.TableChildren)
	if err != nil {
		t.Fatalf("exported workbook unreadable: %v", err)
	}
	if len(records) != 1 || records[0].Get("child_id") != "CH-000001" || records[0].Get("caregiver_id") != "CG-000001" {
		t.Fatalf("unexpected records %v", records)
	}

	res, err = app.Test(httptest.NewRequest("GET", "/api/v1/export/children?format=json", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	body, _ := io.ReadAll(res.Body)
	if !strings.Contains(string(body), `"childId": "CH-000001"`) {
		t.Fatalf("unexpected json %s", body)
	}
}

func TestExportRejectsUnknownTableAndFormat(t *testing.T) {
	app, _, _ := makeAppWithExportHandler(t)

	res, _ := app.Test(httptest.NewRequest("GET", "/api/v1/export/pets", nil))
	if res.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.StatusCode)
	}
	res, _ = app.Test(httptest.NewRequest("GET", "/api/v1/export/children?format=pdf", nil))
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.StatusCode)
	}
}

func upload(t *testing.T, app *fiber.App, filename, content string) (int, string) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	req := httptest.NewRequest("POST", "/api/v1/import", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("X-Operator", "admin")
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	b, _ := io.ReadAll(res.Body)
	return res.StatusCode, string(b)
}

func TestImportChildrenCSV(t *testing.T) {
	app, store, rec := makeAppWithExportHandler(t)

	csvBody := "child_name,caregiver_name,child_gender\nTola,Ada Obi,female\nKemi,Bola Ade,\n,,\nFemi,Nobody,male\n"
	status, body := upload(t, app, "children.csv", csvBody)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", status, body)
	}
	for _, want := range []string{`"table":"children"`, `"created":1`, `"updated":1`, `"skipped":1`, "row 5: no caregiver found", "Femi"} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %s in %s", want, body)
		}
	}

	data, _ := store.Load(context.Background())
	if len(data.Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(data.Children))
	}
	if data.Children[1].CaregiverID != "CG-000002" || data.Children[1].Phone != "0802" {
		t.Fatalf("unexpected imported child %+v", data.Children[1])
	}
	if types := rec.Types(); len(types) != 1 || types[0] != events.RegistryImported {
		t.Fatalf("expected one import event, got %v", types)
	}
}

func TestImportRejectsUnknownLayout(t *testing.T) {
	app, store, _ := makeAppWithExportHandler(t)

	status, _ := upload(t, app, "pets.csv", "pet_name,owner\nRex,Ada\n")
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
	status, _ = upload(t, app, "notes.txt", "hello")
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
	if store.Saves() != 0 {
		t.Fatalf("rejected imports must not be saved")
	}
}
