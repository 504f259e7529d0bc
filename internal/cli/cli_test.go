package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/isoilaj/caregiver-registry/internal/config"
	"github.com/isoilaj/caregiver-registry/internal/domain/entity"
	"github.com/isoilaj/caregiver-registry/internal/infrastructure/workbook"
)

var testNow = time.Date(2024, 6, 1, 8, 0, 0, 0, time.Local)

func seedWorkbook(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "caregivers_database.xlsx")
	data := &entity.Dataset{
		Caregivers: []entity.Caregiver{
			{ID: "CG-000001", Name: "Ada Obi", Gender: "female", Phone: "0801", Status: entity.StatusUnverified},
		},
		Children: []entity.Child{
			{ID: "CH-000001", CaregiverID: "CG-000001", CaregiverName: "Ada Obi", Name: "Tola"},
		},
		Sequence: entity.Sequence{Caregiver: 1, Child: 1},
	}
	if err := workbook.NewStore(path).Save(context.Background(), data); err != nil {
		t.Fatalf("seed workbook: %v", err)
	}
	return path
}

func runCLI(t *testing.T, path string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	e := &env{
		cfg:    config.Config{WorkbookPath: path, BackupDir: filepath.Join(filepath.Dir(path), "backups")},
		stdout: &stdout,
		now:    func() time.Time { return testNow },
	}
	code := run(context.Background(), e, args, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestCheckThenMigratePhones(t *testing.T) {
	path := seedWorkbook(t)

	code, out, _ := runCLI(t, path, "check")
	if code != ExitIssuesFound {
		t.Fatalf("expected exit %d, got %d (%s)", ExitIssuesFound, code, out)
	}
	if !strings.Contains(out, "Tola") {
		t.Fatalf("expected issue about Tola, got %q", out)
	}

	code, out, errOut := runCLI(t, path, "migrate-phones")
	if code != ExitSuccess {
		t.Fatalf("expected success, got %d: %s", code, errOut)
	}
	if !strings.Contains(out, "updated 1") {
		t.Fatalf("expected one update, got %q", out)
	}

	code, out, _ = runCLI(t, path, "check")
	if code != ExitSuccess {
		t.Fatalf("expected clean check, got %d (%s)", code, out)
	}
}

func TestExportToStdout(t *testing.T) {
	path := seedWorkbook(t)

	code, out, errOut := runCLI(t, path, "export", "-table", "children")
	if code != ExitSuccess {
		t.Fatalf("expected success, got %d: %s", code, errOut)
	}
	if !strings.HasPrefix(out, "child_id,") || !strings.Contains(out, "CH-000001") {
		t.Fatalf("unexpected csv: %q", out)
	}
}

func TestExportRejectsUnknownTable(t *testing.T) {
	path := seedWorkbook(t)

	code, _, errOut := runCLI(t, path, "export", "-table", "parents")
	if code != ExitInvalidInvocation {
		t.Fatalf("expected exit %d, got %d", ExitInvalidInvocation, code)
	}
	if !strings.Contains(errOut, "unknown table") {
		t.Fatalf("unexpected stderr %q", errOut)
	}
}

func TestImportCaregivers(t *testing.T) {
	path := seedWorkbook(t)
	src := filepath.Join(t.TempDir(), "more.csv")
	if err := os.WriteFile(src, []byte("caregiver_name,phone_number\nBola Ade,0802\n,0803\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	code, out, errOut := runCLI(t, path, "import", "-file", src)
	if code != ExitSuccess {
		t.Fatalf("expected success, got %d: %s", code, errOut)
	}
	if !strings.Contains(out, "created 1, updated 0, skipped 1") {
		t.Fatalf("unexpected summary %q", out)
	}

	data, err := workbook.NewStore(path).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(data.Caregivers) != 2 {
		t.Fatalf("expected 2 caregivers, got %d", len(data.Caregivers))
	}
}

func TestImportRequiresFile(t *testing.T) {
	code, _, _ := runCLI(t, seedWorkbook(t), "import")
	if code != ExitInvalidInvocation {
		t.Fatalf("expected exit %d, got %d", ExitInvalidInvocation, code)
	}
}

func TestBackupCreatesAndLists(t *testing.T) {
	path := seedWorkbook(t)

	code, out, errOut := runCLI(t, path, "backup")
	if code != ExitSuccess {
		t.Fatalf("expected success, got %d: %s", code, errOut)
	}
	if !strings.Contains(out, "caregivers_database_20240601_080000.xlsx") {
		t.Fatalf("unexpected backup path %q", out)
	}

	code, out, _ = runCLI(t, path, "backup", "-list")
	if code != ExitSuccess || !strings.Contains(out, "caregivers_database_20240601_080000.xlsx") {
		t.Fatalf("expected listed backup, got %d %q", code, out)
	}
}

func TestHashPassword(t *testing.T) {
	code, out, _ := runCLI(t, "unused.xlsx", "hash-password", "-password", "s3cret")
	if code != ExitSuccess {
		t.Fatalf("expected success, got %d", code)
	}
	if !strings.HasPrefix(strings.TrimSpace(out), "$2") {
		t.Fatalf("expected bcrypt hash, got %q", out)
	}
}

func TestInvocationErrors(t *testing.T) {
	cases := [][]string{
		nil,
		{"frobnicate"},
		{"-nope"},
		{"dedupe", "extra"},
		{"hash-password"},
	}
	for _, args := range cases {
		code, _, _ := runCLI(t, "unused.xlsx", args...)
		if code != ExitInvalidInvocation {
			t.Fatalf("args %v: expected exit %d, got %d", args, ExitInvalidInvocation, code)
		}
	}
}
