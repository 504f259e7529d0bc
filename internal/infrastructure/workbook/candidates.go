package workbook

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/isoilaj/caregiver-registry/internal/domain/entity"
	"github.com/isoilaj/caregiver-registry/internal/domain/repository"
)

const SheetCandidates = "unverified_caregivers"

var CandidateColumns = []string{"unverified_id", "name", "status", "upload_date", "notes", "verified_date", "verified_by"}

// CandidateStore keeps the unverified caregiver list in its own workbook.
type CandidateStore struct {
	path string
}

var _ repository.CandidateStore = (*CandidateStore)(nil)

func NewCandidateStore(path string) *CandidateStore {
	return &CandidateStore{path: path}
}

func (s *CandidateStore) LoadCandidates(ctx context.Context) ([]entity.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(s.path); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("open candidate workbook %s: %w", s.path, err)
	}
	defer f.Close()

	rows, err := sheetRows(f, SheetCandidates)
	if err != nil {
		return nil, fmt.Errorf("read candidate workbook %s: %w", s.path, err)
	}
	var out []entity.Candidate
	for _, rec := range Records(rows) {
		c := entity.Candidate{
			ID:         rec.Get("unverified_id"),
			Name:       entity.NormalizeName(rec.Get("name")),
			UploadedAt: ParseTimestamp(rec.Get("upload_date")),
			Notes:      rec.Get("notes"),
			VerifiedBy: rec.Get("verified_by"),
		}
		c.Status, _ = entity.ParseCandidateStatus(rec.Get("status"))
		if c.Status == "" {
			c.Status = entity.CandidatePending
		}
		if t := ParseTimestamp(rec.Get("verified_date")); !t.IsZero() {
			c.VerifiedAt = &t
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *CandidateStore) SaveCandidates(ctx context.Context, candidates []entity.Candidate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", SheetCandidates); err != nil {
		return err
	}

	records := make([][]string, 0, len(candidates))
	for _, c := range candidates {
		verified := ""
		if c.VerifiedAt != nil {
			verified = formatTimestamp(*c.VerifiedAt)
		}
		records = append(records, []string{
			c.ID, c.Name, string(c.Status), formatTimestamp(c.UploadedAt), c.Notes, verified, c.VerifiedBy,
		})
	}
	if err := WriteTable(f, SheetCandidates, CandidateColumns, records); err != nil {
		return err
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("encode candidate workbook: %w", err)
	}
	if err := WriteFileAtomic(s.path, buf, 0o644); err != nil {
		return fmt.Errorf("write candidate workbook %s: %w", s.path, err)
	}
	return nil
}
