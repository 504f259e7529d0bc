// Package workbook stores the registry in a single .xlsx file with one sheet
// per table and a meta sheet for identifier counters.
package workbook

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/isoilaj/caregiver-registry/internal/domain/entity"
	"github.com/isoilaj/caregiver-registry/internal/domain/repository"
)

// ErrNotRegistryWorkbook is returned when an existing file has neither a
// caregivers nor a children sheet. Such a file is never overwritten.
var ErrNotRegistryWorkbook = errors.New("not a registry workbook")

const (
	metaCaregiverSeq = "caregiver_seq"
	metaChildSeq     = "child_seq"
)

// Store reads and writes the registry workbook at Path.
type Store struct {
	path string
}

var _ repository.Store = (*Store)(nil)

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string {
	return s.path
}

// Load reads the workbook, creating an empty one first when the file does not exist.
func (s *Store) Load(ctx context.Context) (*entity.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(s.path); errors.Is(err, os.ErrNotExist) {
		if err := s.Save(ctx, &entity.Dataset{}); err != nil {
			return nil, fmt.Errorf("create workbook %s: %w", s.path, err)
		}
	}

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", s.path, err)
	}
	defer f.Close()

	data, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("read workbook %s: %w", s.path, err)
	}
	return data, nil
}

// Save writes the whole dataset, replacing the file atomically.
func (s *Store) Save(ctx context.Context, data *entity.Dataset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := Encode(data)
	if err != nil {
		return err
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("encode workbook: %w", err)
	}
	if err := WriteFileAtomic(s.path, buf, 0o644); err != nil {
		return fmt.Errorf("write workbook %s: %w", s.path, err)
	}
	return nil
}

// Decode reads a dataset from an open workbook. A missing caregivers or
// children sheet reads as empty, but a workbook with neither is rejected.
func Decode(f *excelize.File) (*entity.Dataset, error) {
	if !hasSheet(f, SheetCaregivers) && !hasSheet(f, SheetChildren) {
		return nil, fmt.Errorf("%w: sheets %v", ErrNotRegistryWorkbook, f.GetSheetList())
	}
	data := &entity.Dataset{Source: &entity.Source{}}
	src := data.Source

	rows, err := sheetRows(f, SheetCaregivers)
	if err != nil {
		return nil, err
	}
	for _, rec := range Records(rows) {
		c := DecodeCaregiver(rec)
		data.Caregivers = append(data.Caregivers, c)
		src.CaregiverRows = append(src.CaregiverRows, rec.Row)
		src.Unreadable = appendUnreadableDate(src.Unreadable, SheetCaregivers, rec, c.ID, "date_of_birth", c.DateOfBirth)
	}

	rows, err = sheetRows(f, SheetChildren)
	if err != nil {
		return nil, err
	}
	for _, rec := range Records(rows) {
		ch := DecodeChild(rec)
		data.Children = append(data.Children, ch)
		src.ChildRows = append(src.ChildRows, rec.Row)
		src.Unreadable = appendUnreadableDate(src.Unreadable, SheetChildren, rec, ch.ID, "child_date_of_birth", ch.DateOfBirth)
	}

	rows, err = sheetRows(f, SheetMeta)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		n, err := strconv.Atoi(row[1])
		if err != nil {
			continue
		}
		switch row[0] {
		case metaCaregiverSeq:
			data.Sequence.Caregiver = n
		case metaChildSeq:
			data.Sequence.Child = n
		}
	}
	return data, nil
}

// Encode builds a workbook holding data. The caller closes the returned file.
func Encode(data *entity.Dataset) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetCaregivers); err != nil {
		f.Close()
		return nil, err
	}
	for _, name := range []string{SheetChildren, SheetMeta} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, err
		}
	}

	caregivers := make([][]string, 0, len(data.Caregivers))
	for _, c := range data.Caregivers {
		caregivers = append(caregivers, EncodeCaregiver(c))
	}
	children := make([][]string, 0, len(data.Children))
	for _, ch := range data.Children {
		children = append(children, EncodeChild(ch))
	}
	meta := [][]string{
		{metaCaregiverSeq, strconv.Itoa(data.Sequence.Caregiver)},
		{metaChildSeq, strconv.Itoa(data.Sequence.Child)},
	}

	if err := WriteTable(f, SheetCaregivers, CaregiverColumns, caregivers); err != nil {
		f.Close()
		return nil, err
	}
	if err := WriteTable(f, SheetChildren, ChildColumns, children); err != nil {
		f.Close()
		return nil, err
	}
	for i, row := range meta {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(SheetMeta, cell, &[]interface{}{row[0], row[1]}); err != nil {
			f.Close()
			return nil, err
		}
	}
	if err := f.SetSheetVisible(SheetMeta, false); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// WriteTable writes a header row and records to sheet. Numeric columns are
// stored as numbers, everything else as text.
func WriteTable(f *excelize.File, sheet string, header []string, records [][]string) error {
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	cells := make([]interface{}, len(header))
	for i, h := range header {
		cells[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &cells); err != nil {
		return err
	}
	if err := f.SetRowStyle(sheet, 1, 1, style); err != nil {
		return err
	}

	for r, rec := range records {
		row := make([]interface{}, len(rec))
		for i, v := range rec {
			switch {
			case v == "":
				row[i] = nil
			case i < len(header) && numericColumns[header[i]]:
				if n, err := strconv.Atoi(v); err == nil {
					row[i] = n
				} else {
					row[i] = v
				}
			default:
				row[i] = v
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

// ReadRecords opens an uploaded workbook and returns the records of sheet,
// or of the first sheet when sheet is empty.
func ReadRecords(r io.Reader, sheet string) ([]Record, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, nil
		}
		sheet = sheets[0]
	}
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("sheet %q not found", sheet)
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}
	return Records(rows), nil
}

func appendUnreadableDate(list []entity.UnreadableValue, sheet string, rec Record, id, col string, parsed *time.Time) []entity.UnreadableValue {
	if v := rec.Get(col); v != "" && parsed == nil {
		list = append(list, entity.UnreadableValue{Sheet: sheet, Row: rec.Row, ID: id, Column: col, Value: v})
	}
	return list
}

func hasSheet(f *excelize.File, sheet string) bool {
	idx, err := f.GetSheetIndex(sheet)
	return err == nil && idx >= 0
}

func sheetRows(f *excelize.File, sheet string) ([][]string, error) {
	idx, err := f.GetSheetIndex(sheet)
	if err != nil {
		return nil, err
	}
	if idx < 0 {
		return nil, nil
	}
	return f.GetRows(sheet, excelize.Options{RawCellValue: true})
}
