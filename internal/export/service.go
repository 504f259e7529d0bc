// Package export writes registry tables as CSV, JSON or XLSX and imports
// tables from CSV or XLSX uploads.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/isoilaj/caregiver-registry/internal/domain/entity"
	"github.com/isoilaj/caregiver-registry/internal/infrastructure/events"
	"github.com/isoilaj/caregiver-registry/internal/infrastructure/workbook"
	"github.com/isoilaj/caregiver-registry/internal/interface/presenter"
	"github.com/isoilaj/caregiver-registry/internal/registry"
)

const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatXLSX = "xlsx"

	derivedAgeColumn = "derived_age"
)

var (
	ErrUnknownTable  = errors.New("unknown table")
	ErrUnknownFormat = errors.New("unknown format")
	ErrUnknownLayout = errors.New("file has neither a child_name nor a caregiver_name column")
	ErrEmptyFile     = errors.New("file has no data rows")
)

// Filter selects the rows to export. Only the filter of the exported table is used.
type Filter struct {
	Caregivers registry.CaregiverFilter
	Children   registry.ChildFilter
}

func (f Filter) empty(table string) bool {
	if table == registry.TableCaregivers {
		return f.Caregivers == registry.CaregiverFilter{}
	}
	return f.Children == registry.ChildFilter{}
}

// File is an exported table ready to be downloaded.
type File struct {
	Name        string
	ContentType string
	Body        []byte
}

type Service struct {
	records   *registry.Manager
	presenter *presenter.RegistryPresenter
	events    events.Publisher
	logger    *log.Logger
}

func NewService(records *registry.Manager, p *presenter.RegistryPresenter, publisher events.Publisher, logger *log.Logger) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Service{records: records, presenter: p, events: publisher, logger: logger}
}

// Export renders table in format. Filtered exports are named filtered_<table>.
func (s *Service) Export(ctx context.Context, table, format string, f Filter) (File, error) {
	if table != registry.TableCaregivers && table != registry.TableChildren {
		return File{}, fmt.Errorf("%w: %q", ErrUnknownTable, table)
	}
	format = strings.ToLower(format)
	if format == "" {
		format = FormatCSV
	}

	var (
		caregivers []entity.Caregiver
		children   []entity.Child
		now        time.Time
	)
	err := s.records.View(ctx, func(r *registry.Registry) error {
		now = r.Now()
		caregivers = registry.FilterCaregivers(r.Caregivers(), f.Caregivers, now)
		children = registry.FilterChildren(r.Children(), f.Children, now)
		return nil
	})
	if err != nil {
		return File{}, err
	}

	header, rows := Rows(table, caregivers, children, now)
	name := table
	if !f.empty(table) {
		name = "filtered_" + table
	}

	switch format {
	case FormatCSV:
		body, err := WriteCSV(header, rows)
		if err != nil {
			return File{}, err
		}
		return File{Name: name + ".csv", ContentType: "text/csv; charset=utf-8", Body: body}, nil
	case FormatJSON:
		var v interface{}
		if table == registry.TableCaregivers {
			v = s.presenter.Caregivers(caregivers)
		} else {
			v = s.presenter.Children(children)
		}
		body, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return File{}, err
		}
		return File{Name: name + ".json", ContentType: "application/json", Body: body}, nil
	case FormatXLSX:
		body, err := writeXLSX(table, header, rows)
		if err != nil {
			return File{}, err
		}
		return File{
			Name:        name + ".xlsx",
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Body:        body,
		}, nil
	default:
		return File{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Rows returns the header and rows of table in workbook column order followed
// by the age derived as of now.
func Rows(table string, caregivers []entity.Caregiver, children []entity.Child, now time.Time) ([]string, [][]string) {
	if table == registry.TableCaregivers {
		header := append(append([]string{}, workbook.CaregiverColumns...), derivedAgeColumn)
		rows := make([][]string, 0, len(caregivers))
		for _, c := range caregivers {
			rows = append(rows, append(workbook.EncodeCaregiver(c), ageText(c.AgeAt(now))))
		}
		return header, rows
	}
	header := append(append([]string{}, workbook.ChildColumns...), derivedAgeColumn)
	rows := make([][]string, 0, len(children))
	for _, ch := range children {
		rows = append(rows, append(workbook.EncodeChild(ch), ageText(ch.AgeAt(now))))
	}
	return header, rows
}

func WriteCSV(header []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeXLSX(sheet string, header []string, rows [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}
	if err := workbook.WriteTable(f, sheet, header, rows); err != nil {
		return nil, err
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func ageText(age *int) string {
	if age == nil {
		return ""
	}
	return strconv.Itoa(*age)
}

// Import reads an uploaded table and upserts its rows. The table is recognised
// by its columns: a child_name column means children, otherwise a
// caregiver_name column means caregivers.
func (s *Service) Import(ctx context.Context, operator, filename string, r io.Reader, sheet string) (registry.ImportResult, error) {
	records, err := workbook.ReadTable(filename, r, sheet)
	if err != nil {
		return registry.ImportResult{}, err
	}
	if len(records) == 0 {
		return registry.ImportResult{}, ErrEmptyFile
	}
	lines := make([]int, len(records))
	for i, rec := range records {
		lines[i] = rec.Row
	}

	var res registry.ImportResult
	switch {
	case records[0].Has("child_name"):
		rows := make([]entity.Child, 0, len(records))
		for _, rec := range records {
			rows = append(rows, workbook.DecodeChild(rec))
		}
		err = s.records.Update(ctx, func(r *registry.Registry) error {
			res = r.ImportChildren(rows, lines)
			return nil
		})
	case records[0].Has("caregiver_name"):
		rows := make([]entity.Caregiver, 0, len(records))
		for _, rec := range records {
			rows = append(rows, workbook.DecodeCaregiver(rec))
		}
		err = s.records.Update(ctx, func(r *registry.Registry) error {
			res = r.ImportCaregivers(rows, lines)
			return nil
		})
	default:
		return registry.ImportResult{}, ErrUnknownLayout
	}
	if err != nil {
		return registry.ImportResult{}, err
	}

	e := events.New(events.RegistryImported, "", operator, res)
	if err := s.events.Publish(ctx, e); err != nil {
		s.logger.Printf("publish %s: %v", e.Type, err)
	}
	return res, nil
}
