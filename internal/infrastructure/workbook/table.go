package workbook

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFile is returned by ReadTable for files that are neither .csv nor .xlsx.
var ErrUnsupportedFile = errors.New("unsupported file type")

// ReadTable reads an uploaded .csv file, or a sheet of an .xlsx file (the
// first sheet when sheet is empty), into records.
func ReadTable(filename string, r io.Reader, sheet string) ([]Record, error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".csv":
		return readCSV(r)
	case ".xlsx":
		return ReadRecords(r, sheet)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFile, ext)
	}
}

// readCSV numbers records by the line they start on. The csv reader skips
// empty lines, so counting records would drift.
func readCSV(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var (
		rows  [][]string
		lines []int
	)
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		line, _ := cr.FieldPos(0)
		rows = append(rows, row)
		lines = append(lines, line)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return numberedRecords(rows, lines), nil
}
