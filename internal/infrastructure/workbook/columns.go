package workbook

import (
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/isoilaj/caregiver-registry/internal/domain/entity"
)

const (
	SheetCaregivers = "caregivers"
	SheetChildren   = "children"
	SheetMeta       = "meta"
)

var CaregiverColumns = []string{
	"caregiver_id", "caregiver_name", "gender", "date_of_birth", "age", "profession",
	"education_level", "zonal_leader", "address", "phone_number", "bank", "account_number",
	"number_of_kids", "verification_status", "registered_at", "last_updated",
}

var ChildColumns = []string{
	"child_id", "caregiver_id", "caregiver_name", "child_name", "child_gender",
	"child_date_of_birth", "child_age", "child_phone_number", "child_education_level",
	"child_school_name", "child_class_level", "child_profession", "registered_at", "last_updated",
}

var numericColumns = map[string]bool{"age": true, "number_of_kids": true, "child_age": true}

// older workbooks linked children through a hashed caregiver_key
var columnAliases = map[string]string{
	"caregiver_key": "caregiver_id",
	"phone":         "phone_number",
	"kids":          "number_of_kids",
}

// Record is one data row keyed by column name. Row is the 1-based sheet row
// (or CSV line) the values were read from.
type Record struct {
	Row    int
	Values map[string]string
}

// Get returns the value in col, empty when the column is absent.
func (r Record) Get(col string) string {
	return r.Values[col]
}

// Has reports whether the column appeared in the header.
func (r Record) Has(col string) bool {
	_, ok := r.Values[col]
	return ok
}

// Records turns sheet rows into records using the first row as header. Fully
// blank rows are dropped; the remaining records keep their sheet row numbers.
func Records(rows [][]string) []Record {
	return numberedRecords(rows, nil)
}

// numberedRecords is Records with the source line of each row given
// explicitly. When lines is nil, row i sits on line i+1.
func numberedRecords(rows [][]string, lines []int) []Record {
	if len(rows) == 0 {
		return nil
	}
	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		h = strings.ToLower(strings.TrimSpace(h))
		if alias, ok := columnAliases[h]; ok {
			h = alias
		}
		header[i] = h
	}
	var out []Record
	for n, row := range rows[1:] {
		values := make(map[string]string, len(header))
		blank := true
		for i, col := range header {
			if col == "" {
				continue
			}
			v := ""
			if i < len(row) {
				v = strings.TrimSpace(row[i])
			}
			if v != "" {
				blank = false
			}
			if _, seen := values[col]; !seen || v != "" {
				values[col] = v
			}
		}
		if blank {
			continue
		}
		line := n + 2
		if n+1 < len(lines) {
			line = lines[n+1]
		}
		out = append(out, Record{Row: line, Values: values})
	}
	return out
}

func EncodeCaregiver(c entity.Caregiver) []string {
	return []string{
		c.ID, c.Name, c.Gender, formatDate(c.DateOfBirth), formatInt(c.Age), c.Profession,
		c.EducationLevel, c.ZonalLeader, c.Address, c.Phone, c.Bank, c.AccountNumber,
		formatInt(c.NumberOfKids), string(c.Status), formatTimestamp(c.RegisteredAt), formatTimestamp(c.UpdatedAt),
	}
}

func DecodeCaregiver(rec Record) entity.Caregiver {
	return entity.Caregiver{
		ID:             rec.Get("caregiver_id"),
		Name:           rec.Get("caregiver_name"),
		Gender:         rec.Get("gender"),
		DateOfBirth:    ParseDate(rec.Get("date_of_birth")),
		Age:            ParseInt(rec.Get("age")),
		Profession:     rec.Get("profession"),
		EducationLevel: rec.Get("education_level"),
		ZonalLeader:    rec.Get("zonal_leader"),
		Address:        rec.Get("address"),
		Phone:          rec.Get("phone_number"),
		Bank:           rec.Get("bank"),
		AccountNumber:  rec.Get("account_number"),
		NumberOfKids:   ParseInt(rec.Get("number_of_kids")),
		Status:         entity.VerificationStatus(rec.Get("verification_status")),
		RegisteredAt:   ParseTimestamp(rec.Get("registered_at")),
		UpdatedAt:      ParseTimestamp(rec.Get("last_updated")),
	}
}

func EncodeChild(ch entity.Child) []string {
	return []string{
		ch.ID, ch.CaregiverID, ch.CaregiverName, ch.Name, ch.Gender,
		formatDate(ch.DateOfBirth), formatInt(ch.Age), ch.Phone, ch.EducationLevel,
		ch.SchoolName, ch.ClassLevel, ch.Profession, formatTimestamp(ch.RegisteredAt), formatTimestamp(ch.UpdatedAt),
	}
}

func DecodeChild(rec Record) entity.Child {
	return entity.Child{
		ID:             rec.Get("child_id"),
		CaregiverID:    rec.Get("caregiver_id"),
		CaregiverName:  rec.Get("caregiver_name"),
		Name:           rec.Get("child_name"),
		Gender:         rec.Get("child_gender"),
		DateOfBirth:    ParseDate(rec.Get("child_date_of_birth")),
		Age:            ParseInt(rec.Get("child_age")),
		Phone:          rec.Get("child_phone_number"),
		EducationLevel: rec.Get("child_education_level"),
		SchoolName:     rec.Get("child_school_name"),
		ClassLevel:     rec.Get("child_class_level"),
		Profession:     rec.Get("child_profession"),
		RegisteredAt:   ParseTimestamp(rec.Get("registered_at")),
		UpdatedAt:      ParseTimestamp(rec.Get("last_updated")),
	}
}

var dateLayouts = []string{entity.DateLayout, time.RFC3339, "2006-01-02 15:04:05", "2006/01/02"}

// ParseDate reads a calendar date typed as text or stored as an Excel serial
// number. Unreadable values yield nil.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &d
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &d
		}
	}
	return nil
}

// ParseInt accepts whole numbers, including ones Excel stored as "7.0".
func ParseInt(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return &n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		n := int(f)
		return &n
	}
	return nil
}

func ParseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC()
	}
	for _, layout := range []string{"2006-01-02 15:04:05", entity.DateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return t.UTC().Truncate(time.Second)
		}
	}
	return time.Time{}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(entity.DateLayout)
}

func formatInt(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
