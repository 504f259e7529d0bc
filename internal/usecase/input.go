package usecase

import (
	"errors"
	"strings"
	"time"

	"github.com/isoilaj/caregiver-registry/internal/domain/entity"
	"github.com/isoilaj/caregiver-registry/internal/registry"
)

var (
	ErrInvalidDate = errors.New("dates must use the YYYY-MM-DD format")
	ErrInvalidAge  = errors.New("age cannot be negative")
)

// CaregiverInput carries caregiver details submitted by the form layer.
type CaregiverInput struct {
	ID             string `json:"caregiverId"`
	Name           string `json:"name"`
	Gender         string `json:"gender"`
	DateOfBirth    string `json:"dateOfBirth"`
	Age            *int   `json:"age"`
	Profession     string `json:"profession"`
	EducationLevel string `json:"educationLevel"`
	ZonalLeader    string `json:"zonalLeader"`
	Address        string `json:"address"`
	Phone          string `json:"phone"`
	Bank           string `json:"bank"`
	AccountNumber  string `json:"accountNumber"`
	NumberOfKids   *int   `json:"numberOfKids"`
	Status         string `json:"verificationStatus"`
}

func (in CaregiverInput) Entity() (entity.Caregiver, error) {
	dob, err := parseDate(in.DateOfBirth)
	if err != nil {
		return entity.Caregiver{}, err
	}
	if negative(in.Age) || negative(in.NumberOfKids) {
		return entity.Caregiver{}, ErrInvalidAge
	}
	var status entity.VerificationStatus
	if strings.TrimSpace(in.Status) != "" {
		parsed, ok := entity.ParseVerificationStatus(in.Status)
		if !ok {
			return entity.Caregiver{}, registry.ErrInvalidStatus
		}
		status = parsed
	}
	return entity.Caregiver{
		ID:             strings.TrimSpace(in.ID),
		Name:           in.Name,
		Gender:         in.Gender,
		DateOfBirth:    dob,
		Age:            in.Age,
		Profession:     in.Profession,
		EducationLevel: in.EducationLevel,
		ZonalLeader:    in.ZonalLeader,
		Address:        in.Address,
		Phone:          in.Phone,
		Bank:           in.Bank,
		AccountNumber:  in.AccountNumber,
		NumberOfKids:   in.NumberOfKids,
		Status:         status,
	}, nil
}

// ChildInput carries one child row. CaregiverID may be empty inside an intake.
type ChildInput struct {
	ID             string `json:"childId"`
	CaregiverID    string `json:"caregiverId"`
	Name           string `json:"name"`
	Gender         string `json:"gender"`
	DateOfBirth    string `json:"dateOfBirth"`
	Age            *int   `json:"age"`
	Phone          string `json:"phone"`
	EducationLevel string `json:"educationLevel"`
	SchoolName     string `json:"schoolName"`
	ClassLevel     string `json:"classLevel"`
	Profession     string `json:"profession"`
}

func (in ChildInput) Entity() (entity.Child, error) {
	dob, err := parseDate(in.DateOfBirth)
	if err != nil {
		return entity.Child{}, err
	}
	if negative(in.Age) {
		return entity.Child{}, ErrInvalidAge
	}
	return entity.Child{
		ID:             strings.TrimSpace(in.ID),
		CaregiverID:    strings.TrimSpace(in.CaregiverID),
		Name:           in.Name,
		Gender:         in.Gender,
		DateOfBirth:    dob,
		Age:            in.Age,
		Phone:          in.Phone,
		EducationLevel: in.EducationLevel,
		SchoolName:     in.SchoolName,
		ClassLevel:     in.ClassLevel,
		Profession:     in.Profession,
	}, nil
}

func parseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(entity.DateLayout, s)
	if err != nil {
		return nil, ErrInvalidDate
	}
	return &t, nil
}

func negative(n *int) bool {
	return n != nil && *n < 0
}
