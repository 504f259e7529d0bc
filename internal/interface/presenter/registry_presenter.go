package presenter

import (
	"time"

	"github.com/isoilaj/caregiver-registry/internal/domain/entity"
	"github.com/isoilaj/caregiver-registry/internal/registry"
)

// RegistryPresenter shapes registry records for responses. Ages are derived
// from the clock at the time of the call.
type RegistryPresenter struct {
	now func() time.Time
}

func NewRegistryPresenter(now func() time.Time) *RegistryPresenter {
	if now == nil {
		now = time.Now
	}
	return &RegistryPresenter{now: now}
}

type CaregiverResponse struct {
	ID             string          `json:"caregiverId"`
	Name           string          `json:"name"`
	Gender         string          `json:"gender,omitempty"`
	DateOfBirth    string          `json:"dateOfBirth,omitempty"`
	Age            *int            `json:"age"`
	AgeGroup       string          `json:"ageGroup"`
	Profession     string          `json:"profession,omitempty"`
	EducationLevel string          `json:"educationLevel,omitempty"`
	ZonalLeader    string          `json:"zonalLeader,omitempty"`
	Address        string          `json:"address,omitempty"`
	Phone          string          `json:"phone,omitempty"`
	Bank           string          `json:"bank,omitempty"`
	AccountNumber  string          `json:"accountNumber,omitempty"`
	NumberOfKids   *int            `json:"numberOfKids,omitempty"`
	Status         string          `json:"verificationStatus"`
	RegisteredAt   string          `json:"registeredAt,omitempty"`
	UpdatedAt      string          `json:"lastUpdated,omitempty"`
	Children       []ChildResponse `json:"children,omitempty"`
}

type ChildResponse struct {
	ID             string `json:"childId"`
	CaregiverID    string `json:"caregiverId"`
	CaregiverName  string `json:"caregiverName"`
	Name           string `json:"name"`
	Gender         string `json:"gender,omitempty"`
	DateOfBirth    string `json:"dateOfBirth,omitempty"`
	Age            *int   `json:"age"`
	AgeGroup       string `json:"ageGroup"`
	Phone          string `json:"phone,omitempty"`
	EducationLevel string `json:"educationLevel,omitempty"`
	SchoolName     string `json:"schoolName,omitempty"`
	ClassLevel     string `json:"classLevel,omitempty"`
	Profession     string `json:"profession,omitempty"`
	RegisteredAt   string `json:"registeredAt,omitempty"`
	UpdatedAt      string `json:"lastUpdated,omitempty"`
}

func (p *RegistryPresenter) Caregiver(c entity.Caregiver) CaregiverResponse {
	age := c.AgeAt(p.now())
	return CaregiverResponse{
		ID:             c.ID,
		Name:           c.Name,
		Gender:         c.Gender,
		DateOfBirth:    formatDate(c.DateOfBirth),
		Age:            age,
		AgeGroup:       registry.CaregiverAgeGroup(age),
		Profession:     c.Profession,
		EducationLevel: c.EducationLevel,
		ZonalLeader:    c.ZonalLeader,
		Address:        c.Address,
		Phone:          c.Phone,
		Bank:           c.Bank,
		AccountNumber:  c.AccountNumber,
		NumberOfKids:   c.NumberOfKids,
		Status:         string(c.Status),
		RegisteredAt:   formatTimestamp(c.RegisteredAt),
		UpdatedAt:      formatTimestamp(c.UpdatedAt),
	}
}

// CaregiverWithChildren includes the linked children.
func (p *RegistryPresenter) CaregiverWithChildren(c entity.Caregiver, children []entity.Child) CaregiverResponse {
	resp := p.Caregiver(c)
	resp.Children = p.Children(children)
	return resp
}

func (p *RegistryPresenter) Caregivers(cs []entity.Caregiver) []CaregiverResponse {
	out := make([]CaregiverResponse, 0, len(cs))
	for _, c := range cs {
		out = append(out, p.Caregiver(c))
	}
	return out
}

func (p *RegistryPresenter) Child(ch entity.Child) ChildResponse {
	age := ch.AgeAt(p.now())
	return ChildResponse{
		ID:             ch.ID,
		CaregiverID:    ch.CaregiverID,
		CaregiverName:  ch.CaregiverName,
		Name:           ch.Name,
		Gender:         ch.Gender,
		DateOfBirth:    formatDate(ch.DateOfBirth),
		Age:            age,
		AgeGroup:       registry.ChildAgeGroup(age),
		Phone:          ch.Phone,
		EducationLevel: ch.EducationLevel,
		SchoolName:     ch.SchoolName,
		ClassLevel:     ch.ClassLevel,
		Profession:     ch.Profession,
		RegisteredAt:   formatTimestamp(ch.RegisteredAt),
		UpdatedAt:      formatTimestamp(ch.UpdatedAt),
	}
}

func (p *RegistryPresenter) Children(chs []entity.Child) []ChildResponse {
	out := make([]ChildResponse, 0, len(chs))
	for _, ch := range chs {
		out = append(out, p.Child(ch))
	}
	return out
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(entity.DateLayout)
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
