package report

import (
	"github.com/gofiber/fiber/v2"

	"github.com/isoilaj/caregiver-registry/internal/registry"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/v1/reports/summary", h.summary)
}

// FilterFromQuery reads caregiver filters from plain parameters and child
// filters from parameters prefixed with "child".
func FilterFromQuery(c *fiber.Ctx) Filter {
	return Filter{
		Caregivers: registry.CaregiverFilter{
			Search:         c.Query("q"),
			Gender:         c.Query("gender"),
			AgeGroup:       c.Query("ageGroup"),
			Profession:     c.Query("profession"),
			ZonalLeader:    c.Query("zonalLeader"),
			EducationLevel: c.Query("educationLevel"),
			Status:         c.Query("status"),
		},
		Children: registry.ChildFilter{
			Search:         c.Query("childQ"),
			Gender:         c.Query("childGender"),
			AgeGroup:       c.Query("childAgeGroup"),
			EducationLevel: c.Query("childEducationLevel"),
			ClassLevel:     c.Query("childClassLevel"),
			Profession:     c.Query("childProfession"),
		},
	}
}

func (h *Handler) summary(c *fiber.Ctx) error {
	sum, err := h.service.Summary(c.UserContext(), FilterFromQuery(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(sum)
}
