package export

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/isoilaj/caregiver-registry/internal/auth"
	"github.com/isoilaj/caregiver-registry/internal/caregiver"
	"github.com/isoilaj/caregiver-registry/internal/child"
	"github.com/isoilaj/caregiver-registry/internal/infrastructure/workbook"
	"github.com/isoilaj/caregiver-registry/internal/registry"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/v1/export/:table", h.export)
	app.Post("/api/v1/import", h.importFile)
}

func (h *Handler) export(c *fiber.Ctx) error {
	table := c.Params("table")
	var f Filter
	switch table {
	case registry.TableCaregivers:
		f.Caregivers = caregiver.FilterFromQuery(c)
	case registry.TableChildren:
		f.Children = child.FilterFromQuery(c)
	}

	file, err := h.service.Export(c.UserContext(), table, c.Query("format", FormatCSV), f)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, file.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, file.Name))
	return c.Send(file.Body)
}

func (h *Handler) importFile(c *fiber.Ctx) error {
	operator, err := auth.OperatorFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "file is required"})
	}
	src, err := fh.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	defer src.Close()

	res, err := h.service.Import(c.UserContext(), operator, fh.Filename, src, c.FormValue("sheet"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}

func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrUnknownTable):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, ErrUnknownFormat), errors.Is(err, ErrUnknownLayout),
		errors.Is(err, ErrEmptyFile), errors.Is(err, workbook.ErrUnsupportedFile):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
}
