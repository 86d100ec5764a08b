package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/clinsalud/clinica-api/internal/application/billing"
	"github.com/clinsalud/clinica-api/internal/application/dto"
	"github.com/clinsalud/clinica-api/internal/domain"
)

// AdmissionHandler maneja las órdenes de atención.
type AdmissionHandler struct {
	uc *billing.AdmissionUseCase
}

// NewAdmissionHandler construye el handler.
func NewAdmissionHandler(uc *billing.AdmissionUseCase) *AdmissionHandler {
	return &AdmissionHandler{uc: uc}
}

// Create registra una admisión en estado OPEN.
// POST /api/admissions
func (h *AdmissionHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateAdmissionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	admission, err := h.uc.Create(c.Context(), in)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
		}
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(admission)
}

// GetByID obtiene una admisión.
// GET /api/admissions/:id
func (h *AdmissionHandler) GetByID(c *fiber.Ctx) error {
	admission, err := h.uc.Get(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "admisión no encontrada"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(admission)
}

// List lista admisiones, filtrables por estado.
// GET /api/admissions?status=OPEN
func (h *AdmissionHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	list, err := h.uc.List(c.Context(), c.Query("status"), page)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(list)
}
