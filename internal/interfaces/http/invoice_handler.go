package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/clinsalud/clinica-api/internal/application/billing"
	"github.com/clinsalud/clinica-api/internal/application/dto"
	"github.com/clinsalud/clinica-api/internal/domain"
)

// InvoiceHandler maneja el ciclo de vida del comprobante electrónico (protegido).
type InvoiceHandler struct {
	uc *billing.InvoiceLifecycle
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(uc *billing.InvoiceLifecycle) *InvoiceHandler {
	return &InvoiceHandler{uc: uc}
}

// Create emite un comprobante en DRAFT con su correlativo asignado.
// POST /api/invoices
func (h *InvoiceHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	invoice, err := h.uc.Create(c.Context(), in)
	if err != nil {
		return invoiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(invoice)
}

// Submit envía el comprobante a SUNAT/OSE y devuelve el estado resultante.
// Sobre un comprobante ya aceptado o rechazado devuelve el estado actual sin reenvío.
// POST /api/invoices/:id/submit
func (h *InvoiceHandler) Submit(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	invoice, err := h.uc.Submit(c.Context(), id)
	if err != nil {
		// Fallo transitorio: el comprobante quedó reintentable, se informa 502
		// con el estado alcanzado para que el cliente decida.
		if domain.IsSubmissionError(err) {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error":   dto.ErrorResponse{Code: "SUBMISSION_FAILED", Message: err.Error()},
				"invoice": invoice,
			})
		}
		if errors.Is(err, domain.ErrMisconfiguredProvider) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "PROVIDER_MISCONFIGURED", Message: err.Error()})
		}
		return invoiceError(c, err)
	}
	return c.JSON(invoice)
}

// GetByID obtiene un comprobante.
// GET /api/invoices/:id
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	invoice, err := h.uc.Get(c.Context(), id)
	if err != nil {
		return invoiceError(c, err)
	}
	return c.JSON(invoice)
}

// History devuelve el historial de auditoría del comprobante.
// GET /api/invoices/:id/history
func (h *InvoiceHandler) History(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	events, err := h.uc.History(c.Context(), id)
	if err != nil {
		return invoiceError(c, err)
	}
	return c.JSON(events)
}

// ListBySeries lista comprobantes de una serie.
// GET /api/invoices?document_type=03&series=B001
func (h *InvoiceHandler) ListBySeries(c *fiber.Ctx) error {
	documentType := c.Query("document_type")
	series := c.Query("series")
	if documentType == "" || series == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "document_type y series son requeridos"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	list, err := h.uc.ListBySeries(c.Context(), documentType, series, page)
	if err != nil {
		return invoiceError(c, err)
	}
	return c.JSON(list)
}

// RetryPending reintenta el envío de los comprobantes en PENDING_RETRY.
// POST /api/invoices/retry-pending
func (h *InvoiceHandler) RetryPending(c *fiber.Ctx) error {
	resolved, err := h.uc.RetryPending(c.Context(), c.QueryInt("limit", 50))
	if err != nil {
		return invoiceError(c, err)
	}
	return c.JSON(fiber.Map{"resolved": resolved})
}

func invoiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidInvoiceState):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrAllocationConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ALLOCATION_CONFLICT", Message: "conflicto asignando correlativo, reintente"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
