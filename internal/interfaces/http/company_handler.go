package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/clinsalud/clinica-api/internal/application/billing"
	"github.com/clinsalud/clinica-api/internal/application/dto"
	"github.com/clinsalud/clinica-api/internal/domain"
	"github.com/clinsalud/clinica-api/internal/domain/entity"
)

// CompanyHandler maneja los datos del emisor (la clínica).
type CompanyHandler struct {
	uc *billing.IssuerUseCase
}

// NewCompanyHandler construye el handler.
func NewCompanyHandler(uc *billing.IssuerUseCase) *CompanyHandler {
	return &CompanyHandler{uc: uc}
}

// companyBody payload del emisor.
type companyBody struct {
	RUC       string `json:"ruc"`
	LegalName string `json:"legal_name"`
	TradeName string `json:"trade_name,omitempty"`
	Address   string `json:"address,omitempty"`
	Ubigeo    string `json:"ubigeo,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Email     string `json:"email,omitempty"`
}

// Get devuelve el emisor registrado.
// GET /api/company
func (h *CompanyHandler) Get(c *fiber.Ctx) error {
	issuer, err := h.uc.Get(c.Context())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "emisor no registrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(toCompanyBody(issuer))
}

// Save crea o actualiza los datos del emisor.
// PUT /api/company
func (h *CompanyHandler) Save(c *fiber.Ctx) error {
	var in companyBody
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	issuer, err := h.uc.Save(c.Context(), &entity.Company{
		RUC:       in.RUC,
		LegalName: in.LegalName,
		TradeName: in.TradeName,
		Address:   in.Address,
		Ubigeo:    in.Ubigeo,
		Phone:     in.Phone,
		Email:     in.Email,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(toCompanyBody(issuer))
}

func toCompanyBody(issuer *entity.Company) companyBody {
	return companyBody{
		RUC:       issuer.RUC,
		LegalName: issuer.LegalName,
		TradeName: issuer.TradeName,
		Address:   issuer.Address,
		Ubigeo:    issuer.Ubigeo,
		Phone:     issuer.Phone,
		Email:     issuer.Email,
	}
}
