package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/clinsalud/clinica-api/internal/application/auth"
	"github.com/clinsalud/clinica-api/internal/application/billing"
	"github.com/clinsalud/clinica-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	IssuerUC    *billing.IssuerUseCase
	CustomerUC  *billing.CustomerUseCase
	AdmissionUC *billing.AdmissionUseCase
	Lifecycle   *billing.InvoiceLifecycle
	JWTSecret   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Emisor (protegido; solo admin modifica)
	companyHandler := NewCompanyHandler(deps.IssuerUC)
	protected.Get("/company", companyHandler.Get)
	protected.Put("/company", RequireRole(entity.RoleAdmin), companyHandler.Save)

	// Customers (protegido)
	customers := protected.Group("/customers")
	customerHandler := NewCustomerHandler(deps.CustomerUC)
	customers.Post("/", customerHandler.Create)
	customers.Get("/", customerHandler.List)
	customers.Get("/:id", customerHandler.GetByID)

	// Admissions (protegido)
	admissions := protected.Group("/admissions")
	admissionHandler := NewAdmissionHandler(deps.AdmissionUC)
	admissions.Post("/", admissionHandler.Create)
	admissions.Get("/", admissionHandler.List)
	admissions.Get("/:id", admissionHandler.GetByID)

	// Invoices (protegido; emitir y enviar requiere rol de facturación)
	invoices := protected.Group("/invoices")
	invoiceHandler := NewInvoiceHandler(deps.Lifecycle)
	canBill := RequireRole(entity.RoleAdmin, entity.RoleFacturador)
	invoices.Post("/", canBill, invoiceHandler.Create)
	invoices.Post("/retry-pending", canBill, invoiceHandler.RetryPending)
	invoices.Post("/:id/submit", canBill, invoiceHandler.Submit)
	invoices.Get("/", invoiceHandler.ListBySeries)
	invoices.Get("/:id", invoiceHandler.GetByID)
	invoices.Get("/:id/history", invoiceHandler.History)
}
