package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/clinsalud/clinica-api/internal/application/auth"
	"github.com/clinsalud/clinica-api/internal/application/billing"
	"github.com/clinsalud/clinica-api/internal/infrastructure/postgres"
	infrasunat "github.com/clinsalud/clinica-api/internal/infrastructure/sunat"
	"github.com/clinsalud/clinica-api/internal/infrastructure/sunat/signer"
	httpRouter "github.com/clinsalud/clinica-api/internal/interfaces/http"
	"github.com/clinsalud/clinica-api/pkg/config"
	"github.com/clinsalud/clinica-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("sunat_provider", cfg.SUNAT.Provider).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	companyRepo := postgres.NewCompanyRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	admissionRepo := postgres.NewAdmissionRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	auditRepo := postgres.NewAuditRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Cliente de envío según configuración explícita. "offline" deja los
	// comprobantes en PENDING_RETRY sin tocar la red (sandbox).
	var submitter infrasunat.Submitter
	switch cfg.SUNAT.Provider {
	case "sunat":
		submitter = infrasunat.NewSOAPClient(infrasunat.SOAPConfig{
			Environment: cfg.SUNAT.Environment,
			Endpoint:    cfg.SUNAT.Endpoint,
			RUC:         cfg.SUNAT.RUC,
			SolUser:     cfg.SUNAT.SolUser,
			SolPassword: cfg.SUNAT.SolPassword,
		})
	case "ose":
		submitter = infrasunat.NewRESTClient(infrasunat.RESTConfig{
			Endpoint: cfg.SUNAT.Endpoint,
			Token:    cfg.SUNAT.OSEToken,
		})
	default:
		submitter = infrasunat.NewOfflineClient()
	}

	lifecycle := billing.NewInvoiceLifecycle(
		txRunner, invoiceRepo, companyRepo, customerRepo, admissionRepo, auditRepo,
		infrasunat.NewUBLBuilder(),
		signer.NewDigitalSignatureService(),
		submitter,
		cfg.SUNAT.Provider,
		billing.CertConfig{
			CertPath:    cfg.SUNAT.CertPath,
			CertKeyPath: cfg.SUNAT.CertKeyPath,
			CertPass:    cfg.SUNAT.CertPass,
		},
		log,
	)

	issuerUC := billing.NewIssuerUseCase(companyRepo)
	customerUC := billing.NewCustomerUseCase(customerRepo)
	admissionUC := billing.NewAdmissionUseCase(admissionRepo, customerRepo)
	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		IssuerUC:    issuerUC,
		CustomerUC:  customerUC,
		AdmissionUC: admissionUC,
		Lifecycle:   lifecycle,
		JWTSecret:   cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
