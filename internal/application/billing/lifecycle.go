package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/clinsalud/clinica-api/internal/application/dto"
	"github.com/clinsalud/clinica-api/internal/domain"
	"github.com/clinsalud/clinica-api/internal/domain/entity"
	"github.com/clinsalud/clinica-api/internal/domain/repository"
	infrasunat "github.com/clinsalud/clinica-api/internal/infrastructure/sunat"
	"github.com/clinsalud/clinica-api/internal/infrastructure/sunat/signer"
	"github.com/clinsalud/clinica-api/pkg/logger"
	pkgsunat "github.com/clinsalud/clinica-api/pkg/sunat"
)

// InvoiceLifecycle orquesta el ciclo completo del comprobante electrónico:
//
//	Create  → correlativo + DRAFT (transaccional)
//	Submit  → XML UBL 2.1 → firma → envío → ACCEPTED | REJECTED | PENDING_RETRY
//
// Reglas que este orquestador garantiza:
//   - ACCEPTED y REJECTED son terminales: un segundo Submit devuelve el estado
//     actual sin tocar al proveedor.
//   - El XML se construye y firma una sola vez; los reintentos reenvían
//     exactamente los mismos bytes.
//   - No hay bucle interno de reintentos: un fallo transitorio deja el
//     comprobante en PENDING_RETRY y la decisión de reintentar es del caller
//     (o del proceso programado que consume ListPending).
type InvoiceLifecycle struct {
	txRunner      TxRunner
	invoiceRepo   repository.InvoiceRepository
	companyRepo   repository.CompanyRepository
	customerRepo  repository.CustomerRepository
	admissionRepo repository.AdmissionRepository
	auditRepo     repository.AuditRepository
	builder       *infrasunat.UBLBuilder
	signerSvc     pkgsunat.Signer
	submitter     infrasunat.Submitter
	provider      string // "sunat" | "ose" | "offline"
	certCfg       CertConfig
	log           *logger.Logger
}

// NewInvoiceLifecycle construye el orquestador con todas sus dependencias.
func NewInvoiceLifecycle(
	txRunner TxRunner,
	invoiceRepo repository.InvoiceRepository,
	companyRepo repository.CompanyRepository,
	customerRepo repository.CustomerRepository,
	admissionRepo repository.AdmissionRepository,
	auditRepo repository.AuditRepository,
	builder *infrasunat.UBLBuilder,
	signerSvc pkgsunat.Signer,
	submitter infrasunat.Submitter,
	provider string,
	certCfg CertConfig,
	log *logger.Logger,
) *InvoiceLifecycle {
	return &InvoiceLifecycle{
		txRunner:      txRunner,
		invoiceRepo:   invoiceRepo,
		companyRepo:   companyRepo,
		customerRepo:  customerRepo,
		admissionRepo: admissionRepo,
		auditRepo:     auditRepo,
		builder:       builder,
		signerSvc:     signerSvc,
		submitter:     submitter,
		provider:      provider,
		certCfg:       certCfg,
		log:           log,
	}
}

// Create valida la solicitud, asigna el siguiente correlativo de la serie y
// persiste el comprobante en DRAFT. Correlativo e INSERT comparten transacción:
// si algo falla después de reservar el número, el contador se revierte.
func (uc *InvoiceLifecycle) Create(ctx context.Context, in dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if !pkgsunat.ValidDocumentTypes[in.DocumentType] {
		return nil, fmt.Errorf("tipo de comprobante %q no soportado: %w", in.DocumentType, domain.ErrInvalidInput)
	}
	if !pkgsunat.ValidSeries(in.DocumentType, in.Series) {
		return nil, fmt.Errorf("serie %q inválida para tipo %s: %w", in.Series, in.DocumentType, domain.ErrInvalidInput)
	}

	// Adquirente: la factura exige empresa con RUC válido; la boleta admite
	// DNI o cliente varios (sin adquirente).
	var customer *entity.Customer
	if in.CustomerID != "" {
		var err error
		customer, err = uc.customerRepo.GetByID(ctx, in.CustomerID)
		if err != nil {
			return nil, err
		}
		if customer == nil {
			return nil, fmt.Errorf("cliente %s: %w", in.CustomerID, domain.ErrNotFound)
		}
	}
	if in.DocumentType == pkgsunat.DocTypeFactura {
		if customer == nil {
			return nil, fmt.Errorf("la factura requiere adquirente con RUC: %w", domain.ErrInvalidInput)
		}
		if customer.IdentityType != pkgsunat.IdentityTypeRUC {
			return nil, fmt.Errorf("adquirente de factura sin RUC: %w", domain.ErrInvalidInput)
		}
		if err := pkgsunat.ValidateRUC(customer.IdentityNum); err != nil {
			return nil, fmt.Errorf("adquirente de factura: %v: %w", err, domain.ErrInvalidInput)
		}
	}

	// Orden de atención: si se referencia, debe existir y estar abierta.
	// El monto y la descripción de la línea salen de la admisión cuando la
	// solicitud no los trae.
	var admission *entity.Admission
	subtotal := in.Subtotal
	if in.AdmissionID != "" {
		var err error
		admission, err = uc.admissionRepo.GetByID(ctx, in.AdmissionID)
		if err != nil {
			return nil, err
		}
		if admission == nil {
			return nil, fmt.Errorf("admisión %s: %w", in.AdmissionID, domain.ErrNotFound)
		}
		if admission.Status != entity.AdmissionOpen {
			return nil, fmt.Errorf("admisión %s en estado %s, no facturable: %w",
				in.AdmissionID, admission.Status, domain.ErrInvalidInput)
		}
		if subtotal.IsZero() {
			subtotal = admission.Amount
		}
	}
	if !subtotal.IsPositive() {
		// Un comprobante sin monto positivo no es emitible: mismo error que
		// usa el builder ante totales inválidos.
		return nil, fmt.Errorf("subtotal %s no positivo: %w", subtotal, domain.ErrInvalidInvoiceState)
	}

	tax := pkgsunat.IGV(subtotal)
	now := time.Now()
	inv := &entity.Invoice{
		DocumentType:  in.DocumentType,
		Series:        in.Series,
		CustomerID:    in.CustomerID,
		AdmissionID:   in.AdmissionID,
		Subtotal:      subtotal,
		Tax:           tax,
		Total:         subtotal.Add(tax),
		PaymentMethod: in.PaymentMethod,
		Status:        entity.StatusDraft,
		IssuedAt:      now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err := uc.txRunner.RunBilling(ctx, func(
		seq repository.SequenceAllocator,
		invoiceRepo repository.InvoiceRepository,
		admissionRepo repository.AdmissionRepository,
	) error {
		n, err := seq.AllocateNext(ctx, inv.DocumentType, inv.Series)
		if err != nil {
			return err
		}
		inv.Correlative = n
		if err := invoiceRepo.Create(ctx, inv); err != nil {
			return err
		}
		if admission != nil {
			admission.Status = entity.AdmissionBilled
			admission.UpdatedAt = now
			return admissionRepo.Update(ctx, admission)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.audit(ctx, entity.AuditInvoiceCreated, inv, "")
	uc.log.Info().Str("invoice_id", inv.ID).Str("number", inv.FullNumber()).Msg("comprobante creado")
	return toInvoiceResponse(inv), nil
}

// Submit construye (si hace falta), firma y envía el comprobante al proveedor,
// y persiste la transición resultante. Sobre un comprobante ya ACCEPTED o
// REJECTED es un no-op que devuelve el estado actual.
func (uc *InvoiceLifecycle) Submit(ctx context.Context, invoiceID string) (*dto.InvoiceResponse, error) {
	inv, err := uc.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, fmt.Errorf("comprobante %s: %w", invoiceID, domain.ErrNotFound)
	}
	if entity.IsTerminal(inv.Status) {
		return toInvoiceResponse(inv), nil
	}

	issuer, err := uc.companyRepo.GetIssuer(ctx)
	if err != nil {
		return nil, err
	}
	if issuer == nil {
		return nil, fmt.Errorf("emisor no registrado: %w", domain.ErrInvalidInvoiceState)
	}

	// El XML se construye y firma una sola vez. Los reintentos parten del
	// mismo blob: SUNAT puede rechazar un reenvío cuyos bytes cambiaron.
	if inv.FiscalXML == "" {
		if err := uc.buildAndSign(ctx, inv, issuer); err != nil {
			return nil, err
		}
	}

	inv.Status = entity.StatusSubmitted
	inv.UpdatedAt = time.Now()
	if err := uc.invoiceRepo.Update(ctx, inv); err != nil {
		return nil, err
	}
	uc.audit(ctx, entity.AuditInvoiceSubmitted, inv, "")

	result, err := uc.submitter.Submit(ctx, &infrasunat.Document{
		RUC:          issuer.RUC,
		DocumentType: inv.DocumentType,
		Series:       inv.Series,
		Correlative:  inv.Correlative,
		SignedXML:    []byte(inv.FiscalXML),
	})
	if err != nil {
		// Error de configuración o de programación, no un fallo del servicio:
		// el comprobante queda reintentable y el error sube al caller.
		uc.markRetry(ctx, inv, err.Error())
		return toInvoiceResponse(inv), err
	}

	switch result.Status {
	case infrasunat.SubmitAccepted:
		inv.Status = entity.StatusAccepted
		inv.Receipt = result.Receipt
		inv.AuthorityMsg = result.Message
		inv.UpdatedAt = time.Now()
		if err := uc.invoiceRepo.Update(ctx, inv); err != nil {
			return nil, err
		}
		uc.audit(ctx, entity.AuditInvoiceAccepted, inv, result.Message)
		uc.log.Info().Str("invoice_id", inv.ID).Str("number", inv.FullNumber()).Msg("comprobante aceptado")
		return toInvoiceResponse(inv), nil

	case infrasunat.SubmitRejected:
		inv.Status = entity.StatusRejected
		inv.Receipt = result.Receipt
		inv.AuthorityMsg = result.Message
		inv.UpdatedAt = time.Now()
		if err := uc.invoiceRepo.Update(ctx, inv); err != nil {
			return nil, err
		}
		uc.audit(ctx, entity.AuditInvoiceRejected, inv, result.Message)
		uc.log.Warn().Str("invoice_id", inv.ID).Str("code", result.Code).
			Str("msg", result.Message).Msg("comprobante rechazado")
		return toInvoiceResponse(inv), nil

	case infrasunat.SubmitPending:
		// Sin proveedor configurado (sandbox) o respuesta diferida: el
		// comprobante queda reintentable y la operación NO es un error.
		uc.markRetry(ctx, inv, result.Message)
		return toInvoiceResponse(inv), nil

	default: // SubmitError: fallo transitorio de red o del servicio
		uc.markRetry(ctx, inv, result.Message)
		return toInvoiceResponse(inv), &domain.SubmissionError{
			Provider: uc.provider,
			Op:       "submit",
			Err:      errors.New(result.Message),
		}
	}
}

// Get obtiene un comprobante por ID.
func (uc *InvoiceLifecycle) Get(ctx context.Context, invoiceID string) (*dto.InvoiceResponse, error) {
	inv, err := uc.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, fmt.Errorf("comprobante %s: %w", invoiceID, domain.ErrNotFound)
	}
	return toInvoiceResponse(inv), nil
}

// ListBySeries lista comprobantes de una serie en orden de correlativo.
func (uc *InvoiceLifecycle) ListBySeries(ctx context.Context, documentType, series string, page dto.PageRequest) ([]*dto.InvoiceResponse, error) {
	page.DefaultPage()
	list, err := uc.invoiceRepo.ListBySeries(ctx, documentType, series, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.InvoiceResponse, 0, len(list))
	for _, inv := range list {
		out = append(out, toInvoiceResponse(inv))
	}
	return out, nil
}

// History devuelve los eventos de auditoría de un comprobante en orden cronológico.
func (uc *InvoiceLifecycle) History(ctx context.Context, invoiceID string) ([]dto.AuditEventResponse, error) {
	events, err := uc.auditRepo.ListByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.AuditEventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, dto.AuditEventResponse{
			EventType:  e.EventType,
			Detail:     e.Detail,
			OccurredAt: e.OccurredAt.Format(time.RFC3339),
		})
	}
	return out, nil
}

// RetryPending reenvía los comprobantes en PENDING_RETRY (disparado por un
// proceso programado externo o por el endpoint de operación). Devuelve cuántos
// quedaron en estado terminal tras el reintento.
func (uc *InvoiceLifecycle) RetryPending(ctx context.Context, limit int) (int, error) {
	if limit <= 0 {
		limit = 50
	}
	pending, err := uc.invoiceRepo.ListPendingRetry(ctx, limit)
	if err != nil {
		return 0, err
	}
	resolved := 0
	for _, inv := range pending {
		resp, err := uc.Submit(ctx, inv.ID)
		if err != nil {
			uc.log.Warn().Str("invoice_id", inv.ID).Err(err).Msg("reintento de envío falló")
			continue
		}
		if entity.IsTerminal(resp.Status) {
			resolved++
		}
	}
	return resolved, nil
}

// ── internos ─────────────────────────────────────────────────────────────────

// buildAndSign genera el XML UBL y lo firma si hay certificado configurado.
// Un error del builder (datos inválidos) deja el estado intacto: no es
// recuperable con reintentos. Un fallo cargando el certificado es un problema
// de configuración: el comprobante queda en PENDING_RETRY.
func (uc *InvoiceLifecycle) buildAndSign(ctx context.Context, inv *entity.Invoice, issuer *entity.Company) error {
	var customer *entity.Customer
	if inv.CustomerID != "" {
		customer, _ = uc.customerRepo.GetByID(ctx, inv.CustomerID)
	}
	description := ""
	if inv.AdmissionID != "" {
		if adm, _ := uc.admissionRepo.GetByID(ctx, inv.AdmissionID); adm != nil {
			description = adm.Description
			if description == "" {
				description = "Examen médico ocupacional " + adm.ExamType
			}
		}
	}

	xmlBytes, err := uc.builder.Build(&infrasunat.InvoiceBuildContext{
		Invoice:            inv,
		Issuer:             issuer,
		Customer:           customer,
		ServiceDescription: description,
	})
	if err != nil {
		return err
	}

	if uc.certCfg.CertPath != "" {
		cert, err := signer.LoadCertificate(uc.certCfg.CertPath, uc.certCfg.CertKeyPath, uc.certCfg.CertPass)
		if err != nil {
			uc.markRetry(ctx, inv, "certificado de firma: "+err.Error())
			return fmt.Errorf("cargar certificado: %v: %w", err, domain.ErrMisconfiguredProvider)
		}
		xmlBytes, err = uc.signerSvc.Sign(xmlBytes, cert)
		if err != nil {
			uc.markRetry(ctx, inv, "firma digital: "+err.Error())
			return fmt.Errorf("firmar XML: %v: %w", err, domain.ErrMisconfiguredProvider)
		}
	}

	inv.FiscalXML = string(xmlBytes)
	return nil
}

// markRetry transiciona a PENDING_RETRY, persiste y deja el evento en el
// historial: toda transición a reintento queda auditada, venga de un fallo
// transitorio, de un resultado Pending o de un problema de configuración.
// Un fallo persistiendo solo se registra: el estado en memoria ya refleja la
// transición.
func (uc *InvoiceLifecycle) markRetry(ctx context.Context, inv *entity.Invoice, msg string) {
	inv.Status = entity.StatusPendingRetry
	inv.AuthorityMsg = msg
	inv.UpdatedAt = time.Now()
	if err := uc.invoiceRepo.Update(ctx, inv); err != nil {
		uc.log.Error().Str("invoice_id", inv.ID).Err(err).Msg("no se pudo persistir PENDING_RETRY")
	}
	uc.audit(ctx, entity.AuditInvoiceSubmissionFailed, inv, msg)
}

// audit registra un evento del historial. Nunca hace fallar la operación que
// lo origina: un fallo de auditoría solo se loguea.
func (uc *InvoiceLifecycle) audit(ctx context.Context, eventType string, inv *entity.Invoice, detail string) {
	event := &entity.AuditEvent{
		EventType:    eventType,
		InvoiceID:    inv.ID,
		DocumentType: inv.DocumentType,
		Series:       inv.Series,
		Correlative:  inv.Correlative,
		Detail:       detail,
		OccurredAt:   time.Now(),
	}
	if err := uc.auditRepo.Append(ctx, event); err != nil {
		uc.log.Warn().Str("invoice_id", inv.ID).Str("event", eventType).Err(err).
			Msg("no se pudo registrar evento de auditoría")
	}
}

func toInvoiceResponse(inv *entity.Invoice) *dto.InvoiceResponse {
	return &dto.InvoiceResponse{
		ID:            inv.ID,
		DocumentType:  inv.DocumentType,
		Series:        inv.Series,
		Correlative:   inv.Correlative,
		FullNumber:    inv.FullNumber(),
		CustomerID:    inv.CustomerID,
		AdmissionID:   inv.AdmissionID,
		Subtotal:      inv.Subtotal,
		Tax:           inv.Tax,
		Total:         inv.Total,
		PaymentMethod: inv.PaymentMethod,
		Status:        inv.Status,
		IssuedAt:      inv.IssuedAt.Format(time.RFC3339),
		AuthorityMsg:  inv.AuthorityMsg,
		HasReceipt:    len(inv.Receipt) > 0,
	}
}
