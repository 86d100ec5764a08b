package billing_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinsalud/clinica-api/internal/application/billing"
	"github.com/clinsalud/clinica-api/internal/application/dto"
	"github.com/clinsalud/clinica-api/internal/domain"
	"github.com/clinsalud/clinica-api/internal/domain/entity"
	"github.com/clinsalud/clinica-api/internal/domain/repository"
	infrasunat "github.com/clinsalud/clinica-api/internal/infrastructure/sunat"
	"github.com/clinsalud/clinica-api/pkg/logger"
	pkgsunat "github.com/clinsalud/clinica-api/pkg/sunat"
)

// ── fakes en memoria ─────────────────────────────────────────────────────────

// memSequence allocator en memoria con la misma semántica atómica del real.
type memSequence struct {
	mu       sync.Mutex
	counters map[string]int64
}

func newMemSequence() *memSequence {
	return &memSequence{counters: make(map[string]int64)}
}

func (m *memSequence) AllocateNext(_ context.Context, documentType, series string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := documentType + "|" + series
	m.counters[key]++
	return m.counters[key], nil
}

type memInvoiceRepo struct {
	mu       sync.Mutex
	invoices map[string]*entity.Invoice
}

func newMemInvoiceRepo() *memInvoiceRepo {
	return &memInvoiceRepo{invoices: make(map[string]*entity.Invoice)}
}

func (m *memInvoiceRepo) Create(_ context.Context, inv *entity.Invoice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	for _, existing := range m.invoices {
		if existing.DocumentType == inv.DocumentType && existing.Series == inv.Series &&
			existing.Correlative == inv.Correlative {
			return domain.ErrAllocationConflict
		}
	}
	cp := *inv
	m.invoices[inv.ID] = &cp
	return nil
}

func (m *memInvoiceRepo) Update(_ context.Context, inv *entity.Invoice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.invoices[inv.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *inv
	m.invoices[inv.ID] = &cp
	return nil
}

func (m *memInvoiceRepo) GetByID(_ context.Context, id string) (*entity.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invoices[id]
	if !ok {
		return nil, nil
	}
	cp := *inv
	return &cp, nil
}

func (m *memInvoiceRepo) ListBySeries(_ context.Context, documentType, series string, limit, offset int) ([]*entity.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []*entity.Invoice
	for _, inv := range m.invoices {
		if inv.DocumentType == documentType && inv.Series == series {
			cp := *inv
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Correlative < list[j].Correlative })
	return list, nil
}

func (m *memInvoiceRepo) ListPendingRetry(_ context.Context, limit int) ([]*entity.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []*entity.Invoice
	for _, inv := range m.invoices {
		if inv.Status == entity.StatusPendingRetry {
			cp := *inv
			list = append(list, &cp)
		}
	}
	return list, nil
}

type memCompanyRepo struct {
	issuer *entity.Company
}

func (m *memCompanyRepo) GetIssuer(_ context.Context) (*entity.Company, error) {
	return m.issuer, nil
}

func (m *memCompanyRepo) Upsert(_ context.Context, c *entity.Company) error {
	m.issuer = c
	return nil
}

type memCustomerRepo struct {
	mu        sync.Mutex
	customers map[string]*entity.Customer
}

func newMemCustomerRepo() *memCustomerRepo {
	return &memCustomerRepo{customers: make(map[string]*entity.Customer)}
}

func (m *memCustomerRepo) Create(_ context.Context, c *entity.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	m.customers[c.ID] = c
	return nil
}

func (m *memCustomerRepo) GetByID(_ context.Context, id string) (*entity.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.customers[id], nil
}

func (m *memCustomerRepo) GetByIdentity(_ context.Context, identityType, identityNum string) (*entity.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.customers {
		if c.IdentityType == identityType && c.IdentityNum == identityNum {
			return c, nil
		}
	}
	return nil, nil
}

func (m *memCustomerRepo) List(_ context.Context, limit, offset int) ([]*entity.Customer, error) {
	return nil, nil
}

func (m *memCustomerRepo) Update(_ context.Context, c *entity.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.customers[c.ID] = c
	return nil
}

type memAdmissionRepo struct {
	mu         sync.Mutex
	admissions map[string]*entity.Admission
}

func newMemAdmissionRepo() *memAdmissionRepo {
	return &memAdmissionRepo{admissions: make(map[string]*entity.Admission)}
}

func (m *memAdmissionRepo) Create(_ context.Context, a *entity.Admission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	m.admissions[a.ID] = a
	return nil
}

func (m *memAdmissionRepo) GetByID(_ context.Context, id string) (*entity.Admission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.admissions[id], nil
}

func (m *memAdmissionRepo) List(_ context.Context, status string, limit, offset int) ([]*entity.Admission, error) {
	return nil, nil
}

func (m *memAdmissionRepo) Update(_ context.Context, a *entity.Admission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.admissions[a.ID] = a
	return nil
}

type memAuditRepo struct {
	mu     sync.Mutex
	events []*entity.AuditEvent
}

func (m *memAuditRepo) Append(_ context.Context, e *entity.AuditEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	return nil
}

func (m *memAuditRepo) ListByInvoice(_ context.Context, invoiceID string) ([]*entity.AuditEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []*entity.AuditEvent
	for _, e := range m.events {
		if e.InvoiceID == invoiceID {
			list = append(list, e)
		}
	}
	return list, nil
}

func (m *memAuditRepo) eventTypes(invoiceID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var types []string
	for _, e := range m.events {
		if e.InvoiceID == invoiceID {
			types = append(types, e.EventType)
		}
	}
	return types
}

// memTxRunner ejecuta el callback directamente sobre los repos en memoria.
type memTxRunner struct {
	seq        repository.SequenceAllocator
	invoices   repository.InvoiceRepository
	admissions repository.AdmissionRepository
}

func (r *memTxRunner) RunBilling(ctx context.Context, fn func(
	seq repository.SequenceAllocator,
	invoiceRepo repository.InvoiceRepository,
	admissionRepo repository.AdmissionRepository,
) error) error {
	return fn(r.seq, r.invoices, r.admissions)
}

// fakeSubmitter cuenta llamadas y devuelve resultados en secuencia.
type fakeSubmitter struct {
	mu      sync.Mutex
	calls   int
	results []*infrasunat.SubmitResult
	// captura los bytes enviados en cada llamada para verificar reenvíos idénticos
	sentXML [][]byte
}

func (f *fakeSubmitter) Submit(_ context.Context, doc *infrasunat.Document) (*infrasunat.SubmitResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sentXML = append(f.sentXML, doc.SignedXML)
	idx := f.calls
	f.calls++
	if idx >= len(f.results) {
		idx = len(f.results) - 1
	}
	return f.results[idx], nil
}

func (f *fakeSubmitter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// ── arnés ────────────────────────────────────────────────────────────────────

type fixture struct {
	lifecycle  *billing.InvoiceLifecycle
	invoices   *memInvoiceRepo
	admissions *memAdmissionRepo
	customers  *memCustomerRepo
	audit      *memAuditRepo
	submitter  *fakeSubmitter
}

func newFixture(t *testing.T, results ...*infrasunat.SubmitResult) *fixture {
	t.Helper()
	if len(results) == 0 {
		results = []*infrasunat.SubmitResult{{Status: infrasunat.SubmitAccepted, Code: "0", Message: "aceptado", Receipt: []byte("cdr")}}
	}
	invoices := newMemInvoiceRepo()
	admissions := newMemAdmissionRepo()
	customers := newMemCustomerRepo()
	audit := &memAuditRepo{}
	submitter := &fakeSubmitter{results: results}
	company := &memCompanyRepo{issuer: &entity.Company{
		ID:        uuid.New().String(),
		RUC:       "20131312955",
		LegalName: "CLINICA SALUD OCUPACIONAL S.A.C.",
	}}
	log := logger.New(logger.Config{Env: "development", Level: "error"})

	lc := billing.NewInvoiceLifecycle(
		&memTxRunner{seq: newMemSequence(), invoices: invoices, admissions: admissions},
		invoices, company, customers, admissions, audit,
		infrasunat.NewUBLBuilder(), nil, submitter,
		"sunat", billing.CertConfig{}, log,
	)
	return &fixture{
		lifecycle:  lc,
		invoices:   invoices,
		admissions: admissions,
		customers:  customers,
		audit:      audit,
		submitter:  submitter,
	}
}

func boletaRequest(subtotal string) dto.CreateInvoiceRequest {
	return dto.CreateInvoiceRequest{
		DocumentType:  pkgsunat.DocTypeBoleta,
		Series:        "B001",
		Subtotal:      decimal.RequireFromString(subtotal),
		PaymentMethod: "efectivo",
		Description:   "Examen médico ocupacional",
	}
}

// ── Create ───────────────────────────────────────────────────────────────────

func TestCreate_CalculaIGVYAsignaCorrelativo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.lifecycle.Create(ctx, boletaRequest("100.00"))
	require.NoError(t, err)

	assert.Equal(t, int64(1), resp.Correlative)
	assert.Equal(t, "B001-1", resp.FullNumber)
	assert.Equal(t, entity.StatusDraft, resp.Status)
	assert.True(t, resp.Tax.Equal(decimal.RequireFromString("18.00")), "IGV de 100.00 debe ser 18.00, fue %s", resp.Tax)
	assert.True(t, resp.Total.Equal(decimal.RequireFromString("118.00")), "total debe ser 118.00, fue %s", resp.Total)

	resp2, err := f.lifecycle.Create(ctx, boletaRequest("50.00"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp2.Correlative)

	assert.Equal(t, []string{entity.AuditInvoiceCreated}, f.audit.eventTypes(resp.ID))
}

func TestCreate_ValidaTipoSerieYMonto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.lifecycle.Create(ctx, dto.CreateInvoiceRequest{
		DocumentType: "07", Series: "F001", Subtotal: decimal.New(100, 0),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "tipo de comprobante no soportado")

	_, err = f.lifecycle.Create(ctx, dto.CreateInvoiceRequest{
		DocumentType: pkgsunat.DocTypeBoleta, Series: "F001", Subtotal: decimal.New(100, 0),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "serie F no corresponde a boleta")

	// Montos no positivos: el comprobante no es emitible, mismo error que
	// reporta el builder ante totales inválidos.
	_, err = f.lifecycle.Create(ctx, boletaRequest("0.00"))
	assert.ErrorIs(t, err, domain.ErrInvalidInvoiceState, "subtotal cero")

	req := boletaRequest("10.00")
	req.Subtotal = decimal.RequireFromString("-5.00")
	_, err = f.lifecycle.Create(ctx, req)
	assert.ErrorIs(t, err, domain.ErrInvalidInvoiceState, "subtotal negativo")
}

func TestCreate_FacturaExigeRUCValido(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Sin adquirente
	_, err := f.lifecycle.Create(ctx, dto.CreateInvoiceRequest{
		DocumentType: pkgsunat.DocTypeFactura, Series: "F001",
		Subtotal: decimal.New(100, 0),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// Adquirente con DNI (no RUC)
	conDNI := &entity.Customer{Name: "Juan Pérez", IdentityType: pkgsunat.IdentityTypeDNI, IdentityNum: "45678912"}
	require.NoError(t, f.customers.Create(ctx, conDNI))
	_, err = f.lifecycle.Create(ctx, dto.CreateInvoiceRequest{
		DocumentType: pkgsunat.DocTypeFactura, Series: "F001",
		CustomerID: conDNI.ID, Subtotal: decimal.New(100, 0),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// Adquirente con RUC de dígito verificador incorrecto
	rucMalo := &entity.Customer{Name: "EMPRESA FANTASMA", IdentityType: pkgsunat.IdentityTypeRUC, IdentityNum: "20100070971"}
	require.NoError(t, f.customers.Create(ctx, rucMalo))
	_, err = f.lifecycle.Create(ctx, dto.CreateInvoiceRequest{
		DocumentType: pkgsunat.DocTypeFactura, Series: "F001",
		CustomerID: rucMalo.ID, Subtotal: decimal.New(100, 0),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// Adquirente con RUC válido
	empresa := &entity.Customer{Name: "MINERA ANDINA S.A.", IdentityType: pkgsunat.IdentityTypeRUC, IdentityNum: "20100070970"}
	require.NoError(t, f.customers.Create(ctx, empresa))
	resp, err := f.lifecycle.Create(ctx, dto.CreateInvoiceRequest{
		DocumentType: pkgsunat.DocTypeFactura, Series: "F001",
		CustomerID: empresa.ID, Subtotal: decimal.New(100, 0),
	})
	require.NoError(t, err)
	assert.Equal(t, "F001-1", resp.FullNumber)
}

func TestCreate_DesdeAdmision(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	adm := &entity.Admission{
		PatientName: "Carlos Quispe",
		PatientDNI:  "45678912",
		ExamType:    "preocupacional",
		Description: "Examen médico preocupacional completo",
		Amount:      decimal.RequireFromString("250.00"),
		Status:      entity.AdmissionOpen,
		AdmittedAt:  time.Now(),
	}
	require.NoError(t, f.admissions.Create(ctx, adm))

	req := dto.CreateInvoiceRequest{
		DocumentType: pkgsunat.DocTypeBoleta,
		Series:       "B001",
		AdmissionID:  adm.ID,
	}
	resp, err := f.lifecycle.Create(ctx, req)
	require.NoError(t, err)

	// El monto sale de la admisión y esta queda facturada
	assert.True(t, resp.Subtotal.Equal(decimal.RequireFromString("250.00")))
	assert.True(t, resp.Tax.Equal(decimal.RequireFromString("45.00")))
	got, _ := f.admissions.GetByID(ctx, adm.ID)
	assert.Equal(t, entity.AdmissionBilled, got.Status)

	// Una admisión ya facturada no se factura de nuevo
	_, err = f.lifecycle.Create(ctx, req)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreate_ConcurrenciaSinHuecosNiDuplicados(t *testing.T) {
	const n = 120
	f := newFixture(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	correlatives := make(chan int64, n)
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := f.lifecycle.Create(ctx, boletaRequest("10.00"))
			if err != nil {
				errs <- err
				return
			}
			correlatives <- resp.Correlative
		}()
	}
	wg.Wait()
	close(correlatives)
	close(errs)

	for err := range errs {
		t.Fatalf("create concurrente falló: %v", err)
	}

	seen := make(map[int64]bool, n)
	for c := range correlatives {
		assert.False(t, seen[c], "correlativo %d duplicado", c)
		seen[c] = true
	}
	require.Len(t, seen, n)
	for i := int64(1); i <= n; i++ {
		assert.True(t, seen[i], "falta el correlativo %d: la serie tiene un hueco", i)
	}
}

// ── Submit ───────────────────────────────────────────────────────────────────

func TestSubmit_Aceptado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.lifecycle.Create(ctx, boletaRequest("100.00"))
	require.NoError(t, err)

	resp, err := f.lifecycle.Submit(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusAccepted, resp.Status)
	assert.True(t, resp.HasReceipt, "el CDR debe quedar almacenado")
	assert.Equal(t, 1, f.submitter.callCount())

	assert.Equal(t, []string{
		entity.AuditInvoiceCreated,
		entity.AuditInvoiceSubmitted,
		entity.AuditInvoiceAccepted,
	}, f.audit.eventTypes(created.ID))
}

func TestSubmit_IdempotenteTrasAceptacion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.lifecycle.Create(ctx, boletaRequest("100.00"))
	require.NoError(t, err)
	_, err = f.lifecycle.Submit(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, 1, f.submitter.callCount())

	// Segundo envío: cero llamadas adicionales al proveedor
	resp, err := f.lifecycle.Submit(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusAccepted, resp.Status)
	assert.Equal(t, 1, f.submitter.callCount(), "un comprobante aceptado no vuelve a enviarse")
}

func TestSubmit_RechazoEsTerminal(t *testing.T) {
	f := newFixture(t, &infrasunat.SubmitResult{
		Status: infrasunat.SubmitRejected, Code: "2324", Message: "RUC del adquirente no existe",
	})
	ctx := context.Background()

	created, err := f.lifecycle.Create(ctx, boletaRequest("100.00"))
	require.NoError(t, err)

	resp, err := f.lifecycle.Submit(ctx, created.ID)
	require.NoError(t, err, "el rechazo es un resultado, no un error")
	assert.Equal(t, entity.StatusRejected, resp.Status)
	assert.Equal(t, "RUC del adquirente no existe", resp.AuthorityMsg)

	// El rechazo no se reintenta nunca
	resp2, err := f.lifecycle.Submit(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusRejected, resp2.Status)
	assert.Equal(t, 1, f.submitter.callCount())

	types := f.audit.eventTypes(created.ID)
	assert.Contains(t, types, entity.AuditInvoiceRejected)
}

func TestSubmit_FalloTransitorioYReintentoConMismosBytes(t *testing.T) {
	f := newFixture(t,
		&infrasunat.SubmitResult{Status: infrasunat.SubmitError, Message: "timeout de red"},
		&infrasunat.SubmitResult{Status: infrasunat.SubmitAccepted, Code: "0", Message: "aceptado", Receipt: []byte("cdr")},
	)
	ctx := context.Background()

	created, err := f.lifecycle.Create(ctx, boletaRequest("100.00"))
	require.NoError(t, err)

	// Primer envío: fallo transitorio → PENDING_RETRY y el error sube
	resp, err := f.lifecycle.Submit(ctx, created.ID)
	require.Error(t, err)
	assert.True(t, domain.IsSubmissionError(err), "el fallo transitorio debe ser SubmissionError, fue %T", err)
	assert.Equal(t, entity.StatusPendingRetry, resp.Status)

	// Reintento: acepta, y los bytes enviados son idénticos al primer intento
	resp2, err := f.lifecycle.Submit(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusAccepted, resp2.Status)
	require.Equal(t, 2, f.submitter.callCount())
	assert.Equal(t, f.submitter.sentXML[0], f.submitter.sentXML[1],
		"el reenvío debe usar exactamente los mismos bytes del XML")

	types := f.audit.eventTypes(created.ID)
	assert.Contains(t, types, entity.AuditInvoiceSubmissionFailed)
	assert.Contains(t, types, entity.AuditInvoiceAccepted)
}

func TestSubmit_ProveedorOfflineDejaPendienteSinError(t *testing.T) {
	f := newFixture(t, &infrasunat.SubmitResult{
		Status: infrasunat.SubmitPending, Message: "sin proveedor configurado",
	})
	ctx := context.Background()

	created, err := f.lifecycle.Create(ctx, boletaRequest("100.00"))
	require.NoError(t, err)

	resp, err := f.lifecycle.Submit(ctx, created.ID)
	require.NoError(t, err, "quedar pendiente no es un error")
	assert.Equal(t, entity.StatusPendingRetry, resp.Status)
	assert.Equal(t, "sin proveedor configurado", resp.AuthorityMsg)

	// La transición a PENDING_RETRY también queda en el historial
	assert.Equal(t, []string{
		entity.AuditInvoiceCreated,
		entity.AuditInvoiceSubmitted,
		entity.AuditInvoiceSubmissionFailed,
	}, f.audit.eventTypes(created.ID))
}

func TestSubmit_NoEncontrado(t *testing.T) {
	f := newFixture(t)
	_, err := f.lifecycle.Submit(context.Background(), uuid.New().String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRetryPending_ResuelvePendientes(t *testing.T) {
	f := newFixture(t,
		&infrasunat.SubmitResult{Status: infrasunat.SubmitError, Message: "timeout"},
		&infrasunat.SubmitResult{Status: infrasunat.SubmitAccepted, Code: "0", Message: "aceptado", Receipt: []byte("cdr")},
	)
	ctx := context.Background()

	created, err := f.lifecycle.Create(ctx, boletaRequest("100.00"))
	require.NoError(t, err)
	_, _ = f.lifecycle.Submit(ctx, created.ID) // queda en PENDING_RETRY

	resolved, err := f.lifecycle.RetryPending(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, resolved)

	got, err := f.lifecycle.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusAccepted, got.Status)
}

// ── misceláneos ──────────────────────────────────────────────────────────────

func TestListBySeries_OrdenadoPorCorrelativo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := f.lifecycle.Create(ctx, boletaRequest(fmt.Sprintf("%d.00", 10+i)))
		require.NoError(t, err)
	}
	list, err := f.lifecycle.ListBySeries(ctx, pkgsunat.DocTypeBoleta, "B001", dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, list, 5)
	for i, inv := range list {
		assert.Equal(t, int64(i+1), inv.Correlative)
	}
}

func TestSubmit_ErrorDelSubmitterDejaPendienteYPropaga(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.lifecycle.Create(ctx, boletaRequest("100.00"))
	require.NoError(t, err)

	// Submitter que devuelve error Go (misconfiguración)
	lc := billing.NewInvoiceLifecycle(
		&memTxRunner{seq: newMemSequence(), invoices: f.invoices, admissions: f.admissions},
		f.invoices, &memCompanyRepo{issuer: &entity.Company{RUC: "20131312955", LegalName: "CLINICA"}},
		f.customers, f.admissions, f.audit,
		infrasunat.NewUBLBuilder(), nil, misconfiguredSubmitter{},
		"sunat", billing.CertConfig{}, logger.New(logger.Config{Env: "development", Level: "error"}),
	)
	resp, err := lc.Submit(ctx, created.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMisconfiguredProvider)
	assert.Equal(t, entity.StatusPendingRetry, resp.Status)
	assert.Contains(t, f.audit.eventTypes(created.ID), entity.AuditInvoiceSubmissionFailed)
}

func TestSubmit_CertificadoIlegibleDejaPendienteYAudita(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.lifecycle.Create(ctx, boletaRequest("100.00"))
	require.NoError(t, err)

	// Ruta de certificado inexistente: misconfiguración, no fallo transitorio
	lc := billing.NewInvoiceLifecycle(
		&memTxRunner{seq: newMemSequence(), invoices: f.invoices, admissions: f.admissions},
		f.invoices, &memCompanyRepo{issuer: &entity.Company{RUC: "20131312955", LegalName: "CLINICA"}},
		f.customers, f.admissions, f.audit,
		infrasunat.NewUBLBuilder(), nil, f.submitter,
		"sunat", billing.CertConfig{CertPath: "/no/existe/cert.p12", CertPass: "x"},
		logger.New(logger.Config{Env: "development", Level: "error"}),
	)
	_, err = lc.Submit(ctx, created.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMisconfiguredProvider)
	assert.Equal(t, 0, f.submitter.callCount(), "sin firma no se envía nada")

	got, err := f.lifecycle.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPendingRetry, got.Status)
	assert.Contains(t, f.audit.eventTypes(created.ID), entity.AuditInvoiceSubmissionFailed)
}

type misconfiguredSubmitter struct{}

func (misconfiguredSubmitter) Submit(context.Context, *infrasunat.Document) (*infrasunat.SubmitResult, error) {
	return nil, fmt.Errorf("credenciales SOL ausentes: %w", domain.ErrMisconfiguredProvider)
}
