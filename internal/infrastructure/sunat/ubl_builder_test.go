package sunat_test

import (
	"encoding/xml"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinsalud/clinica-api/internal/domain"
	"github.com/clinsalud/clinica-api/internal/domain/entity"
	"github.com/clinsalud/clinica-api/internal/infrastructure/sunat"
)

func buildContext() *sunat.InvoiceBuildContext {
	subtotal := decimal.RequireFromString("100.00")
	tax := decimal.RequireFromString("18.00")
	return &sunat.InvoiceBuildContext{
		Invoice: &entity.Invoice{
			ID:           "inv-1",
			DocumentType: "01",
			Series:       "F001",
			Correlative:  123,
			Subtotal:     subtotal,
			Tax:          tax,
			Total:        subtotal.Add(tax),
			IssuedAt:     time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC),
		},
		Issuer: &entity.Company{
			RUC:       "20131312955",
			LegalName: "CLINICA OCUPACIONAL SALUD LABORAL S.A.C.",
			TradeName: "ClinSalud",
			Address:   "Av. Arequipa 1234, Lince",
			Ubigeo:    "150116",
		},
		Customer: &entity.Customer{
			Name:         "MINERA DEL SUR S.A.",
			IdentityType: "6",
			IdentityNum:  "20100070970",
		},
		ServiceDescription: "Examen médico ocupacional preocupacional",
	}
}

func TestBuild_EsDeterminista(t *testing.T) {
	builder := sunat.NewUBLBuilder()
	ctx := buildContext()

	first, err := builder.Build(ctx)
	require.NoError(t, err)
	second, err := builder.Build(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second,
		"dos construcciones del mismo comprobante deben producir bytes idénticos")
}

func TestBuild_ContenidoDelComprobante(t *testing.T) {
	builder := sunat.NewUBLBuilder()

	out, err := builder.Build(buildContext())
	require.NoError(t, err)
	doc := string(out)

	assert.True(t, strings.HasPrefix(doc, xml.Header), "debe iniciar con la declaración XML")
	assert.Contains(t, doc, "<cbc:ID>F001-123</cbc:ID>")
	assert.Contains(t, doc, "<cbc:IssueDate>2026-03-15</cbc:IssueDate>")
	assert.Contains(t, doc, `<cbc:InvoiceTypeCode listID="0101">01</cbc:InvoiceTypeCode>`)
	assert.Contains(t, doc, "<cbc:DocumentCurrencyCode>PEN</cbc:DocumentCurrencyCode>")

	// Emisor y adquirente con sus identidades del catálogo 06.
	assert.Contains(t, doc, `<cbc:ID schemeID="6">20131312955</cbc:ID>`)
	assert.Contains(t, doc, `<cbc:ID schemeID="6">20100070970</cbc:ID>`)
	assert.Contains(t, doc, "<cbc:RegistrationName>MINERA DEL SUR S.A.</cbc:RegistrationName>")

	// Montos: subtotal 100.00 → IGV 18.00, total 118.00.
	assert.Contains(t, doc, `<cbc:TaxAmount currencyID="PEN">18.00</cbc:TaxAmount>`)
	assert.Contains(t, doc, `<cbc:TaxableAmount currencyID="PEN">100.00</cbc:TaxableAmount>`)
	assert.Contains(t, doc, `<cbc:TaxInclusiveAmount currencyID="PEN">118.00</cbc:TaxInclusiveAmount>`)
	assert.Contains(t, doc, `<cbc:PayableAmount currencyID="PEN">118.00</cbc:PayableAmount>`)
	assert.Contains(t, doc, "<cbc:Percent>18.00</cbc:Percent>")

	// Línea única de servicio.
	assert.Contains(t, doc, `<cbc:InvoicedQuantity unitCode="ZZ">1</cbc:InvoicedQuantity>`)
	assert.Contains(t, doc, "<cbc:Description>Examen médico ocupacional preocupacional</cbc:Description>")

	// Placeholder donde el firmador inyecta ds:Signature.
	assert.Contains(t, doc, "<ext:UBLExtensions>")
	assert.Contains(t, doc, "<ext:ExtensionContent>")
}

func TestBuild_BoletaSinClienteUsaClientesVarios(t *testing.T) {
	builder := sunat.NewUBLBuilder()
	ctx := buildContext()
	ctx.Invoice.DocumentType = "03"
	ctx.Invoice.Series = "B001"
	ctx.Invoice.Correlative = 1
	ctx.Customer = nil
	ctx.ServiceDescription = ""

	out, err := builder.Build(ctx)
	require.NoError(t, err)
	doc := string(out)

	assert.Contains(t, doc, "<cbc:ID>B001-1</cbc:ID>")
	assert.Contains(t, doc, `<cbc:ID schemeID="0">00000000</cbc:ID>`)
	assert.Contains(t, doc, "<cbc:RegistrationName>CLIENTES VARIOS</cbc:RegistrationName>")
	assert.Contains(t, doc, "<cbc:Description>Servicio de salud ocupacional</cbc:Description>")
}

func TestBuild_DatosInvalidos(t *testing.T) {
	builder := sunat.NewUBLBuilder()

	cases := []struct {
		name   string
		mutate func(ctx *sunat.InvoiceBuildContext) *sunat.InvoiceBuildContext
	}{
		{"contexto nil", func(*sunat.InvoiceBuildContext) *sunat.InvoiceBuildContext { return nil }},
		{"sin invoice", func(ctx *sunat.InvoiceBuildContext) *sunat.InvoiceBuildContext {
			ctx.Invoice = nil
			return ctx
		}},
		{"sin emisor", func(ctx *sunat.InvoiceBuildContext) *sunat.InvoiceBuildContext {
			ctx.Issuer = nil
			return ctx
		}},
		{"total cero", func(ctx *sunat.InvoiceBuildContext) *sunat.InvoiceBuildContext {
			ctx.Invoice.Total = decimal.Zero
			return ctx
		}},
		{"correlativo sin asignar", func(ctx *sunat.InvoiceBuildContext) *sunat.InvoiceBuildContext {
			ctx.Invoice.Correlative = 0
			return ctx
		}},
		{"emisor sin RUC", func(ctx *sunat.InvoiceBuildContext) *sunat.InvoiceBuildContext {
			ctx.Issuer.RUC = ""
			return ctx
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := builder.Build(tc.mutate(buildContext()))
			assert.ErrorIs(t, err, domain.ErrInvalidInvoiceState)
		})
	}
}
