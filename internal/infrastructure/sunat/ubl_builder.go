package sunat

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/clinsalud/clinica-api/internal/domain"
	"github.com/clinsalud/clinica-api/internal/domain/entity"
	pkgsunat "github.com/clinsalud/clinica-api/pkg/sunat"
)

// Namespaces UBL 2.1 usados por el estándar SUNAT de factura electrónica.
const (
	NsInvoice = "urn:oasis:names:specification:ubl:schema:xsd:Invoice-2"
	NsCac     = "urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2"
	NsCbc     = "urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2"
	NsExt     = "urn:oasis:names:specification:ubl:schema:xsd:CommonExtensionComponents-2"
	NsDs      = "http://www.w3.org/2000/09/xmldsig#"

	// tipo de operación (catálogo 51): venta interna
	operationTypeCode = "0101"
)

// UBLBuilder construye el XML UBL 2.1 del comprobante (sin firma).
//
// Build es una función pura: el mismo contexto produce siempre los mismos
// bytes. Esto es obligatorio porque SUNAT puede rechazar el reenvío de un
// documento cuyo hash cambió después del primer envío.
type UBLBuilder struct{}

// NewUBLBuilder crea el servicio.
func NewUBLBuilder() *UBLBuilder {
	return &UBLBuilder{}
}

// Build genera el []byte del documento Invoice/Boleta según UBL 2.1 SUNAT.
// Falla con domain.ErrInvalidInvoiceState ante datos no recuperables:
// total no positivo, correlativo sin asignar o emisor sin RUC.
func (b *UBLBuilder) Build(ctx *InvoiceBuildContext) ([]byte, error) {
	if ctx == nil || ctx.Invoice == nil || ctx.Issuer == nil {
		return nil, fmt.Errorf("sunat: faltan invoice o emisor en el contexto: %w", domain.ErrInvalidInvoiceState)
	}
	inv := ctx.Invoice
	if !inv.Total.IsPositive() {
		return nil, fmt.Errorf("sunat: total %s no positivo: %w", inv.Total, domain.ErrInvalidInvoiceState)
	}
	if inv.Correlative <= 0 {
		return nil, fmt.Errorf("sunat: correlativo sin asignar: %w", domain.ErrInvalidInvoiceState)
	}
	if ctx.Issuer.RUC == "" {
		return nil, fmt.Errorf("sunat: emisor sin RUC: %w", domain.ErrInvalidInvoiceState)
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")

	root := xml.StartElement{
		Name: xml.Name{Local: "Invoice"},
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "xmlns"}, Value: NsInvoice},
			{Name: xml.Name{Local: "xmlns:cac"}, Value: NsCac},
			{Name: xml.Name{Local: "xmlns:cbc"}, Value: NsCbc},
			{Name: xml.Name{Local: "xmlns:ds"}, Value: NsDs},
			{Name: xml.Name{Local: "xmlns:ext"}, Value: NsExt},
		},
	}
	if err := enc.EncodeToken(root); err != nil {
		return nil, err
	}

	// ext:UBLExtensions como primer hijo: placeholder vacío donde el firmador
	// inyecta ds:Signature.
	writeSignaturePlaceholder(enc)

	writeCbc(enc, "UBLVersionID", "2.1")
	writeCbc(enc, "CustomizationID", "2.0")
	writeCbc(enc, "ID", inv.FullNumber())
	writeCbc(enc, "IssueDate", inv.IssuedAt.Format("2006-01-02"))
	writeCbcAttr(enc, "InvoiceTypeCode", inv.DocumentType,
		xml.Attr{Name: xml.Name{Local: "listID"}, Value: operationTypeCode})
	writeCbc(enc, "DocumentCurrencyCode", pkgsunat.CurrencyPEN)

	b.writeSupplierParty(enc, ctx.Issuer)
	b.writeCustomerParty(enc, ctx.Customer)
	b.writeTaxTotal(enc, inv)
	b.writeLegalMonetaryTotal(enc, inv)
	b.writeInvoiceLine(enc, inv, ctx.ServiceDescription)

	if err := enc.EncodeToken(root.End()); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ── secciones del documento ──────────────────────────────────────────────────

func (b *UBLBuilder) writeSupplierParty(enc *xml.Encoder, issuer *entity.Company) {
	open(enc, "cac:AccountingSupplierParty")
	open(enc, "cac:Party")

	open(enc, "cac:PartyIdentification")
	writeCbcAttr(enc, "ID", issuer.RUC,
		xml.Attr{Name: xml.Name{Local: "schemeID"}, Value: pkgsunat.IdentityTypeRUC})
	closeEl(enc, "cac:PartyIdentification")

	if issuer.TradeName != "" {
		open(enc, "cac:PartyName")
		writeCbc(enc, "Name", issuer.TradeName)
		closeEl(enc, "cac:PartyName")
	}

	open(enc, "cac:PartyLegalEntity")
	writeCbc(enc, "RegistrationName", issuer.LegalName)
	if issuer.Address != "" {
		open(enc, "cac:RegistrationAddress")
		if issuer.Ubigeo != "" {
			writeCbc(enc, "ID", issuer.Ubigeo)
		}
		open(enc, "cac:AddressLine")
		writeCbc(enc, "Line", issuer.Address)
		closeEl(enc, "cac:AddressLine")
		closeEl(enc, "cac:RegistrationAddress")
	}
	closeEl(enc, "cac:PartyLegalEntity")

	closeEl(enc, "cac:Party")
	closeEl(enc, "cac:AccountingSupplierParty")
}

// writeCustomerParty escribe al adquirente. Sin cliente (boleta al paso) se
// usa la identidad genérica "CLIENTES VARIOS" del catálogo 06 tipo 0.
func (b *UBLBuilder) writeCustomerParty(enc *xml.Encoder, customer *entity.Customer) {
	identityType := pkgsunat.IdentityTypeSinDocumento
	identityNum := pkgsunat.WalkInCustomerID
	name := pkgsunat.WalkInCustomerName
	if customer != nil && customer.IdentityNum != "" {
		identityType = customer.IdentityType
		identityNum = customer.IdentityNum
		name = customer.Name
	}

	open(enc, "cac:AccountingCustomerParty")
	open(enc, "cac:Party")

	open(enc, "cac:PartyIdentification")
	writeCbcAttr(enc, "ID", identityNum,
		xml.Attr{Name: xml.Name{Local: "schemeID"}, Value: identityType})
	closeEl(enc, "cac:PartyIdentification")

	open(enc, "cac:PartyLegalEntity")
	writeCbc(enc, "RegistrationName", name)
	closeEl(enc, "cac:PartyLegalEntity")

	closeEl(enc, "cac:Party")
	closeEl(enc, "cac:AccountingCustomerParty")
}

func (b *UBLBuilder) writeTaxTotal(enc *xml.Encoder, inv *entity.Invoice) {
	open(enc, "cac:TaxTotal")
	writeCbcAmount(enc, "TaxAmount", pkgsunat.Amount(inv.Tax))

	open(enc, "cac:TaxSubtotal")
	writeCbcAmount(enc, "TaxableAmount", pkgsunat.Amount(inv.Subtotal))
	writeCbcAmount(enc, "TaxAmount", pkgsunat.Amount(inv.Tax))
	open(enc, "cac:TaxCategory")
	writeCbc(enc, "ID", pkgsunat.TaxCategoryGravado)
	writeCbc(enc, "Percent", "18.00")
	writeCbc(enc, "TaxExemptionReasonCode", pkgsunat.TaxCategoryGravado)
	open(enc, "cac:TaxScheme")
	writeCbc(enc, "ID", pkgsunat.TaxCodeIGV)
	writeCbc(enc, "Name", pkgsunat.TaxNameIGV)
	writeCbc(enc, "TaxTypeCode", pkgsunat.TaxTypeCodeVAT)
	closeEl(enc, "cac:TaxScheme")
	closeEl(enc, "cac:TaxCategory")
	closeEl(enc, "cac:TaxSubtotal")

	closeEl(enc, "cac:TaxTotal")
}

func (b *UBLBuilder) writeLegalMonetaryTotal(enc *xml.Encoder, inv *entity.Invoice) {
	open(enc, "cac:LegalMonetaryTotal")
	writeCbcAmount(enc, "LineExtensionAmount", pkgsunat.Amount(inv.Subtotal))
	writeCbcAmount(enc, "TaxInclusiveAmount", pkgsunat.Amount(inv.Total))
	writeCbcAmount(enc, "PayableAmount", pkgsunat.Amount(inv.Total))
	closeEl(enc, "cac:LegalMonetaryTotal")
}

func (b *UBLBuilder) writeInvoiceLine(enc *xml.Encoder, inv *entity.Invoice, description string) {
	if description == "" {
		description = "Servicio de salud ocupacional"
	}
	open(enc, "cac:InvoiceLine")
	writeCbc(enc, "ID", "1")
	writeCbcAttr(enc, "InvoicedQuantity", "1",
		xml.Attr{Name: xml.Name{Local: "unitCode"}, Value: pkgsunat.UnitService})
	writeCbcAmount(enc, "LineExtensionAmount", pkgsunat.Amount(inv.Subtotal))

	// Precio de venta unitario (incluye IGV), requerido por SUNAT en PricingReference.
	open(enc, "cac:PricingReference")
	open(enc, "cac:AlternativeConditionPrice")
	writeCbcAmount(enc, "PriceAmount", pkgsunat.Amount(inv.Total))
	writeCbc(enc, "PriceTypeCode", "01")
	closeEl(enc, "cac:AlternativeConditionPrice")
	closeEl(enc, "cac:PricingReference")

	open(enc, "cac:Item")
	writeCbc(enc, "Description", description)
	closeEl(enc, "cac:Item")

	open(enc, "cac:Price")
	writeCbcAmount(enc, "PriceAmount", pkgsunat.Amount(inv.Subtotal))
	closeEl(enc, "cac:Price")

	closeEl(enc, "cac:InvoiceLine")
}

// ── helpers de bajo nivel ────────────────────────────────────────────────────

func writeSignaturePlaceholder(enc *xml.Encoder) {
	open(enc, "ext:UBLExtensions")
	open(enc, "ext:UBLExtension")
	open(enc, "ext:ExtensionContent")
	closeEl(enc, "ext:ExtensionContent")
	closeEl(enc, "ext:UBLExtension")
	closeEl(enc, "ext:UBLExtensions")
}

func open(enc *xml.Encoder, local string) {
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Local: local}})
}

func closeEl(enc *xml.Encoder, local string) {
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Local: local}})
}

func writeCbc(enc *xml.Encoder, local, value string) {
	writeCbcAttr(enc, local, value)
}

func writeCbcAttr(enc *xml.Encoder, local, value string, attrs ...xml.Attr) {
	name := xml.Name{Local: "cbc:" + local}
	_ = enc.EncodeToken(xml.StartElement{Name: name, Attr: attrs})
	_ = enc.EncodeToken(xml.CharData(value))
	_ = enc.EncodeToken(xml.EndElement{Name: name})
}

func writeCbcAmount(enc *xml.Encoder, local, value string) {
	writeCbcAttr(enc, local, value,
		xml.Attr{Name: xml.Name{Local: "currencyID"}, Value: pkgsunat.CurrencyPEN})
}
