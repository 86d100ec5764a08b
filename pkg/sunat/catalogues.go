// Package sunat contiene catálogos y validaciones alineados a la normativa de
// Comprobantes de Pago Electrónicos SUNAT (Perú) — Resolución 097-2012 y anexos UBL 2.1.
package sunat

// =============================================================================
// Catálogo 01 - Tipo de comprobante
// =============================================================================

const (
	// DocTypeFactura factura electrónica (series F***). Requiere RUC del adquirente.
	DocTypeFactura = "01"
	// DocTypeBoleta boleta de venta electrónica (series B***). Admite DNI o cliente varios.
	DocTypeBoleta = "03"
)

// ValidDocumentTypes tipos de comprobante soportados por el flujo de emisión.
var ValidDocumentTypes = map[string]bool{
	DocTypeFactura: true,
	DocTypeBoleta:  true,
}

// =============================================================================
// Catálogo 06 - Tipo de documento de identidad del adquirente
// =============================================================================

const (
	IdentityTypeSinDocumento = "0" // Cliente varios / no domiciliado sin documento
	IdentityTypeDNI          = "1" // Documento Nacional de Identidad
	IdentityTypeRUC          = "6" // Registro Único de Contribuyentes
)

// =============================================================================
// Catálogo 05 - Códigos de tributo
// =============================================================================

const (
	// TaxCodeIGV código de tributo IGV (Impuesto General a las Ventas).
	TaxCodeIGV = "1000"
	// TaxNameIGV nombre del tributo según catálogo.
	TaxNameIGV = "IGV"
	// TaxTypeCodeVAT código internacional UN/ECE 5153 para IGV.
	TaxTypeCodeVAT = "VAT"
	// TaxCategoryGravado afectación IGV: operación gravada (catálogo 07).
	TaxCategoryGravado = "10"
)

// =============================================================================
// Catálogo 51 / unidades
// =============================================================================

const (
	// UnitService unidad de medida para servicios (UN/ECE rec 20: ZZ = mutuamente definido).
	UnitService = "ZZ"
	// UnitUnidad unidad/ítem (NIU).
	UnitUnidad = "NIU"
	// CurrencyPEN moneda de emisión (soles).
	CurrencyPEN = "PEN"
)

// Identidad del "cliente varios" para boletas sin documento del adquirente.
const (
	WalkInCustomerID   = "00000000"
	WalkInCustomerName = "CLIENTES VARIOS"
)

// SeriesLength longitud fija de la serie (ej: F001, B001).
const SeriesLength = 4

// ValidSeries valida que la serie tenga 4 caracteres y el prefijo corresponda
// al tipo de comprobante (F para facturas, B para boletas).
func ValidSeries(docType, series string) bool {
	if len(series) != SeriesLength {
		return false
	}
	switch docType {
	case DocTypeFactura:
		return series[0] == 'F'
	case DocTypeBoleta:
		return series[0] == 'B'
	}
	return false
}
