package sunat

import "github.com/shopspring/decimal"

// IGVRate tasa vigente del IGV (18%).
var IGVRate = decimal.NewFromFloat(0.18)

// IGV calcula el IGV de un subtotal, redondeado a 2 decimales (half-up).
func IGV(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(IGVRate).Round(2)
}

// Amount formatea un monto con dos decimales fijos, como exige el XML UBL.
func Amount(d decimal.Decimal) string {
	return d.Round(2).StringFixed(2)
}
