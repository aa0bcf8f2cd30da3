package invoicing

import (
	"github.com/shopspring/decimal"
)

// MoneyPlaces is the number of decimal places monetary outputs are rounded to.
// Rounding is half away from zero (decimal.Round semantics).
const MoneyPlaces int32 = 2

var oneHundred = decimal.NewFromInt(100)

// LineAmounts holds the derived amounts of a single line, rounded to
// MoneyPlaces for display/storage.
type LineAmounts struct {
	Subtotal decimal.Decimal
	VAT      decimal.Decimal
	Total    decimal.Decimal
}

// Totals holds the aggregate amounts of an invoice.
type Totals struct {
	Subtotal decimal.Decimal
	VAT      decimal.Decimal
	Total    decimal.Decimal
}

// ComputeLine derives subtotal/VAT/total for one line.
//
// When vatApplicable is false the customer is not a VAT payer: VAT is
// suppressed entirely, the entered price is treated as the final price and
// the price mode is ignored. When pricesIncludeVAT is true the entered unit
// price already contains VAT and the subtotal is stripped of it.
// Arithmetic is sign-agnostic; reversing entries carry negative values.
func ComputeLine(quantity, unitPrice, vatRate decimal.Decimal, pricesIncludeVAT, vatApplicable bool) (LineAmounts, error) {
	raw, err := computeLineRaw(quantity, unitPrice, vatRate, pricesIncludeVAT, vatApplicable)
	if err != nil {
		return LineAmounts{}, err
	}
	return LineAmounts{
		Subtotal: raw.Subtotal.Round(MoneyPlaces),
		VAT:      raw.VAT.Round(MoneyPlaces),
		Total:    raw.Total.Round(MoneyPlaces),
	}, nil
}

// computeLineRaw performs the line derivation without rounding, so that
// aggregate totals can sum exact values and round once.
func computeLineRaw(quantity, unitPrice, vatRate decimal.Decimal, pricesIncludeVAT, vatApplicable bool) (LineAmounts, error) {
	if quantity.IsZero() {
		return LineAmounts{}, NewValidationError("Quantity cannot be zero")
	}
	if vatRate.IsNegative() || vatRate.GreaterThan(oneHundred) {
		return LineAmounts{}, NewValidationError("VAT rate must be between 0 and 100")
	}

	if !vatApplicable {
		subtotal := quantity.Mul(unitPrice)
		return LineAmounts{Subtotal: subtotal, VAT: decimal.Zero, Total: subtotal}, nil
	}

	rateFactor := vatRate.Div(oneHundred)

	var subtotal decimal.Decimal
	if pricesIncludeVAT {
		subtotal = quantity.Mul(unitPrice).Div(decimal.NewFromInt(1).Add(rateFactor))
	} else {
		subtotal = quantity.Mul(unitPrice)
	}

	vat := subtotal.Mul(rateFactor)
	return LineAmounts{Subtotal: subtotal, VAT: vat, Total: subtotal.Add(vat)}, nil
}

// ComputeTotals derives the aggregate amounts over a set of items.
// Line values are summed unrounded and the aggregate is rounded once
// (sum-then-round), so rounding error does not compound across lines.
func ComputeTotals(items []InvoiceItem, pricesIncludeVAT, vatApplicable bool) (Totals, error) {
	subtotal := decimal.Zero
	vat := decimal.Zero

	for i := range items {
		raw, err := computeLineRaw(items[i].Quantity, items[i].UnitPrice, items[i].VATRate, pricesIncludeVAT, vatApplicable)
		if err != nil {
			return Totals{}, err
		}
		subtotal = subtotal.Add(raw.Subtotal)
		vat = vat.Add(raw.VAT)
	}

	subtotal = subtotal.Round(MoneyPlaces)
	vat = vat.Round(MoneyPlaces)
	return Totals{
		Subtotal: subtotal,
		VAT:      vat,
		Total:    subtotal.Add(vat),
	}, nil
}
