package billing

import "math"

// TaxRate is the fixed VAT rate applied when an issuer opts in.
const TaxRate = 0.19

// ComputeTotals derives document totals from line items.
// Amounts are minor currency units (CLP has no decimals). The tax amount
// is rounded half away from zero; subtotal and total are exact sums.
// An empty item list yields zero totals, it is not an error.
func ComputeTotals(items []LineItem, applyTax bool) DocumentTotals {
	var subtotal int64
	for _, item := range items {
		subtotal += item.Total()
	}
	var tax int64
	if applyTax {
		tax = int64(math.Round(float64(subtotal) * TaxRate))
	}
	return DocumentTotals{
		Subtotal:   subtotal,
		TaxApplied: applyTax,
		Tax:        tax,
		Total:      subtotal + tax,
	}
}
