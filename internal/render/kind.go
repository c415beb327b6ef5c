package render

import (
	billing "billing-cloud/internal/billing/domain"
)

// KindConfig parameterizes the shared layout for one document kind.
// Both kinds flow through the same engine so they cannot drift apart.
type KindConfig struct {
	Title string
	// DueLabel names the second date of the document.
	DueLabel string
	// PageBreakY is the vertical cursor threshold that forces a new page
	// before the next table row.
	PageBreakY float64
	// ShowExternalRef paints the tax-authority folio line when present.
	ShowExternalRef bool
	// AlwaysTerms renders the boilerplate terms block even without a
	// custom note; otherwise notes render only when present.
	AlwaysTerms bool
	Boilerplate string
	// FilePrefix names the downloaded document.
	FilePrefix string
}

var kindConfigs = map[billing.Kind]KindConfig{
	billing.KindInvoice: {
		Title:           "FACTURA",
		DueLabel:        "Vencimiento",
		PageBreakY:      230,
		ShowExternalRef: true,
		AlwaysTerms:     false,
		FilePrefix:      "factura",
	},
	billing.KindQuote: {
		Title:           "COTIZACIÓN",
		DueLabel:        "Válida hasta",
		PageBreakY:      220,
		ShowExternalRef: false,
		AlwaysTerms:     true,
		Boilerplate:     "Cotización válida hasta la fecha indicada. Precios en pesos chilenos. No constituye documento tributario.",
		FilePrefix:      "cotizacion",
	},
}

// ConfigFor returns the layout configuration for a kind.
func ConfigFor(kind billing.Kind) (KindConfig, bool) {
	cfg, ok := kindConfigs[kind]
	return cfg, ok
}
