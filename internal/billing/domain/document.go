package billing

import "time"

// Kind discriminates the two document kinds.
type Kind string

const (
	KindInvoice Kind = "invoice"
	KindQuote   Kind = "quote"
)

// ValidKind reports whether kind is invoice or quote.
func ValidKind(kind Kind) bool {
	return kind == KindInvoice || kind == KindQuote
}

// Status is a document lifecycle state. Transitions are caller-driven;
// overdue and expired are never derived from due dates by this service.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusIssued   Status = "issued"
	StatusSent     Status = "sent"
	StatusPending  Status = "pending"
	StatusPaid     Status = "paid"
	StatusOverdue  Status = "overdue"
	StatusCanceled Status = "canceled"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusExpired  Status = "expired"
)

var invoiceStatuses = map[Status]struct{}{
	StatusDraft:    {},
	StatusIssued:   {},
	StatusSent:     {},
	StatusPending:  {},
	StatusPaid:     {},
	StatusOverdue:  {},
	StatusCanceled: {},
}

var quoteStatuses = map[Status]struct{}{
	StatusDraft:    {},
	StatusSent:     {},
	StatusApproved: {},
	StatusRejected: {},
	StatusExpired:  {},
}

// ValidStatus reports whether status belongs to the kind's state set.
func ValidStatus(kind Kind, status Status) bool {
	switch kind {
	case KindInvoice:
		_, ok := invoiceStatuses[status]
		return ok
	case KindQuote:
		_, ok := quoteStatuses[status]
		return ok
	default:
		return false
	}
}

// LineItem is one billable row. The line total is always derived from
// quantity and unit price, never stored independently.
type LineItem struct {
	ServiceRef  string `json:"service_ref,omitempty"`
	Category    string `json:"category,omitempty"`
	Description string `json:"description"`
	Quantity    int64  `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
}

// Total returns quantity times unit price in minor units.
func (i LineItem) Total() int64 { return i.Quantity * i.UnitPrice }

// Validate checks the line invariants.
func (i LineItem) Validate() error {
	if i.Description == "" {
		return ErrEmptyDescription
	}
	if i.Quantity < 1 {
		return ErrNonPositiveQuantity
	}
	if i.UnitPrice < 0 {
		return ErrNegativeUnitPrice
	}
	return nil
}

// RankKey groups the line for service rankings: the service reference
// when present, otherwise the raw description text.
func (i LineItem) RankKey() string {
	if i.ServiceRef != "" {
		return i.ServiceRef
	}
	return i.Description
}

// DocumentTotals holds the derived money amounts for a document.
type DocumentTotals struct {
	Subtotal   int64 `json:"subtotal"`
	TaxApplied bool  `json:"tax_applied"`
	Tax        int64 `json:"tax"`
	Total      int64 `json:"total"`
}

// Document is an invoice or quote. Line items are immutable after
// creation; only the status and (for invoices) the external reference
// change afterwards.
type Document struct {
	ID          string         `json:"id"`
	Kind        Kind           `json:"kind"`
	Number      string         `json:"number"`
	ExternalRef string         `json:"external_ref,omitempty"`
	IssueDate   time.Time      `json:"issue_date"`
	DueDate     time.Time      `json:"due_date"`
	Status      Status         `json:"status"`
	Party       Party          `json:"party"`
	Items       []LineItem     `json:"items"`
	Totals      DocumentTotals `json:"totals"`
	Notes       string         `json:"notes,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// NewDocument validates the input and builds a document with derived
// totals. Totals are always recomputed here, never trusted from input.
func NewDocument(kind Kind, number string, issueDate, dueDate time.Time, party Party, items []LineItem, applyTax bool, notes string) (*Document, error) {
	if !ValidKind(kind) {
		return nil, ErrUnknownKind
	}
	if number == "" {
		return nil, ErrEmptyNumber
	}
	if issueDate.IsZero() {
		return nil, ErrInvalidIssueDate
	}
	if err := party.Validate(); err != nil {
		return nil, err
	}
	if kind == KindInvoice && party.IsProspect() {
		return nil, ErrProspectNotAllowed
	}
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return nil, err
		}
	}

	return &Document{
		Kind:      kind,
		Number:    number,
		IssueDate: issueDate,
		DueDate:   dueDate,
		Status:    StatusDraft,
		Party:     party,
		Items:     items,
		Totals:    ComputeTotals(items, applyTax),
		Notes:     notes,
	}, nil
}

// ChangeStatus moves the document to a caller-chosen state.
func (d *Document) ChangeStatus(status Status, now time.Time) error {
	if d == nil {
		return ErrNilDocument
	}
	if !ValidStatus(d.Kind, status) {
		return ErrUnknownStatus
	}
	d.Status = status
	d.UpdatedAt = now
	return nil
}

// SetExternalRef records the tax-authority folio. Invoices only.
func (d *Document) SetExternalRef(ref string, now time.Time) error {
	if d == nil {
		return ErrNilDocument
	}
	if d.Kind != KindInvoice {
		return ErrExternalRefNotAllowed
	}
	d.ExternalRef = ref
	d.UpdatedAt = now
	return nil
}
