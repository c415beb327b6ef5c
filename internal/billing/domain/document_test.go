package billing

import (
	"errors"
	"testing"
	"time"
)

func validClientParty(t *testing.T) Party {
	t.Helper()
	party, err := NewClientParty(ClientRef{ID: "cli-1", LegalName: "Acme SpA", TaxID: "76.123.456-7", Email: "billing@acme.cl"})
	if err != nil {
		t.Fatalf("client party: %v", err)
	}
	return party
}

func TestNewDocumentComputesTotals(t *testing.T) {
	issue := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	doc, err := NewDocument(KindInvoice, "F-0001", issue, issue.AddDate(0, 1, 0), validClientParty(t), []LineItem{
		{Description: "Setup", Quantity: 1, UnitPrice: 100000},
	}, true, "")
	if err != nil {
		t.Fatalf("new document: %v", err)
	}
	if doc.Status != StatusDraft {
		t.Fatalf("expected draft, got %s", doc.Status)
	}
	if doc.Totals.Total != 119000 {
		t.Fatalf("expected total 119000, got %d", doc.Totals.Total)
	}
}

func TestNewDocumentRejectsProspectInvoice(t *testing.T) {
	party, err := NewProspectParty(Prospect{Name: "Posible Cliente"})
	if err != nil {
		t.Fatalf("prospect party: %v", err)
	}
	issue := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	_, err = NewDocument(KindInvoice, "F-0002", issue, issue, party, nil, false, "")
	if !errors.Is(err, ErrProspectNotAllowed) {
		t.Fatalf("expected ErrProspectNotAllowed, got %v", err)
	}
}

func TestNewDocumentAllowsProspectQuote(t *testing.T) {
	party, err := NewProspectParty(Prospect{Name: "Posible Cliente", Email: "hola@example.cl"})
	if err != nil {
		t.Fatalf("prospect party: %v", err)
	}
	issue := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	doc, err := NewDocument(KindQuote, "C-0001", issue, issue.AddDate(0, 0, 15), party, []LineItem{
		{Description: "Consultoría", Quantity: 2, UnitPrice: 45000},
	}, false, "")
	if err != nil {
		t.Fatalf("new document: %v", err)
	}
	if doc.Party.DisplayName() != "Posible Cliente" {
		t.Fatalf("unexpected display name %q", doc.Party.DisplayName())
	}
}

func TestNewDocumentValidation(t *testing.T) {
	issue := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	party := validClientParty(t)
	cases := []struct {
		name  string
		kind  Kind
		num   string
		issue time.Time
		party Party
		items []LineItem
		want  error
	}{
		{name: "empty number", kind: KindInvoice, num: "", issue: issue, party: party, want: ErrEmptyNumber},
		{name: "zero issue date", kind: KindInvoice, num: "F-1", party: party, want: ErrInvalidIssueDate},
		{name: "unknown kind", kind: Kind("receipt"), num: "R-1", issue: issue, party: party, want: ErrUnknownKind},
		{name: "missing party", kind: KindInvoice, num: "F-1", issue: issue, want: ErrMissingParty},
		{
			name: "both parties", kind: KindQuote, num: "C-1", issue: issue,
			party: Party{Client: &ClientRef{ID: "c", LegalName: "x"}, Prospect: &Prospect{Name: "y"}},
			want:  ErrAmbiguousParty,
		},
		{
			name: "zero quantity", kind: KindInvoice, num: "F-1", issue: issue, party: party,
			items: []LineItem{{Description: "x", Quantity: 0, UnitPrice: 100}},
			want:  ErrNonPositiveQuantity,
		},
		{
			name: "negative price", kind: KindInvoice, num: "F-1", issue: issue, party: party,
			items: []LineItem{{Description: "x", Quantity: 1, UnitPrice: -1}},
			want:  ErrNegativeUnitPrice,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewDocument(tc.kind, tc.num, tc.issue, tc.issue, tc.party, tc.items, false, "")
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestChangeStatusPerKind(t *testing.T) {
	issue := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	now := issue.AddDate(0, 0, 3)

	invoice, err := NewDocument(KindInvoice, "F-0003", issue, issue, validClientParty(t), nil, false, "")
	if err != nil {
		t.Fatalf("new invoice: %v", err)
	}
	if err := invoice.ChangeStatus(StatusPaid, now); err != nil {
		t.Fatalf("paid invoice: %v", err)
	}
	if err := invoice.ChangeStatus(StatusApproved, now); !errors.Is(err, ErrUnknownStatus) {
		t.Fatalf("expected ErrUnknownStatus, got %v", err)
	}

	quote, err := NewDocument(KindQuote, "C-0003", issue, issue, validClientParty(t), nil, false, "")
	if err != nil {
		t.Fatalf("new quote: %v", err)
	}
	if err := quote.ChangeStatus(StatusApproved, now); err != nil {
		t.Fatalf("approve quote: %v", err)
	}
	if err := quote.ChangeStatus(StatusPaid, now); !errors.Is(err, ErrUnknownStatus) {
		t.Fatalf("expected ErrUnknownStatus, got %v", err)
	}
}

func TestSetExternalRefInvoiceOnly(t *testing.T) {
	issue := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	invoice, err := NewDocument(KindInvoice, "F-0004", issue, issue, validClientParty(t), nil, false, "")
	if err != nil {
		t.Fatalf("new invoice: %v", err)
	}
	if err := invoice.SetExternalRef("SII-123456", issue); err != nil {
		t.Fatalf("set ref: %v", err)
	}
	if invoice.ExternalRef != "SII-123456" {
		t.Fatalf("unexpected ref %q", invoice.ExternalRef)
	}

	quote, err := NewDocument(KindQuote, "C-0004", issue, issue, validClientParty(t), nil, false, "")
	if err != nil {
		t.Fatalf("new quote: %v", err)
	}
	if err := quote.SetExternalRef("SII-1", issue); !errors.Is(err, ErrExternalRefNotAllowed) {
		t.Fatalf("expected ErrExternalRefNotAllowed, got %v", err)
	}
}
