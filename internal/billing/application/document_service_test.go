package application

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	billing "billing-cloud/internal/billing/domain"
	"billing-cloud/internal/billing/infrastructure/memory"
	clients "billing-cloud/internal/clients/domain"
	clientsmemory "billing-cloud/internal/clients/infrastructure/memory"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func newTestService(t *testing.T) *DocumentService {
	t.Helper()
	directory := clientsmemory.NewClientRepository()
	err := directory.Create(context.Background(), &clients.Client{
		ID:        "cli-1",
		LegalName: "Acme SpA",
		Email:     "pagos@acme.cl",
	})
	if err != nil {
		t.Fatalf("seed client: %v", err)
	}
	service, err := NewDocumentService(memory.NewDocumentRepository(), directory, fixedClock{now: time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)})
	if err != nil {
		t.Fatalf("document service: %v", err)
	}
	return service
}

func validInput() CreateDocumentInput {
	return CreateDocumentInput{
		Number:    "F-0001",
		IssueDate: time.Date(2026, 8, 5, 0, 0, 0, 0, time.UTC),
		DueDate:   time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC),
		ClientID:  "cli-1",
		ApplyTax:  true,
		Items: []LineItemInput{
			{Description: "Hosting anual", Quantity: 1, UnitPrice: 120000},
			{Description: "Soporte", Quantity: 5, UnitPrice: 17000},
		},
	}
}

func TestCreateResolvesClientParty(t *testing.T) {
	service := newTestService(t)
	doc, err := service.Create(context.Background(), billing.KindInvoice, validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if doc.Party.Client == nil || doc.Party.Client.LegalName != "Acme SpA" {
		t.Fatalf("expected resolved client party, got %+v", doc.Party)
	}
	if !strings.HasPrefix(doc.ID, "inv-") {
		t.Fatalf("expected inv- id prefix, got %s", doc.ID)
	}
	if doc.Totals.Total != 243950 {
		t.Fatalf("expected total 243950, got %d", doc.Totals.Total)
	}
}

func TestCreateUnknownClient(t *testing.T) {
	service := newTestService(t)
	input := validInput()
	input.ClientID = "cli-missing"
	if _, err := service.Create(context.Background(), billing.KindInvoice, input); !errors.Is(err, clients.ErrClientNotFound) {
		t.Fatalf("expected ErrClientNotFound, got %v", err)
	}
}

func TestCreateAmbiguousParty(t *testing.T) {
	service := newTestService(t)
	input := validInput()
	input.ProspectName = "Futuro Cliente"
	if _, err := service.Create(context.Background(), billing.KindInvoice, input); !errors.Is(err, billing.ErrAmbiguousParty) {
		t.Fatalf("expected ErrAmbiguousParty, got %v", err)
	}
}

func TestCreateProspectInvoiceRejected(t *testing.T) {
	service := newTestService(t)
	input := validInput()
	input.ClientID = ""
	input.ProspectName = "Futuro Cliente"
	if _, err := service.Create(context.Background(), billing.KindInvoice, input); !errors.Is(err, billing.ErrProspectNotAllowed) {
		t.Fatalf("expected ErrProspectNotAllowed, got %v", err)
	}
	quote := input
	quote.Number = "C-0001"
	if _, err := service.Create(context.Background(), billing.KindQuote, quote); err != nil {
		t.Fatalf("prospect quote must be allowed: %v", err)
	}
}

func TestGetEnforcesKind(t *testing.T) {
	service := newTestService(t)
	doc, err := service.Create(context.Background(), billing.KindInvoice, validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := service.Get(context.Background(), billing.KindQuote, doc.ID); !errors.Is(err, billing.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound across kinds, got %v", err)
	}
}

func TestChangeStatusValidatesPerKind(t *testing.T) {
	service := newTestService(t)
	doc, err := service.Create(context.Background(), billing.KindInvoice, validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := service.ChangeStatus(context.Background(), billing.KindInvoice, doc.ID, billing.StatusApproved); !errors.Is(err, billing.ErrUnknownStatus) {
		t.Fatalf("expected ErrUnknownStatus, got %v", err)
	}
	updated, err := service.ChangeStatus(context.Background(), billing.KindInvoice, doc.ID, billing.StatusPaid)
	if err != nil {
		t.Fatalf("change status: %v", err)
	}
	if updated.Status != billing.StatusPaid {
		t.Fatalf("expected paid, got %s", updated.Status)
	}
}

func TestSetExternalRef(t *testing.T) {
	service := newTestService(t)
	doc, err := service.Create(context.Background(), billing.KindInvoice, validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	updated, err := service.SetExternalRef(context.Background(), doc.ID, "SII-12345")
	if err != nil {
		t.Fatalf("set external ref: %v", err)
	}
	if updated.ExternalRef != "SII-12345" {
		t.Fatalf("expected folio stored, got %q", updated.ExternalRef)
	}
}
