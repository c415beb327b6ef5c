package application

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	billing "billing-cloud/internal/billing/domain"
	clients "billing-cloud/internal/clients/domain"
	"billing-cloud/internal/observability/metrics"
)

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock uses time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// ClientDirectory resolves registered clients for party references.
type ClientDirectory interface {
	GetByID(ctx context.Context, id string) (*clients.Client, error)
}

// LineItemInput is one billable row supplied by the caller.
type LineItemInput struct {
	ServiceRef  string `json:"service_ref,omitempty"`
	Category    string `json:"category,omitempty"`
	Description string `json:"description"`
	Quantity    int64  `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
}

// CreateDocumentInput carries caller-supplied fields for a new document.
// Totals are never accepted from the caller.
type CreateDocumentInput struct {
	Number        string          `json:"number"`
	IssueDate     time.Time       `json:"issue_date"`
	DueDate       time.Time       `json:"due_date"`
	ClientID      string          `json:"client_id,omitempty"`
	ProspectName  string          `json:"prospect_name,omitempty"`
	ProspectEmail string          `json:"prospect_email,omitempty"`
	Items         []LineItemInput `json:"items"`
	ApplyTax      bool            `json:"apply_tax"`
	Notes         string          `json:"notes,omitempty"`
}

// DocumentService handles invoice and quote use cases.
type DocumentService struct {
	repo      billing.Repository
	directory ClientDirectory
	clock     Clock
}

// NewDocumentService constructs the service.
func NewDocumentService(repo billing.Repository, directory ClientDirectory, clock Clock) (*DocumentService, error) {
	if repo == nil {
		return nil, errors.New("document service: nil repository")
	}
	if directory == nil {
		return nil, errors.New("document service: nil client directory")
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &DocumentService{repo: repo, directory: directory, clock: clock}, nil
}

// Create validates the input, resolves the party and stores the document.
func (s *DocumentService) Create(ctx context.Context, kind billing.Kind, input CreateDocumentInput) (*billing.Document, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveDocumentCreate(string(kind), result, time.Since(start))
	}()

	party, err := s.resolveParty(ctx, input)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}

	items := make([]billing.LineItem, 0, len(input.Items))
	for _, line := range input.Items {
		items = append(items, billing.LineItem{
			ServiceRef:  line.ServiceRef,
			Category:    line.Category,
			Description: line.Description,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
		})
	}

	doc, err := billing.NewDocument(kind, input.Number, input.IssueDate, input.DueDate, party, items, input.ApplyTax, input.Notes)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}

	now := s.clock.Now()
	doc.ID = newDocumentID(kind)
	doc.CreatedAt = now
	doc.UpdatedAt = now

	if err := s.repo.Create(ctx, doc); err != nil {
		result = metrics.ResultError
		return nil, err
	}
	return doc, nil
}

// Get returns one document of the given kind.
func (s *DocumentService) Get(ctx context.Context, kind billing.Kind, id string) (*billing.Document, error) {
	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil || doc.Kind != kind {
		return nil, billing.ErrDocumentNotFound
	}
	return doc, nil
}

// List returns documents of a kind, optionally narrowed by status and issue window.
func (s *DocumentService) List(ctx context.Context, kind billing.Kind, status billing.Status, issuedFrom time.Time) ([]billing.Document, error) {
	if status != "" && !billing.ValidStatus(kind, status) {
		return nil, billing.ErrUnknownStatus
	}
	return s.repo.List(ctx, billing.ListFilter{Kind: kind, Status: status, IssuedFrom: issuedFrom})
}

// ChangeStatus applies a caller-driven status transition.
func (s *DocumentService) ChangeStatus(ctx context.Context, kind billing.Kind, id string, status billing.Status) (*billing.Document, error) {
	doc, err := s.Get(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	if err := doc.ChangeStatus(status, now); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, id, status, now); err != nil {
		return nil, err
	}
	return doc, nil
}

// SetExternalRef records the tax-authority folio on an invoice.
func (s *DocumentService) SetExternalRef(ctx context.Context, id, ref string) (*billing.Document, error) {
	doc, err := s.Get(ctx, billing.KindInvoice, id)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	if err := doc.SetExternalRef(ref, now); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateExternalRef(ctx, id, ref, now); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *DocumentService) resolveParty(ctx context.Context, input CreateDocumentInput) (billing.Party, error) {
	if input.ClientID != "" && input.ProspectName != "" {
		return billing.Party{}, billing.ErrAmbiguousParty
	}
	if input.ClientID != "" {
		client, err := s.directory.GetByID(ctx, input.ClientID)
		if err != nil {
			return billing.Party{}, err
		}
		if client == nil {
			return billing.Party{}, clients.ErrClientNotFound
		}
		return billing.NewClientParty(billing.ClientRef{
			ID:        client.ID,
			LegalName: client.LegalName,
			TaxID:     client.TaxID,
			Email:     client.Email,
		})
	}
	if input.ProspectName != "" {
		return billing.NewProspectParty(billing.Prospect{
			Name:  input.ProspectName,
			Email: input.ProspectEmail,
		})
	}
	return billing.Party{}, billing.ErrMissingParty
}

func newDocumentID(kind billing.Kind) string {
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	prefix := "inv-"
	if kind == billing.KindQuote {
		prefix = "qt-"
	}
	return prefix + hex.EncodeToString(buf)
}
