package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	billing "billing-cloud/internal/billing/domain"
)

// DocumentRepository is an in-memory repository for documents.
type DocumentRepository struct {
	mu   sync.RWMutex
	data map[string]*billing.Document
	seq  []string
}

// NewDocumentRepository constructs a repository.
func NewDocumentRepository() *DocumentRepository {
	return &DocumentRepository{data: make(map[string]*billing.Document)}
}

// Create stores a document.
func (r *DocumentRepository) Create(ctx context.Context, doc *billing.Document) error {
	_ = ctx
	if doc == nil {
		return billing.ErrNilDocument
	}
	copy := cloneDocument(doc)
	r.mu.Lock()
	if _, exists := r.data[doc.ID]; !exists {
		r.seq = append(r.seq, doc.ID)
	}
	r.data[doc.ID] = copy
	r.mu.Unlock()
	return nil
}

// GetByID loads a document, (nil, nil) when missing.
func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*billing.Document, error) {
	_ = ctx
	r.mu.RLock()
	doc := r.data[id]
	r.mu.RUnlock()
	if doc == nil {
		return nil, nil
	}
	return cloneDocument(doc), nil
}

// List returns documents matching the filter in insertion order.
func (r *DocumentRepository) List(ctx context.Context, filter billing.ListFilter) ([]billing.Document, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]billing.Document, 0, len(r.seq))
	for _, id := range r.seq {
		doc := r.data[id]
		if doc == nil {
			continue
		}
		if filter.Kind != "" && doc.Kind != filter.Kind {
			continue
		}
		if filter.Status != "" && doc.Status != filter.Status {
			continue
		}
		if !filter.IssuedFrom.IsZero() && doc.IssueDate.Before(filter.IssuedFrom) {
			continue
		}
		if !filter.IssuedUntil.IsZero() && doc.IssueDate.After(filter.IssuedUntil) {
			continue
		}
		out = append(out, *cloneDocument(doc))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].IssueDate.Before(out[j].IssueDate)
	})
	return out, nil
}

// UpdateStatus changes the stored status.
func (r *DocumentRepository) UpdateStatus(ctx context.Context, id string, status billing.Status, now time.Time) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	doc := r.data[id]
	if doc == nil {
		return billing.ErrDocumentNotFound
	}
	return doc.ChangeStatus(status, now)
}

// UpdateExternalRef records the folio reference.
func (r *DocumentRepository) UpdateExternalRef(ctx context.Context, id, ref string, now time.Time) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	doc := r.data[id]
	if doc == nil {
		return billing.ErrDocumentNotFound
	}
	return doc.SetExternalRef(ref, now)
}

func cloneDocument(doc *billing.Document) *billing.Document {
	copy := *doc
	if doc.Items != nil {
		copy.Items = append([]billing.LineItem(nil), doc.Items...)
	}
	if doc.Party.Client != nil {
		client := *doc.Party.Client
		copy.Party.Client = &client
	}
	if doc.Party.Prospect != nil {
		prospect := *doc.Party.Prospect
		copy.Party.Prospect = &prospect
	}
	return &copy
}
