package billing

import (
	"context"
	"time"
)

// ListFilter scopes document listings. Zero values mean "no filter".
type ListFilter struct {
	Kind        Kind
	Status      Status
	IssuedFrom  time.Time
	IssuedUntil time.Time
}

// Repository persists documents with their line items and party.
// Implementations return (nil, nil) from GetByID when the id is unknown.
type Repository interface {
	Create(ctx context.Context, doc *Document) error
	GetByID(ctx context.Context, id string) (*Document, error)
	List(ctx context.Context, filter ListFilter) ([]Document, error)
	UpdateStatus(ctx context.Context, id string, status Status, now time.Time) error
	UpdateExternalRef(ctx context.Context, id, ref string, now time.Time) error
}
