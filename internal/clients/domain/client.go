package clients

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrClientNotFound is returned when a client id does not exist.
	ErrClientNotFound = errors.New("clients: not found")
	// ErrEmptyLegalName is returned when the legal name is missing.
	ErrEmptyLegalName = errors.New("clients: empty legal name")
)

// Client is a registered business client.
type Client struct {
	ID        string    `json:"id"`
	LegalName string    `json:"legal_name"`
	TaxID     string    `json:"tax_id,omitempty"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks required fields.
func (c Client) Validate() error {
	if c.LegalName == "" {
		return ErrEmptyLegalName
	}
	return nil
}

// Repository persists registered clients.
// Implementations return (nil, nil) from GetByID when the id is unknown.
type Repository interface {
	Create(ctx context.Context, client *Client) error
	GetByID(ctx context.Context, id string) (*Client, error)
	List(ctx context.Context) ([]Client, error)
}
