package postgres

import (
	"context"
	"database/sql"
	"errors"

	clients "billing-cloud/internal/clients/domain"
)

// ClientRepository is a Postgres implementation of the client store.
type ClientRepository struct {
	db *sql.DB
}

// NewClientRepository constructs a repository.
func NewClientRepository(db *sql.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

// Create inserts a client.
func (r *ClientRepository) Create(ctx context.Context, client *clients.Client) error {
	if r == nil || r.db == nil {
		return errors.New("client repo: nil db")
	}
	if client == nil {
		return clients.ErrClientNotFound
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO clients (id, legal_name, tax_id, email, created_at)
VALUES ($1,$2,$3,$4,$5)`,
		client.ID, client.LegalName, client.TaxID, client.Email, client.CreatedAt.UTC())
	return err
}

// GetByID loads one client, (nil, nil) when missing.
func (r *ClientRepository) GetByID(ctx context.Context, id string) (*clients.Client, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("client repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT id, legal_name, COALESCE(tax_id, ''), COALESCE(email, ''), created_at
FROM clients WHERE id = $1`, id)

	var client clients.Client
	if err := row.Scan(&client.ID, &client.LegalName, &client.TaxID, &client.Email, &client.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &client, nil
}

// List returns all clients ordered by legal name.
func (r *ClientRepository) List(ctx context.Context) ([]clients.Client, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("client repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, legal_name, COALESCE(tax_id, ''), COALESCE(email, ''), created_at
FROM clients ORDER BY legal_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []clients.Client
	for rows.Next() {
		var client clients.Client
		if err := rows.Scan(&client.ID, &client.LegalName, &client.TaxID, &client.Email, &client.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, client)
	}
	return out, rows.Err()
}
