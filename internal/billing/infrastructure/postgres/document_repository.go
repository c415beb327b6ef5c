package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	billing "billing-cloud/internal/billing/domain"
)

// DocumentRepository is a Postgres implementation of the document store.
type DocumentRepository struct {
	db *sql.DB
}

// NewDocumentRepository constructs a repository.
func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Create inserts a document with its line items in one transaction.
func (r *DocumentRepository) Create(ctx context.Context, doc *billing.Document) error {
	if r == nil || r.db == nil {
		return errors.New("document repo: nil db")
	}
	if doc == nil {
		return billing.ErrNilDocument
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var clientID, clientName, clientTaxID, clientEmail sql.NullString
	var prospectName, prospectEmail sql.NullString
	if doc.Party.Client != nil {
		clientID = nullable(doc.Party.Client.ID)
		clientName = nullable(doc.Party.Client.LegalName)
		clientTaxID = nullable(doc.Party.Client.TaxID)
		clientEmail = nullable(doc.Party.Client.Email)
	}
	if doc.Party.Prospect != nil {
		prospectName = nullable(doc.Party.Prospect.Name)
		prospectEmail = nullable(doc.Party.Prospect.Email)
	}

	_, err = tx.ExecContext(ctx, `
INSERT INTO documents (
	id, kind, number, external_ref, issue_date, due_date, status,
	client_id, client_name, client_tax_id, client_email,
	prospect_name, prospect_email,
	subtotal, tax_applied, tax, total, notes, created_at, updated_at
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20
)`,
		doc.ID, string(doc.Kind), doc.Number, nullable(doc.ExternalRef),
		doc.IssueDate.UTC(), doc.DueDate.UTC(), string(doc.Status),
		clientID, clientName, clientTaxID, clientEmail,
		prospectName, prospectEmail,
		doc.Totals.Subtotal, doc.Totals.TaxApplied, doc.Totals.Tax, doc.Totals.Total,
		nullable(doc.Notes), doc.CreatedAt.UTC(), doc.UpdatedAt.UTC())
	if err != nil {
		return err
	}

	for position, item := range doc.Items {
		_, err = tx.ExecContext(ctx, `
INSERT INTO document_items (document_id, position, service_ref, category, description, quantity, unit_price)
VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			doc.ID, position, nullable(item.ServiceRef), nullable(item.Category), item.Description, item.Quantity, item.UnitPrice)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetByID loads one document with its items, (nil, nil) when missing.
func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*billing.Document, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("document repo: nil db")
	}
	if id == "" {
		return nil, billing.ErrDocumentNotFound
	}

	row := r.db.QueryRowContext(ctx, `
SELECT id, kind, number, external_ref, issue_date, due_date, status,
	client_id, client_name, client_tax_id, client_email,
	prospect_name, prospect_email,
	subtotal, tax_applied, tax, total, notes, created_at, updated_at
FROM documents
WHERE id = $1`, id)

	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	items, err := r.listItems(ctx, []string{doc.ID})
	if err != nil {
		return nil, err
	}
	doc.Items = items[doc.ID]
	return doc, nil
}

// List returns documents matching the filter ordered by issue date,
// items and party included.
func (r *DocumentRepository) List(ctx context.Context, filter billing.ListFilter) ([]billing.Document, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("document repo: nil db")
	}

	query := `
SELECT id, kind, number, external_ref, issue_date, due_date, status,
	client_id, client_name, client_tax_id, client_email,
	prospect_name, prospect_email,
	subtotal, tax_applied, tax, total, notes, created_at, updated_at
FROM documents
WHERE ($1 = '' OR kind = $1)
  AND ($2 = '' OR status = $2)
  AND ($3::timestamptz IS NULL OR issue_date >= $3)
  AND ($4::timestamptz IS NULL OR issue_date <= $4)
ORDER BY issue_date, created_at`

	rows, err := r.db.QueryContext(ctx, query,
		string(filter.Kind), string(filter.Status),
		nullableTime(filter.IssuedFrom), nullableTime(filter.IssuedUntil))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []billing.Document
	var ids []string
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
		ids = append(ids, doc.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}

	items, err := r.listItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range docs {
		docs[i].Items = items[docs[i].ID]
	}
	return docs, nil
}

// UpdateStatus changes the document status.
func (r *DocumentRepository) UpdateStatus(ctx context.Context, id string, status billing.Status, now time.Time) error {
	if r == nil || r.db == nil {
		return errors.New("document repo: nil db")
	}
	result, err := r.db.ExecContext(ctx, `
UPDATE documents SET status = $2, updated_at = $3 WHERE id = $1`,
		id, string(status), now.UTC())
	if err != nil {
		return err
	}
	return requireRow(result)
}

// UpdateExternalRef records the tax-authority folio on an invoice.
func (r *DocumentRepository) UpdateExternalRef(ctx context.Context, id, ref string, now time.Time) error {
	if r == nil || r.db == nil {
		return errors.New("document repo: nil db")
	}
	result, err := r.db.ExecContext(ctx, `
UPDATE documents SET external_ref = $2, updated_at = $3 WHERE id = $1`,
		id, nullable(ref), now.UTC())
	if err != nil {
		return err
	}
	return requireRow(result)
}

func (r *DocumentRepository) listItems(ctx context.Context, ids []string) (map[string][]billing.LineItem, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT document_id, service_ref, category, description, quantity, unit_price
FROM document_items
WHERE document_id = ANY($1)
ORDER BY document_id, position`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]billing.LineItem, len(ids))
	for rows.Next() {
		var docID string
		var serviceRef, category sql.NullString
		var item billing.LineItem
		if err := rows.Scan(&docID, &serviceRef, &category, &item.Description, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, err
		}
		item.ServiceRef = serviceRef.String
		item.Category = category.String
		out[docID] = append(out[docID], item)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*billing.Document, error) {
	var doc billing.Document
	var kind, status string
	var externalRef, notes sql.NullString
	var clientID, clientName, clientTaxID, clientEmail sql.NullString
	var prospectName, prospectEmail sql.NullString

	err := row.Scan(&doc.ID, &kind, &doc.Number, &externalRef, &doc.IssueDate, &doc.DueDate, &status,
		&clientID, &clientName, &clientTaxID, &clientEmail,
		&prospectName, &prospectEmail,
		&doc.Totals.Subtotal, &doc.Totals.TaxApplied, &doc.Totals.Tax, &doc.Totals.Total,
		&notes, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return nil, err
	}

	doc.Kind = billing.Kind(kind)
	doc.Status = billing.Status(status)
	doc.ExternalRef = externalRef.String
	doc.Notes = notes.String
	if clientID.Valid {
		doc.Party.Client = &billing.ClientRef{
			ID:        clientID.String,
			LegalName: clientName.String,
			TaxID:     clientTaxID.String,
			Email:     clientEmail.String,
		}
	} else if prospectName.Valid {
		doc.Party.Prospect = &billing.Prospect{
			Name:  prospectName.String,
			Email: prospectEmail.String,
		}
	}
	return &doc, nil
}

func requireRow(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return billing.ErrDocumentNotFound
	}
	return nil
}

func nullable(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}

func nullableTime(value time.Time) sql.NullTime {
	return sql.NullTime{Time: value.UTC(), Valid: !value.IsZero()}
}
