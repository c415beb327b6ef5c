package billing

import "errors"

var (
	// ErrDocumentNotFound is returned when a document id does not exist.
	ErrDocumentNotFound = errors.New("billing: document not found")
	// ErrNilDocument is returned when persisting a nil document.
	ErrNilDocument = errors.New("billing: nil document")
	// ErrEmptyNumber is returned when the document number is empty.
	ErrEmptyNumber = errors.New("billing: empty document number")
	// ErrInvalidIssueDate is returned when the issue date is zero.
	ErrInvalidIssueDate = errors.New("billing: invalid issue date")
	// ErrNonPositiveQuantity is returned when a line quantity is below one.
	ErrNonPositiveQuantity = errors.New("billing: quantity must be at least 1")
	// ErrNegativeUnitPrice is returned when a line unit price is negative.
	ErrNegativeUnitPrice = errors.New("billing: negative unit price")
	// ErrEmptyDescription is returned when a line description is empty.
	ErrEmptyDescription = errors.New("billing: empty line description")
	// ErrMissingParty is returned when neither client nor prospect is set.
	ErrMissingParty = errors.New("billing: missing party")
	// ErrAmbiguousParty is returned when both client and prospect are set.
	ErrAmbiguousParty = errors.New("billing: party must be client or prospect, not both")
	// ErrProspectNotAllowed is returned when an invoice targets a prospect.
	ErrProspectNotAllowed = errors.New("billing: prospect party is only allowed on quotes")
	// ErrUnknownKind is returned for a kind outside invoice/quote.
	ErrUnknownKind = errors.New("billing: unknown document kind")
	// ErrUnknownStatus is returned for a status outside the kind's state set.
	ErrUnknownStatus = errors.New("billing: unknown status for document kind")
	// ErrExternalRefNotAllowed is returned when a quote carries a folio reference.
	ErrExternalRefNotAllowed = errors.New("billing: external reference is only allowed on invoices")
)
