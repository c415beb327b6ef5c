package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	billing "billing-cloud/internal/billing/domain"
	"billing-cloud/internal/mailer"
	"billing-cloud/internal/observability/metrics"
)

// ErrEmptyRecipient is returned when no recipient can be resolved.
var ErrEmptyRecipient = errors.New("send service: no recipient email")

// DocumentRenderer produces the binary PDF for a document.
type DocumentRenderer interface {
	Render(doc *billing.Document) ([]byte, error)
}

// SendService emails a rendered document to its recipient.
type SendService struct {
	documents *DocumentService
	renderer  DocumentRenderer
	mail      mailer.Sender
}

// NewSendService constructs the service.
func NewSendService(documents *DocumentService, renderer DocumentRenderer, mail mailer.Sender) (*SendService, error) {
	if documents == nil {
		return nil, errors.New("send service: nil document service")
	}
	if renderer == nil {
		return nil, errors.New("send service: nil renderer")
	}
	if mail == nil {
		return nil, errors.New("send service: nil mailer")
	}
	return &SendService{documents: documents, renderer: renderer, mail: mail}, nil
}

// Send renders the document and delivers it as a PDF attachment. An empty
// recipient falls back to the party email. A successful delivery marks the
// document as sent.
func (s *SendService) Send(ctx context.Context, kind billing.Kind, id, recipient string) error {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveDocumentSend(string(kind), result, time.Since(start))
	}()

	doc, err := s.documents.Get(ctx, kind, id)
	if err != nil {
		result = metrics.ResultError
		return err
	}
	if recipient == "" {
		recipient = doc.Party.Email()
	}
	if recipient == "" {
		result = metrics.ResultError
		return ErrEmptyRecipient
	}

	data, err := s.renderer.Render(doc)
	if err != nil {
		result = metrics.ResultError
		return fmt.Errorf("render document %s: %w", id, err)
	}

	subject := "Factura " + doc.Number
	filename := "factura-" + doc.Number + ".pdf"
	if kind == billing.KindQuote {
		subject = "Cotización " + doc.Number
		filename = "cotizacion-" + doc.Number + ".pdf"
	}

	msg := mailer.Message{
		To:      recipient,
		Subject: subject,
		HTML:    sendBodyHTML(doc),
		Attachments: []mailer.Attachment{
			{Filename: filename, ContentType: "application/pdf", Data: data},
		},
	}
	if err := s.mail.Send(ctx, msg); err != nil {
		result = metrics.ResultError
		return err
	}

	_, err = s.documents.ChangeStatus(ctx, kind, id, billing.StatusSent)
	if err != nil {
		result = metrics.ResultError
	}
	return err
}

func sendBodyHTML(doc *billing.Document) string {
	name := doc.Party.DisplayName()
	if name == "" {
		name = "Estimado cliente"
	}
	label := "factura"
	if doc.Kind == billing.KindQuote {
		label = "cotización"
	}
	return fmt.Sprintf(
		"<p>Estimado/a %s,</p><p>Adjuntamos la %s <strong>%s</strong> emitida el %s.</p><p>Saludos cordiales.</p>",
		name, label, doc.Number, doc.IssueDate.Format("02-01-2006"))
}
