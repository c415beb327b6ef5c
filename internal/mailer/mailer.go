package mailer

import "context"

// Attachment is a binary file attached to a message.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Message is one outbound email. Delivery confirmation, bounces and
// retries are the provider's concern, not this service's.
type Message struct {
	To          string
	Subject     string
	HTML        string
	Attachments []Attachment
}

// Sender delivers messages through a transactional email provider.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
