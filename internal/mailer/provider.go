package mailer

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

type providerPayload struct {
	From        string               `json:"from"`
	To          string               `json:"to"`
	Subject     string               `json:"subject"`
	HTML        string               `json:"html"`
	Attachments []providerAttachment `json:"attachments,omitempty"`
}

type providerAttachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Content     string `json:"content"`
}

// ProviderChannel sends messages to an HTTP email provider endpoint.
type ProviderChannel struct {
	url    string
	apiKey string
	from   string
	client *http.Client
}

// ProviderOption configures the provider channel.
type ProviderOption func(*ProviderChannel)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) ProviderOption {
	return func(ch *ProviderChannel) {
		if client != nil {
			ch.client = client
		}
	}
}

// NewProviderChannel constructs a provider channel.
func NewProviderChannel(url, apiKey, from string, opts ...ProviderOption) (*ProviderChannel, error) {
	if url == "" {
		return nil, errors.New("mailer: empty provider url")
	}
	if from == "" {
		return nil, errors.New("mailer: empty sender address")
	}
	channel := &ProviderChannel{
		url:    url,
		apiKey: apiKey,
		from:   from,
		client: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(channel)
	}
	return channel, nil
}

// Send posts the message as JSON with base64 attachments. Non-2xx
// responses are reported as errors; no retry is attempted here.
func (c *ProviderChannel) Send(ctx context.Context, msg Message) error {
	if c == nil || c.url == "" {
		return errors.New("mailer: empty provider url")
	}
	if msg.To == "" {
		return errors.New("mailer: empty recipient")
	}

	payload := providerPayload{
		From:    c.from,
		To:      msg.To,
		Subject: msg.Subject,
		HTML:    msg.HTML,
	}
	for _, attachment := range msg.Attachments {
		payload.Attachments = append(payload.Attachments, providerAttachment{
			Filename:    attachment.Filename,
			ContentType: attachment.ContentType,
			Content:     base64.StdEncoding.EncodeToString(attachment.Data),
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("mailer: non-2xx response %d", resp.StatusCode)
	}
	return nil
}
