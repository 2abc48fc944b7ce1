package postwave

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/postwave/client-go/internal/api"
)

// EmailMessage is an outbound transactional email.
type EmailMessage struct {
	FromEmail string
	FromName  string
	Subject   string

	To  []string
	CC  []string
	BCC []string

	// At least one of BodyHTML and BodyText must be set.
	BodyHTML string
	BodyText string

	Headers     map[string]string
	Attachments []Attachment

	TrackOpens  bool
	TrackClicks bool

	// Metadata is echoed back in delivery statistics and callbacks.
	Metadata map[string]string
}

// Attachment is a file attached to an outbound message.
type Attachment struct {
	Name        string
	ContentType string
	Content     []byte
}

// SendResult reports the outcome of a send operation.
type SendResult struct {
	// JobID identifies the accepted send job.
	JobID string
	// Accepted lists the recipients the API took responsibility for.
	Accepted []string
	// Rejected maps refused recipient addresses to the refusal reason.
	Rejected map[string]string
}

// validate fails fast on messages the API would reject, before a rate
// limiter permit is spent on them.
func (m *EmailMessage) validate() error {
	if m == nil {
		return fmt.Errorf("%w: message is nil", ErrInvalidMessage)
	}
	if m.FromEmail == "" {
		return fmt.Errorf("%w: FromEmail is required", ErrInvalidMessage)
	}
	if m.Subject == "" {
		return fmt.Errorf("%w: Subject is required", ErrInvalidMessage)
	}
	if len(m.To) == 0 {
		return fmt.Errorf("%w: at least one recipient is required", ErrInvalidMessage)
	}
	if m.BodyHTML == "" && m.BodyText == "" {
		return fmt.Errorf("%w: at least one of BodyHTML and BodyText is required", ErrInvalidMessage)
	}
	for _, a := range m.Attachments {
		if a.Name == "" {
			return fmt.Errorf("%w: attachment name is required", ErrInvalidMessage)
		}
		if len(a.Content) == 0 {
			return fmt.Errorf("%w: attachment %q has no content", ErrInvalidMessage, a.Name)
		}
	}
	return nil
}

// SendEmail submits a message for delivery. Sending is a POST and is never
// retried by the pipeline, under any configuration: a duplicate send is a
// correctness violation, not a tuning choice. Callers that want redelivery
// must resubmit explicitly.
func (c *Client) SendEmail(ctx context.Context, msg *EmailMessage) (*SendResult, error) {
	if err := c.checkClosed(); err != nil {
		return nil, err
	}
	if err := msg.validate(); err != nil {
		return nil, err
	}

	req := &api.SendEmailRequest{
		Message: api.EmailMessageDTO{
			FromEmail:   msg.FromEmail,
			FromName:    msg.FromName,
			Subject:     msg.Subject,
			To:          msg.To,
			CC:          msg.CC,
			BCC:         msg.BCC,
			BodyHTML:    msg.BodyHTML,
			BodyPlain:   msg.BodyText,
			Headers:     msg.Headers,
			TrackOpens:  msg.TrackOpens,
			TrackClicks: msg.TrackClicks,
			Metadata:    msg.Metadata,
		},
	}
	for _, a := range msg.Attachments {
		req.Message.Attachments = append(req.Message.Attachments, api.AttachmentDTO{
			Name:        a.Name,
			ContentType: a.ContentType,
			Content:     base64.StdEncoding.EncodeToString(a.Content),
		})
	}

	resp, err := c.apiClient.SendEmail(ctx, req)
	if err != nil {
		return nil, wrapError(err)
	}

	return &SendResult{
		JobID:    resp.JobID,
		Accepted: resp.Accepted,
		Rejected: resp.Rejected,
	}, nil
}
