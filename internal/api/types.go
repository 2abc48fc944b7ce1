package api

import "time"

// EmailMessageDTO is the wire form of an outbound email message.
type EmailMessageDTO struct {
	FromEmail   string            `json:"from_email"`
	FromName    string            `json:"from_name,omitempty"`
	Subject     string            `json:"subject"`
	To          []string          `json:"to"`
	CC          []string          `json:"cc,omitempty"`
	BCC         []string          `json:"bcc,omitempty"`
	BodyHTML    string            `json:"body_html,omitempty"`
	BodyPlain   string            `json:"body_plain,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
	Attachments []AttachmentDTO   `json:"attachments,omitempty"`
	TrackOpens  bool              `json:"track_opens,omitempty"`
	TrackClicks bool              `json:"track_clicks,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// AttachmentDTO is the wire form of a file attachment.
type AttachmentDTO struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type,omitempty"`
	Content     string `json:"content"` // base64
}

// SendEmailRequest is the body of POST /v1/email/send.
type SendEmailRequest struct {
	Message EmailMessageDTO `json:"message"`
}

// SendEmailResponse is the data field of the /v1/email/send envelope.
type SendEmailResponse struct {
	JobID    string            `json:"job_id"`
	Accepted []string          `json:"accepted"`
	Rejected map[string]string `json:"rejected,omitempty"`
}

// WebhookDTO is the wire form of a webhook subscription. Subscriptions are
// keyed by callback URL.
type WebhookDTO struct {
	URL         string    `json:"url"`
	Events      []string  `json:"events"`
	SingleEvent bool      `json:"single_event,omitempty"`
	MaxParallel int       `json:"max_parallel,omitempty"`
	Status      string    `json:"status,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitzero"`
	UpdatedAt   time.Time `json:"updated_at,omitzero"`
}

// SetWebhookRequest is the body of POST /v1/webhook/set. Setting a webhook
// for an already-subscribed URL replaces the subscription.
type SetWebhookRequest struct {
	URL         string   `json:"url"`
	Events      []string `json:"events"`
	SingleEvent bool     `json:"single_event,omitempty"`
	MaxParallel int      `json:"max_parallel,omitempty"`
}

// GetWebhookRequest is the body of POST /v1/webhook/get.
type GetWebhookRequest struct {
	URL string `json:"url"`
}

// ListWebhooksRequest is the body of POST /v1/webhook/list.
type ListWebhooksRequest struct {
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// ListWebhooksResponse is the data field of the /v1/webhook/list envelope.
type ListWebhooksResponse struct {
	Webhooks []WebhookDTO `json:"webhooks"`
	Total    int          `json:"total"`
}

// DeleteWebhookRequest is the body of POST /v1/webhook/delete.
type DeleteWebhookRequest struct {
	URL string `json:"url"`
}

// StatsRequest is the body of POST /v1/stats/query. Dates are wire-formatted
// as RFC 3339 strings.
type StatsRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
	JobID string `json:"job_id,omitempty"`
}

// StatsResponse is the data field of the /v1/stats/query envelope.
type StatsResponse struct {
	Start          string `json:"start"`
	End            string `json:"end"`
	Processed      int64  `json:"processed"`
	Delivered      int64  `json:"delivered"`
	HardBounced    int64  `json:"hard_bounced"`
	SoftBounced    int64  `json:"soft_bounced"`
	Opened         int64  `json:"opened"`
	Clicked        int64  `json:"clicked"`
	Unsubscribed   int64  `json:"unsubscribed"`
	SpamComplaints int64  `json:"spam_complaints"`
}
