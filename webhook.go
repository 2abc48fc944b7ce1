package postwave

import (
	"context"
	"fmt"
	"time"

	"github.com/postwave/client-go/internal/api"
	"github.com/postwave/client-go/internal/apierrors"
)

// WebhookConfig describes a webhook subscription to create or replace.
// Subscriptions are keyed by callback URL: setting a webhook for an
// already-subscribed URL replaces its event list.
type WebhookConfig struct {
	// URL is the callback endpoint Postwave will POST events to.
	URL string
	// Events selects which subscription events are delivered. The closed
	// SubscriptionEvent type is the only accepted input: the API silently
	// accepts unrecognized event names and then never delivers anything,
	// so free-form strings are not representable here.
	Events []SubscriptionEvent
	// SingleEvent requests one callback POST per event instead of batches.
	SingleEvent bool
	// MaxParallel caps concurrent callback deliveries to the URL.
	MaxParallel int
}

// Webhook is a webhook subscription as known to the API.
type Webhook struct {
	URL         string
	Events      []SubscriptionEvent
	SingleEvent bool
	MaxParallel int
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (cfg *WebhookConfig) validate() error {
	if cfg == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidWebhookConfig)
	}
	if cfg.URL == "" {
		return fmt.Errorf("%w: URL is required", ErrInvalidWebhookConfig)
	}
	if len(cfg.Events) == 0 {
		return fmt.Errorf("%w: at least one event is required", ErrInvalidWebhookConfig)
	}
	for _, e := range cfg.Events {
		if !e.Valid() {
			return fmt.Errorf("%w: undefined subscription event %q", ErrInvalidWebhookConfig, string(e))
		}
	}
	if cfg.MaxParallel < 0 {
		return fmt.Errorf("%w: MaxParallel must not be negative", ErrInvalidWebhookConfig)
	}
	return nil
}

// SetWebhook creates or replaces the webhook subscription for cfg.URL.
func (c *Client) SetWebhook(ctx context.Context, cfg *WebhookConfig) (*Webhook, error) {
	if err := c.checkClosed(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	req := &api.SetWebhookRequest{
		URL:         cfg.URL,
		Events:      subscriptionEventStrings(cfg.Events),
		SingleEvent: cfg.SingleEvent,
		MaxParallel: cfg.MaxParallel,
	}
	dto, err := c.apiClient.SetWebhook(ctx, req)
	if err != nil {
		return nil, wrapError(err)
	}
	return webhookFromDTO(dto)
}

// GetWebhook returns the subscription for a callback URL. A missing
// subscription matches ErrWebhookNotFound.
func (c *Client) GetWebhook(ctx context.Context, url string) (*Webhook, error) {
	if err := c.checkClosed(); err != nil {
		return nil, err
	}
	dto, err := c.apiClient.GetWebhook(ctx, url)
	if err != nil {
		return nil, wrapError(err)
	}
	return webhookFromDTO(dto)
}

// ListWebhooks returns the account's webhook subscriptions.
func (c *Client) ListWebhooks(ctx context.Context, opts ...ListWebhooksOption) ([]*Webhook, error) {
	if err := c.checkClosed(); err != nil {
		return nil, err
	}

	cfg := &listWebhooksConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	resp, err := c.apiClient.ListWebhooks(ctx, &api.ListWebhooksRequest{
		Limit:  cfg.limit,
		Offset: cfg.offset,
	})
	if err != nil {
		return nil, wrapError(err)
	}

	webhooks := make([]*Webhook, 0, len(resp.Webhooks))
	for i := range resp.Webhooks {
		wh, err := webhookFromDTO(&resp.Webhooks[i])
		if err != nil {
			return nil, err
		}
		webhooks = append(webhooks, wh)
	}
	return webhooks, nil
}

// DeleteWebhook removes the subscription for a callback URL.
func (c *Client) DeleteWebhook(ctx context.Context, url string) error {
	if err := c.checkClosed(); err != nil {
		return err
	}
	return wrapError(c.apiClient.DeleteWebhook(ctx, url))
}

func subscriptionEventStrings(events []SubscriptionEvent) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = string(e)
	}
	return out
}

// webhookFromDTO maps a wire subscription to the public type. Subscription
// event names are strict in both directions: an event name this client does
// not define means the response cannot be represented faithfully, which is
// a malformed response rather than something to drop silently.
func webhookFromDTO(dto *api.WebhookDTO) (*Webhook, error) {
	events := make([]SubscriptionEvent, 0, len(dto.Events))
	for _, s := range dto.Events {
		e, err := ParseSubscriptionEvent(s)
		if err != nil {
			return nil, wrapError(&apierrors.MalformedResponseError{Err: err})
		}
		events = append(events, e)
	}
	return &Webhook{
		URL:         dto.URL,
		Events:      events,
		SingleEvent: dto.SingleEvent,
		MaxParallel: dto.MaxParallel,
		Status:      dto.Status,
		CreatedAt:   dto.CreatedAt,
		UpdatedAt:   dto.UpdatedAt,
	}, nil
}
