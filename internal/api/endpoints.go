package api

import (
	"context"
	"net/http"

	"github.com/postwave/client-go/internal/apierrors"
)

// Every Postwave operation is a POST, which keeps the whole surface outside
// the pipeline's retry eligibility by construction.

// SendEmail submits an email for delivery.
func (c *Client) SendEmail(ctx context.Context, req *SendEmailRequest) (*SendEmailResponse, error) {
	var result SendEmailResponse
	if err := c.Do(ctx, http.MethodPost, "/v1/email/send", req, &result); err != nil {
		return nil, apierrors.WithResourceType(err, apierrors.ResourceMessage)
	}
	return &result, nil
}

// SetWebhook creates or replaces the webhook subscription for a URL.
func (c *Client) SetWebhook(ctx context.Context, req *SetWebhookRequest) (*WebhookDTO, error) {
	var result WebhookDTO
	if err := c.Do(ctx, http.MethodPost, "/v1/webhook/set", req, &result); err != nil {
		return nil, apierrors.WithResourceType(err, apierrors.ResourceWebhook)
	}
	return &result, nil
}

// GetWebhook returns the webhook subscription for a URL.
func (c *Client) GetWebhook(ctx context.Context, url string) (*WebhookDTO, error) {
	var result WebhookDTO
	if err := c.Do(ctx, http.MethodPost, "/v1/webhook/get", &GetWebhookRequest{URL: url}, &result); err != nil {
		return nil, apierrors.WithResourceType(err, apierrors.ResourceWebhook)
	}
	return &result, nil
}

// ListWebhooks returns a page of webhook subscriptions.
func (c *Client) ListWebhooks(ctx context.Context, req *ListWebhooksRequest) (*ListWebhooksResponse, error) {
	var result ListWebhooksResponse
	if err := c.Do(ctx, http.MethodPost, "/v1/webhook/list", req, &result); err != nil {
		return nil, apierrors.WithResourceType(err, apierrors.ResourceWebhook)
	}
	return &result, nil
}

// DeleteWebhook removes the webhook subscription for a URL.
func (c *Client) DeleteWebhook(ctx context.Context, url string) error {
	err := c.Do(ctx, http.MethodPost, "/v1/webhook/delete", &DeleteWebhookRequest{URL: url}, nil)
	return apierrors.WithResourceType(err, apierrors.ResourceWebhook)
}

// QueryStats returns aggregated delivery statistics for a period.
func (c *Client) QueryStats(ctx context.Context, req *StatsRequest) (*StatsResponse, error) {
	var result StatsResponse
	if err := c.Do(ctx, http.MethodPost, "/v1/stats/query", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
