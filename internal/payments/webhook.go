package payments

import (
	"context"
	"fmt"
	"strings"

	stripe "github.com/stripe/stripe-go/v81"
	"go.uber.org/zap"
)

// AllEvents subscribes an endpoint to every event type.
const AllEvents = "*"

// WebhookURL joins a domain and a path with exactly one slash between them.
func WebhookURL(domain, path string) string {
	return strings.TrimRight(domain, "/") + "/" + strings.TrimLeft(path, "/")
}

// CreateWebhook registers url for events, or for every event when events is
// empty. It fails with ErrWebhookExists when url is already registered.
func (c *Client) CreateWebhook(ctx context.Context, url string, events []string) (*stripe.WebhookEndpoint, error) {
	existing, err := c.ListWebhooks(ctx)
	if err != nil {
		return nil, err
	}
	for _, ep := range existing {
		if ep.URL == url {
			return ep, fmt.Errorf("%w: %s (%s)", ErrWebhookExists, ep.ID, url)
		}
	}

	if len(events) == 0 {
		events = []string{AllEvents}
	}
	params := &stripe.WebhookEndpointParams{
		Params:        stripe.Params{Context: ctx},
		URL:           stripe.String(url),
		EnabledEvents: stripe.StringSlice(events),
	}
	ep, err := c.api.WebhookEndpoints.New(params)
	if err != nil {
		return nil, wrap("create webhook", err)
	}
	c.log.Info("webhook created", zap.String("id", ep.ID), zap.String("url", ep.URL))
	return ep, nil
}

// ListWebhooks returns every registered webhook endpoint.
func (c *Client) ListWebhooks(ctx context.Context) ([]*stripe.WebhookEndpoint, error) {
	params := &stripe.WebhookEndpointListParams{ListParams: stripe.ListParams{Context: ctx}}
	it := c.api.WebhookEndpoints.List(params)

	var endpoints []*stripe.WebhookEndpoint
	for it.Next() {
		endpoints = append(endpoints, it.WebhookEndpoint())
	}
	if err := it.Err(); err != nil {
		return nil, wrap("list webhooks", err)
	}
	return endpoints, nil
}

// DeleteWebhook removes the endpoint with the given ID.
func (c *Client) DeleteWebhook(ctx context.Context, id string) (*stripe.WebhookEndpoint, error) {
	ep, err := c.api.WebhookEndpoints.Del(id, &stripe.WebhookEndpointParams{Params: stripe.Params{Context: ctx}})
	if err != nil {
		return nil, wrap("delete webhook", err)
	}
	c.log.Info("webhook deleted", zap.String("id", id))
	return ep, nil
}
