// Package payments is a thin layer over stripe-go for the handful of calls
// payctl makes: refunds, webhook endpoints, account info and products.
// Pagination, retries and request signing are left to stripe-go.
package payments

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	stripe "github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
	"go.uber.org/zap"
)

// Options configures a Client.
type Options struct {
	SecretKey string
	// BaseURL overrides the Stripe API endpoint, e.g. for a local stub.
	BaseURL           string
	HTTPClient        *http.Client
	MaxNetworkRetries int64
	Logger            *zap.Logger
}

// Client issues Stripe API calls with a per-client key and backend, so it
// never touches stripe-go's global state.
type Client struct {
	api            *client.API
	log            *zap.Logger
	idempotencyKey func() string
}

// New builds a Client. stripe-go's own logging goes through opts.Logger.
func New(opts Options) (*Client, error) {
	if opts.SecretKey == "" {
		return nil, errors.New("stripe secret key is required")
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	cfg := &stripe.BackendConfig{
		HTTPClient:        opts.HTTPClient,
		LeveledLogger:     log.Named("stripe").Sugar(),
		MaxNetworkRetries: stripe.Int64(opts.MaxNetworkRetries),
	}
	if opts.BaseURL != "" {
		cfg.URL = stripe.String(opts.BaseURL)
	}
	backends := &stripe.Backends{
		API:     stripe.GetBackendWithConfig(stripe.APIBackend, cfg),
		Connect: stripe.GetBackendWithConfig(stripe.ConnectBackend, cfg),
		Uploads: stripe.GetBackendWithConfig(stripe.UploadsBackend, cfg),
	}

	return &Client{
		api:            client.New(opts.SecretKey, backends),
		log:            log,
		idempotencyKey: uuid.NewString,
	}, nil
}
