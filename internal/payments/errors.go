package payments

import (
	"errors"
	"fmt"

	stripe "github.com/stripe/stripe-go/v81"
)

var (
	// ErrUnsupportedTransaction is returned for transaction IDs that are
	// neither charges (ch_) nor payment intents (pi_).
	ErrUnsupportedTransaction = errors.New("unsupported transaction id")
	// ErrWebhookExists is returned when an endpoint with the same URL is
	// already registered.
	ErrWebhookExists = errors.New("webhook endpoint already exists")
	// ErrProductNotFound is returned when no product has the given name.
	ErrProductNotFound = errors.New("product not found")
)

// Error is a failed Stripe call.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	var se *stripe.Error
	if errors.As(e.Err, &se) && se.Msg != "" {
		if se.Code != "" {
			return fmt.Sprintf("stripe %s: %s (%s)", e.Op, se.Msg, se.Code)
		}
		return fmt.Sprintf("stripe %s: %s", e.Op, se.Msg)
	}
	return fmt.Sprintf("stripe %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}
