package payments

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	stripe "github.com/stripe/stripe-go/v81"
	"go.uber.org/zap"
)

// Transaction CSV layout: a header row, then the transaction ID in the second
// column and its status in the fifth.
const (
	csvIDColumn     = 1
	csvStatusColumn = 4
	csvRefundable   = "succeeded"
)

// Refund refunds a charge (ch_...) or a payment intent (pi_...). amount is in
// the currency's minor unit; zero refunds the full remaining amount.
func (c *Client) Refund(ctx context.Context, txID string, amount int64) (*stripe.Refund, error) {
	params := &stripe.RefundParams{Params: stripe.Params{Context: ctx}}
	switch {
	case strings.HasPrefix(txID, "ch_"):
		params.Charge = stripe.String(txID)
	case strings.HasPrefix(txID, "pi_"):
		params.PaymentIntent = stripe.String(txID)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedTransaction, txID)
	}
	if amount < 0 {
		return nil, fmt.Errorf("refund amount must not be negative, got %d", amount)
	}
	if amount > 0 {
		params.Amount = stripe.Int64(amount)
	}
	params.SetIdempotencyKey(c.idempotencyKey())

	r, err := c.api.Refunds.New(params)
	if err != nil {
		return nil, wrap("refund", err)
	}
	c.log.Info("refund created",
		zap.String("transaction", txID),
		zap.String("refund", r.ID),
		zap.Int64("amount", r.Amount),
		zap.String("status", string(r.Status)))
	return r, nil
}

// RefundResult is the outcome for one transaction of a batch refund.
type RefundResult struct {
	TransactionID string
	Refund        *stripe.Refund
	Err           error
}

// RefundFile refunds every succeeded transaction listed in the CSV file at
// path. A failed refund does not stop the batch; check each result's Err.
func (c *Client) RefundFile(ctx context.Context, path string, amount int64) ([]RefundResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening transaction file: %w", err)
	}
	defer f.Close()

	ids, err := refundableIDs(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	results := make([]RefundResult, 0, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		r, err := c.Refund(ctx, id, amount)
		if err != nil {
			c.log.Warn("refund failed", zap.String("transaction", id), zap.Error(err))
		}
		results = append(results, RefundResult{TransactionID: id, Refund: r, Err: err})
	}
	return results, nil
}

func refundableIDs(r io.Reader) ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var ids []string
	header := true
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if header {
			header = false
			continue
		}
		if len(rec) <= csvStatusColumn {
			continue
		}
		if strings.TrimSpace(rec[csvStatusColumn]) == csvRefundable {
			ids = append(ids, strings.TrimSpace(rec[csvIDColumn]))
		}
	}
	return ids, nil
}
