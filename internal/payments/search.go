package payments

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	stripe "github.com/stripe/stripe-go/v81"
	"go.uber.org/zap"
)

// ErrNoCriteria is returned by Search when nothing selects charges.
var ErrNoCriteria = errors.New("no search criteria: give transaction ids, emails, last4s, non-card or all")

// SearchParams selects charges. When TransactionIDs is set the charges are
// fetched directly and every other field is ignored. Otherwise a charge
// matches when it was created in [From, To] and either its email or its
// card's last four digits match.
type SearchParams struct {
	TransactionIDs []string
	Emails         []string
	Last4s         []string
	From, To       time.Time
	// NonCard returns every charge in the window not paid by card, e.g.
	// through a payment link.
	NonCard bool
	// All returns every charge in the window.
	All bool
}

// Search finds charges for a support lookup. Results are deduplicated and
// keep the order in which they were found.
func (c *Client) Search(ctx context.Context, p SearchParams) ([]*stripe.Charge, error) {
	if len(p.TransactionIDs) > 0 {
		return c.chargesByID(ctx, p.TransactionIDs)
	}

	var found chargeSet
	switch {
	case p.All || p.NonCard:
		err := c.listCharges(ctx, p.From, p.To, func(ch *stripe.Charge) {
			if p.All || !paidByCard(ch) {
				found.add(ch)
			}
		})
		if err != nil {
			return nil, err
		}
		return found.charges, nil
	case len(p.Emails) == 0 && len(p.Last4s) == 0:
		return nil, ErrNoCriteria
	}

	window := createdClause(p.From, p.To)
	var unknownEmails []string
	for _, email := range p.Emails {
		email = strings.ToLower(strings.TrimSpace(email))
		id, err := c.customerByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if id == "" {
			unknownEmails = append(unknownEmails, email)
			continue
		}
		if err := c.searchCharges(ctx, "customer:"+quote(id)+" AND "+window, found.add); err != nil {
			return nil, err
		}
	}
	for _, last4 := range p.Last4s {
		q := "payment_method_details.card.last4:" + quote(strings.TrimSpace(last4)) + " AND " + window
		if err := c.searchCharges(ctx, q, found.add); err != nil {
			return nil, err
		}
	}

	// Guest checkouts have no customer object; only a scan of the window
	// finds them by billing or receipt email.
	if len(unknownEmails) > 0 {
		err := c.listCharges(ctx, p.From, p.To, func(ch *stripe.Charge) {
			email := ChargeEmail(ch)
			for _, e := range unknownEmails {
				if email == e {
					found.add(ch)
					return
				}
			}
		})
		if err != nil {
			return nil, err
		}
	}

	c.log.Debug("search finished", zap.Int("charges", len(found.charges)))
	return found.charges, nil
}

// chargesByID fetches each charge; unknown ids are skipped.
func (c *Client) chargesByID(ctx context.Context, ids []string) ([]*stripe.Charge, error) {
	var found chargeSet
	for _, id := range ids {
		ch, err := c.api.Charges.Get(id, &stripe.ChargeParams{Params: stripe.Params{Context: ctx}})
		if err != nil {
			var se *stripe.Error
			if errors.As(err, &se) && se.HTTPStatusCode == http.StatusNotFound {
				c.log.Info("charge not found", zap.String("id", id))
				continue
			}
			return nil, wrap("get charge", err)
		}
		found.add(ch)
	}
	return found.charges, nil
}

func (c *Client) customerByEmail(ctx context.Context, email string) (string, error) {
	params := &stripe.CustomerListParams{
		ListParams: stripe.ListParams{Context: ctx, Limit: stripe.Int64(1)},
		Email:      stripe.String(email),
	}
	it := c.api.Customers.List(params)
	if it.Next() {
		return it.Customer().ID, nil
	}
	if err := it.Err(); err != nil {
		return "", wrap("list customers", err)
	}
	return "", nil
}

func (c *Client) searchCharges(ctx context.Context, query string, fn func(*stripe.Charge)) error {
	params := &stripe.ChargeSearchParams{
		SearchParams: stripe.SearchParams{Context: ctx, Query: query},
	}
	it := c.api.Charges.Search(params)
	for it.Next() {
		fn(it.Charge())
	}
	if err := it.Err(); err != nil {
		return wrap("search charges", err)
	}
	return nil
}

func (c *Client) listCharges(ctx context.Context, from, to time.Time, fn func(*stripe.Charge)) error {
	params := &stripe.ChargeListParams{
		ListParams: stripe.ListParams{Context: ctx, Limit: stripe.Int64(100)},
		CreatedRange: &stripe.RangeQueryParams{
			GreaterThanOrEqual: from.Unix(),
			LesserThanOrEqual:  to.Unix(),
		},
	}
	it := c.api.Charges.List(params)
	for it.Next() {
		fn(it.Charge())
	}
	if err := it.Err(); err != nil {
		return wrap("list charges", err)
	}
	return nil
}

type chargeSet struct {
	seen    map[string]bool
	charges []*stripe.Charge
}

func (s *chargeSet) add(ch *stripe.Charge) {
	if s.seen == nil {
		s.seen = make(map[string]bool)
	}
	if s.seen[ch.ID] {
		return
	}
	s.seen[ch.ID] = true
	s.charges = append(s.charges, ch)
}

func createdClause(from, to time.Time) string {
	return fmt.Sprintf("created>=%d AND created<=%d", from.Unix(), to.Unix())
}

// quote renders a search query string value.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `\'`) + "'"
}

func paidByCard(ch *stripe.Charge) bool {
	return ch.PaymentMethodDetails != nil && ch.PaymentMethodDetails.Card != nil
}

// ChargeEmail returns the lowercased billing email of ch, falling back to
// the receipt email.
func ChargeEmail(ch *stripe.Charge) string {
	email := ch.ReceiptEmail
	if ch.BillingDetails != nil && ch.BillingDetails.Email != "" {
		email = ch.BillingDetails.Email
	}
	return strings.ToLower(email)
}

// RefundState is "none", "partially_refunded" or "fully_refunded".
func RefundState(ch *stripe.Charge) string {
	switch {
	case ch.AmountRefunded <= 0:
		return "none"
	case ch.AmountRefunded >= ch.Amount:
		return "fully_refunded"
	default:
		return "partially_refunded"
	}
}

// SearchWindow returns the creation window for a search. With from and to
// (YYYY-MM-DD) it spans both days in full. With only from it spans the day
// before through the day after. Otherwise kind picks a window ending
// tonight: 1 = last 15 days, 2 = 30, 3 = 60, 4 = 60 to 120 days ago,
// 5 = 120 to 180 days ago, anything else = last 7 days.
func SearchWindow(kind int, from, to string, now time.Time) (time.Time, time.Time, error) {
	const day = 24 * time.Hour
	loc := now.Location()
	if from != "" {
		start, err := time.ParseInLocation(time.DateOnly, from, loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid date %q: %w", from, err)
		}
		if to == "" {
			return start.Add(-day), start.Add(2*day - time.Second), nil
		}
		end, err := time.ParseInLocation(time.DateOnly, to, loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid date %q: %w", to, err)
		}
		return start, end.Add(day - time.Second), nil
	}

	y, m, d := now.Date()
	tonight := time.Date(y, m, d, 23, 59, 59, 0, loc)
	switch kind {
	case 1:
		return tonight.Add(-14 * day), tonight, nil
	case 2:
		return tonight.Add(-29 * day), tonight, nil
	case 3:
		return tonight.Add(-59 * day), tonight, nil
	case 4:
		return tonight.Add(-119 * day), tonight.Add(-60 * day), nil
	case 5:
		return tonight.Add(-179 * day), tonight.Add(-120 * day), nil
	default:
		return tonight.Add(-6 * day), tonight, nil
	}
}
