package payments

import (
	"context"
	"strings"

	stripe "github.com/stripe/stripe-go/v81"
	"golang.org/x/sync/errgroup"
)

// AccountInfo is the account the secret key belongs to and its balance.
type AccountInfo struct {
	Account *stripe.Account
	Balance *stripe.Balance
}

// AccountInfo fetches the account and its balance in parallel. stripe-go's
// account lookup takes no params, so only the balance call sees ctx.
func (c *Client) AccountInfo(ctx context.Context) (*AccountInfo, error) {
	var info AccountInfo
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		acct, err := c.api.Accounts.Get()
		if err != nil {
			return wrap("get account", err)
		}
		info.Account = acct
		return nil
	})
	g.Go(func() error {
		bal, err := c.api.Balance.Get(&stripe.BalanceParams{Params: stripe.Params{Context: gctx}})
		if err != nil {
			return wrap("get balance", err)
		}
		info.Balance = bal
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &info, nil
}

// Available returns the available balance in currency, in minor units.
// Currency codes compare case-insensitively.
func (i *AccountInfo) Available(currency string) int64 {
	if i.Balance == nil {
		return 0
	}
	return sumAmounts(i.Balance.Available, currency)
}

// Pending returns the pending balance in currency, in minor units.
func (i *AccountInfo) Pending(currency string) int64 {
	if i.Balance == nil {
		return 0
	}
	return sumAmounts(i.Balance.Pending, currency)
}

func sumAmounts(amounts []*stripe.Amount, currency string) int64 {
	var total int64
	for _, a := range amounts {
		if strings.EqualFold(string(a.Currency), currency) {
			total += a.Amount
		}
	}
	return total
}
