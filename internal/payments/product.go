package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	stripe "github.com/stripe/stripe-go/v81"
	"go.uber.org/zap"
)

// CreatedProduct is a product together with the prices created for it.
type CreatedProduct struct {
	Product *stripe.Product
	Prices  []*stripe.Price
}

// CreateProducts creates one product per name, each with one one-off price
// per amount. amounts are whole units of currency (5 means 5.00).
func (c *Client) CreateProducts(ctx context.Context, names []string, amounts []int, currency string) ([]CreatedProduct, error) {
	if len(names) == 0 {
		return nil, errors.New("no product names given")
	}
	if len(amounts) == 0 {
		return nil, errors.New("no prices configured")
	}
	for _, a := range amounts {
		if a <= 0 {
			return nil, fmt.Errorf("price must be positive, got %d", a)
		}
	}

	// Stripe expects lowercase ISO codes; LOCAL_CURRENCY may be "EUR".
	currency = strings.ToLower(currency)

	var created []CreatedProduct
	for _, name := range names {
		params := &stripe.ProductParams{
			Params: stripe.Params{Context: ctx},
			Name:   stripe.String(name),
		}
		params.SetIdempotencyKey(c.idempotencyKey())
		p, err := c.api.Products.New(params)
		if err != nil {
			return created, wrap("create product", err)
		}
		cp := CreatedProduct{Product: p}

		for _, amount := range amounts {
			pp := &stripe.PriceParams{
				Params:     stripe.Params{Context: ctx},
				Product:    stripe.String(p.ID),
				Currency:   stripe.String(currency),
				UnitAmount: stripe.Int64(int64(amount) * 100),
			}
			pp.SetIdempotencyKey(c.idempotencyKey())
			price, err := c.api.Prices.New(pp)
			if err != nil {
				created = append(created, cp)
				return created, wrap("create price", err)
			}
			cp.Prices = append(cp.Prices, price)
		}
		c.log.Info("product created", zap.String("id", p.ID), zap.String("name", name), zap.Int("prices", len(cp.Prices)))
		created = append(created, cp)
	}
	return created, nil
}

// ListPrices returns up to limit active prices, newest first.
func (c *Client) ListPrices(ctx context.Context, limit int) ([]*stripe.Price, error) {
	params := &stripe.PriceListParams{
		ListParams: stripe.ListParams{Context: ctx},
		Active:     stripe.Bool(true),
	}
	params.AddExpand("data.product")
	it := c.api.Prices.List(params)

	var prices []*stripe.Price
	for it.Next() {
		prices = append(prices, it.Price())
		if limit > 0 && len(prices) >= limit {
			break
		}
	}
	if err := it.Err(); err != nil {
		return nil, wrap("list prices", err)
	}
	return prices, nil
}

// AddPrices adds one-off prices to the product named name. amounts are in
// minor units. It fails with ErrProductNotFound when no product has that
// exact name.
func (c *Client) AddPrices(ctx context.Context, name string, amounts []int64, currency string) ([]*stripe.Price, error) {
	if len(amounts) == 0 {
		return nil, errors.New("no prices given")
	}
	for _, a := range amounts {
		if a <= 0 {
			return nil, fmt.Errorf("price must be positive, got %d", a)
		}
	}

	product, err := c.productByName(ctx, name)
	if err != nil {
		return nil, err
	}

	currency = strings.ToLower(currency)
	var prices []*stripe.Price
	for _, amount := range amounts {
		pp := &stripe.PriceParams{
			Params:     stripe.Params{Context: ctx},
			Product:    stripe.String(product.ID),
			Currency:   stripe.String(currency),
			UnitAmount: stripe.Int64(amount),
		}
		pp.SetIdempotencyKey(c.idempotencyKey())
		price, err := c.api.Prices.New(pp)
		if err != nil {
			return prices, wrap("create price", err)
		}
		c.log.Info("price added", zap.String("product", product.ID), zap.String("price", price.ID), zap.Int64("amount", amount))
		prices = append(prices, price)
	}
	return prices, nil
}

func (c *Client) productByName(ctx context.Context, name string) (*stripe.Product, error) {
	it := c.api.Products.List(&stripe.ProductListParams{
		ListParams: stripe.ListParams{Context: ctx, Limit: stripe.Int64(100)},
	})
	for it.Next() {
		if p := it.Product(); p.Name == name {
			return p, nil
		}
	}
	if err := it.Err(); err != nil {
		return nil, wrap("list products", err)
	}
	return nil, fmt.Errorf("%w: %q", ErrProductNotFound, name)
}
