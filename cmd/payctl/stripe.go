package main

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	stripe "github.com/stripe/stripe-go/v81"
	"go.uber.org/zap"

	"github.com/kalambet/payctl/internal/config"
	"github.com/kalambet/payctl/internal/payments"
)

// newPaymentsClient is a variable so tests can point it at a stub server.
var newPaymentsClient = func(cfg config.Config) (*payments.Client, error) {
	if err := cfg.RequireSecretKey(); err != nil {
		return nil, err
	}
	return payments.New(payments.Options{
		SecretKey:         cfg.Stripe.SecretKey,
		MaxNetworkRetries: 2,
		Logger:            logger,
	})
}

func loadPayments() (config.Config, *payments.Client, error) {
	cfg, err := config.Load(configPath())
	if err != nil {
		return config.Config{}, nil, err
	}
	c, err := newPaymentsClient(cfg)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, c, nil
}

// --- refund ---

var refundCmd = &cobra.Command{
	Use:   "refund",
	Short: "Refund a charge or payment intent",
	Long: `Refund a charge (ch_...) or payment intent (pi_...).

--amount is in minor units (cents); 0 refunds the full amount. With --file,
every transaction of a Stripe payments CSV export whose status is
"succeeded" is refunded.

Examples:
  payctl refund --transaction ch_3Nxyz --amount 500
  payctl refund --file unified_payments.csv`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tx, _ := cmd.Flags().GetString("transaction")
		file, _ := cmd.Flags().GetString("file")
		amount, _ := cmd.Flags().GetInt64("amount")

		if (tx == "") == (file == "") {
			return fmt.Errorf("exactly one of --transaction or --file is required")
		}

		_, client, err := loadPayments()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		if tx != "" {
			r, err := client.Refund(ctx, tx, amount)
			if err != nil {
				return err
			}
			printSuccess("Refunded %s", tx)
			fmt.Fprintf(out, "%s\t%s\t%s\n", r.ID, formatAmount(r.Amount, string(r.Currency)), r.Status)
			return nil
		}

		results, err := client.RefundFile(ctx, file, amount)
		if err != nil {
			return err
		}
		failed := 0
		for _, res := range results {
			if res.Err != nil {
				failed++
				printError("%s: %v", res.TransactionID, res.Err)
				continue
			}
			fmt.Fprintf(out, "%s\t%s\t%s\t%s\n", res.TransactionID, res.Refund.ID,
				formatAmount(res.Refund.Amount, string(res.Refund.Currency)), res.Refund.Status)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d refunds failed", failed, len(results))
		}
		printSuccess("Refunded %d transaction(s)", len(results))
		return nil
	},
}

func init() {
	refundCmd.Flags().String("transaction", "", "charge or payment intent ID")
	refundCmd.Flags().String("file", "", "payments CSV export to refund in bulk")
	refundCmd.Flags().Int64("amount", 0, "amount in minor units; 0 refunds in full")
}

// --- webhook ---

var webhookCmd = &cobra.Command{
	Use:   "webhook",
	Short: "Manage Stripe webhook endpoints",
}

var webhookCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Register the checkout notify URL as a webhook endpoint",
	Long: `Register <domain>/<path> as a webhook endpoint.

--domain defaults to STRIPE_URL and --path to NOTIFY_PATH from the config
file. Without --events the endpoint receives every event.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		domain, _ := cmd.Flags().GetString("domain")
		path, _ := cmd.Flags().GetString("path")
		eventsStr, _ := cmd.Flags().GetString("events")

		cfg, client, err := loadPayments()
		if err != nil {
			return err
		}
		if domain == "" {
			domain = cfg.Stripe.URL
		}
		if path == "" {
			path = cfg.Checkout.NotifyPath
		}
		if domain == "" || path == "" {
			return fmt.Errorf("webhook URL incomplete: set --domain and --path, or STRIPE_URL and NOTIFY_PATH")
		}

		url := payments.WebhookURL(domain, path)
		ep, err := client.CreateWebhook(cmd.Context(), url, splitList(eventsStr))
		if errors.Is(err, payments.ErrWebhookExists) {
			printWarning("Delete it first with `payctl webhook delete %s`", ep.ID)
			return err
		}
		if err != nil {
			return err
		}

		printSuccess("Webhook endpoint created")
		printStatus("ID", "%s", ep.ID)
		printStatus("URL", "%s", ep.URL)
		// The signing secret is only returned on creation.
		fmt.Fprintln(cmd.OutOrStdout(), ep.Secret)
		return nil
	},
}

var webhookListCmd = &cobra.Command{
	Use:   "list",
	Short: "List webhook endpoints",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, client, err := loadPayments()
		if err != nil {
			return err
		}
		eps, err := client.ListWebhooks(cmd.Context())
		if err != nil {
			return err
		}
		if len(eps) == 0 {
			printWarning("No webhook endpoints")
			return nil
		}
		out := cmd.OutOrStdout()
		for _, ep := range eps {
			fmt.Fprintf(out, "%s\t%s\t%s\n", ep.ID, ep.Status, ep.URL)
		}
		return nil
	},
}

var webhookDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a webhook endpoint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, client, err := loadPayments()
		if err != nil {
			return err
		}
		if _, err := client.DeleteWebhook(cmd.Context(), args[0]); err != nil {
			return err
		}
		printSuccess("Deleted webhook endpoint %s", args[0])
		return nil
	},
}

func init() {
	webhookCreateCmd.Flags().String("domain", "", "site URL, e.g. https://shop.example.com")
	webhookCreateCmd.Flags().String("path", "", "notify path")
	webhookCreateCmd.Flags().String("events", "", "comma-separated event types (default: all)")
	webhookCmd.AddCommand(webhookCreateCmd)
	webhookCmd.AddCommand(webhookListCmd)
	webhookCmd.AddCommand(webhookDeleteCmd)
}

// --- info ---

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the Stripe account and its balance",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		currency, _ := cmd.Flags().GetString("currency")

		cfg, client, err := loadPayments()
		if err != nil {
			return err
		}
		if currency == "" {
			currency = cfg.Checkout.Currency
		}

		info, err := client.AccountInfo(cmd.Context())
		if err != nil {
			return err
		}
		acct := info.Account
		printStatus("Account", "%s", acct.ID)
		printStatus("Email", "%s", acct.Email)
		printStatus("Country", "%s", acct.Country)
		printStatus("Default currency", "%s", acct.DefaultCurrency)
		printStatus("Charges enabled", "%s", strconv.FormatBool(acct.ChargesEnabled))
		printStatus("Payouts enabled", "%s", strconv.FormatBool(acct.PayoutsEnabled))
		printStatus("Available", "%s", formatAmount(info.Available(currency), currency))
		printStatus("Pending", "%s", formatAmount(info.Pending(currency), currency))
		return nil
	},
}

func init() {
	infoCmd.Flags().String("currency", "", "balance currency (default: LOCAL_CURRENCY)")
}

// --- product ---

var productCmd = &cobra.Command{
	Use:   "product",
	Short: "Manage Stripe products and prices",
}

// defaultProductNames are used when product create gets no --names.
var defaultProductNames = []string{
	"Starter Pack", "Basic Bundle", "Standard Kit", "Premium Set", "Deluxe Box",
	"Pro Edition", "Essentials", "Gift Card", "Member Pass", "Collector Edition",
}

var productCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create products with one price per PRODUCT_PRICE amount",
	Long: `Create products, each with one price per amount in PRODUCT_PRICE, in
LOCAL_CURRENCY.

Examples:
  payctl product create --names "Gift Card,Member Pass"
  payctl product create --count 3`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		namesStr, _ := cmd.Flags().GetString("names")
		count, _ := cmd.Flags().GetInt("count")

		names := splitList(namesStr)
		if len(names) == 0 {
			if count < 1 || count > len(defaultProductNames) {
				return fmt.Errorf("--count must be between 1 and %d", len(defaultProductNames))
			}
			names = defaultProductNames[:count]
		}

		cfg, client, err := loadPayments()
		if err != nil {
			return err
		}
		created, err := client.CreateProducts(cmd.Context(), names, cfg.Checkout.Prices, cfg.Checkout.Currency)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, cp := range created {
			for _, p := range cp.Prices {
				fmt.Fprintf(out, "%s\t%s\t%s\t%s\n", cp.Product.ID, cp.Product.Name, p.ID,
					formatAmount(p.UnitAmount, string(p.Currency)))
			}
		}
		logger.Info("products created", zap.Int("count", len(created)))
		printSuccess("Created %d product(s)", len(created))
		return nil
	},
}

var productInsertCmd = &cobra.Command{
	Use:   "insert",
	Short: "Add one-off prices to an existing product",
	Long: `Add one-off prices to the product with the given name, in LOCAL_CURRENCY.

--prices takes amounts in whole units and may have cents.

Example:
  payctl product insert --name "Grand Total" --prices 4.99,10`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		pricesStr, _ := cmd.Flags().GetString("prices")
		if name == "" {
			return fmt.Errorf("--name is required")
		}
		amounts, err := parseMajorAmounts(pricesStr)
		if err != nil {
			return err
		}

		cfg, client, err := loadPayments()
		if err != nil {
			return err
		}
		prices, err := client.AddPrices(cmd.Context(), name, amounts, cfg.Checkout.Currency)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, p := range prices {
			fmt.Fprintf(out, "%s\t%s\n", p.ID, formatAmount(p.UnitAmount, string(p.Currency)))
		}
		printSuccess("Added %d price(s) to %q", len(prices), name)
		return nil
	},
}

var productPricesCmd = &cobra.Command{
	Use:   "prices",
	Short: "List active prices",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		_, client, err := loadPayments()
		if err != nil {
			return err
		}
		prices, err := client.ListPrices(cmd.Context(), limit)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, p := range prices {
			product := ""
			if p.Product != nil {
				product = p.Product.Name
			}
			fmt.Fprintf(out, "%s\t%s\t%s\n", p.ID, formatAmount(p.UnitAmount, string(p.Currency)), product)
		}
		return nil
	},
}

func init() {
	productCreateCmd.Flags().String("names", "", "comma-separated product names")
	productCreateCmd.Flags().Int("count", 3, "number of default product names to use when --names is empty")
	productPricesCmd.Flags().Int("limit", 20, "maximum number of prices to list")
	productInsertCmd.Flags().String("name", "", "exact name of the product")
	productInsertCmd.Flags().String("prices", "", "comma-separated prices in whole units, e.g. 4.99,10")
	productCmd.AddCommand(productCreateCmd)
	productCmd.AddCommand(productInsertCmd)
	productCmd.AddCommand(productPricesCmd)

	rootCmd.AddCommand(refundCmd)
	rootCmd.AddCommand(webhookCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(productCmd)
}

// parseMajorAmounts turns "4.99,10" into minor units, rounding to the cent.
func parseMajorAmounts(s string) ([]int64, error) {
	parts := splitList(s)
	if len(parts) == 0 {
		return nil, fmt.Errorf("--prices is required")
	}
	amounts := make([]int64, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(p, 64)
		if err != nil || f <= 0 || math.IsInf(f, 0) {
			return nil, fmt.Errorf("invalid price %q: must be a positive number", p)
		}
		amounts[i] = int64(math.Round(f * 100))
	}
	return amounts, nil
}

// --- search ---

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Find charges by id, email or card last4",
	Long: `Find charges by transaction id, customer email or card last four digits.

With --transactions the charges are fetched directly. Otherwise charges in
the date window match when either the email or the last4 matches. The
window defaults to the last 7 days; --type picks another (1 = 15 days,
2 = 30, 3 = 60, 4 = 60-120 days ago, 5 = 120-180 days ago), and --date /
--edate (YYYY-MM-DD) override it.

Rows are tab-separated: email, id, amount, currency, status, payment
intent, refund state, refunded amount, created, method, last4, brand.

Examples:
  payctl search --last4s 4242,8888 --emails ann@example.com
  payctl search --transactions ch_3Nxyz,ch_3Nabc
  payctl search --non-card --type 2`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, _ := cmd.Flags().GetString("transactions")
		emails, _ := cmd.Flags().GetString("emails")
		last4s, _ := cmd.Flags().GetString("last4s")
		kind, _ := cmd.Flags().GetInt("type")
		date, _ := cmd.Flags().GetString("date")
		edate, _ := cmd.Flags().GetString("edate")
		nonCard, _ := cmd.Flags().GetBool("non-card")
		all, _ := cmd.Flags().GetBool("all")

		if edate != "" && date == "" {
			return fmt.Errorf("--edate needs --date")
		}
		from, to, err := payments.SearchWindow(kind, date, edate, time.Now())
		if err != nil {
			return err
		}

		_, client, err := loadPayments()
		if err != nil {
			return err
		}
		charges, err := client.Search(cmd.Context(), payments.SearchParams{
			TransactionIDs: splitList(ids),
			Emails:         splitList(emails),
			Last4s:         splitList(last4s),
			From:           from,
			To:             to,
			NonCard:        nonCard,
			All:            all,
		})
		if err != nil {
			return err
		}
		if len(charges) == 0 {
			printWarning("No charges found")
			return nil
		}

		out := cmd.OutOrStdout()
		for _, ch := range charges {
			fmt.Fprintln(out, strings.Join(chargeRow(ch), "\t"))
		}
		printSuccess("%d charge(s) found", len(charges))
		return nil
	},
}

func chargeRow(ch *stripe.Charge) []string {
	var method, last4, brand, intent string
	if d := ch.PaymentMethodDetails; d != nil {
		method = string(d.Type)
		if d.Card != nil {
			last4 = d.Card.Last4
			brand = string(d.Card.Brand)
		}
	}
	if ch.PaymentIntent != nil {
		intent = ch.PaymentIntent.ID
	}
	return []string{
		payments.ChargeEmail(ch),
		ch.ID,
		formatAmount(ch.Amount, string(ch.Currency)),
		string(ch.Status),
		intent,
		payments.RefundState(ch),
		formatAmount(ch.AmountRefunded, string(ch.Currency)),
		time.Unix(ch.Created, 0).UTC().Format(time.DateTime),
		method,
		last4,
		brand,
	}
}

func init() {
	searchCmd.Flags().String("transactions", "", "comma-separated charge ids")
	searchCmd.Flags().String("emails", "", "comma-separated customer emails")
	searchCmd.Flags().String("last4s", "", "comma-separated card last four digits")
	searchCmd.Flags().Int("type", 0, "date window preset (default: last 7 days)")
	searchCmd.Flags().String("date", "", "window start, YYYY-MM-DD")
	searchCmd.Flags().String("edate", "", "window end, YYYY-MM-DD")
	searchCmd.Flags().Bool("non-card", false, "list charges not paid by card")
	searchCmd.Flags().Bool("all", false, "list every charge in the window")
	rootCmd.AddCommand(searchCmd)
}
