package config

import (
	"fmt"

	"github.com/kalambet/payctl/internal/definefile"
)

// DefaultPath is the declaration file used when no --config is given.
const DefaultPath = "config.php"

type Config struct {
	Stripe   StripeConfig
	Checkout CheckoutConfig
	Log      LogConfig
}

type StripeConfig struct {
	SecretKey      string
	PublishableKey string
	URL            string
	Email          string
}

type CheckoutConfig struct {
	Currency   string
	Prices     []int
	PayPath    string
	NotifyPath string
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Checkout: CheckoutConfig{
			Currency: "usd",
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// Load reads configuration from the define() declarations in the file at
// path, then applies PAYCTL_* environment variable overrides.
func Load(path string) (Config, error) {
	doc, err := definefile.Open(path)
	if err != nil {
		return Config{}, err
	}
	return loadWith(doc)
}

func loadWith(b ConfigBackend) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	return cfg, nil
}

// RequireSecretKey reports a missing Stripe secret key with a hint on how to
// set it.
func (c Config) RequireSecretKey() error {
	if c.Stripe.SecretKey == "" {
		return fmt.Errorf("missing required config: Stripe secret key. " +
			"Set it with `payctl init --sk <key>` or environment variable PAYCTL_STRIPE_SECRET_KEY")
	}
	return nil
}
