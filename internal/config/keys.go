package config

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kalambet/payctl/internal/definefile"
)

type keyType int

const (
	kString keyType = iota
	kIntList
)

type keySpec struct {
	key     string
	decl    string
	typ     keyType
	env     string
	secret  bool
	check   func(v string) error
	apply   func(cfg *Config, v any)
	extract func(cfg Config) any
}

var specs = []keySpec{
	{
		key: "stripe.secret_key", decl: "STRIPE_SK", typ: kString, env: "PAYCTL_STRIPE_SECRET_KEY",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.Stripe.SecretKey = v.(string) },
		extract: func(cfg Config) any { return cfg.Stripe.SecretKey },
	},
	{
		key: "stripe.publishable_key", decl: "STRIPE_PK", typ: kString, env: "PAYCTL_STRIPE_PUBLISHABLE_KEY",
		apply:   func(cfg *Config, v any) { cfg.Stripe.PublishableKey = v.(string) },
		extract: func(cfg Config) any { return cfg.Stripe.PublishableKey },
	},
	{
		key: "stripe.url", decl: "STRIPE_URL", typ: kString, env: "PAYCTL_STRIPE_URL",
		apply:   func(cfg *Config, v any) { cfg.Stripe.URL = v.(string) },
		extract: func(cfg Config) any { return cfg.Stripe.URL },
	},
	{
		key: "stripe.email", decl: "STRIPE_EMAIL", typ: kString, env: "PAYCTL_STRIPE_EMAIL",
		apply:   func(cfg *Config, v any) { cfg.Stripe.Email = v.(string) },
		extract: func(cfg Config) any { return cfg.Stripe.Email },
	},
	{
		key: "checkout.currency", decl: "LOCAL_CURRENCY", typ: kString, env: "PAYCTL_CHECKOUT_CURRENCY",
		apply:   func(cfg *Config, v any) { cfg.Checkout.Currency = v.(string) },
		extract: func(cfg Config) any { return cfg.Checkout.Currency },
	},
	{
		key: "checkout.prices", decl: "PRODUCT_PRICE", typ: kIntList, env: "PAYCTL_CHECKOUT_PRICES",
		apply:   func(cfg *Config, v any) { cfg.Checkout.Prices = v.([]int) },
		extract: func(cfg Config) any { return cfg.Checkout.Prices },
	},
	{
		key: "checkout.pay_path", decl: "PAY_PATH", typ: kString, env: "PAYCTL_CHECKOUT_PAY_PATH",
		apply:   func(cfg *Config, v any) { cfg.Checkout.PayPath = v.(string) },
		extract: func(cfg Config) any { return cfg.Checkout.PayPath },
	},
	{
		key: "checkout.notify_path", decl: "NOTIFY_PATH", typ: kString, env: "PAYCTL_CHECKOUT_NOTIFY_PATH",
		apply:   func(cfg *Config, v any) { cfg.Checkout.NotifyPath = v.(string) },
		extract: func(cfg Config) any { return cfg.Checkout.NotifyPath },
	},
	{
		key: "log.level", decl: "LOG_LEVEL", typ: kString, env: "PAYCTL_LOG_LEVEL",
		check:   ValidateLogLevel,
		apply:   func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
		extract: func(cfg Config) any { return cfg.Log.Level },
	},
}

// ValidateLogLevel accepts the level names zap understands: debug, info,
// warn, error, dpanic, panic and fatal.
func ValidateLogLevel(level string) error {
	_, err := zapcore.ParseLevel(level)
	return err
}

// lookup finds a spec by dotted key or by declaration name.
func lookup(key string) (keySpec, bool) {
	for _, s := range specs {
		if s.key == key || s.decl == key {
			return s, true
		}
	}
	return keySpec{}, false
}

func applyBackend(cfg *Config, b ConfigBackend) error {
	for _, s := range specs {
		switch s.typ {
		case kString:
			v, ok, err := b.GetString(s.decl)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kIntList:
			v, ok, err := b.GetInts(s.decl)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
		if s.env == "" {
			continue
		}
		raw := os.Getenv(s.env)
		if raw == "" {
			continue
		}
		switch s.typ {
		case kString:
			s.apply(cfg, raw)
		case kIntList:
			if ints, err := definefile.ParseIntList(raw); err == nil {
				s.apply(cfg, ints)
			} else {
				zap.L().Warn("ignoring invalid environment override",
					zap.String("env", s.env), zap.String("value", raw), zap.Error(err))
			}
		}
	}
}
