package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kalambet/payctl/internal/definefile"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.php")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// clearEnv blanks every override so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, s := range specs {
		t.Setenv(s.env, "")
	}
}

// TestDefaults verifies default values are applied when the file declares nothing.
func TestDefaults(t *testing.T) {
	clearEnv(t)
	path := writeTempConfig(t, "<?php\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Checkout.Currency != "usd" {
		t.Errorf("Checkout.Currency = %q, want %q", cfg.Checkout.Currency, "usd")
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "warn")
	}
	if cfg.Stripe.SecretKey != "" {
		t.Errorf("Stripe.SecretKey = %q, want empty", cfg.Stripe.SecretKey)
	}
	if cfg.Checkout.Prices != nil {
		t.Errorf("Checkout.Prices = %v, want nil", cfg.Checkout.Prices)
	}
}

// TestDeclarationParsing verifies that all fields are read from define() declarations.
func TestDeclarationParsing(t *testing.T) {
	clearEnv(t)
	path := writeTempConfig(t, `<?php
define("STRIPE_SK", "sk_test_abc");
define("STRIPE_PK", "pk_test_abc");
define("STRIPE_URL", "https://checkout.example.com");
define("STRIPE_EMAIL", "ops@example.com");
define("LOCAL_CURRENCY", "eur");
define("PRODUCT_PRICE", [5,10,15]);
define("PAY_PATH", "/shoppay/pay1");
define("NOTIFY_PATH", "/shoppay/notify1");
define("LOG_LEVEL", "debug");
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Stripe.SecretKey != "sk_test_abc" {
		t.Errorf("Stripe.SecretKey = %q", cfg.Stripe.SecretKey)
	}
	if cfg.Stripe.PublishableKey != "pk_test_abc" {
		t.Errorf("Stripe.PublishableKey = %q", cfg.Stripe.PublishableKey)
	}
	if cfg.Stripe.URL != "https://checkout.example.com" {
		t.Errorf("Stripe.URL = %q", cfg.Stripe.URL)
	}
	if cfg.Stripe.Email != "ops@example.com" {
		t.Errorf("Stripe.Email = %q", cfg.Stripe.Email)
	}
	if cfg.Checkout.Currency != "eur" {
		t.Errorf("Checkout.Currency = %q", cfg.Checkout.Currency)
	}
	if got := definefile.IntList(cfg.Checkout.Prices...).String(); got != "5,10,15" {
		t.Errorf("Checkout.Prices = %v", cfg.Checkout.Prices)
	}
	if cfg.Checkout.PayPath != "/shoppay/pay1" {
		t.Errorf("Checkout.PayPath = %q", cfg.Checkout.PayPath)
	}
	if cfg.Checkout.NotifyPath != "/shoppay/notify1" {
		t.Errorf("Checkout.NotifyPath = %q", cfg.Checkout.NotifyPath)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
}

// TestEnvOverride verifies that environment variables override file values.
func TestEnvOverride(t *testing.T) {
	clearEnv(t)
	path := writeTempConfig(t, `define("STRIPE_SK", "file-key");
define("PRODUCT_PRICE", [1]);
`)

	t.Setenv("PAYCTL_STRIPE_SECRET_KEY", "env-key")
	t.Setenv("PAYCTL_CHECKOUT_PRICES", "7, 8")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Stripe.SecretKey != "env-key" {
		t.Errorf("SecretKey = %q, want %q", cfg.Stripe.SecretKey, "env-key")
	}
	if len(cfg.Checkout.Prices) != 2 || cfg.Checkout.Prices[0] != 7 || cfg.Checkout.Prices[1] != 8 {
		t.Errorf("Prices = %v, want [7 8]", cfg.Checkout.Prices)
	}
}

// TestEnvOverrideInvalidList verifies an unparsable list override keeps the file value.
func TestEnvOverrideInvalidList(t *testing.T) {
	clearEnv(t)
	path := writeTempConfig(t, `define("PRODUCT_PRICE", [1,2]);`)
	t.Setenv("PAYCTL_CHECKOUT_PRICES", "1,two")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Checkout.Prices) != 2 {
		t.Errorf("Prices = %v, want file value [1 2]", cfg.Checkout.Prices)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "config.php"))
	if !errors.Is(err, definefile.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestLoadWrongKind(t *testing.T) {
	clearEnv(t)
	path := writeTempConfig(t, `define("PRODUCT_PRICE", "5,10");`)

	_, err := Load(path)
	if !errors.Is(err, definefile.ErrKind) {
		t.Fatalf("error = %v, want ErrKind", err)
	}
	if !strings.Contains(err.Error(), "checkout.prices") {
		t.Errorf("error = %q, want it to name the key", err.Error())
	}
}

// TestMissingRequiredField verifies a clear error when the secret key is missing.
func TestMissingRequiredField(t *testing.T) {
	err := Config{}.RequireSecretKey()
	if err == nil {
		t.Fatal("expected error for missing secret key, got nil")
	}
	if !strings.Contains(err.Error(), "missing required config") {
		t.Errorf("error = %q, want it to contain %q", err.Error(), "missing required config")
	}

	cfg := Config{Stripe: StripeConfig{SecretKey: "sk"}}
	if err := cfg.RequireSecretKey(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestSetKey(t *testing.T) {
	clearEnv(t)
	original := "<?php\ndefine(\"LOCAL_CURRENCY\", \"usd\");\n"
	path := writeTempConfig(t, original)

	if err := SetKey(path, "checkout.currency", "eur"); err != nil {
		t.Fatalf("SetKey: %v", err)
	}
	if err := SetKey(path, "PRODUCT_PRICE", "5,10,15"); err != nil {
		t.Fatalf("SetKey by declaration name: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "<?php\ndefine(\"LOCAL_CURRENCY\", \"eur\");\n\ndefine(\"PRODUCT_PRICE\", [5,10,15]);\n"
	if string(data) != want {
		t.Errorf("file = %q, want %q", data, want)
	}
}

func TestSetKeyErrors(t *testing.T) {
	path := writeTempConfig(t, "<?php\n")

	err := SetKey(path, "nope", "x")
	if err == nil || !strings.Contains(err.Error(), "unknown config key") {
		t.Errorf("error = %v, want unknown config key", err)
	}

	err = SetKey(path, "checkout.prices", "5,abc")
	if !errors.Is(err, definefile.ErrParse) {
		t.Errorf("error = %v, want ErrParse", err)
	}

	err = SetKey(path, "log.level", "verbose")
	if err == nil || !strings.Contains(err.Error(), "log.level") {
		t.Errorf("error = %v, want invalid log.level", err)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "<?php\n" {
		t.Errorf("file changed after failed SetKey: %q", data)
	}
	if _, err := os.Stat(path + ".bak"); !os.IsNotExist(err) {
		t.Errorf("backup written after failed SetKey: %v", err)
	}
}

func TestSetKeyLogLevel(t *testing.T) {
	path := writeTempConfig(t, "<?php\n")

	for _, level := range []string{"debug", "info", "warn", "error"} {
		if err := SetKey(path, "LOG_LEVEL", level); err != nil {
			t.Errorf("SetKey(LOG_LEVEL, %q): %v", level, err)
		}
	}
	if err := ValidateLogLevel("loud"); err == nil {
		t.Error("ValidateLogLevel(loud) should fail")
	}
}

func TestSetKeysReturnsDocument(t *testing.T) {
	path := writeTempConfig(t, "<?php\n")

	doc, err := SetKeys(path, []KeyValue{
		{Key: "stripe.secret_key", Value: "sk_live_1"},
		{Key: "stripe.publishable_key", Value: "pk_live_1"},
	})
	if err != nil {
		t.Fatalf("SetKeys: %v", err)
	}
	sk, ok, err := doc.GetString("STRIPE_SK")
	if err != nil || !ok || sk != "sk_live_1" {
		t.Errorf("STRIPE_SK = %q, %v, %v", sk, ok, err)
	}
	backup, err := os.ReadFile(doc.BackupPath())
	if err != nil {
		t.Fatal(err)
	}
	if string(backup) != "<?php\n" {
		t.Errorf("backup = %q", backup)
	}
}

func TestUnsetKey(t *testing.T) {
	path := writeTempConfig(t, "<?php\ndefine(\"PAY_PATH\", \"/x\");\n")

	removed, err := UnsetKey(path, "checkout.pay_path")
	if err != nil || !removed {
		t.Fatalf("UnsetKey = %v, %v", removed, err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "<?php\n" {
		t.Errorf("file = %q", data)
	}

	removed, err = UnsetKey(path, "checkout.pay_path")
	if err != nil || removed {
		t.Errorf("second UnsetKey = %v, %v", removed, err)
	}
}

func TestConfigShowAll(t *testing.T) {
	cfg := defaults()
	cfg.Stripe.SecretKey = "sk_live_0123456789"
	cfg.Checkout.Prices = []int{5, 10}

	byKey := make(map[string]KeyInfo)
	for _, k := range ShowAll(cfg) {
		byKey[k.Key] = k
	}
	if len(byKey) != len(ValidKeys()) {
		t.Errorf("ShowAll returned %d keys, want %d", len(byKey), len(ValidKeys()))
	}
	if got := byKey["stripe.secret_key"].Value; got != "sk_live_****" {
		t.Errorf("secret shown as %q, want masked", got)
	}
	if got := byKey["checkout.prices"].Value; got != "5,10" {
		t.Errorf("prices shown as %q", got)
	}
	if got := byKey["checkout.currency"]; got.Decl != "LOCAL_CURRENCY" || got.EnvVar != "PAYCTL_CHECKOUT_CURRENCY" {
		t.Errorf("currency key info = %+v", got)
	}
}

func TestDeclName(t *testing.T) {
	if name, ok := DeclName("checkout.prices"); !ok || name != "PRODUCT_PRICE" {
		t.Errorf("DeclName(checkout.prices) = %q, %v", name, ok)
	}
	if name, ok := DeclName("STRIPE_SK"); !ok || name != "STRIPE_SK" {
		t.Errorf("DeclName(STRIPE_SK) = %q, %v", name, ok)
	}
	if _, ok := DeclName("missing"); ok {
		t.Error("DeclName(missing) should not resolve")
	}
}

func TestMask(t *testing.T) {
	tests := map[string]string{
		"":           "",
		"short":      "*****",
		"sk_live_12": "sk_live_****",
	}
	for in, want := range tests {
		if got := Mask(in); got != want {
			t.Errorf("Mask(%q) = %q, want %q", in, got, want)
		}
	}
}
