package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kalambet/payctl/internal/config"
	"github.com/kalambet/payctl/internal/definefile"
)

// --- init ---

// initFlags maps init's flags to config keys, in the order they are written.
var initFlags = []struct {
	flag, key, usage string
}{
	{"sk", "stripe.secret_key", "Stripe secret key"},
	{"pk", "stripe.publishable_key", "Stripe publishable key"},
	{"currency", "checkout.currency", "checkout currency code, e.g. usd"},
	{"prices", "checkout.prices", "comma-separated product prices in whole units, e.g. 5,10,20"},
	{"pay-path", "checkout.pay_path", "checkout pay path"},
	{"notify-path", "checkout.notify_path", "checkout notify path"},
	{"url", "stripe.url", "site URL used for webhooks"},
	{"email", "stripe.email", "account email"},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write Stripe keys and checkout settings into the config file",
	Long: `Write Stripe keys and checkout settings into the config file.

Only the flags given are written. The file is backed up to <config>.bak
before it is replaced.

Examples:
  payctl init --sk sk_live_xxx --pk pk_live_xxx
  payctl init --param pk_live_xxx,sk_live_xxx
  payctl init --prices 5,10,20 --currency eur`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var pairs []config.KeyValue

		if param, _ := cmd.Flags().GetString("param"); param != "" {
			parts := splitList(param)
			switch len(parts) {
			case 1:
				pairs = append(pairs, config.KeyValue{Key: "stripe.secret_key", Value: parts[0]})
			case 2:
				pairs = append(pairs,
					config.KeyValue{Key: "stripe.publishable_key", Value: parts[0]},
					config.KeyValue{Key: "stripe.secret_key", Value: parts[1]})
			default:
				return fmt.Errorf("--param takes \"sk\" or \"pk,sk\", got %d values", len(parts))
			}
		}
		for _, f := range initFlags {
			if !cmd.Flags().Changed(f.flag) {
				continue
			}
			v, _ := cmd.Flags().GetString(f.flag)
			pairs = append(pairs, config.KeyValue{Key: f.key, Value: v})
		}
		if len(pairs) == 0 {
			return fmt.Errorf("nothing to write: pass at least one of --sk, --pk, --param, --currency, --prices, --pay-path, --notify-path, --url or --email")
		}

		path := configPath()
		doc, err := config.SetKeys(path, pairs)
		if err != nil {
			return err
		}

		printSuccess("Updated %s (backup: %s)", path, doc.BackupPath())
		for _, kv := range pairs {
			decl, _ := config.DeclName(kv.Key)
			v, ok, err := doc.Get(decl)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			display := v.String()
			if config.IsSecret(kv.Key) {
				display = config.Mask(display)
			}
			printStatus(decl, "%s", display)
		}
		return nil
	},
}

func init() {
	for _, f := range initFlags {
		initCmd.Flags().String(f.flag, "", f.usage)
	}
	initCmd.Flags().String("param", "", `keys as "sk" or "pk,sk"`)
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and edit the config file",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show all config keys, with environment overrides applied",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, k := range config.ShowAll(cfg) {
			fmt.Fprintf(out, "  %s = %s  (%s, %s)\n", colorize(colorBold, k.Key), k.Value, k.Decl, k.EnvVar)
		}
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key|NAME>",
	Short: "Print one declared value as stored in the file",
	Long: `Print one declared value as stored in the file.

The argument is a config key (stripe.secret_key) or any declaration name
(STRIPE_SK, or names payctl does not manage). Lists print comma-separated.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if decl, ok := config.DeclName(name); ok {
			name = decl
		}
		doc, err := definefile.Open(configPath())
		if err != nil {
			return err
		}
		v, ok, err := doc.Get(name)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%s is not declared in %s", name, doc.Path())
		}
		fmt.Fprintln(cmd.OutOrStdout(), v.String())
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config key",
	Long: `Set a config key and save the file.

Valid keys: ` + strings.Join(config.ValidKeys(), ", ") + `

Examples:
  payctl config set checkout.currency eur
  payctl config set PRODUCT_PRICE 5,10,20`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.SetKey(configPath(), args[0], args[1]); err != nil {
			return err
		}
		printSuccess("Set %s", args[0])
		return nil
	},
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Remove a config key's declaration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		removed, err := config.UnsetKey(configPath(), args[0])
		if err != nil {
			return err
		}
		if !removed {
			printWarning("%s is not declared", args[0])
			return nil
		}
		printSuccess("Removed %s", args[0])
		return nil
	},
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Report names declared more than once",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := definefile.Open(configPath())
		if err != nil {
			return err
		}
		dups := doc.Duplicates()
		if len(dups) > 0 {
			for _, name := range dups {
				printWarning("%s is declared more than once", name)
			}
			return fmt.Errorf("%d duplicate declaration(s) in %s", len(dups), doc.Path())
		}
		printSuccess("%s: %d declarations, no duplicates", doc.Path(), len(doc.Names()))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
	configCmd.AddCommand(configCheckCmd)

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(configCmd)
}

// splitList splits a comma-separated flag value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
