package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kalambet/payctl/internal/checkout"
)

var routesCmd = &cobra.Command{
	Use:   "routes <base> <suffix>",
	Short: "Rewrite the checkout routes",
	Long: `Rewrite the checkout routes for a new base name and suffix.

Updates, in order, the success and cancel paths in the checkout .env file,
the rewrite rules in .htaccess and PAY_PATH / NOTIFY_PATH in the config
file. Each file is backed up to a .bak sibling first.

Example:
  payctl routes shop 7f3a
    pay:    /shoppay/pay7f3a
    notify: /shoppay/notify7f3a`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		envPath, _ := cmd.Flags().GetString("env-file")
		htaccessPath, _ := cmd.Flags().GetString("htaccess")
		routes := checkout.Routes{Base: args[0], Suffix: args[1]}

		printStep("Rewriting checkout routes")
		res, err := checkout.Apply(checkout.Options{
			Routes:       routes,
			EnvPath:      envPath,
			HtaccessPath: htaccessPath,
			ConfigPath:   configPath(),
			Logger:       logger,
		})
		if err != nil {
			return err
		}

		if !res.EnvChanged {
			printWarning("%s already up to date", envPath)
		}
		if !res.HtaccessChanged {
			printWarning("%s already contains the rewrite rules", htaccessPath)
		}
		printSuccess("Checkout routes updated")

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "pay:     %s\n", routes.PayPath())
		fmt.Fprintf(out, "notify:  %s\n", routes.NotifyPath())
		fmt.Fprintf(out, "success: %s\n", routes.SuccessPath())
		fmt.Fprintf(out, "cancel:  %s\n", routes.CancelPath())
		return nil
	},
}

func init() {
	routesCmd.Flags().String("env-file", checkout.DefaultEnvPath, "checkout .env file")
	routesCmd.Flags().String("htaccess", checkout.DefaultHtaccessPath, ".htaccess file")
	rootCmd.AddCommand(routesCmd)
}
