package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kalambet/payctl/internal/config"
)

var logger = zap.NewNop()

var rootCmd = &cobra.Command{
	Use:   "payctl",
	Short: "Configure a PHP checkout deployment and manage its Stripe account",
	Long: `payctl edits the define() declarations of a PHP checkout's config file,
rewrites its checkout routes and runs a few Stripe operations with the
configured secret key.

Flags can also be set through PAYCTL_* environment variables, e.g.
PAYCTL_CONFIG=/srv/shop/config.php.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		noColor = viper.GetBool("no-color")

		l, err := newLogger(logLevel())
		if err != nil {
			return err
		}
		logger = l
		zap.ReplaceGlobals(logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", config.DefaultPath, "path to the define() config file")
	pf.String("log-level", "", "log level: debug, info, warn or error (default: LOG_LEVEL from the config file, else warn)")
	pf.Bool("no-color", false, "disable colored output")

	viper.SetEnvPrefix("PAYCTL")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	if err := viper.BindPFlags(pf); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(versionCmd)
}

func configPath() string {
	return viper.GetString("config")
}

// logLevel prefers the flag or environment, then the config file's
// LOG_LEVEL. A missing or unreadable config file is not an error here; the
// command itself reports it. An unusable LOG_LEVEL only warns, so that
// `payctl config set log.level` can still repair it.
func logLevel() string {
	if l := viper.GetString("log-level"); l != "" {
		return l
	}
	cfg, err := config.Load(configPath())
	if err != nil || cfg.Log.Level == "" {
		return "warn"
	}
	if err := config.ValidateLogLevel(cfg.Log.Level); err != nil {
		printWarning("Ignoring LOG_LEVEL %q from %s: %v", cfg.Log.Level, configPath(), err)
		return "warn"
	}
	return cfg.Log.Level
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	zcfg.Encoding = "console"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zcfg.OutputPaths = []string{"stderr"}
	return zcfg.Build()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the payctl version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "payctl version %s\n", version)
	},
}
