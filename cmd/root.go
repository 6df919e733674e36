package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nsxbet/warehouse-sql-analyzer/pkg/config"
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/cost"
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/logger"
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/reviewer"
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/types"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "warehouse-sql",
	Short: "Analyze, migrate and price SQL for cloud data warehouses",
	Long: `warehouse-sql scores SQL queries against best practice, performance,
modularization and cost rules, extracts table and column lineage, rewrites
queries between dialects, fixes common syntax slips and estimates what a
query will cost to run.

It supports BigQuery, Snowflake and Databricks.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
// Interrupts cancel the command context, which stops batch analysis and
// the watch loop.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	config.SetDefaults(viper.GetViper())

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.warehouse-sql.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable verbose output")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug output")
	rootCmd.PersistentFlags().StringP("platform", "p", "bigquery", "warehouse platform (bigquery, snowflake, databricks)")
	rootCmd.PersistentFlags().StringP("output", "o", config.OutputText, "output format (text, json, yaml)")
	rootCmd.PersistentFlags().StringP("rules", "r", "", "path to a rule catalog file (YAML or JSON)")

	// Bind flags to viper
	for _, name := range []string{"verbose", "debug", "platform", "output", "rules"} {
		_ = viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".warehouse-sql")
	}

	config.BindEnv(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			slog.Warn("Ignoring config file", "file", viper.ConfigFileUsed(), logger.Error(err))
		}
		return
	}
	slog.Debug("Using config file", "file", viper.ConfigFileUsed())
}

// session is what every command needs after flags and config are resolved.
type session struct {
	settings *config.Settings
	platform types.Platform
	logger   *logger.Logger
}

func newSession() (*session, error) {
	settings, err := config.LoadSettings(viper.GetViper())
	if err != nil {
		return nil, err
	}

	logLevel := slog.LevelWarn
	if settings.Debug {
		logLevel = slog.LevelDebug
	} else if settings.Verbose {
		logLevel = slog.LevelInfo
	}
	log := logger.NewWithLevel(logLevel)
	slog.SetDefault(log.GetSlogLogger())

	platform, err := settings.ParsedPlatform()
	if err != nil {
		return nil, err
	}
	log.Debug("Settings loaded", "platform", platform, "output", settings.Output, "rules", settings.Rules)

	return &session{settings: settings, platform: platform, logger: log}, nil
}

// reviewer builds a Reviewer for the session platform with the configured
// catalog, pricing and seed.
func (s *session) reviewer(opts ...reviewer.Option) (*reviewer.Reviewer, error) {
	base := []reviewer.Option{
		reviewer.WithLogger(s.logger),
		reviewer.WithPricing(s.settings.Pricing),
	}
	if s.settings.Seed != 0 {
		base = append(base, reviewer.WithVariance(cost.NewSeededVariance(s.settings.Seed)))
	}
	r := reviewer.New(s.platform, append(base, opts...)...)

	if s.settings.Rules != "" {
		if err := r.WithCatalogFile(s.settings.Rules); err != nil {
			return nil, err
		}
		s.logger.Debug("Rule catalog loaded", "file", s.settings.Rules, "id", r.Catalog().ID)
	}
	return r, nil
}
