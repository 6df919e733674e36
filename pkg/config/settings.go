package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/nsxbet/warehouse-sql-analyzer/pkg/cost"
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/types"
)

// EnvPrefix is the prefix of environment variables that override settings,
// e.g. WAREHOUSE_SQL_PLATFORM or WAREHOUSE_SQL_PRICING_BIGQUERY_PER_TIB.
const EnvPrefix = "WAREHOUSE_SQL"

// Output formats.
const (
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// Settings is the resolved configuration of the command line tool.
type Settings struct {
	Platform string       `mapstructure:"platform"`
	Output   string       `mapstructure:"output"`
	Rules    string       `mapstructure:"rules"`
	Seed     int64        `mapstructure:"seed"`
	Debug    bool         `mapstructure:"debug"`
	Verbose  bool         `mapstructure:"verbose"`
	Pricing  cost.Pricing `mapstructure:"pricing"`
}

// SetDefaults registers the default value of every key, which also makes the
// keys visible to AutomaticEnv.
func SetDefaults(v *viper.Viper) {
	pricing := cost.DefaultPricing()
	v.SetDefault("platform", "bigquery")
	v.SetDefault("output", OutputText)
	v.SetDefault("rules", "")
	v.SetDefault("seed", 0)
	v.SetDefault("debug", false)
	v.SetDefault("verbose", false)
	v.SetDefault("pricing.bigquery_per_tib", pricing.BigQueryPerTiB)
	v.SetDefault("pricing.snowflake_per_credit", pricing.SnowflakePerCredit)
	v.SetDefault("pricing.snowflake_credits_per_hour", pricing.SnowflakeCreditsPerHour)
	v.SetDefault("pricing.databricks_per_dbu", pricing.DatabricksPerDBU)
	v.SetDefault("pricing.currency", pricing.Currency)
}

// BindEnv makes v read WAREHOUSE_SQL_* variables, with dots in keys written
// as underscores.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// LoadSettings decodes and validates the settings held by v.
func LoadSettings(v *viper.Viper) (*Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, errors.Wrap(err, "failed to decode settings")
	}
	s.Output = strings.ToLower(strings.TrimSpace(s.Output))
	switch s.Output {
	case OutputText, OutputJSON, OutputYAML:
	default:
		return nil, errors.Errorf("unsupported output format %q (want text, json or yaml)", s.Output)
	}
	if _, err := s.ParsedPlatform(); err != nil {
		return nil, err
	}
	return &s, nil
}

// ParsedPlatform returns the configured platform.
func (s *Settings) ParsedPlatform() (types.Platform, error) {
	p, err := types.ParsePlatform(s.Platform)
	if err != nil {
		return types.PlatformUnspecified, errors.Wrap(err, "invalid platform setting")
	}
	return p, nil
}
