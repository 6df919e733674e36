package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsxbet/warehouse-sql-analyzer/pkg/cost"
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/rules"
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/types"
)

const yamlCatalog = `id: team
version: 3
platform: snowflake
rules:
  bestPractices:
    - id: bp_avoid_select_star
      name: Avoid SELECT *
      description: List columns explicitly
      severity: medium
      enabled: true
  cost:
    - id: custom_no_cross_region
      name: No cross region reads
      description: Queries must not read the replicated cross_region tables
      severity: high
      enabled: false
      custom: true
`

const jsonCatalog = `{
  "id": "team-json",
  "platform": "DATABRICKS",
  "rules": {
    "performance": [
      {"id": "perf_join_without_condition", "name": "Join without condition", "description": "x", "severity": "high", "enabled": true}
    ]
  }
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCatalogYAML(t *testing.T) {
	catalog, err := LoadCatalog(writeFile(t, "rules.yaml", yamlCatalog))
	require.NoError(t, err)

	assert.Equal(t, "team", catalog.ID)
	assert.Equal(t, 3, catalog.Version)
	assert.Equal(t, types.PlatformSnowflake, catalog.Platform)
	assert.Equal(t, 2, catalog.Len())

	rule, category, ok := catalog.Find("custom_no_cross_region")
	require.True(t, ok)
	assert.Equal(t, types.CategoryCost, category)
	assert.Equal(t, types.SeverityHigh, rule.Severity)
	assert.False(t, rule.Enabled)
	assert.True(t, rule.Custom)
}

func TestLoadCatalogJSON(t *testing.T) {
	catalog, err := LoadCatalog(writeFile(t, "rules.json", jsonCatalog))
	require.NoError(t, err)

	assert.Equal(t, "team-json", catalog.ID)
	assert.Equal(t, 1, catalog.Version)
	assert.Equal(t, types.PlatformDatabricks, catalog.Platform)
	require.Len(t, catalog.EnabledRules(types.CategoryPerformance), 1)
}

func TestLoadCatalogErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty", "  \n"},
		{"garbage", "{not: [valid"},
		{"duplicate ids", `id: dup
rules:
  cost:
    - {id: a, name: a, description: a, severity: low, enabled: true}
  performance:
    - {id: a, name: a, description: a, severity: low, enabled: true}
`},
		{"unknown severity", `id: bad
rules:
  cost:
    - {id: a, name: a, description: a, severity: urgent, enabled: true}
`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadCatalog(writeFile(t, "rules.yaml", tc.content))
			assert.Error(t, err)
		})
	}

	_, err := LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read catalog file")
}

func TestSaveCatalog(t *testing.T) {
	catalog := rules.DefaultCatalog(types.PlatformBigQuery)
	require.NoError(t, catalog.Disable("cost_no_sampling"))
	_, err := catalog.AddCustomRule(types.CategoryModularization, types.Rule{
		Name:        "No temp tables",
		Description: "Avoid creating temporary staging tables",
		Enabled:     true,
	})
	require.NoError(t, err)

	for _, name := range []string{"catalog.yaml", "catalog.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, SaveCatalog(path, catalog))

			loaded, err := LoadCatalog(path)
			require.NoError(t, err)
			assert.Equal(t, catalog, loaded)
		})
	}

	assert.Error(t, SaveCatalog(filepath.Join(t.TempDir(), "nil.yaml"), nil))
}

func TestCatalogFor(t *testing.T) {
	builtin, err := CatalogFor("", types.PlatformDatabricks)
	require.NoError(t, err)
	assert.Equal(t, rules.CatalogID(types.PlatformDatabricks), builtin.ID)

	path := writeFile(t, "rules.yaml", yamlCatalog)
	catalog, err := CatalogFor(path, types.PlatformSnowflake)
	require.NoError(t, err)
	assert.Equal(t, "team", catalog.ID)

	_, err = CatalogFor(path, types.PlatformBigQuery)
	assert.ErrorContains(t, err, "is for Snowflake, not BigQuery")

	generic := writeFile(t, "generic.yaml", "id: generic\nrules: {}\n")
	catalog, err = CatalogFor(generic, types.PlatformBigQuery)
	require.NoError(t, err)
	assert.Equal(t, types.PlatformBigQuery, catalog.Platform)
}

func TestLoadSettingsDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	s, err := LoadSettings(v)
	require.NoError(t, err)
	assert.Equal(t, OutputText, s.Output)
	assert.Equal(t, cost.DefaultPricing(), s.Pricing)

	p, err := s.ParsedPlatform()
	require.NoError(t, err)
	assert.Equal(t, types.PlatformBigQuery, p)
}

func TestLoadSettingsFromEnvAndFile(t *testing.T) {
	t.Setenv("WAREHOUSE_SQL_PRICING_BIGQUERY_PER_TIB", "5")
	t.Setenv("WAREHOUSE_SQL_OUTPUT", "JSON")

	v := viper.New()
	SetDefaults(v)
	BindEnv(v)
	v.SetConfigFile(writeFile(t, ".warehouse-sql.yaml", "platform: sf\nseed: 42\npricing:\n  databricks_per_dbu: 0.7\n"))
	require.NoError(t, v.ReadInConfig())

	s, err := LoadSettings(v)
	require.NoError(t, err)
	assert.Equal(t, OutputJSON, s.Output)
	assert.Equal(t, int64(42), s.Seed)
	assert.Equal(t, 5.0, s.Pricing.BigQueryPerTiB)
	assert.Equal(t, 0.7, s.Pricing.DatabricksPerDBU)
	assert.Equal(t, 3.0, s.Pricing.SnowflakePerCredit)

	p, err := s.ParsedPlatform()
	require.NoError(t, err)
	assert.Equal(t, types.PlatformSnowflake, p)
}

func TestLoadSettingsInvalid(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("output", "xml")
	_, err := LoadSettings(v)
	assert.ErrorContains(t, err, "unsupported output format")

	v.Set("output", "yaml")
	v.Set("platform", "oracle")
	_, err = LoadSettings(v)
	assert.ErrorContains(t, err, "invalid platform setting")
}
