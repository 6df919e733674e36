package cost

// Pricing holds the list prices the linear models multiply by. Keys match the
// pricing.* configuration section.
type Pricing struct {
	// BigQueryPerTiB is the on-demand price of one TiB scanned.
	BigQueryPerTiB float64 `mapstructure:"bigquery_per_tib" yaml:"bigquery_per_tib" json:"bigqueryPerTib"`
	// SnowflakePerCredit is the price of one warehouse credit.
	SnowflakePerCredit float64 `mapstructure:"snowflake_per_credit" yaml:"snowflake_per_credit" json:"snowflakePerCredit"`
	// SnowflakeCreditsPerHour is the credit burn rate of the warehouse size.
	SnowflakeCreditsPerHour float64 `mapstructure:"snowflake_credits_per_hour" yaml:"snowflake_credits_per_hour" json:"snowflakeCreditsPerHour"`
	// DatabricksPerDBU is the price of one Databricks unit.
	DatabricksPerDBU float64 `mapstructure:"databricks_per_dbu" yaml:"databricks_per_dbu" json:"databricksPerDbu"`
	Currency         string  `mapstructure:"currency" yaml:"currency" json:"currency"`
}

// DefaultPricing returns list prices for on-demand BigQuery, an X-Small
// Snowflake warehouse and Databricks SQL.
func DefaultPricing() Pricing {
	return Pricing{
		BigQueryPerTiB:          6.25,
		SnowflakePerCredit:      3.00,
		SnowflakeCreditsPerHour: 1,
		DatabricksPerDBU:        0.55,
		Currency:                "USD",
	}
}

// withDefaults fills zero fields from DefaultPricing.
func (p Pricing) withDefaults() Pricing {
	d := DefaultPricing()
	if p.BigQueryPerTiB <= 0 {
		p.BigQueryPerTiB = d.BigQueryPerTiB
	}
	if p.SnowflakePerCredit <= 0 {
		p.SnowflakePerCredit = d.SnowflakePerCredit
	}
	if p.SnowflakeCreditsPerHour <= 0 {
		p.SnowflakeCreditsPerHour = d.SnowflakeCreditsPerHour
	}
	if p.DatabricksPerDBU <= 0 {
		p.DatabricksPerDBU = d.DatabricksPerDBU
	}
	if p.Currency == "" {
		p.Currency = d.Currency
	}
	return p
}
