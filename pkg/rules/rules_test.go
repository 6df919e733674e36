package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsxbet/warehouse-sql-analyzer/pkg/types"
)

func TestDefaultCatalog(t *testing.T) {
	tests := []struct {
		platform types.Platform
		want     int
		only     string
	}{
		{types.PlatformBigQuery, 12, string(LegacySQLSyntax)},
		{types.PlatformSnowflake, 12, string(ResultCacheBusting)},
		{types.PlatformDatabricks, 12, string(CartesianCrossJoin)},
	}

	for _, tt := range tests {
		t.Run(tt.platform.String(), func(t *testing.T) {
			catalog := DefaultCatalog(tt.platform)
			require.NoError(t, catalog.Validate())
			assert.Equal(t, tt.want, catalog.Len())
			assert.Equal(t, tt.platform, catalog.Platform)
			assert.Equal(t, CatalogID(tt.platform), catalog.ID)

			rule, _, ok := catalog.Find(tt.only)
			require.True(t, ok)
			assert.True(t, rule.Enabled)

			for _, category := range types.Categories {
				assert.NotEmpty(t, catalog.Rules[category], "category %s", category)
			}
		})
	}
}

func TestDefaultCatalogIsFresh(t *testing.T) {
	first := DefaultCatalog(types.PlatformBigQuery)
	require.NoError(t, first.Disable(string(AvoidSelectStar)))

	second := DefaultCatalog(types.PlatformBigQuery)
	rule, _, ok := second.Find(string(AvoidSelectStar))
	require.True(t, ok)
	assert.True(t, rule.Enabled)
	assert.Equal(t, 1, second.Version)
}

func TestLookup(t *testing.T) {
	def, ok := Lookup(JoinWithoutCondition)
	require.True(t, ok)
	assert.Equal(t, types.CategoryPerformance, def.Category)
	assert.Equal(t, types.SeverityHigh, def.Severity)

	_, ok = Lookup("unknown")
	assert.False(t, ok)
}

func TestAppliesTo(t *testing.T) {
	def, _ := Lookup(LegacySQLSyntax)
	assert.True(t, def.AppliesTo(types.PlatformBigQuery))
	assert.False(t, def.AppliesTo(types.PlatformSnowflake))

	def, _ = Lookup(AvoidSelectStar)
	for _, p := range types.Platforms {
		assert.True(t, def.AppliesTo(p))
	}
}
