package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expatwise/retrieval/core"
)

func TestNewRouter(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		r, err := NewRouter()
		require.NoError(t, err)
		require.NotNil(t, r)

		assert.Equal(t, PartitionGeneral, r.DefaultPartition())
		assert.Equal(t, defaultHighConfidence, r.highConfidence)
		assert.Equal(t, defaultMidConfidence, r.midConfidence)
	})

	t.Run("rejects empty domain table", func(t *testing.T) {
		_, err := NewRouter(WithDomains(nil))
		require.ErrorIs(t, err, ErrNoDomains)
	})

	t.Run("rejects empty default partition", func(t *testing.T) {
		_, err := NewRouter(WithDefaultPartition(""))
		require.ErrorIs(t, err, ErrEmptyDefaultPartition)
	})

	t.Run("rejects inverted thresholds", func(t *testing.T) {
		_, err := NewRouter(WithThresholds(0.3, 0.6))
		require.ErrorIs(t, err, ErrInvalidThresholds)
	})

	t.Run("custom thresholds", func(t *testing.T) {
		r, err := NewRouter(WithThresholds(0.9, 0.5))
		require.NoError(t, err)
		assert.Equal(t, 0.9, r.highConfidence)
		assert.Equal(t, 0.5, r.midConfidence)
	})
}

func TestRoutePartitions(t *testing.T) {
	r, err := NewRouter()
	require.NoError(t, err)

	partitions := r.Partitions()
	assert.Equal(t, []string{
		PartitionVisas,
		PartitionLicensing,
		PartitionTax,
		PartitionActivities,
		PartitionPricing,
		PartitionGeneral,
	}, partitions)
}

func TestRouteEmptyQuery(t *testing.T) {
	r, err := NewRouter()
	require.NoError(t, err)

	for _, query := range []string{"", "   ", "\t\n"} {
		decision := r.Route(query)
		assert.Equal(t, PartitionGeneral, decision.Partition)
		assert.Equal(t, 0.0, decision.Confidence)
		assert.Equal(t, core.KindStandard, decision.Kind)
		assert.NotEmpty(t, decision.Fallbacks, "empty query should still get fallbacks")
	}
}

func TestRouteUnmatchedQuery(t *testing.T) {
	r, err := NewRouter()
	require.NoError(t, err)

	decision := r.Route("hello there friend")
	assert.Equal(t, PartitionGeneral, decision.Partition)
	assert.Equal(t, 0.0, decision.Confidence)
	assert.Equal(t, core.KindStandard, decision.Kind)
	assert.Equal(t, []string{PartitionVisas, PartitionLicensing, PartitionTax}, decision.Fallbacks)
}

func TestRouteEnumerationOverride(t *testing.T) {
	r, err := NewRouter()
	require.NoError(t, err)

	tests := []struct {
		name  string
		query string
	}{
		{"list all", "List all permitted business activities"},
		{"show me every", "show me every visa type you support"},
		{"enumerate all", "enumerate all license categories"},
		{"leading whitespace", "  list every activity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := r.Route(tt.query)
			assert.Equal(t, PartitionActivities, decision.Partition)
			assert.Equal(t, 1.0, decision.Confidence)
			assert.Equal(t, core.KindEnumeration, decision.Kind)
			assert.Empty(t, decision.Fallbacks)
		})
	}
}

func TestRouteEnumerationRequiresPrefix(t *testing.T) {
	r, err := NewRouter()
	require.NoError(t, err)

	// "list" mid-sentence is not an enumeration request.
	decision := r.Route("where can I find a list of all visa fees")
	assert.NotEqual(t, core.KindEnumeration, decision.Kind)
}

func TestRouteKeywordScoring(t *testing.T) {
	r, err := NewRouter()
	require.NoError(t, err)

	tests := []struct {
		name      string
		query     string
		partition string
	}{
		{"visa query", "requirements for a residence visa", PartitionVisas},
		{"licensing query", "how do I renew my trade license", PartitionLicensing},
		{"tax query", "when is the corporate tax filing deadline", PartitionTax},
		{"activity query", "which business activity classification applies", PartitionActivities},
		{"pricing query", "what fees and charges apply", PartitionPricing},
		{"phrase keyword", "am I eligible for the golden visa program", PartitionVisas},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := r.Route(tt.query)
			assert.Equal(t, tt.partition, decision.Partition)
			assert.Greater(t, decision.Confidence, 0.0)
		})
	}
}

func TestRouteTieBreaksByRegistrationOrder(t *testing.T) {
	r, err := NewRouter()
	require.NoError(t, err)

	// One hit each for visas and licensing; visas registered first.
	decision := r.Route("visa license")
	assert.Equal(t, PartitionVisas, decision.Partition)
}

func TestRouteConfidenceTiers(t *testing.T) {
	r, err := NewRouter()
	require.NoError(t, err)

	t.Run("high confidence has no fallbacks", func(t *testing.T) {
		// All hits in one domain and more than ten words for the length bonus.
		decision := r.Route("what documents do I need to renew my residence visa sponsorship for a dependent family member")
		assert.Equal(t, PartitionVisas, decision.Partition)
		assert.GreaterOrEqual(t, decision.Confidence, r.highConfidence)
		assert.Empty(t, decision.Fallbacks)
	})

	t.Run("mid confidence falls back to runner-up", func(t *testing.T) {
		// Two hits each for visas and pricing: ratio 0.5, nine words, no
		// length adjustment.
		decision := r.Route("how much does a residence visa cost in total")
		assert.Equal(t, PartitionVisas, decision.Partition)
		assert.GreaterOrEqual(t, decision.Confidence, r.midConfidence)
		assert.Less(t, decision.Confidence, r.highConfidence)
		assert.Equal(t, []string{PartitionPricing}, decision.Fallbacks)
	})

	t.Run("low confidence uses adjacency table", func(t *testing.T) {
		// One hit each, split across domains, plus the short-query penalty.
		decision := r.Route("visa fee")
		assert.Equal(t, PartitionVisas, decision.Partition)
		assert.Less(t, decision.Confidence, r.midConfidence)
		assert.Equal(t, []string{PartitionLicensing, PartitionGeneral}, decision.Fallbacks)
	})
}

func TestRouteShortQueryPenalty(t *testing.T) {
	r, err := NewRouter()
	require.NoError(t, err)

	short := r.Route("visa")
	long := r.Route("what is the process for a visa")

	// Both score only the visa domain, so the ratio is 1.0 for each; the
	// short query loses the penalty.
	assert.InDelta(t, 1.0-shortQueryPenalty, short.Confidence, 1e-9)
	assert.InDelta(t, 1.0, long.Confidence, 1e-9)
}

func TestRoutePricingKind(t *testing.T) {
	r, err := NewRouter()
	require.NoError(t, err)

	t.Run("pricing hit tags the query", func(t *testing.T) {
		decision := r.Route("how much does a residence visa cost in total")
		assert.Equal(t, core.KindPricing, decision.Kind)
	})

	t.Run("pricing kind even when another domain wins", func(t *testing.T) {
		decision := r.Route("visa fee")
		assert.Equal(t, PartitionVisas, decision.Partition)
		assert.Equal(t, core.KindPricing, decision.Kind)
	})

	t.Run("no pricing hit stays standard", func(t *testing.T) {
		decision := r.Route("requirements for a residence visa")
		assert.Equal(t, core.KindStandard, decision.Kind)
	})
}

func TestRouteFallbacksExcludePrimary(t *testing.T) {
	r, err := NewRouter(WithAdjacency(map[string][]string{
		PartitionVisas: {PartitionVisas, PartitionLicensing, PartitionGeneral},
	}))
	require.NoError(t, err)

	decision := r.Route("visa fee")
	require.Equal(t, PartitionVisas, decision.Partition)
	assert.NotContains(t, decision.Fallbacks, PartitionVisas)
}

func TestRouteConfidenceClamped(t *testing.T) {
	r, err := NewRouter()
	require.NoError(t, err)

	// Long single-domain query: ratio 1.0 plus the length bonus must clamp.
	decision := r.Route("please explain all the steps required to obtain a residence visa and passport sponsorship for my dependent")
	assert.LessOrEqual(t, decision.Confidence, 1.0)
	assert.GreaterOrEqual(t, decision.Confidence, 0.0)
}

func TestTokenizeAndFilter(t *testing.T) {
	t.Run("removes stop words", func(t *testing.T) {
		tokens := tokenizeAndFilter("the visa is for a company")
		assert.Equal(t, []string{"visa", "company"}, tokens)
	})

	t.Run("trims punctuation and lowercases", func(t *testing.T) {
		tokens := tokenizeAndFilter("Visa? License! (fees)")
		assert.Equal(t, []string{"visa", "license", "fees"}, tokens)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, tokenizeAndFilter(""))
	})
}
