package pricing

import (
	"testing"

	"github.com/peterdir/bedrock-usage/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name    string
		modelID string
		want    string
	}{
		{
			name:    "inference profile ARN with region prefix",
			modelID: "arn:aws:bedrock:us-west-2:405644541454:inference-profile/us.anthropic.claude-sonnet-4-5-20250929-v1:0",
			want:    "anthropic.claude-sonnet-4-5-20250929-v1:0",
		},
		{
			name:    "us region prefix",
			modelID: "us.anthropic.claude-3-5-sonnet-20241022-v1:0",
			want:    "anthropic.claude-3-5-sonnet-20241022-v1:0",
		},
		{
			name:    "global region prefix",
			modelID: "global.anthropic.claude-opus-4-1-20250805-v1:0",
			want:    "anthropic.claude-opus-4-1-20250805-v1:0",
		},
		{
			name:    "already canonical",
			modelID: "anthropic.claude-3-haiku-20240307-v1:0",
			want:    "anthropic.claude-3-haiku-20240307-v1:0",
		},
		{
			name:    "no dots",
			modelID: "some-model",
			want:    "some-model",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Canonicalize(tt.modelID)
			assert.Equal(t, tt.want, got)
			// Canonicalization is idempotent.
			assert.Equal(t, got, Canonicalize(got))
		})
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		modelID string
		want    string
	}{
		{"anthropic.claude-3-5-haiku-20241022-v1:0", "Claude 3.5 Haiku"},
		{"anthropic.claude-sonnet-4-5-20250929-v1:0", "Claude Sonnet 4.5"},
		{"anthropic.claude-sonnet-4-5-20250929-v1:0[1m]", "Claude Sonnet 4.5 (1m)"},
		{"anthropic.claude-3-haiku-20240307-v1:0", "Claude 3 Haiku"},
		{"meta.llama3-70b-instruct-v1:0", "Llama3 70b Instruct"},
		{"amazon.nova-micro-v1:0", "Nova Micro"},
	}

	for _, tt := range tests {
		t.Run(tt.modelID, func(t *testing.T) {
			assert.Equal(t, tt.want, DisplayName(tt.modelID))
			// Pure function of its input.
			assert.Equal(t, DisplayName(tt.modelID), DisplayName(tt.modelID))
		})
	}
}

func TestPriceExactMatch(t *testing.T) {
	r := NewResolver(nil)

	entry, ok := r.Price("anthropic.claude-3-haiku-20240307-v1:0")
	require.True(t, ok)
	assert.Equal(t, 0.25, entry.Input)
	assert.Equal(t, 1.25, entry.Output)
}

func TestPriceStripsRegionPrefix(t *testing.T) {
	r := NewResolver(nil)

	entry, ok := r.Price("us.anthropic.claude-3-haiku-20240307-v1:0")
	require.True(t, ok)
	assert.Equal(t, 0.25, entry.Input)
}

func TestPriceExtendedContextVariant(t *testing.T) {
	r := NewResolver(nil)

	std, ok := r.Price("anthropic.claude-sonnet-4-5-20250929-v1:0")
	require.True(t, ok)
	ext, ok := r.Price("us.anthropic.claude-sonnet-4-5-20250929-v1:0[1m]")
	require.True(t, ok)
	assert.Greater(t, ext.Input, std.Input)
}

func TestPriceSubstringMatch(t *testing.T) {
	r := NewResolver(nil)

	// A raw id wrapping a known key still resolves via partial match.
	entry, ok := r.Price("anthropic.claude-3-haiku-20240307-v1:0:200k")
	require.True(t, ok)
	assert.Equal(t, 0.25, entry.Input)
}

func TestPriceMissIsObservableNotFatal(t *testing.T) {
	r := NewResolver(nil)

	entry, ok := r.Price("mistral.mystery-model-v9")
	assert.False(t, ok)
	assert.True(t, entry.IsZero())
	assert.Equal(t, int64(1), r.Misses())
}

func TestPriceOverrides(t *testing.T) {
	r := NewResolver(map[string]models.PricingEntry{
		"anthropic.claude-3-haiku-20240307-v1:0": {Input: 0.5, Output: 2.5},
		"acme.custom-model-v1:0":                 {Input: 1.0, Output: 2.0},
	})

	entry, ok := r.Price("anthropic.claude-3-haiku-20240307-v1:0")
	require.True(t, ok)
	assert.Equal(t, 0.5, entry.Input)

	entry, ok = r.Price("acme.custom-model-v1:0")
	require.True(t, ok)
	assert.Equal(t, 1.0, entry.Input)
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "15.00", FormatPrice(15.0))
	assert.Equal(t, "3.30", FormatPrice(3.3))
	assert.Equal(t, "0.25", FormatPrice(0.25))
	assert.Equal(t, "0.035", FormatPrice(0.035))
	assert.Equal(t, "0.00875", FormatPrice(0.00875))
}

func TestVendor(t *testing.T) {
	assert.Equal(t, "Anthropic", Vendor("anthropic.claude-3-haiku-20240307-v1:0"))
	assert.Equal(t, "Openai", Vendor("openai.gpt-oss-20b-1:0"))
	assert.Equal(t, models.UnknownKey, Vendor("no-vendor"))
}
