package pricing

import (
	"github.com/peterdir/bedrock-usage/internal/models"
)

// TableEntry pairs a canonical model id with its prices. Lookup falls back to
// substring matching over the table in declaration order, so the order of
// entries is significant.
type TableEntry struct {
	ID    string
	Entry models.PricingEntry
}

// activeTable holds Cross-Region Inference (CRI) prices on AWS Bedrock,
// USD per million tokens.
var activeTable = []TableEntry{
	// Claude 4.5 models (latest)
	{"anthropic.claude-sonnet-4-5-20250929-v1:0", models.PricingEntry{Input: 3.3, Output: 16.5}},
	{"anthropic.claude-sonnet-4-5-20250929-v1:0[1m]", models.PricingEntry{Input: 6.6, Output: 24.75}},
	{"anthropic.claude-haiku-4-5-20251001-v1:0", models.PricingEntry{Input: 1.1, Output: 5.5}},

	// Claude 3.5 / 4 sonnet models
	{"anthropic.claude-sonnet-4-20250514-v1:0", models.PricingEntry{Input: 3.0, Output: 15.0}},
	{"anthropic.claude-3-5-sonnet-20240620-v1:0", models.PricingEntry{Input: 3.0, Output: 15.0}},

	// Claude 3.5 Haiku
	{"anthropic.claude-3-5-haiku-20241022-v1:0", models.PricingEntry{Input: 1.0, Output: 5.0}},

	// Claude 3 models
	{"anthropic.claude-3-haiku-20240307-v1:0", models.PricingEntry{Input: 0.25, Output: 1.25}},

	// Claude 4.x opus models
	{"anthropic.claude-opus-4-20250514-v1:0", models.PricingEntry{Input: 15.0, Output: 75.0}},
	{"anthropic.claude-opus-4-1-20250805-v1:0", models.PricingEntry{Input: 15.0, Output: 75.0}},

	// OpenAI models
	{"openai.gpt-oss-20b-1:0", models.PricingEntry{Input: 0.07, Output: 0.3}},
	{"openai.gpt-oss-120b-1:0", models.PricingEntry{Input: 0.15, Output: 0.6}},

	// DeepSeek models
	{"deepseek.deepseek-r1", models.PricingEntry{Input: 1.35, Output: 5.4}},
	{"deepseek.deepseek-v3.1", models.PricingEntry{Input: 0.58, Output: 1.68}},

	// Qwen models
	{"qwen.qwen3-coder-30b-a3b", models.PricingEntry{Input: 0.15, Output: 0.6}},
	{"qwen.qwen3-32b", models.PricingEntry{Input: 0.15, Output: 0.6}},
	{"qwen.qwen3-235b-a22b-2507", models.PricingEntry{Input: 0.22, Output: 0.88}},
	{"qwen.qwen3-coder-480b-a35b", models.PricingEntry{Input: 0.22, Output: 1.8}},

	// Amazon Nova models
	{"amazon.nova-micro-v1:0", models.PricingEntry{Input: 0.035, Output: 0.00875}},
	{"amazon.nova-lite-v1:0", models.PricingEntry{Input: 0.06, Output: 0.015}},
	{"amazon.nova-pro-v1:0", models.PricingEntry{Input: 0.8, Output: 0.2}},
	{"amazon.nova-premier-v1:0", models.PricingEntry{Input: 2.5, Output: 0.625}},
}

// inactiveTable lists models no longer offered through the dashboard's
// accounts. Kept for the pricing reference page only, never used for lookups.
var inactiveTable = []TableEntry{
	{"anthropic.claude-3-5-sonnet-20241022-v2:0", models.PricingEntry{Input: 3.0, Output: 15.0}},
	{"anthropic.claude-3-opus-20240229-v1:0", models.PricingEntry{Input: 15.0, Output: 75.0}},
	{"anthropic.claude-3-sonnet-20240229-v1:0", models.PricingEntry{Input: 3.0, Output: 15.0}},
	{"anthropic.claude-v2:1", models.PricingEntry{Input: 8.0, Output: 24.0}},
	{"anthropic.claude-v2", models.PricingEntry{Input: 8.0, Output: 24.0}},
	{"anthropic.claude-instant-v1", models.PricingEntry{Input: 0.8, Output: 2.4}},
	{"amazon.titan-text-express-v1", models.PricingEntry{Input: 0.2, Output: 0.6}},
	{"amazon.titan-text-lite-v1", models.PricingEntry{Input: 0.15, Output: 0.2}},
	{"amazon.titan-embed-text-v1", models.PricingEntry{Input: 0.1, Output: 0.0}},
	{"ai21.j2-ultra-v1", models.PricingEntry{Input: 18.8, Output: 18.8}},
	{"ai21.j2-mid-v1", models.PricingEntry{Input: 12.5, Output: 12.5}},
	{"cohere.command-text-v14", models.PricingEntry{Input: 1.5, Output: 2.0}},
	{"cohere.command-light-text-v14", models.PricingEntry{Input: 0.3, Output: 0.6}},
	{"meta.llama3-70b-instruct-v1:0", models.PricingEntry{Input: 0.99, Output: 0.99}},
	{"meta.llama3-8b-instruct-v1:0", models.PricingEntry{Input: 0.3, Output: 0.6}},
}
