package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testResolver() *Resolver {
	return NewResolver(map[string][]string{
		"peterdir": {"aider", "dirkcli"},
	})
}

func TestCanonicalize(t *testing.T) {
	r := testResolver()

	tests := []struct {
		name     string
		identity string
		want     string
	}{
		{
			name:     "assumed role session resolves through alias",
			identity: "arn:aws:sts::123456789012:assumed-role/bedrock-aider/i-0abc",
			want:     "peterdir",
		},
		{
			name:     "iam user with service prefix",
			identity: "arn:aws:iam::123456789012:user/bedrock-peterdir",
			want:     "peterdir",
		},
		{
			name:     "iam user alias",
			identity: "arn:aws:iam::123456789012:user/bedrock-dirkcli",
			want:     "peterdir",
		},
		{
			name:     "root account",
			identity: "arn:aws:iam::123456789012:root",
			want:     "root",
		},
		{
			name:     "bare short name with prefix",
			identity: "bedrock-aider",
			want:     "peterdir",
		},
		{
			name:     "unknown actor passes through",
			identity: "arn:aws:iam::123456789012:user/alice",
			want:     "alice",
		},
		{
			name:     "unknown actor with service prefix",
			identity: "arn:aws:iam::123456789012:user/bedrock-bob",
			want:     "bob",
		},
		{
			name:     "opaque arn buckets as Other",
			identity: "arn:aws:bedrock:us-west-2:123456789012:provisioned-model",
			want:     Other,
		},
		{
			name:     "plain username unchanged",
			identity: "carol",
			want:     "carol",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Canonicalize(tt.identity))
			// Mapping is stable across calls.
			assert.Equal(t, r.Canonicalize(tt.identity), r.Canonicalize(tt.identity))
		})
	}
}

func TestCanonicalizeNoAliases(t *testing.T) {
	r := NewResolver(nil)

	assert.Equal(t, "aider", r.Canonicalize("bedrock-aider"))
	assert.Equal(t, "root", r.Canonicalize("arn:aws:iam::123456789012:root"))
}
