// Package identity normalizes raw caller identities (IAM user and assumed-role
// ARNs) into canonical display usernames, applying the alias table.
package identity

import (
	"strings"
)

// Other is the sentinel bucket for identities that cannot be attributed to a
// known actor.
const Other = "Other"

// servicePrefix is stripped from short actor names; the dashboard's IAM users
// and roles are provisioned as bedrock-<name>.
const servicePrefix = "bedrock-"

// Resolver maps raw identity strings to canonical usernames. The mapping is
// total and deterministic; repeated calls on the same input are stable.
type Resolver struct {
	primaries      map[string]struct{}
	aliasToPrimary map[string]string
}

// NewResolver builds a resolver from an alias table mapping each primary
// username to the aliases whose usage is folded under it.
func NewResolver(aliases map[string][]string) *Resolver {
	r := &Resolver{
		primaries:      make(map[string]struct{}, len(aliases)),
		aliasToPrimary: make(map[string]string),
	}
	for primary, names := range aliases {
		r.primaries[primary] = struct{}{}
		for _, alias := range names {
			r.aliasToPrimary[alias] = primary
		}
	}
	return r
}

// Canonicalize resolves a raw identity string to its canonical username, or
// Other when the identity stays opaque after normalization.
func (r *Resolver) Canonicalize(rawIdentity string) string {
	user := shortActorName(rawIdentity)

	user = strings.TrimPrefix(user, servicePrefix)

	if _, ok := r.primaries[user]; ok {
		return user
	}
	if primary, ok := r.aliasToPrimary[user]; ok {
		return primary
	}

	// Anything still carrying ARN structure is unattributable.
	if strings.Contains(user, ":") || strings.HasPrefix(user, "arn") {
		return Other
	}

	return user
}

// shortActorName extracts the actor segment from an IAM ARN, leaving
// non-ARN identities unchanged.
func shortActorName(identity string) string {
	if _, rest, found := strings.Cut(identity, "user/"); found {
		return firstSegment(rest)
	}
	if _, rest, found := strings.Cut(identity, "assumed-role/"); found {
		return firstSegment(rest)
	}
	if strings.Contains(identity, ":root") {
		return "root"
	}
	return identity
}

func firstSegment(path string) string {
	if segment, _, found := strings.Cut(path, "/"); found {
		return segment
	}
	return path
}
