// Package pricing normalizes Bedrock model identifiers and resolves their
// per-million-token prices from the static Cross-Region Inference table.
package pricing

import (
	"regexp"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/peterdir/bedrock-usage/internal/models"

	fiberlog "github.com/gofiber/fiber/v2/log"
)

const inferenceProfileMarker = ":inference-profile/"

// regionPrefixes are the cross-region inference routing prefixes that wrap a
// model id, e.g. "us.anthropic.claude-...".
var regionPrefixes = map[string]struct{}{
	"us":     {},
	"global": {},
	"eu":     {},
	"ap":     {},
}

// Canonicalize strips ARN and region wrapping from a model id, yielding the
// stable aggregation and pricing-lookup key. Idempotent.
//
//	"arn:aws:bedrock:us-west-2:405644541454:inference-profile/us.anthropic.claude-sonnet-4-5-20250929-v1:0"
//	  -> "anthropic.claude-sonnet-4-5-20250929-v1:0"
//	"us.anthropic.claude-3-5-sonnet-20241022-v1:0"
//	  -> "anthropic.claude-3-5-sonnet-20241022-v1:0"
func Canonicalize(modelID string) string {
	if i := strings.Index(modelID, inferenceProfileMarker); i >= 0 {
		modelID = modelID[i+len(inferenceProfileMarker):]
	}

	if prefix, rest, found := strings.Cut(modelID, "."); found {
		if _, ok := regionPrefixes[prefix]; ok {
			return rest
		}
	}

	return modelID
}

// extendedContextMarker flags the 1M-token extended context variant of a model.
const extendedContextMarker = "[1m]"

var (
	dateSuffixRe    = regexp.MustCompile(`-\d{8}.*$`)
	dateAnywhereRe  = regexp.MustCompile(`-\d{8}`)
	versionSuffixRe = regexp.MustCompile(`(-v\d:0|-\d:0)$`)
	digitPairRe     = regexp.MustCompile(`\b(\d) (\d)\b`)
)

// DisplayName derives a human-friendly model name from a (canonical) model id.
// Pure function of its input.
//
//	"anthropic.claude-3-5-haiku-20241022-v1:0"          -> "Claude 3.5 Haiku"
//	"anthropic.claude-sonnet-4-5-20250929-v1:0[1m]"     -> "Claude Sonnet 4.5 (1m)"
//	"meta.llama3-70b-instruct-v1:0"                     -> "Llama3 70b Instruct"
func DisplayName(modelID string) string {
	cleanID := modelID

	hasExtendedContext := strings.Contains(cleanID, extendedContextMarker)
	if hasExtendedContext {
		cleanID = strings.ReplaceAll(cleanID, extendedContextMarker, "")
	}

	// Drop the provider prefix (anthropic., openai., meta., ...)
	if _, rest, found := strings.Cut(cleanID, "."); found {
		cleanID = rest
	}

	// Drop the 8-digit date suffix and everything after it; ids without a
	// date keep their version suffix trimming instead.
	cleanID = dateSuffixRe.ReplaceAllString(cleanID, "")
	if !dateAnywhereRe.MatchString(modelID) {
		cleanID = versionSuffixRe.ReplaceAllString(cleanID, "")
	}

	cleanID = strings.ReplaceAll(cleanID, "-", " ")
	cleanID = strings.ReplaceAll(cleanID, "_", " ")

	words := strings.Fields(cleanID)
	for i, w := range words {
		words[i] = capitalize(w)
	}
	name := strings.Join(words, " ")

	// "3 5" reads as a version split across words; rejoin it as "3.5".
	name = digitPairRe.ReplaceAllString(name, "$1.$2")

	if hasExtendedContext {
		name += " (1m)"
	}

	return name
}

func capitalize(word string) string {
	if word == "" {
		return word
	}
	return strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
}

// Resolver resolves model prices against the static table plus any
// configured overrides. Safe for concurrent use.
type Resolver struct {
	table    []TableEntry
	index    map[string]models.PricingEntry
	inactive []TableEntry
	misses   atomic.Int64
}

// NewResolver builds a resolver from the built-in table with the given
// overrides applied. Overriding an existing id replaces its prices in place;
// new ids are appended after the built-in entries.
func NewResolver(overrides map[string]models.PricingEntry) *Resolver {
	table := make([]TableEntry, len(activeTable))
	copy(table, activeTable)

	for id, entry := range overrides {
		replaced := false
		for i := range table {
			if table[i].ID == id {
				table[i].Entry = entry
				replaced = true
				break
			}
		}
		if !replaced {
			table = append(table, TableEntry{ID: id, Entry: entry})
		}
	}

	index := make(map[string]models.PricingEntry, len(table))
	for _, e := range table {
		index[e.ID] = e.Entry
	}

	return &Resolver{
		table:    table,
		index:    index,
		inactive: inactiveTable,
	}
}

// Price resolves the pricing entry for a raw model id. Lookup order: exact
// canonical match, exact raw match, then substring match in either direction
// against the table in declaration order. A miss returns the zero-priced
// default entry and false; it is logged and counted but never an error.
func (r *Resolver) Price(modelID string) (models.PricingEntry, bool) {
	cleanID := Canonicalize(modelID)

	if entry, ok := r.index[cleanID]; ok {
		return entry, true
	}
	if entry, ok := r.index[modelID]; ok {
		return entry, true
	}

	// Partial match for versioned models; declaration order decides ties.
	for _, e := range r.table {
		if strings.Contains(cleanID, e.ID) || strings.Contains(e.ID, cleanID) {
			return e.Entry, true
		}
		if strings.Contains(modelID, e.ID) || strings.Contains(e.ID, modelID) {
			return e.Entry, true
		}
	}

	r.misses.Add(1)
	fiberlog.Warnf("No pricing found for model: %s (cleaned: %s)", modelID, cleanID)
	return models.PricingEntry{}, false
}

// Misses reports how many lookups fell through to the default entry.
func (r *Resolver) Misses() int64 {
	return r.misses.Load()
}

// ActiveEntries returns the active price table in declaration order.
func (r *Resolver) ActiveEntries() []TableEntry {
	return r.table
}

// InactiveEntries returns the historical price table in declaration order.
func (r *Resolver) InactiveEntries() []TableEntry {
	return r.inactive
}

// FormatPrice renders a per-million price without unnecessary trailing zeros.
func FormatPrice(price float64) string {
	switch {
	case price >= 1:
		return strconv.FormatFloat(price, 'f', 2, 64)
	case price >= 0.01:
		return strings.TrimRight(strings.TrimRight(strconv.FormatFloat(price, 'f', 4, 64), "0"), ".")
	default:
		return strings.TrimRight(strings.TrimRight(strconv.FormatFloat(price, 'f', 6, 64), "0"), ".")
	}
}

// Vendor extracts the provider segment of a model id for the pricing page.
func Vendor(modelID string) string {
	if vendor, _, found := strings.Cut(modelID, "."); found {
		return capitalize(vendor)
	}
	return models.UnknownKey
}
