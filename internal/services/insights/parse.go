package insights

import (
	"fmt"
	"strconv"

	"github.com/peterdir/bedrock-usage/internal/models"

	fiberlog "github.com/gofiber/fiber/v2/log"
)

// Result field names produced by the aggregation expression.
const (
	fieldIdentity         = "identity.arn"
	fieldModelID          = "modelId"
	fieldDay              = "date_day"
	fieldInvocations      = "invocations"
	fieldInputTokens      = "total_input_tokens"
	fieldCacheWriteTokens = "total_cache_write_tokens"
	fieldOutputTokens     = "total_output_tokens"
)

// queryString aggregates invocation logs server-side: counts and token sums
// per identity, model, and day floor of the event timestamp.
const queryString = `fields @timestamp, identity.arn, modelId, input.inputTokenCount, input.cacheWriteInputTokenCount, output.outputTokenCount
| stats count() as invocations,
         sum(input.inputTokenCount) as total_input_tokens,
         sum(input.cacheWriteInputTokenCount) as total_cache_write_tokens,
         sum(output.outputTokenCount) as total_output_tokens
    by identity.arn, modelId, datefloor(@timestamp, 1d) as date_day`

// ParseRows decodes flattened result rows into usage records. Malformed rows
// (missing or non-numeric counters) are skipped individually and counted; a
// single bad row never aborts the pass.
func ParseRows(rows []ResultRow) ([]models.RawUsageRecord, int) {
	records := make([]models.RawUsageRecord, 0, len(rows))
	malformed := 0

	for _, row := range rows {
		record, err := parseRow(row)
		if err != nil {
			malformed++
			fiberlog.Debugf("skipping malformed usage row: %v", err)
			continue
		}
		records = append(records, record)
	}

	return records, malformed
}

func parseRow(row ResultRow) (models.RawUsageRecord, error) {
	record := models.RawUsageRecord{
		Identity: stringField(row, fieldIdentity),
		ModelID:  stringField(row, fieldModelID),
		Day:      stringField(row, fieldDay),
	}

	var err error
	if record.Invocations, err = intField(row, fieldInvocations); err != nil {
		return record, err
	}
	if record.InputTokens, err = intField(row, fieldInputTokens); err != nil {
		return record, err
	}
	if record.CacheWriteTokens, err = intField(row, fieldCacheWriteTokens); err != nil {
		return record, err
	}
	if record.OutputTokens, err = intField(row, fieldOutputTokens); err != nil {
		return record, err
	}

	return record, nil
}

func stringField(row ResultRow, name string) string {
	if v, ok := row[name]; ok && v != "" {
		return v
	}
	return models.UnknownKey
}

func intField(row ResultRow, name string) (int64, error) {
	v, ok := row[name]
	if !ok || v == "" {
		return 0, fmt.Errorf("missing field %s", name)
	}
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return n, nil
	}
	// Insights stats can render integral sums in float form.
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("non-numeric field %s: %q", name, v)
	}
	return int64(f), nil
}
