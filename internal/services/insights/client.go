// Package insights manages the lifecycle of asynchronous CloudWatch Logs
// Insights usage queries: starting, polling, caching, and decoding results.
package insights

import (
	"context"

	"github.com/peterdir/bedrock-usage/internal/models"
)

// ResultRow is one flattened result row: field name to string value.
type ResultRow map[string]string

// QueryPoll is a point-in-time snapshot of an asynchronous query.
type QueryPoll struct {
	Status models.QueryStatus
	// Detail carries extra context for failed queries, e.g. query statistics.
	Detail string
	// Rows is populated once Status is Complete.
	Rows []ResultRow
}

// LogQueryClient is the external log-query service boundary. Implementations
// must map transport failures to the models.AppError taxonomy.
type LogQueryClient interface {
	StartQuery(ctx context.Context, logGroup string, window models.TimeRange, queryString string) (string, error)
	QueryResults(ctx context.Context, queryID string) (*QueryPoll, error)
	StopQuery(ctx context.Context, queryID string) error
}
