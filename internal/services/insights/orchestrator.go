package insights

import (
	"context"
	"strconv"
	"time"

	"github.com/peterdir/bedrock-usage/internal/models"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// Orchestrator drives the asynchronous query lifecycle: it starts or reuses
// a Logs Insights query per window, polls it to completion within the wait
// budget, and decodes the resulting rows.
type Orchestrator struct {
	client       LogQueryClient
	cache        *QueryCache
	group        singleflight.Group
	limiter      *rate.Limiter
	logGroup     string
	pollInterval time.Duration
	maxWait      time.Duration
	now          func() time.Time
}

// FetchResult is a decoded query result for one window.
type FetchResult struct {
	Records []models.RawUsageRecord
	Window  models.TimeRange
	// Malformed counts rows dropped during decoding.
	Malformed int
}

// NewOrchestrator wires an orchestrator around the given external client and
// handle cache.
func NewOrchestrator(client LogQueryClient, cache *QueryCache, logGroup string, queryCfg models.QueryConfig) *Orchestrator {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if queryCfg.StartsPerMinute > 0 {
		limiter = rate.NewLimiter(
			rate.Every(time.Minute/time.Duration(queryCfg.StartsPerMinute)),
			queryCfg.StartsPerMinute)
	}

	return &Orchestrator{
		client:       client,
		cache:        cache,
		limiter:      limiter,
		logGroup:     logGroup,
		pollInterval: queryCfg.PollInterval(),
		maxWait:      queryCfg.MaxWait(),
		now:          time.Now,
	}
}

// Fetch returns the raw grouped usage records for the trailing windowDays.
// Concurrent callers for the same window collapse into a single in-flight
// external query; late callers wait on the same result.
func (o *Orchestrator) Fetch(ctx context.Context, windowDays int) (*FetchResult, error) {
	if windowDays < 1 {
		return nil, models.NewValidationError("days must be a positive integer", nil)
	}

	v, err, _ := o.group.Do(strconv.Itoa(windowDays), func() (any, error) {
		return o.fetch(ctx, windowDays)
	})
	if err != nil {
		return nil, err
	}
	return v.(*FetchResult), nil
}

func (o *Orchestrator) fetch(ctx context.Context, windowDays int) (*FetchResult, error) {
	end := o.now()
	window := models.TimeRange{
		Start: end.Add(-time.Duration(windowDays) * 24 * time.Hour),
		End:   end,
	}

	if handle, ok := o.cache.Get(windowDays); ok {
		fiberlog.Debugf("reusing cached query %s for %dd window", handle.ID, windowDays)
		return o.await(ctx, windowDays, window, handle)
	}

	// Each cache miss is one billed StartQuery; the limiter bounds bursts
	// beyond what the TTL already prevents.
	if err := o.limiter.Wait(ctx); err != nil {
		return nil, models.NewQueryFailedError("query start interrupted", err)
	}

	queryID, err := o.client.StartQuery(ctx, o.logGroup, window, queryString)
	if err != nil {
		return nil, err
	}
	fiberlog.Infof("started Logs Insights query %s for %dd window", queryID, windowDays)

	handle := models.QueryHandle{
		ID:        queryID,
		Status:    models.QueryStatusRunning,
		CreatedAt: o.now(),
	}
	o.cache.Put(windowDays, handle)

	return o.await(ctx, windowDays, window, handle)
}

// await polls the query until it reaches a terminal state or the wait budget
// elapses. Terminal failures evict the handle so the next call re-attempts.
func (o *Orchestrator) await(ctx context.Context, windowDays int, window models.TimeRange, handle models.QueryHandle) (*FetchResult, error) {
	pollCtx, cancel := context.WithTimeout(ctx, o.maxWait)
	defer cancel()

	ticker := time.NewTicker(o.pollInterval)
	defer ticker.Stop()

	for {
		poll, err := o.client.QueryResults(pollCtx, handle.ID)
		if err != nil {
			if pollCtx.Err() != nil {
				return nil, o.abandon(windowDays, handle)
			}
			o.cache.Evict(windowDays, handle.ID)
			return nil, err
		}

		switch poll.Status {
		case models.QueryStatusComplete:
			o.cache.SetStatus(windowDays, handle.ID, models.QueryStatusComplete)
			records, malformed := ParseRows(poll.Rows)
			if malformed > 0 {
				fiberlog.Warnf("query %s returned %d malformed rows", handle.ID, malformed)
			}
			return &FetchResult{Records: records, Window: window, Malformed: malformed}, nil
		case models.QueryStatusFailed:
			o.cache.Evict(windowDays, handle.ID)
			return nil, models.NewQueryFailedError(poll.Detail, nil)
		case models.QueryStatusCancelled:
			o.cache.Evict(windowDays, handle.ID)
			return nil, models.NewQueryCancelledError(nil)
		}

		select {
		case <-ticker.C:
		case <-pollCtx.Done():
			return nil, o.abandon(windowDays, handle)
		}
	}
}

// abandon stops polling a query that outlived the wait budget. The remote
// query may still be executing, so a best-effort cancel is issued to avoid
// leaking billed query time.
func (o *Orchestrator) abandon(windowDays int, handle models.QueryHandle) error {
	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := o.client.StopQuery(stopCtx, handle.ID); err != nil {
		fiberlog.Warnf("failed to stop query %s after timeout: %v", handle.ID, err)
	} else {
		fiberlog.Infof("stopped query %s after exceeding %s wait budget", handle.ID, o.maxWait)
	}

	o.cache.Evict(windowDays, handle.ID)
	return models.NewQueryTimeoutError(o.maxWait)
}

// Cache exposes the handle cache, e.g. for health reporting.
func (o *Orchestrator) Cache() *QueryCache {
	return o.cache
}
