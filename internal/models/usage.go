package models

import (
	"time"
)

// UnknownKey marks a record whose identity or model field was absent from the
// query results. Such records are excluded from aggregation output.
const UnknownKey = "Unknown"

// RawUsageRecord is one pre-grouped row returned by the Logs Insights query:
// invocation and token sums per (identity, model, day).
type RawUsageRecord struct {
	Identity         string
	ModelID          string
	Day              string
	Invocations      int64
	InputTokens      int64
	CacheWriteTokens int64
	OutputTokens     int64
}

// PricingEntry holds USD prices per million tokens for one model.
type PricingEntry struct {
	Input  float64 `json:"input" yaml:"input"`
	Output float64 `json:"output" yaml:"output"`
}

// IsZero reports whether the entry carries no pricing information.
func (p PricingEntry) IsZero() bool {
	return p.Input == 0 && p.Output == 0
}

// TimeRange is the time window a usage query covers.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// String renders the range the way the dashboard displays it.
func (r TimeRange) String() string {
	if r.Start.IsZero() && r.End.IsZero() {
		return "N/A"
	}
	return r.Start.Format("2006-01-02") + " to " + r.End.Format("2006-01-02")
}

// TokenTotals holds input/output token sums for one aggregation key.
type TokenTotals struct {
	Input  int64 `json:"input"`
	Output int64 `json:"output"`
}

// Diagnostics counts records that were dropped or degraded during an
// aggregation pass. Informational only, never an error.
type Diagnostics struct {
	MalformedRecords int
	UnknownFiltered  int
	PricingMisses    int
}

// AggregatedUsage is the full multi-dimensional usage summary for one window.
// Field names match the dashboard's JSON contract.
type AggregatedUsage struct {
	UserInvocations map[string]int64 `json:"user_invocations"`
	DailyTrend      map[string]int64 `json:"daily_trend"`
	ModelUsage      map[string]int64 `json:"model_usage"`
	DateRange       string           `json:"date_range"`
	TotalEvents     int64            `json:"total_events"`

	UserTokens       map[string]TokenTotals `json:"user_tokens"`
	UserCosts        map[string]float64     `json:"user_costs"`
	ModelTokens      map[string]TokenTotals `json:"model_tokens"`
	ModelCosts       map[string]float64     `json:"model_costs"`
	ModelInvocations map[string]int64       `json:"model_invocations"`
	DailyCosts       map[string]float64     `json:"daily_costs"`

	UserDailyCosts      map[string]map[string]float64            `json:"user_daily_costs"`
	UserModelCosts      map[string]map[string]float64            `json:"user_model_costs"`
	UserModelDailyCosts map[string]map[string]map[string]float64 `json:"user_model_daily_costs"`

	ModelDisplayNames map[string]string `json:"model_display_names"`

	TotalInputTokens  int64   `json:"total_input_tokens"`
	TotalOutputTokens int64   `json:"total_output_tokens"`
	TotalCost         float64 `json:"total_cost"`

	Diagnostics Diagnostics `json:"-"`
}

// MatrixPrecision is the number of decimal places matrix cells and totals are
// rounded to before rendering.
const MatrixPrecision = 4

// CostMatrix is the dense user x model cost view. Cells[i][j] is the cost for
// Users[i] on Models[j], rounded to MatrixPrecision decimal places.
type CostMatrix struct {
	Users             []string           `json:"users"`
	Models            []string           `json:"models"`
	ModelDisplayNames map[string]string  `json:"model_display_names"`
	Cells             [][]float64        `json:"data"`
	UserTotals        map[string]float64 `json:"user_totals"`
	ModelTotals       map[string]float64 `json:"model_totals"`
	DateRange         string             `json:"date_range"`
	TotalCost         float64            `json:"total_cost"`
}

// QueryStatus is the lifecycle state of an asynchronous Logs Insights query.
type QueryStatus string

const (
	QueryStatusRunning   QueryStatus = "Running"
	QueryStatusComplete  QueryStatus = "Complete"
	QueryStatusFailed    QueryStatus = "Failed"
	QueryStatusCancelled QueryStatus = "Cancelled"
	QueryStatusTimedOut  QueryStatus = "TimedOut"
)

// Terminal reports whether the status ends the query lifecycle.
func (s QueryStatus) Terminal() bool {
	return s != QueryStatusRunning
}

// QueryHandle is a cached reference to an external query, keyed by window size.
type QueryHandle struct {
	ID        string
	Status    QueryStatus
	CreatedAt time.Time
}
