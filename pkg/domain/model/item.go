package model

import (
	"time"

	"github.com/lwalder/veille/pkg/domain/types"
)

// Item is the canonical content record every source is normalized into
// before merging. This shape is the contract that makes heterogeneous
// sources mergeable.
type Item struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	URL         string           `json:"url"`
	PublishedAt time.Time        `json:"published_at"`
	Author      string           `json:"author"`
	Source      types.SourceName `json:"source"`
	Metadata    map[string]any   `json:"metadata,omitempty"`
}

// SourceData is the validated output of one source for one request
type SourceData struct {
	Source    types.SourceName `json:"source"`
	Timestamp time.Time        `json:"timestamp"`
	Count     int              `json:"count"`
	Items     []Item           `json:"items"`
	Metadata  map[string]any   `json:"metadata"`
}

// SourceResult is the per-source outcome of one aggregation dispatch.
// Exactly one of Data or Err is set.
type SourceResult struct {
	Source  types.SourceName
	Success bool
	Data    *SourceData
	Err     error
}

// SourceStat exposes one source's outcome in the response envelope
type SourceStat struct {
	ItemsCount int    `json:"items_count"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
}

// Summary carries the aggregate counts of one aggregation
type Summary struct {
	TotalSources      int `json:"total_sources"`
	SuccessfulSources int `json:"successful_sources"`
	TotalItems        int `json:"total_items"`
	LimitApplied      int `json:"limit_applied"`
}

// Envelope is the top-level aggregation response. Constructed once per
// request and immutable once returned.
type Envelope struct {
	Format        string                          `json:"format"`
	AggregationID string                          `json:"aggregation_id"`
	Timestamp     time.Time                       `json:"timestamp"`
	Summary       Summary                         `json:"summary"`
	Items         []Item                          `json:"items"`
	Sources       map[types.SourceName]SourceStat `json:"sources"`
}
