package rag

import (
	"sync"
	"time"
)

// Stats holds process-wide request counters. Nothing is persisted; a restart
// starts from zero.
type Stats struct {
	mu              sync.Mutex
	totalQueries    int64
	avgResponseTime float64
	lastReindexTime string
	indexStatus     string
}

// Snapshot is the JSON shape served by GET /api/stats.
type Snapshot struct {
	TotalQueries    int64   `json:"total_queries"`
	AvgResponseTime float64 `json:"avg_response_time"`
	LastReindexTime string  `json:"last_reindex_time"`
	IndexStatus     string  `json:"index_status"`
}

// NewStats starts with an unknown index status.
func NewStats() *Stats {
	return &Stats{indexStatus: "Unknown"}
}

// RecordQuery counts one chat request. The average intentionally halves the
// previous value against the latest duration rather than computing a true
// cumulative mean; older samples decay geometrically.
func (s *Stats) RecordQuery(duration time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totalQueries++
	s.avgResponseTime = (s.avgResponseTime + duration.Seconds()) / 2
}

// SetIndexStatus records the pipeline's view of the index.
func (s *Stats) SetIndexStatus(status string) {
	s.mu.Lock()
	s.indexStatus = status
	s.mu.Unlock()
}

// MarkReindexed stamps the last successful rebuild.
func (s *Stats) MarkReindexed(at time.Time) {
	s.mu.Lock()
	s.lastReindexTime = at.Format("2006-01-02 15:04:05")
	s.mu.Unlock()
}

// Snapshot returns a copy of the current counters.
func (s *Stats) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		TotalQueries:    s.totalQueries,
		AvgResponseTime: s.avgResponseTime,
		LastReindexTime: s.lastReindexTime,
		IndexStatus:     s.indexStatus,
	}
}

// IndexStatus returns just the index status string.
func (s *Stats) IndexStatus() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexStatus
}
