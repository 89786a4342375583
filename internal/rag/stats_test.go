package rag

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecordQueryCountsAndAverages(t *testing.T) {
	stats := NewStats()

	stats.RecordQuery(2 * time.Second)
	snap := stats.Snapshot()
	assert.Equal(t, int64(1), snap.TotalQueries)
	assert.InDelta(t, 1.0, snap.AvgResponseTime, 1e-9, "(0 + 2) / 2")

	stats.RecordQuery(4 * time.Second)
	snap = stats.Snapshot()
	assert.Equal(t, int64(2), snap.TotalQueries)
	// Two-term running average, not a cumulative mean: (1 + 4) / 2
	assert.InDelta(t, 2.5, snap.AvgResponseTime, 1e-9)
}

func TestStatsReindexStamp(t *testing.T) {
	stats := NewStats()
	assert.Equal(t, "Unknown", stats.IndexStatus())
	assert.Empty(t, stats.Snapshot().LastReindexTime)

	stats.SetIndexStatus("Ready (Pinecone)")
	stats.MarkReindexed(time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC))

	snap := stats.Snapshot()
	assert.Equal(t, "Ready (Pinecone)", snap.IndexStatus)
	assert.Equal(t, "2025-03-14 09:26:53", snap.LastReindexTime)
}
