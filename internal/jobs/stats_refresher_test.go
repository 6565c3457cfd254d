package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/observability"
)

type stubStats struct {
	mu    sync.Mutex
	stats domain.ComplaintStats
	err   error
	calls int
}

func (s *stubStats) GetStats(context.Context) (domain.ComplaintStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.stats, s.err
}

func (s *stubStats) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type recordingSink struct {
	counts map[string]int64
}

func (r *recordingSink) SetComplaintCounts(counts map[string]int64) {
	r.counts = counts
}

func TestStatsRefresher_Refresh(t *testing.T) {
	source := &stubStats{stats: domain.ComplaintStats{
		domain.ComplaintStatusPending:    3,
		domain.ComplaintStatusInProgress: 1,
		domain.ComplaintStatusResolved:   0,
	}}
	sink := &recordingSink{}
	r, err := NewStatsRefresher("@every 1h", source, sink, nil)
	require.NoError(t, err)

	r.Refresh(context.Background())
	assert.Equal(t, map[string]int64{"PENDING": 3, "IN_PROGRESS": 1, "RESOLVED": 0}, sink.counts)

	source.err = errors.New("db down")
	sink.counts = nil
	r.Refresh(context.Background())
	assert.Nil(t, sink.counts, "failed refresh publishes nothing")
}

func TestStatsRefresher_InvalidSchedule(t *testing.T) {
	_, err := NewStatsRefresher("every now and then", &stubStats{}, &recordingSink{}, nil)
	assert.Error(t, err)
}

func TestStatsRefresher_UpdatesGauge(t *testing.T) {
	metrics := observability.NewMetrics()
	source := &stubStats{stats: domain.ComplaintStats{domain.ComplaintStatusResolved: 7}}
	r, err := NewStatsRefresher("@every 1s", source, metrics, nil)
	require.NoError(t, err)

	r.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	defer r.Stop(ctx)

	assert.GreaterOrEqual(t, source.callCount(), 1)
	count, err := testutil.GatherAndCount(metrics.Registry, "complaint_service_complaints_by_status")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
