package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// StatsSource yields the current complaint counts per status.
type StatsSource interface {
	GetStats(ctx context.Context) (domain.ComplaintStats, error)
}

// GaugeSink receives refreshed counts.
type GaugeSink interface {
	SetComplaintCounts(counts map[string]int64)
}

// StatsRefresher periodically copies complaint stats into the metrics gauge.
type StatsRefresher struct {
	source  StatsSource
	sink    GaugeSink
	timeout time.Duration
	logger  *zap.Logger
	cron    *cron.Cron
}

// NewStatsRefresher schedules Refresh on schedule, a standard cron expression or descriptor such as "@every 1m".
func NewStatsRefresher(schedule string, source StatsSource, sink GaugeSink, logger *zap.Logger) (*StatsRefresher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &StatsRefresher{
		source:  source,
		sink:    sink,
		timeout: 10 * time.Second,
		logger:  logger,
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
	}
	if _, err := r.cron.AddFunc(schedule, func() { r.Refresh(context.Background()) }); err != nil {
		return nil, fmt.Errorf("schedule stats refresh %q: %w", schedule, err)
	}
	return r, nil
}

// Start runs one refresh immediately and then follows the schedule.
func (r *StatsRefresher) Start() {
	r.Refresh(context.Background())
	r.cron.Start()
	r.logger.Info("stats refresher started")
}

// Stop halts the schedule and waits for a running refresh to finish or ctx to expire.
func (r *StatsRefresher) Stop(ctx context.Context) {
	select {
	case <-r.cron.Stop().Done():
	case <-ctx.Done():
	}
}

// Refresh reads the stats once and publishes them. Failures keep the previous values.
func (r *StatsRefresher) Refresh(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	stats, err := r.source.GetStats(ctx)
	if err != nil {
		r.logger.Warn("stats refresh failed", zap.Error(err))
		return
	}
	counts := make(map[string]int64, len(stats))
	for status, n := range stats {
		counts[string(status)] = n
	}
	r.sink.SetComplaintCounts(counts)
}
