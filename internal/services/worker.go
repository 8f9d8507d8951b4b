package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"alfredoptarigan/career-assistant/internal/repositories"
)

// SweepStats reports what one housekeeping pass removed.
type SweepStats struct {
	CacheEntries int64
	Reports      int
}

// Janitor periodically removes expired cache entries and archived reports.
type Janitor interface {
	Start(ctx context.Context)
	Stop()
	RunOnce(ctx context.Context) (SweepStats, error)
}

type JanitorOptions struct {
	Interval     time.Duration
	CacheMaxAge  time.Duration
	ReportMaxAge time.Duration
}

type janitor struct {
	cache    repositories.ComparisonCacheRepository
	archive  ReportArchive
	opts     JanitorOptions
	now      func() time.Time
	log      *zap.Logger
	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewJanitor builds a Janitor. archive may be nil when reports are not archived.
func NewJanitor(cache repositories.ComparisonCacheRepository, archive ReportArchive, opts JanitorOptions, log *zap.Logger) Janitor {
	return &janitor{
		cache:    cache,
		archive:  archive,
		opts:     opts,
		now:      time.Now,
		log:      log.Named("janitor"),
		stopChan: make(chan struct{}),
	}
}

// Start implements Janitor. A zero interval leaves housekeeping to the
// maintenance command.
func (j *janitor) Start(ctx context.Context) {
	if j.opts.Interval <= 0 {
		j.log.Info("periodic housekeeping disabled")
		return
	}

	j.wg.Add(1)
	go j.loop(ctx)

	j.log.Info("housekeeping started", zap.Duration("interval", j.opts.Interval))
}

// Stop implements Janitor.
func (j *janitor) Stop() {
	j.stopOnce.Do(func() {
		close(j.stopChan)
	})
	j.wg.Wait()
}

// RunOnce implements Janitor. Both sweeps run even if the first fails.
func (j *janitor) RunOnce(ctx context.Context) (SweepStats, error) {
	var (
		stats SweepStats
		errs  []error
	)

	if j.opts.CacheMaxAge > 0 {
		cutoff := j.now().Add(-j.opts.CacheMaxAge)
		deleted, err := j.cache.DeleteOlderThan(ctx, cutoff)
		if err != nil {
			errs = append(errs, fmt.Errorf("cache sweep: %w", err))
		}
		stats.CacheEntries = deleted
	}

	if j.archive != nil && j.opts.ReportMaxAge > 0 {
		cutoff := j.now().Add(-j.opts.ReportMaxAge)
		deleted, err := j.archive.PurgeOlderThan(ctx, cutoff)
		if err != nil {
			errs = append(errs, fmt.Errorf("report sweep: %w", err))
		}
		stats.Reports = deleted
	}

	j.log.Info("housekeeping pass completed",
		zap.Int64("cache_entries_deleted", stats.CacheEntries),
		zap.Int("reports_deleted", stats.Reports),
	)

	return stats, errors.Join(errs...)
}

func (j *janitor) loop(ctx context.Context) {
	defer j.wg.Done()

	ticker := time.NewTicker(j.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-j.stopChan:
			j.log.Info("housekeeping stopped")
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := j.RunOnce(ctx); err != nil {
				j.log.Warn("housekeeping pass failed", zap.Error(err))
			}
		}
	}
}
