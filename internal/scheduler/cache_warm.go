package scheduler

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/equimeter/pkg/logger"
)

// Warmer preloads upstream data for one symbol into the cache
type Warmer interface {
	Warm(ctx context.Context, symbol string) error
}

// WarmerFunc adapts a function to Warmer
type WarmerFunc func(ctx context.Context, symbol string) error

// Warm calls f
func (f WarmerFunc) Warm(ctx context.Context, symbol string) error {
	return f(ctx, symbol)
}

// CacheWarmJob refreshes cached upstream pages for a watchlist ahead of market hours
type CacheWarmJob struct {
	schedule    string
	watchlist   []string
	warmers     map[string]Warmer
	concurrency int
	logger      *logger.Logger
}

// NewCacheWarmJob creates a cache warm-up job
func NewCacheWarmJob(schedule string, watchlist []string, warmers map[string]Warmer, log *logger.Logger) *CacheWarmJob {
	return &CacheWarmJob{
		schedule:    schedule,
		watchlist:   watchlist,
		warmers:     warmers,
		concurrency: 2,
		logger:      log,
	}
}

// Name returns the job name
func (j *CacheWarmJob) Name() string {
	return "cache_warm"
}

// Schedule returns the cron schedule
func (j *CacheWarmJob) Schedule() string {
	return j.schedule
}

// Run warms every source for every watchlist symbol.
// One symbol failing does not stop the others; all failures are joined.
func (j *CacheWarmJob) Run(ctx context.Context) error {
	var (
		g    errgroup.Group
		errs = make([]error, len(j.watchlist))
	)
	g.SetLimit(j.concurrency)

	for i, symbol := range j.watchlist {
		g.Go(func() error {
			errs[i] = j.warmSymbol(ctx, symbol)
			return nil
		})
	}
	_ = g.Wait()

	err := errors.Join(errs...)
	j.logger.WithFields(map[string]interface{}{
		"symbols": len(j.watchlist),
		"failed":  countErrors(errs),
	}).Info("Cache warm-up finished")
	return err
}

func (j *CacheWarmJob) warmSymbol(ctx context.Context, symbol string) error {
	var errs []error
	for name, w := range j.warmers {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.Warm(ctx, symbol); err != nil {
			j.logger.WithSymbol(symbol).WithField("source", name).WithError(err).Warn("Cache warm-up failed")
			errs = append(errs, fmt.Errorf("%s %s: %w", name, symbol, err))
		}
	}
	return errors.Join(errs...)
}

func countErrors(errs []error) int {
	n := 0
	for _, err := range errs {
		if err != nil {
			n++
		}
	}
	return n
}
