package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron"

	"github.com/civilink/civilink-backend/internal/clients/redis"
	"github.com/civilink/civilink-backend/internal/logger"
	"github.com/civilink/civilink-backend/internal/services"
)

// AnalyticsJob re-runs the analytics refresh on a fixed schedule (every six
// hours). Cancellation of an in-flight refresh rides on the job context.
type AnalyticsJob struct {
	log       *logger.Logger
	analytics services.AnalyticsService
	cache     redis.ReportCache
	lookback  int
	cron      *cron.Cron
}

func NewAnalyticsJob(baseLog *logger.Logger, analytics services.AnalyticsService, cache redis.ReportCache, lookbackMonths int) *AnalyticsJob {
	if lookbackMonths < 1 {
		lookbackMonths = services.DefaultLookbackMonths
	}
	return &AnalyticsJob{
		log:       baseLog.With("job", "AnalyticsJob"),
		analytics: analytics,
		cache:     cache,
		lookback:  lookbackMonths,
	}
}

func (j *AnalyticsJob) Start(ctx context.Context) error {
	c := cron.New()
	err := c.AddFunc("0 0 */6 * * *", func() {
		j.RunOnce(ctx)
	})
	if err != nil {
		return err
	}
	c.Start()
	j.cron = c
	j.log.Info("Analytics refresh scheduled", "spec", "every 6 hours", "lookback_months", j.lookback)

	go func() {
		<-ctx.Done()
		c.Stop()
	}()
	return nil
}

// RunOnce performs a single refresh pass. Also used by the on-demand
// refresh endpoint.
func (j *AnalyticsJob) RunOnce(ctx context.Context) {
	j.log.Info("Refreshing analytics...")
	if err := j.analytics.RefreshAnalytics(ctx, time.Now().UTC(), j.lookback); err != nil {
		j.log.Error("Analytics refresh finished with errors", "error", err)
	} else {
		j.log.Info("Analytics refresh completed")
	}
	if j.cache != nil {
		if err := j.cache.Invalidate(ctx); err != nil {
			j.log.Warn("Report cache invalidation failed", "error", err)
		}
	}
}
