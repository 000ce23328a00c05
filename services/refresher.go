package services

import (
	"context"
	"time"

	"indiflow-dashboard-api/logger"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type RefresherOpts struct {
	Schedule   string
	Registry   *SessionRegistry
	Aggregator Reloader
	SessionTTL time.Duration
	Logger     *zap.Logger
}

// Refresher periodically reloads every open dashboard session and closes
// the ones nobody has looked at within the session TTL.
type Refresher struct {
	cron     *cron.Cron
	registry *SessionRegistry
	agg      Reloader
	ttl      time.Duration
	log      *zap.Logger
}

// NewRefresher validates the schedule (standard cron or @every syntax).
func NewRefresher(opts RefresherOpts) (*Refresher, error) {
	r := &Refresher{
		cron:     cron.New(),
		registry: opts.Registry,
		agg:      opts.Aggregator,
		ttl:      opts.SessionTTL,
		log:      logger.OrNop(opts.Logger),
	}
	if _, err := r.cron.AddFunc(opts.Schedule, func() { r.RunOnce(context.Background()) }); err != nil {
		return nil, err
	}
	return r, nil
}

// RunOnce prunes idle sessions and reloads the rest.
func (r *Refresher) RunOnce(ctx context.Context) {
	if n := r.registry.Prune(r.ttl); n > 0 {
		r.log.Info("closed idle dashboard sessions", zap.Int("count", n))
	}
	for _, sess := range r.registry.All() {
		if sess.Loading() {
			continue
		}
		_, _ = r.agg.LoadStats(ctx, sess)
	}
}

func (r *Refresher) Start() { r.cron.Start() }

// Stop halts scheduling and waits for a running refresh to finish.
func (r *Refresher) Stop() context.Context { return r.cron.Stop() }
