package services

import (
	"context"
	"time"

	"indiflow-dashboard-api/logger"
	"indiflow-dashboard-api/models"
	"indiflow-dashboard-api/repository"

	"go.uber.org/zap"
)

// Fetch ceilings used by every dashboard load.
const (
	RecentTrainingLimit = 100
	RouteLimit          = 1000
	SearchLimit         = 1000
)

type UserSource interface {
	GetAll(ctx context.Context) ([]models.User, error)
}

type Lister[T any] interface {
	List(ctx context.Context, filter repository.Filter, orders []repository.Order, page repository.Page) ([]T, int64, error)
}

// StatsPublisher receives every successfully loaded stats snapshot.
type StatsPublisher interface {
	PublishStats(ctx context.Context, stats models.DashboardStats) error
}

type AggregatorOpts struct {
	Users     UserSource
	Training  Lister[models.TrainingSubmission]
	Routes    Lister[models.FrequentRoute]
	Searches  Lister[models.SearchHistory]
	Publisher StatsPublisher
	Logger    *zap.Logger
	Now       func() time.Time
}

// Aggregator loads the dashboard data set and derives its statistics.
type Aggregator struct {
	users     UserSource
	training  Lister[models.TrainingSubmission]
	routes    Lister[models.FrequentRoute]
	searches  Lister[models.SearchHistory]
	publisher StatsPublisher
	log       *zap.Logger
	now       func() time.Time
}

func NewAggregator(opts AggregatorOpts) *Aggregator {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Aggregator{
		users:     opts.Users,
		training:  opts.Training,
		routes:    opts.Routes,
		searches:  opts.Searches,
		publisher: opts.Publisher,
		log:       logger.OrNop(opts.Logger),
		now:       now,
	}
}

// Fetch reads everything a load needs. The first failing read aborts it.
func (a *Aggregator) Fetch(ctx context.Context) (Snapshot, error) {
	users, err := a.users.GetAll(ctx)
	if err != nil {
		return Snapshot{}, &FetchError{Source: "users", Err: err}
	}

	training, _, err := a.training.List(ctx, nil, repository.ByCreatedDesc,
		repository.Page{Number: 1, Size: RecentTrainingLimit})
	if err != nil {
		return Snapshot{}, &FetchError{Source: "training submissions", Err: err}
	}

	routes, _, err := a.routes.List(ctx, nil, nil, repository.Page{Number: 1, Size: RouteLimit})
	if err != nil {
		return Snapshot{}, &FetchError{Source: "frequent routes", Err: err}
	}

	searches, _, err := a.searches.List(ctx, nil, nil, repository.Page{Number: 1, Size: SearchLimit})
	if err != nil {
		return Snapshot{}, &FetchError{Source: "search history", Err: err}
	}

	now := a.now()
	return Snapshot{
		Stats: models.DashboardStats{
			TotalUsers:        len(users),
			ActiveToday:       CountActiveToday(users, now),
			TotalRoutes:       len(routes),
			TotalSearches:     len(searches),
			TrainingDataCount: len(training),
		},
		Users:    users,
		Training: training,
		LoadedAt: now,
	}, nil
}

// LoadStats refreshes the session. On failure the session keeps its
// previous snapshot and those stats are returned with the error.
func (a *Aggregator) LoadStats(ctx context.Context, sess *Session) (models.DashboardStats, error) {
	sess.beginLoad()
	defer sess.endLoad()

	start := time.Now()
	snap, err := a.Fetch(ctx)
	loadDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		loadsFailed.Inc()
		a.log.Error("dashboard load failed", zap.String("session", sess.ID), zap.Error(err))
		return sess.Stats(), err
	}

	sess.apply(snap)
	loadsCompleted.Inc()
	a.log.Debug("dashboard loaded",
		zap.String("session", sess.ID),
		zap.Int("users", snap.Stats.TotalUsers),
		zap.Int("training", snap.Stats.TrainingDataCount),
		zap.Duration("took", time.Since(start)))

	if a.publisher != nil {
		if err := a.publisher.PublishStats(ctx, snap.Stats); err != nil {
			a.log.Warn("stats publish failed", zap.Error(err))
		}
	}
	return snap.Stats, nil
}

// dayBounds returns local midnight of t's day and the following midnight.
func dayBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}

func sameDay(t, now time.Time) bool {
	start, end := dayBounds(now)
	return !t.Before(start) && t.Before(end)
}

// CountActiveToday counts users whose last login falls on now's calendar
// day in now's location.
func CountActiveToday(users []models.User, now time.Time) int {
	n := 0
	for _, u := range users {
		if sameDay(u.LastLogin, now) {
			n++
		}
	}
	return n
}
