package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"indiflow-dashboard-api/models"
	"indiflow-dashboard-api/repository"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var errBoom = errors.New("boom")

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := repository.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newStoreAggregator(stores *repository.Stores) *Aggregator {
	return NewAggregator(AggregatorOpts{
		Users:    stores.Users,
		Training: stores.Training,
		Routes:   stores.Routes,
		Searches: stores.Searches,
	})
}

type fakeUsers struct {
	users []models.User
	err   error
}

func (f *fakeUsers) GetAll(context.Context) ([]models.User, error) {
	return f.users, f.err
}

type fakeList[T any] struct {
	items  []T
	err    error
	page   repository.Page
	orders []repository.Order
}

func (f *fakeList[T]) List(_ context.Context, _ repository.Filter, orders []repository.Order, page repository.Page) ([]T, int64, error) {
	f.page, f.orders = page, orders
	if f.err != nil {
		return nil, 0, f.err
	}
	items := f.items
	if page.Size > 0 && len(items) > page.Size {
		items = items[:page.Size]
	}
	return items, int64(len(f.items)), nil
}

type fakeWriter struct {
	mu       sync.Mutex
	failAt   int
	inserted []models.TrainingSubmission
	calls    int
}

func newFakeWriter() *fakeWriter { return &fakeWriter{failAt: -1} }

func (f *fakeWriter) Insert(_ context.Context, items []models.TrainingSubmission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == f.failAt {
		f.calls++
		return errBoom
	}
	f.calls++
	f.inserted = append(f.inserted, items...)
	return nil
}

type fakeReloader struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeReloader) LoadStats(_ context.Context, sess *Session) (models.DashboardStats, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return sess.Stats(), nil
}

func (f *fakeReloader) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type recordingPublisher struct {
	published []models.DashboardStats
}

func (p *recordingPublisher) PublishStats(_ context.Context, stats models.DashboardStats) error {
	p.published = append(p.published, stats)
	return nil
}
