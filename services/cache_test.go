package services

import (
	"context"
	"testing"

	"indiflow-dashboard-api/config"
	"indiflow-dashboard-api/models"
)

func TestDisconnectedCacheIsNoop(t *testing.T) {
	ctx := context.Background()
	c := NewDisconnectedCache(nil)

	if c.Available() {
		t.Error("disconnected cache reports available")
	}
	var dest []string
	ok, err := c.Get(ctx, "k", &dest)
	if ok || err != nil {
		t.Errorf("Get = %v, %v; want miss without error", ok, err)
	}
	if err := c.Set(ctx, "k", []string{"v"}, 0); err != nil {
		t.Errorf("Set: %v", err)
	}
	if err := c.PublishStats(ctx, models.DashboardStats{TotalUsers: 1}); err != nil {
		t.Errorf("PublishStats: %v", err)
	}
	if _, ok, err := c.LatestStats(ctx); ok || err != nil {
		t.Errorf("LatestStats = %v, %v", ok, err)
	}
	if c.Subscribe(ctx, StatsChannel) != nil {
		t.Error("Subscribe should return nil without redis")
	}
	if c.Ping(ctx) == nil {
		t.Error("Ping should fail without redis")
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestNewCacheServiceUnreachable(t *testing.T) {
	c, err := NewCacheService(config.RedisConfig{Host: "127.0.0.1", Port: 1}, 1, nil)
	if err == nil {
		t.Fatal("expected connection error")
	}
	if c == nil || c.Available() {
		t.Error("unreachable redis should yield a usable disconnected cache")
	}
}
