package main

import (
	"fmt"

	"indiflow-dashboard-api/config"
	"indiflow-dashboard-api/logger"
	"indiflow-dashboard-api/repository"
	"indiflow-dashboard-api/services"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// app is the wiring shared by the server and the one-shot commands.
type app struct {
	cfg        *config.Config
	log        *zap.Logger
	db         *gorm.DB
	stores     *repository.Stores
	cache      *services.CacheService
	aggregator *services.Aggregator
	ingestor   *services.Ingestor
}

// newApp loads config, initialises logging and connects to the database.
// Redis is optional: withCache=false or an unreachable server yields a
// disconnected cache.
func newApp(withCache bool) (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	log := logger.Get()

	db, err := repository.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	cache := services.NewDisconnectedCache(log)
	if withCache {
		if cache, err = services.NewCacheService(cfg.Redis, 5, log); err != nil {
			log.Warn("continuing without redis", zap.Error(err))
		}
	}

	stores := repository.NewStores(db)
	agg := services.NewAggregator(services.AggregatorOpts{
		Users:     stores.Users,
		Training:  stores.Training,
		Routes:    stores.Routes,
		Searches:  stores.Searches,
		Publisher: cache,
		Logger:    log,
	})
	ingestor := services.NewIngestor(services.IngestorOpts{
		Training: stores.Training,
		Reloader: agg,
		Logger:   log,
	})

	return &app{
		cfg:        cfg,
		log:        log,
		db:         db,
		stores:     stores,
		cache:      cache,
		aggregator: agg,
		ingestor:   ingestor,
	}, nil
}

func (a *app) close() {
	a.cache.Close()
	if sqlDB, err := a.db.DB(); err == nil {
		sqlDB.Close()
	}
	logger.Sync()
}
