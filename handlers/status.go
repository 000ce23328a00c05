package handlers

import (
	"context"
	"net/http"
	"time"

	"indiflow-dashboard-api/repository"
	"indiflow-dashboard-api/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const statusProbeTimeout = 2 * time.Second

type StatusHandler struct {
	db       *gorm.DB
	stores   *repository.Stores
	cache    *services.CacheService
	registry *services.SessionRegistry
}

func NewStatusHandler(db *gorm.DB, stores *repository.Stores, cache *services.CacheService, registry *services.SessionRegistry) *StatusHandler {
	return &StatusHandler{db: db, stores: stores, cache: cache, registry: registry}
}

type SystemStatus struct {
	API            string `json:"api"`
	Database       string `json:"database"`
	Cache          string `json:"cache"`
	ModelSamples   int64  `json:"model_samples"`
	OpenSessions   int    `json:"open_sessions"`
	DatabaseDetail string `json:"database_detail,omitempty"`
}

// Status reports component health. It answers 200 even when a dependency
// is down; the body says which.
func (h *StatusHandler) Status(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), statusProbeTimeout)
	defer cancel()

	st := SystemStatus{API: "online", Database: "connected", Cache: "connected", OpenSessions: len(h.registry.All())}

	if err := pingDB(ctx, h.db); err != nil {
		st.Database = "unreachable"
		st.DatabaseDetail = err.Error()
	} else if _, total, err := h.stores.Training.List(ctx, nil, nil, repository.Page{Number: 1, Size: 1}); err == nil {
		st.ModelSamples = total
	}

	switch {
	case !h.cache.Available():
		st.Cache = "disabled"
	case h.cache.Ping(ctx) != nil:
		st.Cache = "unreachable"
	}

	c.JSON(http.StatusOK, st)
}

func pingDB(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Health is the liveness probe.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "UP",
		"message": "IndiFlow dashboard API is running",
	})
}
