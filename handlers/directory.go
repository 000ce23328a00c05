package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"indiflow-dashboard-api/models"
	"indiflow-dashboard-api/repository"
	"indiflow-dashboard-api/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	routesCacheTTL   = 60 * time.Second
	searchesCacheTTL = 15 * time.Second
)

// DirectoryHandler lists the raw records behind the dashboard counts.
type DirectoryHandler struct {
	stores *repository.Stores
	cache  *services.CacheService
	log    *zap.Logger
}

func NewDirectoryHandler(stores *repository.Stores, cache *services.CacheService, log *zap.Logger) *DirectoryHandler {
	return &DirectoryHandler{stores: stores, cache: cache, log: log}
}

type userEntry struct {
	models.User
	Provider string `json:"provider"`
}

func (h *DirectoryHandler) ListUsers(c *gin.Context) {
	p := ParsePage(c)
	users, total, err := h.stores.Users.List(c.Request.Context(), nil, repository.ByCreatedDesc, p)
	if err != nil {
		h.log.Error("list users failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database query failed"})
		return
	}
	entries := make([]userEntry, len(users))
	for i, u := range users {
		entries[i] = userEntry{User: u, Provider: u.Provider()}
	}
	c.JSON(http.StatusOK, newPageResponse(entries, p, total))
}

func (h *DirectoryHandler) ListRoutes(c *gin.Context) {
	listCached(c, h, "dashboard:routes", routesCacheTTL, h.stores.Routes)
}

func (h *DirectoryHandler) ListSearches(c *gin.Context) {
	listCached(c, h, "dashboard:searches", searchesCacheTTL, h.stores.Searches)
}

// listCached serves one page through the Redis cache, falling back to the
// database on a miss and filling the cache in the background.
func listCached[T any](c *gin.Context, h *DirectoryHandler, prefix string, ttl time.Duration, store *repository.Store[T]) {
	p := ParsePage(c)
	key := fmt.Sprintf("%s:%d:%d", prefix, p.Number, p.Size)

	var cached PageResponse
	if ok, err := h.cache.Get(c.Request.Context(), key, &cached); err == nil && ok {
		c.Header("X-Cache", "HIT")
		c.JSON(http.StatusOK, cached)
		return
	}

	items, total, err := store.List(c.Request.Context(), nil, repository.ByCreatedDesc, p)
	if err != nil {
		h.log.Error("list failed", zap.String("key", prefix), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database query failed"})
		return
	}
	if items == nil {
		items = []T{}
	}

	resp := newPageResponse(items, p, total)
	go func() {
		if err := h.cache.Set(context.Background(), key, resp, ttl); err != nil {
			h.log.Warn("cache fill failed", zap.String("key", key), zap.Error(err))
		}
	}()

	c.Header("X-Cache", "MISS")
	c.JSON(http.StatusOK, resp)
}
