package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"indiflow-dashboard-api/models"
	"indiflow-dashboard-api/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type liveMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// LiveStats streams every published stats snapshot to the client. The most
// recent snapshot, if cached, is sent first. pingEvery keeps idle
// connections alive through proxies.
func LiveStats(cache *services.CacheService, pingEvery time.Duration, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cache.Available() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "live feed requires redis"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Warn("websocket upgrade failed", zap.Error(err))
			return
		}
		defer conn.Close()

		ctx, cancel := context.WithCancel(c.Request.Context())
		defer cancel()

		// Read pump: detect client disconnect
		go func() {
			defer cancel()
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		pubsub := cache.Subscribe(ctx, services.StatsChannel)
		defer pubsub.Close()
		ch := pubsub.Channel()

		if stats, ok, err := cache.LatestStats(ctx); err == nil && ok {
			if err := writeStats(conn, stats); err != nil {
				log.Debug("ws write error", zap.Error(err))
				return
			}
		}

		if pingEvery <= 0 {
			pingEvery = 30 * time.Second
		}
		ticker := time.NewTicker(pingEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
					return
				}
			case msg, ok := <-ch:
				if !ok {
					return
				}
				if err := conn.WriteJSON(liveMessage{Type: "stats", Data: json.RawMessage(msg.Payload)}); err != nil {
					log.Debug("ws write error", zap.Error(err))
					return
				}
			}
		}
	}
}

func writeStats(conn *websocket.Conn, stats models.DashboardStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("encode stats: %w", err)
	}
	return conn.WriteJSON(liveMessage{Type: "stats", Data: data})
}
