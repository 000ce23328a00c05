package handlers

import (
	"time"

	"indiflow-dashboard-api/config"
	"indiflow-dashboard-api/logger"
	"indiflow-dashboard-api/middleware"
	"indiflow-dashboard-api/repository"
	"indiflow-dashboard-api/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RouterDeps is everything the HTTP surface is built from.
type RouterDeps struct {
	Config     *config.Config
	DB         *gorm.DB
	Stores     *repository.Stores
	Cache      *services.CacheService
	Auth       *services.AuthService
	Registry   *services.SessionRegistry
	Aggregator *services.Aggregator
	Ingestor   *services.Ingestor
	Chat       *services.ChatService
	Logger     *zap.Logger
}

func NewRouter(d RouterDeps) *gin.Engine {
	log := logger.OrNop(d.Logger)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log), middleware.SetupCORS(d.Config.CORS))
	r.MaxMultipartMemory = maxUploadBytes

	r.GET("/health", Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authH := NewAuthHandler(d.Stores.Users, d.Auth, log)
	auth := r.Group("/api/auth")
	{
		auth.POST("/register", authH.Register)
		auth.POST("/login", authH.Login)
		auth.POST("/logout", authH.Logout)
	}

	dashH := NewDashboardHandler(d.Registry, d.Aggregator, d.Ingestor, d.Chat, log)
	dirH := NewDirectoryHandler(d.Stores, d.Cache, log)
	statusH := NewStatusHandler(d.DB, d.Stores, d.Cache, d.Registry)

	dash := r.Group("/api/dashboard")
	dash.Use(middleware.DashboardAccess(d.Auth, d.Config.Dashboard.OpenAccess))
	{
		dash.POST("/sessions", dashH.OpenSession)
		sess := dash.Group("/sessions/:id")
		{
			sess.DELETE("", dashH.CloseSession)
			sess.GET("/stats", dashH.GetStats)
			sess.POST("/refresh", dashH.Refresh)
			sess.GET("/training", dashH.RecentTraining)
			sess.POST("/training/upload", dashH.UploadTraining)
			sess.GET("/accuracy", dashH.Accuracy)
			sess.GET("/chat", dashH.ChatHistory)
			sess.POST("/chat", dashH.Ask)
		}

		dash.GET("/users", dirH.ListUsers)
		dash.GET("/routes", dirH.ListRoutes)
		dash.GET("/searches", dirH.ListSearches)
		dash.GET("/status", statusH.Status)
		dash.GET("/live", LiveStats(d.Cache, time.Duration(d.Config.WS.PollIntervalMS)*time.Millisecond, log))
	}

	return r
}
