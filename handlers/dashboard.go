package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"indiflow-dashboard-api/models"
	"indiflow-dashboard-api/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	recentTrainingShown = 20
	maxUploadBytes      = 10 << 20
)

// DashboardHandler serves the per-session developer dashboard.
type DashboardHandler struct {
	registry   *services.SessionRegistry
	aggregator *services.Aggregator
	ingestor   *services.Ingestor
	chat       *services.ChatService
	log        *zap.Logger
}

func NewDashboardHandler(registry *services.SessionRegistry, aggregator *services.Aggregator,
	ingestor *services.Ingestor, chat *services.ChatService, log *zap.Logger) *DashboardHandler {
	return &DashboardHandler{registry: registry, aggregator: aggregator, ingestor: ingestor, chat: chat, log: log}
}

type statsResponse struct {
	SessionID string                `json:"session_id"`
	Stats     models.DashboardStats `json:"stats"`
	Loaded    bool                  `json:"loaded"`
}

func (h *DashboardHandler) session(c *gin.Context) (*services.Session, bool) {
	sess, err := h.registry.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "dashboard session not found"})
		return nil, false
	}
	return sess, true
}

// OpenSession creates a session and runs its initial load. A failed load
// still returns the session with zeroed stats.
func (h *DashboardHandler) OpenSession(c *gin.Context) {
	sess := h.registry.Open()
	stats, err := h.aggregator.LoadStats(c.Request.Context(), sess)
	c.JSON(http.StatusCreated, statsResponse{SessionID: sess.ID, Stats: stats, Loaded: err == nil})
}

func (h *DashboardHandler) CloseSession(c *gin.Context) {
	if !h.registry.Close(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "dashboard session not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *DashboardHandler) GetStats(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	snap := sess.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"session_id": sess.ID,
		"stats":      snap.Stats,
		"loaded_at":  snap.LoadedAt,
		"loading":    sess.Loading(),
	})
}

// Refresh reloads the session. On failure the previous stats are returned
// with refreshed=false.
func (h *DashboardHandler) Refresh(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	stats, err := h.aggregator.LoadStats(c.Request.Context(), sess)
	c.JSON(http.StatusOK, gin.H{"session_id": sess.ID, "stats": stats, "refreshed": err == nil})
}

func (h *DashboardHandler) RecentTraining(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	training := sess.Snapshot().Training
	if len(training) > recentTrainingShown {
		training = training[:recentTrainingShown]
	}
	if training == nil {
		training = []models.TrainingSubmission{}
	}
	c.JSON(http.StatusOK, gin.H{"data": training})
}

func (h *DashboardHandler) Accuracy(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, services.ComputeAccuracy(sess.Snapshot().Training))
}

func (h *DashboardHandler) UploadTraining(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field \"file\" is required"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read upload"})
		return
	}
	defer f.Close()

	content, err := io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read upload"})
		return
	}
	if len(content) > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "upload exceeds 10MB"})
		return
	}

	n, err := h.ingestor.Ingest(c.Request.Context(), sess, fh.Filename, content)
	if err != nil {
		writeIngestError(c, err, n)
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": n, "stats": sess.Stats()})
}

func writeIngestError(c *gin.Context, err error, persisted int) {
	var (
		perr *services.ParseError
		ferr *services.FormatError
		ierr *services.InsertError
	)
	switch {
	case errors.Is(err, services.ErrUploadInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &perr), errors.As(err, &ferr):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &ierr):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "records": persisted})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "training upload failed"})
	}
}

func (h *DashboardHandler) ChatHistory(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": sess.ChatHistory()})
}

type AskRequest struct {
	Question string `json:"question" binding:"required"`
}

func (h *DashboardHandler) Ask(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.chat.Ask(c.Request.Context(), sess, req.Question)
	switch {
	case errors.Is(err, services.ErrEmptyQuestion):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusRequestTimeout, gin.H{"error": "request cancelled"})
	case err != nil:
		h.log.Error("chat failed", zap.String("session", sess.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "chat failed"})
	default:
		c.JSON(http.StatusOK, msg)
	}
}
