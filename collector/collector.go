// Package collector persists training submissions that the mobile app
// publishes over MQTT.
package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"indiflow-dashboard-api/config"
	"indiflow-dashboard-api/logger"
	"indiflow-dashboard-api/models"
	"indiflow-dashboard-api/services"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var (
	msgsReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "indiflow_collector_messages_received_total",
		Help: "Total number of MQTT training messages received.",
	})
	msgsStored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "indiflow_collector_messages_stored_total",
		Help: "Total number of training messages persisted.",
	})
	msgsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "indiflow_collector_messages_failed_total",
		Help: "Total number of training messages rejected or failed to store.",
	})
)

var ErrInvalidPayload = errors.New("invalid training payload")

// Payload is one training submission as published by the app.
type Payload struct {
	UserID               string  `json:"user_id"`
	RouteName            string  `json:"route_name"`
	PredictedTimeMinutes float64 `json:"predicted_time_minutes"`
	ActualTimeMinutes    float64 `json:"actual_time_minutes"`
	TrafficLevel         string  `json:"traffic_level"`
	TransportMode        string  `json:"transport_mode"`
	SubmittedAt          string  `json:"submitted_at"`
}

// Submission validates p and converts it. A missing or unparsable
// submitted_at falls back to now.
func (p Payload) Submission(now time.Time) (models.TrainingSubmission, error) {
	userID := strings.TrimSpace(p.UserID)
	route := strings.TrimSpace(p.RouteName)
	if userID == "" || route == "" {
		return models.TrainingSubmission{}, fmt.Errorf("%w: user_id and route_name are required", ErrInvalidPayload)
	}
	if !validMinutes(p.PredictedTimeMinutes) || !validMinutes(p.ActualTimeMinutes) {
		return models.TrainingSubmission{}, fmt.Errorf("%w: travel times must be non-negative", ErrInvalidPayload)
	}

	submittedAt := now
	if p.SubmittedAt != "" {
		if ts, err := time.Parse(time.RFC3339, p.SubmittedAt); err == nil {
			submittedAt = ts
		}
	}

	return models.TrainingSubmission{
		UserID:               userID,
		RouteName:            route,
		PredictedTimeMinutes: p.PredictedTimeMinutes,
		ActualTimeMinutes:    p.ActualTimeMinutes,
		TrafficLevel:         models.ParseTrafficLevel(p.TrafficLevel),
		TransportMode:        models.ParseTransportMode(p.TransportMode),
		SubmittedAt:          submittedAt,
	}, nil
}

func validMinutes(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

type Collector struct {
	training services.TrainingWriter
	log      *zap.Logger
	now      func() time.Time
}

func New(training services.TrainingWriter, log *zap.Logger) *Collector {
	return &Collector{training: training, log: logger.OrNop(log), now: time.Now}
}

// Process decodes, validates and stores one message.
func (c *Collector) Process(ctx context.Context, raw []byte) error {
	msgsReceived.Inc()

	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		msgsFailed.Inc()
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	sub, err := p.Submission(c.now())
	if err != nil {
		msgsFailed.Inc()
		return err
	}
	if err := c.training.Insert(ctx, []models.TrainingSubmission{sub}); err != nil {
		msgsFailed.Inc()
		return fmt.Errorf("store training submission: %w", err)
	}
	msgsStored.Inc()
	return nil
}

// Run subscribes to cfg.Topic and processes messages until ctx is done.
func (c *Collector) Run(ctx context.Context, cfg config.MQTTConfig) error {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.URL)
	opts.SetClientID("indiflow-collector-" + time.Now().Format("20060102150405"))
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetDefaultPublishHandler(func(_ mqtt.Client, msg mqtt.Message) {
		if err := c.Process(ctx, msg.Payload()); err != nil {
			c.log.Warn("training message dropped", zap.String("topic", msg.Topic()), zap.Error(err))
		}
	})
	opts.OnConnect = func(client mqtt.Client) {
		token := client.Subscribe(cfg.Topic, 0, nil)
		token.Wait()
		if err := token.Error(); err != nil {
			c.log.Error("mqtt subscribe failed", zap.String("topic", cfg.Topic), zap.Error(err))
			return
		}
		c.log.Info("collector subscribed", zap.String("topic", cfg.Topic))
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		c.log.Warn("mqtt connection lost", zap.Error(err))
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connect %s: %w", cfg.URL, err)
	}

	<-ctx.Done()
	c.log.Info("collector shutting down")
	client.Disconnect(250)
	return nil
}
