package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	loadsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "indiflow_dashboard_loads_completed_total",
		Help: "Total number of dashboard loads that refreshed a session.",
	})
	loadsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "indiflow_dashboard_loads_failed_total",
		Help: "Total number of dashboard loads aborted by a fetch failure.",
	})
	loadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "indiflow_dashboard_load_duration_seconds",
		Help:    "Duration of a full dashboard load.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
	})
	recordsIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "indiflow_training_records_ingested_total",
		Help: "Total number of training submissions persisted from uploads.",
	})
	uploadsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "indiflow_training_uploads_failed_total",
		Help: "Total number of training uploads that failed, by reason.",
	}, []string{"reason"})
	chatAnswers = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "indiflow_chat_answers_total",
		Help: "Total number of assistant answers, by topic.",
	}, []string{"topic"})
	sessionsOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "indiflow_dashboard_sessions_open",
		Help: "Number of open dashboard sessions.",
	})
)
