package models

import (
	"strings"
	"time"
)

type TrafficLevel string

const (
	TrafficLow      TrafficLevel = "low"
	TrafficModerate TrafficLevel = "moderate"
	TrafficHigh     TrafficLevel = "high"
)

// TrafficLevels lists the levels in ascending congestion order.
var TrafficLevels = []TrafficLevel{TrafficLow, TrafficModerate, TrafficHigh}

// ParseTrafficLevel maps s onto a known level. Anything unrecognized is
// treated as moderate.
func ParseTrafficLevel(s string) TrafficLevel {
	switch TrafficLevel(strings.ToLower(strings.TrimSpace(s))) {
	case TrafficLow:
		return TrafficLow
	case TrafficHigh:
		return TrafficHigh
	default:
		return TrafficModerate
	}
}

type TransportMode string

const (
	TransportDriving TransportMode = "driving"
	TransportTransit TransportMode = "transit"
	TransportWalking TransportMode = "walking"
	TransportCycling TransportMode = "cycling"
)

// ParseTransportMode maps s onto a known mode, falling back to driving.
func ParseTransportMode(s string) TransportMode {
	switch m := TransportMode(strings.ToLower(strings.TrimSpace(s))); m {
	case TransportTransit, TransportWalking, TransportCycling:
		return m
	default:
		return TransportDriving
	}
}

// DevUploadUserID owns every submission uploaded through the developer
// dashboard rather than reported by an app user.
const DevUploadUserID = "dev_upload"

type TrainingSubmission struct {
	ID                   uint          `gorm:"column:id;primaryKey" json:"id"`
	UserID               string        `gorm:"column:user_id;index" json:"user_id"`
	RouteName            string        `gorm:"column:route_name" json:"route_name"`
	PredictedTimeMinutes float64       `gorm:"column:predicted_time_minutes" json:"predicted_time_minutes"`
	ActualTimeMinutes    float64       `gorm:"column:actual_time_minutes" json:"actual_time_minutes"`
	TrafficLevel         TrafficLevel  `gorm:"column:traffic_level;default:moderate" json:"traffic_level"`
	TransportMode        TransportMode `gorm:"column:transport_mode;default:driving" json:"transport_mode"`
	SubmittedAt          time.Time     `gorm:"column:submitted_at" json:"submitted_at"`
	CreatedAt            time.Time     `gorm:"column:created_at;index" json:"created_at"`
}

func (TrainingSubmission) TableName() string { return "training_submissions" }
