package models

import "time"

// DashboardStats is derived on every load and never persisted.
type DashboardStats struct {
	TotalUsers        int `json:"total_users"`
	ActiveToday       int `json:"active_today"`
	TotalRoutes       int `json:"total_routes"`
	TotalSearches     int `json:"total_searches"`
	TrainingDataCount int `json:"training_data_count"`
}

type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

type ChatMessage struct {
	ID        string    `json:"id"`
	Role      ChatRole  `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}
