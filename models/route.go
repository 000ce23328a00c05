package models

import "time"

type FrequentRoute struct {
	ID          uint      `gorm:"column:id;primaryKey" json:"id"`
	UserID      uint      `gorm:"column:user_id;index" json:"user_id"`
	Label       string    `gorm:"column:label" json:"label"`
	Origin      string    `gorm:"column:origin" json:"origin"`
	Destination string    `gorm:"column:destination" json:"destination"`
	TripCount   int       `gorm:"column:trip_count" json:"trip_count"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
}

func (FrequentRoute) TableName() string { return "frequent_routes" }

type SearchHistory struct {
	ID          uint      `gorm:"column:id;primaryKey" json:"id"`
	UserID      uint      `gorm:"column:user_id;index" json:"user_id"`
	Query       string    `gorm:"column:query" json:"query"`
	Origin      string    `gorm:"column:origin" json:"origin"`
	Destination string    `gorm:"column:destination" json:"destination"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
}

func (SearchHistory) TableName() string { return "search_history" }
