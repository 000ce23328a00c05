package models

import "time"

type User struct {
	ID        uint      `gorm:"column:id;primaryKey" json:"id"`
	Name      string    `gorm:"column:name" json:"name"`
	Email     string    `gorm:"column:email;uniqueIndex" json:"email"`
	Password  string    `gorm:"column:password" json:"-"`
	Role      string    `gorm:"column:role;default:user" json:"role"`
	GoogleID  *string   `gorm:"column:google_id" json:"google_id,omitempty"`
	AppleID   *string   `gorm:"column:apple_id" json:"apple_id,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	LastLogin time.Time `gorm:"column:last_login" json:"last_login"`
}

func (User) TableName() string { return "users" }

const (
	RoleUser      = "user"
	RoleDeveloper = "developer"
)

// Provider reports which sign-in method created the account.
func (u User) Provider() string {
	switch {
	case u.GoogleID != nil && *u.GoogleID != "":
		return "google"
	case u.AppleID != nil && *u.AppleID != "":
		return "apple"
	default:
		return "email"
	}
}
