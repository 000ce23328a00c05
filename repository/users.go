package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"indiflow-dashboard-api/models"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("repository: not found")

// UserStore adds the account lookups the auth flow needs.
type UserStore struct {
	*Store[models.User]
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{Store: NewStore[models.User](db, "users")}
}

func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	return s.db.WithContext(ctx).Create(user).Error
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("repository: find user: %w", err)
	}
	return &user, nil
}

func (s *UserStore) TouchLogin(ctx context.Context, user *models.User, at time.Time) error {
	if err := s.db.WithContext(ctx).Model(user).Update("last_login", at).Error; err != nil {
		return fmt.Errorf("repository: update last login: %w", err)
	}
	return nil
}

// SetRole changes the role of the account registered under email.
func (s *UserStore) SetRole(ctx context.Context, email, role string) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Update("role", role)
	if res.Error != nil {
		return fmt.Errorf("repository: set role: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
