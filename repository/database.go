package repository

import (
	"fmt"

	"indiflow-dashboard-api/config"
	"indiflow-dashboard-api/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Stores bundles the access layer for every dashboard entity.
type Stores struct {
	Users    *UserStore
	Training *Store[models.TrainingSubmission]
	Routes   *Store[models.FrequentRoute]
	Searches *Store[models.SearchHistory]
}

func NewStores(db *gorm.DB) *Stores {
	return &Stores{
		Users:    NewUserStore(db),
		Training: NewStore[models.TrainingSubmission](db, "training submissions"),
		Routes:   NewStore[models.FrequentRoute](db, "frequent routes"),
		Searches: NewStore[models.SearchHistory](db, "search history"),
	}
}

func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.GetDSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("repository: connect %s:%d/%s: %w", cfg.Host, cfg.Port, cfg.Name, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("repository: sql handle: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("repository: ping: %w", err)
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.TrainingSubmission{},
		&models.FrequentRoute{},
		&models.SearchHistory{},
	); err != nil {
		return fmt.Errorf("repository: migrate: %w", err)
	}
	return nil
}
