package config

import (
	"fmt"
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"alfredoptarigan/mock-interviewer/internal/models"
)

// InitDatabase opens the postgres pool and brings the schema up to date.
func InitDatabase(cfg *Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.GetDatabaseDSN()), &gorm.Config{
		Logger: logger.Default.LogMode(gormLogLevel(cfg.Server.Env)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	log.Printf("✅ Database connected successfully (%s:%s/%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates or updates the tables owned by the interviewer.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Interview{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Println("✅ Database migration completed")
	return nil
}

func gormLogLevel(env string) logger.LogLevel {
	if env == "development" {
		return logger.Info
	}
	return logger.Silent
}
