package db

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"docextract/internal/models"
)

// Open connects to Postgres and migrates the audit table.
func Open(dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connection to db failed: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get db from GORM: %w", err)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetMaxOpenConns(10)

	if err := gdb.AutoMigrate(&models.ExtractionLog{}); err != nil {
		return nil, fmt.Errorf("AutoMigration failed for ExtractionLog: %w", err)
	}
	return gdb, nil
}

// AuditRepo writes extraction attempts.
type AuditRepo struct {
	DB *gorm.DB
}

func NewAuditRepo(gdb *gorm.DB) *AuditRepo {
	return &AuditRepo{DB: gdb}
}

func (r *AuditRepo) Record(ctx context.Context, entry *models.ExtractionLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	return r.DB.WithContext(ctx).Create(entry).Error
}

func (r *AuditRepo) Close() error {
	sqlDB, err := r.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
