package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/7pairs/twingo2/internal/models"
)

type Store struct {
	db *gorm.DB
}

func New(ctx context.Context, driver, dsn string) (*Store, error) {
	dialector, err := GetDialector(driver, dsn)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	if err := db.WithContext(ctx).AutoMigrate(
		&models.Account{},
		&models.AuditLog{},
	); err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

// Account operations

// GetAccountByTwitterID finds the account bound to a provider identity
func (s *Store) GetAccountByTwitterID(twitterID int64) (*models.Account, error) {
	var account models.Account
	if err := s.db.Where("twitter_id = ?", twitterID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &account, nil
}

func (s *Store) GetAccountByID(id uint) (*models.Account, error) {
	var account models.Account
	if err := s.db.Where("id = ?", id).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &account, nil
}

// CreateAccount persists a new account. A duplicate Twitter ID surfaces as
// ErrTwitterIDConflict so callers can fall back to a lookup.
func (s *Store) CreateAccount(account *models.Account) error {
	if err := s.db.Create(account).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrTwitterIDConflict
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (s *Store) UpdateAccount(account *models.Account) error {
	return s.db.Save(account).Error
}

func (s *Store) CountAccounts() (int64, error) {
	var count int64
	err := s.db.Model(&models.Account{}).Count(&count).Error
	return count, err
}

// Audit log operations

// CreateAuditLogs inserts a batch of audit log entries
func (s *Store) CreateAuditLogs(logs []*models.AuditLog) error {
	if len(logs) == 0 {
		return nil
	}
	return s.db.Create(logs).Error
}

// DeleteAuditLogsBefore removes audit logs older than the cutoff and
// returns the number of rows deleted
func (s *Store) DeleteAuditLogsBefore(cutoff time.Time) (int64, error) {
	result := s.db.Where("created_at < ?", cutoff).Delete(&models.AuditLog{})
	return result.RowsAffected, result.Error
}

// Health checks database connectivity
func (s *Store) Health() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// DB exposes the underlying GORM handle for tests
func (s *Store) DB() *gorm.DB {
	return s.db
}
