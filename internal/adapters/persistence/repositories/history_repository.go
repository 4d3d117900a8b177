package repositories

import (
	"context"

	"sogecredit/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// historyRepository implements HistoryRepository interface
type historyRepository struct {
	db *gorm.DB
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *gorm.DB) HistoryRepository {
	return &historyRepository{db: db}
}

// Create appends a history entry
func (r *historyRepository) Create(ctx context.Context, entry *models.ApplicationHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListByApplication gets the history of an application, newest first
func (r *historyRepository) ListByApplication(ctx context.Context, applicationID uint) ([]*models.ApplicationHistory, error) {
	var entries []*models.ApplicationHistory
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("application_ref_id = ?", applicationID).
		Order("created_at DESC").
		Find(&entries).Error
	return entries, err
}
