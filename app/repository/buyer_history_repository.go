package repository

import (
	"gorm.io/gorm"

	"github.com/leaddesk/leaddesk/app/models"
)

// buyerHistoryRepository implements the BuyerHistoryRepository interface
type buyerHistoryRepository struct {
	db *gorm.DB
}

// NewBuyerHistoryRepository creates a new buyer history repository instance
func NewBuyerHistoryRepository(db *gorm.DB) BuyerHistoryRepository {
	return &buyerHistoryRepository{db: db}
}

// Create appends one audit entry
func (r *buyerHistoryRepository) Create(entry *models.BuyerHistory) error {
	return r.db.Create(entry).Error
}

// CreateBatch appends one audit entry per imported row in a single insert
func (r *buyerHistoryRepository) CreateBatch(entries []*models.BuyerHistory) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.Create(entries).Error
}

// GetByBuyerID retrieves the most recent audit entries for a buyer
func (r *buyerHistoryRepository) GetByBuyerID(buyerID string, limit int) ([]models.BuyerHistory, error) {
	var entries []models.BuyerHistory
	err := r.db.Where("buyer_id = ?", buyerID).
		Order("changed_at DESC").Limit(limit).Find(&entries).Error
	return entries, err
}
