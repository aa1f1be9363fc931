package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/leaddesk/leaddesk/app/models"
)

// buyerRepository implements the BuyerRepository interface
type buyerRepository struct {
	db *gorm.DB
}

// NewBuyerRepository creates a new buyer repository instance
func NewBuyerRepository(db *gorm.DB) BuyerRepository {
	return &buyerRepository{db: db}
}

// Create inserts a new buyer lead
func (r *buyerRepository) Create(buyer *models.Buyer) error {
	return r.db.Create(buyer).Error
}

// CreateBatch inserts all rows in a single bulk insert
func (r *buyerRepository) CreateBatch(buyers []*models.Buyer) error {
	if len(buyers) == 0 {
		return nil
	}
	return r.db.Create(buyers).Error
}

// GetByID retrieves a buyer lead by its ID
func (r *buyerRepository) GetByID(id string) (*models.Buyer, error) {
	var buyer models.Buyer
	err := r.db.Where("id = ?", id).First(&buyer).Error
	if err != nil {
		return nil, err
	}
	return &buyer, nil
}

// UpdateVersioned performs a conditional write: the row is only updated if
// its stored updated_at still equals expectedVersion. A concurrent writer
// that committed first makes this a no-op, reported via the bool.
func (r *buyerRepository) UpdateVersioned(buyer *models.Buyer, expectedVersion time.Time) (bool, error) {
	res := r.db.Model(&models.Buyer{}).
		Where("id = ? AND updated_at = ?", buyer.ID, expectedVersion).
		Updates(map[string]interface{}{
			"full_name":     buyer.FullName,
			"email":         buyer.Email,
			"phone":         buyer.Phone,
			"city":          buyer.City,
			"property_type": buyer.PropertyType,
			"bhk":           buyer.BHK,
			"purpose":       buyer.Purpose,
			"budget_min":    buyer.BudgetMin,
			"budget_max":    buyer.BudgetMax,
			"timeline":      buyer.Timeline,
			"source":        buyer.Source,
			"notes":         buyer.Notes,
			"tags":          buyer.Tags,
			"status":        buyer.Status,
			"updated_at":    buyer.UpdatedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// List retrieves buyer leads newest-updated-first with filters and pagination
func (r *buyerRepository) List(filter BuyerFilter, offset, limit int) ([]models.Buyer, error) {
	var buyers []models.Buyer
	err := r.applyFilter(filter).
		Order("updated_at DESC").Offset(offset).Limit(limit).Find(&buyers).Error
	return buyers, err
}

// Count returns the number of buyer leads matching the filter
func (r *buyerRepository) Count(filter BuyerFilter) (int64, error) {
	var count int64
	err := r.applyFilter(filter).Count(&count).Error
	return count, err
}

func (r *buyerRepository) applyFilter(filter BuyerFilter) *gorm.DB {
	q := r.db.Model(&models.Buyer{})
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("full_name LIKE ? OR phone LIKE ? OR email LIKE ?", like, like, like)
	}
	if filter.City != "" {
		q = q.Where("city = ?", filter.City)
	}
	if filter.PropertyType != "" {
		q = q.Where("property_type = ?", filter.PropertyType)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	return q
}
