package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/leaddesk/leaddesk/app/models"
)

// rateLimitRepository implements RateLimitRepository on the database.
// Superseded windows are left in place; GetCurrent only ever looks at the
// newest one, and expiry is judged by the limiter.
type rateLimitRepository struct {
	db *gorm.DB
}

// NewRateLimitRepository creates a new rate limit repository instance
func NewRateLimitRepository(db *gorm.DB) RateLimitRepository {
	return &rateLimitRepository{db: db}
}

// GetCurrent retrieves the newest counter for (user, action).
// Returns nil when none exists.
func (r *rateLimitRepository) GetCurrent(userID, action string) (*models.RateLimit, error) {
	var counter models.RateLimit
	err := r.db.Where("user_id = ? AND action = ?", userID, action).
		Order("window_start DESC").First(&counter).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &counter, nil
}

// Start opens a fresh window at count 1
func (r *rateLimitRepository) Start(userID, action string, windowStart time.Time) error {
	return r.db.Create(&models.RateLimit{
		UserID:      userID,
		Action:      action,
		WindowStart: windowStart,
		Count:       1,
	}).Error
}

// Increment bumps an existing counter by one
func (r *rateLimitRepository) Increment(counter *models.RateLimit) error {
	return r.db.Model(&models.RateLimit{}).
		Where("id = ?", counter.ID).
		Update("count", gorm.Expr("count + 1")).Error
}
