package repository

import (
	"time"

	"github.com/leaddesk/leaddesk/app/models"
)

// BuyerFilter narrows list and export queries. Search matches name, phone
// and email as a substring; the other fields are exact matches.
type BuyerFilter struct {
	Search       string
	City         string
	PropertyType string
	Status       string
}

// BuyerRepository defines the interface for buyer lead persistence
type BuyerRepository interface {
	Create(buyer *models.Buyer) error
	CreateBatch(buyers []*models.Buyer) error
	GetByID(id string) (*models.Buyer, error)
	// UpdateVersioned persists the record only if the stored version still
	// matches expectedVersion. It reports false when another writer won the
	// race, without returning an error.
	UpdateVersioned(buyer *models.Buyer, expectedVersion time.Time) (bool, error)
	List(filter BuyerFilter, offset, limit int) ([]models.Buyer, error)
	Count(filter BuyerFilter) (int64, error)
}

// BuyerHistoryRepository defines the interface for the append-only audit trail
type BuyerHistoryRepository interface {
	Create(entry *models.BuyerHistory) error
	CreateBatch(entries []*models.BuyerHistory) error
	GetByBuyerID(buyerID string, limit int) ([]models.BuyerHistory, error)
}

// RateLimitRepository defines the interface for per-(user, action) quota
// counters. GetCurrent returns nil when the pair has no counter at all;
// whether a returned window is still live is the caller's decision.
type RateLimitRepository interface {
	GetCurrent(userID, action string) (*models.RateLimit, error)
	Start(userID, action string, windowStart time.Time) error
	Increment(counter *models.RateLimit) error
}
