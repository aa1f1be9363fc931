package repository

import (
	"sync"

	"gorm.io/gorm"
)

// Repositories bundles all repository instances
type Repositories struct {
	Buyer     BuyerRepository
	History   BuyerHistoryRepository
	RateLimit RateLimitRepository
}

// NewRepositories creates all database-backed repository instances
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Buyer:     NewBuyerRepository(db),
		History:   NewBuyerHistoryRepository(db),
		RateLimit: NewRateLimitRepository(db),
	}
}

// Factory manages repository instances and ensures they are singletons.
// Consumers receive the interfaces at construction time; there is no
// module-level shared factory.
type Factory struct {
	db    *gorm.DB
	repos *Repositories
	once  sync.Once
}

// NewFactory creates a new repository factory
func NewFactory(db *gorm.DB) *Factory {
	return &Factory{db: db}
}

// GetRepositories returns a singleton instance of all repositories
func (f *Factory) GetRepositories() *Repositories {
	f.once.Do(func() {
		f.repos = NewRepositories(f.db)
	})
	return f.repos
}

// GetBuyerRepository returns the buyer repository instance
func (f *Factory) GetBuyerRepository() BuyerRepository {
	return f.GetRepositories().Buyer
}

// GetBuyerHistoryRepository returns the buyer history repository instance
func (f *Factory) GetBuyerHistoryRepository() BuyerHistoryRepository {
	return f.GetRepositories().History
}

// GetRateLimitRepository returns the rate limit repository instance
func (f *Factory) GetRateLimitRepository() RateLimitRepository {
	return f.GetRepositories().RateLimit
}
