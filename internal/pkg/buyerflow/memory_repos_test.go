package buyerflow

import (
	"errors"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/leaddesk/leaddesk/app/models"
	"github.com/leaddesk/leaddesk/app/repository"
)

// In-memory repository implementations for pipeline tests. They honor the
// same contracts as the database-backed ones, including the sentinel
// not-found error and the conditional versioned write.

type memBuyerRepo struct {
	mu      sync.Mutex
	buyers  map[string]models.Buyer
	failOps bool
}

func newMemBuyerRepo() *memBuyerRepo {
	return &memBuyerRepo{buyers: make(map[string]models.Buyer)}
}

func (r *memBuyerRepo) Create(buyer *models.Buyer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failOps {
		return errors.New("store unavailable")
	}
	r.buyers[buyer.ID] = *buyer
	return nil
}

func (r *memBuyerRepo) CreateBatch(buyers []*models.Buyer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failOps {
		return errors.New("store unavailable")
	}
	for _, b := range buyers {
		r.buyers[b.ID] = *b
	}
	return nil
}

func (r *memBuyerRepo) GetByID(id string) (*models.Buyer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.buyers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	found := b
	return &found, nil
}

func (r *memBuyerRepo) UpdateVersioned(buyer *models.Buyer, expectedVersion time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.buyers[buyer.ID]
	if !ok || !stored.UpdatedAt.Equal(expectedVersion) {
		return false, nil
	}
	r.buyers[buyer.ID] = *buyer
	return true, nil
}

func (r *memBuyerRepo) List(filter repository.BuyerFilter, offset, limit int) ([]models.Buyer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Buyer, 0, len(r.buyers))
	for _, b := range r.buyers {
		out = append(out, b)
	}
	return out, nil
}

func (r *memBuyerRepo) Count(filter repository.BuyerFilter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.buyers)), nil
}

func (r *memBuyerRepo) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.buyers)
}

type memHistoryRepo struct {
	mu       sync.Mutex
	entries  []models.BuyerHistory
	failNext bool
}

func newMemHistoryRepo() *memHistoryRepo {
	return &memHistoryRepo{}
}

func (r *memHistoryRepo) Create(entry *models.BuyerHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNext {
		r.failNext = false
		return errors.New("history store unavailable")
	}
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *memHistoryRepo) CreateBatch(entries []*models.BuyerHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNext {
		r.failNext = false
		return errors.New("history store unavailable")
	}
	for _, e := range entries {
		r.entries = append(r.entries, *e)
	}
	return nil
}

func (r *memHistoryRepo) GetByBuyerID(buyerID string, limit int) ([]models.BuyerHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.BuyerHistory
	for i := len(r.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if r.entries[i].BuyerID == buyerID {
			out = append(out, r.entries[i])
		}
	}
	return out, nil
}

func (r *memHistoryRepo) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

type memRateRepo struct {
	mu       sync.Mutex
	counters map[string]*models.RateLimit
}

func newMemRateRepo() *memRateRepo {
	return &memRateRepo{counters: make(map[string]*models.RateLimit)}
}

func (r *memRateRepo) GetCurrent(userID, action string) (*models.RateLimit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.counters[userID+"/"+action]
	if !ok {
		return nil, nil
	}
	found := *c
	return &found, nil
}

func (r *memRateRepo) Start(userID, action string, windowStart time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counters[userID+"/"+action] = &models.RateLimit{
		UserID:      userID,
		Action:      action,
		WindowStart: windowStart,
		Count:       1,
	}
	return nil
}

func (r *memRateRepo) Increment(counter *models.RateLimit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.counters[counter.UserID+"/"+counter.Action]; ok {
		c.Count++
	}
	return nil
}
