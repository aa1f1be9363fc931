package buyerflow

import (
	"time"

	"github.com/leaddesk/leaddesk/app/models"
	"github.com/leaddesk/leaddesk/app/repository"
)

// Window is the sliding quota period per user per action kind.
const Window = time.Hour

var actionLimits = map[string]int{
	models.ACTION_CREATE: 10,
	models.ACTION_UPDATE: 10,
	models.ACTION_IMPORT: 5,
}

// RateLimiter enforces per-(user, action) quotas over a counter store.
//
// Check and Record are deliberately two separate operations without a single
// atomic transaction: concurrent requests from the same user can both pass
// Check before either Records, permitting brief over-limit bursts. This is
// an abuse-deterrence control, not a hard security boundary.
type RateLimiter struct {
	counters repository.RateLimitRepository
	now      func() time.Time
}

// NewRateLimiter creates a rate limiter over the given counter store
func NewRateLimiter(counters repository.RateLimitRepository) *RateLimiter {
	return &RateLimiter{counters: counters, now: time.Now}
}

// Check reports ErrRateLimited when the caller's current window is already
// at the limit for the action. An absent or expired window counts as zero.
func (l *RateLimiter) Check(userID, action string) error {
	counter, err := l.counters.GetCurrent(userID, action)
	if err != nil {
		return &StoreError{Op: "rate limit check", Err: err}
	}
	if counter != nil && !counter.Expired(l.now(), Window) && counter.Count >= actionLimits[action] {
		return ErrRateLimited
	}
	return nil
}

// Record consumes one unit of quota after the guarded mutation succeeded:
// a fresh window starts at count 1, a live window is incremented. A failed
// mutation therefore never consumes quota.
func (l *RateLimiter) Record(userID, action string) error {
	now := l.now()
	counter, err := l.counters.GetCurrent(userID, action)
	if err != nil {
		return &StoreError{Op: "rate limit record", Err: err}
	}
	if counter == nil || counter.Expired(now, Window) {
		if err := l.counters.Start(userID, action, now); err != nil {
			return &StoreError{Op: "rate limit start", Err: err}
		}
		return nil
	}
	if err := l.counters.Increment(counter); err != nil {
		return &StoreError{Op: "rate limit increment", Err: err}
	}
	return nil
}
