package models

import "time"

const (
	ACTION_CREATE = "create"
	ACTION_UPDATE = "update"
	ACTION_IMPORT = "import"
)

// RateLimit tracks one user's quota window for one action kind.
// Count reflects successful actions since WindowStart; once the window
// duration has elapsed the row is superseded by a fresh window at count 1.
type RateLimit struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      string    `gorm:"type:char(36);index:idx_rate_limits_user_action;not null" json:"userId"`
	Action      string    `gorm:"type:varchar(20);index:idx_rate_limits_user_action;not null" json:"action"`
	WindowStart time.Time `gorm:"not null" json:"windowStart"`
	Count       int       `gorm:"not null;default:0" json:"count"`
}

// Expired reports whether the window is over at the given instant.
func (r *RateLimit) Expired(now time.Time, window time.Duration) bool {
	return now.After(r.WindowStart.Add(window))
}
