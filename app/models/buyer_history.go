package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// JSON stores raw JSON documents in the database.
type JSON json.RawMessage

// Value implements the driver.Valuer interface
func (j JSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return string(j), nil
}

// Scan implements the sql.Scanner interface
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = JSON("{}")
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("invalid scan source")
	}
	*j = JSON(bytes)
	return nil
}

// MarshalJSON implements the json.Marshaler interface
func (j JSON) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return []byte("null"), nil
	}
	return j, nil
}

// UnmarshalJSON implements the json.Unmarshaler interface
func (j *JSON) UnmarshalJSON(data []byte) error {
	*j = JSON(data)
	return nil
}

// BuyerHistory is one append-only audit entry. Diff holds either a
// field-level before/after map (update), or a "created"/"imported"
// marker wrapping the full record. Entries are never mutated or deleted.
type BuyerHistory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	BuyerID   string    `gorm:"type:char(36);index;not null" json:"buyerId"`
	ChangedBy string    `gorm:"type:char(36);not null" json:"changedBy"`
	ChangedAt time.Time `gorm:"not null" json:"changedAt"`
	Diff      JSON      `gorm:"type:json" json:"diff"`
}
