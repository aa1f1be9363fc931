package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

const (
	PURPOSE_BUY  = "Buy"
	PURPOSE_RENT = "Rent"

	STATUS_NEW         = "New"
	STATUS_QUALIFIED   = "Qualified"
	STATUS_CONTACTED   = "Contacted"
	STATUS_VISITED     = "Visited"
	STATUS_NEGOTIATION = "Negotiation"
	STATUS_CONVERTED   = "Converted"
	STATUS_DROPPED     = "Dropped"
)

// Cities returns the supported city values in display order.
func Cities() []string {
	return []string{"Chandigarh", "Mohali", "Zirakpur", "Panchkula", "Other"}
}

// PropertyTypes returns the supported property type values in display order.
func PropertyTypes() []string {
	return []string{"Apartment", "Villa", "Plot", "Office", "Retail"}
}

// StringList stores an ordered list of strings as a JSON column.
type StringList []string

// Value implements the driver.Valuer interface
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface
func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = StringList{}
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
	var out []string
	if err := json.Unmarshal(bytes, &out); err != nil {
		return err
	}
	*l = StringList(out)
	return nil
}

// Buyer is one prospective property buyer lead. UpdatedAt doubles as the
// optimistic-concurrency version token, so GORM's automatic update
// timestamp is disabled and the mutation pipeline advances it explicitly.
type Buyer struct {
	ID           string     `gorm:"type:char(36);primaryKey" json:"id"`
	OwnerID      string     `gorm:"type:char(36);index;not null" json:"ownerId"`
	FullName     string     `gorm:"type:varchar(80);not null" json:"fullName" validate:"required,min=2,max=80"`
	Email        string     `gorm:"type:varchar(200)" json:"email" validate:"omitempty,email"`
	Phone        string     `gorm:"type:varchar(15);not null;index" json:"phone" validate:"required,digits,min=10,max=15"`
	City         string     `gorm:"type:varchar(50);not null;index" json:"city" validate:"required,oneof=Chandigarh Mohali Zirakpur Panchkula Other"`
	PropertyType string     `gorm:"type:varchar(50);not null;index" json:"propertyType" validate:"required,oneof=Apartment Villa Plot Office Retail"`
	BHK          string     `gorm:"type:varchar(10)" json:"bhk" validate:"omitempty,oneof=1 2 3 4 Studio"`
	Purpose      string     `gorm:"type:varchar(10);not null" json:"purpose" validate:"required,oneof=Buy Rent"`
	BudgetMin    *int64     `gorm:"type:bigint" json:"budgetMin" validate:"omitempty,gt=0"`
	BudgetMax    *int64     `gorm:"type:bigint" json:"budgetMax" validate:"omitempty,gt=0"`
	Timeline     string     `gorm:"type:varchar(20);not null" json:"timeline" validate:"required,oneof=0-3m 3-6m >6m Exploring"`
	Source       string     `gorm:"type:varchar(20);not null" json:"source" validate:"required,oneof=Website Referral Walk-in Call Other"`
	Notes        string     `gorm:"type:text" json:"notes" validate:"max=1000"`
	Tags         StringList `gorm:"type:json" json:"tags"`
	Status       string     `gorm:"type:varchar(20);default:'New';index" json:"status" validate:"omitempty,oneof=New Qualified Contacted Visited Negotiation Converted Dropped"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime:false" json:"updatedAt"`
}

// RequiresBHK reports whether the BHK field is mandatory for this lead's
// property type.
func (b *Buyer) RequiresBHK() bool {
	return b.PropertyType == "Apartment" || b.PropertyType == "Villa"
}

// VersionToken returns the concurrency token callers must echo back on update.
func (b *Buyer) VersionToken() string {
	return b.UpdatedAt.UTC().Format(time.RFC3339Nano)
}
