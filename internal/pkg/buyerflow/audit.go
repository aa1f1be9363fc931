package buyerflow

import (
	"encoding/json"

	"github.com/leaddesk/leaddesk/app/models"
)

// fieldChange is one before/after pair in an update diff.
type fieldChange struct {
	Old interface{} `json:"old"`
	New interface{} `json:"new"`
}

// createdDiff marks a creation by wrapping the full new record.
func createdDiff(b *models.Buyer) models.JSON {
	return markerDiff("created", b)
}

// importedDiff marks a bulk-imported row; there is no prior state to diff.
func importedDiff(b *models.Buyer) models.JSON {
	return markerDiff("imported", b)
}

func markerDiff(marker string, b *models.Buyer) models.JSON {
	raw, err := json.Marshal(map[string]interface{}{marker: b})
	if err != nil {
		return models.JSON(`{}`)
	}
	return models.JSON(raw)
}

// diffBuyers computes the field-level diff between two record states.
// Unchanged fields are omitted; system fields (id, owner, timestamps) are
// never part of the diff.
func diffBuyers(oldB, newB *models.Buyer) models.JSON {
	changes := make(map[string]fieldChange)

	compare := func(field string, oldV, newV interface{}, equal bool) {
		if !equal {
			changes[field] = fieldChange{Old: oldV, New: newV}
		}
	}

	compare("fullName", oldB.FullName, newB.FullName, oldB.FullName == newB.FullName)
	compare("email", oldB.Email, newB.Email, oldB.Email == newB.Email)
	compare("phone", oldB.Phone, newB.Phone, oldB.Phone == newB.Phone)
	compare("city", oldB.City, newB.City, oldB.City == newB.City)
	compare("propertyType", oldB.PropertyType, newB.PropertyType, oldB.PropertyType == newB.PropertyType)
	compare("bhk", oldB.BHK, newB.BHK, oldB.BHK == newB.BHK)
	compare("purpose", oldB.Purpose, newB.Purpose, oldB.Purpose == newB.Purpose)
	compare("budgetMin", oldB.BudgetMin, newB.BudgetMin, int64PtrEqual(oldB.BudgetMin, newB.BudgetMin))
	compare("budgetMax", oldB.BudgetMax, newB.BudgetMax, int64PtrEqual(oldB.BudgetMax, newB.BudgetMax))
	compare("timeline", oldB.Timeline, newB.Timeline, oldB.Timeline == newB.Timeline)
	compare("source", oldB.Source, newB.Source, oldB.Source == newB.Source)
	compare("notes", oldB.Notes, newB.Notes, oldB.Notes == newB.Notes)
	compare("tags", oldB.Tags, newB.Tags, stringListEqual(oldB.Tags, newB.Tags))
	compare("status", oldB.Status, newB.Status, oldB.Status == newB.Status)

	raw, err := json.Marshal(changes)
	if err != nil {
		return models.JSON(`{}`)
	}
	return models.JSON(raw)
}

func int64PtrEqual(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func stringListEqual(a, b models.StringList) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
