package buyerflow

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leaddesk/leaddesk/app/models"
)

func sampleBuyer() *models.Buyer {
	min := int64(2500000)
	max := int64(4000000)
	return &models.Buyer{
		ID:           "b1",
		FullName:     "Amandeep Kaur",
		Phone:        "9876543210",
		City:         "Mohali",
		PropertyType: "Apartment",
		BHK:          "2",
		Purpose:      "Buy",
		BudgetMin:    &min,
		BudgetMax:    &max,
		Timeline:     "0-3m",
		Source:       "Website",
		Status:       models.STATUS_NEW,
		Tags:         models.StringList{"hot"},
	}
}

func decodeDiff(t *testing.T, raw models.JSON) map[string]json.RawMessage {
	t.Helper()
	var out map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestDiffBuyersOmitsUnchangedFields(t *testing.T) {
	oldB := sampleBuyer()
	newB := *oldB
	newB.Status = models.STATUS_QUALIFIED
	newB.Notes = "visited site"

	diff := decodeDiff(t, diffBuyers(oldB, &newB))
	assert.Len(t, diff, 2)
	assert.Contains(t, diff, "status")
	assert.Contains(t, diff, "notes")
	assert.NotContains(t, diff, "fullName")
	assert.NotContains(t, diff, "phone")

	var change fieldChange
	require.NoError(t, json.Unmarshal(diff["status"], &change))
	assert.Equal(t, "New", change.Old)
	assert.Equal(t, "Qualified", change.New)
}

func TestDiffBuyersBudgetPointers(t *testing.T) {
	oldB := sampleBuyer()
	newB := *oldB
	raised := int64(5000000)
	newB.BudgetMax = &raised

	diff := decodeDiff(t, diffBuyers(oldB, &newB))
	assert.Len(t, diff, 1)
	assert.Contains(t, diff, "budgetMax")

	// Equal values behind distinct pointers are not a change.
	same := int64(4000000)
	newB.BudgetMax = &same
	diff = decodeDiff(t, diffBuyers(oldB, &newB))
	assert.Empty(t, diff)
}

func TestDiffBuyersTagOrderMatters(t *testing.T) {
	oldB := sampleBuyer()
	newB := *oldB
	newB.Tags = models.StringList{"hot", "site-visit"}

	diff := decodeDiff(t, diffBuyers(oldB, &newB))
	assert.Contains(t, diff, "tags")
}

func TestDiffBuyersIgnoresSystemFields(t *testing.T) {
	oldB := sampleBuyer()
	newB := *oldB
	newB.OwnerID = "someone-else"
	newB.UpdatedAt = newB.UpdatedAt.Add(1)

	diff := decodeDiff(t, diffBuyers(oldB, &newB))
	assert.Empty(t, diff)
}

func TestCreatedDiffWrapsRecord(t *testing.T) {
	diff := decodeDiff(t, createdDiff(sampleBuyer()))
	require.Contains(t, diff, "created")

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(diff["created"], &record))
	assert.Equal(t, "Amandeep Kaur", record["fullName"])
}

func TestImportedDiffWrapsRecord(t *testing.T) {
	diff := decodeDiff(t, importedDiff(sampleBuyer()))
	assert.Contains(t, diff, "imported")
}
