package buyerflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/leaddesk/leaddesk/app/models"
)

const testUser = "11111111-1111-1111-1111-111111111111"

func newTestPipeline() (*Pipeline, *memBuyerRepo, *memHistoryRepo, *memRateRepo) {
	buyers := newMemBuyerRepo()
	history := newMemHistoryRepo()
	counters := newMemRateRepo()
	p := NewPipeline(buyers, history, counters, zap.NewNop())
	return p, buyers, history, counters
}

func validInput() map[string]interface{} {
	return map[string]interface{}{
		"fullName":     "Amandeep Kaur",
		"email":        "amandeep@example.com",
		"phone":        "9876543210",
		"city":         "Mohali",
		"propertyType": "Apartment",
		"bhk":          "2",
		"purpose":      "Buy",
		"budgetMin":    float64(2500000),
		"budgetMax":    float64(4000000),
		"timeline":     "0-3m",
		"source":       "Website",
		"notes":        "prefers a corner unit",
		"tags":         []interface{}{"hot"},
	}
}

func TestPipelineCreateRoundTrip(t *testing.T) {
	p, buyers, history, _ := newTestPipeline()

	result, err := p.Create(testUser, validInput())
	require.NoError(t, err)
	require.NotNil(t, result.Buyer)
	assert.False(t, result.AuditDegraded)

	stored, err := buyers.GetByID(result.Buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, testUser, stored.OwnerID)
	assert.Equal(t, "Amandeep Kaur", stored.FullName)
	assert.Equal(t, "9876543210", stored.Phone)
	assert.Equal(t, models.STATUS_NEW, stored.Status)
	assert.NotEmpty(t, stored.ID)
	assert.False(t, stored.UpdatedAt.IsZero())

	assert.Equal(t, 1, history.size())
}

func TestPipelineCreateValidationFailureConsumesNoQuota(t *testing.T) {
	p, buyers, _, counters := newTestPipeline()

	input := validInput()
	input["phone"] = "123"
	_, err := p.Create(testUser, input)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, 0, buyers.size())

	counter, _ := counters.GetCurrent(testUser, models.ACTION_CREATE)
	assert.Nil(t, counter, "failed mutation must not consume quota")
}

func TestPipelineCreateRateLimit(t *testing.T) {
	p, _, _, _ := newTestPipeline()

	for i := 0; i < 10; i++ {
		_, err := p.Create(testUser, validInput())
		require.NoError(t, err, "create %d within the quota must succeed", i+1)
	}

	_, err := p.Create(testUser, validInput())
	assert.ErrorIs(t, err, ErrRateLimited, "the 11th create within the hour is rejected")

	// A different user is unaffected.
	_, err = p.Create("22222222-2222-2222-2222-222222222222", validInput())
	assert.NoError(t, err)
}

func TestPipelineCreateRateLimitWindowExpires(t *testing.T) {
	p, _, _, _ := newTestPipeline()

	current := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return current }
	p.limiter.now = p.now

	for i := 0; i < 10; i++ {
		_, err := p.Create(testUser, validInput())
		require.NoError(t, err)
	}
	_, err := p.Create(testUser, validInput())
	require.ErrorIs(t, err, ErrRateLimited)

	// One hour later the window has rolled over.
	current = current.Add(Window + time.Minute)
	_, err = p.Create(testUser, validInput())
	assert.NoError(t, err)
}

func TestPipelineCreateAuditDegraded(t *testing.T) {
	p, buyers, _, _ := newTestPipeline()
	p.history.(*memHistoryRepo).failNext = true

	result, err := p.Create(testUser, validInput())
	require.NoError(t, err, "audit failure must not fail the mutation")
	assert.True(t, result.AuditDegraded)
	assert.Equal(t, 1, buyers.size(), "primary mutation is not rolled back")
}

func TestPipelineUpdateSuccess(t *testing.T) {
	p, _, history, _ := newTestPipeline()

	created, err := p.Create(testUser, validInput())
	require.NoError(t, err)

	result, err := p.Update(testUser, created.Buyer.ID, created.Buyer.VersionToken(), map[string]interface{}{
		"status": "Qualified",
		"notes":  "site visit done",
	})
	require.NoError(t, err)
	assert.Equal(t, "Qualified", result.Buyer.Status)
	assert.Equal(t, "site visit done", result.Buyer.Notes)
	assert.Equal(t, "Amandeep Kaur", result.Buyer.FullName, "unsupplied fields keep their stored value")
	assert.True(t, result.Buyer.UpdatedAt.After(created.Buyer.UpdatedAt), "version token advances")

	// One creation entry plus one update entry.
	assert.Equal(t, 2, history.size())
}

func TestPipelineUpdateStaleVersion(t *testing.T) {
	p, _, _, _ := newTestPipeline()

	created, err := p.Create(testUser, validInput())
	require.NoError(t, err)
	staleToken := created.Buyer.VersionToken()

	// First writer with the token wins.
	_, err = p.Update(testUser, created.Buyer.ID, staleToken, map[string]interface{}{"status": "Qualified"})
	require.NoError(t, err)

	// Second writer carrying the same stale token must observe a conflict.
	_, err = p.Update(testUser, created.Buyer.ID, staleToken, map[string]interface{}{"status": "Contacted"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestPipelineUpdateArbitraryTokenConflicts(t *testing.T) {
	p, _, _, _ := newTestPipeline()

	created, err := p.Create(testUser, validInput())
	require.NoError(t, err)

	_, err = p.Update(testUser, created.Buyer.ID, "2020-01-01T00:00:00Z", map[string]interface{}{"status": "Qualified"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestPipelineUpdateOwnership(t *testing.T) {
	p, _, _, _ := newTestPipeline()

	created, err := p.Create(testUser, validInput())
	require.NoError(t, err)

	_, err = p.Update("99999999-9999-9999-9999-999999999999", created.Buyer.ID, created.Buyer.VersionToken(), map[string]interface{}{"status": "Qualified"})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestPipelineUpdateNotFound(t *testing.T) {
	p, _, _, _ := newTestPipeline()

	_, err := p.Update(testUser, "missing-id", "token", map[string]interface{}{"status": "Qualified"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPipelineUpdateMergedInvariant(t *testing.T) {
	p, _, _, _ := newTestPipeline()

	created, err := p.Create(testUser, validInput())
	require.NoError(t, err)

	// Switching to Villa while clearing BHK must violate the merged record's
	// BHK rule even though each field alone is structurally fine.
	_, err = p.Update(testUser, created.Buyer.ID, created.Buyer.VersionToken(), map[string]interface{}{
		"propertyType": "Villa",
		"bhk":          "",
	})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "bhk", validationErr.Fields[0].Field)
}

func TestPipelineUpdateRecordsFieldDiff(t *testing.T) {
	p, _, history, _ := newTestPipeline()

	created, err := p.Create(testUser, validInput())
	require.NoError(t, err)

	_, err = p.Update(testUser, created.Buyer.ID, created.Buyer.VersionToken(), map[string]interface{}{
		"status": "Qualified",
	})
	require.NoError(t, err)

	entries, err := history.GetByBuyerID(created.Buyer.ID, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	diff := string(entries[0].Diff)
	assert.Contains(t, diff, `"status"`)
	assert.Contains(t, diff, `"old":"New"`)
	assert.Contains(t, diff, `"new":"Qualified"`)
	assert.NotContains(t, diff, `"fullName"`, "unchanged fields are omitted from the diff")
}

func TestPipelineImportAllOrNothing(t *testing.T) {
	p, buyers, _, _ := newTestPipeline()

	rows := make([]map[string]interface{}, 0, 5)
	for i := 0; i < 5; i++ {
		rows = append(rows, validInput())
	}
	rows[2]["budgetMin"] = float64(100)
	rows[2]["budgetMax"] = float64(50)

	_, err := p.Import(testUser, rows)
	var rowErr *RowValidationError
	require.ErrorAs(t, err, &rowErr)
	require.Len(t, rowErr.Rows, 1)
	assert.Equal(t, 3, rowErr.Rows[0].Row, "row numbers are 1-based")
	assert.Equal(t, 0, buyers.size(), "no rows are persisted when any row fails")
}

func TestPipelineImportSuccess(t *testing.T) {
	p, buyers, history, _ := newTestPipeline()

	rows := []map[string]interface{}{validInput(), validInput(), validInput()}
	result, err := p.Import(testUser, rows)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Inserted)
	assert.False(t, result.AuditDegraded)
	assert.Equal(t, 3, buyers.size())
	assert.Equal(t, 3, history.size(), "one audit entry per imported row")
}

func TestPipelineImportRowCountBounds(t *testing.T) {
	p, _, _, _ := newTestPipeline()

	var validationErr *ValidationError
	_, err := p.Import(testUser, nil)
	require.ErrorAs(t, err, &validationErr)

	tooMany := make([]map[string]interface{}, MaxImportRows+1)
	for i := range tooMany {
		tooMany[i] = validInput()
	}
	_, err = p.Import(testUser, tooMany)
	require.ErrorAs(t, err, &validationErr)
}

func TestPipelineImportAuditDegraded(t *testing.T) {
	p, buyers, _, _ := newTestPipeline()
	p.history.(*memHistoryRepo).failNext = true

	result, err := p.Import(testUser, []map[string]interface{}{validInput()})
	require.NoError(t, err)
	assert.True(t, result.AuditDegraded)
	assert.Equal(t, 1, result.Inserted)
	assert.Equal(t, 1, buyers.size(), "committed import is not unwound")
}

func TestPipelineImportCountsAsOneAction(t *testing.T) {
	p, _, _, counters := newTestPipeline()

	rows := make([]map[string]interface{}, 50)
	for i := range rows {
		rows[i] = validInput()
	}
	_, err := p.Import(testUser, rows)
	require.NoError(t, err)

	counter, err := counters.GetCurrent(testUser, models.ACTION_IMPORT)
	require.NoError(t, err)
	require.NotNil(t, counter)
	assert.Equal(t, 1, counter.Count, "import is one action regardless of row count")
}

func TestPipelineImportRateLimit(t *testing.T) {
	p, _, _, _ := newTestPipeline()

	for i := 0; i < 5; i++ {
		_, err := p.Import(testUser, []map[string]interface{}{validInput()})
		require.NoError(t, err)
	}

	_, err := p.Import(testUser, []map[string]interface{}{validInput()})
	assert.ErrorIs(t, err, ErrRateLimited)
}
