package buyerflow

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/leaddesk/leaddesk/app/models"
	"github.com/leaddesk/leaddesk/app/repository"
	"github.com/leaddesk/leaddesk/internal/pkg/validation"
)

// MaxImportRows caps one import request.
const MaxImportRows = 200

// Result is the outcome of a successful create or update. AuditDegraded is
// set when the primary mutation committed but the history write failed; the
// mutation is not rolled back in that case.
type Result struct {
	Buyer         *models.Buyer
	AuditDegraded bool
}

// ImportResult is the outcome of a successful bulk import.
type ImportResult struct {
	Inserted      int
	AuditDegraded bool
}

// Pipeline sequences the validated mutations on buyer leads. It is
// stateless per call; all long-lived state lives in the injected
// repositories.
type Pipeline struct {
	buyers  repository.BuyerRepository
	history repository.BuyerHistoryRepository
	limiter *RateLimiter
	log     *zap.Logger
	now     func() time.Time
}

// NewPipeline wires the pipeline with its collaborators.
func NewPipeline(buyers repository.BuyerRepository, history repository.BuyerHistoryRepository, counters repository.RateLimitRepository, log *zap.Logger) *Pipeline {
	return &Pipeline{
		buyers:  buyers,
		history: history,
		limiter: NewRateLimiter(counters),
		log:     log,
		now:     time.Now,
	}
}

// Create validates and persists one new lead owned by userID.
func (p *Pipeline) Create(userID string, raw map[string]interface{}) (*Result, error) {
	buyer, _, fieldErrs := validation.Validate(raw, validation.ModeCreate)
	if fieldErrs != nil {
		return nil, &ValidationError{Fields: fieldErrs}
	}

	if err := p.limiter.Check(userID, models.ACTION_CREATE); err != nil {
		return nil, err
	}

	now := p.now().UTC()
	buyer.ID = uuid.NewString()
	buyer.OwnerID = userID
	buyer.CreatedAt = now
	buyer.UpdatedAt = now

	if err := p.buyers.Create(buyer); err != nil {
		return nil, &StoreError{Op: "insert buyer", Err: err}
	}

	degraded := p.recordHistory(&models.BuyerHistory{
		BuyerID:   buyer.ID,
		ChangedBy: userID,
		ChangedAt: now,
		Diff:      createdDiff(buyer),
	})
	p.recordQuota(userID, models.ACTION_CREATE)

	return &Result{Buyer: buyer, AuditDegraded: degraded}, nil
}

// Update applies the supplied fields to an existing lead. The cheap checks
// run first: ownership and version are more likely to reject than
// validation and cost nothing.
func (p *Pipeline) Update(userID, id, versionToken string, raw map[string]interface{}) (*Result, error) {
	stored, err := p.buyers.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, &StoreError{Op: "fetch buyer", Err: err}
	}

	if stored.OwnerID != userID {
		return nil, ErrForbidden
	}
	if err := checkVersion(stored, versionToken); err != nil {
		return nil, err
	}

	changes, present, fieldErrs := validation.Validate(raw, validation.ModeUpdate)
	if fieldErrs != nil {
		return nil, &ValidationError{Fields: fieldErrs}
	}
	merged := mergeBuyer(stored, changes, present)
	if crossErrs := validation.CheckCrossField(merged); crossErrs != nil {
		return nil, &ValidationError{Fields: crossErrs}
	}

	if err := p.limiter.Check(userID, models.ACTION_UPDATE); err != nil {
		return nil, err
	}

	now := p.now().UTC()
	merged.UpdatedAt = now
	ok, err := p.buyers.UpdateVersioned(merged, stored.UpdatedAt)
	if err != nil {
		return nil, &StoreError{Op: "update buyer", Err: err}
	}
	if !ok {
		// Another writer committed between our fetch and the conditional
		// write; same contract as a failed token check.
		return nil, ErrConflict
	}

	degraded := p.recordHistory(&models.BuyerHistory{
		BuyerID:   merged.ID,
		ChangedBy: userID,
		ChangedAt: now,
		Diff:      diffBuyers(stored, merged),
	})
	p.recordQuota(userID, models.ACTION_UPDATE)

	return &Result{Buyer: merged, AuditDegraded: degraded}, nil
}

// Import validates every row independently and persists the batch
// all-or-nothing: one bad row rejects the whole request. The batch counts
// as a single action against the import quota regardless of row count.
func (p *Pipeline) Import(userID string, rows []map[string]interface{}) (*ImportResult, error) {
	if len(rows) == 0 {
		return nil, &ValidationError{Fields: validation.FieldErrors{{Field: "rows", Message: "at least one row is required"}}}
	}
	if len(rows) > MaxImportRows {
		return nil, &ValidationError{Fields: validation.FieldErrors{{Field: "rows", Message: "at most 200 rows are allowed"}}}
	}

	var rowErrs []RowError
	buyers := make([]*models.Buyer, 0, len(rows))
	for i, raw := range rows {
		buyer, _, fieldErrs := validation.Validate(raw, validation.ModeCreate)
		if fieldErrs != nil {
			rowErrs = append(rowErrs, RowError{Row: i + 1, Message: fieldErrs.Error()})
			continue
		}
		buyers = append(buyers, buyer)
	}
	if len(rowErrs) > 0 {
		return nil, &RowValidationError{Rows: rowErrs}
	}

	if err := p.limiter.Check(userID, models.ACTION_IMPORT); err != nil {
		return nil, err
	}

	now := p.now().UTC()
	for _, buyer := range buyers {
		buyer.ID = uuid.NewString()
		buyer.OwnerID = userID
		buyer.CreatedAt = now
		buyer.UpdatedAt = now
	}
	if err := p.buyers.CreateBatch(buyers); err != nil {
		return nil, &StoreError{Op: "bulk insert buyers", Err: err}
	}

	entries := make([]*models.BuyerHistory, 0, len(buyers))
	for _, buyer := range buyers {
		entries = append(entries, &models.BuyerHistory{
			BuyerID:   buyer.ID,
			ChangedBy: userID,
			ChangedAt: now,
			Diff:      importedDiff(buyer),
		})
	}
	degraded := false
	if err := p.history.CreateBatch(entries); err != nil {
		// The bulk insert is already committed; unwinding it to satisfy a
		// secondary audit failure would be worse than an incomplete trail.
		p.log.Warn("import history write failed", zap.Int("rows", len(entries)), zap.Error(err))
		degraded = true
	}
	p.recordQuota(userID, models.ACTION_IMPORT)

	return &ImportResult{Inserted: len(buyers), AuditDegraded: degraded}, nil
}

// recordHistory appends one audit entry after the primary commit. A failure
// degrades the response to a warning instead of failing the request.
func (p *Pipeline) recordHistory(entry *models.BuyerHistory) bool {
	if err := p.history.Create(entry); err != nil {
		p.log.Warn("history write failed", zap.String("buyer_id", entry.BuyerID), zap.Error(err))
		return true
	}
	return false
}

// recordQuota consumes quota after success; a counter failure must not fail
// the already-committed mutation.
func (p *Pipeline) recordQuota(userID, action string) {
	if err := p.limiter.Record(userID, action); err != nil {
		p.log.Warn("rate limit record failed", zap.String("user_id", userID), zap.String("action", action), zap.Error(err))
	}
}

// mergeBuyer overlays the supplied fields onto a copy of the stored record.
func mergeBuyer(stored *models.Buyer, changes *models.Buyer, present map[string]bool) *models.Buyer {
	merged := *stored
	if present["fullName"] {
		merged.FullName = changes.FullName
	}
	if present["email"] {
		merged.Email = changes.Email
	}
	if present["phone"] {
		merged.Phone = changes.Phone
	}
	if present["city"] {
		merged.City = changes.City
	}
	if present["propertyType"] {
		merged.PropertyType = changes.PropertyType
	}
	if present["bhk"] {
		merged.BHK = changes.BHK
	}
	if present["purpose"] {
		merged.Purpose = changes.Purpose
	}
	if present["budgetMin"] {
		merged.BudgetMin = changes.BudgetMin
	}
	if present["budgetMax"] {
		merged.BudgetMax = changes.BudgetMax
	}
	if present["timeline"] {
		merged.Timeline = changes.Timeline
	}
	if present["source"] {
		merged.Source = changes.Source
	}
	if present["notes"] {
		merged.Notes = changes.Notes
	}
	if present["tags"] {
		merged.Tags = changes.Tags
	}
	if present["status"] {
		merged.Status = changes.Status
	}
	return &merged
}
