package buyerflow

import (
	"errors"
	"fmt"

	"github.com/leaddesk/leaddesk/internal/pkg/validation"
)

var (
	// ErrNotFound means the referenced buyer does not exist.
	ErrNotFound = errors.New("buyer not found")
	// ErrForbidden means the caller is authenticated but does not own the record.
	ErrForbidden = errors.New("not the record owner")
	// ErrConflict means the supplied version token no longer matches the
	// stored record; the caller must re-fetch and retry.
	ErrConflict = errors.New("record changed since last read")
	// ErrRateLimited means the caller exhausted the quota for this action.
	ErrRateLimited = errors.New("rate limit exceeded")
)

// ValidationError carries one or more field-level rejections. The mutation
// is never partially applied.
type ValidationError struct {
	Fields validation.FieldErrors
}

func (e *ValidationError) Error() string {
	return e.Fields.Error()
}

// RowError is one rejected import row; Row is 1-based.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// RowValidationError rejects a whole import batch: if any row fails, nothing
// is persisted and every failing row is reported.
type RowValidationError struct {
	Rows []RowError
}

func (e *RowValidationError) Error() string {
	return fmt.Sprintf("%d invalid row(s)", len(e.Rows))
}

// StoreError wraps a persistence failure. Callers surface it generically;
// the underlying detail is only logged.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
