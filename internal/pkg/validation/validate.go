package validation

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/leaddesk/leaddesk/app/models"
)

// Mode selects how missing fields are treated.
type Mode int

const (
	// ModeCreate requires every mandatory field to be present.
	ModeCreate Mode = iota
	// ModeUpdate validates only the supplied fields; missing mandatory
	// fields are not an error because the caller sends a partial record.
	ModeUpdate
)

// FieldError is one rejected field with a human-readable message.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldErrors is the full rejection list for one input record.
type FieldErrors []FieldError

func (e FieldErrors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return strings.Join(parts, "; ")
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// instance returns the shared validator, configured once: JSON tag names
// for error paths and a strict digits rule for phone numbers.
func instance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = validate.RegisterValidation("digits", func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			if s == "" {
				return false
			}
			for _, r := range s {
				if r < '0' || r > '9' {
					return false
				}
			}
			return true
		})
	})
	return validate
}

// Validate normalizes and checks one untrusted field map. On success it
// returns the typed record plus the set of canonical field names that were
// actually supplied (update merging needs it). On failure it returns every
// field error found in the pass; it never panics and never touches storage.
func Validate(raw map[string]interface{}, mode Mode) (*models.Buyer, map[string]bool, FieldErrors) {
	norm, present, errs := normalizeRaw(raw)

	buyer := buyerFromNormalized(norm)
	if mode == ModeCreate && buyer.Status == "" {
		buyer.Status = models.STATUS_NEW
	}

	errs = append(errs, structuralErrors(buyer, present, mode)...)
	if mode == ModeCreate {
		errs = append(errs, CheckCrossField(buyer)...)
	}

	if len(errs) > 0 {
		return nil, present, errs
	}
	return buyer, present, nil
}

// CheckCrossField runs the ordered cross-field rules on a complete record:
// first the BHK rule, then the budget ordering rule. Both violations are
// reported in the same pass.
func CheckCrossField(b *models.Buyer) FieldErrors {
	var errs FieldErrors
	if b.RequiresBHK() && b.BHK == "" {
		errs = append(errs, FieldError{Field: "bhk", Message: "BHK required for Apartment or Villa"})
	} else if !b.RequiresBHK() && b.BHK != "" {
		errs = append(errs, FieldError{Field: "bhk", Message: "BHK must be empty unless property type is Apartment or Villa"})
	}
	if b.BudgetMin != nil && b.BudgetMax != nil && *b.BudgetMax < *b.BudgetMin {
		errs = append(errs, FieldError{Field: "budgetMax", Message: "budgetMax must be >= budgetMin"})
	}
	return errs
}

func structuralErrors(b *models.Buyer, present map[string]bool, mode Mode) FieldErrors {
	err := instance().Struct(b)
	if err == nil {
		return nil
	}
	vErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return FieldErrors{{Field: "", Message: err.Error()}}
	}

	var errs FieldErrors
	for _, fe := range vErrs {
		field := fe.Field()
		if mode == ModeUpdate && !present[field] {
			continue
		}
		errs = append(errs, FieldError{Field: field, Message: messageFor(fe)})
	}
	return errs
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "email":
		return "must be a valid email address"
	case "digits":
		return "must contain only digits"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "gt":
		return "must be a positive number"
	default:
		return "is invalid"
	}
}
