package validation

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/leaddesk/leaddesk/app/models"
)

// fieldAliases maps legacy/alternate input keys to their canonical names.
// Applied once before validation so callers using either convention succeed
// identically.
var fieldAliases = map[string]string{
	"full_name":     "fullName",
	"property_type": "propertyType",
}

var stringFields = []string{
	"fullName", "email", "phone", "city", "propertyType",
	"bhk", "purpose", "timeline", "source", "notes", "status",
}

// normalized is the canonical, typed view of one raw input record.
type normalized struct {
	strings map[string]string
	min     *int64
	max     *int64
	tags    models.StringList
}

// normalizeRaw applies key aliasing, tag splitting and numeric coercion.
// The presence map records which canonical fields the caller actually sent.
// A nil value counts as absent and an empty string does not, except for
// budgets, where empty string means absent by contract.
func normalizeRaw(raw map[string]interface{}) (normalized, map[string]bool, FieldErrors) {
	in := make(map[string]interface{}, len(raw))
	for k, v := range raw {
		if canonical, ok := fieldAliases[k]; ok {
			if _, exists := raw[canonical]; !exists {
				in[canonical] = v
			}
			continue
		}
		in[k] = v
	}

	norm := normalized{strings: make(map[string]string, len(stringFields))}
	present := make(map[string]bool, len(in))
	var errs FieldErrors

	for _, field := range stringFields {
		v, ok := in[field]
		if !ok || v == nil {
			continue
		}
		s, ok := v.(string)
		if !ok {
			errs = append(errs, FieldError{Field: field, Message: "must be a string"})
			continue
		}
		norm.strings[field] = s
		present[field] = true
	}

	for _, field := range []string{"budgetMin", "budgetMax"} {
		v, ok := in[field]
		if !ok || v == nil {
			continue
		}
		n, absent, err := coerceBudget(v)
		if err != nil {
			errs = append(errs, FieldError{Field: field, Message: err.Error()})
			continue
		}
		if absent {
			continue
		}
		present[field] = true
		if field == "budgetMin" {
			norm.min = n
		} else {
			norm.max = n
		}
	}

	if v, ok := in["tags"]; ok && v != nil {
		tags, err := NormalizeTags(v)
		if err != nil {
			errs = append(errs, FieldError{Field: "tags", Message: err.Error()})
		} else {
			norm.tags = tags
			present["tags"] = true
		}
	}

	return norm, present, errs
}

// NormalizeTags turns a semicolon-delimited string into an ordered list of
// trimmed non-empty tags; a list input passes through unchanged.
func NormalizeTags(v interface{}) (models.StringList, error) {
	switch t := v.(type) {
	case string:
		parts := strings.Split(t, ";")
		out := make(models.StringList, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out, nil
	case []string:
		return models.StringList(t), nil
	case models.StringList:
		return t, nil
	case []interface{}:
		out := make(models.StringList, 0, len(t))
		for _, e := range t {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("must be a list of strings")
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("must be a list of strings")
	}
}

// coerceBudget converts the loosely typed budget inputs that JSON and CSV
// produce. Empty string means absent, not zero; anything non-numeric is a
// type error; fractional values are rejected rather than truncated.
func coerceBudget(v interface{}) (*int64, bool, error) {
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) {
			return nil, false, fmt.Errorf("must be an integer")
		}
		i := int64(n)
		return &i, false, nil
	case int:
		i := int64(n)
		return &i, false, nil
	case int64:
		return &n, false, nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return nil, false, fmt.Errorf("must be an integer")
		}
		return &i, false, nil
	case string:
		if strings.TrimSpace(n) == "" {
			return nil, true, nil
		}
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		if err != nil {
			return nil, false, fmt.Errorf("must be a number")
		}
		return &i, false, nil
	default:
		return nil, false, fmt.Errorf("must be a number")
	}
}

func buyerFromNormalized(n normalized) *models.Buyer {
	return &models.Buyer{
		FullName:     n.strings["fullName"],
		Email:        n.strings["email"],
		Phone:        n.strings["phone"],
		City:         n.strings["city"],
		PropertyType: n.strings["propertyType"],
		BHK:          n.strings["bhk"],
		Purpose:      n.strings["purpose"],
		BudgetMin:    n.min,
		BudgetMax:    n.max,
		Timeline:     n.strings["timeline"],
		Source:       n.strings["source"],
		Notes:        n.strings["notes"],
		Tags:         n.tags,
		Status:       n.strings["status"],
	}
}
