package template

import (
	"strconv"
	"strings"
	"time"

	"go-formflow/internal/common/apperr"
)

// ValidateValue checks a single submitted value against its field definition.
// A nil value or blank string counts as absent; callers decide whether absent
// is an error (required fields) or fine (optional ones).
func ValidateValue(f FieldDef, value any) error {
	switch f.Type {
	case FieldTypeText, FieldTypeTextArea:
		if _, ok := value.(string); !ok {
			return apperr.ValidationMsg(f.Name, "expected a string value for field "+f.Name)
		}
	case FieldTypeNumber:
		switch v := value.(type) {
		case float64, float32, int, int32, int64:
			// JSON decoding yields float64; typed ints come from internal callers
		case string:
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				return apperr.ValidationMsg(f.Name, "expected a numeric value for field "+f.Name)
			}
		default:
			return apperr.ValidationMsg(f.Name, "expected a numeric value for field "+f.Name)
		}
	case FieldTypeSelect:
		s, ok := value.(string)
		if !ok {
			return apperr.ValidationMsg(f.Name, "expected an option value for field "+f.Name)
		}
		for _, opt := range f.Options {
			if opt.Value == s {
				return nil
			}
		}
		return apperr.ValidationMsg(f.Name, "value is not an allowed option for field "+f.Name)
	case FieldTypeDate:
		s, ok := value.(string)
		if !ok {
			return apperr.ValidationMsg(f.Name, "expected a date value for field "+f.Name)
		}
		if _, err := time.Parse("2006-01-02", s); err != nil {
			if _, err := time.Parse(time.RFC3339, s); err != nil {
				return apperr.ValidationMsg(f.Name, "expected a date value for field "+f.Name)
			}
		}
	case FieldTypeFile:
		// Opaque attachment reference; content is never inspected here
		if _, ok := value.(string); !ok {
			return apperr.ValidationMsg(f.Name, "expected a file reference for field "+f.Name)
		}
	default:
		return apperr.ValidationMsg(f.Name, "unknown field type "+string(f.Type))
	}
	return nil
}

// IsBlank reports whether a submitted value counts as missing.
func IsBlank(value any) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

// ValidateStep checks every required field owned by the given step:
// presence, non-blank, and type. The first offending field in schema order
// wins; later problems are not collected.
func ValidateStep(t *Template, step int, values map[string]any) error {
	for _, f := range t.FieldsForStep(step) {
		value, present := values[f.Name]
		if !present || IsBlank(value) {
			if f.Required {
				return apperr.Validation(f.Name)
			}
			continue
		}
		if err := ValidateValue(f, value); err != nil {
			return err
		}
	}
	return nil
}
