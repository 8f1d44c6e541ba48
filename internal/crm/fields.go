package crm

import (
	"errors"
	"fmt"
	"time"

	"github.com/nexocrm/nexo/pkg/models"
)

var ErrValidation = errors.New("validation failed")

// dateLayouts accepted for date-typed custom fields.
var dateLayouts = []string{time.RFC3339, "2006-01-02"}

// ValidateCustomFields checks values against the team's field definitions and
// returns a normalized copy. Keys are field-definition IDs; a key without a
// definition, a value of the wrong type, or a missing required field all fail
// before anything is written.
func ValidateCustomFields(defs []*models.FieldDefinition, values map[string]any) (map[string]any, error) {
	byID := make(map[string]*models.FieldDefinition, len(defs))
	for _, d := range defs {
		byID[d.ID.String()] = d
	}

	normalized := make(map[string]any, len(values))
	for key, raw := range values {
		def, ok := byID[key]
		if !ok {
			return nil, fmt.Errorf("%w: unknown custom field %q", ErrValidation, key)
		}
		val, err := validateFieldValue(def, raw)
		if err != nil {
			return nil, err
		}
		normalized[key] = val
	}

	for _, d := range defs {
		if d.Required {
			if _, ok := normalized[d.ID.String()]; !ok {
				return nil, fmt.Errorf("%w: custom field %q is required", ErrValidation, d.Name)
			}
		}
	}

	return normalized, nil
}

func validateFieldValue(def *models.FieldDefinition, raw any) (any, error) {
	switch def.Type {
	case models.FieldText:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("%w: field %q expects text", ErrValidation, def.Name)
		}
		return s, nil

	case models.FieldNumber:
		switch n := raw.(type) {
		case float64:
			return n, nil
		case int:
			return float64(n), nil
		}
		return nil, fmt.Errorf("%w: field %q expects a number", ErrValidation, def.Name)

	case models.FieldDate:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("%w: field %q expects a date string", ErrValidation, def.Name)
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC().Format(time.RFC3339), nil
			}
		}
		return nil, fmt.Errorf("%w: field %q expects an RFC3339 or YYYY-MM-DD date", ErrValidation, def.Name)

	case models.FieldBoolean:
		b, ok := raw.(bool)
		if !ok {
			return nil, fmt.Errorf("%w: field %q expects a boolean", ErrValidation, def.Name)
		}
		return b, nil

	case models.FieldSelect:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("%w: field %q expects an option", ErrValidation, def.Name)
		}
		for _, opt := range def.Options {
			if opt == s {
				return s, nil
			}
		}
		return nil, fmt.Errorf("%w: %q is not an option of field %q", ErrValidation, s, def.Name)
	}

	return nil, fmt.Errorf("%w: field %q has unknown type %q", ErrValidation, def.Name, def.Type)
}
