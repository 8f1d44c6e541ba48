package crm_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexocrm/nexo/internal/crm"
	"github.com/nexocrm/nexo/pkg/models"
)

func def(fieldType models.FieldType, required bool, options ...string) *models.FieldDefinition {
	return &models.FieldDefinition{
		ID:       uuid.New(),
		Entity:   models.FieldEntityLead,
		Name:     "field-" + string(fieldType),
		Type:     fieldType,
		Options:  options,
		Required: required,
	}
}

func TestValidateCustomFields_AllTypes(t *testing.T) {
	text := def(models.FieldText, false)
	number := def(models.FieldNumber, false)
	date := def(models.FieldDate, false)
	boolean := def(models.FieldBoolean, false)
	sel := def(models.FieldSelect, false, "hot", "cold")
	defs := []*models.FieldDefinition{text, number, date, boolean, sel}

	got, err := crm.ValidateCustomFields(defs, map[string]any{
		text.ID.String():    "hello",
		number.ID.String():  float64(42),
		date.ID.String():    "2026-03-01",
		boolean.ID.String(): true,
		sel.ID.String():     "hot",
	})
	require.NoError(t, err)

	assert.Equal(t, "hello", got[text.ID.String()])
	assert.Equal(t, float64(42), got[number.ID.String()])
	assert.Equal(t, "2026-03-01T00:00:00Z", got[date.ID.String()], "dates are normalized to RFC3339")
	assert.Equal(t, true, got[boolean.ID.String()])
	assert.Equal(t, "hot", got[sel.ID.String()])
}

func TestValidateCustomFields_UnknownKey(t *testing.T) {
	_, err := crm.ValidateCustomFields(nil, map[string]any{
		uuid.NewString(): "value",
	})
	assert.ErrorIs(t, err, crm.ErrValidation)
}

func TestValidateCustomFields_WrongType(t *testing.T) {
	number := def(models.FieldNumber, false)

	_, err := crm.ValidateCustomFields(
		[]*models.FieldDefinition{number},
		map[string]any{number.ID.String(): "forty-two"},
	)
	assert.ErrorIs(t, err, crm.ErrValidation)
}

func TestValidateCustomFields_BadDate(t *testing.T) {
	date := def(models.FieldDate, false)

	_, err := crm.ValidateCustomFields(
		[]*models.FieldDefinition{date},
		map[string]any{date.ID.String(): "03/01/2026"},
	)
	assert.ErrorIs(t, err, crm.ErrValidation)
}

func TestValidateCustomFields_SelectOutsideOptions(t *testing.T) {
	sel := def(models.FieldSelect, false, "hot", "cold")

	_, err := crm.ValidateCustomFields(
		[]*models.FieldDefinition{sel},
		map[string]any{sel.ID.String(): "lukewarm"},
	)
	assert.ErrorIs(t, err, crm.ErrValidation)
}

func TestValidateCustomFields_MissingRequired(t *testing.T) {
	required := def(models.FieldText, true)

	_, err := crm.ValidateCustomFields(
		[]*models.FieldDefinition{required},
		map[string]any{},
	)
	assert.ErrorIs(t, err, crm.ErrValidation)
}

func TestValidateCustomFields_Empty(t *testing.T) {
	got, err := crm.ValidateCustomFields(nil, map[string]any{})
	require.NoError(t, err)
	assert.Empty(t, got)
}
