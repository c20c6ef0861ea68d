package template

import (
	"testing"

	"go-formflow/internal/common/apperr"
)

func twoStepTemplate() *Template {
	return &Template{
		Name:       "Expense Report",
		TotalSteps: 2,
		Fields: []FieldDef{
			{Name: "title", Type: FieldTypeText, Required: true},
			{Name: "amount", Type: FieldTypeNumber, Required: true},
			{Name: "category", Type: FieldTypeSelect, Required: true, Options: []SelectOption{
				{Label: "Travel", Value: "travel"},
				{Label: "Meals", Value: "meals"},
			}},
			{Name: "receipt_date", Type: FieldTypeDate, Required: false},
		},
	}
}

func TestValidateStepFirstMissingWins(t *testing.T) {
	tpl := twoStepTemplate()

	// Step 1 owns title and amount; both absent, title must be reported
	err := ValidateStep(tpl, 1, map[string]any{})
	if err == nil {
		t.Fatal("expected a validation error")
	}
	appErr, ok := err.(*apperr.Error)
	if !ok {
		t.Fatalf("expected *apperr.Error, got %T", err)
	}
	if appErr.Kind != apperr.KindValidation {
		t.Errorf("expected validation kind, got %s", appErr.Kind)
	}
	if appErr.Field != "title" {
		t.Errorf("expected first field in schema order (title), got %s", appErr.Field)
	}
}

func TestValidateStepBlankStringCountsAsMissing(t *testing.T) {
	tpl := twoStepTemplate()
	err := ValidateStep(tpl, 1, map[string]any{"title": "   ", "amount": 12.5})
	if err == nil {
		t.Fatal("expected a validation error for blank title")
	}
	if appErr, ok := err.(*apperr.Error); !ok || appErr.Field != "title" {
		t.Errorf("expected title to be flagged, got %v", err)
	}
}

func TestValidateStepOptionalFieldMayBeAbsent(t *testing.T) {
	tpl := twoStepTemplate()
	// Step 2 owns category and receipt_date; receipt_date is optional
	err := ValidateStep(tpl, 2, map[string]any{"category": "travel"})
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateStepChecksTypes(t *testing.T) {
	tpl := twoStepTemplate()

	tests := []struct {
		name   string
		step   int
		values map[string]any
		field  string
	}{
		{name: "number gets a non-numeric string", step: 1, values: map[string]any{"title": "ok", "amount": "lots"}, field: "amount"},
		{name: "select gets an unknown option", step: 2, values: map[string]any{"category": "gadgets"}, field: "category"},
		{name: "date gets garbage", step: 2, values: map[string]any{"category": "meals", "receipt_date": "yesterday"}, field: "receipt_date"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateStep(tpl, tc.step, tc.values)
			if err == nil {
				t.Fatal("expected a validation error")
			}
			appErr, ok := err.(*apperr.Error)
			if !ok {
				t.Fatalf("expected *apperr.Error, got %T", err)
			}
			if appErr.Field != tc.field {
				t.Errorf("expected field %s, got %s", tc.field, appErr.Field)
			}
		})
	}
}

func TestValidateStepAcceptsNumericForms(t *testing.T) {
	tpl := twoStepTemplate()
	for _, amount := range []any{float64(10), 10, "10.5"} {
		if err := ValidateStep(tpl, 1, map[string]any{"title": "ok", "amount": amount}); err != nil {
			t.Errorf("amount %v (%T): unexpected error %v", amount, amount, err)
		}
	}
}
