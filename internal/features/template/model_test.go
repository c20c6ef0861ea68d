package template

import (
	"testing"
)

func fieldNames(fields []FieldDef) []string {
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.Name)
	}
	return names
}

func TestFieldsForStepPartition(t *testing.T) {
	tpl := &Template{
		TotalSteps: 2,
		Fields: []FieldDef{
			{Name: "a", Type: FieldTypeText},
			{Name: "b", Type: FieldTypeText},
			{Name: "c", Type: FieldTypeText},
			{Name: "d", Type: FieldTypeText},
			{Name: "e", Type: FieldTypeText},
		},
	}

	tests := []struct {
		step int
		want []string
	}{
		{step: 1, want: []string{"a", "b", "c"}},
		{step: 2, want: []string{"d", "e"}},
		{step: 0, want: nil},
		{step: 3, want: nil},
	}

	for _, tc := range tests {
		got := fieldNames(tpl.FieldsForStep(tc.step))
		if len(got) != len(tc.want) {
			t.Errorf("step %d: expected %v, got %v", tc.step, tc.want, got)
			continue
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Errorf("step %d: expected %v, got %v", tc.step, tc.want, got)
				break
			}
		}
	}
}

func TestFieldsForStepSingleStepOwnsEverything(t *testing.T) {
	tpl := &Template{
		TotalSteps: 1,
		Fields: []FieldDef{
			{Name: "a"}, {Name: "b"}, {Name: "c"},
		},
	}
	got := tpl.FieldsForStep(1)
	if len(got) != 3 {
		t.Errorf("expected all 3 fields on step 1, got %d", len(got))
	}
}

func TestFieldsForStepMoreStepsThanFields(t *testing.T) {
	tpl := &Template{
		TotalSteps: 4,
		Fields: []FieldDef{
			{Name: "a"}, {Name: "b"},
		},
	}
	// ceil(2/4) = 1 field per step; steps 3 and 4 own nothing
	if got := tpl.FieldsForStep(1); len(got) != 1 || got[0].Name != "a" {
		t.Errorf("step 1: expected [a], got %v", fieldNames(got))
	}
	if got := tpl.FieldsForStep(2); len(got) != 1 || got[0].Name != "b" {
		t.Errorf("step 2: expected [b], got %v", fieldNames(got))
	}
	if got := tpl.FieldsForStep(3); got != nil {
		t.Errorf("step 3: expected no fields, got %v", fieldNames(got))
	}
	if got := tpl.FieldsForStep(4); got != nil {
		t.Errorf("step 4: expected no fields, got %v", fieldNames(got))
	}
}

func TestRequiredFieldsPreservesSchemaOrder(t *testing.T) {
	tpl := &Template{
		Fields: []FieldDef{
			{Name: "first", Required: true},
			{Name: "second", Required: false},
			{Name: "third", Required: true},
		},
	}
	got := tpl.RequiredFields()
	want := []string{"first", "third"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected %v, got %v", want, got)
		}
	}
}
