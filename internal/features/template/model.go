package template

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeTextArea FieldType = "textarea"
	FieldTypeNumber   FieldType = "number"
	FieldTypeSelect   FieldType = "select"
	FieldTypeDate     FieldType = "date"
	FieldTypeFile     FieldType = "file"
)

type SelectOption struct {
	Label string `json:"label" bson:"label"`
	Value string `json:"value" bson:"value"`
}

// FieldDef is one field of a form template. The Type tag is a closed set;
// validation matches exhaustively over it.
type FieldDef struct {
	Name     string         `json:"name" bson:"name"`
	Label    string         `json:"label" bson:"label"`
	Type     FieldType      `json:"type" bson:"type"`
	Required bool           `json:"required" bson:"required"`
	Options  []SelectOption `json:"options,omitempty" bson:"options,omitempty"` // For Select
}

// Template is a versioned form schema. A template referenced by at least one
// submission is immutable; edits produce a new document with Version+1.
type Template struct {
	ID               primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name             string             `json:"name" bson:"name"`
	Description      string             `json:"description" bson:"description"`
	Fields           []FieldDef         `json:"fields" bson:"fields"`
	TotalSteps       int                `json:"total_steps" bson:"total_steps"`
	RequiresApproval bool               `json:"requires_approval" bson:"requires_approval"`
	Active           bool               `json:"active" bson:"active"`
	Version          int                `json:"version" bson:"version"`
	CreatedAt        time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at" bson:"updated_at"`
}

// Summary is the listing shape returned by ListTemplates.
type Summary struct {
	ID               primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name             string             `json:"name" bson:"name"`
	Description      string             `json:"description" bson:"description"`
	TotalSteps       int                `json:"total_steps" bson:"total_steps"`
	RequiresApproval bool               `json:"requires_approval" bson:"requires_approval"`
	Active           bool               `json:"active" bson:"active"`
	Version          int                `json:"version" bson:"version"`
}

// RequiredFields returns the names of required fields in schema order.
func (t *Template) RequiredFields() []string {
	var names []string
	for _, f := range t.Fields {
		if f.Required {
			names = append(names, f.Name)
		}
	}
	return names
}

// FieldsForStep partitions the schema's fields into TotalSteps contiguous
// groups of near-equal size (ceiling division) and returns the group owned
// by step (1-indexed). The partition is positional: schema order decides
// which step owns a field.
func (t *Template) FieldsForStep(step int) []FieldDef {
	if step < 1 || step > t.TotalSteps || len(t.Fields) == 0 {
		return nil
	}
	perStep := (len(t.Fields) + t.TotalSteps - 1) / t.TotalSteps
	start := (step - 1) * perStep
	if start >= len(t.Fields) {
		return nil
	}
	end := start + perStep
	if end > len(t.Fields) {
		end = len(t.Fields)
	}
	return t.Fields[start:end]
}

// FieldByName looks a field up in schema order.
func (t *Template) FieldByName(name string) (FieldDef, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDef{}, false
}
