package template

import (
	"context"
	"testing"

	"go-formflow/internal/common/apperr"
	"go-formflow/internal/features/audit"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MockTemplateRepo struct {
	templates map[string]*Template

	CreatedTemplates   []*Template
	UpdatedID          string
	DeactivatedID      string
	DeactivatedApplied bool
}

func newMockTemplateRepo() *MockTemplateRepo {
	return &MockTemplateRepo{templates: make(map[string]*Template)}
}

func (m *MockTemplateRepo) Create(ctx context.Context, tpl *Template) error {
	m.CreatedTemplates = append(m.CreatedTemplates, tpl)
	m.templates[tpl.ID.Hex()] = tpl
	return nil
}

func (m *MockTemplateRepo) GetByID(ctx context.Context, id string) (*Template, error) {
	return m.templates[id], nil
}

func (m *MockTemplateRepo) GetByName(ctx context.Context, name string) (*Template, error) {
	for _, tpl := range m.templates {
		if tpl.Name == name {
			return tpl, nil
		}
	}
	return nil, nil
}

func (m *MockTemplateRepo) List(ctx context.Context, activeOnly bool) ([]Summary, error) {
	return nil, nil
}

func (m *MockTemplateRepo) Update(ctx context.Context, id string, tpl Template) error {
	m.UpdatedID = id
	existing := m.templates[id]
	tpl.ID = existing.ID
	m.templates[id] = &tpl
	return nil
}

func (m *MockTemplateRepo) SetActive(ctx context.Context, id string, active bool) error {
	if !active {
		m.DeactivatedID = id
		m.DeactivatedApplied = true
	}
	if tpl, ok := m.templates[id]; ok {
		tpl.Active = active
	}
	return nil
}

func (m *MockTemplateRepo) EnsureIndexes(ctx context.Context) error { return nil }

type MockSubmissionCounter struct {
	Count int64
}

func (m *MockSubmissionCounter) CountByTemplate(ctx context.Context, templateID primitive.ObjectID) (int64, error) {
	return m.Count, nil
}

type MockAuditService struct {
	Actions []audit.Action
}

func (m *MockAuditService) Record(ctx context.Context, action audit.Action, entityType audit.EntityType, entityID, actorID, details string) error {
	m.Actions = append(m.Actions, action)
	return nil
}

func (m *MockAuditService) List(ctx context.Context, filters map[string]interface{}, page, limit int64) ([]audit.Entry, error) {
	return nil, nil
}

func validTemplate() Template {
	return Template{
		Name:       "Leave Request",
		TotalSteps: 1,
		Fields: []FieldDef{
			{Name: "reason", Type: FieldTypeTextArea, Required: true},
		},
	}
}

func TestCreateRejectsBadSchemas(t *testing.T) {
	service := &TemplateServiceImpl{
		Repo:        newMockTemplateRepo(),
		Submissions: &MockSubmissionCounter{},
		Audit:       &MockAuditService{},
	}
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*Template)
	}{
		{name: "missing name", mutate: func(tpl *Template) { tpl.Name = "" }},
		{name: "zero steps", mutate: func(tpl *Template) { tpl.TotalSteps = 0 }},
		{name: "duplicate field", mutate: func(tpl *Template) {
			tpl.Fields = append(tpl.Fields, FieldDef{Name: "reason", Type: FieldTypeText})
		}},
		{name: "select without options", mutate: func(tpl *Template) {
			tpl.Fields = append(tpl.Fields, FieldDef{Name: "dept", Type: FieldTypeSelect})
		}},
		{name: "unknown field type", mutate: func(tpl *Template) {
			tpl.Fields = append(tpl.Fields, FieldDef{Name: "photo", Type: FieldType("image")})
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tpl := validTemplate()
			tc.mutate(&tpl)
			_, err := service.Create(ctx, "admin", tpl)
			if !apperr.IsKind(err, apperr.KindValidation) {
				t.Errorf("expected a validation error, got %v", err)
			}
		})
	}
}

func TestUpdateEditsInPlaceWhenUnreferenced(t *testing.T) {
	repo := newMockTemplateRepo()
	service := &TemplateServiceImpl{
		Repo:        repo,
		Submissions: &MockSubmissionCounter{Count: 0},
		Audit:       &MockAuditService{},
	}
	ctx := context.Background()

	created, err := service.Create(ctx, "admin", validTemplate())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	edit := validTemplate()
	edit.Description = "updated description"
	updated, err := service.Update(ctx, "admin", created.ID.Hex(), edit)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if repo.UpdatedID != created.ID.Hex() {
		t.Errorf("expected an in-place update of %s, got %q", created.ID.Hex(), repo.UpdatedID)
	}
	if updated.Version != 1 {
		t.Errorf("expected version to stay 1, got %d", updated.Version)
	}
	if updated.ID != created.ID {
		t.Errorf("expected the document identity to be preserved")
	}
}

func TestUpdateVersionsWhenReferenced(t *testing.T) {
	repo := newMockTemplateRepo()
	counter := &MockSubmissionCounter{Count: 0}
	service := &TemplateServiceImpl{
		Repo:        repo,
		Submissions: counter,
		Audit:       &MockAuditService{},
	}
	ctx := context.Background()

	created, err := service.Create(ctx, "admin", validTemplate())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A submission now references the template; edits must version
	counter.Count = 3

	edit := validTemplate()
	edit.Description = "changed after being referenced"
	next, err := service.Update(ctx, "admin", created.ID.Hex(), edit)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if next.ID == created.ID {
		t.Error("expected a new document for the new version")
	}
	if next.Version != 2 {
		t.Errorf("expected version 2, got %d", next.Version)
	}
	if !next.Active {
		t.Error("expected the new version to be active")
	}
	if repo.DeactivatedID != created.ID.Hex() {
		t.Errorf("expected the old version to be deactivated, got %q", repo.DeactivatedID)
	}
}
