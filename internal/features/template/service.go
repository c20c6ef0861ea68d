package template

import (
	"context"
	"time"

	"go-formflow/internal/common/apperr"
	"go-formflow/internal/features/audit"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SubmissionCounter tells the catalog whether a template is referenced.
// Satisfied by the submission repository; wired in main.
type SubmissionCounter interface {
	CountByTemplate(ctx context.Context, templateID primitive.ObjectID) (int64, error)
}

type TemplateService interface {
	Create(ctx context.Context, actorID string, tpl Template) (*Template, error)
	Get(ctx context.Context, id string) (*Template, error)
	List(ctx context.Context, activeOnly bool) ([]Summary, error)
	// Update edits a template in place when it is unreferenced; once any
	// submission references it, the edit lands as a new version instead.
	Update(ctx context.Context, actorID string, id string, tpl Template) (*Template, error)
	SetActive(ctx context.Context, actorID string, id string, active bool) error
}

type TemplateServiceImpl struct {
	Repo        TemplateRepository
	Submissions SubmissionCounter
	Audit       audit.AuditService
}

func NewTemplateService(repo TemplateRepository, submissions SubmissionCounter, auditService audit.AuditService) TemplateService {
	return &TemplateServiceImpl{
		Repo:        repo,
		Submissions: submissions,
		Audit:       auditService,
	}
}

func (s *TemplateServiceImpl) Create(ctx context.Context, actorID string, tpl Template) (*Template, error) {
	if err := validateSchema(&tpl); err != nil {
		return nil, err
	}

	tpl.ID = primitive.NewObjectID()
	tpl.Version = 1
	tpl.Active = true
	tpl.CreatedAt = time.Now()
	tpl.UpdatedAt = time.Now()

	if err := s.Repo.Create(ctx, &tpl); err != nil {
		return nil, err
	}

	_ = s.Audit.Record(ctx, audit.ActionCreate, audit.EntityTemplate, tpl.ID.Hex(), actorID, "Template created: "+tpl.Name)
	return &tpl, nil
}

func (s *TemplateServiceImpl) Get(ctx context.Context, id string) (*Template, error) {
	tpl, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tpl == nil {
		return nil, apperr.NotFound("template", id)
	}
	return tpl, nil
}

func (s *TemplateServiceImpl) List(ctx context.Context, activeOnly bool) ([]Summary, error) {
	return s.Repo.List(ctx, activeOnly)
}

func (s *TemplateServiceImpl) Update(ctx context.Context, actorID string, id string, tpl Template) (*Template, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := validateSchema(&tpl); err != nil {
		return nil, err
	}

	refs, err := s.Submissions.CountByTemplate(ctx, existing.ID)
	if err != nil {
		return nil, err
	}

	if refs > 0 {
		// Referenced templates are immutable: publish a new version and
		// retire the old one.
		next := tpl
		next.ID = primitive.NewObjectID()
		next.Version = existing.Version + 1
		next.Active = true
		next.CreatedAt = time.Now()
		next.UpdatedAt = time.Now()
		if err := s.Repo.Create(ctx, &next); err != nil {
			return nil, err
		}
		if err := s.Repo.SetActive(ctx, existing.ID.Hex(), false); err != nil {
			return nil, err
		}
		_ = s.Audit.Record(ctx, audit.ActionUpdate, audit.EntityTemplate, next.ID.Hex(), actorID, "Template versioned: "+next.Name)
		return &next, nil
	}

	tpl.ID = existing.ID
	tpl.Version = existing.Version
	if err := s.Repo.Update(ctx, id, tpl); err != nil {
		return nil, err
	}
	_ = s.Audit.Record(ctx, audit.ActionUpdate, audit.EntityTemplate, id, actorID, "Template updated: "+tpl.Name)

	return s.Get(ctx, id)
}

func (s *TemplateServiceImpl) SetActive(ctx context.Context, actorID string, id string, active bool) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.Repo.SetActive(ctx, id, active); err != nil {
		return err
	}
	state := "deactivated"
	if active {
		state = "activated"
	}
	_ = s.Audit.Record(ctx, audit.ActionUpdate, audit.EntityTemplate, id, actorID, "Template "+state)
	return nil
}

func validateSchema(tpl *Template) error {
	if tpl.Name == "" {
		return apperr.ValidationMsg("name", "template name is required")
	}
	if tpl.TotalSteps < 1 {
		return apperr.ValidationMsg("total_steps", "total_steps must be at least 1")
	}
	seen := make(map[string]bool)
	for _, f := range tpl.Fields {
		if f.Name == "" {
			return apperr.ValidationMsg("fields", "every field needs a name")
		}
		if seen[f.Name] {
			return apperr.ValidationMsg(f.Name, "duplicate field name "+f.Name)
		}
		seen[f.Name] = true
		switch f.Type {
		case FieldTypeText, FieldTypeTextArea, FieldTypeNumber, FieldTypeDate, FieldTypeFile:
		case FieldTypeSelect:
			if len(f.Options) == 0 {
				return apperr.ValidationMsg(f.Name, "select field needs options")
			}
		default:
			return apperr.ValidationMsg(f.Name, "unknown field type "+string(f.Type))
		}
	}
	return nil
}
