package submission

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Status string

const (
	StatusSubmitted   Status = "SUBMITTED"
	StatusUnderReview Status = "UNDER_REVIEW"
	StatusApproved    Status = "APPROVED"
	StatusRejected    Status = "REJECTED"
	StatusCancelled   Status = "CANCELLED"
)

// IsTerminal reports whether no further lifecycle transitions are allowed.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusCancelled
}

// Submission is one filled-in template instance tracked through approval.
// Template shape is denormalized onto the document at creation time so the
// lifecycle never depends on later template edits.
type Submission struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TemplateID       primitive.ObjectID `bson:"template_id" json:"template_id"`
	TemplateName     string             `bson:"template_name" json:"template_name"`
	SubmitterID      primitive.ObjectID `bson:"submitter_id" json:"submitter_id"`
	FieldValues      map[string]any     `bson:"field_values" json:"field_values"`
	Status           Status             `bson:"status" json:"status"`
	CurrentStep      int                `bson:"current_step" json:"current_step"`
	TotalSteps       int                `bson:"total_steps" json:"total_steps"`
	RequiresApproval bool               `bson:"requires_approval" json:"requires_approval"`
	SubmittedAt      time.Time          `bson:"submitted_at" json:"submitted_at"`
	LastTransitionAt time.Time          `bson:"last_transition_at" json:"last_transition_at"`
	LastTransitionBy string             `bson:"last_transition_by" json:"last_transition_by"`
}

// StatusCounts backs the statistics endpoint.
type StatusCounts struct {
	Total        int64   `json:"total"`
	Pending      int64   `json:"pending"`
	Approved     int64   `json:"approved"`
	Rejected     int64   `json:"rejected"`
	Cancelled    int64   `json:"cancelled"`
	ApprovalRate float64 `json:"approval_rate"`
}

// Filter narrows listing queries; zero values mean "any".
type Filter struct {
	Status       Status
	TemplateName string
	SubmitterID  primitive.ObjectID
}
