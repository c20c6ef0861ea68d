package approval

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Decision string

const (
	DecisionApprove Decision = "APPROVE"
	DecisionReject  Decision = "REJECT"
)

// StepRecord is one appended line of a submission's approval history.
// Records are never edited or removed.
type StepRecord struct {
	ID           string             `bson:"_id" json:"id"`
	SubmissionID primitive.ObjectID `bson:"submission_id" json:"submission_id"`
	Step         int                `bson:"step" json:"step"`
	Decision     Decision           `bson:"decision" json:"decision"`
	ApproverID   string             `bson:"approver_id" json:"approver_id"`
	Comments     string             `bson:"comments" json:"comments"`
	DecidedAt    time.Time          `bson:"decided_at" json:"decided_at"`
}

// BulkResult reports a best-effort bulk decision pass.
type BulkResult struct {
	Updated []string          `json:"updated"`
	Failed  map[string]string `json:"failed,omitempty"`
}
