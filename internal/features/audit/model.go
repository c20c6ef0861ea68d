package audit

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Action string

const (
	ActionCreate  Action = "CREATE"
	ActionUpdate  Action = "UPDATE"
	ActionSubmit  Action = "SUBMIT"
	ActionAdvance Action = "ADVANCE"
	ActionApprove Action = "APPROVE"
	ActionReject  Action = "REJECT"
	ActionCancel  Action = "CANCEL"
	ActionLogin   Action = "LOGIN"
	ActionUpload  Action = "FILE_UPLOAD"
)

type EntityType string

const (
	EntityForm     EntityType = "FORM"
	EntityTemplate EntityType = "TEMPLATE"
	EntityUser     EntityType = "USER"
)

// Entry is one append-only audit record. Entries are never mutated or
// deleted; the core only writes them, display is someone else's problem.
type Entry struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Action     Action             `bson:"action" json:"action"`
	EntityType EntityType         `bson:"entity_type" json:"entity_type"`
	EntityID   string             `bson:"entity_id" json:"entity_id"`
	ActorID    string             `bson:"actor_id" json:"actor_id"`
	Details    string             `bson:"details" json:"details"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
}
