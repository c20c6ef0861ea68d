package notification

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Type string

const (
	TypeFormStatus Type = "form_status"
	TypeApproval   Type = "approval"
	TypeRejection  Type = "rejection"
	TypeSystem     Type = "system"
	TypeGeneric    Type = "generic"
)

type Status string

const (
	StatusUnread   Status = "UNREAD"
	StatusRead     Status = "READ"
	StatusArchived Status = "ARCHIVED"
)

// ListFilter selects which mailbox slice a listing returns.
type ListFilter string

const (
	FilterAll      ListFilter = "all"
	FilterUnread   ListFilter = "unread"
	FilterRead     ListFilter = "read"
	FilterArchived ListFilter = "archived"
)

// Notification is one mailbox entry. Owned exclusively by its recipient;
// only that recipient's actions (or system creation) touch it.
type Notification struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RecipientID     primitive.ObjectID `bson:"recipient_id" json:"recipient_id"`
	Type            Type               `bson:"type" json:"type"`
	Title           string             `bson:"title" json:"title"`
	Message         string             `bson:"message" json:"message"`
	RelatedEntityID string             `bson:"related_entity_id,omitempty" json:"related_entity_id,omitempty"`
	ActionRef       string             `bson:"action_ref,omitempty" json:"action_ref,omitempty"`
	Status          Status             `bson:"status" json:"status"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
	ReadAt          *time.Time         `bson:"read_at,omitempty" json:"read_at,omitempty"`
}

// Stats is the aggregate a mailbox owner polls alongside listings.
type Stats struct {
	Total  int64 `json:"total"`
	Unread int64 `json:"unread"`
}
