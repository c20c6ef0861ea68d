package comment

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment is one note on a submission's thread. The thread is append-only
// and ordered by insertion; ObjectIDs give the monotonic server-assigned id.
type Comment struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SubmissionID primitive.ObjectID `bson:"submission_id" json:"submission_id"`
	AuthorID     primitive.ObjectID `bson:"author_id" json:"author_id"`
	Text         string             `bson:"text" json:"text"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
}
