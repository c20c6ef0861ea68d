package attachment

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Attachment records metadata for a file attached to a submission. The
// bytes themselves live wherever the storage key points; the engine only
// tracks who attached what, and when.
type Attachment struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SubmissionID primitive.ObjectID `bson:"submission_id" json:"submission_id"`
	UploaderID   primitive.ObjectID `bson:"uploader_id" json:"uploader_id"`
	FileName     string             `bson:"file_name" json:"file_name"`
	ContentType  string             `bson:"content_type" json:"content_type"`
	SizeBytes    int64              `bson:"size_bytes" json:"size_bytes"`
	StorageKey   string             `bson:"storage_key" json:"storage_key"`
	UploadedAt   time.Time          `bson:"uploaded_at" json:"uploaded_at"`
}
