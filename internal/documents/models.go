package documents

import (
	"time"

	"github.com/google/uuid"
)

type DocumentKind string

const (
	KindSOW       DocumentKind = "sow"
	KindUniversal DocumentKind = "universal"
	KindNDA       DocumentKind = "nda"
)

// Document references a stored blob. Rows are immutable except for deletion.
type Document struct {
	ID         uuid.UUID    `json:"id" db:"id"`
	ClientID   *uuid.UUID   `json:"client_id,omitempty" db:"client_id"`
	Kind       DocumentKind `json:"kind" db:"kind"`
	S3Bucket   string       `json:"s3_bucket" db:"s3_bucket"`
	S3Key      string       `json:"s3_key" db:"s3_key"`
	FileName   string       `json:"file_name" db:"file_name"`
	FileSize   int64        `json:"file_size" db:"file_size"`
	MimeType   string       `json:"mime_type" db:"mime_type"`
	UploadedAt time.Time    `json:"uploaded_at" db:"uploaded_at"`
}

// DocumentAccess is a Document projected with its resolved download URL.
// AccessError is set when presigning failed; the document still renders.
type DocumentAccess struct {
	Document
	URL         string `json:"url,omitempty"`
	AccessError bool   `json:"access_error,omitempty"`
}
