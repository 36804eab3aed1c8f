package signatures

import (
	"time"

	"github.com/google/uuid"

	"clientbridge/onboarding-portal/portal-backend/internal/documents"
)

type SignatureStatus string

const (
	StatusDraft    SignatureStatus = "draft"
	StatusSent     SignatureStatus = "sent"
	StatusViewed   SignatureStatus = "viewed"
	StatusSigned   SignatureStatus = "signed"
	StatusDeclined SignatureStatus = "declined"
)

// SignatureRequest is a document-signing task for an external recipient
type SignatureRequest struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	ClientID        uuid.UUID       `json:"client_id" db:"client_id"`
	SOWDocumentID   *uuid.UUID      `json:"sow_document_id,omitempty" db:"sow_document_id"`
	NDADocumentID   *uuid.UUID      `json:"nda_document_id,omitempty" db:"nda_document_id"`
	RecipientName   string          `json:"recipient_name" db:"recipient_name"`
	RecipientEmail  string          `json:"recipient_email" db:"recipient_email"`
	Status          SignatureStatus `json:"status" db:"status"`
	TypedSignature  string          `json:"typed_signature,omitempty" db:"typed_signature"`
	EntityName      string          `json:"entity_name,omitempty" db:"entity_name"`
	SignerTitle     string          `json:"signer_title,omitempty" db:"signer_title"`
	SignedAt        *time.Time      `json:"signed_at,omitempty" db:"signed_at"`
	SignedDocKey    *string         `json:"-" db:"signed_doc_key"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// RecipientView is what the public signature page renders. Documents are
// only populated while the request is still open; once terminal the
// outcome fields stand in for them.
type RecipientView struct {
	Request           SignatureRequest           `json:"request"`
	Documents         []documents.DocumentAccess `json:"documents,omitempty"`
	SignedDocumentURL string                     `json:"signed_document_url,omitempty"`
}

// SignSubmission carries the recipient's sign action. All four fields
// are required before any store write happens.
type SignSubmission struct {
	TypedSignature string `json:"typed_signature"`
	EntityName     string `json:"entity_name"`
	SignerTitle    string `json:"signer_title"`
	Agreed         bool   `json:"agreed"`
}
