package notifications

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusSent   = "sent"
	StatusFailed = "failed"
)

// SentEmail is the delivery log row for every outbound email
type SentEmail struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Recipient string    `gorm:"not null" json:"recipient"`
	Subject   string    `gorm:"not null" json:"subject"`
	Kind      string    `gorm:"not null" json:"kind"` // onboarding, signature_request, signature_reminder
	Status    string    `gorm:"not null" json:"status"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// EmailAttachment is attachment metadata linked into the email body.
// The blob itself stays in object storage; only the access URL travels.
type EmailAttachment struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// OnboardingEmail is the outbound welcome email payload
type OnboardingEmail struct {
	ClientName     string
	RecipientEmail string
	HTMLMessage    string
	ChecklistItems []string
	Attachments    []EmailAttachment
}

// SignatureRequestEmail invites a recipient to the public signing page
type SignatureRequestEmail struct {
	RecipientName  string
	RecipientEmail string
	ClientName     string
	SignURL        string
	DocumentNames  []string
}

// ReminderEmail nudges a signature recipient about a pending request
type ReminderEmail struct {
	RecipientName  string
	RecipientEmail string
	DocumentNames  []string
}
