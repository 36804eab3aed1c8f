package onboarding

import (
	"time"

	"github.com/google/uuid"
)

type StepStatus string

const (
	StepNotStarted StepStatus = "not_started"
	StepInProgress StepStatus = "in_progress"
	StepCompleted  StepStatus = "completed"
)

type EngagementStatus string

const (
	EngagementDraft      EngagementStatus = "draft"
	EngagementSent       EngagementStatus = "sent"
	EngagementInProgress EngagementStatus = "in_progress"
	EngagementCompleted  EngagementStatus = "completed"
	EngagementOnHold     EngagementStatus = "on_hold"
)

// OnboardingStep is a single checklist item for a client.
// ClientVisible gates inclusion in the outbound email and the
// client-facing checklist.
type OnboardingStep struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	ClientID      uuid.UUID  `json:"client_id" db:"client_id"`
	Title         string     `json:"title" db:"title"`
	Description   string     `json:"description" db:"description"`
	Status        StepStatus `json:"status" db:"status"`
	OrderIndex    int        `json:"order_index" db:"order_index"`
	ClientVisible bool       `json:"client_visible" db:"client_visible"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// ClientEngagement tracks the relationship from email-sent through completion
type ClientEngagement struct {
	ID          uuid.UUID        `json:"id" db:"id"`
	ClientID    uuid.UUID        `json:"client_id" db:"client_id"`
	ClientEmail string           `json:"client_email" db:"client_email"`
	Status      EngagementStatus `json:"status" db:"status"`
	EmailSentAt *time.Time       `json:"email_sent_at,omitempty" db:"email_sent_at"`
	UpdatedAt   time.Time        `json:"updated_at" db:"updated_at"`
}

// StepUpdate carries mutable step fields; nil means leave unchanged
type StepUpdate struct {
	Title         *string
	Description   *string
	Status        *StepStatus
	OrderIndex    *int
	ClientVisible *bool
}
