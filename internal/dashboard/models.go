package dashboard

import (
	"time"

	"github.com/google/uuid"

	"clientbridge/onboarding-portal/portal-backend/internal/onboarding"
)

type DeliverableStatus string

const (
	DeliverablePending  DeliverableStatus = "pending"
	DeliverableInReview DeliverableStatus = "in_review"
	DeliverableApproved DeliverableStatus = "approved"
)

type RiskSeverity string

const (
	RiskLow    RiskSeverity = "low"
	RiskMedium RiskSeverity = "medium"
	RiskHigh   RiskSeverity = "high"
)

type RiskStatus string

const (
	RiskOpen      RiskStatus = "open"
	RiskMitigated RiskStatus = "mitigated"
)

// Deliverable is a tracked output for an engagement
type Deliverable struct {
	ID        uuid.UUID         `json:"id" db:"id"`
	ClientID  uuid.UUID         `json:"client_id" db:"client_id"`
	Title     string            `json:"title" db:"title"`
	Status    DeliverableStatus `json:"status" db:"status"`
	DueAt     *time.Time        `json:"due_at,omitempty" db:"due_at"`
	CreatedAt time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt time.Time         `json:"updated_at" db:"updated_at"`
}

// Risk is a tracked concern for an engagement
type Risk struct {
	ID        uuid.UUID    `json:"id" db:"id"`
	ClientID  uuid.UUID    `json:"client_id" db:"client_id"`
	Title     string       `json:"title" db:"title"`
	Severity  RiskSeverity `json:"severity" db:"severity"`
	Status    RiskStatus   `json:"status" db:"status"`
	Notes     string       `json:"notes" db:"notes"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt time.Time    `json:"updated_at" db:"updated_at"`
}

// EngagementProgress is an engagement with its read-time step aggregate
type EngagementProgress struct {
	Engagement         onboarding.ClientEngagement `json:"engagement"`
	ClientName         string                      `json:"client_name,omitempty"`
	TotalSteps         int                         `json:"total_steps"`
	CompletedSteps     int                         `json:"completed_steps"`
	ProgressPercentage float64                     `json:"progress_percentage"`
}

// EngagementPage is one page of the engagement list
type EngagementPage struct {
	Items           []EngagementProgress `json:"items"`
	Page            int                  `json:"page"`
	PageSize        int                  `json:"page_size"`
	TotalPages      int                  `json:"total_pages"`
	TotalCount      int                  `json:"total_count"`
	HasPrev         bool                 `json:"has_prev"`
	HasNext         bool                 `json:"has_next"`
	AverageProgress float64              `json:"average_progress"`
}
