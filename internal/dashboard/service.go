package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Service manages deliverables and risks for engagement sub-panels
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateDeliverable(ctx context.Context, clientID uuid.UUID, title string, dueAt *time.Time) (*Deliverable, error) {
	if title == "" {
		return nil, fmt.Errorf("deliverable title is required")
	}

	now := time.Now()
	d := &Deliverable{
		ID:        uuid.New(),
		ClientID:  clientID,
		Title:     title,
		Status:    DeliverablePending,
		DueAt:     dueAt,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateDeliverable(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to create deliverable: %w", err)
	}
	return d, nil
}

func (s *Service) ListDeliverables(ctx context.Context, clientID uuid.UUID) ([]Deliverable, error) {
	return s.repo.ListDeliverables(ctx, clientID)
}

func (s *Service) UpdateDeliverableStatus(ctx context.Context, id uuid.UUID, status DeliverableStatus) (*Deliverable, error) {
	switch status {
	case DeliverablePending, DeliverableInReview, DeliverableApproved:
	default:
		return nil, fmt.Errorf("invalid deliverable status %q", status)
	}

	d, err := s.repo.GetDeliverableByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, fmt.Errorf("deliverable not found")
	}

	d.Status = status
	d.UpdatedAt = time.Now()
	if err := s.repo.UpdateDeliverable(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to update deliverable: %w", err)
	}
	return d, nil
}

func (s *Service) DeleteDeliverable(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteDeliverable(ctx, id)
}

func (s *Service) CreateRisk(ctx context.Context, clientID uuid.UUID, title string, severity RiskSeverity, notes string) (*Risk, error) {
	if title == "" {
		return nil, fmt.Errorf("risk title is required")
	}
	switch severity {
	case RiskLow, RiskMedium, RiskHigh:
	default:
		return nil, fmt.Errorf("invalid risk severity %q", severity)
	}

	now := time.Now()
	risk := &Risk{
		ID:        uuid.New(),
		ClientID:  clientID,
		Title:     title,
		Severity:  severity,
		Status:    RiskOpen,
		Notes:     notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateRisk(ctx, risk); err != nil {
		return nil, fmt.Errorf("failed to create risk: %w", err)
	}
	return risk, nil
}

func (s *Service) ListRisks(ctx context.Context, clientID uuid.UUID) ([]Risk, error) {
	return s.repo.ListRisks(ctx, clientID)
}

func (s *Service) UpdateRisk(ctx context.Context, id uuid.UUID, status *RiskStatus, severity *RiskSeverity, notes *string) (*Risk, error) {
	risk, err := s.repo.GetRiskByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if risk == nil {
		return nil, fmt.Errorf("risk not found")
	}

	if status != nil {
		switch *status {
		case RiskOpen, RiskMitigated:
			risk.Status = *status
		default:
			return nil, fmt.Errorf("invalid risk status %q", *status)
		}
	}
	if severity != nil {
		switch *severity {
		case RiskLow, RiskMedium, RiskHigh:
			risk.Severity = *severity
		default:
			return nil, fmt.Errorf("invalid risk severity %q", *severity)
		}
	}
	if notes != nil {
		risk.Notes = *notes
	}
	risk.UpdatedAt = time.Now()

	if err := s.repo.UpdateRisk(ctx, risk); err != nil {
		return nil, fmt.Errorf("failed to update risk: %w", err)
	}
	return risk, nil
}

func (s *Service) DeleteRisk(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteRisk(ctx, id)
}
