package dashboard

import (
	"context"
	"math"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"clientbridge/onboarding-portal/portal-backend/internal/clients"
	"clientbridge/onboarding-portal/portal-backend/internal/onboarding"
)

// PageSize fixes the engagement list page size
const PageSize = 8

// EngagementSource provides the engagement and step rows to aggregate
type EngagementSource interface {
	ListEngagements(ctx context.Context) ([]onboarding.ClientEngagement, error)
	GetEngagementByClient(ctx context.Context, clientID uuid.UUID) (*onboarding.ClientEngagement, error)
	ListSteps(ctx context.Context, clientID uuid.UUID) ([]onboarding.OnboardingStep, error)
}

// ClientDirectory resolves client names for display
type ClientDirectory interface {
	GetClientByID(ctx context.Context, id uuid.UUID) (*clients.Client, error)
}

// Aggregator computes read-time engagement progress
type Aggregator struct {
	source    EngagementSource
	directory ClientDirectory
	logger    *zap.Logger
}

func NewAggregator(source EngagementSource, directory ClientDirectory, logger *zap.Logger) *Aggregator {
	return &Aggregator{source: source, directory: directory, logger: logger}
}

// ComputeProgress derives the step aggregate for one engagement.
// Percentage is 0 when there are no steps.
func ComputeProgress(engagement onboarding.ClientEngagement, steps []onboarding.OnboardingStep) EngagementProgress {
	completed := 0
	for _, step := range steps {
		if step.Status == onboarding.StepCompleted {
			completed++
		}
	}

	progress := EngagementProgress{
		Engagement:     engagement,
		TotalSteps:     len(steps),
		CompletedSteps: completed,
	}
	if len(steps) > 0 {
		progress.ProgressPercentage = float64(completed) / float64(len(steps)) * 100
	}
	return progress
}

// AverageProgress is the arithmetic mean of the percentages, 0 for an empty set
func AverageProgress(items []EngagementProgress) float64 {
	if len(items) == 0 {
		return 0
	}
	var sum float64
	for _, item := range items {
		sum += item.ProgressPercentage
	}
	return sum / float64(len(items))
}

// LoadProgress fetches each engagement's steps concurrently. A failed step
// fetch defaults that engagement to zero steps instead of failing the load.
func (a *Aggregator) LoadProgress(ctx context.Context) ([]EngagementProgress, error) {
	engagements, err := a.source.ListEngagements(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]EngagementProgress, len(engagements))
	var wg sync.WaitGroup

	for i, engagement := range engagements {
		wg.Add(1)
		go func(i int, engagement onboarding.ClientEngagement) {
			defer wg.Done()

			steps, err := a.source.ListSteps(ctx, engagement.ClientID)
			if err != nil {
				a.logger.Warn("failed to load steps for engagement",
					zap.Error(err),
					zap.String("engagement_id", engagement.ID.String()))
				steps = nil
			}
			progress := ComputeProgress(engagement, steps)

			if client, err := a.directory.GetClientByID(ctx, engagement.ClientID); err == nil && client != nil {
				progress.ClientName = client.Name
			}
			results[i] = progress
		}(i, engagement)
	}
	wg.Wait()

	return results, nil
}

// ProgressForClient computes the aggregate for a single client's engagement
func (a *Aggregator) ProgressForClient(ctx context.Context, clientID uuid.UUID) (*EngagementProgress, error) {
	engagement, err := a.source.GetEngagementByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if engagement == nil {
		return nil, nil
	}

	steps, err := a.source.ListSteps(ctx, clientID)
	if err != nil {
		steps = nil
	}
	progress := ComputeProgress(*engagement, steps)
	if client, err := a.directory.GetClientByID(ctx, clientID); err == nil && client != nil {
		progress.ClientName = client.Name
	}
	return &progress, nil
}

// Paginate slices the engagement list into a fixed-size page.
// The page index clamps to [1, ceil(n/PageSize)].
func Paginate(items []EngagementProgress, page int) EngagementPage {
	totalCount := len(items)
	totalPages := int(math.Ceil(float64(totalCount) / float64(PageSize)))
	if totalPages < 1 {
		totalPages = 1
	}

	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * PageSize
	end := start + PageSize
	if start > totalCount {
		start = totalCount
	}
	if end > totalCount {
		end = totalCount
	}

	return EngagementPage{
		Items:           items[start:end],
		Page:            page,
		PageSize:        PageSize,
		TotalPages:      totalPages,
		TotalCount:      totalCount,
		HasPrev:         page > 1,
		HasNext:         page < totalPages,
		AverageProgress: AverageProgress(items),
	}
}
