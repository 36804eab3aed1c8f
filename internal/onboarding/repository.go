package onboarding

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Repository interface {
	CreateStep(ctx context.Context, step *OnboardingStep) error
	GetStepByID(ctx context.Context, id uuid.UUID) (*OnboardingStep, error)
	ListSteps(ctx context.Context, clientID uuid.UUID) ([]OnboardingStep, error)
	UpdateStep(ctx context.Context, step *OnboardingStep) error
	DeleteStep(ctx context.Context, id uuid.UUID) error
	DeleteAllSteps(ctx context.Context, clientID uuid.UUID) error

	// ReplaceSteps deletes the client's current step set and inserts the new
	// one in a single transaction, so a regeneration never leaves stale rows.
	ReplaceSteps(ctx context.Context, clientID uuid.UUID, steps []OnboardingStep) error

	CreateEngagement(ctx context.Context, engagement *ClientEngagement) error
	GetEngagementByID(ctx context.Context, id uuid.UUID) (*ClientEngagement, error)
	GetEngagementByClient(ctx context.Context, clientID uuid.UUID) (*ClientEngagement, error)
	ListEngagements(ctx context.Context) ([]ClientEngagement, error)
	UpdateEngagement(ctx context.Context, engagement *ClientEngagement) error
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CreateStep(ctx context.Context, step *OnboardingStep) error {
	query := `
		INSERT INTO onboarding_steps (
			id, client_id, title, description, status, order_index, client_visible, created_at, updated_at
		) VALUES (
			:id, :client_id, :title, :description, :status, :order_index, :client_visible, :created_at, :updated_at
		)`
	_, err := r.db.NamedExecContext(ctx, query, step)
	return err
}

func (r *postgresRepository) GetStepByID(ctx context.Context, id uuid.UUID) (*OnboardingStep, error) {
	var step OnboardingStep
	err := r.db.GetContext(ctx, &step, "SELECT * FROM onboarding_steps WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &step, err
}

func (r *postgresRepository) ListSteps(ctx context.Context, clientID uuid.UUID) ([]OnboardingStep, error) {
	var steps []OnboardingStep
	err := r.db.SelectContext(ctx, &steps,
		"SELECT * FROM onboarding_steps WHERE client_id = $1 ORDER BY order_index", clientID)
	return steps, err
}

func (r *postgresRepository) UpdateStep(ctx context.Context, step *OnboardingStep) error {
	query := `
		UPDATE onboarding_steps SET
			title = :title,
			description = :description,
			status = :status,
			order_index = :order_index,
			client_visible = :client_visible,
			updated_at = :updated_at
		WHERE id = :id`
	_, err := r.db.NamedExecContext(ctx, query, step)
	return err
}

func (r *postgresRepository) DeleteStep(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM onboarding_steps WHERE id = $1", id)
	return err
}

func (r *postgresRepository) DeleteAllSteps(ctx context.Context, clientID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM onboarding_steps WHERE client_id = $1", clientID)
	return err
}

func (r *postgresRepository) ReplaceSteps(ctx context.Context, clientID uuid.UUID, steps []OnboardingStep) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM onboarding_steps WHERE client_id = $1", clientID); err != nil {
		return fmt.Errorf("failed to clear steps: %w", err)
	}

	query := `
		INSERT INTO onboarding_steps (
			id, client_id, title, description, status, order_index, client_visible, created_at, updated_at
		) VALUES (
			:id, :client_id, :title, :description, :status, :order_index, :client_visible, :created_at, :updated_at
		)`
	for i := range steps {
		if _, err := tx.NamedExecContext(ctx, query, &steps[i]); err != nil {
			return fmt.Errorf("failed to insert step %d: %w", i, err)
		}
	}

	return tx.Commit()
}

func (r *postgresRepository) CreateEngagement(ctx context.Context, engagement *ClientEngagement) error {
	query := `
		INSERT INTO client_engagements (
			id, client_id, client_email, status, email_sent_at, updated_at
		) VALUES (
			:id, :client_id, :client_email, :status, :email_sent_at, :updated_at
		)`
	_, err := r.db.NamedExecContext(ctx, query, engagement)
	return err
}

func (r *postgresRepository) GetEngagementByID(ctx context.Context, id uuid.UUID) (*ClientEngagement, error) {
	var engagement ClientEngagement
	err := r.db.GetContext(ctx, &engagement, "SELECT * FROM client_engagements WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &engagement, err
}

func (r *postgresRepository) GetEngagementByClient(ctx context.Context, clientID uuid.UUID) (*ClientEngagement, error) {
	var engagement ClientEngagement
	err := r.db.GetContext(ctx, &engagement,
		"SELECT * FROM client_engagements WHERE client_id = $1 ORDER BY updated_at DESC LIMIT 1", clientID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &engagement, err
}

func (r *postgresRepository) ListEngagements(ctx context.Context) ([]ClientEngagement, error) {
	var list []ClientEngagement
	err := r.db.SelectContext(ctx, &list, "SELECT * FROM client_engagements ORDER BY updated_at DESC")
	return list, err
}

func (r *postgresRepository) UpdateEngagement(ctx context.Context, engagement *ClientEngagement) error {
	query := `
		UPDATE client_engagements SET
			client_email = :client_email,
			status = :status,
			email_sent_at = :email_sent_at,
			updated_at = :updated_at
		WHERE id = :id`
	_, err := r.db.NamedExecContext(ctx, query, engagement)
	return err
}
