package dashboard

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Repository interface {
	CreateDeliverable(ctx context.Context, d *Deliverable) error
	GetDeliverableByID(ctx context.Context, id uuid.UUID) (*Deliverable, error)
	ListDeliverables(ctx context.Context, clientID uuid.UUID) ([]Deliverable, error)
	UpdateDeliverable(ctx context.Context, d *Deliverable) error
	DeleteDeliverable(ctx context.Context, id uuid.UUID) error

	CreateRisk(ctx context.Context, r *Risk) error
	GetRiskByID(ctx context.Context, id uuid.UUID) (*Risk, error)
	ListRisks(ctx context.Context, clientID uuid.UUID) ([]Risk, error)
	UpdateRisk(ctx context.Context, r *Risk) error
	DeleteRisk(ctx context.Context, id uuid.UUID) error
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CreateDeliverable(ctx context.Context, d *Deliverable) error {
	query := `
		INSERT INTO deliverables (id, client_id, title, status, due_at, created_at, updated_at)
		VALUES (:id, :client_id, :title, :status, :due_at, :created_at, :updated_at)`
	_, err := r.db.NamedExecContext(ctx, query, d)
	return err
}

func (r *postgresRepository) GetDeliverableByID(ctx context.Context, id uuid.UUID) (*Deliverable, error) {
	var d Deliverable
	err := r.db.GetContext(ctx, &d, "SELECT * FROM deliverables WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &d, err
}

func (r *postgresRepository) ListDeliverables(ctx context.Context, clientID uuid.UUID) ([]Deliverable, error) {
	var list []Deliverable
	err := r.db.SelectContext(ctx, &list,
		"SELECT * FROM deliverables WHERE client_id = $1 ORDER BY created_at", clientID)
	return list, err
}

func (r *postgresRepository) UpdateDeliverable(ctx context.Context, d *Deliverable) error {
	query := `
		UPDATE deliverables SET
			title = :title,
			status = :status,
			due_at = :due_at,
			updated_at = :updated_at
		WHERE id = :id`
	_, err := r.db.NamedExecContext(ctx, query, d)
	return err
}

func (r *postgresRepository) DeleteDeliverable(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM deliverables WHERE id = $1", id)
	return err
}

func (r *postgresRepository) CreateRisk(ctx context.Context, risk *Risk) error {
	query := `
		INSERT INTO risks (id, client_id, title, severity, status, notes, created_at, updated_at)
		VALUES (:id, :client_id, :title, :severity, :status, :notes, :created_at, :updated_at)`
	_, err := r.db.NamedExecContext(ctx, query, risk)
	return err
}

func (r *postgresRepository) GetRiskByID(ctx context.Context, id uuid.UUID) (*Risk, error) {
	var risk Risk
	err := r.db.GetContext(ctx, &risk, "SELECT * FROM risks WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &risk, err
}

func (r *postgresRepository) ListRisks(ctx context.Context, clientID uuid.UUID) ([]Risk, error) {
	var list []Risk
	err := r.db.SelectContext(ctx, &list,
		"SELECT * FROM risks WHERE client_id = $1 ORDER BY created_at", clientID)
	return list, err
}

func (r *postgresRepository) UpdateRisk(ctx context.Context, risk *Risk) error {
	query := `
		UPDATE risks SET
			title = :title,
			severity = :severity,
			status = :status,
			notes = :notes,
			updated_at = :updated_at
		WHERE id = :id`
	_, err := r.db.NamedExecContext(ctx, query, risk)
	return err
}

func (r *postgresRepository) DeleteRisk(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM risks WHERE id = $1", id)
	return err
}
