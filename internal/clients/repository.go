package clients

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Repository interface {
	CreateClient(ctx context.Context, client *Client) error
	GetClientByID(ctx context.Context, id uuid.UUID) (*Client, error)
	ListClients(ctx context.Context) ([]Client, error)
	UpdateClient(ctx context.Context, client *Client) error
	DeleteClientCascade(ctx context.Context, id uuid.UUID) error
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CreateClient(ctx context.Context, client *Client) error {
	query := `
		INSERT INTO clients (id, name, logo_key, app_url, created_at, updated_at)
		VALUES (:id, :name, :logo_key, :app_url, :created_at, :updated_at)`
	_, err := r.db.NamedExecContext(ctx, query, client)
	return err
}

func (r *postgresRepository) GetClientByID(ctx context.Context, id uuid.UUID) (*Client, error) {
	var client Client
	err := r.db.GetContext(ctx, &client, "SELECT * FROM clients WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &client, err
}

func (r *postgresRepository) ListClients(ctx context.Context) ([]Client, error) {
	var list []Client
	err := r.db.SelectContext(ctx, &list, "SELECT * FROM clients ORDER BY created_at DESC")
	return list, err
}

func (r *postgresRepository) UpdateClient(ctx context.Context, client *Client) error {
	query := `
		UPDATE clients SET
			name = :name,
			logo_key = :logo_key,
			app_url = :app_url,
			updated_at = :updated_at
		WHERE id = :id`
	_, err := r.db.NamedExecContext(ctx, query, client)
	return err
}

// DeleteClientCascade removes the client and every row that references it.
// All deletes run in one transaction so a partial failure leaves nothing orphaned.
func (r *postgresRepository) DeleteClientCascade(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	statements := []string{
		"DELETE FROM onboarding_steps WHERE client_id = $1",
		"DELETE FROM client_engagements WHERE client_id = $1",
		"DELETE FROM signature_requests WHERE client_id = $1",
		"DELETE FROM deliverables WHERE client_id = $1",
		"DELETE FROM risks WHERE client_id = $1",
		"DELETE FROM documents WHERE client_id = $1",
		"DELETE FROM clients WHERE id = $1",
	}
	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			return fmt.Errorf("cascade delete failed: %w", err)
		}
	}

	return tx.Commit()
}
