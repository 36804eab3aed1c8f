package auth

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Repository interface {
	CreateUser(ctx context.Context, user *StaffUser) error
	GetUserByEmail(ctx context.Context, email string) (*StaffUser, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*StaffUser, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CreateUser(ctx context.Context, user *StaffUser) error {
	query := `
		INSERT INTO staff_users (id, email, full_name, password_hash, created_at, updated_at)
		VALUES (:id, :email, :full_name, :password_hash, :created_at, :updated_at)`
	_, err := r.db.NamedExecContext(ctx, query, user)
	return err
}

func (r *postgresRepository) GetUserByEmail(ctx context.Context, email string) (*StaffUser, error) {
	var user StaffUser
	err := r.db.GetContext(ctx, &user, "SELECT * FROM staff_users WHERE email = $1", email)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &user, err
}

func (r *postgresRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*StaffUser, error) {
	var user StaffUser
	err := r.db.GetContext(ctx, &user, "SELECT * FROM staff_users WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &user, err
}
