package documents

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Repository interface {
	CreateDocument(ctx context.Context, doc *Document) error
	GetDocumentByID(ctx context.Context, id uuid.UUID) (*Document, error)
	ListDocuments(ctx context.Context, clientID *uuid.UUID, kind *DocumentKind) ([]Document, error)
	AssociateWithClient(ctx context.Context, id, clientID uuid.UUID) error
	DeleteDocument(ctx context.Context, id uuid.UUID) error
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CreateDocument(ctx context.Context, doc *Document) error {
	query := `
		INSERT INTO documents (
			id, client_id, kind, s3_bucket, s3_key, file_name, file_size, mime_type, uploaded_at
		) VALUES (
			:id, :client_id, :kind, :s3_bucket, :s3_key, :file_name, :file_size, :mime_type, :uploaded_at
		)`
	_, err := r.db.NamedExecContext(ctx, query, doc)
	return err
}

func (r *postgresRepository) GetDocumentByID(ctx context.Context, id uuid.UUID) (*Document, error) {
	var doc Document
	err := r.db.GetContext(ctx, &doc, "SELECT * FROM documents WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &doc, err
}

func (r *postgresRepository) ListDocuments(ctx context.Context, clientID *uuid.UUID, kind *DocumentKind) ([]Document, error) {
	var docs []Document
	query := "SELECT * FROM documents WHERE 1=1"
	var args []interface{}
	argCount := 1

	if clientID != nil {
		query += fmt.Sprintf(" AND client_id = $%d", argCount)
		args = append(args, *clientID)
		argCount++
	}
	if kind != nil {
		query += fmt.Sprintf(" AND kind = $%d", argCount)
		args = append(args, *kind)
		argCount++
	}
	query += " ORDER BY uploaded_at DESC"

	err := r.db.SelectContext(ctx, &docs, query, args...)
	return docs, err
}

func (r *postgresRepository) AssociateWithClient(ctx context.Context, id, clientID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, "UPDATE documents SET client_id = $1 WHERE id = $2", clientID, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("document not found")
	}
	return nil
}

func (r *postgresRepository) DeleteDocument(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM documents WHERE id = $1", id)
	return err
}
