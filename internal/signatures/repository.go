package signatures

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Repository interface {
	CreateRequest(ctx context.Context, req *SignatureRequest) error
	GetRequestByID(ctx context.Context, id uuid.UUID) (*SignatureRequest, error)
	ListRequestsByClient(ctx context.Context, clientID uuid.UUID) ([]SignatureRequest, error)
	ListOpenRequestsOlderThan(ctx context.Context, cutoff time.Time) ([]SignatureRequest, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status SignatureStatus) error

	// MarkViewed flips sent to viewed. The status guard makes repeat
	// fetches by the recipient a no-op.
	MarkViewed(ctx context.Context, id uuid.UUID) error

	// CompleteSigning and Decline only apply while the request is still
	// open. The returned bool is false when another actor finalized the
	// request first.
	CompleteSigning(ctx context.Context, req *SignatureRequest) (bool, error)
	Decline(ctx context.Context, id uuid.UUID) (bool, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CreateRequest(ctx context.Context, req *SignatureRequest) error {
	query := `
		INSERT INTO signature_requests (
			id, client_id, sow_document_id, nda_document_id,
			recipient_name, recipient_email, status, created_at, updated_at
		) VALUES (
			:id, :client_id, :sow_document_id, :nda_document_id,
			:recipient_name, :recipient_email, :status, :created_at, :updated_at
		)`
	_, err := r.db.NamedExecContext(ctx, query, req)
	return err
}

func (r *postgresRepository) GetRequestByID(ctx context.Context, id uuid.UUID) (*SignatureRequest, error) {
	var req SignatureRequest
	err := r.db.GetContext(ctx, &req, "SELECT * FROM signature_requests WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &req, err
}

func (r *postgresRepository) ListRequestsByClient(ctx context.Context, clientID uuid.UUID) ([]SignatureRequest, error) {
	var reqs []SignatureRequest
	err := r.db.SelectContext(ctx, &reqs,
		"SELECT * FROM signature_requests WHERE client_id = $1 ORDER BY created_at DESC", clientID)
	return reqs, err
}

func (r *postgresRepository) ListOpenRequestsOlderThan(ctx context.Context, cutoff time.Time) ([]SignatureRequest, error) {
	var reqs []SignatureRequest
	err := r.db.SelectContext(ctx, &reqs,
		`SELECT * FROM signature_requests
		 WHERE status IN ('sent', 'viewed') AND updated_at < $1
		 ORDER BY updated_at ASC`, cutoff)
	return reqs, err
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status SignatureStatus) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE signature_requests SET status = $1, updated_at = $2 WHERE id = $3",
		status, time.Now(), id)
	return err
}

func (r *postgresRepository) MarkViewed(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE signature_requests SET status = 'viewed', updated_at = $1 WHERE id = $2 AND status = 'sent'",
		time.Now(), id)
	return err
}

func (r *postgresRepository) CompleteSigning(ctx context.Context, req *SignatureRequest) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE signature_requests SET
			status = 'signed',
			typed_signature = $1,
			entity_name = $2,
			signer_title = $3,
			signed_at = $4,
			signed_doc_key = $5,
			updated_at = $6
		 WHERE id = $7 AND status IN ('sent', 'viewed')`,
		req.TypedSignature, req.EntityName, req.SignerTitle,
		req.SignedAt, req.SignedDocKey, time.Now(), req.ID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *postgresRepository) Decline(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE signature_requests SET status = 'declined', updated_at = $1
		 WHERE id = $2 AND status IN ('sent', 'viewed')`,
		time.Now(), id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
