package signatures

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"clientbridge/onboarding-portal/portal-backend/internal/clients"
	"clientbridge/onboarding-portal/portal-backend/internal/documents"
	"clientbridge/onboarding-portal/portal-backend/internal/notifications"
	"clientbridge/onboarding-portal/portal-backend/pkg/pdf"
	"clientbridge/onboarding-portal/portal-backend/pkg/storage"
	"clientbridge/onboarding-portal/portal-backend/pkg/workflows"
)

// ErrConflict is returned when a sign or decline races against another
// finalizing action on the same request.
var ErrConflict = fmt.Errorf("signature request already finalized")

// ErrNotFound is returned when no request exists for the given id
var ErrNotFound = fmt.Errorf("signature request not found")

// ValidationError reports a rejected sign submission before any write
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required field %q", e.Field)
}

// ClientDirectory is the slice of the clients service this package needs
type ClientDirectory interface {
	GetClientByID(ctx context.Context, id uuid.UUID) (*clients.Client, error)
}

type Service struct {
	repo          Repository
	docs          documents.Service
	directory     ClientDirectory
	mailer        notifications.Sender
	certificates  *pdf.CertificateGenerator
	s3            storage.S3Client
	bucket        string
	presignExpiry time.Duration
	statuses      *workflows.StateMachine
	publicBaseURL string
	logger        *zap.Logger
}

func NewService(
	repo Repository,
	docs documents.Service,
	directory ClientDirectory,
	mailer notifications.Sender,
	certificates *pdf.CertificateGenerator,
	s3 storage.S3Client,
	bucket string,
	presignExpiry time.Duration,
	publicBaseURL string,
	logger *zap.Logger,
) *Service {
	return &Service{
		repo:          repo,
		docs:          docs,
		directory:     directory,
		mailer:        mailer,
		certificates:  certificates,
		s3:            s3,
		bucket:        bucket,
		presignExpiry: presignExpiry,
		statuses:      workflows.NewSignatureStateMachine(),
		publicBaseURL: publicBaseURL,
		logger:        logger,
	}
}

// CreateRequest records a draft signature request for a client
func (s *Service) CreateRequest(ctx context.Context, clientID uuid.UUID, sowDocID, ndaDocID *uuid.UUID, recipientName, recipientEmail string) (*SignatureRequest, error) {
	if recipientName == "" || recipientEmail == "" {
		return nil, fmt.Errorf("recipient name and email are required")
	}
	if sowDocID == nil && ndaDocID == nil {
		return nil, fmt.Errorf("at least one document is required")
	}

	client, err := s.directory.GetClientByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, fmt.Errorf("client not found")
	}

	now := time.Now()
	req := &SignatureRequest{
		ID:             uuid.New(),
		ClientID:       clientID,
		SOWDocumentID:  sowDocID,
		NDADocumentID:  ndaDocID,
		RecipientName:  recipientName,
		RecipientEmail: recipientEmail,
		Status:         StatusDraft,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.CreateRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to create signature request: %w", err)
	}
	return req, nil
}

// SendRequest moves a draft to sent and emails the recipient a signing link
func (s *Service) SendRequest(ctx context.Context, id uuid.UUID) (*SignatureRequest, error) {
	req, err := s.repo.GetRequestByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ErrNotFound
	}
	if !s.statuses.CanTransition(string(req.Status), string(StatusSent)) {
		return nil, fmt.Errorf("cannot send a request in status %q", req.Status)
	}

	client, err := s.directory.GetClientByID(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, fmt.Errorf("client not found")
	}

	docs, err := s.requestDocuments(ctx, req)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(docs))
	for _, doc := range docs {
		names = append(names, doc.FileName)
	}

	email := notifications.SignatureRequestEmail{
		RecipientName:  req.RecipientName,
		RecipientEmail: req.RecipientEmail,
		ClientName:     client.Name,
		SignURL:        fmt.Sprintf("%s/sign/%s", s.publicBaseURL, req.ID),
		DocumentNames:  names,
	}
	if err := s.mailer.SendSignatureRequest(ctx, email); err != nil {
		return nil, fmt.Errorf("failed to email signature request: %w", err)
	}

	if err := s.repo.UpdateStatus(ctx, req.ID, StatusSent); err != nil {
		return nil, fmt.Errorf("failed to update signature request: %w", err)
	}
	req.Status = StatusSent
	return req, nil
}

// GetRequest returns a request by id for staff views
func (s *Service) GetRequest(ctx context.Context, id uuid.UUID) (*SignatureRequest, error) {
	req, err := s.repo.GetRequestByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ErrNotFound
	}
	return req, nil
}

// ListRequests returns a client's signature requests, newest first
func (s *Service) ListRequests(ctx context.Context, clientID uuid.UUID) ([]SignatureRequest, error) {
	return s.repo.ListRequestsByClient(ctx, clientID)
}

// GetForRecipient loads the public signing view. The first fetch of a
// sent request marks it viewed; repeat fetches leave it alone. Document
// links are only issued while the request is still open.
func (s *Service) GetForRecipient(ctx context.Context, id uuid.UUID) (*RecipientView, error) {
	req, err := s.repo.GetRequestByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ErrNotFound
	}
	if req.Status == StatusDraft {
		return nil, ErrNotFound
	}

	if req.Status == StatusSent {
		if err := s.repo.MarkViewed(ctx, req.ID); err != nil {
			s.logger.Warn("failed to mark request viewed",
				zap.Error(err),
				zap.String("request_id", req.ID.String()))
		} else {
			req.Status = StatusViewed
		}
	}

	view := &RecipientView{Request: *req}
	if s.statuses.IsTerminal(string(req.Status)) {
		if req.Status == StatusSigned && req.SignedDocKey != nil {
			url, err := s.s3.GetPresignedURL(ctx, s.bucket, *req.SignedDocKey, s.presignExpiry)
			if err != nil {
				s.logger.Warn("failed to presign signed artifact", zap.Error(err))
			} else {
				view.SignedDocumentURL = url
			}
		}
		return view, nil
	}

	docs, err := s.requestDocuments(ctx, req)
	if err != nil {
		return nil, err
	}
	view.Documents = s.docs.ResolveAccess(ctx, docs)
	return view, nil
}

// Sign finalizes the request with the recipient's submission. All
// validation happens before any write; the store update carries a
// status precondition so a concurrent decline or sign loses cleanly.
func (s *Service) Sign(ctx context.Context, id uuid.UUID, sub SignSubmission) (*SignatureRequest, error) {
	if sub.TypedSignature == "" {
		return nil, &ValidationError{Field: "typed_signature"}
	}
	if sub.EntityName == "" {
		return nil, &ValidationError{Field: "entity_name"}
	}
	if sub.SignerTitle == "" {
		return nil, &ValidationError{Field: "signer_title"}
	}
	if !sub.Agreed {
		return nil, &ValidationError{Field: "agreed"}
	}

	req, err := s.repo.GetRequestByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ErrNotFound
	}
	if s.statuses.IsTerminal(string(req.Status)) || req.Status == StatusDraft {
		return nil, ErrConflict
	}

	signedAt := time.Now()
	key, err := s.storeCertificate(ctx, req, sub, signedAt)
	if err != nil {
		return nil, err
	}

	req.TypedSignature = sub.TypedSignature
	req.EntityName = sub.EntityName
	req.SignerTitle = sub.SignerTitle
	req.SignedAt = &signedAt
	req.SignedDocKey = &key

	applied, err := s.repo.CompleteSigning(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to record signature: %w", err)
	}
	if !applied {
		return nil, ErrConflict
	}
	req.Status = StatusSigned
	return req, nil
}

// Decline finalizes the request as declined
func (s *Service) Decline(ctx context.Context, id uuid.UUID) (*SignatureRequest, error) {
	req, err := s.repo.GetRequestByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ErrNotFound
	}

	applied, err := s.repo.Decline(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to decline request: %w", err)
	}
	if !applied {
		return nil, ErrConflict
	}
	req.Status = StatusDeclined
	return req, nil
}

// SignedDocumentURL presigns the signing certificate for staff download
func (s *Service) SignedDocumentURL(ctx context.Context, id uuid.UUID) (string, error) {
	req, err := s.repo.GetRequestByID(ctx, id)
	if err != nil {
		return "", err
	}
	if req == nil {
		return "", ErrNotFound
	}
	if req.Status != StatusSigned || req.SignedDocKey == nil {
		return "", fmt.Errorf("request is not signed")
	}
	return s.s3.GetPresignedURL(ctx, s.bucket, *req.SignedDocKey, s.presignExpiry)
}

func (s *Service) storeCertificate(ctx context.Context, req *SignatureRequest, sub SignSubmission, signedAt time.Time) (string, error) {
	docs, err := s.requestDocuments(ctx, req)
	if err != nil {
		return "", err
	}
	docName := "Engagement documents"
	if len(docs) == 1 {
		docName = docs[0].FileName
	}

	artifact, err := s.certificates.Generate(pdf.CertificateData{
		DocumentName:   docName,
		RecipientName:  req.RecipientName,
		EntityName:     sub.EntityName,
		SignerTitle:    sub.SignerTitle,
		TypedSignature: sub.TypedSignature,
		SignedAt:       signedAt,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate certificate: %w", err)
	}

	key := fmt.Sprintf("clients/%s/signed/%s.pdf", req.ClientID, req.ID)
	if err := s.s3.Upload(ctx, s.bucket, key, bytes.NewReader(artifact), "application/pdf"); err != nil {
		return "", fmt.Errorf("failed to store certificate: %w", err)
	}
	return key, nil
}

func (s *Service) requestDocuments(ctx context.Context, req *SignatureRequest) ([]documents.Document, error) {
	var docs []documents.Document
	for _, docID := range []*uuid.UUID{req.SOWDocumentID, req.NDADocumentID} {
		if docID == nil {
			continue
		}
		doc, err := s.docs.GetDocument(ctx, *docID)
		if err != nil {
			return nil, err
		}
		if doc != nil {
			docs = append(docs, *doc)
		}
	}
	return docs, nil
}
