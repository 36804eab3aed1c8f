package documents

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"clientbridge/onboarding-portal/portal-backend/pkg/storage"
)

type Service interface {
	UploadDocument(ctx context.Context, req UploadRequest) (*Document, error)
	GetDocument(ctx context.Context, id uuid.UUID) (*Document, error)
	ListDocuments(ctx context.Context, clientID *uuid.UUID, kind *DocumentKind) ([]Document, error)
	AssociateWithClient(ctx context.Context, id, clientID uuid.UUID) error
	DownloadDocument(ctx context.Context, id uuid.UUID) (io.ReadCloser, error)
	DeleteDocument(ctx context.Context, id uuid.UUID) error

	// ResolveAccess presigns a download URL for each document independently.
	// A presign failure marks that document with AccessError instead of
	// failing the whole batch.
	ResolveAccess(ctx context.Context, docs []Document) []DocumentAccess
}

type UploadRequest struct {
	ClientID    *uuid.UUID
	Kind        DocumentKind
	FileName    string
	FileSize    int64
	MimeType    string
	FileContent io.Reader
}

type documentService struct {
	repo          Repository
	s3            storage.S3Client
	bucket        string
	presignExpiry time.Duration
	logger        *zap.Logger
}

func NewService(repo Repository, s3 storage.S3Client, bucket string, presignExpiry time.Duration, logger *zap.Logger) Service {
	return &documentService{
		repo:          repo,
		s3:            s3,
		bucket:        bucket,
		presignExpiry: presignExpiry,
		logger:        logger,
	}
}

func (s *documentService) UploadDocument(ctx context.Context, req UploadRequest) (*Document, error) {
	if req.FileName == "" {
		return nil, fmt.Errorf("file name is required")
	}

	docID := uuid.New()
	key := s.generateKey(req.ClientID, req.Kind, req.FileName)

	if err := s.s3.Upload(ctx, s.bucket, key, req.FileContent, req.MimeType); err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}

	doc := &Document{
		ID:         docID,
		ClientID:   req.ClientID,
		Kind:       req.Kind,
		S3Bucket:   s.bucket,
		S3Key:      key,
		FileName:   req.FileName,
		FileSize:   req.FileSize,
		MimeType:   req.MimeType,
		UploadedAt: time.Now(),
	}
	if err := s.repo.CreateDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to record document: %w", err)
	}
	return doc, nil
}

func (s *documentService) GetDocument(ctx context.Context, id uuid.UUID) (*Document, error) {
	return s.repo.GetDocumentByID(ctx, id)
}

func (s *documentService) ListDocuments(ctx context.Context, clientID *uuid.UUID, kind *DocumentKind) ([]Document, error) {
	return s.repo.ListDocuments(ctx, clientID, kind)
}

func (s *documentService) AssociateWithClient(ctx context.Context, id, clientID uuid.UUID) error {
	return s.repo.AssociateWithClient(ctx, id, clientID)
}

func (s *documentService) DownloadDocument(ctx context.Context, id uuid.UUID) (io.ReadCloser, error) {
	doc, err := s.repo.GetDocumentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("document not found")
	}
	return s.s3.Download(ctx, doc.S3Bucket, doc.S3Key)
}

func (s *documentService) DeleteDocument(ctx context.Context, id uuid.UUID) error {
	doc, err := s.repo.GetDocumentByID(ctx, id)
	if err != nil {
		return err
	}
	if doc == nil {
		return fmt.Errorf("document not found")
	}
	if err := s.s3.Delete(ctx, doc.S3Bucket, doc.S3Key); err != nil {
		s.logger.Warn("failed to delete blob", zap.Error(err), zap.String("key", doc.S3Key))
	}
	return s.repo.DeleteDocument(ctx, id)
}

func (s *documentService) ResolveAccess(ctx context.Context, docs []Document) []DocumentAccess {
	out := make([]DocumentAccess, 0, len(docs))
	for _, doc := range docs {
		access := DocumentAccess{Document: doc}
		url, err := s.s3.GetPresignedURL(ctx, doc.S3Bucket, doc.S3Key, s.presignExpiry)
		if err != nil {
			s.logger.Warn("failed to presign document",
				zap.Error(err),
				zap.String("document_id", doc.ID.String()))
			access.AccessError = true
		} else {
			access.URL = url
		}
		out = append(out, access)
	}
	return out
}

func (s *documentService) generateKey(clientID *uuid.UUID, kind DocumentKind, fileName string) string {
	if clientID != nil {
		return fmt.Sprintf("clients/%s/%s/%s", clientID, kind, fileName)
	}
	return fmt.Sprintf("universal/%s", fileName)
}
