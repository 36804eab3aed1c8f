package clients

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
	CreateClient(ctx context.Context, name string) (*Client, error)
	GetClient(ctx context.Context, id uuid.UUID) (*Client, error)
	ListClients(ctx context.Context) ([]Client, error)
	UpdateClient(ctx context.Context, id uuid.UUID, req UpdateRequest) (*Client, error)
	UploadLogo(ctx context.Context, id uuid.UUID, fileName string, content io.Reader, contentType string) (*Client, error)
	RemoveLogo(ctx context.Context, id uuid.UUID) error
	DeleteClient(ctx context.Context, id uuid.UUID) error
}

// UpdateRequest carries the mutable client fields; nil means leave unchanged
type UpdateRequest struct {
	Name   *string
	AppURL *string
}

type clientService struct {
	repo   Repository
	s3     storage.S3Client
	bucket string
	logger *zap.Logger
}

func NewService(repo Repository, s3 storage.S3Client, bucket string, logger *zap.Logger) Service {
	return &clientService{repo: repo, s3: s3, bucket: bucket, logger: logger}
}

func (s *clientService) CreateClient(ctx context.Context, name string) (*Client, error) {
	if name == "" {
		return nil, fmt.Errorf("client name is required")
	}

	now := time.Now()
	client := &Client{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateClient(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return client, nil
}

func (s *clientService) GetClient(ctx context.Context, id uuid.UUID) (*Client, error) {
	return s.repo.GetClientByID(ctx, id)
}

func (s *clientService) ListClients(ctx context.Context) ([]Client, error) {
	return s.repo.ListClients(ctx)
}

func (s *clientService) UpdateClient(ctx context.Context, id uuid.UUID, req UpdateRequest) (*Client, error) {
	client, err := s.repo.GetClientByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, fmt.Errorf("client not found")
	}

	if req.Name != nil && *req.Name != "" {
		client.Name = *req.Name
	}
	if req.AppURL != nil {
		client.AppURL = req.AppURL
	}
	client.UpdatedAt = time.Now()

	if err := s.repo.UpdateClient(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}
	return client, nil
}

func (s *clientService) UploadLogo(ctx context.Context, id uuid.UUID, fileName string, content io.Reader, contentType string) (*Client, error) {
	client, err := s.repo.GetClientByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, fmt.Errorf("client not found")
	}

	key := fmt.Sprintf("clients/%s/logo/%s", id, fileName)
	if err := s.s3.Upload(ctx, s.bucket, key, content, contentType); err != nil {
		return nil, fmt.Errorf("failed to upload logo: %w", err)
	}

	client.LogoKey = &key
	client.UpdatedAt = time.Now()
	if err := s.repo.UpdateClient(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to record logo: %w", err)
	}
	return client, nil
}

func (s *clientService) RemoveLogo(ctx context.Context, id uuid.UUID) error {
	client, err := s.repo.GetClientByID(ctx, id)
	if err != nil {
		return err
	}
	if client == nil {
		return fmt.Errorf("client not found")
	}
	if client.LogoKey == nil {
		return nil
	}

	if err := s.s3.Delete(ctx, s.bucket, *client.LogoKey); err != nil {
		// The row is the source of truth; a stale blob is harmless
		s.logger.Warn("failed to delete logo blob", zap.Error(err), zap.String("key", *client.LogoKey))
	}

	client.LogoKey = nil
	client.UpdatedAt = time.Now()
	return s.repo.UpdateClient(ctx, client)
}

func (s *clientService) DeleteClient(ctx context.Context, id uuid.UUID) error {
	client, err := s.repo.GetClientByID(ctx, id)
	if err != nil {
		return err
	}
	if client == nil {
		return fmt.Errorf("client not found")
	}
	return s.repo.DeleteClientCascade(ctx, id)
}
