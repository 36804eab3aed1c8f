package documents

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateDocument(ctx context.Context, doc *Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockRepository) GetDocumentByID(ctx context.Context, id uuid.UUID) (*Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Document), args.Error(1)
}

func (m *MockRepository) ListDocuments(ctx context.Context, clientID *uuid.UUID, kind *DocumentKind) ([]Document, error) {
	args := m.Called(ctx, clientID, kind)
	return args.Get(0).([]Document), args.Error(1)
}

func (m *MockRepository) AssociateWithClient(ctx context.Context, id, clientID uuid.UUID) error {
	args := m.Called(ctx, id, clientID)
	return args.Error(0)
}

func (m *MockRepository) DeleteDocument(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockS3 is a mock implementation of storage.S3Client
type MockS3 struct {
	mock.Mock
}

func (m *MockS3) Upload(ctx context.Context, bucket, key string, body io.Reader, contentType string) error {
	args := m.Called(ctx, bucket, key, body, contentType)
	return args.Error(0)
}

func (m *MockS3) Download(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, bucket, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockS3) Delete(ctx context.Context, bucket, key string) error {
	args := m.Called(ctx, bucket, key)
	return args.Error(0)
}

func (m *MockS3) GetPresignedURL(ctx context.Context, bucket, key string, expiration time.Duration) (string, error) {
	args := m.Called(ctx, bucket, key, expiration)
	return args.String(0), args.Error(1)
}

func TestUploadDocument(t *testing.T) {
	mockRepo := new(MockRepository)
	mockS3 := new(MockS3)
	service := NewService(mockRepo, mockS3, "clientbridge-docs", time.Hour, zap.NewNop())

	ctx := context.Background()
	clientID := uuid.New()

	mockS3.On("Upload", ctx, "clientbridge-docs",
		fmt.Sprintf("clients/%s/sow/sow.pdf", clientID),
		mock.Anything, "application/pdf").Return(nil)
	mockRepo.On("CreateDocument", ctx, mock.AnythingOfType("*documents.Document")).Return(nil)

	doc, err := service.UploadDocument(ctx, UploadRequest{
		ClientID:    &clientID,
		Kind:        KindSOW,
		FileName:    "sow.pdf",
		FileSize:    1024,
		MimeType:    "application/pdf",
		FileContent: strings.NewReader("fake content"),
	})

	assert.NoError(t, err)
	assert.Equal(t, KindSOW, doc.Kind)
	assert.Equal(t, "clientbridge-docs", doc.S3Bucket)
	assert.Equal(t, fmt.Sprintf("clients/%s/sow/sow.pdf", clientID), doc.S3Key)
	mockRepo.AssertExpectations(t)
	mockS3.AssertExpectations(t)
}

func TestUploadDocumentWithoutClientGoesUniversal(t *testing.T) {
	mockRepo := new(MockRepository)
	mockS3 := new(MockS3)
	service := NewService(mockRepo, mockS3, "clientbridge-docs", time.Hour, zap.NewNop())

	ctx := context.Background()

	mockS3.On("Upload", ctx, "clientbridge-docs", "universal/handbook.pdf",
		mock.Anything, "application/pdf").Return(nil)
	mockRepo.On("CreateDocument", ctx, mock.AnythingOfType("*documents.Document")).Return(nil)

	doc, err := service.UploadDocument(ctx, UploadRequest{
		Kind:        KindUniversal,
		FileName:    "handbook.pdf",
		MimeType:    "application/pdf",
		FileContent: strings.NewReader("fake content"),
	})

	assert.NoError(t, err)
	assert.Equal(t, "universal/handbook.pdf", doc.S3Key)
	assert.Nil(t, doc.ClientID)
}

func TestResolveAccessIsolatesFailures(t *testing.T) {
	mockRepo := new(MockRepository)
	mockS3 := new(MockS3)
	service := NewService(mockRepo, mockS3, "clientbridge-docs", time.Hour, zap.NewNop())

	ctx := context.Background()
	good := Document{ID: uuid.New(), S3Bucket: "clientbridge-docs", S3Key: "a/good.pdf", FileName: "good.pdf"}
	bad := Document{ID: uuid.New(), S3Bucket: "clientbridge-docs", S3Key: "a/bad.pdf", FileName: "bad.pdf"}

	mockS3.On("GetPresignedURL", ctx, "clientbridge-docs", "a/good.pdf", time.Hour).
		Return("https://signed.example/good.pdf", nil)
	mockS3.On("GetPresignedURL", ctx, "clientbridge-docs", "a/bad.pdf", time.Hour).
		Return("", fmt.Errorf("access denied"))

	resolved := service.ResolveAccess(ctx, []Document{good, bad})

	assert.Len(t, resolved, 2)
	assert.Equal(t, "https://signed.example/good.pdf", resolved[0].URL)
	assert.False(t, resolved[0].AccessError)
	assert.Empty(t, resolved[1].URL)
	assert.True(t, resolved[1].AccessError, "one failed presign must not drop the other documents")
}

func TestDeleteDocumentRemovesRowEvenIfBlobDeleteFails(t *testing.T) {
	mockRepo := new(MockRepository)
	mockS3 := new(MockS3)
	service := NewService(mockRepo, mockS3, "clientbridge-docs", time.Hour, zap.NewNop())

	ctx := context.Background()
	doc := &Document{ID: uuid.New(), S3Bucket: "clientbridge-docs", S3Key: "a/doomed.pdf"}

	mockRepo.On("GetDocumentByID", ctx, doc.ID).Return(doc, nil)
	mockS3.On("Delete", ctx, "clientbridge-docs", "a/doomed.pdf").Return(fmt.Errorf("throttled"))
	mockRepo.On("DeleteDocument", ctx, doc.ID).Return(nil)

	err := service.DeleteDocument(ctx, doc.ID)

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}
