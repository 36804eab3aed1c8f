package scheduler

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"clientbridge/onboarding-portal/portal-backend/internal/documents"
	"clientbridge/onboarding-portal/portal-backend/internal/notifications"
	"clientbridge/onboarding-portal/portal-backend/internal/signatures"
)

type MockRequests struct {
	mock.Mock
}

func (m *MockRequests) CreateRequest(ctx context.Context, req *signatures.SignatureRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockRequests) GetRequestByID(ctx context.Context, id uuid.UUID) (*signatures.SignatureRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*signatures.SignatureRequest), args.Error(1)
}

func (m *MockRequests) ListRequestsByClient(ctx context.Context, clientID uuid.UUID) ([]signatures.SignatureRequest, error) {
	args := m.Called(ctx, clientID)
	return args.Get(0).([]signatures.SignatureRequest), args.Error(1)
}

func (m *MockRequests) ListOpenRequestsOlderThan(ctx context.Context, cutoff time.Time) ([]signatures.SignatureRequest, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).([]signatures.SignatureRequest), args.Error(1)
}

func (m *MockRequests) UpdateStatus(ctx context.Context, id uuid.UUID, status signatures.SignatureStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockRequests) MarkViewed(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRequests) CompleteSigning(ctx context.Context, req *signatures.SignatureRequest) (bool, error) {
	args := m.Called(ctx, req)
	return args.Bool(0), args.Error(1)
}

func (m *MockRequests) Decline(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type MockDocuments struct {
	mock.Mock
}

func (m *MockDocuments) UploadDocument(ctx context.Context, req documents.UploadRequest) (*documents.Document, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*documents.Document), args.Error(1)
}

func (m *MockDocuments) GetDocument(ctx context.Context, id uuid.UUID) (*documents.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*documents.Document), args.Error(1)
}

func (m *MockDocuments) ListDocuments(ctx context.Context, clientID *uuid.UUID, kind *documents.DocumentKind) ([]documents.Document, error) {
	args := m.Called(ctx, clientID, kind)
	return args.Get(0).([]documents.Document), args.Error(1)
}

func (m *MockDocuments) AssociateWithClient(ctx context.Context, id, clientID uuid.UUID) error {
	args := m.Called(ctx, id, clientID)
	return args.Error(0)
}

func (m *MockDocuments) DownloadDocument(ctx context.Context, id uuid.UUID) (io.ReadCloser, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockDocuments) DeleteDocument(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDocuments) ResolveAccess(ctx context.Context, docs []documents.Document) []documents.DocumentAccess {
	args := m.Called(ctx, docs)
	return args.Get(0).([]documents.DocumentAccess)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendClientOnboardingEmail(ctx context.Context, email notifications.OnboardingEmail) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockMailer) SendSignatureRequest(ctx context.Context, email notifications.SignatureRequestEmail) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockMailer) SendSignatureReminder(ctx context.Context, email notifications.ReminderEmail) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func TestRunOnceRemindsStaleRequests(t *testing.T) {
	requests := new(MockRequests)
	docs := new(MockDocuments)
	mailer := new(MockMailer)
	sched := NewReminderScheduler(requests, docs, mailer, "0 9 * * *", 72*time.Hour, zap.NewNop())

	sowID := uuid.New()
	stale := []signatures.SignatureRequest{
		{
			ID:             uuid.New(),
			ClientID:       uuid.New(),
			SOWDocumentID:  &sowID,
			RecipientName:  "Dana Smith",
			RecipientEmail: "dana@acme.example",
			Status:         signatures.StatusSent,
		},
	}

	requests.On("ListOpenRequestsOlderThan", mock.Anything, mock.AnythingOfType("time.Time")).Return(stale, nil)
	docs.On("GetDocument", mock.Anything, sowID).Return(&documents.Document{ID: sowID, FileName: "sow.pdf"}, nil)
	mailer.On("SendSignatureReminder", mock.Anything, mock.AnythingOfType("notifications.ReminderEmail")).Return(nil)

	sched.RunOnce(context.Background())

	var email notifications.ReminderEmail
	for _, call := range mailer.Calls {
		if call.Method == "SendSignatureReminder" {
			email = call.Arguments.Get(1).(notifications.ReminderEmail)
		}
	}
	assert.Equal(t, "dana@acme.example", email.RecipientEmail)
	assert.Equal(t, []string{"sow.pdf"}, email.DocumentNames)
	mailer.AssertExpectations(t)
}

func TestRunOnceFailureDoesNotStopSweep(t *testing.T) {
	requests := new(MockRequests)
	docs := new(MockDocuments)
	mailer := new(MockMailer)
	sched := NewReminderScheduler(requests, docs, mailer, "0 9 * * *", 72*time.Hour, zap.NewNop())

	stale := []signatures.SignatureRequest{
		{ID: uuid.New(), RecipientEmail: "first@acme.example", Status: signatures.StatusSent},
		{ID: uuid.New(), RecipientEmail: "second@acme.example", Status: signatures.StatusViewed},
	}

	requests.On("ListOpenRequestsOlderThan", mock.Anything, mock.AnythingOfType("time.Time")).Return(stale, nil)
	mailer.On("SendSignatureReminder", mock.Anything, mock.MatchedBy(func(e notifications.ReminderEmail) bool {
		return e.RecipientEmail == "first@acme.example"
	})).Return(fmt.Errorf("mailbox full"))
	mailer.On("SendSignatureReminder", mock.Anything, mock.MatchedBy(func(e notifications.ReminderEmail) bool {
		return e.RecipientEmail == "second@acme.example"
	})).Return(nil)

	sched.RunOnce(context.Background())

	mailer.AssertNumberOfCalls(t, "SendSignatureReminder", 2)
}
