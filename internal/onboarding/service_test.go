package onboarding

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"clientbridge/onboarding-portal/portal-backend/internal/ai"
	"clientbridge/onboarding-portal/portal-backend/internal/clients"
	"clientbridge/onboarding-portal/portal-backend/internal/documents"
	"clientbridge/onboarding-portal/portal-backend/internal/notifications"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateStep(ctx context.Context, step *OnboardingStep) error {
	args := m.Called(ctx, step)
	return args.Error(0)
}

func (m *MockRepository) GetStepByID(ctx context.Context, id uuid.UUID) (*OnboardingStep, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*OnboardingStep), args.Error(1)
}

func (m *MockRepository) ListSteps(ctx context.Context, clientID uuid.UUID) ([]OnboardingStep, error) {
	args := m.Called(ctx, clientID)
	return args.Get(0).([]OnboardingStep), args.Error(1)
}

func (m *MockRepository) UpdateStep(ctx context.Context, step *OnboardingStep) error {
	args := m.Called(ctx, step)
	return args.Error(0)
}

func (m *MockRepository) DeleteStep(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) DeleteAllSteps(ctx context.Context, clientID uuid.UUID) error {
	args := m.Called(ctx, clientID)
	return args.Error(0)
}

func (m *MockRepository) ReplaceSteps(ctx context.Context, clientID uuid.UUID, steps []OnboardingStep) error {
	args := m.Called(ctx, clientID, steps)
	return args.Error(0)
}

func (m *MockRepository) CreateEngagement(ctx context.Context, engagement *ClientEngagement) error {
	args := m.Called(ctx, engagement)
	return args.Error(0)
}

func (m *MockRepository) GetEngagementByID(ctx context.Context, id uuid.UUID) (*ClientEngagement, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ClientEngagement), args.Error(1)
}

func (m *MockRepository) GetEngagementByClient(ctx context.Context, clientID uuid.UUID) (*ClientEngagement, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ClientEngagement), args.Error(1)
}

func (m *MockRepository) ListEngagements(ctx context.Context) ([]ClientEngagement, error) {
	args := m.Called(ctx)
	return args.Get(0).([]ClientEngagement), args.Error(1)
}

func (m *MockRepository) UpdateEngagement(ctx context.Context, engagement *ClientEngagement) error {
	args := m.Called(ctx, engagement)
	return args.Error(0)
}

// MockDocuments is a mock implementation of documents.Service
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

// MockGenerator is a mock implementation of ContentGenerator
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) GenerateWelcomeContent(ctx context.Context, sowText string) (*ai.WelcomeContent, error) {
	args := m.Called(ctx, sowText)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ai.WelcomeContent), args.Error(1)
}

func (m *MockGenerator) ExtractText(ctx context.Context, fileName string, content []byte) (string, error) {
	args := m.Called(ctx, fileName, content)
	return args.String(0), args.Error(1)
}

// MockDirectory is a mock implementation of ClientDirectory
type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) GetClientByID(ctx context.Context, id uuid.UUID) (*clients.Client, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clients.Client), args.Error(1)
}

// MockMailer is a mock implementation of notifications.Sender
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

type serviceMocks struct {
	repo      *MockRepository
	docs      *MockDocuments
	generator *MockGenerator
	directory *MockDirectory
	mailer    *MockMailer
}

func newTestService() (*Service, *serviceMocks) {
	m := &serviceMocks{
		repo:      new(MockRepository),
		docs:      new(MockDocuments),
		generator: new(MockGenerator),
		directory: new(MockDirectory),
		mailer:    new(MockMailer),
	}
	service := NewService(m.repo, NewSessionStore(), m.docs, m.generator, m.directory, m.mailer, zap.NewNop())
	return service, m
}

func TestGenerateContentReplacesSteps(t *testing.T) {
	service, m := newTestService()
	ctx := context.Background()

	session := service.StartSession()
	clientID := uuid.New()
	docID := uuid.New()
	session.Stage = StageGenerateContent
	session.ClientID = &clientID
	session.SOWDocumentID = &docID
	session.SOWText = "build the reporting module"

	m.generator.On("GenerateWelcomeContent", ctx, "build the reporting module").Return(&ai.WelcomeContent{
		WelcomeMessage: "<p>Welcome!</p>",
		NextSteps: []ai.StepDraft{
			{Title: "Kickoff call", Description: "Schedule the kickoff"},
			{Title: "Grant access", Description: "Provision accounts"},
		},
	}, nil)
	m.repo.On("ReplaceSteps", ctx, clientID, mock.AnythingOfType("[]onboarding.OnboardingStep")).Return(nil)

	updated, err := service.GenerateContent(ctx, session.ID)

	assert.NoError(t, err)
	assert.Equal(t, StageEditMessage, updated.Stage)
	assert.Equal(t, "<p>Welcome!</p>", updated.WelcomeMessage)
	assert.Len(t, updated.StepDrafts, 2)

	replaced := m.repo.Calls[0].Arguments.Get(2).([]OnboardingStep)
	assert.Len(t, replaced, 2)
	assert.Equal(t, "Kickoff call", replaced[0].Title)
	assert.Equal(t, 0, replaced[0].OrderIndex)
	assert.Equal(t, 1, replaced[1].OrderIndex)
	assert.Equal(t, StepNotStarted, replaced[0].Status)
	assert.True(t, replaced[0].ClientVisible)
	m.repo.AssertExpectations(t)
}

func TestGenerateContentRequiresSOW(t *testing.T) {
	service, m := newTestService()
	ctx := context.Background()

	session := service.StartSession()
	clientID := uuid.New()
	session.ClientID = &clientID

	_, err := service.GenerateContent(ctx, session.ID)

	var guardErr *GuardError
	assert.ErrorAs(t, err, &guardErr)
	m.generator.AssertNotCalled(t, "GenerateWelcomeContent", mock.Anything, mock.Anything)
	m.repo.AssertNotCalled(t, "ReplaceSteps", mock.Anything, mock.Anything, mock.Anything)
}

func TestSendEmailCreatesEngagement(t *testing.T) {
	service, m := newTestService()
	ctx := context.Background()

	session := service.StartSession()
	clientID := uuid.New()
	session.Stage = StageSendEmail
	session.ClientID = &clientID
	session.WelcomeMessage = "<p>Welcome!</p>"
	session.StepDrafts = []ai.StepDraft{{Title: "Kickoff call"}}

	steps := []OnboardingStep{
		{ID: uuid.New(), ClientID: clientID, Title: "Kickoff call", ClientVisible: true},
		{ID: uuid.New(), ClientID: clientID, Title: "Internal review", ClientVisible: false},
	}

	m.directory.On("GetClientByID", ctx, clientID).Return(&clients.Client{ID: clientID, Name: "Acme"}, nil)
	m.repo.On("ListSteps", ctx, clientID).Return(steps, nil)
	m.mailer.On("SendClientOnboardingEmail", ctx, mock.AnythingOfType("notifications.OnboardingEmail")).Return(nil)
	m.repo.On("CreateEngagement", ctx, mock.AnythingOfType("*onboarding.ClientEngagement")).Return(nil)

	updated, err := service.SendEmail(ctx, session.ID, "team@acme.example")

	assert.NoError(t, err)
	assert.Equal(t, StageReviewFinalize, updated.Stage)
	assert.True(t, updated.EmailSent)

	var sentEmail notifications.OnboardingEmail
	for _, call := range m.mailer.Calls {
		if call.Method == "SendClientOnboardingEmail" {
			sentEmail = call.Arguments.Get(1).(notifications.OnboardingEmail)
		}
	}
	assert.Equal(t, []string{"Kickoff call"}, sentEmail.ChecklistItems, "hidden steps stay out of the email")

	var engagement *ClientEngagement
	for _, call := range m.repo.Calls {
		if call.Method == "CreateEngagement" {
			engagement = call.Arguments.Get(1).(*ClientEngagement)
		}
	}
	assert.Equal(t, EngagementSent, engagement.Status)
	assert.Equal(t, "team@acme.example", engagement.ClientEmail)
	assert.NotNil(t, engagement.EmailSentAt)
	m.repo.AssertExpectations(t)
	m.mailer.AssertExpectations(t)
}

func TestSendEmailRejectedBeforeContent(t *testing.T) {
	service, m := newTestService()
	ctx := context.Background()

	session := service.StartSession()
	clientID := uuid.New()
	session.ClientID = &clientID

	_, err := service.SendEmail(ctx, session.ID, "team@acme.example")

	var guardErr *GuardError
	assert.ErrorAs(t, err, &guardErr)
	m.mailer.AssertNotCalled(t, "SendClientOnboardingEmail", mock.Anything, mock.Anything)
	m.repo.AssertNotCalled(t, "CreateEngagement", mock.Anything, mock.Anything)
}

func TestCreateStepAppendsAfterExisting(t *testing.T) {
	service, m := newTestService()
	ctx := context.Background()
	clientID := uuid.New()

	existing := []OnboardingStep{
		{ID: uuid.New(), ClientID: clientID, OrderIndex: 0},
		{ID: uuid.New(), ClientID: clientID, OrderIndex: 4},
	}
	m.repo.On("ListSteps", ctx, clientID).Return(existing, nil)
	m.repo.On("CreateStep", ctx, mock.AnythingOfType("*onboarding.OnboardingStep")).Return(nil)

	step, err := service.CreateStep(ctx, clientID, "Security review", "", true)

	assert.NoError(t, err)
	assert.Equal(t, 5, step.OrderIndex)
	assert.Equal(t, StepNotStarted, step.Status)
	m.repo.AssertExpectations(t)
}

func TestUpdateStepRejectsInvalidStatus(t *testing.T) {
	service, m := newTestService()
	ctx := context.Background()

	stepID := uuid.New()
	m.repo.On("GetStepByID", ctx, stepID).Return(&OnboardingStep{ID: stepID}, nil)

	bad := StepStatus("paused")
	_, err := service.UpdateStep(ctx, stepID, StepUpdate{Status: &bad})

	assert.Error(t, err)
	m.repo.AssertNotCalled(t, "UpdateStep", mock.Anything, mock.Anything)
}

func TestUpdateEngagementStatusValidatesTransition(t *testing.T) {
	service, m := newTestService()
	ctx := context.Background()

	engagementID := uuid.New()
	m.repo.On("GetEngagementByID", ctx, engagementID).
		Return(&ClientEngagement{ID: engagementID, Status: EngagementSent}, nil)
	m.repo.On("UpdateEngagement", ctx, mock.AnythingOfType("*onboarding.ClientEngagement")).Return(nil)

	updated, err := service.UpdateEngagementStatus(ctx, engagementID, EngagementInProgress)
	assert.NoError(t, err)
	assert.Equal(t, EngagementInProgress, updated.Status)
}

func TestUpdateEngagementStatusRejectsInvalidTransition(t *testing.T) {
	service, m := newTestService()
	ctx := context.Background()

	engagementID := uuid.New()
	m.repo.On("GetEngagementByID", ctx, engagementID).
		Return(&ClientEngagement{ID: engagementID, Status: EngagementCompleted}, nil)

	_, err := service.UpdateEngagementStatus(ctx, engagementID, EngagementInProgress)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "cannot move engagement")
	m.repo.AssertNotCalled(t, "UpdateEngagement", mock.Anything, mock.Anything)
}

func TestUploadSOWStagesDocumentAndText(t *testing.T) {
	service, m := newTestService()
	ctx := context.Background()

	session := service.StartSession()
	clientID := uuid.New()
	session.Stage = StageUploadSOW
	session.ClientID = &clientID

	content := []byte("%PDF-1.7 fake")
	doc := &documents.Document{ID: uuid.New(), Kind: documents.KindSOW, FileName: "sow.pdf"}

	m.docs.On("UploadDocument", ctx, mock.AnythingOfType("documents.UploadRequest")).Return(doc, nil)
	m.generator.On("ExtractText", ctx, "sow.pdf", content).Return("extracted scope", nil)

	updated, err := service.UploadSOW(ctx, session.ID, "sow.pdf", "application/pdf", content)

	assert.NoError(t, err)
	assert.Equal(t, StageGenerateContent, updated.Stage)
	assert.Equal(t, doc.ID, *updated.SOWDocumentID)
	assert.Equal(t, "extracted scope", updated.SOWText)
	m.docs.AssertExpectations(t)
}

func TestUploadSOWExtractionFailureKeepsStage(t *testing.T) {
	service, m := newTestService()
	ctx := context.Background()

	session := service.StartSession()
	clientID := uuid.New()
	session.Stage = StageUploadSOW
	session.ClientID = &clientID

	content := []byte("garbled")
	doc := &documents.Document{ID: uuid.New(), Kind: documents.KindSOW, FileName: "sow.pdf"}

	m.docs.On("UploadDocument", ctx, mock.AnythingOfType("documents.UploadRequest")).Return(doc, nil)
	m.generator.On("ExtractText", ctx, "sow.pdf", content).Return("", fmt.Errorf("unreadable document"))

	_, err := service.UploadSOW(ctx, session.ID, "sow.pdf", "application/pdf", content)

	assert.Error(t, err)
	assert.Equal(t, StageUploadSOW, session.Stage)
	assert.Nil(t, session.SOWDocumentID)
}
