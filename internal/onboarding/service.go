package onboarding

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"clientbridge/onboarding-portal/portal-backend/internal/ai"
	"clientbridge/onboarding-portal/portal-backend/internal/clients"
	"clientbridge/onboarding-portal/portal-backend/internal/documents"
	"clientbridge/onboarding-portal/portal-backend/internal/notifications"
	"clientbridge/onboarding-portal/portal-backend/pkg/workflows"
)

// ContentGenerator is the drafting service surface the wizard needs
type ContentGenerator interface {
	GenerateWelcomeContent(ctx context.Context, sowText string) (*ai.WelcomeContent, error)
	ExtractText(ctx context.Context, fileName string, content []byte) (string, error)
}

// ClientDirectory resolves client records for staging
type ClientDirectory interface {
	GetClientByID(ctx context.Context, id uuid.UUID) (*clients.Client, error)
}

// ProgressPublisher receives step-change events for live dashboards
type ProgressPublisher interface {
	PublishProgress(ctx context.Context, clientID uuid.UUID)
}

type Service struct {
	repo      Repository
	sessions  *SessionStore
	docs      documents.Service
	generator ContentGenerator
	directory ClientDirectory
	mailer    notifications.Sender
	statuses  *workflows.StateMachine
	publisher ProgressPublisher
	logger    *zap.Logger
}

func NewService(
	repo Repository,
	sessions *SessionStore,
	docs documents.Service,
	generator ContentGenerator,
	directory ClientDirectory,
	mailer notifications.Sender,
	logger *zap.Logger,
) *Service {
	return &Service{
		repo:      repo,
		sessions:  sessions,
		docs:      docs,
		generator: generator,
		directory: directory,
		mailer:    mailer,
		statuses:  workflows.NewEngagementStateMachine(),
		logger:    logger,
	}
}

// SetProgressPublisher wires the live dashboard feed; optional
func (s *Service) SetProgressPublisher(p ProgressPublisher) {
	s.publisher = p
}

// ----- wizard session lifecycle -----

func (s *Service) StartSession() *Session {
	return s.sessions.Create()
}

func (s *Service) GetSession(id uuid.UUID) (*Session, error) {
	session, ok := s.sessions.Get(id)
	if !ok {
		return nil, fmt.Errorf("session not found")
	}
	return session, nil
}

// SelectClient stages the client and moves to the overview stage
func (s *Service) SelectClient(ctx context.Context, sessionID, clientID uuid.UUID) (*Session, error) {
	session, err := s.GetSession(sessionID)
	if err != nil {
		return nil, err
	}

	client, err := s.directory.GetClientByID(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up client: %w", err)
	}
	if client == nil {
		return nil, fmt.Errorf("client not found")
	}

	session.ClientID = &clientID
	if err := Navigate(session, StageClientOverview); err != nil {
		return nil, err
	}
	return session, nil
}

// ConfirmOverview acknowledges the overview stage
func (s *Service) ConfirmOverview(sessionID uuid.UUID) (*Session, error) {
	session, err := s.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	if err := Navigate(session, StageUploadSOW); err != nil {
		return nil, err
	}
	return session, nil
}

// UploadSOW stores the statement of work, extracts its text, and advances.
// The document and SOW text are staged together: a failed extraction leaves
// the stage unchanged so the upload can be retried.
func (s *Service) UploadSOW(ctx context.Context, sessionID uuid.UUID, fileName, mimeType string, content []byte) (*Session, error) {
	session, err := s.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	if session.ClientID == nil {
		return nil, &GuardError{Target: StageUploadSOW, Reason: "a client must be selected"}
	}

	doc, err := s.docs.UploadDocument(ctx, documents.UploadRequest{
		ClientID:    session.ClientID,
		Kind:        documents.KindSOW,
		FileName:    fileName,
		FileSize:    int64(len(content)),
		MimeType:    mimeType,
		FileContent: bytes.NewReader(content),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload statement of work: %w", err)
	}

	text, err := s.generator.ExtractText(ctx, fileName, content)
	if err != nil {
		return nil, fmt.Errorf("failed to extract document text: %w", err)
	}

	session.SOWDocumentID = &doc.ID
	session.SOWText = text
	if err := Navigate(session, StageGenerateContent); err != nil {
		return nil, err
	}
	return session, nil
}

// AttachKickoffFile uploads an extra kickoff document and stages its id
func (s *Service) AttachKickoffFile(ctx context.Context, sessionID uuid.UUID, fileName, mimeType string, content []byte) (*Session, error) {
	session, err := s.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	if session.ClientID == nil {
		return nil, &GuardError{Target: session.Stage, Reason: "a client must be selected"}
	}

	doc, err := s.docs.UploadDocument(ctx, documents.UploadRequest{
		ClientID:    session.ClientID,
		Kind:        documents.KindUniversal,
		FileName:    fileName,
		FileSize:    int64(len(content)),
		MimeType:    mimeType,
		FileContent: bytes.NewReader(content),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload kickoff file: %w", err)
	}

	session.KickoffFileIDs = append(session.KickoffFileIDs, doc.ID)
	return session, nil
}

// GenerateContent drafts the welcome message and checklist from the SOW
// text and replaces any previously generated steps for the client, so a
// regeneration never leaves stale checklist rows behind.
func (s *Service) GenerateContent(ctx context.Context, sessionID uuid.UUID) (*Session, error) {
	session, err := s.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	if err := CanEnter(session, StageGenerateContent); err != nil {
		return nil, err
	}

	content, err := s.generator.GenerateWelcomeContent(ctx, session.SOWText)
	if err != nil {
		return nil, fmt.Errorf("failed to generate welcome content: %w", err)
	}
	if len(content.NextSteps) == 0 {
		return nil, fmt.Errorf("drafting service returned no steps")
	}

	now := time.Now()
	steps := make([]OnboardingStep, 0, len(content.NextSteps))
	for i, draft := range content.NextSteps {
		steps = append(steps, OnboardingStep{
			ID:            uuid.New(),
			ClientID:      *session.ClientID,
			Title:         draft.Title,
			Description:   draft.Description,
			Status:        StepNotStarted,
			OrderIndex:    i,
			ClientVisible: true,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
	}

	if err := s.repo.ReplaceSteps(ctx, *session.ClientID, steps); err != nil {
		return nil, fmt.Errorf("failed to persist generated steps: %w", err)
	}

	session.WelcomeMessage = content.WelcomeMessage
	session.StepDrafts = content.NextSteps
	if err := Navigate(session, StageEditMessage); err != nil {
		return nil, err
	}
	return session, nil
}

// UpdateMessage edits the staged welcome message
func (s *Service) UpdateMessage(sessionID uuid.UUID, message string) (*Session, error) {
	session, err := s.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	if message == "" {
		return nil, fmt.Errorf("welcome message cannot be empty")
	}
	session.WelcomeMessage = message
	if session.Stage == StageEditMessage {
		if err := Navigate(session, StageSendEmail); err != nil {
			return nil, err
		}
	}
	return session, nil
}

// SendEmail dispatches the onboarding email and creates the engagement
func (s *Service) SendEmail(ctx context.Context, sessionID uuid.UUID, recipientEmail string) (*Session, error) {
	session, err := s.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	if recipientEmail == "" {
		return nil, fmt.Errorf("recipient email is required")
	}
	if err := CanEnter(session, StageSendEmail); err != nil {
		return nil, err
	}

	client, err := s.directory.GetClientByID(ctx, *session.ClientID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up client: %w", err)
	}
	if client == nil {
		return nil, fmt.Errorf("client not found")
	}

	steps, err := s.repo.ListSteps(ctx, *session.ClientID)
	if err != nil {
		return nil, fmt.Errorf("failed to load steps: %w", err)
	}

	var checklist []string
	for _, step := range steps {
		if step.ClientVisible {
			checklist = append(checklist, step.Title)
		}
	}

	attachments := s.collectAttachments(ctx, session)

	if err := s.mailer.SendClientOnboardingEmail(ctx, notifications.OnboardingEmail{
		ClientName:     client.Name,
		RecipientEmail: recipientEmail,
		HTMLMessage:    session.WelcomeMessage,
		ChecklistItems: checklist,
		Attachments:    attachments,
	}); err != nil {
		return nil, fmt.Errorf("failed to send onboarding email: %w", err)
	}

	now := time.Now()
	engagement := &ClientEngagement{
		ID:          uuid.New(),
		ClientID:    *session.ClientID,
		ClientEmail: recipientEmail,
		Status:      EngagementSent,
		EmailSentAt: &now,
		UpdatedAt:   now,
	}
	if err := s.repo.CreateEngagement(ctx, engagement); err != nil {
		return nil, fmt.Errorf("failed to create engagement: %w", err)
	}

	session.EmailSent = true
	if err := Navigate(session, StageReviewFinalize); err != nil {
		return nil, err
	}
	return session, nil
}

// collectAttachments resolves access URLs for the staged SOW and kickoff
// files. Documents that fail to resolve are dropped from the email rather
// than blocking the send.
func (s *Service) collectAttachments(ctx context.Context, session *Session) []notifications.EmailAttachment {
	ids := make([]uuid.UUID, 0, len(session.KickoffFileIDs)+1)
	if session.SOWDocumentID != nil {
		ids = append(ids, *session.SOWDocumentID)
	}
	ids = append(ids, session.KickoffFileIDs...)

	var docs []documents.Document
	for _, id := range ids {
		doc, err := s.docs.GetDocument(ctx, id)
		if err != nil || doc == nil {
			s.logger.Warn("staged document missing", zap.String("document_id", id.String()))
			continue
		}
		docs = append(docs, *doc)
	}

	var attachments []notifications.EmailAttachment
	for _, access := range s.docs.ResolveAccess(ctx, docs) {
		if access.AccessError {
			continue
		}
		attachments = append(attachments, notifications.EmailAttachment{
			Name: access.FileName,
			URL:  access.URL,
		})
	}
	return attachments
}

// NavigateSession moves the wizard to the target stage if allowed
func (s *Service) NavigateSession(sessionID uuid.UUID, target Stage) (*Session, error) {
	session, err := s.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	if err := Navigate(session, target); err != nil {
		return nil, err
	}
	return session, nil
}

// ResetSession discards staged state; persisted rows are untouched
func (s *Service) ResetSession(sessionID uuid.UUID) (*Session, error) {
	session, err := s.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	Reset(session)
	return session, nil
}

// ----- steps -----

func (s *Service) ListSteps(ctx context.Context, clientID uuid.UUID) ([]OnboardingStep, error) {
	return s.repo.ListSteps(ctx, clientID)
}

// CreateStep appends a manual step after the client's current set
func (s *Service) CreateStep(ctx context.Context, clientID uuid.UUID, title, description string, clientVisible bool) (*OnboardingStep, error) {
	if title == "" {
		return nil, fmt.Errorf("step title is required")
	}

	existing, err := s.repo.ListSteps(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to load steps: %w", err)
	}

	nextIndex := 0
	for _, step := range existing {
		if step.OrderIndex >= nextIndex {
			nextIndex = step.OrderIndex + 1
		}
	}

	now := time.Now()
	step := &OnboardingStep{
		ID:            uuid.New(),
		ClientID:      clientID,
		Title:         title,
		Description:   description,
		Status:        StepNotStarted,
		OrderIndex:    nextIndex,
		ClientVisible: clientVisible,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.CreateStep(ctx, step); err != nil {
		return nil, fmt.Errorf("failed to create step: %w", err)
	}
	s.notifyProgress(ctx, clientID)
	return step, nil
}

func (s *Service) UpdateStep(ctx context.Context, id uuid.UUID, update StepUpdate) (*OnboardingStep, error) {
	step, err := s.repo.GetStepByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if step == nil {
		return nil, fmt.Errorf("step not found")
	}

	if update.Title != nil && *update.Title != "" {
		step.Title = *update.Title
	}
	if update.Description != nil {
		step.Description = *update.Description
	}
	if update.Status != nil {
		switch *update.Status {
		case StepNotStarted, StepInProgress, StepCompleted:
			step.Status = *update.Status
		default:
			return nil, fmt.Errorf("invalid step status %q", *update.Status)
		}
	}
	if update.OrderIndex != nil {
		step.OrderIndex = *update.OrderIndex
	}
	if update.ClientVisible != nil {
		step.ClientVisible = *update.ClientVisible
	}
	step.UpdatedAt = time.Now()

	if err := s.repo.UpdateStep(ctx, step); err != nil {
		return nil, fmt.Errorf("failed to update step: %w", err)
	}
	s.notifyProgress(ctx, step.ClientID)
	return step, nil
}

func (s *Service) DeleteStep(ctx context.Context, id uuid.UUID) error {
	step, err := s.repo.GetStepByID(ctx, id)
	if err != nil {
		return err
	}
	if step == nil {
		return fmt.Errorf("step not found")
	}
	if err := s.repo.DeleteStep(ctx, id); err != nil {
		return err
	}
	s.notifyProgress(ctx, step.ClientID)
	return nil
}

func (s *Service) notifyProgress(ctx context.Context, clientID uuid.UUID) {
	if s.publisher != nil {
		s.publisher.PublishProgress(ctx, clientID)
	}
}

// ----- engagements -----

func (s *Service) ListEngagements(ctx context.Context) ([]ClientEngagement, error) {
	return s.repo.ListEngagements(ctx)
}

func (s *Service) GetEngagement(ctx context.Context, id uuid.UUID) (*ClientEngagement, error) {
	return s.repo.GetEngagementByID(ctx, id)
}

// UpdateEngagementStatus validates the transition against the closed table
func (s *Service) UpdateEngagementStatus(ctx context.Context, id uuid.UUID, status EngagementStatus) (*ClientEngagement, error) {
	engagement, err := s.repo.GetEngagementByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if engagement == nil {
		return nil, fmt.Errorf("engagement not found")
	}

	if !s.statuses.CanTransition(string(engagement.Status), string(status)) {
		return nil, fmt.Errorf("cannot move engagement from %s to %s", engagement.Status, status)
	}

	engagement.Status = status
	engagement.UpdatedAt = time.Now()
	if err := s.repo.UpdateEngagement(ctx, engagement); err != nil {
		return nil, fmt.Errorf("failed to update engagement: %w", err)
	}
	return engagement, nil
}
