package notifications

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Sender is the outbound email surface the rest of the application uses
type Sender interface {
	SendClientOnboardingEmail(ctx context.Context, email OnboardingEmail) error
	SendSignatureRequest(ctx context.Context, email SignatureRequestEmail) error
	SendSignatureReminder(ctx context.Context, email ReminderEmail) error
}

// Service renders and dispatches emails and records every attempt
type Service struct {
	db     *gorm.DB
	sender EmailSender
	logger *zap.Logger
}

// NewService creates the notification service and migrates its log table
func NewService(db *gorm.DB, sender EmailSender, logger *zap.Logger) (*Service, error) {
	if err := db.AutoMigrate(&SentEmail{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &Service{db: db, sender: sender, logger: logger}, nil
}

func (s *Service) SendClientOnboardingEmail(ctx context.Context, email OnboardingEmail) error {
	if email.RecipientEmail == "" {
		return fmt.Errorf("recipient email is required")
	}
	if email.HTMLMessage == "" {
		return fmt.Errorf("email message is empty")
	}

	subject := fmt.Sprintf("Welcome aboard, %s!", email.ClientName)
	body := s.renderOnboardingBody(email)

	return s.dispatch(ctx, email.RecipientEmail, subject, body, "onboarding")
}

func (s *Service) SendSignatureRequest(ctx context.Context, email SignatureRequestEmail) error {
	if email.RecipientEmail == "" {
		return fmt.Errorf("recipient email is required")
	}
	if email.SignURL == "" {
		return fmt.Errorf("signing link is required")
	}

	subject := fmt.Sprintf("%s has documents for your signature", email.ClientName)
	var b strings.Builder
	fmt.Fprintf(&b, "<p>Hi %s,</p>", html.EscapeString(email.RecipientName))
	b.WriteString("<p>The following documents are ready for your review and signature:</p><ul>")
	for _, name := range email.DocumentNames {
		fmt.Fprintf(&b, "<li>%s</li>", html.EscapeString(name))
	}
	b.WriteString("</ul>")
	fmt.Fprintf(&b, `<p><a href="%s">Review and sign</a></p>`, email.SignURL)

	return s.dispatch(ctx, email.RecipientEmail, subject, b.String(), "signature_request")
}

func (s *Service) SendSignatureReminder(ctx context.Context, email ReminderEmail) error {
	if email.RecipientEmail == "" {
		return fmt.Errorf("recipient email is required")
	}

	subject := "Reminder: documents awaiting your signature"
	var b strings.Builder
	fmt.Fprintf(&b, "<p>Hi %s,</p>", html.EscapeString(email.RecipientName))
	b.WriteString("<p>The following documents are still awaiting your signature:</p><ul>")
	for _, name := range email.DocumentNames {
		fmt.Fprintf(&b, "<li>%s</li>", html.EscapeString(name))
	}
	b.WriteString("</ul>")

	return s.dispatch(ctx, email.RecipientEmail, subject, b.String(), "signature_reminder")
}

func (s *Service) dispatch(ctx context.Context, to, subject, body, kind string) error {
	record := &SentEmail{
		ID:        uuid.New(),
		Recipient: to,
		Subject:   subject,
		Kind:      kind,
		Status:    StatusSent,
		CreatedAt: time.Now(),
	}

	sendErr := s.sender.Send(ctx, to, subject, body)
	if sendErr != nil {
		record.Status = StatusFailed
		record.Error = sendErr.Error()
		s.logger.Error("email dispatch failed",
			zap.Error(sendErr),
			zap.String("recipient", to),
			zap.String("kind", kind))
	}

	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		s.logger.Warn("failed to record sent email", zap.Error(err))
	}

	return sendErr
}

func (s *Service) renderOnboardingBody(email OnboardingEmail) string {
	var b strings.Builder
	b.WriteString(email.HTMLMessage)

	if len(email.ChecklistItems) > 0 {
		b.WriteString("<h3>Your next steps</h3><ol>")
		for _, item := range email.ChecklistItems {
			fmt.Fprintf(&b, "<li>%s</li>", html.EscapeString(item))
		}
		b.WriteString("</ol>")
	}

	if len(email.Attachments) > 0 {
		b.WriteString("<h3>Documents</h3><ul>")
		for _, att := range email.Attachments {
			fmt.Fprintf(&b, `<li><a href="%s">%s</a></li>`, att.URL, html.EscapeString(att.Name))
		}
		b.WriteString("</ul>")
	}

	return b.String()
}

// ListSentEmails returns the most recent delivery log entries
func (s *Service) ListSentEmails(ctx context.Context, limit int) ([]SentEmail, error) {
	if limit <= 0 {
		limit = 50
	}
	var records []SentEmail
	if err := s.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list sent emails: %w", err)
	}
	return records, nil
}
