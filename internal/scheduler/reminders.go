package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"clientbridge/onboarding-portal/portal-backend/internal/documents"
	"clientbridge/onboarding-portal/portal-backend/internal/notifications"
	"clientbridge/onboarding-portal/portal-backend/internal/signatures"
)

// ReminderScheduler periodically nudges recipients who have let a
// signature request sit open past the configured age.
type ReminderScheduler struct {
	cron        *cron.Cron
	requests    signatures.Repository
	docs        documents.Service
	mailer      notifications.Sender
	reminderAge time.Duration
	spec        string
	logger      *zap.Logger
}

func NewReminderScheduler(
	requests signatures.Repository,
	docs documents.Service,
	mailer notifications.Sender,
	spec string,
	reminderAge time.Duration,
	logger *zap.Logger,
) *ReminderScheduler {
	return &ReminderScheduler{
		cron:        cron.New(),
		requests:    requests,
		docs:        docs,
		mailer:      mailer,
		reminderAge: reminderAge,
		spec:        spec,
		logger:      logger,
	}
}

// Start registers the reminder job and begins the cron loop
func (s *ReminderScheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		s.RunOnce(ctx)
	}); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("signature reminder scheduler started",
		zap.String("spec", s.spec),
		zap.Duration("reminder_age", s.reminderAge))
	return nil
}

// Stop halts the cron loop and waits for a running job to finish
func (s *ReminderScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// RunOnce sends reminders for every stale open request. A failure on
// one request does not stop the sweep.
func (s *ReminderScheduler) RunOnce(ctx context.Context) {
	cutoff := time.Now().Add(-s.reminderAge)
	stale, err := s.requests.ListOpenRequestsOlderThan(ctx, cutoff)
	if err != nil {
		s.logger.Error("failed to list stale signature requests", zap.Error(err))
		return
	}
	if len(stale) == 0 {
		return
	}

	s.logger.Info("sending signature reminders", zap.Int("count", len(stale)))
	for _, req := range stale {
		if err := s.remind(ctx, req); err != nil {
			s.logger.Warn("failed to send reminder",
				zap.Error(err),
				zap.String("request_id", req.ID.String()))
		}
	}
}

func (s *ReminderScheduler) remind(ctx context.Context, req signatures.SignatureRequest) error {
	return s.mailer.SendSignatureReminder(ctx, notifications.ReminderEmail{
		RecipientName:  req.RecipientName,
		RecipientEmail: req.RecipientEmail,
		DocumentNames:  s.documentNames(ctx, req),
	})
}

// documentNames is best effort; a lookup failure just drops the name
func (s *ReminderScheduler) documentNames(ctx context.Context, req signatures.SignatureRequest) []string {
	var names []string
	for _, docID := range []*uuid.UUID{req.SOWDocumentID, req.NDADocumentID} {
		if docID == nil {
			continue
		}
		doc, err := s.docs.GetDocument(ctx, *docID)
		if err != nil || doc == nil {
			continue
		}
		names = append(names, doc.FileName)
	}
	return names
}
