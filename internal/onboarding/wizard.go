package onboarding

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"clientbridge/onboarding-portal/portal-backend/internal/ai"
)

type Stage string

const (
	StageSelectClient    Stage = "select_client"
	StageClientOverview  Stage = "client_overview"
	StageUploadSOW       Stage = "upload_sow"
	StageGenerateContent Stage = "generate_content"
	StageEditMessage     Stage = "edit_message"
	StageSendEmail       Stage = "send_email"
	StageReviewFinalize  Stage = "review_finalize"
)

// stageOrder fixes the wizard's linear sequence
var stageOrder = []Stage{
	StageSelectClient,
	StageClientOverview,
	StageUploadSOW,
	StageGenerateContent,
	StageEditMessage,
	StageSendEmail,
	StageReviewFinalize,
}

// Session holds the wizard's staged in-memory state. Nothing here is
// persisted; rows already written to the store survive a Reset.
type Session struct {
	ID             uuid.UUID       `json:"id"`
	Stage          Stage           `json:"stage"`
	ClientID       *uuid.UUID      `json:"client_id,omitempty"`
	SOWDocumentID  *uuid.UUID      `json:"sow_document_id,omitempty"`
	SOWText        string          `json:"-"`
	WelcomeMessage string          `json:"welcome_message,omitempty"`
	StepDrafts     []ai.StepDraft  `json:"step_drafts,omitempty"`
	KickoffFileIDs []uuid.UUID     `json:"kickoff_file_ids,omitempty"`
	EmailSent      bool            `json:"email_sent"`
}

// guard is a named precondition over staged session state
type guard struct {
	name  string
	check func(*Session) bool
}

// stageGuards maps each stage to the predicates required to enter it.
// Navigation evaluates the cumulative guards of every stage up to the
// target, so a jump cannot skip a precondition.
var stageGuards = map[Stage][]guard{
	StageSelectClient: {},
	StageClientOverview: {
		{"a client must be selected", func(s *Session) bool { return s.ClientID != nil }},
	},
	StageUploadSOW: {
		{"a client must be selected", func(s *Session) bool { return s.ClientID != nil }},
	},
	StageGenerateContent: {
		{"a statement of work must be uploaded", func(s *Session) bool { return s.SOWDocumentID != nil }},
	},
	StageEditMessage: {
		{"a welcome message must be generated", func(s *Session) bool { return s.WelcomeMessage != "" }},
		{"at least one onboarding step is required", func(s *Session) bool { return len(s.StepDrafts) > 0 }},
	},
	StageSendEmail: {
		{"a welcome message is required", func(s *Session) bool { return s.WelcomeMessage != "" }},
		{"at least one onboarding step is required", func(s *Session) bool { return len(s.StepDrafts) > 0 }},
	},
	StageReviewFinalize: {
		{"the onboarding email must be sent", func(s *Session) bool { return s.EmailSent }},
	},
}

// GuardError reports a rejected navigation. The wizard stays on its
// current stage; this is feedback, not a hard failure.
type GuardError struct {
	Target Stage
	Reason string
}

func (e *GuardError) Error() string {
	return fmt.Sprintf("cannot move to %s: %s", e.Target, e.Reason)
}

func stageIndex(stage Stage) int {
	for i, s := range stageOrder {
		if s == stage {
			return i
		}
	}
	return -1
}

// CanEnter evaluates the cumulative guards for a target stage
func CanEnter(session *Session, target Stage) error {
	idx := stageIndex(target)
	if idx < 0 {
		return fmt.Errorf("unknown stage %q", target)
	}
	for _, stage := range stageOrder[:idx+1] {
		for _, g := range stageGuards[stage] {
			if !g.check(session) {
				return &GuardError{Target: target, Reason: g.name}
			}
		}
	}
	return nil
}

// Navigate moves the session to the target stage if its cumulative
// guards hold; otherwise the session is left unchanged
func Navigate(session *Session, target Stage) error {
	if err := CanEnter(session, target); err != nil {
		return err
	}
	session.Stage = target
	return nil
}

// Reset discards all staged state and returns to the first stage.
// Persisted records are not rolled back.
func Reset(session *Session) {
	session.Stage = StageSelectClient
	session.ClientID = nil
	session.SOWDocumentID = nil
	session.SOWText = ""
	session.WelcomeMessage = ""
	session.StepDrafts = nil
	session.KickoffFileIDs = nil
	session.EmailSent = false
}

// SessionStore keeps active wizard sessions in memory
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[uuid.UUID]*Session)}
}

func (s *SessionStore) Create() *Session {
	session := &Session{
		ID:    uuid.New(),
		Stage: StageSelectClient,
	}
	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()
	return session
}

func (s *SessionStore) Get(id uuid.UUID) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	return session, ok
}

func (s *SessionStore) Delete(id uuid.UUID) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}
