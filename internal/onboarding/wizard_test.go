package onboarding

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"clientbridge/onboarding-portal/portal-backend/internal/ai"
)

func stagedSession(stage Stage) *Session {
	clientID := uuid.New()
	docID := uuid.New()
	return &Session{
		ID:             uuid.New(),
		Stage:          stage,
		ClientID:       &clientID,
		SOWDocumentID:  &docID,
		SOWText:        "scope of work",
		WelcomeMessage: "Welcome!",
		StepDrafts:     []ai.StepDraft{{Title: "Kickoff call"}},
	}
}

func TestNavigateForwardThroughStages(t *testing.T) {
	session := &Session{ID: uuid.New(), Stage: StageSelectClient}

	clientID := uuid.New()
	session.ClientID = &clientID
	assert.NoError(t, Navigate(session, StageClientOverview))
	assert.NoError(t, Navigate(session, StageUploadSOW))

	docID := uuid.New()
	session.SOWDocumentID = &docID
	assert.NoError(t, Navigate(session, StageGenerateContent))

	session.WelcomeMessage = "Welcome!"
	session.StepDrafts = []ai.StepDraft{{Title: "Kickoff call"}}
	assert.NoError(t, Navigate(session, StageEditMessage))
	assert.NoError(t, Navigate(session, StageSendEmail))

	session.EmailSent = true
	assert.NoError(t, Navigate(session, StageReviewFinalize))
	assert.Equal(t, StageReviewFinalize, session.Stage)
}

func TestNavigateRejectsJumpOverMissingPreconditions(t *testing.T) {
	clientID := uuid.New()
	session := &Session{
		ID:       uuid.New(),
		Stage:    StageSelectClient,
		ClientID: &clientID,
	}

	err := Navigate(session, StageSendEmail)

	assert.Error(t, err)
	var guardErr *GuardError
	assert.ErrorAs(t, err, &guardErr)
	assert.Equal(t, StageSendEmail, guardErr.Target)
	assert.Equal(t, StageSelectClient, session.Stage, "rejected navigation must not move the session")
}

func TestNavigateRejectsWithoutClient(t *testing.T) {
	session := &Session{ID: uuid.New(), Stage: StageSelectClient}

	err := Navigate(session, StageClientOverview)

	var guardErr *GuardError
	assert.ErrorAs(t, err, &guardErr)
	assert.Equal(t, StageSelectClient, session.Stage)
}

func TestNavigateBackwardIsAllowed(t *testing.T) {
	session := stagedSession(StageSendEmail)

	assert.NoError(t, Navigate(session, StageUploadSOW))
	assert.Equal(t, StageUploadSOW, session.Stage)
}

func TestCanEnterUnknownStage(t *testing.T) {
	session := stagedSession(StageSelectClient)
	assert.Error(t, CanEnter(session, Stage("bogus")))
}

func TestResetDiscardsStagedState(t *testing.T) {
	session := stagedSession(StageSendEmail)
	session.KickoffFileIDs = []uuid.UUID{uuid.New()}
	session.EmailSent = true

	Reset(session)

	assert.Equal(t, StageSelectClient, session.Stage)
	assert.Nil(t, session.ClientID)
	assert.Nil(t, session.SOWDocumentID)
	assert.Empty(t, session.SOWText)
	assert.Empty(t, session.WelcomeMessage)
	assert.Empty(t, session.StepDrafts)
	assert.Empty(t, session.KickoffFileIDs)
	assert.False(t, session.EmailSent)
}

func TestSessionStoreLifecycle(t *testing.T) {
	store := NewSessionStore()

	session := store.Create()
	assert.Equal(t, StageSelectClient, session.Stage)

	got, ok := store.Get(session.ID)
	assert.True(t, ok)
	assert.Equal(t, session.ID, got.ID)

	store.Delete(session.ID)
	_, ok = store.Get(session.ID)
	assert.False(t, ok)
}
