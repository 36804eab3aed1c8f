package workflows

// StateMachine enforces status transitions
type StateMachine struct {
	allowedTransitions map[string][]string
}

// NewStateMachine creates a state machine from an allowed-transition table
func NewStateMachine(transitions map[string][]string) *StateMachine {
	return &StateMachine{allowedTransitions: transitions}
}

// NewEngagementStateMachine returns the state machine for client engagements
func NewEngagementStateMachine() *StateMachine {
	return NewStateMachine(map[string][]string{
		"draft":       {"sent"},
		"sent":        {"in_progress", "on_hold"},
		"in_progress": {"completed", "on_hold"},
		"on_hold":     {"in_progress"}, // resuming a held engagement is allowed
		"completed":   {},
	})
}

// NewSignatureStateMachine returns the state machine for signature requests
func NewSignatureStateMachine() *StateMachine {
	return NewStateMachine(map[string][]string{
		"draft":    {"sent"},
		"sent":     {"viewed"},
		"viewed":   {"signed", "declined"},
		"signed":   {},
		"declined": {},
	})
}

// CanTransition checks if a status transition is allowed
func (sm *StateMachine) CanTransition(from, to string) bool {
	allowed, exists := sm.allowedTransitions[from]
	if !exists {
		return false
	}
	for _, allowedTo := range allowed {
		if allowedTo == to {
			return true
		}
	}
	return false
}

// GetAllowedTransitions returns the allowed next statuses for a given status
func (sm *StateMachine) GetAllowedTransitions(from string) []string {
	allowed, exists := sm.allowedTransitions[from]
	if !exists {
		return []string{}
	}
	return allowed
}

// IsTerminal reports whether a status has no outgoing transitions
func (sm *StateMachine) IsTerminal(status string) bool {
	allowed, exists := sm.allowedTransitions[status]
	return exists && len(allowed) == 0
}
