package domain

import "time"

// SessionStatus represents the status of a device sign-in session.
type SessionStatus string

const (
	SessionStatusPending    SessionStatus = "pending"
	SessionStatusAuthorized SessionStatus = "authorized"
	SessionStatusCompleted  SessionStatus = "completed"
	SessionStatusExpired    SessionStatus = "expired"
)

// sessionTransitions is the closed set of allowed status transitions.
// Anything not listed here must be rejected.
var sessionTransitions = map[SessionStatus][]SessionStatus{
	SessionStatusPending:    {SessionStatusAuthorized, SessionStatusExpired},
	SessionStatusAuthorized: {SessionStatusCompleted, SessionStatusExpired},
}

// CanTransition reports whether moving from one session status to another
// is allowed by the session state machine.
func CanTransition(from, to SessionStatus) bool {
	for _, next := range sessionTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TransitionPredecessors returns the statuses from which a session may move
// into the given status. Repositories use this to build conditional updates.
func TransitionPredecessors(to SessionStatus) []SessionStatus {
	var from []SessionStatus
	for status, nexts := range sessionTransitions {
		for _, next := range nexts {
			if next == to {
				from = append(from, status)
			}
		}
	}
	return from
}

// AuthSession holds one delegated sign-in handshake. The Kindle polls it by
// SessionToken while the browser leg rebinds to it through State.
type AuthSession struct {
	ID           string        `bson:"_id" json:"id"`
	SessionToken string        `bson:"session_token" json:"session_token"`
	State        string        `bson:"state" json:"-"`
	DeviceID     string        `bson:"device_id" json:"device_id"`
	Status       SessionStatus `bson:"status" json:"status"`
	UserID       string        `bson:"user_id,omitempty" json:"user_id,omitempty"`
	CreatedAt    time.Time     `bson:"created_at" json:"created_at"`
	ExpiresAt    time.Time     `bson:"expires_at" json:"expires_at"`
	CompletedAt  *time.Time    `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
}

// Expired reports whether the session's absolute deadline has passed. Derived
// from the timestamp on every read, regardless of the stored status column,
// so correctness never depends on the background sweep having run.
func (s *AuthSession) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}
