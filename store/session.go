package store

import (
	"context"
)

// SessionStatus is the lifecycle status of a confirmed workout session.
type SessionStatus string

const (
	// SessionStatusConfirmed means both partners agreed to the session.
	SessionStatusConfirmed SessionStatus = "confirmed"
	// SessionStatusCancelled means one of the partners called the session off.
	SessionStatusCancelled SessionStatus = "cancelled"
	// SessionStatusCompleted means the session took place.
	SessionStatusCompleted SessionStatus = "completed"
)

// IsValid reports whether s is a known session status.
func (s SessionStatus) IsValid() bool {
	switch s {
	case SessionStatusConfirmed, SessionStatusCancelled, SessionStatusCompleted:
		return true
	}
	return false
}

// WorkoutSession is a confirmed two-person session. It is created exactly
// once per accepted proposal and jointly owned by both participants.
type WorkoutSession struct {
	ID           int32
	UID          string
	ParticipantA int32
	ParticipantB int32
	// Date is the calendar date in ISO form (2006-01-02).
	Date      string
	StartUnit int32
	EndUnit   int32
	Status    SessionStatus
	CreatedTs int64
	UpdatedTs int64
}

// HasParticipant reports whether userID is one of the two partners.
func (w *WorkoutSession) HasParticipant(userID int32) bool {
	return w.ParticipantA == userID || w.ParticipantB == userID
}

// FindWorkoutSession is the find condition for workout sessions.
type FindWorkoutSession struct {
	ID            *int32
	UID           *string
	ParticipantID *int32
	Status        *SessionStatus

	Limit  *int
	Offset *int
}

// UpdateWorkoutSession is a CAS status change for a session: applied only if
// the current status equals ExpectedStatus.
type UpdateWorkoutSession struct {
	UID            string
	ExpectedStatus SessionStatus
	NewStatus      SessionStatus
}

// CreateWorkoutSession creates a new confirmed session.
func (s *Store) CreateWorkoutSession(ctx context.Context, create *WorkoutSession) (*WorkoutSession, error) {
	return s.driver.CreateWorkoutSession(ctx, create)
}

// ListWorkoutSessions lists sessions with filter.
func (s *Store) ListWorkoutSessions(ctx context.Context, find *FindWorkoutSession) ([]*WorkoutSession, error) {
	return s.driver.ListWorkoutSessions(ctx, find)
}

// GetWorkoutSession gets a single session, or nil when not found.
func (s *Store) GetWorkoutSession(ctx context.Context, find *FindWorkoutSession) (*WorkoutSession, error) {
	list, err := s.driver.ListWorkoutSessions(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// UpdateWorkoutSession applies a CAS status change.
func (s *Store) UpdateWorkoutSession(ctx context.Context, update *UpdateWorkoutSession) (*WorkoutSession, error) {
	return s.driver.UpdateWorkoutSession(ctx, update)
}
