package session

import (
	"context"

	"github.com/hrygo/spotmatch/store"
)

// Service manages the lifecycle of confirmed workout sessions.
type Service interface {
	// Get returns a session by uid.
	Get(ctx context.Context, uid string) (*store.WorkoutSession, error)

	// List returns the sessions a user participates in, optionally filtered
	// by status, ordered by date then start unit.
	List(ctx context.Context, userID int32, status *store.SessionStatus) ([]*store.WorkoutSession, error)

	// Cancel moves a confirmed session to cancelled. Either participant may
	// cancel.
	Cancel(ctx context.Context, userID int32, uid string) (*store.WorkoutSession, error)

	// Complete moves a confirmed session to completed. Either participant
	// may complete.
	Complete(ctx context.Context, userID int32, uid string) (*store.WorkoutSession, error)

	// RequestModification cancels a confirmed session and opens a fresh
	// proposal for the new slot, addressed to the other participant.
	RequestModification(ctx context.Context, userID int32, uid string, change *ModificationRequest) (*ModificationOutcome, error)
}

// ModificationRequest describes the replacement slot.
type ModificationRequest struct {
	// Date is the calendar date in ISO form (2006-01-02).
	Date      string
	StartUnit int32
	EndUnit   int32
	Message   string
}

// ModificationOutcome pairs the cancelled session with the proposal that
// replaces it.
type ModificationOutcome struct {
	Session  *store.WorkoutSession
	Proposal *store.Proposal
}

// Store is the interface for store operations needed by the session service.
type Store interface {
	GetWorkoutSession(ctx context.Context, find *store.FindWorkoutSession) (*store.WorkoutSession, error)
	ListWorkoutSessions(ctx context.Context, find *store.FindWorkoutSession) ([]*store.WorkoutSession, error)
	UpdateWorkoutSession(ctx context.Context, update *store.UpdateWorkoutSession) (*store.WorkoutSession, error)
}
