package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	IsInitialized(ctx context.Context) (bool, error)

	// AvailabilitySlot model related methods.
	ListAvailabilitySlots(ctx context.Context, find *FindAvailabilitySlot) ([]*AvailabilitySlot, error)
	// ReplaceAvailabilitySlots deletes all current slots for the user and
	// inserts the new set in a single transaction.
	ReplaceAvailabilitySlots(ctx context.Context, userID int32, slots []*AvailabilitySlot) error

	// Proposal model related methods.
	CreateProposal(ctx context.Context, create *Proposal) (*Proposal, error)
	ListProposals(ctx context.Context, find *FindProposal) ([]*Proposal, error)
	// TransitionProposal applies a compare-and-swap status change. When the
	// current status differs from the expected one, the driver returns a
	// CONFLICT error and writes nothing.
	TransitionProposal(ctx context.Context, transition *TransitionProposal) (*Proposal, error)

	// WorkoutSession model related methods.
	CreateWorkoutSession(ctx context.Context, create *WorkoutSession) (*WorkoutSession, error)
	ListWorkoutSessions(ctx context.Context, find *FindWorkoutSession) ([]*WorkoutSession, error)
	UpdateWorkoutSession(ctx context.Context, update *UpdateWorkoutSession) (*WorkoutSession, error)

	// NegotiationContext model related methods.
	UpsertNegotiationContext(ctx context.Context, upsert *NegotiationContext) (*NegotiationContext, error)
	GetNegotiationContext(ctx context.Context, userID int32) (*NegotiationContext, error)
	DeleteNegotiationContext(ctx context.Context, userID int32) error
}
