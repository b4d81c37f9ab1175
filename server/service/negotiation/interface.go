package negotiation

import (
	"context"
	"time"

	"github.com/hrygo/spotmatch/server/service/intent"
	"github.com/hrygo/spotmatch/store"
)

// Service defines the negotiation engine: proposal creation, the response
// state machine, the escalation re-entry hook, and expiry.
type Service interface {
	// Propose creates a new proposal after validation and points the
	// recipient's negotiation context at it.
	Propose(ctx context.Context, create *ProposeRequest) (*store.Proposal, error)

	// Respond feeds a free-text partner response through the intent
	// classifier and the proposal state machine.
	Respond(ctx context.Context, userID int32, text string) (*Outcome, error)

	// ApplyEscalated re-enters the state machine with an intent synthesized
	// by the AI collaborator for a previously unclear response.
	ApplyEscalated(ctx context.Context, userID int32, proposalUID string, result intent.Result) (*Outcome, error)

	// ListProposalChain walks parent links from the given proposal back to
	// the head of its counter-proposal chain, newest first.
	ListProposalChain(ctx context.Context, uid string) ([]*store.Proposal, error)

	// ExpireStale transitions active proposals whose deadline passed to
	// expired, returning how many were swept.
	ExpireStale(ctx context.Context, now time.Time) (int, error)
}

// ProposeRequest is the request to create a proposal.
type ProposeRequest struct {
	ProposerID  int32
	RecipientID int32
	// Date is the calendar date in ISO form (2006-01-02).
	Date      string
	StartUnit int32
	EndUnit   int32
	Message   string
	// ParentProposalUID chains a counter-proposal to the one it answers.
	ParentProposalUID *string
}

// Outcome reports what a response did to the negotiation.
type Outcome struct {
	Intent intent.Result
	// Proposal is the proposal the response was applied to, post-transition.
	Proposal *store.Proposal
	// Session is set when the response confirmed a session.
	Session *store.WorkoutSession
	// CounterProposal is set when the response chained a new proposal.
	CounterProposal *store.Proposal
	// Reply is a clarification prompt for unknown/unparseable responses;
	// empty when a transition happened.
	Reply string
}

// Store is the interface for store operations needed by the negotiation
// service.
type Store interface {
	CreateProposal(ctx context.Context, create *store.Proposal) (*store.Proposal, error)
	GetProposal(ctx context.Context, find *store.FindProposal) (*store.Proposal, error)
	ListProposals(ctx context.Context, find *store.FindProposal) ([]*store.Proposal, error)
	TransitionProposal(ctx context.Context, transition *store.TransitionProposal) (*store.Proposal, error)

	CreateWorkoutSession(ctx context.Context, create *store.WorkoutSession) (*store.WorkoutSession, error)

	UpsertNegotiationContext(ctx context.Context, upsert *store.NegotiationContext) (*store.NegotiationContext, error)
	GetNegotiationContext(ctx context.Context, userID int32) (*store.NegotiationContext, error)
	DeleteNegotiationContext(ctx context.Context, userID int32) error
}

// Notifier delivers fire-and-forget messages to users. Failures are the
// notifier's problem; they never roll back a transition.
type Notifier interface {
	Notify(ctx context.Context, userID int32, message string) bool
}

// Escalator hands text the rule-based classifier could not categorize to the
// AI collaborator.
type Escalator interface {
	ClassifyUnclear(ctx context.Context, text string, ectx EscalationContext) (intent.Result, error)
}

// EscalationContext carries what the collaborator needs to interpret the
// response.
type EscalationContext struct {
	ProposalUID string
	Date        string
	StartUnit   int32
	EndUnit     int32
}
