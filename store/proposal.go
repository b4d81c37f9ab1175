package store

import (
	"context"
	"time"
)

// ProposalStatus is the lifecycle status of a proposal.
type ProposalStatus string

const (
	// ProposalStatusPending means the recipient has not answered yet.
	ProposalStatusPending ProposalStatus = "pending"
	// ProposalStatusAccepted means a workout session was created from this proposal.
	ProposalStatusAccepted ProposalStatus = "accepted"
	// ProposalStatusDeclined means the recipient turned the proposal down.
	ProposalStatusDeclined ProposalStatus = "declined"
	// ProposalStatusCounterProposed means a chained proposal with swapped roles
	// superseded this one.
	ProposalStatusCounterProposed ProposalStatus = "counter_proposed"
	// ProposalStatusExpired means the expiry sweeper timed the proposal out.
	ProposalStatusExpired ProposalStatus = "expired"
)

// IsTerminal reports whether no further transition is allowed from s.
func (s ProposalStatus) IsTerminal() bool {
	switch s {
	case ProposalStatusAccepted, ProposalStatusDeclined, ProposalStatusExpired:
		return true
	default:
		return false
	}
}

// IsActive reports whether the proposal still awaits an answer.
func (s ProposalStatus) IsActive() bool {
	return s == ProposalStatusPending || s == ProposalStatusCounterProposed
}

// Proposal is a single negotiable session suggestion. It is owned exclusively
// by the negotiation engine; all mutation goes through TransitionProposal.
type Proposal struct {
	ID          int32
	UID         string
	ProposerID  int32
	RecipientID int32
	// Date is the calendar date in ISO form (2006-01-02).
	Date      string
	StartUnit int32
	EndUnit   int32
	Status    ProposalStatus
	Message   string
	// ParentProposalUID links a counter-proposal back to the proposal it
	// answers, forming a chain. Nil for the chain head.
	ParentProposalUID *string
	// SessionUID references the workout session created on acceptance.
	SessionUID *string
	CreatedTs  int64
	ExpiresTs  int64
}

// ParseDate parses the proposal date to time.Time in UTC.
func (p *Proposal) ParseDate() (time.Time, error) {
	return time.Parse("2006-01-02", p.Date)
}

// FindProposal is the find condition for proposals.
type FindProposal struct {
	ID          *int32
	UID         *string
	ProposerID  *int32
	RecipientID *int32
	Statuses    []ProposalStatus

	// ExpiresBefore filters proposals whose deadline passed (sweeper).
	ExpiresBefore *int64

	Limit  *int
	Offset *int
}

// TransitionProposal is a compare-and-swap state change request. The update
// is applied only if the proposal's current status equals ExpectedStatus;
// otherwise the driver reports CONFLICT and nothing is written.
type TransitionProposal struct {
	UID            string
	ExpectedStatus ProposalStatus
	NewStatus      ProposalStatus

	// SessionUID is set when the transition creates a session (accept).
	SessionUID *string
}

// CreateProposal creates a new proposal.
func (s *Store) CreateProposal(ctx context.Context, create *Proposal) (*Proposal, error) {
	return s.driver.CreateProposal(ctx, create)
}

// ListProposals lists proposals with filter.
func (s *Store) ListProposals(ctx context.Context, find *FindProposal) ([]*Proposal, error) {
	return s.driver.ListProposals(ctx, find)
}

// GetProposal gets a single proposal, or nil when not found.
func (s *Store) GetProposal(ctx context.Context, find *FindProposal) (*Proposal, error) {
	list, err := s.driver.ListProposals(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// TransitionProposal applies a CAS status transition and returns the updated
// proposal. A status mismatch surfaces as a CONFLICT error.
func (s *Store) TransitionProposal(ctx context.Context, transition *TransitionProposal) (*Proposal, error) {
	return s.driver.TransitionProposal(ctx, transition)
}
