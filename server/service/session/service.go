package session

import (
	"context"
	"fmt"

	apperrors "github.com/hrygo/spotmatch/internal/errors"
	"github.com/hrygo/spotmatch/server/internal/retry"
	"github.com/hrygo/spotmatch/server/service/negotiation"
	"github.com/hrygo/spotmatch/store"
)

type service struct {
	store       Store
	negotiation negotiation.Service
	retry       retry.Policy
}

// NewService creates the session lifecycle service. The negotiation service
// is used to open replacement proposals for modification requests.
func NewService(st Store, negotiationService negotiation.Service) Service {
	return &service{
		store:       st,
		negotiation: negotiationService,
		retry:       retry.DefaultPolicy(),
	}
}

func (s *service) Get(ctx context.Context, uid string) (*store.WorkoutSession, error) {
	session, err := s.store.GetWorkoutSession(ctx, &store.FindWorkoutSession{UID: &uid})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperrors.NotFound(fmt.Sprintf("session %s not found", uid))
	}
	return session, nil
}

func (s *service) List(ctx context.Context, userID int32, status *store.SessionStatus) ([]*store.WorkoutSession, error) {
	return s.store.ListWorkoutSessions(ctx, &store.FindWorkoutSession{
		ParticipantID: &userID,
		Status:        status,
	})
}

func (s *service) Cancel(ctx context.Context, userID int32, uid string) (*store.WorkoutSession, error) {
	return s.transitionAs(ctx, userID, uid, store.SessionStatusCancelled)
}

func (s *service) Complete(ctx context.Context, userID int32, uid string) (*store.WorkoutSession, error) {
	return s.transitionAs(ctx, userID, uid, store.SessionStatusCompleted)
}

func (s *service) RequestModification(ctx context.Context, userID int32, uid string, change *ModificationRequest) (*ModificationOutcome, error) {
	cancelled, err := s.transitionAs(ctx, userID, uid, store.SessionStatusCancelled)
	if err != nil {
		return nil, err
	}

	partner := cancelled.ParticipantA
	if partner == userID {
		partner = cancelled.ParticipantB
	}
	proposal, err := s.negotiation.Propose(ctx, &negotiation.ProposeRequest{
		ProposerID:  userID,
		RecipientID: partner,
		Date:        change.Date,
		StartUnit:   change.StartUnit,
		EndUnit:     change.EndUnit,
		Message:     change.Message,
	})
	if err != nil {
		return nil, err
	}
	return &ModificationOutcome{Session: cancelled, Proposal: proposal}, nil
}

// transitionAs authorizes userID as a participant, then moves the session
// out of confirmed with a compare-and-swap so concurrent lifecycle calls
// cannot double-apply.
func (s *service) transitionAs(ctx context.Context, userID int32, uid string, newStatus store.SessionStatus) (*store.WorkoutSession, error) {
	session, err := s.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	if !session.HasParticipant(userID) {
		return nil, apperrors.Invalidf("user %d is not a participant of session %s", userID, uid)
	}
	if session.Status != store.SessionStatusConfirmed {
		return nil, apperrors.Conflict(fmt.Sprintf("session %s is already %s", uid, session.Status))
	}

	var updated *store.WorkoutSession
	err = s.retry.Do(ctx, "update workout session", func(ctx context.Context) error {
		var err error
		updated, err = s.store.UpdateWorkoutSession(ctx, &store.UpdateWorkoutSession{
			UID:            uid,
			ExpectedStatus: store.SessionStatusConfirmed,
			NewStatus:      newStatus,
		})
		return err
	})
	return updated, err
}
