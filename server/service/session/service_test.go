package session

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/hrygo/spotmatch/internal/errors"
	"github.com/hrygo/spotmatch/server/service/negotiation"
	"github.com/hrygo/spotmatch/store"
)

type fakeSessionStore struct {
	sessions map[string]*store.WorkoutSession
}

func newFakeSessionStore(sessions ...*store.WorkoutSession) *fakeSessionStore {
	f := &fakeSessionStore{sessions: map[string]*store.WorkoutSession{}}
	for _, session := range sessions {
		clone := *session
		f.sessions[clone.UID] = &clone
	}
	return f
}

func (f *fakeSessionStore) GetWorkoutSession(_ context.Context, find *store.FindWorkoutSession) (*store.WorkoutSession, error) {
	if find.UID == nil {
		return nil, nil
	}
	session, ok := f.sessions[*find.UID]
	if !ok {
		return nil, nil
	}
	clone := *session
	return &clone, nil
}

func (f *fakeSessionStore) ListWorkoutSessions(_ context.Context, find *store.FindWorkoutSession) ([]*store.WorkoutSession, error) {
	var list []*store.WorkoutSession
	for _, session := range f.sessions {
		if find.ParticipantID != nil && !session.HasParticipant(*find.ParticipantID) {
			continue
		}
		if find.Status != nil && session.Status != *find.Status {
			continue
		}
		clone := *session
		list = append(list, &clone)
	}
	return list, nil
}

func (f *fakeSessionStore) UpdateWorkoutSession(_ context.Context, update *store.UpdateWorkoutSession) (*store.WorkoutSession, error) {
	session, ok := f.sessions[update.UID]
	if !ok {
		return nil, apperrors.NotFound("session not found")
	}
	if session.Status != update.ExpectedStatus {
		return nil, apperrors.Conflict(fmt.Sprintf("session is %s", session.Status))
	}
	session.Status = update.NewStatus
	clone := *session
	return &clone, nil
}

type stubNegotiation struct {
	negotiation.Service
	proposed []*negotiation.ProposeRequest
}

func (s *stubNegotiation) Propose(_ context.Context, create *negotiation.ProposeRequest) (*store.Proposal, error) {
	s.proposed = append(s.proposed, create)
	return &store.Proposal{
		UID:         "counter-1",
		ProposerID:  create.ProposerID,
		RecipientID: create.RecipientID,
		Date:        create.Date,
		StartUnit:   create.StartUnit,
		EndUnit:     create.EndUnit,
		Status:      store.ProposalStatusPending,
	}, nil
}

func confirmedSession() *store.WorkoutSession {
	return &store.WorkoutSession{
		UID:          "sess-1",
		ParticipantA: 1,
		ParticipantB: 2,
		Date:         "2025-01-20",
		StartUnit:    18,
		EndUnit:      20,
		Status:       store.SessionStatusConfirmed,
		CreatedTs:    time.Now().Unix(),
	}
}

func TestCancelByEitherParticipant(t *testing.T) {
	for _, userID := range []int32{1, 2} {
		t.Run(fmt.Sprintf("user %d", userID), func(t *testing.T) {
			st := newFakeSessionStore(confirmedSession())
			svc := NewService(st, nil)

			updated, err := svc.Cancel(context.Background(), userID, "sess-1")
			require.NoError(t, err)
			assert.Equal(t, store.SessionStatusCancelled, updated.Status)
		})
	}
}

func TestCompleteSession(t *testing.T) {
	st := newFakeSessionStore(confirmedSession())
	svc := NewService(st, nil)

	updated, err := svc.Complete(context.Background(), 2, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, store.SessionStatusCompleted, updated.Status)
}

func TestLifecycleRejectsNonParticipants(t *testing.T) {
	st := newFakeSessionStore(confirmedSession())
	svc := NewService(st, nil)

	_, err := svc.Cancel(context.Background(), 99, "sess-1")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeInvalidArgument, apperrors.GetCodeFromError(err, ""))
}

func TestLifecycleConflictsOnTerminalSession(t *testing.T) {
	session := confirmedSession()
	session.Status = store.SessionStatusCancelled
	svc := NewService(newFakeSessionStore(session), nil)

	_, err := svc.Complete(context.Background(), 1, "sess-1")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeConflict, apperrors.GetCodeFromError(err, ""))
}

func TestLifecycleNotFound(t *testing.T) {
	svc := NewService(newFakeSessionStore(), nil)

	_, err := svc.Cancel(context.Background(), 1, "nope")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.GetCodeFromError(err, ""))
}

func TestRequestModificationOpensProposalForPartner(t *testing.T) {
	st := newFakeSessionStore(confirmedSession())
	stub := &stubNegotiation{}
	svc := NewService(st, stub)

	outcome, err := svc.RequestModification(context.Background(), 2, "sess-1", &ModificationRequest{
		Date:      "2025-01-22",
		StartUnit: 7,
		EndUnit:   9,
		Message:   "something came up, can we move it?",
	})
	require.NoError(t, err)

	assert.Equal(t, store.SessionStatusCancelled, outcome.Session.Status)
	require.Len(t, stub.proposed, 1)
	assert.Equal(t, int32(2), stub.proposed[0].ProposerID)
	assert.Equal(t, int32(1), stub.proposed[0].RecipientID)
	assert.Equal(t, "2025-01-22", outcome.Proposal.Date)
}

func TestListFiltersByParticipantAndStatus(t *testing.T) {
	other := confirmedSession()
	other.UID = "sess-2"
	other.ParticipantA = 3
	other.ParticipantB = 4
	done := confirmedSession()
	done.UID = "sess-3"
	done.Status = store.SessionStatusCompleted

	svc := NewService(newFakeSessionStore(confirmedSession(), other, done), nil)

	sessions, err := svc.List(context.Background(), 1, nil)
	require.NoError(t, err)
	assert.Len(t, sessions, 2)

	confirmed := store.SessionStatusConfirmed
	sessions, err = svc.List(context.Background(), 1, &confirmed)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "sess-1", sessions[0].UID)
}
