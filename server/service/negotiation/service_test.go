package negotiation

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/hrygo/spotmatch/internal/errors"
	"github.com/hrygo/spotmatch/server/service/intent"
	"github.com/hrygo/spotmatch/store"
)

type fakeStore struct {
	proposals map[string]*store.Proposal
	sessions  map[string]*store.WorkoutSession
	contexts  map[int32]*store.NegotiationContext

	createProposalErrs int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		proposals: map[string]*store.Proposal{},
		sessions:  map[string]*store.WorkoutSession{},
		contexts:  map[int32]*store.NegotiationContext{},
	}
}

func (f *fakeStore) CreateProposal(_ context.Context, create *store.Proposal) (*store.Proposal, error) {
	if f.createProposalErrs > 0 {
		f.createProposalErrs--
		return nil, apperrors.StoreUnavailable("create proposal", fmt.Errorf("connection reset"))
	}
	clone := *create
	f.proposals[clone.UID] = &clone
	return &clone, nil
}

func (f *fakeStore) GetProposal(_ context.Context, find *store.FindProposal) (*store.Proposal, error) {
	if find.UID == nil {
		return nil, nil
	}
	proposal, ok := f.proposals[*find.UID]
	if !ok {
		return nil, nil
	}
	clone := *proposal
	return &clone, nil
}

func (f *fakeStore) ListProposals(_ context.Context, find *store.FindProposal) ([]*store.Proposal, error) {
	var list []*store.Proposal
	for _, proposal := range f.proposals {
		if len(find.Statuses) > 0 {
			matched := false
			for _, status := range find.Statuses {
				if proposal.Status == status {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
		}
		if find.ExpiresBefore != nil && proposal.ExpiresTs >= *find.ExpiresBefore {
			continue
		}
		clone := *proposal
		list = append(list, &clone)
	}
	return list, nil
}

func (f *fakeStore) TransitionProposal(_ context.Context, transition *store.TransitionProposal) (*store.Proposal, error) {
	proposal, ok := f.proposals[transition.UID]
	if !ok {
		return nil, apperrors.NotFound("proposal not found")
	}
	if proposal.Status != transition.ExpectedStatus {
		return nil, apperrors.Conflict(fmt.Sprintf("proposal is %s, not %s", proposal.Status, transition.ExpectedStatus))
	}
	proposal.Status = transition.NewStatus
	if transition.SessionUID != nil {
		proposal.SessionUID = transition.SessionUID
	}
	clone := *proposal
	return &clone, nil
}

func (f *fakeStore) CreateWorkoutSession(_ context.Context, create *store.WorkoutSession) (*store.WorkoutSession, error) {
	clone := *create
	f.sessions[clone.UID] = &clone
	return &clone, nil
}

func (f *fakeStore) UpsertNegotiationContext(_ context.Context, upsert *store.NegotiationContext) (*store.NegotiationContext, error) {
	clone := *upsert
	f.contexts[clone.UserID] = &clone
	return &clone, nil
}

func (f *fakeStore) GetNegotiationContext(_ context.Context, userID int32) (*store.NegotiationContext, error) {
	nc, ok := f.contexts[userID]
	if !ok {
		return nil, nil
	}
	clone := *nc
	return &clone, nil
}

func (f *fakeStore) DeleteNegotiationContext(_ context.Context, userID int32) error {
	delete(f.contexts, userID)
	return nil
}

type recordingNotifier struct {
	sent []string
}

func (r *recordingNotifier) Notify(_ context.Context, userID int32, message string) bool {
	r.sent = append(r.sent, fmt.Sprintf("%d:%s", userID, message))
	return true
}

type stubEscalator struct {
	result intent.Result
	err    error
	calls  int
}

func (e *stubEscalator) ClassifyUnclear(_ context.Context, _ string, _ EscalationContext) (intent.Result, error) {
	e.calls++
	return e.result, e.err
}

func fixedNow() time.Time {
	return time.Date(2025, time.January, 15, 10, 0, 0, 0, time.UTC)
}

func newTestService(st Store, notifier Notifier, escalator Escalator) Service {
	cfg := DefaultConfig()
	cfg.Now = fixedNow
	return NewService(st, intent.NewClassifierWithConfig(intent.Config{Now: fixedNow}), notifier, escalator, cfg)
}

func TestProposeValidation(t *testing.T) {
	svc := newTestService(newFakeStore(), nil, nil)
	ctx := context.Background()

	tests := []struct {
		name   string
		create *ProposeRequest
	}{
		{"self proposal", &ProposeRequest{ProposerID: 1, RecipientID: 1, Date: "2025-01-20", StartUnit: 6, EndUnit: 8}},
		{"inverted slot", &ProposeRequest{ProposerID: 1, RecipientID: 2, Date: "2025-01-20", StartUnit: 8, EndUnit: 6}},
		{"too short", &ProposeRequest{ProposerID: 1, RecipientID: 2, Date: "2025-01-20", StartUnit: 6, EndUnit: 7}},
		{"out of range", &ProposeRequest{ProposerID: 1, RecipientID: 2, Date: "2025-01-20", StartUnit: 23, EndUnit: 25}},
		{"bad date", &ProposeRequest{ProposerID: 1, RecipientID: 2, Date: "Jan 20", StartUnit: 6, EndUnit: 8}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Propose(ctx, tt.create)
			require.Error(t, err)
			assert.Equal(t, apperrors.ErrCodeInvalidArgument, apperrors.GetCodeFromError(err, ""))
		})
	}
}

func TestProposeCreatesPendingAndPointsContext(t *testing.T) {
	st := newFakeStore()
	notifier := &recordingNotifier{}
	svc := newTestService(st, notifier, nil)

	proposal, err := svc.Propose(context.Background(), &ProposeRequest{
		ProposerID:  1,
		RecipientID: 2,
		Date:        "2025-01-20",
		StartUnit:   18,
		EndUnit:     20,
	})
	require.NoError(t, err)

	assert.Equal(t, store.ProposalStatusPending, proposal.Status)
	assert.Equal(t, fixedNow().Add(24*time.Hour).Unix(), proposal.ExpiresTs)
	require.NotNil(t, st.contexts[2])
	assert.Equal(t, proposal.UID, st.contexts[2].ActiveProposalUID)
	assert.Len(t, notifier.sent, 1)
}

func TestProposeRetriesTransientStoreErrors(t *testing.T) {
	st := newFakeStore()
	st.createProposalErrs = 2
	svc := newTestService(st, nil, nil)

	proposal, err := svc.Propose(context.Background(), &ProposeRequest{
		ProposerID:  1,
		RecipientID: 2,
		Date:        "2025-01-20",
		StartUnit:   6,
		EndUnit:     8,
	})
	require.NoError(t, err)
	assert.Equal(t, store.ProposalStatusPending, proposal.Status)
}

func propose(t *testing.T, svc Service) *store.Proposal {
	t.Helper()
	proposal, err := svc.Propose(context.Background(), &ProposeRequest{
		ProposerID:  1,
		RecipientID: 2,
		Date:        "2025-01-20",
		StartUnit:   18,
		EndUnit:     20,
	})
	require.NoError(t, err)
	return proposal
}

func TestRespondAcceptConfirmsSession(t *testing.T) {
	st := newFakeStore()
	notifier := &recordingNotifier{}
	svc := newTestService(st, notifier, nil)
	proposal := propose(t, svc)

	outcome, err := svc.Respond(context.Background(), 2, "sounds good, see you there")
	require.NoError(t, err)

	assert.Equal(t, intent.TypeAccept, outcome.Intent.Type)
	assert.Equal(t, store.ProposalStatusAccepted, outcome.Proposal.Status)
	require.NotNil(t, outcome.Session)
	assert.Equal(t, store.SessionStatusConfirmed, outcome.Session.Status)
	assert.Equal(t, int32(1), outcome.Session.ParticipantA)
	assert.Equal(t, int32(2), outcome.Session.ParticipantB)
	assert.Equal(t, proposal.Date, outcome.Session.Date)

	require.NotNil(t, outcome.Proposal.SessionUID)
	assert.Equal(t, outcome.Session.UID, *outcome.Proposal.SessionUID)
	assert.Nil(t, st.contexts[2], "recipient context should be cleared")
	// proposal notice + confirmation notice
	assert.Len(t, notifier.sent, 2)
}

func TestRespondDecline(t *testing.T) {
	st := newFakeStore()
	svc := newTestService(st, nil, nil)
	propose(t, svc)

	outcome, err := svc.Respond(context.Background(), 2, "sorry, can't make it")
	require.NoError(t, err)

	assert.Equal(t, intent.TypeDecline, outcome.Intent.Type)
	assert.Equal(t, store.ProposalStatusDeclined, outcome.Proposal.Status)
	assert.Nil(t, outcome.Session)
	assert.Empty(t, st.sessions)
	assert.Nil(t, st.contexts[2])
}

func TestRespondCounterSwapsRoles(t *testing.T) {
	st := newFakeStore()
	svc := newTestService(st, nil, nil)
	original := propose(t, svc)

	outcome, err := svc.Respond(context.Background(), 2, "how about friday at 7pm instead")
	require.NoError(t, err)

	assert.Equal(t, intent.TypeCounterPropose, outcome.Intent.Type)
	assert.Equal(t, store.ProposalStatusCounterProposed, outcome.Proposal.Status)

	counter := outcome.CounterProposal
	require.NotNil(t, counter)
	assert.Equal(t, int32(2), counter.ProposerID)
	assert.Equal(t, int32(1), counter.RecipientID)
	assert.Equal(t, "2025-01-17", counter.Date)
	assert.Equal(t, int32(19), counter.StartUnit)
	assert.Equal(t, int32(21), counter.EndUnit)
	assert.Empty(t, counter.Message)
	require.NotNil(t, counter.ParentProposalUID)
	assert.Equal(t, original.UID, *counter.ParentProposalUID)

	// The pointer moved to the original proposer.
	assert.Nil(t, st.contexts[2])
	require.NotNil(t, st.contexts[1])
	assert.Equal(t, counter.UID, st.contexts[1].ActiveProposalUID)
}

func TestRespondMixedDeclinePlusTime(t *testing.T) {
	st := newFakeStore()
	svc := newTestService(st, nil, nil)
	propose(t, svc)

	response := "can't do monday, how about thursday at 6pm?"
	outcome, err := svc.Respond(context.Background(), 2, response)
	require.NoError(t, err)

	assert.Equal(t, intent.TypeMixed, outcome.Intent.Type)
	assert.Equal(t, store.ProposalStatusCounterProposed, outcome.Proposal.Status)
	require.NotNil(t, outcome.CounterProposal)
	assert.Equal(t, "2025-01-16", outcome.CounterProposal.Date)
	assert.Equal(t, int32(18), outcome.CounterProposal.StartUnit)
	assert.Equal(t, response, outcome.CounterProposal.Message, "decline context travels with the chained proposal")
}

func TestRespondCounterRejectsTooShortSlot(t *testing.T) {
	st := newFakeStore()
	svc := newTestService(st, nil, nil)
	proposal := propose(t, svc)

	// 11pm parses to [23, 24) after the end-of-day clamp, below the
	// two-unit minimum. No transition happens and no proposal is chained.
	outcome, err := svc.Respond(context.Background(), 2, "can't do monday, how about saturday at 11pm?")
	require.NoError(t, err)

	assert.Equal(t, intent.TypeMixed, outcome.Intent.Type)
	assert.NotEmpty(t, outcome.Reply)
	assert.Nil(t, outcome.CounterProposal)
	assert.Equal(t, store.ProposalStatusPending, st.proposals[proposal.UID].Status)
	require.Len(t, st.proposals, 1, "no counter proposal stored")
	require.NotNil(t, st.contexts[2], "context survives a non-transition")
}

func TestRespondUnknownLeavesProposalUntouched(t *testing.T) {
	st := newFakeStore()
	svc := newTestService(st, nil, nil)
	proposal := propose(t, svc)

	outcome, err := svc.Respond(context.Background(), 2, "gym stuff")
	require.NoError(t, err)

	assert.Equal(t, intent.TypeUnknown, outcome.Intent.Type)
	assert.NotEmpty(t, outcome.Reply)
	assert.Equal(t, store.ProposalStatusPending, st.proposals[proposal.UID].Status)
	require.NotNil(t, st.contexts[2], "context survives a non-transition")
}

func TestRespondUnclearEscalates(t *testing.T) {
	st := newFakeStore()
	escalator := &stubEscalator{result: intent.Result{Type: intent.TypeAccept}}
	svc := newTestService(st, nil, escalator)
	propose(t, svc)

	outcome, err := svc.Respond(context.Background(), 2, "hmm, do I need to bring anything?")
	require.NoError(t, err)

	assert.Equal(t, 1, escalator.calls)
	assert.Equal(t, intent.TypeAccept, outcome.Intent.Type)
	assert.Equal(t, store.ProposalStatusAccepted, outcome.Proposal.Status)
	require.NotNil(t, outcome.Session)
}

func TestRespondUnclearEscalationFailureFallsBack(t *testing.T) {
	st := newFakeStore()
	escalator := &stubEscalator{err: apperrors.LLMUnavailable("timeout")}
	svc := newTestService(st, nil, escalator)
	proposal := propose(t, svc)

	outcome, err := svc.Respond(context.Background(), 2, "hmm, do I need to bring anything?")
	require.NoError(t, err)

	assert.Equal(t, intent.TypeUnclear, outcome.Intent.Type)
	assert.NotEmpty(t, outcome.Reply)
	assert.Equal(t, store.ProposalStatusPending, st.proposals[proposal.UID].Status)
}

func TestRespondWithoutActiveProposal(t *testing.T) {
	svc := newTestService(newFakeStore(), nil, nil)

	_, err := svc.Respond(context.Background(), 7, "yes")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.GetCodeFromError(err, ""))
}

func TestRespondToTerminalProposalConflicts(t *testing.T) {
	st := newFakeStore()
	svc := newTestService(st, nil, nil)
	proposal := propose(t, svc)
	st.proposals[proposal.UID].Status = store.ProposalStatusDeclined

	_, err := svc.Respond(context.Background(), 2, "yes")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeConflict, apperrors.GetCodeFromError(err, ""))
}

func TestApplyEscalatedChecksRecipient(t *testing.T) {
	st := newFakeStore()
	svc := newTestService(st, nil, nil)
	proposal := propose(t, svc)

	_, err := svc.ApplyEscalated(context.Background(), 99, proposal.UID, intent.Result{Type: intent.TypeAccept})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeInvalidArgument, apperrors.GetCodeFromError(err, ""))

	outcome, err := svc.ApplyEscalated(context.Background(), 2, proposal.UID, intent.Result{Type: intent.TypeAccept})
	require.NoError(t, err)
	assert.Equal(t, store.ProposalStatusAccepted, outcome.Proposal.Status)
}

func TestListProposalChain(t *testing.T) {
	st := newFakeStore()
	svc := newTestService(st, nil, nil)
	propose(t, svc)

	outcome, err := svc.Respond(context.Background(), 2, "how about friday at 7pm instead")
	require.NoError(t, err)

	chain, err := svc.ListProposalChain(context.Background(), outcome.CounterProposal.UID)
	require.NoError(t, err)
	require.Len(t, chain, 2)
	assert.Equal(t, outcome.CounterProposal.UID, chain[0].UID)
	assert.Equal(t, outcome.Proposal.UID, chain[1].UID)
}

func TestExpireStale(t *testing.T) {
	st := newFakeStore()
	notifier := &recordingNotifier{}
	svc := newTestService(st, notifier, nil)
	proposal := propose(t, svc)

	// Not yet due.
	expired, err := svc.ExpireStale(context.Background(), fixedNow().Add(time.Hour))
	require.NoError(t, err)
	assert.Zero(t, expired)

	expired, err = svc.ExpireStale(context.Background(), fixedNow().Add(25*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, expired)
	assert.Equal(t, store.ProposalStatusExpired, st.proposals[proposal.UID].Status)
	assert.Nil(t, st.contexts[2])

	// Idempotent: terminal proposals are skipped.
	expired, err = svc.ExpireStale(context.Background(), fixedNow().Add(26*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, expired)
}
