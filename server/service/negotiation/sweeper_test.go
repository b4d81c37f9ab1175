package negotiation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/spotmatch/store"
)

func TestSweeperRunOnceExpiresOverdueProposals(t *testing.T) {
	st := newFakeStore()
	svc := newTestService(st, nil, nil)
	proposal := propose(t, svc)

	// Backdate the deadline so the sweep's real clock sees it as overdue.
	st.proposals[proposal.UID].ExpiresTs = time.Now().Add(-time.Minute).Unix()

	sweeper := NewSweeper(svc, time.Hour)
	sweeper.RunOnce(context.Background())

	assert.Equal(t, store.ProposalStatusExpired, st.proposals[proposal.UID].Status)
}

func TestSweeperStartStop(t *testing.T) {
	svc := newTestService(newFakeStore(), nil, nil)
	sweeper := NewSweeper(svc, time.Hour)

	sweeper.Start(context.Background())
	sweeper.Start(context.Background()) // idempotent
	sweeper.Stop()
	sweeper.Stop() // idempotent

	require.NotPanics(t, func() { sweeper.Stop() })
}

func TestSweeperLeavesRespondedProposalsAlone(t *testing.T) {
	st := newFakeStore()
	svc := newTestService(st, nil, nil)
	proposal := propose(t, svc)

	_, err := svc.Respond(context.Background(), 2, "yes, works for me")
	require.NoError(t, err)

	st.proposals[proposal.UID].ExpiresTs = time.Now().Add(-time.Minute).Unix()
	NewSweeper(svc, time.Hour).RunOnce(context.Background())

	assert.Equal(t, store.ProposalStatusAccepted, st.proposals[proposal.UID].Status)
}
