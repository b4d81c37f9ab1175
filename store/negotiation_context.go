package store

import (
	"context"
	"fmt"
)

// NegotiationContext is the persisted pointer from a user to the proposal
// they are currently expected to answer. Keeping it in the store (not in
// process memory) survives restarts and multiple concurrent workers.
type NegotiationContext struct {
	UserID            int32
	ActiveProposalUID string
	UpdatedTs         int64
}

// UpsertNegotiationContext points the user at a proposal.
func (s *Store) UpsertNegotiationContext(ctx context.Context, upsert *NegotiationContext) (*NegotiationContext, error) {
	nc, err := s.driver.UpsertNegotiationContext(ctx, upsert)
	if err != nil {
		return nil, err
	}
	s.negotiationContextCache.Set(contextCacheKey(upsert.UserID), nc)
	return nc, nil
}

// GetNegotiationContext returns the user's active proposal pointer, or nil
// when the user has nothing to answer.
func (s *Store) GetNegotiationContext(ctx context.Context, userID int32) (*NegotiationContext, error) {
	if cached, ok := s.negotiationContextCache.Get(contextCacheKey(userID)); ok {
		if nc, ok := cached.(*NegotiationContext); ok {
			return nc, nil
		}
	}
	nc, err := s.driver.GetNegotiationContext(ctx, userID)
	if err != nil {
		return nil, err
	}
	if nc != nil {
		s.negotiationContextCache.Set(contextCacheKey(userID), nc)
	}
	return nc, nil
}

// DeleteNegotiationContext clears the user's active proposal pointer.
func (s *Store) DeleteNegotiationContext(ctx context.Context, userID int32) error {
	if err := s.driver.DeleteNegotiationContext(ctx, userID); err != nil {
		return err
	}
	s.negotiationContextCache.Delete(contextCacheKey(userID))
	return nil
}

func contextCacheKey(userID int32) string {
	return fmt.Sprintf("negotiation-context-%d", userID)
}
