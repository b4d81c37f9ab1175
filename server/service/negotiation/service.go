package negotiation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hrygo/spotmatch/internal/util"
	apperrors "github.com/hrygo/spotmatch/internal/errors"
	"github.com/hrygo/spotmatch/server/internal/observability"
	"github.com/hrygo/spotmatch/server/internal/retry"
	"github.com/hrygo/spotmatch/server/service/intent"
	"github.com/hrygo/spotmatch/store"
)

const (
	// DefaultProposalTTL is how long a proposal stays open for a response.
	DefaultProposalTTL = 24 * time.Hour

	// DefaultMinSessionUnits mirrors the matcher's minimum session length.
	DefaultMinSessionUnits int32 = 2

	clarificationReply = "Sorry, I didn't catch that. Could you confirm whether the proposed time works for you, or suggest another one?"
)

// Config tunes the negotiation service.
type Config struct {
	ProposalTTL     time.Duration
	MinSessionUnits int32
	UnitsPerDay     int32
	// Now is overridable for tests.
	Now func() time.Time
}

// DefaultConfig returns the production configuration.
func DefaultConfig() Config {
	return Config{
		ProposalTTL:     DefaultProposalTTL,
		MinSessionUnits: DefaultMinSessionUnits,
		UnitsPerDay:     store.DefaultUnitsPerDay,
		Now:             time.Now,
	}
}

type service struct {
	store      Store
	classifier *intent.Classifier
	notifier   Notifier
	escalator  Escalator
	retry      retry.Policy
	cfg        Config
	logger     *slog.Logger
}

// NewService creates the negotiation service. notifier and escalator may be
// nil; the corresponding side effects are skipped.
func NewService(st Store, classifier *intent.Classifier, notifier Notifier, escalator Escalator, cfg Config) Service {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.ProposalTTL <= 0 {
		cfg.ProposalTTL = DefaultProposalTTL
	}
	if cfg.MinSessionUnits <= 0 {
		cfg.MinSessionUnits = DefaultMinSessionUnits
	}
	if cfg.UnitsPerDay <= 0 {
		cfg.UnitsPerDay = store.DefaultUnitsPerDay
	}
	return &service{
		store:      st,
		classifier: classifier,
		notifier:   notifier,
		escalator:  escalator,
		retry:      retry.DefaultPolicy(),
		cfg:        cfg,
		logger:     slog.Default().With("component", "negotiation"),
	}
}

func (s *service) Propose(ctx context.Context, create *ProposeRequest) (*store.Proposal, error) {
	if create.ProposerID == create.RecipientID {
		return nil, apperrors.InvalidArgument("proposer and recipient must differ")
	}
	if create.StartUnit < 0 || create.EndUnit > s.cfg.UnitsPerDay || create.StartUnit >= create.EndUnit {
		return nil, apperrors.Invalidf("invalid slot [%d, %d)", create.StartUnit, create.EndUnit)
	}
	if create.EndUnit-create.StartUnit < s.cfg.MinSessionUnits {
		return nil, apperrors.Invalidf("slot shorter than minimum session length of %d units", s.cfg.MinSessionUnits)
	}
	if _, err := time.Parse(time.DateOnly, create.Date); err != nil {
		return nil, apperrors.Invalidf("invalid date %q, want YYYY-MM-DD", create.Date)
	}

	now := s.cfg.Now()
	proposal := &store.Proposal{
		UID:               util.GenUUID(),
		ProposerID:        create.ProposerID,
		RecipientID:       create.RecipientID,
		Date:              create.Date,
		StartUnit:         create.StartUnit,
		EndUnit:           create.EndUnit,
		Status:            store.ProposalStatusPending,
		Message:           create.Message,
		ParentProposalUID: create.ParentProposalUID,
		CreatedTs:         now.Unix(),
		ExpiresTs:         now.Add(s.cfg.ProposalTTL).Unix(),
	}

	var created *store.Proposal
	err := s.retry.Do(ctx, "create proposal", func(ctx context.Context) error {
		var err error
		created, err = s.store.CreateProposal(ctx, proposal)
		return err
	})
	if err != nil {
		return nil, err
	}

	if err := s.pointContextAt(ctx, created.RecipientID, created.UID, now); err != nil {
		return nil, err
	}

	s.notify(ctx, created.RecipientID, fmt.Sprintf("New workout proposal for %s, %s.", created.Date, slotLabel(created.StartUnit, created.EndUnit)))
	return created, nil
}

func (s *service) Respond(ctx context.Context, userID int32, text string) (*Outcome, error) {
	metrics := observability.GlobalMetrics()
	metrics.RecordRequest("respond")
	start := time.Now()

	outcome, err := s.respond(ctx, userID, text)
	metrics.RecordDuration("respond", time.Since(start))
	if err != nil {
		metrics.RecordFailure("respond")
	}
	return outcome, err
}

func (s *service) respond(ctx context.Context, userID int32, text string) (*Outcome, error) {
	proposal, err := s.activeProposalFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := s.classifier.Classify(text)
	if reqCtx, ok := observability.FromContext(ctx); ok {
		reqCtx.Debug("classified partner response",
			slog.String(observability.LogFieldProposalUID, proposal.UID),
			slog.String(observability.LogFieldIntent, string(result.Type)))
	}
	if result.Type == intent.TypeUnclear && s.escalator != nil {
		escalated, escErr := s.escalator.ClassifyUnclear(ctx, text, EscalationContext{
			ProposalUID: proposal.UID,
			Date:        proposal.Date,
			StartUnit:   proposal.StartUnit,
			EndUnit:     proposal.EndUnit,
		})
		if escErr != nil {
			s.logger.Warn("escalation failed, falling back to clarification",
				slog.String("proposal", proposal.UID), slog.Any("error", escErr))
		} else {
			result = escalated
		}
	}

	return s.apply(ctx, userID, proposal, result, text)
}

func (s *service) ApplyEscalated(ctx context.Context, userID int32, proposalUID string, result intent.Result) (*Outcome, error) {
	proposal, err := s.getProposal(ctx, proposalUID)
	if err != nil {
		return nil, err
	}
	if proposal.RecipientID != userID {
		return nil, apperrors.Invalidf("user %d is not the recipient of proposal %s", userID, proposalUID)
	}
	return s.apply(ctx, userID, proposal, result, "")
}

// apply runs one step of the state machine. The store-level
// compare-and-swap is what serializes concurrent responses to the same
// proposal; losers surface as conflicts.
func (s *service) apply(ctx context.Context, userID int32, proposal *store.Proposal, result intent.Result, text string) (*Outcome, error) {
	if proposal.Status.IsTerminal() {
		return nil, apperrors.Conflict(fmt.Sprintf("proposal %s is already %s", proposal.UID, proposal.Status))
	}

	outcome := &Outcome{Intent: result, Proposal: proposal}
	switch result.Type {
	case intent.TypeAccept:
		return s.applyAccept(ctx, proposal, outcome)
	case intent.TypeDecline:
		return s.applyDecline(ctx, proposal, outcome)
	case intent.TypeCounterPropose, intent.TypeMixed:
		// A counter without a usable slot cannot chain a proposal. The slot
		// obeys the same bounds a direct Propose would enforce, so a
		// clamped parse like [23, 24) never reaches the store.
		if result.Slot == nil || s.validSlot(result.Slot) != nil {
			outcome.Reply = clarificationReply
			return outcome, nil
		}
		message := ""
		if result.Type == intent.TypeMixed {
			message = text
		}
		return s.applyCounter(ctx, userID, proposal, result.Slot, message, outcome)
	default:
		outcome.Reply = clarificationReply
		return outcome, nil
	}
}

func (s *service) applyAccept(ctx context.Context, proposal *store.Proposal, outcome *Outcome) (*Outcome, error) {
	sessionUID := util.GenUUID()
	updated, err := s.transition(ctx, &store.TransitionProposal{
		UID:            proposal.UID,
		ExpectedStatus: proposal.Status,
		NewStatus:      store.ProposalStatusAccepted,
		SessionUID:     &sessionUID,
	})
	if err != nil {
		return nil, err
	}
	outcome.Proposal = updated

	// The transition won exclusively, so this session is created at most
	// once even if the write below has to be retried.
	session := &store.WorkoutSession{
		UID:          sessionUID,
		ParticipantA: updated.ProposerID,
		ParticipantB: updated.RecipientID,
		Date:         updated.Date,
		StartUnit:    updated.StartUnit,
		EndUnit:      updated.EndUnit,
		Status:       store.SessionStatusConfirmed,
		CreatedTs:    s.cfg.Now().Unix(),
	}
	err = s.retry.Do(ctx, "create workout session", func(ctx context.Context) error {
		var err error
		session, err = s.store.CreateWorkoutSession(ctx, session)
		return err
	})
	if err != nil {
		return nil, err
	}
	outcome.Session = session

	s.clearContext(ctx, updated.RecipientID)
	s.notify(ctx, updated.ProposerID, fmt.Sprintf("Your workout on %s, %s is confirmed.", updated.Date, slotLabel(updated.StartUnit, updated.EndUnit)))
	return outcome, nil
}

func (s *service) applyDecline(ctx context.Context, proposal *store.Proposal, outcome *Outcome) (*Outcome, error) {
	updated, err := s.transition(ctx, &store.TransitionProposal{
		UID:            proposal.UID,
		ExpectedStatus: proposal.Status,
		NewStatus:      store.ProposalStatusDeclined,
	})
	if err != nil {
		return nil, err
	}
	outcome.Proposal = updated

	s.clearContext(ctx, updated.RecipientID)
	s.notify(ctx, updated.ProposerID, fmt.Sprintf("Your proposal for %s was declined.", updated.Date))
	return outcome, nil
}

func (s *service) applyCounter(ctx context.Context, userID int32, proposal *store.Proposal, slot *intent.ParsedSlot, message string, outcome *Outcome) (*Outcome, error) {
	updated, err := s.transition(ctx, &store.TransitionProposal{
		UID:            proposal.UID,
		ExpectedStatus: proposal.Status,
		NewStatus:      store.ProposalStatusCounterProposed,
	})
	if err != nil {
		return nil, err
	}
	outcome.Proposal = updated

	// Roles swap: the responder becomes the proposer of the chained
	// proposal, and the original proposer has to answer it.
	now := s.cfg.Now()
	counter := &store.Proposal{
		UID:               util.GenUUID(),
		ProposerID:        userID,
		RecipientID:       updated.ProposerID,
		Date:              slot.Date,
		StartUnit:         slot.StartUnit,
		EndUnit:           slot.EndUnit,
		Status:            store.ProposalStatusPending,
		Message:           message,
		ParentProposalUID: &updated.UID,
		CreatedTs:         now.Unix(),
		ExpiresTs:         now.Add(s.cfg.ProposalTTL).Unix(),
	}
	err = s.retry.Do(ctx, "create counter proposal", func(ctx context.Context) error {
		var err error
		counter, err = s.store.CreateProposal(ctx, counter)
		return err
	})
	if err != nil {
		return nil, err
	}
	outcome.CounterProposal = counter

	s.clearContext(ctx, userID)
	if err := s.pointContextAt(ctx, counter.RecipientID, counter.UID, now); err != nil {
		return nil, err
	}
	s.notify(ctx, counter.RecipientID, fmt.Sprintf("Counter-proposal: %s, %s.", counter.Date, slotLabel(counter.StartUnit, counter.EndUnit)))
	return outcome, nil
}

func (s *service) ListProposalChain(ctx context.Context, uid string) ([]*store.Proposal, error) {
	var chain []*store.Proposal
	cursor := uid
	for cursor != "" {
		proposal, err := s.getProposal(ctx, cursor)
		if err != nil {
			return nil, err
		}
		chain = append(chain, proposal)
		if proposal.ParentProposalUID == nil {
			break
		}
		cursor = *proposal.ParentProposalUID
	}
	return chain, nil
}

func (s *service) ExpireStale(ctx context.Context, now time.Time) (int, error) {
	deadline := now.Unix()
	stale, err := s.store.ListProposals(ctx, &store.FindProposal{
		Statuses:      []store.ProposalStatus{store.ProposalStatusPending, store.ProposalStatusCounterProposed},
		ExpiresBefore: &deadline,
	})
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, proposal := range stale {
		if !proposal.Status.IsActive() {
			continue
		}
		_, err := s.store.TransitionProposal(ctx, &store.TransitionProposal{
			UID:            proposal.UID,
			ExpectedStatus: proposal.Status,
			NewStatus:      store.ProposalStatusExpired,
		})
		if err != nil {
			// A conflict means a response won the race. Not our problem.
			if apperrors.IsCode(err, apperrors.ErrCodeConflict) || apperrors.IsCode(err, apperrors.ErrCodeNotFound) {
				continue
			}
			return expired, err
		}
		expired++
		s.clearContextIfPointingAt(ctx, proposal.RecipientID, proposal.UID)
		s.notify(ctx, proposal.ProposerID, fmt.Sprintf("Your proposal for %s expired without a response.", proposal.Date))
	}
	return expired, nil
}

func (s *service) activeProposalFor(ctx context.Context, userID int32) (*store.Proposal, error) {
	nc, err := s.store.GetNegotiationContext(ctx, userID)
	if err != nil {
		return nil, err
	}
	if nc == nil {
		return nil, apperrors.NotFound(fmt.Sprintf("no active proposal for user %d", userID))
	}
	return s.getProposal(ctx, nc.ActiveProposalUID)
}

func (s *service) getProposal(ctx context.Context, uid string) (*store.Proposal, error) {
	proposal, err := s.store.GetProposal(ctx, &store.FindProposal{UID: &uid})
	if err != nil {
		return nil, err
	}
	if proposal == nil {
		return nil, apperrors.NotFound(fmt.Sprintf("proposal %s not found", uid))
	}
	return proposal, nil
}

// validSlot checks a parsed counter slot against the same bounds Propose
// enforces.
func (s *service) validSlot(slot *intent.ParsedSlot) error {
	if slot.StartUnit < 0 || slot.EndUnit > s.cfg.UnitsPerDay || slot.StartUnit >= slot.EndUnit {
		return apperrors.Invalidf("invalid slot [%d, %d)", slot.StartUnit, slot.EndUnit)
	}
	if slot.EndUnit-slot.StartUnit < s.cfg.MinSessionUnits {
		return apperrors.Invalidf("slot shorter than minimum session length of %d units", s.cfg.MinSessionUnits)
	}
	if _, err := time.Parse(time.DateOnly, slot.Date); err != nil {
		return apperrors.Invalidf("invalid date %q, want YYYY-MM-DD", slot.Date)
	}
	return nil
}

func (s *service) transition(ctx context.Context, transition *store.TransitionProposal) (*store.Proposal, error) {
	var updated *store.Proposal
	err := s.retry.Do(ctx, "transition proposal", func(ctx context.Context) error {
		var err error
		updated, err = s.store.TransitionProposal(ctx, transition)
		return err
	})
	return updated, err
}

func (s *service) pointContextAt(ctx context.Context, userID int32, proposalUID string, now time.Time) error {
	return s.retry.Do(ctx, "upsert negotiation context", func(ctx context.Context) error {
		_, err := s.store.UpsertNegotiationContext(ctx, &store.NegotiationContext{
			UserID:            userID,
			ActiveProposalUID: proposalUID,
			UpdatedTs:         now.Unix(),
		})
		return err
	})
}

func (s *service) clearContext(ctx context.Context, userID int32) {
	if err := s.store.DeleteNegotiationContext(ctx, userID); err != nil {
		s.logger.Warn("failed to clear negotiation context", slog.Int("user", int(userID)), slog.Any("error", err))
	}
}

func (s *service) clearContextIfPointingAt(ctx context.Context, userID int32, proposalUID string) {
	nc, err := s.store.GetNegotiationContext(ctx, userID)
	if err != nil || nc == nil {
		return
	}
	if nc.ActiveProposalUID == proposalUID {
		s.clearContext(ctx, userID)
	}
}

func (s *service) notify(ctx context.Context, userID int32, message string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, userID, message)
}

func slotLabel(startUnit, endUnit int32) string {
	return fmt.Sprintf("%02d:00-%02d:00", startUnit, endUnit)
}
