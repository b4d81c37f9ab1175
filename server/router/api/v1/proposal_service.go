package v1

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "github.com/hrygo/spotmatch/internal/errors"
	"github.com/hrygo/spotmatch/server/internal/observability"
	"github.com/hrygo/spotmatch/server/service/negotiation"
	"github.com/hrygo/spotmatch/store"
)

// ProposalPayload is the wire form of a proposal.
type ProposalPayload struct {
	UID               string  `json:"uid"`
	ProposerID        int32   `json:"proposer_id"`
	RecipientID       int32   `json:"recipient_id"`
	Date              string  `json:"date"`
	StartUnit         int32   `json:"start_unit"`
	EndUnit           int32   `json:"end_unit"`
	Status            string  `json:"status"`
	Message           string  `json:"message,omitempty"`
	ParentProposalUID *string `json:"parent_proposal_uid,omitempty"`
	SessionUID        *string `json:"session_uid,omitempty"`
	CreatedTs         int64   `json:"created_ts"`
	ExpiresTs         int64   `json:"expires_ts"`
}

// CreateProposalRequest is the body of POST /api/v1/proposals.
type CreateProposalRequest struct {
	ProposerID  int32  `json:"proposer_id"`
	RecipientID int32  `json:"recipient_id"`
	Date        string `json:"date"`
	StartUnit   int32  `json:"start_unit"`
	EndUnit     int32  `json:"end_unit"`
	Message     string `json:"message,omitempty"`
}

// PostMessageRequest is the body of POST /api/v1/messages: a free-text
// response from user_id to their active proposal.
type PostMessageRequest struct {
	UserID int32  `json:"user_id"`
	Text   string `json:"text"`
}

// MessageOutcomePayload reports what a message did.
type MessageOutcomePayload struct {
	Intent          string                  `json:"intent"`
	Proposal        *ProposalPayload        `json:"proposal,omitempty"`
	CounterProposal *ProposalPayload        `json:"counter_proposal,omitempty"`
	Session         *WorkoutSessionPayload  `json:"session,omitempty"`
	Reply           string                  `json:"reply,omitempty"`
}

// CreateProposal handles POST /api/v1/proposals.
func (s *APIV1Service) CreateProposal(c echo.Context) error {
	var body CreateProposalRequest
	if err := c.Bind(&body); err != nil {
		return jsonError(c, apperrors.InvalidArgument("malformed request body"))
	}

	proposal, err := s.NegotiationService.Propose(c.Request().Context(), &negotiation.ProposeRequest{
		ProposerID:  body.ProposerID,
		RecipientID: body.RecipientID,
		Date:        body.Date,
		StartUnit:   body.StartUnit,
		EndUnit:     body.EndUnit,
		Message:     body.Message,
	})
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusCreated, toProposalPayload(proposal))
}

// GetProposal handles GET /api/v1/proposals/:uid. The response includes the
// counter-proposal chain, newest first.
func (s *APIV1Service) GetProposal(c echo.Context) error {
	uid := c.Param("uid")
	chain, err := s.NegotiationService.ListProposalChain(c.Request().Context(), uid)
	if err != nil {
		return jsonError(c, err)
	}

	payload := make([]ProposalPayload, 0, len(chain))
	for _, proposal := range chain {
		payload = append(payload, toProposalPayload(proposal))
	}
	return c.JSON(http.StatusOK, map[string]any{
		"proposal": payload[0],
		"chain":    payload,
	})
}

// PostMessage handles POST /api/v1/messages.
func (s *APIV1Service) PostMessage(c echo.Context) error {
	var body PostMessageRequest
	if err := c.Bind(&body); err != nil {
		return jsonError(c, apperrors.InvalidArgument("malformed request body"))
	}
	if body.UserID <= 0 || body.Text == "" {
		return jsonError(c, apperrors.InvalidArgument("user_id and text are required"))
	}

	reqCtx := observability.NewRequestContext(slog.Default(), body.UserID)
	ctx := observability.WithRequestContext(c.Request().Context(), reqCtx)

	outcome, err := s.NegotiationService.Respond(ctx, body.UserID, body.Text)
	if err != nil {
		reqCtx.Error("message handling failed", err,
			slog.String(observability.LogFieldErrorCode, string(apperrors.GetCodeFromError(err, ""))))
		return jsonError(c, err)
	}
	reqCtx.Info("message handled",
		slog.String(observability.LogFieldIntent, string(outcome.Intent.Type)),
		slog.Int(observability.LogFieldMessageLen, len(body.Text)),
		slog.Int64(observability.LogFieldDuration, reqCtx.DurationMs()))

	payload := MessageOutcomePayload{
		Intent: string(outcome.Intent.Type),
		Reply:  outcome.Reply,
	}
	if outcome.Proposal != nil {
		proposal := toProposalPayload(outcome.Proposal)
		payload.Proposal = &proposal
	}
	if outcome.CounterProposal != nil {
		counter := toProposalPayload(outcome.CounterProposal)
		payload.CounterProposal = &counter
	}
	if outcome.Session != nil {
		session := toSessionPayload(outcome.Session)
		payload.Session = &session
	}
	return c.JSON(http.StatusOK, payload)
}

func toProposalPayload(proposal *store.Proposal) ProposalPayload {
	return ProposalPayload{
		UID:               proposal.UID,
		ProposerID:        proposal.ProposerID,
		RecipientID:       proposal.RecipientID,
		Date:              proposal.Date,
		StartUnit:         proposal.StartUnit,
		EndUnit:           proposal.EndUnit,
		Status:            string(proposal.Status),
		Message:           proposal.Message,
		ParentProposalUID: proposal.ParentProposalUID,
		SessionUID:        proposal.SessionUID,
		CreatedTs:         proposal.CreatedTs,
		ExpiresTs:         proposal.ExpiresTs,
	}
}
