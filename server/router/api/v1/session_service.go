package v1

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "github.com/hrygo/spotmatch/internal/errors"
	"github.com/hrygo/spotmatch/server/service/session"
	"github.com/hrygo/spotmatch/store"
)

// WorkoutSessionPayload is the wire form of a confirmed session.
type WorkoutSessionPayload struct {
	UID          string `json:"uid"`
	ParticipantA int32  `json:"participant_a"`
	ParticipantB int32  `json:"participant_b"`
	Date         string `json:"date"`
	StartUnit    int32  `json:"start_unit"`
	EndUnit      int32  `json:"end_unit"`
	Status       string `json:"status"`
	CreatedTs    int64  `json:"created_ts"`
}

// ModifySessionRequest is the body of POST /api/v1/sessions/:uid/modify.
type ModifySessionRequest struct {
	UserID    int32  `json:"user_id"`
	Date      string `json:"date"`
	StartUnit int32  `json:"start_unit"`
	EndUnit   int32  `json:"end_unit"`
	Message   string `json:"message,omitempty"`
}

type lifecycleRequest struct {
	UserID int32 `json:"user_id"`
}

// GetSession handles GET /api/v1/sessions/:uid.
func (s *APIV1Service) GetSession(c echo.Context) error {
	found, err := s.SessionService.Get(c.Request().Context(), c.Param("uid"))
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, toSessionPayload(found))
}

// ListSessions handles GET /api/v1/users/:id/sessions?status=.
func (s *APIV1Service) ListSessions(c echo.Context) error {
	userID, err := pathUserID(c)
	if err != nil {
		return jsonError(c, err)
	}

	var status *store.SessionStatus
	if raw := c.QueryParam("status"); raw != "" {
		parsed := store.SessionStatus(raw)
		if !parsed.IsValid() {
			return jsonError(c, apperrors.Invalidf("invalid status %q", raw))
		}
		status = &parsed
	}

	sessions, err := s.SessionService.List(c.Request().Context(), userID, status)
	if err != nil {
		return jsonError(c, err)
	}

	payload := make([]WorkoutSessionPayload, 0, len(sessions))
	for _, found := range sessions {
		payload = append(payload, toSessionPayload(found))
	}
	return c.JSON(http.StatusOK, map[string]any{"sessions": payload})
}

// CancelSession handles POST /api/v1/sessions/:uid/cancel.
func (s *APIV1Service) CancelSession(c echo.Context) error {
	return s.lifecycle(c, s.SessionService.Cancel)
}

// CompleteSession handles POST /api/v1/sessions/:uid/complete.
func (s *APIV1Service) CompleteSession(c echo.Context) error {
	return s.lifecycle(c, s.SessionService.Complete)
}

func (s *APIV1Service) lifecycle(c echo.Context, transition func(ctx context.Context, userID int32, uid string) (*store.WorkoutSession, error)) error {
	var body lifecycleRequest
	if err := c.Bind(&body); err != nil {
		return jsonError(c, apperrors.InvalidArgument("malformed request body"))
	}
	if body.UserID <= 0 {
		return jsonError(c, apperrors.InvalidArgument("user_id is required"))
	}

	updated, err := transition(c.Request().Context(), body.UserID, c.Param("uid"))
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, toSessionPayload(updated))
}

// ModifySession handles POST /api/v1/sessions/:uid/modify: cancel plus a
// replacement proposal to the other participant.
func (s *APIV1Service) ModifySession(c echo.Context) error {
	var body ModifySessionRequest
	if err := c.Bind(&body); err != nil {
		return jsonError(c, apperrors.InvalidArgument("malformed request body"))
	}
	if body.UserID <= 0 {
		return jsonError(c, apperrors.InvalidArgument("user_id is required"))
	}

	outcome, err := s.SessionService.RequestModification(c.Request().Context(), body.UserID, c.Param("uid"), &session.ModificationRequest{
		Date:      body.Date,
		StartUnit: body.StartUnit,
		EndUnit:   body.EndUnit,
		Message:   body.Message,
	})
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"session":  toSessionPayload(outcome.Session),
		"proposal": toProposalPayload(outcome.Proposal),
	})
}

func toSessionPayload(found *store.WorkoutSession) WorkoutSessionPayload {
	return WorkoutSessionPayload{
		UID:          found.UID,
		ParticipantA: found.ParticipantA,
		ParticipantB: found.ParticipantB,
		Date:         found.Date,
		StartUnit:    found.StartUnit,
		EndUnit:      found.EndUnit,
		Status:       string(found.Status),
		CreatedTs:    found.CreatedTs,
	}
}
