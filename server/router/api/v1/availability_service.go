package v1

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	apperrors "github.com/hrygo/spotmatch/internal/errors"
	"github.com/hrygo/spotmatch/server/service/matching"
	"github.com/hrygo/spotmatch/store"
)

// AvailabilitySlotPayload is the wire form of one weekly availability slot.
type AvailabilitySlotPayload struct {
	Weekday   int32 `json:"weekday"`
	StartUnit int32 `json:"start_unit"`
	EndUnit   int32 `json:"end_unit"`
}

// AvailabilityResponse carries a user's weekly availability.
type AvailabilityResponse struct {
	UserID int32                     `json:"user_id"`
	Slots  []AvailabilitySlotPayload `json:"slots"`
}

// WeeklyPlanPayload is the wire form of one ranked twice-weekly plan.
type WeeklyPlanPayload struct {
	First  SessionCandidatePayload `json:"first"`
	Second SessionCandidatePayload `json:"second"`
	DayGap int32                   `json:"day_gap"`
	Score  int32                   `json:"score"`
}

// SessionCandidatePayload is the wire form of one candidate session.
type SessionCandidatePayload struct {
	Weekday   int32 `json:"weekday"`
	StartUnit int32 `json:"start_unit"`
	EndUnit   int32 `json:"end_unit"`
}

// GetAvailability handles GET /api/v1/users/:id/availability.
func (s *APIV1Service) GetAvailability(c echo.Context) error {
	userID, err := pathUserID(c)
	if err != nil {
		return jsonError(c, err)
	}

	slots, err := s.MatchingService.GetAvailability(c.Request().Context(), userID)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, toAvailabilityResponse(userID, slots))
}

// SetAvailability handles PUT /api/v1/users/:id/availability. The payload
// replaces the user's schedule wholesale.
func (s *APIV1Service) SetAvailability(c echo.Context) error {
	userID, err := pathUserID(c)
	if err != nil {
		return jsonError(c, err)
	}

	var body struct {
		Slots []AvailabilitySlotPayload `json:"slots"`
	}
	if err := c.Bind(&body); err != nil {
		return jsonError(c, apperrors.InvalidArgument("malformed request body"))
	}

	slots := make([]*store.AvailabilitySlot, 0, len(body.Slots))
	for _, payload := range body.Slots {
		slots = append(slots, &store.AvailabilitySlot{
			UserID:    userID,
			Weekday:   store.Weekday(payload.Weekday),
			StartUnit: payload.StartUnit,
			EndUnit:   payload.EndUnit,
		})
	}

	saved, err := s.MatchingService.SetAvailability(c.Request().Context(), userID, slots)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, toAvailabilityResponse(userID, saved))
}

// GetPlans handles GET /api/v1/users/:id/plans?partner=<id>.
func (s *APIV1Service) GetPlans(c echo.Context) error {
	userID, err := pathUserID(c)
	if err != nil {
		return jsonError(c, err)
	}
	partnerID, err := queryInt32(c, "partner")
	if err != nil {
		return jsonError(c, err)
	}

	plans, err := s.MatchingService.Plans(c.Request().Context(), userID, partnerID)
	if err != nil {
		return jsonError(c, err)
	}

	payload := make([]WeeklyPlanPayload, 0, len(plans))
	for _, plan := range plans {
		payload = append(payload, WeeklyPlanPayload{
			First:  toCandidatePayload(plan.First),
			Second: toCandidatePayload(plan.Second),
			DayGap: plan.DayGap,
			Score:  plan.Score,
		})
	}
	return c.JSON(http.StatusOK, map[string]any{"plans": payload})
}

func toAvailabilityResponse(userID int32, slots []*store.AvailabilitySlot) AvailabilityResponse {
	response := AvailabilityResponse{UserID: userID, Slots: []AvailabilitySlotPayload{}}
	for _, slot := range slots {
		response.Slots = append(response.Slots, AvailabilitySlotPayload{
			Weekday:   int32(slot.Weekday),
			StartUnit: slot.StartUnit,
			EndUnit:   slot.EndUnit,
		})
	}
	return response
}

func toCandidatePayload(candidate matching.SessionCandidate) SessionCandidatePayload {
	return SessionCandidatePayload{
		Weekday:   int32(candidate.Weekday),
		StartUnit: candidate.StartUnit,
		EndUnit:   candidate.EndUnit(),
	}
}

func pathUserID(c echo.Context) (int32, error) {
	return parseInt32(c.Param("id"), "user id")
}

func queryInt32(c echo.Context, name string) (int32, error) {
	value := c.QueryParam(name)
	if value == "" {
		return 0, apperrors.Invalidf("missing query parameter %q", name)
	}
	return parseInt32(value, name)
}

func parseInt32(value, label string) (int32, error) {
	parsed, err := strconv.ParseInt(value, 10, 32)
	if err != nil || parsed <= 0 {
		return 0, apperrors.Invalidf("invalid %s %q", label, value)
	}
	return int32(parsed), nil
}
