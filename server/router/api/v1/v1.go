// Package v1 exposes the JSON API for availability, matching, proposals,
// messages, and sessions.
package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/spotmatch/internal/profile"
	apperrors "github.com/hrygo/spotmatch/internal/errors"
	"github.com/hrygo/spotmatch/server/middleware"
	"github.com/hrygo/spotmatch/server/service/matching"
	"github.com/hrygo/spotmatch/server/service/negotiation"
	"github.com/hrygo/spotmatch/server/service/session"
	"github.com/hrygo/spotmatch/store"
)

type APIV1Service struct {
	Profile *profile.Profile
	Store   *store.Store

	MatchingService    matching.Service
	NegotiationService negotiation.Service
	SessionService     session.Service

	rateLimiter *middleware.RateLimiter
}

func NewAPIV1Service(
	profile *profile.Profile,
	st *store.Store,
	matchingService matching.Service,
	negotiationService negotiation.Service,
	sessionService session.Service,
) *APIV1Service {
	return &APIV1Service{
		Profile:            profile,
		Store:              st,
		MatchingService:    matchingService,
		NegotiationService: negotiationService,
		SessionService:     sessionService,
		rateLimiter:        middleware.NewRateLimiter(),
	}
}

// Register mounts all v1 routes on the echo server.
func (s *APIV1Service) Register(echoServer *echo.Echo) {
	group := echoServer.Group("/api/v1", s.rateLimiter.Middleware())

	group.GET("/users/:id/availability", s.GetAvailability)
	group.PUT("/users/:id/availability", s.SetAvailability)
	group.GET("/users/:id/plans", s.GetPlans)
	group.GET("/users/:id/sessions", s.ListSessions)

	group.POST("/proposals", s.CreateProposal)
	group.GET("/proposals/:uid", s.GetProposal)
	group.POST("/messages", s.PostMessage)

	group.GET("/sessions/:uid", s.GetSession)
	group.POST("/sessions/:uid/cancel", s.CancelSession)
	group.POST("/sessions/:uid/complete", s.CompleteSession)
	group.POST("/sessions/:uid/modify", s.ModifySession)

	group.GET("/system/metrics", s.GetSystemMetrics)
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// jsonError translates service errors to HTTP responses. Unrecognized
// errors are reported as internal without leaking details.
func jsonError(c echo.Context, err error) error {
	code := apperrors.GetCodeFromError(err, "")
	switch code {
	case apperrors.ErrCodeInvalidArgument:
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error(), Code: string(code)})
	case apperrors.ErrCodeNotFound:
		return c.JSON(http.StatusNotFound, errorResponse{Error: err.Error(), Code: string(code)})
	case apperrors.ErrCodeConflict:
		return c.JSON(http.StatusConflict, errorResponse{Error: err.Error(), Code: string(code)})
	case apperrors.ErrCodeStoreUnavailable, apperrors.ErrCodeLLMUnavailable:
		return c.JSON(http.StatusServiceUnavailable, errorResponse{Error: err.Error(), Code: string(code)})
	default:
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error", Code: "INTERNAL"})
	}
}
