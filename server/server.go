// Package server assembles the HTTP API, background jobs, and their
// lifecycles.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/hrygo/spotmatch/internal/profile"
	"github.com/hrygo/spotmatch/server/ai"
	"github.com/hrygo/spotmatch/server/notifier"
	apiv1 "github.com/hrygo/spotmatch/server/router/api/v1"
	"github.com/hrygo/spotmatch/server/service/intent"
	"github.com/hrygo/spotmatch/server/service/matching"
	"github.com/hrygo/spotmatch/server/service/negotiation"
	"github.com/hrygo/spotmatch/server/service/session"
	"github.com/hrygo/spotmatch/server/timezone"
	"github.com/hrygo/spotmatch/store"
)

type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	echoServer *echo.Echo
	sweeper    *negotiation.Sweeper
}

func NewServer(ctx context.Context, profile *profile.Profile, st *store.Store) (*Server, error) {
	if err := st.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("migrate store: %w", err)
	}

	echoServer := echo.New()
	echoServer.HideBanner = true
	echoServer.HidePort = true
	echoServer.Use(middleware.Recover())
	echoServer.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI: true, LogStatus: true, LogMethod: true, LogLatency: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			slog.Info("http request",
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency))
			return nil
		},
	}))

	notifierService := notifier.New(notifier.LogSender{})

	var escalator negotiation.Escalator
	if profile.AIEnabled {
		if e := ai.NewEscalator(ai.Config{
			APIKey:  profile.AIAPIKey,
			BaseURL: profile.AIBaseURL,
			Model:   profile.AIModel,
		}); e != nil {
			escalator = e
		}
	}

	location, err := timezone.ParseTimezone(profile.Timezone)
	if err != nil {
		slog.Warn("invalid timezone, using UTC", slog.String("timezone", profile.Timezone))
	}
	classifierConfig := intent.DefaultConfig()
	classifierConfig.Now = timezone.NowIn(location)

	matchingService := matching.NewService(st)
	negotiationService := negotiation.NewService(
		st, intent.NewClassifierWithConfig(classifierConfig), notifierService, escalator, negotiation.DefaultConfig())
	sessionService := session.NewService(st, negotiationService)

	apiService := apiv1.NewAPIV1Service(profile, st, matchingService, negotiationService, sessionService)
	apiService.Register(echoServer)

	echoServer.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "Service ready.")
	})

	return &Server{
		Profile:    profile,
		Store:      st,
		echoServer: echoServer,
		sweeper:    negotiation.NewSweeper(negotiationService, negotiation.DefaultSweepInterval),
	}, nil
}

// Start runs the HTTP listener and the proposal sweeper until ctx is
// canceled.
func (s *Server) Start(ctx context.Context) error {
	s.sweeper.Start(ctx)

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
		slog.Info("server listening", slog.String("address", address))
		if err := s.echoServer.Start(address); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		s.shutdown()
		return nil
	})
	return group.Wait()
}

func (s *Server) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.sweeper.Stop()
	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shut down http server", slog.Any("error", err))
	}
	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close store", slog.Any("error", err))
	}
	slog.Info("server stopped")
}
