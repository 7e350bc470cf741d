package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/emicklei/go-restful/v3"
	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	"github.com/povarna/generative-ai-agents/agent-fwk/internal/api/middleware"
	"github.com/povarna/generative-ai-agents/agent-fwk/internal/metrics"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

const DefaultShutdownTimeout = 10 * time.Second

// Lifecycle is implemented by the agent: Start runs before the listener
// accepts traffic and Stop after it has drained.
type Lifecycle interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

type ServerConfig struct {
	Addr            string
	AdminAddr       string
	CORSOrigins     []string
	ShutdownTimeout time.Duration
}

type Server struct {
	lifecycle       Lifecycle
	http            *http.Server
	admin           *http.Server
	shutdownTimeout time.Duration
	logger          *zerolog.Logger
}

// NewContainer builds the agent listener's container: the ten agent routes
// behind logging, panic recovery and, when m is set, request metrics.
func NewContainer(handler *Handler, m *metrics.Metrics, logger *zerolog.Logger) *restful.Container {
	container := restful.NewContainer()
	container.Filter(middleware.Logger(logger))
	container.Filter(middleware.RecoverPanic(logger))
	if m != nil {
		container.Filter(m.Filter)
	}
	RegisterRoutes(container, handler)
	return container
}

// NewAdminContainer serves /metrics and the OpenAPI document of the agent
// container on a separate listener.
func NewAdminContainer(agentContainer *restful.Container, m *metrics.Metrics) *restful.Container {
	admin := restful.NewContainer()
	admin.Add(restfulspec.NewOpenAPIService(restfulspec.Config{
		WebServices: agentContainer.RegisteredWebServices(),
		APIPath:     "/apidocs.json",
	}))
	if m != nil {
		admin.Handle("/metrics", m.Handler())
	}
	return admin
}

func CORSHandler(origins []string, next http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(next)
}

func NewServer(cfg ServerConfig, lifecycle Lifecycle, agentContainer *restful.Container, m *metrics.Metrics, logger *zerolog.Logger) *Server {
	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = DefaultShutdownTimeout
	}

	s := &Server{
		lifecycle: lifecycle,
		http: &http.Server{
			Addr:              cfg.Addr,
			Handler:           CORSHandler(cfg.CORSOrigins, agentContainer),
			ReadHeaderTimeout: 10 * time.Second,
		},
		shutdownTimeout: timeout,
		logger:          logger,
	}

	if cfg.AdminAddr != "" {
		s.admin = &http.Server{
			Addr:              cfg.AdminAddr,
			Handler:           NewAdminContainer(agentContainer, m),
			ReadHeaderTimeout: 10 * time.Second,
		}
	}
	return s
}

// Run starts the agent, serves until ctx is cancelled or a listener fails,
// then drains connections and stops the agent.
func (s *Server) Run(ctx context.Context) error {
	if err := s.lifecycle.Start(ctx); err != nil {
		return err
	}

	errCh := make(chan error, 2)
	serve := func(name string, srv *http.Server) {
		s.logger.Info().Str("address", srv.Addr).Str("listener", name).Msg("Starting listener")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("%s listener failed: %w", name, err)
		}
	}

	go serve("agent", s.http)
	if s.admin != nil {
		go serve("admin", s.admin)
	}

	var runErr error
	select {
	case <-ctx.Done():
		s.logger.Info().Msg("Shutdown signal received")
	case runErr = <-errCh:
		s.logger.Error().Err(runErr).Msg("Listener stopped unexpectedly")
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn().Err(err).Msg("Agent listener did not drain cleanly")
	}
	if s.admin != nil {
		if err := s.admin.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn().Err(err).Msg("Admin listener did not drain cleanly")
		}
	}

	if err := s.lifecycle.Stop(shutdownCtx); err != nil {
		return errors.Join(runErr, err)
	}
	return runErr
}
