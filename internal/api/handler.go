package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/emicklei/go-restful/v3"
	"github.com/povarna/generative-ai-agents/agent-fwk/internal/agent"
	"github.com/povarna/generative-ai-agents/agent-fwk/internal/api/middleware"
	"github.com/povarna/generative-ai-agents/agent-fwk/internal/framework"
	"github.com/povarna/generative-ai-agents/agent-fwk/internal/metrics"
	"github.com/povarna/generative-ai-agents/agent-fwk/internal/models"
	"github.com/rs/zerolog"
)

//go:generate mockgen -destination=mocks/mock_services.go -package=mocks . ChatService,FrameworkService

type ChatService interface {
	Chat(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error)
	Health(ctx context.Context) models.HealthResponse
	Status(ctx context.Context) models.AgentStatusResponse
}

type FrameworkService interface {
	VersionInfo() models.VersionInfo
	AvailableVersions(ctx context.Context) []models.FrameworkVersion
	Update(ctx context.Context, target string, runTests bool) (*models.UpdateResult, error)
	CreateTestClone(ctx context.Context, name string) (*models.CloneResult, error)
	MigrationInfo(target string) (models.MigrationInfo, error)
	Changelog(ctx context.Context) models.ChangelogResponse
}

type Handler struct {
	agent          ChatService
	framework      FrameworkService
	requestTimeout time.Duration
	metrics        *metrics.Metrics
	logger         *zerolog.Logger
}

type HandlerOption func(*Handler)

// WithRequestTimeout bounds the time a single /chat call may take.
func WithRequestTimeout(d time.Duration) HandlerOption {
	return func(h *Handler) { h.requestTimeout = d }
}

func WithMetrics(m *metrics.Metrics) HandlerOption {
	return func(h *Handler) { h.metrics = m }
}

func NewHandler(chat ChatService, fwk FrameworkService, logger *zerolog.Logger, opts ...HandlerOption) *Handler {
	h := &Handler{
		agent:     chat,
		framework: fwk,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) Root(req *restful.Request, resp *restful.Response) {
	_ = resp.WriteHeaderAndEntity(http.StatusOK, h.agent.Health(req.Request.Context()))
}

func (h *Handler) Health(req *restful.Request, resp *restful.Response) {
	health := h.agent.Health(req.Request.Context())

	status := http.StatusOK
	if health.Status == models.StatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	_ = resp.WriteHeaderAndEntity(status, health)
}

func (h *Handler) Status(req *restful.Request, resp *restful.Response) {
	_ = resp.WriteHeaderAndEntity(http.StatusOK, h.agent.Status(req.Request.Context()))
}

func (h *Handler) Chat(req *restful.Request, resp *restful.Response) {
	var chatReq models.ChatRequest
	if err := req.ReadEntity(&chatReq); err != nil {
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	ctx := req.Request.Context()
	if h.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.requestTimeout)
		defer cancel()
	}

	chatResp, err := h.agent.Chat(ctx, chatReq)
	if h.metrics != nil {
		h.metrics.ObserveChat(err)
	}
	if err != nil {
		var procErr *agent.ProcessingError
		switch {
		case errors.Is(err, agent.ErrInvalidRequest):
			middleware.HandleError(resp, err, http.StatusBadRequest)
		case errors.As(err, &procErr):
			middleware.HandleErrorMessage(resp, procErr.Error(), http.StatusInternalServerError)
		default:
			middleware.HandleError(resp, err, http.StatusInternalServerError)
		}
		return
	}

	_ = resp.WriteHeaderAndEntity(http.StatusOK, chatResp)
}

func (h *Handler) FrameworkVersion(req *restful.Request, resp *restful.Response) {
	_ = resp.WriteHeaderAndEntity(http.StatusOK, h.framework.VersionInfo())
}

func (h *Handler) AvailableVersions(req *restful.Request, resp *restful.Response) {
	_ = resp.WriteHeaderAndEntity(http.StatusOK, h.framework.AvailableVersions(req.Request.Context()))
}

func (h *Handler) UpdateFramework(req *restful.Request, resp *restful.Response) {
	target := req.QueryParameter("target_version")
	if target == "" {
		middleware.HandleError(resp, errors.New("target_version is required"), http.StatusBadRequest)
		return
	}

	runTests := true
	if raw := req.QueryParameter("run_tests"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			middleware.HandleError(resp, fmt.Errorf("invalid run_tests value %q", raw), http.StatusBadRequest)
			return
		}
		runTests = parsed
	}

	h.logger.Info().Str("target_version", target).Bool("run_tests", runTests).Msg("Framework update requested")

	// The update rewrites files on disk and must not stop halfway when the
	// client goes away.
	ctx := context.WithoutCancel(req.Request.Context())
	result, err := h.framework.Update(ctx, target, runTests)
	if err != nil {
		h.writeFrameworkError(resp, err)
		return
	}
	if h.metrics != nil {
		h.metrics.ObserveUpdate(result.Success)
	}

	_ = resp.WriteHeaderAndEntity(http.StatusOK, result)
}

func (h *Handler) CloneTest(req *restful.Request, resp *restful.Response) {
	result, err := h.framework.CreateTestClone(req.Request.Context(), req.QueryParameter("clone_name"))
	if err != nil {
		h.writeFrameworkError(resp, err)
		return
	}
	_ = resp.WriteHeaderAndEntity(http.StatusOK, result)
}

func (h *Handler) MigrationInfo(req *restful.Request, resp *restful.Response) {
	target := req.QueryParameter("target_version")
	if target == "" {
		middleware.HandleError(resp, errors.New("target_version is required"), http.StatusBadRequest)
		return
	}

	info, err := h.framework.MigrationInfo(target)
	if err != nil {
		h.writeFrameworkError(resp, err)
		return
	}
	_ = resp.WriteHeaderAndEntity(http.StatusOK, info)
}

func (h *Handler) Changelog(req *restful.Request, resp *restful.Response) {
	_ = resp.WriteHeaderAndEntity(http.StatusOK, h.framework.Changelog(req.Request.Context()))
}

func (h *Handler) writeFrameworkError(resp *restful.Response, err error) {
	switch {
	case errors.Is(err, framework.ErrInvalidVersion), errors.Is(err, framework.ErrInvalidCloneName):
		middleware.HandleError(resp, err, http.StatusBadRequest)
	case errors.Is(err, framework.ErrVersionNotFound):
		middleware.HandleError(resp, err, http.StatusNotFound)
	case errors.Is(err, framework.ErrUpdateInProgress), errors.Is(err, framework.ErrCloneExists):
		middleware.HandleError(resp, err, http.StatusConflict)
	default:
		h.logger.Error().Err(err).Msg("Framework operation failed")
		middleware.HandleError(resp, err, http.StatusInternalServerError)
	}
}
