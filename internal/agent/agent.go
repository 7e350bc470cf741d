package agent

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/povarna/generative-ai-agents/agent-fwk/internal/config"
	"github.com/povarna/generative-ai-agents/agent-fwk/internal/models"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v4/process"
)

var ErrInvalidRequest = errors.New("invalid request")

// ProcessingError wraps a failure returned by the Processor.
type ProcessingError struct {
	Err error
}

func (e *ProcessingError) Error() string { return "Processing error: " + e.Err.Error() }
func (e *ProcessingError) Unwrap() error { return e.Err }

func BaseCapabilities() []models.AgentCapability {
	return []models.AgentCapability{
		{Name: "chat", Version: "1.0.0", Description: "Basic conversational capabilities", Enabled: true},
		{Name: "health_check", Version: "1.0.0", Description: "Health monitoring and status reporting", Enabled: true},
		{Name: "status_reporting", Version: "1.0.0", Description: "Detailed agent introspection", Enabled: true},
		{Name: "framework_management", Version: "1.1.0", Description: "Self-update and framework version management", Enabled: true},
		{Name: "test_cloning", Version: "1.1.0", Description: "Create test clones for safe framework updates", Enabled: true},
	}
}

type Agent struct {
	cfg       *config.AgentConfig
	processor Processor
	logger    *zerolog.Logger
	validate  *validator.Validate

	startedAt    time.Time
	requestCount atomic.Int64
	lastRequest  atomic.Pointer[time.Time]

	mu           sync.RWMutex
	capabilities []models.AgentCapability

	now         func() time.Time
	memoryUsage func() (float64, error)
}

func New(cfg *config.AgentConfig, processor Processor, logger *zerolog.Logger) *Agent {
	a := &Agent{
		cfg:          cfg,
		processor:    processor,
		logger:       logger,
		validate:     config.Validator(),
		capabilities: BaseCapabilities(),
		now:          time.Now,
		memoryUsage:  processRSSMegabytes,
	}
	a.startedAt = a.now()

	if provider, ok := hookTarget(processor).(CapabilityProvider); ok {
		for _, c := range provider.Capabilities() {
			a.AddCapability(c)
		}
	}

	logger.Info().
		Str("agent", cfg.Name).
		Str("slug", cfg.Slug).
		Str("framework_version", cfg.FrameworkVersion).
		Msg("Agent initialized")

	return a
}

func (a *Agent) Config() *config.AgentConfig { return a.cfg }

// AddCapability registers a capability, replacing one with the same name.
func (a *Agent) AddCapability(c models.AgentCapability) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for i := range a.capabilities {
		if a.capabilities[i].Name == c.Name {
			a.capabilities[i] = c
			return
		}
	}
	a.capabilities = append(a.capabilities, c)
}

func (a *Agent) Capabilities() []models.AgentCapability {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]models.AgentCapability(nil), a.capabilities...)
}

func (a *Agent) Chat(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
	if err := a.validate.Var(req.Message, fmt.Sprintf("required,max=%d", a.cfg.MaxMessageLength)); err != nil {
		return nil, fmt.Errorf("%w: message must be between 1 and %d characters", ErrInvalidRequest, a.cfg.MaxMessageLength)
	}

	start := a.now()
	a.requestCount.Add(1)
	a.lastRequest.Store(&start)

	msgContext := req.Context
	if msgContext == nil {
		msgContext = map[string]any{}
	}

	var opts []MessageOption
	if req.UserID != nil {
		opts = append(opts, WithUserID(*req.UserID))
	}
	if req.ConversationID != nil {
		opts = append(opts, WithConversationID(*req.ConversationID))
	}

	requestID := fmt.Sprintf("%s-%s", a.cfg.Slug, uuid.NewString())
	a.logger.Debug().Str("request_id", requestID).Int("message_length", len(req.Message)).Msg("Processing chat message")

	reply, err := a.processor.ProcessMessage(ctx, req.Message, msgContext, opts...)
	if err != nil {
		a.logger.Error().Err(err).Str("request_id", requestID).Msg("Chat processing failed")
		return nil, &ProcessingError{Err: err}
	}

	end := a.now()
	return &models.ChatResponse{
		Response:  reply,
		AgentName: a.cfg.Name,
		Timestamp: end,
		Context: map[string]any{
			"original_message": req.Message,
			"processed_at":     end.Format(time.RFC3339Nano),
			"request_id":       requestID,
		},
		ProcessingTimeMs: float64(end.Sub(start).Microseconds()) / 1000,
	}, nil
}

func (a *Agent) healthStatus(ctx context.Context) models.AgentStatus {
	if checker, ok := hookTarget(a.processor).(HealthChecker); ok {
		return checker.HealthCheck(ctx)
	}
	return models.StatusHealthy
}

func (a *Agent) Health(ctx context.Context) models.HealthResponse {
	now := a.now()
	return models.HealthResponse{
		Status:           a.healthStatus(ctx),
		AgentName:        a.cfg.Name,
		AgentSlug:        a.cfg.Slug,
		Version:          a.cfg.Version,
		FrameworkVersion: a.cfg.FrameworkVersion,
		Timestamp:        now,
		UptimeSeconds:    now.Sub(a.startedAt).Seconds(),
	}
}

func (a *Agent) Status(ctx context.Context) models.AgentStatusResponse {
	resp := models.AgentStatusResponse{
		AgentName:        a.cfg.Name,
		AgentSlug:        a.cfg.Slug,
		Status:           a.healthStatus(ctx),
		Port:             a.cfg.Port,
		Capabilities:     a.Capabilities(),
		Version:          a.cfg.Version,
		FrameworkVersion: a.cfg.FrameworkVersion,
		Description:      a.cfg.Description,
		UptimeSeconds:    a.now().Sub(a.startedAt).Seconds(),
		LastRequest:      a.lastRequest.Load(),
		RequestCount:     a.requestCount.Load(),
	}

	if mb, err := a.memoryUsage(); err == nil {
		resp.MemoryUsageMB = &mb
	} else {
		a.logger.Debug().Err(err).Msg("Memory usage unavailable")
	}

	return resp
}

// Start runs the processor's startup hook, if any.
func (a *Agent) Start(ctx context.Context) error {
	a.logger.Info().Str("agent", a.cfg.Name).Msg("Agent starting up")
	if hook, ok := hookTarget(a.processor).(StartupHook); ok {
		if err := hook.OnStartup(ctx); err != nil {
			return fmt.Errorf("startup hook failed: %w", err)
		}
	}
	return nil
}

// Stop runs the processor's shutdown hook, if any.
func (a *Agent) Stop(ctx context.Context) error {
	a.logger.Info().Str("agent", a.cfg.Name).Msg("Agent shutting down")
	if hook, ok := hookTarget(a.processor).(ShutdownHook); ok {
		if err := hook.OnShutdown(ctx); err != nil {
			return fmt.Errorf("shutdown hook failed: %w", err)
		}
	}
	return nil
}

func processRSSMegabytes() (float64, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0, err
	}
	info, err := p.MemoryInfo()
	if err != nil {
		return 0, err
	}
	return float64(info.RSS) / 1024 / 1024, nil
}
