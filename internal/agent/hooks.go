package agent

import (
	"context"

	"github.com/povarna/generative-ai-agents/agent-fwk/internal/models"
)

// Optional interfaces a Processor may implement to take part in the agent
// lifecycle.

type StartupHook interface {
	OnStartup(ctx context.Context) error
}

type ShutdownHook interface {
	OnShutdown(ctx context.Context) error
}

type HealthChecker interface {
	HealthCheck(ctx context.Context) models.AgentStatus
}

// CapabilityProvider lets a processor advertise extra capabilities on /status.
type CapabilityProvider interface {
	Capabilities() []models.AgentCapability
}

// hookTarget returns the value hooks are looked up on, seeing through
// AdaptLegacy.
func hookTarget(p Processor) any {
	if u, ok := p.(interface{ unwrap() any }); ok {
		return u.unwrap()
	}
	return p
}
