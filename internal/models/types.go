package models

import (
	"time"
)

type AgentStatus string

const (
	StatusHealthy   AgentStatus = "healthy"
	StatusDegraded  AgentStatus = "degraded"
	StatusUnhealthy AgentStatus = "unhealthy"
)

// Health response served by / and /healthz
type HealthResponse struct {
	Status           AgentStatus `json:"status" description:"Agent health status"`
	AgentName        string      `json:"agent_name" description:"Human readable agent name"`
	AgentSlug        string      `json:"agent_slug" description:"URL-safe agent identifier"`
	Version          string      `json:"version" description:"Agent version"`
	FrameworkVersion string      `json:"framework_version" description:"Framework version"`
	Timestamp        time.Time   `json:"timestamp"`
	UptimeSeconds    float64     `json:"uptime_seconds"`
}

// Input message

type ChatRequest struct {
	Message        string         `json:"message" validate:"required" description:"User message"`
	Context        map[string]any `json:"context,omitempty" description:"Optional context for the conversation"`
	UserID         *string        `json:"user_id,omitempty" description:"Optional user identifier"`
	ConversationID *string        `json:"conversation_id,omitempty" description:"Optional conversation identifier"`
}

type ChatResponse struct {
	Response         string         `json:"response" description:"Agent response message"`
	AgentName        string         `json:"agent_name" description:"Name of the responding agent"`
	Timestamp        time.Time      `json:"timestamp"`
	Context          map[string]any `json:"context" description:"Response context and metadata"`
	ProcessingTimeMs float64        `json:"processing_time_ms" description:"Processing time in milliseconds"`
}

type AgentCapability struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description,omitempty"`
	Enabled     bool   `json:"enabled"`
}

// Detailed status served by /status
type AgentStatusResponse struct {
	AgentName        string            `json:"agent_name"`
	AgentSlug        string            `json:"agent_slug"`
	Status           AgentStatus       `json:"status"`
	Port             int               `json:"port"`
	Capabilities     []AgentCapability `json:"capabilities"`
	Version          string            `json:"version"`
	FrameworkVersion string            `json:"framework_version"`
	Description      string            `json:"description"`
	UptimeSeconds    float64           `json:"uptime_seconds"`
	MemoryUsageMB    *float64          `json:"memory_usage_mb,omitempty"`
	LastRequest      *time.Time        `json:"last_request,omitempty"`
	RequestCount     int64             `json:"request_count"`
}

// Framework management

type FrameworkVersion struct {
	Tag          string `json:"tag" description:"Git tag (e.g. v1.2.0)"`
	Version      string `json:"version" description:"Semantic version (e.g. 1.2.0)"`
	ReleaseDate  string `json:"release_date,omitempty"`
	Changelog    string `json:"changelog"`
	IsPrerelease bool   `json:"is_prerelease"`
}

type VersionInfo struct {
	CurrentVersion   string `json:"current_version"`
	FrameworkVersion string `json:"framework_version"`
	AgentVersion     string `json:"agent_version"`
}

type TestResult struct {
	Success   bool      `json:"success"`
	Command   string    `json:"command,omitempty"`
	ExitCode  int       `json:"exit_code"`
	Stdout    string    `json:"stdout,omitempty"`
	Stderr    string    `json:"stderr,omitempty"`
	Message   string    `json:"message,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type MigrationChange struct {
	Step        string `json:"step"`
	Description string `json:"description"`
	Details     string `json:"details,omitempty"`
	Error       string `json:"error,omitempty"`
}

type UpdateResult struct {
	Success           bool              `json:"success"`
	FromVersion       string            `json:"from_version"`
	ToVersion         string            `json:"to_version"`
	UpdatedAt         time.Time         `json:"updated_at"`
	TestResults       *TestResult       `json:"test_results,omitempty"`
	RollbackAvailable bool              `json:"rollback_available"`
	ErrorMessage      string            `json:"error_message,omitempty"`
	MigrationApplied  *bool             `json:"migration_applied,omitempty"`
	MigrationChanges  []MigrationChange `json:"migration_changes,omitempty"`
	BreakingChanges   []string          `json:"breaking_changes,omitempty"`
	MigrationMessage  string            `json:"migration_message,omitempty"`
}

type CloneResult struct {
	Success   bool   `json:"success"`
	ClonePath string `json:"clone_path"`
	CloneName string `json:"clone_name"`
}

type StepInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	FilePattern string `json:"file_pattern"`
	Required    bool   `json:"required"`
}

type MigrationInfo struct {
	MigrationAvailable bool       `json:"migration_available"`
	Message            string     `json:"message,omitempty"`
	FromVersion        string     `json:"from_version,omitempty"`
	ToVersion          string     `json:"to_version,omitempty"`
	BreakingChanges    []string   `json:"breaking_changes,omitempty"`
	MigrationSteps     []StepInfo `json:"migration_steps,omitempty"`
	Changelog          string     `json:"changelog,omitempty"`
	HasCodeChanges     bool       `json:"has_code_changes"`
}

type ChangelogEntry struct {
	Version            string   `json:"version"`
	Tag                string   `json:"tag"`
	HasBreakingChanges bool     `json:"has_breaking_changes"`
	BreakingChanges    []string `json:"breaking_changes"`
	Changelog          string   `json:"changelog"`
	MigrationSteps     int      `json:"migration_steps"`
}

type ChangelogResponse struct {
	CurrentVersion   string           `json:"current_version"`
	AvailableUpdates []ChangelogEntry `json:"available_updates"`
}
