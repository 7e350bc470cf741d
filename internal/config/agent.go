package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gosimple/slug"
	"gopkg.in/yaml.v3"
)

const (
	DefaultFrameworkModule = "github.com/povarna/generative-ai-agents/agent-fwk"
	DefaultFrameworkOwner  = "povarna"
	DefaultFrameworkRepo   = "agent-fwk"

	defaultAgentConfigPath = "configs/agent.yaml"
)

// AgentConfig describes a single deployable agent.
type AgentConfig struct {
	Name             string          `yaml:"name" validate:"required"`
	Slug             string          `yaml:"slug" validate:"required,slug"`
	Description      string          `yaml:"description" validate:"required"`
	Port             int             `yaml:"port" validate:"min=1000,max=65535"`
	Version          string          `yaml:"version" validate:"required,semver"`
	FrameworkVersion string          `yaml:"framework_version" validate:"required"`
	LogLevel         string          `yaml:"log_level" validate:"oneof=trace debug info warn warning error fatal panic disabled"`
	CORSOrigins      []string        `yaml:"cors_origins" validate:"min=1"`
	RequestTimeout   time.Duration   `yaml:"request_timeout" validate:"gt=0"`
	MaxMessageLength int             `yaml:"max_message_length" validate:"min=1"`
	AgentRoot        string          `yaml:"agent_root"`
	Framework        FrameworkConfig `yaml:"framework"`
}

// FrameworkConfig controls where framework releases come from and how an
// agent checkout is reinstalled and tested after a version change.
type FrameworkConfig struct {
	Module         string        `yaml:"module" validate:"required"`
	Owner          string        `yaml:"owner" validate:"required"`
	Repo           string        `yaml:"repo" validate:"required"`
	GitHubToken    string        `yaml:"-"`
	InstallCommand []string      `yaml:"install_command"`
	TestCommand    []string      `yaml:"test_command"`
	MigrationsPath string        `yaml:"migrations_path"`
	CacheTTL       time.Duration `yaml:"cache_ttl"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator with the custom "slug" rule registered.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
			return slug.IsSlug(fl.Field().String())
		})
	})
	return validate
}

// DefaultAgentConfig returns the framework defaults. Name, description and
// port still have to be provided by the agent.
func DefaultAgentConfig() AgentConfig {
	return AgentConfig{
		Version:          "1.0.0",
		FrameworkVersion: "1.0.0",
		LogLevel:         "info",
		CORSOrigins:      []string{"*"},
		RequestTimeout:   30 * time.Second,
		MaxMessageLength: 10000,
		Framework: FrameworkConfig{
			Module:         DefaultFrameworkModule,
			Owner:          DefaultFrameworkOwner,
			Repo:           DefaultFrameworkRepo,
			InstallCommand: []string{"go", "mod", "download"},
			TestCommand:    []string{"go", "test", "./..."},
			MigrationsPath: "migrations.yaml",
			CacheTTL:       5 * time.Minute,
		},
	}
}

// LoadAgentConfig layers the YAML file at AGENT_CONFIG_PATH (optional) and
// the environment on top of base, fills defaults and validates the result.
func LoadAgentConfig(base AgentConfig) (*AgentConfig, error) {
	cfg := base

	path := getEnv("AGENT_CONFIG_PATH", defaultAgentConfigPath)
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse agent config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		// file is optional
	default:
		return nil, fmt.Errorf("failed to read agent config %s: %w", path, err)
	}

	cfg.ApplyEnv()
	if err := cfg.ApplyDefaults(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ApplyEnv overrides fields with the AGENT_*, LOG_LEVEL, CORS_ORIGINS and
// FRAMEWORK_* environment variables that are set.
func (c *AgentConfig) ApplyEnv() {
	c.Name = getEnv("AGENT_NAME", c.Name)
	c.Slug = getEnv("AGENT_SLUG", c.Slug)
	c.Description = getEnv("AGENT_DESCRIPTION", c.Description)
	c.Port = getEnvInt("AGENT_PORT", c.Port)
	c.Version = getEnv("AGENT_VERSION", c.Version)
	c.FrameworkVersion = getEnv("FRAMEWORK_VERSION", c.FrameworkVersion)
	c.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", c.LogLevel))
	if origins := getEnvList("CORS_ORIGINS"); len(origins) > 0 {
		c.CORSOrigins = origins
	}
	c.RequestTimeout = getEnvDuration("REQUEST_TIMEOUT", c.RequestTimeout)
	c.MaxMessageLength = getEnvInt("MAX_MESSAGE_LENGTH", c.MaxMessageLength)
	c.AgentRoot = getEnv("AGENT_ROOT", c.AgentRoot)

	c.Framework.Module = getEnv("FRAMEWORK_MODULE", c.Framework.Module)
	if repo := os.Getenv("FRAMEWORK_REPO"); repo != "" {
		if owner, name, ok := strings.Cut(repo, "/"); ok {
			c.Framework.Owner, c.Framework.Repo = owner, name
		}
	}
	c.Framework.GitHubToken = getEnv("GITHUB_TOKEN", c.Framework.GitHubToken)
	c.Framework.MigrationsPath = getEnv("MIGRATIONS_PATH", c.Framework.MigrationsPath)
	if cmd := strings.Fields(os.Getenv("FRAMEWORK_INSTALL_COMMAND")); len(cmd) > 0 {
		c.Framework.InstallCommand = cmd
	}
	if cmd := strings.Fields(os.Getenv("FRAMEWORK_TEST_COMMAND")); len(cmd) > 0 {
		c.Framework.TestCommand = cmd
	}
}

// ApplyDefaults fills every zero value with its framework default. The slug
// is derived from the name when missing and the agent root resolves to the
// working directory.
func (c *AgentConfig) ApplyDefaults() error {
	def := DefaultAgentConfig()

	if c.Slug == "" && c.Name != "" {
		c.Slug = slug.Make(c.Name)
	}
	if c.Version == "" {
		c.Version = def.Version
	}
	if c.FrameworkVersion == "" {
		c.FrameworkVersion = def.FrameworkVersion
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if len(c.CORSOrigins) == 0 {
		c.CORSOrigins = def.CORSOrigins
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = def.RequestTimeout
	}
	if c.MaxMessageLength == 0 {
		c.MaxMessageLength = def.MaxMessageLength
	}

	fw := &c.Framework
	if fw.Module == "" {
		fw.Module = def.Framework.Module
	}
	if fw.Owner == "" {
		fw.Owner = def.Framework.Owner
	}
	if fw.Repo == "" {
		fw.Repo = def.Framework.Repo
	}
	if len(fw.InstallCommand) == 0 {
		fw.InstallCommand = def.Framework.InstallCommand
	}
	if len(fw.TestCommand) == 0 {
		fw.TestCommand = def.Framework.TestCommand
	}
	if fw.MigrationsPath == "" {
		fw.MigrationsPath = def.Framework.MigrationsPath
	}
	if fw.CacheTTL == 0 {
		fw.CacheTTL = def.Framework.CacheTTL
	}

	if c.AgentRoot == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to resolve agent root: %w", err)
		}
		c.AgentRoot = wd
	}
	root, err := filepath.Abs(c.AgentRoot)
	if err != nil {
		return fmt.Errorf("failed to resolve agent root: %w", err)
	}
	c.AgentRoot = root

	return nil
}

func (c *AgentConfig) Validate() error {
	if err := Validator().Struct(c); err != nil {
		return fmt.Errorf("invalid agent config: %w", err)
	}
	return nil
}
