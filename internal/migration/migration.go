package migration

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/povarna/generative-ai-agents/agent-fwk/internal/models"
	"gopkg.in/yaml.v3"
)

const defaultFilePattern = "**/*.go"

// Step is a regex rewrite applied to every file matching FilePattern.
// Replace uses regexp expansion syntax (${1}). Patterns run in multi-line
// mode.
type Step struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	FilePattern string `yaml:"file_pattern"`
	Search      string `yaml:"search"`
	Replace     string `yaml:"replace"`
	Required    bool   `yaml:"required"`

	re *regexp.Regexp
}

// UnmarshalYAML defaults Required to true.
func (s *Step) UnmarshalYAML(value *yaml.Node) error {
	type rawStep Step
	raw := rawStep{Required: true}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*s = Step(raw)
	return nil
}

func (s *Step) compile() error {
	if s.Name == "" {
		return fmt.Errorf("migration step without name")
	}
	if s.FilePattern == "" {
		s.FilePattern = defaultFilePattern
	}
	if !doublestar.ValidatePattern(s.FilePattern) {
		return fmt.Errorf("step %s: invalid file pattern %q", s.Name, s.FilePattern)
	}
	re, err := regexp.Compile("(?m)" + s.Search)
	if err != nil {
		return fmt.Errorf("step %s: invalid search pattern: %w", s.Name, err)
	}
	s.re = re
	return nil
}

func (s Step) info() models.StepInfo {
	return models.StepInfo{
		Name:        s.Name,
		Description: s.Description,
		FilePattern: s.FilePattern,
		Required:    s.Required,
	}
}

// Migration moves agent code from one framework version to the next.
type Migration struct {
	From            string   `yaml:"from_version"`
	To              string   `yaml:"to_version"`
	BreakingChanges []string `yaml:"breaking_changes"`
	Steps           []Step   `yaml:"steps"`
	Changelog       string   `yaml:"changelog"`

	from *semver.Version
	to   *semver.Version
}

func (m *Migration) compile() error {
	from, err := semver.NewVersion(m.From)
	if err != nil {
		return fmt.Errorf("migration %s -> %s: invalid from version: %w", m.From, m.To, err)
	}
	to, err := semver.NewVersion(m.To)
	if err != nil {
		return fmt.Errorf("migration %s -> %s: invalid to version: %w", m.From, m.To, err)
	}
	if !to.GreaterThan(from) {
		return fmt.Errorf("migration %s -> %s: target must be newer", m.From, m.To)
	}
	m.from, m.to = from, to
	m.From, m.To = from.String(), to.String()

	for i := range m.Steps {
		if err := m.Steps[i].compile(); err != nil {
			return fmt.Errorf("migration %s -> %s: %w", m.From, m.To, err)
		}
	}
	return nil
}

// Plan is the ordered list of migrations between two versions.
type Plan struct {
	From string
	To   string
	Hops []Migration
}

func (p Plan) Steps() []Step {
	var steps []Step
	for _, hop := range p.Hops {
		steps = append(steps, hop.Steps...)
	}
	return steps
}

func (p Plan) BreakingChanges() []string {
	var changes []string
	for _, hop := range p.Hops {
		changes = append(changes, hop.BreakingChanges...)
	}
	return changes
}

func (p Plan) Changelog() string {
	var parts []string
	for _, hop := range p.Hops {
		if hop.Changelog != "" {
			parts = append(parts, hop.Changelog)
		}
	}
	return strings.Join(parts, "\n")
}

func (p Plan) HasCodeChanges() bool {
	return len(p.Steps()) > 0
}

// Result reports what Apply did.
type Result struct {
	Success           bool                     `json:"success"`
	MigrationRequired bool                     `json:"migration_required"`
	Message           string                   `json:"message,omitempty"`
	Error             string                   `json:"error,omitempty"`
	FailedStep        string                   `json:"failed_step,omitempty"`
	RollbackPerformed bool                     `json:"rollback_performed,omitempty"`
	BreakingChanges   []string                 `json:"breaking_changes,omitempty"`
	Changelog         string                   `json:"changelog,omitempty"`
	ChangesApplied    []models.MigrationChange `json:"changes_applied,omitempty"`
	FailedSteps       []models.MigrationChange `json:"failed_steps,omitempty"`
	BackupPath        string                   `json:"backup_path,omitempty"`
}

// FileDiff is the unified diff a migration would produce for one file.
type FileDiff struct {
	Path string `json:"path"`
	Diff string `json:"diff"`
}

// Canonical strips a leading "v" and normalises to MAJOR.MINOR.PATCH when the
// input parses as a semantic version.
func Canonical(version string) string {
	version = strings.TrimSpace(version)
	if v, err := semver.NewVersion(version); err == nil {
		return v.String()
	}
	return strings.TrimPrefix(version, "v")
}
