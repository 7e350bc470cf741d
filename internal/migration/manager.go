package migration

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/otiai10/copy"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/povarna/generative-ai-agents/agent-fwk/internal/models"
	"github.com/rs/zerolog"
)

const BackupDirName = ".migration_backups"

// Files outside the agent's own source that are saved with every migration
// backup when present.
var alwaysBackedUp = []string{"go.mod", "go.sum", "framework.lock"}

type Manager struct {
	root       string
	migrations []Migration
	logger     *zerolog.Logger
	now        func() time.Time
}

// NewManager returns a manager for the agent checkout at root, loaded with
// the built-in migrations.
func NewManager(root string, logger *zerolog.Logger) (*Manager, error) {
	m := &Manager{
		root:   root,
		logger: logger,
		now:    time.Now,
	}
	if err := m.Register(Builtin()...); err != nil {
		return nil, err
	}
	return m, nil
}

// Register adds migrations, replacing any existing one for the same hop.
func (m *Manager) Register(migrations ...Migration) error {
	for _, mig := range migrations {
		if err := mig.compile(); err != nil {
			return err
		}

		replaced := false
		for i := range m.migrations {
			if m.migrations[i].From == mig.From && m.migrations[i].To == mig.To {
				m.migrations[i] = mig
				replaced = true
				break
			}
		}
		if !replaced {
			m.migrations = append(m.migrations, mig)
		}
	}
	return nil
}

// LoadFile registers the migrations in a YAML file. Relative paths resolve
// against the agent root.
func (m *Manager) LoadFile(file string) error {
	if !filepath.IsAbs(file) {
		file = filepath.Join(m.root, file)
	}
	migrations, err := LoadFile(file)
	if err != nil {
		return err
	}
	if len(migrations) > 0 {
		m.logger.Info().Str("path", file).Int("count", len(migrations)).Msg("Loaded extra migrations")
	}
	return m.Register(migrations...)
}

// Find returns the migrations leading from one version to another: the
// exact hop when one is registered, otherwise a chain of hops that never
// overshoots the target.
func (m *Manager) Find(from, to string) (Plan, bool) {
	from, to = Canonical(from), Canonical(to)
	plan := Plan{From: from, To: to}

	for _, mig := range m.migrations {
		if mig.From == from && mig.To == to {
			plan.Hops = []Migration{mig}
			return plan, true
		}
	}

	target, err := semver.NewVersion(to)
	if err != nil {
		return plan, false
	}

	current := from
	for range m.migrations {
		var next *Migration
		for i := range m.migrations {
			mig := &m.migrations[i]
			if mig.From != current || mig.to.GreaterThan(target) {
				continue
			}
			if next == nil || mig.to.GreaterThan(next.to) {
				next = mig
			}
		}
		if next == nil {
			return plan, false
		}

		plan.Hops = append(plan.Hops, *next)
		current = next.To
		if next.to.Equal(target) {
			return plan, true
		}
	}

	return plan, false
}

func (m *Manager) HasBreakingChanges(from, to string) bool {
	plan, ok := m.Find(from, to)
	return ok && plan.HasCodeChanges()
}

func (m *Manager) Info(from, to string) models.MigrationInfo {
	plan, ok := m.Find(from, to)
	if !ok {
		return models.MigrationInfo{
			MigrationAvailable: false,
			Message:            fmt.Sprintf("No migration defined for %s → %s", Canonical(from), Canonical(to)),
		}
	}

	steps := make([]models.StepInfo, 0)
	for _, step := range plan.Steps() {
		steps = append(steps, step.info())
	}

	return models.MigrationInfo{
		MigrationAvailable: true,
		FromVersion:        plan.From,
		ToVersion:          plan.To,
		BreakingChanges:    plan.BreakingChanges(),
		MigrationSteps:     steps,
		Changelog:          plan.Changelog(),
		HasCodeChanges:     plan.HasCodeChanges(),
	}
}

func (m *Manager) Apply(ctx context.Context, from, to string) (*Result, error) {
	plan, ok := m.Find(from, to)
	if !ok {
		return &Result{
			Success: true,
			Message: fmt.Sprintf("No migration needed for %s → %s", Canonical(from), Canonical(to)),
		}, nil
	}

	steps := plan.Steps()
	if len(steps) == 0 {
		return &Result{
			Success:         true,
			Message:         fmt.Sprintf("Version %s has new features but no code changes required", plan.To),
			Changelog:       plan.Changelog(),
			BreakingChanges: plan.BreakingChanges(),
		}, nil
	}

	m.logger.Info().
		Str("from", plan.From).
		Str("to", plan.To).
		Strs("breaking_changes", plan.BreakingChanges()).
		Msg("Applying migration")

	backupPath, err := m.backup(plan, steps)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration backup: %w", err)
	}

	result := &Result{
		Success:           true,
		MigrationRequired: true,
		BreakingChanges:   plan.BreakingChanges(),
		Changelog:         plan.Changelog(),
		BackupPath:        backupPath,
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return m.abort(result, backupPath, step, fmt.Sprintf("Migration failed: %v", err))
		}

		m.logger.Info().Str("step", step.Name).Msg(step.Description)

		details, err := m.applyStep(step)
		if err != nil {
			m.logger.Error().Err(err).Str("step", step.Name).Msg("Migration step failed")
			change := models.MigrationChange{Step: step.Name, Description: step.Description, Error: err.Error()}
			result.FailedSteps = append(result.FailedSteps, change)

			if step.Required {
				return m.abort(result, backupPath, step, fmt.Sprintf("Required migration step failed: %s", step.Description))
			}
			continue
		}

		result.ChangesApplied = append(result.ChangesApplied, models.MigrationChange{
			Step:        step.Name,
			Description: step.Description,
			Details:     details,
		})
	}

	result.Message = fmt.Sprintf("Migration %s → %s completed successfully", plan.From, plan.To)
	m.logger.Info().Int("changes", len(result.ChangesApplied)).Int("failed_optional", len(result.FailedSteps)).Msg("Migration completed")
	return result, nil
}

func (m *Manager) abort(result *Result, backupPath string, step Step, msg string) (*Result, error) {
	result.Success = false
	result.Error = msg
	result.FailedStep = step.Name
	result.Message = ""

	if err := m.Rollback(backupPath); err != nil {
		return result, fmt.Errorf("migration rollback failed: %w", err)
	}
	result.RollbackPerformed = true
	return result, nil
}

// Preview returns the diffs Apply would produce, without touching the
// checkout.
func (m *Manager) Preview(from, to string) ([]FileDiff, error) {
	plan, ok := m.Find(from, to)
	if !ok {
		return nil, nil
	}

	original := map[string]string{}
	current := map[string]string{}
	for _, step := range plan.Steps() {
		files, err := m.match(step.FilePattern)
		if err != nil {
			return nil, err
		}
		for _, rel := range files {
			if _, seen := current[rel]; !seen {
				data, err := os.ReadFile(filepath.Join(m.root, filepath.FromSlash(rel)))
				if err != nil {
					return nil, fmt.Errorf("failed to read %s: %w", rel, err)
				}
				original[rel] = string(data)
				current[rel] = string(data)
			}
			current[rel] = step.re.ReplaceAllString(current[rel], step.Replace)
		}
	}

	paths := make([]string, 0, len(current))
	for rel := range current {
		if current[rel] != original[rel] {
			paths = append(paths, rel)
		}
	}
	sort.Strings(paths)

	diffs := make([]FileDiff, 0, len(paths))
	for _, rel := range paths {
		diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(original[rel]),
			B:        difflib.SplitLines(current[rel]),
			FromFile: "a/" + rel,
			ToFile:   "b/" + rel,
			Context:  3,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to diff %s: %w", rel, err)
		}
		diffs = append(diffs, FileDiff{Path: rel, Diff: diff})
	}
	return diffs, nil
}

func (m *Manager) applyStep(step Step) (string, error) {
	files, err := m.match(step.FilePattern)
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", fmt.Errorf("No files found matching pattern: %s", step.FilePattern)
	}

	var modified []string
	for _, rel := range files {
		abs := filepath.Join(m.root, filepath.FromSlash(rel))
		info, err := os.Stat(abs)
		if err != nil {
			return "", fmt.Errorf("Error applying step: %w", err)
		}
		data, err := os.ReadFile(abs)
		if err != nil {
			return "", fmt.Errorf("Error applying step: %w", err)
		}

		updated := step.re.ReplaceAllString(string(data), step.Replace)
		if updated == string(data) {
			continue
		}
		if err := os.WriteFile(abs, []byte(updated), info.Mode().Perm()); err != nil {
			return "", fmt.Errorf("Error applying step: %w", err)
		}
		modified = append(modified, rel)
	}

	if len(modified) == 0 {
		return "No changes needed (patterns already up to date)", nil
	}
	return "Modified files: " + strings.Join(modified, ", "), nil
}

// match returns the regular files under the root matching pattern, skipping
// hidden directories (backups, VCS metadata) and vendor.
func (m *Manager) match(pattern string) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(m.root), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("invalid file pattern %s: %w", pattern, err)
	}

	files := matches[:0]
	for _, rel := range matches {
		if skipped(rel) {
			continue
		}
		files = append(files, rel)
	}
	sort.Strings(files)
	return files, nil
}

func skipped(rel string) bool {
	dir := path.Dir(rel)
	if dir == "." {
		return false
	}
	for _, part := range strings.Split(dir, "/") {
		if strings.HasPrefix(part, ".") || part == "vendor" {
			return true
		}
	}
	return false
}

func (m *Manager) backup(plan Plan, steps []Step) (string, error) {
	name := fmt.Sprintf("migration_%s_to_%s_%s", plan.From, plan.To, m.now().Format("20060102_150405"))
	backupPath := filepath.Join(m.root, BackupDirName, name)
	if err := os.MkdirAll(backupPath, 0o755); err != nil {
		return "", err
	}

	files := map[string]struct{}{}
	for _, rel := range alwaysBackedUp {
		files[rel] = struct{}{}
	}
	for _, step := range steps {
		matched, err := m.match(step.FilePattern)
		if err != nil {
			return "", err
		}
		for _, rel := range matched {
			files[rel] = struct{}{}
		}
	}

	for rel := range files {
		src := filepath.Join(m.root, filepath.FromSlash(rel))
		if _, err := os.Stat(src); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := copy.Copy(src, filepath.Join(backupPath, filepath.FromSlash(rel))); err != nil {
			return "", fmt.Errorf("failed to back up %s: %w", rel, err)
		}
	}

	m.logger.Info().Str("path", backupPath).Int("files", len(files)).Msg("Created migration backup")
	return backupPath, nil
}

// Rollback copies a migration backup back over the agent root.
func (m *Manager) Rollback(backupPath string) error {
	m.logger.Info().Str("path", backupPath).Msg("Rolling back migration")
	if err := copy.Copy(backupPath, m.root); err != nil {
		m.logger.Error().Err(err).Msg("Rollback failed")
		return err
	}
	m.logger.Info().Msg("Migration rollback completed")
	return nil
}
