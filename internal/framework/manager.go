package framework

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/gofrs/flock"
	"github.com/otiai10/copy"
	"github.com/povarna/generative-ai-agents/agent-fwk/internal/config"
	"github.com/povarna/generative-ai-agents/agent-fwk/internal/migration"
	"github.com/povarna/generative-ai-agents/agent-fwk/internal/models"
	"github.com/rs/zerolog"
)

const (
	LockFileName   = "framework.lock"
	BackupDirName  = ".framework_backups"
	updateLockName = ".update.lock"

	DefaultVersion = "1.0.0"
	UnknownVersion = "unknown"

	testsFailedMessage = "Tests failed after update, automatically rolled back"
)

var (
	ErrUpdateInProgress  = errors.New("framework update already in progress")
	ErrInvalidVersion    = errors.New("invalid framework version")
	ErrVersionNotFound   = errors.New("framework version not found")
	ErrModuleNotRequired = errors.New("framework module not required")
	ErrInvalidCloneName  = errors.New("invalid clone name")
	ErrCloneExists       = errors.New("clone target already exists")
)

// Files restored when an update is rolled back.
var backedUpFiles = []string{"go.mod", "go.sum", LockFileName}

// Directories and files never copied into a test clone.
var cloneSkips = []string{BackupDirName, migration.BackupDirName, ".git", "bin", "*.log"}

type Manager struct {
	cfg        *config.AgentConfig
	root       string
	migrations *migration.Manager
	releases   ReleaseSource
	runner     Runner
	logger     *zerolog.Logger

	mu  sync.Mutex
	now func() time.Time
}

func NewManager(
	cfg *config.AgentConfig,
	migrations *migration.Manager,
	releases ReleaseSource,
	runner Runner,
	logger *zerolog.Logger,
) *Manager {
	return &Manager{
		cfg:        cfg,
		root:       cfg.AgentRoot,
		migrations: migrations,
		releases:   releases,
		runner:     runner,
		logger:     logger,
		now:        time.Now,
	}
}

func (m *Manager) Migrations() *migration.Manager { return m.migrations }

// CurrentVersion reads framework.lock. A missing lock means the agent was
// never updated and runs the initial release.
func (m *Manager) CurrentVersion() string {
	data, err := os.ReadFile(filepath.Join(m.root, LockFileName))
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultVersion
	}
	if err != nil {
		m.logger.Error().Err(err).Msg("Error reading framework.lock")
		return UnknownVersion
	}

	version := strings.TrimPrefix(strings.TrimSpace(string(data)), "v")
	if version == "" {
		return DefaultVersion
	}
	return version
}

func (m *Manager) VersionInfo() models.VersionInfo {
	return models.VersionInfo{
		CurrentVersion:   m.CurrentVersion(),
		FrameworkVersion: m.cfg.FrameworkVersion,
		AgentVersion:     m.cfg.Version,
	}
}

// AvailableVersions never fails; a listing error is logged and yields an
// empty list.
func (m *Manager) AvailableVersions(ctx context.Context) []models.FrameworkVersion {
	versions, err := m.releases.ListVersions(ctx)
	if err != nil {
		m.logger.Error().Err(err).Msg("Error fetching available versions")
		return []models.FrameworkVersion{}
	}
	return versions
}

func (m *Manager) MigrationInfo(target string) (models.MigrationInfo, error) {
	clean, _, err := normalizeTarget(target)
	if err != nil {
		return models.MigrationInfo{}, err
	}
	return m.migrations.Info(m.CurrentVersion(), clean), nil
}

func (m *Manager) Changelog(ctx context.Context) models.ChangelogResponse {
	current := m.CurrentVersion()
	resp := models.ChangelogResponse{
		CurrentVersion:   current,
		AvailableUpdates: []models.ChangelogEntry{},
	}

	for _, v := range m.AvailableVersions(ctx) {
		info := m.migrations.Info(current, v.Version)
		if !info.MigrationAvailable {
			continue
		}
		breaking := info.BreakingChanges
		if breaking == nil {
			breaking = []string{}
		}
		resp.AvailableUpdates = append(resp.AvailableUpdates, models.ChangelogEntry{
			Version:            v.Version,
			Tag:                v.Tag,
			HasBreakingChanges: info.HasCodeChanges,
			BreakingChanges:    breaking,
			Changelog:          info.Changelog,
			MigrationSteps:     len(info.MigrationSteps),
		})
	}
	return resp
}

func normalizeTarget(target string) (clean string, tag string, err error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return "", "", fmt.Errorf("%w: target version is required", ErrInvalidVersion)
	}
	if _, err := semver.StrictNewVersion(strings.TrimPrefix(target, "v")); err != nil {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidVersion, target)
	}
	clean = strings.TrimPrefix(target, "v")
	return clean, "v" + clean, nil
}

// Update moves the agent to the target framework version: pin go.mod,
// reinstall, migrate agent code, record the lock and optionally run the test
// suite. Any failure after the backup restores it. Errors are returned only
// for requests that never started (bad version, update already running,
// backup failure).
func (m *Manager) Update(ctx context.Context, target string, runTests bool) (*models.UpdateResult, error) {
	clean, tag, err := normalizeTarget(target)
	if err != nil {
		return nil, err
	}

	if err := m.checkPublished(ctx, tag); err != nil {
		return nil, err
	}

	unlock, err := m.lock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	current := m.CurrentVersion()
	m.logger.Info().Str("from", current).Str("to", clean).Msg("Starting framework update")

	if info := m.migrations.Info(current, clean); info.MigrationAvailable && info.HasCodeChanges {
		m.logger.Info().
			Int("steps", len(info.MigrationSteps)).
			Strs("breaking_changes", info.BreakingChanges).
			Msg("Migration required")
	}

	backupPath, err := m.backup(current)
	if err != nil {
		return nil, fmt.Errorf("failed to create backup: %w", err)
	}

	result := &models.UpdateResult{
		FromVersion: current,
		ToVersion:   clean,
		UpdatedAt:   m.now().UTC(),
	}

	migrated, err := m.apply(ctx, current, clean, tag)
	if err != nil {
		m.logger.Error().Err(err).Msg("Framework update failed")
		result.ErrorMessage = err.Error()
		result.RollbackAvailable = m.rollback(ctx, backupPath, migrated) == nil
		return result, nil
	}

	if runTests {
		m.logger.Info().Msg("Running tests after framework update")
		tests := m.runTests(ctx)
		result.TestResults = &tests

		if !tests.Success {
			m.logger.Error().Int("exit_code", tests.ExitCode).Msg("Tests failed after update, rolling back")
			if err := m.rollback(ctx, backupPath, migrated); err != nil {
				result.ErrorMessage = fmt.Sprintf("%s; rollback failed: %v", testsFailedMessage, err)
				return result, nil
			}
			result.RollbackAvailable = true
			result.ErrorMessage = testsFailedMessage
			return result, nil
		}
	}

	m.logger.Info().Str("from", current).Str("to", clean).Msg("Framework updated successfully")

	result.Success = true
	result.RollbackAvailable = true
	if migrated != nil {
		applied := migrated.MigrationRequired
		result.MigrationApplied = &applied
		result.MigrationChanges = migrated.ChangesApplied
		result.BreakingChanges = migrated.BreakingChanges
		result.MigrationMessage = migrated.Message
	}
	return result, nil
}

// apply runs the update steps after the backup. The migration result is
// returned even on failure so the caller can undo code changes.
func (m *Manager) apply(ctx context.Context, current, clean, tag string) (*migration.Result, error) {
	if err := pinModule(filepath.Join(m.root, "go.mod"), m.cfg.Framework.Module, tag); err != nil {
		return nil, err
	}
	m.logger.Info().Str("module", m.cfg.Framework.Module).Str("version", tag).Msg("Updated framework requirement")

	if err := m.reinstall(ctx); err != nil {
		return nil, err
	}

	migrated, err := m.migrations.Apply(ctx, current, clean)
	if err != nil {
		return migrated, err
	}
	if !migrated.Success {
		return migrated, errors.New(migrated.Error)
	}

	if err := os.WriteFile(filepath.Join(m.root, LockFileName), []byte(tag+"\n"), 0o644); err != nil {
		return migrated, fmt.Errorf("failed to write %s: %w", LockFileName, err)
	}
	return migrated, nil
}

// checkPublished rejects a target the release source does not know about.
// When the source is unreachable the check is skipped.
func (m *Manager) checkPublished(ctx context.Context, tag string) error {
	versions, err := m.releases.ListVersions(ctx)
	if err != nil || len(versions) == 0 {
		return nil
	}
	for _, v := range versions {
		if v.Tag == tag || "v"+v.Version == tag {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrVersionNotFound, tag)
}

func (m *Manager) lock() (func(), error) {
	if !m.mu.TryLock() {
		return nil, ErrUpdateInProgress
	}

	dir := filepath.Join(m.root, BackupDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		m.mu.Unlock()
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}

	fileLock := flock.New(filepath.Join(dir, updateLockName))
	locked, err := fileLock.TryLock()
	if err != nil {
		m.mu.Unlock()
		return nil, fmt.Errorf("failed to acquire update lock: %w", err)
	}
	if !locked {
		m.mu.Unlock()
		return nil, ErrUpdateInProgress
	}

	return func() {
		if err := fileLock.Unlock(); err != nil {
			m.logger.Warn().Err(err).Msg("Failed to release update lock")
		}
		m.mu.Unlock()
	}, nil
}

func (m *Manager) reinstall(ctx context.Context) error {
	cmd := m.cfg.Framework.InstallCommand
	if len(cmd) == 0 {
		return nil
	}

	m.logger.Info().Strs("command", cmd).Msg("Reinstalling framework")
	res, err := m.runner.Run(ctx, m.root, cmd[0], cmd[1:]...)
	if err != nil {
		return fmt.Errorf("framework install failed: %w", err)
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("framework install failed: %s", strings.TrimSpace(res.Stderr))
	}

	m.logger.Info().Msg("Framework reinstalled successfully")
	return nil
}

func (m *Manager) runTests(ctx context.Context) models.TestResult {
	cmd := m.cfg.Framework.TestCommand
	if len(cmd) == 0 {
		return models.TestResult{
			Success:   true,
			Message:   "No test command found, skipping tests",
			Timestamp: m.now().UTC(),
		}
	}

	m.logger.Info().Strs("command", cmd).Msg("Running tests")
	res, err := m.runner.Run(ctx, m.root, cmd[0], cmd[1:]...)
	if errors.Is(err, exec.ErrNotFound) {
		return models.TestResult{
			Success:   true,
			Message:   "No test command found, skipping tests",
			Timestamp: m.now().UTC(),
		}
	}
	if err != nil {
		return models.TestResult{
			Success:   false,
			Command:   strings.Join(cmd, " "),
			ExitCode:  -1,
			Error:     err.Error(),
			Timestamp: m.now().UTC(),
		}
	}

	return models.TestResult{
		Success:   res.ExitCode == 0,
		Command:   strings.Join(cmd, " "),
		ExitCode:  res.ExitCode,
		Stdout:    res.Stdout,
		Stderr:    res.Stderr,
		Timestamp: m.now().UTC(),
	}
}

func (m *Manager) backup(version string) (string, error) {
	name := fmt.Sprintf("backup_%s_%s", version, m.now().Format("20060102_150405"))
	backupPath := filepath.Join(m.root, BackupDirName, name)
	if err := os.MkdirAll(backupPath, 0o755); err != nil {
		return "", err
	}

	for _, file := range backedUpFiles {
		src := filepath.Join(m.root, file)
		if _, err := os.Stat(src); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := copy.Copy(src, filepath.Join(backupPath, file)); err != nil {
			return "", fmt.Errorf("failed to back up %s: %w", file, err)
		}
	}

	m.logger.Info().Str("path", backupPath).Msg("Created backup")
	return backupPath, nil
}

// rollback restores migrated source and the framework files, then
// reinstalls the restored requirement. The migration backup was taken after
// go.mod was pinned, so it is restored first.
func (m *Manager) rollback(ctx context.Context, backupPath string, migrated *migration.Result) error {
	m.logger.Info().Str("path", backupPath).Msg("Rolling back from backup")

	if migrated != nil && migrated.MigrationRequired && !migrated.RollbackPerformed && migrated.BackupPath != "" {
		if err := m.migrations.Rollback(migrated.BackupPath); err != nil {
			return err
		}
	}

	// A lock written by the failed update must not survive when the agent
	// had none before.
	if _, err := os.Stat(filepath.Join(backupPath, LockFileName)); errors.Is(err, fs.ErrNotExist) {
		_ = os.Remove(filepath.Join(m.root, LockFileName))
	}

	if err := copy.Copy(backupPath, m.root); err != nil {
		m.logger.Error().Err(err).Msg("Rollback failed")
		return err
	}

	if err := m.reinstall(ctx); err != nil {
		m.logger.Error().Err(err).Msg("Reinstall after rollback failed")
		return err
	}

	m.logger.Info().Msg("Rollback completed")
	return nil
}

// CreateTestClone copies the agent checkout next to itself so an update can
// be tried on the copy first.
func (m *Manager) CreateTestClone(ctx context.Context, name string) (*models.CloneResult, error) {
	if name == "" {
		name = fmt.Sprintf("%s_test_%s", m.cfg.Slug, m.now().Format("20060102_150405"))
	}
	if name != filepath.Base(name) || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCloneName, name)
	}

	clonePath := filepath.Join(filepath.Dir(m.root), name)
	if _, err := os.Stat(clonePath); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrCloneExists, clonePath)
	}

	err := copy.Copy(m.root, clonePath, copy.Options{
		Skip: func(info os.FileInfo, src, dest string) (bool, error) {
			if err := ctx.Err(); err != nil {
				return true, err
			}
			for _, pattern := range cloneSkips {
				if ok, _ := filepath.Match(pattern, info.Name()); ok {
					return true, nil
				}
			}
			return false, nil
		},
	})
	if err != nil {
		_ = os.RemoveAll(clonePath)
		return nil, fmt.Errorf("failed to create test clone: %w", err)
	}

	m.logger.Info().Str("path", clonePath).Msg("Created test clone")
	return &models.CloneResult{
		Success:   true,
		ClonePath: clonePath,
		CloneName: name,
	}, nil
}
