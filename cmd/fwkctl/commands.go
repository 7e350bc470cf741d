package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/povarna/generative-ai-agents/agent-fwk/internal/config"
	"github.com/povarna/generative-ai-agents/agent-fwk/internal/framework"
	"github.com/povarna/generative-ai-agents/agent-fwk/internal/setup"
	"github.com/povarna/generative-ai-agents/agent-fwk/internal/setup/logger"
	"github.com/spf13/cobra"
)

type cliOptions struct {
	dir      string
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}

	root := &cobra.Command{
		Use:           "fwkctl",
		Short:         "Manage the framework version of an agent checkout",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&opts.dir, "dir", ".", "Agent checkout directory")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	root.AddCommand(
		versionCmd(opts),
		availableCmd(opts),
		changelogCmd(opts),
		migrationInfoCmd(opts),
		migrateCmd(opts),
		updateCmd(opts),
		cloneCmd(opts),
	)
	return root
}

// managerFor builds a framework manager for the checkout without requiring
// the agent's own identity settings to be valid.
func managerFor(cmd *cobra.Command, opts *cliOptions) (*framework.Manager, error) {
	root, err := filepath.Abs(opts.dir)
	if err != nil {
		return nil, err
	}
	_ = godotenv.Load(filepath.Join(root, ".env"))

	cfg := config.DefaultAgentConfig()
	cfg.ApplyEnv()
	cfg.AgentRoot = root
	if cfg.Name == "" {
		cfg.Name = filepath.Base(root)
	}
	if err := cfg.ApplyDefaults(); err != nil {
		return nil, err
	}

	log := logger.New(opts.logLevel, logger.WithWriter(cmd.ErrOrStderr()), logger.WithConsole())
	return setup.NewFrameworkManager(&setup.Config{
		Agent:        &cfg,
		GitHubAPIURL: os.Getenv("GITHUB_API_URL"),
	}, &log)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func versionCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the installed framework version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := managerFor(cmd, opts)
			if err != nil {
				return err
			}
			return printJSON(cmd, m.VersionInfo())
		},
	}
}

func availableCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "available",
		Short: "List published framework versions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := managerFor(cmd, opts)
			if err != nil {
				return err
			}
			return printJSON(cmd, m.AvailableVersions(cmd.Context()))
		},
	}
}

func changelogCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "changelog",
		Short: "Show the changelog of available updates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := managerFor(cmd, opts)
			if err != nil {
				return err
			}
			return printJSON(cmd, m.Changelog(cmd.Context()))
		},
	}
}

func migrationInfoCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migration-info <target-version>",
		Short: "Describe the code migration needed to reach a version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := managerFor(cmd, opts)
			if err != nil {
				return err
			}
			info, err := m.MigrationInfo(args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, info)
		},
	}
}

func migrateCmd(opts *cliOptions) *cobra.Command {
	var from string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "migrate <target-version>",
		Short: "Rewrite agent code for a framework version without changing go.mod",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := managerFor(cmd, opts)
			if err != nil {
				return err
			}
			if from == "" {
				from = m.CurrentVersion()
			}

			migrations := m.Migrations()
			if dryRun {
				diffs, err := migrations.Preview(from, args[0])
				if err != nil {
					return err
				}
				if len(diffs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No changes")
					return nil
				}
				for _, d := range diffs {
					fmt.Fprint(cmd.OutOrStdout(), d.Diff)
				}
				return nil
			}

			result, err := migrations.Apply(cmd.Context(), from, args[0])
			if err != nil {
				return err
			}
			if err := printJSON(cmd, result); err != nil {
				return err
			}
			if !result.Success {
				return fmt.Errorf("migration failed: %s", result.Error)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Source version (defaults to the installed version)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the diff instead of writing files")
	return cmd
}

func updateCmd(opts *cliOptions) *cobra.Command {
	var skipTests bool

	cmd := &cobra.Command{
		Use:   "update <target-version>",
		Short: "Update the framework, migrate code and run the tests",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := managerFor(cmd, opts)
			if err != nil {
				return err
			}
			result, err := m.Update(cmd.Context(), args[0], !skipTests)
			if err != nil {
				return err
			}
			if err := printJSON(cmd, result); err != nil {
				return err
			}
			if !result.Success {
				return fmt.Errorf("update failed: %s", result.ErrorMessage)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&skipTests, "skip-tests", false, "Do not run the test command after updating")
	return cmd
}

func cloneCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clone [name]",
		Short: "Copy the checkout next to itself for a trial update",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := managerFor(cmd, opts)
			if err != nil {
				return err
			}
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			result, err := m.CreateTestClone(cmd.Context(), name)
			if err != nil {
				return err
			}
			return printJSON(cmd, result)
		},
	}
}
