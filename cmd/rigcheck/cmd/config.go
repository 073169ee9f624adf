package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/rigcheck/configs"
	"github.com/Aman-CERP/rigcheck/internal/config"
	rcerrors "github.com/Aman-CERP/rigcheck/internal/errors"
	"github.com/Aman-CERP/rigcheck/internal/output"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long: `Manage rigcheck configuration.

Configuration precedence (lowest to highest):
  1. Hardcoded defaults
  2. User config (~/.config/rigcheck/config.yaml)
  3. Project config (.rigcheck.yaml in --config-dir)
  4. .env in --config-dir (never overrides variables already set)
  5. Environment variables (RIGCHECK_*, OLLAMA_HOST)`,
		Example: `  # Create user config from template
  rigcheck config init

  # Show effective configuration
  rigcheck config show

  # Print user config file path
  rigcheck config path`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigPathCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create user configuration file",
		Long: `Create the user configuration file from a template at
~/.config/rigcheck/config.yaml (or $XDG_CONFIG_HOME/rigcheck/config.yaml).

With --force an existing file is backed up, then rewritten with any options
it lacks filled in from defaults. Existing values are kept.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigInit(cmd, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Upgrade an existing configuration (a backup is kept)")

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	var (
		jsonOutput bool
		source     string
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(cmd, jsonOutput, source)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().StringVar(&source, "source", "merged", "Config source: merged, user, project, defaults")

	return cmd
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print user config file path",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), config.GetUserConfigPath())
			return err
		},
	}
}

func runConfigInit(cmd *cobra.Command, force bool) error {
	out := output.New(cmd.OutOrStdout())
	configPath := config.GetUserConfigPath()

	if config.UserConfigExists() {
		if !force {
			out.Warning("User configuration already exists")
			out.Statusf("📁", "Location: %s", configPath)
			out.Newline()
			out.Status("💡", "Use --force to upgrade with new defaults (preserves your settings)")
			return nil
		}
		return runConfigUpgrade(out, configPath)
	}

	if err := os.MkdirAll(config.GetUserConfigDir(), 0755); err != nil {
		return rcerrors.New(rcerrors.ErrCodeConfigPermission, "failed to create config directory", err)
	}
	if err := os.WriteFile(configPath, []byte(configs.UserConfigTemplate), 0644); err != nil {
		return rcerrors.New(rcerrors.ErrCodeConfigPermission, "failed to write config file", err)
	}

	out.Success("Created user configuration")
	out.Statusf("📁", "Location: %s", configPath)
	out.Newline()
	out.Status("📋", "Next steps:")
	out.Status("", "  1. Edit thresholds to match your target hardware")
	out.Status("", "  2. Run 'rigcheck config show' to verify")

	return nil
}

// runConfigUpgrade backs up the user config and fills in missing options.
func runConfigUpgrade(out *output.Writer, configPath string) error {
	backupPath, err := config.Backup(configPath)
	if err != nil {
		return rcerrors.New(rcerrors.ErrCodeConfigPermission, "failed to backup config", err)
	}

	existing, err := config.LoadFile(configPath)
	if err != nil {
		return rcerrors.ConfigError("failed to load existing config", err)
	}

	newFields := existing.MergeNewDefaults()
	if err := existing.WriteYAML(configPath); err != nil {
		return rcerrors.New(rcerrors.ErrCodeConfigPermission, "failed to write upgraded config", err)
	}

	out.Success("Configuration upgraded")
	out.Statusf("📁", "Location: %s", configPath)
	out.Statusf("💾", "Backup: %s", backupPath)
	out.Newline()

	if len(newFields) > 0 {
		out.Status("✨", "New options added with defaults:")
		for _, field := range newFields {
			out.Statusf("", "  - %s", field)
		}
	} else {
		out.Status("✓", "Your configuration is already up to date")
	}

	return nil
}

func runConfigShow(cmd *cobra.Command, jsonOutput bool, source string) error {
	out := output.New(cmd.OutOrStdout())

	var (
		cfg        *config.Config
		sourceDesc string
	)

	switch source {
	case "merged":
		loaded, _, err := loadConfig()
		if err != nil {
			return err
		}
		cfg = loaded
		sourceDesc = "merged (defaults + user + project + .env + env)"

	case "user":
		path := config.GetUserConfigPath()
		if !config.UserConfigExists() {
			out.Warning("No user configuration file found")
			out.Statusf("📁", "Expected at: %s", path)
			out.Status("💡", "Run 'rigcheck config init' to create one")
			return nil
		}
		loaded, err := config.LoadFile(path)
		if err != nil {
			return rcerrors.ConfigError(err.Error(), err)
		}
		cfg = loaded
		sourceDesc = fmt.Sprintf("user (%s)", path)

	case "project":
		dir, err := workDir()
		if err != nil {
			return err
		}
		path := config.ProjectConfigPath(dir)
		if path == "" {
			out.Warning("No project configuration file found")
			out.Statusf("📁", "Expected at: %s", filepath.Join(dir, config.ProjectConfigNames[0]))
			return nil
		}
		loaded, err := config.LoadFile(path)
		if err != nil {
			return rcerrors.ConfigError(err.Error(), err)
		}
		cfg = loaded
		sourceDesc = fmt.Sprintf("project (%s)", path)

	case "defaults":
		cfg = config.NewConfig()
		sourceDesc = "defaults (hardcoded)"

	default:
		return rcerrors.ValidationError(fmt.Sprintf("unknown source %q", source), nil).
			WithSuggestion("Use merged, user, project or defaults.")
	}

	data, err := cfg.YAML()
	if err != nil {
		return rcerrors.InternalError("failed to render config", err)
	}

	if jsonOutput {
		// Round-trip through YAML so durations print as "10s".
		var generic map[string]any
		if err := yaml.Unmarshal(data, &generic); err != nil {
			return rcerrors.InternalError("failed to render config", err)
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(generic)
	}

	out.Statusf("#", "Source: %s", sourceDesc)
	out.Raw(string(data))
	return nil
}
