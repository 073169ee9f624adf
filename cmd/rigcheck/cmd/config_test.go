package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/rigcheck/configs"
	"github.com/Aman-CERP/rigcheck/internal/config"
	"github.com/Aman-CERP/rigcheck/internal/runner"
)

func TestConfigPath(t *testing.T) {
	setupCLI(t, runner.NewStatic(nil))

	stdout, _, err := runCLI(t, "config", "path")

	require.NoError(t, err)
	assert.Equal(t, config.GetUserConfigPath(), strings.TrimSpace(stdout))
	assert.True(t, strings.HasPrefix(strings.TrimSpace(stdout), os.Getenv("XDG_CONFIG_HOME")))
}

func TestConfigInit_CreatesFromTemplate(t *testing.T) {
	// Given: no user config
	setupCLI(t, runner.NewStatic(nil))

	// When: running config init
	stdout, _, err := runCLI(t, "config", "init")

	// Then: the template is written and it loads cleanly
	require.NoError(t, err)
	assert.Contains(t, stdout, "Created user configuration")

	data, err := os.ReadFile(config.GetUserConfigPath())
	require.NoError(t, err)
	assert.Equal(t, configs.UserConfigTemplate, string(data))

	cfg, err := config.LoadFile(config.GetUserConfigPath())
	require.NoError(t, err)
	assert.NoError(t, cfg.Validate())
}

func TestConfigInit_ExistingWithoutForce(t *testing.T) {
	// Given: an existing user config
	setupCLI(t, runner.NewStatic(nil))
	path := config.GetUserConfigPath()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("thresholds:\n  ram_ok_gb: 256\n"), 0644))

	// When: running config init
	stdout, _, err := runCLI(t, "config", "init")

	// Then: the file is left alone
	require.NoError(t, err)
	assert.Contains(t, stdout, "already exists")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "thresholds:\n  ram_ok_gb: 256\n", string(data))
}

func TestConfigInit_ForceUpgrades(t *testing.T) {
	// Given: an old user config with one setting
	setupCLI(t, runner.NewStatic(nil))
	path := config.GetUserConfigPath()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("thresholds:\n  ram_ok_gb: 256\n"), 0644))

	// When: running config init --force
	stdout, _, err := runCLI(t, "config", "init", "--force")

	// Then: a backup exists, the setting is kept and missing options are filled
	require.NoError(t, err)
	assert.Contains(t, stdout, "Configuration upgraded")
	assert.Contains(t, stdout, "detect.python")

	backups, err := config.ListBackups(path)
	require.NoError(t, err)
	assert.Len(t, backups, 1)

	cfg, err := config.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 256.0, cfg.Thresholds.RAMOkGB)
	assert.Equal(t, "python3", cfg.Detect.Python)
}

func TestConfigShow_Sources(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		project string
		want    []string
	}{
		{"defaults", "defaults", "", []string{"Source: defaults", "ram_ok_gb: 128", "command_timeout: 10s"}},
		{"merged with project", "merged", "thresholds:\n  ram_ok_gb: 96\n", []string{"Source: merged", "ram_ok_gb: 96", "ram_warn_gb: 48"}},
		{"project only", "project", "thresholds:\n  ram_ok_gb: 96\n", []string{"Source: project", "ram_ok_gb: 96"}},
		{"project missing", "project", "", []string{"No project configuration file found"}},
		{"user missing", "user", "", []string{"No user configuration file found", "rigcheck config init"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := setupCLI(t, runner.NewStatic(nil))
			if tt.project != "" {
				writeProjectConfig(t, dir, tt.project)
			}

			stdout, _, err := runCLI(t, "config", "show", "--source", tt.source, "--config-dir", dir)

			require.NoError(t, err)
			for _, want := range tt.want {
				assert.Contains(t, stdout, want)
			}
		})
	}
}

func TestConfigShow_JSON(t *testing.T) {
	// Given: an environment override
	dir := setupCLI(t, runner.NewStatic(nil))
	t.Setenv("RIGCHECK_MIN_CUDA_VERSION", "12.4")

	// When: showing the merged config as JSON
	stdout, _, err := runCLI(t, "config", "show", "--json", "--config-dir", dir)

	// Then: durations are strings and the override applies
	require.NoError(t, err)
	var decoded struct {
		Detect struct {
			CommandTimeout string `json:"command_timeout"`
		} `json:"detect"`
		Thresholds struct {
			MinCUDAVersion string `json:"min_cuda_version"`
		} `json:"thresholds"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &decoded))
	assert.Equal(t, "10s", decoded.Detect.CommandTimeout)
	assert.Equal(t, "12.4", decoded.Thresholds.MinCUDAVersion)
}

func TestConfigShow_UnknownSource(t *testing.T) {
	setupCLI(t, runner.NewStatic(nil))

	_, stderr, err := runCLI(t, "config", "show", "--source", "cloud")

	require.Error(t, err)
	assert.Contains(t, stderr, `unknown source "cloud"`)
}
